package decision

import "sync"

type forcedKey struct {
	userID        string
	experimentKey string
}

// ForcedStore holds runtime forced-variation overrides keyed by
// (user, experiment). It is mutable shared state across concurrent decide
// calls, so access is lock-guarded. Overrides live for the store's lifetime;
// persistence across processes is deliberately not provided.
type ForcedStore struct {
	mu sync.RWMutex
	m  map[forcedKey]string
}

// NewForcedStore creates an empty override store.
func NewForcedStore() *ForcedStore {
	return &ForcedStore{m: make(map[forcedKey]string)}
}

// Set records an override. An empty variation key removes a previous
// override. Validation against the configuration is the caller's job (see
// Service.SetForcedVariation).
func (f *ForcedStore) Set(userID, experimentKey, variationKey string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := forcedKey{userID: userID, experimentKey: experimentKey}
	if variationKey == "" {
		delete(f.m, key)
		return
	}
	f.m[key] = variationKey
}

// Get returns the override variation key, or "" when none is set.
func (f *ForcedStore) Get(userID, experimentKey string) string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.m[forcedKey{userID: userID, experimentKey: experimentKey}]
}
