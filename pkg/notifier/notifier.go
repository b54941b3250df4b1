package notifier

import (
	"context"
	"log/slog"
	"sync"
)

// Observer receives published events. Observers run synchronously on the
// publisher's goroutine and must be fast; anything slow belongs on the
// observer's own queue.
type Observer[T any] func(ctx context.Context, event T)

// Hub is a synchronous, in-process fan-out of typed events to registered
// observers. A failing observer is isolated: its panic is recovered and
// logged, and remaining observers still receive the event. All methods are
// safe for concurrent use.
type Hub[T any] struct {
	mu        sync.RWMutex
	nextID    int
	observers map[int]Observer[T]
	logger    *slog.Logger
}

// Option configures a Hub.
type Option[T any] func(*Hub[T])

// WithLogger sets the logger used to report recovered observer panics.
func WithLogger[T any](logger *slog.Logger) Option[T] {
	return func(h *Hub[T]) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewHub creates an empty hub.
func NewHub[T any](opts ...Option[T]) *Hub[T] {
	h := &Hub[T]{
		observers: make(map[int]Observer[T]),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register adds an observer and returns its id for later removal.
// Nil observers are ignored and return a negative id.
func (h *Hub[T]) Register(fn Observer[T]) int {
	if fn == nil {
		return -1
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	h.observers[h.nextID] = fn
	return h.nextID
}

// Unregister removes an observer by id, reporting whether it was registered.
func (h *Hub[T]) Unregister(id int) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.observers[id]; !ok {
		return false
	}
	delete(h.observers, id)
	return true
}

// Len returns the number of registered observers.
func (h *Hub[T]) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.observers)
}

// Publish delivers the event to every registered observer in turn.
// Publishing never fails and never blocks on observer errors: a panicking
// observer is recovered and logged, and delivery continues.
func (h *Hub[T]) Publish(ctx context.Context, event T) {
	h.mu.RLock()
	// Snapshot under the read lock so observers can register/unregister
	// from inside their callback without deadlocking.
	snapshot := make([]Observer[T], 0, len(h.observers))
	for _, fn := range h.observers {
		snapshot = append(snapshot, fn)
	}
	h.mu.RUnlock()

	for _, fn := range snapshot {
		h.dispatch(ctx, fn, event)
	}
}

func (h *Hub[T]) dispatch(ctx context.Context, fn Observer[T], event T) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.ErrorContext(ctx, "notifier observer panicked", slog.Any("panic", r))
		}
	}()
	fn(ctx, event)
}
