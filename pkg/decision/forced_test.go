package decision_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flaglab/flagkit/pkg/decision"
)

func TestForcedStore(t *testing.T) {
	t.Parallel()

	t.Run("SetGetDelete", func(t *testing.T) {
		t.Parallel()
		store := decision.NewForcedStore()

		assert.Empty(t, store.Get("user1", "exp1"))

		store.Set("user1", "exp1", "treatment")
		assert.Equal(t, "treatment", store.Get("user1", "exp1"))
		assert.Empty(t, store.Get("user2", "exp1"), "overrides are per user")
		assert.Empty(t, store.Get("user1", "exp2"), "overrides are per experiment")

		store.Set("user1", "exp1", "")
		assert.Empty(t, store.Get("user1", "exp1"))
	})

	t.Run("ConcurrentAccess", func(t *testing.T) {
		t.Parallel()
		store := decision.NewForcedStore()

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			i := i
			go func() {
				defer wg.Done()
				user := fmt.Sprintf("user%d", i)
				store.Set(user, "exp1", "control")
				_ = store.Get(user, "exp1")
				store.Set(user, "exp1", "")
			}()
		}
		wg.Wait()
		assert.Empty(t, store.Get("user0", "exp1"))
	})
}
