package profile_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flaglab/flagkit/pkg/profile"
)

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("LookupUnknownUser", func(t *testing.T) {
		t.Parallel()
		store := profile.NewMemoryStore()

		p, err := store.Lookup(ctx, "nobody")
		require.NoError(t, err)
		assert.Equal(t, "nobody", p.UserID)
		assert.Empty(t, p.Decisions)
	})

	t.Run("SaveAndLookup", func(t *testing.T) {
		t.Parallel()
		store := profile.NewMemoryStore()

		p := profile.NewProfile("u1").With("exp-1", "var-a")
		require.NoError(t, store.Save(ctx, p))

		got, err := store.Lookup(ctx, "u1")
		require.NoError(t, err)
		v, ok := got.Variation("exp-1")
		require.True(t, ok)
		assert.Equal(t, "var-a", v)
	})

	t.Run("SaveMergesDecisions", func(t *testing.T) {
		t.Parallel()
		store := profile.NewMemoryStore()

		require.NoError(t, store.Save(ctx, profile.NewProfile("u1").With("exp-1", "var-a")))
		require.NoError(t, store.Save(ctx, profile.NewProfile("u1").With("exp-2", "var-b")))

		got, err := store.Lookup(ctx, "u1")
		require.NoError(t, err)
		assert.Len(t, got.Decisions, 2)

		// A later save for the same experiment replaces the decision.
		require.NoError(t, store.Save(ctx, profile.NewProfile("u1").With("exp-1", "var-z")))
		got, err = store.Lookup(ctx, "u1")
		require.NoError(t, err)
		v, _ := got.Variation("exp-1")
		assert.Equal(t, "var-z", v)
	})

	t.Run("EmptyUserID", func(t *testing.T) {
		t.Parallel()
		store := profile.NewMemoryStore()

		_, err := store.Lookup(ctx, "")
		assert.ErrorIs(t, err, profile.ErrEmptyUserID)
		assert.ErrorIs(t, store.Save(ctx, profile.Profile{}), profile.ErrEmptyUserID)
	})

	t.Run("LookupReturnsCopy", func(t *testing.T) {
		t.Parallel()
		store := profile.NewMemoryStore()
		require.NoError(t, store.Save(ctx, profile.NewProfile("u1").With("exp-1", "var-a")))

		got, err := store.Lookup(ctx, "u1")
		require.NoError(t, err)
		got.Decisions["exp-1"] = "tampered"

		again, err := store.Lookup(ctx, "u1")
		require.NoError(t, err)
		v, _ := again.Variation("exp-1")
		assert.Equal(t, "var-a", v)
	})

	t.Run("EvictsLeastRecentlyUsed", func(t *testing.T) {
		t.Parallel()
		store := profile.NewMemoryStore(profile.WithCapacity(2))

		require.NoError(t, store.Save(ctx, profile.NewProfile("u1").With("e", "v")))
		require.NoError(t, store.Save(ctx, profile.NewProfile("u2").With("e", "v")))

		// Touch u1 so u2 becomes the eviction candidate.
		_, err := store.Lookup(ctx, "u1")
		require.NoError(t, err)

		require.NoError(t, store.Save(ctx, profile.NewProfile("u3").With("e", "v")))
		assert.Equal(t, 2, store.Len())

		gone, err := store.Lookup(ctx, "u2")
		require.NoError(t, err)
		assert.Empty(t, gone.Decisions, "u2 should have been evicted")

		kept, err := store.Lookup(ctx, "u1")
		require.NoError(t, err)
		assert.NotEmpty(t, kept.Decisions)
	})

	t.Run("ConcurrentAccess", func(t *testing.T) {
		t.Parallel()
		store := profile.NewMemoryStore(profile.WithCapacity(100))

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				user := fmt.Sprintf("u%d", n%5)
				for j := 0; j < 100; j++ {
					_ = store.Save(ctx, profile.NewProfile(user).With(fmt.Sprintf("e%d", j%3), "v"))
					_, _ = store.Lookup(ctx, user)
				}
			}(i)
		}
		wg.Wait()

		assert.LessOrEqual(t, store.Len(), 5)
	})
}

func TestProfileWith(t *testing.T) {
	t.Parallel()

	base := profile.NewProfile("u1").With("exp-1", "var-a")
	derived := base.With("exp-2", "var-b")

	_, ok := base.Variation("exp-2")
	assert.False(t, ok, "With must not mutate the receiver")
	assert.Len(t, derived.Decisions, 2)
}
