package statestore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_IssueAndConsume(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("issued token validates once", func(t *testing.T) {
		t.Parallel()

		store := NewMemoryStore(Config{})
		defer store.Close()

		token, err := store.Issue(ctx, "google", Metadata{})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(token), 32)

		require.NoError(t, store.ValidateAndConsume(ctx, "google", token, Metadata{}))

		// Second use must fail even though it has not expired.
		err = store.ValidateAndConsume(ctx, "google", token, Metadata{})
		assert.True(t, errors.Is(err, ErrInvalidState))
	})

	t.Run("tokens are unique", func(t *testing.T) {
		t.Parallel()

		store := NewMemoryStore(Config{})
		defer store.Close()

		first, err := store.Issue(ctx, "google", Metadata{})
		require.NoError(t, err)
		second, err := store.Issue(ctx, "google", Metadata{})
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})

	t.Run("unknown token fails with ErrInvalidState", func(t *testing.T) {
		t.Parallel()

		store := NewMemoryStore(Config{})
		defer store.Close()

		err := store.ValidateAndConsume(ctx, "google", "never-issued", Metadata{})
		assert.True(t, errors.Is(err, ErrInvalidState))
	})

	t.Run("provider mismatch consumes the token", func(t *testing.T) {
		t.Parallel()

		store := NewMemoryStore(Config{})
		defer store.Close()

		token, err := store.Issue(ctx, "google", Metadata{})
		require.NoError(t, err)

		err = store.ValidateAndConsume(ctx, "github", token, Metadata{})
		assert.True(t, errors.Is(err, ErrProviderMismatch))

		// Consumed on the failed attempt.
		err = store.ValidateAndConsume(ctx, "google", token, Metadata{})
		assert.True(t, errors.Is(err, ErrInvalidState))
	})

	t.Run("expired token fails with ErrStateExpired not ErrInvalidState", func(t *testing.T) {
		t.Parallel()

		store := NewMemoryStore(Config{TTL: time.Millisecond, SweepInterval: time.Hour})
		defer store.Close()

		token, err := store.Issue(ctx, "google", Metadata{})
		require.NoError(t, err)

		time.Sleep(5 * time.Millisecond)

		err = store.ValidateAndConsume(ctx, "google", token, Metadata{})
		assert.True(t, errors.Is(err, ErrStateExpired))
	})
}

func TestMemoryStore_MetadataBinding(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("matching metadata passes", func(t *testing.T) {
		t.Parallel()

		store := NewMemoryStore(Config{})
		defer store.Close()

		meta := Metadata{IP: "203.0.113.7", UserAgent: "test-agent"}
		token, err := store.Issue(ctx, "google", meta)
		require.NoError(t, err)

		assert.NoError(t, store.ValidateAndConsume(ctx, "google", token, meta))
	})

	t.Run("differing IP fails", func(t *testing.T) {
		t.Parallel()

		store := NewMemoryStore(Config{})
		defer store.Close()

		token, err := store.Issue(ctx, "google", Metadata{IP: "203.0.113.7"})
		require.NoError(t, err)

		err = store.ValidateAndConsume(ctx, "google", token, Metadata{IP: "198.51.100.9"})
		assert.True(t, errors.Is(err, ErrMetadataMismatch))
	})

	t.Run("absent metadata on either side is not a failure", func(t *testing.T) {
		t.Parallel()

		store := NewMemoryStore(Config{})
		defer store.Close()

		// Stored without metadata, validated with.
		token, err := store.Issue(ctx, "google", Metadata{})
		require.NoError(t, err)
		assert.NoError(t, store.ValidateAndConsume(ctx, "google", token, Metadata{IP: "203.0.113.7"}))

		// Stored with metadata, validated without.
		token, err = store.Issue(ctx, "google", Metadata{UserAgent: "test-agent"})
		require.NoError(t, err)
		assert.NoError(t, store.ValidateAndConsume(ctx, "google", token, Metadata{}))
	})

	t.Run("strict binding requires caller metadata", func(t *testing.T) {
		t.Parallel()

		store := NewMemoryStore(Config{StrictBinding: true})
		defer store.Close()

		token, err := store.Issue(ctx, "google", Metadata{IP: "203.0.113.7"})
		require.NoError(t, err)

		err = store.ValidateAndConsume(ctx, "google", token, Metadata{})
		assert.True(t, errors.Is(err, ErrMetadataMismatch))
	})
}

func TestMemoryStore_ConcurrentConsume(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore(Config{})
	defer store.Close()

	token, err := store.Issue(ctx, "google", Metadata{})
	require.NoError(t, err)

	const goroutines = 16

	var wg sync.WaitGroup
	results := make([]error, goroutines)
	start := make(chan struct{})

	for i := range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			results[i] = store.ValidateAndConsume(ctx, "google", token, Metadata{})
		}()
	}

	close(start)
	wg.Wait()

	var successes, invalids int
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrInvalidState):
			invalids++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, successes, "exactly one validation may succeed")
	assert.Equal(t, goroutines-1, invalids)
}

func TestMemoryStore_Sweep(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore(Config{TTL: 5 * time.Millisecond, SweepInterval: time.Millisecond})
	defer store.Close()

	_, err := store.Issue(ctx, "google", Metadata{})
	require.NoError(t, err)
	live, err := store.Issue(ctx, "google", Metadata{})
	require.NoError(t, err)

	// Let the first batch expire and be swept, then issue a fresh token.
	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		_, ok := store.entries[live]
		return !ok
	}, time.Second, 2*time.Millisecond, "sweep should remove expired entries")

	fresh, err := store.Issue(ctx, "google", Metadata{})
	require.NoError(t, err)

	// The sweep must never delete a live token.
	store.mu.Lock()
	_, ok := store.entries[fresh]
	store.mu.Unlock()
	assert.True(t, ok)
}
