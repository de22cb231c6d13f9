package statestore

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps state tokens in process memory. Suitable for a single
// server instance; multi-instance deployments use RedisStore.
type MemoryStore struct {
	cfg Config

	mu      sync.Mutex
	entries map[string]entry

	ticker *time.Ticker
	done   chan struct{}
}

// NewMemoryStore creates an in-memory state store and starts the expiry
// sweep goroutine.
func NewMemoryStore(cfg Config) *MemoryStore {
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Minute
	}
	if cfg.SweepInterval <= 0 || cfg.SweepInterval >= cfg.TTL {
		cfg.SweepInterval = time.Minute
	}

	s := &MemoryStore{
		cfg:     cfg,
		entries: make(map[string]entry),
		done:    make(chan struct{}),
	}

	s.ticker = time.NewTicker(cfg.SweepInterval)
	go s.sweepLoop()

	return s
}

// Issue generates and stores a new single-use token for the provider.
func (s *MemoryStore) Issue(ctx context.Context, providerName string, meta Metadata) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}

	now := time.Now()
	s.mu.Lock()
	s.entries[token] = entry{
		Provider:  providerName,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.cfg.TTL),
		Metadata:  meta,
	}
	s.mu.Unlock()

	return token, nil
}

// ValidateAndConsume atomically removes the token and checks it against the
// callback attributes. The remove-then-check order guarantees single use
// even under concurrent validation of the same token.
func (s *MemoryStore) ValidateAndConsume(ctx context.Context, providerName, token string, meta Metadata) error {
	s.mu.Lock()
	e, ok := s.entries[token]
	if ok {
		delete(s.entries, token)
	}
	s.mu.Unlock()

	if !ok {
		return ErrInvalidState
	}
	return e.check(providerName, meta, time.Now(), s.cfg.StrictBinding)
}

// Close stops the sweep goroutine.
func (s *MemoryStore) Close() error {
	s.ticker.Stop()
	close(s.done)
	return nil
}

// sweepLoop periodically deletes entries past expiry so abandoned flows do
// not accumulate. Live tokens are never touched, so the sweep cannot race a
// ValidateAndConsume into a false negative.
func (s *MemoryStore) sweepLoop() {
	for {
		select {
		case <-s.ticker.C:
			now := time.Now()
			s.mu.Lock()
			for token, e := range s.entries {
				if now.After(e.ExpiresAt) {
					delete(s.entries, token)
				}
			}
			s.mu.Unlock()
		case <-s.done:
			return
		}
	}
}

var _ Store = (*MemoryStore)(nil)
