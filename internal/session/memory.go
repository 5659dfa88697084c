package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/andromedaprotocol/community-onboarding/internal/models"
)

// InMemoryStore is a map-backed session store used in tests and local
// development. TTL semantics mirror the Redis store: each write sets a
// deadline, and reads past the deadline behave like a missing key.
type InMemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time

	failWrites bool
}

type memoryEntry struct {
	state    models.SessionState
	deadline time.Time
}

// NewInMemoryStore creates an in-memory session store with the default TTL.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		ttl:     DefaultTTL,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// SetTTL overrides the sliding expiration window. Test hook.
func (s *InMemoryStore) SetTTL(ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ttl = ttl
}

// SetClock overrides the time source. Test hook for simulating expiry.
func (s *InMemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// FailWrites makes subsequent Create/Update calls fail. Test hook for
// exercising StoreWriteError paths.
func (s *InMemoryStore) FailWrites(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWrites = fail
}

// Create generates a fresh session id and stores the initial state.
func (s *InMemoryStore) Create(ctx context.Context) (string, *models.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites {
		return "", nil, &StoreWriteError{Op: "create", Err: context.Canceled}
	}
	sessionID := uuid.NewString()
	state := newInitialState(s.now().UTC())
	s.entries[sessionID] = memoryEntry{state: *state, deadline: s.now().Add(s.ttl)}
	return sessionID, state, nil
}

// Get returns a copy of the stored state, or nil on miss/expiry.
func (s *InMemoryStore) Get(ctx context.Context, sessionID string) (*models.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[sessionID]
	if !ok {
		return nil, nil
	}
	if s.now().After(entry.deadline) {
		delete(s.entries, sessionID)
		return nil, nil
	}
	state := entry.state
	return &state, nil
}

// Update overwrites the record and slides the deadline forward.
func (s *InMemoryStore) Update(ctx context.Context, sessionID string, state *models.SessionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites {
		return &StoreWriteError{Op: "update", Err: context.Canceled}
	}
	state.LastInteraction = s.now().UTC()
	s.entries[sessionID] = memoryEntry{state: *state, deadline: s.now().Add(s.ttl)}
	return nil
}

// Delete removes the record; missing keys are ignored.
func (s *InMemoryStore) Delete(ctx context.Context, sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[sessionID]; !ok {
		slog.Debug("InMemoryStore.Delete: session already absent", "sessionID", sessionID)
	}
	delete(s.entries, sessionID)
}

// Len reports the number of live (possibly expired but not yet reaped)
// sessions. Test helper.
func (s *InMemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
