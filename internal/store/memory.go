package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/andromedaprotocol/community-onboarding/internal/models"
)

// InMemoryStore is a map-backed profile store for tests. It enforces the
// unique-email constraint the SQL backends get from their schema.
type InMemoryStore struct {
	mu       sync.Mutex
	profiles map[string]models.ProfileRecord

	// failWith, when set, makes SaveProfile return this error failCount
	// times (or forever when failCount < 0). Test hook for retry paths.
	failWith  error
	failCount int
}

// NewInMemoryStore creates an empty in-memory profile store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{profiles: make(map[string]models.ProfileRecord)}
}

// FailNext makes the next count SaveProfile calls return err. A negative
// count fails every call.
func (s *InMemoryStore) FailNext(err error, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
	s.failCount = count
}

// SaveProfile stores the record, rejecting duplicate emails.
func (s *InMemoryStore) SaveProfile(ctx context.Context, rec models.ProfileRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil && s.failCount != 0 {
		if s.failCount > 0 {
			s.failCount--
		}
		return s.failWith
	}
	if _, exists := s.profiles[rec.Email]; exists {
		return fmt.Errorf("%w: email %s", ErrProfileExists, rec.Email)
	}
	s.profiles[rec.Email] = rec
	return nil
}

// GetProfileByEmail returns a stored record, or nil when absent.
func (s *InMemoryStore) GetProfileByEmail(ctx context.Context, email string) (*models.ProfileRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.profiles[email]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// Count returns the number of stored profiles. Test helper.
func (s *InMemoryStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.profiles)
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error { return nil }
