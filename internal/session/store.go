// Package session provides the session store adapter backing the onboarding
// conversation. A session is a small JSON record keyed by a random identifier
// with a sliding TTL: every update extends its life, and a session that
// receives no traffic for the whole window becomes unrecoverable.
//
// Concurrency note: two concurrent turns for the same session id race on the
// read-modify-write of session state. There is no optimistic locking; the
// last writer wins, and duplicate requests extend the TTL. This is an
// accepted limitation of the design, not a guarantee.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/andromedaprotocol/community-onboarding/internal/models"
)

// DefaultTTL is the sliding session expiration window.
const DefaultTTL = 60 * time.Minute

// Store is the create/get/update/delete contract for session records.
type Store interface {
	// Create generates a fresh random session id and writes an initial
	// state with the expiration window started.
	Create(ctx context.Context) (string, *models.SessionState, error)
	// Get returns the state for a session id, or nil when the key never
	// existed or has expired; the two are indistinguishable by design.
	Get(ctx context.Context, sessionID string) (*models.SessionState, error)
	// Update overwrites the record, stamps the last interaction time and
	// resets the expiration window.
	Update(ctx context.Context, sessionID string, state *models.SessionState) error
	// Delete removes the record. Best-effort: absence of the key is not an
	// error condition, and failures are logged rather than returned.
	Delete(ctx context.Context, sessionID string)
}

// StoreWriteError indicates the underlying store did not confirm a required
// write. It surfaces as a fatal error for the turn that triggered it.
type StoreWriteError struct {
	Op  string
	Err error
}

func (e *StoreWriteError) Error() string {
	return fmt.Sprintf("session store %s failed: %v", e.Op, e.Err)
}

func (e *StoreWriteError) Unwrap() error { return e.Err }

// newInitialState builds the state written for a fresh session.
func newInitialState(now time.Time) *models.SessionState {
	return &models.SessionState{
		QuestionIndex:   0,
		Accumulated:     models.Profile{},
		RepromptedIndex: nil,
		LastInteraction: now,
	}
}
