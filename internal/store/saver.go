package store

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"net"
	"strings"
	"time"

	"github.com/andromedaprotocol/community-onboarding/internal/models"
	"github.com/andromedaprotocol/community-onboarding/internal/validation"
)

// Retry policy for profile saves. Only transient failures are retried;
// duplicate-email and schema errors return immediately.
const (
	// DefaultMaxAttempts is the total number of save attempts.
	DefaultMaxAttempts = 3
	// DefaultBaseDelay is the backoff base; attempt n waits
	// base * 2^(n-1) * jitter, jitter in [0.9, 1.1].
	DefaultBaseDelay = 500 * time.Millisecond
	// DefaultAttemptTimeout bounds each individual save attempt.
	DefaultAttemptTimeout = 10 * time.Second
)

// SaveResult is the terminal outcome of a save. The Saver never propagates
// errors to the caller; failures are reported here.
type SaveResult struct {
	Success bool
	Error   string
}

// Saver wraps a ProfileStore with precondition checks, bounded retry and
// structured error classification.
type Saver struct {
	store          ProfileStore
	maxAttempts    int
	baseDelay      time.Duration
	attemptTimeout time.Duration
}

// NewSaver creates a Saver with the default retry policy.
func NewSaver(st ProfileStore) *Saver {
	return &Saver{
		store:          st,
		maxAttempts:    DefaultMaxAttempts,
		baseDelay:      DefaultBaseDelay,
		attemptTimeout: DefaultAttemptTimeout,
	}
}

// SetRetryPolicy overrides attempts and backoff base. Test hook to keep
// retry tests fast.
func (s *Saver) SetRetryPolicy(maxAttempts int, baseDelay, attemptTimeout time.Duration) {
	s.maxAttempts = maxAttempts
	s.baseDelay = baseDelay
	s.attemptTimeout = attemptTimeout
}

// Save persists the record. Malformed email fails immediately without
// touching the store; transient failures are retried with exponential
// backoff plus jitter; classified terminal failures return at once.
func (s *Saver) Save(ctx context.Context, rec models.ProfileRecord) SaveResult {
	if !validation.Validate(rec.Email, models.HintEmail) {
		slog.Warn("Saver.Save: rejecting record with missing or malformed email")
		return SaveResult{Success: false, Error: "profile email is missing or invalid"}
	}

	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, s.attemptTimeout)
		err := s.store.SaveProfile(attemptCtx, rec)
		cancel()
		if err == nil {
			slog.Info("Saver.Save: profile persisted", "attempt", attempt, "path", rec.RecommendedPath)
			return SaveResult{Success: true}
		}
		lastErr = err

		if errors.Is(err, ErrProfileExists) {
			slog.Warn("Saver.Save: profile already exists, not retrying")
			return SaveResult{Success: false, Error: "a profile with this email already exists"}
		}
		if errors.Is(err, ErrSchemaMissing) {
			slog.Error("Saver.Save: schema error, not retrying", "error", err)
			return SaveResult{Success: false, Error: "profile storage is misconfigured"}
		}

		class := classifyTransient(err)
		slog.Warn("Saver.Save: attempt failed", "attempt", attempt, "max_attempts", s.maxAttempts, "class", class, "error", err)

		if attempt < s.maxAttempts {
			delay := s.backoff(attempt)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				slog.Warn("Saver.Save: context cancelled during backoff", "error", ctx.Err())
				return SaveResult{Success: false, Error: "save cancelled"}
			}
		}
	}

	slog.Error("Saver.Save: all attempts exhausted", "attempts", s.maxAttempts, "error", lastErr)
	return SaveResult{Success: false, Error: "failed to save profile after repeated attempts"}
}

// backoff computes the delay before the next attempt: base * 2^(attempt-1)
// scaled by a random factor in [0.9, 1.1].
func (s *Saver) backoff(attempt int) time.Duration {
	delay := s.baseDelay << (attempt - 1)
	jitter := 0.9 + rand.Float64()*0.2
	return time.Duration(float64(delay) * jitter)
}

// classifyTransient labels a retryable failure for logging. DNS and
// connectivity errors are recorded distinctly even though they share the
// retry loop.
func classifyTransient(err error) string {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return "dns"
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return "connectivity"
	}
	if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "timeout") {
		return "timeout"
	}
	return "transient"
}
