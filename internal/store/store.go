// Package store provides durable storage backends for completed onboarding
// profiles.
//
// It includes PostgreSQL and SQLite backends selected by DSN shape, plus an
// in-memory store for tests, and a Saver that adds bounded retry with
// exponential backoff on top of any backend.
package store

import (
	"context"
	"errors"
	"strings"

	"github.com/andromedaprotocol/community-onboarding/internal/models"
)

// Classified persistence failures. These are terminal: retrying cannot fix a
// duplicate email or a missing table.
var (
	// ErrProfileExists marks a unique-constraint violation on email.
	ErrProfileExists = errors.New("profile already exists for this email")
	// ErrSchemaMissing marks an undefined-table or comparable schema error.
	ErrSchemaMissing = errors.New("profiles table not found")
)

// ProfileStore persists completed onboarding profiles, one row per unique
// email.
type ProfileStore interface {
	SaveProfile(ctx context.Context, rec models.ProfileRecord) error
	Close() error
}

// Opts holds configuration options for store backends.
type Opts struct {
	DSN string
}

// Option configures a store backend.
type Option func(*Opts)

// WithDSN sets the database DSN (PostgreSQL URL or SQLite file path).
func WithDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// DetectDSNType reports "postgres" for PostgreSQL-shaped DSNs and "sqlite"
// for anything else (file paths).
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite"
}

// NewFromDSN opens the backend matching the DSN shape.
func NewFromDSN(dsn string) (ProfileStore, error) {
	if DetectDSNType(dsn) == "postgres" {
		return NewPostgresStore(WithDSN(dsn))
	}
	return NewSQLiteStore(WithDSN(dsn))
}
