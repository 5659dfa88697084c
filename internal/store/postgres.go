// This file implements the PostgreSQL-backed profile store.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/lib/pq"

	"github.com/andromedaprotocol/community-onboarding/internal/models"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

// PostgreSQL error codes relevant to profile persistence.
const (
	pgUniqueViolation = "23505"
	pgUndefinedTable  = "42P01"
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresStore persists profiles in PostgreSQL via lib/pq.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("PostgresStore.NewPostgresStore: creating Postgres store", "dsn_set", cfg.DSN != "")
	if cfg.DSN == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}
	slog.Debug("Postgres ping successful")

	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run Postgres migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres migrations applied successfully")
	return &PostgresStore{db: db}, nil
}

// SaveProfile inserts a completed profile. Unique-email and missing-table
// failures are mapped to their sentinel errors for the Saver's
// classification.
func (s *PostgresStore) SaveProfile(ctx context.Context, rec models.ProfileRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO onboarding_profiles (
			name, email, telegram, github, x_handle,
			languages, blockchain_experience, blockchain_platforms,
			ai_experience, ai_ml_areas, tools_familiarity, experience_level,
			hackathon, goal, portfolio, additional_skills,
			recommended_path, recommended_path_url, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		nilIfEmpty(rec.Name), rec.Email, nilIfEmpty(rec.Telegram), nilIfEmpty(rec.GitHub), nilIfEmpty(rec.XHandle),
		marshalList(rec.Languages), nilIfEmpty(rec.BlockchainExperience), marshalList(rec.BlockchainPlatforms),
		nilIfEmpty(rec.AIExperience), nilIfEmpty(rec.AIMLAreas), nilIfEmpty(rec.ToolsFamiliarity), nilIfEmpty(rec.ExperienceLevel),
		marshalList(rec.Hackathon), nilIfEmpty(rec.Goal), nilIfEmpty(rec.Portfolio), nilIfEmpty(rec.AdditionalSkills),
		nilIfEmpty(rec.RecommendedPath), nilIfEmpty(rec.RecommendedPathURL), recordTime(rec.CreatedAt),
	)
	if err != nil {
		classified := classifyPostgresError(err)
		slog.Error("PostgresStore.SaveProfile failed", "error", err, "classified", classified != nil)
		if classified != nil {
			return classified
		}
		return fmt.Errorf("failed to insert profile: %w", err)
	}
	slog.Debug("PostgresStore.SaveProfile succeeded", "path", rec.RecommendedPath)
	return nil
}

// GetProfileByEmail returns the stored path fields for an email, or nil when
// no row exists. Used by tests and the health surface.
func (s *PostgresStore) GetProfileByEmail(ctx context.Context, email string) (*models.ProfileRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT email, recommended_path, recommended_path_url FROM onboarding_profiles WHERE email = $1`, email)
	var rec models.ProfileRecord
	var path, url sql.NullString
	if err := row.Scan(&rec.Email, &path, &url); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}
	rec.RecommendedPath = path.String
	rec.RecommendedPathURL = url.String
	return &rec, nil
}

// Close releases the database handle.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func classifyPostgresError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}
	switch string(pqErr.Code) {
	case pgUniqueViolation:
		return fmt.Errorf("%w: %v", ErrProfileExists, err)
	case pgUndefinedTable:
		return fmt.Errorf("%w: %v", ErrSchemaMissing, err)
	}
	return nil
}
