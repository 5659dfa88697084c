// This file implements the SQLite-backed profile store.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "embed"

	"github.com/mattn/go-sqlite3"

	"github.com/andromedaprotocol/community-onboarding/internal/models"
)

// DefaultDirPermissions defines the permissions for database directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore persists profiles in a local SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN. The DSN is a
// file path; missing directories are created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "dsn_set", cfg.DSN != "")
	if cfg.DSN == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(cfg.DSN)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.DSN)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run SQLite migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")
	return &SQLiteStore{db: db}, nil
}

// SaveProfile inserts a completed profile, mapping constraint and schema
// failures to their sentinel errors.
func (s *SQLiteStore) SaveProfile(ctx context.Context, rec models.ProfileRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO onboarding_profiles (
			name, email, telegram, github, x_handle,
			languages, blockchain_experience, blockchain_platforms,
			ai_experience, ai_ml_areas, tools_familiarity, experience_level,
			hackathon, goal, portfolio, additional_skills,
			recommended_path, recommended_path_url, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nilIfEmpty(rec.Name), rec.Email, nilIfEmpty(rec.Telegram), nilIfEmpty(rec.GitHub), nilIfEmpty(rec.XHandle),
		marshalList(rec.Languages), nilIfEmpty(rec.BlockchainExperience), marshalList(rec.BlockchainPlatforms),
		nilIfEmpty(rec.AIExperience), nilIfEmpty(rec.AIMLAreas), nilIfEmpty(rec.ToolsFamiliarity), nilIfEmpty(rec.ExperienceLevel),
		marshalList(rec.Hackathon), nilIfEmpty(rec.Goal), nilIfEmpty(rec.Portfolio), nilIfEmpty(rec.AdditionalSkills),
		nilIfEmpty(rec.RecommendedPath), nilIfEmpty(rec.RecommendedPathURL), recordTime(rec.CreatedAt),
	)
	if err != nil {
		classified := classifySQLiteError(err)
		slog.Error("SQLiteStore.SaveProfile failed", "error", err, "classified", classified != nil)
		if classified != nil {
			return classified
		}
		return fmt.Errorf("failed to insert profile: %w", err)
	}
	slog.Debug("SQLiteStore.SaveProfile succeeded", "path", rec.RecommendedPath)
	return nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func classifySQLiteError(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		if sqliteErr.Code == sqlite3.ErrConstraint {
			return fmt.Errorf("%w: %v", ErrProfileExists, err)
		}
	}
	if strings.Contains(err.Error(), "no such table") {
		return fmt.Errorf("%w: %v", ErrSchemaMissing, err)
	}
	return nil
}
