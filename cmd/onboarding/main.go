package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/andromedaprotocol/community-onboarding/internal/api"
	"github.com/andromedaprotocol/community-onboarding/internal/flow"
	"github.com/andromedaprotocol/community-onboarding/internal/issues"
	"github.com/andromedaprotocol/community-onboarding/internal/pathway"
	"github.com/andromedaprotocol/community-onboarding/internal/questionnaire"
	"github.com/andromedaprotocol/community-onboarding/internal/session"
	"github.com/andromedaprotocol/community-onboarding/internal/store"
	"github.com/andromedaprotocol/community-onboarding/internal/util"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for onboarding state data
	DefaultStateDir = "/var/lib/onboarding"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "onboarding.db"
	// DefaultGitHubOwner/Repo point the issue board at the community repos
	DefaultGitHubOwner = "andromedaprotocol"
	DefaultGitHubRepo  = "andromeda-core"
)

func main() {
	initializeLogger()

	config := loadEnvironmentConfig()
	flags := parseCommandLineFlags(config)

	sessions, err := session.NewRedisStore(
		session.WithAddr(*flags.redisAddr),
		session.WithPassword(*flags.redisPassword),
		session.WithDB(config.RedisDB),
		session.WithTTL(config.SessionTTL),
	)
	if err != nil {
		slog.Error("Failed to connect session store", "error", err)
		os.Exit(1)
	}
	defer sessions.Close()

	profiles, err := store.NewFromDSN(*flags.dbDSN)
	if err != nil {
		slog.Error("Failed to open profile store", "error", err)
		os.Exit(1)
	}
	defer profiles.Close()

	catalog := questionnaire.Default()
	engine := pathway.NewEngine(pathway.DefaultPathURLs)
	controller := flow.NewController(sessions, catalog, engine, store.NewSaver(profiles))
	issuesClient := issues.NewClient(*flags.githubOwner, *flags.githubRepo)

	var apiOpts []api.Option
	if *flags.apiAddr != "" {
		apiOpts = append(apiOpts, api.WithAddr(*flags.apiAddr))
	}
	server := api.NewServer(controller, catalog, issuesClient, apiOpts...)

	slog.Info("Bootstrapping onboarding wizard",
		"questions", catalog.TotalCount(),
		"session_ttl", config.SessionTTL,
		"db_type", store.DetectDSNType(*flags.dbDSN))
	if err := server.Run(); err != nil {
		slog.Error("Onboarding wizard failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("Onboarding wizard exited successfully")
}

// Config holds environment configuration
type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SessionTTL    time.Duration
	DatabaseURL   string
	StateDir      string
	APIAddr       string
	GitHubOwner   string
	GitHubRepo    string
}

// Flags holds command line flag values
type Flags struct {
	redisAddr     *string
	redisPassword *string
	dbDSN         *string
	apiAddr       *string
	githubOwner   *string
	githubRepo    *string
}

// initializeLogger sets up structured logging; debug level is opt-in via
// ONBOARDING_DEBUG.
func initializeLogger() {
	level := slog.LevelInfo
	if util.ParseBoolEnv("ONBOARDING_DEBUG", false) {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       util.ParseIntEnv("REDIS_DB", 0),
		SessionTTL:    util.ParseDurationEnv("SESSION_TTL", session.DefaultTTL),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		StateDir:      os.Getenv("ONBOARDING_STATE_DIR"),
		APIAddr:       os.Getenv("API_ADDR"),
		GitHubOwner:   os.Getenv("GITHUB_OWNER"),
		GitHubRepo:    os.Getenv("GITHUB_REPO"),
	}

	if config.RedisAddr == "" {
		config.RedisAddr = "localhost:6379"
		slog.Debug("No REDIS_ADDR set, using default", "addr", config.RedisAddr)
	}
	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
	}
	// If no database URL is provided, default to SQLite in the state directory
	if config.DatabaseURL == "" {
		config.DatabaseURL = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No database DSN provided, defaulting to SQLite", "sqlite_path", config.DatabaseURL)
	}
	if config.GitHubOwner == "" {
		config.GitHubOwner = DefaultGitHubOwner
	}
	if config.GitHubRepo == "" {
		config.GitHubRepo = DefaultGitHubRepo
	}

	slog.Debug("environment variables loaded",
		"REDIS_ADDR", config.RedisAddr,
		"REDIS_PASSWORD_SET", config.RedisPassword != "",
		"SESSION_TTL", config.SessionTTL,
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"API_ADDR", config.APIAddr,
		"GITHUB_OWNER", config.GitHubOwner,
		"GITHUB_REPO", config.GitHubRepo)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		redisAddr:     flag.String("redis-addr", config.RedisAddr, "Redis address for the session store (overrides $REDIS_ADDR)"),
		redisPassword: flag.String("redis-password", config.RedisPassword, "Redis password (overrides $REDIS_PASSWORD)"),
		dbDSN:         flag.String("db-dsn", config.DatabaseURL, "database DSN for the profile store (overrides $DATABASE_URL)"),
		apiAddr:       flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)"),
		githubOwner:   flag.String("github-owner", config.GitHubOwner, "GitHub owner for the issue board (overrides $GITHUB_OWNER)"),
		githubRepo:    flag.String("github-repo", config.GitHubRepo, "GitHub repository for the issue board (overrides $GITHUB_REPO)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"redisAddr", *flags.redisAddr,
		"dbDSN_set", *flags.dbDSN != "",
		"apiAddr", *flags.apiAddr,
		"githubOwner", *flags.githubOwner,
		"githubRepo", *flags.githubRepo)

	return flags
}
