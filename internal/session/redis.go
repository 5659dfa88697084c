package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/andromedaprotocol/community-onboarding/internal/models"
)

// DefaultKeyPrefix namespaces session keys in Redis.
const DefaultKeyPrefix = "session:"

// dialTimeout bounds the construction-time connectivity check.
const dialTimeout = 5 * time.Second

// Opts holds configuration for the Redis session store.
type Opts struct {
	Addr      string
	Password  string
	DB        int
	TTL       time.Duration
	KeyPrefix string
}

// Option configures the Redis session store.
type Option func(*Opts)

// WithAddr sets the Redis server address (host:port).
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// WithPassword sets the Redis password.
func WithPassword(password string) Option {
	return func(o *Opts) { o.Password = password }
}

// WithDB selects the Redis logical database.
func WithDB(db int) Option {
	return func(o *Opts) { o.DB = db }
}

// WithTTL overrides the sliding session expiration window.
func WithTTL(ttl time.Duration) Option {
	return func(o *Opts) { o.TTL = ttl }
}

// WithKeyPrefix overrides the session key namespace.
func WithKeyPrefix(prefix string) Option {
	return func(o *Opts) { o.KeyPrefix = prefix }
}

// RedisStore keeps session records as JSON values under session:<uuid> keys
// with a TTL that is reset on every write.
type RedisStore struct {
	rdb    *goredis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisStore connects to Redis and verifies connectivity before returning.
func NewRedisStore(opts ...Option) (*RedisStore, error) {
	cfg := Opts{TTL: DefaultTTL, KeyPrefix: DefaultKeyPrefix}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Addr == "" {
		slog.Error("RedisStore address not set")
		return nil, fmt.Errorf("redis address not set")
	}
	slog.Debug("RedisStore.NewRedisStore: connecting", "addr", cfg.Addr, "db", cfg.DB, "ttl", cfg.TTL)

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: dialTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		slog.Error("RedisStore ping failed", "error", err, "addr", cfg.Addr)
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	slog.Debug("RedisStore ping successful", "addr", cfg.Addr)
	return &RedisStore{rdb: rdb, ttl: cfg.TTL, prefix: cfg.KeyPrefix}, nil
}

func (s *RedisStore) key(sessionID string) string {
	return s.prefix + sessionID
}

// Create generates a fresh session id, writes the initial state with the TTL
// started, and returns both.
func (s *RedisStore) Create(ctx context.Context) (string, *models.SessionState, error) {
	sessionID := uuid.NewString()
	state := newInitialState(time.Now().UTC())
	if err := s.write(ctx, sessionID, state); err != nil {
		return "", nil, err
	}
	slog.Debug("RedisStore.Create: session created", "sessionID", sessionID)
	return sessionID, state, nil
}

// Get returns the session state, or nil when the key is missing or expired.
func (s *RedisStore) Get(ctx context.Context, sessionID string) (*models.SessionState, error) {
	raw, err := s.rdb.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		slog.Debug("RedisStore.Get: session not found or expired", "sessionID", sessionID)
		return nil, nil
	}
	if err != nil {
		slog.Error("RedisStore.Get failed", "error", err, "sessionID", sessionID)
		return nil, fmt.Errorf("failed to read session %s: %w", sessionID, err)
	}
	var state models.SessionState
	if err := json.Unmarshal(raw, &state); err != nil {
		slog.Error("RedisStore.Get: corrupt session record", "error", err, "sessionID", sessionID)
		return nil, fmt.Errorf("failed to decode session %s: %w", sessionID, err)
	}
	return &state, nil
}

// Update overwrites the record, stamping the interaction time and resetting
// the TTL so the session's life slides forward.
func (s *RedisStore) Update(ctx context.Context, sessionID string, state *models.SessionState) error {
	state.LastInteraction = time.Now().UTC()
	if err := s.write(ctx, sessionID, state); err != nil {
		return err
	}
	slog.Debug("RedisStore.Update: session updated", "sessionID", sessionID, "questionIndex", state.QuestionIndex)
	return nil
}

// Delete removes the record. Absence of the key is not an error; failures
// are logged, never returned.
func (s *RedisStore) Delete(ctx context.Context, sessionID string) {
	if err := s.rdb.Del(ctx, s.key(sessionID)).Err(); err != nil {
		slog.Warn("RedisStore.Delete failed", "error", err, "sessionID", sessionID)
		return
	}
	slog.Debug("RedisStore.Delete: session deleted", "sessionID", sessionID)
}

// Close releases the underlying Redis connection.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func (s *RedisStore) write(ctx context.Context, sessionID string, state *models.SessionState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return &StoreWriteError{Op: "marshal", Err: err}
	}
	if err := s.rdb.Set(ctx, s.key(sessionID), raw, s.ttl).Err(); err != nil {
		slog.Error("RedisStore.write failed", "error", err, "sessionID", sessionID)
		return &StoreWriteError{Op: "set", Err: err}
	}
	return nil
}
