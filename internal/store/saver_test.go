package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/andromedaprotocol/community-onboarding/internal/models"
)

func fastSaver(st ProfileStore) *Saver {
	s := NewSaver(st)
	s.SetRetryPolicy(3, time.Millisecond, time.Second)
	return s
}

func validRecord(email string) models.ProfileRecord {
	return models.ProfileRecord{
		Email:           email,
		RecommendedPath: "Explorer",
		CreatedAt:       time.Now().UTC(),
	}
}

func TestSaveRejectsMissingEmailWithoutStoreCall(t *testing.T) {
	st := NewInMemoryStore()
	s := fastSaver(st)

	res := s.Save(context.Background(), models.ProfileRecord{})
	if res.Success {
		t.Fatal("expected failure for missing email")
	}
	if st.Count() != 0 {
		t.Error("store must not be touched when the precondition fails")
	}

	res = s.Save(context.Background(), validRecord("not-an-email"))
	if res.Success {
		t.Fatal("expected failure for malformed email")
	}
}

func TestSaveSucceedsFirstAttempt(t *testing.T) {
	st := NewInMemoryStore()
	s := fastSaver(st)

	res := s.Save(context.Background(), validRecord("ada@example.com"))
	if !res.Success {
		t.Fatalf("expected success, got error %q", res.Error)
	}
	if st.Count() != 1 {
		t.Errorf("expected 1 stored profile, got %d", st.Count())
	}
}

func TestSaveRetriesTransientFailures(t *testing.T) {
	st := NewInMemoryStore()
	st.FailNext(fmt.Errorf("connection reset"), 2)
	s := fastSaver(st)

	res := s.Save(context.Background(), validRecord("ada@example.com"))
	if !res.Success {
		t.Fatalf("expected third attempt to succeed, got %q", res.Error)
	}
}

func TestSaveExhaustsRetries(t *testing.T) {
	st := NewInMemoryStore()
	st.FailNext(fmt.Errorf("connection reset"), -1)
	s := fastSaver(st)

	res := s.Save(context.Background(), validRecord("ada@example.com"))
	if res.Success {
		t.Fatal("expected failure after exhausting retries")
	}
	if res.Error == "" {
		t.Error("exhausted save must carry an error string")
	}
}

func TestSaveDuplicateEmailReturnsImmediately(t *testing.T) {
	st := NewInMemoryStore()
	s := fastSaver(st)

	if res := s.Save(context.Background(), validRecord("ada@example.com")); !res.Success {
		t.Fatalf("first save should succeed: %q", res.Error)
	}

	start := time.Now()
	res := s.Save(context.Background(), validRecord("ada@example.com"))
	elapsed := time.Since(start)

	if res.Success {
		t.Fatal("duplicate email must fail")
	}
	if !strings.Contains(res.Error, "already exists") {
		t.Errorf("error should mention already exists, got %q", res.Error)
	}
	// Non-retryable failures return without backoff sleeps.
	if elapsed > 500*time.Millisecond {
		t.Errorf("duplicate failure should be immediate, took %v", elapsed)
	}
}

func TestSaveSchemaErrorNotRetried(t *testing.T) {
	st := NewInMemoryStore()
	st.FailNext(fmt.Errorf("%w: relation does not exist", ErrSchemaMissing), -1)
	s := fastSaver(st)

	res := s.Save(context.Background(), validRecord("ada@example.com"))
	if res.Success {
		t.Fatal("schema errors must fail")
	}
	// FailNext decrements per call; a retried save would have consumed
	// several failures. Reset and verify only one call happened by
	// checking the store is otherwise usable.
	st.FailNext(nil, 0)
	if res2 := s.Save(context.Background(), validRecord("ada@example.com")); !res2.Success {
		t.Fatalf("store should be usable after reset: %q", res2.Error)
	}
}

func TestInMemoryStoreUniqueEmail(t *testing.T) {
	st := NewInMemoryStore()
	ctx := context.Background()

	if err := st.SaveProfile(ctx, validRecord("ada@example.com")); err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	err := st.SaveProfile(ctx, validRecord("ada@example.com"))
	if !errors.Is(err, ErrProfileExists) {
		t.Errorf("expected ErrProfileExists, got %v", err)
	}
}

func TestDetectDSNType(t *testing.T) {
	cases := map[string]string{
		"postgres://u:p@localhost/db":   "postgres",
		"postgresql://u:p@localhost/db": "postgres",
		"host=localhost user=app":       "postgres",
		"/var/lib/onboarding/db.sqlite": "sqlite",
		"onboarding.db":                 "sqlite",
	}
	for dsn, want := range cases {
		if got := DetectDSNType(dsn); got != want {
			t.Errorf("DetectDSNType(%q) = %q, want %q", dsn, got, want)
		}
	}
}
