package questionnaire

import (
	"testing"

	"github.com/andromedaprotocol/community-onboarding/internal/models"
)

func TestDefaultCatalogShape(t *testing.T) {
	c := Default()
	if c.TotalCount() != 14 {
		t.Fatalf("expected 14 questions, got %d", c.TotalCount())
	}
	for i := 0; i < c.TotalCount(); i++ {
		q := c.Get(i)
		if q == nil {
			t.Fatalf("missing question at index %d", i)
		}
		if q.Index != i {
			t.Errorf("question at position %d carries index %d", i, q.Index)
		}
		if q.Text == "" {
			t.Errorf("question %d has no text", i)
		}
		if _, ok := map[models.InputMode]bool{
			models.InputModeText:            true,
			models.InputModeButtons:         true,
			models.InputModeConditionalText: true,
		}[q.InputMode]; !ok {
			t.Errorf("question %d has unknown input mode %q", i, q.InputMode)
		}
	}
}

func TestGetOutOfRange(t *testing.T) {
	c := Default()
	if c.Get(-1) != nil {
		t.Error("negative index should return nil")
	}
	if c.Get(c.TotalCount()) != nil {
		t.Error("index == N should return nil")
	}
}

func TestIsFinal(t *testing.T) {
	c := Default()
	if c.IsFinal(0) {
		t.Error("first question is not final")
	}
	if !c.IsFinal(c.TotalCount() - 1) {
		t.Error("last question should be final")
	}
}

func TestNewNormalizesIndices(t *testing.T) {
	c, err := New([]models.Question{
		{Index: 99, Text: "a", InputMode: models.InputModeText},
		{Index: -5, Text: "b", InputMode: models.InputModeText},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Get(0).Index != 0 || c.Get(1).Index != 1 {
		t.Error("indices should be normalized to positions")
	}
}

func TestNewRejectsEmpty(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Error("expected error for empty catalog")
	}
}

func TestEmailQuestionHasRepromptAndHint(t *testing.T) {
	c := Default()
	var found bool
	for i := 0; i < c.TotalCount(); i++ {
		q := c.Get(i)
		if q.ValidationHint == models.HintEmail {
			found = true
			if q.RePromptMessage == "" {
				t.Error("email question must define a reprompt message")
			}
		}
	}
	if !found {
		t.Error("catalog must contain an email question")
	}
}
