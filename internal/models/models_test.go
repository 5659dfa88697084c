package models

import (
	"encoding/json"
	"testing"
)

func TestAnswerUnmarshalText(t *testing.T) {
	var a Answer
	if err := json.Unmarshal([]byte(`"ada@example.com"`), &a); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if a.Kind != AnswerText {
		t.Errorf("expected kind %s, got %s", AnswerText, a.Kind)
	}
	if a.Text != "ada@example.com" {
		t.Errorf("unexpected text: %q", a.Text)
	}
}

func TestAnswerUnmarshalList(t *testing.T) {
	var a Answer
	if err := json.Unmarshal([]byte(`["Rust","Go"]`), &a); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if a.Kind != AnswerList {
		t.Errorf("expected kind %s, got %s", AnswerList, a.Kind)
	}
	if len(a.Values) != 2 || a.Values[0] != "Rust" {
		t.Errorf("unexpected values: %v", a.Values)
	}
}

func TestAnswerUnmarshalButton(t *testing.T) {
	var a Answer
	if err := json.Unmarshal([]byte(`{"buttonValue":"Yes","selectedValues":["Cosmos"]}`), &a); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if a.Kind != AnswerButton {
		t.Errorf("expected kind %s, got %s", AnswerButton, a.Kind)
	}
	if a.ButtonValue != "Yes" {
		t.Errorf("unexpected button value: %q", a.ButtonValue)
	}
	if len(a.SelectedValues) != 1 || a.SelectedValues[0] != "Cosmos" {
		t.Errorf("unexpected selected values: %v", a.SelectedValues)
	}
}

func TestAnswerUnmarshalNull(t *testing.T) {
	var a Answer
	if err := json.Unmarshal([]byte(`null`), &a); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if a.Kind != AnswerNone {
		t.Errorf("expected kind %s, got %s", AnswerNone, a.Kind)
	}
}

func TestAnswerUnmarshalRejectsOtherShapes(t *testing.T) {
	cases := []string{`42`, `true`, `[1,2]`}
	for _, raw := range cases {
		var a Answer
		if err := json.Unmarshal([]byte(raw), &a); err == nil {
			t.Errorf("expected error for %s", raw)
		}
	}
}

func TestAnswerRoundTrip(t *testing.T) {
	original := Answer{Kind: AnswerButton, ButtonValue: "Yes", SelectedValues: []string{"Ethereum"}}
	raw, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var decoded Answer
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded.ButtonValue != original.ButtonValue {
		t.Errorf("round trip lost button value: %q", decoded.ButtonValue)
	}
}

func TestFreeText(t *testing.T) {
	var nilAnswer *Answer
	if got := nilAnswer.FreeText(); got != "" {
		t.Errorf("nil answer should yield empty text, got %q", got)
	}
	button := &Answer{Kind: AnswerButton, ButtonValue: "Advanced"}
	if got := button.FreeText(); got != "Advanced" {
		t.Errorf("expected button value, got %q", got)
	}
	list := &Answer{Kind: AnswerList, Values: []string{"a", "b"}}
	if got := list.FreeText(); got != "" {
		t.Errorf("list answer has no single textual form, got %q", got)
	}
}

func TestNewProfileRecordRenamesAndNormalizes(t *testing.T) {
	p := Profile{
		Email:     "ada@example.com",
		X:         "@ada",
		Hackathon: nil,
	}
	rec := NewProfileRecord(p)
	if rec.XHandle != "@ada" {
		t.Errorf("expected x renamed to x_handle, got %q", rec.XHandle)
	}
	if rec.Hackathon != nil {
		t.Errorf("empty hackathon should stay nil, got %v", rec.Hackathon)
	}

	p.Hackathon = []string{"Web3"}
	rec = NewProfileRecord(p)
	if len(rec.Hackathon) != 1 || rec.Hackathon[0] != "Web3" {
		t.Errorf("unexpected hackathon: %v", rec.Hackathon)
	}
}

func TestInReprompt(t *testing.T) {
	s := SessionState{}
	if s.InReprompt(0) {
		t.Error("fresh state should not be in reprompt")
	}
	idx := 3
	s.RepromptedIndex = &idx
	if !s.InReprompt(3) {
		t.Error("expected reprompt at index 3")
	}
	if s.InReprompt(4) {
		t.Error("reprompt should only match its own index")
	}
}
