// Package models defines the core data structures for the onboarding wizard.
//
// It includes question definitions, session state, the accumulated profile,
// and the wire types shared between the API layer and the conversation flow.
package models

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// InputMode defines how a question expects its answer to be shaped.
type InputMode string

const (
	// InputModeText expects a free-form text answer.
	InputModeText InputMode = "text"
	// InputModeButtons expects one (or, with IsMultiSelect, several) of the
	// question's option values.
	InputModeButtons InputMode = "buttons"
	// InputModeConditionalText expects a button value plus an additional
	// free-text field when the chosen value equals the trigger value.
	InputModeConditionalText InputMode = "conditionalText"
)

// ValidationHint selects the validator applied to a raw answer.
type ValidationHint string

const (
	// HintNone skips validation entirely.
	HintNone ValidationHint = ""
	// HintEmail requires a syntactically valid email address.
	HintEmail ValidationHint = "email"
	// HintGitHubUsername allows empty input or a valid GitHub username.
	HintGitHubUsername ValidationHint = "github_username"
	// HintTelegramHandle allows empty input or a valid Telegram handle.
	HintTelegramHandle ValidationHint = "telegram_handle"
	// HintXHandle allows empty input or a valid X (Twitter) handle.
	HintXHandle ValidationHint = "x_handle"
)

// ParserKind selects the response parser registered for a question.
type ParserKind string

const (
	// ParserText stores a trimmed string into the question's profile field.
	ParserText ParserKind = "text"
	// ParserButton stores a single button value into the profile field.
	ParserButton ParserKind = "button"
	// ParserMultiSelect stores the selected values as a list.
	ParserMultiSelect ParserKind = "multi_select"
	// ParserLanguages filters answers against the recognized language list.
	ParserLanguages ParserKind = "languages"
	// ParserBlockchain splits the answer into experience and platforms.
	ParserBlockchain ParserKind = "blockchain"
	// ParserAI derives AI experience and areas from the answer shape.
	ParserAI ParserKind = "ai"
	// ParserConditionalText stores the conditional free-text field when the
	// trigger value was chosen.
	ParserConditionalText ParserKind = "conditional_text"
)

// Option is a selectable button presented with a question.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Question is an immutable catalog entry. Index doubles as the canonical
// question identifier; the catalog guarantees indices are contiguous 0..N-1.
type Question struct {
	Index                     int            `json:"index"`
	Text                      string         `json:"text"`
	InputMode                 InputMode      `json:"inputMode"`
	Options                   []Option       `json:"options,omitempty"`
	IsMultiSelect             bool           `json:"isMultiSelect,omitempty"`
	ConditionalTriggerValue   string         `json:"conditionalTriggerValue,omitempty"`
	ConditionalTextInputLabel string         `json:"conditionalTextInputLabel,omitempty"`
	ValidationHint            ValidationHint `json:"validationHint,omitempty"`
	RePromptMessage           string         `json:"rePromptMessage,omitempty"`
	Parser                    ParserKind     `json:"parser,omitempty"`
	Field                     string         `json:"field,omitempty"`
}

// Profile field names used by Question.Field for the simple parsers.
const (
	FieldName             = "name"
	FieldEmail            = "email"
	FieldTelegram         = "telegram"
	FieldGitHub           = "github"
	FieldX                = "x"
	FieldToolsFamiliarity = "tools_familiarity"
	FieldExperienceLevel  = "experience_level"
	FieldHackathon        = "hackathon"
	FieldGoal             = "goal"
	FieldPortfolio        = "portfolio"
	FieldAdditionalSkills = "additional_skills"
)

// Goal enum values referenced by the path determination rules.
const (
	GoalBuildApps    = "Build apps/dApps"
	GoalEarnBounties = "Earn bounties"
	GoalShareIdeas   = "Share ideas for new features"
	GoalAIProjects   = "Work on AI projects"
	GoalPromote      = "Promote blockchain/Andromeda"
	GoalLearnBasics  = "Learn Web3 basics"
)

// Experience level enum values.
const (
	LevelBeginner     = "Beginner"
	LevelIntermediate = "Intermediate"
	LevelAdvanced     = "Advanced"
)

// Tools familiarity enum values.
const (
	ToolsVeryFamiliar   = "Very familiar"
	ToolsSomeExperience = "Some experience"
	ToolsHeardOfThem    = "Heard of them"
	ToolsNotFamiliar    = "Not familiar"
)

// Profile is the accumulated onboarding data built up across the conversation.
// Parsers mutate it one question at a time; derived fields are set only at
// completion.
type Profile struct {
	Name                 string   `json:"name,omitempty"`
	Email                string   `json:"email,omitempty"`
	Telegram             string   `json:"telegram,omitempty"`
	GitHub               string   `json:"github,omitempty"`
	X                    string   `json:"x,omitempty"`
	Languages            []string `json:"languages"`
	BlockchainExperience string   `json:"blockchain_experience,omitempty"`
	BlockchainPlatforms  []string `json:"blockchain_platforms,omitempty"`
	AIExperience         string   `json:"ai_experience,omitempty"`
	AIMLAreas            string   `json:"ai_ml_areas,omitempty"`
	ToolsFamiliarity     string   `json:"tools_familiarity,omitempty"`
	ExperienceLevel      string   `json:"experience_level,omitempty"`
	Hackathon            []string `json:"hackathon,omitempty"`
	Goal                 string   `json:"goal,omitempty"`
	Portfolio            string   `json:"portfolio,omitempty"`
	AdditionalSkills     string   `json:"additional_skills,omitempty"`

	RecommendedPath    string    `json:"recommended_path,omitempty"`
	RecommendedPathURL string    `json:"recommended_path_url,omitempty"`
	CreatedAt          time.Time `json:"created_at,omitzero"`
}

// SessionState is the mutable per-conversation record kept in the session
// store between turns. There is no in-process conversation object; this is
// everything needed to resume.
type SessionState struct {
	QuestionIndex   int       `json:"question_index"`
	Accumulated     Profile   `json:"accumulated_data"`
	RepromptedIndex *int      `json:"reprompted_index,omitempty"`
	LastInteraction time.Time `json:"last_interaction"`
}

// InReprompt reports whether the question at index is in its one-shot
// reprompt state.
func (s *SessionState) InReprompt(index int) bool {
	return s.RepromptedIndex != nil && *s.RepromptedIndex == index
}

// ProfileRecord is the flattened, column-shaped projection of a completed
// Profile handed to the persistence layer. One record per unique email.
type ProfileRecord struct {
	Name                 string    `json:"name,omitempty"`
	Email                string    `json:"email"`
	Telegram             string    `json:"telegram,omitempty"`
	GitHub               string    `json:"github,omitempty"`
	XHandle              string    `json:"x_handle,omitempty"`
	Languages            []string  `json:"languages,omitempty"`
	BlockchainExperience string    `json:"blockchain_experience,omitempty"`
	BlockchainPlatforms  []string  `json:"blockchain_platforms,omitempty"`
	AIExperience         string    `json:"ai_experience,omitempty"`
	AIMLAreas            string    `json:"ai_ml_areas,omitempty"`
	ToolsFamiliarity     string    `json:"tools_familiarity,omitempty"`
	ExperienceLevel      string    `json:"experience_level,omitempty"`
	Hackathon            []string  `json:"hackathon,omitempty"`
	Goal                 string    `json:"goal,omitempty"`
	Portfolio            string    `json:"portfolio,omitempty"`
	AdditionalSkills     string    `json:"additional_skills,omitempty"`
	RecommendedPath      string    `json:"recommended_path,omitempty"`
	RecommendedPathURL   string    `json:"recommended_path_url,omitempty"`
	CreatedAt            time.Time `json:"created_at,omitzero"`
}

// NewProfileRecord flattens a completed Profile into its persisted shape.
// It renames x to x_handle and normalizes hackathon to array-or-nil.
func NewProfileRecord(p Profile) ProfileRecord {
	rec := ProfileRecord{
		Name:                 p.Name,
		Email:                p.Email,
		Telegram:             p.Telegram,
		GitHub:               p.GitHub,
		XHandle:              p.X,
		Languages:            p.Languages,
		BlockchainExperience: p.BlockchainExperience,
		BlockchainPlatforms:  p.BlockchainPlatforms,
		AIExperience:         p.AIExperience,
		AIMLAreas:            p.AIMLAreas,
		ToolsFamiliarity:     p.ToolsFamiliarity,
		ExperienceLevel:      p.ExperienceLevel,
		Goal:                 p.Goal,
		Portfolio:            p.Portfolio,
		AdditionalSkills:     p.AdditionalSkills,
		RecommendedPath:      p.RecommendedPath,
		RecommendedPathURL:   p.RecommendedPathURL,
		CreatedAt:            p.CreatedAt,
	}
	if len(p.Hackathon) > 0 {
		rec.Hackathon = p.Hackathon
	}
	return rec
}

// AnswerKind discriminates the wire shapes a raw answer can take.
type AnswerKind string

const (
	// AnswerNone marks an absent or null answer.
	AnswerNone AnswerKind = "none"
	// AnswerText marks a plain string answer.
	AnswerText AnswerKind = "text"
	// AnswerList marks an array-of-strings answer.
	AnswerList AnswerKind = "list"
	// AnswerButton marks a {buttonValue, selectedValues?} answer.
	AnswerButton AnswerKind = "button"
)

// ErrMalformedAnswer is returned when a request's response field matches none
// of the supported shapes.
var ErrMalformedAnswer = errors.New("response must be a string, an array of strings, or a button selection object")

// Answer is the tagged union for the multi-shape response field. The JSON
// shape is the discriminator: string, array of strings, or an object carrying
// a button value with optional selected values.
type Answer struct {
	Kind           AnswerKind
	Text           string
	Values         []string
	ButtonValue    string
	SelectedValues []string
}

type buttonAnswer struct {
	ButtonValue    string   `json:"buttonValue"`
	SelectedValues []string `json:"selectedValues,omitempty"`
}

// UnmarshalJSON decodes the answer union from its wire shape.
func (a *Answer) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*a = Answer{Kind: AnswerNone}
		return nil
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return ErrMalformedAnswer
		}
		*a = Answer{Kind: AnswerText, Text: s}
		return nil
	case '[':
		var vals []string
		if err := json.Unmarshal(data, &vals); err != nil {
			return ErrMalformedAnswer
		}
		*a = Answer{Kind: AnswerList, Values: vals}
		return nil
	case '{':
		var b buttonAnswer
		if err := json.Unmarshal(data, &b); err != nil {
			return ErrMalformedAnswer
		}
		*a = Answer{Kind: AnswerButton, ButtonValue: b.ButtonValue, SelectedValues: b.SelectedValues}
		return nil
	}
	return ErrMalformedAnswer
}

// MarshalJSON re-encodes the union into its wire shape.
func (a Answer) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case AnswerText:
		return json.Marshal(a.Text)
	case AnswerList:
		return json.Marshal(a.Values)
	case AnswerButton:
		return json.Marshal(buttonAnswer{ButtonValue: a.ButtonValue, SelectedValues: a.SelectedValues})
	default:
		return []byte("null"), nil
	}
}

// FreeText returns the textual content of the answer for validation purposes.
// Button answers validate their button value; list answers have no single
// textual form and return empty.
func (a *Answer) FreeText() string {
	if a == nil {
		return ""
	}
	switch a.Kind {
	case AnswerText:
		return a.Text
	case AnswerButton:
		return a.ButtonValue
	default:
		return ""
	}
}
