// Package parsing converts raw answers into typed profile fields.
//
// One parser is registered per question category. Parsers are pure apart
// from mutating the profile passed to them; none perform I/O. Every parser
// tolerates a nil answer (graceful degradation after repeated validation
// failures writes a null value rather than blocking the flow).
package parsing

import (
	"log/slog"
	"strings"

	"github.com/andromedaprotocol/community-onboarding/internal/models"
)

// Func applies one answer to the accumulated profile. The question supplies
// the target field and conditional-text metadata.
type Func func(answer *models.Answer, conditionalText string, q models.Question, p *models.Profile)

var registry = map[models.ParserKind]Func{
	models.ParserText:            parseText,
	models.ParserButton:          parseButton,
	models.ParserMultiSelect:     parseMultiSelect,
	models.ParserLanguages:       parseLanguages,
	models.ParserBlockchain:      parseBlockchain,
	models.ParserAI:              parseAI,
	models.ParserConditionalText: parseConditionalText,
}

// Get returns the parser registered for the given kind.
func Get(kind models.ParserKind) (Func, bool) {
	f, ok := registry[kind]
	return f, ok
}

// recognizedLanguages is the fixed whitelist for the languages question.
// Unrecognized values are dropped, not surfaced as user errors.
var recognizedLanguages = map[string]bool{
	"JavaScript": true,
	"TypeScript": true,
	"Python":     true,
	"Rust":       true,
	"Solidity":   true,
	"Go":         true,
	"Java":       true,
	"C++":        true,
}

// setField writes a simple string value into the profile field named by the
// catalog entry. Empty strings clear the field.
func setField(p *models.Profile, field, value string) {
	switch field {
	case models.FieldName:
		p.Name = value
	case models.FieldEmail:
		p.Email = value
	case models.FieldTelegram:
		p.Telegram = value
	case models.FieldGitHub:
		p.GitHub = value
	case models.FieldX:
		p.X = value
	case models.FieldToolsFamiliarity:
		p.ToolsFamiliarity = value
	case models.FieldExperienceLevel:
		p.ExperienceLevel = value
	case models.FieldGoal:
		p.Goal = value
	case models.FieldPortfolio:
		p.Portfolio = value
	case models.FieldAdditionalSkills:
		p.AdditionalSkills = value
	default:
		slog.Warn("parsing.setField: unknown profile field", "field", field)
	}
}

func parseText(answer *models.Answer, _ string, q models.Question, p *models.Profile) {
	value := ""
	if answer != nil {
		value = strings.TrimSpace(answer.FreeText())
	}
	setField(p, q.Field, value)
}

func parseButton(answer *models.Answer, _ string, q models.Question, p *models.Profile) {
	value := ""
	if answer != nil {
		value = strings.TrimSpace(answer.ButtonValue)
	}
	setField(p, q.Field, value)
}

func parseMultiSelect(answer *models.Answer, _ string, q models.Question, p *models.Profile) {
	var values []string
	if answer != nil {
		switch answer.Kind {
		case models.AnswerList:
			values = answer.Values
		case models.AnswerButton:
			if len(answer.SelectedValues) > 0 {
				values = answer.SelectedValues
			} else if answer.ButtonValue != "" {
				values = []string{answer.ButtonValue}
			}
		}
	}
	if q.Field == models.FieldHackathon {
		p.Hackathon = values
		return
	}
	slog.Warn("parsing.parseMultiSelect: unexpected field", "field", q.Field)
}

// parseLanguages accepts an array, a single button value, or a plain string
// and filters against the recognized language whitelist. It always writes a
// slice, possibly empty, so the field is never left undefined.
func parseLanguages(answer *models.Answer, _ string, _ models.Question, p *models.Profile) {
	var candidates []string
	if answer != nil {
		switch answer.Kind {
		case models.AnswerList:
			candidates = answer.Values
		case models.AnswerButton:
			if len(answer.SelectedValues) > 0 {
				candidates = answer.SelectedValues
			} else if answer.ButtonValue != "" {
				candidates = []string{answer.ButtonValue}
			}
		case models.AnswerText:
			if trimmed := strings.TrimSpace(answer.Text); trimmed != "" {
				candidates = []string{trimmed}
			}
		}
	}
	languages := make([]string, 0, len(candidates))
	for _, c := range candidates {
		trimmed := strings.TrimSpace(c)
		if recognizedLanguages[trimmed] {
			languages = append(languages, trimmed)
			continue
		}
		if trimmed != "" {
			slog.Debug("parsing.parseLanguages: dropping unrecognized language", "value", trimmed)
		}
	}
	p.Languages = languages
}

// parseBlockchain resets both blockchain fields on every call so re-entry is
// idempotent, then splits the answer into experience and platforms.
func parseBlockchain(answer *models.Answer, _ string, _ models.Question, p *models.Profile) {
	p.BlockchainExperience = ""
	p.BlockchainPlatforms = nil
	if answer == nil {
		return
	}
	switch answer.Kind {
	case models.AnswerButton:
		if answer.ButtonValue == "" {
			return
		}
		p.BlockchainExperience = answer.ButtonValue
		if len(answer.SelectedValues) > 0 {
			p.BlockchainPlatforms = answer.SelectedValues
		} else {
			p.BlockchainPlatforms = []string{answer.ButtonValue}
		}
	case models.AnswerList:
		// Alternate call shape: the array is the platforms list itself.
		if len(answer.Values) > 0 {
			p.BlockchainPlatforms = answer.Values
		}
	}
}

// parseAI treats a non-empty array as evidence of experience; a bare button
// value is stored verbatim. Anything else leaves both fields unset.
func parseAI(answer *models.Answer, _ string, _ models.Question, p *models.Profile) {
	if answer == nil {
		return
	}
	switch answer.Kind {
	case models.AnswerList:
		if len(answer.Values) > 0 {
			p.AIExperience = "Yes"
			p.AIMLAreas = strings.Join(answer.Values, ", ")
		}
	case models.AnswerButton:
		if len(answer.SelectedValues) > 0 {
			p.AIExperience = "Yes"
			p.AIMLAreas = strings.Join(answer.SelectedValues, ", ")
		} else if answer.ButtonValue != "" {
			p.AIExperience = answer.ButtonValue
		}
	}
}

// parseConditionalText stores the conditional free-text field when the chosen
// button equals the question's trigger value.
func parseConditionalText(answer *models.Answer, conditionalText string, q models.Question, p *models.Profile) {
	value := ""
	if answer != nil && answer.ButtonValue == q.ConditionalTriggerValue {
		value = strings.TrimSpace(conditionalText)
	}
	setField(p, q.Field, value)
}
