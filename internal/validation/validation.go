// Package validation implements the per-hint input validators used to decide
// whether a raw answer is accepted, reprompted, or (for email) halts the flow.
//
// Validators never mutate state and never return errors; absence of a rule is
// treated as acceptance.
package validation

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/andromedaprotocol/community-onboarding/internal/models"
)

var validate = validator.New()

// Handle format constraints per platform. GitHub forbids a leading hyphen;
// Telegram requires 5-32 characters, X at most 15. A leading @ is tolerated
// for Telegram and X handles.
var (
	githubUsernameRe = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]{0,38}$`)
	telegramHandleRe = regexp.MustCompile(`^@?[a-zA-Z0-9_]{5,32}$`)
	xHandleRe        = regexp.MustCompile(`^@?[a-zA-Z0-9_]{1,15}$`)
)

// Validate reports whether raw satisfies the validator selected by hint.
// The handle hints describe optional fields, so empty input is valid for
// them; email is the only hint that rejects empty input.
func Validate(raw string, hint models.ValidationHint) bool {
	trimmed := strings.TrimSpace(raw)
	switch hint {
	case models.HintEmail:
		return validate.Var(trimmed, "required,email") == nil
	case models.HintGitHubUsername:
		return trimmed == "" || githubUsernameRe.MatchString(trimmed)
	case models.HintTelegramHandle:
		return trimmed == "" || telegramHandleRe.MatchString(trimmed)
	case models.HintXHandle:
		return trimmed == "" || xHandleRe.MatchString(trimmed)
	default:
		// No rule registered for the hint means acceptance.
		return true
	}
}
