// Package questionnaire holds the static ordered question catalog for the
// onboarding conversation.
//
// The catalog is pure and stateless; a single instance is shared across all
// sessions. Catalog length is configuration fixed at construction, never
// mutated at runtime.
package questionnaire

import (
	"fmt"

	"github.com/andromedaprotocol/community-onboarding/internal/models"
)

// Catalog is an immutable ordered list of question definitions.
type Catalog struct {
	questions []models.Question
}

// New builds a catalog from an ordered question list. It normalizes each
// question's Index to its position so indices are always contiguous 0..N-1.
func New(questions []models.Question) (*Catalog, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("catalog requires at least one question")
	}
	qs := make([]models.Question, len(questions))
	copy(qs, questions)
	for i := range qs {
		qs[i].Index = i
	}
	return &Catalog{questions: qs}, nil
}

// Get returns the question at index, or nil when index is out of [0, N).
func (c *Catalog) Get(index int) *models.Question {
	if index < 0 || index >= len(c.questions) {
		return nil
	}
	q := c.questions[index]
	return &q
}

// IsFinal reports whether index is the last question of the catalog.
func (c *Catalog) IsFinal(index int) bool {
	return index == len(c.questions)-1
}

// TotalCount returns the fixed total question count.
func (c *Catalog) TotalCount() int {
	return len(c.questions)
}

// Default returns the production onboarding catalog.
func Default() *Catalog {
	c, err := New(defaultQuestions)
	if err != nil {
		// defaultQuestions is a non-empty compile-time list.
		panic(err)
	}
	return c
}

var defaultQuestions = []models.Question{
	{
		Text:      "Welcome to the Andromeda community! What's your name?",
		InputMode: models.InputModeText,
		Parser:    models.ParserText,
		Field:     models.FieldName,
	},
	{
		Text:            "What's your email address? We'll use it to keep in touch.",
		InputMode:       models.InputModeText,
		ValidationHint:  models.HintEmail,
		RePromptMessage: "That doesn't look like a valid email address. Please enter it again (e.g. you@example.com).",
		Parser:          models.ParserText,
		Field:           models.FieldEmail,
	},
	{
		Text:            "What's your Telegram handle? (optional, you can leave this empty)",
		InputMode:       models.InputModeText,
		ValidationHint:  models.HintTelegramHandle,
		RePromptMessage: "Telegram handles are 5-32 letters, digits or underscores, optionally starting with @. Please try again or leave it empty.",
		Parser:          models.ParserText,
		Field:           models.FieldTelegram,
	},
	{
		Text:            "What's your GitHub username? (optional)",
		InputMode:       models.InputModeText,
		ValidationHint:  models.HintGitHubUsername,
		RePromptMessage: "GitHub usernames use letters, digits and hyphens and cannot start with a hyphen. Please try again or leave it empty.",
		Parser:          models.ParserText,
		Field:           models.FieldGitHub,
	},
	{
		Text:            "What's your X (Twitter) handle? (optional)",
		InputMode:       models.InputModeText,
		ValidationHint:  models.HintXHandle,
		RePromptMessage: "X handles are up to 15 letters, digits or underscores, optionally starting with @. Please try again or leave it empty.",
		Parser:          models.ParserText,
		Field:           models.FieldX,
	},
	{
		Text:          "Which programming languages do you work with?",
		InputMode:     models.InputModeButtons,
		IsMultiSelect: true,
		Options: []models.Option{
			{Label: "JavaScript", Value: "JavaScript"},
			{Label: "TypeScript", Value: "TypeScript"},
			{Label: "Python", Value: "Python"},
			{Label: "Rust", Value: "Rust"},
			{Label: "Solidity", Value: "Solidity"},
			{Label: "Go", Value: "Go"},
			{Label: "Java", Value: "Java"},
			{Label: "C++", Value: "C++"},
		},
		Parser: models.ParserLanguages,
	},
	{
		Text:          "Do you have blockchain experience? If yes, select the platforms you've built on.",
		InputMode:     models.InputModeButtons,
		IsMultiSelect: true,
		Options: []models.Option{
			{Label: "Yes", Value: "Yes"},
			{Label: "No", Value: "No"},
			{Label: "Andromeda", Value: "Andromeda"},
			{Label: "Cosmos", Value: "Cosmos"},
			{Label: "Ethereum", Value: "Ethereum"},
			{Label: "Solana", Value: "Solana"},
			{Label: "Bitcoin", Value: "Bitcoin"},
		},
		Parser: models.ParserBlockchain,
	},
	{
		Text:          "Have you worked with AI or machine learning? Select any areas that apply.",
		InputMode:     models.InputModeButtons,
		IsMultiSelect: true,
		Options: []models.Option{
			{Label: "Yes", Value: "Yes"},
			{Label: "No", Value: "No"},
			{Label: "LLMs / agents", Value: "LLMs/agents"},
			{Label: "Computer vision", Value: "Computer vision"},
			{Label: "Classical ML", Value: "Classical ML"},
			{Label: "MLOps", Value: "MLOps"},
		},
		Parser: models.ParserAI,
	},
	{
		Text:      "How familiar are you with Andromeda's developer tools (aOS, ADOs, CLI)?",
		InputMode: models.InputModeButtons,
		Options: []models.Option{
			{Label: "Very familiar", Value: models.ToolsVeryFamiliar},
			{Label: "Some experience", Value: models.ToolsSomeExperience},
			{Label: "Heard of them", Value: models.ToolsHeardOfThem},
			{Label: "Not familiar", Value: models.ToolsNotFamiliar},
		},
		Parser: models.ParserButton,
		Field:  models.FieldToolsFamiliarity,
	},
	{
		Text:      "How would you rate your overall development experience?",
		InputMode: models.InputModeButtons,
		Options: []models.Option{
			{Label: "Beginner", Value: models.LevelBeginner},
			{Label: "Intermediate", Value: models.LevelIntermediate},
			{Label: "Advanced", Value: models.LevelAdvanced},
		},
		Parser: models.ParserButton,
		Field:  models.FieldExperienceLevel,
	},
	{
		Text:          "Have you participated in hackathons?",
		InputMode:     models.InputModeButtons,
		IsMultiSelect: true,
		Options: []models.Option{
			{Label: "I've won one", Value: "Winner"},
			{Label: "Web2 hackathons", Value: "Web2"},
			{Label: "Web3 hackathons", Value: "Web3"},
			{Label: "Not yet", Value: "No"},
		},
		Parser: models.ParserMultiSelect,
		Field:  models.FieldHackathon,
	},
	{
		Text:      "What brings you to the community? Pick your main goal.",
		InputMode: models.InputModeButtons,
		Options: []models.Option{
			{Label: "Build apps/dApps", Value: models.GoalBuildApps},
			{Label: "Earn bounties", Value: models.GoalEarnBounties},
			{Label: "Share ideas for new features", Value: models.GoalShareIdeas},
			{Label: "Work on AI projects", Value: models.GoalAIProjects},
			{Label: "Promote blockchain/Andromeda", Value: models.GoalPromote},
			{Label: "Learn Web3 basics", Value: models.GoalLearnBasics},
		},
		Parser: models.ParserButton,
		Field:  models.FieldGoal,
	},
	{
		Text:                      "Do you have a portfolio or projects you'd like to share?",
		InputMode:                 models.InputModeConditionalText,
		Options:                   []models.Option{{Label: "Yes", Value: "Yes"}, {Label: "No", Value: "No"}},
		ConditionalTriggerValue:   "Yes",
		ConditionalTextInputLabel: "Please share the link",
		Parser:                    models.ParserConditionalText,
		Field:                     models.FieldPortfolio,
	},
	{
		Text:      "Anything else you'd like us to know? Other skills, interests, communities?",
		InputMode: models.InputModeText,
		Parser:    models.ParserText,
		Field:     models.FieldAdditionalSkills,
	},
}
