// Package pathway maps a completed onboarding profile to a recommended
// community path. The rule cascade is evaluated top to bottom; the first
// matching rule wins and Explorer is the unconditional fallback, so every
// profile resolves to a path. Determination never fails.
package pathway

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/andromedaprotocol/community-onboarding/internal/models"
)

// Path names produced by the engine.
const (
	PathContractor    = "Contractor"
	PathHacker        = "Hacker"
	PathVisionary     = "Visionary"
	PathAIInitiatives = "AI Initiatives"
	PathAmbassador    = "Ambassador"
	PathExplorer      = "Explorer"
)

// Engine resolves a profile to a path name and URL. URLs come from an
// injected configuration map; missing entries yield a deterministic
// placeholder rather than an error.
type Engine struct {
	urls map[string]string
}

// NewEngine creates an engine with the given path-name-to-URL configuration.
// A nil map is allowed; every lookup then falls back to the placeholder.
func NewEngine(urls map[string]string) *Engine {
	return &Engine{urls: urls}
}

// DefaultPathURLs is the production path URL configuration.
var DefaultPathURLs = map[string]string{
	PathContractor:    "https://community.andromedaprotocol.io/paths/contractor",
	PathHacker:        "https://community.andromedaprotocol.io/paths/hacker",
	PathVisionary:     "https://community.andromedaprotocol.io/paths/visionary",
	PathAIInitiatives: "https://community.andromedaprotocol.io/paths/ai-initiatives",
	PathAmbassador:    "https://community.andromedaprotocol.io/paths/ambassador",
	PathExplorer:      "https://community.andromedaprotocol.io/paths/explorer",
}

// contractorLanguages are the languages that qualify for the Contractor path.
var contractorLanguages = map[string]bool{
	"Rust":     true,
	"Solidity": true,
	"Python":   true,
}

// hackerHackathons are the hackathon answers that qualify for the Hacker path.
var hackerHackathons = map[string]bool{
	"Winner": true,
	"Web2":   true,
	"Web3":   true,
}

// Determine evaluates the rule cascade against the profile.
func (e *Engine) Determine(p models.Profile) models.PathResult {
	path := e.determinePath(p)
	return models.PathResult{
		RecommendedPath:    path,
		RecommendedPathURL: e.urlFor(path),
	}
}

func (e *Engine) determinePath(p models.Profile) string {
	toolsExperienced := p.ToolsFamiliarity == models.ToolsVeryFamiliar ||
		p.ToolsFamiliarity == models.ToolsSomeExperience

	if intersects(p.Languages, contractorLanguages) &&
		toolsExperienced &&
		p.ExperienceLevel == models.LevelAdvanced &&
		p.Goal == models.GoalBuildApps {
		return PathContractor
	}

	if toolsExperienced &&
		intersects(p.Hackathon, hackerHackathons) &&
		p.Goal == models.GoalEarnBounties {
		return PathHacker
	}

	if p.Goal == models.GoalShareIdeas &&
		(p.ExperienceLevel == models.LevelBeginner || p.ExperienceLevel == models.LevelIntermediate) {
		return PathVisionary
	}

	if p.AIExperience == "Yes" && p.Goal == models.GoalAIProjects {
		return PathAIInitiatives
	}

	if p.BlockchainExperience == "Yes" && p.Goal == models.GoalPromote {
		return PathAmbassador
	}

	if p.Goal == models.GoalLearnBasics || p.ExperienceLevel == models.LevelBeginner {
		return PathExplorer
	}

	return PathExplorer
}

// urlFor looks up the configured URL for a path, falling back to a
// deterministic placeholder so determination never fails the flow.
func (e *Engine) urlFor(path string) string {
	if url, ok := e.urls[path]; ok && url != "" {
		return url
	}
	slog.Warn("pathway.Engine.urlFor: no URL configured for path, using placeholder", "path", path)
	slug := strings.ToLower(strings.ReplaceAll(path, " ", "-"))
	return fmt.Sprintf("https://community.andromedaprotocol.io/paths/%s", slug)
}

func intersects(values []string, set map[string]bool) bool {
	for _, v := range values {
		if set[v] {
			return true
		}
	}
	return false
}
