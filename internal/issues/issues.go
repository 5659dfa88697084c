// Package issues fetches open GitHub issues for the community issue board.
//
// This is read-only display glue around the GitHub REST API; failures are
// surfaced to the caller and never affect the onboarding conversation.
package issues

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// DefaultBaseURL is the GitHub REST API root.
const DefaultBaseURL = "https://api.github.com"

// fetchTimeout bounds a single issue-board fetch.
const fetchTimeout = 10 * time.Second

// Issue is the subset of the GitHub issue payload the board renders.
type Issue struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	HTMLURL   string    `json:"html_url"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
	Labels    []Label   `json:"labels,omitempty"`
}

// Label is a GitHub issue label.
type Label struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// Client fetches issues for one configured repository.
type Client struct {
	httpClient *http.Client
	baseURL    string
	owner      string
	repo       string
}

// NewClient creates an issue fetcher for owner/repo.
func NewClient(owner, repo string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: fetchTimeout},
		baseURL:    DefaultBaseURL,
		owner:      owner,
		repo:       repo,
	}
}

// SetBaseURL overrides the API root. Test hook.
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// FetchOpen returns the repository's open issues.
func (c *Client) FetchOpen(ctx context.Context) ([]Issue, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/issues?state=open", c.baseURL, c.owner, c.repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build issues request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("issues.Client.FetchOpen: request failed", "error", err, "owner", c.owner, "repo", c.repo)
		return nil, fmt.Errorf("failed to fetch issues: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("issues.Client.FetchOpen: unexpected status", "status", resp.StatusCode, "owner", c.owner, "repo", c.repo)
		return nil, fmt.Errorf("github returned status %d", resp.StatusCode)
	}

	var list []Issue
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("failed to decode issues: %w", err)
	}
	slog.Debug("issues.Client.FetchOpen succeeded", "count", len(list))
	return list, nil
}
