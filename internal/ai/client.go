// Package ai is the translation/summarization collaborator. Per contract it
// never fails for business logic: a missing API key or a transient provider
// error both collapse to a zero value, and callers store unenriched items.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/curatist/curatist/internal/config"
)

// MinSummarizeLen is the minimum text length worth summarizing; shorter
// inputs are skipped silently.
const MinSummarizeLen = 100

// RepoSummary is the structured summary produced for a repository README.
type RepoSummary struct {
	Summary             string   `json:"summary"`
	Features            []string `json:"features"`
	TargetAudience      string   `json:"target_audience"`
	BeginnerDescription string   `json:"beginner_description"`
}

// Client calls a generative-model REST endpoint.
type Client struct {
	cfg    config.AIConfig
	client *http.Client
	logger *slog.Logger
}

// NewClient creates an AI client. A client with no API key is valid and
// simply reports unavailability on every call.
func NewClient(cfg config.AIConfig, logger *slog.Logger) *Client {
	return &Client{
		cfg: cfg,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: logger.With("component", "ai_client"),
	}
}

// Available reports whether the service is configured.
func (c *Client) Available() bool {
	return c != nil && c.cfg.APIKey != ""
}

// Translate returns the text translated to targetLang, or "" when the
// service is unconfigured or the call fails.
func (c *Client) Translate(ctx context.Context, text, targetLang string) string {
	if !c.Available() || strings.TrimSpace(text) == "" {
		return ""
	}
	if len(text) > 4000 {
		text = text[:4000]
	}

	prompt := fmt.Sprintf("Translate the following text to %s. Return only the translation, no commentary:\n\n%s", targetLang, text)
	out, err := c.generate(ctx, prompt)
	if err != nil {
		c.logger.Warn("translation failed", "error", err)
		return ""
	}
	return strings.TrimSpace(out)
}

// Summarize produces a structured repository summary from a README, or nil
// when the service is unconfigured, the README is too short, or the call
// fails.
func (c *Client) Summarize(ctx context.Context, readme, repoName string) *RepoSummary {
	if !c.Available() || len(readme) < MinSummarizeLen {
		return nil
	}
	if len(readme) > 8000 {
		readme = readme[:8000]
	}

	prompt := fmt.Sprintf(`Summarize the repository %q from its README. Return JSON with:
- "summary": 2-3 sentence overview
- "features": array of key feature strings
- "target_audience": who this is for
- "beginner_description": one plain-language sentence for non-developers

README:
%s`, repoName, readme)

	out, err := c.generate(ctx, prompt)
	if err != nil {
		c.logger.Warn("summarization failed", "repo", repoName, "error", err)
		return nil
	}

	var summary RepoSummary
	if err := json.Unmarshal([]byte(extractJSON(out)), &summary); err != nil {
		c.logger.Warn("summary parse failed", "repo", repoName, "error", err)
		return nil
	}
	if summary.Summary == "" {
		return nil
	}
	return &summary
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	payload := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": prompt}}},
		},
	}
	body, _ := json.Marshal(payload)

	endpoint := c.cfg.Endpoint
	if endpoint == "" {
		endpoint = "https://generativelanguage.googleapis.com/v1beta"
	}
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", endpoint, c.cfg.Model, c.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("model request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("model request: status %d", resp.StatusCode)
	}

	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode model response: %w", err)
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty model response")
	}
	return result.Candidates[0].Content.Parts[0].Text, nil
}

// extractJSON finds the first balanced JSON object in a model response.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	if start < 0 {
		return "{}"
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return "{}"
}
