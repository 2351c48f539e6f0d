package augment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config points the client at a generateContent-style endpoint.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Enabled reports whether a remote model is configured at all.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.BaseURL) != "" && c.APIKey != ""
}

func (c Config) endpoint() string {
	return strings.TrimRight(c.BaseURL, "/") + "/" + c.Model + ":generateContent"
}

// Client calls the remote model over HTTP. Every failure comes back as Unavailable.
type Client struct {
	cfg    Config
	client *http.Client
	log    zerolog.Logger
}

var _ Enhancer = (*Client)(nil)

// NewClient builds a client. A disabled config yields a client that always reports Unavailable.
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    logger.With().Str("module", "augment").Str("component", "client").Logger(),
	}
}

// Enabled reports whether requests will leave the process.
func (c *Client) Enabled() bool { return c.cfg.Enabled() }

// Enhance sends the reasoning out for rewriting.
func (c *Client) Enhance(ctx context.Context, req Request) Outcome {
	if !c.cfg.Enabled() {
		return Unavailable{Reason: "augmentation disabled"}
	}
	if len(req.Reasoning) == 0 {
		return Unavailable{Reason: "nothing to rewrite"}
	}
	text, err := c.generate(ctx, buildPrompt(req))
	if err != nil {
		c.log.Warn().Err(err).Msg("remote text model call failed")
		return Unavailable{Reason: err.Error()}
	}

	var reply struct {
		Reasoning []string `json:"reasoning"`
		Insight   string   `json:"insight"`
	}
	if err := json.Unmarshal([]byte(text), &reply); err != nil {
		c.log.Warn().Err(err).Msg("remote text model returned malformed json")
		return Unavailable{Reason: "malformed reply"}
	}
	if len(reply.Reasoning) != len(req.Reasoning) {
		return Unavailable{Reason: fmt.Sprintf("expected %d reasoning lines, got %d", len(req.Reasoning), len(reply.Reasoning))}
	}
	return Enhanced{Reasoning: reply.Reasoning, Insight: strings.TrimSpace(reply.Insight)}
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": prompt}}},
		},
		"generationConfig": map[string]any{"responseMimeType": "application/json"},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.endpoint(), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("remote model status %d", resp.StatusCode)
	}

	var parsed struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", err
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from remote model")
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

func buildPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, `You help a junior sports coach read substitution advice during a match.
Rewrite each line below in plain, encouraging language. Keep every name and every number.
Return ONLY valid JSON: {"reasoning": ["one entry per input line, same order"], "insight": "one short sentence about the game overall"}

Quarter %d, %d:%02d into the quarter. %d players on the roster, %d on the field.
Current assessment: %s

Lines:
`, req.Game.Quarter, req.Game.QuarterTime/60, req.Game.QuarterTime%60, req.Game.RosterSize, req.Game.OnField, req.Game.Assessment)
	for i, line := range req.Reasoning {
		fmt.Fprintf(&b, "%d. %s\n", i+1, line)
	}
	return b.String()
}
