// Package generate turns free SOP text into a raw course draft by asking a
// chat-completions model for JSON. The draft is untrusted and must go through
// course.Normalize before it is used.
package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Generator produces a raw, unvalidated course value from source text.
type Generator interface {
	Generate(ctx context.Context, text string) (any, error)
}

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client talks to an OpenAI-compatible chat-completions endpoint. One request
// per call; nothing is retried.
type Client struct {
	http    *resty.Client
	model   string
	apiKey  string
	timeout time.Duration
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.deepseek.com"
	}
	if cfg.Model == "" {
		cfg.Model = "deepseek-chat"
	}
	http := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		http.SetAuthToken(cfg.APIKey)
	}
	return &Client{http: http, model: cfg.Model, apiKey: cfg.APIKey, timeout: cfg.Timeout}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	ResponseFormat map[string]string `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *Client) Generate(ctx context.Context, text string) (any, error) {
	if c.apiKey == "" {
		return nil, newError(KindConfig, errors.New("no API key configured"))
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var out chatResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(chatRequest{
			Model: c.model,
			Messages: []chatMessage{
				{Role: "system", Content: SystemPrompt()},
				{Role: "user", Content: text},
			},
			ResponseFormat: map[string]string{"type": "json_object"},
		}).
		SetResult(&out).
		Post("/chat/completions")
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, newError(KindTimeout, err)
		}
		return nil, newError(KindUpstream, err)
	}
	if resp.IsError() {
		return nil, newError(KindUpstream, fmt.Errorf("status %d: %s", resp.StatusCode(), truncate(resp.String(), 200)))
	}
	if len(out.Choices) == 0 {
		return nil, newError(KindUpstream, errors.New("response has no choices"))
	}
	return parseContent(out.Choices[0].Message.Content)
}

// parseContent decodes the model's message. Markdown code fences are
// tolerated; anything that is still not JSON is a parse failure.
func parseContent(content string) (any, error) {
	body := stripFences(content)
	if body == "" {
		return nil, newError(KindParse, errors.New("empty content"))
	}
	var raw any
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, newError(KindParse, err)
	}
	return raw, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
