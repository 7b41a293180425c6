// Package parser turns free-form text into a candidate task record using an
// LLM over the Anthropic Messages API.
package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/harrisonrobin/focusa/pkg/datetime"
	"github.com/harrisonrobin/focusa/pkg/model"
)

const (
	DefaultBaseURL  = "https://api.anthropic.com/v1/messages"
	DefaultModel    = "claude-sonnet-4-20250514"
	apiVersion      = "2023-06-01"
	maxTokens       = 512
	defaultRetries  = 3
	defaultInitWait = time.Second
)

var (
	// ErrUnavailable wraps transport and API failures.
	ErrUnavailable = errors.New("task parser unavailable")
	// ErrNoTask means the service answered but no usable task came back.
	ErrNoTask = errors.New("could not understand task")
)

// Client calls the Messages API.
type Client struct {
	apiKey   string
	baseURL  string
	model    string
	retries  int
	initWait time.Duration
	client   *http.Client
	now      func() time.Time
	log      zerolog.Logger
}

type Option func(*Client)

// WithBaseURL points the client at a different endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithModel overrides the model name.
func WithModel(m string) Option {
	return func(c *Client) {
		if m != "" {
			c.model = m
		}
	}
}

// WithRetries sets the attempt count and initial backoff.
func WithRetries(n int, initWait time.Duration) Option {
	return func(c *Client) {
		if n > 0 {
			c.retries = n
		}
		c.initWait = initWait
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithClock replaces time.Now, used for the "today" hint in the prompt.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:   apiKey,
		baseURL:  DefaultBaseURL,
		model:    DefaultModel,
		retries:  defaultRetries,
		initWait: defaultInitWait,
		client:   &http.Client{Timeout: 30 * time.Second},
		now:      time.Now,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// Parse sends text to the model and returns an unvalidated candidate.
func (c *Client) Parse(ctx context.Context, text string) (model.Record, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Record{}, ErrNoTask
	}
	if c.apiKey == "" {
		return model.Record{}, fmt.Errorf("%w: API key not set", ErrUnavailable)
	}

	body, err := json.Marshal(messagesRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		System:    systemPrompt(c.now()),
		Messages:  []message{{Role: "user", Content: text}},
	})
	if err != nil {
		return model.Record{}, fmt.Errorf("marshal request: %w", err)
	}

	reply, err := c.send(ctx, body)
	if err != nil {
		return model.Record{}, err
	}

	rec, err := decodeRecord(reply)
	if err != nil {
		c.log.Warn().Err(err).Str("reply", reply).Msg("unusable parser reply")
		return model.Record{}, err
	}
	return rec, nil
}

func (c *Client) send(ctx context.Context, body []byte) (string, error) {
	var lastErr error
	for attempt := 0; attempt < c.retries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(math.Pow(2, float64(attempt-1))) * c.initWait
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %w", ErrUnavailable, ctx.Err())
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("anthropic-version", apiVersion)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("api error (%d): %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				c.log.Debug().Int("status", resp.StatusCode).Int("attempt", attempt+1).Msg("retrying parser request")
				continue
			}
			return "", fmt.Errorf("%w: %w", ErrUnavailable, lastErr)
		}

		var out messagesResponse
		if err := json.Unmarshal(respBody, &out); err != nil {
			return "", fmt.Errorf("%w: decode response: %w", ErrUnavailable, err)
		}
		for _, block := range out.Content {
			if block.Type == "text" || block.Type == "" {
				return block.Text, nil
			}
		}
		return "", fmt.Errorf("%w: empty response content", ErrNoTask)
	}

	return "", fmt.Errorf("%w: max retries (%d) exceeded: %w", ErrUnavailable, c.retries, lastErr)
}

func systemPrompt(now time.Time) string {
	cats := make([]string, 0, len(model.Categories))
	for _, c := range model.Categories {
		cats = append(cats, string(c))
	}

	return fmt.Sprintf(`You convert a short task description into JSON.
Today is %s.
Reply with a single JSON object and nothing else:
{"taskName": string, "date": string, "time": string or null, "category": string, "priority": string}
- date uses the form %q and resolves relative dates against today.
- time uses the form %q, or null when no clock time is mentioned.
- category is one of: %s.
- priority is one of: High, Medium, Low.
If the text is not a task, reply {"taskName": ""}.`,
		now.Format("Monday, "+datetime.DateLayout),
		datetime.DateLayout,
		datetime.TimeLayout,
		strings.Join(cats, ", "),
	)
}
