package anthropic

import (
	"context"
	"fmt"
	"os"
	"time"

	"trailbook/lib/telemetry"

	"github.com/go-resty/resty/v2"
)

const (
	defaultBaseUrl = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-3-5-sonnet-20240620"

type Options struct {
	ApiKey  string
	BaseUrl string
	Model   string
}

type Client struct {
	Http  *resty.Client
	model string
}

// NewFromEnv builds a client from ANTHROPIC_API_KEY, with optional
// ANTHROPIC_BASE_URL and TRAILBOOK_MODEL overrides.
func NewFromEnv() (*Client, error) {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
	}
	return New(Options{
		ApiKey:  apiKey,
		BaseUrl: os.Getenv("ANTHROPIC_BASE_URL"),
		Model:   os.Getenv("TRAILBOOK_MODEL"),
	})
}

func New(opts Options) (*Client, error) {
	if opts.ApiKey == "" {
		return nil, fmt.Errorf("missing api key")
	}
	if opts.BaseUrl == "" {
		opts.BaseUrl = defaultBaseUrl
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	client.SetHeader("content-type", "application/json")
	client.SetHeader("x-api-key", opts.ApiKey)
	client.SetHeader("anthropic-version", apiVersion)
	client.SetTimeout(time.Second * 120)

	telemetry.InstrumentResty(client, "anthropic/http")

	return &Client{
		Http:  client,
		model: opts.Model,
	}, nil
}

func (c *Client) Model() string {
	return c.model
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature,omitempty"`
	System      string    `json:"system,omitempty"`
	Messages    []Message `json:"messages"`
}

type response struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// TransientError marks a failure worth retrying: transport errors,
// rate limits and server-side errors. Anything else is permanent.
type TransientError struct {
	Err error
}

func (e TransientError) Error() string {
	return e.Err.Error()
}

func (e TransientError) Unwrap() error {
	return e.Err
}

// Complete sends one user prompt to the messages API and returns the
// completion text.
func (c *Client) Complete(ctx context.Context, system string, prompt string, maxTokens int) (string, error) {
	var out response
	var apiErr errorResponse

	res, err := c.Http.R().
		SetContext(ctx).
		SetBody(request{
			Model:       c.model,
			MaxTokens:   maxTokens,
			Temperature: 0.7,
			System:      system,
			Messages:    []Message{{Role: "user", Content: prompt}},
		}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/v1/messages")
	if err != nil {
		return "", TransientError{Err: fmt.Errorf("api call: %w", err)}
	}

	if !res.IsSuccess() {
		err := fmt.Errorf("api error %d (%s): %s", res.StatusCode(), apiErr.Error.Type, apiErr.Error.Message)
		if res.StatusCode() == 429 || res.StatusCode() >= 500 {
			return "", TransientError{Err: err}
		}
		return "", err
	}

	if len(out.Content) == 0 {
		return "", fmt.Errorf("empty response content")
	}
	return out.Content[0].Text, nil
}
