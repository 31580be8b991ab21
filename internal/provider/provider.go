// Package provider talks to the hosted language models used for grading.
// It defines a provider-agnostic Transport with concrete implementations for
// OpenAI, Anthropic and Gemini, plus a scripted mock for tests. Transports
// are stateless and safe for concurrent use.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Yates-Labs/compujudge/internal/status"
)

var (
	ErrMissingCredential = errors.New("missing provider credential")
	ErrTransport         = errors.New("provider request failed")
	ErrEmptyResponse     = errors.New("provider returned an empty response")
	ErrCancelled         = errors.New("cancelled by user")
	ErrInvalidConfig     = errors.New("invalid provider configuration")
)

// Calibration is appended to every system prompt unless the user supplied
// their own override.
const Calibration = `
[SYSTEM OVERRIDE: NARRATIVE GRANDMASTER]
[PROTOCOL: THE ZERO-BASED SCORING SYSTEM]

1. **START AT ZERO:** 0 is the baseline for a "technically competent but boring/generic" story.
2. **NO CAP:** Scores can be positive (e.g. +50) or negative (e.g. -50).
3. **ADD POINTS:** Only for specific strengths (Innovation, Voice, Theme).
4. **SUBTRACT POINTS:** For ANY weakness (Plot Holes, Clichés, Confusion).
5. **IGNORE INTENT:** Judge only what is on the page.
`

// DefaultTemperature is used when a request carries no override.
const DefaultTemperature = 0.7

// Transport sends a prompt to a hosted model and returns its raw text.
type Transport interface {
	// Generate produces text for req. Failures are distinguishable with
	// errors.Is against ErrMissingCredential, ErrTransport, ErrEmptyResponse
	// and ErrCancelled.
	Generate(ctx context.Context, req Request) (string, error)
}

// Image is an inline image attached to a request.
type Image struct {
	MimeType string `json:"mime_type"`
	// Data is the base64-encoded image body.
	Data string `json:"data"`
}

// Request is a single generation call.
type Request struct {
	Prompt       string
	SystemPrompt string

	// JSONMode asks the provider for a JSON-only response.
	JSONMode bool

	// UseSearch enables the provider's web search tool where supported.
	UseSearch bool

	// Temperature overrides DefaultTemperature when non-nil.
	Temperature *float64

	Images []Image

	// OnStatus receives progress messages; nil falls back to status.Default.
	OnStatus status.Sink
}

// Temp is a convenience for building Request.Temperature.
func Temp(v float64) *float64 { return &v }

func (r Request) temperature() float64 {
	if r.Temperature != nil {
		return *r.Temperature
	}
	return DefaultTemperature
}

// Config holds the settings shared by every transport.
type Config struct {
	// Provider is one of "gemini", "openai" or "anthropic".
	Provider string

	// Model is the model identifier for the chosen provider.
	Model string

	// SearchModel replaces Model on search-enabled calls (Gemini only).
	SearchModel string

	APIKey string

	// MaxOutputTokens limits response length (0 = provider default)
	MaxOutputTokens int

	// CustomSystemPrompt replaces the calibration block when set.
	CustomSystemPrompt string

	// ThinkingLevel above 3 nudges the model to reason step by step.
	ThinkingLevel int

	// ShowThinking asks Gemini to return its thought parts.
	ShowThinking bool

	// BaseURL overrides the provider endpoint, mostly for tests.
	BaseURL string

	HTTPClient *http.Client
}

func (c Config) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 5 * time.Minute}
}

// systemPrompt joins the caller's prompt with the calibration block or the
// user's override.
func (c Config) systemPrompt(base string) string {
	suffix := Calibration
	if c.CustomSystemPrompt != "" {
		suffix = "[USER OVERRIDE]: " + c.CustomSystemPrompt
	}
	return base + "\n" + suffix
}

// StatusError is returned for non-2xx provider responses.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
	Hint       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s error %d", e.Provider, e.StatusCode)
	if e.Hint != "" {
		msg += ": " + e.Hint
	}
	if e.Body != "" {
		msg += "\nDetails: " + truncate(e.Body, 200)
	}
	return msg
}

func (e *StatusError) Unwrap() error { return ErrTransport }

// requestFailed classifies a low-level error, folding context cancellation
// into ErrCancelled.
func requestFailed(ctx context.Context, name string, err error) error {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %s request aborted: %w", ErrCancelled, name, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrTransport, name, err)
}

func checkCancelled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrCancelled, err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
