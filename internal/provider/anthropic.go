package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/Yates-Labs/compujudge/internal/status"
)

const (
	anthropicBaseURL = "https://api.anthropic.com/v1"
	anthropicVersion = "2023-06-01"

	// anthropicMaxTokens is required by the Messages API.
	anthropicMaxTokens = 8192
)

// Anthropic implements Transport against the Anthropic Messages API.
type Anthropic struct {
	config Config
	client *http.Client
}

// NewAnthropic creates an Anthropic-backed transport.
func NewAnthropic(config Config) (*Anthropic, error) {
	if config.APIKey == "" {
		config.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if config.Model == "" {
		return nil, fmt.Errorf("%w: missing Anthropic model name", ErrInvalidConfig)
	}
	if config.BaseURL == "" {
		config.BaseURL = anthropicBaseURL
	}
	return &Anthropic{config: config, client: config.httpClient()}, nil
}

type anthropicSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type anthropicBlock struct {
	Type   string           `json:"type"`
	Text   string           `json:"text,omitempty"`
	Source *anthropicSource `json:"source,omitempty"`
}

type anthropicMessage struct {
	Role    string           `json:"role"`
	Content []anthropicBlock `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Temperature float64            `json:"temperature"`
}

type anthropicResponse struct {
	Content []anthropicBlock `json:"content"`
}

// Generate sends req to the Messages API. In JSON mode the assistant turn is
// pre-filled with "{" and the brace is restored on the way out.
func (a *Anthropic) Generate(ctx context.Context, req Request) (string, error) {
	if a.config.APIKey == "" {
		return "", fmt.Errorf("%w: set ANTHROPIC_API_KEY or anthropic.api_key", ErrMissingCredential)
	}

	status.Report(req.OnStatus, fmt.Sprintf("CONNECTING TO CLAUDE (%s)...", a.config.Model), -1)

	content := []anthropicBlock{{Type: "text", Text: req.Prompt}}
	for _, img := range req.Images {
		content = append(content, anthropicBlock{
			Type:   "image",
			Source: &anthropicSource{Type: "base64", MediaType: img.MimeType, Data: img.Data},
		})
	}

	maxTokens := a.config.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = anthropicMaxTokens
	}

	body := anthropicRequest{
		Model:       a.config.Model,
		MaxTokens:   maxTokens,
		System:      a.config.systemPrompt(req.SystemPrompt),
		Messages:    []anthropicMessage{{Role: "user", Content: content}},
		Temperature: req.temperature(),
	}
	if req.JSONMode {
		body.Messages = append(body.Messages, anthropicMessage{
			Role:    "assistant",
			Content: []anthropicBlock{{Type: "text", Text: "{"}},
		})
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("%w: encode anthropic request: %w", ErrTransport, err)
	}

	if err := checkCancelled(ctx); err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.BaseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: build anthropic request: %w", ErrTransport, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", a.config.APIKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return "", requestFailed(ctx, "anthropic", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", requestFailed(ctx, "anthropic", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &StatusError{Provider: "anthropic", StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var decoded anthropicResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("%w: decode anthropic response: %w", ErrTransport, err)
	}

	var out strings.Builder
	for _, block := range decoded.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	text := out.String()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: anthropic returned no text blocks", ErrEmptyResponse)
	}

	if req.JSONMode && !strings.HasPrefix(strings.TrimSpace(text), "{") {
		text = "{" + text
	}
	return text, nil
}
