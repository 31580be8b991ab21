package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/Yates-Labs/compujudge/internal/status"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Gemini implements Transport against the Generative Language generateContent API.
type Gemini struct {
	config Config
	client *http.Client
}

// NewGemini creates a Gemini-backed transport.
func NewGemini(config Config) (*Gemini, error) {
	if config.APIKey == "" {
		config.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if config.Model == "" {
		return nil, fmt.Errorf("%w: missing Gemini model name", ErrInvalidConfig)
	}
	if config.BaseURL == "" {
		config.BaseURL = geminiBaseURL
	}
	return &Gemini{config: config, client: config.httpClient()}, nil
}

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
	Thought    bool              `json:"thought,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiThinkingConfig struct {
	IncludeThoughts bool `json:"include_thoughts"`
}

type geminiGenerationConfig struct {
	Temperature      float64               `json:"temperature"`
	MaxOutputTokens  int                   `json:"maxOutputTokens,omitempty"`
	ResponseMimeType string                `json:"responseMimeType,omitempty"`
	ThinkingConfig   *geminiThinkingConfig `json:"thinking_config,omitempty"`
}

type geminiTool struct {
	GoogleSearch *struct{} `json:"googleSearch,omitempty"`
}

type geminiRequest struct {
	Contents          []geminiContent        `json:"contents"`
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
	Tools             []geminiTool           `json:"tools,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content *geminiContent `json:"content"`
	} `json:"candidates"`
}

// Generate sends req to Gemini. Search calls use the search model and the
// googleSearch tool; thought parts are folded into "thought_process" when a
// JSON object is requested.
func (g *Gemini) Generate(ctx context.Context, req Request) (string, error) {
	if g.config.APIKey == "" {
		return "", fmt.Errorf("%w: set GEMINI_API_KEY or gemini.api_key", ErrMissingCredential)
	}

	model := g.config.Model
	if req.UseSearch && g.config.SearchModel != "" {
		model = g.config.SearchModel
	}
	model = strings.TrimPrefix(model, "models/")

	parts := []geminiPart{{Text: req.Prompt}}
	for _, img := range req.Images {
		parts = append(parts, geminiPart{InlineData: &geminiInlineData{MimeType: img.MimeType, Data: img.Data}})
	}

	system := g.config.systemPrompt(req.SystemPrompt)
	if g.config.ThinkingLevel >= 4 {
		system += "\n[THOUGHT PROCESS]: Think deeply and step-by-step before answering. Consider multiple angles."
	}

	body := geminiRequest{
		Contents:          []geminiContent{{Role: "user", Parts: parts}},
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: system}}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     req.temperature(),
			MaxOutputTokens: g.config.MaxOutputTokens,
		},
	}
	if req.JSONMode && !req.UseSearch {
		body.GenerationConfig.ResponseMimeType = "application/json"
	}

	supportsThinking := strings.Contains(model, "thinking")
	switch {
	case g.config.ShowThinking || (g.config.ThinkingLevel >= 4 && supportsThinking):
		body.GenerationConfig.ThinkingConfig = &geminiThinkingConfig{IncludeThoughts: true}
	case req.UseSearch:
		body.Tools = []geminiTool{{GoogleSearch: &struct{}{}}}
	}

	status.Report(req.OnStatus, fmt.Sprintf("QUERYING %s...", model), -1)

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("%w: encode gemini request: %w", ErrTransport, err)
	}

	if err := checkCancelled(ctx); err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.config.BaseURL, url.PathEscape(model), url.QueryEscape(g.config.APIKey))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: build gemini request: %w", ErrTransport, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", requestFailed(ctx, "gemini", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", requestFailed(ctx, "gemini", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return "", &StatusError{
			Provider:   "gemini",
			StatusCode: resp.StatusCode,
			Hint:       fmt.Sprintf("model '%s' not found; use a valid model id such as 'gemini-2.0-flash'", model),
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &StatusError{Provider: "gemini", StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var decoded geminiResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("%w: decode gemini response: %w", ErrTransport, err)
	}
	if len(decoded.Candidates) == 0 || decoded.Candidates[0].Content == nil || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: gemini returned no candidates", ErrEmptyResponse)
	}

	var output, thoughts strings.Builder
	for _, part := range decoded.Candidates[0].Content.Parts {
		if part.Thought {
			thoughts.WriteString(part.Text)
			thoughts.WriteString("\n")
			continue
		}
		output.WriteString(part.Text)
	}

	text := output.String()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: gemini produced only thoughts", ErrEmptyResponse)
	}

	if req.JSONMode && thoughts.Len() > 0 {
		text = foldThoughts(text, thoughts.String())
	}
	return text, nil
}

// foldThoughts injects the model's thoughts into a JSON object response as
// "thought_process". Output that does not end in an object is left alone.
func foldThoughts(output, thoughts string) string {
	trimmed := strings.TrimSpace(output)
	trimmed = strings.ReplaceAll(trimmed, "```json", "")
	trimmed = strings.TrimSpace(strings.ReplaceAll(trimmed, "```", ""))
	last := strings.LastIndexByte(trimmed, '}')
	if last <= 0 || last != len(trimmed)-1 {
		return output
	}
	encoded, err := json.Marshal(thoughts)
	if err != nil {
		return output
	}
	head := strings.TrimSpace(trimmed[:last])
	sep := ", "
	if strings.HasSuffix(head, "{") {
		sep = ""
	}
	return fmt.Sprintf(`%s%s"thought_process": %s}`, head, sep, encoded)
}
