package provider

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/Yates-Labs/compujudge/internal/status"
)

// OpenAI implements Transport using OpenAI's chat completions API.
type OpenAI struct {
	client openai.Client
	config Config
}

// NewOpenAI creates an OpenAI-backed transport. A missing API key is not an
// error here; Generate reports it so a misconfigured run fails per call.
func NewOpenAI(config Config) (*OpenAI, error) {
	// Use config API key or fall back to environment variable
	if config.APIKey == "" {
		config.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if config.Model == "" {
		return nil, fmt.Errorf("%w: missing OpenAI model name", ErrInvalidConfig)
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		// The grading loop owns retries.
		option.WithMaxRetries(0),
		option.WithHTTPClient(config.httpClient()),
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	return &OpenAI{
		client: openai.NewClient(opts...),
		config: config,
	}, nil
}

// Generate sends req to OpenAI and returns the first choice's content.
func (o *OpenAI) Generate(ctx context.Context, req Request) (string, error) {
	if o.config.APIKey == "" {
		return "", fmt.Errorf("%w: set OPENAI_API_KEY or openai.api_key", ErrMissingCredential)
	}

	status.Report(req.OnStatus, fmt.Sprintf("CONNECTING TO OPENAI (%s)...", o.config.Model), -1)

	parts := []openai.ChatCompletionContentPartUnionParam{
		openai.TextContentPart(req.Prompt),
	}
	for _, img := range req.Images {
		parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: fmt.Sprintf("data:%s;base64,%s", img.MimeType, img.Data),
		}))
	}

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(o.config.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(o.config.systemPrompt(req.SystemPrompt)),
			openai.UserMessage(parts),
		},
		Temperature: openai.Float(req.temperature()),
	}
	if o.config.MaxOutputTokens > 0 {
		params.MaxTokens = openai.Int(int64(o.config.MaxOutputTokens))
	}
	if req.JSONMode {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	if err := checkCancelled(ctx); err != nil {
		return "", err
	}

	completion, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", &StatusError{Provider: "openai", StatusCode: apiErr.StatusCode, Body: apiErr.Message}
		}
		return "", requestFailed(ctx, "openai", err)
	}

	if len(completion.Choices) == 0 || strings.TrimSpace(completion.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%w: openai returned no content", ErrEmptyResponse)
	}

	return completion.Choices[0].Message.Content, nil
}
