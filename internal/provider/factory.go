package provider

import (
	"fmt"
	"strings"
)

// Provider names accepted by New.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// New returns the transport selected by config.Provider. An empty provider
// selects Gemini.
func New(config Config) (Transport, error) {
	var (
		t   Transport
		err error
	)
	switch strings.ToLower(config.Provider) {
	case ProviderOpenAI:
		t, err = NewOpenAI(config)
	case ProviderAnthropic:
		t, err = NewAnthropic(config)
	case ProviderGemini, "":
		t, err = NewGemini(config)
	default:
		return nil, fmt.Errorf("%w: unknown provider %q (supported: gemini, openai, anthropic)", ErrInvalidConfig, config.Provider)
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}
