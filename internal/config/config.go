// Package config loads the settings for a grading session. Values come from
// built-in defaults, an optional config file and COMPUJUDGE_* environment
// variables, in increasing priority. The result is passed explicitly to the
// components that need it; nothing reads settings from a global.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/Yates-Labs/compujudge/internal/orchestrator"
	"github.com/Yates-Labs/compujudge/internal/provider"
	"github.com/Yates-Labs/compujudge/internal/store"
	"github.com/Yates-Labs/compujudge/internal/temperature"
	"github.com/Yates-Labs/compujudge/internal/tribunal"
)

var ErrInvalidConfig = errors.New("invalid configuration")

const (
	EnvPrefix  = "COMPUJUDGE"
	configName = "compujudge"
)

// ProviderSettings are the credentials and model of one provider.
type ProviderSettings struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type TribunalSettings struct {
	Enabled          bool             `mapstructure:"enabled"`
	Mode             string           `mapstructure:"mode"`
	MaxAttempts      int              `mapstructure:"max_attempts"`
	SkipVerification bool             `mapstructure:"skip_verification"`
	Weights          tribunal.Weights `mapstructure:"weights"`
	LuckTolerance    float64          `mapstructure:"luck_tolerance"`
}

type TemperatureSettings struct {
	// Multiplier scales every agent's base temperature.
	Multiplier float64 `mapstructure:"multiplier"`

	// Critic is the legacy path's base temperature.
	Critic float64 `mapstructure:"critic"`
}

// Settings is the full configuration of a session.
type Settings struct {
	Provider string `mapstructure:"provider"`

	Gemini    ProviderSettings `mapstructure:"gemini"`
	OpenAI    ProviderSettings `mapstructure:"openai"`
	Anthropic ProviderSettings `mapstructure:"anthropic"`

	// SearchModel is used for search-enabled Gemini calls.
	SearchModel string `mapstructure:"search_model"`

	MaxOutputTokens    int    `mapstructure:"max_output_tokens"`
	CustomSystemPrompt string `mapstructure:"custom_system_prompt"`
	ThinkingLevel      int    `mapstructure:"thinking_level"`
	ShowThinking       bool   `mapstructure:"show_thinking"`

	Tribunal    TribunalSettings    `mapstructure:"tribunal"`
	Temperature TemperatureSettings `mapstructure:"temperature"`

	// CriticCores is the number of legacy passes.
	CriticCores int `mapstructure:"critic_cores"`

	// PromptsFile optionally overrides the built-in prompt catalogue.
	PromptsFile string `mapstructure:"prompts_file"`

	DataDir    string `mapstructure:"data_dir"`
	CacheSize  int    `mapstructure:"cache_size"`
	ListenAddr string `mapstructure:"listen_addr"`
}

func setDefaults(v *viper.Viper) {
	weights := tribunal.DefaultWeights()

	v.SetDefault("provider", provider.ProviderGemini)
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "gemini-2.0-flash")
	v.SetDefault("gemini.base_url", "")
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model", "gpt-4o")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "claude-3-7-sonnet-20250219")
	v.SetDefault("anthropic.base_url", "")
	v.SetDefault("search_model", "")
	v.SetDefault("max_output_tokens", 0)
	v.SetDefault("custom_system_prompt", "")
	v.SetDefault("thinking_level", 0)
	v.SetDefault("show_thinking", false)

	v.SetDefault("tribunal.enabled", true)
	v.SetDefault("tribunal.mode", string(orchestrator.ModeParallel))
	v.SetDefault("tribunal.max_attempts", orchestrator.DefaultMaxAttempts)
	v.SetDefault("tribunal.skip_verification", false)
	v.SetDefault("tribunal.weights.logic", weights.Logic)
	v.SetDefault("tribunal.weights.soul", weights.Soul)
	v.SetDefault("tribunal.weights.market", weights.Market)
	v.SetDefault("tribunal.weights.lit", weights.Literary)
	v.SetDefault("tribunal.weights.jester", weights.Jester)
	v.SetDefault("tribunal.luck_tolerance", 0)

	v.SetDefault("temperature.multiplier", 1.0)
	v.SetDefault("temperature.critic", 0.1)
	v.SetDefault("critic_cores", 1)

	v.SetDefault("prompts_file", "")
	v.SetDefault("data_dir", store.DefaultDataDir)
	v.SetDefault("cache_size", store.DefaultCacheSize)
	v.SetDefault("listen_addr", "127.0.0.1:8420")
}

// Load reads settings. Callers load any .env file beforehand. An empty path
// searches for compujudge.{yaml,json,toml} in the working directory and
// $HOME/.config/compujudge; a missing file is not an error then. An
// explicit path must exist.
func Load(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", ErrInvalidConfig, path, err)
		}
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/compujudge")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
			}
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrInvalidConfig, err)
	}

	// Vendor-standard variables fill in keys left blank.
	fallback(&s.Gemini.APIKey, "GEMINI_API_KEY")
	fallback(&s.OpenAI.APIKey, "OPENAI_API_KEY")
	fallback(&s.Anthropic.APIKey, "ANTHROPIC_API_KEY")

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func fallback(dst *string, env string) {
	if *dst == "" {
		*dst = os.Getenv(env)
	}
}

// Validate checks the settings for values no component can work with.
// Missing API keys are reported later, by the transport, on first use.
func (s *Settings) Validate() error {
	switch strings.ToLower(s.Provider) {
	case provider.ProviderGemini, provider.ProviderOpenAI, provider.ProviderAnthropic:
	default:
		return fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, s.Provider)
	}
	if s.active().Model == "" {
		return fmt.Errorf("%w: %s model is empty", ErrInvalidConfig, s.Provider)
	}

	switch orchestrator.Mode(s.Tribunal.Mode) {
	case orchestrator.ModeParallel, orchestrator.ModeIterative:
	default:
		return fmt.Errorf("%w: tribunal mode must be parallel or iterative, got %q", ErrInvalidConfig, s.Tribunal.Mode)
	}
	if s.Tribunal.MaxAttempts < 1 {
		return fmt.Errorf("%w: tribunal.max_attempts must be at least 1", ErrInvalidConfig)
	}

	w := s.Tribunal.Weights
	if w.Logic < 0 || w.Soul < 0 || w.Market < 0 || w.Literary < 0 || w.Jester < 0 {
		return fmt.Errorf("%w: agent weights must not be negative", ErrInvalidConfig)
	}
	if w.Total() <= 0 {
		return fmt.Errorf("%w: agent weights must sum to a positive total", ErrInvalidConfig)
	}

	if s.Temperature.Multiplier < 0 || s.Temperature.Critic < 0 {
		return fmt.Errorf("%w: temperatures must not be negative", ErrInvalidConfig)
	}
	if s.MaxOutputTokens < 0 {
		return fmt.Errorf("%w: max_output_tokens must not be negative", ErrInvalidConfig)
	}
	return nil
}

func (s *Settings) active() ProviderSettings {
	switch strings.ToLower(s.Provider) {
	case provider.ProviderOpenAI:
		return s.OpenAI
	case provider.ProviderAnthropic:
		return s.Anthropic
	default:
		return s.Gemini
	}
}

// ProviderConfig builds the transport configuration of the active provider.
func (s *Settings) ProviderConfig() provider.Config {
	active := s.active()
	return provider.Config{
		Provider:           strings.ToLower(s.Provider),
		Model:              active.Model,
		SearchModel:        s.SearchModel,
		APIKey:             active.APIKey,
		MaxOutputTokens:    s.MaxOutputTokens,
		CustomSystemPrompt: s.CustomSystemPrompt,
		ThinkingLevel:      s.ThinkingLevel,
		ShowThinking:       s.ShowThinking,
		BaseURL:            active.BaseURL,
	}
}

// OrchestratorConfig builds the grading pipeline configuration.
func (s *Settings) OrchestratorConfig() orchestrator.Config {
	return orchestrator.Config{
		EnableTribunal:    s.Tribunal.Enabled,
		Mode:              orchestrator.Mode(s.Tribunal.Mode),
		MaxAttempts:       s.Tribunal.MaxAttempts,
		SkipVerification:  s.Tribunal.SkipVerification,
		Weights:           s.Tribunal.Weights,
		LuckTolerance:     s.Tribunal.LuckTolerance,
		Temperature:       temperature.Policy{Multiplier: s.Temperature.Multiplier},
		CriticTemperature: s.Temperature.Critic,
		Cores:             s.CriticCores,
	}
}

// StoreConfig builds the result store configuration.
func (s *Settings) StoreConfig() store.Config {
	return store.Config{Dir: s.DataDir, CacheSize: s.CacheSize}
}
