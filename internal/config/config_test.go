package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yates-Labs/compujudge/internal/orchestrator"
	"github.com/Yates-Labs/compujudge/internal/store"
)

// isolate keeps the developer's environment and config files out of a test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY"} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	s, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "gemini", s.Provider)
	assert.Equal(t, "gemini-2.0-flash", s.Gemini.Model)
	assert.True(t, s.Tribunal.Enabled)
	assert.Equal(t, "parallel", s.Tribunal.Mode)
	assert.Equal(t, orchestrator.DefaultMaxAttempts, s.Tribunal.MaxAttempts)
	assert.Equal(t, 1.5, s.Tribunal.Weights.Logic)
	assert.Equal(t, 0.5, s.Tribunal.Weights.Soul)
	assert.Equal(t, 1.0, s.Temperature.Multiplier)
	assert.Equal(t, store.DefaultDataDir, s.DataDir)
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	isolate(t)
	path := writeFile(t, "compujudge.yaml", `
provider: anthropic
anthropic:
  model: claude-test
  api_key: from-file
tribunal:
  mode: iterative
  max_attempts: 4
  weights:
    logic: 2
    jester: 0
temperature:
  multiplier: 1.2
critic_cores: 3
`)
	t.Setenv("COMPUJUDGE_TRIBUNAL_SKIP_VERIFICATION", "true")
	t.Setenv("COMPUJUDGE_ANTHROPIC_API_KEY", "from-env")

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "anthropic", s.Provider)
	assert.Equal(t, "from-env", s.Anthropic.APIKey)
	assert.Equal(t, 2.0, s.Tribunal.Weights.Logic)
	assert.Equal(t, 0.0, s.Tribunal.Weights.Jester)
	assert.Equal(t, 1.0, s.Tribunal.Weights.Market)

	pc := s.ProviderConfig()
	assert.Equal(t, "anthropic", pc.Provider)
	assert.Equal(t, "claude-test", pc.Model)
	assert.Equal(t, "from-env", pc.APIKey)

	oc := s.OrchestratorConfig()
	assert.Equal(t, orchestrator.ModeIterative, oc.Mode)
	assert.Equal(t, 4, oc.MaxAttempts)
	assert.True(t, oc.SkipVerification)
	assert.Equal(t, 1.2, oc.Temperature.Multiplier)
	assert.Equal(t, 3, oc.Cores)
}

func TestLoad_VendorKeyFallback(t *testing.T) {
	isolate(t)
	t.Setenv("OPENAI_API_KEY", "sk-vendor")
	t.Setenv("COMPUJUDGE_PROVIDER", "openai")

	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sk-vendor", s.ProviderConfig().APIKey)
	assert.Equal(t, "gpt-4o", s.ProviderConfig().Model)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	isolate(t)
	base, err := Load("")
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"unknown provider", func(s *Settings) { s.Provider = "mistral" }},
		{"empty model", func(s *Settings) { s.Gemini.Model = "" }},
		{"unknown mode", func(s *Settings) { s.Tribunal.Mode = "round-robin" }},
		{"no attempts", func(s *Settings) { s.Tribunal.MaxAttempts = 0 }},
		{"negative weight", func(s *Settings) { s.Tribunal.Weights.Soul = -1 }},
		{"zero weights", func(s *Settings) {
			s.Tribunal.Weights.Logic, s.Tribunal.Weights.Soul, s.Tribunal.Weights.Market = 0, 0, 0
			s.Tribunal.Weights.Literary, s.Tribunal.Weights.Jester = 0, 0
		}},
		{"negative multiplier", func(s *Settings) { s.Temperature.Multiplier = -0.5 }},
		{"negative tokens", func(s *Settings) { s.MaxOutputTokens = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := *base
			tt.mutate(&s)
			assert.ErrorIs(t, s.Validate(), ErrInvalidConfig)
		})
	}

	assert.NoError(t, base.Validate())
}
