package prompts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_EveryPromptPresent(t *testing.T) {
	cat := Default()
	for name, p := range map[string]string{
		"forensic":   cat.Forensic,
		"logic":      cat.Logic,
		"market":     cat.Market,
		"soul":       cat.Soul,
		"literary":   cat.Literary,
		"jester":     cat.Jester,
		"arbitrator": cat.Arbitrator,
		"analyst":    cat.Analyst,
		"quick_scan": cat.QuickScan,
		"meta":       cat.Meta,
	} {
		assert.NotEmpty(t, p, name)
	}
	assert.Contains(t, cat.Logic, "deus_ex_machina_count")
	assert.Contains(t, cat.Arbitrator, "final_verdict")
	assert.Contains(t, cat.QuickScan, "key_improvement")
	assert.Contains(t, cat.Meta, "symbol_web")
}

func TestLoad_MergesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: custom-1\njester: |\n  Be gentle.\nquick_scan: SCOUT\n"), 0o644))

	cat, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "custom-1", cat.Version)
	assert.Equal(t, "Be gentle.\n", cat.Jester)
	assert.Equal(t, "SCOUT", cat.QuickScan)
	assert.Equal(t, Default().Meta, cat.Meta)
	assert.Equal(t, Default().Logic, cat.Logic)
}

func TestLoad_EmptyPathAndErrors(t *testing.T) {
	cat, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cat)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("logic: [unterminated"), 0o644))
	_, err = Load(bad)
	assert.ErrorIs(t, err, ErrInvalidCatalogue)
}
