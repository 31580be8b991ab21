// Package prompts holds the system prompts that give each grading agent its
// identity. The catalogue is configuration: defaults ship with the binary and
// any entry can be replaced from a YAML file.
package prompts

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidCatalogue = errors.New("invalid prompt catalogue")
)

// Catalogue is the full set of prompts used by a grading run.
type Catalogue struct {
	Version string `yaml:"version"`

	// Forensic produces the base result structure.
	Forensic string `yaml:"forensic"`

	Logic    string `yaml:"logic"`
	Market   string `yaml:"market"`
	Soul     string `yaml:"soul"`
	Literary string `yaml:"literary"`
	Jester   string `yaml:"jester"`

	Arbitrator string `yaml:"arbitrator"`
	Analyst    string `yaml:"analyst"`

	// QuickScan and Meta back the single-call diagnostics.
	QuickScan string `yaml:"quick_scan"`
	Meta      string `yaml:"meta"`

	// LegacyInstruction is appended to the legacy averaging payload.
	LegacyInstruction string `yaml:"legacy_instruction"`
}

// Default returns the built-in catalogue.
func Default() Catalogue {
	return Catalogue{
		Version:           "v23",
		Forensic:          forensicPrompt,
		Logic:             logicPrompt,
		Market:            marketPrompt,
		Soul:              soulPrompt,
		Literary:          literaryPrompt,
		Jester:            jesterPrompt,
		Arbitrator:        arbitratorPrompt,
		Analyst:           analystPrompt,
		QuickScan:         quickScanPrompt,
		Meta:              metaPrompt,
		LegacyInstruction: legacyInstruction,
	}
}

// Load returns the default catalogue with any non-empty entries from the
// YAML file at path applied on top. An empty path returns the defaults.
func Load(path string) (Catalogue, error) {
	cat := Default()
	if path == "" {
		return cat, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cat, fmt.Errorf("failed to read prompt catalogue: %w", err)
	}

	var override Catalogue
	if err := yaml.Unmarshal(data, &override); err != nil {
		return cat, fmt.Errorf("%w: %s: %w", ErrInvalidCatalogue, path, err)
	}

	cat.merge(override)
	return cat, nil
}

func (c *Catalogue) merge(o Catalogue) {
	set := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	set(&c.Version, o.Version)
	set(&c.Forensic, o.Forensic)
	set(&c.Logic, o.Logic)
	set(&c.Market, o.Market)
	set(&c.Soul, o.Soul)
	set(&c.Literary, o.Literary)
	set(&c.Jester, o.Jester)
	set(&c.Arbitrator, o.Arbitrator)
	set(&c.Analyst, o.Analyst)
	set(&c.QuickScan, o.QuickScan)
	set(&c.Meta, o.Meta)
	set(&c.LegacyInstruction, o.LegacyInstruction)
}
