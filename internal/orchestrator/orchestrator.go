// Package orchestrator runs a grading request end to end. With the tribunal
// enabled it convenes the agent panel, arbitrates, applies the logic veto and
// loops through QA review; otherwise it falls back to the legacy averaging
// path of N identical forensic passes.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Yates-Labs/compujudge/internal/grade"
	"github.com/Yates-Labs/compujudge/internal/prompts"
	"github.com/Yates-Labs/compujudge/internal/provider"
	"github.com/Yates-Labs/compujudge/internal/status"
	"github.com/Yates-Labs/compujudge/internal/temperature"
	"github.com/Yates-Labs/compujudge/internal/tribunal"
)

var (
	ErrGradingFailed  = errors.New("grading failed to produce a response")
	ErrAllCoresFailed = errors.New("all forensic cores failed")
	ErrInvalidConfig  = errors.New("invalid orchestrator configuration")
)

// Mode selects how the tribunal dispatches its agents.
type Mode string

const (
	ModeParallel  Mode = "parallel"
	ModeIterative Mode = "iterative"

	// modeLegacy labels runs that bypassed the tribunal.
	modeLegacy = "legacy"
)

const (
	DefaultMaxAttempts = 2
	MinCores           = 1
	MaxCores           = 10

	// forensicBaseTemperature is the strict temperature of the forensic scan.
	forensicBaseTemperature = 0.1
)

// Config holds the knobs of a grading run.
type Config struct {
	// EnableTribunal selects the multi-agent pipeline; false runs the legacy path.
	EnableTribunal bool

	// Mode is parallel (default) or iterative.
	Mode Mode

	// MaxAttempts bounds the QA retry loop (0 = DefaultMaxAttempts)
	MaxAttempts int

	// SkipVerification approves the first verdict without a QA call.
	SkipVerification bool

	Weights       tribunal.Weights
	LuckTolerance float64

	Temperature temperature.Policy

	// CriticTemperature is the legacy path's base temperature (always strict).
	CriticTemperature float64

	// Cores is the number of legacy passes, bounded to [MinCores, MaxCores].
	Cores int
}

// DefaultConfig returns the tribunal in parallel mode with two attempts.
func DefaultConfig() Config {
	return Config{
		EnableTribunal:    true,
		Mode:              ModeParallel,
		MaxAttempts:       DefaultMaxAttempts,
		Weights:           tribunal.DefaultWeights(),
		LuckTolerance:     0,
		Temperature:       temperature.Policy{Multiplier: 1.0},
		CriticTemperature: 0.1,
		Cores:             1,
	}
}

func (c Config) maxAttempts() int {
	if c.MaxAttempts < 1 {
		return DefaultMaxAttempts
	}
	return c.MaxAttempts
}

func (c Config) cores() int {
	switch {
	case c.Cores < MinCores:
		return MinCores
	case c.Cores > MaxCores:
		return MaxCores
	}
	return c.Cores
}

// GradeRequest is one artifact to grade.
type GradeRequest struct {
	Artifact grade.NarrativeArtifact

	// StoryBible is optional prior wizard state, passed through to the
	// agents as context. It is opaque JSON.
	StoryBible json.RawMessage

	// OnStatus receives progress; nil falls back to status.Default.
	OnStatus status.Sink
}

// Orchestrator grades narrative artifacts. It holds no per-run state and is
// safe for concurrent use.
type Orchestrator struct {
	config     Config
	transport  provider.Transport
	catalogue  prompts.Catalogue
	pool       []tribunal.Agent
	arbitrator *tribunal.Arbitrator
	verifier   *tribunal.Verifier
	metrics    *Metrics
	now        func() time.Time
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithMetrics records run activity on m.
func WithMetrics(m *Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithClock overrides the timestamp source, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New creates an orchestrator that sends every model call through transport.
func New(config Config, transport provider.Transport, catalogue prompts.Catalogue, opts ...Option) (*Orchestrator, error) {
	if transport == nil {
		return nil, fmt.Errorf("%w: transport is required", ErrInvalidConfig)
	}
	if config.Mode == "" {
		config.Mode = ModeParallel
	}
	if config.Mode != ModeParallel && config.Mode != ModeIterative {
		return nil, fmt.Errorf("%w: unknown tribunal mode %q", ErrInvalidConfig, config.Mode)
	}
	if config.Weights.Total() <= 0 {
		return nil, fmt.Errorf("%w: agent weights must sum to a positive total", ErrInvalidConfig)
	}

	o := &Orchestrator{
		config:     config,
		transport:  transport,
		catalogue:  catalogue,
		pool:       tribunal.DefaultPool(catalogue),
		arbitrator: tribunal.NewArbitrator(transport, catalogue.Arbitrator, config.Weights, config.LuckTolerance),
		verifier:   tribunal.NewVerifier(transport, catalogue.Analyst),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Grade runs the configured pipeline on req.
func (o *Orchestrator) Grade(ctx context.Context, req GradeRequest) (*grade.GradeResult, error) {
	if err := cancelled(ctx, "before grading"); err != nil {
		return nil, err
	}
	if req.Artifact.Text == "" {
		return nil, fmt.Errorf("%w: artifact text is empty", ErrGradingFailed)
	}

	started := o.now()
	mode := string(o.config.Mode)
	run := o.gradeTribunal
	if !o.config.EnableTribunal {
		mode = modeLegacy
		run = o.gradeLegacy
	}

	result, err := run(ctx, req)
	if err != nil {
		o.metrics.observeRun(mode, "failed", started)
		return nil, err
	}

	result.RunID = uuid.NewString()
	result.Mode = mode
	result.GradedAt = o.now()

	outcome := "unapproved"
	if result.Approved {
		outcome = "approved"
	}
	o.metrics.observeRun(mode, outcome, started)
	return result, nil
}

// cancelled reports ctx cancellation as provider.ErrCancelled.
func cancelled(ctx context.Context, stage string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: context cancelled %s: %w", provider.ErrCancelled, stage, err)
	}
	return nil
}
