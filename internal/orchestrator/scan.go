package orchestrator

import (
	"context"
	"fmt"
	"log"

	"github.com/Yates-Labs/compujudge/internal/grade"
	"github.com/Yates-Labs/compujudge/internal/parser"
	"github.com/Yates-Labs/compujudge/internal/provider"
	"github.com/Yates-Labs/compujudge/internal/status"
	"github.com/Yates-Labs/compujudge/internal/tribunal"
)

const (
	modeQuickScan = "quick_scan"
	modeMeta      = "meta"
)

// QuickScan asks the literary scout for an instant verdict on the
// artifact's narrative potential. It is a single strict call with no
// tribunal and no QA review.
func (o *Orchestrator) QuickScan(ctx context.Context, req GradeRequest) (*grade.LightGrade, error) {
	var out grade.LightGrade
	if err := o.singlePass(ctx, req, modeQuickScan, "PERFORMING QUICK SCAN...", o.catalogue.QuickScan, &out); err != nil {
		return nil, err
	}
	out.Score = grade.LooseScore(tribunal.Clamp(float64(out.Score)))
	return &out, nil
}

// MetaAnalysis asks the semiotic analyst what the story is actually about.
func (o *Orchestrator) MetaAnalysis(ctx context.Context, req GradeRequest) (*grade.MetaAnalysis, error) {
	var out grade.MetaAnalysis
	if err := o.singlePass(ctx, req, modeMeta, "RUNNING DIAGNOSTICS...", o.catalogue.Meta, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// singlePass sends the bare artifact text to systemPrompt at the strict
// critic temperature and decodes the reply into v.
func (o *Orchestrator) singlePass(ctx context.Context, req GradeRequest, mode, msg, systemPrompt string, v any) error {
	if err := cancelled(ctx, "before "+mode); err != nil {
		return err
	}
	if req.Artifact.Text == "" {
		return fmt.Errorf("%w: artifact text is empty", ErrGradingFailed)
	}

	started := o.now()
	status.Report(req.OnStatus, msg, 0)

	raw, err := o.transport.Generate(ctx, provider.Request{
		Prompt:       req.Artifact.Text,
		SystemPrompt: systemPrompt,
		JSONMode:     true,
		Temperature:  provider.Temp(o.config.Temperature.Resolve(o.config.CriticTemperature, true)),
		OnStatus:     req.OnStatus,
	})
	if err == nil {
		err = parser.Decode(raw, v)
	}
	if err != nil {
		log.Printf("[Scan] %s failed: %v", mode, err)
		o.metrics.observeRun(mode, "failed", started)
		return stageFailed(mode, err)
	}

	o.metrics.observeRun(mode, "completed", started)
	status.Report(req.OnStatus, "READY", 100)
	return nil
}
