package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Yates-Labs/compujudge/internal/grade"
	"github.com/Yates-Labs/compujudge/internal/parser"
	"github.com/Yates-Labs/compujudge/internal/provider"
	"github.com/Yates-Labs/compujudge/internal/status"
	"github.com/Yates-Labs/compujudge/internal/tribunal"
)

// gradeTribunal runs Idle → RunningAgents → Arbitrating → Verifying →
// {Approved | Retrying} until approval or MaxAttempts. The last result is
// returned even when it was never approved.
func (o *Orchestrator) gradeTribunal(ctx context.Context, req GradeRequest) (*grade.GradeResult, error) {
	sink := req.OnStatus
	status.Report(sink, "CONVENING THE TRIBUNAL...", 0)

	base := tribunalPayload(req)
	maxAttempts := o.config.maxAttempts()

	var (
		feedback strings.Builder
		last     *grade.GradeResult
	)

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		progress := func(stage int) int {
			// Four stages per attempt spread over 0..95.
			return ((attempt-1)*4 + stage) * 95 / (maxAttempts * 4)
		}

		if attempt > 1 {
			status.Report(sink, fmt.Sprintf("RE-CONVENING TRIBUNAL (ATTEMPT %d)...", attempt), progress(0))
		} else {
			status.Report(sink, "STARTING TRIBUNAL PROCESS...", progress(0))
		}

		if err := cancelled(ctx, "before tribunal attempt"); err != nil {
			return nil, err
		}

		// Stage 1: agents and the forensic scan
		payload := withFeedback(base, feedback.String())
		panel, forensicRaw, err := o.convene(ctx, payload, sink, progress(1))
		if err != nil {
			return nil, err
		}
		o.metrics.observePanel(panel)

		// Stage 2: arbitration
		if err := cancelled(ctx, "before arbitration"); err != nil {
			return nil, err
		}
		status.Report(sink, "CHIEF JUSTICE: DELIBERATING...", progress(2))
		verdict, err := o.arbitrator.Arbitrate(ctx, panel, req.Artifact.Inspiration, sink)
		if err != nil {
			return nil, stageFailed("arbitration", err)
		}

		result, err := baseResult(panel, forensicRaw)
		if err != nil {
			return nil, err
		}
		o.applyVerdict(result, panel, verdict)
		result.Attempts = attempt
		last = result

		if o.config.SkipVerification {
			result.Approved = true
			status.Report(sink, "GRADE ANALYST: SKIPPED.", 100)
			break
		}

		// Stage 3: QA review
		if err := cancelled(ctx, "before verification"); err != nil {
			return nil, err
		}
		status.Report(sink, "GRADE ANALYST: VERIFYING OUTPUT...", progress(3))
		review, err := o.verifier.Verify(ctx, result.CommercialScore, result.CommercialReason, sink)
		if err != nil {
			return nil, stageFailed("verification", err)
		}
		o.metrics.observeReview(review)

		if review.Passed() {
			result.Approved = true
			status.Report(sink, "GRADE ANALYST: APPROVED.", 100)
			break
		}

		log.Printf("[Tribunal] Grade analyst rejected attempt %d/%d: %s", attempt, maxAttempts, review.Reason)
		if attempt < maxAttempts {
			status.Report(sink, fmt.Sprintf("ANALYST REJECTED: %s. RETRYING...", review.Reason), progress(4))
		} else {
			status.Report(sink, fmt.Sprintf("ANALYST REJECTED: %s. RETURNING LAST DRAFT.", review.Reason), 100)
		}
		feedback.WriteString(tribunal.RejectionNote(review.Reason))
	}

	if last == nil {
		return nil, ErrGradingFailed
	}
	o.metrics.observeAttempts(last.Attempts)
	return last, nil
}

// convene runs the five agents plus the forensic scan. Agent failures come
// back as sentinels; the only error is cancellation.
func (o *Orchestrator) convene(ctx context.Context, payload string, sink status.Sink, pct int) (tribunal.Panel, string, error) {
	reports := make([]tribunal.AgentReport, len(o.pool))
	var (
		forensicRaw string
		forensicErr error
	)

	if o.config.Mode == ModeIterative {
		for i, agent := range o.pool {
			if err := cancelled(ctx, "before dispatching "+string(agent.Kind)); err != nil {
				return nil, "", err
			}
			status.Report(sink, fmt.Sprintf("AGENT %d/%d: %s...", i+1, len(o.pool), agent.Kind.Title()), pct)
			report, err := agent.Run(ctx, o.transport, o.config.Temperature, payload, sink)
			if err != nil {
				return nil, "", err
			}
			reports[i] = report
		}

		if err := cancelled(ctx, "before forensic scan"); err != nil {
			return nil, "", err
		}
		status.Report(sink, "FORENSIC SYSTEM SCAN...", pct)
		forensicRaw, forensicErr = o.forensic(ctx, payload, sink)
	} else {
		if err := cancelled(ctx, "before dispatching agents"); err != nil {
			return nil, "", err
		}
		status.Report(sink, "CONVENING AGENTS: LOGIC, MARKET, SOUL, LIT, JESTER...", pct)

		g, gctx := errgroup.WithContext(ctx)
		for i, agent := range o.pool {
			g.Go(func() error {
				report, err := agent.Run(gctx, o.transport, o.config.Temperature, payload, sink)
				reports[i] = report
				return err
			})
		}
		g.Go(func() error {
			forensicRaw, forensicErr = o.forensic(gctx, payload, sink)
			if errors.Is(forensicErr, provider.ErrCancelled) {
				return forensicErr
			}
			return nil
		})
		if err := g.Wait(); err != nil {
			return nil, "", err
		}
	}

	if errors.Is(forensicErr, provider.ErrCancelled) {
		return nil, "", forensicErr
	}
	if forensicErr != nil {
		log.Printf("[Tribunal] Forensic scan failed: %v", forensicErr)
		forensicRaw = ""
	}

	panel := make(tribunal.Panel, len(o.pool))
	for i, agent := range o.pool {
		panel[agent.Kind] = reports[i]
	}
	return panel, forensicRaw, nil
}

func (o *Orchestrator) forensic(ctx context.Context, payload string, sink status.Sink) (string, error) {
	return o.transport.Generate(ctx, provider.Request{
		Prompt:       payload,
		SystemPrompt: o.catalogue.Forensic,
		JSONMode:     true,
		Temperature:  provider.Temp(o.config.Temperature.Resolve(forensicBaseTemperature, true)),
		OnStatus:     sink,
	})
}

// baseResult decodes the forensic scan into the result skeleton. With no
// usable scan and no surviving agent there is nothing to report.
func baseResult(panel tribunal.Panel, forensicRaw string) (*grade.GradeResult, error) {
	result := &grade.GradeResult{}
	if forensicRaw != "" {
		if err := parser.Decode(forensicRaw, result); err != nil {
			log.Printf("[Tribunal] Forensic scan unparseable: %v", err)
			result = &grade.GradeResult{}
			forensicRaw = ""
		}
	}

	if forensicRaw == "" && panel.AllFailed() {
		return nil, fmt.Errorf("%w: every agent and the forensic scan failed", ErrGradingFailed)
	}
	return result, nil
}

// applyVerdict maps the verdict and the panel onto result, applying the
// logic veto to the commercial score.
func (o *Orchestrator) applyVerdict(result *grade.GradeResult, panel tribunal.Panel, verdict grade.Arbitration) {
	logic := panel.Get(tribunal.Logic)
	soul := panel.Get(tribunal.Soul)
	market := panel.Get(tribunal.Market)

	score, vetoed := tribunal.ApplyVeto(verdict.FinalVerdict, logic.Score())
	result.CommercialScore = score
	result.CommercialReason = "[CHIEF JUSTICE RULING]: " + verdict.Ruling
	if vetoed {
		result.CommercialReason += tribunal.VetoAnnotation
		o.metrics.observeVeto()
	}

	result.NicheScore = soul.Score()
	if soul.Soul != nil {
		result.NicheReason = soul.Soul.Critique
	} else {
		result.NicheReason = soul.Err
	}

	result.CohesionScore = logic.Score()
	result.CohesionReason = fmt.Sprintf("Plot Holes: %d", logic.PlotHoles())

	if result.LogLine == "" && market.Market != nil {
		result.LogLine = market.Market.LogLine
	}

	result.Arbitration = &verdict
	result.Tribunal = panel.Breakdown()
	result.NormalizeArcs()
}

// stageFailed wraps an arbitration or verification failure. Cancellation
// keeps its own kind; anything else becomes ErrGradingFailed while staying
// matchable as the underlying transport or parse error.
func stageFailed(stage string, err error) error {
	if errors.Is(err, provider.ErrCancelled) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrGradingFailed, stage, err)
}
