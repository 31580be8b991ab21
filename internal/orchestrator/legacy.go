package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/Yates-Labs/compujudge/internal/grade"
	"github.com/Yates-Labs/compujudge/internal/parser"
	"github.com/Yates-Labs/compujudge/internal/provider"
	"github.com/Yates-Labs/compujudge/internal/status"
	"github.com/Yates-Labs/compujudge/internal/tribunal"
)

// gradeLegacy runs Cores identical forensic passes concurrently and averages
// the ones that parse. Failed passes are logged and dropped. The merged
// score is clamped and the arcs share one length, as on the tribunal path.
func (o *Orchestrator) gradeLegacy(ctx context.Context, req GradeRequest) (*grade.GradeResult, error) {
	sink := req.OnStatus
	cores := o.config.cores()
	payload := legacyPayload(req, o.catalogue.LegacyInstruction)
	temp := o.config.Temperature.Resolve(o.config.CriticTemperature, true)

	status.Report(sink, fmt.Sprintf("INITIALIZING %d FORENSIC CORES...", cores), 0)

	if err := cancelled(ctx, "before dispatching cores"); err != nil {
		return nil, err
	}

	results := make([]*grade.GradeResult, cores)
	g, gctx := errgroup.WithContext(ctx)
	for i := range cores {
		g.Go(func() error {
			raw, err := o.transport.Generate(gctx, provider.Request{
				Prompt:       payload,
				SystemPrompt: o.catalogue.Forensic,
				JSONMode:     true,
				Temperature:  provider.Temp(temp),
				OnStatus:     sink,
			})
			if err != nil {
				if errors.Is(err, provider.ErrCancelled) {
					return err
				}
				log.Printf("[Legacy] Core %d failed: %v", i+1, err)
				return nil
			}

			var r grade.GradeResult
			if err := parser.Decode(raw, &r); err != nil {
				log.Printf("[Legacy] Core %d returned unparseable output: %v", i+1, err)
				return nil
			}
			results[i] = &r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	succeeded := make([]*grade.GradeResult, 0, cores)
	for _, r := range results {
		if r != nil {
			succeeded = append(succeeded, r)
		}
	}
	o.metrics.observeCores(len(succeeded), cores-len(succeeded))

	if len(succeeded) == 0 {
		return nil, fmt.Errorf("%w: %d of %d passes failed", ErrAllCoresFailed, cores, cores)
	}

	status.Report(sink, "SYNTHESIZING FORENSIC REPORT...", 95)
	final := Average(succeeded)
	final.CommercialScore = tribunal.Clamp(final.CommercialScore)
	final.NormalizeArcs()
	final.Attempts = 1
	return final, nil
}
