package tribunal

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Yates-Labs/compujudge/internal/parser"
	"github.com/Yates-Labs/compujudge/internal/provider"
	"github.com/Yates-Labs/compujudge/internal/status"
	"github.com/Yates-Labs/compujudge/internal/temperature"
)

const (
	VerdictPass = "PASS"
	VerdictFail = "FAIL"
)

// Review is the QA analyst's decision on a candidate verdict.
type Review struct {
	Verdict string `json:"verdict"`
	Reason  string `json:"reason"`
}

// Passed reports whether the analyst approved. Matching is case-insensitive.
func (r Review) Passed() bool {
	return strings.EqualFold(strings.TrimSpace(r.Verdict), VerdictPass)
}

// RejectionNote is the feedback line carried into the next attempt.
func RejectionNote(reason string) string {
	return fmt.Sprintf("\n[ANALYST REJECTION]: The previous draft was rejected because: %s. FIX THIS.", reason)
}

// Verifier is the QA analyst.
type Verifier struct {
	transport provider.Transport
	prompt    string
}

// NewVerifier creates a verifier using prompt as its system prompt.
func NewVerifier(transport provider.Transport, prompt string) *Verifier {
	return &Verifier{transport: transport, prompt: prompt}
}

// Verify checks the numeric verdict against its reasoning. Only those two
// are shown to the analyst so a score already reduced by the veto is not
// mistaken for an arithmetic error.
func (v *Verifier) Verify(ctx context.Context, verdict float64, reasoning string, sink status.Sink) (Review, error) {
	report, err := json.Marshal(struct {
		FinalScore float64 `json:"final_score"`
		Reasoning  string  `json:"reasoning"`
	}{verdict, reasoning})
	if err != nil {
		return Review{}, fmt.Errorf("encode verdict for review: %w", err)
	}

	prompt := fmt.Sprintf("\n[INPUT REPORT]:\n%s\n\n[TASK]: Verify this verdict matches the Zero-Based Scoring Protocol and that the reasoning supports the score.\n", report)

	raw, err := v.transport.Generate(ctx, provider.Request{
		Prompt:       prompt,
		SystemPrompt: v.prompt,
		JSONMode:     true,
		Temperature:  provider.Temp(temperature.Arbitration),
		OnStatus:     sink,
	})
	if err != nil {
		return Review{}, fmt.Errorf("verification call failed: %w", err)
	}

	var review Review
	if err := parser.Decode(raw, &review); err != nil {
		return Review{}, fmt.Errorf("verification response: %w", err)
	}
	return review, nil
}
