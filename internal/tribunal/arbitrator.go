package tribunal

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Yates-Labs/compujudge/internal/grade"
	"github.com/Yates-Labs/compujudge/internal/parser"
	"github.com/Yates-Labs/compujudge/internal/provider"
	"github.com/Yates-Labs/compujudge/internal/status"
	"github.com/Yates-Labs/compujudge/internal/temperature"
)

const (
	// ScoreFloor and ScoreCeiling bound every final verdict.
	ScoreFloor   = -200.0
	ScoreCeiling = 200.0

	// FormulaWeightedAverage is the only aggregation rule in use.
	FormulaWeightedAverage = "weighted_average"
)

// Weights are the per-agent multipliers of the weighted average.
type Weights struct {
	Logic    float64 `mapstructure:"logic" json:"logic"`
	Soul     float64 `mapstructure:"soul" json:"soul"`
	Market   float64 `mapstructure:"market" json:"market"`
	Literary float64 `mapstructure:"lit" json:"lit"`
	Jester   float64 `mapstructure:"jester" json:"jester"`
}

// DefaultWeights favours logic and discounts raw emotion.
func DefaultWeights() Weights {
	return Weights{Logic: 1.5, Soul: 0.5, Market: 1.0, Literary: 1.0, Jester: 1.0}
}

// For returns kind's weight.
func (w Weights) For(kind AgentKind) float64 {
	switch kind {
	case Logic:
		return w.Logic
	case Soul:
		return w.Soul
	case Market:
		return w.Market
	case Literary:
		return w.Literary
	case Jester:
		return w.Jester
	}
	return 0
}

// Total is the divisor of the weighted average.
func (w Weights) Total() float64 {
	return w.Logic + w.Soul + w.Market + w.Literary + w.Jester
}

// WeightedAverage computes sum(score*weight)/sum(weight) over the panel.
// Sentinel reports contribute zero.
func WeightedAverage(panel Panel, w Weights) float64 {
	total := w.Total()
	if total == 0 {
		return 0
	}
	sum := 0.0
	for _, kind := range Kinds {
		sum += panel.Get(kind).Score() * w.For(kind)
	}
	return sum / total
}

// Clamp bounds score to [ScoreFloor, ScoreCeiling].
func Clamp(score float64) float64 {
	if score < ScoreFloor {
		return ScoreFloor
	}
	if score > ScoreCeiling {
		return ScoreCeiling
	}
	return score
}

// Arbitrator is the chief justice. The weighted average is delegated to a
// model call so the ruling can explain genre and luck adjustments.
type Arbitrator struct {
	transport     provider.Transport
	prompt        string
	weights       Weights
	luckTolerance float64
}

// NewArbitrator creates an arbitrator using prompt as its system prompt.
func NewArbitrator(transport provider.Transport, prompt string, weights Weights, luckTolerance float64) *Arbitrator {
	return &Arbitrator{
		transport:     transport,
		prompt:        prompt,
		weights:       weights,
		luckTolerance: luckTolerance,
	}
}

type arbitrationResponse struct {
	FinalVerdict  *float64 `json:"final_verdict"`
	Ruling        string   `json:"ruling"`
	LogicScore    *float64 `json:"logic_score"`
	SoulScore     *float64 `json:"soul_score"`
	MarketScore   *float64 `json:"market_score"`
	GenreModifier float64  `json:"genre_modifier"`
	LuckPenalty   float64  `json:"luck_penalty"`
}

// Arbitrate reconciles the panel into a verdict clamped to
// [ScoreFloor, ScoreCeiling]. When the model omits final_verdict the
// weighted average is computed locally. Transport and parse failures are
// returned; there is no sentinel verdict.
func (a *Arbitrator) Arbitrate(ctx context.Context, panel Panel, genre string, sink status.Sink) (grade.Arbitration, error) {
	raw, err := a.transport.Generate(ctx, provider.Request{
		Prompt:       a.Payload(panel, genre),
		SystemPrompt: a.prompt,
		JSONMode:     true,
		Temperature:  provider.Temp(temperature.Arbitration),
		OnStatus:     sink,
	})
	if err != nil {
		return grade.Arbitration{}, fmt.Errorf("arbitration call failed: %w", err)
	}

	var resp arbitrationResponse
	if err := parser.Decode(raw, &resp); err != nil {
		return grade.Arbitration{}, fmt.Errorf("arbitration response: %w", err)
	}

	verdict := grade.Arbitration{
		Ruling:        resp.Ruling,
		LogicScore:    orDefault(resp.LogicScore, panel.Get(Logic).Score()),
		SoulScore:     orDefault(resp.SoulScore, panel.Get(Soul).Score()),
		MarketScore:   orDefault(resp.MarketScore, panel.Get(Market).Score()),
		GenreModifier: resp.GenreModifier,
		LuckPenalty:   resp.LuckPenalty,
		Formula:       FormulaWeightedAverage,
	}
	if resp.FinalVerdict != nil {
		verdict.FinalVerdict = *resp.FinalVerdict
	} else {
		verdict.FinalVerdict = WeightedAverage(panel, a.weights)
		verdict.Computed = true
	}
	verdict.FinalVerdict = Clamp(verdict.FinalVerdict)

	return verdict, nil
}

// Payload renders the panel and settings the chief justice deliberates on.
func (a *Arbitrator) Payload(panel Panel, genre string) string {
	if strings.TrimSpace(genre) == "" {
		genre = "Unknown"
	}

	soul := panel.Get(Soul)
	logic := panel.Get(Logic)

	var soulLine string
	if soul.Soul != nil {
		soulLine = fmt.Sprintf("Score %v (%s) - %s", soul.Score(), soul.Soul.Mood, soul.Soul.Critique)
	} else {
		soulLine = fmt.Sprintf("Score 0 (%s)", soul.Err)
	}

	var logicLine string
	if logic.Logic != nil {
		logicLine = fmt.Sprintf("Score %v - %d plot holes, %d Deus Ex Machinas.",
			logic.Score(), logic.PlotHoles(), logic.Logic.DeusExMachinaCount)
	} else {
		logicLine = fmt.Sprintf("Score 0 (%s)", logic.Err)
	}

	var b strings.Builder
	b.WriteString("[TRIBUNAL REPORTS]:\n")
	fmt.Fprintf(&b, "1. SOUL: %s\n", soulLine)
	fmt.Fprintf(&b, "2. LOGIC: %s\n", logicLine)
	fmt.Fprintf(&b, "3. MARKET: %s\n", mustJSON(panel.Get(Market)))
	fmt.Fprintf(&b, "4. LIT: %s\n", mustJSON(panel.Get(Literary)))
	fmt.Fprintf(&b, "5. JESTER: %s\n", mustJSON(panel.Get(Jester)))
	fmt.Fprintf(&b, "\n[GENRE CONTEXT]: %s\n", genre)
	b.WriteString("[SETTINGS]:\n")
	fmt.Fprintf(&b, "- Logic Weight: %v\n", a.weights.Logic)
	fmt.Fprintf(&b, "- Soul Weight: %v\n", a.weights.Soul)
	fmt.Fprintf(&b, "- Market Weight: %v\n", a.weights.Market)
	fmt.Fprintf(&b, "- Lit Weight: %v\n", a.weights.Literary)
	fmt.Fprintf(&b, "- Jester Weight: %v\n", a.weights.Jester)
	fmt.Fprintf(&b, "- Total Weight: %v\n", a.weights.Total())
	fmt.Fprintf(&b, "- Luck Tolerance: %v\n", a.luckTolerance)
	return b.String()
}

func orDefault(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}

func mustJSON(r AgentReport) string {
	data, err := json.Marshal(r)
	if err != nil {
		return "{}"
	}
	return string(data)
}
