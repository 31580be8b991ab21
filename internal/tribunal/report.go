// Package tribunal defines the grading panel: five critic agents, the chief
// justice that reconciles them, the logic veto, and the QA analyst that
// signs off on a verdict.
package tribunal

import (
	"encoding/json"
	"fmt"

	"github.com/Yates-Labs/compujudge/internal/parser"
)

// AgentKind identifies a critic on the panel.
type AgentKind string

const (
	Logic    AgentKind = "logic"
	Market   AgentKind = "market"
	Soul     AgentKind = "soul"
	Literary AgentKind = "lit"
	Jester   AgentKind = "jester"
)

// Kinds lists the panel in iterative dispatch order.
var Kinds = []AgentKind{Logic, Market, Soul, Literary, Jester}

// Title is the name shown in progress messages.
func (k AgentKind) Title() string {
	switch k {
	case Logic:
		return "LOGIC ENGINE"
	case Market:
		return "MARKET ANALYST"
	case Soul:
		return "THE SOUL"
	case Literary:
		return "LITERARY CRITIC"
	case Jester:
		return "THE JESTER"
	default:
		return string(k)
	}
}

func (k AgentKind) failureLabel() string {
	switch k {
	case Logic:
		return "Logic Failed"
	case Market:
		return "Market Failed"
	case Soul:
		return "Soul Failed"
	case Literary:
		return "Lit Failed"
	case Jester:
		return "Jester Failed"
	default:
		return string(k) + " Failed"
	}
}

type LogicFindings struct {
	Score              float64  `json:"score"`
	Inconsistencies    []string `json:"inconsistencies"`
	LuckIncidents      []string `json:"luck_incidents"`
	DeusExMachinaCount int      `json:"deus_ex_machina_count"`
}

type MarketFindings struct {
	CommercialScore  float64 `json:"commercial_score"`
	CommercialReason string  `json:"commercial_reason"`
	LogLine          string  `json:"log_line"`
}

type SoulFindings struct {
	Score    float64 `json:"score"`
	Mood     string  `json:"mood"`
	Critique string  `json:"critique"`
}

type LiteraryFindings struct {
	Score       float64 `json:"score"`
	NicheReason string  `json:"niche_reason"`
}

type JesterFindings struct {
	Roast         string  `json:"roast"`
	ScoreModifier float64 `json:"score_modifier"`
}

// AgentReport is one agent's output. Exactly one findings field is set for
// a successful report; a sentinel report has Err set and no findings.
// Scores are deliberately left unclamped.
type AgentReport struct {
	Kind AgentKind
	Err  string

	Logic    *LogicFindings
	Market   *MarketFindings
	Soul     *SoulFindings
	Literary *LiteraryFindings
	Jester   *JesterFindings
}

// Sentinel is the neutral report standing in for an agent that failed.
func Sentinel(kind AgentKind) AgentReport {
	return AgentReport{Kind: kind, Err: kind.failureLabel()}
}

// Failed reports whether r is a sentinel.
func (r AgentReport) Failed() bool { return r.Err != "" }

// Score is the agent's signed score; sentinels score zero.
func (r AgentReport) Score() float64 {
	switch {
	case r.Logic != nil:
		return r.Logic.Score
	case r.Market != nil:
		return r.Market.CommercialScore
	case r.Soul != nil:
		return r.Soul.Score
	case r.Literary != nil:
		return r.Literary.Score
	case r.Jester != nil:
		return r.Jester.ScoreModifier
	}
	return 0
}

// PlotHoles is the number of logic inconsistencies, zero for other agents.
func (r AgentReport) PlotHoles() int {
	if r.Logic == nil {
		return 0
	}
	return len(r.Logic.Inconsistencies)
}

// MarshalJSON emits the agent's native shape, or {"error": ...} for a sentinel.
func (r AgentReport) MarshalJSON() ([]byte, error) {
	var v any
	switch {
	case r.Failed():
		v = map[string]string{"error": r.Err}
	case r.Logic != nil:
		v = r.Logic
	case r.Market != nil:
		v = r.Market
	case r.Soul != nil:
		v = r.Soul
	case r.Literary != nil:
		v = r.Literary
	case r.Jester != nil:
		v = r.Jester
	default:
		v = map[string]string{}
	}
	return json.Marshal(v)
}

// DecodeReport parses raw model output into kind's report.
func DecodeReport(kind AgentKind, raw string) (AgentReport, error) {
	report := AgentReport{Kind: kind}
	var err error
	switch kind {
	case Logic:
		report.Logic = &LogicFindings{}
		err = parser.Decode(raw, report.Logic)
	case Market:
		report.Market = &MarketFindings{}
		err = parser.Decode(raw, report.Market)
	case Soul:
		report.Soul = &SoulFindings{}
		err = parser.Decode(raw, report.Soul)
	case Literary:
		report.Literary = &LiteraryFindings{}
		err = parser.Decode(raw, report.Literary)
	case Jester:
		report.Jester = &JesterFindings{}
		err = parser.Decode(raw, report.Jester)
	default:
		return Sentinel(kind), fmt.Errorf("unknown agent kind %q", kind)
	}
	if err != nil {
		return Sentinel(kind), err
	}
	return report, nil
}

// Panel is the full set of reports from one tribunal pass.
type Panel map[AgentKind]AgentReport

// Get returns kind's report, or its sentinel when absent.
func (p Panel) Get(kind AgentKind) AgentReport {
	if r, ok := p[kind]; ok {
		return r
	}
	return Sentinel(kind)
}

// AllFailed reports whether every agent on the panel produced a sentinel.
func (p Panel) AllFailed() bool {
	for _, kind := range Kinds {
		if !p.Get(kind).Failed() {
			return false
		}
	}
	return true
}

// Breakdown renders every report as raw JSON keyed by agent kind.
func (p Panel) Breakdown() map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(Kinds))
	for _, kind := range Kinds {
		data, err := json.Marshal(p.Get(kind))
		if err != nil {
			continue
		}
		out[string(kind)] = data
	}
	return out
}
