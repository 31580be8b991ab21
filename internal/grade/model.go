// Package grade holds the data model shared by the grading pipeline, the
// result store and the command surface.
package grade

import (
	"encoding/json"
	"time"
)

// Metrics are optional side-channel statistics computed outside the model.
type Metrics struct {
	WordCount        int     `json:"word_count"`
	SentenceVariance float64 `json:"sentence_variance"`
	AdverbDensity    float64 `json:"adverb_density"`
	DialogueRatio    float64 `json:"dialogue_ratio"`
}

// NarrativeArtifact is the text under review. A grading run never mutates it.
type NarrativeArtifact struct {
	Text    string   `json:"text"`
	Metrics *Metrics `json:"metrics,omitempty"`

	// Inspiration is optional source material; it doubles as genre context
	// for the arbitrator.
	Inspiration string `json:"inspiration,omitempty"`

	// Target is the author's target quality score, if any.
	Target int `json:"target,omitempty"`
}

// StructureBeat is one entry of the structure map.
type StructureBeat struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	Characters  []string `json:"characters,omitempty"`
	Tension     float64  `json:"tension"`
	Duration    float64  `json:"duration"`
}

// SandersonMetrics rate promise/payoff, magic rules and the protagonist's
// character sliders.
type SandersonMetrics struct {
	PromisePayoff   float64 `json:"promise_payoff"`
	LawsOfMagic     float64 `json:"laws_of_magic"`
	CharacterAgency float64 `json:"character_agency"`
	Competence      float64 `json:"competence"`
	Proactivity     float64 `json:"proactivity"`
	Likability      float64 `json:"likability"`
}

type MetricItem struct {
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

type MetricCategory struct {
	Score float64      `json:"score"`
	Items []MetricItem `json:"items"`
}

// Arbitration is the chief justice's verdict as attached to a result.
type Arbitration struct {
	FinalVerdict  float64 `json:"final_verdict"`
	Ruling        string  `json:"ruling"`
	LogicScore    float64 `json:"logic_score"`
	SoulScore     float64 `json:"soul_score"`
	MarketScore   float64 `json:"market_score"`
	GenreModifier float64 `json:"genre_modifier"`
	LuckPenalty   float64 `json:"luck_penalty"`

	// Formula names the aggregation rule that produced FinalVerdict.
	Formula string `json:"formula,omitempty"`

	// Computed is true when the verdict was computed locally because the
	// model left it out.
	Computed bool `json:"computed,omitempty"`
}

// VetoMarker is appended to CommercialReason when the logic veto fires.
const VetoMarker = "[LOGIC VETO: Score Slashed]"

// GradeResult is the structured critique returned to the caller.
type GradeResult struct {
	CommercialScore  float64 `json:"commercial_score"`
	CommercialReason string  `json:"commercial_reason"`
	NicheScore       float64 `json:"niche_score"`
	NicheReason      string  `json:"niche_reason"`
	CohesionScore    float64 `json:"cohesion_score"`
	CohesionReason   string  `json:"cohesion_reason"`

	LogLine        string  `json:"log_line"`
	ContentWarning string  `json:"content_warning"`
	ThirdActScore  float64 `json:"third_act_score"`
	NoveltyScore   float64 `json:"novelty_score"`

	TensionArc []float64 `json:"tension_arc"`
	QualityArc []float64 `json:"quality_arc"`

	StructureMap     []StructureBeat           `json:"structure_map,omitempty"`
	SandersonMetrics *SandersonMetrics         `json:"sanderson_metrics,omitempty"`
	DetailedMetrics  map[string]MetricCategory `json:"detailed_metrics,omitempty"`
	ThoughtProcess   string                    `json:"thought_process,omitempty"`

	Arbitration *Arbitration `json:"arbitration_log,omitempty"`

	// Tribunal holds each agent's raw report keyed by agent name.
	Tribunal map[string]json.RawMessage `json:"tribunal_breakdown,omitempty"`

	RunID    string    `json:"run_id,omitempty"`
	Mode     string    `json:"mode,omitempty"`
	Attempts int       `json:"attempts,omitempty"`
	Approved bool      `json:"approved"`
	GradedAt time.Time `json:"graded_at"`
}
