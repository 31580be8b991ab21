package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yates-Labs/compujudge/internal/grade"
	"github.com/Yates-Labs/compujudge/internal/provider"
)

const corePass = `{"commercial_score": 40, "commercial_reason": "Sells", "niche_score": 20, "niche_reason": "Odd", "cohesion_score": 8, "cohesion_reason": "Tight", "log_line": "A clock thief.", "content_warning": "None", "third_act_score": 5, "novelty_score": 7, "tension_arc": [1, 2, 3], "quality_arc": [3, 2, 1]}`

func legacyConfig(cores int) Config {
	cfg := DefaultConfig()
	cfg.EnableTribunal = false
	cfg.Cores = cores
	return cfg
}

func TestGradeLegacy_DropsFailedCores(t *testing.T) {
	var n atomic.Int32
	mock := provider.NewMockFunc(func(req provider.Request) (string, error) {
		if n.Add(1) == 1 {
			return "", provider.ErrTransport
		}
		return corePass, nil
	})

	o, err := New(legacyConfig(3), mock, testCatalogue())
	require.NoError(t, err)

	result, err := o.Grade(context.Background(), request())
	require.NoError(t, err)

	assert.Equal(t, "legacy", result.Mode)
	assert.Equal(t, 40.0, result.CommercialScore)
	assert.Equal(t, "Sells", result.CommercialReason)
	assert.Equal(t, []float64{1, 2, 3}, result.TensionArc)
	assert.Equal(t, 1, result.Attempts)
	assert.Len(t, mock.Calls(), 3)
}

func TestGradeLegacy_AllCoresFail(t *testing.T) {
	mock := provider.NewMock("no json here")
	o, err := New(legacyConfig(2), mock, testCatalogue())
	require.NoError(t, err)

	_, err = o.Grade(context.Background(), request())
	assert.ErrorIs(t, err, ErrAllCoresFailed)
}

func TestGradeLegacy_CoreBounds(t *testing.T) {
	tests := []struct {
		cores int
		want  int
	}{
		{0, MinCores},
		{-4, MinCores},
		{4, 4},
		{50, MaxCores},
	}

	for _, tt := range tests {
		mock := provider.NewMock(corePass)
		o, err := New(legacyConfig(tt.cores), mock, testCatalogue())
		require.NoError(t, err)

		_, err = o.Grade(context.Background(), request())
		require.NoError(t, err)
		assert.Len(t, mock.Calls(), tt.want, "cores=%d", tt.cores)
	}
}

func TestGradeLegacy_Request(t *testing.T) {
	mock := provider.NewMock(corePass)
	cfg := legacyConfig(1)
	cfg.CriticTemperature = 0.9
	o, err := New(cfg, mock, testCatalogue())
	require.NoError(t, err)

	_, err = o.Grade(context.Background(), request())
	require.NoError(t, err)

	req := mock.LastRequest()
	assert.Equal(t, "FORENSIC", req.SystemPrompt)
	assert.True(t, req.JSONMode)
	require.NotNil(t, req.Temperature)
	// Legacy passes are always strict.
	assert.InDelta(t, 0.4, *req.Temperature, 1e-9)
	assert.True(t, strings.HasSuffix(req.Prompt, "\n[STRICT]"))
	assert.Contains(t, req.Prompt, "=== NARRATIVE TO ANALYZE ===")
	assert.Contains(t, req.Prompt, `[UPLOADED SOURCE CONTEXT]: "Literary fantasy"`)
}

func TestGradeLegacy_ClampsScoreAndSharesArcLength(t *testing.T) {
	tests := []struct {
		name      string
		pass      string
		score     float64
		arcLength int
	}{
		{
			name:      "score above ceiling, unequal arcs",
			pass:      `{"commercial_score": 950, "tension_arc": [1, 2, 3, 4, 5, 6, 7, 8], "quality_arc": [5, 5]}`,
			score:     200,
			arcLength: 8,
		},
		{
			name:      "score below floor",
			pass:      `{"commercial_score": -950, "tension_arc": [1], "quality_arc": [1, 2, 3]}`,
			score:     -200,
			arcLength: 3,
		},
		{
			name:      "no arcs",
			pass:      `{"commercial_score": -40}`,
			score:     -40,
			arcLength: grade.MinArcLength,
		},
	}

	for _, tt := range tests {
		for _, n := range []int{1, 2} {
			t.Run(fmt.Sprintf("%s/cores=%d", tt.name, n), func(t *testing.T) {
				o, err := New(legacyConfig(n), provider.NewMock(tt.pass), testCatalogue())
				require.NoError(t, err)

				result, err := o.Grade(context.Background(), request())
				require.NoError(t, err)
				assert.Equal(t, tt.score, result.CommercialScore)
				assert.Len(t, result.TensionArc, tt.arcLength)
				assert.Len(t, result.QualityArc, tt.arcLength)
			})
		}
	}
}

func TestAverage_SingleResultUnchanged(t *testing.T) {
	r := &grade.GradeResult{CommercialScore: 13.4}
	assert.Same(t, r, Average([]*grade.GradeResult{r}))
	assert.Nil(t, Average(nil))
}

func TestAverage_IdenticalResults(t *testing.T) {
	r := func() *grade.GradeResult {
		return &grade.GradeResult{
			CommercialScore: 40,
			NicheScore:      -10,
			LogLine:         "A clock thief.",
			TensionArc:      []float64{1, 5, 9},
			QualityArc:      []float64{2, 2, 2},
			StructureMap:    []grade.StructureBeat{{Title: "Hook"}},
			SandersonMetrics: &grade.SandersonMetrics{
				PromisePayoff: 7, LawsOfMagic: 3, CharacterAgency: 8,
				Competence: 60, Proactivity: 40, Likability: 80,
			},
			DetailedMetrics: map[string]grade.MetricCategory{
				"craft": {Score: 6, Items: []grade.MetricItem{{Name: "Voice", Score: 7, Reason: "Dry"}}},
			},
		}
	}

	got := Average([]*grade.GradeResult{r(), r(), r()})
	assert.Equal(t, r(), got)
}

func TestAverage_MeansAndMerges(t *testing.T) {
	a := &grade.GradeResult{
		CommercialScore: 10,
		NicheScore:      1,
		ContentWarning:  "None",
		LogLine:         "Short.",
		TensionArc:      []float64{2, 4},
		QualityArc:      []float64{1},
		StructureMap:    []grade.StructureBeat{{Title: "Hook"}},
		ThoughtProcess:  "first",
		DetailedMetrics: map[string]grade.MetricCategory{
			"craft": {Score: 4, Items: []grade.MetricItem{{Name: "Voice", Score: 4, Reason: "Ok"}}},
		},
	}
	b := &grade.GradeResult{
		CommercialScore: 21,
		NicheScore:      2,
		ContentWarning:  "Violence",
		LogLine:         "A much longer log line.",
		TensionArc:      []float64{4, 6, 8},
		StructureMap:    []grade.StructureBeat{{Title: "Hook"}, {Title: "Climax"}},
		ThoughtProcess:  "second",
		SandersonMetrics: &grade.SandersonMetrics{
			PromisePayoff: 8,
		},
		DetailedMetrics: map[string]grade.MetricCategory{
			"craft": {Score: 8, Items: []grade.MetricItem{{Score: 8, Reason: "Distinctive"}, {Name: "Rhythm", Score: 3}}},
			"theme": {Score: 6},
		},
	}

	got := Average([]*grade.GradeResult{a, b})

	assert.Equal(t, 16.0, got.CommercialScore) // 15.5 rounds away from zero
	assert.Equal(t, 2.0, got.NicheScore)
	assert.Equal(t, "Violence", got.ContentWarning)
	assert.Equal(t, "A much longer log line.", got.LogLine)
	assert.Equal(t, []float64{3, 5, 4}, got.TensionArc)
	assert.Equal(t, []float64{1}, got.QualityArc)
	assert.Len(t, got.StructureMap, 2)
	assert.Equal(t, "first", got.ThoughtProcess)
	require.NotNil(t, got.SandersonMetrics)
	assert.Equal(t, 4.0, got.SandersonMetrics.PromisePayoff)

	craft := got.DetailedMetrics["craft"]
	assert.Equal(t, 6.0, craft.Score)
	require.Len(t, craft.Items, 2)
	assert.Equal(t, grade.MetricItem{Name: "Voice", Score: 6, Reason: "Distinctive"}, craft.Items[0])
	assert.Equal(t, grade.MetricItem{Name: "Rhythm", Score: 2, Reason: ""}, craft.Items[1])
	assert.Equal(t, 3.0, got.DetailedMetrics["theme"].Score)

	// Inputs are left untouched.
	assert.Equal(t, 10.0, a.CommercialScore)
	assert.Equal(t, []float64{2, 4}, a.TensionArc)
}

func TestAverage_OrderIndependentScores(t *testing.T) {
	a := &grade.GradeResult{CommercialScore: -30, CohesionScore: 3, TensionArc: []float64{1, 2}}
	b := &grade.GradeResult{CommercialScore: 50, CohesionScore: 8, TensionArc: []float64{5}}
	c := &grade.GradeResult{CommercialScore: 7, CohesionScore: 1}

	x := Average([]*grade.GradeResult{a, b, c})
	y := Average([]*grade.GradeResult{c, a, b})

	assert.Equal(t, x.CommercialScore, y.CommercialScore)
	assert.Equal(t, x.CohesionScore, y.CohesionScore)
	assert.Equal(t, x.TensionArc, y.TensionArc)
	assert.Equal(t, []float64{2, 1}, x.TensionArc)
}
