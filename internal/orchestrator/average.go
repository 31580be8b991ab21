package orchestrator

import (
	"math"

	"github.com/montanaflynn/stats"

	"github.com/Yates-Labs/compujudge/internal/grade"
)

// Average merges legacy passes into one result. A single pass is returned
// as is. Otherwise scalar scores take the rounded mean, arcs the
// element-wise mean padded with zeros, free text the longest candidate, the
// structure map the most detailed pass, and detailed metrics a per-category
// and per-item mean paired with the longest reason. The first pass supplies
// everything else, including its thought process.
func Average(results []*grade.GradeResult) *grade.GradeResult {
	switch len(results) {
	case 0:
		return nil
	case 1:
		return results[0]
	}

	out := *results[0]

	out.CommercialScore = roundedMean(results, func(r *grade.GradeResult) float64 { return r.CommercialScore })
	out.NicheScore = roundedMean(results, func(r *grade.GradeResult) float64 { return r.NicheScore })
	out.CohesionScore = roundedMean(results, func(r *grade.GradeResult) float64 { return r.CohesionScore })
	out.ThirdActScore = roundedMean(results, func(r *grade.GradeResult) float64 { return r.ThirdActScore })
	out.NoveltyScore = roundedMean(results, func(r *grade.GradeResult) float64 { return r.NoveltyScore })

	out.SandersonMetrics = averageSanderson(results)

	out.TensionArc = averageArc(results, func(r *grade.GradeResult) []float64 { return r.TensionArc })
	out.QualityArc = averageArc(results, func(r *grade.GradeResult) []float64 { return r.QualityArc })

	out.ContentWarning = longest(results, func(r *grade.GradeResult) string { return r.ContentWarning })
	out.LogLine = longest(results, func(r *grade.GradeResult) string { return r.LogLine })

	richest := results[0]
	for _, r := range results[1:] {
		if len(r.StructureMap) > len(richest.StructureMap) {
			richest = r
		}
	}
	out.StructureMap = richest.StructureMap

	out.DetailedMetrics = averageDetailed(results)
	return &out
}

func roundedMean(results []*grade.GradeResult, field func(*grade.GradeResult) float64) float64 {
	data := make(stats.Float64Data, len(results))
	for i, r := range results {
		data[i] = field(r)
	}
	m, err := stats.Mean(data)
	if err != nil {
		return 0
	}
	return math.Round(m)
}

func averageSanderson(results []*grade.GradeResult) *grade.SandersonMetrics {
	present := false
	for _, r := range results {
		if r.SandersonMetrics != nil {
			present = true
			break
		}
	}
	if !present {
		return nil
	}

	pick := func(fn func(*grade.SandersonMetrics) float64) func(*grade.GradeResult) float64 {
		return func(r *grade.GradeResult) float64 {
			if r.SandersonMetrics == nil {
				return 0
			}
			return fn(r.SandersonMetrics)
		}
	}
	return &grade.SandersonMetrics{
		PromisePayoff:   roundedMean(results, pick(func(s *grade.SandersonMetrics) float64 { return s.PromisePayoff })),
		LawsOfMagic:     roundedMean(results, pick(func(s *grade.SandersonMetrics) float64 { return s.LawsOfMagic })),
		CharacterAgency: roundedMean(results, pick(func(s *grade.SandersonMetrics) float64 { return s.CharacterAgency })),
		Competence:      roundedMean(results, pick(func(s *grade.SandersonMetrics) float64 { return s.Competence })),
		Proactivity:     roundedMean(results, pick(func(s *grade.SandersonMetrics) float64 { return s.Proactivity })),
		Likability:      roundedMean(results, pick(func(s *grade.SandersonMetrics) float64 { return s.Likability })),
	}
}

// averageArc pads every arc with zeros to the longest observed length and
// takes the rounded mean per position.
func averageArc(results []*grade.GradeResult, arc func(*grade.GradeResult) []float64) []float64 {
	arcs := make([][]float64, len(results))
	for i, r := range results {
		arcs[i] = arc(r)
	}
	n := grade.ArcLength(arcs...)

	out := make([]float64, n)
	for idx := range out {
		out[idx] = roundedMean(results, func(r *grade.GradeResult) float64 {
			a := arc(r)
			if idx < len(a) {
				return a[idx]
			}
			return 0
		})
	}
	return out
}

func longest(results []*grade.GradeResult, field func(*grade.GradeResult) string) string {
	best := ""
	for _, r := range results {
		if s := field(r); len(s) > len(best) {
			best = s
		}
	}
	return best
}

func averageDetailed(results []*grade.GradeResult) map[string]grade.MetricCategory {
	var keys []string
	seen := make(map[string]bool)
	for _, r := range results {
		for k := range r.DetailedMetrics {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	if len(keys) == 0 {
		return results[0].DetailedMetrics
	}

	out := make(map[string]grade.MetricCategory, len(keys))
	for _, key := range keys {
		category := func(r *grade.GradeResult) grade.MetricCategory { return r.DetailedMetrics[key] }

		items := 0
		for _, r := range results {
			items = max(items, len(category(r).Items))
		}

		merged := grade.MetricCategory{
			Score: roundedMean(results, func(r *grade.GradeResult) float64 { return category(r).Score }),
			Items: make([]grade.MetricItem, items),
		}
		for idx := range items {
			item := func(r *grade.GradeResult) (grade.MetricItem, bool) {
				its := category(r).Items
				if idx < len(its) {
					return its[idx], true
				}
				return grade.MetricItem{}, false
			}

			var name string
			for _, r := range results {
				if it, ok := item(r); ok && it.Name != "" {
					name = it.Name
					break
				}
			}
			merged.Items[idx] = grade.MetricItem{
				Name: name,
				Score: roundedMean(results, func(r *grade.GradeResult) float64 {
					it, _ := item(r)
					return it.Score
				}),
				Reason: longest(results, func(r *grade.GradeResult) string {
					it, _ := item(r)
					return it.Reason
				}),
			}
		}
		out[key] = merged
	}
	return out
}
