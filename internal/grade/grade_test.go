package grade

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestArcLength(t *testing.T) {
	tests := []struct {
		name string
		arcs [][]float64
		want int
	}{
		{"no arcs", nil, MinArcLength},
		{"empty arcs", [][]float64{{}, nil}, MinArcLength},
		{"short arcs keep their length", [][]float64{{1, 2}, {3}}, 2},
		{"longest wins", [][]float64{{1, 2, 3, 4, 5, 6, 7, 8}, {1}}, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ArcLength(tt.arcs...); got != tt.want {
				t.Errorf("ArcLength() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNormalizeArcs_PadsToSharedLength(t *testing.T) {
	r := &GradeResult{
		TensionArc: []float64{1, 2, 3, 4, 5, 6, 7},
		QualityArc: []float64{9},
	}
	r.NormalizeArcs()

	if len(r.TensionArc) != 7 || len(r.QualityArc) != 7 {
		t.Fatalf("expected both arcs length 7, got %d and %d", len(r.TensionArc), len(r.QualityArc))
	}
	if r.QualityArc[0] != 9 || r.QualityArc[6] != 0 {
		t.Errorf("unexpected padded quality arc: %v", r.QualityArc)
	}
}

func TestLabel(t *testing.T) {
	tests := map[float64]string{
		-80: "Broken",
		-45: "Bad",
		0:   "Average",
		30:  "Good",
		42:  "Classic",
		51:  "Masterpiece",
		60:  "Godly",
	}
	for score, want := range tests {
		if got := Label(score); got != want {
			t.Errorf("Label(%v) = %q, want %q", score, got, want)
		}
	}
}

func TestExportResult(t *testing.T) {
	result := &GradeResult{
		CommercialScore:  -3,
		CommercialReason: "[CHIEF JUSTICE RULING]: weak " + VetoMarker,
		CohesionReason:   "Plot Holes: 2",
		Approved:         true,
		Attempts:         1,
	}

	var buf bytes.Buffer
	if err := ExportResult("story.md", result, "JSON", &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded ResultExport
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode export: %v", err)
	}
	if VetoMarker != "[LOGIC VETO: Score Slashed]" {
		t.Errorf("VetoMarker = %q", VetoMarker)
	}
	if !decoded.Vetoed || decoded.Label != "Average" || decoded.Path != "story.md" {
		t.Errorf("unexpected export: %+v", decoded)
	}

	err := ExportResult("story.md", result, "csv", &buf)
	if err == nil || !strings.Contains(err.Error(), "unsupported export format") {
		t.Errorf("expected unsupported format error, got %v", err)
	}
}

func TestLooseScore_Unmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want LooseScore
	}{
		{`{"score": 12}`, 12},
		{`{"score": -7.5}`, -7.5},
		{`{"score": "+14"}`, 14},
		{`{"score": " -3 "}`, -3},
		{`{"score": "X"}`, 0},
		{`{"score": null}`, 0},
	}
	for _, tt := range tests {
		var lg LightGrade
		if err := json.Unmarshal([]byte(tt.in), &lg); err != nil {
			t.Fatalf("Unmarshal(%s): %v", tt.in, err)
		}
		if lg.Score != tt.want {
			t.Errorf("Unmarshal(%s) score = %v, want %v", tt.in, lg.Score, tt.want)
		}
	}
}
