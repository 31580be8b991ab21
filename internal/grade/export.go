package grade

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// ExportFormat represents supported export formats
type ExportFormat string

const (
	FormatJSON ExportFormat = "json"
)

// ResultExport is a graded artifact with the summary fields a reader looks for first.
type ResultExport struct {
	Path       string       `json:"path"`
	Score      float64      `json:"score"`
	Label      string       `json:"label"`
	Approved   bool         `json:"approved"`
	Attempts   int          `json:"attempts"`
	Vetoed     bool         `json:"vetoed"`
	PlotHoles  string       `json:"plot_holes"`
	GradedAt   time.Time    `json:"graded_at"`
	FullReport *GradeResult `json:"report"`
}

// ExportResult writes result in the requested format.
func ExportResult(path string, result *GradeResult, format string, writer io.Writer) error {
	if result == nil {
		return fmt.Errorf("nothing to export for %s", path)
	}
	exportFormat := ExportFormat(strings.ToLower(format))
	if exportFormat != FormatJSON {
		return fmt.Errorf("unsupported export format: %s (supported: json)", format)
	}

	return exportJSON(summarize(path, result), writer)
}

func summarize(path string, result *GradeResult) ResultExport {
	return ResultExport{
		Path:       path,
		Score:      result.CommercialScore,
		Label:      Label(result.CommercialScore),
		Approved:   result.Approved,
		Attempts:   result.Attempts,
		Vetoed:     strings.Contains(result.CommercialReason, VetoMarker),
		PlotHoles:  result.CohesionReason,
		GradedAt:   result.GradedAt,
		FullReport: result,
	}
}

func exportJSON(export ResultExport, writer io.Writer) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(export)
}
