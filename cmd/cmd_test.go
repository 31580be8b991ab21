package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"testing"

	"github.com/Yates-Labs/compujudge/internal/grade"
	"github.com/Yates-Labs/compujudge/internal/orchestrator"
	"github.com/Yates-Labs/compujudge/internal/status"
)

func TestApplyGradeFlags(t *testing.T) {
	defer func() {
		mode, legacy, skipQA, maxAttempts, cores = "", false, false, 0, 0
		for _, name := range []string{"mode", "legacy", "skip-qa", "max-attempts", "cores"} {
			gradeCmd.Flags().Lookup(name).Changed = false
		}
	}()

	oc := orchestrator.DefaultConfig()
	applyGradeFlags(gradeCmd, &oc)
	if oc.Mode != orchestrator.ModeParallel || !oc.EnableTribunal || oc.MaxAttempts != orchestrator.DefaultMaxAttempts {
		t.Fatalf("untouched flags changed the config: %+v", oc)
	}

	for flag, value := range map[string]string{
		"mode":         "ITERATIVE",
		"legacy":       "true",
		"skip-qa":      "true",
		"max-attempts": "5",
		"cores":        "3",
	} {
		if err := gradeCmd.Flags().Set(flag, value); err != nil {
			t.Fatalf("set %s: %v", flag, err)
		}
	}

	applyGradeFlags(gradeCmd, &oc)
	if oc.Mode != orchestrator.ModeIterative {
		t.Errorf("Mode = %q, want iterative", oc.Mode)
	}
	if oc.EnableTribunal {
		t.Error("--legacy should disable the tribunal")
	}
	if !oc.SkipVerification {
		t.Error("--skip-qa should skip verification")
	}
	if oc.MaxAttempts != 5 || oc.Cores != 3 {
		t.Errorf("MaxAttempts = %d, Cores = %d", oc.MaxAttempts, oc.Cores)
	}
}

func TestOutputTable(t *testing.T) {
	result := &grade.GradeResult{
		CommercialScore:  -3,
		CommercialReason: "[CHIEF JUSTICE RULING]: Holes everywhere. " + grade.VetoMarker,
		NicheScore:       12,
		NicheReason:      "Moody",
		CohesionScore:    -8,
		CohesionReason:   "Plot Holes: 4",
		LogLine:          "A thief steals time.",
		Mode:             "parallel",
		Attempts:         2,
		Approved:         false,
	}

	var buf bytes.Buffer
	if err := outputTable(&buf, "draft.md", result); err != nil {
		t.Fatalf("outputTable: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"draft.md", "COMMERCIAL", "-3", "Average", "Plot Holes: 4", "+12",
		"A thief steals time.", grade.VetoMarker, "2 attempt(s)", "not approved",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestOutputDiagnostics(t *testing.T) {
	var buf bytes.Buffer
	scan := &grade.LightGrade{Score: 42, LetterGrade: "A", SummaryLine: "A thief steals time.", KeyImprovement: "Cut act two."}
	if err := outputQuickScan(&buf, "draft.md", scan); err != nil {
		t.Fatalf("outputQuickScan: %v", err)
	}
	for _, want := range []string{"draft.md (quick scan)", "+42 (Classic)", "A thief steals time.", "KEY FIX", "Cut act two."} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("quick scan output missing %q:\n%s", want, buf.String())
		}
	}
	if strings.Contains(buf.String(), "SYNOPSIS") {
		t.Errorf("empty fields should be skipped:\n%s", buf.String())
	}

	buf.Reset()
	if err := outputMeta(&buf, "draft.md", &grade.MetaAnalysis{SymbolWeb: "Clocks are guilt."}); err != nil {
		t.Fatalf("outputMeta: %v", err)
	}
	if !strings.Contains(buf.String(), "Clocks are guilt.") || !strings.Contains(buf.String(), "SYMBOL WEB") {
		t.Errorf("meta output missing symbol web:\n%s", buf.String())
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"line\nbreaks   collapse", 40, "line breaks collapse"},
		{"abcdefghij", 5, "abcd…"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestProgressPrinter_SkipsRepeats(t *testing.T) {
	var buf bytes.Buffer
	sink := progressPrinter(&buf)

	sink(status.Update{Message: "CHIEF JUSTICE: DELIBERATING...", Percent: 50})
	sink(status.Update{Message: "CHIEF JUSTICE: DELIBERATING...", Percent: 50})
	sink(status.Update{Message: "QUERYING gemini-2.0-flash...", Percent: -1})

	out := buf.String()
	if n := strings.Count(out, "DELIBERATING"); n != 1 {
		t.Errorf("repeated message printed %d times", n)
	}
	if !strings.Contains(out, "[ 50%]") {
		t.Errorf("missing percentage in %q", out)
	}
	if !strings.Contains(out, "→ QUERYING gemini-2.0-flash...") {
		t.Errorf("missing unknown-progress line in %q", out)
	}
}

func TestPurgeCommand(t *testing.T) {
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"a_1.json", "b_2.json"} {
		if err := os.WriteFile(filepath.Join(dataDir, name), []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	cfgPath := filepath.Join(dir, "compujudge.yaml")
	if err := os.WriteFile(cfgPath, []byte("data_dir: "+dataDir+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"purge", "--yes", "--config", cfgPath})
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		assumeYes, configFile = false, ""
	}()

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("purge: %v", err)
	}
	if !strings.Contains(out.String(), "Purged 2 stored results") {
		t.Errorf("unexpected output %q", out.String())
	}

	entries, err := os.ReadDir(dataDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("%d files left after purge", len(entries))
	}
}

func TestStopSignals(t *testing.T) {
	for _, sig := range []os.Signal{os.Interrupt, syscall.SIGTERM} {
		if !slices.Contains(stopSignals, sig) {
			t.Errorf("stopSignals missing %v", sig)
		}
	}
}
