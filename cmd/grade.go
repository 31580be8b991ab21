package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Yates-Labs/compujudge/internal/grade"
	"github.com/Yates-Labs/compujudge/internal/orchestrator"
	"github.com/Yates-Labs/compujudge/internal/status"
	"github.com/Yates-Labs/compujudge/internal/textstats"
)

var (
	exportFile  string
	inspiration string
	mode        string
	legacy      bool
	skipQA      bool
	maxAttempts int
	cores       int
	target      int
	noSave      bool
	quick       bool
	meta        bool
)

var gradeCmd = &cobra.Command{
	Use:   "grade [file]",
	Short: "Grade a narrative draft and display the verdict",
	Long: `Grade a narrative draft with the tribunal and display the verdict.

The result is stored under the data directory so later runs and the HTTP
API can read it back.

Examples:
  compujudge grade chapter-1.md
  compujudge grade chapter-1.md --inspiration "Gothic horror" --mode iterative
  compujudge grade chapter-1.md --legacy --cores 3
  compujudge grade chapter-1.md --export verdict.json
  compujudge grade chapter-1.md --quick
  compujudge grade chapter-1.md --meta`,
	Args: cobra.ExactArgs(1),
	RunE: runGrade,
}

func init() {
	rootCmd.AddCommand(gradeCmd)
	gradeCmd.Flags().StringVar(&exportFile, "export", "", "Export the verdict to a JSON file: --export <filename>")
	gradeCmd.Flags().StringVar(&inspiration, "inspiration", "", "Source material or genre context for the tribunal")
	gradeCmd.Flags().StringVar(&mode, "mode", "", "Tribunal mode: parallel or iterative")
	gradeCmd.Flags().BoolVar(&legacy, "legacy", false, "Skip the tribunal and average independent forensic passes")
	gradeCmd.Flags().BoolVar(&skipQA, "skip-qa", false, "Approve the first verdict without the grade analyst")
	gradeCmd.Flags().IntVar(&maxAttempts, "max-attempts", 0, "Maximum tribunal attempts before returning the last draft")
	gradeCmd.Flags().IntVar(&cores, "cores", 0, "Number of legacy forensic passes (1-10)")
	gradeCmd.Flags().IntVar(&target, "target", 0, "Target quality score the author is aiming for")
	gradeCmd.Flags().BoolVar(&noSave, "no-save", false, "Do not store the result")
	gradeCmd.Flags().BoolVar(&quick, "quick", false, "Run a single quick scan instead of the full tribunal")
	gradeCmd.Flags().BoolVar(&meta, "meta", false, "Run the semiotic meta analysis instead of grading")
	gradeCmd.MarkFlagsMutuallyExclusive("quick", "meta", "legacy")
}

// applyGradeFlags overrides pipeline settings with the flags the user set.
func applyGradeFlags(cmd *cobra.Command, oc *orchestrator.Config) {
	flags := cmd.Flags()
	if flags.Changed("mode") {
		oc.Mode = orchestrator.Mode(strings.ToLower(mode))
	}
	if flags.Changed("legacy") {
		oc.EnableTribunal = !legacy
	}
	if flags.Changed("skip-qa") {
		oc.SkipVerification = skipQA
	}
	if flags.Changed("max-attempts") {
		oc.MaxAttempts = maxAttempts
	}
	if flags.Changed("cores") {
		oc.Cores = cores
	}
}

func runGrade(cmd *cobra.Command, args []string) error {
	path := args[0]

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot read draft: %w", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read draft: %w", err)
	}
	if !utf8.Valid(raw) {
		return fmt.Errorf("%s is not UTF-8 text", path)
	}

	sess, err := openSession(func(oc *orchestrator.Config) { applyGradeFlags(cmd, oc) })
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), stopSignals...)
	defer stop()

	text := string(raw)
	metrics := textstats.Analyze(text)
	req := orchestrator.GradeRequest{
		Artifact: grade.NarrativeArtifact{
			Text:        text,
			Metrics:     &metrics,
			Inspiration: inspiration,
			Target:      target,
		},
		OnStatus: progressPrinter(cmd.ErrOrStderr()),
	}

	// Quick scans and meta analyses are diagnostics; they are not stored.
	switch {
	case quick:
		scan, err := sess.grader.QuickScan(ctx, req)
		if err != nil {
			return fmt.Errorf("quick scan failed: %w", err)
		}
		if exportFile != "" {
			return exportJSON(path, scan, exportFile)
		}
		return outputQuickScan(cmd.OutOrStdout(), path, scan)
	case meta:
		analysis, err := sess.grader.MetaAnalysis(ctx, req)
		if err != nil {
			return fmt.Errorf("meta analysis failed: %w", err)
		}
		if exportFile != "" {
			return exportJSON(path, analysis, exportFile)
		}
		return outputMeta(cmd.OutOrStdout(), path, analysis)
	}

	if data, err := sess.store.Load(ctx, path); err != nil {
		log.Printf("[Store] Could not load project data for %s: %v", path, err)
	} else {
		req.StoryBible = data.StoryBible
	}

	result, err := sess.grader.Grade(ctx, req)
	if err != nil {
		return fmt.Errorf("grading failed: %w", err)
	}

	if !noSave {
		mtime := info.ModTime()
		if err := sess.store.SaveResult(ctx, path, result, &mtime); err != nil {
			log.Printf("[Store] Save failed for %s: %v", path, err)
		}
	}

	// Handle export flag
	if exportFile != "" {
		return handleExport(path, result, exportFile)
	}

	// Default: output table
	return outputTable(cmd.OutOrStdout(), path, result)
}

// progressPrinter renders status updates as muted lines, skipping repeats.
func progressPrinter(w io.Writer) status.Sink {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("#6272A4")).Italic(true)
	var (
		mu   sync.Mutex
		last string
	)
	return func(u status.Update) {
		mu.Lock()
		defer mu.Unlock()
		if u.Message == last {
			return
		}
		last = u.Message
		line := "→ " + u.Message
		if u.Percent >= 0 {
			line = fmt.Sprintf("→ [%3d%%] %s", u.Percent, u.Message)
		}
		fmt.Fprintln(w, style.Render(line))
	}
}

func handleExport(path string, result *grade.GradeResult, filename string) error {
	// Create output file
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer file.Close()

	if err := grade.ExportResult(path, result, "json", file); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	fmt.Printf("✓ Exported verdict for %s to %s\n", path, filename)
	return nil
}

func exportJSON(path string, v any, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	fmt.Printf("✓ Exported diagnostic for %s to %s\n", path, filename)
	return nil
}

var (
	diagHeader = lipgloss.NewStyle().Foreground(lipgloss.Color("#F780FF")).Bold(true)
	diagKey    = lipgloss.NewStyle().Foreground(lipgloss.Color("#BD93F9")).Bold(true).Width(16)
	diagValue  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E9E9F4")).Width(72)
)

func writeFields(w io.Writer, title string, fields [][2]string) {
	fmt.Fprintln(w, diagHeader.Render(title))
	for _, f := range fields {
		if f[1] == "" {
			continue
		}
		fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top, diagKey.Render(f[0]), diagValue.Render(f[1])))
	}
}

func outputQuickScan(w io.Writer, path string, scan *grade.LightGrade) error {
	score := float64(scan.Score)
	writeFields(w, path+" (quick scan)", [][2]string{
		{"SCORE", fmt.Sprintf("%+.0f (%s)", score, grade.Label(score))},
		{"GRADE", scan.LetterGrade},
		{"SUMMARY", scan.SummaryLine},
		{"SYNOPSIS", scan.Synopsis},
		{"KEY FIX", scan.KeyImprovement},
	})
	return nil
}

func outputMeta(w io.Writer, path string, m *grade.MetaAnalysis) error {
	writeFields(w, path+" (meta analysis)", [][2]string{
		{"SYMBOL WEB", m.SymbolWeb},
		{"STORY WORLD", m.StoryWorld},
		{"SEVEN STEPS", m.VisualSevenSteps},
	})
	return nil
}

type scoreRow struct {
	metric string
	score  float64
	note   string
}

func outputTable(w io.Writer, path string, result *grade.GradeResult) error {
	var (
		headerColor  = lipgloss.Color("#F780FF") // Bright pink/magenta
		metricColor  = lipgloss.Color("#BD93F9") // Purple
		numberColor  = lipgloss.Color("#FF79C6") // Pink
		noteColor    = lipgloss.Color("#E9E9F4") // Light purple/white
		borderColor  = lipgloss.Color("#6272A4") // Muted purple
		summaryColor = lipgloss.Color("#8BE9FD") // Cyan accent
		vetoColor    = lipgloss.Color("#FF5555") // Red
	)

	const (
		metricWidth = 14
		scoreWidth  = 9
		labelWidth  = 14
		noteWidth   = 60
	)

	headerStyle := lipgloss.NewStyle().
		Foreground(headerColor).
		Bold(true).
		Padding(0, 1)

	borderStyle := lipgloss.NewStyle().Foreground(borderColor)

	fmt.Fprintln(w, headerStyle.Render(path))

	headers := []string{
		headerStyle.Width(metricWidth).Render("METRIC"),
		headerStyle.Width(scoreWidth).Render("SCORE"),
		headerStyle.Width(labelWidth).Render("VERDICT"),
		headerStyle.Width(noteWidth).Render("NOTES"),
	}
	fmt.Fprintln(w, strings.Join(headers, borderStyle.Render("│")))

	separatorParts := []string{
		strings.Repeat("─", metricWidth),
		strings.Repeat("─", scoreWidth),
		strings.Repeat("─", labelWidth),
		strings.Repeat("─", noteWidth),
	}
	fmt.Fprintln(w, borderStyle.Render(strings.Join(separatorParts, "┼")))

	rows := []scoreRow{
		{"COMMERCIAL", result.CommercialScore, result.CommercialReason},
		{"NICHE", result.NicheScore, result.NicheReason},
		{"COHESION", result.CohesionScore, result.CohesionReason},
		{"THIRD ACT", result.ThirdActScore, ""},
		{"NOVELTY", result.NoveltyScore, ""},
	}

	metricStyle := lipgloss.NewStyle().
		Foreground(metricColor).
		Padding(0, 1).
		Width(metricWidth)

	scoreStyle := lipgloss.NewStyle().
		Foreground(numberColor).
		Padding(0, 1).
		Width(scoreWidth).
		Align(lipgloss.Right)

	labelStyle := lipgloss.NewStyle().
		Foreground(numberColor).
		Padding(0, 1).
		Width(labelWidth)

	noteStyle := lipgloss.NewStyle().
		Foreground(noteColor).
		Padding(0, 1).
		Width(noteWidth)

	for i, row := range rows {
		label := ""
		if i == 0 {
			label = grade.Label(row.score)
		}
		cells := []string{
			metricStyle.Render(row.metric),
			scoreStyle.Render(fmt.Sprintf("%+.0f", row.score)),
			labelStyle.Render(label),
			noteStyle.Render(truncate(row.note, noteWidth-2)),
		}
		fmt.Fprintln(w, strings.Join(cells, borderStyle.Render("│")))
	}

	fmt.Fprintln(w)
	if result.LogLine != "" {
		fmt.Fprintln(w, lipgloss.NewStyle().Foreground(noteColor).Italic(true).Render("“"+result.LogLine+"”"))
	}
	if strings.Contains(result.CommercialReason, grade.VetoMarker) {
		fmt.Fprintln(w, lipgloss.NewStyle().Foreground(vetoColor).Bold(true).Render(grade.VetoMarker))
	}

	summaryStyle := lipgloss.NewStyle().
		Foreground(summaryColor).
		Italic(true)

	verdict := "approved"
	if !result.Approved {
		verdict = "not approved by the grade analyst"
	}
	summary := fmt.Sprintf("Mode: %s, %d attempt(s), %s", result.Mode, result.Attempts, verdict)
	fmt.Fprintln(w, summaryStyle.Render(summary))

	return nil
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}
