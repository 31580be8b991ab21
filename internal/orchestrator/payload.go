package orchestrator

import (
	"fmt"
	"strings"

	"github.com/Yates-Labs/compujudge/internal/grade"
)

// tribunalPayload wraps the artifact with its forensic evidence, source
// material and story bible.
func tribunalPayload(req GradeRequest) string {
	var b strings.Builder
	b.WriteString("\n=== NARRATIVE ARTIFACT ===\n")
	b.WriteString(req.Artifact.Text)
	b.WriteString("\n=== END ARTIFACT ===\n")
	b.WriteString(evidenceBlock(req.Artifact.Metrics))
	if req.Artifact.Inspiration != "" {
		fmt.Fprintf(&b, "\n[SOURCE MATERIAL]: %q\n", req.Artifact.Inspiration)
	}
	if req.Artifact.Target != 0 {
		fmt.Fprintf(&b, "\n[TARGET QUALITY]: %+d\n", req.Artifact.Target)
	}
	if len(req.StoryBible) > 0 {
		fmt.Fprintf(&b, "\n[STORY BIBLE]:\n%s\n", req.StoryBible)
	}
	return b.String()
}

// withFeedback appends accumulated analyst rejections to payload.
func withFeedback(payload, feedback string) string {
	if feedback == "" {
		return payload
	}
	return payload + "\n\n[PREVIOUS CONSENSUS / FEEDBACK]:\n" + feedback
}

// legacyPayload is the single prompt every legacy core receives.
func legacyPayload(req GradeRequest, instruction string) string {
	var b strings.Builder
	b.WriteString("\n=== NARRATIVE TO ANALYZE ===\n")
	b.WriteString(req.Artifact.Text)
	b.WriteString("\n=== END ===\n")
	b.WriteString(evidenceBlock(req.Artifact.Metrics))
	if req.Artifact.Inspiration != "" {
		fmt.Fprintf(&b, "\n[UPLOADED SOURCE CONTEXT]: %q\n", req.Artifact.Inspiration)
	}
	b.WriteString("\n")
	b.WriteString(instruction)
	return b.String()
}

func evidenceBlock(m *grade.Metrics) string {
	if m == nil {
		return ""
	}
	return fmt.Sprintf(`
[FORENSIC EVIDENCE]:
- Word Count: %d
- Pacing (Variance): %v
- Adverb Density: %v%%
- Dialogue Ratio: %v%%
`, m.WordCount, m.SentenceVariance, m.AdverbDensity, m.DialogueRatio)
}
