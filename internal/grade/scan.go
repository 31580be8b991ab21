package grade

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// LightGrade is the literary scout's instant diagnostic.
type LightGrade struct {
	Score          LooseScore `json:"score"`
	LetterGrade    string     `json:"letter_grade"`
	SummaryLine    string     `json:"summary_line"`
	Synopsis       string     `json:"synopsis"`
	ThoughtProcess string     `json:"thought_process"`
	KeyImprovement string     `json:"key_improvement"`
}

// MetaAnalysis is the semiotic reading of what a story is actually about.
type MetaAnalysis struct {
	SymbolWeb        string `json:"symbol_web"`
	StoryWorld       string `json:"story_world"`
	VisualSevenSteps string `json:"visual_seven_steps"`
}

// LooseScore decodes a score sent either as a number or as a numeric
// string such as "+12". Strings that are not numbers decode to zero.
type LooseScore float64

func (s *LooseScore) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] != '"' {
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return err
		}
		*s = LooseScore(f)
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	str = strings.TrimPrefix(strings.TrimSpace(str), "+")
	f, err := strconv.ParseFloat(str, 64)
	if err != nil {
		*s = 0
		return nil
	}
	*s = LooseScore(f)
	return nil
}
