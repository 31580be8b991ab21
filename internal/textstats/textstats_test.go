package textstats

import "testing"

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		words    int
		variance float64
		adverbs  float64
		dialogue float64
	}{
		{name: "empty", text: "   "},
		{name: "even sentences", text: "The man ran. The dog sat.", words: 6},
		{
			name:     "uneven sentences with adverbs",
			text:     "She quickly left. He stayed in the kitchen only briefly and silently wept.",
			words:    13,
			variance: 3.5,
			adverbs:  23.1,
		},
		{name: "all dialogue", text: `"Run." "Now."`, words: 2, dialogue: 100},
		{
			name:     "closing quote stays with its sentence",
			text:     `"Stop." He ran away.`,
			words:    4,
			variance: 1,
			dialogue: 33.3,
		},
		{name: "punctuation only fragments", text: "Wait... ... Go!", words: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Analyze(tt.text)
			if got.WordCount != tt.words {
				t.Errorf("WordCount = %d, want %d", got.WordCount, tt.words)
			}
			if got.SentenceVariance != tt.variance {
				t.Errorf("SentenceVariance = %v, want %v", got.SentenceVariance, tt.variance)
			}
			if got.AdverbDensity != tt.adverbs {
				t.Errorf("AdverbDensity = %v, want %v", got.AdverbDensity, tt.adverbs)
			}
			if got.DialogueRatio != tt.dialogue {
				t.Errorf("DialogueRatio = %v, want %v", got.DialogueRatio, tt.dialogue)
			}
		})
	}
}

func TestDialogueRatio_CurlyQuotes(t *testing.T) {
	if got := dialogueRatio("ab “cd”"); got != 50 {
		t.Errorf("dialogueRatio = %v, want 50", got)
	}
}
