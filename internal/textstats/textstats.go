// Package textstats computes the forensic side-channel metrics attached to
// an artifact before it is graded.
package textstats

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/montanaflynn/stats"

	"github.com/Yates-Labs/compujudge/internal/grade"
)

// A sentence keeps its terminal punctuation and any closing quotes or
// brackets that follow it.
var sentenceRe = regexp.MustCompile(`[^.!?]+[.!?]*["'”’)\]]*`)

// Words ending in -ly that are not adverbs.
var notAdverbs = map[string]bool{
	"only": true, "family": true, "early": true, "reply": true, "supply": true,
	"apply": true, "rely": true, "ally": true, "belly": true, "bully": true,
	"holy": true, "ugly": true, "july": true, "italy": true, "lily": true,
	"jelly": true, "daily": true, "lonely": true, "lovely": true, "friendly": true,
	"likely": true, "silly": true, "costly": true, "elderly": true, "curly": true,
}

// Analyze returns word count, sentence-length spread (population standard
// deviation, in words), adverb density and dialogue ratio. Densities and
// ratios are percentages rounded to one decimal.
func Analyze(text string) grade.Metrics {
	words := strings.Fields(text)
	m := grade.Metrics{WordCount: len(words)}
	if len(words) == 0 {
		return m
	}

	var lengths stats.Float64Data
	for _, sentence := range sentenceRe.FindAllString(text, -1) {
		if !strings.ContainsFunc(sentence, unicode.IsLetter) {
			continue
		}
		lengths = append(lengths, float64(len(strings.Fields(sentence))))
	}
	if sd, err := stats.StandardDeviationPopulation(lengths); err == nil {
		m.SentenceVariance = round1(sd)
	}

	adverbs := 0
	for _, w := range words {
		if isAdverb(w) {
			adverbs++
		}
	}
	m.AdverbDensity = round1(float64(adverbs) / float64(len(words)) * 100)
	m.DialogueRatio = round1(dialogueRatio(text))
	return m
}

func isAdverb(word string) bool {
	w := strings.ToLower(strings.TrimFunc(word, func(r rune) bool { return !unicode.IsLetter(r) }))
	return len(w) > 4 && strings.HasSuffix(w, "ly") && !notAdverbs[w]
}

// dialogueRatio is the share of non-space characters inside quotation marks.
func dialogueRatio(text string) float64 {
	var total, quoted int
	inside := false
	for _, r := range text {
		switch r {
		case '"':
			inside = !inside
			continue
		case '“':
			inside = true
			continue
		case '”':
			inside = false
			continue
		}
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if inside {
			quoted++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(quoted) / float64(total) * 100
}

func round1(v float64) float64 {
	r, err := stats.Round(v, 1)
	if err != nil {
		return v
	}
	return r
}
