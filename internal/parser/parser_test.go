package parser

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_WrappedObjectRoundTrips(t *testing.T) {
	doc := map[string]any{
		"score":           float64(-15),
		"inconsistencies": []any{"The door was locked {twice}", "Nobody [noticed]"},
		"nested":          map[string]any{"ok": true},
	}
	encoded, err := json.Marshal(doc)
	require.NoError(t, err)

	wrappers := []struct {
		name   string
		prefix string
		suffix string
	}{
		{"bare", "", ""},
		{"prose", "Here is my verdict: ", " Hope this helps."},
		{"fenced", "```json\n", "\n```"},
		{"fenced with prose", "Sure thing.\n```json\n", "\n```\nLet me know."},
		{"whitespace", "\n\n   ", "   \n"},
	}

	for _, tc := range wrappers {
		t.Run(tc.name, func(t *testing.T) {
			var got map[string]any
			require.NoError(t, Decode(tc.prefix+string(encoded)+tc.suffix, &got))
			assert.Equal(t, doc, got)
		})
	}
}

func TestExtract_PrefersObjectAfterBracketedPreamble(t *testing.T) {
	raw := `[System Note] The analysis follows. {"verdict": "PASS", "reason": "ok"}`

	var got struct {
		Verdict string `json:"verdict"`
		Reason  string `json:"reason"`
	}
	require.NoError(t, Decode(raw, &got))
	assert.Equal(t, "PASS", got.Verdict)
	assert.Equal(t, "ok", got.Reason)
}

func TestExtract_UnwrapsArrayOfObjects(t *testing.T) {
	raw := `[{"score": 12, "mood": "Hopeful"}, {"score": 3}]`

	out, err := Extract(raw)
	require.NoError(t, err)
	assert.JSONEq(t, `{"score": 12, "mood": "Hopeful"}`, string(out))
}

func TestExtract_KeepsArrayOfScalars(t *testing.T) {
	out, err := Extract("values: [1, 2, 3]")
	require.NoError(t, err)
	assert.JSONEq(t, `[1,2,3]`, string(out))
}

func TestExtract_StripsControlCharacters(t *testing.T) {
	raw := "{\"score\": \x0010,\n\t\"mood\": \"Calm\x07\"}"

	var got map[string]any
	require.NoError(t, Decode(raw, &got))
	assert.Equal(t, float64(10), got["score"])
	assert.Equal(t, "Calm", got["mood"])
}

func TestExtract_TrailingProseWithBraces(t *testing.T) {
	// The last '}' belongs to the prose; the balanced scan must stop earlier.
	raw := `{"score": 4} and a stray } brace`

	var got map[string]any
	require.NoError(t, Decode(raw, &got))
	assert.Equal(t, float64(4), got["score"])
}

func TestExtract_RepairsTruncatedObject(t *testing.T) {
	var got map[string]any
	require.NoError(t, Decode(`{"score": 7, "critique": "unfinished"`, &got))
	assert.Equal(t, float64(7), got["score"])
}

func TestExtract_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"prose only", "I cannot grade this story."},
		{"bracketed prose", "[System Note] nothing to see"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Extract(tc.raw)
			if !errors.Is(err, ErrMalformedResponse) {
				t.Fatalf("expected ErrMalformedResponse, got %v", err)
			}
		})
	}
}

func TestDecode_TypeMismatchIsMalformed(t *testing.T) {
	var got struct {
		Score float64 `json:"score"`
	}
	err := Decode(`{"score": "high"}`, &got)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}
