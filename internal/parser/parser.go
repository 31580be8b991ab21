// Package parser recovers a single JSON document from free-form model output.
// Models wrap their JSON in prose, Markdown fences and stray control
// characters; Extract finds the structured payload and ignores the rest.
package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

var (
	ErrMalformedResponse = errors.New("model returned malformed JSON")
)

// Extract returns the first well-formed JSON value embedded in raw.
//
// The earliest of '{' or '[' is tried first and the other delimiter is the
// fallback, so "[System Note] ... {...}" still yields the object. An array
// whose first element is an object is unwrapped to that object.
func Extract(raw string) (json.RawMessage, error) {
	spans := candidateSpans(raw)
	if len(spans) == 0 {
		return nil, fmt.Errorf("%w: no JSON delimiters in %d bytes of output", ErrMalformedResponse, len(raw))
	}

	for _, span := range spans {
		cleaned := clean(span)
		if json.Valid([]byte(cleaned)) {
			return unwrap(json.RawMessage(cleaned)), nil
		}
	}

	// Repair pass. Only objects are accepted here: repairing prose such as
	// "[System Note]" would otherwise produce a bogus string array.
	for _, span := range spans {
		repaired, err := jsonrepair.JSONRepair(clean(span))
		if err != nil || !json.Valid([]byte(repaired)) {
			continue
		}
		out := unwrap(json.RawMessage(repaired))
		if isObject(out) {
			return out, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrMalformedResponse, preview(raw))
}

// Decode extracts the JSON payload from raw and unmarshals it into v.
func Decode(raw string, v any) error {
	payload, err := Extract(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return nil
}

// candidateSpans lists substrings worth trying, primary delimiter first.
// For each delimiter the bracket-balanced span comes before the span that
// runs to the last closing delimiter.
func candidateSpans(raw string) []string {
	openBrace := strings.IndexByte(raw, '{')
	openBracket := strings.IndexByte(raw, '[')

	type delim struct {
		start       int
		open, close byte
	}
	var order []delim
	obj := delim{openBrace, '{', '}'}
	arr := delim{openBracket, '[', ']'}
	if openBrace != -1 && (openBracket == -1 || openBrace < openBracket) {
		order = []delim{obj, arr}
	} else {
		order = []delim{arr, obj}
	}

	var spans []string
	for _, d := range order {
		if d.start == -1 {
			continue
		}
		if end := balancedEnd(raw, d.start, d.open, d.close); end != -1 {
			spans = append(spans, raw[d.start:end+1])
		}
		if last := strings.LastIndexByte(raw, d.close); last > d.start {
			span := raw[d.start : last+1]
			if len(spans) == 0 || spans[len(spans)-1] != span {
				spans = append(spans, span)
			}
			continue
		}
		// Truncated output; only the repair pass can make sense of it.
		spans = append(spans, raw[d.start:])
	}
	return spans
}

// balancedEnd returns the index of the delimiter closing the one at start,
// skipping anything inside JSON strings. It returns -1 when unbalanced.
func balancedEnd(raw string, start int, open, close byte) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// clean strips Markdown fences and control characters other than \r \n \t.
func clean(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\r' && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, s)
}

func unwrap(doc json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(doc)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return trimmed
	}
	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil || len(items) == 0 {
		return trimmed
	}
	if isObject(items[0]) {
		return bytes.TrimSpace(items[0])
	}
	return trimmed
}

func isObject(doc json.RawMessage) bool {
	trimmed := bytes.TrimSpace(doc)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func preview(raw string) string {
	const max = 120
	raw = strings.TrimSpace(raw)
	if len(raw) > max {
		return raw[:max] + "..."
	}
	return raw
}
