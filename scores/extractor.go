// Package scores converts raw LLM responses into validated per-dimension
// case scores. Responses are requested as JSON but frequently arrive
// malformed: unterminated strings with raw newlines (common on chat
// completion backends) or payloads wrapped in prose and code fences
// (common on Gemini). A chain of repair stages handles both families.
package scores

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"lawassist-backend/models"
)

const snippetLimit = 200

// ExtractionError reports that no repair stage produced a usable payload,
// or that a parsed payload failed validation. Snippet is truncated so the
// error stays safe to surface; the caller logs the full response if needed.
type ExtractionError struct {
	Reason  string
	Snippet string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("score extraction failed: %s", e.Reason)
}

// dimension mirrors one scored dimension of the requested JSON shape.
// Models occasionally emit a bare number instead of the full object; that
// is accepted as a score-only record.
type dimension struct {
	Score      *float64 `json:"score"`
	Reasoning  string   `json:"reasoning"`
	KeyFactors []string `json:"key_factors"`
}

func (d *dimension) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		d.Score = &num
		return nil
	}
	type plain dimension
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*d = dimension(p)
	return nil
}

type payload struct {
	LegalMerit       *dimension `json:"legal_merit"`
	DamagesPotential *dimension `json:"damages_potential"`
	CaseComplexity   *dimension `json:"case_complexity"`
}

// Extract parses a raw model response into validated evaluation scores.
// All errors are *ExtractionError; the function never panics on malformed
// input.
func Extract(raw string) (*models.EvaluationScores, error) {
	p, err := decode(raw)
	if err != nil {
		return nil, &ExtractionError{
			Reason:  "all repair stages exhausted",
			Snippet: snippet(raw),
		}
	}
	return validate(p, raw)
}

// decode runs the repair chain in order, stopping at the first candidate
// that parses.
func decode(raw string) (*payload, error) {
	candidates := []string{
		raw,
		escapeNewlinesInStrings(raw),
		repairControlCharacters(raw),
	}
	if span, ok := balancedObject(raw); ok {
		candidates = append(candidates, span, repairControlCharacters(span))
	}
	candidates = append(candidates, repairControlCharacters(closeUnterminatedQuotes(raw)))

	var lastErr error
	for _, c := range candidates {
		var p payload
		if err := json.Unmarshal([]byte(c), &p); err != nil {
			lastErr = err
			continue
		}
		return &p, nil
	}
	return nil, lastErr
}

// validate requires a numeric score for every dimension, clamps
// out-of-range scores to [0,10] with an explanatory key factor, and
// defaults missing reasoning/key_factors to zero values.
func validate(p *payload, raw string) (*models.EvaluationScores, error) {
	out := &models.EvaluationScores{}
	for _, dim := range []struct {
		key string
		src *dimension
		dst *models.ScoreExplanation
	}{
		{"legal_merit", p.LegalMerit, &out.LegalMerit},
		{"damages_potential", p.DamagesPotential, &out.DamagesPotential},
		{"case_complexity", p.CaseComplexity, &out.CaseComplexity},
	} {
		if dim.src == nil || dim.src.Score == nil {
			return nil, &ExtractionError{
				Reason:  fmt.Sprintf("missing numeric score for %s", dim.key),
				Snippet: snippet(raw),
			}
		}
		dim.dst.Score = *dim.src.Score
		dim.dst.Reasoning = dim.src.Reasoning
		dim.dst.KeyFactors = dim.src.KeyFactors
		if dim.dst.KeyFactors == nil {
			dim.dst.KeyFactors = []string{}
		}
		switch {
		case dim.dst.Score < 0:
			dim.dst.KeyFactors = append(dim.dst.KeyFactors,
				fmt.Sprintf("score %.1f was below the valid range and clamped to 0", dim.dst.Score))
			dim.dst.Score = 0
		case dim.dst.Score > 10:
			dim.dst.KeyFactors = append(dim.dst.KeyFactors,
				fmt.Sprintf("score %.1f was above the valid range and clamped to 10", dim.dst.Score))
			dim.dst.Score = 10
		}
	}
	return out, nil
}

// escapeNewlinesInStrings escapes literal line breaks that appear inside
// string literals. Existing two-character escapes pass through untouched.
func escapeNewlinesInStrings(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	inString, escaped := false, false
	for _, r := range raw {
		if inString {
			switch {
			case escaped:
				b.WriteRune(r)
				escaped = false
			case r == '\\':
				b.WriteRune(r)
				escaped = true
			case r == '"':
				b.WriteRune(r)
				inString = false
			case r == '\n':
				b.WriteString(`\n`)
			case r == '\r':
				b.WriteString(`\r`)
			default:
				b.WriteRune(r)
			}
			continue
		}
		if r == '"' {
			inString = true
		}
		b.WriteRune(r)
	}
	return b.String()
}

// repairControlCharacters walks the input tracking string-literal state,
// escapes any control character found inside a string, and closes an
// unterminated string plus any open brackets at end of input. Running it
// on already-valid JSON returns the input byte for byte: escape sequences
// are tracked, so a two-character \n is never turned into \\n.
func repairControlCharacters(raw string) string {
	var b strings.Builder
	b.Grow(len(raw) + 2)
	inString, escaped := false, false
	var stack []rune
	for _, r := range raw {
		if inString {
			switch {
			case escaped:
				b.WriteRune(r)
				escaped = false
			case r == '\\':
				b.WriteRune(r)
				escaped = true
			case r == '"':
				b.WriteRune(r)
				inString = false
			case r == '\n':
				b.WriteString(`\n`)
			case r == '\r':
				b.WriteString(`\r`)
			case r == '\t':
				b.WriteString(`\t`)
			case r == '\f':
				b.WriteString(`\f`)
			case r == '\b':
				b.WriteString(`\b`)
			case unicode.IsControl(r):
				fmt.Fprintf(&b, `\u%04x`, r)
			default:
				b.WriteRune(r)
			}
			continue
		}
		switch r {
		case '"':
			inString = true
		case '{', '[':
			stack = append(stack, r)
		case '}':
			if len(stack) > 0 && stack[len(stack)-1] == '{' {
				stack = stack[:len(stack)-1]
			}
		case ']':
			if len(stack) > 0 && stack[len(stack)-1] == '[' {
				stack = stack[:len(stack)-1]
			}
		}
		b.WriteRune(r)
	}
	if inString {
		if escaped {
			// A lone trailing backslash; double it so the injected quote
			// terminates the string instead of being escaped.
			b.WriteRune('\\')
		}
		b.WriteRune('"')
	}
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			b.WriteRune('}')
		} else {
			b.WriteRune(']')
		}
	}
	return b.String()
}

// balancedObject returns the outermost balanced {...} span in raw, which
// recovers payloads wrapped in surrounding prose or code-fence markers.
func balancedObject(raw string) (string, bool) {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString, escaped := false, false
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
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return raw[start : i+1], true
			}
		}
	}
	return "", false
}

// closeUnterminatedQuotes closes quoted values left open at the end of a
// line. Last-resort heuristic before the final repair pass.
func closeUnterminatedQuotes(raw string) string {
	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		if unescapedQuotes(line)%2 == 0 {
			continue
		}
		trimmed := strings.TrimRight(line, " \t")
		if strings.HasSuffix(trimmed, ",") {
			lines[i] = trimmed[:len(trimmed)-1] + `",`
		} else {
			lines[i] = trimmed + `"`
		}
	}
	return strings.Join(lines, "\n")
}

func unescapedQuotes(line string) int {
	n := 0
	escaped := false
	for _, r := range line {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			n++
		}
	}
	return n
}

func snippet(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) <= snippetLimit {
		return raw
	}
	cut := snippetLimit
	for cut > 0 && !utf8.RuneStart(raw[cut]) {
		cut--
	}
	return raw[:cut]
}
