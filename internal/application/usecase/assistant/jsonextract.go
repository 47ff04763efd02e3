package assistant

import (
	"encoding/json"
	"strings"
)

// jsonFields is a decoded JSON object whose values are decoded lazily per field.
type jsonFields map[string]json.RawMessage

// extractJSONObject finds a JSON object embedded in model output.
// The greedy span from the first '{' to the last '}' is tried first. When it does not
// decode, every bracket-balanced object in the text is tried in order.
func extractJSONObject(text string) (jsonFields, FallbackReason) {
	first := strings.Index(text, "{")
	last := strings.LastIndex(text, "}")
	if first < 0 || last < first {
		return nil, ReasonJSONAbsent
	}

	if fields, ok := decodeObject(text[first : last+1]); ok {
		return fields, ReasonNone
	}

	for i := first; i <= last; i++ {
		if text[i] != '{' {
			continue
		}
		end := balancedEnd(text, i)
		if end < 0 {
			continue
		}
		if fields, ok := decodeObject(text[i : end+1]); ok {
			return fields, ReasonNone
		}
	}

	return nil, ReasonJSONMalformed
}

func decodeObject(s string) (jsonFields, bool) {
	var fields jsonFields
	if err := json.Unmarshal([]byte(s), &fields); err != nil || fields == nil {
		return nil, false
	}
	return fields, true
}

// balancedEnd returns the index of the '}' closing the object opened at start,
// skipping braces inside string literals, or -1.
func balancedEnd(text string, start int) int {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]
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
				return i
			}
		}
	}
	return -1
}
