// Package llmjson coerces loosely formatted model output into typed values.
package llmjson

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/artem13815/career/pkg/apperr"
)

var errNoJSON = errors.New("no JSON value found")

// Extract returns the first balanced JSON object or array found in raw.
// Markdown code fences and surrounding prose are ignored.
func Extract(raw string) (string, error) {
	s := stripFences(strings.TrimSpace(raw))
	for start := 0; start < len(s); start++ {
		if s[start] != '{' && s[start] != '[' {
			continue
		}
		if end := matchClose(s, start); end > start {
			candidate := s[start : end+1]
			if json.Valid([]byte(candidate)) {
				return candidate, nil
			}
		}
	}
	return "", apperr.UpstreamFormat("AI response could not be parsed", errNoJSON)
}

// Decode extracts the first JSON value from raw and unmarshals it into v.
func Decode(raw string, v any) error {
	s, err := Extract(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(s), v); err != nil {
		return apperr.UpstreamFormat("AI response could not be parsed", err)
	}
	return nil
}

func stripFences(s string) string {
	if !strings.Contains(s, "```") {
		return s
	}
	var b strings.Builder
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// matchClose returns the index of the bracket closing s[start], or -1.
// Brackets inside string literals are skipped.
func matchClose(s string, start int) int {
	var stack []byte
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
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
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return -1
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i
			}
		}
	}
	return -1
}
