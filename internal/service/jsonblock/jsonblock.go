// Package jsonblock recovers JSON objects from model output that may be
// wrapped in Markdown fences or surrounded by prose.
package jsonblock

import "strings"

// Strip removes a surrounding Markdown code fence, if any. Fences inside
// the payload are left alone.
func Strip(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")

	s = strings.TrimSuffix(s, "```")

	return strings.TrimSpace(s)
}

// Objects returns every balanced top-level {...} span in s, in order.
// Braces inside JSON strings are ignored. Iterating bytes is safe because
// ASCII delimiters never occur inside a multi-byte UTF-8 sequence.
func Objects(s string) []string {
	var (
		candidates []string
		depth      int
		start      = -1
		inString   bool
		escape     bool
	)

	for i := 0; i < len(s); i++ {
		b := s[i]

		if escape {
			escape = false
			continue
		}

		if inString {
			if b == '\\' {
				escape = true
			} else if b == '"' {
				inString = false
			}
			continue
		}

		switch b {
		case '"':
			inString = true
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 && start != -1 {
					candidates = append(candidates, s[start:i+1])
					start = -1
				}
			}
		}
	}

	return candidates
}

// Candidates lists the texts worth decoding, most likely first: the
// fence-stripped payload, then each embedded top-level object.
func Candidates(s string) []string {
	return append([]string{Strip(s)}, Objects(s)...)
}
