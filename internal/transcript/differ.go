package transcript

import "strings"

// Diff compares two successive full-window transcriptions and returns only
// the newly spoken text.
//
// Both inputs are cleaned first: bracketed annotations (timestamps, speaker
// markers) are stripped and surrounding whitespace trimmed. If the cleaned
// current text strictly extends the cleaned previous text, the remainder is
// returned. If it differs in any other way the engine has rewritten earlier
// words, and the full cleaned current text is returned rather than a fuzzy
// merge. Identical cleaned texts yield an empty result.
//
// An empty current text always yields an empty result; callers must not
// replace their stored previous text in that case.
func Diff(previous, current string) string {
	cur := Clean(current)
	if cur == "" {
		return ""
	}

	prev := Clean(previous)

	if prev == "" {
		return cur
	}

	if cur == prev {
		return ""
	}

	if strings.HasPrefix(cur, prev) {
		return strings.TrimSpace(cur[len(prev):])
	}

	return cur
}

// Clean strips bracketed annotation spans and trims whitespace. Text from
// an opening '[' through the next ']' is discarded, bracket characters
// included. An unterminated '[' discards through the end of the text.
func Clean(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	inBracket := false
	for _, r := range text {
		switch {
		case inBracket:
			if r == ']' {
				inBracket = false
			}
		case r == '[':
			inBracket = true
		default:
			b.WriteRune(r)
		}
	}

	return strings.TrimSpace(b.String())
}
