package query

import (
	"sort"
	"strings"
)

// IndexedValue is one occurrence of a marker inside a string.
type IndexedValue struct {
	Index int
	Value string
}

// IndexOf returns the start of every occurrence of marker in text, left to
// right. Occurrences do not overlap. Indexes are byte offsets into text.
// After a hit the scan resumes past the whole marker rather than one byte
// further, so "|||" holds one "||" at 0, not a second one at 1.
func IndexOf(marker, text string, caseInsensitive bool) []IndexedValue {
	if text == "" || marker == "" {
		return nil
	}

	var out []IndexedValue
	for i := 0; i+len(marker) <= len(text); {
		window := text[i : i+len(marker)]
		if window == marker || (caseInsensitive && strings.EqualFold(window, marker)) {
			out = append(out, IndexedValue{Index: i, Value: marker})
			i += len(marker)
			continue
		}
		i++
	}
	return out
}

// Locate finds every occurrence of every marker in text, ordered by index.
// When two markers start at the same index the one listed first wins.
//
// The scan is purely textual: a marker inside a quoted string literal is
// reported like any other.
func Locate(markers []string, text string, caseInsensitive bool) []IndexedValue {
	if text == "" {
		return nil
	}

	var out []IndexedValue
	for _, m := range markers {
		out = append(out, IndexOf(m, text, caseInsensitive)...)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}
