package knowledge

import (
	"regexp"
	"strings"
)

var ordinalLineRE = regexp.MustCompile(`(?m)^\s*\d+\.`)

// MinParagraphLen drops fragments too short to carry a usable pain point.
const MinParagraphLen = 40

// SplitNumberedParagraphs splits a document into paragraphs keyed by a
// leading ordinal: a new paragraph begins at any line matching "integer."
// at the start. Paragraphs shorter than minLen runes are dropped.
func SplitNumberedParagraphs(doc string, minLen int) []string {
	doc = strings.ReplaceAll(doc, "\r\n", "\n")
	locs := ordinalLineRE.FindAllStringIndex(doc, -1)
	if len(locs) == 0 {
		p := strings.TrimSpace(doc)
		if len([]rune(p)) >= minLen {
			return []string{p}
		}
		return nil
	}

	var out []string
	for i, loc := range locs {
		end := len(doc)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		p := strings.TrimSpace(doc[loc[0]:end])
		if len([]rune(p)) < minLen {
			continue
		}
		out = append(out, p)
	}
	return out
}
