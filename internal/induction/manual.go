package induction

import (
	"fmt"
	"sort"
)

// ManualRange names one character range of the reference HTML to replace
// with a token.
type ManualRange struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Name  string `json:"name"`
}

// InduceManual replaces caller-submitted character ranges with named
// tokens. Ranges are applied from the last one backwards so earlier
// indices stay valid. No heuristics run.
func (ind *Inducer) InduceManual(refHTML string, ranges []ManualRange) (*Result, error) {
	if len(ranges) == 0 {
		return nil, fmt.Errorf("no ranges submitted")
	}

	ordered := make([]ManualRange, len(ranges))
	copy(ordered, ranges)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Start > ordered[j].Start })

	res := &Result{HTML: refHTML}
	prevStart := len(refHTML) + 1
	for _, rg := range ordered {
		if rg.Name == "" {
			return nil, fmt.Errorf("range [%d,%d) has no name", rg.Start, rg.End)
		}
		if rg.Start < 0 || rg.End > len(refHTML) || rg.Start >= rg.End {
			return nil, fmt.Errorf("range [%d,%d) out of bounds for document of %d bytes", rg.Start, rg.End, len(refHTML))
		}
		if rg.End > prevStart {
			return nil, fmt.Errorf("range [%d,%d) overlaps a later range", rg.Start, rg.End)
		}
		prevStart = rg.Start

		original := res.HTML[rg.Start:rg.End]
		res.HTML = res.HTML[:rg.Start] + "{{" + rg.Name + "}}" + res.HTML[rg.End:]
		res.Placeholders = append(res.Placeholders, Placeholder{
			Name:    rg.Name,
			Type:    PlaceholderText,
			Default: original,
		})
	}

	// Ranges were applied back-to-front; flip the manifest into document order.
	for i, j := 0, len(res.Placeholders)-1; i < j; i, j = i+1, j-1 {
		res.Placeholders[i], res.Placeholders[j] = res.Placeholders[j], res.Placeholders[i]
	}
	res.Issues = append(res.Issues, ValidateTokens(res.HTML)...)
	return res, nil
}
