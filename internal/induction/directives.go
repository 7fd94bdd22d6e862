package induction

import (
	"fmt"
	"strings"
)

// Directives are model-proposed markup instructions. They are applied
// purely by literal replacement against the reference HTML; the model is
// never asked to emit HTML itself, so styling and structure stay intact.
type Directives struct {
	Loops     []LoopDirective     `json:"loops"`
	Variables []VariableDirective `json:"variables"`
}

type LoopDirective struct {
	StartMarker  string           `json:"start_marker"`
	EndMarker    string           `json:"end_marker"`
	VariableName string           `json:"variable_name"`
	Fields       []FieldDirective `json:"fields"`
}

type FieldDirective struct {
	Name    string `json:"name"`
	Example string `json:"example"`
}

type VariableDirective struct {
	UniqueText   string `json:"unique_text"`
	VariableName string `json:"variable_name"`
	Type         string `json:"type"`
}

// ApplyDirectives rewrites the reference HTML according to model-proposed
// directives. A marker or literal that cannot be found is an error issue;
// the rewrite continues with the remaining directives.
func (ind *Inducer) ApplyDirectives(refHTML string, d Directives) (*Result, error) {
	if len(d.Loops) == 0 && len(d.Variables) == 0 {
		return nil, fmt.Errorf("no directives submitted")
	}

	res := &Result{HTML: refHTML}

	for _, loop := range d.Loops {
		if loop.VariableName == "" {
			res.Issues = append(res.Issues, Issue{
				Severity: SeverityError, Category: "directives",
				Message: "loop directive missing variable_name",
			})
			continue
		}
		start := strings.Index(res.HTML, loop.StartMarker)
		if start < 0 || loop.StartMarker == "" {
			res.Issues = append(res.Issues, Issue{
				Severity: SeverityError, Category: "directives",
				Message: fmt.Sprintf("loop %q: start marker not found", loop.VariableName),
			})
			continue
		}
		endIdx := strings.Index(res.HTML[start:], loop.EndMarker)
		if endIdx < 0 || loop.EndMarker == "" {
			res.Issues = append(res.Issues, Issue{
				Severity: SeverityError, Category: "directives",
				Message: fmt.Sprintf("loop %q: end marker not found after start", loop.VariableName),
			})
			continue
		}
		end := start + endIdx + len(loop.EndMarker)

		block := res.HTML[start:end]
		fields := make([]string, 0, len(loop.Fields))
		for _, f := range loop.Fields {
			if f.Example == "" || f.Name == "" {
				continue
			}
			if !strings.Contains(block, f.Example) {
				res.Issues = append(res.Issues, Issue{
					Severity: SeverityWarning, Category: "directives",
					Message: fmt.Sprintf("loop %q: field example %q not found in block", loop.VariableName, f.Example),
				})
				continue
			}
			block = strings.ReplaceAll(block, f.Example, "{{"+f.Name+"}}")
			fields = append(fields, f.Name)
		}

		res.HTML = res.HTML[:start] +
			"{{#each " + loop.VariableName + "}}" + block + "{{/each}}" +
			res.HTML[end:]
		res.Placeholders = append(res.Placeholders, Placeholder{
			Name:   loop.VariableName,
			Type:   PlaceholderCollection,
			Fields: fields,
		})
	}

	for _, v := range d.Variables {
		if v.VariableName == "" || v.UniqueText == "" {
			res.Issues = append(res.Issues, Issue{
				Severity: SeverityError, Category: "directives",
				Message: "variable directive missing unique_text or variable_name",
			})
			continue
		}
		if !strings.Contains(res.HTML, v.UniqueText) {
			res.Issues = append(res.Issues, Issue{
				Severity: SeverityError, Category: "directives",
				Message: fmt.Sprintf("variable %q: unique text not found", v.VariableName),
			})
			continue
		}
		res.HTML = strings.Replace(res.HTML, v.UniqueText, "{{"+v.VariableName+"}}", 1)
		ptype := PlaceholderText
		if v.Type == "url" {
			ptype = PlaceholderURL
		}
		res.Placeholders = append(res.Placeholders, Placeholder{
			Name:    v.VariableName,
			Type:    ptype,
			Default: v.UniqueText,
		})
	}

	res.Issues = append(res.Issues, ValidateTokens(res.HTML)...)
	return res, nil
}
