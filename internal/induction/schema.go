package induction

import (
	"strings"

	"github.com/mailforge/mailforge-backend/internal/types"
)

// infra tokens are filled by the assembler from event/list/plan context,
// never by Pass-2.
var infraTokens = map[string]bool{
	"preheader":       true,
	"support_email":   true,
	"support_phone":   true,
	"cta_top_url":     true,
	"cta_top_text":    true,
	"cta_bottom_url":  true,
	"cta_bottom_text": true,
}

// SlotSchema derives the Pass-2 slot schema from the placeholder manifest.
func (r *Result) SlotSchema() types.SlotSchema {
	schema := types.SlotSchema{Properties: map[string]types.SlotProperty{}}
	for _, p := range r.Placeholders {
		if infraTokens[p.Name] {
			continue
		}
		switch p.Type {
		case PlaceholderCollection:
			schema.Properties[p.Name] = types.SlotProperty{
				Type:        "array",
				Description: p.Description,
				Items:       strings.Join(p.Fields, ","),
			}
		case PlaceholderURL:
			schema.Properties[p.Name] = types.SlotProperty{
				Type:        "string",
				Description: p.Description,
			}
		default:
			maxLen := 500
			if strings.Contains(p.Name, "title") || strings.Contains(p.Name, "subject") {
				maxLen = 120
			}
			schema.Properties[p.Name] = types.SlotProperty{
				Type:        "string",
				Description: p.Description,
				MaxLength:   maxLen,
			}
		}
		if p.Required {
			schema.Required = append(schema.Required, p.Name)
		}
	}
	return schema
}
