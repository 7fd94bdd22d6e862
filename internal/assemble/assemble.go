package assemble

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/mailforge/mailforge-backend/internal/logger"
)

// EventContext carries the event/list fields injected into every layout.
type EventContext struct {
	EventName      string
	EventDate      string
	Venue          string
	LogoURL        string
	UnsubscribeURL string
}

// CTABinding is one resolved call-to-action: final (UTM-stamped) URL plus
// visible label.
type CTABinding struct {
	URL  string
	Text string
}

// Input is everything the assembler merges into a layout.
type Input struct {
	Event     EventContext
	Preheader string
	// Slots maps slot name to value: scalar string, []string, or nested map.
	Slots map[string]any
	// Primary and Secondary are resolved by the orchestrator from the CTA
	// catalog; nil means the layout's CTA tokens degrade to "#".
	Primary   *CTABinding
	Secondary *CTABinding
	// Defaults are the placeholder-manifest defaults, applied to any
	// scalar token still unresolved after slots.
	Defaults map[string]string
	// Collections are fallback rows for each-blocks without a slot value.
	Collections map[string][]map[string]string
}

type Output struct {
	HTML      string
	PlainText string
	Warnings  []string
}

var (
	eachBlockRE  = regexp.MustCompile(`(?s)\{\{#each\s+([A-Za-z0-9_]+)\}\}(.*?)\{\{/each\}\}`)
	ifBlockRE    = regexp.MustCompile(`(?s)\{\{#if\s+([A-Za-z0-9_.]+)\}\}(.*?)\{\{/if\}\}`)
	defaultTokRE = regexp.MustCompile(`\{\{([A-Za-z0-9_.]+)\|([^}]*)\}\}`)
	slotDropRE   = regexp.MustCompile(`\{\{slot\.[A-Za-z0-9_.]+\}\}`)
	fieldTokRE   = regexp.MustCompile(`\{\{([A-Za-z0-9_]+)\}\}`)
)

type Assembler struct {
	log *logger.Logger
}

func NewAssembler(log *logger.Logger) *Assembler {
	return &Assembler{log: log.With("service", "Assembler")}
}

// Assemble merges slot values, event context and resolved CTAs into the
// layout and derives the plain-text companion.
func (a *Assembler) Assemble(layout string, in Input) (*Output, error) {
	out := &Output{}
	doc := layout

	doc = a.renderEachBlocks(doc, in, out)
	doc = a.renderIfBlocks(doc, in)
	doc = a.renderCTAs(doc, in, out)
	doc = renderEventTokens(doc, in)
	doc = renderSlots(doc, in.Slots)
	doc = renderDefaultedTokens(doc, in)
	doc = renderManifestDefaults(doc, in.Defaults)

	if dropped := slotDropRE.FindAllString(doc, -1); len(dropped) > 0 {
		out.Warnings = append(out.Warnings,
			fmt.Sprintf("dropped %d unresolved slot token(s)", len(dropped)))
		doc = slotDropRE.ReplaceAllString(doc, "")
	}

	out.HTML = doc

	text, err := PlainText(doc)
	if err != nil {
		return nil, fmt.Errorf("derive plain text: %w", err)
	}
	out.PlainText = text
	return out, nil
}

func (a *Assembler) renderEachBlocks(doc string, in Input, out *Output) string {
	return eachBlockRE.ReplaceAllStringFunc(doc, func(block string) string {
		m := eachBlockRE.FindStringSubmatch(block)
		name, body := m[1], m[2]

		items := collectionItems(in, name)
		if items == nil {
			out.Warnings = append(out.Warnings,
				fmt.Sprintf("each block %q has no collection value", name))
			return ""
		}

		var b strings.Builder
		for _, item := range items {
			b.WriteString(fieldTokRE.ReplaceAllStringFunc(body, func(tok string) string {
				field := fieldTokRE.FindStringSubmatch(tok)[1]
				if v, ok := item[field]; ok {
					return html.EscapeString(v)
				}
				return tok
			}))
		}
		return b.String()
	})
}

// collectionItems resolves the rows of an each-block: a slot value when
// present, else the induction-time defaults.
func collectionItems(in Input, name string) []map[string]string {
	if raw, ok := in.Slots[name]; ok {
		switch v := raw.(type) {
		case []map[string]string:
			return v
		case []map[string]any:
			out := make([]map[string]string, 0, len(v))
			for _, item := range v {
				out = append(out, stringifyMap(item))
			}
			return out
		case []any:
			out := make([]map[string]string, 0, len(v))
			for _, item := range v {
				if m, ok := item.(map[string]any); ok {
					out = append(out, stringifyMap(m))
				}
			}
			return out
		}
	}
	if rows, ok := in.Collections[name]; ok {
		return rows
	}
	return nil
}

func stringifyMap(m map[string]any) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = valueToString(v)
	}
	return out
}

func valueToString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	case float64:
		return strings.TrimSuffix(strings.TrimSuffix(fmt.Sprintf("%.2f", t), "0"), ".0")
	default:
		return fmt.Sprintf("%v", t)
	}
}

func (a *Assembler) renderIfBlocks(doc string, in Input) string {
	return ifBlockRE.ReplaceAllStringFunc(doc, func(block string) string {
		m := ifBlockRE.FindStringSubmatch(block)
		name, body := m[1], m[2]
		if lookupTruthy(in, name) {
			return body
		}
		return ""
	})
}

func lookupTruthy(in Input, name string) bool {
	name = strings.TrimPrefix(name, "slot.")
	if v, ok := lookupPath(in.Slots, name); ok {
		return strings.TrimSpace(valueToString(v)) != ""
	}
	switch name {
	case "venue":
		return in.Event.Venue != ""
	case "logo_url":
		return in.Event.LogoURL != ""
	case "preheader":
		return in.Preheader != ""
	}
	return false
}

func lookupPath(slots map[string]any, path string) (any, bool) {
	parts := strings.Split(path, ".")
	var current any = slots
	for _, p := range parts {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[p]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func (a *Assembler) renderCTAs(doc string, in Input, out *Output) string {
	bind := func(b *CTABinding, position string) (string, string) {
		if b == nil {
			return "#", ""
		}
		if err := ValidateCTAURL(b.URL); err != nil {
			out.Warnings = append(out.Warnings,
				fmt.Sprintf("%s cta url rejected: %v", position, err))
			return "#", b.Text
		}
		return html.EscapeString(b.URL), html.EscapeString(b.Text)
	}

	priURL, priText := bind(in.Primary, "primary")
	secURL, secText := bind(in.Secondary, "secondary")

	replacements := []struct{ token, value string }{
		{"{{CTA_URL_PRIMARY}}", priURL},
		{"{{CTA_URL_0}}", priURL},
		{"{{cta_top_url}}", priURL},
		{"{{CTA_TEXT_PRIMARY}}", priText},
		{"{{cta_top_text}}", priText},
		{"{{CTA_URL_SECONDARY}}", secURL},
		{"{{CTA_URL_1}}", secURL},
		{"{{cta_bottom_url}}", secURL},
		{"{{CTA_TEXT_SECONDARY}}", secText},
		{"{{cta_bottom_text}}", secText},
	}
	for _, r := range replacements {
		doc = strings.ReplaceAll(doc, r.token, r.value)
	}
	return doc
}

func renderEventTokens(doc string, in Input) string {
	replacements := []struct{ token, value string }{
		// The logo URL is intentionally not escaped: it is a URL.
		{"{{logo_url}}", in.Event.LogoURL},
		{"{{event_name}}", html.EscapeString(in.Event.EventName)},
		{"{{event_date}}", html.EscapeString(in.Event.EventDate)},
		{"{{venue}}", html.EscapeString(in.Event.Venue)},
		{"{{preheader}}", html.EscapeString(in.Preheader)},
		{"{{unsubscribe_url}}", html.EscapeString(in.Event.UnsubscribeURL)},
	}
	for _, r := range replacements {
		doc = strings.ReplaceAll(doc, r.token, r.value)
	}
	return doc
}

func renderSlots(doc string, slots map[string]any) string {
	for name, raw := range slots {
		switch v := raw.(type) {
		case string:
			doc = replaceSlotToken(doc, name, html.EscapeString(v))
		case []string:
			doc = replaceSlotToken(doc, name, bulletList(v))
		case []any:
			items := make([]string, 0, len(v))
			onlyStrings := true
			for _, item := range v {
				s, ok := item.(string)
				if !ok {
					onlyStrings = false
					break
				}
				items = append(items, s)
			}
			if onlyStrings {
				doc = replaceSlotToken(doc, name, bulletList(items))
			}
		case map[string]any:
			for sub, subVal := range v {
				doc = replaceSlotToken(doc, name+"."+sub, html.EscapeString(valueToString(subVal)))
			}
		case float64, bool, int:
			doc = replaceSlotToken(doc, name, html.EscapeString(valueToString(v)))
		}
	}
	return doc
}

// replaceSlotToken accepts both the slot-qualified and the bare form of a
// token.
func replaceSlotToken(doc, name, value string) string {
	doc = strings.ReplaceAll(doc, "{{slot."+name+"}}", value)
	doc = strings.ReplaceAll(doc, "{{"+name+"}}", value)
	return doc
}

func bulletList(items []string) string {
	var b strings.Builder
	for _, item := range items {
		b.WriteString("<li>")
		b.WriteString(html.EscapeString(item))
		b.WriteString("</li>")
	}
	return b.String()
}

// renderDefaultedTokens resolves the {{name|default}} form: an unresolved
// token falls back to its inline default.
func renderDefaultedTokens(doc string, in Input) string {
	return defaultTokRE.ReplaceAllStringFunc(doc, func(tok string) string {
		m := defaultTokRE.FindStringSubmatch(tok)
		name, def := m[1], m[2]
		if v, ok := lookupPath(in.Slots, strings.TrimPrefix(name, "slot.")); ok {
			return html.EscapeString(valueToString(v))
		}
		return html.EscapeString(def)
	})
}

func renderManifestDefaults(doc string, defaults map[string]string) string {
	for name, def := range defaults {
		token := "{{" + name + "}}"
		if strings.Contains(doc, token) {
			doc = strings.ReplaceAll(doc, token, html.EscapeString(def))
		}
		token = "{{slot." + name + "}}"
		if strings.Contains(doc, token) {
			doc = strings.ReplaceAll(doc, token, html.EscapeString(def))
		}
	}
	return doc
}
