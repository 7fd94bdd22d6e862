package induction

import (
	"strings"

	"golang.org/x/net/html"
)

// isCTA classifies an anchor as a call-to-action button.
func isCTA(n *html.Node) bool {
	if classContains(n, "btn") || classContains(n, "button") {
		return true
	}
	if role, ok := getAttr(n, "role"); ok && strings.EqualFold(role, "button") {
		return true
	}
	if style, ok := getAttr(n, "style"); ok {
		s := strings.ToLower(style)
		if strings.Contains(s, "background") || strings.Contains(s, "border-radius") || strings.Contains(s, "padding") {
			return true
		}
	}
	// Buttons in table layouts usually sit in a centered cell.
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type != html.ElementNode {
			continue
		}
		if p.Data != "td" && p.Data != "th" {
			continue
		}
		if align, ok := getAttr(p, "align"); ok && strings.EqualFold(align, "center") {
			return true
		}
		if style, ok := getAttr(p, "style"); ok &&
			strings.Contains(strings.ToLower(strings.ReplaceAll(style, " ", "")), "text-align:center") {
			return true
		}
		break
	}
	return false
}

// detectCTAs finds up to the first two CTA anchors in document order and
// tokenizes their hrefs and labels.
func (r *run) detectCTAs() {
	positions := []struct {
		name     string
		urlTok   string
		textTok  string
		required bool
	}{
		{"top", "{{cta_top_url}}", "{{cta_top_text}}", true},
		{"bottom", "{{cta_bottom_url}}", "{{cta_bottom_text}}", false},
	}

	idx := 0
	walk(r.doc, func(n *html.Node) bool {
		if idx >= len(positions) {
			return false
		}
		if n.Type != html.ElementNode || n.Data != "a" {
			return true
		}
		href, ok := getAttr(n, "href")
		if !ok {
			return true
		}
		lower := strings.ToLower(strings.TrimSpace(href))
		if lower == "" || strings.HasPrefix(lower, "#") || strings.HasPrefix(lower, "mailto:") {
			return true
		}
		if strings.Contains(href, "{{") {
			// already tokenized by an earlier pass
			return true
		}
		if !isCTA(n) {
			return true
		}

		pos := positions[idx]
		label := textContent(n)
		r.res.CTAs = append(r.res.CTAs, CTARecord{
			Position:      pos.name,
			OriginalURL:   href,
			OriginalLabel: label,
		})
		setAttr(n, "href", pos.urlTok)
		replaceChildrenWithText(n, pos.textTok)

		r.addPlaceholder(Placeholder{
			Name:        "cta_" + pos.name + "_url",
			Type:        PlaceholderURL,
			Description: "Destination URL of the " + pos.name + " call-to-action",
			Required:    pos.required,
			Default:     href,
		})
		r.addPlaceholder(Placeholder{
			Name:        "cta_" + pos.name + "_text",
			Type:        PlaceholderText,
			Description: "Label of the " + pos.name + " call-to-action",
			Required:    pos.required,
			Default:     label,
		})
		idx++
		return true
	})

	if idx == 0 {
		r.warn("cta", "no call-to-action anchors detected")
	}
}
