package induction

import (
	"golang.org/x/net/html"
)

// markTitle turns the first non-empty h1 (else h2) into the main title slot.
func (r *run) markTitle() {
	title := findFirst(r.doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "h1" && textContent(n) != ""
	})
	if title == nil {
		title = findFirst(r.doc, func(n *html.Node) bool {
			return n.Type == html.ElementNode && n.Data == "h2" && textContent(n) != ""
		})
	}
	if title == nil {
		r.warn("title", "no h1 or h2 with visible text found")
		return
	}

	original := textContent(title)
	replaceChildrenWithText(title, "{{slot.main_title}}")
	r.addPlaceholder(Placeholder{
		Name:        "main_title",
		Type:        PlaceholderText,
		Description: "Main headline of the email",
		Required:    true,
		Default:     original,
	})
}
