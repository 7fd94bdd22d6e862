package induction

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var phoneRE = regexp.MustCompile(`\+?[0-9][0-9()\s-]{8,}[0-9]`)

// mapContacts tokenizes the first mailto: anchor and the first phone-shaped
// literal in the document.
func (r *run) mapContacts() {
	anchor := findFirst(r.doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.Data != "a" {
			return false
		}
		href, ok := getAttr(n, "href")
		return ok && strings.HasPrefix(strings.ToLower(href), "mailto:")
	})
	if anchor != nil {
		href, _ := getAttr(anchor, "href")
		original := strings.TrimPrefix(href, "mailto:")
		setAttr(anchor, "href", "mailto:{{support_email}}")
		replaceChildrenWithText(anchor, "{{support_email}}")
		r.addPlaceholder(Placeholder{
			Name:        "support_email",
			Type:        PlaceholderText,
			Description: "Support contact email address",
			Default:     original,
		})
	}

	phone := findFirst(r.doc, func(n *html.Node) bool {
		if n.Type != html.TextNode {
			return false
		}
		m := phoneRE.FindString(n.Data)
		return len(m) >= 10
	})
	if phone != nil {
		original := phoneRE.FindString(phone.Data)
		phone.Data = strings.Replace(phone.Data, original, "{{support_phone}}", 1)
		r.addPlaceholder(Placeholder{
			Name:        "support_phone",
			Type:        PlaceholderText,
			Description: "Support contact phone number",
			Default:     original,
		})
	}
}
