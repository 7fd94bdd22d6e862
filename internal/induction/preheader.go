package induction

import (
	"golang.org/x/net/html"
)

const preheaderToken = "{{preheader}}"

// markPreheader locates the hidden preview block by class containing
// "preheader"; if absent, a hidden block is inserted at the start of the
// body. Its text becomes the preheader token.
func (r *run) markPreheader() {
	block := findFirst(r.doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && classContains(n, "preheader")
	})

	original := ""
	if block != nil {
		original = textContent(block)
		replaceChildrenWithText(block, preheaderToken)
	} else {
		body := findElement(r.doc, "body")
		if body == nil {
			r.fail("preheader", "document has no body element")
			return
		}
		div := &html.Node{
			Type: html.ElementNode,
			Data: "div",
			Attr: []html.Attribute{
				{Key: "class", Val: "preheader"},
				{Key: "style", Val: "display:none;font-size:1px;line-height:1px;max-height:0;max-width:0;opacity:0;overflow:hidden;"},
			},
		}
		div.AppendChild(textNode(preheaderToken))
		if body.FirstChild != nil {
			body.InsertBefore(div, body.FirstChild)
		} else {
			body.AppendChild(div)
		}
		r.warn("preheader", "no preheader block found, inserted hidden block")
	}

	r.addPlaceholder(Placeholder{
		Name:        "preheader",
		Type:        PlaceholderText,
		Description: "Hidden inbox preview text",
		Required:    true,
		Default:     original,
	})
}
