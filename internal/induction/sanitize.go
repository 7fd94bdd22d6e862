package induction

import (
	"strings"

	"golang.org/x/net/html"
)

// sanitize drops every script element and any attribute whose name begins
// with "on". Everything else is left intact.
func (r *run) sanitize() {
	var scripts []*html.Node
	walk(r.doc, func(n *html.Node) bool {
		if n.Type == html.ElementNode {
			if n.Data == "script" {
				scripts = append(scripts, n)
				return true
			}
			kept := n.Attr[:0]
			for _, a := range n.Attr {
				if strings.HasPrefix(strings.ToLower(a.Key), "on") {
					continue
				}
				kept = append(kept, a)
			}
			n.Attr = kept
		}
		return true
	})
	for _, s := range scripts {
		if s.Parent != nil {
			s.Parent.RemoveChild(s)
		}
	}
	if len(scripts) > 0 {
		r.warn("sanitize", "removed %d script element(s)", len(scripts))
	}
}
