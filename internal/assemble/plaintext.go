package assemble

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var blankRunRE = regexp.MustCompile(`\n{3,}`)

var blockTags = map[string]bool{
	"p": true, "div": true, "br": true, "tr": true, "table": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"li": true, "ul": true, "ol": true, "blockquote": true, "hr": true,
}

// PlainText derives the text companion of an assembled HTML email: style
// and script subtrees are stripped, each link becomes "[ text ] href",
// and runs of blank lines collapse to a single blank line.
func PlainText(doc string) (string, error) {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	var emit func(n *html.Node)
	emit = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "style", "script", "head":
				return
			case "a":
				href, _ := anchorHref(n)
				label := anchorText(n)
				if label != "" || href != "" {
					b.WriteString("[ " + label + " ] " + href)
				}
				b.WriteString("\n")
				return
			}
			if blockTags[n.Data] {
				b.WriteString("\n")
			}
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				b.WriteString(normalizeInline(n.Data))
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			emit(c)
		}
		if n.Type == html.ElementNode && blockTags[n.Data] {
			b.WriteString("\n")
		}
	}
	emit(root)

	out := blankRunRE.ReplaceAllString(b.String(), "\n\n")
	lines := strings.Split(out, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}

func anchorHref(n *html.Node) (string, bool) {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, "href") {
			return a.Val, true
		}
	}
	return "", false
}

func anchorText(n *html.Node) string {
	var parts []string
	var walk func(c *html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			t := strings.TrimSpace(c.Data)
			if t != "" {
				parts = append(parts, t)
			}
		}
		for g := c.FirstChild; g != nil; g = g.NextSibling {
			walk(g)
		}
	}
	walk(n)
	return strings.Join(parts, " ")
}

func normalizeInline(s string) string {
	return strings.Join(strings.Fields(s), " ") + " "
}
