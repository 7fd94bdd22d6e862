package induction

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// statLiteralRE matches percent and multiplier literals ("73%", "2.5x").
var statLiteralRE = regexp.MustCompile(`\d+(?:[.,]\d+)?\s*(?:%|[xX]\b)`)

// shape fingerprints a node for repetition detection: tag name plus the
// sorted multiset of immediate child tags.
func shape(n *html.Node) string {
	var tags []string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			tags = append(tags, c.Data)
		}
	}
	sort.Strings(tags)
	return n.Data + "[" + strings.Join(tags, ",") + "]"
}

// detectRepeatingGroups wraps the dominant repeated structure in an
// each-block, then runs a secondary pass for statistics sections keyed on
// percent/multiplier literals.
func (r *run) detectRepeatingGroups() {
	loopName := r.opts.LoopName
	if loopName == "" {
		loopName = "speakers"
	}

	container, nodes := r.findRepeatedRun()
	if container != nil {
		r.wrapLoop(container, nodes, loopName, []string{"name", "title", "talk"})
	}

	statsContainer, statsNodes := r.findStatsRun(container)
	if statsContainer != nil {
		r.wrapLoop(statsContainer, statsNodes, "stats", []string{"value", "label"})
	}
}

// findRepeatedRun returns the first container (document order) holding at
// least three element children where some shape repeats, along with the
// maximal contiguous run of children whose shapes repeat.
func (r *run) findRepeatedRun() (*html.Node, []*html.Node) {
	var container *html.Node
	var best []*html.Node

	walk(r.doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		children := elementChildren(n)
		if len(children) < 3 {
			return true
		}

		counts := map[string]int{}
		for _, c := range children {
			counts[shape(c)]++
		}
		repeats := false
		for _, c := range counts {
			if c >= 2 {
				repeats = true
				break
			}
		}
		if !repeats {
			return true
		}

		var current, maximal []*html.Node
		for _, c := range children {
			if counts[shape(c)] >= 2 {
				current = append(current, c)
			} else {
				if len(current) > len(maximal) {
					maximal = current
				}
				current = nil
			}
		}
		if len(current) > len(maximal) {
			maximal = current
		}
		if len(maximal) < 2 {
			return true
		}

		container = n
		best = maximal
		return false
	})

	return container, best
}

// findStatsRun catches statistics sections: three or more sibling blocks
// each containing a percent or multiplier literal.
func (r *run) findStatsRun(skip *html.Node) (*html.Node, []*html.Node) {
	var container *html.Node
	var nodes []*html.Node

	walk(r.doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n == skip {
			return true
		}
		children := elementChildren(n)
		if len(children) < 3 {
			return true
		}
		var hits []*html.Node
		for _, c := range children {
			text := textContent(c)
			if strings.Contains(text, "{{") {
				// already tokenized
				return true
			}
			if statLiteralRE.MatchString(text) {
				hits = append(hits, c)
			}
		}
		if len(hits) < 3 {
			return true
		}
		container = n
		nodes = hits
		return false
	})

	return container, nodes
}

// wrapLoop keeps the first node of the run as prototype, tokenizes its
// first visible texts with the loop fields, fences it with an each-block
// and drops the remaining run members. The removed rows are preserved as
// the collection's defaults.
func (r *run) wrapLoop(container *html.Node, nodes []*html.Node, loopName string, fields []string) {
	if len(nodes) == 0 {
		return
	}
	prototype := nodes[0]

	defaults := make([]map[string]string, 0, len(nodes))
	for _, n := range nodes {
		item := map[string]string{}
		texts := loopableTexts(n)
		for i, t := range texts {
			if i >= len(fields) {
				break
			}
			item[fields[i]] = normalizeSpace(t.Data)
		}
		defaults = append(defaults, item)
	}

	used := 0
	for i, t := range loopableTexts(prototype) {
		if i >= len(fields) {
			break
		}
		t.Data = "{{" + fields[i] + "}}"
		used++
	}
	if used == 0 {
		r.warn("groups", "repeating group %q has no visible text to tokenize", loopName)
		return
	}

	container.InsertBefore(textNode("{{#each "+loopName+"}}"), prototype)
	if prototype.NextSibling != nil {
		container.InsertBefore(textNode("{{/each}}"), prototype.NextSibling)
	} else {
		container.AppendChild(textNode("{{/each}}"))
	}
	for _, n := range nodes[1:] {
		container.RemoveChild(n)
	}

	r.addPlaceholder(Placeholder{
		Name:         loopName,
		Type:         PlaceholderCollection,
		Description:  "Repeating group of " + loopName,
		Fields:       fields[:used],
		DefaultItems: defaults,
	})
}

// loopableTexts lists visible text nodes that have not been tokenized by an
// earlier pass.
func loopableTexts(n *html.Node) []*html.Node {
	var out []*html.Node
	for _, t := range visibleTextNodes(n) {
		if strings.Contains(t.Data, "{{") {
			continue
		}
		out = append(out, t)
	}
	return out
}
