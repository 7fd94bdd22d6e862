package qa

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"

	"github.com/mailforge/mailforge-backend/internal/logger"
)

const (
	MaxSubjectLen     = 60
	MaxPreheaderLen   = 90
	MaxEmojiCount     = 1
	MaxCapsRatio      = 0.30
	MaxHTMLSizeKB     = 100
	MinPlainTextLen   = 120
	MaxSuspectAnchors = 2
)

// Report is the outcome of the post-assembly checklist.
type Report struct {
	Passed   bool     `json:"passed"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
	Metrics  Metrics  `json:"metrics"`
}

type Metrics struct {
	SubjectLength    int     `json:"subject_length"`
	PreheaderLength  int     `json:"preheader_length"`
	HTMLSizeKB       float64 `json:"html_size_kb"`
	EmojiCount       int     `json:"emoji_count"`
	CapsPercentage   float64 `json:"caps_percentage"`
	MissingSlots     int     `json:"missing_slots"`
	ImagesWithoutAlt int     `json:"images_without_alt"`
	InvalidLinks     int     `json:"invalid_links"`
}

// CheckInput is everything the validator needs about one assembled email.
type CheckInput struct {
	Subject       string
	Preheader     string
	HTML          string
	PlainText     string
	RequiredSlots []string
	Slots         map[string]any
}

var (
	scriptTagRE     = regexp.MustCompile(`(?i)<script[\s>]`)
	styleTagRE      = regexp.MustCompile(`(?i)<style[\s>]`)
	jsHrefRE        = regexp.MustCompile(`(?i)href\s*=\s*["']?\s*javascript:`)
	imgTagRE        = regexp.MustCompile(`(?i)<img\b[^>]*>`)
	altAttrRE       = regexp.MustCompile(`(?i)\balt\s*=`)
	anchorHrefRE    = regexp.MustCompile(`(?i)<a\b[^>]*\bhref\s*=\s*["']([^"']*)["']`)
	absoluteHTTPRE  = regexp.MustCompile(`(?i)^https?://[^\s]+$`)
	placeholderHref = regexp.MustCompile(`^\s*(#|\{\{.*)?\s*$`)
)

type Validator struct {
	log *logger.Logger
}

func NewValidator(log *logger.Logger) *Validator {
	return &Validator{log: log.With("service", "QAValidator")}
}

// Check runs the whole checklist and produces the pass/warn/fail report.
func (v *Validator) Check(in CheckInput) *Report {
	r := &Report{Errors: []string{}, Warnings: []string{}}

	subject := strings.TrimSpace(in.Subject)
	r.Metrics.SubjectLength = len([]rune(subject))
	if subject == "" {
		r.Errors = append(r.Errors, "subject is empty")
	} else if r.Metrics.SubjectLength > MaxSubjectLen {
		r.Errors = append(r.Errors,
			fmt.Sprintf("subject too long: %d characters (max %d)", r.Metrics.SubjectLength, MaxSubjectLen))
	}

	r.Metrics.PreheaderLength = len([]rune(in.Preheader))
	if r.Metrics.PreheaderLength > MaxPreheaderLen {
		r.Warnings = append(r.Warnings,
			fmt.Sprintf("preheader too long: %d characters (max %d)", r.Metrics.PreheaderLength, MaxPreheaderLen))
	}

	r.Metrics.EmojiCount = CountEmoji(in.Subject + in.Preheader)
	if r.Metrics.EmojiCount > MaxEmojiCount {
		r.Warnings = append(r.Warnings,
			fmt.Sprintf("too many emoji in subject and preheader: %d (max %d)", r.Metrics.EmojiCount, MaxEmojiCount))
	}

	r.Metrics.CapsPercentage = capsRatio(subject) * 100
	if capsRatio(subject) > MaxCapsRatio {
		r.Warnings = append(r.Warnings,
			fmt.Sprintf("subject is %.0f%% uppercase (max %.0f%%)", r.Metrics.CapsPercentage, MaxCapsRatio*100))
	}

	r.Metrics.HTMLSizeKB = float64(len(in.HTML)) / 1024.0
	if len(in.HTML) > MaxHTMLSizeKB*1024 {
		r.Errors = append(r.Errors,
			fmt.Sprintf("html size %.1f KB exceeds %d KB", r.Metrics.HTMLSizeKB, MaxHTMLSizeKB))
	}

	for _, slot := range in.RequiredSlots {
		val, ok := in.Slots[slot]
		if !ok || strings.TrimSpace(scalarString(val)) == "" {
			r.Metrics.MissingSlots++
			r.Errors = append(r.Errors, fmt.Sprintf("required slot %q missing or empty", slot))
		}
	}

	if scriptTagRE.MatchString(in.HTML) {
		r.Errors = append(r.Errors, "html contains a script tag")
	}
	if styleTagRE.MatchString(in.HTML) {
		// inline style attributes are fine; style blocks are stripped earlier
		r.Errors = append(r.Errors, "html contains a style tag")
	}
	if jsHrefRE.MatchString(in.HTML) {
		r.Errors = append(r.Errors, "html contains a javascript: href")
	}

	for _, img := range imgTagRE.FindAllString(in.HTML, -1) {
		if !altAttrRE.MatchString(img) {
			r.Metrics.ImagesWithoutAlt++
		}
	}
	if r.Metrics.ImagesWithoutAlt > 0 {
		r.Warnings = append(r.Warnings,
			fmt.Sprintf("%d image(s) without alt attribute", r.Metrics.ImagesWithoutAlt))
	}

	for _, m := range anchorHrefRE.FindAllStringSubmatch(in.HTML, -1) {
		if placeholderHref.MatchString(m[1]) {
			r.Metrics.InvalidLinks++
		}
	}
	if r.Metrics.InvalidLinks > MaxSuspectAnchors {
		r.Warnings = append(r.Warnings,
			fmt.Sprintf("%d anchor(s) with placeholder href", r.Metrics.InvalidLinks))
	}

	if !v.hasUnsubscribe(in.HTML) {
		r.Warnings = append(r.Warnings, "no well-formed unsubscribe link found")
	}

	if len([]rune(in.PlainText)) < MinPlainTextLen {
		r.Warnings = append(r.Warnings,
			fmt.Sprintf("plain text shorter than %d characters", MinPlainTextLen))
	}

	r.Passed = len(r.Errors) == 0
	return r
}

// hasUnsubscribe walks every anchor and accepts one whose subtree text
// mentions unsubscribing and whose href is an absolute http(s) URL. The
// label may sit inside nested elements, a span or strong wrapper counts.
func (v *Validator) hasUnsubscribe(doc string) bool {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return false
	}
	var found bool
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if found {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" {
			var href string
			for _, attr := range n.Attr {
				if attr.Key == "href" {
					href = attr.Val
					break
				}
			}
			if absoluteHTTPRE.MatchString(href) &&
				strings.Contains(strings.ToLower(subtreeText(n)), "unsubscribe") {
				found = true
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return found
}

func subtreeText(n *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func capsRatio(s string) float64 {
	var letters, caps int
	for _, r := range s {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				caps++
			}
		}
	}
	if letters == 0 {
		return 0
	}
	return float64(caps) / float64(letters)
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	case []string:
		return strings.Join(t, " ")
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			} else {
				parts = append(parts, fmt.Sprintf("%v", item))
			}
		}
		return strings.Join(parts, " ")
	default:
		return fmt.Sprintf("%v", v)
	}
}
