package induction

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/mailforge/mailforge-backend/internal/logger"
)

// Inducer transforms a reference HTML email into a parametric template:
// an adapted layout with placeholder tokens, a placeholder manifest, a CTA
// manifest and a list of validation issues.
type Inducer struct {
	log *logger.Logger
}

func NewInducer(log *logger.Logger) *Inducer {
	return &Inducer{log: log.With("service", "TemplateInducer")}
}

// run carries per-induction state between passes.
type run struct {
	doc  *html.Node
	opts Options
	res  *Result
}

func (r *run) addPlaceholder(p Placeholder) {
	for _, existing := range r.res.Placeholders {
		if existing.Name == p.Name {
			return
		}
	}
	r.res.Placeholders = append(r.res.Placeholders, p)
}

func (r *run) warn(category, format string, args ...any) {
	r.res.Issues = append(r.res.Issues, Issue{
		Severity: SeverityWarning,
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (r *run) fail(category, format string, args ...any) {
	r.res.Issues = append(r.res.Issues, Issue{
		Severity: SeverityError,
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Induce runs the deterministic heuristic pipeline in order: sanitize,
// preheader, contacts, title, CTAs, repeating groups, validation.
func (ind *Inducer) Induce(refHTML string, opts Options) (*Result, error) {
	if strings.TrimSpace(refHTML) == "" {
		return nil, fmt.Errorf("reference html is empty")
	}
	doc, err := html.Parse(strings.NewReader(refHTML))
	if err != nil {
		return nil, fmt.Errorf("parse reference html: %w", err)
	}

	r := &run{doc: doc, opts: opts, res: &Result{}}

	r.sanitize()
	r.markPreheader()
	r.mapContacts()
	r.markTitle()
	r.detectCTAs()
	r.detectRepeatingGroups()

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return nil, fmt.Errorf("render adapted html: %w", err)
	}
	r.res.HTML = buf.String()

	r.res.Issues = append(r.res.Issues, ValidateTokens(r.res.HTML)...)

	ind.log.Info("Induction finished",
		"placeholders", len(r.res.Placeholders),
		"ctas", len(r.res.CTAs),
		"issues", len(r.res.Issues),
	)
	return r.res, nil
}
