package induction

// PlaceholderType classifies what a token expects at assembly time.
type PlaceholderType string

const (
	PlaceholderText       PlaceholderType = "text"
	PlaceholderURL        PlaceholderType = "url"
	PlaceholderCollection PlaceholderType = "collection"
)

// Placeholder is one entry of the manifest emitted alongside the adapted
// layout. For collections, DefaultItems preserves the original repeated
// rows so a default-valued assembly round-trips the reference.
type Placeholder struct {
	Name         string              `json:"name"`
	Type         PlaceholderType     `json:"type"`
	Description  string              `json:"description,omitempty"`
	Required     bool                `json:"required"`
	Default      string              `json:"default,omitempty"`
	Fields       []string            `json:"fields,omitempty"`
	DefaultItems []map[string]string `json:"default_items,omitempty"`
}

// CTARecord keeps the original href/label of a tokenized CTA for audit.
type CTARecord struct {
	Position      string `json:"position"`
	OriginalURL   string `json:"original_url"`
	OriginalLabel string `json:"original_label"`
}

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

type Issue struct {
	Severity Severity `json:"severity"`
	Category string   `json:"category"`
	Message  string   `json:"message"`
}

// Result is the full output of an induction run.
type Result struct {
	HTML         string        `json:"html"`
	Placeholders []Placeholder `json:"placeholders"`
	CTAs         []CTARecord   `json:"ctas"`
	Issues       []Issue       `json:"issues"`
}

// HasErrors reports whether any issue is fatal.
func (r *Result) HasErrors() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Options tunes the heuristic pipeline.
type Options struct {
	// LoopName overrides the default collection name for the repeating
	// group pass.
	LoopName string
}
