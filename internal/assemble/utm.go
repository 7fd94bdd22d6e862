package assemble

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// UTMParams is the tracking tuple stamped onto every CTA URL at
// generation time.
type UTMParams struct {
	Source   string
	Medium   string
	Campaign string
	Term     string
	Content  string
}

var (
	slugStripRE    = regexp.MustCompile(`[^\w\s-]`)
	slugCollapseRE = regexp.MustCompile(`[\s_]+`)
)

// Slugify derives a utm_term slug from a subject line: strip everything
// but word characters, spaces and dashes, collapse whitespace and
// underscores to hyphens, lowercase, truncate to 50 characters.
func Slugify(s string) string {
	s = slugStripRE.ReplaceAllString(s, "")
	s = slugCollapseRE.ReplaceAllString(strings.TrimSpace(s), "-")
	s = strings.ToLower(s)
	if len(s) > 50 {
		s = s[:50]
		s = strings.TrimRight(s, "-")
	}
	return s
}

// ApplyUTM merges the UTM tuple into a base URL. Pre-existing non-UTM
// query parameters survive unchanged; pre-existing utm_* values are
// overwritten. The term is always slug-normalized, so a raw phrase like
// "Amazing Event Workshop!" lands as utm_term=amazing-event-workshop.
// Applying twice with the same tuple equals applying once.
func ApplyUTM(base string, p UTMParams) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	q := u.Query()
	set := func(key, val string) {
		if val != "" {
			q.Set(key, val)
		}
	}
	set("utm_source", p.Source)
	set("utm_medium", p.Medium)
	set("utm_campaign", p.Campaign)
	set("utm_term", Slugify(p.Term))
	set("utm_content", p.Content)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ValidateCTAURL accepts only absolute http(s) URLs with a host.
func ValidateCTAURL(raw string) error {
	if strings.Contains(strings.ToLower(raw), "javascript:") {
		return fmt.Errorf("javascript url rejected")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return fmt.Errorf("scheme %q not allowed", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("url has no host")
	}
	return nil
}
