package assemble

import (
	"net/url"
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Amazing Event Workshop!", "amazing-event-workshop"},
		{"Hello   World", "hello-world"},
		{"snake_case_term", "snake-case-term"},
		{"", ""},
		{"Trailing punctuation?!", "trailing-punctuation"},
	}
	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q): want=%q got=%q", tc.in, tc.want, got)
		}
	}
}

func TestSlugifyLength(t *testing.T) {
	long := strings.Repeat("word ", 30)
	got := Slugify(long)
	if len(got) > 50 {
		t.Fatalf("slug too long: %d chars", len(got))
	}
	if strings.HasSuffix(got, "-") {
		t.Fatalf("slug has trailing dash: %q", got)
	}
}

func TestApplyUTMNormalization(t *testing.T) {
	got, err := ApplyUTM("https://example.com/register", UTMParams{
		Source:   "email",
		Medium:   "newsletter",
		Campaign: "event2024",
		Term:     "Amazing Event Workshop!",
	})
	if err != nil {
		t.Fatalf("ApplyUTM: %v", err)
	}
	u, err := url.Parse(got)
	if err != nil {
		t.Fatalf("parse result: %v", err)
	}
	q := u.Query()
	for key, want := range map[string]string{
		"utm_source":   "email",
		"utm_medium":   "newsletter",
		"utm_campaign": "event2024",
		"utm_term":     "amazing-event-workshop",
	} {
		if got := q.Get(key); got != want {
			t.Errorf("%s: want=%q got=%q", key, want, got)
		}
	}
}

func TestApplyUTMMergePreservesForeignParams(t *testing.T) {
	got, err := ApplyUTM("https://example.com/page?ref=twitter&lang=en", UTMParams{
		Source:   "social",
		Campaign: "promo",
	})
	if err != nil {
		t.Fatalf("ApplyUTM: %v", err)
	}
	u, _ := url.Parse(got)
	q := u.Query()
	if q.Get("ref") != "twitter" || q.Get("lang") != "en" {
		t.Fatalf("foreign params lost: %q", got)
	}
	if q.Get("utm_source") != "social" || q.Get("utm_campaign") != "promo" {
		t.Fatalf("utm params missing: %q", got)
	}
}

func TestApplyUTMOverwritesExisting(t *testing.T) {
	got, err := ApplyUTM("https://example.com/page?utm_source=old", UTMParams{Source: "new"})
	if err != nil {
		t.Fatalf("ApplyUTM: %v", err)
	}
	u, _ := url.Parse(got)
	if s := u.Query().Get("utm_source"); s != "new" {
		t.Fatalf("utm_source: want=%q got=%q", "new", s)
	}
}

func TestApplyUTMIdempotent(t *testing.T) {
	p := UTMParams{Source: "email", Medium: "newsletter", Campaign: "c1", Term: "Early Bird!", Content: "ct1"}
	once, err := ApplyUTM("https://example.com/a?x=1", p)
	if err != nil {
		t.Fatalf("first apply: %v", err)
	}
	twice, err := ApplyUTM(once, p)
	if err != nil {
		t.Fatalf("second apply: %v", err)
	}
	if once != twice {
		t.Fatalf("not idempotent:\nonce=%q\ntwice=%q", once, twice)
	}
}

func TestValidateCTAURL(t *testing.T) {
	if err := ValidateCTAURL("https://example.com/x"); err != nil {
		t.Fatalf("valid url rejected: %v", err)
	}
	for _, bad := range []string{
		"javascript:alert(1)",
		"ftp://example.com/x",
		"https://",
		"not a url",
	} {
		if err := ValidateCTAURL(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}
