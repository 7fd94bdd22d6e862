package qa

import (
	"strings"
	"testing"

	"github.com/mailforge/mailforge-backend/internal/logger"
)

func newTestValidator() *Validator {
	return NewValidator(logger.NewNop())
}

const passingHTML = `<html><body>` +
	`<img src="https://cdn.example.com/hero.png" alt="Conference hero">` +
	`<h1>Amazing Tech Event 2024</h1>` +
	`<p>Join hundreds of engineers for two days of deep technical sessions, hallway conversations and hands-on workshops.</p>` +
	`<a href="https://example.com/register?utm_source=email">Register Now</a>` +
	`<a href="https://example.com/unsubscribe">Unsubscribe</a>` +
	`</body></html>`

func TestCheckPasses(t *testing.T) {
	report := newTestValidator().Check(CheckInput{
		Subject:       "Amazing Tech Event 2024",
		Preheader:     "Learn from experts",
		HTML:          passingHTML,
		PlainText:     strings.Repeat("Plenty of plain text content for the companion version. ", 4),
		RequiredSlots: []string{"hero_title"},
		Slots:         map[string]any{"hero_title": "Amazing Tech Event 2024"},
	})
	if !report.Passed {
		t.Fatalf("want passed, got errors: %v", report.Errors)
	}
	if len(report.Errors) != 0 {
		t.Fatalf("want no errors, got %v", report.Errors)
	}
	if report.Metrics.SubjectLength != 23 {
		t.Errorf("subject_length: want=23 got=%d", report.Metrics.SubjectLength)
	}
}

func TestCheckFails(t *testing.T) {
	subject := strings.ToUpper(strings.Repeat("REGISTER NOW ", 5)) // 65 runes, all caps
	report := newTestValidator().Check(CheckInput{
		Subject:       subject,
		Preheader:     "x",
		HTML:          `<html><body><script>alert(1)</script></body></html>`,
		PlainText:     "short",
		RequiredSlots: []string{"hero_title", "intro"},
		Slots:         map[string]any{"hero_title": "Set"},
	})
	if report.Passed {
		t.Fatal("want failed")
	}
	wantSubstrings := []string{"too long", "missing", "script"}
	for _, want := range wantSubstrings {
		found := false
		for _, e := range report.Errors {
			if strings.Contains(e, want) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("no error containing %q in %v", want, report.Errors)
		}
	}
	if report.Metrics.MissingSlots != 1 {
		t.Errorf("missing_slots: want=1 got=%d", report.Metrics.MissingSlots)
	}
}

func TestCheckEmptySubject(t *testing.T) {
	report := newTestValidator().Check(CheckInput{Subject: "   "})
	if report.Passed {
		t.Fatal("want failed")
	}
	found := false
	for _, e := range report.Errors {
		if strings.Contains(e, "empty") {
			found = true
		}
	}
	if !found {
		t.Fatalf("no empty-subject error in %v", report.Errors)
	}
}

func TestCheckCapsWarning(t *testing.T) {
	report := newTestValidator().Check(CheckInput{
		Subject: "LAST CHANCE TO REGISTER",
		HTML:    passingHTML,
	})
	foundCaps := false
	for _, w := range report.Warnings {
		if strings.Contains(w, "uppercase") {
			foundCaps = true
		}
	}
	if !foundCaps {
		t.Fatalf("no caps warning in %v", report.Warnings)
	}
	// caps is a warning, not an error
	if !report.Passed {
		t.Fatalf("caps alone should not fail: %v", report.Errors)
	}
}

func TestCheckEmojiWarning(t *testing.T) {
	report := newTestValidator().Check(CheckInput{
		Subject:   "Join us \U0001F389\U0001F680",
		Preheader: "Big lineup",
		HTML:      passingHTML,
	})
	if report.Metrics.EmojiCount != 2 {
		t.Fatalf("emoji_count: want=2 got=%d", report.Metrics.EmojiCount)
	}
	found := false
	for _, w := range report.Warnings {
		if strings.Contains(w, "emoji") {
			found = true
		}
	}
	if !found {
		t.Fatalf("no emoji warning in %v", report.Warnings)
	}
}

func TestCheckImagesWithoutAlt(t *testing.T) {
	html := `<img src="a.png"><img src="b.png" alt="ok">`
	report := newTestValidator().Check(CheckInput{Subject: "Subject line", HTML: html})
	if report.Metrics.ImagesWithoutAlt != 1 {
		t.Fatalf("images_without_alt: want=1 got=%d", report.Metrics.ImagesWithoutAlt)
	}
}

func TestCheckJavascriptHref(t *testing.T) {
	report := newTestValidator().Check(CheckInput{
		Subject: "Subject line",
		HTML:    `<a href="javascript:alert(1)">x</a>`,
	})
	if report.Passed {
		t.Fatal("javascript href must fail")
	}
}

func TestCheckUnsubscribeDetection(t *testing.T) {
	cases := []struct {
		name string
		html string
		want bool
	}{
		{"direct text child", `<a href="https://example.com/unsub">Unsubscribe</a>`, true},
		{"wrapped in span", `<a href="https://example.com/unsub"><span>Unsubscribe</span></a>`, true},
		{"wrapped in strong inside span", `<a href="https://example.com/unsub"><span><strong>Unsubscribe here</strong></span></a>`, true},
		{"relative href", `<a href="/unsub">Unsubscribe</a>`, false},
		{"word without link", `<p>Unsubscribe</p>`, false},
		{"no mention at all", `<p>Footer</p>`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			report := newTestValidator().Check(CheckInput{Subject: "Subject line", HTML: tc.html})
			missing := false
			for _, w := range report.Warnings {
				if strings.Contains(w, "unsubscribe") {
					missing = true
					break
				}
			}
			if tc.want && missing {
				t.Fatalf("unsubscribe link not recognized in %q", tc.html)
			}
			if !tc.want && !missing {
				t.Fatalf("expected missing-unsubscribe warning for %q", tc.html)
			}
		})
	}
}

func TestCountEmoji(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"no emoji here", 0},
		{"one \U0001F600", 1},
		{"✈ flight", 1},
		{"\U0001F1E9\U0001F1EA", 2},
	}
	for _, tc := range cases {
		if got := CountEmoji(tc.in); got != tc.want {
			t.Errorf("CountEmoji(%q): want=%d got=%d", tc.in, tc.want, got)
		}
	}
}
