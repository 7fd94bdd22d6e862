package induction

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	eachOpenRE = regexp.MustCompile(`\{\{#each\s+[A-Za-z0-9_.]+\}\}`)
	ifOpenRE   = regexp.MustCompile(`\{\{#if\s+[A-Za-z0-9_.]+\}\}`)
)

// ValidateTokens checks the placeholder grammar of an adapted layout:
// every opening token must have a matching close, and every each/if block
// must be balanced.
func ValidateTokens(layout string) []Issue {
	var issues []Issue

	opens := strings.Count(layout, "{{")
	closes := strings.Count(layout, "}}")
	if opens != closes {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Category: "tokens",
			Message:  fmt.Sprintf("unbalanced placeholder braces: %d opening vs %d closing", opens, closes),
		})
	}

	eachOpens := len(eachOpenRE.FindAllString(layout, -1))
	eachCloses := strings.Count(layout, "{{/each}}")
	if eachOpens != eachCloses {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Category: "tokens",
			Message:  fmt.Sprintf("unbalanced each blocks: %d opening vs %d closing", eachOpens, eachCloses),
		})
	}

	ifOpens := len(ifOpenRE.FindAllString(layout, -1))
	ifCloses := strings.Count(layout, "{{/if}}")
	if ifOpens != ifCloses {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Category: "tokens",
			Message:  fmt.Sprintf("unbalanced if blocks: %d opening vs %d closing", ifOpens, ifCloses),
		})
	}

	return issues
}
