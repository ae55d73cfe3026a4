// Package render produces Markdown output from a combined review report.
package render

import (
	"fmt"
	"strings"

	"github.com/dshills/corpagent/internal/review"
)

// Markdown renders a combined report as a Markdown summary.
func Markdown(c *review.CombinedReport) string {
	var b strings.Builder

	counts := review.CountAll(c)
	b.WriteString("# Corporate Agent Review\n\n")
	fmt.Fprintf(&b, "**Documents:** %d\n", c.ProcessedCount)
	fmt.Fprintf(&b, "**Issues:** %d high, %d medium\n\n", counts.High, counts.Medium)

	for _, r := range c.Reports {
		fmt.Fprintf(&b, "## %s\n\n", r.Filename)
		fmt.Fprintf(&b, "- **Type:** %s\n", r.DocumentType)
		fmt.Fprintf(&b, "- **Process:** %s\n", r.Process)
		fmt.Fprintf(&b, "- **Reviewed file:** %s\n\n", r.ReviewedFile)

		if len(r.Issues) == 0 {
			b.WriteString("No issues found.\n\n")
			continue
		}

		for _, sev := range []review.Severity{review.SeverityHigh, review.SeverityMedium} {
			issues := filterIssues(r.Issues, sev)
			if len(issues) == 0 {
				continue
			}
			fmt.Fprintf(&b, "### %s\n\n", sev)
			for _, iss := range issues {
				renderIssue(&b, iss)
			}
		}
	}

	return b.String()
}

func filterIssues(issues []review.Issue, sev review.Severity) []review.Issue {
	var result []review.Issue
	for _, iss := range issues {
		if iss.Severity == sev {
			result = append(result, iss)
		}
	}
	return result
}

func renderIssue(b *strings.Builder, iss review.Issue) {
	fmt.Fprintf(b, "- **%s:** %s", iss.Section, iss.Issue)
	if iss.ParaIndex != nil {
		fmt.Fprintf(b, " (paragraph %d)", *iss.ParaIndex+1)
	}
	b.WriteString("\n")
	fmt.Fprintf(b, "  - Suggestion: %s\n", iss.Suggestion)
	fmt.Fprintf(b, "  - Ref: %s\n", iss.Citation)
}
