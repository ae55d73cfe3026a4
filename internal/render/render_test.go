package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dshills/corpagent/internal/review"
)

func sampleReport() *review.CombinedReport {
	c := review.Combine([]review.Report{
		{
			Filename:     "application.docx",
			Process:      "Company Incorporation",
			DocumentType: "Incorporation Application Form",
			ReviewedFile: "reviewed_out/application_reviewed_20240101000000.docx",
			Issues: []review.Issue{
				{Section: "Jurisdiction", Issue: "Document never mentions 'ADGM'.", Severity: review.SeverityMedium,
					Suggestion: "Add ADGM references.", Citation: "ADGM Companies Regulations 2020"},
				{Section: "Signatory", Issue: "No signature block.", Severity: review.SeverityHigh,
					Suggestion: "Add a signature block.", Citation: "ADGM Registration checklist", ParaIndex: review.Index(6)},
			},
		},
		{
			Filename:     "resolution.docx",
			Process:      "Unknown",
			DocumentType: "Unknown",
			ReviewedFile: "reviewed_out/resolution_reviewed_20240101000001.docx",
			Issues:       []review.Issue{},
		},
	})
	return &c
}

func TestMarkdown(t *testing.T) {
	md := Markdown(sampleReport())

	checks := []string{
		"# Corporate Agent Review",
		"**Documents:** 2",
		"**Issues:** 1 high, 1 medium",
		"## application.docx",
		"- **Type:** Incorporation Application Form",
		"### High",
		"- **Signatory:** No signature block. (paragraph 7)",
		"### Medium",
		"  - Ref: ADGM Companies Regulations 2020",
		"## resolution.docx",
		"No issues found.",
	}
	for _, want := range checks {
		assert.Contains(t, md, want)
	}
	assert.Less(t, strings.Index(md, "### High"), strings.Index(md, "### Medium"), "high issues render first")
}

func TestMarkdownEmpty(t *testing.T) {
	c := review.Combine(nil)
	md := Markdown(&c)
	assert.Contains(t, md, "**Documents:** 0")
	assert.NotContains(t, md, "## ")
}
