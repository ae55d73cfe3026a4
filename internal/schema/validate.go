// Package schema validates review reports before they are written.
package schema

import (
	"fmt"

	"github.com/dshills/corpagent/internal/review"
)

// ValidationError describes a single schema violation.
type ValidationError struct {
	Path    string
	Message string
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// ValidateReport checks a per-file report for structural validity.
// paraCount is the number of paragraphs the issues were detected against.
func ValidateReport(r *review.Report, paraCount int) []ValidationError {
	return validateReport("", r, paraCount)
}

func validateReport(prefix string, r *review.Report, paraCount int) []ValidationError {
	var errs []ValidationError

	if r.Filename == "" {
		errs = append(errs, ValidationError{prefix + "filename", "required"})
	}
	if r.Process == "" {
		errs = append(errs, ValidationError{prefix + "process", "required"})
	}
	if r.DocumentType == "" {
		errs = append(errs, ValidationError{prefix + "document_type_detected", "required"})
	}
	if r.ReviewedFile == "" {
		errs = append(errs, ValidationError{prefix + "reviewed_file", "required"})
	}
	if r.Issues == nil {
		errs = append(errs, ValidationError{prefix + "issues_found", "must be a list"})
	}

	for i, iss := range r.Issues {
		p := fmt.Sprintf("%sissues_found[%d]", prefix, i)
		if iss.Section == "" {
			errs = append(errs, ValidationError{p + ".section", "required"})
		}
		if iss.Issue == "" {
			errs = append(errs, ValidationError{p + ".issue", "required"})
		}
		if !iss.Severity.Valid() {
			errs = append(errs, ValidationError{p + ".severity", fmt.Sprintf("invalid: %q", iss.Severity)})
		}
		if iss.Citation == "" {
			errs = append(errs, ValidationError{p + ".citation", "required"})
		}
		if iss.ParaIndex != nil && paraCount >= 0 {
			if pi := *iss.ParaIndex; pi < 0 || pi >= paraCount {
				errs = append(errs, ValidationError{p + ".para_index", fmt.Sprintf("%d outside [0, %d)", pi, paraCount)})
			}
		}
	}
	return errs
}

// ValidateCombined checks a batch report. Paragraph bounds are not known at
// this level and are skipped.
func ValidateCombined(c *review.CombinedReport) []ValidationError {
	var errs []ValidationError
	if c.ProcessedCount != len(c.Reports) {
		errs = append(errs, ValidationError{"processed_count", fmt.Sprintf("expected %d, got %d", len(c.Reports), c.ProcessedCount)})
	}
	for i := range c.Reports {
		errs = append(errs, validateReport(fmt.Sprintf("reports[%d].", i), &c.Reports[i], -1)...)
	}
	return errs
}
