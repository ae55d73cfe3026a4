package review

import "strings"

// BuildReport assembles the report for one reviewed document. joinedText is
// the document's paragraph text joined with single spaces.
func BuildReport(filename, joinedText, docType string, issues []Issue, reviewedFile string, proc ProcessRule) Report {
	if issues == nil {
		issues = []Issue{}
	}
	return Report{
		Filename:     filename,
		Process:      proc.Classify(docType, joinedText),
		DocumentType: docType,
		Issues:       issues,
		ReviewedFile: reviewedFile,
	}
}

// ProcessRule ties documents to a business process by a marker substring.
type ProcessRule struct {
	Name   string
	Marker string
}

// Classify returns p.Name when the marker occurs in the lower-cased document
// type or text, otherwise ProcessUnknown.
func (p ProcessRule) Classify(docType, joinedText string) string {
	if p.Marker == "" {
		return ProcessUnknown
	}
	m := strings.ToLower(p.Marker)
	if strings.Contains(strings.ToLower(docType), m) || strings.Contains(strings.ToLower(joinedText), m) {
		return p.Name
	}
	return ProcessUnknown
}

// Combine aggregates reports in processing order.
func Combine(reports []Report) CombinedReport {
	if reports == nil {
		reports = []Report{}
	}
	return CombinedReport{
		ProcessedCount: len(reports),
		Reports:        reports,
	}
}
