// Package review defines the issue and report records produced for each
// reviewed document and the combined batch report.
package review

// Issue is a single compliance finding. Issues are immutable once created.
type Issue struct {
	Section    string   `json:"section"`
	Issue      string   `json:"issue"`
	Severity   Severity `json:"severity"`
	Suggestion string   `json:"suggestion"`
	Citation   string   `json:"citation"`
	// ParaIndex anchors the issue to a paragraph; nil means unanchored.
	ParaIndex *int `json:"para_index"`

	// Rule identifies the check that produced the issue.
	Rule Rule `json:"-"`
}

// Anchored reports whether the issue points at a paragraph.
func (i Issue) Anchored() bool { return i.ParaIndex != nil }

// CommentText is the review comment written into the document.
func (i Issue) CommentText() string {
	return i.Issue + " Suggestion: " + i.Suggestion + " (Ref: " + i.Citation + ")"
}

// Report is the per-file review record.
type Report struct {
	Filename     string  `json:"filename"`
	Process      string  `json:"process"`
	DocumentType string  `json:"document_type_detected"`
	Issues       []Issue `json:"issues_found"`
	ReviewedFile string  `json:"reviewed_file"`
}

// CombinedReport aggregates the reports of one batch.
type CombinedReport struct {
	ProcessedCount int      `json:"processed_count"`
	Reports        []Report `json:"reports"`
}

// Index returns a pointer to i for use as Issue.ParaIndex.
func Index(i int) *int { return &i }
