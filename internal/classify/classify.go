// Package classify determines a document's type by keyword matching.
package classify

import (
	"strings"

	"github.com/dshills/corpagent/internal/docx"
	"github.com/dshills/corpagent/internal/review"
	"github.com/dshills/corpagent/internal/rules"
)

// Result is the detected type and the keyword that selected it.
type Result struct {
	Type    string
	Keyword string
}

// JoinText joins paragraph texts with single spaces.
func JoinText(paras []docx.Paragraph) string {
	texts := make([]string, len(paras))
	for i, p := range paras {
		texts[i] = p.Text
	}
	return strings.Join(texts, " ")
}

// Classify returns the first declared type with a keyword contained in the
// lower-cased joined text. Types and keywords are tried in declared order.
func Classify(r *rules.Rules, paras []docx.Paragraph) Result {
	return ClassifyText(r, strings.ToLower(JoinText(paras)))
}

// ClassifyText is Classify over already joined, lower-cased text.
func ClassifyText(r *rules.Rules, lowered string) Result {
	for _, dt := range r.DocumentTypes {
		for _, kw := range dt.Keywords {
			if strings.Contains(lowered, kw) {
				return Result{Type: dt.Name, Keyword: kw}
			}
		}
	}
	return Result{Type: review.DocumentTypeUnknown}
}
