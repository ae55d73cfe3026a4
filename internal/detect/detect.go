// Package detect runs the fixed sequence of compliance checks over a
// document's paragraphs.
package detect

import (
	"fmt"
	"strings"

	"github.com/dshills/corpagent/internal/classify"
	"github.com/dshills/corpagent/internal/docx"
	"github.com/dshills/corpagent/internal/review"
	"github.com/dshills/corpagent/internal/rules"
)

// input is the text each check sees.
type input struct {
	paras   []docx.Paragraph
	lowered string
	docType string
}

type check func(*rules.Rules, input) (review.Issue, bool)

// checks run in this order; issue order follows it.
var checks = []check{
	jurisdiction,
	signatory,
	bindingLanguage,
	checklist,
	jurisdictionMention,
}

// Detect returns the issues found in paras, in check order. It never returns nil.
func Detect(r *rules.Rules, paras []docx.Paragraph, docType string) []review.Issue {
	in := input{
		paras:   paras,
		lowered: strings.ToLower(classify.JoinText(paras)),
		docType: docType,
	}
	issues := []review.Issue{}
	for _, c := range checks {
		if iss, ok := c(r, in); ok {
			issues = append(issues, iss)
		}
	}
	return issues
}

func newIssue(rule review.Rule, t rules.IssueText, text string, at *int) review.Issue {
	return review.Issue{
		Section:    t.Section,
		Issue:      text,
		Severity:   review.Severity(t.Severity),
		Suggestion: t.Suggestion,
		Citation:   t.Citation,
		ParaIndex:  at,
		Rule:       rule,
	}
}

func jurisdiction(r *rules.Rules, in input) (review.Issue, bool) {
	if !r.Jurisdiction().MatchString(in.lowered) {
		return review.Issue{}, false
	}
	t := r.Checks.Jurisdiction.Issue
	return newIssue(review.RuleJurisdiction, t, t.Issue, nil), true
}

// signatory looks for a signature block in the last Window paragraphs. On an
// empty document the issue is left unanchored.
func signatory(r *rules.Rules, in input) (review.Issue, bool) {
	c := r.Checks.Signatory
	start := len(in.paras) - c.Window
	if start < 0 {
		start = 0
	}
	tail := strings.ToLower(classify.JoinText(in.paras[start:]))
	for _, phrase := range c.Phrases {
		if strings.Contains(tail, phrase) {
			return review.Issue{}, false
		}
	}
	var at *int
	if len(in.paras) > 0 {
		at = review.Index(len(in.paras) - 1)
	}
	return newIssue(review.RuleSignatory, c.Issue, c.Issue.Issue, at), true
}

func bindingLanguage(r *rules.Rules, in input) (review.Issue, bool) {
	c := r.Checks.BindingLanguage
	may := len(r.Permissive().FindAllStringIndex(in.lowered, -1))
	shall := len(r.Mandatory().FindAllStringIndex(in.lowered, -1))
	if may <= c.MaxPermissive || shall != 0 {
		return review.Issue{}, false
	}
	return newIssue(review.RuleBindingLanguage, c.Issue, fmt.Sprintf(c.Issue.Issue, may), nil), true
}

// checklist lists expected documents missing from an incorporation filing.
// Missing names keep their declared order.
func checklist(r *rules.Rules, in input) (review.Issue, bool) {
	c := r.Checks.Checklist
	if in.docType != c.TriggerType && !strings.Contains(in.lowered, c.TriggerPhrase) {
		return review.Issue{}, false
	}
	var missing []string
	for _, name := range c.Expected {
		if !strings.Contains(in.lowered, name) {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return review.Issue{}, false
	}
	text := fmt.Sprintf(c.Issue.Issue, strings.Join(missing, ", "))
	return newIssue(review.RuleChecklist, c.Issue, text, nil), true
}

func jurisdictionMention(r *rules.Rules, in input) (review.Issue, bool) {
	c := r.Checks.JurisdictionMention
	if strings.Contains(in.lowered, c.Marker) {
		return review.Issue{}, false
	}
	return newIssue(review.RuleJurisdictionMention, c.Issue, c.Issue.Issue, nil), true
}
