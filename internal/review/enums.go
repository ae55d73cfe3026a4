package review

// Severity indicates the importance of an issue.
type Severity string

const (
	SeverityHigh   Severity = "High"
	SeverityMedium Severity = "Medium"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityHigh, SeverityMedium:
		return true
	}
	return false
}

// Rule names the check that produced an issue, in execution order.
type Rule string

const (
	RuleJurisdiction        Rule = "jurisdiction"
	RuleSignatory           Rule = "signatory"
	RuleBindingLanguage     Rule = "binding_language"
	RuleChecklist           Rule = "checklist"
	RuleJurisdictionMention Rule = "jurisdiction_mention"
)

// DocumentTypeUnknown is reported when no keyword matches.
const DocumentTypeUnknown = "Unknown"

// ProcessUnknown is reported when the document is not tied to a process.
const ProcessUnknown = "Unknown"
