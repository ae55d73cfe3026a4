// Package rules loads the built-in keyword and pattern tables that drive
// classification and issue detection. Tables are decoded once and are
// read-only afterwards.
package rules

import (
	"embed"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// Default is the rule set used when none is named.
const Default = "adgm"

// Rules is a decoded rule set.
type Rules struct {
	Name          string         `yaml:"name"`
	Version       int            `yaml:"version"`
	Description   string         `yaml:"description"`
	DocumentTypes []DocumentType `yaml:"document_types"`
	Process       Process        `yaml:"process"`
	Checks        Checks         `yaml:"checks"`

	jurisdiction *regexp.Regexp
	permissive   *regexp.Regexp
	mandatory    *regexp.Regexp
}

// DocumentType maps a type name to keywords, both in declared order.
type DocumentType struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Process names the business process a document belongs to.
type Process struct {
	Name   string `yaml:"name"`
	Marker string `yaml:"marker"`
}

// IssueText holds the fixed wording of an issue.
type IssueText struct {
	Section    string `yaml:"section"`
	Issue      string `yaml:"issue"`
	Severity   string `yaml:"severity"`
	Suggestion string `yaml:"suggestion"`
	Citation   string `yaml:"citation"`
}

// Checks groups the per-rule settings.
type Checks struct {
	Jurisdiction        JurisdictionCheck    `yaml:"jurisdiction"`
	Signatory           SignatoryCheck       `yaml:"signatory"`
	BindingLanguage     BindingLanguageCheck `yaml:"binding_language"`
	Checklist           ChecklistCheck       `yaml:"checklist"`
	JurisdictionMention MentionCheck         `yaml:"jurisdiction_mention"`
}

// JurisdictionCheck flags references to non-ADGM courts.
type JurisdictionCheck struct {
	Phrases []string  `yaml:"phrases"`
	Issue   IssueText `yaml:"issue"`
}

// SignatoryCheck looks for a signature block near the end of the document.
type SignatoryCheck struct {
	Window  int       `yaml:"window"`
	Phrases []string  `yaml:"phrases"`
	Issue   IssueText `yaml:"issue"`
}

// BindingLanguageCheck compares permissive and mandatory modal verbs.
type BindingLanguageCheck struct {
	Permissive    string    `yaml:"permissive"`
	Mandatory     string    `yaml:"mandatory"`
	MaxPermissive int       `yaml:"max_permissive"`
	Issue         IssueText `yaml:"issue"`
}

// ChecklistCheck lists documents expected with an incorporation filing.
type ChecklistCheck struct {
	TriggerType   string    `yaml:"trigger_type"`
	TriggerPhrase string    `yaml:"trigger_phrase"`
	Expected      []string  `yaml:"expected"`
	Issue         IssueText `yaml:"issue"`
}

// MentionCheck flags a document that never contains Marker.
type MentionCheck struct {
	Marker string    `yaml:"marker"`
	Issue  IssueText `yaml:"issue"`
}

// LoadBuiltin decodes a built-in rule set by name and compiles its patterns.
func LoadBuiltin(name string) (*Rules, error) {
	data, err := builtinFS.ReadFile("builtin/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("rules.LoadBuiltin: unknown rule set %q: %w", name, err)
	}
	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("rules.LoadBuiltin: parse %q: %w", name, err)
	}
	if err := r.compile(); err != nil {
		return nil, fmt.Errorf("rules.LoadBuiltin: %q: %w", name, err)
	}
	return &r, nil
}

// MustLoadBuiltin is LoadBuiltin for rule sets known to be valid.
func MustLoadBuiltin(name string) *Rules {
	r, err := LoadBuiltin(name)
	if err != nil {
		panic(err)
	}
	return r
}

// List returns the names of all built-in rule sets.
func List() ([]string, error) {
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		n := e.Name()
		if strings.HasSuffix(n, ".yaml") {
			names = append(names, strings.TrimSuffix(n, ".yaml"))
		}
	}
	return names, nil
}

func (r *Rules) compile() error {
	if len(r.DocumentTypes) == 0 {
		return fmt.Errorf("no document types")
	}
	if r.Checks.Signatory.Window <= 0 {
		return fmt.Errorf("signatory window must be positive")
	}
	if len(r.Checks.Jurisdiction.Phrases) == 0 {
		return fmt.Errorf("no jurisdiction phrases")
	}

	var err error
	r.jurisdiction, err = regexp.Compile(`(?i)\b(` + strings.Join(r.Checks.Jurisdiction.Phrases, "|") + `)\b`)
	if err != nil {
		return fmt.Errorf("jurisdiction pattern: %w", err)
	}
	r.permissive, err = wordPattern(r.Checks.BindingLanguage.Permissive)
	if err != nil {
		return err
	}
	r.mandatory, err = wordPattern(r.Checks.BindingLanguage.Mandatory)
	return err
}

func wordPattern(word string) (*regexp.Regexp, error) {
	if word == "" {
		return nil, fmt.Errorf("empty modal verb")
	}
	return regexp.Compile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
}

// Jurisdiction matches references to non-ADGM courts.
func (r *Rules) Jurisdiction() *regexp.Regexp { return r.jurisdiction }

// Permissive matches the permissive modal verb as a whole word.
func (r *Rules) Permissive() *regexp.Regexp { return r.permissive }

// Mandatory matches the mandatory modal verb as a whole word.
func (r *Rules) Mandatory() *regexp.Regexp { return r.mandatory }
