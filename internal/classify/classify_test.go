package classify

import (
	"testing"

	"github.com/dshills/corpagent/internal/docx"
	"github.com/dshills/corpagent/internal/review"
	"github.com/dshills/corpagent/internal/rules"
	"github.com/stretchr/testify/assert"
)

func paras(texts ...string) []docx.Paragraph {
	out := make([]docx.Paragraph, len(texts))
	for i, s := range texts {
		out[i] = docx.Paragraph{Index: i, Text: s}
	}
	return out
}

func TestJoinText(t *testing.T) {
	if got := JoinText(paras("a", "b", "", "c")); got != "a b  c" {
		t.Errorf("JoinText = %q, want %q", got, "a b  c")
	}
	if got := JoinText(nil); got != "" {
		t.Errorf("JoinText(nil) = %q, want empty", got)
	}
}

func TestClassify(t *testing.T) {
	r := rules.MustLoadBuiltin(rules.Default)

	tests := []struct {
		name    string
		texts   []string
		want    string
		keyword string
	}{
		{"articles", []string{"ARTICLES OF ASSOCIATION of Acme Ltd"}, "Articles of Association", "articles of association"},
		{"memorandum", []string{"This Memorandum is made"}, "Memorandum of Association", "memorandum"},
		{"register", []string{"Register of Directors"}, "Register of Members and Directors", "register of directors"},
		{"application", []string{"Incorporation", "Application Form"}, "Incorporation Application Form", "incorporation application"},
		{"ubo", []string{"Ultimate Beneficial Owner details"}, "UBO Declaration Form", "ultimate beneficial owner"},
		{"earlier type wins", []string{"UBO Declaration", "see the Memorandum"}, "Memorandum of Association", "memorandum"},
		{"empty", nil, review.DocumentTypeUnknown, ""},
		{"no keywords", []string{"Lease agreement"}, review.DocumentTypeUnknown, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(r, paras(tt.texts...))
			if got.Type != tt.want {
				t.Errorf("Type = %q, want %q", got.Type, tt.want)
			}
			if got.Keyword != tt.keyword {
				t.Errorf("Keyword = %q, want %q", got.Keyword, tt.keyword)
			}
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	r := rules.MustLoadBuiltin(rules.Default)
	p := paras("Register of Members", "Articles", "MOA")
	first := Classify(r, p)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Classify(r, p))
	}
	assert.Equal(t, "Articles of Association", first.Type)
}
