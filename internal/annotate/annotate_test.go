package annotate

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/corpagent/internal/docx"
	"github.com/dshills/corpagent/internal/docxtest"
	"github.com/dshills/corpagent/internal/review"
)

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel)
	return logger.WithContext(context.Background())
}

func fixedAnnotator() *Annotator {
	return &Annotator{Now: func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }}
}

func issue(at *int) review.Issue {
	return review.Issue{
		Section:    "Signatory",
		Issue:      "No signature.",
		Severity:   review.SeverityHigh,
		Suggestion: "Add one.",
		Citation:   "ADGM Registration checklist",
		ParaIndex:  at,
	}
}

func TestAnnotateTiers(t *testing.T) {
	doc, err := docx.Load(docxtest.Paragraphs(t, "Clause", ""))
	require.NoError(t, err)

	issues := []review.Issue{
		issue(review.Index(0)),
		issue(review.Index(1)),
		issue(nil),
		issue(review.Index(42)),
	}
	out := fixedAnnotator().Annotate(testContext(t), doc, issues)
	require.Len(t, out, 4)

	assert.Equal(t, TierAttached, out[0].Tier)
	assert.Equal(t, 0, out[0].Paragraph)
	for _, o := range out[1:] {
		assert.Equal(t, TierFallbackParagraph, o.Tier)
	}
	assert.Equal(t, 2, out[1].Paragraph)
	assert.Equal(t, 4, doc.CommentCount())
	assert.Equal(t, 5, doc.Len())

	paras := doc.Paragraphs()
	for _, p := range paras[2:] {
		assert.Equal(t, "[Review note]", p.Text)
	}

	path := filepath.Join(t.TempDir(), "out.docx")
	require.NoError(t, doc.Save(path))

	got := docxtest.Inspect(t, path)
	got.Wired(t)
	require.Len(t, got.IDs, len(out))
	for _, text := range got.Texts {
		assert.Equal(t, "No signature. Suggestion: Add one. (Ref: ADGM Registration checklist)", text)
	}
	comments := docxtest.ReadPart(t, path, "word/comments.xml")
	assert.Contains(t, comments, `w:author="CorporateAgent"`)
	assert.Contains(t, comments, `w:date="2024-01-01T00:00:00Z"`)

	reloaded, err := docx.Load(path)
	require.NoError(t, err)
	assert.Equal(t, doc.Len(), reloaded.Len())
	for _, o := range out {
		assert.Less(t, o.Paragraph, reloaded.Len())
	}
}

func TestAnnotatePlainNote(t *testing.T) {
	path := docxtest.Write(t, t.TempDir(), "norels.docx", docxtest.Options{
		Paragraphs:       []string{"Clause"},
		OmitDocumentRels: true,
	})
	doc, err := docx.Load(path)
	require.NoError(t, err)

	out := fixedAnnotator().Annotate(testContext(t), doc, []review.Issue{issue(review.Index(0)), issue(nil)})
	require.Len(t, out, 2)
	for _, o := range out {
		assert.Equal(t, TierPlainNote, o.Tier)
	}
	assert.Zero(t, doc.CommentCount())

	paras := doc.Paragraphs()
	require.Len(t, paras, 5)
	assert.Equal(t, "[Review note]", paras[1].Text)
	assert.Equal(t, "NOTE: No signature. Suggestion: Add one. (Ref: ADGM Registration checklist)", paras[2].Text)
	assert.Equal(t, map[Tier]int{TierPlainNote: 2}, Tally(out))
}

func TestAnnotateNoIssues(t *testing.T) {
	doc, err := docx.Load(docxtest.Paragraphs(t, "Clause"))
	require.NoError(t, err)

	out := New().Annotate(context.Background(), doc, nil)
	assert.Empty(t, out)
	assert.Equal(t, 1, doc.Len())
	assert.Zero(t, doc.CommentCount())
}

func TestTierString(t *testing.T) {
	assert.Equal(t, "attached", TierAttached.String())
	assert.Equal(t, "fallback_paragraph", TierFallbackParagraph.String())
	assert.Equal(t, "plain_note", TierPlainNote.String())
	assert.Equal(t, "unknown", Tier(0).String())
}
