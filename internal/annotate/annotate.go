// Package annotate writes review issues into a document as comments, falling
// back to visible note paragraphs when a comment cannot be anchored.
package annotate

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/corpagent/internal/docx"
	"github.com/dshills/corpagent/internal/review"
)

// Reviewer identity recorded on every comment.
const (
	Author   = "CorporateAgent"
	Initials = "CA"
)

const (
	fallbackText = "[Review note]"
	notePrefix   = "NOTE: "
)

// Tier records how an issue ended up in the document.
type Tier int

const (
	// TierAttached is a comment anchored to the issue's own paragraph.
	TierAttached Tier = iota + 1
	// TierFallbackParagraph is a comment on an appended "[Review note]" paragraph.
	TierFallbackParagraph
	// TierPlainNote is an appended "NOTE: ..." paragraph without a comment.
	TierPlainNote
)

func (t Tier) String() string {
	switch t {
	case TierAttached:
		return "attached"
	case TierFallbackParagraph:
		return "fallback_paragraph"
	case TierPlainNote:
		return "plain_note"
	}
	return "unknown"
}

// Outcome is the tier taken for one issue and the paragraph it landed on.
type Outcome struct {
	Issue     review.Issue
	Tier      Tier
	Paragraph int
}

// Annotator attaches issues to a loaded document.
type Annotator struct {
	Now func() time.Time
}

// New returns an Annotator stamping comments with the current time.
func New() *Annotator {
	return &Annotator{Now: time.Now}
}

// Annotate records every issue in doc and reports the tier taken for each.
// Attachment failures only downgrade the tier; they are never returned.
func (a *Annotator) Annotate(ctx context.Context, doc *docx.Document, issues []review.Issue) []Outcome {
	logger := zerolog.Ctx(ctx)
	outcomes := make([]Outcome, 0, len(issues))
	for _, iss := range issues {
		o := a.annotate(doc, iss, logger)
		logger.Debug().
			Str("section", iss.Section).
			Str("tier", o.Tier.String()).
			Int("paragraph", o.Paragraph).
			Msg("issue annotated")
		outcomes = append(outcomes, o)
	}
	return outcomes
}

func (a *Annotator) annotate(doc *docx.Document, iss review.Issue, logger *zerolog.Logger) Outcome {
	c := docx.Comment{
		Author:   Author,
		Initials: Initials,
		Text:     iss.CommentText(),
		Date:     a.Now(),
	}

	if iss.ParaIndex != nil && *iss.ParaIndex >= 0 && *iss.ParaIndex < doc.Len() {
		err := doc.AddComment(*iss.ParaIndex, c)
		if err == nil {
			return Outcome{Issue: iss, Tier: TierAttached, Paragraph: *iss.ParaIndex}
		}
		logger.Debug().Err(err).Int("paragraph", *iss.ParaIndex).Msg("comment not anchored, using review note")
	}

	idx := doc.AppendParagraph(fallbackText)
	err := doc.AddComment(idx, c)
	if err == nil {
		return Outcome{Issue: iss, Tier: TierFallbackParagraph, Paragraph: idx}
	}
	logger.Debug().Err(err).Msg("comment not supported, appending plain note")

	idx = doc.AppendParagraph(notePrefix + c.Text)
	return Outcome{Issue: iss, Tier: TierPlainNote, Paragraph: idx}
}

// Tally counts outcomes per tier.
func Tally(outcomes []Outcome) map[Tier]int {
	m := make(map[Tier]int, 3)
	for _, o := range outcomes {
		m[o.Tier]++
	}
	return m
}
