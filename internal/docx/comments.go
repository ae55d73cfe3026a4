package docx

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

const (
	commentsRelType     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/comments"
	commentsContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.comments+xml"

	emptyComments = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:comments xmlns:w="` + wordNS + `"></w:comments>`
)

var (
	// ErrNoRuns means the target paragraph has no runs to anchor a comment to.
	ErrNoRuns = errors.New("paragraph has no runs")
	// ErrCommentsUnsupported means the package cannot carry a comments part.
	ErrCommentsUnsupported = errors.New("package does not support comments")
	// ErrParagraphRange means the paragraph index is outside the body.
	ErrParagraphRange = errors.New("paragraph index out of range")
)

var (
	commentsRootExpr = xpath.MustCompile("//w:comments")
	commentExpr      = xpath.MustCompile("//w:comment")
	relationsExpr    = xpath.MustCompile("//Relationships")
	relationshipExpr = xpath.MustCompile("//Relationship")
	typesExpr        = xpath.MustCompile("//Types")
	overrideExpr     = xpath.MustCompile("//Override")
)

// Comment is a review comment anchored to a paragraph.
type Comment struct {
	Author   string
	Initials string
	Text     string
	Date     time.Time
}

// commentsState holds the parsed parts that change when comments are added.
// The document nodes are serialized; root is the w:comments element new
// comments are appended to.
type commentsState struct {
	comments *xmlquery.Node
	root     *xmlquery.Node
	rels     *xmlquery.Node
	types    *xmlquery.Node
	nextID   int
	count    int
}

// AddComment anchors c to every run of the paragraph at index. The document is
// left unchanged when an error is returned.
func (d *Document) AddComment(index int, c Comment) error {
	if index < 0 || index >= len(d.paras) {
		return fmt.Errorf("docx.AddComment: %w: %d", ErrParagraphRange, index)
	}
	p := d.paras[index]
	runs := xmlquery.QuerySelectorAll(p, runExpr)
	if len(runs) == 0 {
		return fmt.Errorf("docx.AddComment: paragraph %d: %w", index, ErrNoRuns)
	}
	st, err := d.commentParts()
	if err != nil {
		return fmt.Errorf("docx.AddComment: %w", err)
	}

	id := strconv.Itoa(st.nextID)
	st.nextID++
	st.count++

	insertBefore(runs[0], wElem("commentRangeStart", "w:id", id))
	end := wElem("commentRangeEnd", "w:id", id)
	insertAfter(runs[len(runs)-1], end)
	ref := wElem("r")
	xmlquery.AddChild(ref, wElem("commentReference", "w:id", id))
	insertAfter(end, ref)

	cm := wElem("comment",
		"w:id", id,
		"w:author", c.Author,
		"w:initials", c.Initials,
		"w:date", c.Date.UTC().Format(time.RFC3339),
	)
	cp := wElem("p")
	xmlquery.AddChild(cp, textRun(c.Text))
	xmlquery.AddChild(cm, cp)
	xmlquery.AddChild(st.root, cm)
	return nil
}

// CommentCount returns the number of comments added since load.
func (d *Document) CommentCount() int {
	if d.comments == nil {
		return 0
	}
	return d.comments.count
}

// commentParts parses or creates the comments part together with its
// relationship and content-type override. Nothing is recorded on failure.
func (d *Document) commentParts() (*commentsState, error) {
	if d.comments != nil {
		return d.comments, nil
	}

	relsPart := d.findPart(documentRelsPart)
	typesPart := d.findPart(contentTypesPart)
	if relsPart == nil || typesPart == nil {
		return nil, ErrCommentsUnsupported
	}
	rels, err := xmlquery.Parse(bytes.NewReader(relsPart.data))
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrCommentsUnsupported, documentRelsPart, err)
	}
	relRoot := xmlquery.QuerySelector(rels, relationsExpr)
	types, err := xmlquery.Parse(bytes.NewReader(typesPart.data))
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrCommentsUnsupported, contentTypesPart, err)
	}
	typesRoot := xmlquery.QuerySelector(types, typesExpr)
	if relRoot == nil || typesRoot == nil {
		return nil, ErrCommentsUnsupported
	}

	src := []byte(emptyComments)
	if existing := d.findPart(commentsPart); existing != nil {
		src = existing.data
	}
	comments, err := xmlquery.Parse(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrCommentsUnsupported, commentsPart, err)
	}
	commentsRoot := xmlquery.QuerySelector(comments, commentsRootExpr)
	if commentsRoot == nil {
		return nil, ErrCommentsUnsupported
	}

	next := 0
	for _, c := range xmlquery.QuerySelectorAll(comments, commentExpr) {
		if n, err := strconv.Atoi(attrValue(c, "id")); err == nil && n >= next {
			next = n + 1
		}
	}

	ensureRelationship(relRoot, xmlquery.QuerySelectorAll(rels, relationshipExpr))
	ensureOverride(typesRoot, xmlquery.QuerySelectorAll(types, overrideExpr))

	d.comments = &commentsState{
		comments: comments,
		root:     commentsRoot,
		rels:     rels,
		types:    types,
		nextID:   next,
	}
	return d.comments, nil
}

func ensureRelationship(root *xmlquery.Node, existing []*xmlquery.Node) {
	used := make(map[string]bool, len(existing))
	for _, r := range existing {
		if attrValue(r, "Type") == commentsRelType {
			return
		}
		used[attrValue(r, "Id")] = true
	}
	id := ""
	for i := len(existing) + 1; ; i++ {
		id = "rId" + strconv.Itoa(i)
		if !used[id] {
			break
		}
	}
	rel := &xmlquery.Node{Type: xmlquery.ElementNode, Data: "Relationship"}
	xmlquery.AddAttr(rel, "Id", id)
	xmlquery.AddAttr(rel, "Type", commentsRelType)
	xmlquery.AddAttr(rel, "Target", "comments.xml")
	xmlquery.AddChild(root, rel)
}

func ensureOverride(root *xmlquery.Node, existing []*xmlquery.Node) {
	for _, o := range existing {
		if strings.EqualFold(attrValue(o, "PartName"), "/"+commentsPart) {
			return
		}
	}
	o := &xmlquery.Node{Type: xmlquery.ElementNode, Data: "Override"}
	xmlquery.AddAttr(o, "PartName", "/"+commentsPart)
	xmlquery.AddAttr(o, "ContentType", commentsContentType)
	xmlquery.AddChild(root, o)
}
