package docxtest

import (
	"slices"
	"strings"
	"testing"

	"github.com/antchfx/xmlquery"
)

const (
	commentsRelType = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/comments"
	commentsPart    = "/word/comments.xml"
)

// Comments is the comment wiring of a saved package.
type Comments struct {
	// IDs are the w:comment ids directly under the w:comments root, Texts
	// their texts in the same order.
	IDs   []string
	Texts []string

	RangeStarts []string
	RangeEnds   []string
	References  []string

	Relationship bool
	Override     bool
}

// Inspect parses the document, comments, relationships and content-type
// parts of the package at path. Every present part must be well formed with
// a single root element.
func Inspect(t *testing.T, path string) Comments {
	t.Helper()
	var c Comments

	doc := parseRoot(t, path, "word/document.xml")
	c.RangeStarts = ids(t, doc, "//w:commentRangeStart")
	c.RangeEnds = ids(t, doc, "//w:commentRangeEnd")
	c.References = ids(t, doc, "//w:r/w:commentReference")

	if comments := parseRoot(t, path, "word/comments.xml"); comments != nil {
		for _, n := range queryAll(t, comments, "/w:comments/w:comment") {
			c.IDs = append(c.IDs, attr(n, "id"))
			c.Texts = append(c.Texts, n.InnerText())
		}
	}
	if rels := parseRoot(t, path, "word/_rels/document.xml.rels"); rels != nil {
		for _, n := range queryAll(t, rels, "/Relationships/Relationship") {
			if attr(n, "Type") == commentsRelType && attr(n, "Target") == "comments.xml" {
				c.Relationship = true
			}
		}
	}
	if types := parseRoot(t, path, "[Content_Types].xml"); types != nil {
		for _, n := range queryAll(t, types, "/Types/Override") {
			if strings.EqualFold(attr(n, "PartName"), commentsPart) {
				c.Override = true
			}
		}
	}
	return c
}

// Wired reports an error unless every comment has a range start, a range
// end and a reference in the document body, and the part is registered.
func (c Comments) Wired(t *testing.T) {
	t.Helper()
	for _, want := range []struct {
		name string
		ids  []string
	}{
		{"commentRangeStart", c.RangeStarts},
		{"commentRangeEnd", c.RangeEnds},
		{"commentReference", c.References},
	} {
		if len(want.ids) != len(c.IDs) {
			t.Errorf("%d %s elements for %d comments", len(want.ids), want.name, len(c.IDs))
		}
		for _, id := range c.IDs {
			if !slices.Contains(want.ids, id) {
				t.Errorf("comment %s has no %s", id, want.name)
			}
		}
	}
	if len(c.IDs) > 0 && !c.Relationship {
		t.Error("comments part has no document relationship")
	}
	if len(c.IDs) > 0 && !c.Override {
		t.Error("comments part has no content-type override")
	}
}

// parseRoot parses the named part, or returns nil if the package lacks it.
func parseRoot(t *testing.T, path, name string) *xmlquery.Node {
	t.Helper()
	data := ReadPart(t, path, name)
	if data == "" {
		return nil
	}
	doc, err := xmlquery.Parse(strings.NewReader(data))
	if err != nil {
		t.Fatalf("parse %s: %v", name, err)
	}
	roots := 0
	for n := doc.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == xmlquery.ElementNode {
			roots++
		}
	}
	if roots != 1 {
		t.Fatalf("%s has %d root elements, want 1", name, roots)
	}
	return doc
}

func queryAll(t *testing.T, n *xmlquery.Node, expr string) []*xmlquery.Node {
	t.Helper()
	nodes, err := xmlquery.QueryAll(n, expr)
	if err != nil {
		t.Fatalf("query %s: %v", expr, err)
	}
	return nodes
}

func ids(t *testing.T, n *xmlquery.Node, expr string) []string {
	t.Helper()
	var out []string
	for _, m := range queryAll(t, n, expr) {
		out = append(out, attr(m, "id"))
	}
	return out
}

func attr(n *xmlquery.Node, local string) string {
	for _, a := range n.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
