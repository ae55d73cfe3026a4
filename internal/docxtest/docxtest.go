// Package docxtest builds minimal .docx packages for tests.
package docxtest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Options controls the generated package.
type Options struct {
	// Paragraphs are body paragraph texts. An empty string yields a
	// paragraph without runs.
	Paragraphs []string
	// OmitDocumentRels leaves out word/_rels/document.xml.rels.
	OmitDocumentRels bool
	// Comments seeds an existing word/comments.xml with these texts, ids
	// numbered from 0, together with its relationship and override.
	Comments []string
}

// Write creates dir/name as a .docx package and returns its path.
func Write(t *testing.T, dir, name string, opts Options) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, Build(t, opts), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// Paragraphs is shorthand for Write into a fresh temp dir.
func Paragraphs(t *testing.T, paras ...string) string {
	t.Helper()
	return Write(t, t.TempDir(), "input.docx", Options{Paragraphs: paras})
}

// Build returns the package bytes.
func Build(t *testing.T, opts Options) []byte {
	t.Helper()
	types, rels := contentTypes, documentRels
	if len(opts.Comments) > 0 {
		types = strings.Replace(types, "</Types>", commentsOverride+"</Types>", 1)
		rels = strings.Replace(rels, "</Relationships>", commentsRel+"</Relationships>", 1)
	}
	parts := []struct{ name, body string }{
		{"[Content_Types].xml", types},
		{"_rels/.rels", packageRels},
		{"word/document.xml", documentXML(opts.Paragraphs)},
	}
	if !opts.OmitDocumentRels {
		parts = append(parts, struct{ name, body string }{"word/_rels/document.xml.rels", rels})
	}
	if len(opts.Comments) > 0 {
		parts = append(parts, struct{ name, body string }{"word/comments.xml", commentsXML(opts.Comments)})
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range parts {
		w, err := zw.Create(p.name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := io.WriteString(w, p.body); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// ReadPart returns the named part of the package at path, or "" if absent.
func ReadPart(t *testing.T, path, name string) string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatal(err)
	}
	defer zr.Close()
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			t.Fatal(err)
		}
		return string(data)
	}
	return ""
}

func commentsXML(texts []string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString(`<w:comments xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">`)
	for i, text := range texts {
		fmt.Fprintf(&b, `<w:comment w:id="%d" w:author="Reviewer" w:initials="R"><w:p><w:r><w:t>`, i)
		_ = xml.EscapeText(&b, []byte(text))
		b.WriteString(`</w:t></w:r></w:p></w:comment>`)
	}
	b.WriteString(`</w:comments>`)
	return b.String()
}

func documentXML(paras []string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"><w:body>`)
	for _, p := range paras {
		if p == "" {
			b.WriteString(`<w:p/>`)
			continue
		}
		b.WriteString(`<w:p><w:r><w:t xml:space="preserve">`)
		_ = xml.EscapeText(&b, []byte(p))
		b.WriteString(`</w:t></w:r></w:p>`)
	}
	b.WriteString(`<w:sectPr><w:pgSz w:w="11906" w:h="16838"/></w:sectPr></w:body></w:document>`)
	return b.String()
}

const contentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`

const packageRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`

const documentRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/></Relationships>`

const commentsOverride = `<Override PartName="/word/comments.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.comments+xml"/>`

const commentsRel = `<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/comments" Target="comments.xml"/>`
