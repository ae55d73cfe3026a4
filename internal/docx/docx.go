// Package docx loads WordprocessingML (.docx) packages into an owned,
// mutable document model. A document is parsed exactly once; readers see its
// body paragraphs in order and the annotator mutates the same tree before it
// is written back out as a new package.
package docx

import (
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

const (
	documentPart     = "word/document.xml"
	documentRelsPart = "word/_rels/document.xml.rels"
	commentsPart     = "word/comments.xml"
	contentTypesPart = "[Content_Types].xml"

	wordNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
)

var (
	bodyExpr     = xpath.MustCompile("//w:body")
	bodyParaExpr = xpath.MustCompile("//w:body/w:p")
	runExpr      = xpath.MustCompile("w:r")
)

// LoadError reports a file that could not be opened as a .docx package.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("docx: load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// SaveError reports a document that could not be written to its output path.
type SaveError struct {
	Path string
	Err  error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("docx: save %s: %v", e.Path, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }

// ErrUnsupportedFormat is wrapped by a LoadError for non-.docx inputs.
var ErrUnsupportedFormat = errors.New("unsupported format: only .docx is accepted")

// Run is an inline span of a paragraph sharing one set of formatting.
type Run struct {
	Text string
}

// Paragraph is a body-level paragraph in document order.
type Paragraph struct {
	Index int
	Text  string
	Runs  []Run
}

// part is one entry of the zip package, kept in its original order.
type part struct {
	name   string
	method uint16
	data   []byte
}

// Document is a parsed .docx package.
type Document struct {
	FilePath string
	Hash     string

	parts []*part
	root  *xmlquery.Node
	body  *xmlquery.Node
	paras []*xmlquery.Node

	comments *commentsState
}

// Load reads a .docx file, parses its main document part and computes the
// SHA-256 hash of the package bytes.
func Load(path string) (*Document, error) {
	if !strings.EqualFold(filepath.Ext(path), ".docx") {
		return nil, &LoadError{Path: path, Err: ErrUnsupportedFormat}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	doc, err := parse(data)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	h := sha256.Sum256(data)
	doc.FilePath = path
	doc.Hash = fmt.Sprintf("sha256:%x", h)
	return doc, nil
}

func parse(data []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open package: %w", err)
	}

	doc := &Document{}
	var main []byte
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		b, err := readEntry(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
		doc.parts = append(doc.parts, &part{name: f.Name, method: f.Method, data: b})
		if f.Name == documentPart {
			main = b
		}
	}
	if main == nil {
		return nil, fmt.Errorf("missing %s", documentPart)
	}

	root, err := xmlquery.Parse(bytes.NewReader(main))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", documentPart, err)
	}
	body := xmlquery.QuerySelector(root, bodyExpr)
	if body == nil {
		return nil, fmt.Errorf("%s has no w:body", documentPart)
	}
	doc.root = root
	doc.body = body
	doc.paras = xmlquery.QuerySelectorAll(root, bodyParaExpr)
	return doc, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Paragraphs returns the body paragraphs in document order, including any
// appended since the document was loaded.
func (d *Document) Paragraphs() []Paragraph {
	out := make([]Paragraph, len(d.paras))
	for i, p := range d.paras {
		out[i] = Paragraph{Index: i, Text: nodeText(p), Runs: runsOf(p)}
	}
	return out
}

// Len returns the number of body paragraphs.
func (d *Document) Len() int { return len(d.paras) }

func runsOf(p *xmlquery.Node) []Run {
	nodes := xmlquery.QuerySelectorAll(p, runExpr)
	runs := make([]Run, 0, len(nodes))
	for _, r := range nodes {
		runs = append(runs, Run{Text: nodeText(r)})
	}
	return runs
}

// nodeText concatenates the visible text below n: w:t content, tabs and
// breaks. Text boxes are skipped since they hold paragraphs of their own.
func nodeText(n *xmlquery.Node) string {
	var b strings.Builder
	var walk func(*xmlquery.Node)
	walk = func(n *xmlquery.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != xmlquery.ElementNode || c.Prefix != "w" {
				continue
			}
			switch c.Data {
			case "t":
				b.WriteString(c.InnerText())
			case "tab":
				b.WriteByte('\t')
			case "br", "cr":
				b.WriteByte('\n')
			case "txbxContent":
			default:
				walk(c)
			}
		}
	}
	walk(n)
	return b.String()
}

// AppendParagraph adds a single-run paragraph to the end of the body, before
// the trailing section properties, and returns its index.
func (d *Document) AppendParagraph(text string) int {
	p := wElem("p")
	xmlquery.AddChild(p, textRun(text))

	if last := lastElement(d.body); last != nil && last.Prefix == "w" && last.Data == "sectPr" {
		insertBefore(last, p)
	} else {
		xmlquery.AddChild(d.body, p)
	}
	d.paras = append(d.paras, p)
	return len(d.paras) - 1
}

func textRun(text string) *xmlquery.Node {
	r := wElem("r")
	t := wElem("t", "xml:space", "preserve")
	xmlquery.AddChild(t, &xmlquery.Node{Type: xmlquery.TextNode, Data: text})
	xmlquery.AddChild(r, t)
	return r
}

func wElem(name string, attrs ...string) *xmlquery.Node {
	n := &xmlquery.Node{Type: xmlquery.ElementNode, Data: name, Prefix: "w", NamespaceURI: wordNS}
	for i := 0; i+1 < len(attrs); i += 2 {
		xmlquery.AddAttr(n, attrs[i], attrs[i+1])
	}
	return n
}

func lastElement(n *xmlquery.Node) *xmlquery.Node {
	for c := n.LastChild; c != nil; c = c.PrevSibling {
		if c.Type == xmlquery.ElementNode {
			return c
		}
	}
	return nil
}

// insertBefore links n into ref's parent immediately before ref.
func insertBefore(ref, n *xmlquery.Node) {
	n.Parent = ref.Parent
	n.NextSibling = ref
	n.PrevSibling = ref.PrevSibling
	if ref.PrevSibling != nil {
		ref.PrevSibling.NextSibling = n
	} else if ref.Parent != nil {
		ref.Parent.FirstChild = n
	}
	ref.PrevSibling = n
}

// insertAfter links n into ref's parent immediately after ref.
func insertAfter(ref, n *xmlquery.Node) {
	n.Parent = ref.Parent
	n.PrevSibling = ref
	n.NextSibling = ref.NextSibling
	if ref.NextSibling != nil {
		ref.NextSibling.PrevSibling = n
	} else if ref.Parent != nil {
		ref.Parent.LastChild = n
	}
	ref.NextSibling = n
}

func attrValue(n *xmlquery.Node, local string) string {
	for _, a := range n.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func (d *Document) findPart(name string) *part {
	for _, p := range d.parts {
		if p.name == name {
			return p
		}
	}
	return nil
}
