package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/antchfx/xmlquery"
)

// Save writes the document as a new package at path, creating the parent
// directory and overwriting any existing file. The source file is not touched.
func (d *Document) Save(path string) error {
	data, err := d.Bytes()
	if err != nil {
		return &SaveError{Path: path, Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &SaveError{Path: path, Err: err}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &SaveError{Path: path, Err: err}
	}
	return nil
}

// Bytes serializes the package. Parts keep their original order; a comments
// part created during review is appended at the end.
func (d *Document) Bytes() ([]byte, error) {
	replaced := map[string][]byte{
		documentPart: serialize(d.root),
	}
	if d.comments != nil {
		replaced[documentRelsPart] = serialize(d.comments.rels)
		replaced[contentTypesPart] = serialize(d.comments.types)
		replaced[commentsPart] = serialize(d.comments.comments)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	written := make(map[string]bool, len(d.parts)+1)
	for _, p := range d.parts {
		data := p.data
		if r, ok := replaced[p.name]; ok {
			data = r
		}
		if err := writeEntry(zw, p.name, p.method, data); err != nil {
			return nil, err
		}
		written[p.name] = true
	}
	if r, ok := replaced[commentsPart]; ok && !written[commentsPart] {
		if err := writeEntry(zw, commentsPart, zip.Deflate, r); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close package: %w", err)
	}
	return buf.Bytes(), nil
}

func writeEntry(zw *zip.Writer, name string, method uint16, data []byte) error {
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   method,
		Modified: time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func serialize(root *xmlquery.Node) []byte {
	return []byte(root.OutputXML(true))
}
