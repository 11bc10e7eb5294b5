// Package document fills placeholder tokens in .docx invoice templates.
package document

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/beevik/etree"
)

const mainPart = "word/document.xml"

var textPart = regexp.MustCompile(`^word/(document|header[0-9]*|footer[0-9]*)\.xml$`)

type part struct {
	name     string
	method   uint16
	modified time.Time
	data     []byte
	tree     *etree.Document // nil for parts that are never rendered
	dirty    bool
}

// Document is an in-memory .docx package
type Document struct {
	name  string
	parts []*part
}

// Open reads a .docx from disk
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Read(filepath.Base(path), data)
}

// Read parses a .docx held in memory. name is used in error messages.
func Read(name string, data []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDocument, name, err)
	}

	doc := &Document{name: name}
	hasMain := false
	for _, f := range zr.File {
		content, err := readEntry(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: entry %s: %v", ErrInvalidDocument, name, f.Name, err)
		}

		p := &part{name: f.Name, method: f.Method, modified: f.Modified, data: content}
		if textPart.MatchString(f.Name) {
			tree := etree.NewDocument()
			if err := tree.ReadFromBytes(content); err != nil {
				return nil, fmt.Errorf("%w: %s: entry %s: %v", ErrInvalidDocument, name, f.Name, err)
			}
			p.tree = tree
		}
		if f.Name == mainPart {
			hasMain = true
		}
		doc.parts = append(doc.parts, p)
	}

	if !hasMain {
		return nil, fmt.Errorf("%w: %s has no %s", ErrInvalidDocument, name, mainPart)
	}
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

// Name returns the file name the document was read from
func (d *Document) Name() string {
	return d.name
}

func (d *Document) clone() *Document {
	c := &Document{name: d.name, parts: make([]*part, len(d.parts))}
	for i, p := range d.parts {
		cp := *p
		if p.tree != nil {
			cp.tree = p.tree.Copy()
		}
		c.parts[i] = &cp
	}
	return c
}

// Bytes serialises the package. Entry order, compression method and
// timestamps are kept, so identical content always yields identical bytes.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, p := range d.parts {
		data := p.data
		if p.dirty {
			out, err := p.tree.WriteToBytes()
			if err != nil {
				return nil, fmt.Errorf("failed to serialise %s: %w", p.name, err)
			}
			data = out
		}

		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     p.name,
			Method:   p.method,
			Modified: p.modified,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to add %s: %w", p.name, err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", p.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalise archive: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes the package to path, creating the parent directory
func (d *Document) Save(path string) error {
	data, err := d.Bytes()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
