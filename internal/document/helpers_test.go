package document

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/require"
)

const contentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="xml" ContentType="application/xml"/></Types>`

var fixtureTime = time.Date(2025, time.February, 3, 9, 30, 0, 0, time.UTC)

// buildDocx assembles a minimal package around the given body XML
func buildDocx(t *testing.T, body string, extra map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	add := func(name, content string) {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: fixtureTime})
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}

	add("[Content_Types].xml", contentTypes)
	add("word/document.xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`+
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`+
		body+`</w:body></w:document>`)
	for name, content := range extra {
		add(name, content)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func para(runs ...string) string {
	return "<w:p><w:pPr><w:jc w:val=\"left\"/></w:pPr>" + strings.Join(runs, "") + "</w:p>"
}

func run(text string) string {
	return `<w:r><w:rPr><w:sz w:val="22"/></w:rPr><w:t xml:space="preserve">` + text + `</w:t></w:r>`
}

func boldRun(text string) string {
	return `<w:r><w:rPr><w:b/><w:sz w:val="22"/></w:rPr><w:t>` + text + `</w:t></w:r>`
}

func table(cells ...string) string {
	var b strings.Builder
	b.WriteString("<w:tbl><w:tr>")
	for _, c := range cells {
		b.WriteString("<w:tc>" + c + "</w:tc>")
	}
	b.WriteString("</w:tr></w:tbl>")
	return b.String()
}

type paragraphInfo struct {
	Text   string
	InCell bool
	Bold   bool // every run is bold
	Fonts  []string
}

// inspect lists the paragraphs of the main part of a serialised document
func inspect(t *testing.T, data []byte) []paragraphInfo {
	t.Helper()

	doc, err := Read("inspect.docx", data)
	require.NoError(t, err)

	var main *etree.Document
	for _, p := range doc.parts {
		if p.name == mainPart {
			main = p.tree
		}
	}
	require.NotNil(t, main)

	var out []paragraphInfo
	walkParagraphs(main.Root(), false, func(p *etree.Element, inCell bool) {
		info := paragraphInfo{Text: paragraphText(p), InCell: inCell, Bold: true}
		nodes := textNodes(p)
		if len(nodes) == 0 {
			info.Bold = false
		}
		for _, n := range nodes {
			r := n.Parent()
			if !isBold(r) {
				info.Bold = false
			}
			if rPr := wordChild(r, "rPr"); rPr != nil {
				if f := wordChild(rPr, "rFonts"); f != nil {
					info.Fonts = append(info.Fonts, f.SelectAttrValue("w:ascii", ""))
				}
			}
		}
		out = append(out, info)
	})
	return out
}

func texts(infos []paragraphInfo) []string {
	out := make([]string, len(infos))
	for i, p := range infos {
		out[i] = p.Text
	}
	return out
}

// documentPart returns the serialised main part of a document
func documentPart(t *testing.T, data []byte) string {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name != mainPart {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		var buf bytes.Buffer
		_, err = buf.ReadFrom(rc)
		require.NoError(t, err)
		return buf.String()
	}
	t.Fatalf("%s not found", mainPart)
	return ""
}
