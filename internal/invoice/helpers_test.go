package invoice

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/gdnc/invoice-automation/internal/catalog"
	"github.com/gdnc/invoice-automation/internal/document"
)

var fixedNow = time.Date(2025, time.March, 10, 14, 0, 0, 0, time.UTC)

func paragraph(text string) string {
	return `<w:p><w:r><w:rPr><w:sz w:val="22"/></w:rPr><w:t xml:space="preserve">` + text + `</w:t></w:r></w:p>`
}

// templateBody lays out the tokens of an invoice with itemCount lines
func templateBody(itemCount int, withTotal bool) string {
	var b strings.Builder
	for _, tok := range []string{
		document.TokenCompany, document.TokenTitle + " " + document.TokenFirstName + " " + document.TokenLastName,
		document.TokenAddress, document.TokenPostcode + " " + document.TokenCity,
		"Facture N° " + document.TokenInvoiceNumber,
		"Date: " + document.TokenIssueDate, "Échéance: " + document.TokenDeadlineDate,
	} {
		b.WriteString(paragraph(tok))
	}
	for i := 1; i <= itemCount; i++ {
		b.WriteString(paragraph(document.ItemDescription(i)))
		b.WriteString(paragraph(document.ItemQuantity(i)))
		b.WriteString(paragraph(document.ItemPrice(i)))
		b.WriteString(paragraph(document.ItemTotal(i)))
	}
	if withTotal {
		b.WriteString(paragraph("Total CHF " + document.TokenTotal))
	}
	return b.String()
}

func docx(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body + `</w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// writeTemplates creates the 1..5 line templates in a fresh directory
func writeTemplates(t *testing.T, withTotal bool) string {
	t.Helper()
	dir := t.TempDir()
	for n := 1; n <= document.MaxTemplateItems; n++ {
		name := fmt.Sprintf(document.DefaultTemplatePattern, n)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), docx(t, templateBody(n, withTotal)), 0644))
	}
	return dir
}

// documentXML returns the main part of a rendered invoice
func documentXML(t *testing.T, path string) string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(data)
	}
	t.Fatalf("%s has no main part", path)
	return ""
}

func testCatalog(t *testing.T, entries map[string]string) *catalog.Catalog {
	t.Helper()
	var list []catalog.Entry
	i := 0
	for name, price := range entries {
		i++
		list = append(list, catalog.Entry{ID: fmt.Sprint(i), DisplayName: name, UnitPrice: decimal.RequireFromString(price)})
	}
	cat, err := catalog.New(list)
	require.NoError(t, err)
	return cat
}
