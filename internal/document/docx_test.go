package document

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead(t *testing.T) {
	t.Run("not a zip archive", func(t *testing.T) {
		_, err := Read("broken.docx", []byte("plain text"))
		assert.ErrorIs(t, err, ErrInvalidDocument)
	})

	t.Run("archive without main part", func(t *testing.T) {
		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)
		w, err := zw.Create("word/styles.xml")
		require.NoError(t, err)
		_, err = w.Write([]byte("<w:styles/>"))
		require.NoError(t, err)
		require.NoError(t, zw.Close())

		_, err = Read("empty.docx", buf.Bytes())
		assert.ErrorIs(t, err, ErrInvalidDocument)
	})

	t.Run("malformed main part", func(t *testing.T) {
		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)
		w, err := zw.Create(mainPart)
		require.NoError(t, err)
		_, err = w.Write([]byte("<w:document attr=>"))
		require.NoError(t, err)
		require.NoError(t, zw.Close())

		_, err = Read("bad.docx", buf.Bytes())
		assert.ErrorIs(t, err, ErrInvalidDocument)
	})
}

func TestBytesKeepsEntries(t *testing.T) {
	src := buildDocx(t, para(run("x")), map[string]string{"word/media/logo.png": "\x89PNG"})
	doc, err := Read("tpl.docx", src)
	require.NoError(t, err)

	data, err := doc.Bytes()
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
		assert.True(t, f.Modified.Equal(fixtureTime), f.Name)
	}
	assert.Equal(t, []string{"[Content_Types].xml", "word/document.xml", "word/media/logo.png"}, names)
}

func TestSaveAndOpen(t *testing.T) {
	doc, err := Read("tpl.docx", buildDocx(t, para(run("[TOTAL]")), nil))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out", "Facture N° 20250001.docx")
	require.NoError(t, doc.Save(path))

	reopened, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, "Facture N° 20250001.docx", reopened.Name())

	_, err = Open(filepath.Join(t.TempDir(), "missing.docx"))
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestTemplateSet(t *testing.T) {
	dir := t.TempDir()
	set := NewTemplateSet(dir, "")

	t.Run("select by item count", func(t *testing.T) {
		path, err := set.Select(3)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "InvoiceModel_CH95_DefaultProducts_3.docx"), path)
	})

	t.Run("item count out of range", func(t *testing.T) {
		for _, n := range []int{0, 6, -1} {
			_, err := set.Select(n)
			assert.ErrorIs(t, err, ErrUnsupportedItemCount)
		}
	})

	t.Run("check lists missing templates", func(t *testing.T) {
		assert.ErrorIs(t, set.Check(), ErrTemplateNotFound)

		for n := 1; n <= MaxTemplateItems; n++ {
			path, _ := set.Select(n)
			require.NoError(t, os.WriteFile(path, buildDocx(t, para(run("[TOTAL]")), nil), 0644))
		}
		assert.NoError(t, set.Check())
	})

	t.Run("load caches the parsed template", func(t *testing.T) {
		first, err := set.Load(2)
		require.NoError(t, err)

		path, _ := set.Select(2)
		require.NoError(t, os.Remove(path))

		second, err := set.Load(2)
		require.NoError(t, err)
		assert.Same(t, first, second)
	})
}

func TestReplacements(t *testing.T) {
	r := NewReplacements()
	r.Set("[B]", "1")
	r.Set("[A]", "2")
	r.Set("[B]", "3")

	assert.Equal(t, []string{"[B]", "[A]"}, r.Tokens())
	assert.Equal(t, 2, r.Len())
	v, ok := r.Get("[B]")
	assert.True(t, ok)
	assert.Equal(t, "3", v)
}
