package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productCatalogJSON = `{
	"10": {"name": "Bâche 3m", "price": 750},
	"2":  {"name": "Logo programme", "price": 150.5},
	"1":  {"name": "Mention site web", "price": 100}
}`

func TestParse(t *testing.T) {
	t.Run("orders entries by numeric key", func(t *testing.T) {
		c, err := Parse([]byte(productCatalogJSON))
		require.NoError(t, err)

		assert.Equal(t, []string{"Mention site web", "Logo programme", "Bâche 3m"}, c.Names())
		assert.Equal(t, 3, c.Len())
		assert.Equal(t, "1", c.Entries()[0].ID)
	})

	t.Run("keeps exact decimal prices", func(t *testing.T) {
		c, err := Parse([]byte(productCatalogJSON))
		require.NoError(t, err)

		e, ok := c.Lookup("Logo programme")
		require.True(t, ok)
		assert.True(t, e.UnitPrice.Equal(decimal.RequireFromString("150.5")))
	})

	t.Run("rejects negative prices", func(t *testing.T) {
		_, err := Parse([]byte(`{"1": {"name": "Rabais", "price": -5}}`))
		assert.ErrorIs(t, err, ErrNegativePrice)
	})

	t.Run("rejects duplicate display names", func(t *testing.T) {
		_, err := Parse([]byte(`{"1": {"name": "A", "price": 1}, "2": {"name": " A ", "price": 2}}`))
		assert.ErrorIs(t, err, ErrDuplicateName)
	})

	t.Run("rejects empty catalog", func(t *testing.T) {
		_, err := Parse([]byte(`{}`))
		assert.ErrorIs(t, err, ErrEmptyCatalog)
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		_, err := Parse([]byte(`{"1": `))
		assert.Error(t, err)
	})
}

func TestLookup(t *testing.T) {
	c, err := Parse([]byte(productCatalogJSON))
	require.NoError(t, err)

	_, ok := c.Lookup("Inconnu")
	assert.False(t, ok)

	e, ok := c.Lookup("  Bâche 3m ")
	assert.True(t, ok)
	assert.Equal(t, "10", e.ID)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sports_catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"1": {"name": "Pétanque", "price": 40}}`), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Pétanque"}, c.Names())

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
