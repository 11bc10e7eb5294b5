package registration

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/gdnc/invoice-automation/internal/catalog"
	"github.com/gdnc/invoice-automation/internal/order"
)

var testSheets = []Sheet{
	{Name: "Inscription Volley mixte", Sport: "Volley Mixte"},
	{Name: "Inscription Pétanque", Sport: "Pétanque"},
}

func header() []interface{} {
	h := make([]interface{}, len(RequiredColumns))
	for i, c := range RequiredColumns {
		h[i] = c
	}
	return h
}

func registration(id, name, email, phone, address, team, total string) []interface{} {
	return []interface{}{id, "2025-06-01 10:00:00", name, email, phone, address, team, "1", total}
}

func writeRegistrations(t *testing.T, sheets map[string][][]interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "inscriptions.xlsx")

	f := excelize.NewFile()
	defer f.Close()
	for name, rows := range sheets {
		_, err := f.NewSheet(name)
		require.NoError(t, err)
		for i := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &rows[i]))
		}
	}
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReaderLoad(t *testing.T) {
	r := NewReader(zap.NewNop())

	t.Run("reads sheets in configured order", func(t *testing.T) {
		path := writeRegistrations(t, map[string][][]interface{}{
			"Inscription Volley mixte": {header(),
				registration("11", "Jean Dupont", "jd@example.ch", "0791234567", "Chemin Vert 1, Yverdon, 1400", "Les Smashs", "60"),
			},
			"Inscription Pétanque": {header(),
				registration("12", "Jean Dupont", "jd@example.ch", "0791234567", "Chemin Vert 1, Yverdon, 1400", "Les Boules", "40"),
				{},
				registration("13", "Marie Blanc", "mb@example.ch", "", "Rue Haute 4, 2000, Neuchâtel", "Carreau", "40"),
			},
		})

		rows, err := r.Load(path, testSheets)
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, "Volley Mixte", rows[0].Sport)
		assert.Equal(t, "Les Smashs", rows[0].Team)
		assert.Equal(t, "Pétanque", rows[1].Sport)
		assert.Equal(t, 4, rows[2].Line)
		assert.Equal(t, "mb@example.ch", rows[2].Email)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := r.Load(filepath.Join(t.TempDir(), "absent.xlsx"), testSheets)
		assert.ErrorIs(t, err, ErrFileNotFound)
	})

	t.Run("missing sheet", func(t *testing.T) {
		path := writeRegistrations(t, map[string][][]interface{}{"Inscription Volley mixte": {header()}})
		_, err := r.Load(path, testSheets)
		assert.ErrorIs(t, err, ErrSheetNotFound)
	})

	t.Run("missing column", func(t *testing.T) {
		h := header()[:8]
		path := writeRegistrations(t, map[string][][]interface{}{
			"Inscription Volley mixte": {h},
			"Inscription Pétanque":     {header()},
		})
		_, err := r.Load(path, testSheets)
		assert.ErrorIs(t, err, ErrMissingColumn)
		assert.Contains(t, err.Error(), ColTotal)
	})

	t.Run("no registrations", func(t *testing.T) {
		path := writeRegistrations(t, map[string][][]interface{}{
			"Inscription Volley mixte": {header()},
			"Inscription Pétanque":     {header()},
		})
		_, err := r.Load(path, testSheets)
		assert.ErrorIs(t, err, ErrNoRegistrations)
	})
}

func TestSanitize(t *testing.T) {
	rows := []Row{
		{Sport: "Volley Mixte", Name: "Jean Dupont", Email: "jd@example.ch", Phone: "0791234567", Address: "Chemin Vert 1, Yverdon, 1400", Team: "Les Smashs", Total: "60"},
		{Sport: "Pétanque", Name: "Marie Blanc", Email: "mb@example.ch", Phone: "nan", Address: "Rue Haute 4, 2000, Neuchâtel", Team: "Carreau", Total: "40"},
		{Sport: "Volley Mixte", Name: "J. Dupont", Email: "JD@example.ch ", Phone: "", Address: "ailleurs", Team: "Les Blocs", Total: "60"},
		{Sport: "Pétanque", Name: "Jean Dupont", Email: "jd@example.ch", Team: "Les Boules", Total: "CHF 40.-"},
	}

	regs, err := Sanitize(rows)
	require.NoError(t, err)
	require.Len(t, regs, 2)

	jean := regs[0]
	assert.Equal(t, "Jean Dupont", jean.Payer.LastName)
	assert.Equal(t, "Chemin Vert 1", jean.Payer.Address)
	assert.Equal(t, "Yverdon", jean.Payer.City)
	assert.Equal(t, "1400", jean.Payer.Postcode)
	assert.Equal(t, "+41791234567", jean.Payer.Phone)
	assert.Equal(t, []SportTeams{
		{Sport: "Volley Mixte", Teams: []string{"Les Smashs", "Les Blocs"}},
		{Sport: "Pétanque", Teams: []string{"Les Boules"}},
	}, jean.Sports)
	assert.True(t, jean.DeclaredTotal.Equal(decimal.NewFromInt(160)))

	marie := regs[1]
	assert.Equal(t, "Neuchâtel", marie.Payer.City, "city and postcode swapped")
	assert.Equal(t, "2000", marie.Payer.Postcode)
	assert.Empty(t, marie.Payer.Phone)
}

func TestSanitizeAddressErrors(t *testing.T) {
	for _, addr := range []string{"Rue Haute 4, Neuchâtel, Boudry", "Rue Haute 4, 2000, 2017", "Rue Haute 4 2000 Neuchâtel"} {
		t.Run(addr, func(t *testing.T) {
			_, err := Sanitize([]Row{{Email: "a@example.ch", Address: addr, Sport: "Pétanque", Team: "x"}})
			assert.ErrorIs(t, err, ErrAddressFormat)
		})
	}
}

func TestRegistrantSelections(t *testing.T) {
	cat, err := catalog.New([]catalog.Entry{
		{ID: "1", DisplayName: "Volley Mixte", UnitPrice: decimal.NewFromInt(60)},
		{ID: "2", DisplayName: "Pétanque", UnitPrice: decimal.NewFromInt(40)},
	})
	require.NoError(t, err)

	reg := Registrant{Sports: []SportTeams{
		{Sport: "Volley Mixte", Teams: []string{"Les Smashs", "Les Blocs"}},
		{Sport: "Pétanque", Teams: []string{"Les Boules"}},
	}}

	assert.Equal(t, []string{
		"Inscriptions Volley Mixte (équipes: Les Smashs, Les Blocs)",
		"Inscription Pétanque (équipe: Les Boules)",
	}, reg.Descriptions())

	o, err := order.Build(cat, reg.Selections())
	require.NoError(t, err)
	q := o.Quote()
	assert.Equal(t, "160.00", q.Total)
	assert.Equal(t, 2, q.Lines[0].Quantity)
	assert.Equal(t, "120.00", q.Lines[0].LineTotal)
	assert.Equal(t, "Inscription Pétanque (équipe: Les Boules)", q.Lines[1].Description)

	unknown := Registrant{Sports: []SportTeams{{Sport: "Tir à la Corde", Teams: []string{"Costauds"}}}}
	_, err = order.Build(cat, unknown.Selections())
	assert.ErrorIs(t, err, order.ErrUnknownProduct)
}
