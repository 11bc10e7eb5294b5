// Package registration reads sports registrations exported from the
// website forms and groups them into one invoiceable registrant per e-mail.
package registration

import (
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Required column headers of every registration sheet
const (
	ColEntryID   = "Entry ID"
	ColCreated   = "Date Created"
	ColName      = "Nom complet"
	ColEmail     = "E-mail"
	ColPhone     = "Téléphone"
	ColAddress   = "Adresse"
	ColTeam      = "Nom d'équipe"
	ColTeamCount = "Nombre d'équipe(s)"
	ColTotal     = "Total"
)

// RequiredColumns lists the headers checked on every sheet
var RequiredColumns = []string{
	ColEntryID, ColCreated, ColName, ColEmail, ColPhone, ColAddress, ColTeam, ColTeamCount, ColTotal,
}

// Sheet maps a workbook sheet to the sport it registers for
type Sheet struct {
	Name  string `mapstructure:"name"`
	Sport string `mapstructure:"sport"`
}

// Row is one registered team
type Row struct {
	Sheet     string
	Line      int // 1-based row in the sheet
	Sport     string
	EntryID   string
	Created   string
	Name      string
	Email     string
	Phone     string
	Address   string
	Team      string
	TeamCount string
	Total     string
}

// Reader loads registration workbooks
type Reader struct {
	logger *zap.Logger
}

// NewReader creates a registration reader
func NewReader(logger *zap.Logger) *Reader {
	return &Reader{logger: logger}
}

// Load reads every configured sheet in order. A missing file, sheet or
// column, or a workbook without any registration, is an error.
func (r *Reader) Load(path string, sheets []Sheet) ([]Row, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open registrations %s: %w", path, err)
	}
	defer f.Close()

	var rows []Row
	for _, sheet := range sheets {
		sheetRows, err := r.readSheet(f, sheet)
		if err != nil {
			return nil, err
		}
		r.logger.Info("Registration sheet read",
			zap.String("sheet", sheet.Name),
			zap.String("sport", sheet.Sport),
			zap.Int("teams", len(sheetRows)))
		rows = append(rows, sheetRows...)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoRegistrations, path)
	}
	return rows, nil
}

func (r *Reader) readSheet(f *excelize.File, sheet Sheet) ([]Row, error) {
	if idx, err := f.GetSheetIndex(sheet.Name); err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, sheet.Name)
	}

	raw, err := f.GetRows(sheet.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet.Name, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: sheet %s has no header", ErrMissingColumn, sheet.Name)
	}

	index := make(map[string]int, len(raw[0]))
	for i, h := range raw[0] {
		index[strings.TrimSpace(h)] = i
	}
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %q in sheet %s", ErrMissingColumn, col, sheet.Name)
		}
	}

	cell := func(row []string, col string) string {
		i := index[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var rows []Row
	for i, row := range raw[1:] {
		if cell(row, ColEmail) == "" && cell(row, ColName) == "" {
			continue
		}
		rows = append(rows, Row{
			Sheet:     sheet.Name,
			Line:      i + 2,
			Sport:     sheet.Sport,
			EntryID:   cell(row, ColEntryID),
			Created:   cell(row, ColCreated),
			Name:      cell(row, ColName),
			Email:     cell(row, ColEmail),
			Phone:     cell(row, ColPhone),
			Address:   cell(row, ColAddress),
			Team:      cell(row, ColTeam),
			TeamCount: cell(row, ColTeamCount),
			Total:     cell(row, ColTotal),
		})
	}
	return rows, nil
}
