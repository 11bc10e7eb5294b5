// Package ledger persists finalized invoices to the invoice workbook and
// the numbering journal.
package ledger

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/gdnc/invoice-automation/internal/models"
	"github.com/gdnc/invoice-automation/internal/numbering"
)

// Columns is the fixed ledger header
var Columns = []string{
	"Date", "Invoice Number", "Company", "Title", "First Name", "Last Name",
	"Address", "Postcode", "City", "Phone", "Email",
	"Default Product Dict", "Custom Product Dict", "Total Price [CHF]", "Comment",
}

const (
	colInvoiceNumber = 1
	colTotal         = 13
	tableName        = "Invoices"
	tableStyle       = "TableStyleMedium2"
)

// Ledger is the append-only invoice workbook. Every append reads the whole
// sheet, adds one row and rewrites the file.
type Ledger struct {
	path    string
	sheet   string
	logger  *zap.Logger
	replace func(src, dst string) error
}

// New creates a ledger bound to path. An empty sheet name uses "Sheet1".
func New(path, sheet string, logger *zap.Logger) *Ledger {
	if sheet == "" {
		sheet = defaultSheet
	}
	return &Ledger{path: path, sheet: sheet, logger: logger, replace: os.Rename}
}

// Path returns the workbook path
func (l *Ledger) Path() string {
	return l.path
}

// InvoiceNumbers returns the recorded invoice numbers in row order.
// A ledger that does not exist yet has none.
func (l *Ledger) InvoiceNumbers() ([]string, error) {
	rows, err := l.readRows()
	if err != nil {
		return nil, err
	}
	numbers := make([]string, len(rows))
	for i, row := range rows {
		numbers[i] = row[colInvoiceNumber]
	}
	return numbers, nil
}

// Records returns every ledger row in insertion order
func (l *Ledger) Records() ([]models.InvoiceRecord, error) {
	rows, err := l.readRows()
	if err != nil {
		return nil, err
	}
	records := make([]models.InvoiceRecord, len(rows))
	for i, row := range rows {
		records[i] = fromRow(row)
	}
	return records, nil
}

// Append adds one record. The existing sheet is read in full first and any
// read or parse failure aborts before anything is written. The number must be
// new and follow the year's highest number.
func (l *Ledger) Append(rec models.InvoiceRecord) error {
	rows, err := l.readRows()
	if err != nil {
		return err
	}

	candidate, err := numbering.Parse(rec.InvoiceNumber)
	if err != nil {
		return fmt.Errorf("ledger append: %w", err)
	}
	existing := make([]string, len(rows))
	for i, row := range rows {
		existing[i] = row[colInvoiceNumber]
	}
	if err := numbering.CheckCandidate(existing, candidate); err != nil {
		return fmt.Errorf("ledger append: %w", err)
	}

	rows = append(rows, toRow(rec))

	f, err := l.build(rows)
	if err != nil {
		return ioErr("write", l.path, err)
	}
	defer f.Close()

	if err := writeAtomic(f, l.path, l.replace); err != nil {
		return err
	}

	l.logger.Info("Ledger updated",
		zap.String("path", l.path),
		zap.String("invoice_number", rec.InvoiceNumber),
		zap.Int("rows", len(rows)))
	return nil
}

// Verify reports duplicate, malformed and out-of-order invoice numbers
func (l *Ledger) Verify() ([]numbering.Issue, error) {
	numbers, err := l.InvoiceNumbers()
	if err != nil {
		return nil, err
	}
	return numbering.Verify(numbers), nil
}

// readRows returns the data rows padded to the full column count
func (l *Ledger) readRows() ([][]string, error) {
	ok, err := exists(l.path)
	if err != nil {
		return nil, ioErr("open", l.path, err)
	}
	if !ok {
		return nil, nil
	}

	f, err := excelize.OpenFile(l.path)
	if err != nil {
		return nil, ioErr("open", l.path, err)
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex(l.sheet); err != nil || idx < 0 {
		return nil, ioErr("read", l.path, fmt.Errorf("%w: %s", ErrSheetNotFound, l.sheet))
	}

	raw, err := f.GetRows(l.sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, ioErr("read", l.path, err)
	}
	if len(raw) == 0 {
		return nil, ioErr("parse", l.path, fmt.Errorf("%w: sheet %s is empty", ErrSchemaMismatch, l.sheet))
	}
	if err := checkHeader(raw[0]); err != nil {
		return nil, ioErr("parse", l.path, err)
	}

	var rows [][]string
	for _, r := range raw[1:] {
		if blank(r) {
			continue
		}
		if len(r) > len(Columns) {
			return nil, ioErr("parse", l.path, fmt.Errorf("row has %d cells, ledger has %d columns", len(r), len(Columns)))
		}
		row := make([]string, len(Columns))
		copy(row, r)
		rows = append(rows, row)
	}
	return rows, nil
}

func (l *Ledger) build(rows [][]string) (*excelize.File, error) {
	f, err := newWorkbook(l.sheet)
	if err != nil {
		return nil, err
	}

	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(l.sheet, "A1", &header); err != nil {
		f.Close()
		return nil, err
	}

	for i, row := range rows {
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if n, err := strconv.ParseFloat(strings.TrimSpace(row[colTotal]), 64); err == nil {
			values[colTotal] = n
		}
		if err := f.SetSheetRow(l.sheet, cellName(1, i+2), &values); err != nil {
			f.Close()
			return nil, err
		}
	}

	showStripes := true
	if err := f.AddTable(l.sheet, &excelize.Table{
		Range:          "A1:" + cellName(len(Columns), len(rows)+1),
		Name:           tableName,
		StyleName:      tableStyle,
		ShowRowStripes: &showStripes,
	}); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetColWidth(l.sheet, "A", cellCol(len(Columns)), 18); err != nil {
		f.Close()
		return nil, err
	}
	amount, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetColStyle(l.sheet, cellCol(colTotal+1), amount); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func checkHeader(header []string) error {
	if len(header) < len(Columns) {
		return fmt.Errorf("%w: got %v", ErrSchemaMismatch, header)
	}
	for i, c := range Columns {
		if strings.TrimSpace(header[i]) != c {
			return fmt.Errorf("%w: column %d is %q, want %q", ErrSchemaMismatch, i+1, header[i], c)
		}
	}
	for _, extra := range header[len(Columns):] {
		if strings.TrimSpace(extra) != "" {
			return fmt.Errorf("%w: unexpected column %q", ErrSchemaMismatch, extra)
		}
	}
	return nil
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func cellCol(col int) string {
	name, _ := excelize.ColumnNumberToName(col)
	return name
}

func toRow(rec models.InvoiceRecord) []string {
	p := rec.Payer
	return []string{
		rec.Date, rec.InvoiceNumber, p.Company, p.Title, p.FirstName, p.LastName,
		p.Address, p.Postcode, p.City, p.Phone, p.Email,
		rec.DefaultProduct, rec.CustomProduct, rec.Total, rec.Comment,
	}
}

func fromRow(row []string) models.InvoiceRecord {
	return models.InvoiceRecord{
		Date:          row[0],
		InvoiceNumber: row[1],
		Payer: models.Payer{
			Company:   row[2],
			Title:     row[3],
			FirstName: row[4],
			LastName:  row[5],
			Address:   row[6],
			Postcode:  row[7],
			City:      row[8],
			Phone:     row[9],
			Email:     row[10],
		},
		DefaultProduct: row[11],
		CustomProduct:  row[12],
		Total:          row[13],
		Comment:        row[14],
	}
}
