package ledger

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/gdnc/invoice-automation/internal/models"
)

// JournalColumns is the header written when the journal is created
var JournalColumns = []string{"Date", "N° facture", "Client", "Montant [CHF]", "Canal"}

// JournalDateLayout is the date format of the journal
const JournalDateLayout = "02/01/2006"

// Journal is the operator-facing numbering workbook. It is written after
// every invoice and never read back for numbering: the ledger is the
// source of truth.
type Journal struct {
	path    string
	sheet   string
	logger  *zap.Logger
	replace func(src, dst string) error
}

// NewJournal creates a journal bound to path and sheet
func NewJournal(path, sheet string, logger *zap.Logger) *Journal {
	if sheet == "" {
		sheet = "Facturation"
	}
	return &Journal{path: path, sheet: sheet, logger: logger, replace: os.Rename}
}

// Append writes entry on the row below the last non-empty cell of column A.
// Other sheets and cells of the workbook are kept.
func (j *Journal) Append(entry models.JournalEntry) error {
	ok, err := exists(j.path)
	if err != nil {
		return ioErr("open", j.path, err)
	}

	var f *excelize.File
	if ok {
		f, err = excelize.OpenFile(j.path)
		if err != nil {
			return ioErr("open", j.path, err)
		}
		if idx, err := f.GetSheetIndex(j.sheet); err != nil || idx < 0 {
			f.Close()
			return ioErr("read", j.path, fmt.Errorf("%w: %s", ErrSheetNotFound, j.sheet))
		}
	} else {
		f, err = newWorkbook(j.sheet)
		if err != nil {
			return ioErr("write", j.path, err)
		}
		header := make([]interface{}, len(JournalColumns))
		for i, c := range JournalColumns {
			header[i] = c
		}
		if err := f.SetSheetRow(j.sheet, "A1", &header); err != nil {
			f.Close()
			return ioErr("write", j.path, err)
		}
	}
	defer f.Close()

	rows, err := f.GetRows(j.sheet)
	if err != nil {
		return ioErr("read", j.path, err)
	}
	last := 1
	for i := 1; i < len(rows); i++ {
		if len(rows[i]) > 0 && strings.TrimSpace(rows[i][0]) != "" {
			last = i + 1
		}
	}

	var total interface{} = entry.Total
	if n, err := strconv.ParseFloat(entry.Total, 64); err == nil {
		total = n
	}
	values := []interface{}{
		entry.Date.Format(JournalDateLayout),
		entry.InvoiceNumber,
		entry.Payer,
		total,
		entry.Channel,
	}
	if err := f.SetSheetRow(j.sheet, cellName(1, last+1), &values); err != nil {
		return ioErr("write", j.path, err)
	}

	if err := writeAtomic(f, j.path, j.replace); err != nil {
		return err
	}

	j.logger.Info("Numbering journal updated",
		zap.String("path", j.path),
		zap.String("invoice_number", entry.InvoiceNumber),
		zap.Int("row", last+1))
	return nil
}
