package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrLedgerIO       = errors.New("ledger I/O failure")
	ErrSchemaMismatch = errors.New("header does not match the ledger columns")
	ErrSheetNotFound  = errors.New("sheet not found")
)

// IOError reports a read, parse or write failure on a workbook
type IOError struct {
	Op   string // open, read, parse, write, replace
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("ledger %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

func (e *IOError) Is(target error) bool {
	return target == ErrLedgerIO
}

func ioErr(op, path string, err error) error {
	return &IOError{Op: op, Path: path, Err: err}
}
