package ledger

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// defaultSheet is the sheet excelize.NewFile creates
const defaultSheet = "Sheet1"

func exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// newWorkbook creates a workbook whose only sheet is named sheet
func newWorkbook(sheet string) (*excelize.File, error) {
	f := excelize.NewFile()
	if sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

// writeAtomic saves f next to path and renames it over path, so readers
// see either the old workbook or the new one, never a partial file.
func writeAtomic(f *excelize.File, path string, replace func(src, dst string) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return ioErr("write", path, err)
	}

	tmp, err := os.CreateTemp(dir, ".ledger-*.xlsx")
	if err != nil {
		return ioErr("write", path, err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if err := f.Write(tmp); err != nil {
		cleanup()
		return ioErr("write", path, err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return ioErr("write", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return ioErr("write", path, err)
	}
	// CreateTemp opens 0600; the workbook keeps its mode, a new one gets 0644
	if err := os.Chmod(tmpName, fileMode(path)); err != nil {
		os.Remove(tmpName)
		return ioErr("write", path, err)
	}

	if err := replace(tmpName, path); err != nil {
		os.Remove(tmpName)
		return ioErr("replace", path, err)
	}
	return nil
}

func fileMode(path string) os.FileMode {
	if info, err := os.Stat(path); err == nil {
		return info.Mode().Perm()
	}
	return 0644
}

func cellName(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		panic(fmt.Sprintf("invalid cell coordinates %d,%d: %v", col, row, err))
	}
	return name
}
