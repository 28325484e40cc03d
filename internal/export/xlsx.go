package export

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the URLs.
const SheetName = "URLs"

// ErrTooManyRows is returned when the URLs do not fit one worksheet.
var ErrTooManyRows = errors.New("export: too many URLs for one worksheet")

const urlColumnWidth = 80

// WriteXLSX writes a workbook with a single URLs sheet: the header in A1 and
// one URL per row below it.
func WriteXLSX(w io.Writer, urls []string) error {
	if len(urls)+1 > excelize.TotalRows {
		return fmt.Errorf("%w: %d", ErrTooManyRows, len(urls))
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetColWidth(SheetName, "A", "A", urlColumnWidth); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	rows := append([]string{Header}, urls...)
	for i, v := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("cell name for row %d: %w", i+1, err)
		}
		if err := f.SetCellStr(SheetName, cell, v); err != nil {
			return fmt.Errorf("set cell %s: %w", cell, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
