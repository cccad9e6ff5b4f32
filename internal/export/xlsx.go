package export

import (
	"io"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Records"

// WriteXLSX writes rows into a single-sheet workbook with the CSV columns.
func WriteXLSX(w io.Writer, rows []Row) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	header := make([]any, 0, len(Columns))
	for _, col := range Columns {
		header = append(header, col)
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := row.Values()
		cells := make([]any, 0, len(values))
		for _, v := range values {
			cells = append(cells, v)
		}
		if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
			return err
		}
	}

	_, err := f.WriteTo(w)
	return err
}
