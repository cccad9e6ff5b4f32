package export

import (
	"io"

	"github.com/gocarina/gocsv"
)

// utf8BOM lets spreadsheet tools detect the encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes rows as UTF-8 CSV with a leading byte order mark. Cells
// containing commas, quotes or newlines are quoted with inner quotes doubled.
func WriteCSV(w io.Writer, rows []Row) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}
	return gocsv.Marshal(rows, w)
}
