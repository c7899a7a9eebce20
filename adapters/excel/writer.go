package excel

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/xuri/excelize/v2"

	"fastfisher/internal/errors"
)

// WriteResults writes batch results to path as CSV or, for .xlsx, to Sheet1 of
// a new workbook.
func WriteResults(path string, results []BatchResult) error {
	switch fileTypeOf(path) {
	case "csv":
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrap(err, "failed to create CSV file")
		}
		if err := WriteCSV(f, results); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	case "xlsx":
		return writeExcel(path, results)
	default:
		return errors.UnsupportedFormat(path)
	}
}

// WriteCSV writes a header and one row per result. P-values use the shortest
// representation that round-trips.
func WriteCSV(w io.Writer, results []BatchResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(resultHeader); err != nil {
		return errors.Wrap(err, "failed to write CSV header")
	}
	for _, r := range results {
		if err := cw.Write(resultRecord(r)); err != nil {
			return errors.Wrapf(err, "failed to write row for %s", r.Table)
		}
	}
	cw.Flush()
	return cw.Error()
}

func resultRecord(r BatchResult) []string {
	return []string{
		r.Label,
		strconv.Itoa(r.Table.A),
		strconv.Itoa(r.Table.B),
		strconv.Itoa(r.Table.C),
		strconv.Itoa(r.Table.D),
		formatFloat(r.OddsRatio),
		formatFloat(r.PValues.Less),
		formatFloat(r.PValues.Greater),
		formatFloat(r.PValues.TwoSided),
	}
}

func formatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	default:
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
}

func writeExcel(path string, results []BatchResult) error {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, len(resultHeader))
	for i, h := range resultHeader {
		header[i] = h
	}
	if err := f.SetSheetRow("Sheet1", "A1", &header); err != nil {
		return errors.Wrap(err, "failed to write header")
	}

	for i, r := range results {
		record := resultRecord(r)
		row := make([]interface{}, len(record))
		row[0] = record[0]
		for j := 1; j < len(record); j++ {
			// numbers stay numeric in the sheet; nan and inf stay text
			if v, err := strconv.ParseFloat(record[j], 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
				row[j] = v
			} else {
				row[j] = record[j]
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Wrap(err, "failed to address row")
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			return errors.Wrapf(err, "failed to write row %d", i+2)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.Wrap(err, "failed to save workbook")
	}
	return nil
}
