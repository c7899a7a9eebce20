package excel

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"fastfisher/domain/stats"
	"fastfisher/internal"
	"fastfisher/internal/errors"
)

// DataReader reads contingency tables from Excel (Sheet1) or CSV files. Rows
// hold a, b, c, d and an optional label. A header row naming those columns
// (any order, any case) is honoured; without one the columns are positional.
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	logger   *internal.Logger
}

// NewDataReader creates a reader for path, choosing the format by extension.
func NewDataReader(filePath string) *DataReader {
	return &DataReader{filePath: filePath, fileType: fileTypeOf(filePath), logger: internal.DefaultLogger}
}

// WithLogger replaces the reader's logger.
func (r *DataReader) WithLogger(l *internal.Logger) *DataReader {
	if l != nil {
		r.logger = l
	}
	return r
}

func fileTypeOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return "csv"
	case ".xlsx", ".xlsm":
		return "xlsx"
	default:
		return ""
	}
}

// ReadTables reads every non-blank data row. The first invalid row aborts the
// read with an error naming the row.
func (r *DataReader) ReadTables() ([]LabeledTable, error) {
	rows, err := r.readRows()
	if err != nil {
		return nil, err
	}
	return r.processRows(rows)
}

// ReadColumns returns the named columns of a file with a header row, matched
// case-insensitively. Blank or non-numeric cells become NaN so the series stay
// paired by row.
func (r *DataReader) ReadColumns(names ...string) (map[string][]float64, error) {
	rows, err := r.readRows()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.InvalidInput(fmt.Sprintf("%s has no rows", r.filePath))
	}

	index := make(map[string]int, len(rows[0]))
	for i, cell := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(cell))] = i
	}

	out := make(map[string][]float64, len(names))
	for _, name := range names {
		col, ok := index[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, errors.NotFound(fmt.Sprintf("column %q in %s", name, filepath.Base(r.filePath)))
		}
		values := make([]float64, 0, len(rows)-1)
		for _, row := range rows[1:] {
			v := math.NaN()
			if col < len(row) {
				if f, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64); err == nil {
					v = f
				}
			}
			values = append(values, v)
		}
		out[name] = values
	}
	r.logger.Debug("columns loaded", "file", r.filePath, "columns", len(names), "rows", len(rows)-1)
	return out, nil
}

func (r *DataReader) readRows() ([][]string, error) {
	if r.fileType == "" {
		return nil, errors.UnsupportedFormat(r.filePath)
	}
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, errors.NotFound(fmt.Sprintf("%s file %s", strings.ToUpper(r.fileType), r.filePath))
	}

	var rows [][]string
	var err error
	start := time.Now()
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	default:
		rows, err = r.readExcelRows()
	}
	if err != nil {
		return nil, err
	}
	r.logger.Debug("table file read", "file", r.filePath, "rows", len(rows), "elapsed", time.Since(start))
	return rows, nil
}

// readExcelRows reads Sheet1
func (r *DataReader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open Excel file")
	}
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	if err != nil {
		return nil, errors.Wrap(err, "failed to read Sheet1")
	}
	return rows, nil
}

func (r *DataReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open CSV file")
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read CSV file")
	}
	return rows, nil
}

// columns maps a, b, c, d, label to their positions.
type columns struct {
	cells [4]int
	label int // -1 when absent
}

var positional = columns{cells: [4]int{0, 1, 2, 3}, label: 4}

// headerColumns recognises a header row; ok is false for a data row.
func headerColumns(row []string) (columns, bool) {
	cols := columns{cells: [4]int{-1, -1, -1, -1}, label: -1}
	for i, cell := range row {
		switch strings.ToLower(strings.TrimSpace(cell)) {
		case "a":
			cols.cells[0] = i
		case "b":
			cols.cells[1] = i
		case "c":
			cols.cells[2] = i
		case "d":
			cols.cells[3] = i
		case "label", "name", "id":
			cols.label = i
		}
	}
	for _, idx := range cols.cells {
		if idx < 0 {
			return columns{}, false
		}
	}
	return cols, true
}

// processRows converts raw string rows into tables
func (r *DataReader) processRows(rows [][]string) ([]LabeledTable, error) {
	if len(rows) == 0 {
		return nil, errors.InvalidInput(fmt.Sprintf("%s has no rows", r.filePath))
	}

	cols, hasHeader := headerColumns(rows[0])
	first := 0
	if hasHeader {
		first = 1
	} else {
		cols = positional
	}

	var out []LabeledTable
	for i := first; i < len(rows); i++ {
		row := rows[i]
		if blank(row) {
			continue
		}
		lt, err := parseRow(row, cols)
		if err != nil {
			return nil, errors.Wrapf(err, "%s row %d", filepath.Base(r.filePath), i+1)
		}
		lt.Row = i + 1
		out = append(out, lt)
	}
	r.logger.Info("tables loaded", "file", r.filePath, "tables", len(out), "header", hasHeader)
	return out, nil
}

func parseRow(row []string, cols columns) (LabeledTable, error) {
	var m [2][]float64
	m[0], m[1] = make([]float64, 2), make([]float64, 2)
	for k, idx := range cols.cells {
		if idx >= len(row) {
			return LabeledTable{}, errors.InvalidTable(fmt.Errorf("missing column %s", "abcd"[k:k+1]))
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(row[idx]), 64)
		if err != nil {
			return LabeledTable{}, errors.InvalidTable(fmt.Errorf("%s=%q is not a number", "abcd"[k:k+1], row[idx]))
		}
		m[k/2][k%2] = v
	}

	t, err := stats.TableFromMatrix([][]float64{m[0], m[1]})
	if err != nil {
		return LabeledTable{}, errors.InvalidTable(err)
	}

	lt := LabeledTable{Table: t}
	if cols.label >= 0 && cols.label < len(row) {
		lt.Label = strings.TrimSpace(row[cols.label])
	}
	return lt, nil
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
