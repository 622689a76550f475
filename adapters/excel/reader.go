package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"edabench/adapters/datareadiness/coercer"
	"edabench/domain/dataset"
	"edabench/internal/errors"
	"edabench/internal/logging"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// File types understood by DataReader
const (
	FileTypeCSV  = "csv"
	FileTypeXLSX = "xlsx"
)

// DataReader reads Excel and CSV files into datasets
type DataReader struct {
	config  ExcelConfig
	coercer *coercer.TypeCoercer
	logger  *zap.Logger
}

// NewDataReader creates a reader for both Excel and CSV files
func NewDataReader(config ExcelConfig, logger *zap.Logger) *DataReader {
	return &DataReader{
		config:  config,
		coercer: coercer.NewTypeCoercer(config.CoercionConfig),
		logger:  logging.OrNop(logger).Named("loader"),
	}
}

// FileType maps a file name to a supported type by extension
func FileType(name string) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FileTypeCSV, nil
	case ".xlsx", ".xlsm":
		return FileTypeXLSX, nil
	}
	return "", errors.InvalidInput(fmt.Sprintf("unsupported file type %q: expected .csv or .xlsx", filepath.Ext(name)))
}

// LoadFile reads path and builds a dataset named after the file
func (r *DataReader) LoadFile(path string) (*dataset.Dataset, []ColumnReport, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.NotFound("file " + path)
		}
		return nil, nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()
	return r.Load(f, filepath.Base(path))
}

// Load reads a CSV or XLSX stream; name selects the type and names the dataset
func (r *DataReader) Load(src io.Reader, name string) (*dataset.Dataset, []ColumnReport, error) {
	data, err := r.ReadData(src, name)
	if err != nil {
		return nil, nil, err
	}
	return r.Build(strings.TrimSuffix(name, filepath.Ext(name)), data)
}

// ReadData reads raw cells from a CSV or XLSX stream
func (r *DataReader) ReadData(src io.Reader, name string) (*ExcelData, error) {
	fileType, err := FileType(name)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var rows [][]string
	switch fileType {
	case FileTypeCSV:
		rows, err = r.readCSV(src)
	case FileTypeXLSX:
		rows, err = r.readExcel(src)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, errors.InvalidInput(fmt.Sprintf("%s must have a header row and at least one data row", name))
	}

	data := processRows(rows)
	r.logger.Info("file read",
		zap.String("file", name),
		zap.String("type", fileType),
		zap.Int("columns", len(data.Headers)),
		zap.Int("rows", len(data.Rows)),
		zap.Duration("elapsed", time.Since(start)))
	return data, nil
}

func (r *DataReader) readCSV(src io.Reader) ([][]string, error) {
	reader := csv.NewReader(src)
	if r.config.Comma != 0 {
		reader.Comma = r.config.Comma
	}
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.InvalidInput(err.Error()), "failed to read CSV")
	}
	return rows, nil
}

func (r *DataReader) readExcel(src io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, errors.Wrap(errors.InvalidInput(err.Error()), "failed to open workbook")
	}
	defer f.Close()

	sheet := r.config.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.InvalidInput("workbook has no sheets")
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(errors.InvalidInput(err.Error()), "failed to read sheet %q", sheet)
	}
	return rows, nil
}

// processRows trims headers, makes them unique and pads ragged rows
func processRows(rows [][]string) *ExcelData {
	headers := make([]string, len(rows[0]))
	seen := make(map[string]int)
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		base := h
		for seen[h] > 0 {
			seen[base]++
			h = fmt.Sprintf("%s_%d", base, seen[base])
		}
		seen[h]++
		headers[i] = h
	}

	data := &ExcelData{Headers: headers, Rows: make([][]string, 0, len(rows)-1)}
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		cells := make([]string, len(headers))
		for j := range cells {
			if j < len(row) {
				cells[j] = strings.TrimSpace(row[j])
			}
		}
		data.Rows = append(data.Rows, cells)
	}
	return data
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Build infers a kind per column and assembles the dataset
func (r *DataReader) Build(name string, data *ExcelData) (*dataset.Dataset, []ColumnReport, error) {
	cols := make([]*dataset.Column, len(data.Headers))
	reports := make([]ColumnReport, len(data.Headers))
	raw := make([]string, len(data.Rows))
	for j, h := range data.Headers {
		for i, row := range data.Rows {
			raw[i] = row[j]
		}
		col, analysis := r.coercer.Column(h, raw)
		cols[j] = col
		reports[j] = ColumnReport{Column: h, Analysis: analysis}
		if analysis.Unparsed > 0 {
			r.logger.Warn("cells did not parse as inferred kind",
				zap.String("column", h),
				zap.Stringer("kind", analysis.RecommendedKind),
				zap.Int("unparsed", analysis.Unparsed))
		}
	}

	ds, err := dataset.New(name, cols...)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to build dataset %s", name)
	}
	return ds, reports, nil
}

// WriteCSV renders a dataset as CSV with missing cells left empty
func WriteCSV(w io.Writer, ds *dataset.Dataset) error {
	out := csv.NewWriter(w)
	cols := ds.Columns()
	if err := out.Write(ds.Names()); err != nil {
		return err
	}
	record := make([]string, len(cols))
	for i := 0; i < ds.RowCount(); i++ {
		for j, c := range cols {
			record[j] = ""
			if !c.IsMissing(i) {
				record[j] = c.String(i)
			}
		}
		if err := out.Write(record); err != nil {
			return err
		}
	}
	out.Flush()
	return out.Error()
}

// WriteXLSX renders a dataset as a single-sheet workbook. Numeric cells are
// written as numbers so spreadsheet formulas keep working.
func WriteXLSX(w io.Writer, ds *dataset.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Sheet1"

	for j, name := range ds.Names() {
		cell, err := excelize.CoordinatesToCellName(j+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return err
		}
	}
	for j, c := range ds.Columns() {
		for i := 0; i < ds.RowCount(); i++ {
			if c.IsMissing(i) {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			var v any = c.String(i)
			if c.Kind() == dataset.KindNumeric {
				v = c.Float(i)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "failed to write workbook")
	}
	return nil
}
