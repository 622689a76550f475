package excel

import "edabench/adapters/datareadiness/coercer"

// ExcelData is a rectangular table of raw cells read from a file
type ExcelData struct {
	Headers []string   // unique, non-empty column names
	Rows    [][]string // each row has len(Headers) cells
}

// ColumnReport records the kind inferred for one loaded column
type ColumnReport struct {
	Column   string               `json:"column"`
	Analysis coercer.TypeAnalysis `json:"analysis"`
}
