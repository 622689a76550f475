package excel

import (
	"edabench/adapters/datareadiness/coercer"
)

// ExcelConfig holds configuration for spreadsheet and CSV loading
type ExcelConfig struct {
	Sheet          string                 `json:"sheet" yaml:"sheet"` // empty means the first sheet
	Comma          rune                   `json:"comma" yaml:"comma"` // CSV delimiter; zero means ','
	CoercionConfig coercer.CoercionConfig `json:"coercion_config" yaml:"coercion_config"`
}

// DefaultExcelConfig returns sensible defaults for file loading
func DefaultExcelConfig() ExcelConfig {
	return ExcelConfig{
		CoercionConfig: coercer.DefaultCoercionConfig(),
	}
}
