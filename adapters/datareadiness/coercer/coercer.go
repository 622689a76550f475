package coercer

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"edabench/domain/dataset"
)

// TypeCoercer infers column kinds from raw cells and converts them
type TypeCoercer struct {
	config CoercionConfig
}

// CoercionConfig defines the coercion thresholds and rules
type CoercionConfig struct {
	NumericThreshold   float64  `json:"numeric_threshold" yaml:"numeric_threshold"`     // share of present values that must parse as numbers
	BooleanThreshold   float64  `json:"boolean_threshold" yaml:"boolean_threshold"`     // share of present values that must parse as booleans
	TimestampThreshold float64  `json:"timestamp_threshold" yaml:"timestamp_threshold"` // share of present values that must parse as timestamps
	MissingTokens      []string `json:"missing_tokens" yaml:"missing_tokens"`           // compared case-insensitively after trimming
	NormalizeStrings   bool     `json:"normalize_strings" yaml:"normalize_strings"`     // collapse whitespace in categorical values
}

// DefaultCoercionConfig returns sensible defaults
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		NumericThreshold:   0.8,
		BooleanThreshold:   0.9,
		TimestampThreshold: 0.8,
		MissingTokens:      []string{"", "na", "n/a", "nan", "null", "none", "-"},
		NormalizeStrings:   true,
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	return &TypeCoercer{config: config}
}

// TypeAnalysis contains the results of type distribution analysis
type TypeAnalysis struct {
	TotalCount      int          `json:"total_count"`
	ValidCount      int          `json:"valid_count"`
	NumericCount    int          `json:"numeric_count"`
	BooleanCount    int          `json:"boolean_count"`
	TimestampCount  int          `json:"timestamp_count"`
	NumericRatio    float64      `json:"numeric_ratio"`
	BooleanRatio    float64      `json:"boolean_ratio"`
	TimestampRatio  float64      `json:"timestamp_ratio"`
	RecommendedKind dataset.Kind `json:"recommended_kind"`
	Unparsed        int          `json:"unparsed"` // present cells that became missing under the recommended kind
}

// IsMissing reports whether a raw cell is one of the missing tokens
func (c *TypeCoercer) IsMissing(raw string) bool {
	s := strings.ToLower(strings.TrimSpace(raw))
	for _, tok := range c.config.MissingTokens {
		if s == tok {
			return true
		}
	}
	return false
}

// AnalyzeTypeDistribution counts how many present cells parse as each kind
func (c *TypeCoercer) AnalyzeTypeDistribution(values []string) TypeAnalysis {
	analysis := TypeAnalysis{TotalCount: len(values)}

	for _, raw := range values {
		if c.IsMissing(raw) {
			continue
		}
		analysis.ValidCount++
		if _, ok := ParseNumeric(raw); ok {
			analysis.NumericCount++
		}
		if _, ok := ParseBoolean(raw); ok {
			analysis.BooleanCount++
		}
		if _, ok := ParseTimestamp(raw); ok {
			analysis.TimestampCount++
		}
	}

	if analysis.ValidCount > 0 {
		valid := float64(analysis.ValidCount)
		analysis.NumericRatio = float64(analysis.NumericCount) / valid
		analysis.BooleanRatio = float64(analysis.BooleanCount) / valid
		analysis.TimestampRatio = float64(analysis.TimestampCount) / valid
	}
	analysis.RecommendedKind = c.determineRecommendedKind(analysis)
	switch analysis.RecommendedKind {
	case dataset.KindNumeric:
		analysis.Unparsed = analysis.ValidCount - analysis.NumericCount
	case dataset.KindBoolean:
		analysis.Unparsed = analysis.ValidCount - analysis.BooleanCount
	case dataset.KindTemporal:
		analysis.Unparsed = analysis.ValidCount - analysis.TimestampCount
	}
	return analysis
}

// determineRecommendedKind checks thresholds most restrictive first. A column
// with no present values stays categorical.
func (c *TypeCoercer) determineRecommendedKind(analysis TypeAnalysis) dataset.Kind {
	if analysis.ValidCount == 0 {
		return dataset.KindCategorical
	}
	if analysis.NumericRatio >= c.config.NumericThreshold {
		return dataset.KindNumeric
	}
	if analysis.BooleanRatio >= c.config.BooleanThreshold {
		return dataset.KindBoolean
	}
	if analysis.TimestampRatio >= c.config.TimestampThreshold {
		return dataset.KindTemporal
	}
	return dataset.KindCategorical
}

// Column builds a typed column from raw cells. Cells that are missing tokens
// or do not parse as the inferred kind become missing.
func (c *TypeCoercer) Column(name string, raw []string) (*dataset.Column, TypeAnalysis) {
	analysis := c.AnalyzeTypeDistribution(raw)
	n := len(raw)

	switch analysis.RecommendedKind {
	case dataset.KindNumeric:
		vals := make([]float64, n)
		for i, s := range raw {
			vals[i] = math.NaN()
			if c.IsMissing(s) {
				continue
			}
			if f, ok := ParseNumeric(s); ok {
				vals[i] = f
			}
		}
		return dataset.NewNumeric(name, vals), analysis

	case dataset.KindBoolean:
		vals, valid := make([]bool, n), make([]bool, n)
		for i, s := range raw {
			if c.IsMissing(s) {
				continue
			}
			vals[i], valid[i] = ParseBoolean(s)
		}
		return dataset.NewBoolean(name, vals, valid), analysis

	case dataset.KindTemporal:
		vals, valid := make([]time.Time, n), make([]bool, n)
		for i, s := range raw {
			if c.IsMissing(s) {
				continue
			}
			vals[i], valid[i] = ParseTimestamp(s)
		}
		return dataset.NewTemporal(name, vals, valid), analysis
	}

	vals, valid := make([]string, n), make([]bool, n)
	for i, s := range raw {
		if c.IsMissing(s) {
			continue
		}
		vals[i], valid[i] = c.normalizeString(s), true
	}
	return dataset.NewCategorical(name, vals, valid), analysis
}

var currencyReplacer = strings.NewReplacer("$", "", "€", "", "£", "", "¥", "", "%", "")

// ParseNumeric parses a number, accepting currency symbols, percent signs,
// parentheses for negatives and European decimal commas.
func ParseNumeric(raw string) (float64, bool) {
	cleanVal := strings.TrimSpace(raw)
	if cleanVal == "" {
		return 0, false
	}

	isNegative := false
	if strings.HasPrefix(cleanVal, "(") && strings.HasSuffix(cleanVal, ")") {
		cleanVal = strings.TrimSuffix(strings.TrimPrefix(cleanVal, "("), ")")
		isNegative = true
	}
	cleanVal = strings.TrimSpace(currencyReplacer.Replace(cleanVal))

	hasComma := strings.Contains(cleanVal, ",")
	hasPeriod := strings.Contains(cleanVal, ".")
	hasSpace := strings.Contains(cleanVal, " ")

	switch {
	case hasComma && (hasPeriod || hasSpace):
		// 1.234,56 or 1 234,56 when the last comma is followed by at most three digits
		commaIdx := strings.LastIndex(cleanVal, ",")
		if afterComma := cleanVal[commaIdx+1:]; len(afterComma) <= 3 && isDigits(afterComma) && commaIdx > strings.LastIndex(cleanVal, ".") {
			cleanVal = strings.NewReplacer(".", "", " ", "", ",", ".").Replace(cleanVal)
		} else {
			cleanVal = strings.NewReplacer(",", "", " ", "").Replace(cleanVal)
		}
	case hasComma:
		cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
	default:
		cleanVal = strings.ReplaceAll(cleanVal, " ", "")
	}

	if isNegative {
		cleanVal = "-" + cleanVal
	}
	val, err := strconv.ParseFloat(cleanVal, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ParseBoolean accepts true/false, yes/no, y/n and on/off in any case.
// 0 and 1 are left to the numeric parser.
func ParseBoolean(raw string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "yes", "y", "on":
		return true, true
	case "false", "no", "n", "off":
		return false, true
	}
	return false, false
}

// ParseTimestamp accepts the dataset's temporal layouts plus a few spreadsheet ones
func ParseTimestamp(raw string) (time.Time, bool) {
	if t, ok := dataset.ParseTime(raw); ok {
		return t, true
	}
	s := strings.TrimSpace(raw)
	for _, layout := range []string{"2006/01/02", "02-Jan-2006", "Jan 2, 2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// normalizeString trims, collapses whitespace and drops control characters.
// Case is preserved so category labels survive unchanged.
func (c *TypeCoercer) normalizeString(s string) string {
	s = strings.TrimSpace(s)
	if !c.config.NormalizeStrings {
		return s
	}
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)
}
