package dataset

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"edabench/domain/core"
)

// Value is a single typed cell or comparison operand
type Value struct {
	Kind    Kind
	Num     float64
	Str     string
	Bool    bool
	Time    time.Time
	Missing bool
}

func (v Value) String() string {
	if v.Missing {
		return MissingText
	}
	switch v.Kind {
	case KindNumeric:
		return FormatFloat(v.Num)
	case KindBoolean:
		return strconv.FormatBool(v.Bool)
	case KindTemporal:
		return v.Time.Format(TimeLayout)
	default:
		return v.Str
	}
}

// Operator is a closed set of comparison operators
type Operator int

const (
	OpEq Operator = iota + 1
	OpNe
	OpGt
	OpGe
	OpLt
	OpLe
)

var operatorSymbols = map[string]Operator{
	"==": OpEq,
	"!=": OpNe,
	">":  OpGt,
	">=": OpGe,
	"<":  OpLt,
	"<=": OpLe,
}

// comparators turn a three-way comparison result into a truth value
var comparators = map[Operator]func(cmp int) bool{
	OpEq: func(cmp int) bool { return cmp == 0 },
	OpNe: func(cmp int) bool { return cmp != 0 },
	OpGt: func(cmp int) bool { return cmp > 0 },
	OpGe: func(cmp int) bool { return cmp >= 0 },
	OpLt: func(cmp int) bool { return cmp < 0 },
	OpLe: func(cmp int) bool { return cmp <= 0 },
}

// ParseOperator maps a symbol such as ">=" to an Operator
func ParseOperator(symbol string) (Operator, error) {
	op, ok := operatorSymbols[strings.TrimSpace(symbol)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", core.ErrUnknownOperator, symbol)
	}
	return op, nil
}

func (o Operator) String() string {
	for sym, op := range operatorSymbols {
		if op == o {
			return sym
		}
	}
	return "?"
}

// UnmarshalText lets operators be read from YAML and JSON as symbols
func (o *Operator) UnmarshalText(text []byte) error {
	op, err := ParseOperator(string(text))
	if err != nil {
		return err
	}
	*o = op
	return nil
}

func (o Operator) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

var temporalLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006",
	"02/01/2006",
}

// ParseTime tries the supported temporal layouts in order
func ParseTime(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	for _, layout := range temporalLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CoerceValue converts a raw operand to the kind of the column it will be
// compared against. It never falls back to the raw string for typed columns.
func CoerceValue(kind Kind, raw string) (Value, error) {
	s := strings.TrimSpace(raw)
	switch kind {
	case KindNumeric:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not numeric", core.ErrCoercion, raw)
		}
		return Value{Kind: KindNumeric, Num: f}, nil
	case KindBoolean:
		b, err := strconv.ParseBool(strings.ToLower(s))
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not a boolean", core.ErrCoercion, raw)
		}
		return Value{Kind: KindBoolean, Bool: b}, nil
	case KindTemporal:
		t, ok := ParseTime(s)
		if !ok {
			return Value{}, fmt.Errorf("%w: %q is not a date", core.ErrCoercion, raw)
		}
		return Value{Kind: KindTemporal, Time: t}, nil
	case KindCategorical:
		return Value{Kind: KindCategorical, Str: raw}, nil
	default:
		return Value{}, fmt.Errorf("%w: unsupported kind %s", core.ErrCoercion, kind)
	}
}

func compareValues(a, b Value) int {
	switch a.Kind {
	case KindNumeric:
		switch {
		case a.Num < b.Num:
			return -1
		case a.Num > b.Num:
			return 1
		}
		return 0
	case KindBoolean:
		switch {
		case a.Bool == b.Bool:
			return 0
		case !a.Bool:
			return -1
		}
		return 1
	case KindTemporal:
		return a.Time.Compare(b.Time)
	default:
		return strings.Compare(a.Str, b.Str)
	}
}

// Holds evaluates "cell op operand". A missing cell satisfies only !=.
func (o Operator) Holds(cell, operand Value) bool {
	if cell.Missing {
		return o == OpNe
	}
	return comparators[o](compareValues(cell, operand))
}

// Condition is one column/operator/operand triple
type Condition struct {
	Column string   `json:"column" yaml:"column"`
	Op     Operator `json:"op" yaml:"op"`
	Value  string   `json:"value" yaml:"value"`
}

func (c Condition) String() string {
	return fmt.Sprintf("%s %s %s", c.Column, c.Op, c.Value)
}

// Mask evaluates the condition against every row of the column
func (c *Column) Mask(op Operator, raw string) ([]bool, error) {
	if _, ok := comparators[op]; !ok {
		return nil, fmt.Errorf("%w: %d", core.ErrUnknownOperator, op)
	}
	operand, err := CoerceValue(c.kind, raw)
	if err != nil {
		return nil, fmt.Errorf("column %q: %w", c.name, err)
	}
	mask := make([]bool, c.Len())
	for i := range mask {
		mask[i] = op.Holds(c.Value(i), operand)
	}
	return mask, nil
}
