package dataset

import (
	"math"
	"sort"
	"strconv"
	"time"
)

// Kind is the semantic type of a column
type Kind int

const (
	KindNumeric Kind = iota
	KindCategorical
	KindBoolean
	KindTemporal
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindCategorical:
		return "categorical"
	case KindBoolean:
		return "boolean"
	case KindTemporal:
		return "temporal"
	default:
		return "unknown"
	}
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// MissingText is how a missing cell renders in previews
const MissingText = "NaN"

// TimeLayout is how temporal cells render in previews and labels
const TimeLayout = "2006-01-02 15:04:05"

// Column is an immutable named vector of one kind.
// Numeric columns encode missing as NaN; the other kinds carry a validity mask.
type Column struct {
	name   string
	kind   Kind
	nums   []float64
	strs   []string
	bools  []bool
	times  []time.Time
	valid  []bool
	levels []string
}

// NewNumeric builds a numeric column; NaN marks missing cells
func NewNumeric(name string, values []float64) *Column {
	return &Column{name: name, kind: KindNumeric, nums: append([]float64(nil), values...)}
}

// NewCategorical builds a categorical column. A nil mask means every cell is present.
func NewCategorical(name string, values []string, valid []bool) *Column {
	return &Column{
		name:  name,
		kind:  KindCategorical,
		strs:  append([]string(nil), values...),
		valid: maskOrAll(valid, len(values)),
	}
}

// NewBoolean builds a boolean column. A nil mask means every cell is present.
func NewBoolean(name string, values []bool, valid []bool) *Column {
	return &Column{
		name:  name,
		kind:  KindBoolean,
		bools: append([]bool(nil), values...),
		valid: maskOrAll(valid, len(values)),
	}
}

// NewTemporal builds a temporal column. A nil mask means every cell is present.
func NewTemporal(name string, values []time.Time, valid []bool) *Column {
	return &Column{
		name:  name,
		kind:  KindTemporal,
		times: append([]time.Time(nil), values...),
		valid: maskOrAll(valid, len(values)),
	}
}

func maskOrAll(valid []bool, n int) []bool {
	out := make([]bool, n)
	if valid == nil {
		for i := range out {
			out[i] = true
		}
		return out
	}
	copy(out, valid)
	return out
}

// WithLevels returns a copy of a categorical column with an explicit level order
func (c *Column) WithLevels(levels []string) *Column {
	cp := *c
	cp.levels = append([]string(nil), levels...)
	return &cp
}

// Renamed returns a copy of the column under a new name
func (c *Column) Renamed(name string) *Column {
	cp := *c
	cp.name = name
	return &cp
}

func (c *Column) Name() string { return c.name }
func (c *Column) Kind() Kind   { return c.kind }

// Len returns the number of cells
func (c *Column) Len() int {
	switch c.kind {
	case KindNumeric:
		return len(c.nums)
	case KindCategorical:
		return len(c.strs)
	case KindBoolean:
		return len(c.bools)
	default:
		return len(c.times)
	}
}

// IsMissing reports whether cell i is missing
func (c *Column) IsMissing(i int) bool {
	if c.kind == KindNumeric {
		return math.IsNaN(c.nums[i])
	}
	return !c.valid[i]
}

// MissingCount returns how many cells are missing
func (c *Column) MissingCount() int {
	n := 0
	for i := 0; i < c.Len(); i++ {
		if c.IsMissing(i) {
			n++
		}
	}
	return n
}

// Float returns cell i as a number. Booleans map to 0/1; other kinds and
// missing cells give NaN.
func (c *Column) Float(i int) float64 {
	switch c.kind {
	case KindNumeric:
		return c.nums[i]
	case KindBoolean:
		if !c.valid[i] {
			return math.NaN()
		}
		if c.bools[i] {
			return 1
		}
		return 0
	default:
		return math.NaN()
	}
}

// Floats returns a copy of the column as numbers (see Float)
func (c *Column) Floats() []float64 {
	out := make([]float64, c.Len())
	for i := range out {
		out[i] = c.Float(i)
	}
	return out
}

// Time returns cell i of a temporal column and whether it is present
func (c *Column) Time(i int) (time.Time, bool) {
	if c.kind != KindTemporal {
		return time.Time{}, false
	}
	return c.times[i], c.valid[i]
}

// String renders cell i for previews and grouping keys
func (c *Column) String(i int) string {
	if c.IsMissing(i) {
		return MissingText
	}
	switch c.kind {
	case KindNumeric:
		return FormatFloat(c.nums[i])
	case KindCategorical:
		return c.strs[i]
	case KindBoolean:
		return strconv.FormatBool(c.bools[i])
	default:
		return c.times[i].Format(TimeLayout)
	}
}

// Value returns cell i as a typed Value
func (c *Column) Value(i int) Value {
	v := Value{Kind: c.kind, Missing: c.IsMissing(i)}
	if v.Missing {
		return v
	}
	switch c.kind {
	case KindNumeric:
		v.Num = c.nums[i]
	case KindCategorical:
		v.Str = c.strs[i]
	case KindBoolean:
		v.Bool = c.bools[i]
	case KindTemporal:
		v.Time = c.times[i]
	}
	return v
}

// Distinct returns present values in order of first appearance
func (c *Column) Distinct() []string {
	seen := make(map[string]bool)
	var out []string
	for i := 0; i < c.Len(); i++ {
		if c.IsMissing(i) {
			continue
		}
		s := c.String(i)
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// Levels returns the declared level order, or the sorted distinct values.
// Numeric values sort numerically.
func (c *Column) Levels() []string {
	if len(c.levels) > 0 {
		return append([]string(nil), c.levels...)
	}
	out := c.Distinct()
	if c.kind == KindNumeric {
		sort.Slice(out, func(a, b int) bool {
			x, _ := strconv.ParseFloat(out[a], 64)
			y, _ := strconv.ParseFloat(out[b], 64)
			return x < y
		})
		return out
	}
	sort.Strings(out)
	return out
}

// ObservedLevels returns Levels restricted to values present in the column.
// Declared levels with no rows, such as those left behind by Take, are dropped.
func (c *Column) ObservedLevels() []string {
	if len(c.levels) == 0 {
		return c.Levels()
	}
	present := make(map[string]bool)
	for _, v := range c.Distinct() {
		present[v] = true
	}
	out := make([]string, 0, len(present))
	for _, lv := range c.levels {
		if present[lv] {
			out = append(out, lv)
		}
	}
	return out
}

// Take returns a new column holding rows idx in order
func (c *Column) Take(idx []int) *Column {
	cp := &Column{name: c.name, kind: c.kind, levels: c.levels}
	switch c.kind {
	case KindNumeric:
		cp.nums = make([]float64, len(idx))
		for j, i := range idx {
			cp.nums[j] = c.nums[i]
		}
		return cp
	case KindCategorical:
		cp.strs = make([]string, len(idx))
		for j, i := range idx {
			cp.strs[j] = c.strs[i]
		}
	case KindBoolean:
		cp.bools = make([]bool, len(idx))
		for j, i := range idx {
			cp.bools[j] = c.bools[i]
		}
	case KindTemporal:
		cp.times = make([]time.Time, len(idx))
		for j, i := range idx {
			cp.times[j] = c.times[i]
		}
	}
	cp.valid = make([]bool, len(idx))
	for j, i := range idx {
		cp.valid[j] = c.valid[i]
	}
	return cp
}

// Masked returns a copy where cells outside keep are missing
func (c *Column) Masked(keep []bool) *Column {
	cp := &Column{name: c.name, kind: c.kind, levels: c.levels}
	if c.kind == KindNumeric {
		cp.nums = make([]float64, len(c.nums))
		for i, v := range c.nums {
			if keep[i] {
				cp.nums[i] = v
			} else {
				cp.nums[i] = math.NaN()
			}
		}
		return cp
	}
	cp.strs, cp.bools, cp.times = c.strs, c.bools, c.times
	cp.valid = make([]bool, len(c.valid))
	for i, ok := range c.valid {
		cp.valid[i] = ok && keep[i]
	}
	return cp
}

// FormatFloat renders a number the shortest way that round-trips
func FormatFloat(v float64) string {
	if math.IsNaN(v) {
		return MissingText
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
