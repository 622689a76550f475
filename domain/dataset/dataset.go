package dataset

import (
	"fmt"
	"strings"

	"edabench/domain/core"
)

// Dataset is the single mutable table of a session. Column names are unique
// and every column has RowCount cells. Mutations either apply fully or not at all.
type Dataset struct {
	name  string
	rows  int
	order []string
	cols  map[string]*Column
}

// Views partitions column names by semantic kind
type Views struct {
	Numeric     []string `json:"numeric"`
	Categorical []string `json:"categorical"`
	Temporal    []string `json:"temporal"`
}

// New builds a dataset from columns of equal length
func New(name string, cols ...*Column) (*Dataset, error) {
	ds := &Dataset{name: name, cols: make(map[string]*Column)}
	if len(cols) > 0 {
		ds.rows = cols[0].Len()
	}
	if err := ds.CreateColumns(cols...); err != nil {
		return nil, err
	}
	return ds, nil
}

func (d *Dataset) Name() string  { return d.name }
func (d *Dataset) RowCount() int { return d.rows }

// ColumnExists reports whether name is registered
func (d *Dataset) ColumnExists(name string) bool {
	_, ok := d.cols[name]
	return ok
}

// Column looks up a column by name
func (d *Dataset) Column(name string) (*Column, error) {
	c, ok := d.cols[name]
	if !ok {
		return nil, core.NewColumnNotFoundError(name)
	}
	return c, nil
}

// Names returns column names in insertion order
func (d *Dataset) Names() []string {
	return append([]string(nil), d.order...)
}

// Columns returns columns in insertion order
func (d *Dataset) Columns() []*Column {
	out := make([]*Column, len(d.order))
	for i, n := range d.order {
		out[i] = d.cols[n]
	}
	return out
}

// CreateColumn registers a new column, failing on a name collision
func (d *Dataset) CreateColumn(col *Column) error {
	return d.CreateColumns(col)
}

// CreateColumns registers several columns atomically: every name and length is
// checked before any column is inserted.
func (d *Dataset) CreateColumns(cols ...*Column) error {
	batch := make(map[string]bool, len(cols))
	for _, c := range cols {
		if c == nil || strings.TrimSpace(c.Name()) == "" {
			return core.NewValidationError("column name", "must not be empty")
		}
		if d.ColumnExists(c.Name()) || batch[c.Name()] {
			return core.NewCollisionError(c.Name())
		}
		if c.Len() != d.rows && len(d.order) > 0 {
			return fmt.Errorf("%w: %q has %d cells, dataset has %d rows",
				core.ErrLengthMismatch, c.Name(), c.Len(), d.rows)
		}
		if len(d.order) == 0 && c.Len() != cols[0].Len() {
			return fmt.Errorf("%w: %q has %d cells, expected %d",
				core.ErrLengthMismatch, c.Name(), c.Len(), cols[0].Len())
		}
		batch[c.Name()] = true
	}
	if len(d.order) == 0 && len(cols) > 0 {
		d.rows = cols[0].Len()
	}
	for _, c := range cols {
		d.cols[c.Name()] = c
		d.order = append(d.order, c.Name())
	}
	return nil
}

// RemoveColumns drops the named columns. Absent names fail the whole call.
func (d *Dataset) RemoveColumns(names ...string) error {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		if !d.ColumnExists(n) {
			return core.NewColumnNotFoundError(n)
		}
		drop[n] = true
	}
	kept := d.order[:0:0]
	for _, n := range d.order {
		if drop[n] {
			delete(d.cols, n)
			continue
		}
		kept = append(kept, n)
	}
	d.order = kept
	return nil
}

// TypedViews partitions current columns by kind. It is recomputed on every call.
func (d *Dataset) TypedViews() Views {
	var v Views
	for _, n := range d.order {
		switch d.cols[n].Kind() {
		case KindNumeric:
			v.Numeric = append(v.Numeric, n)
		case KindCategorical, KindBoolean:
			v.Categorical = append(v.Categorical, n)
		case KindTemporal:
			v.Temporal = append(v.Temporal, n)
		}
	}
	return v
}

// Lookup resolves several names, optionally requiring kinds
func (d *Dataset) Lookup(names []string, kinds ...Kind) ([]*Column, error) {
	out := make([]*Column, 0, len(names))
	for _, n := range names {
		c, err := d.Column(n)
		if err != nil {
			return nil, err
		}
		if len(kinds) > 0 && !c.IsKind(kinds...) {
			return nil, fmt.Errorf("%w: %q is %s", core.ErrWrongKind, n, c.Kind())
		}
		out = append(out, c)
	}
	return out, nil
}

// IsKind reports whether the column has one of kinds
func (c *Column) IsKind(kinds ...Kind) bool {
	for _, k := range kinds {
		if c.kind == k {
			return true
		}
	}
	return false
}

// CompleteRows returns row indices where none of cols is missing
func CompleteRows(cols ...*Column) []int {
	if len(cols) == 0 {
		return nil
	}
	var idx []int
	for i := 0; i < cols[0].Len(); i++ {
		ok := true
		for _, c := range cols {
			if c.IsMissing(i) {
				ok = false
				break
			}
		}
		if ok {
			idx = append(idx, i)
		}
	}
	return idx
}

// Preview renders the first n rows of the named columns
func (d *Dataset) Preview(names []string, n int) [][]string {
	if n > d.rows || n <= 0 {
		n = d.rows
	}
	rows := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		row := make([]string, 0, len(names))
		for _, name := range names {
			if c, ok := d.cols[name]; ok {
				row = append(row, c.String(i))
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// Fingerprint digests the names and contents of the given columns
func (d *Dataset) Fingerprint(names ...string) (core.Fingerprint, error) {
	h := core.NewHasher()
	for _, n := range names {
		c, err := d.Column(n)
		if err != nil {
			return 0, err
		}
		h.WriteString(n)
		h.WriteString(c.Kind().String())
		for i := 0; i < c.Len(); i++ {
			h.WriteString(c.String(i))
		}
	}
	return h.Sum(), nil
}
