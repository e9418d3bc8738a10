// Package catalog implements a columnar tabular view engine: a typed Table
// of named/identified Columns, and TableView windows that filter and sort
// an ordered index list over it without ever mutating the underlying
// Table. The SQLite ingestion path follows a reader/writer split modeled
// on a read-only mbtiles reader, generalized here from tile blobs to typed
// column data.
package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// Kind is the tagged-union discriminant for a Column's element type
// (string, u8, i8, ..., f64, bool, or unsupported).
type Kind int

const (
	KindString Kind = iota
	KindU8
	KindI8
	KindU16
	KindI16
	KindU32
	KindI32
	KindU64
	KindI64
	KindF32
	KindF64
	KindBool
	KindUnsupported
)

// Column is one named/identified field of a Table. Concrete element
// storage lives behind the interface (numericColumn[T], stringColumn,
// unsupportedColumn): one branch per supported element type, with
// "unsupported" a no-op.
type Column interface {
	Name() string
	ID() string
	Description() string
	Unit() string
	UCD() string
	Kind() Kind
	Len() int
}

// Table owns a set of Columns and a fixed row count, indexed by both name
// and id in distinct namespaces. Table is immutable once built; TableView
// never mutates it, so a Table may be safely shared by many concurrent
// views.
type Table struct {
	numRows int
	byName map[string]Column
	byID map[string]Column
	order []Column // construction order, for FillValues iteration stability
}

// NumRows returns the table's row count.
func (t *Table) NumRows() int { return t.numRows }

// ColumnByName looks up a column by its display name.
func (t *Table) ColumnByName(name string) (Column, bool) {
	c, ok := t.byName[name]
	return c, ok
}

// ColumnByID looks up a column by its catalog identifier (a distinct
// namespace from display name).
func (t *Table) ColumnByID(id string) (Column, bool) {
	c, ok := t.byID[id]
	return c, ok
}

// Columns returns all columns in construction order.
func (t *Table) Columns() []Column { return t.order }

// builder assembles a Table from typed columns, validating at
// construction time that every column's Len() matches the declared row
// count.
type builder struct {
	numRows int
	cols []Column
	err error
}

func newBuilder(numRows int) *builder {
	return &builder{numRows: numRows}
}

func (b *builder) add(c Column) {
	if b.err != nil {
		return
	}
	if c.Len() != b.numRows {
		b.err = fmt.Errorf("catalog: column %q has %d rows, want %d", c.Name(), c.Len(), b.numRows)
		return
	}
	b.cols = append(b.cols, c)
}

func (b *builder) build() (*Table, error) {
	if b.err != nil {
		return nil, b.err
	}
	t := &Table{
		numRows: b.numRows,
		byName: make(map[string]Column, len(b.cols)),
		byID: make(map[string]Column, len(b.cols)),
		order: b.cols,
	}
	for _, c := range b.cols {
		t.byName[c.Name()] = c
		t.byID[c.ID()] = c
	}
	return t, nil
}

// FromStringColumns builds a Table directly from raw string columns, one
// of three supported construction paths. Each column gets name == id.
func FromStringColumns(columns map[string][]string) (*Table, error) {
	numRows := -1
	names := make([]string, 0, len(columns))
	for name := range columns {
		names = append(names, name)
	}
	// Deterministic construction order regardless of map iteration order.
	sort.Strings(names)

	b := &builder{}
	for i, name := range names {
		vals := columns[name]
		if i == 0 {
			numRows = len(vals)
			b.numRows = numRows
		}
		b.add(&stringColumn{name: name, id: name, values: vals})
	}
	if numRows < 0 {
		b.numRows = 0
	}
	return b.build()
}

// stringColumn is the string-kind Column implementation.
type stringColumn struct {
	name, id, description, unit, ucd string
	values []string
}

func (c *stringColumn) Name() string { return c.name }
func (c *stringColumn) ID() string { return c.id }
func (c *stringColumn) Description() string { return c.description }
func (c *stringColumn) Unit() string { return c.unit }
func (c *stringColumn) UCD() string { return c.ucd }
func (c *stringColumn) Kind() Kind { return KindString }
func (c *stringColumn) Len() int { return len(c.values) }

// unsupportedColumn is admitted but never materializes rows: unsupported
// types are kept as opaque placeholder columns whose rows are never
// populated.
type unsupportedColumn struct {
	name, id string
	length int
}

func (c *unsupportedColumn) Name() string { return c.name }
func (c *unsupportedColumn) ID() string { return c.id }
func (c *unsupportedColumn) Description() string { return "" }
func (c *unsupportedColumn) Unit() string { return "" }
func (c *unsupportedColumn) UCD() string { return "" }
func (c *unsupportedColumn) Kind() Kind { return KindUnsupported }
func (c *unsupportedColumn) Len() int { return c.length }

// stringValues returns a string column's values, or (nil,false) if col is
// not a string column.
func stringValues(col Column) ([]string, bool) {
	sc, ok := col.(*stringColumn)
	if !ok {
		return nil, false
	}
	return sc.values, true
}

// containsFold reports whether haystack contains needle, honoring
// case-insensitivity when requested.
func containsFold(haystack, needle string, caseInsensitive bool) bool {
	if caseInsensitive {
		return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
	}
	return strings.Contains(haystack, needle)
}
