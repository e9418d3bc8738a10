package catalog

import (
	"bytes"
	"encoding/binary"
	"sort"

	"github.com/MeKo-Tech/cartacore/internal/threading"
)

// Op is a NumericFilter comparison operator: one of
// {==, ≠, <, >, ≤, ≥, range_inclusive, range_exclusive}.
type Op int

const (
	OpEq Op = iota
	OpNe
	OpLt
	OpGt
	OpLe
	OpGe
	OpRangeInclusive
	OpRangeExclusive
)

// TableView is a non-owning, read-only window over a Table: an optional
// ordered row-index subset. A nil index list means "the whole table"
// (isSubset == false); the invariant !isSubset ⇒ isOrdered always holds.
type TableView struct {
	table *Table
	indices []int // nil when isSubset == false
	isSubset bool
	isOrdered bool
}

// NewTableView opens a view over the whole of t.
func NewTableView(t *Table) *TableView {
	return &TableView{table: t, isOrdered: true}
}

// NumRows returns the table's row count when the view is not a subset,
// else the subset's length. Filter operations never increase row count,
// so this only ever shrinks relative to the underlying Table.
func (v *TableView) NumRows() int {
	if !v.isSubset {
		return v.table.numRows
	}
	return len(v.indices)
}

// IsSubset reports whether the view currently holds a materialized index
// list rather than representing the whole table.
func (v *TableView) IsSubset() bool { return v.isSubset }

// IsOrdered reports whether the current index list is monotonically
// non-decreasing (trivially true for the whole-table case).
func (v *TableView) IsOrdered() bool { return v.isOrdered }

// Indices returns the view's row indices into the underlying Table, in the
// view's current order. For a whole-table view this is the identity
// sequence 0..NumRows()-1.
func (v *TableView) Indices() []int {
	if !v.isSubset {
		return identityIndices(v.table.numRows)
	}
	out := make([]int, len(v.indices))
	copy(out, v.indices)
	return out
}

func identityIndices(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// currentIndices returns the live (not-copied) index list to filter/sort
// over: the view's own indices if a subset, else a freshly materialized
// identity list.
func (v *TableView) currentIndices() []int {
	if v.isSubset {
		return v.indices
	}
	return identityIndices(v.table.numRows)
}

// NumericFilter restricts the view to rows matching the predicate over a
// numeric column. Returns false for string/unsupported columns or an
// unknown column name, leaving the view unchanged.
func (v *TableView) NumericFilter(column string, op Op, val, val2 float64) bool {
	col, ok := v.table.ColumnByName(column)
	if !ok {
		return false
	}
	vals, ok := asFloat64(col)
	if !ok {
		return false
	}

	base := v.currentIndices()
	pred := numericPredicate(op, val, val2)

	matched := make([]int, 0, len(base))
	for _, row := range base {
		if pred(vals[row]) {
			matched = append(matched, row)
		}
	}

	if !v.isSubset && len(matched) == len(base) {
		// Already the whole table and every row still matches: stays the
		// whole table ("the view collapses back to whole table").
		return true
	}
	v.indices = matched
	v.isSubset = true
	// isOrdered is preserved: matched is a subsequence of an
	// already-ordered base, so order is retained.
	return true
}

func numericPredicate(op Op, val, val2 float64) func(float64) bool {
	switch op {
	case OpEq:
		return func(x float64) bool { return x == val }
	case OpNe:
		return func(x float64) bool { return x != val }
	case OpLt:
		return func(x float64) bool { return x < val }
	case OpGt:
		return func(x float64) bool { return x > val }
	case OpLe:
		return func(x float64) bool { return x <= val }
	case OpGe:
		return func(x float64) bool { return x >= val }
	case OpRangeInclusive:
		return func(x float64) bool { return x >= val && x <= val2 }
	case OpRangeExclusive:
		return func(x float64) bool { return x > val && x < val2 }
	default:
		return func(float64) bool { return false }
	}
}

// StringFilter restricts the view to rows whose string-column value
// contains needle
func (v *TableView) StringFilter(column, needle string, caseInsensitive bool) bool {
	col, ok := v.table.ColumnByName(column)
	if !ok {
		return false
	}
	vals, ok := stringValues(col)
	if !ok {
		return false
	}

	base := v.currentIndices()
	matched := make([]int, 0, len(base))
	for _, row := range base {
		if containsFold(vals[row], needle, caseInsensitive) {
			matched = append(matched, row)
		}
	}

	if !v.isSubset && len(matched) == len(base) {
		return true
	}
	v.indices = matched
	v.isSubset = true
	return true
}

// Invert complements the current row set within the full table. Valid only
// when the view is ordered; an all-rows view inverts to empty, an empty
// view inverts to the whole table.
func (v *TableView) Invert() bool {
	if !v.isOrdered {
		return false
	}
	full := v.table.numRows
	if !v.isSubset {
		v.indices = []int{}
		v.isSubset = true
		return true
	}

	present := make([]bool, full)
	for _, i := range v.indices {
		present[i] = true
	}
	complement := make([]int, 0, full-len(v.indices))
	for i := 0; i < full; i++ {
		if !present[i] {
			complement = append(complement, i)
		}
	}

	if len(complement) == full {
		v.indices = nil
		v.isSubset = false
	} else {
		v.indices = complement
		v.isSubset = true
	}
	return true
}

// Combine set-unions two ordered subsets of the same Table. Rejects
// unordered inputs or views over different tables, leaving v unchanged.
func (v *TableView) Combine(other *TableView) bool {
	if v.table != other.table {
		return false
	}
	if !v.isOrdered || !other.isOrdered {
		return false
	}
	if !v.isSubset || !other.isSubset {
		v.indices = nil
		v.isSubset = false
		v.isOrdered = true
		return true
	}

	merged := mergeSortedUnique(v.indices, other.indices)
	if len(merged) == v.table.numRows {
		v.indices = nil
		v.isSubset = false
	} else {
		v.indices = merged
		v.isSubset = true
	}
	v.isOrdered = true
	return true
}

// mergeSortedUnique merges two ascending, duplicate-free int slices into
// one ascending, duplicate-free slice.
func mergeSortedUnique(a, b []int) []int {
	out := make([]int, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}

// SortByColumn stably sorts the view's row-index list by column, ascending
// or descending. It materializes the identity index list first if the view
// had none, and always sets isOrdered = false (SortByColumn's result
// is no longer guaranteed monotone by row index).
func (v *TableView) SortByColumn(column string, ascending bool) bool {
	col, ok := v.table.ColumnByName(column)
	if !ok {
		return false
	}
	if col.Kind() == KindUnsupported {
		return false
	}

	idx := v.currentIndices()
	sorted := make([]int, len(idx))
	copy(sorted, idx)

	// less receives row indices directly (threading.StableSortIndices calls
	// cmp with the slice's own elements, not their positions).
	var less func(a, b int) bool
	if numeric, ok := asFloat64(col); ok {
		less = func(a, b int) bool {
			if ascending {
				return numeric[a] < numeric[b]
			}
			return numeric[a] > numeric[b]
		}
	} else if strs, ok := stringValues(col); ok {
		less = func(a, b int) bool {
			if ascending {
				return strs[a] < strs[b]
			}
			return strs[a] > strs[b]
		}
	} else {
		return false
	}

	threading.StableSortIndices(sorted, less)
	v.indices = sorted
	v.isSubset = true
	v.isOrdered = false
	return true
}

// SortByIndex restores monotone row-index order over the current row set.
func (v *TableView) SortByIndex() bool {
	if !v.isSubset {
		v.isOrdered = true
		return true
	}
	sort.Ints(v.indices)
	v.isOrdered = true
	return true
}

// FillValues writes the contiguous row range [start,end) of the view into
// an output value sequence: repeated strings for a string column, or a
// packed little-endian binary buffer for any numeric column.
func (v *TableView) FillValues(column string, start, end int) (strs []string, raw []byte, ok bool) {
	col, found := v.table.ColumnByName(column)
	if !found {
		return nil, nil, false
	}
	if start < 0 || end > v.NumRows() || start > end {
		return nil, nil, false
	}

	rows := v.Indices()[start:end]

	if vals, isStr := stringValues(col); isStr {
		out := make([]string, len(rows))
		for i, r := range rows {
			out[i] = vals[r]
		}
		return out, nil, true
	}

	buf := new(bytes.Buffer)
	if !writeNumericRows(buf, col, rows) {
		return nil, nil, false
	}
	return nil, buf.Bytes(), true
}

// writeNumericRows packs rows of col into buf in little-endian byte order,
// at the column's own element width (not widened to float64).
func writeNumericRows(buf *bytes.Buffer, col Column, rows []int) bool {
	switch c := col.(type) {
	case *numericColumn[uint8]:
		return writeEach(buf, c.values, rows)
	case *numericColumn[int8]:
		return writeEach(buf, c.values, rows)
	case *numericColumn[uint16]:
		return writeEach(buf, c.values, rows)
	case *numericColumn[int16]:
		return writeEach(buf, c.values, rows)
	case *numericColumn[uint32]:
		return writeEach(buf, c.values, rows)
	case *numericColumn[int32]:
		return writeEach(buf, c.values, rows)
	case *numericColumn[uint64]:
		return writeEach(buf, c.values, rows)
	case *numericColumn[int64]:
		return writeEach(buf, c.values, rows)
	case *numericColumn[float32]:
		return writeEach(buf, c.values, rows)
	case *numericColumn[float64]:
		return writeEach(buf, c.values, rows)
	case *numericColumn[bool]:
		return writeEach(buf, c.values, rows)
	default:
		return false
	}
}

func writeEach[T Numeric](buf *bytes.Buffer, values []T, rows []int) bool {
	for _, r := range rows {
		if err := binary.Write(buf, binary.LittleEndian, values[r]); err != nil {
			return false
		}
	}
	return true
}
