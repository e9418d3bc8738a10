package catalog

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/MeKo-Tech/cartacore/internal/corerr"
)

// SQLiteColumnSpec names one column to read out of a pre-staged SQLite
// catalog table, and the Kind to materialize it as.
type SQLiteColumnSpec struct {
	Column string
	ID     string
	Kind   Kind
}

// FromSQLite reads tableName out of a SQLite database at path into a Table.
// It opens read-only/immutable and checks the table's schema presence
// up front before any row scan, the same discipline an mbtiles reader
// applies before serving tiles.
func FromSQLite(path, tableName string, cols []SQLiteColumnSpec) (*Table, error) {
	db, err := sql.Open("sqlite", path+"?mode=ro&immutable=1")
	if err != nil {
		return nil, corerr.New(corerr.KindIOFailure, "open sqlite catalog", err)
	}
	defer db.Close()

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", tableName).Scan(&count)
	if err != nil {
		return nil, corerr.New(corerr.KindIOFailure, "verify sqlite catalog schema", err)
	}
	if count == 0 {
		return nil, corerr.New(corerr.KindResourceMissing, fmt.Sprintf("sqlite catalog table %q not found", tableName), nil)
	}

	colNames := make([]string, len(cols))
	for i, c := range cols {
		colNames[i] = c.Column
	}
	query := "SELECT " + joinComma(colNames) + " FROM " + tableName
	rows, err := db.Query(query)
	if err != nil {
		return nil, corerr.New(corerr.KindIOFailure, "query sqlite catalog rows", err)
	}
	defer rows.Close()

	scanBufs := make([]sql.NullString, len(cols))
	scanPtrs := make([]any, len(cols))
	for i := range scanBufs {
		scanPtrs[i] = &scanBufs[i]
	}

	raw := make([][]string, len(cols))
	for rows.Next() {
		if err := rows.Scan(scanPtrs...); err != nil {
			return nil, corerr.New(corerr.KindIOFailure, "scan sqlite catalog row", err)
		}
		for i := range cols {
			raw[i] = append(raw[i], scanBufs[i].String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, corerr.New(corerr.KindIOFailure, "iterate sqlite catalog rows", err)
	}

	numRows := 0
	if len(raw) > 0 {
		numRows = len(raw[0])
	}
	b := newBuilder(numRows)
	for i, c := range cols {
		b.add(sqliteColumn(c, raw[i], numRows))
	}
	return b.build()
}

func sqliteColumn(spec SQLiteColumnSpec, vals []string, numRows int) Column {
	id := spec.ID
	if id == "" {
		id = spec.Column
	}
	switch spec.Kind {
	case KindString:
		return &stringColumn{name: spec.Column, id: id, values: vals}
	case KindF64:
		return &numericColumn[float64]{name: spec.Column, id: id, kind: KindF64, values: parseEach(vals, parseFloat64)}
	case KindF32:
		return &numericColumn[float32]{name: spec.Column, id: id, kind: KindF32, values: parseEach(vals, parseFloat32)}
	case KindI64:
		return &numericColumn[int64]{name: spec.Column, id: id, kind: KindI64, values: parseEach(vals, parseInt64)}
	case KindI32:
		return &numericColumn[int32]{name: spec.Column, id: id, kind: KindI32, values: parseEach(vals, parseInt32)}
	default:
		return &unsupportedColumn{name: spec.Column, id: id, length: numRows}
	}
}

func parseEach[T Numeric](vals []string, parse func(string) T) []T {
	out := make([]T, len(vals))
	for i, s := range vals {
		out[i] = parse(s)
	}
	return out
}

func joinComma(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += n
	}
	return out
}
