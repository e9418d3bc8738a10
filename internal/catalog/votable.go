package catalog

import (
	"encoding/xml"
	"strconv"

	"github.com/MeKo-Tech/cartacore/internal/corerr"
)

// votableDoc mirrors just enough of the VOTable schema to build a Table:
// one <TABLE> with <FIELD> headers and <TABLEDATA><TR><TD>...</TD></TR></TABLEDATA>
// rows. Only the name, ID, datatype, unit, and ucd FIELD attributes are
// read; everything else in the schema is ignored. No dedicated VOTable
// parser library is used (see DESIGN.md), so this is a deliberately
// minimal encoding/xml-based reader.
type votableDoc struct {
	XMLName xml.Name `xml:"VOTABLE"`
	Table votableTable `xml:"RESOURCE>TABLE"`
}

type votableTable struct {
	Fields []votableField `xml:"FIELD"`
	Data votableData `xml:"DATA"`
}

type votableField struct {
	Name string `xml:"name,attr"`
	ID string `xml:"ID,attr"`
	Datatype string `xml:"datatype,attr"`
	Unit string `xml:"unit,attr"`
	UCD string `xml:"ucd,attr"`
}

type votableData struct {
	TableData votableTableData `xml:"TABLEDATA"`
}

type votableTableData struct {
	Rows []votableRow `xml:"TR"`
}

type votableRow struct {
	Cells []string `xml:"TD"`
}

// FromVOTable parses a VOTable XML document into a Table, one column per
// <FIELD>. Unknown/unsupported datatype attributes become unsupportedColumn
// entries whose rows are never materialized.
func FromVOTable(xmlData []byte) (*Table, error) {
	var doc votableDoc
	if err := xml.Unmarshal(xmlData, &doc); err != nil {
		return nil, corerr.New(corerr.KindDecodeFailure, "parse VOTable XML", err)
	}

	numRows := len(doc.Table.Data.TableData.Rows)
	b := newBuilder(numRows)

	for ci, f := range doc.Table.Fields {
		col, err := votableColumn(f, doc.Table.Data.TableData.Rows, ci, numRows)
		if err != nil {
			return nil, err
		}
		b.add(col)
	}
	return b.build()
}

func votableColumn(f votableField, rows []votableRow, ci, numRows int) (Column, error) {
	cell := func(r int) string {
		if ci < len(rows[r].Cells) {
			return rows[r].Cells[ci]
		}
		return ""
	}

	switch f.Datatype {
	case "char", "unicodeChar":
		vals := make([]string, numRows)
		for r := range vals {
			vals[r] = cell(r)
		}
		return &stringColumn{name: f.Name, id: votableID(f), description: "", unit: f.Unit, ucd: f.UCD, values: vals}, nil
	case "float":
		return votableNumeric(f, rows, ci, numRows, KindF32, parseFloat32), nil
	case "double":
		return votableNumeric(f, rows, ci, numRows, KindF64, parseFloat64), nil
	case "int":
		return votableNumeric(f, rows, ci, numRows, KindI32, parseInt32), nil
	case "long":
		return votableNumeric(f, rows, ci, numRows, KindI64, parseInt64), nil
	case "short":
		return votableNumeric(f, rows, ci, numRows, KindI16, parseInt16), nil
	case "boolean":
		return votableNumeric(f, rows, ci, numRows, KindBool, parseBool), nil
	default:
		return &unsupportedColumn{name: f.Name, id: votableID(f), length: numRows}, nil
	}
}

func votableID(f votableField) string {
	if f.ID != "" {
		return f.ID
	}
	return f.Name
}

func votableNumeric[T Numeric](f votableField, rows []votableRow, ci, numRows int, kind Kind, parse func(string) T) Column {
	vals := make([]T, numRows)
	for r := range vals {
		var s string
		if ci < len(rows[r].Cells) {
			s = rows[r].Cells[ci]
		}
		vals[r] = parse(s)
	}
	return &numericColumn[T]{name: f.Name, id: votableID(f), unit: f.Unit, ucd: f.UCD, kind: kind, values: vals}
}

func parseFloat32(s string) float32 {
	v, _ := strconv.ParseFloat(s, 32)
	return float32(v)
}
func parseFloat64(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
func parseInt32(s string) int32 {
	v, _ := strconv.ParseInt(s, 10, 32)
	return int32(v)
}
func parseInt64(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}
func parseInt16(s string) int16 {
	v, _ := strconv.ParseInt(s, 10, 16)
	return int16(v)
}
func parseBool(s string) bool {
	return s == "1" || s == "true" || s == "T"
}
