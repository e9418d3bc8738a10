package catalog

import (
	"encoding/binary"
	"math"

	"github.com/MeKo-Tech/cartacore/internal/corerr"
)

// FITSFieldSpec describes one column of a FITS binary table's TFORM/TTYPE
// header pair: a name, id, unit, UCD and element kind. Each field holds one
// element per row (no repeat count is carried). Parsing the raw FITS header itself
// is out of scope; callers are expected to have already read TFORM/TTYPE
// via their own FITS access and pass the decoded layout here.
type FITSFieldSpec struct {
	Name, ID, Unit, UCD string
	Kind                Kind
}

// FromFITSBinaryTable builds a Table from a raw, row-major FITS binary
// table data segment (native FITS byte order is big-endian) given its
// column layout. numRows * rowStride must equal len(data); rowStride is
// the sum of each field's element width.
func FromFITSBinaryTable(fields []FITSFieldSpec, data []byte, numRows int) (*Table, error) {
	rowStride := 0
	for _, f := range fields {
		rowStride += fitsElementSize(f.Kind)
	}
	if numRows*rowStride != len(data) {
		return nil, corerr.New(corerr.KindInputValidation, "FITS binary table size mismatch", nil)
	}

	b := newBuilder(numRows)
	offset := 0
	for _, f := range fields {
		col, err := fitsColumn(f, data, offset, rowStride, numRows)
		if err != nil {
			return nil, err
		}
		b.add(col)
		offset += fitsElementSize(f.Kind)
	}
	return b.build()
}

func fitsElementSize(k Kind) int {
	switch k {
	case KindU8, KindI8, KindBool:
		return 1
	case KindU16, KindI16:
		return 2
	case KindU32, KindI32, KindF32:
		return 4
	case KindU64, KindI64, KindF64:
		return 8
	default:
		return 0
	}
}

func fitsColumn(f FITSFieldSpec, data []byte, fieldOffset, rowStride, numRows int) (Column, error) {
	readAt := func(row int) []byte {
		base := row*rowStride + fieldOffset
		return data[base : base+fitsElementSize(f.Kind)]
	}

	switch f.Kind {
	case KindF32:
		vals := make([]float32, numRows)
		for r := range vals {
			vals[r] = math.Float32frombits(binary.BigEndian.Uint32(readAt(r)))
		}
		return &numericColumn[float32]{name: f.Name, id: f.ID, unit: f.Unit, ucd: f.UCD, kind: KindF32, values: vals}, nil
	case KindF64:
		vals := make([]float64, numRows)
		for r := range vals {
			vals[r] = math.Float64frombits(binary.BigEndian.Uint64(readAt(r)))
		}
		return &numericColumn[float64]{name: f.Name, id: f.ID, unit: f.Unit, ucd: f.UCD, kind: KindF64, values: vals}, nil
	case KindI32:
		vals := make([]int32, numRows)
		for r := range vals {
			vals[r] = int32(binary.BigEndian.Uint32(readAt(r)))
		}
		return &numericColumn[int32]{name: f.Name, id: f.ID, unit: f.Unit, ucd: f.UCD, kind: KindI32, values: vals}, nil
	case KindI64:
		vals := make([]int64, numRows)
		for r := range vals {
			vals[r] = int64(binary.BigEndian.Uint64(readAt(r)))
		}
		return &numericColumn[int64]{name: f.Name, id: f.ID, unit: f.Unit, ucd: f.UCD, kind: KindI64, values: vals}, nil
	case KindI16:
		vals := make([]int16, numRows)
		for r := range vals {
			vals[r] = int16(binary.BigEndian.Uint16(readAt(r)))
		}
		return &numericColumn[int16]{name: f.Name, id: f.ID, unit: f.Unit, ucd: f.UCD, kind: KindI16, values: vals}, nil
	case KindU8:
		vals := make([]uint8, numRows)
		for r := range vals {
			vals[r] = readAt(r)[0]
		}
		return &numericColumn[uint8]{name: f.Name, id: f.ID, unit: f.Unit, ucd: f.UCD, kind: KindU8, values: vals}, nil
	case KindBool:
		vals := make([]bool, numRows)
		for r := range vals {
			vals[r] = readAt(r)[0] != 0
		}
		return &numericColumn[bool]{name: f.Name, id: f.ID, unit: f.Unit, ucd: f.UCD, kind: KindBool, values: vals}, nil
	default:
		return &unsupportedColumn{name: f.Name, id: f.ID, length: numRows}, nil
	}
}
