package catalog

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleVOTable = `<?xml version="1.0"?>
<VOTABLE>
  <RESOURCE>
    <TABLE>
      <FIELD name="ra" ID="col_ra" datatype="double" unit="deg" ucd="pos.eq.ra"/>
      <FIELD name="name" ID="col_name" datatype="char"/>
      <DATA>
        <TABLEDATA>
          <TR><TD>10.5</TD><TD>alpha</TD></TR>
          <TR><TD>20.25</TD><TD>beta</TD></TR>
        </TABLEDATA>
      </DATA>
    </TABLE>
  </RESOURCE>
</VOTABLE>`

func TestFromVOTableParsesNumericAndStringFields(t *testing.T) {
	tbl, err := FromVOTable([]byte(sampleVOTable))
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.NumRows())

	ra, ok := tbl.ColumnByName("ra")
	require.True(t, ok)
	assert.Equal(t, KindF64, ra.Kind())

	name, ok := tbl.ColumnByID("col_name")
	require.True(t, ok)
	assert.Equal(t, KindString, name.Kind())

	vals, _, ok := NewTableView(tbl).FillValues("name", 0, 2)
	require.True(t, ok)
	assert.Equal(t, []string{"alpha", "beta"}, vals)
}

func TestFromVOTableMarksUnknownDatatypeUnsupported(t *testing.T) {
	doc := `<VOTABLE><RESOURCE><TABLE>
      <FIELD name="blob" datatype="unsignedByte" arraysize="*"/>
      <DATA><TABLEDATA><TR><TD>x</TD></TR></TABLEDATA></DATA>
    </TABLE></RESOURCE></VOTABLE>`
	tbl, err := FromVOTable([]byte(doc))
	require.NoError(t, err)
	col, ok := tbl.ColumnByName("blob")
	require.True(t, ok)
	assert.Equal(t, KindUnsupported, col.Kind())
}

func TestFromFITSBinaryTableRoundTrip(t *testing.T) {
	fields := []FITSFieldSpec{
		{Name: "flux", ID: "flux", Kind: KindF32},
		{Name: "id", ID: "id", Kind: KindI32},
	}
	var buf bytes.Buffer
	rows := [][2]any{{float32(1.5), int32(7)}, {float32(-2.25), int32(9)}}
	for _, r := range rows {
		_ = binary.Write(&buf, binary.BigEndian, math.Float32bits(r[0].(float32)))
		_ = binary.Write(&buf, binary.BigEndian, uint32(r[1].(int32)))
	}

	tbl, err := FromFITSBinaryTable(fields, buf.Bytes(), 2)
	require.NoError(t, err)

	flux, ok := tbl.ColumnByName("flux")
	require.True(t, ok)
	assert.Equal(t, KindF32, flux.Kind())

	_, raw, ok := NewTableView(tbl).FillValues("id", 0, 2)
	require.True(t, ok)
	assert.Len(t, raw, 8) // two int32 values, 4 bytes each
}
