package wire

// RasterTileData is one tile response's payload. CompressionType selects
// which arm of the container framing TileContainer holds.
type RasterTileData struct {
	FileID string
	Channel, Stokes int32
	TileID int32
	CompressionType CompressionType
	Precision uint32
	Width, Height int32
	TileContainer []byte
}

// RasterTileSync marks the end of one frame's tile responses.
type RasterTileSync struct {
	Channel, Stokes int32
	EndSync bool
}

// StartAnimation requests playback over [First, Last] starting at Start,
// stepping by Delta, at FrameRate frames per second.
type StartAnimation struct {
	FileID string
	First, Last int32
	Start, Delta int32
	FrameRate float64
	Looping bool
	ReverseAtEnd bool
	AlwaysWait bool
	Tiles []int32
	CompressionType CompressionType
	CompressionQuality uint32
}

// AnimationFlowControl acknowledges receipt of frames up to ReceivedFrame,
// letting the playback loop advance its flow window.
type AnimationFlowControl struct {
	FileID string
	ReceivedFrame int32
	AnimationID int32
	Timestamp int64
}

// StopAnimation requests playback stop.
type StopAnimation struct {
	FileID string
	EndFrame int32
}

// OpenCatalogFile requests a catalog be opened and previewed.
type OpenCatalogFile struct {
	FileID string
	Path string
	PreviewRows int32
}

// CatalogColumnPreview carries one column's header plus a small sample of
// leading values ("preview rows per column").
type CatalogColumnPreview struct {
	Name, ID, Unit, UCD string
	Kind int32
	PreviewValues []string
}

// OpenCatalogFileAck is the reply to OpenCatalogFile.
type OpenCatalogFileAck struct {
	FileID string
	Success bool
	Message string
	NumRows int32
	Columns []CatalogColumnPreview
}

// FilterConfig is one column predicate within a CatalogFilterRequest.
type FilterConfig struct {
	Column string
	Op int32
	Value, Value2 float64
	StringNeedle string
	CaseInsensitive bool
}

// CatalogFilterRequest requests a filtered/sorted subset of a previously
// opened catalog.
type CatalogFilterRequest struct {
	FileID string
	FilterConfigs []FilterConfig
	SortColumn string
	SortAscending bool
	SubsetStartIndex int32
	SubsetDataSize int32
	ColumnIndices []int32
}

// catalogFilterChunkRows is the per-message row cap: filter responses are
// emitted in chunks of at most this many rows.
const catalogFilterChunkRows = 100000

// CatalogFilterResponse is one partial response chunk to a
// CatalogFilterRequest. The final chunk in a sequence carries
// Progress == 1.0.
type CatalogFilterResponse struct {
	FileID string
	Progress float64
	NumRows int32
	Columns map[string][]byte // column name -> packed values for this chunk
	StringCols map[string][]string
}

// ChunkRowRanges splits [0, totalRows) into contiguous chunks of at most
// catalogFilterChunkRows rows each. The last returned range's end always
// equals totalRows.
func ChunkRowRanges(totalRows int) [][2]int {
	if totalRows <= 0 {
		return nil
	}
	var ranges [][2]int
	for start := 0; start < totalRows; start += catalogFilterChunkRows {
		end := start + catalogFilterChunkRows
		if end > totalRows {
			end = totalRows
		}
		ranges = append(ranges, [2]int{start, end})
	}
	return ranges
}

// ProgressFor computes the progress value for the chunk ending at
// rowsSoFar out of totalRows; the last chunk carries progress 1.0.
func ProgressFor(rowsSoFar, totalRows int) float64 {
	if totalRows <= 0 {
		return 1.0
	}
	p := float64(rowsSoFar) / float64(totalRows)
	if p > 1.0 {
		p = 1.0
	}
	return p
}
