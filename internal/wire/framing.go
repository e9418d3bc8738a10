package wire

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"github.com/MeKo-Tech/cartacore/internal/corerr"
)

// CompressionType names the tile payload's encoding
type CompressionType int32

const (
	CompressionNone CompressionType = iota
	CompressionZFP
)

// EncodeTileContainer serializes one tile's compressed payload:
// `[u32 compressed_size][compressed_bytes][i32 rle_count][i32 rle_runs...]`
// for compressionType == ZFP (the fixed-precision quantizer's output in
// this implementation — see DESIGN.md for why no ZFP binding is used),
// or `[u32 byte_count][f32...]` with no RLE for CompressionNone.
func EncodeTileContainer(compressionType CompressionType, compressed []byte, nanRuns []int32, plain []float32) []byte {
	buf := new(bytes.Buffer)
	if compressionType == CompressionNone {
		_ = binary.Write(buf, binary.LittleEndian, uint32(len(plain)))
		for _, v := range plain {
			_ = binary.Write(buf, binary.LittleEndian, v)
		}
		return buf.Bytes()
	}

	_ = binary.Write(buf, binary.LittleEndian, uint32(len(compressed)))
	buf.Write(compressed)
	_ = binary.Write(buf, binary.LittleEndian, int32(len(nanRuns)))
	for _, r := range nanRuns {
		_ = binary.Write(buf, binary.LittleEndian, r)
	}
	return buf.Bytes()
}

// DecodeTileContainer reverses EncodeTileContainer. For CompressionNone,
// plain is populated and compressed/nanRuns are nil; otherwise compressed
// and nanRuns are populated and plain is nil.
func DecodeTileContainer(compressionType CompressionType, data []byte) (compressed []byte, nanRuns []int32, plain []float32, err error) {
	r := bytes.NewReader(data)

	if compressionType == CompressionNone {
		var count uint32
		if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
			return nil, nil, nil, corerr.New(corerr.KindDecodeFailure, "tile container: truncated byte_count", err)
		}
		plain = make([]float32, count)
		for i := range plain {
			var bits uint32
			if err := binary.Read(r, binary.LittleEndian, &bits); err != nil {
				return nil, nil, nil, corerr.New(corerr.KindDecodeFailure, "tile container: truncated float payload", err)
			}
			plain[i] = math.Float32frombits(bits)
		}
		return nil, nil, plain, nil
	}

	var compressedSize uint32
	if err := binary.Read(r, binary.LittleEndian, &compressedSize); err != nil {
		return nil, nil, nil, corerr.New(corerr.KindDecodeFailure, "tile container: truncated compressed_size", err)
	}
	compressed = make([]byte, compressedSize)
	if _, err := io.ReadFull(r, compressed); err != nil {
		return nil, nil, nil, corerr.New(corerr.KindDecodeFailure, "tile container: truncated compressed_bytes", err)
	}

	var runCount int32
	if err := binary.Read(r, binary.LittleEndian, &runCount); err != nil {
		return nil, nil, nil, corerr.New(corerr.KindDecodeFailure, "tile container: truncated rle_count", err)
	}
	nanRuns = make([]int32, runCount)
	for i := range nanRuns {
		if err := binary.Read(r, binary.LittleEndian, &nanRuns[i]); err != nil {
			return nil, nil, nil, corerr.New(corerr.KindDecodeFailure, "tile container: truncated rle_runs", err)
		}
	}
	return compressed, nanRuns, nil, nil
}
