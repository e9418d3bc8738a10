package compress

import "github.com/MeKo-Tech/cartacore/internal/corerr"

// Result is the output of Compress: the fixed-precision encoded bytes plus
// the NaN run-length encoding needed to restore NaN positions on decode.
type Result struct {
	Compressed []byte
	NanRuns []int32
	NX, NY int
}

// Compress implements the pipeline: extract the NaN RLE, substitute
// NaNs with per-4x4-super-block means so the quantizer never observes a
// NaN, then fixed-precision encode. It fails iff the fixed-precision
// encoder produces zero bytes (e.g. an empty block).
func Compress(src []float32, nx, ny int, precision uint) (Result, error) {
	runs := GetNanEncodingsBlock(src, nx, ny)
	substituted := SubstituteBlockMeans(src, nx, ny)

	encoded := EncodeFixedPrecision(substituted, nx, ny, precision)
	if len(encoded) == 0 {
		return Result{}, corerr.New(corerr.KindDecodeFailure, "compress produced zero bytes", nil)
	}
	return Result{Compressed: encoded, NanRuns: runs, NX: nx, NY: ny}, nil
}

// Decompress restores a block from a Result: fixed-precision decode, then
// NaN re-insertion by walking NanRuns. The round-trip law: for any input
// where precision was >= the dynamic range requirement, NaN positions are
// restored exactly and non-NaN absolute error is bounded by the precision
// setting.
func Decompress(r Result) ([]float32, error) {
	dense, nx, ny, err := DecodeFixedPrecision(r.Compressed)
	if err != nil {
		return nil, err
	}
	if nx != r.NX || ny != r.NY {
		return nil, corerr.New(corerr.KindDecodeFailure, "decoded block dimensions mismatch result header", nil)
	}
	if sumRuns(r.NanRuns) != nx*ny {
		return nil, corerr.New(corerr.KindDecodeFailure, "NaN RLE sum does not match block size", nil)
	}
	return restoreNaNs(dense, r.NanRuns), nil
}
