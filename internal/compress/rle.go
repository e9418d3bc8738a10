// Package compress implements a NaN-sanitizing fixed-precision 2-D float
// compression pipeline: NaN run-length extraction, NaN substitution so
// the lossy quantizer never observes a NaN, and a fixed-precision
// encode/decode pair with a lossless NaN-position round-trip.
package compress

import "math"

// GetNanEncodingsBlock walks src (nx*ny elements, row-major) and emits
// alternating run-lengths starting with a count of non-NaN values (the
// first run may be zero). sum(runs) == nx*ny always holds. An all-valid
// block yields a single-element RLE [nx*ny]; an all-NaN block yields
// [0, nx*ny], since the first run always counts non-NaN values.
func GetNanEncodingsBlock(src []float32, nx, ny int) []int32 {
	return rleOf(src, nx*ny)
}

// rleOf is the shared RLE walker used by both the blocked and simple paths:
// the substitution strategy differs, but the run-length bookkeeping does
// not.
func rleOf(src []float32, n int) []int32 {
	if n == 0 {
		return []int32{0}
	}
	runs := make([]int32, 0, 4)
	curNaN := math.IsNaN(float64(src[0]))
	var run int32
	if curNaN {
		runs = append(runs, 0) // first run (non-NaN) is zero
	}
	for i := 0; i < n; i++ {
		isNaN := math.IsNaN(float64(src[i]))
		if isNaN == curNaN {
			run++
			continue
		}
		runs = append(runs, run)
		run = 1
		curNaN = isNaN
	}
	runs = append(runs, run)
	return runs
}

// sumRuns returns sum(runs), used by callers to validate that the RLE
// runs account for every element of the original block.
func sumRuns(runs []int32) int {
	total := 0
	for _, r := range runs {
		total += int(r)
	}
	return total
}

// restoreNaNs walks runs and re-inserts NaN at the positions the RLE
// marked, over a fully-decoded (substituted-value) slice of the same
// length — every position, NaN or not, already holds a decoded quantized
// value; restoreNaNs only overwrites the NaN-run positions.
func restoreNaNs(decoded []float32, runs []int32) []float32 {
	out := make([]float32, len(decoded))
	copy(out, decoded)
	pos := 0
	isNaNRun := false
	for _, run := range runs {
		if isNaNRun {
			for i := int32(0); i < run; i++ {
				out[pos] = float32(math.NaN())
				pos++
			}
		} else {
			pos += int(run)
		}
		isNaNRun = !isNaNRun
	}
	return out
}

// denseNonNaN extracts the non-NaN values of src, in order — the inverse
// half of restoreNaNs.
func denseNonNaN(src []float32) []float32 {
	out := make([]float32, 0, len(src))
	for _, v := range src {
		if !math.IsNaN(float64(v)) {
			out = append(out, v)
		}
	}
	return out
}
