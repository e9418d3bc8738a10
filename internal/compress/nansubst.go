package compress

import "math"

// superBlock is the aligned edge length used by the substitution pass
// that runs before the fixed-precision encoder. The quantizer itself does
// not work in blocks: it uses one min/max range for the whole nx*ny block.
const superBlock = 4

// SubstituteBlockMeans replaces NaNs with the mean of the valid values in
// each aligned 4x4 super-block, leaving all-valid or all-NaN super-blocks
// untouched. Edge super-blocks are clamped to the image extent. It returns
// a new slice; src is not mutated.
func SubstituteBlockMeans(src []float32, nx, ny int) []float32 {
	out := make([]float32, len(src))
	copy(out, src)

	for by := 0; by < ny; by += superBlock {
		ymax := by + superBlock
		if ymax > ny {
			ymax = ny
		}
		for bx := 0; bx < nx; bx += superBlock {
			xmax := bx + superBlock
			if xmax > nx {
				xmax = nx
			}

			sum := 0.0
			count := 0
			anyNaN := false
			for y := by; y < ymax; y++ {
				for x := bx; x < xmax; x++ {
					v := src[y*nx+x]
					if math.IsNaN(float64(v)) {
						anyNaN = true
						continue
					}
					sum += float64(v)
					count++
				}
			}
			if !anyNaN || count == 0 {
				// all-valid (nothing to substitute) or all-NaN (nothing
				// to substitute with) — leave untouched.
				continue
			}
			mean := float32(sum / float64(count))
			for y := by; y < ymax; y++ {
				for x := bx; x < xmax; x++ {
					if math.IsNaN(float64(src[y*nx+x])) {
						out[y*nx+x] = mean
					}
				}
			}
		}
	}
	return out
}

// GetNanEncodingsSimple returns the NaN RLE for src[offset:offset+length]
// together with a substituted (NaN-free) copy, using the fallback strategy
// for 1-D or non-blocked paths: each NaN is replaced with the last seen
// valid value. An initial NaN run (before any valid value has been seen)
// is replaced with the first valid value encountered anywhere in the run
// if one exists, otherwise 0.
func GetNanEncodingsSimple(src []float32, offset, length int) ([]int32, []float32) {
	window := src[offset : offset+length]
	runs := rleOf(window, length)

	out := make([]float32, length)
	copy(out, window)

	firstValid, hasValid := firstValidValue(window)

	lastValid := firstValid
	haveLast := false
	for i, v := range window {
		if math.IsNaN(float64(v)) {
			if haveLast {
				out[i] = lastValid
			} else if hasValid {
				out[i] = firstValid
			} else {
				out[i] = 0
			}
			continue
		}
		lastValid = v
		haveLast = true
	}
	return runs, out
}

func firstValidValue(window []float32) (float32, bool) {
	for _, v := range window {
		if !math.IsNaN(float64(v)) {
			return v, true
		}
	}
	return 0, false
}
