// Package smooth implements a separable 2-D Gaussian smoother: a
// NaN-aware weighted-average kernel applied as two 1-D passes, blocked so
// the temporary buffer between passes stays under a fixed budget. It
// generalizes an image-space gift.GaussianBlur from 8-bit RGBA pixels to
// NaN-aware float32 planes, which gift's filter chain cannot express.
package smooth

import "math"

// TempBufferBudgetMB bounds the temporary buffer used between the
// horizontal and vertical passes (SMOOTHING_TEMP_BUFFER_SIZE_MB).
const TempBufferBudgetMB = 200

// Kernel returns the (radius, unnormalized weights) for smoothing factor f
// (f >= 2): radius r = f-1, width 2r+1, sigma = (f-1)/2, symmetric normal
// PDF shape. Normalization happens per-output-pixel via division by the
// sum of weights over valid (non-NaN, finite) inputs, not here.
func Kernel(f int) (radius int, weights []float64) {
	r := f - 1
	sigma := float64(f-1) / 2.0
	width := 2*r + 1
	weights = make([]float64, width)
	if sigma <= 0 {
		// f == 1 is not a valid smoothing factor (spec requires f >= 2);
		// guard defensively rather than divide by zero.
		for i := range weights {
			weights[i] = 1
		}
		return r, weights
	}
	denom := 2 * sigma * sigma
	for i := 0; i < width; i++ {
		d := float64(i - r)
		weights[i] = math.Exp(-(d * d) / denom)
	}
	return r, weights
}

// OutputExtent returns the destination dimensions for a given source extent
// and smoothing factor: (srcWidth-2r) x (srcHeight-2r).
func OutputExtent(f int, srcWidth, srcHeight int32) (dstWidth, dstHeight int32) {
	r, _ := Kernel(f)
	return srcWidth - int32(2*r), srcHeight - int32(2*r)
}

// Gaussian smooths src (srcWidth x srcHeight, row-major float32) with
// factor f and writes the result into dst. dst must be at least
// OutputExtent(f, srcWidth, srcHeight) in size; if it is smaller, Gaussian
// returns false and leaves dst untouched.
//
// The implementation runs two separable passes (horizontal then vertical)
// through a temporary buffer sized to stay under TempBufferBudgetMB,
// processing buffer_height-2r output rows per block and clamping the final
// block.
func Gaussian(f int, src []float32, srcWidth, srcHeight int32, dst []float32) bool {
	r, weights := Kernel(f)
	dstWidth, dstHeight := OutputExtent(f, srcWidth, srcHeight)
	if dstWidth <= 0 || dstHeight <= 0 {
		return false
	}
	if int32(len(dst)) < dstWidth*dstHeight {
		return false
	}

	bufferHeight := bufferHeightFor(dstWidth, r)

	srcRow := int32(0)
	dstRow := int32(0)
	for dstRow < dstHeight {
		numLines := bufferHeight - int32(2*r)
		if numLines <= 0 {
			numLines = 1
		}
		if dstRow+numLines > dstHeight {
			numLines = dstHeight - dstRow // final iteration clamps
		}

		srcRowsNeeded := numLines + int32(2*r)
		temp := make([]float32, int(dstWidth)*int(srcRowsNeeded))

		// Horizontal pass: one row of src -> one row of temp, width
		// trimmed from srcWidth to dstWidth.
		for ty := int32(0); ty < srcRowsNeeded; ty++ {
			sy := srcRow + ty
			horizontalPass(src, srcWidth, sy, weights, r, temp[ty*dstWidth:(ty+1)*dstWidth])
		}

		// Vertical pass: dstWidth columns of temp -> numLines rows of dst.
		for ly := int32(0); ly < numLines; ly++ {
			verticalPass(temp, dstWidth, ly, weights, r, dst[(dstRow+ly)*dstWidth:(dstRow+ly+1)*dstWidth])
		}

		srcRow += numLines
		dstRow += numLines
	}
	return true
}

// bufferHeightFor picks a temp-buffer row count bounded by
// TempBufferBudgetMB but at least 4r
func bufferHeightFor(dstWidth int32, r int) int32 {
	maxFloats := int64(TempBufferBudgetMB) * 1024 * 1024 / 4
	bufferHeight := int32(maxFloats / int64(dstWidth))
	min := int32(4 * r)
	if min < 1 {
		min = 1
	}
	if bufferHeight < min {
		bufferHeight = min
	}
	return bufferHeight
}

// horizontalPass convolves one source row (at absolute row sy) into a
// dstWidth-wide output row, trimming r pixels from each side; out-of-range
// rows (negative or >= srcHeight, handled by caller bounding srcRowsNeeded)
// are not expected here since the caller only requests rows within
// [0, srcHeight).
func horizontalPass(src []float32, srcWidth, sy int32, weights []float64, r int, out []float32) {
	rowBase := sy * srcWidth
	for x := int32(0); x < int32(len(out)); x++ {
		var num, den float64
		for k := -r; k <= r; k++ {
			sx := x + int32(k) + int32(r)
			v := src[rowBase+sx]
			if isMaskedOut(v) {
				continue
			}
			w := weights[k+r]
			num += w * float64(v)
			den += w
		}
		out[x] = weightedResult(num, den)
	}
}

// verticalPass convolves dstWidth columns of temp, centered at output row
// ly (0-based within this block), into a dstWidth-wide output row.
func verticalPass(temp []float32, dstWidth, ly int32, weights []float64, r int, out []float32) {
	for x := int32(0); x < dstWidth; x++ {
		var num, den float64
		for k := -r; k <= r; k++ {
			ty := ly + int32(k) + int32(r)
			v := temp[ty*dstWidth+x]
			if isMaskedOut(v) {
				continue
			}
			w := weights[k+r]
			num += w * float64(v)
			den += w
		}
		out[x] = weightedResult(num, den)
	}
}

// isMaskedOut reports whether v must be excluded from both numerator and
// denominator: NaN or infinite
func isMaskedOut(v float32) bool {
	f := float64(v)
	return math.IsNaN(f) || math.IsInf(f, 0)
}

// weightedResult divides num/den, returning NaN if the total weight (den)
// is zero — i.e. every input in the kernel footprint was masked out.
func weightedResult(num, den float64) float32 {
	if den == 0 {
		return float32(math.NaN())
	}
	return float32(num / den)
}
