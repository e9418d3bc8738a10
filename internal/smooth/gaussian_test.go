package smooth

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isNaN32(f float32) bool { return math.IsNaN(float64(f)) }

// A 10x10 image all 5.0, smoothed with factor 3 (r = 2), produces a 6x6
// output where every cell is 5.0.
func TestS4SmoothingOfUniformScenario(t *testing.T) {
	const w, h = 10, 10
	src := make([]float32, w*h)
	for i := range src {
		src[i] = 5.0
	}

	dstW, dstH := OutputExtent(3, w, h)
	require.EqualValues(t, 6, dstW)
	require.EqualValues(t, 6, dstH)

	dst := make([]float32, dstW*dstH)
	ok := Gaussian(3, src, w, h, dst)
	require.True(t, ok)

	for i, v := range dst {
		assert.InDeltaf(t, 5.0, v, 1e-4, "index %d", i)
	}
}

func TestReturnsFalseWhenDestinationTooSmall(t *testing.T) {
	src := make([]float32, 10*10)
	dst := make([]float32, 4) // far smaller than required 6x6=36
	ok := Gaussian(3, src, 10, 10, dst)
	assert.False(t, ok)
}

// If at least one input in the kernel footprint is finite, the output is
// finite; if all are non-finite, the output is NaN.
func TestNaNMaskingProperty(t *testing.T) {
	const w, h = 10, 10
	src := make([]float32, w*h)
	for i := range src {
		src[i] = float32(math.NaN())
	}
	// Leave a single finite pixel inside the footprint of output (2,2).
	src[2*w+2] = 42.0

	dstW, dstH := OutputExtent(3, w, h)
	dst := make([]float32, dstW*dstH)
	ok := Gaussian(3, src, w, h, dst)
	require.True(t, ok)

	found := false
	for _, v := range dst {
		if !isNaN32(v) {
			found = true
		}
	}
	assert.True(t, found, "expected at least one finite output near the single finite input")

	// Far corner output pixel's footprint never touches the one finite
	// source pixel, so it must remain NaN.
	farIdx := int(dstH-1)*int(dstW) + int(dstW-1)
	assert.True(t, isNaN32(dst[farIdx]))
}

func TestAllNaNProducesAllNaNOutput(t *testing.T) {
	const w, h = 8, 8
	src := make([]float32, w*h)
	for i := range src {
		src[i] = float32(math.NaN())
	}
	dstW, dstH := OutputExtent(2, w, h)
	dst := make([]float32, dstW*dstH)
	ok := Gaussian(2, src, w, h, dst)
	require.True(t, ok)
	for _, v := range dst {
		assert.True(t, isNaN32(v))
	}
}

func TestKernelIsSymmetric(t *testing.T) {
	r, weights := Kernel(4)
	assert.Equal(t, 3, r)
	assert.Len(t, weights, 7)
	for i := 0; i < len(weights)/2; i++ {
		assert.InDelta(t, weights[i], weights[len(weights)-1-i], 1e-9)
	}
}

func TestInfinityIsMaskedLikeNaN(t *testing.T) {
	const w, h = 10, 10
	src := make([]float32, w*h)
	for i := range src {
		src[i] = 1.0
	}
	src[5*w+5] = float32(math.Inf(1))

	dstW, dstH := OutputExtent(3, w, h)
	dst := make([]float32, dstW*dstH)
	ok := Gaussian(3, src, w, h, dst)
	require.True(t, ok)
	for _, v := range dst {
		assert.False(t, math.IsInf(float64(v), 0))
		assert.False(t, isNaN32(v))
	}
}

// A larger uniform image: correctness (uniform in -> uniform out) must hold
// across the whole output. With the default buffer budget a 600x600 image
// fits in a single block, so this does not exercise more than one block
// iteration.
func TestBlockedPassesAgreeAcrossLargeImage(t *testing.T) {
	const w, h = 600, 600
	src := make([]float32, w*h)
	for i := range src {
		src[i] = 3.5
	}
	dstW, dstH := OutputExtent(3, w, h)
	dst := make([]float32, dstW*dstH)
	ok := Gaussian(3, src, w, h, dst)
	require.True(t, ok)
	for i, v := range dst {
		assert.InDeltaf(t, 3.5, v, 1e-3, "index %d", i)
	}
}
