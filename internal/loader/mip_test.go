package loader

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDownsampleMipHalvesExtent(t *testing.T) {
	src := make([]float32, 16*16)
	for i := range src {
		src[i] = float32(i % 7)
	}
	dst, w, h := DownsampleMip(src, 16, 16)
	assert.Equal(t, int32(8), w)
	assert.Equal(t, int32(8), h)
	assert.Len(t, dst, 64)
}

func TestDownsampleMipHandlesAllNaN(t *testing.T) {
	src := make([]float32, 4*4)
	for i := range src {
		src[i] = float32(math.NaN())
	}
	dst, w, h := DownsampleMip(src, 4, 4)
	assert.Equal(t, int32(2), w)
	assert.Equal(t, int32(2), h)
	assert.Len(t, dst, 4)
}
