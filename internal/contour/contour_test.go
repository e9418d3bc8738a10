package contour

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var identityScale = [2]float64{1, 1}
var zeroOffset = [2]float64{0, 0}

// A 4x4 image entirely at 1.0, traced at level 0.5, produces an empty
// vertex stream and an empty segment list: every cell is entirely above
// the level, so no crossings exist.
func TestS3PlateauProducesEmptyOutput(t *testing.T) {
	const w, h = 4, 4
	img := make([]float32, w*h)
	for i := range img {
		img[i] = 1.0
	}

	results := Trace(context.Background(), img, w, h, []float32{0.5}, identityScale, zeroOffset)
	require.Len(t, results, 1)
	assert.Empty(t, results[0].Vertices)
	assert.Empty(t, results[0].SegmentOffsets)
}

// A single isolated peak produces one closed contour loop strictly inside
// the image, at a level between the peak and its surroundings.
func singlePeakImage(w, h int32) []float32 {
	img := make([]float32, w*h)
	cx, cy := float64(w)/2, float64(h)/2
	for y := int32(0); y < h; y++ {
		for x := int32(0); x < w; x++ {
			dx, dy := float64(x)-cx, float64(y)-cy
			dist := math.Sqrt(dx*dx + dy*dy)
			img[y*w+x] = float32(10.0 - dist)
		}
	}
	return img
}

// Every traced polyline either begins and ends at the image boundary, or
// closes (first vertex == last vertex).
func TestClosureProperty(t *testing.T) {
	const w, h = 20, 20
	img := singlePeakImage(w, h)

	results := Trace(context.Background(), img, w, h, []float32{8.0}, identityScale, zeroOffset)
	require.Len(t, results, 1)
	r := results[0]
	require.NotEmpty(t, r.SegmentOffsets, "expected at least one contour around the peak")

	polylines := splitPolylines(r)
	for i, p := range polylines {
		if len(p) < 4 {
			continue
		}
		first := [2]float32{p[0], p[1]}
		last := [2]float32{p[len(p)-2], p[len(p)-1]}
		closed := first == last
		onBoundary := func(x, y float32) bool {
			return x <= 0.001 || y <= 0.001 || x >= w-1-0.001 || y >= h-1-0.001
		}
		startsOrEndsOnBoundary := onBoundary(p[0], p[1]) || onBoundary(p[len(p)-2], p[len(p)-1])
		assert.Truef(t, closed || startsOrEndsOnBoundary, "polyline %d neither closes nor touches the boundary", i)
	}
}

// Tracing the same image and level twice yields byte-identical output
// (deterministic sign convention and saddle resolution).
func TestDeterminism(t *testing.T) {
	const w, h = 20, 20
	img := singlePeakImage(w, h)

	r1 := Trace(context.Background(), img, w, h, []float32{5.0, 8.0}, identityScale, zeroOffset)
	r2 := Trace(context.Background(), img, w, h, []float32{5.0, 8.0}, identityScale, zeroOffset)

	require.Len(t, r1, 2)
	require.Len(t, r2, 2)
	for i := range r1 {
		assert.Equal(t, r1[i].Vertices, r2[i].Vertices)
		assert.Equal(t, r1[i].SegmentOffsets, r2[i].SegmentOffsets)
	}
}

func TestNaNRegionsAreNotCrossed(t *testing.T) {
	const w, h = 10, 10
	img := make([]float32, w*h)
	for i := range img {
		img[i] = 5.0
	}
	// Blank out a whole quadrant with NaN.
	for y := int32(0); y < 5; y++ {
		for x := int32(0); x < 5; x++ {
			img[y*w+x] = float32(math.NaN())
		}
	}

	results := Trace(context.Background(), img, w, h, []float32{1.0}, identityScale, zeroOffset)
	require.Len(t, results, 1)
	// -FLT_MAX substituted for the NaN quadrant is always < 1.0, so a
	// crossing forms along the quadrant's edge; it must not wrap or produce
	// NaN/Inf vertices.
	for _, v := range results[0].Vertices {
		assert.False(t, math.IsNaN(float64(v)))
		assert.False(t, math.IsInf(float64(v), 0))
	}
}

func TestScaleAndOffsetApplied(t *testing.T) {
	const w, h = 20, 20
	img := singlePeakImage(w, h)

	scale := [2]float64{2, 3}
	offset := [2]float64{100, -50}
	results := Trace(context.Background(), img, w, h, []float32{8.0}, scale, offset)
	require.Len(t, results, 1)
	require.NotEmpty(t, results[0].Vertices)
	for i := 0; i < len(results[0].Vertices); i += 2 {
		assert.GreaterOrEqual(t, float64(results[0].Vertices[i]), 100-2.0-1.0)
	}
}

// splitPolylines slices a LevelResult's flat vertex stream into per-polyline
// point lists using SegmentOffsets, which are float-element indices into
// Vertices.
func splitPolylines(r LevelResult) [][]float32 {
	out := make([][]float32, len(r.SegmentOffsets))
	for i, start := range r.SegmentOffsets {
		end := int32(len(r.Vertices))
		if i+1 < len(r.SegmentOffsets) {
			end = r.SegmentOffsets[i+1]
		}
		out[i] = r.Vertices[start:end]
	}
	return out
}
