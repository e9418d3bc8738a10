// Package contour implements a multi-level marching-squares tracer:
// deterministic iso-line extraction, parallelized across levels, each
// level producing a vertex stream plus polyline segment offsets — the
// same vertex-stream-plus-offsets shape a GeoJSON line-string converter
// produces. Concurrency follows internal/threading.ForEachLevel: levels are
// partitioned across the worker pool, each writing a disjoint output slot.
package contour

import (
	"context"
	"math"

	"github.com/MeKo-Tech/cartacore/internal/threading"
)

// negInf stands in for -FLT_MAX: NaNs are replaced with this sentinel
// before tracing so iso-lines never cross into a NaN region.
const negInf = -math.MaxFloat32

// LevelResult is one level's output: a flat (x,y)-pair vertex stream and
// the float-element offsets into Vertices at which each polyline begins.
type LevelResult struct {
	Level float32
	Vertices []float32 // interleaved x0,y0,x1,y1,...
	SegmentOffsets []int32 // index into Vertices (2 floats per vertex), not a vertex count, of each polyline's first point
}

// Trace runs marching squares at every level in levels against img (width x
// height, row-major float32), scaling image-space vertices by scale and
// offsetting by offset ((vx,vy) = (px*scale[0]+offset[0], py*scale[1]+offset[1])).
// Levels are processed in parallel, partitioned across the threading
// Manager's workers, each level writing only to its own result slot.
func Trace(ctx context.Context, img []float32, width, height int32, levels []float32, scale, offset [2]float64) []LevelResult {
	sanitized := sanitize(img)
	results := make([]LevelResult, len(levels))

	mgr := threading.New(0)
	mgr.ForEachLevel(ctx, len(levels), func(i int) {
		results[i] = traceLevel(sanitized, width, height, levels[i], scale, offset)
	})
	return results
}

// sanitize replaces NaNs with -FLT_MAX in a single read-only pre-pass,
// shared by all levels ("the shared source array is read-only after
// NaN sanitization, which is a single pre-pass").
func sanitize(img []float32) []float32 {
	out := make([]float32, len(img))
	for i, v := range img {
		if math.IsNaN(float64(v)) {
			out[i] = negInf
		} else {
			out[i] = v
		}
	}
	return out
}
