package loader

import (
	"math"

	"github.com/aquilax/go-perlin"
)

// float32NaN returns a NaN value; split out for readability at call sites.
func float32NaN() float32 {
	return float32(math.NaN())
}

// perlinField wraps go-perlin to produce a deterministic scalar field over
// continuous coordinates, used here to stand in for astronomical pixel
// data in tests and demos.
type perlinField struct {
	p *perlin.Perlin
}

func newPerlinField(seed int64) *perlinField {
	// alpha=2.0, beta=2.0, n=3 octaves: standard default noise shape.
	return &perlinField{p: perlin.NewPerlin(2.0, 2.0, 3, seed)}
}

func (f *perlinField) at(x, y float64) float64 {
	return f.p.Noise2D(x, y)
}
