package compress

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isNaN32(f float32) bool { return math.IsNaN(float64(f)) }

// The block [1, NaN, NaN, 2] RLE-encodes to runs [1, 2, 1]; decompressing
// at precision 16 returns [1, NaN, NaN, 2] exactly.
func TestS2NanRLEScenario(t *testing.T) {
	src := []float32{1, float32(math.NaN()), float32(math.NaN()), 2}

	runs := GetNanEncodingsBlock(src, 4, 1)
	assert.Equal(t, []int32{1, 2, 1}, runs)

	res, err := Compress(src, 4, 1, 16)
	require.NoError(t, err)
	out, err := Decompress(res)
	require.NoError(t, err)

	require.Len(t, out, 4)
	assert.InDelta(t, 1.0, out[0], 1e-3)
	assert.True(t, isNaN32(out[1]))
	assert.True(t, isNaN32(out[2]))
	assert.InDelta(t, 2.0, out[3], 1e-3)
}

func TestRLESumInvariant(t *testing.T) {
	cases := [][]float32{
		{1, 2, 3, 4},
		{float32(math.NaN()), float32(math.NaN())},
		{1, float32(math.NaN()), 3, float32(math.NaN()), float32(math.NaN()), 6},
		{1, 2, 3},
	}
	for _, c := range cases {
		runs := GetNanEncodingsBlock(c, len(c), 1)
		assert.Equal(t, len(c), sumRuns(runs))
	}
}

func TestAllValidYieldsSingleRunAllNaNYieldsZeroThenNaNRun(t *testing.T) {
	allValid := []float32{1, 2, 3, 4}
	runs := GetNanEncodingsBlock(allValid, 4, 1)
	assert.Len(t, runs, 1)

	allNaN := []float32{float32(math.NaN()), float32(math.NaN())}
	runs = GetNanEncodingsBlock(allNaN, 2, 1)
	assert.Len(t, runs, 2) // [0, 2]: zero-length non-NaN run, then NaN run
	assert.Equal(t, int32(0), runs[0])
}

func TestRoundTripNanPositionsExact(t *testing.T) {
	nx, ny := 8, 8
	src := make([]float32, nx*ny)
	for i := range src {
		if i%7 == 0 {
			src[i] = float32(math.NaN())
		} else {
			src[i] = float32(i) * 0.5
		}
	}

	res, err := Compress(src, nx, ny, 20)
	require.NoError(t, err)
	out, err := Decompress(res)
	require.NoError(t, err)

	for i := range src {
		if isNaN32(src[i]) {
			assert.Truef(t, isNaN32(out[i]), "index %d expected NaN", i)
		} else {
			assert.False(t, isNaN32(out[i]))
		}
	}
}

func TestRoundTripBoundedErrorAtHighPrecision(t *testing.T) {
	nx, ny := 4, 4
	src := make([]float32, nx*ny)
	for i := range src {
		src[i] = float32(i) * 1.25
	}

	res, err := Compress(src, nx, ny, 24)
	require.NoError(t, err)
	out, err := Decompress(res)
	require.NoError(t, err)

	for i := range src {
		assert.InDelta(t, src[i], out[i], 0.01)
	}
}

func TestCompressFailsOnEmptyBlock(t *testing.T) {
	_, err := Compress(nil, 0, 0, 16)
	assert.Error(t, err)
}

func TestDecompressFailsOnTruncatedStream(t *testing.T) {
	src := []float32{1, 2, 3, 4}
	res, err := Compress(src, 4, 1, 16)
	require.NoError(t, err)

	truncated := res
	truncated.Compressed = truncated.Compressed[:quantHeaderSize]
	_, err = Decompress(truncated)
	assert.Error(t, err)
}

func TestSubstituteBlockMeansLeavesAllValidAndAllNaNUntouched(t *testing.T) {
	nx, ny := 4, 4
	allValid := make([]float32, nx*ny)
	for i := range allValid {
		allValid[i] = float32(i)
	}
	out := SubstituteBlockMeans(allValid, nx, ny)
	assert.Equal(t, allValid, out)

	allNaN := make([]float32, nx*ny)
	for i := range allNaN {
		allNaN[i] = float32(math.NaN())
	}
	out = SubstituteBlockMeans(allNaN, nx, ny)
	for _, v := range out {
		assert.True(t, isNaN32(v))
	}
}

func TestSubstituteBlockMeansFillsPartialBlockWithMean(t *testing.T) {
	nx, ny := 4, 4
	src := make([]float32, nx*ny)
	for i := range src {
		src[i] = 10
	}
	src[0] = float32(math.NaN())

	out := SubstituteBlockMeans(src, nx, ny)
	assert.InDelta(t, 10.0, out[0], 1e-6)
}

func TestGetNanEncodingsSimpleSubstitutesLastSeenValid(t *testing.T) {
	src := []float32{float32(math.NaN()), 1, float32(math.NaN()), float32(math.NaN()), 5}
	runs, out := GetNanEncodingsSimple(src, 0, len(src))

	assert.Equal(t, len(src), sumRuns(runs))
	// Leading NaN run (before any valid value) substituted with the first
	// valid value encountered (1).
	assert.InDelta(t, 1.0, out[0], 1e-6)
	assert.InDelta(t, 1.0, out[2], 1e-6)
	assert.InDelta(t, 1.0, out[3], 1e-6)
	assert.InDelta(t, 5.0, out[4], 1e-6)
}

func TestGetNanEncodingsSimpleAllNaNSubstitutesZero(t *testing.T) {
	src := []float32{float32(math.NaN()), float32(math.NaN())}
	_, out := GetNanEncodingsSimple(src, 0, len(src))
	for _, v := range out {
		assert.Equal(t, float32(0), v)
	}
}
