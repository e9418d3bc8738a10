package cmd

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"net/http"
	"strconv"

	"github.com/disintegration/gift"

	"github.com/MeKo-Tech/cartacore/internal/loader"
	"github.com/MeKo-Tech/cartacore/internal/tilecache"
)

// previewHandler renders one tile as a grayscale PNG thumbnail for a
// human looking at the demo server in a browser — a debug aid distinct
// from the wire-format tile responses /frame produces. It reuses gift for
// the browser-friendly resize step; the NaN-aware smoothing pipeline
// itself (internal/smooth) stays hand-rolled since gift has no NaN-aware
// float32 path (see DESIGN.md).
func previewHandler(ldr *loader.Synthetic, cacheCapacity int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		channel, stokes, _ := parseFrameParams(r)
		originX, _ := strconv.Atoi(r.URL.Query().Get("x"))
		originY, _ := strconv.Atoi(r.URL.Query().Get("y"))

		cache, err := tilecache.New(ldr, cacheCapacity, channel, stokes)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		tile, err := cache.Get(r.Context(), tilecache.Key{OriginX: int32(originX), OriginY: int32(originY)})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defer tile.Release()

		gray := floatsToGray(tile.Data, tilecache.TileSize, tilecache.TileSize)

		g := gift.New(gift.Resize(512, 512, gift.LinearResampling))
		dst := image.NewGray(g.Bounds(gray.Bounds()))
		g.Draw(dst, gray)

		w.Header().Set("Content-Type", "image/png")
		_ = png.Encode(w, dst)
	}
}

// floatsToGray normalizes a row-major float32 plane to an 8-bit grayscale
// image, mapping NaN to black and the finite range to [0,255].
func floatsToGray(data []float32, width, height int) *image.Gray {
	lo, hi := float32(math.Inf(1)), float32(math.Inf(-1))
	for _, v := range data {
		if v != v {
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	span := hi - lo
	if span <= 0 {
		span = 1
	}

	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := data[y*width+x]
			if v != v {
				img.SetGray(x, y, color.Gray{Y: 0})
				continue
			}
			level := uint8(255 * (v - lo) / span)
			img.SetGray(x, y, color.Gray{Y: level})
		}
	}
	return img
}
