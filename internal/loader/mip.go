package loader

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/gift"
)

// DownsampleMip produces a coarser test fixture plane at roughly half the
// resolution of src, for exercising multi-resolution (mip) tile requests
// in tests without a real image pyramid. It round-trips through an 8-bit
// grayscale image and gift.Resize, repurposed here for resampling rather
// than blurring, so the result is a visually-representative coarse plane,
// not a precision-exact downsample — callers needing exact mip semantics
// must supply their own FileLoader.
func DownsampleMip(src []float32, width, height int32) (dst []float32, dstWidth, dstHeight int32) {
	lo, hi := normalizedRange(src)
	span := hi - lo
	if span <= 0 {
		span = 1
	}

	gray := image.NewGray(image.Rect(0, 0, int(width), int(height)))
	for y := int32(0); y < height; y++ {
		for x := int32(0); x < width; x++ {
			v := src[y*width+x]
			if v != v {
				gray.SetGray(int(x), int(y), color.Gray{Y: 0})
				continue
			}
			gray.SetGray(int(x), int(y), color.Gray{Y: uint8(255 * (v - lo) / span)})
		}
	}

	dstWidth = width / 2
	if dstWidth < 1 {
		dstWidth = 1
	}
	dstHeight = height / 2
	if dstHeight < 1 {
		dstHeight = 1
	}

	g := gift.New(gift.Resize(int(dstWidth), int(dstHeight), gift.LinearResampling))
	resized := image.NewGray(g.Bounds(gray.Bounds()))
	g.Draw(resized, gray)

	dst = make([]float32, dstWidth*dstHeight)
	for y := int32(0); y < dstHeight; y++ {
		for x := int32(0); x < dstWidth; x++ {
			level := resized.GrayAt(int(x), int(y)).Y
			dst[y*dstWidth+x] = lo + span*float32(level)/255
		}
	}
	return dst, dstWidth, dstHeight
}

func normalizedRange(src []float32) (lo, hi float32) {
	lo, hi = float32(math.Inf(1)), float32(math.Inf(-1))
	for _, v := range src {
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
	if math.IsInf(float64(lo), 1) {
		return 0, 0
	}
	return lo, hi
}
