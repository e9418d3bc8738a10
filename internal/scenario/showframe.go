// Package scenario wires the core components into the end-to-end data
// flow for one rendered frame: TileCache -> Smoother -> Compressor ->
// Session.Sink. The single-method composition mirrors a generator that
// wires fetch -> render -> composite -> write behind one call; here the
// stages become cache load -> optional smooth -> compress -> emit.
package scenario

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MeKo-Tech/cartacore/internal/compress"
	"github.com/MeKo-Tech/cartacore/internal/corerr"
	"github.com/MeKo-Tech/cartacore/internal/session"
	"github.com/MeKo-Tech/cartacore/internal/smooth"
	"github.com/MeKo-Tech/cartacore/internal/tilecache"
	"github.com/MeKo-Tech/cartacore/internal/wire"
)

// RenderOptions configures one frame's render+encode pass.
type RenderOptions struct {
	// SmoothFactor is the Gaussian smoothing factor; 0 or 1 disables
	// smoothing.
	SmoothFactor int
	// CompressionType selects the tile container's framing arm.
	CompressionType wire.CompressionType
	// Precision is the fixed-precision quantizer's bit width, used only
	// when CompressionType != CompressionNone.
	Precision uint
	// Layer and Mip are carried into the packed tile identifier; a
	// single-resolution cache uses Layer=0, Mip=0.
	Layer, Mip int32
}

// Runner binds one session's cache, loader, and sink together to serve
// frames
type Runner struct {
	Cache *tilecache.Cache
	Sink session.Sink
	Logger *slog.Logger
}

// NewRunner constructs a Runner. logger may be nil (defaults to
// slog.Default()).
func NewRunner(cache *tilecache.Cache, sink session.Sink, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{Cache: cache, Sink: sink, Logger: logger}
}

// ShowFrame implements the data flow for one (channel, stokes) frame:
// for each requested tile, TileCache.Get (loading via FileLoader under the
// image mutex on miss), optional Smoother.Gaussian, then
// Compressor.Compress, then Sink.EmitRasterTile; once every tile has been
// emitted, Sink.EmitRasterTileSync closes the frame out.
// A per-tile failure is logged and skipped — a missing tile load is fatal
// to that tile only, not the whole frame; ShowFrame only returns an error
// for a failure that prevents the sync marker itself from being emitted.
func (r *Runner) ShowFrame(ctx context.Context, fileID string, channel, stokes int32, keys []tilecache.Key, opts RenderOptions) error {
	for _, key := range keys {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if err := r.showTile(ctx, fileID, channel, stokes, key, opts); err != nil {
			r.Logger.Warn("tile render failed, skipping", "file_id", fileID, "channel", channel, "stokes", stokes, "origin_x", key.OriginX, "origin_y", key.OriginY, "error", err)
		}
	}

	return r.Sink.EmitRasterTileSync(ctx, wire.RasterTileSync{Channel: channel, Stokes: stokes, EndSync: true})
}

func (r *Runner) showTile(ctx context.Context, fileID string, channel, stokes int32, key tilecache.Key, opts RenderOptions) error {
	tile, err := r.Cache.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("cache get: %w", err)
	}
	defer tile.Release()

	data := tile.Data
	width, height := int32(tilecache.TileSize), int32(tilecache.TileSize)

	if opts.SmoothFactor > 1 {
		dstW, dstH := smooth.OutputExtent(opts.SmoothFactor, width, height)
		smoothed := make([]float32, dstW*dstH)
		if !smooth.Gaussian(opts.SmoothFactor, data, width, height, smoothed) {
			return corerr.New(corerr.KindInvariant, "smoothing output extent mismatch", nil)
		}
		data, width, height = smoothed, dstW, dstH
	}

	container, precision, err := encodeTile(opts.CompressionType, data, int(width), int(height), opts.Precision)
	if err != nil {
		return fmt.Errorf("compress: %w", err)
	}

	x := key.OriginX / tilecache.TileSize
	y := key.OriginY / tilecache.TileSize
	tileID := wire.PackTileID(opts.Layer, x, y, opts.Mip)

	return r.Sink.EmitRasterTile(ctx, wire.RasterTileData{
		FileID: fileID,
		Channel: channel,
		Stokes: stokes,
		TileID: tileID,
		CompressionType: opts.CompressionType,
		Precision: precision,
		Width: width,
		Height: height,
		TileContainer: container,
	})
}

func encodeTile(compressionType wire.CompressionType, data []float32, width, height int, precision uint) ([]byte, uint32, error) {
	if compressionType == wire.CompressionNone {
		return wire.EncodeTileContainer(wire.CompressionNone, nil, nil, data), 0, nil
	}

	result, err := compress.Compress(data, width, height, precision)
	if err != nil {
		return nil, 0, err
	}
	return wire.EncodeTileContainer(wire.CompressionZFP, result.Compressed, result.NanRuns, nil), uint32(precision), nil
}
