package cmd

import (
	"context"
	"log/slog"

	"github.com/MeKo-Tech/cartacore/internal/session"
	"github.com/MeKo-Tech/cartacore/internal/wire"
)

var _ session.Sink = (*loggingSink)(nil)

// loggingSink is a demo session.Sink that logs each emission instead of
// serializing it onto a real transport, since the transport is explicitly
// out of scope . It tallies counts for the /frame endpoint's JSON
// summary.
type loggingSink struct {
	logger *slog.Logger

	tileCount int
	totalBytes int
}

func (s *loggingSink) EmitRasterTile(_ context.Context, tile wire.RasterTileData) error {
	s.tileCount++
	s.totalBytes += len(tile.TileContainer)
	s.logger.Debug("tile emitted",
		"channel", tile.Channel, "stokes", tile.Stokes, "tile_id", tile.TileID,
		"width", tile.Width, "height", tile.Height, "bytes", len(tile.TileContainer))
	return nil
}

func (s *loggingSink) EmitRasterTileSync(_ context.Context, sync wire.RasterTileSync) error {
	s.logger.Info("frame sync", "channel", sync.Channel, "stokes", sync.Stokes, "end_sync", sync.EndSync, "tiles", s.tileCount)
	return nil
}

func (s *loggingSink) EmitCatalogFilterResponse(_ context.Context, resp wire.CatalogFilterResponse) error {
	s.logger.Info("catalog filter response", "file_id", resp.FileID, "progress", resp.Progress, "rows", resp.NumRows)
	return nil
}

func (s *loggingSink) EmitAnimationFrame(_ context.Context, channel, stokes int32, tiles []wire.RasterTileData) error {
	s.logger.Info("animation frame", "channel", channel, "stokes", stokes, "tiles", len(tiles))
	return nil
}
