package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/cartacore/internal/wire"
)

type recordingSink struct {
	tiles     []wire.RasterTileData
	syncs     []wire.RasterTileSync
	catalog   []wire.CatalogFilterResponse
	animation int
}

func (s *recordingSink) EmitRasterTile(_ context.Context, tile wire.RasterTileData) error {
	s.tiles = append(s.tiles, tile)
	return nil
}

func (s *recordingSink) EmitRasterTileSync(_ context.Context, sync wire.RasterTileSync) error {
	s.syncs = append(s.syncs, sync)
	return nil
}

func (s *recordingSink) EmitCatalogFilterResponse(_ context.Context, resp wire.CatalogFilterResponse) error {
	s.catalog = append(s.catalog, resp)
	return nil
}

func (s *recordingSink) EmitAnimationFrame(_ context.Context, _, _ int32, _ []wire.RasterTileData) error {
	s.animation++
	return nil
}

func TestDispatcherRoutesOpenCatalogFile(t *testing.T) {
	sink := &recordingSink{}
	called := false
	d := NewDispatcher(sink, RequestHandlers{
		OpenCatalogFile: func(_ context.Context, req wire.OpenCatalogFile) (wire.OpenCatalogFileAck, error) {
			called = true
			return wire.OpenCatalogFileAck{FileID: req.FileID, Success: true, NumRows: 3}, nil
		},
	})
	ack, err := d.DispatchOpenCatalogFile(context.Background(), wire.OpenCatalogFile{FileID: "f1"})
	require.NoError(t, err)
	assert.True(t, called)
	assert.True(t, ack.Success)
	assert.Equal(t, int32(3), ack.NumRows)
}

func TestDispatcherMissingHandlerReturnsFailureAck(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(sink, RequestHandlers{})
	ack, err := d.DispatchOpenCatalogFile(context.Background(), wire.OpenCatalogFile{FileID: "f1"})
	require.NoError(t, err)
	assert.False(t, ack.Success)
}

func TestDispatcherStreamsCatalogFilterChunksThroughSink(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(sink, RequestHandlers{
		CatalogFilterRequest: func(_ context.Context, _ wire.CatalogFilterRequest, emit func(wire.CatalogFilterResponse) error) error {
			if err := emit(wire.CatalogFilterResponse{FileID: "f1", Progress: 0.5}); err != nil {
				return err
			}
			return emit(wire.CatalogFilterResponse{FileID: "f1", Progress: 1.0})
		},
	})
	err := d.DispatchCatalogFilterRequest(context.Background(), wire.CatalogFilterRequest{FileID: "f1"})
	require.NoError(t, err)
	require.Len(t, sink.catalog, 2)
	assert.Equal(t, 1.0, sink.catalog[1].Progress)
}

func TestDispatcherRoutesAnimationMessages(t *testing.T) {
	sink := &recordingSink{}
	var started, flowed, stopped bool
	d := NewDispatcher(sink, RequestHandlers{
		StartAnimation:       func(context.Context, wire.StartAnimation) error { started = true; return nil },
		AnimationFlowControl: func(context.Context, wire.AnimationFlowControl) error { flowed = true; return nil },
		StopAnimation:        func(context.Context, wire.StopAnimation) error { stopped = true; return nil },
	})
	ctx := context.Background()
	require.NoError(t, d.DispatchStartAnimation(ctx, wire.StartAnimation{FileID: "f1"}))
	require.NoError(t, d.DispatchAnimationFlowControl(ctx, wire.AnimationFlowControl{FileID: "f1"}))
	require.NoError(t, d.DispatchStopAnimation(ctx, wire.StopAnimation{FileID: "f1"}))
	assert.True(t, started)
	assert.True(t, flowed)
	assert.True(t, stopped)
}
