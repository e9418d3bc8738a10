// Package session defines the external transport boundary: the typed
// message emission interface a real websocket/protobuf session would
// implement, and a Dispatcher that routes decoded requests to the core
// components that handle them. No transport is implemented here; the wire
// bytes live in internal/wire and the caller supplies whatever
// socket/session plumbing actually ships them. The handler-binding shape
// generalizes an HTTP handler that binds a data source, caches, and
// status tracking behind one struct, from "HTTP handler" to
// "decoded-message router".
package session

import (
	"context"

	"github.com/MeKo-Tech/cartacore/internal/wire"
)

// Sink is the typed-message emission surface a session implementation
// exposes to the core. The core calls these as it produces results; a
// concrete Sink serializes them onto its own transport.
type Sink interface {
	// EmitRasterTile sends one tile response. It may be called from any
	// goroutine participating in a frame's tile fan-out ("tile
	// responses may arrive in any order").
	EmitRasterTile(ctx context.Context, tile wire.RasterTileData) error

	// EmitRasterTileSync sends the end-of-sync marker that closes out one
	// frame's tile responses. Must be emitted last, after every
	// EmitRasterTile call for that frame has returned.
	EmitRasterTileSync(ctx context.Context, sync wire.RasterTileSync) error

	// EmitCatalogFilterResponse sends one chunk of a catalog filter
	// response (chunks of at most 100,000 rows, final chunk
	// progress == 1.0).
	EmitCatalogFilterResponse(ctx context.Context, resp wire.CatalogFilterResponse) error

	// EmitAnimationFrame sends one frame's tile set during animation
	// playback; a no-op default implementation may simply reuse
	// EmitRasterTile/EmitRasterTileSync per frame.
	EmitAnimationFrame(ctx context.Context, channel, stokes int32, tiles []wire.RasterTileData) error
}

// RequestHandlers is the set of core operations a Dispatcher routes
// decoded requests to. Each field is supplied by the embedding
// application (backed by tilecache.Cache, animation.Controller,
// catalog.TableView, etc.) — this package only wires the routing, not the
// implementations
type RequestHandlers struct {
	OpenCatalogFile func(ctx context.Context, req wire.OpenCatalogFile) (wire.OpenCatalogFileAck, error)
	CatalogFilterRequest func(ctx context.Context, req wire.CatalogFilterRequest, emit func(wire.CatalogFilterResponse) error) error
	StartAnimation func(ctx context.Context, req wire.StartAnimation) error
	AnimationFlowControl func(ctx context.Context, req wire.AnimationFlowControl) error
	StopAnimation func(ctx context.Context, req wire.StopAnimation) error
}

// Dispatcher binds one session's decoded-message stream to its handlers
// and Sink . It has no transport-level concerns: Dispatch is called
// once per decoded message by whatever owns the actual socket.
type Dispatcher struct {
	Sink Sink
	Handlers RequestHandlers
}

// NewDispatcher constructs a Dispatcher bound to sink and handlers.
func NewDispatcher(sink Sink, handlers RequestHandlers) *Dispatcher {
	return &Dispatcher{Sink: sink, Handlers: handlers}
}

// DispatchOpenCatalogFile routes an OpenCatalogFile request to its
// handler and returns the ack
func (d *Dispatcher) DispatchOpenCatalogFile(ctx context.Context, req wire.OpenCatalogFile) (wire.OpenCatalogFileAck, error) {
	if d.Handlers.OpenCatalogFile == nil {
		return wire.OpenCatalogFileAck{FileID: req.FileID, Success: false, Message: "no catalog handler bound"}, nil
	}
	return d.Handlers.OpenCatalogFile(ctx, req)
}

// DispatchCatalogFilterRequest routes a CatalogFilterRequest, streaming
// chunked responses through d.Sink.EmitCatalogFilterResponse as the
// handler produces them.
func (d *Dispatcher) DispatchCatalogFilterRequest(ctx context.Context, req wire.CatalogFilterRequest) error {
	if d.Handlers.CatalogFilterRequest == nil {
		return nil
	}
	return d.Handlers.CatalogFilterRequest(ctx, req, func(resp wire.CatalogFilterResponse) error {
		return d.Sink.EmitCatalogFilterResponse(ctx, resp)
	})
}

// DispatchStartAnimation routes a StartAnimation request.
func (d *Dispatcher) DispatchStartAnimation(ctx context.Context, req wire.StartAnimation) error {
	if d.Handlers.StartAnimation == nil {
		return nil
	}
	return d.Handlers.StartAnimation(ctx, req)
}

// DispatchAnimationFlowControl routes an AnimationFlowControl
// acknowledgement.
func (d *Dispatcher) DispatchAnimationFlowControl(ctx context.Context, req wire.AnimationFlowControl) error {
	if d.Handlers.AnimationFlowControl == nil {
		return nil
	}
	return d.Handlers.AnimationFlowControl(ctx, req)
}

// DispatchStopAnimation routes a StopAnimation request.
func (d *Dispatcher) DispatchStopAnimation(ctx context.Context, req wire.StopAnimation) error {
	if d.Handlers.StopAnimation == nil {
		return nil
	}
	return d.Handlers.StopAnimation(ctx, req)
}
