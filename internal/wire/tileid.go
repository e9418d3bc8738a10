// Package wire implements the binary framing used on the channel: the
// tile compression container, the 32-bit tile identifier packing, and the
// message-struct shapes for animation and catalog traffic. It pulls in no
// protobuf/websocket dependency — a real session layer serializes these
// onto whatever transport it owns. Byte layout follows fixed-bit-width,
// explicit-byte-order binary schema conventions, the same style an
// mbtiles binary schema and a pmtiles header use.
package wire

// Tile identifier bit layout: layer occupies the high bits, mip the low
// bits, with (x, y) recoverable via a fixed shift/mask in between.
// 4 bits mip, 12 bits x, 12 bits y, 4 bits layer.
const (
	mipBits = 4
	xBits = 12
	yBits = 12
	layerBits = 4

	mipMask = (1 << mipBits) - 1
	xMask = (1 << xBits) - 1
	yMask = (1 << yBits) - 1
	layerMask = (1 << layerBits) - 1

	xShift = mipBits
	yShift = mipBits + xBits
	layerShift = mipBits + xBits + yBits
)

// PackTileID packs (layer, x, y, mip) into the 32-bit tile identifier
// carried on raster tile messages . Values out of range for their
// field are masked, not rejected — callers are expected to pass values
// already validated against the image's own extents.
func PackTileID(layer, x, y, mip int32) int32 {
	return (layer&layerMask)<<layerShift | (y&yMask)<<yShift | (x&xMask)<<xShift | (mip & mipMask)
}

// UnpackTileID recovers (layer, x, y, mip) from a packed tile identifier.
func UnpackTileID(id int32) (layer, x, y, mip int32) {
	u := uint32(id)
	mip = int32(u & mipMask)
	x = int32((u >> xShift) & xMask)
	y = int32((u >> yShift) & yMask)
	layer = int32((u >> layerShift) & layerMask)
	return
}
