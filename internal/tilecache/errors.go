package tilecache

import "errors"

// errCapacity is returned by New when constructed with capacity <= 0:
// capacity zero is rejected at construction rather than silently clamped.
var errCapacity = errors.New("tilecache: capacity must be positive")
