package compress

import (
	"encoding/binary"
	"math"

	"github.com/MeKo-Tech/cartacore/internal/corerr"
)

// No ZFP (or fpzip-equivalent) binding is used (see DESIGN.md). This is a
// dependency-free fixed-point quantizer standing in for a 2-D
// precision-mode compressor: it stores a per-block min/max and packs each
// sample into `precision` bits of linear range, giving bounded numeric
// error governed by precision, deterministic output, and a concrete byte
// format for the wire container, without requiring an external codec.
// Layout: [4 bytes min float32][4 bytes max float32][4 bytes nx][4 bytes
// ny][1 byte precision][packed bit-stream].
const quantHeaderSize = 4 + 4 + 4 + 4 + 1

// EncodeFixedPrecision quantizes a NaN-free nx*ny block to `precision` bits
// per sample (1..32) and returns the encoded byte stream. It fails (returns
// a zero-length slice) if values is empty or precision is outside 1..32.
func EncodeFixedPrecision(values []float32, nx, ny int, precision uint) []byte {
	if len(values) == 0 || precision == 0 || precision > 32 {
		return nil
	}

	lo, hi := rangeOf(values)
	buf := make([]byte, quantHeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(lo))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(hi))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(nx))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(ny))
	buf[16] = byte(precision)

	w := newBitWriter(len(values), precision)
	scale := quantScale(lo, hi, precision)
	for _, v := range values {
		code := quantizeOne(v, lo, scale, precision)
		w.write(code, precision)
	}
	return append(buf, w.bytes()...)
}

// DecodeFixedPrecision reverses EncodeFixedPrecision. It fails (returns an
// error) iff the stream is malformed or truncated.
func DecodeFixedPrecision(data []byte) (values []float32, nx, ny int, err error) {
	if len(data) < quantHeaderSize {
		return nil, 0, 0, corerr.New(corerr.KindDecodeFailure, "quantized stream shorter than header", nil)
	}
	lo := math.Float32frombits(binary.LittleEndian.Uint32(data[0:4]))
	hi := math.Float32frombits(binary.LittleEndian.Uint32(data[4:8]))
	nx = int(binary.LittleEndian.Uint32(data[8:12]))
	ny = int(binary.LittleEndian.Uint32(data[12:16]))
	precision := uint(data[16])
	if precision == 0 || precision > 32 || nx < 0 || ny < 0 {
		return nil, 0, 0, corerr.New(corerr.KindDecodeFailure, "invalid quantized stream header", nil)
	}

	n := nx * ny
	r := newBitReader(data[quantHeaderSize:])
	scale := quantScale(lo, hi, precision)
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		code, ok := r.read(precision)
		if !ok {
			return nil, 0, 0, corerr.New(corerr.KindDecodeFailure, "quantized stream truncated", nil)
		}
		out[i] = dequantizeOne(code, lo, scale)
	}
	return out, nx, ny, nil
}

func rangeOf(values []float32) (lo, hi float32) {
	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

func quantScale(lo, hi float32, precision uint) float64 {
	levels := float64(uint64(1)<<precision) - 1
	span := float64(hi) - float64(lo)
	if span <= 0 || levels <= 0 {
		return 0
	}
	return levels / span
}

func quantizeOne(v, lo float32, scale float64, precision uint) uint64 {
	if scale == 0 {
		return 0
	}
	maxCode := uint64(1)<<precision - 1
	code := uint64(math.Round((float64(v) - float64(lo)) * scale))
	if code > maxCode {
		code = maxCode
	}
	return code
}

func dequantizeOne(code uint64, lo float32, scale float64) float32 {
	if scale == 0 {
		return lo
	}
	return lo + float32(float64(code)/scale)
}
