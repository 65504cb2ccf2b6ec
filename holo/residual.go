package holo

/*------------------------------------------------------------------
 *
 * Purpose:	Residual-slice (de)serialization shared by the image and
 *		audio pipelines (int16 samples) and the chunk-count policy
 *		shared by all three pipelines.
 *
 *------------------------------------------------------------------*/

import (
	"encoding/binary"
	"fmt"
	"math"
)

// encodeInt16Slice lays out values as int16 little-endian then deflates,
// the wire encoding for residual slices and the audio coarse track.
func encodeInt16Slice(values []int16) []byte {
	var raw = make([]byte, len(values)*2)

	for i, v := range values {
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(v)) //nolint:gosec
	}

	return deflateBytes(raw)
}

// decodeInt16Slice inflates and reinterprets as int16 little-endian. count
// is the expected number of samples (|I_b|), known from block membership.
func decodeInt16Slice(data []byte, count int) ([]int16, error) {
	var raw, err = inflateBytes(data)
	if err != nil {
		return nil, err
	}

	if len(raw) != count*2 {
		return nil, fmt.Errorf("%w: residual slice has %d bytes, expected %d", ErrInconsistentChunk, len(raw), count*2)
	}

	var values = make([]int16, count)
	for i := range values {
		values[i] = int16(binary.LittleEndian.Uint16(raw[i*2:])) //nolint:gosec
	}

	return values, nil
}

func encodeByteSlice(values []byte) []byte {
	return deflateBytes(values)
}

func decodeByteSlice(data []byte, count int) ([]byte, error) {
	var raw, err = inflateBytes(data)
	if err != nil {
		return nil, err
	}

	if len(raw) != count {
		return nil, fmt.Errorf("%w: residual slice has %d bytes, expected %d", ErrInconsistentChunk, len(raw), count)
	}

	return raw, nil
}

// chooseBlockCount picks B so an average chunk file lands near the
// caller's target size: B = max(4, round(estimatedResidualBytes /
// (targetKB*1024))), capped at N.
func chooseBlockCount(estimatedResidualBytes int64, targetKB int, n int64) int64 {
	if targetKB <= 0 {
		targetKB = 8
	}

	var raw = int64(math.Round(float64(estimatedResidualBytes) / (float64(targetKB) * 1024)))

	var b = raw
	if b < 4 {
		b = 4
	}

	if b > n {
		b = n
	}

	if b < 1 {
		b = 1
	}

	return b
}

func clampByte(v int32) byte {
	if v < 0 {
		return 0
	}

	if v > 255 {
		return 255
	}

	return byte(v)
}

func clampInt16(v int32) int16 {
	if v < -32768 {
		return -32768
	}

	if v > 32767 {
		return 32767
	}

	return int16(v)
}
