package holo

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWAVRoundTrip(t *testing.T) {
	var pcm = &PCMAudio{
		SampleRate: 44100,
		Channels:   2,
		Samples:    []int16{0, 100, -100, 32767, -32768, 7, 8, 9},
	}

	var buf bytes.Buffer
	require.NoError(t, encodeWAV(&buf, pcm))

	var decoded, err = decodeWAV(buf.Bytes())
	require.NoError(t, err)

	assert.Equal(t, pcm.SampleRate, decoded.SampleRate)
	assert.Equal(t, pcm.Channels, decoded.Channels)
	assert.Equal(t, pcm.Samples, decoded.Samples)
}

func TestDecodeWAVRejectsNonRIFF(t *testing.T) {
	var _, err = decodeWAV([]byte("definitely not a wav file"))
	require.ErrorIs(t, err, ErrUnsupportedInput)
}

func TestDecodeWAVSkipsUnknownChunks(t *testing.T) {
	// A LIST chunk between fmt and data must not confuse the walk.
	var pcm = &PCMAudio{SampleRate: 8000, Channels: 1, Samples: []int16{1, 2, 3}}

	var plain bytes.Buffer
	require.NoError(t, encodeWAV(&plain, pcm))

	var raw = plain.Bytes()

	var withList bytes.Buffer
	withList.Write(raw[:36]) // RIFF header + fmt chunk
	withList.WriteString("LIST")

	var listBody = []byte("INFOsoftware")
	var size [4]byte
	binary.LittleEndian.PutUint32(size[:], uint32(len(listBody)))
	withList.Write(size[:])
	withList.Write(listBody)
	withList.Write(raw[36:]) // data chunk

	var out = withList.Bytes()
	binary.LittleEndian.PutUint32(out[4:8], uint32(len(out)-8))

	var decoded, err = decodeWAV(out)
	require.NoError(t, err)
	assert.Equal(t, pcm.Samples, decoded.Samples)
}

func TestDecodeWAVRejectsUnsupportedDepth(t *testing.T) {
	// Only 16- and 24-bit PCM are in scope; everything else, common
	// depths included, is rejected at ingest.
	for _, bits := range []uint16{8, 12, 32, 64} {
		var pcm = &PCMAudio{SampleRate: 8000, Channels: 1, Samples: []int16{1, 2}}

		var buf bytes.Buffer
		require.NoError(t, encodeWAV(&buf, pcm))

		var raw = buf.Bytes()
		binary.LittleEndian.PutUint16(raw[34:36], bits)

		var _, err = decodeWAV(raw)
		require.ErrorIs(t, err, ErrUnsupportedInput, "bits-per-sample %d", bits)
	}
}
