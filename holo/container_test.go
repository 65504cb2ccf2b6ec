package holo

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkRoundTrip(t *testing.T) {
	var hdr = encodeImageHeader(imageHeader{Width: 256, Height: 128, Channels: 3, ThumbSide: 64})

	var c = &rawChunk{
		magic:      magicImage,
		version:    2,
		modeHeader: hdr,
		coarse:     []byte("pretend-png-bytes"),
		slice:      []byte{1, 2, 3, 4, 5},
		blockIndex: 3,
		blockCount: 16,
		nTotal:     98304,
	}

	var encoded, err = encodeChunkBytes(c)
	require.NoError(t, err)

	var decoded, decErr = readChunk(bytes.NewReader(encoded))
	require.NoError(t, decErr)

	assert.Equal(t, c.magic, decoded.magic)
	assert.Equal(t, c.version, decoded.version)
	assert.Equal(t, c.modeHeader, decoded.modeHeader)
	assert.Equal(t, c.coarse, decoded.coarse)
	assert.Equal(t, c.slice, decoded.slice)
	assert.Equal(t, c.blockIndex, decoded.blockIndex)
	assert.Equal(t, c.blockCount, decoded.blockCount)
	assert.Equal(t, c.nTotal, decoded.nTotal)

	var decodedHeader, hdrErr = decodeImageHeader(decoded.modeHeader)
	require.NoError(t, hdrErr)
	assert.Equal(t, uint32(256), decodedHeader.Width)
	assert.Equal(t, uint32(128), decodedHeader.Height)
	assert.Equal(t, uint16(64), decodedHeader.ThumbSide)
}

func TestReadChunkRejectsBadMagic(t *testing.T) {
	var _, err = readChunk(bytes.NewReader([]byte("XXXXnope")))
	require.ErrorIs(t, err, ErrBadMagic)
}

func TestReadChunkRejectsBadVersion(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(magicImage[:])
	buf.Write([]byte{0xFF, 0xFF}) // version 65535, way above max

	var _, err = readChunk(&buf)
	require.ErrorIs(t, err, ErrBadVersion)
}

func TestReadChunkRejectsTruncated(t *testing.T) {
	var full, err = encodeChunkBytes(&rawChunk{
		magic:      magicBinary,
		version:    2,
		modeHeader: encodeBinaryHeader(binaryHeader{TotalLen: 100, CoarseLen: 10}),
		coarse:     make([]byte, 10),
		slice:      make([]byte, 20),
		blockIndex: 0,
		blockCount: 4,
		nTotal:     90,
	})
	require.NoError(t, err)

	var _, truncErr = readChunk(bytes.NewReader(full[:len(full)-10]))
	require.ErrorIs(t, truncErr, ErrTruncated)
}
