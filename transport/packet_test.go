package transport

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestPacketRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var p = &packet{
			ptype:      rapid.SampledFrom([]uint8{typeMeta, typeData}).Draw(t, "type"),
			transferID: rapid.Uint32().Draw(t, "transferID"),
			chunkTotal: rapid.Uint32().Draw(t, "chunkTotal"),
			chunkIndex: rapid.Uint32().Draw(t, "chunkIndex"),
			segIndex:   rapid.Uint16().Draw(t, "segIndex"),
			segCount:   rapid.Uint16().Draw(t, "segCount"),
			payload:    rapid.SliceOfN(rapid.Byte(), 0, 2000).Draw(t, "payload"),
		}

		var decoded, err = decodePacket(encodePacket(p))
		require.NoError(t, err)

		assert.Equal(t, p.ptype, decoded.ptype)
		assert.Equal(t, p.transferID, decoded.transferID)
		assert.Equal(t, p.chunkTotal, decoded.chunkTotal)
		assert.Equal(t, p.chunkIndex, decoded.chunkIndex)
		assert.Equal(t, p.segIndex, decoded.segIndex)
		assert.Equal(t, p.segCount, decoded.segCount)
		assert.Equal(t, p.payload, []byte(decoded.payload))
	})
}

func TestDecodePacketRejectsBadMagic(t *testing.T) {
	var raw = encodePacket(&packet{ptype: typeMeta})
	copy(raw[0:4], "NOPE")

	var _, err = decodePacket(raw)
	require.ErrorIs(t, err, errBadPacketMagic)
}

func TestDecodePacketRejectsBadVersion(t *testing.T) {
	var raw = encodePacket(&packet{ptype: typeMeta})
	raw[4] = 99

	var _, err = decodePacket(raw)
	require.ErrorIs(t, err, errBadPacketVersion)
}

func TestDecodePacketRejectsPayloadLenMismatch(t *testing.T) {
	var raw = encodePacket(&packet{ptype: typeData, payload: []byte("hello")})

	var _, truncErr = decodePacket(raw[:len(raw)-1])
	require.ErrorIs(t, truncErr, errBadPayloadLen)

	var padded = append(raw, 0)

	var _, padErr = decodePacket(padded)
	require.ErrorIs(t, padErr, errBadPayloadLen)
}

func TestDecodePacketRejectsShortDatagram(t *testing.T) {
	var _, err = decodePacket([]byte("HNET"))
	require.ErrorIs(t, err, errBadPayloadLen)
}

func TestFragmentReassembles(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var data = rapid.SliceOfN(rapid.Byte(), 0, 10000).Draw(t, "data")
		var maxPayload = rapid.IntRange(1, 1500).Draw(t, "maxPayload")

		var segments = fragment(data, maxPayload)
		require.NotEmpty(t, segments, "seg_count must never be zero")

		for i, seg := range segments {
			if i < len(segments)-1 {
				assert.Len(t, seg, maxPayload, "only the last segment may be short")
			} else {
				assert.LessOrEqual(t, len(seg), maxPayload)
			}
		}

		var joined = bytes.Join(segments, nil)
		if len(data) == 0 {
			assert.Empty(t, joined)
		} else {
			assert.Equal(t, data, joined)
		}
	})
}
