package transport

/*------------------------------------------------------------------
 *
 * Purpose:	HNET datagram layout (C7). One fixed 24-byte header in
 *		network byte order followed by the payload.
 *
 * Description:	Same deal as the chunk container: binary.Write could send
 *		the fixed part as a struct but not the trailing payload,
 *		so the header is packed by hand into one buffer and the
 *		whole datagram goes out in a single sendto.
 *
 *------------------------------------------------------------------*/

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	packetVersion = 1

	typeMeta = 0
	typeData = 1

	packetHeaderLen = 24

	// maxUDPPayload is the largest payload an IPv4 UDP datagram can
	// carry; the HNET payload must additionally leave room for the
	// header.
	maxUDPPayload = 65507
)

var packetMagic = [4]byte{'H', 'N', 'E', 'T'}

var (
	errBadPacketMagic   = errors.New("hnet: datagram does not start with HNET")
	errBadPacketVersion = errors.New("hnet: unsupported protocol version")
	errBadPayloadLen    = errors.New("hnet: payload_len disagrees with datagram length")
)

type packet struct {
	ptype      uint8
	transferID uint32
	chunkTotal uint32
	chunkIndex uint32
	segIndex   uint16
	segCount   uint16
	payload    []byte
}

func encodePacket(p *packet) []byte {
	var out = make([]byte, packetHeaderLen+len(p.payload))
	var be = binary.BigEndian

	copy(out[0:4], packetMagic[:])
	out[4] = packetVersion
	out[5] = p.ptype
	be.PutUint32(out[6:10], p.transferID)
	be.PutUint32(out[10:14], p.chunkTotal)
	be.PutUint32(out[14:18], p.chunkIndex)
	be.PutUint16(out[18:20], p.segIndex)
	be.PutUint16(out[20:22], p.segCount)
	be.PutUint16(out[22:24], uint16(len(p.payload))) //nolint:gosec
	copy(out[packetHeaderLen:], p.payload)

	return out
}

func decodePacket(raw []byte) (*packet, error) {
	if len(raw) < packetHeaderLen {
		return nil, fmt.Errorf("%w: %d bytes", errBadPayloadLen, len(raw))
	}

	if [4]byte(raw[0:4]) != packetMagic {
		return nil, errBadPacketMagic
	}

	if raw[4] != packetVersion {
		return nil, fmt.Errorf("%w: %d", errBadPacketVersion, raw[4])
	}

	var be = binary.BigEndian
	var p = packet{
		ptype:      raw[5],
		transferID: be.Uint32(raw[6:10]),
		chunkTotal: be.Uint32(raw[10:14]),
		chunkIndex: be.Uint32(raw[14:18]),
		segIndex:   be.Uint16(raw[18:20]),
		segCount:   be.Uint16(raw[20:22]),
	}

	var payloadLen = int(be.Uint16(raw[22:24]))
	if payloadLen != len(raw)-packetHeaderLen {
		return nil, fmt.Errorf("%w: header says %d, datagram carries %d", errBadPayloadLen, payloadLen, len(raw)-packetHeaderLen)
	}

	if p.ptype != typeMeta && p.ptype != typeData {
		return nil, fmt.Errorf("hnet: unknown packet type %d", p.ptype)
	}

	p.payload = raw[packetHeaderLen:]

	return &p, nil
}

// fragment splits data into ceil(len/maxPayload) segments, all equal
// sized except possibly the last. A zero-length input still yields one
// empty segment so seg_count is never zero.
func fragment(data []byte, maxPayload int) [][]byte {
	if maxPayload < 1 {
		maxPayload = 1
	}

	if len(data) == 0 {
		return [][]byte{{}}
	}

	var count = (len(data) + maxPayload - 1) / maxPayload
	var out = make([][]byte, 0, count)

	for off := 0; off < len(data); off += maxPayload {
		var end = off + maxPayload
		if end > len(data) {
			end = len(data)
		}

		out = append(out, data[off:end])
	}

	return out
}
