package holo

/*------------------------------------------------------------------
 *
 * Purpose:	Fixed-layout mode-specific headers carried inside the
 *		container's mode_header field.
 *
 *------------------------------------------------------------------*/

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

type imageHeader struct {
	Width     uint32
	Height    uint32
	Channels  uint8
	ThumbSide uint16
}

type audioHeader struct {
	Frames       uint32
	Channels     uint16
	SampleRate   uint32
	CoarseFrames uint32
}

type binaryHeader struct {
	TotalLen  uint64
	CoarseLen uint32
}

func encodeImageHeader(h imageHeader) []byte {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.BigEndian, h)

	return buf.Bytes()
}

func decodeImageHeader(b []byte) (imageHeader, error) {
	var h imageHeader
	if err := binary.Read(bytes.NewReader(b), binary.BigEndian, &h); err != nil {
		return h, fmt.Errorf("%w: image header: %v", ErrTruncated, err)
	}

	return h, nil
}

func encodeAudioHeader(h audioHeader) []byte {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.BigEndian, h)

	return buf.Bytes()
}

func decodeAudioHeader(b []byte) (audioHeader, error) {
	var h audioHeader
	if err := binary.Read(bytes.NewReader(b), binary.BigEndian, &h); err != nil {
		return h, fmt.Errorf("%w: audio header: %v", ErrTruncated, err)
	}

	return h, nil
}

func encodeBinaryHeader(h binaryHeader) []byte {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.BigEndian, h)

	return buf.Bytes()
}

func decodeBinaryHeader(b []byte) (binaryHeader, error) {
	var h binaryHeader
	if err := binary.Read(bytes.NewReader(b), binary.BigEndian, &h); err != nil {
		return h, fmt.Errorf("%w: binary header: %v", ErrTruncated, err)
	}

	return h, nil
}
