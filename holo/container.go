package holo

/*------------------------------------------------------------------
 *
 * Purpose:	Chunk container (C2): serialize/deserialize the fixed-order
 *		binary envelope every chunk file uses, regardless of mode.
 *
 * Description:	binary.Write will happily write a fixed-size struct but
 *		won't send variable-length slices, so the envelope is
 *		written field by field in declared order instead of as one
 *		struct.
 *
 *------------------------------------------------------------------*/

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

const maxSupportedVersion = 2

type magic [4]byte

var (
	magicImage  = magic{'H', 'I', 'M', 'G'}
	magicAudio  = magic{'H', 'A', 'U', 'D'}
	magicBinary = magic{'H', 'B', 'I', 'N'}
)

func (m magic) String() string {
	return string(m[:])
}

// rawChunk is the container envelope with the mode header left
// un-interpreted; pipeline-specific code decodes modeHeader further.
type rawChunk struct {
	magic      magic
	version    uint16
	modeHeader []byte
	coarse     []byte
	slice      []byte
	blockIndex uint32
	blockCount uint32
	nTotal     uint64
}

// writeChunk serializes one chunk file in the exact field order the
// container format declares, big-endian throughout.
func writeChunk(w io.Writer, c *rawChunk) error {
	var be = binary.BigEndian

	if _, err := w.Write(c.magic[:]); err != nil {
		return err
	}

	if err := binary.Write(w, be, c.version); err != nil {
		return err
	}

	if err := binary.Write(w, be, uint32(len(c.modeHeader))); err != nil { //nolint:gosec
		return err
	}

	if _, err := w.Write(c.modeHeader); err != nil {
		return err
	}

	if err := binary.Write(w, be, uint32(len(c.coarse))); err != nil { //nolint:gosec
		return err
	}

	if _, err := w.Write(c.coarse); err != nil {
		return err
	}

	if err := binary.Write(w, be, uint32(len(c.slice))); err != nil { //nolint:gosec
		return err
	}

	if _, err := w.Write(c.slice); err != nil {
		return err
	}

	if err := binary.Write(w, be, c.blockIndex); err != nil {
		return err
	}

	if err := binary.Write(w, be, c.blockCount); err != nil {
		return err
	}

	return binary.Write(w, be, c.nTotal)
}

// readChunk parses one chunk file. It returns sentinel errors (wrapped, so
// errors.Is still matches) rather than a generic parse error, since the
// directory scanner needs to distinguish kinds.
func readChunk(r io.Reader) (*rawChunk, error) {
	var be = binary.BigEndian
	var c rawChunk

	if _, err := io.ReadFull(r, c.magic[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
	}

	if c.magic != magicImage && c.magic != magicAudio && c.magic != magicBinary {
		return nil, ErrBadMagic
	}

	if err := binary.Read(r, be, &c.version); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
	}

	if c.version == 0 || c.version > maxSupportedVersion {
		return nil, ErrBadVersion
	}

	var headerLen uint32
	if err := binary.Read(r, be, &headerLen); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
	}

	c.modeHeader = make([]byte, headerLen)
	if _, err := io.ReadFull(r, c.modeHeader); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
	}

	var coarseLen uint32
	if err := binary.Read(r, be, &coarseLen); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
	}

	c.coarse = make([]byte, coarseLen)
	if _, err := io.ReadFull(r, c.coarse); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
	}

	var sliceLen uint32
	if err := binary.Read(r, be, &sliceLen); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
	}

	c.slice = make([]byte, sliceLen)
	if _, err := io.ReadFull(r, c.slice); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
	}

	if err := binary.Read(r, be, &c.blockIndex); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
	}

	if err := binary.Read(r, be, &c.blockCount); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
	}

	if err := binary.Read(r, be, &c.nTotal); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
	}

	return &c, nil
}

// encodeChunkBytes is a small convenience used by tests: build the full
// on-disk representation in memory. The pipelines write chunk files
// directly through writeChunk.
func encodeChunkBytes(c *rawChunk) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeChunk(&buf, c); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
