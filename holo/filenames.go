package holo

/*------------------------------------------------------------------
 *
 * Purpose:	Chunk/directory naming conventions.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
)

// chunkFileName returns "chunk_XXXX.holo" with XXXX zero-padded to
// max(4, ceil(log10(blockCount))) digits.
func chunkFileName(b, blockCount int64) string {
	var width = 4
	if blockCount > 1 {
		if digits := int(math.Ceil(math.Log10(float64(blockCount)))); digits > width {
			width = digits
		}
	}

	return fmt.Sprintf("chunk_%0*d.holo", width, b)
}

// ChunkFileName exposes the chunk naming convention to the transport,
// which writes reassembled chunk files itself.
func ChunkFileName(b, blockCount int64) string {
	return chunkFileName(b, blockCount)
}

// encodedDirName returns "<name>.holo" for an input path being encoded.
// The full base name, extension included, is kept so that decoding the
// directory restores the original file name.
func encodedDirName(inputPath string) string {
	return filepath.Base(inputPath) + ".holo"
}

// decodedOutputName returns the reconstruction target for a chunk
// directory: strip ".holo" when present, otherwise append "_dec".
func decodedOutputName(dirPath string) string {
	var base = filepath.Base(filepath.Clean(dirPath))

	if strings.HasSuffix(base, ".holo") {
		return strings.TrimSuffix(base, ".holo")
	}

	return base + "_dec"
}
