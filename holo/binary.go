package holo

/*------------------------------------------------------------------
 *
 * Purpose:	Binary pipeline (C5): coarse = leading prefix bytes,
 *		residual = the remainder permuted across chunks.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"os"
)

const defaultCoarseBudget = 4096

// BinaryEncodeOptions configures the binary pipeline's encode step.
type BinaryEncodeOptions struct {
	TargetKB     int
	CoarseBudget int
}

// EncodeBinary splits data into a stored prefix and a permuted remainder
// and writes B chunk files to outDir.
func EncodeBinary(data []byte, opts BinaryEncodeOptions, outDir string) (blockCount int64, err error) {
	var budget = opts.CoarseBudget
	if budget <= 0 {
		budget = defaultCoarseBudget
	}

	var p = budget
	if p > len(data) {
		p = len(data)
	}

	var prefix = data[:p]
	var rest = data[p:]
	var n = int64(len(rest))

	// When everything fit in the prefix this still yields one chunk
	// carrying the coarse payload and an empty slice.
	var b = chooseBlockCount(n, opts.TargetKB, n)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return 0, fmt.Errorf("holo: creating chunk directory: %w", err)
	}

	var header = encodeBinaryHeader(binaryHeader{
		TotalLen:  uint64(len(data)), //nolint:gosec
		CoarseLen: uint32(p),         //nolint:gosec
	})

	var coarsePayload = encodeByteSlice(prefix)

	for block := int64(0); block < b; block++ {
		var members = blockIndices(n, block, b)
		var values = make([]byte, len(members))

		for k, idx := range members {
			values[k] = rest[idx]
		}

		var rc = &rawChunk{
			magic:      magicBinary,
			version:    maxSupportedVersion,
			modeHeader: header,
			coarse:     coarsePayload,
			slice:      encodeByteSlice(values),
			blockIndex: uint32(block), //nolint:gosec
			blockCount: uint32(b),     //nolint:gosec
			nTotal:     uint64(n),     //nolint:gosec
		}

		if err := writeChunkFile(outDir, chunkFileName(block, b), rc); err != nil {
			return 0, err
		}
	}

	logInfo("encoded binary", "totalLen", len(data), "prefixLen", p, "blocks", b)

	return b, nil
}

// DecodeBinaryDir reconstructs the byte sequence from a chunk directory.
// The result always has the recorded full length; when chunks are missing
// their positions are zero and the error is ErrIncomplete, with the
// partial data still returned for callers that want it anyway.
func DecodeBinaryDir(dir string) ([]byte, error) {
	var set, err = scanChunkDir(dir)
	if err != nil {
		return nil, err
	}

	return decodeBinarySet(set)
}

func decodeBinarySet(set *chunkSet) ([]byte, error) {
	if set.mode != magicBinary {
		return nil, fmt.Errorf("%w: directory is not binary mode", ErrMixedModes)
	}

	var hdr, hdrErr = decodeBinaryHeader(set.modeHeader)
	if hdrErr != nil {
		return nil, hdrErr
	}

	var n = int64(set.nTotal) //nolint:gosec
	if uint64(hdr.CoarseLen)+set.nTotal != hdr.TotalLen {
		return nil, fmt.Errorf("%w: total_len %d does not match prefix %d + n_total %d", ErrInconsistentChunk, hdr.TotalLen, hdr.CoarseLen, set.nTotal)
	}

	var firstChunk *rawChunk
	for _, c := range set.chunks {
		firstChunk = c

		break
	}

	var prefix, prefixErr = decodeByteSlice(firstChunk.coarse, int(hdr.CoarseLen))
	if prefixErr != nil {
		return nil, prefixErr
	}

	var rest = make([]byte, n)
	var used = 0

	for b, chunk := range set.chunks {
		var members = blockIndices(n, int64(b), int64(set.blockCount))

		var values, decErr = decodeByteSlice(chunk.slice, len(members))
		if decErr != nil {
			logWarn("dropping chunk with bad residual slice", "blockIndex", b, "err", decErr)

			continue
		}

		for k, idx := range members {
			rest[idx] = values[k]
		}

		used++
	}

	var out = make([]byte, 0, int64(len(prefix))+n)
	out = append(out, prefix...)
	out = append(out, rest...)

	logInfo("decoded binary", "totalLen", len(out), "chunksUsed", used, "blockCount", set.blockCount)

	if used < int(set.blockCount) {
		return out, ErrIncomplete
	}

	return out, nil
}
