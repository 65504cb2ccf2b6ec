package holo

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomBytes(n int, seed uint64) []byte {
	var rng = rand.New(rand.NewPCG(seed, seed))
	var out = make([]byte, n)

	for i := range out {
		out[i] = byte(rng.UintN(256))
	}

	return out
}

func TestBinaryFullRoundTrip(t *testing.T) {
	// 100 KiB of incompressible bytes at 2 KiB chunks.
	var data = randomBytes(100*1024, 1)
	var dir = filepath.Join(t.TempDir(), "blob.bin.holo")

	var blocks, encErr = EncodeBinary(data, BinaryEncodeOptions{TargetKB: 2}, dir)
	require.NoError(t, encErr)
	require.Greater(t, blocks, int64(1))

	var decoded, decErr = DecodeBinaryDir(dir)
	require.NoError(t, decErr)
	assert.Equal(t, data, decoded)
}

func TestBinaryPartialDecodeKeepsLengthAndPrefix(t *testing.T) {
	var data = randomBytes(64*1024, 2)
	var dir = filepath.Join(t.TempDir(), "blob.bin.holo")

	var blocks, encErr = EncodeBinary(data, BinaryEncodeOptions{TargetKB: 2}, dir)
	require.NoError(t, encErr)
	require.GreaterOrEqual(t, blocks, int64(4))

	require.NoError(t, os.Remove(filepath.Join(dir, chunkFileName(0, blocks))))

	var decoded, decErr = DecodeBinaryDir(dir)
	require.ErrorIs(t, decErr, ErrIncomplete)
	require.Len(t, decoded, len(data))

	// The stored prefix survives any chunk loss.
	assert.Equal(t, data[:defaultCoarseBudget], decoded[:defaultCoarseBudget])

	// The missing chunk's positions are zero, everything else matches.
	var members = blockIndices(int64(len(data)-defaultCoarseBudget), 0, blocks)
	var missing = map[int64]bool{}
	for _, idx := range members {
		missing[idx] = true
	}

	for i := defaultCoarseBudget; i < len(data); i++ {
		var idx = int64(i - defaultCoarseBudget)
		if missing[idx] {
			assert.Equal(t, byte(0), decoded[i])
		} else {
			assert.Equal(t, data[i], decoded[i])
		}
	}
}

func TestBinaryInputSmallerThanPrefix(t *testing.T) {
	var data = []byte("fits entirely in the coarse prefix")
	var dir = filepath.Join(t.TempDir(), "note.txt.holo")

	var blocks, encErr = EncodeBinary(data, BinaryEncodeOptions{TargetKB: 2}, dir)
	require.NoError(t, encErr)
	assert.Equal(t, int64(1), blocks)

	var decoded, decErr = DecodeBinaryDir(dir)
	require.NoError(t, decErr)
	assert.Equal(t, data, decoded)
}

func TestBinaryEmptyInput(t *testing.T) {
	var dir = filepath.Join(t.TempDir(), "empty.holo")

	var _, encErr = EncodeBinary(nil, BinaryEncodeOptions{}, dir)
	require.NoError(t, encErr)

	var decoded, decErr = DecodeBinaryDir(dir)
	require.NoError(t, decErr)
	assert.Empty(t, decoded)
}

func TestChooseBlockCountPolicy(t *testing.T) {
	// round(estimate / (kb*1024)) with a floor of 4 and a cap of N.
	assert.Equal(t, int64(16), chooseBlockCount(16*8*1024, 8, 1<<30))
	assert.Equal(t, int64(4), chooseBlockCount(100, 8, 1<<30))
	assert.Equal(t, int64(10), chooseBlockCount(1<<20, 8, 10))
	assert.Equal(t, int64(1), chooseBlockCount(0, 8, 0))
}
