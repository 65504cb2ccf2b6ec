package holo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestGoldenStepCoprimeAndInRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var n = rapid.Int64Range(2, 1_000_000).Draw(t, "n")
		var s = goldenStep(n)

		assert.GreaterOrEqual(t, s, int64(1))
		assert.LessOrEqual(t, s, n-1)
		assert.Equal(t, int64(1), gcdInt64(s, n), "s=%d must be coprime to n=%d", s, n)
	})
}

func TestGoldenPermutationIsBijection(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var n = rapid.Int64Range(2, 5000).Draw(t, "n")
		var p = newInterleaver(n)

		var seen = make([]bool, n)
		for i := int64(0); i < n; i++ {
			var pi = p.at(i)
			require.GreaterOrEqual(t, pi, int64(0))
			require.Less(t, pi, n)
			require.False(t, seen[pi], "index %d produced twice (pi(%d))", pi, i)
			seen[pi] = true
		}

		for i, s := range seen {
			assert.True(t, s, "index %d never produced", i)
		}
	})
}

func TestGoldenBlockPartition(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var n = rapid.Int64Range(2, 2000).Draw(t, "n")
		var blockCount = rapid.Int64Range(1, n).Draw(t, "blockCount")
		var p = newInterleaver(n)

		var owner = make([]int, n)
		for i := range owner {
			owner[i] = -1
		}

		var total = 0

		for b := int64(0); b < blockCount; b++ {
			var block = p.block(b, blockCount)
			assert.Equal(t, int(blockSize(n, b, blockCount)), len(block))

			for _, idx := range block {
				require.Equal(t, -1, owner[idx], "index %d claimed by both block %d and %d", idx, owner[idx], b)
				owner[idx] = int(b)
				total++
			}
		}

		assert.Equal(t, int(n), total)

		for i, o := range owner {
			assert.NotEqual(t, -1, o, "index %d not owned by any block", i)
		}
	})
}

func TestGoldenStepSmallN(t *testing.T) {
	// N=5: (phi-1)*5 = 3.09..., round -> 3. gcd(3,5)=1, so s=3 directly,
	// no tie to break; this documents the expected value for a small N
	// a reader can hand-verify.
	assert.Equal(t, int64(3), goldenStep(5))
}

func TestGoldenBlockOrderMatchesGenerationOrder(t *testing.T) {
	var p = newInterleaver(10)
	var block0 = p.block(0, 3)

	for k, idx := range block0 {
		assert.Equal(t, p.at(int64(k)*3), idx)
	}
}
