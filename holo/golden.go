package holo

/*------------------------------------------------------------------
 *
 * Purpose:	Golden-ratio interleaver (C1).
 *
 * Description:	A single-cycle permutation pi(i) = (i*s) mod N of
 *		{0, ..., N-1}, where s is the first value coprime to N
 *		found by starting at round((phi-1)*N) and searching
 *		outward, +d before -d at each distance d (so s is not
 *		always the coprime integer nearest to (phi-1)*N; for
 *		N=16 it is 11, not 9). Because gcd(s, N) = 1,
 *		the orbit of 0 under repeated addition of s visits every
 *		residue exactly once, so chunk b's membership set
 *		{pi(b), pi(b+B), pi(b+2B), ...} partitions {0, ..., N-1}
 *		across all b in [0, B).
 *
 *------------------------------------------------------------------*/

import "math"

// goldenRatioMinusOne is (phi - 1), the fractional part of the golden
// ratio, used to derive the interleave step.
const goldenRatioMinusOne = 0.6180339887498949

// interleaver holds the derived step s for a fixed N and answers
// permutation and block-membership queries against it.
type interleaver struct {
	n int64
	s int64
}

// newInterleaver derives s for N and returns a ready-to-query
// interleaver. N must be >= 2.
func newInterleaver(n int64) *interleaver {
	if n < 2 {
		panic("holo: interleaver requires N >= 2")
	}

	return &interleaver{n: n, s: goldenStep(n)}
}

// goldenStep implements the "start at round((phi-1)*N), search outward,
// try +1 before -1 at each distance" rule verbatim.
func goldenStep(n int64) int64 {
	var s0 = int64(math.Round(goldenRatioMinusOne * float64(n)))

	if s0 < 1 {
		s0 = 1
	}

	if s0 > n-1 {
		s0 = n - 1
	}

	if gcdInt64(s0, n) == 1 {
		return s0
	}

	for distance := int64(1); distance < n; distance++ {
		var plus = s0 + distance
		if plus >= 1 && plus <= n-1 && gcdInt64(plus, n) == 1 {
			return plus
		}

		var minus = s0 - distance
		if minus >= 1 && minus <= n-1 && gcdInt64(minus, n) == 1 {
			return minus
		}
	}

	// n == 2 falls through any loop above only when s0 already failed,
	// but gcd(1, n) is always 1, so this is unreachable for n >= 2.
	panic("holo: no step coprime to N found")
}

func gcdInt64(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}

	if a < 0 {
		return -a
	}

	return a
}

// step returns the derived interleave step s.
func (p *interleaver) step() int64 {
	return p.s
}

// at computes pi(i) using 64-bit arithmetic throughout, as required for N
// up to ~2^31.
func (p *interleaver) at(i int64) int64 {
	return (i % p.n) * p.s % p.n
}

// block returns I_b, the residual indices owned by chunk b out of a total
// of B chunks, in generation order (the order the format requires the
// residual-slice array to align with).
func (p *interleaver) block(b int64, blockCount int64) []int64 {
	if blockCount <= 0 {
		panic("holo: blockCount must be positive")
	}

	var size = blockSize(p.n, b, blockCount)
	var out = make([]int64, 0, size)

	for k := b; k < p.n; k += blockCount {
		out = append(out, p.at(k))
	}

	return out
}

// blockIndices returns I_b for any N >= 0. The permutation needs N >= 2;
// the degenerate residual lengths 0 and 1 (possible for short audio and
// binary inputs) have only the identity arrangement.
func blockIndices(n, b, blockCount int64) []int64 {
	if n <= 0 {
		return nil
	}

	if n == 1 {
		if b == 0 {
			return []int64{0}
		}

		return nil
	}

	return newInterleaver(n).block(b, blockCount)
}

// blockSize returns |I_b| = ceil((N - b) / B) without materializing I_b.
func blockSize(n, b, blockCount int64) int64 {
	if b >= n {
		return 0
	}

	return (n - b + blockCount - 1) / blockCount
}
