package holo

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// sineWAV builds an in-memory 16-bit PCM WAV with one sine per channel.
func sineWAV(t *testing.T, rate, channels, frames int) []byte {
	t.Helper()

	var pcm = &PCMAudio{SampleRate: rate, Channels: channels, Samples: make([]int16, frames*channels)}

	for f := 0; f < frames; f++ {
		for c := 0; c < channels; c++ {
			var v = 12000 * math.Sin(2*math.Pi*440*float64(c+1)*float64(f)/float64(rate))
			pcm.Samples[f*channels+c] = int16(v)
		}
	}

	var buf bytes.Buffer
	require.NoError(t, encodeWAV(&buf, pcm))

	return buf.Bytes()
}

func TestCoarsePositionsAnchored(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var frames = rapid.IntRange(2, 100000).Draw(t, "frames")
		var coarse = rapid.IntRange(2, frames).Draw(t, "coarse")

		var pos = coarsePositions(frames, coarse)

		assert.Equal(t, 0, pos[0])
		assert.Equal(t, frames-1, pos[len(pos)-1])

		for k := 1; k < len(pos); k++ {
			assert.Greater(t, pos[k], pos[k-1], "positions must be strictly increasing")
		}
	})
}

func TestInterpolateCoarseHitsAnchors(t *testing.T) {
	var frames, channels, coarseFrames = 100, 2, 5
	var coarse = make([]int16, coarseFrames*channels)
	for i := range coarse {
		coarse[i] = int16(i * 100)
	}

	var up = interpolateCoarse(coarse, frames, channels, coarseFrames)
	require.Len(t, up, frames*channels)

	for k, p := range coarsePositions(frames, coarseFrames) {
		for c := 0; c < channels; c++ {
			assert.Equal(t, coarse[k*channels+c], up[p*channels+c], "anchor frame %d channel %d", p, c)
		}
	}
}

func TestAudioFullRoundTrip(t *testing.T) {
	// 1 s of 48 kHz stereo sine, decoded from the full chunk set,
	// must match the input sample for sample.
	var wav = sineWAV(t, 48000, 2, 48000)
	var dir = filepath.Join(t.TempDir(), "sine.wav.holo")

	var blocks, encErr = EncodeAudio(wav, AudioEncodeOptions{TargetKB: 4}, dir)
	require.NoError(t, encErr)
	require.Greater(t, blocks, int64(1))

	var decoded, decErr = DecodeAudioDir(dir)
	require.NoError(t, decErr)

	var original, origErr = decodeWAV(wav)
	require.NoError(t, origErr)

	assert.Equal(t, original.SampleRate, decoded.SampleRate)
	assert.Equal(t, original.Channels, decoded.Channels)
	assert.Equal(t, original.Samples, decoded.Samples)
}

func TestAudioPartialDecodeDegradesGracefully(t *testing.T) {
	var wav = sineWAV(t, 8000, 1, 8000)
	var dir = filepath.Join(t.TempDir(), "sine.wav.holo")

	var blocks, encErr = EncodeAudio(wav, AudioEncodeOptions{TargetKB: 1}, dir)
	require.NoError(t, encErr)
	require.GreaterOrEqual(t, blocks, int64(4))

	// Keep only the first chunk.
	for b := int64(1); b < blocks; b++ {
		require.NoError(t, os.Remove(filepath.Join(dir, chunkFileName(b, blocks))))
	}

	var decoded, decErr = DecodeAudioDir(dir)
	require.NoError(t, decErr)

	var original, origErr = decodeWAV(wav)
	require.NoError(t, origErr)
	require.Len(t, decoded.Samples, len(original.Samples))

	// The single-chunk reconstruction must still be globally coherent:
	// closer to the original than silence is.
	var mseDecoded, mseSilence float64
	for i, s := range original.Samples {
		var d = float64(s) - float64(decoded.Samples[i])
		mseDecoded += d * d
		mseSilence += float64(s) * float64(s)
	}

	assert.Less(t, mseDecoded, mseSilence)
}

func TestAudioShortInputs(t *testing.T) {
	// Fewer frames than the default coarse track: T clamps to F and
	// the round trip stays exact.
	var wav = sineWAV(t, 8000, 2, 37)
	var dir = filepath.Join(t.TempDir(), "tiny.wav.holo")

	var _, encErr = EncodeAudio(wav, AudioEncodeOptions{TargetKB: 1}, dir)
	require.NoError(t, encErr)

	var decoded, decErr = DecodeAudioDir(dir)
	require.NoError(t, decErr)

	var original, _ = decodeWAV(wav)
	assert.Equal(t, original.Samples, decoded.Samples)
}

func TestNarrowPCM24Bit(t *testing.T) {
	// -1 in 24-bit is 0xFFFFFF; arithmetic shift right by 8 keeps the
	// sign.
	var raw = []byte{0xFF, 0xFF, 0xFF, 0x00, 0x00, 0x40}

	var samples, err = narrowPCMTo16(raw, 24)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, int16(-1), samples[0])
	assert.Equal(t, int16(0x4000), samples[1])
}
