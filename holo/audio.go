package holo

/*------------------------------------------------------------------
 *
 * Purpose:	Audio pipeline (C4): coarse = equally spaced frames stored
 *		as int16, linearly interpolated back to full length;
 *		residual in int16 with saturating arithmetic.
 *
 * Description:	The coarse track positions are round(k*(F-1)/(T-1)), so
 *		position 0 and F-1 are always anchored and the linear
 *		interpolation below never extrapolates. Encoder and
 *		decoder share interpolateCoarse so the reconstruction
 *		cancels the residual exactly.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"math"
	"os"
)

const defaultCoarseFrames = 2048

// AudioEncodeOptions configures the audio pipeline's encode step.
type AudioEncodeOptions struct {
	TargetKB     int
	CoarseFrames int
}

// coarsePositions returns the T frame indices equally spaced in [0, F).
func coarsePositions(frames, coarseFrames int) []int {
	var pos = make([]int, coarseFrames)

	if coarseFrames == 1 {
		return pos
	}

	for k := range pos {
		pos[k] = int(math.Round(float64(k) * float64(frames-1) / float64(coarseFrames-1)))
	}

	return pos
}

// interpolateCoarse expands a T-frame coarse track back to F frames per
// channel by linear interpolation between adjacent coarse positions.
func interpolateCoarse(coarse []int16, frames, channels, coarseFrames int) []int16 {
	var out = make([]int16, frames*channels)

	if coarseFrames == 1 {
		for f := 0; f < frames; f++ {
			copy(out[f*channels:(f+1)*channels], coarse[:channels])
		}

		return out
	}

	var pos = coarsePositions(frames, coarseFrames)

	var k = 0
	for f := 0; f < frames; f++ {
		for k+1 < coarseFrames && pos[k+1] < f {
			k++
		}

		var lo, hi = pos[k], pos[k+1]

		for c := 0; c < channels; c++ {
			var a = float64(coarse[k*channels+c])
			var b = float64(coarse[(k+1)*channels+c])

			var v = a
			if hi > lo {
				v = a + (b-a)*float64(f-lo)/float64(hi-lo)
			}

			out[f*channels+c] = int16(math.Round(v)) //nolint:gosec
		}
	}

	return out
}

// EncodeAudio implements the audio encode steps over a WAV input and
// writes B chunk files to outDir.
func EncodeAudio(data []byte, opts AudioEncodeOptions, outDir string) (blockCount int64, err error) {
	var pcm, decErr = decodeWAV(data)
	if decErr != nil {
		return 0, decErr
	}

	if pcm.Channels < 1 || len(pcm.Samples) == 0 {
		return 0, fmt.Errorf("%w: empty waveform", ErrUnsupportedInput)
	}

	var frames = len(pcm.Samples) / pcm.Channels

	var t = opts.CoarseFrames
	if t <= 0 {
		t = defaultCoarseFrames
	}

	if t > frames {
		t = frames
	}

	var pos = coarsePositions(frames, t)
	var coarse = make([]int16, t*pcm.Channels)

	for k, p := range pos {
		copy(coarse[k*pcm.Channels:(k+1)*pcm.Channels], pcm.Samples[p*pcm.Channels:(p+1)*pcm.Channels])
	}

	var coarseUp = interpolateCoarse(coarse, frames, pcm.Channels, t)

	var n = int64(len(pcm.Samples))
	var residual = make([]int16, n)

	for i := range residual {
		residual[i] = clampInt16(int32(pcm.Samples[i]) - int32(coarseUp[i]))
	}

	var b = chooseBlockCount(n*2, opts.TargetKB, n)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return 0, fmt.Errorf("holo: creating chunk directory: %w", err)
	}

	var header = encodeAudioHeader(audioHeader{
		Frames:       uint32(frames),         //nolint:gosec
		Channels:     uint16(pcm.Channels),   //nolint:gosec
		SampleRate:   uint32(pcm.SampleRate), //nolint:gosec
		CoarseFrames: uint32(t),              //nolint:gosec
	})

	var coarsePayload = encodeInt16Slice(coarse)

	for block := int64(0); block < b; block++ {
		var members = blockIndices(n, block, b)
		var values = make([]int16, len(members))

		for k, idx := range members {
			values[k] = residual[idx]
		}

		var rc = &rawChunk{
			magic:      magicAudio,
			version:    maxSupportedVersion,
			modeHeader: header,
			coarse:     coarsePayload,
			slice:      encodeInt16Slice(values),
			blockIndex: uint32(block), //nolint:gosec
			blockCount: uint32(b),     //nolint:gosec
			nTotal:     uint64(n),     //nolint:gosec
		}

		if err := writeChunkFile(outDir, chunkFileName(block, b), rc); err != nil {
			return 0, err
		}
	}

	logInfo("encoded audio", "frames", frames, "channels", pcm.Channels, "rate", pcm.SampleRate, "blocks", b)

	return b, nil
}

// DecodeAudioDir scans a directory of chunk files and reconstructs the
// waveform from whatever usable subset it finds.
func DecodeAudioDir(dir string) (*PCMAudio, error) {
	var set, err = scanChunkDir(dir)
	if err != nil {
		return nil, err
	}

	return decodeAudioSet(set)
}

func decodeAudioSet(set *chunkSet) (*PCMAudio, error) {
	if set.mode != magicAudio {
		return nil, fmt.Errorf("%w: directory is not audio mode", ErrMixedModes)
	}

	var hdr, hdrErr = decodeAudioHeader(set.modeHeader)
	if hdrErr != nil {
		return nil, hdrErr
	}

	var frames = int(hdr.Frames)
	var channels = int(hdr.Channels)
	var t = int(hdr.CoarseFrames)

	var n = int64(set.nTotal) //nolint:gosec
	if channels < 1 || t < 1 || n != int64(frames)*int64(channels) {
		return nil, fmt.Errorf("%w: n_total %d does not match %d frames x %d channels", ErrInconsistentChunk, n, frames, channels)
	}

	var residual = make([]int16, n)

	for b, chunk := range set.chunks {
		var members = blockIndices(n, int64(b), int64(set.blockCount))

		var values, decErr = decodeInt16Slice(chunk.slice, len(members))
		if decErr != nil {
			logWarn("dropping chunk with bad residual slice", "blockIndex", b, "err", decErr)

			continue
		}

		for k, idx := range members {
			residual[idx] = values[k]
		}
	}

	var firstChunk *rawChunk
	for _, c := range set.chunks {
		firstChunk = c

		break
	}

	var coarse, coarseErr = decodeInt16Slice(firstChunk.coarse, t*channels)
	if coarseErr != nil {
		return nil, coarseErr
	}

	var coarseUp = interpolateCoarse(coarse, frames, channels, t)

	var samples = make([]int16, n)
	for i := range samples {
		samples[i] = clampInt16(int32(coarseUp[i]) + int32(residual[i]))
	}

	logInfo("decoded audio", "frames", frames, "channels", channels, "chunksUsed", len(set.chunks), "blockCount", set.blockCount)

	return &PCMAudio{SampleRate: int(hdr.SampleRate), Channels: channels, Samples: samples}, nil
}
