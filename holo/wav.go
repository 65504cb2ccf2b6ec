package holo

/*------------------------------------------------------------------
 *
 * Purpose:	Minimal WAV (RIFF/PCM) reader and writer for the audio
 *		pipeline. Walks the canonical fmt/data chunk layout and
 *		reads samples as little-endian integer PCM; only 16 or 24
 *		bits per sample is accepted. The fmt chunk's format tag
 *		is not checked.
 *
 *------------------------------------------------------------------*/

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// PCMAudio is decoded 16-bit PCM, interleaved in frame-major order:
// Samples[frame*Channels+ch].
type PCMAudio struct {
	SampleRate int
	Channels   int
	Samples    []int16
}

var errNotRIFF = fmt.Errorf("%w: not a RIFF/WAVE file", ErrUnsupportedInput)

func decodeWAV(data []byte) (*PCMAudio, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, errNotRIFF
	}

	var pos = 12
	var channels, sampleRate, bitsPerSample int
	var sampleData []byte
	var haveFmt bool

	for pos+8 <= len(data) {
		var id = string(data[pos : pos+4])
		var size = int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		var body = pos + 8

		if body+size > len(data) {
			break
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, fmt.Errorf("%w: fmt chunk too short", ErrTruncated)
			}

			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bitsPerSample = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
			haveFmt = true
		case "data":
			sampleData = data[body : body+size]
		}

		pos = body + size
		if size%2 == 1 {
			pos++
		}
	}

	if !haveFmt || sampleData == nil {
		return nil, fmt.Errorf("%w: missing fmt or data chunk", ErrTruncated)
	}

	var samples, convErr = narrowPCMTo16(sampleData, bitsPerSample)
	if convErr != nil {
		return nil, convErr
	}

	return &PCMAudio{SampleRate: sampleRate, Channels: channels, Samples: samples}, nil
}

// narrowPCMTo16 reinterprets raw little-endian PCM as int16. Only 16-bit
// and 24-bit samples are in scope; 24-bit narrows by an arithmetic shift
// right of 8 bits (sign-preserving). Everything else is rejected.
func narrowPCMTo16(raw []byte, bitsPerSample int) ([]int16, error) {
	switch bitsPerSample {
	case 16:
		var out = make([]int16, len(raw)/2)
		for i := range out {
			out[i] = int16(binary.LittleEndian.Uint16(raw[i*2:])) //nolint:gosec
		}

		return out, nil
	case 24:
		var n = len(raw) / 3
		var out = make([]int16, n)

		for i := 0; i < n; i++ {
			var b0, b1, b2 = raw[i*3], raw[i*3+1], raw[i*3+2]
			var v = int32(b0) | int32(b1)<<8 | int32(b2)<<16

			if v&0x800000 != 0 {
				v |= -1 << 24
			}

			out[i] = int16(v >> 8) //nolint:gosec
		}

		return out, nil
	default:
		return nil, fmt.Errorf("%w: unsupported bits-per-sample %d", ErrUnsupportedInput, bitsPerSample)
	}
}

// encodeWAV writes a canonical 16-bit PCM RIFF/WAVE file.
func encodeWAV(w io.Writer, pcm *PCMAudio) error {
	var dataLen = len(pcm.Samples) * 2
	var byteRate = pcm.SampleRate * pcm.Channels * 2
	var blockAlign = pcm.Channels * 2

	var header = make([]byte, 44)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+dataLen)) //nolint:gosec
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1)                      // PCM
	binary.LittleEndian.PutUint16(header[22:24], uint16(pcm.Channels))   //nolint:gosec
	binary.LittleEndian.PutUint32(header[24:28], uint32(pcm.SampleRate)) //nolint:gosec
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))       //nolint:gosec
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))     //nolint:gosec
	binary.LittleEndian.PutUint16(header[34:36], 16)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(dataLen)) //nolint:gosec

	if _, err := w.Write(header); err != nil {
		return err
	}

	var body = make([]byte, dataLen)
	for i, s := range pcm.Samples {
		binary.LittleEndian.PutUint16(body[i*2:], uint16(s)) //nolint:gosec
	}

	_, err := w.Write(body)

	return err
}

// WriteWAV writes pcm to path as a canonical 16-bit PCM WAV file. Used by
// the decode output path and by capture front ends that feed the encoder.
func WriteWAV(path string, pcm *PCMAudio) error {
	var f, err = os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return encodeWAV(f, pcm)
}
