package holo

/*------------------------------------------------------------------
 *
 * Purpose:	Mode dispatcher (C6): pick the pipeline by input extension
 *		on encode, by chunk magic on decode.
 *
 * Description:	The extension table is data, not a switch statement, so
 *		new extensions can be added without touching the routing
 *		code. The table is small enough to embed in the binary
 *		rather than search the filesystem for.
 *
 *------------------------------------------------------------------*/

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Mode is the closed set of codec pipelines.
type Mode int

const (
	ModeBinary Mode = iota
	ModeImage
	ModeAudio
)

func (m Mode) String() string {
	switch m {
	case ModeImage:
		return "image"
	case ModeAudio:
		return "audio"
	default:
		return "binary"
	}
}

//go:embed modes.yaml
var modesYAML []byte

var modeTableOnce sync.Once
var modeByExtension map[string]Mode

func loadModeTable() {
	var table struct {
		Image []string `yaml:"image"`
		Audio []string `yaml:"audio"`
	}

	if err := yaml.Unmarshal(modesYAML, &table); err != nil {
		// The table is embedded; a parse failure is a build defect.
		panic("holo: embedded modes.yaml is invalid: " + err.Error())
	}

	modeByExtension = map[string]Mode{}
	for _, ext := range table.Image {
		modeByExtension[ext] = ModeImage
	}

	for _, ext := range table.Audio {
		modeByExtension[ext] = ModeAudio
	}
}

// DetectMode returns the encode mode for an input path, from its
// extension. Unknown extensions are binary.
func DetectMode(path string) Mode {
	modeTableOnce.Do(loadModeTable)

	var ext = strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))

	return modeByExtension[ext]
}

// EncodeOptions is the caller-facing knob set shared by all pipelines.
type EncodeOptions struct {
	TargetKB     int
	ThumbSide    int
	CoarseFrames int
	CoarseBudget int
}

// EncodePath encodes one file into a chunk directory next to it and
// returns the directory path.
func EncodePath(inputPath string, opts EncodeOptions) (outDir string, blockCount int64, err error) {
	outDir = filepath.Join(filepath.Dir(inputPath), encodedDirName(inputPath))

	blockCount, err = EncodeFileTo(inputPath, outDir, opts)
	if err != nil {
		return "", 0, err
	}

	return outDir, blockCount, nil
}

// EncodeFileTo encodes one file into the given chunk directory. The
// transport uses this form, which owns a temporary directory per transfer.
func EncodeFileTo(inputPath, outDir string, opts EncodeOptions) (blockCount int64, err error) {
	var data, readErr = os.ReadFile(inputPath)
	if readErr != nil {
		return 0, fmt.Errorf("holo: reading input: %w", readErr)
	}

	var mode = DetectMode(inputPath)

	logInfo("encoding", "input", inputPath, "mode", mode.String(), "outDir", outDir)

	switch mode {
	case ModeImage:
		blockCount, err = EncodeImage(data, ImageEncodeOptions{TargetKB: opts.TargetKB, ThumbSide: opts.ThumbSide}, outDir)
	case ModeAudio:
		blockCount, err = EncodeAudio(data, AudioEncodeOptions{TargetKB: opts.TargetKB, CoarseFrames: opts.CoarseFrames}, outDir)
	default:
		blockCount, err = EncodeBinary(data, BinaryEncodeOptions{TargetKB: opts.TargetKB, CoarseBudget: opts.CoarseBudget}, outDir)
	}

	if err != nil {
		// Never leave a half-written chunk directory behind.
		_ = os.RemoveAll(outDir)

		return 0, err
	}

	return blockCount, nil
}

// DecodePath decodes a chunk directory and writes the reconstruction next
// to it, returning the output path. The mode comes from the chunk magic;
// a directory mixing magics is rejected.
func DecodePath(dirPath string) (outPath string, err error) {
	var set, scanErr = scanChunkDir(dirPath)
	if scanErr != nil {
		return "", scanErr
	}

	var name = decodedOutputName(dirPath)
	outPath = filepath.Join(filepath.Dir(filepath.Clean(dirPath)), name)

	switch set.mode {
	case magicImage:
		var img, decErr = decodeImageSet(set)
		if decErr != nil {
			return "", decErr
		}

		// The raster is re-serialized as PNG whatever the original
		// container was; only PNG is lossless for the reconstruction.
		if strings.ToLower(filepath.Ext(outPath)) != ".png" {
			outPath += ".png"
		}

		return outPath, EncodePNG(img, outPath)
	case magicAudio:
		var pcm, decErr = decodeAudioSet(set)
		if decErr != nil {
			return "", decErr
		}

		if strings.ToLower(filepath.Ext(outPath)) != ".wav" {
			outPath += ".wav"
		}

		return outPath, WriteWAV(outPath, pcm)
	default:
		var data, decErr = decodeBinarySet(set)
		if decErr != nil && data == nil {
			return "", decErr
		}

		if decErr != nil {
			logWarn("binary reconstruction is incomplete, missing positions are zero", "dir", dirPath)
		}

		return outPath, os.WriteFile(outPath, data, 0o644)
	}
}

// CompleteChunks reports how many chunk files in dir parse cleanly,
// which the transport's strict decode mode compares against the
// announced chunk total.
func CompleteChunks(dir string) int {
	var set, err = scanChunkDir(dir)
	if err != nil {
		return 0
	}

	return len(set.chunks)
}
