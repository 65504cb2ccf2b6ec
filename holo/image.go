package holo

/*------------------------------------------------------------------
 *
 * Purpose:	Image pipeline (C3): bicubic (Catmull-Rom) thumbnail and
 *		upscale, PNG-serialized coarse payload, int16 residual.
 *
 *------------------------------------------------------------------*/

import (
	"bytes"
	"fmt"
	stdimage "image"
	"image/color"
	_ "image/gif"  // side-effect register: additional decodeRGB input format
	_ "image/jpeg" // side-effect register: additional decodeRGB input format
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"  // side-effect register: additional decodeRGB input format
	_ "golang.org/x/image/tiff" // side-effect register: additional decodeRGB input format
)

const defaultThumbSide = 64

// RGBImage is a tightly-packed (H, W, 3) uint8 raster, row-major.
type RGBImage struct {
	W, H int
	Pix  []uint8 // len == H*W*3
}

func newRGBImage(w, h int) *RGBImage {
	return &RGBImage{W: w, H: h, Pix: make([]uint8, w*h*3)}
}

func (img *RGBImage) at(x, y, c int) uint8 {
	return img.Pix[(y*img.W+x)*3+c]
}

func (img *RGBImage) set(x, y, c int, v uint8) {
	img.Pix[(y*img.W+x)*3+c] = v
}

// toNRGBA builds a fully-opaque stdlib image for use with x/image/draw.
func (img *RGBImage) toNRGBA() *stdimage.NRGBA {
	var out = stdimage.NewNRGBA(stdimage.Rect(0, 0, img.W, img.H))

	for y := 0; y < img.H; y++ {
		for x := 0; x < img.W; x++ {
			var i = out.PixOffset(x, y)
			out.Pix[i] = img.at(x, y, 0)
			out.Pix[i+1] = img.at(x, y, 1)
			out.Pix[i+2] = img.at(x, y, 2)
			out.Pix[i+3] = 255
		}
	}

	return out
}

// fromStdImage drops alpha (straight channel drop, no compositing) and
// packs into RGBImage.
func fromStdImage(src stdimage.Image) *RGBImage {
	var bounds = src.Bounds()
	var w, h = bounds.Dx(), bounds.Dy()
	var out = newRGBImage(w, h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var c = color.NRGBAModel.Convert(src.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			out.set(x, y, 0, c.R)
			out.set(x, y, 1, c.G)
			out.set(x, y, 2, c.B)
		}
	}

	return out
}

// decodeRGB decodes any supported image format into an RGBImage, alpha
// dropped.
func decodeRGB(data []byte) (*RGBImage, error) {
	var src, _, err = stdimage.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedInput, err)
	}

	return fromStdImage(src), nil
}

// bicubicResize applies the Catmull-Rom (Mitchell-Netravali B=0,C=0.5)
// kernel, for both the thumbnail downscale and the coarse upscale.
func bicubicResize(img *RGBImage, w, h int) *RGBImage {
	var src = img.toNRGBA()
	var dst = stdimage.NewNRGBA(stdimage.Rect(0, 0, w, h))

	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	return fromStdImage(dst)
}

// ImageEncodeOptions configures the image pipeline's encode step.
type ImageEncodeOptions struct {
	TargetKB  int
	ThumbSide int
}

// EncodeImage splits an image into a PNG thumbnail plus an interleaved
// int16 residual and writes B chunk files to outDir.
func EncodeImage(data []byte, opts ImageEncodeOptions, outDir string) (blockCount int64, err error) {
	var img, decErr = decodeRGB(data)
	if decErr != nil {
		return 0, decErr
	}

	var thumbSide = opts.ThumbSide
	if thumbSide <= 0 {
		thumbSide = defaultThumbSide
	}

	var minSide = img.W
	if img.H < minSide {
		minSide = img.H
	}

	var t = thumbSide
	if t > minSide {
		t = minSide
	}

	var thumb = bicubicResize(img, t, t)
	var coarseUp = bicubicResize(thumb, img.W, img.H)

	var thumbPNG bytes.Buffer
	if err := png.Encode(&thumbPNG, thumb.toNRGBA()); err != nil {
		return 0, fmt.Errorf("holo: encoding thumbnail png: %w", err)
	}

	var n = int64(img.W) * int64(img.H) * 3
	var residual = make([]int16, n)

	for i := range residual {
		residual[i] = clampResidual(int32(img.Pix[i]) - int32(coarseUp.Pix[i]))
	}

	var b = chooseBlockCount(n*2, opts.TargetKB, n)
	var inter = newInterleaver(n)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return 0, fmt.Errorf("holo: creating chunk directory: %w", err)
	}

	var header = encodeImageHeader(imageHeader{
		Width:     uint32(img.W), //nolint:gosec
		Height:    uint32(img.H), //nolint:gosec
		Channels:  3,
		ThumbSide: uint16(t), //nolint:gosec
	})

	for block := int64(0); block < b; block++ {
		var members = inter.block(block, b)
		var values = make([]int16, len(members))

		for k, idx := range members {
			values[k] = residual[idx]
		}

		var rc = &rawChunk{
			magic:      magicImage,
			version:    maxSupportedVersion,
			modeHeader: header,
			coarse:     thumbPNG.Bytes(),
			slice:      encodeInt16Slice(values),
			blockIndex: uint32(block), //nolint:gosec
			blockCount: uint32(b),     //nolint:gosec
			nTotal:     uint64(n),     //nolint:gosec
		}

		if err := writeChunkFile(outDir, chunkFileName(block, b), rc); err != nil {
			return 0, err
		}
	}

	logInfo("encoded image", "width", img.W, "height", img.H, "blocks", b, "residualLen", n)

	return b, nil
}

func clampResidual(v int32) int16 {
	return clampInt16(v)
}

func writeChunkFile(dir, name string, rc *rawChunk) error {
	var path = filepath.Join(dir, name)

	var f, err = os.Create(path)
	if err != nil {
		return fmt.Errorf("holo: creating chunk file: %w", err)
	}
	defer f.Close()

	if err := writeChunk(f, rc); err != nil {
		_ = os.Remove(path)

		return fmt.Errorf("holo: writing chunk file: %w", err)
	}

	return nil
}

// DecodeImageDir scans a directory of chunk files and reconstructs the
// raster from whatever usable subset it finds.
func DecodeImageDir(dir string) (*RGBImage, error) {
	var set, err = scanChunkDir(dir)
	if err != nil {
		return nil, err
	}

	return decodeImageSet(set)
}

func decodeImageSet(set *chunkSet) (*RGBImage, error) {
	if set.mode != magicImage {
		return nil, fmt.Errorf("%w: directory is not image mode", ErrMixedModes)
	}

	var hdr, hdrErr = decodeImageHeader(set.modeHeader)
	if hdrErr != nil {
		return nil, hdrErr
	}

	var n = int64(set.nTotal) //nolint:gosec
	if n != int64(hdr.Width)*int64(hdr.Height)*3 {
		return nil, fmt.Errorf("%w: n_total %d does not match %dx%dx3", ErrInconsistentChunk, n, hdr.Width, hdr.Height)
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

	var thumb, _, thumbErr = stdimage.Decode(bytes.NewReader(firstChunk.coarse))
	if thumbErr != nil {
		return nil, fmt.Errorf("holo: decoding stored thumbnail: %w", thumbErr)
	}

	var coarseUp = bicubicResize(fromStdImage(thumb), int(hdr.Width), int(hdr.Height))

	var out = newRGBImage(int(hdr.Width), int(hdr.Height))
	for i := range out.Pix {
		out.Pix[i] = clampByte(int32(coarseUp.Pix[i]) + int32(residual[i]))
	}

	logInfo("decoded image", "width", out.W, "height", out.H, "chunksUsed", len(set.chunks), "blockCount", set.blockCount)

	return out, nil
}

// DecodeRGB decodes any supported image format into a packed RGB raster,
// alpha dropped. Exposed for the frame-stacking front end.
func DecodeRGB(data []byte) (*RGBImage, error) {
	return decodeRGB(data)
}

// EncodePNG writes img as a PNG file, used by DecodePath for image
// reconstructions and by cmd/holo's stacking utility.
func EncodePNG(img *RGBImage, path string) error {
	var f, err = os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return png.Encode(f, img.toNRGBA())
}
