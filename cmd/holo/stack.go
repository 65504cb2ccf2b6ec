package main

/*------------------------------------------------------------------
 *
 * Purpose:	Frame stacking: pixel-wise average of equally sized
 *		frames, for noise reduction before encoding. uint8 in,
 *		float32 accumulation, uint8 out with half-up rounding.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ciaoidea/holocodec/holo"
)

// stackFrames averages the frames and writes <first>_stack.png next to
// the first frame, returning its path.
func stackFrames(paths []string) (string, error) {
	var sum []float32
	var w, h int

	for _, path := range paths {
		var data, readErr = os.ReadFile(path)
		if readErr != nil {
			return "", fmt.Errorf("reading frame: %w", readErr)
		}

		var img, decErr = holo.DecodeRGB(data)
		if decErr != nil {
			return "", fmt.Errorf("%s: %w", path, decErr)
		}

		if sum == nil {
			w, h = img.W, img.H
			sum = make([]float32, len(img.Pix))
		} else if img.W != w || img.H != h {
			return "", fmt.Errorf("%s is %dx%d, expected %dx%d", path, img.W, img.H, w, h)
		}

		for i, v := range img.Pix {
			sum[i] += float32(v)
		}
	}

	var out = &holo.RGBImage{W: w, H: h, Pix: make([]uint8, len(sum))}
	var count = float32(len(paths))

	for i, v := range sum {
		var mean = v/count + 0.5

		if mean > 255 {
			mean = 255
		}

		out.Pix[i] = uint8(mean)
	}

	var first = paths[0]
	var stem = strings.TrimSuffix(first, filepath.Ext(first))
	var outPath = stem + "_stack.png"

	if err := holo.EncodePNG(out, outPath); err != nil {
		return "", fmt.Errorf("writing %s: %w", outPath, err)
	}

	return outPath, nil
}
