package holo

/*------------------------------------------------------------------
 *
 * Purpose:	Residual/coarse payload compression. Compressed payloads
 *		are opaque: any compliant deflate at any level produces a
 *		valid chunk because the decoder only requires a successful
 *		inflate, so stdlib compress/flate at the default level is
 *		enough.
 *
 *------------------------------------------------------------------*/

import (
	"bytes"
	"compress/flate"
	"fmt"
	"io"
)

func deflateBytes(data []byte) []byte {
	var buf bytes.Buffer

	var w, _ = flate.NewWriter(&buf, flate.DefaultCompression)
	_, _ = w.Write(data)
	_ = w.Close()

	return buf.Bytes()
}

func inflateBytes(data []byte) ([]byte, error) {
	var r = flate.NewReader(bytes.NewReader(data))
	defer r.Close()

	var out, err = io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeflate, err)
	}

	return out, nil
}
