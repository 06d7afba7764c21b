// Package schematic classifies and decodes Java-edition schematic files
// into a uniform Volume value.
package schematic

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

// Decompress probes data for gzip then zlib framing and returns the inner
// bytes. If neither applies, data is returned unchanged. This never fails
// the pipeline: an uncompressed file is a valid input.
func Decompress(data []byte) []byte {
	if out, ok := tryGzip(data); ok {
		return out
	}
	if out, ok := tryZlib(data); ok {
		return out
	}
	return data
}

func tryGzip(data []byte) ([]byte, bool) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, false
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, false
	}
	return out, true
}

func tryZlib(data []byte) ([]byte, bool) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, false
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, false
	}
	return out, true
}
