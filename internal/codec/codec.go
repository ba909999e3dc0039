// Package codec dispatches a compressed NPY block to its decompressor by
// algorithm tag. Zstandard is mandatory; the remaining tags are
// recognised but may be reported Unsupported at point of use.
package codec

import (
	"bytes"
	"errors"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/nicolapapp/bioformats/internal/npy"
)

var ErrUnsupported = errors.New("codec: algorithm recognised but not implemented")

// Decompress returns the decompressed bytes for one compressed block.
// expectedLen, if positive, is a length hint (the expected plane size)
// used to preallocate the output buffer.
func Decompress(algo npy.Algorithm, compressed []byte, expectedLen int) ([]byte, error) {
	switch algo {
	case npy.AlgoNone:
		return compressed, nil
	case npy.AlgoZstd:
		return decompressZstd(compressed, expectedLen)
	case npy.AlgoZlib, npy.AlgoLZ4, npy.AlgoJetRaw, npy.AlgoRLE:
		return nil, ErrUnsupported
	default:
		return nil, ErrUnsupported
	}
}

func decompressZstd(compressed []byte, expectedLen int) ([]byte, error) {
	dec, err := zstd.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	buf := new(bytes.Buffer)
	if expectedLen > 0 {
		buf.Grow(expectedLen)
	}
	if _, err := io.Copy(buf, dec); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
