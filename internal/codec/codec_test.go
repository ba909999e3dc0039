package codec

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/zstd"

	"github.com/nicolapapp/bioformats/internal/npy"
)

// A Zstd-compressed block must decompress to the exact original bytes.
func TestDecompressZstdRoundTrip(t *testing.T) {
	original := []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatalf("zstd.NewWriter: %v", err)
	}
	compressed := enc.EncodeAll(original, nil)
	enc.Close()

	out, err := Decompress(npy.AlgoZstd, compressed, len(original))
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(out, original) {
		t.Fatalf("expected %v, got %v", original, out)
	}
}

func TestDecompressNoneIsIdentity(t *testing.T) {
	raw := []byte{9, 9, 9}
	out, err := Decompress(npy.AlgoNone, raw, 0)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(out, raw) {
		t.Fatalf("expected identity passthrough")
	}
}

func TestDecompressUnsupportedTags(t *testing.T) {
	for _, algo := range []npy.Algorithm{npy.AlgoZlib, npy.AlgoLZ4, npy.AlgoJetRaw, npy.AlgoRLE} {
		if _, err := Decompress(algo, nil, 0); err != ErrUnsupported {
			t.Fatalf("algorithm %d: expected ErrUnsupported, got %v", algo, err)
		}
	}
}
