package capture

import (
	"fmt"
	"io"
	"log"

	"github.com/nicolapapp/bioformats/internal/codec"
	"github.com/nicolapapp/bioformats/internal/handlecache"
	"github.com/nicolapapp/bioformats/internal/layout"
	"github.com/nicolapapp/bioformats/internal/npy"
)

// ReadPlane implements "Serve a plane" for one (channel, raw timepoint,
// z) coordinate within this group. t is the group's own raw T axis
// (timepoint and position already folded together by the caller); out
// must be exactly width*height*bytesPerPixel bytes.
func (g *Group) ReadPlane(cache *handlecache.Cache, t, z, c int, out []byte) error {
	path := layout.ImageDataPath(g.Path, c, t, g.Compressed)
	if g.SFMT && t > 0 {
		path = layout.RenameToTP0(path)
	}

	s, err := cache.Get(path)
	if err != nil {
		return fmt.Errorf("capture: opening %s: %w", path, err)
	}

	if !g.headerValid || g.lastChannel != c || g.lastTimepoint != t {
		if _, err := s.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("capture: seeking to header of %s: %w", path, err)
		}
		h, err := npy.ParseHeader(s)
		if err != nil {
			return fmt.Errorf("capture: parsing NPY header for %s: %w", path, err)
		}
		g.lastHeader = h
		g.lastChannel = c
		g.lastTimepoint = t
		g.headerValid = true
	}

	h := g.lastHeader
	width, height := int(g.Image.Width), int(g.Image.Height)
	planeSize := h.PlaneSize(width, height)

	if int64(len(out)) != planeSize {
		return fmt.Errorf("%w: output buffer is %d bytes, want %d", ErrFormat, len(out), planeSize)
	}

	if h.Algorithm == npy.AlgoNone {
		return g.readUncompressedPlane(s, h, path, t, z, planeSize, out)
	}
	return g.readCompressedPlane(s, h, path, z, planeSize, out)
}

func (g *Group) readUncompressedPlane(s io.ReadSeeker, h *npy.Header, path string, t, z int, planeSize int64, out []byte) error {
	var offset int64
	if g.SFMT {
		offset = h.DataStart + planeSize*int64(t)
	} else {
		offset = h.DataStart + planeSize*int64(z)
	}

	if _, err := s.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("capture: seeking to plane in %s: %w", path, err)
	}
	if _, err := io.ReadFull(s, out); err != nil {
		return fmt.Errorf("capture: reading plane from %s: %w", path, err)
	}
	return nil
}

func (g *Group) readCompressedPlane(s io.ReadSeeker, h *npy.Header, path string, z int, planeSize int64, out []byte) error {
	if z < 0 || z >= len(h.BlockDict) {
		return fmt.Errorf("%w: block %d out of range (have %d) in %s", ErrFormat, z, len(h.BlockDict), path)
	}

	pos := h.BlockDataPos(z)
	length := h.BlockDict[z].Length

	compressed := make([]byte, length)
	if _, err := s.Seek(pos, io.SeekStart); err != nil {
		return fmt.Errorf("capture: seeking to block %d in %s: %w", z, path, err)
	}
	if _, err := io.ReadFull(s, compressed); err != nil {
		return fmt.Errorf("capture: reading compressed block %d from %s: %w", z, path, err)
	}

	decompressed, err := codec.Decompress(h.Algorithm, compressed, int(planeSize))
	if err != nil {
		return fmt.Errorf("capture: decompressing block %d of %s: %w", z, path, err)
	}
	if int64(len(decompressed)) != planeSize {
		log.Printf("capture: decompressed plane size %d != expected %d for %s", len(decompressed), planeSize, path)
	}
	copy(out, decompressed)
	return nil
}
