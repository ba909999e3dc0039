// Package bioformats reads SlideBook 7 scientific-microscopy slide
// containers (.sldy / .sldyz): directory-packaged multi-dimensional
// image sets. It exposes a uniform multi-capture, multi-plane pixel and
// metadata interface, composing the layout, record, npy, codec and
// handlecache packages described in the individual internal packages.
package bioformats

import (
	"fmt"
	"path"
	"strings"

	"github.com/nicolapapp/bioformats/internal/capture"
	"github.com/nicolapapp/bioformats/internal/emit"
	"github.com/nicolapapp/bioformats/internal/handlecache"
	"github.com/nicolapapp/bioformats/internal/layout"
	"github.com/nicolapapp/bioformats/internal/stream"
)

// filesystem is everything the reader needs from a backing store: the
// capture loader's own Filesystem contract (whose List also serves
// group enumeration and used-files enumeration), plus a Close to release
// the backing handle.
// *stream.VFS satisfies it directly; tests supply an in-memory fake, the
// same pattern internal/capture's own tests use.
type filesystem interface {
	capture.Filesystem
	Close()
}

// Reader is the public slide handle. One Reader owns every ImageGroup
// decoded from the slide and the shared file-handle cache they borrow
// from; it is single-threaded cooperative and must be
// externally serialised by the caller.
type Reader struct {
	path string
	root string

	fs     filesystem
	cache  *handlecache.Cache
	groups []*capture.Group
}

// Open opens the slide at slidePath, enumerates its image groups and
// loads every group's metadata documents. A slide with zero valid groups
// is reported as ErrEmptyContainer. vfsConfigURI may be empty for a
// generic local-filesystem VFS config.
func Open(slidePath, vfsConfigURI string) (*Reader, error) {
	vfs, err := stream.Open(vfsConfigURI)
	if err != nil {
		return nil, fmt.Errorf("%w: opening vfs: %v", ErrNotFound, err)
	}

	r, err := open(vfs, slidePath)
	if err != nil {
		vfs.Close()
		return nil, err
	}
	return r, nil
}

// open is Open's filesystem-agnostic core: everything above deciding how
// bytes reach the reader.
func open(fs filesystem, slidePath string) (*Reader, error) {
	compressed, err := layout.Compressed(slidePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPathSyntax, err)
	}

	root, err := layout.Root(slidePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPathSyntax, err)
	}

	r := &Reader{path: slidePath, root: root, fs: fs}
	r.cache = handlecache.New(fs.OpenRead)

	enumerated, err := layout.ListImageGroups(listerOf(fs), root)
	if err != nil {
		if err == layout.ErrEmptyContainer {
			return nil, ErrEmptyContainer
		}
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	groups := make([]*capture.Group, 0, len(enumerated))
	for _, g := range enumerated {
		loaded, err := capture.Load(fs, g, compressed)
		if err != nil {
			// A group that fails to load is excluded from the published
			// list, not fatal to the slide: a failure here aborts only this
			// group, not the whole open.
			continue
		}
		groups = append(groups, loaded)
	}

	if len(groups) == 0 {
		return nil, ErrEmptyContainer
	}
	r.groups = groups

	return r, nil
}

// lister adapts any filesystem to layout.Lister.
type lister struct{ fs filesystem }

func listerOf(fs filesystem) lister { return lister{fs} }

func (l lister) Dirs(uri string) ([]string, error) {
	dirs, _, err := l.fs.List(uri)
	return dirs, err
}

func (l lister) Files(uri string) ([]string, error) {
	_, files, err := l.fs.List(uri)
	return files, err
}

// NumCaptures reports the number of successfully loaded image groups.
func (r *Reader) NumCaptures() int {
	return len(r.groups)
}

// Dimensions reports the published axis extents for capture series.
func (r *Reader) Dimensions(series int) (emit.Dimensions, error) {
	g, err := r.group(series)
	if err != nil {
		return emit.Dimensions{}, err
	}

	bytesPerPixel, _ := g.PixelFormat()
	_, effectiveChannels, _ := emit.InferRGB(bytesPerPixel, len(g.Channels))

	return emit.Dimensions{
		Width:         int(g.Image.Width),
		Height:        int(g.Image.Height),
		NumZ:          int(g.Image.NumPlanes),
		NumChannels:   effectiveChannels,
		NumTimepoints: g.NumTimepointsOut,
		NumPositions:  g.NumPositions,
	}, nil
}

// Facts derives the full external-metadata-sink emission for series.
func (r *Reader) Facts(series int) (emit.CaptureFacts, error) {
	g, err := r.group(series)
	if err != nil {
		return emit.CaptureFacts{}, err
	}

	bytesPerPixel, signed := g.PixelFormat()
	return emit.BuildCaptureFacts(
		g.Image, g.Channels, g.Annotations, g.ElapsedTimes, g.StagePositions,
		bytesPerPixel, signed,
		int(g.Image.NumPlanes), g.NumTimepointsOut, g.NumPositions,
	), nil
}

// ReadPlane serves the 2-D pixel plane at (series, positionIdx, t, z, c)
// into out, which must be exactly width*height*bytesPerPixel bytes. The
// published axis order is X,Y,C,Z,T; positionIdx is folded into the raw
// timepoint index before being handed to the capture loader, which only
// ever sees a flat raw T axis and always receives position 0 internally.
func (r *Reader) ReadPlane(series, positionIdx, t, z, c int, out []byte) error {
	g, err := r.group(series)
	if err != nil {
		return err
	}

	rawT := t*g.NumPositions + positionIdx
	return g.ReadPlane(r.cache, rawT, z, c, out)
}

// Title returns the capture's title (its source directory's basename
// with .imgdir stripped).
func (r *Reader) Title(series int) (string, error) {
	g, err := r.group(series)
	if err != nil {
		return "", err
	}
	return g.Title, nil
}

func (r *Reader) group(series int) (*capture.Group, error) {
	if series < 0 || series >= len(r.groups) {
		return nil, fmt.Errorf("%w: series %d out of range [0,%d)", ErrNotFound, series, len(r.groups))
	}
	return r.groups[series], nil
}

// UsedFiles enumerates the slide sentinel file plus every file under the
// root directory, excluding lock files (*.lck), copies (*.copy), and
// *.dat; if noPixels is set, *.npy/*.npyz are excluded too.
func (r *Reader) UsedFiles(noPixels bool) ([]string, error) {
	files := []string{r.path}

	walked, err := r.walk(r.root)
	if err != nil {
		return nil, err
	}

	for _, f := range walked {
		base := path.Base(f)
		switch {
		case strings.HasSuffix(base, ".lck"):
			continue
		case strings.HasSuffix(base, ".copy"):
			continue
		case strings.HasSuffix(base, ".dat"):
			continue
		case noPixels && (strings.HasSuffix(base, ".npy") || strings.HasSuffix(base, ".npyz")):
			continue
		}
		files = append(files, f)
	}

	return files, nil
}

func (r *Reader) walk(dir string) ([]string, error) {
	dirs, files, err := r.fs.List(dir)
	if err != nil {
		return nil, err
	}

	out := append([]string(nil), files...)
	for _, d := range dirs {
		sub, err := r.walk(d)
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}
	return out, nil
}

// Close closes every stream the reader's handle cache holds open and
// releases the underlying filesystem handle.
func (r *Reader) Close() error {
	if r.cache != nil {
		r.cache.CloseAll()
	}
	if r.fs != nil {
		r.fs.Close()
	}
	return nil
}
