// Package stream provides the generic random-access byte source shared by
// the NPY plane decoder and the file-handle LRU. It caters for a slide
// living on a local disk or in an object store behind the same interface.
package stream

import (
	"bytes"
	"encoding/binary"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
)

// Stream is the minimal contract the rest of the reader cares about:
// random-access seek, and read. A *tiledb.VFSfh and a *bytes.Reader both
// implement it.
type Stream interface {
	Read(p []byte) (int, error)
	Seek(offset int64, whence int) (int64, error)
}

// Tell reports the current position within an opened stream.
func Tell(s Stream) (int64, error) {
	return s.Seek(0, 1)
}

// VFS wraps a TileDB virtual filesystem context along with the config and
// context objects needed to free it. One VFS instance is shared by a
// Reader across every ImageGroup it owns.
type VFS struct {
	Config *tiledb.Config
	Ctx    *tiledb.Context
	Fs     *tiledb.VFS
}

// Open constructs a VFS rooted at no particular URI; configURI may be
// empty for a generic local-filesystem config.
func Open(configURI string) (*VFS, error) {
	var (
		config *tiledb.Config
		err    error
	)

	if configURI == "" {
		config, err = tiledb.NewConfig()
	} else {
		config, err = tiledb.LoadConfig(configURI)
	}
	if err != nil {
		return nil, err
	}

	ctx, err := tiledb.NewContext(config)
	if err != nil {
		config.Free()
		return nil, err
	}

	fs, err := tiledb.NewVFS(ctx, config)
	if err != nil {
		ctx.Free()
		config.Free()
		return nil, err
	}

	return &VFS{Config: config, Ctx: ctx, Fs: fs}, nil
}

// Close releases the TileDB config/context/vfs handles.
func (v *VFS) Close() {
	v.Fs.Free()
	v.Ctx.Free()
	v.Config.Free()
}

// OpenRead opens a path for random-access reading, returning the raw
// Stream. Callers that want the whole file buffered in memory (small
// metadata documents) should use ReadAll instead.
func (v *VFS) OpenRead(path string) (Stream, error) {
	return v.Fs.Open(path, tiledb.TILEDB_VFS_READ)
}

// ReadAll reads a whole small file (a metadata document) into memory and
// returns a seekable in-memory reader, for small non-pixel documents.
func (v *VFS) ReadAll(path string) (*bytes.Reader, error) {
	size, err := v.Fs.FileSize(path)
	if err != nil {
		return nil, err
	}

	handle, err := v.Fs.Open(path, tiledb.TILEDB_VFS_READ)
	if err != nil {
		return nil, err
	}
	defer handle.Close()

	buffer := make([]byte, size)
	if err := binary.Read(handle, binary.BigEndian, &buffer); err != nil {
		return nil, err
	}

	return bytes.NewReader(buffer), nil
}

// List splits a directory's immediate children into subdirectories and
// files, used for directory trawling.
func (v *VFS) List(uri string) (dirs, files []string, err error) {
	return v.Fs.List(uri)
}

// Exists reports whether a path resolves to a regular file under the VFS.
func (v *VFS) Exists(path string) bool {
	ok, err := v.Fs.IsFile(path)
	if err != nil {
		return false
	}
	return ok
}
