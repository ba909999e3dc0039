// Package search recursively locates slide sentinel files under a root
// URI, local or object-store backed, via a TileDB VFS trawl.
package search

import (
	"path/filepath"

	"github.com/nicolapapp/bioformats/internal/stream"
)

// trawl recurses into every subdirectory of uri, collecting files whose
// basename matches pattern.
func trawl(vfs *stream.VFS, pattern string, uri string, items []string) ([]string, error) {
	dirs, files, err := vfs.List(uri)
	if err != nil {
		return items, err
	}

	for _, file := range files {
		match, err := filepath.Match(pattern, filepath.Base(file))
		if err != nil {
			return items, err
		}
		if match {
			items = append(items, file)
		}
	}

	for _, dir := range dirs {
		items, err = trawl(vfs, pattern, dir, items)
		if err != nil {
			return items, err
		}
	}

	return items, nil
}

// FindSlides recursively searches uri for *.sldy and *.sldyz sentinel
// files, using configURI for object-store credentials (empty for a
// generic local-filesystem config).
func FindSlides(uri, configURI string) ([]string, error) {
	vfs, err := stream.Open(configURI)
	if err != nil {
		return nil, err
	}
	defer vfs.Close()

	var items []string
	for _, pattern := range []string{"*.sldy", "*.sldyz"} {
		items, err = trawl(vfs, pattern, uri, items)
		if err != nil {
			return nil, err
		}
	}

	return items, nil
}
