// Package layout maps a slide path to its on-disk directory tree and
// enumerates the image-group directories and canonical file paths within
// it. It contains no decoding logic, only naming and enumeration rules.
package layout

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrPathSyntax     = errors.New("layout: path does not end in .sldy or .sldyz")
	ErrEmptyContainer = errors.New("layout: no valid image groups under root")
)

// Suffixes recognised for auto-detection of a slide sentinel file.
const (
	SuffixSldy  = ".sldy"
	SuffixSldyz = ".sldyz"
)

// Compressed reports whether a slide path names the compressed container
// variant, which flips every optional document/data suffix to its
// compressed counterpart.
func Compressed(slidePath string) (bool, error) {
	switch {
	case strings.HasSuffix(slidePath, SuffixSldyz):
		return true, nil
	case strings.HasSuffix(slidePath, SuffixSldy):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %s", ErrPathSyntax, slidePath)
	}
}

// Root strips the .sldy/.sldyz suffix from slidePath and appends .dir,
// giving the sibling root directory containing every image group.
func Root(slidePath string) (string, error) {
	switch {
	case strings.HasSuffix(slidePath, SuffixSldyz):
		return strings.TrimSuffix(slidePath, SuffixSldyz) + ".dir", nil
	case strings.HasSuffix(slidePath, SuffixSldy):
		return strings.TrimSuffix(slidePath, SuffixSldy) + ".dir", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrPathSyntax, slidePath)
	}
}

// Group is one enumerated image-group directory: its title (basename with
// .imgdir stripped, backslashes normalised) and its full path.
type Group struct {
	Title string
	Path  string
}

// Lister abstracts the directory-listing primitive so layout has no
// direct filesystem/VFS dependency; the root package's Reader supplies a
// listing backed by its filesystem (a stream.VFS in production).
type Lister interface {
	// Dirs lists direct subdirectories of uri.
	Dirs(uri string) ([]string, error)
	// Files lists direct files (non-directories) of uri.
	Files(uri string) ([]string, error)
}

// ListImageGroups lists direct subdirectories of root ending .imgdir,
// filtered to those containing ImageRecord.yaml and at least one
// .npy/.npyz file.
func ListImageGroups(l Lister, root string) ([]Group, error) {
	dirs, err := l.Dirs(root)
	if err != nil {
		return nil, err
	}

	groups := make([]Group, 0, len(dirs))
	for _, d := range dirs {
		base := path.Base(normalise(d))
		if !strings.HasSuffix(base, ".imgdir") {
			continue
		}

		files, err := l.Files(d)
		if err != nil {
			continue
		}

		hasRecord := false
		hasPixels := false
		for _, f := range files {
			fb := path.Base(normalise(f))
			if fb == "ImageRecord.yaml" {
				hasRecord = true
			}
			if strings.HasSuffix(fb, ".npy") || strings.HasSuffix(fb, ".npyz") {
				hasPixels = true
			}
		}

		if hasRecord && hasPixels {
			title := strings.TrimSuffix(base, ".imgdir")
			groups = append(groups, Group{Title: title, Path: d})
		}
	}

	if len(groups) == 0 {
		return nil, ErrEmptyContainer
	}

	return groups, nil
}

func normalise(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// dataExt returns the binary data suffix for a group, .npyz when
// compressed, .npy otherwise.
func dataExt(compressed bool) string {
	if compressed {
		return ".npyz"
	}
	return ".npy"
}

// ImageDataPath builds <group>/ImageData_Ch<channel>_TP<timepoint:07d><ext>.
func ImageDataPath(group string, channel, timepoint int, compressed bool) string {
	return fmt.Sprintf("%s/ImageData_Ch%d_TP%07d%s", group, channel, timepoint, dataExt(compressed))
}

// MaskDataPath builds <group>/MaskData_TP<timepoint:07d><ext>.
func MaskDataPath(group string, timepoint int, compressed bool) string {
	return fmt.Sprintf("%s/MaskData_TP%07d%s", group, timepoint, dataExt(compressed))
}

// HistogramDataPath builds <group>/HistogramData_Ch<channel>_TP<timepoint:07d><ext>.
func HistogramDataPath(group string, channel, timepoint int, compressed bool) string {
	return fmt.Sprintf("%s/HistogramData_Ch%d_TP%07d%s", group, channel, timepoint, dataExt(compressed))
}

// HistogramSummaryPath builds <group>/HistogramSummary_Ch<channel><ext>.
func HistogramSummaryPath(group string, channel int, compressed bool) string {
	return fmt.Sprintf("%s/HistogramSummary_Ch%d%s", group, channel, dataExt(compressed))
}

var (
	chRe = regexp.MustCompile(`_Ch(\d+)`)
	tpRe = regexp.MustCompile(`_TP(\d{7})`)
)

// ChannelOf parses the channel digits following the last _Ch token.
func ChannelOf(p string) (int, error) {
	m := chRe.FindAllStringSubmatch(p, -1)
	if m == nil {
		return 0, fmt.Errorf("layout: no _Ch token in %s", p)
	}
	last := m[len(m)-1]
	return strconv.Atoi(last[1])
}

// TimepointOf parses the exactly-7-digit timepoint token following the
// last _TP.
func TimepointOf(p string) (int, error) {
	m := tpRe.FindAllStringSubmatch(p, -1)
	if m == nil {
		return 0, fmt.Errorf("layout: no _TP token in %s", p)
	}
	last := m[len(m)-1]
	return strconv.Atoi(last[1])
}

// RenameToTP0 rewrites the 7-digit timepoint token to 0000000, used for
// single-file-multi-timepoint (SFMT) layouts where every timepoint lives
// in the channel's TP0 file.
func RenameToTP0(p string) string {
	return tpRe.ReplaceAllString(p, "_TP0000000")
}
