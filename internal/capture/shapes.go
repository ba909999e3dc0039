package capture

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/nicolapapp/bioformats/internal/layout"
	"github.com/nicolapapp/bioformats/internal/npy"
)

// resolveShape implements "Counting image files", the three-way branch
// that determines the effective channel/timepoint counts and whether the
// group is laid out single-file-multi-timepoint (SFMT):
//
//  1. file-per-(channel,timepoint): F == declaredChannels*declaredTimepoints.
//  2. SFMT: F == declaredChannels and numPlanes == 1; the effective
//     timepoint count is the max shape[0] seen across channel files
//     (tolerating channels truncated by a crashed acquisition).
//  3. fallback: scan filenames for the highest _Ch/_TP token.
func resolveShape(vfs Filesystem, groupPath string, declaredChannels, numPlanes, declaredTimepoints int) (numChannels, numTimepoints int, sfmt bool, err error) {
	imageFiles, err := listImageDataFiles(vfs, groupPath)
	if err != nil {
		return 0, 0, false, err
	}

	switch {
	case len(imageFiles) == declaredChannels*declaredTimepoints:
		return declaredChannels, declaredTimepoints, false, nil

	case len(imageFiles) == declaredChannels && numPlanes == 1:
		var firstAxis []int
		for _, f := range imageFiles {
			h, err := readHeader(vfs, f)
			if err != nil {
				return 0, 0, false, fmt.Errorf("capture: reading NPY header for %s: %w", f, err)
			}
			if len(h.Shape) == 3 {
				firstAxis = append(firstAxis, h.Shape[0])
			}
		}
		// channel files truncated by a crashed acquisition report fewer
		// stored timepoints than the rest; the group's timepoint count is
		// the largest seen, the same tolerance qa.go applies to per-ping
		// beam counts via lo.Max.
		maxT := 0
		if len(firstAxis) > 0 {
			maxT = lo.Max(firstAxis)
		}
		if maxT > 1 {
			return declaredChannels, maxT, true, nil
		}
		return declaredChannels, declaredTimepoints, false, nil

	default:
		maxCh, maxTP := -1, -1
		for _, f := range imageFiles {
			if ch, err := layout.ChannelOf(f); err == nil && ch > maxCh {
				maxCh = ch
			}
			if tp, err := layout.TimepointOf(f); err == nil && tp > maxTP {
				maxTP = tp
			}
		}
		if maxCh < 0 || maxTP < 0 {
			return 0, 0, false, fmt.Errorf("%w: no ImageData files recognised under %s", ErrNotFound, groupPath)
		}
		return maxCh + 1, maxTP + 1, false, nil
	}
}

func listImageDataFiles(vfs Filesystem, groupPath string) ([]string, error) {
	_, files, err := vfs.List(groupPath)
	if err != nil {
		return nil, err
	}

	var imageFiles []string
	for _, f := range files {
		base := f
		if idx := strings.LastIndexByte(f, '/'); idx >= 0 {
			base = f[idx+1:]
		}
		if strings.HasPrefix(base, "ImageData_") {
			imageFiles = append(imageFiles, f)
		}
	}
	return imageFiles, nil
}

func readHeader(vfs Filesystem, path string) (*npy.Header, error) {
	s, err := vfs.OpenRead(path)
	if err != nil {
		return nil, err
	}
	defer closeIfCloser(s)
	return npy.ParseHeader(s)
}

func closeIfCloser(s any) {
	if closer, ok := s.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
}
