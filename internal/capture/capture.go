// Package capture composes the layout, record, npy, codec and
// handlecache packages into the capture loader: the per-image-group
// metadata load pipeline and the on-demand plane service.
package capture

import (
	"bytes"
	"fmt"
	"io"

	"github.com/nicolapapp/bioformats/internal/layout"
	"github.com/nicolapapp/bioformats/internal/npy"
	"github.com/nicolapapp/bioformats/internal/record"
	"github.com/nicolapapp/bioformats/internal/stream"
)

// Filesystem is the subset of stream.VFS the capture loader needs:
// directory listing for shape resolution, buffered reads for small
// metadata documents, and random-access opens for header parsing. A
// *stream.VFS satisfies it directly; tests supply an in-memory fake.
type Filesystem interface {
	List(uri string) (dirs, files []string, err error)
	ReadAll(path string) (*bytes.Reader, error)
	OpenRead(path string) (stream.Stream, error)
}

// Group is one fully loaded image group: its decoded metadata documents
// plus the derived shape and position facts needed to serve plane reads.
// An ImageGroup exclusively owns its records and its cached NPY header;
// it only borrows streams from the reader's shared handlecache.Cache.
type Group struct {
	Title      string
	Path       string
	Compressed bool

	Image          *record.ImageRecord
	Channels       []record.ChannelRecord
	Masks          *record.Masks
	Annotations    []record.AnnotationSet
	ElapsedTimes   []int64
	SAPositions    []int32
	StagePositions []record.StagePosition
	AuxData        *record.AuxData

	NumChannels      int
	NumTimepointsRaw int // the group's own flattened (timepoint x position) T axis
	NumPositions     int
	NumTimepointsOut int // NumTimepointsRaw / NumPositions
	SFMT             bool

	bytesPerPixel int
	signed        bool

	headerValid   bool
	lastChannel   int
	lastTimepoint int
	lastHeader    *npy.Header
}

// Load runs the ordered metadata pipeline for one enumerated image
// group: load_image_record, [count image files], load_channel_records,
// load_masks, load_annotations, load_elapsed_times, load_sa_positions,
// load_stage_positions, load_aux_data. Any failure aborts the group.
func Load(vfs Filesystem, g layout.Group, compressed bool) (*Group, error) {
	grp := &Group{Title: g.Title, Path: g.Path, Compressed: compressed, lastChannel: -1, lastTimepoint: -1}

	imgEntries, err := loadDocument(vfs, g.Path+"/ImageRecord.yaml")
	if err != nil {
		return nil, fmt.Errorf("capture: loading ImageRecord: %w", err)
	}
	image, _, err := record.DecodeImageRecord(imgEntries, 0)
	if err != nil {
		return nil, fmt.Errorf("capture: decoding ImageRecord: %w", err)
	}
	if err := image.Validate(); err != nil {
		return nil, fmt.Errorf("capture: %w", err)
	}
	grp.Image = image

	numChannels, numTimepoints, sfmt, err := resolveShape(vfs, g.Path, int(image.NumChannels), int(image.NumPlanes), int(image.NumTimepoints))
	if err != nil {
		return nil, fmt.Errorf("capture: counting image files: %w", err)
	}
	grp.NumChannels = numChannels
	grp.NumTimepointsRaw = numTimepoints
	grp.SFMT = sfmt

	chanEntries, err := loadDocument(vfs, g.Path+"/ChannelRecord.yaml")
	if err != nil {
		return nil, fmt.Errorf("capture: loading ChannelRecord: %w", err)
	}
	channels, _, err := record.DecodeChannelRecords(chanEntries, 0, numChannels)
	if err != nil {
		return nil, fmt.Errorf("capture: decoding ChannelRecord: %w", err)
	}
	grp.Channels = channels

	maskEntries, err := loadDocument(vfs, g.Path+"/MaskRecord.yaml")
	if err != nil {
		return nil, fmt.Errorf("capture: loading MaskRecord: %w", err)
	}
	masks, _, err := record.DecodeMasks(maskEntries, 0, numTimepoints)
	if err != nil {
		return nil, fmt.Errorf("capture: decoding MaskRecord: %w", err)
	}
	grp.Masks = masks

	annEntries, err := loadDocument(vfs, g.Path+"/AnnotationRecord.yaml")
	if err != nil {
		return nil, fmt.Errorf("capture: loading AnnotationRecord: %w", err)
	}
	annotations, _, err := record.DecodeAnnotations(annEntries, 0, numTimepoints)
	if err != nil {
		return nil, fmt.Errorf("capture: decoding AnnotationRecord: %w", err)
	}
	grp.Annotations = annotations

	elapsedEntries, err := loadDocument(vfs, g.Path+"/ElapsedTimes.yaml")
	if err != nil {
		return nil, fmt.Errorf("capture: loading ElapsedTimes: %w", err)
	}
	elapsed, _, err := record.DecodeElapsedTimes(elapsedEntries, 0)
	if err != nil {
		return nil, fmt.Errorf("capture: decoding ElapsedTimes: %w", err)
	}
	if len(elapsed) < numTimepoints {
		return nil, fmt.Errorf("%w: elapsed times has %d entries, want >= %d timepoints", ErrFormat, len(elapsed), numTimepoints)
	}
	grp.ElapsedTimes = elapsed

	saEntries, err := loadDocument(vfs, g.Path+"/SAPositionData.yaml")
	if err != nil {
		return nil, fmt.Errorf("capture: loading SAPositionData: %w", err)
	}
	saPositions, _, err := record.DecodeSAPositions(saEntries, 0)
	if err != nil {
		return nil, fmt.Errorf("capture: decoding SAPositionData: %w", err)
	}
	grp.SAPositions = saPositions

	stageEntries, err := loadDocument(vfs, g.Path+"/StagePositionData.yaml")
	if err != nil {
		return nil, fmt.Errorf("capture: loading StagePositionData: %w", err)
	}
	stagePositions, _, err := record.DecodeStagePositions(stageEntries, 0)
	if err != nil {
		return nil, fmt.Errorf("capture: decoding StagePositionData: %w", err)
	}
	grp.StagePositions = stagePositions
	grp.NumPositions = CountPositions(stagePositions)
	if grp.NumPositions > 0 {
		grp.NumTimepointsOut = numTimepoints / grp.NumPositions
	}

	auxEntries, err := loadDocument(vfs, g.Path+"/AuxData.yaml")
	if err != nil {
		return nil, fmt.Errorf("capture: loading AuxData: %w", err)
	}
	aux, _, err := record.DecodeAuxData(auxEntries, 0)
	if err != nil {
		return nil, fmt.Errorf("capture: decoding AuxData: %w", err)
	}
	grp.AuxData = aux

	firstPath := layout.ImageDataPath(g.Path, 0, 0, compressed)
	firstHeader, err := readHeader(vfs, firstPath)
	if err != nil {
		return nil, fmt.Errorf("capture: reading NPY header for %s: %w", firstPath, err)
	}
	grp.bytesPerPixel = firstHeader.BytesPerPixel
	grp.signed = firstHeader.Signed

	return grp, nil
}

// PixelFormat reports the stored NPY dtype's byte width and signedness,
// read from channel 0 timepoint 0's header when the group was loaded.
func (g *Group) PixelFormat() (bytesPerPixel int, signed bool) {
	return g.bytesPerPixel, g.signed
}

func loadDocument(vfs Filesystem, path string) ([]record.Entry, error) {
	r, err := vfs.ReadAll(path)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return record.Parse(data)
}
