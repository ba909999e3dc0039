// Package emit derives the facts a capture publishes to the downstream
// microscopy metadata store: dimensions, RGB/pixel-type inference, ROI
// shapes, voxel size, channel names, and per-plane timing. It only
// computes facts; Sink is the opaque collaborator that stores them.
package emit

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/nicolapapp/bioformats/internal/record"
)

// Sink is the downstream microscopy metadata store. It is modelled
// opaquely: emit never reaches into its internals, it only publishes
// facts derived from a decoded capture.
type Sink interface {
	PublishCapture(title string, facts CaptureFacts) error
}

// Dimensions is one capture's axis extents.
type Dimensions struct {
	Width        int
	Height       int
	NumZ         int
	NumChannels  int
	NumTimepoints int
	NumPositions int
}

// CaptureFacts is everything published for one capture.
type CaptureFacts struct {
	Dimensions  Dimensions
	RGB         bool
	PixelType   string
	Channels    []string
	Objective   string
	VoxelSize   float64
	HasVoxelSize bool
	ROIs        [][]ROIShape // one slice per timepoint, index-aligned with the decoded AnnotationSet list

	// ExposureMs is each channel's exposure time in milliseconds,
	// index-aligned with Channels.
	ExposureMs []float64

	// DeltaTMs, StageX, StageY and StageZ are index-aligned with the
	// capture's raw (timepoint x position) axis, the same one
	// ElapsedTimes and StagePositions are decoded against.
	DeltaTMs []int64
	StageX   []float64
	StageY   []float64
	// StageZ[t][z] is the stage Z position at raw timepoint t and focal
	// plane z: StagePositions[t].Z plus channel 0's interplane spacing
	// times z (see PlaneStageZ).
	StageZ [][]float64
}

// InferRGB implements "RGB inference": a pixel whose byte width divides
// evenly by 3 packs three logical channels (R,G,B) into one stored
// channel; splitting by 3 recovers the logical channel count.
func InferRGB(bytesPerPixel, storedChannels int) (rgb bool, effectiveChannels, perChannelBytes int) {
	if bytesPerPixel > 0 && bytesPerPixel%3 == 0 {
		return true, storedChannels * 3, bytesPerPixel / 3
	}
	return false, storedChannels, bytesPerPixel
}

// PixelTypeName names the pixel type from its byte width and signedness,
// after RGB splitting has reduced it to the per-channel byte width.
func PixelTypeName(perChannelBytes int, signed bool) string {
	prefix := "uint"
	if signed {
		prefix = "int"
	}
	return fmt.Sprintf("%s%d", prefix, perChannelBytes*8)
}

// VoxelSizeMicrons implements "Voxel size": lens.micronsPerPixel /
// optovar.magnification * channel[0].xFactor, only defined when every
// divisor and multiplier is strictly positive.
func VoxelSizeMicrons(micronsPerPixel, magnification, xFactor float64) (float64, bool) {
	if micronsPerPixel <= 0 || magnification <= 0 || xFactor <= 0 {
		return 0, false
	}
	return micronsPerPixel / magnification * xFactor, true
}

// PlaneStageZ implements the per-plane stage Z rule: the capture's
// recorded stage Z plus the interplane spacing times the focal plane
// index.
func PlaneStageZ(stageZ, interplaneSpacingMicrons float64, zplane int) float64 {
	return stageZ + interplaneSpacingMicrons*float64(zplane)
}

// TrimmedChannelNames returns each channel's display name with
// surrounding whitespace removed.
func TrimmedChannelNames(channels []record.ChannelRecord) []string {
	return lo.Map(channels, func(c record.ChannelRecord, _ int) string {
		return strings.TrimSpace(c.Channel.Name)
	})
}

// Objective names the objective lens used for a capture.
func Objective(img *record.ImageRecord) string {
	return strings.TrimSpace(img.Lens.Name)
}
