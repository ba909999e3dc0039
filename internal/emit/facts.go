package emit

import "github.com/nicolapapp/bioformats/internal/record"

// BuildCaptureFacts assembles the facts published for one capture.
// bytesPerPixel and signed describe the stored NPY dtype; numZ and
// numPositions come from the capture loader's resolved shape; elapsed
// and stagePositions are the raw per-(timepoint x position) arrays the
// capture loader decoded from ElapsedTimes.yaml/StagePositionData.yaml.
func BuildCaptureFacts(
	img *record.ImageRecord,
	channels []record.ChannelRecord,
	annotations []record.AnnotationSet,
	elapsed []int64,
	stagePositions []record.StagePosition,
	bytesPerPixel int,
	signed bool,
	numZ, numTimepoints, numPositions int,
) CaptureFacts {
	rgb, effectiveChannels, perChannelBytes := InferRGB(bytesPerPixel, len(channels))

	facts := CaptureFacts{
		Dimensions: Dimensions{
			Width:         int(img.Width),
			Height:        int(img.Height),
			NumZ:          numZ,
			NumChannels:   effectiveChannels,
			NumTimepoints: numTimepoints,
			NumPositions:  numPositions,
		},
		RGB:       rgb,
		PixelType: PixelTypeName(perChannelBytes, signed),
		Channels:  TrimmedChannelNames(channels),
		Objective: Objective(img),
	}

	var xFactor, interplaneSpacing float64
	if len(channels) > 0 {
		xFactor = channels[0].Exposure.XFactor
		interplaneSpacing = channels[0].Exposure.InterplaneSpacingMicrons
	}
	facts.VoxelSize, facts.HasVoxelSize = VoxelSizeMicrons(img.Lens.MicronPerPixel, img.Optovar.Magnification, xFactor)

	facts.ROIs = make([][]ROIShape, len(annotations))
	for i, set := range annotations {
		facts.ROIs[i] = DeriveROIs(set)
	}

	facts.ExposureMs = make([]float64, len(channels))
	for i, c := range channels {
		facts.ExposureMs[i] = c.Exposure.ExposureTimeMs
	}

	facts.DeltaTMs = append([]int64(nil), elapsed...)

	facts.StageX = make([]float64, len(stagePositions))
	facts.StageY = make([]float64, len(stagePositions))
	facts.StageZ = make([][]float64, len(stagePositions))
	for t, pos := range stagePositions {
		facts.StageX[t] = pos.X
		facts.StageY[t] = pos.Y
		zs := make([]float64, numZ)
		for z := 0; z < numZ; z++ {
			zs[z] = PlaneStageZ(pos.Z, interplaneSpacing, z)
		}
		facts.StageZ[t] = zs
	}

	return facts
}
