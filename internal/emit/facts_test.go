package emit

import (
	"testing"

	"github.com/nicolapapp/bioformats/internal/record"
)

func TestBuildCaptureFactsPublishesPerPlaneTiming(t *testing.T) {
	img := &record.ImageRecord{Width: 4, Height: 4, NumPlanes: 2, NumChannels: 1, NumTimepoints: 2}
	channels := []record.ChannelRecord{
		{
			Exposure: record.ExposureRecord{ExposureTimeMs: 50, InterplaneSpacingMicrons: 2, XFactor: 1, YFactor: 1},
			Channel:  record.ChannelDef{Name: "DAPI"},
		},
	}
	stagePositions := []record.StagePosition{
		{X: 10, Y: 20, Z: 100},
		{X: 10, Y: 20, Z: 105},
	}
	elapsed := []int64{0, 500}

	facts := BuildCaptureFacts(img, channels, nil, elapsed, stagePositions, 2, false, 2, 2, 1)

	if len(facts.ExposureMs) != 1 || facts.ExposureMs[0] != 50 {
		t.Fatalf("ExposureMs = %+v, want [50]", facts.ExposureMs)
	}
	if len(facts.DeltaTMs) != 2 || facts.DeltaTMs[0] != 0 || facts.DeltaTMs[1] != 500 {
		t.Fatalf("DeltaTMs = %+v, want [0 500]", facts.DeltaTMs)
	}
	if len(facts.StageX) != 2 || facts.StageX[0] != 10 || facts.StageY[1] != 20 {
		t.Fatalf("StageX/StageY = %+v/%+v", facts.StageX, facts.StageY)
	}
	if len(facts.StageZ) != 2 || len(facts.StageZ[0]) != 2 {
		t.Fatalf("StageZ = %+v, want 2 timepoints x 2 focal planes", facts.StageZ)
	}
	// PlaneStageZ(100, 2, z) = 100 + 2*z
	want := [][]float64{{100, 102}, {105, 107}}
	for t0 := range want {
		for z := range want[t0] {
			if facts.StageZ[t0][z] != want[t0][z] {
				t.Fatalf("StageZ[%d][%d] = %v, want %v", t0, z, facts.StageZ[t0][z], want[t0][z])
			}
		}
	}
}

func TestBuildCaptureFactsWithNoStagePositionsLeavesTimingEmpty(t *testing.T) {
	img := &record.ImageRecord{Width: 2, Height: 2, NumPlanes: 1, NumChannels: 1, NumTimepoints: 1}
	facts := BuildCaptureFacts(img, nil, nil, nil, nil, 2, false, 1, 1, 1)

	if len(facts.StageX) != 0 || len(facts.StageY) != 0 || len(facts.StageZ) != 0 {
		t.Fatalf("expected empty stage facts, got %+v", facts)
	}
}
