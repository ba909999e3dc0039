package record

import "fmt"

// DecodeElapsedTimes decodes the dense ElapsedTimesMs sequence, in
// milliseconds, one per timepoint.
func DecodeElapsedTimes(entries []Entry, i int) ([]int64, int, error) {
	if i >= len(entries) || entries[i].Key != "ElapsedTimesMs" {
		return nil, i, fmt.Errorf("%w: expected ElapsedTimesMs", ErrFormat)
	}
	return toInt64Seq(entries[i]), i + 1, nil
}

// DecodeSAPositions decodes the dense per-image position-index vector,
// indexed by (timepoint, position) the same way StagePositions is.
func DecodeSAPositions(entries []Entry, i int) ([]int32, int, error) {
	if i >= len(entries) || entries[i].Key != "SAPositions" {
		return nil, i, fmt.Errorf("%w: expected SAPositions", ErrFormat)
	}
	e := entries[i]
	out := make([]int32, len(e.Seq))
	for j, raw := range e.Seq {
		v, ok := parseInt32(raw)
		if ok {
			out[j] = v
		}
	}
	return out, i + 1, nil
}

// StagePosition is one (x, y, z) stage coordinate, in microns.
type StagePosition struct {
	X, Y, Z float64
}

// DecodeStagePositions decodes the three dense parallel sequences
// (StageX, StageY, StageZ) into a flattened (timepoint*position) list.
func DecodeStagePositions(entries []Entry, i int) ([]StagePosition, int, error) {
	x, i, err := expectFloatSeq(entries, i, "StageX")
	if err != nil {
		return nil, i, err
	}
	y, i, err := expectFloatSeq(entries, i, "StageY")
	if err != nil {
		return nil, i, err
	}
	z, i, err := expectFloatSeq(entries, i, "StageZ")
	if err != nil {
		return nil, i, err
	}

	if len(x) != len(y) || len(y) != len(z) {
		return nil, i, fmt.Errorf("%w: stage position axis length mismatch", ErrFormat)
	}

	out := make([]StagePosition, len(x))
	for j := range x {
		out[j] = StagePosition{X: x[j], Y: y[j], Z: z[j]}
	}
	return out, i, nil
}

func expectFloatSeq(entries []Entry, i int, key string) ([]float64, int, error) {
	if i >= len(entries) || entries[i].Key != key {
		return nil, i, fmt.Errorf("%w: expected %s", ErrFormat, key)
	}
	e := entries[i]
	out := make([]float64, len(e.Seq))
	for j, raw := range e.Seq {
		out[j] = parseFloatLoose(raw)
	}
	return out, i + 1, nil
}
