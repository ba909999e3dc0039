package record

import (
	"fmt"
	"reflect"
)

// MaskRecord names one mask layer defined for the capture.
type MaskRecord struct {
	Name  string `sldy:"key=mName"`
	Color int32  `sldy:"key=mColor"`
}

var maskRecordFields = BuildFieldTable(MaskRecord{})

// TimepointMask locates the submasks compressed into one timepoint's
// MaskData file: two equal-length parallel sequences of compressed
// block size and file offset.
type TimepointMask struct {
	BlockSizes []int64
	Offsets    []int64
}

// Masks is the decoded MaskRecord.yaml document: a count of MaskRecords
// followed by, per timepoint, the block-size/offset pair locating its
// submasks.
type Masks struct {
	Records    []MaskRecord
	Timepoints []TimepointMask
}

// DecodeMasks decodes a MaskRecord.yaml document for a group with
// numTimepoints stored timepoints.
func DecodeMasks(entries []Entry, i int, numTimepoints int) (*Masks, int, error) {
	if i >= len(entries) || entries[i].Key != "NumMasks" {
		return nil, i, fmt.Errorf("%w: expected NumMasks", ErrFormat)
	}
	count := atoiLoose(entries[i].Scalar)
	i++

	m := &Masks{}
	for n := 0; n < count; n++ {
		rec := MaskRecord{}
		next, matched, err := DecodeClass(entries, i, "MaskRecord", maskRecordFields, reflect.ValueOf(&rec).Elem(), nil)
		if err != nil {
			return nil, next, err
		}
		if !matched {
			return nil, i, fmt.Errorf("%w: expected %d MaskRecords, found %d", ErrClassMissing, count, n)
		}
		i = next
		m.Records = append(m.Records, rec)
	}

	for t := 0; t < numTimepoints; t++ {
		if i >= len(entries) || entries[i].Key != "BlockSizes" {
			return nil, i, fmt.Errorf("%w: expected BlockSizes for timepoint %d", ErrFormat, t)
		}
		sizes := toInt64Seq(entries[i])
		i++

		if i >= len(entries) || entries[i].Key != "Offsets" {
			return nil, i, fmt.Errorf("%w: expected Offsets for timepoint %d", ErrFormat, t)
		}
		offsets := toInt64Seq(entries[i])
		i++

		if len(sizes) != len(offsets) {
			return nil, i, fmt.Errorf("%w: mask block sizes/offsets length mismatch at timepoint %d", ErrFormat, t)
		}

		m.Timepoints = append(m.Timepoints, TimepointMask{BlockSizes: sizes, Offsets: offsets})
	}

	return m, i, nil
}

func toInt64Seq(e Entry) []int64 {
	out := make([]int64, len(e.Seq))
	for i, raw := range e.Seq {
		out[i] = int64(atoiLoose(raw))
	}
	return out
}
