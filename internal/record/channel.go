package record

import "reflect"

// ExposureRecord carries the acquisition timing and resampling factors
// for one channel.
type ExposureRecord struct {
	ExposureTimeMs           float64 `sldy:"key=mExposureTime"`
	InterplaneSpacingMicrons float64 `sldy:"key=mInterplaneSpacing"`
	XFactor                  float64 `sldy:"key=mXFactor"`
	YFactor                  float64 `sldy:"key=mYFactor"`
}

// ChannelDef names the channel and the hardware that produced it.
type ChannelDef struct {
	Name   string `sldy:"key=mName"`
	Camera string `sldy:"key=mCamera"`
	Fluor  string `sldy:"key=mFluor"`
}

// AlignRecord records a per-channel spatial registration offset against
// a reference channel.
type AlignRecord struct {
	ReferenceChannel int32   `sldy:"key=mReferenceChannel"`
	OffsetX          float64 `sldy:"key=mOffsetX"`
	OffsetY          float64 `sldy:"key=mOffsetY"`
}

// RatioRecord marks a channel as a computed ratio of two others.
type RatioRecord struct {
	Numerator   int32 `sldy:"key=mNumeratorChannel"`
	Denominator int32 `sldy:"key=mDenominatorChannel"`
}

// FretRecord marks a channel pair used for FRET analysis.
type FretRecord struct {
	DonorChannel    int32 `sldy:"key=mDonorChannel"`
	AcceptorChannel int32 `sldy:"key=mAcceptorChannel"`
}

// RemapRecord records a channel index remap applied at acquisition time.
type RemapRecord struct {
	SourceChannel int32 `sldy:"key=mSourceChannel"`
	TargetChannel int32 `sldy:"key=mTargetChannel"`
}

// HistogramRecord summarises the per-channel intensity histogram range.
type HistogramRecord struct {
	BinCount int32   `sldy:"key=mBinCount"`
	Min      float64 `sldy:"key=mMin"`
	Max      float64 `sldy:"key=mMax"`
}

// ChannelRecord is one channel's exposure/definition plus whichever
// optional manipulation records followed it before the next channel, in
// the order they were encountered.
type ChannelRecord struct {
	Exposure  ExposureRecord
	Channel   ChannelDef
	Align     *AlignRecord
	Ratio     *RatioRecord
	Fret      *FretRecord
	Remap     *RemapRecord
	Histogram *HistogramRecord
}

var (
	exposureRecordFields = BuildFieldTable(ExposureRecord{})
	channelDefFields      = BuildFieldTable(ChannelDef{})
	alignRecordFields     = BuildFieldTable(AlignRecord{})
	ratioRecordFields     = BuildFieldTable(RatioRecord{})
	fretRecordFields      = BuildFieldTable(FretRecord{})
	remapRecordFields     = BuildFieldTable(RemapRecord{})
	histogramRecordFields = BuildFieldTable(HistogramRecord{})
)

// manipulationClassNames is consulted by FindNextClass dispatch between
// successive ChannelRecords: any of these sentinel classes may appear
// between one channel's definition and the next channel's exposure
// record, in arbitrary but ordered positions.
var manipulationClassNames = map[string]bool{
	"AlignRecord":     true,
	"RatioRecord":     true,
	"FretRecord":      true,
	"RemapRecord":     true,
	"HistogramRecord": true,
}

// DecodeChannelRecords decodes up to numChannels ChannelRecords,
// absorbing any interleaved manipulation records as it goes. It stops
// early, without an error, when no further ExposureRecord follows.
func DecodeChannelRecords(entries []Entry, i int, numChannels int) ([]ChannelRecord, int, error) {
	records := make([]ChannelRecord, 0, numChannels)

	for len(records) < numChannels {
		var cr ChannelRecord

		next, matched, err := DecodeClass(entries, i, "ExposureRecord", exposureRecordFields, reflect.ValueOf(&cr.Exposure).Elem(), nil)
		if err != nil {
			return records, next, err
		}
		if !matched {
			break
		}
		i = next

		next, matched, err = DecodeClass(entries, i, "ChannelDef", channelDefFields, reflect.ValueOf(&cr.Channel).Elem(), nil)
		if err != nil {
			return records, next, err
		}
		if !matched {
			return records, i, ErrClassMissing
		}
		i = next

		for {
			className, pos, ok := FindNextClass(entries, i)
			if !ok || !manipulationClassNames[className] {
				break
			}

			switch className {
			case "AlignRecord":
				cr.Align = &AlignRecord{}
				i, _, err = DecodeClass(entries, pos, className, alignRecordFields, reflect.ValueOf(cr.Align).Elem(), nil)
			case "RatioRecord":
				cr.Ratio = &RatioRecord{}
				i, _, err = DecodeClass(entries, pos, className, ratioRecordFields, reflect.ValueOf(cr.Ratio).Elem(), nil)
			case "FretRecord":
				cr.Fret = &FretRecord{}
				i, _, err = DecodeClass(entries, pos, className, fretRecordFields, reflect.ValueOf(cr.Fret).Elem(), nil)
			case "RemapRecord":
				cr.Remap = &RemapRecord{}
				i, _, err = DecodeClass(entries, pos, className, remapRecordFields, reflect.ValueOf(cr.Remap).Elem(), nil)
			case "HistogramRecord":
				cr.Histogram = &HistogramRecord{}
				i, _, err = DecodeClass(entries, pos, className, histogramRecordFields, reflect.ValueOf(cr.Histogram).Elem(), nil)
			}
			if err != nil {
				return records, i, err
			}
		}

		records = append(records, cr)
	}

	return records, i, nil
}
