package record

import "testing"

func TestDecodeChannelRecordsWithManipulations(t *testing.T) {
	entries := parseOrFail(t, `
- StartClass:
    ClassName: ExposureRecord
- mExposureTime: "100"
- mInterplaneSpacing: "0.5"
- mXFactor: "1"
- mYFactor: "1"
- EndClass: "ExposureRecord"
- StartClass:
    ClassName: ChannelDef
- mName: "DAPI"
- mCamera: "cam0"
- mFluor: "dye0"
- EndClass: "ChannelDef"
- StartClass:
    ClassName: AlignRecord
- mReferenceChannel: "0"
- mOffsetX: "1.0"
- mOffsetY: "2.0"
- EndClass: "AlignRecord"
- StartClass:
    ClassName: ExposureRecord
- mExposureTime: "50"
- mInterplaneSpacing: "0.5"
- mXFactor: "1"
- mYFactor: "1"
- EndClass: "ExposureRecord"
- StartClass:
    ClassName: ChannelDef
- mName: "GFP"
- mCamera: "cam1"
- mFluor: "dye1"
- EndClass: "ChannelDef"
`)

	records, next, err := DecodeChannelRecords(entries, 0, 2)
	if err != nil {
		t.Fatalf("DecodeChannelRecords: %v", err)
	}
	if next != len(entries) {
		t.Fatalf("next = %d, want %d", next, len(entries))
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Channel.Name != "DAPI" || records[1].Channel.Name != "GFP" {
		t.Fatalf("channel names = %q, %q", records[0].Channel.Name, records[1].Channel.Name)
	}
	if records[0].Align == nil || records[0].Align.OffsetX != 1.0 {
		t.Fatalf("expected AlignRecord absorbed into channel 0, got %+v", records[0].Align)
	}
	if records[1].Align != nil {
		t.Fatalf("channel 1 should have no AlignRecord, got %+v", records[1].Align)
	}
}

func TestDecodeChannelRecordsStopsShortOnMissingChannel(t *testing.T) {
	entries := parseOrFail(t, `
- StartClass:
    ClassName: ExposureRecord
- mExposureTime: "100"
- mInterplaneSpacing: "0.5"
- mXFactor: "1"
- mYFactor: "1"
- EndClass: "ExposureRecord"
- StartClass:
    ClassName: ChannelDef
- mName: "DAPI"
- mCamera: "cam0"
- mFluor: "dye0"
- EndClass: "ChannelDef"
`)

	records, _, err := DecodeChannelRecords(entries, 0, 3)
	if err != nil {
		t.Fatalf("DecodeChannelRecords: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record decoded before running out, got %d", len(records))
	}
}
