package record

import "testing"

func TestDecodeImageRecordChain(t *testing.T) {
	entries := parseOrFail(t, `
- StartClass:
    ClassName: ImageRecord
- mWidth: "512"
- mHeight: "256"
- mNumPlanes: "4"
- mNumChannels: "2"
- mNumTimepoints: "10"
- mUnknownField: "something"
- EndClass: "ImageRecord"
- StartClass:
    ClassName: LensDef
- mName: "63x"
- mMicronsPerPixel: "0.1"
- EndClass: "LensDef"
- StartClass:
    ClassName: OptovarDef
- mName: "1.0x"
- mMagnification: "1.0"
- EndClass: "OptovarDef"
- StartClass:
    ClassName: MainViewRecord
- mName: "Camera1"
- EndClass: "MainViewRecord"
`)

	rec, next, err := DecodeImageRecord(entries, 0)
	if err != nil {
		t.Fatalf("DecodeImageRecord: %v", err)
	}
	if next != len(entries) {
		t.Fatalf("next = %d, want %d", next, len(entries))
	}
	if rec.Width != 512 || rec.Height != 256 || rec.NumPlanes != 4 {
		t.Fatalf("rec = %+v", rec)
	}
	if rec.Lens.Name != "63x" || rec.Lens.MicronPerPixel != 0.1 {
		t.Fatalf("Lens = %+v", rec.Lens)
	}
	if rec.Optovar.Magnification != 1.0 {
		t.Fatalf("Optovar = %+v", rec.Optovar)
	}
	if rec.MainView.Name != "Camera1" {
		t.Fatalf("MainView = %+v", rec.MainView)
	}
	if rec.Unknown["mUnknownField"] != "something" {
		t.Fatalf("Unknown = %v", rec.Unknown)
	}
	if err := rec.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestImageRecordValidateRejectsZeroDims(t *testing.T) {
	rec := &ImageRecord{Width: 0, Height: 10, NumPlanes: 1, NumChannels: 1, NumTimepoints: 1}
	if err := rec.Validate(); err == nil {
		t.Fatalf("expected error for zero width")
	}
}

func TestDecodeImageRecordMissingSubrecordsIsTolerated(t *testing.T) {
	entries := parseOrFail(t, `
- StartClass:
    ClassName: ImageRecord
- mWidth: "512"
- mHeight: "256"
- mNumPlanes: "1"
- mNumChannels: "1"
- mNumTimepoints: "1"
- EndClass: "ImageRecord"
`)

	rec, next, err := DecodeImageRecord(entries, 0)
	if err != nil {
		t.Fatalf("DecodeImageRecord: %v", err)
	}
	if next != len(entries) {
		t.Fatalf("next = %d, want %d", next, len(entries))
	}
	if rec.Lens.Name != "" {
		t.Fatalf("expected zero-value LensDef, got %+v", rec.Lens)
	}
}
