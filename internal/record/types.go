package record

import (
	"fmt"
	"reflect"
)

// ImageRecord carries per-capture geometry and the references to its
// optical metadata. Invariant: Width > 0, Height > 0, NumPlanes >= 1,
// NumChannels >= 1, NumTimepoints >= 1 (checked by Validate, not by the
// decoder itself: a field that fails coercion is left at zero without
// aborting the decode, and the capture loader then rejects the group
// when Validate fails).
type ImageRecord struct {
	Width            int32  `sldy:"key=mWidth"`
	Height           int32  `sldy:"key=mHeight"`
	NumPlanes        int32  `sldy:"key=mNumPlanes"`
	NumChannels      int32  `sldy:"key=mNumChannels"`
	NumTimepoints    int32  `sldy:"key=mNumTimepoints"`
	AcquisitionDate  string `sldy:"key=mAcquisitionDate"`
	AcquisitionTime  string `sldy:"key=mAcquisitionTime"`
	LensRef          int32  `sldy:"key=mLensRef"`
	OptovarRef       int32  `sldy:"key=mOptovarRef"`
	MainViewRef      int32  `sldy:"key=mMainViewRef"`

	Lens     LensDef
	Optovar  OptovarDef
	MainView MainViewRecord

	Unknown map[string]string
}

// LensDef describes the objective lens used for the capture.
type LensDef struct {
	Name           string  `sldy:"key=mName"`
	MicronPerPixel float64 `sldy:"key=mMicronsPerPixel"`
}

// OptovarDef describes the magnification changer in the optical path.
type OptovarDef struct {
	Name          string  `sldy:"key=mName"`
	Magnification float64 `sldy:"key=mMagnification"`
}

// MainViewRecord names the primary viewport the capture was taken through.
type MainViewRecord struct {
	Name string `sldy:"key=mName"`
}

var (
	imageRecordFields = BuildFieldTable(ImageRecord{})
	lensDefFields     = BuildFieldTable(LensDef{})
	optovarDefFields  = BuildFieldTable(OptovarDef{})
	mainViewFields    = BuildFieldTable(MainViewRecord{})
)

// Validate checks the geometric invariants a decoded ImageRecord must
// satisfy.
func (r *ImageRecord) Validate() error {
	switch {
	case r.Width <= 0:
		return fmt.Errorf("%w: width must be > 0, got %d", ErrFormat, r.Width)
	case r.Height <= 0:
		return fmt.Errorf("%w: height must be > 0, got %d", ErrFormat, r.Height)
	case r.NumPlanes < 1:
		return fmt.Errorf("%w: num planes must be >= 1, got %d", ErrFormat, r.NumPlanes)
	case r.NumChannels < 1:
		return fmt.Errorf("%w: num channels must be >= 1, got %d", ErrFormat, r.NumChannels)
	case r.NumTimepoints < 1:
		return fmt.Errorf("%w: num timepoints must be >= 1, got %d", ErrFormat, r.NumTimepoints)
	}
	return nil
}

func (r *ImageRecord) decodeUnknown(key string, e Entry) error {
	if r.Unknown == nil {
		r.Unknown = make(map[string]string)
	}
	if e.Kind == KindScalar {
		r.Unknown[key] = Unescape(e.Scalar)
	}
	return nil
}

// DecodeImageRecord decodes the ImageRecord and its chained sub-records
// (LensDef, OptovarDef, MainViewRecord, in that documented order) from
// entries starting at i.
func DecodeImageRecord(entries []Entry, i int) (*ImageRecord, int, error) {
	rec := &ImageRecord{}

	next, matched, err := DecodeClass(entries, i, "ImageRecord", imageRecordFields, reflect.ValueOf(rec).Elem(), rec.decodeUnknown)
	if err != nil {
		return nil, next, err
	}
	if !matched {
		return nil, i, fmt.Errorf("%w: ImageRecord not found", ErrClassMissing)
	}
	i = next

	if n, ok, err := DecodeClass(entries, i, "LensDef", lensDefFields, reflect.ValueOf(&rec.Lens).Elem(), nil); err != nil {
		return nil, n, err
	} else if ok {
		i = n
	}

	if n, ok, err := DecodeClass(entries, i, "OptovarDef", optovarDefFields, reflect.ValueOf(&rec.Optovar).Elem(), nil); err != nil {
		return nil, n, err
	} else if ok {
		i = n
	}

	if n, ok, err := DecodeClass(entries, i, "MainViewRecord", mainViewFields, reflect.ValueOf(&rec.MainView).Elem(), nil); err != nil {
		return nil, n, err
	} else if ok {
		i = n
	}

	return rec, i, nil
}
