package record

import (
	"fmt"
	"reflect"
	"regexp"
)

// Vertex is one point of an annotation's geometry.
type Vertex struct {
	X, Y, Z float64
}

// BaseAnnotation is the common shape every annotation category (cube,
// base, FRAP region, unknown) carries: geometry, a channel mask, and the
// group/plane/sequence/object references locating what it annotates.
type BaseAnnotation struct {
	GraphicType int32 `sldy:"key=mGraphicType70"`
	ChannelMask int32 `sldy:"key=mChannelMask"`
	GroupRef    int32 `sldy:"key=mGroupRef"`
	PlaneRef    int32 `sldy:"key=mPlaneRef"`
	SequenceRef int32 `sldy:"key=mSequenceRef"`
	ObjectRef   int32 `sldy:"key=mObjectRef"`

	StageOffsetX float64
	StageOffsetY float64
	FieldOffsetX float64
	FieldOffsetY float64

	Vertices []Vertex
}

var baseAnnotationFields = BuildFieldTable(BaseAnnotation{})

var (
	stageOffsetRe = regexp.MustCompile(`^mStageOffsetMicrons\.m([XY])$`)
	fieldOffsetRe = regexp.MustCompile(`^mFieldOffsetMicrons\.m([XY])$`)
	vertexRe      = regexp.MustCompile(`^mVertexList\[(\d+)\]\.m([XYZ])$`)
)

// decodeUnknown absorbs the flattened dotted fields (mStageOffsetMicrons.mX)
// and the polymorphic vertex array (mVertexList[n].mX/.mY/.mZ) that do not
// match a declared field name.
func (a *BaseAnnotation) decodeUnknown(key string, e Entry) error {
	if e.Kind != KindScalar {
		return nil
	}
	val := Unescape(e.Scalar)

	if m := stageOffsetRe.FindStringSubmatch(key); m != nil {
		setAxis(&a.StageOffsetX, &a.StageOffsetY, m[1], val)
		return nil
	}
	if m := fieldOffsetRe.FindStringSubmatch(key); m != nil {
		setAxis(&a.FieldOffsetX, &a.FieldOffsetY, m[1], val)
		return nil
	}
	if m := vertexRe.FindStringSubmatch(key); m != nil {
		idx := atoiLoose(m[1])
		for len(a.Vertices) <= idx {
			a.Vertices = append(a.Vertices, Vertex{})
		}
		setVertexAxis(&a.Vertices[idx], m[2], val)
		return nil
	}
	return nil
}

func setAxis(x, y *float64, axis, val string) {
	f := parseFloatLoose(val)
	if axis == "X" {
		*x = f
	} else {
		*y = f
	}
}

func setVertexAxis(v *Vertex, axis, val string) {
	f := parseFloatLoose(val)
	switch axis {
	case "X":
		v.X = f
	case "Y":
		v.Y = f
	case "Z":
		v.Z = f
	}
}

func parseFloatLoose(s string) float64 {
	var f float64
	_, err := fmt.Sscanf(s, "%g", &f)
	if err != nil {
		return 0
	}
	return f
}

// AnnotationSet is the four parallel annotation lists decoded for one
// timepoint.
type AnnotationSet struct {
	Cube    []BaseAnnotation
	Base    []BaseAnnotation
	Frap    []BaseAnnotation
	Unknown []BaseAnnotation
}

// DecodeAnnotations decodes one AnnotationSet per timepoint, for
// numTimepoints timepoints, from entries starting at i.
func DecodeAnnotations(entries []Entry, i int, numTimepoints int) ([]AnnotationSet, int, error) {
	sets := make([]AnnotationSet, 0, numTimepoints)

	for t := 0; t < numTimepoints; t++ {
		var (
			set AnnotationSet
			err error
		)

		set.Cube, i, err = decodeAnnotationList(entries, i, "NumCube", "CubeAnnotation")
		if err != nil {
			return sets, i, err
		}
		set.Base, i, err = decodeAnnotationList(entries, i, "NumBase", "BaseAnnotationRecord")
		if err != nil {
			return sets, i, err
		}
		set.Frap, i, err = decodeAnnotationList(entries, i, "NumFrap", "FrapAnnotation")
		if err != nil {
			return sets, i, err
		}
		set.Unknown, i, err = decodeAnnotationList(entries, i, "NumUnknown", "UnknownAnnotation")
		if err != nil {
			return sets, i, err
		}

		sets = append(sets, set)
	}

	return sets, i, nil
}

func decodeAnnotationList(entries []Entry, i int, countKey, className string) ([]BaseAnnotation, int, error) {
	if i >= len(entries) || entries[i].Key != countKey {
		return nil, i, fmt.Errorf("%w: expected %s", ErrFormat, countKey)
	}
	count := atoiLoose(entries[i].Scalar)
	i++

	list := make([]BaseAnnotation, 0, count)
	for n := 0; n < count; n++ {
		var a BaseAnnotation
		next, matched, err := DecodeClass(entries, i, className, baseAnnotationFields, reflect.ValueOf(&a).Elem(), a.decodeUnknown)
		if err != nil {
			return list, next, err
		}
		if !matched {
			return list, i, fmt.Errorf("%w: expected %d %s entries, found %d", ErrClassMissing, count, className, n)
		}
		i = next
		list = append(list, a)
	}

	return list, i, nil
}
