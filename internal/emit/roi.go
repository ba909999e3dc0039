package emit

import (
	"github.com/samber/lo"

	"github.com/nicolapapp/bioformats/internal/record"
)

// ROIKind names the emitted shape category, keyed off mGraphicType70.
type ROIKind int

const (
	ROIPoint ROIKind = iota
	ROILine
	ROIRectangle
	ROIPolygon
	ROIEllipse
)

// ROIShape is one emitted region of interest. Only the fields relevant
// to Kind are populated.
type ROIShape struct {
	Kind ROIKind

	// Rectangle: (X,Y) is the top-left corner, (W,H) the extent.
	X, Y, W, H float64

	// Point, Line, Polygon: the raw vertex list (length 1, 2, or N).
	Points []record.Vertex

	// Ellipse: centre and per-axis radius.
	CenterX, CenterY, RadiusX, RadiusY float64
}

// DeriveROI maps one annotation's mGraphicType70 value to its emitted
// shape. ok is false for graphic types 4-7, which are skipped, and for
// any annotation missing the vertices its shape requires.
func DeriveROI(a record.BaseAnnotation) (shape ROIShape, ok bool) {
	switch a.GraphicType {
	case 0: // Point
		if len(a.Vertices) < 1 {
			return ROIShape{}, false
		}
		return ROIShape{Kind: ROIPoint, Points: a.Vertices[:1]}, true

	case 1: // Line
		if len(a.Vertices) < 2 {
			return ROIShape{}, false
		}
		return ROIShape{Kind: ROILine, Points: a.Vertices[:2]}, true

	case 2: // Rectangle
		if len(a.Vertices) < 2 {
			return ROIShape{}, false
		}
		v0, v1 := a.Vertices[0], a.Vertices[1]
		return ROIShape{Kind: ROIRectangle, X: v0.X, Y: v0.Y, W: v1.X - v0.X, H: v1.Y - v0.Y}, true

	case 3: // Polygon
		if len(a.Vertices) == 0 {
			return ROIShape{}, false
		}
		return ROIShape{Kind: ROIPolygon, Points: a.Vertices}, true

	case 8: // Ellipse
		if len(a.Vertices) < 2 {
			return ROIShape{}, false
		}
		v0, v1 := a.Vertices[0], a.Vertices[1]
		return ROIShape{
			Kind:    ROIEllipse,
			CenterX: (v0.X + v1.X) / 2,
			CenterY: (v0.Y + v1.Y) / 2,
			RadiusX: (v1.X - v0.X) / 2,
			RadiusY: (v1.Y - v0.Y) / 2,
		}, true

	default: // 4-7 and anything unrecognised
		return ROIShape{}, false
	}
}

// DeriveROIs derives the emitted shapes for every annotation in one
// timepoint's set, across all four annotation categories, dropping any
// annotation DeriveROI skips.
func DeriveROIs(set record.AnnotationSet) []ROIShape {
	all := lo.FlatMap(
		[][]record.BaseAnnotation{set.Cube, set.Base, set.Frap, set.Unknown},
		func(list []record.BaseAnnotation, _ int) []record.BaseAnnotation { return list },
	)
	return lo.FilterMap(all, func(a record.BaseAnnotation, _ int) (ROIShape, bool) {
		return DeriveROI(a)
	})
}
