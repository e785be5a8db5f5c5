package matcher

import (
	"github.com/mitchellh/mapstructure"

	"github.com/siftkit/sift/adapter/geo"
	"github.com/siftkit/sift/pkg/structure"
)

// decodeOperand decodes an operand value (typically a map literal out of a
// query expression) into its typed shape. Input is weakly typed: integer
// operands decode into float fields and vice versa.
func decodeOperand(in, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "sift",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}

// pointOperand is the wire shape of a coordinate in an operand. Pointer
// fields distinguish a missing coordinate from zero.
type pointOperand struct {
	Lat *float64 `sift:"lat"`
	Lng *float64 `sift:"lng"`
}

func (p pointOperand) point() (geo.Point, bool) {
	if p.Lat == nil || p.Lng == nil {
		return geo.Point{}, false
	}
	pt := geo.Point{Lat: *p.Lat, Lng: *p.Lng}
	return pt, geo.ValidPoint(pt)
}

type nearOperand struct {
	Center      pointOperand `sift:"center"`
	MaxDistance *float64     `sift:"maxDistance"`
	MinDistance *float64     `sift:"minDistance"`
}

type boxOperand struct {
	SouthWest pointOperand `sift:"southwest"`
	NorthEast pointOperand `sift:"northeast"`
}

// nearCond is the compiled operand of $near.
type nearCond struct {
	Center geo.Point
	Max    float64
	Min    *float64
}

func (m *Matcher) makeNearCond(name string, v any) Cond {
	never := Cond{Op: Never, Name: name}
	var op nearOperand
	if err := decodeOperand(v, &op); err != nil {
		return never
	}
	center, ok := op.Center.point()
	if !ok || op.MaxDistance == nil || *op.MaxDistance < 0 {
		return never
	}
	if op.MinDistance != nil && *op.MinDistance < 0 {
		return never
	}
	return Cond{Op: Near, Name: name, Val: nearCond{
		Center: center,
		Max:    *op.MaxDistance,
		Min:    op.MinDistance,
	}}
}

func (m *Matcher) makeGeoBoxCond(name string, v any) Cond {
	never := Cond{Op: Never, Name: name}
	var op boxOperand
	if err := decodeOperand(v, &op); err != nil {
		return never
	}
	sw, okSW := op.SouthWest.point()
	ne, okNE := op.NorthEast.point()
	if !okSW || !okNE {
		return never
	}
	return Cond{Op: GeoBox, Name: name, Val: geo.BoundingBox{
		SouthWest: sw,
		NorthEast: ne,
	}}
}

func (m *Matcher) makeGeoPolygonCond(name string, v any) Cond {
	never := Cond{Op: Never, Name: name}
	items, l, err := structure.Seq(v)
	if err != nil {
		return never
	}
	vertices := make([]geo.Point, 0, l)
	for item := range items {
		pt, ok := asPoint(item)
		if !ok {
			return never
		}
		vertices = append(vertices, pt)
	}
	// fewer than three vertices encloses nothing
	if len(vertices) < 3 {
		return never
	}
	return Cond{Op: GeoPolygon, Name: name, Val: vertices}
}

// asPoint coerces a record value or operand vertex into a coordinate. It
// accepts a [geo.Point], anything with lat/lng fields, or a two-element
// [lat, lng] list.
func asPoint(v any) (geo.Point, bool) {
	switch t := v.(type) {
	case geo.Point:
		return t, geo.ValidPoint(t)
	case *geo.Point:
		if t == nil {
			return geo.Point{}, false
		}
		return *t, geo.ValidPoint(*t)
	}

	if list, ok := structure.List(v); ok {
		if len(list) != 2 {
			return geo.Point{}, false
		}
		lat, okLat := structure.AsFloat(list[0])
		lng, okLng := structure.AsFloat(list[1])
		if !okLat || !okLng {
			return geo.Point{}, false
		}
		pt := geo.Point{Lat: lat, Lng: lng}
		return pt, geo.ValidPoint(pt)
	}

	var op pointOperand
	if err := decodeOperand(v, &op); err != nil {
		return geo.Point{}, false
	}
	return op.point()
}
