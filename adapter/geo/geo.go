// Package geo contains the coordinate validation and spherical geometry used
// by the geospatial operators. The functions are pure and usable on their own.
package geo

import "math"

// EarthRadiusMeters is the mean Earth radius used for distance calculations.
const EarthRadiusMeters = 6371000.0

// Point is a (lat, lng) coordinate pair in degrees.
type Point struct {
	Lat float64 `json:"lat" mapstructure:"lat" sift:"lat"`
	Lng float64 `json:"lng" mapstructure:"lng" sift:"lng"`
}

// BoundingBox is a rectangle given by its southwest and northeast corners.
// A box whose southwest longitude is greater than its northeast longitude
// spans the antimeridian.
type BoundingBox struct {
	SouthWest Point `json:"southwest" mapstructure:"southwest" sift:"southwest"`
	NorthEast Point `json:"northeast" mapstructure:"northeast" sift:"northeast"`
}

// ValidPoint reports whether p carries a finite latitude in [-90, 90] and a
// finite longitude in [-180, 180]. No geospatial operator ever matches an
// invalid point.
func ValidPoint(p Point) bool {
	if math.IsNaN(p.Lat) || math.IsInf(p.Lat, 0) {
		return false
	}
	if math.IsNaN(p.Lng) || math.IsInf(p.Lng, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Distance returns the great-circle distance between two points in meters,
// using the spherical law of cosines.
func Distance(a, b Point) float64 {
	if a == b {
		return 0
	}
	la1 := a.Lat * math.Pi / 180
	la2 := b.Lat * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	c := math.Sin(la1)*math.Sin(la2) + math.Cos(la1)*math.Cos(la2)*math.Cos(dLng)
	// floating error can push the cosine just past 1, which would make
	// Acos return NaN
	c = math.Max(-1, math.Min(1, c))
	return EarthRadiusMeters * math.Acos(c)
}

// InBoundingBox reports whether p lies within the box. Latitude must lie
// between the southwest and northeast latitudes; the longitude check treats
// an antimeridian-spanning box as the union of two ranges.
func InBoundingBox(p Point, box BoundingBox) bool {
	if p.Lat < box.SouthWest.Lat || p.Lat > box.NorthEast.Lat {
		return false
	}
	if box.SouthWest.Lng <= box.NorthEast.Lng {
		return p.Lng >= box.SouthWest.Lng && p.Lng <= box.NorthEast.Lng
	}
	// box spans the antimeridian
	return p.Lng >= box.SouthWest.Lng || p.Lng <= box.NorthEast.Lng
}

// InPolygon reports whether p lies within the polygon given by vertices,
// using ray casting. Polygons with fewer than 3 vertices contain nothing. A
// point exactly coincident with a vertex is defined to be outside.
func InPolygon(p Point, vertices []Point) bool {
	if len(vertices) < 3 {
		return false
	}
	for _, v := range vertices {
		if p == v {
			return false
		}
	}

	inside := false
	j := len(vertices) - 1
	for i := range vertices {
		vi, vj := vertices[i], vertices[j]
		if (vi.Lat > p.Lat) != (vj.Lat > p.Lat) {
			x := (vj.Lng-vi.Lng)*(p.Lat-vi.Lat)/(vj.Lat-vi.Lat) + vi.Lng
			if p.Lng < x {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}
