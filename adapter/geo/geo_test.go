package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/suite"
)

var (
	berlin = Point{Lat: 52.52, Lng: 13.405}
	paris  = Point{Lat: 48.8566, Lng: 2.3522}
)

type GeoTestSuite struct {
	suite.Suite
}

func (s *GeoTestSuite) TestValidPoint() {
	testCases := []struct {
		p     Point
		valid bool
	}{
		{p: berlin, valid: true},
		{p: Point{Lat: 90, Lng: 180}, valid: true},
		{p: Point{Lat: -90, Lng: -180}, valid: true},
		{p: Point{}, valid: true},
		{p: Point{Lat: 91}, valid: false},
		{p: Point{Lat: -91}, valid: false},
		{p: Point{Lng: 181}, valid: false},
		{p: Point{Lng: -181}, valid: false},
		{p: Point{Lat: math.NaN()}, valid: false},
		{p: Point{Lng: math.Inf(1)}, valid: false},
	}
	for _, tc := range testCases {
		s.Equal(tc.valid, ValidPoint(tc.p), "%+v", tc.p)
	}
}

func (s *GeoTestSuite) TestDistanceBerlinParis() {
	d := Distance(berlin, paris)
	// known distance is roughly 878 km
	s.InEpsilon(878000.0, d, 0.01)
}

func (s *GeoTestSuite) TestDistanceSymmetry() {
	s.Equal(Distance(berlin, paris), Distance(paris, berlin))
}

func (s *GeoTestSuite) TestDistanceZeroForSamePoint() {
	s.Zero(Distance(berlin, berlin))
}

func (s *GeoTestSuite) TestDistanceNearbyPointsNotNaN() {
	a := Point{Lat: 52.52, Lng: 13.405}
	b := Point{Lat: 52.52, Lng: 13.4050000001}
	d := Distance(a, b)
	s.False(math.IsNaN(d))
	s.GreaterOrEqual(d, 0.0)
}

func (s *GeoTestSuite) TestInBoundingBox() {
	box := BoundingBox{
		SouthWest: Point{Lat: 48, Lng: 2},
		NorthEast: Point{Lat: 53, Lng: 14},
	}
	s.True(InBoundingBox(berlin, box))
	s.True(InBoundingBox(paris, box))
	s.False(InBoundingBox(Point{Lat: 40.4168, Lng: -3.7038}, box))
	// corners are inclusive
	s.True(InBoundingBox(Point{Lat: 48, Lng: 2}, box))
	s.True(InBoundingBox(Point{Lat: 53, Lng: 14}, box))
}

func (s *GeoTestSuite) TestInBoundingBoxAntimeridian() {
	// box around the Fiji area, spanning the antimeridian
	box := BoundingBox{
		SouthWest: Point{Lat: -20, Lng: 175},
		NorthEast: Point{Lat: -15, Lng: -175},
	}
	s.True(InBoundingBox(Point{Lat: -18, Lng: 178}, box))
	s.True(InBoundingBox(Point{Lat: -18, Lng: -178}, box))
	s.False(InBoundingBox(Point{Lat: -18, Lng: 170}, box))
	s.False(InBoundingBox(Point{Lat: -18, Lng: -170}, box))
}

func (s *GeoTestSuite) TestInPolygonTriangle() {
	triangle := []Point{
		{Lat: 0, Lng: 0},
		{Lat: 10, Lng: 0},
		{Lat: 0, Lng: 10},
	}
	s.True(InPolygon(Point{Lat: 2, Lng: 2}, triangle))
	s.False(InPolygon(Point{Lat: 8, Lng: 8}, triangle))
	s.False(InPolygon(Point{Lat: -1, Lng: -1}, triangle))
}

func (s *GeoTestSuite) TestInPolygonTooFewVertices() {
	s.False(InPolygon(Point{Lat: 1, Lng: 1}, nil))
	s.False(InPolygon(Point{Lat: 1, Lng: 1}, []Point{{Lat: 0, Lng: 0}}))
	s.False(InPolygon(Point{Lat: 1, Lng: 1}, []Point{
		{Lat: 0, Lng: 0}, {Lat: 10, Lng: 10},
	}))
}

func (s *GeoTestSuite) TestInPolygonVertexIsOutside() {
	square := []Point{
		{Lat: 0, Lng: 0},
		{Lat: 10, Lng: 0},
		{Lat: 10, Lng: 10},
		{Lat: 0, Lng: 10},
	}
	s.False(InPolygon(Point{Lat: 0, Lng: 0}, square))
	s.True(InPolygon(Point{Lat: 5, Lng: 5}, square))
}

func TestGeoTestSuite(t *testing.T) {
	suite.Run(t, new(GeoTestSuite))
}
