package geo

import (
	"math"
	"testing"
)

func TestNewPoint_Valid(t *testing.T) {
	p, err := NewPoint(-1.2833, 36.8167)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Latitude != -1.2833 || p.Longitude != 36.8167 {
		t.Errorf("unexpected point: %+v", p)
	}
}

func TestNewPoint_OutOfRange(t *testing.T) {
	cases := []struct {
		name     string
		lat, lon float64
	}{
		{"lat too high", 90.01, 0},
		{"lat too low", -90.01, 0},
		{"lon too high", 0, 180.01},
		{"lon too low", 0, -180.01},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewPoint(tc.lat, tc.lon); err == nil {
				t.Errorf("expected error for lat=%g lon=%g", tc.lat, tc.lon)
			}
		})
	}
}

func TestValidCoordinates_Edges(t *testing.T) {
	if !ValidCoordinates(90, 180) {
		t.Error("corner (90, 180) should be valid")
	}
	if !ValidCoordinates(-90, -180) {
		t.Error("corner (-90, -180) should be valid")
	}
	if ValidCoordinates(90.000001, 0) {
		t.Error("latitude just above 90 should be invalid")
	}
}

func TestBetween_KnownDistances(t *testing.T) {
	// Nairobi CBD to Jomo Kenyatta International Airport, roughly 13.3 km.
	nairobi := Point{Latitude: -1.2833, Longitude: 36.8167}
	jkia := Point{Latitude: -1.3192, Longitude: 36.9278}

	d := Between(nairobi, jkia).Kilometers()
	if d < 12.5 || d > 14.0 {
		t.Errorf("Nairobi-JKIA distance = %.2f km, want ~13.3 km", d)
	}
}

func TestBetween_SamePoint(t *testing.T) {
	p := Point{Latitude: 51.5, Longitude: -0.12}
	if d := Between(p, p).Meters(); d != 0 {
		t.Errorf("distance to self = %g, want 0", d)
	}
}

func TestBetween_Antipodal(t *testing.T) {
	a := Point{Latitude: 0, Longitude: 0}
	b := Point{Latitude: 0, Longitude: 180}

	want := math.Pi * EarthRadiusMeters
	got := Between(a, b).Meters()
	if math.Abs(got-want) > 1 {
		t.Errorf("antipodal distance = %g, want %g", got, want)
	}
}

func TestBetween_Symmetric(t *testing.T) {
	a := Point{Latitude: -1.2833, Longitude: 36.8167}
	b := Point{Latitude: 52.52, Longitude: 13.405}

	if ab, ba := Between(a, b), Between(b, a); ab != ba {
		t.Errorf("distance not symmetric: %g vs %g", ab, ba)
	}
}

func TestDistance_UnitConversions(t *testing.T) {
	d := Distance(MetersPerMile)
	if d.Miles() != 1 {
		t.Errorf("Miles() = %g, want 1", d.Miles())
	}

	d = Distance(2500)
	if d.Meters() != 2500 {
		t.Errorf("Meters() = %g, want 2500", d.Meters())
	}
	if d.Kilometers() != 2.5 {
		t.Errorf("Kilometers() = %g, want 2.5", d.Kilometers())
	}
}

func TestNewBounds_LatitudeOrdering(t *testing.T) {
	sw := Point{Latitude: 10, Longitude: 0}
	ne := Point{Latitude: 5, Longitude: 10}
	if _, err := NewBounds(sw, ne); err == nil {
		t.Error("expected error when south latitude is above north latitude")
	}
}

func TestNewBounds_InvalidCorner(t *testing.T) {
	if _, err := NewBounds(Point{Latitude: -91}, Point{}); err == nil {
		t.Error("expected error for out-of-range southwest corner")
	}
	if _, err := NewBounds(Point{}, Point{Longitude: 181}); err == nil {
		t.Error("expected error for out-of-range northeast corner")
	}
}

func TestNewBounds_AllowsWrap(t *testing.T) {
	// West of the northeast corner in signed longitude but valid: the box
	// crosses the antimeridian.
	b, err := NewBounds(Point{Latitude: -10, Longitude: 170}, Point{Latitude: 10, Longitude: -170})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !b.WrapsAntimeridian() {
		t.Error("expected wrapping bounds")
	}
}

func TestLonRanges_Regular(t *testing.T) {
	b := Bounds{SouthWest: Point{Longitude: -10}, NorthEast: Point{Longitude: 20}}

	ranges := b.LonRanges()
	if len(ranges) != 1 {
		t.Fatalf("expected 1 range, got %d", len(ranges))
	}
	if ranges[0] != (LonRange{West: -10, East: 20}) {
		t.Errorf("unexpected range: %+v", ranges[0])
	}
}

func TestLonRanges_Wrapping(t *testing.T) {
	b := Bounds{SouthWest: Point{Longitude: 170}, NorthEast: Point{Longitude: -165}}

	ranges := b.LonRanges()
	if len(ranges) != 2 {
		t.Fatalf("expected 2 ranges, got %d", len(ranges))
	}
	if ranges[0] != (LonRange{West: 170, East: 180}) {
		t.Errorf("unexpected eastern range: %+v", ranges[0])
	}
	if ranges[1] != (LonRange{West: -180, East: -165}) {
		t.Errorf("unexpected western range: %+v", ranges[1])
	}
}

func TestContains(t *testing.T) {
	regular := Bounds{
		SouthWest: Point{Latitude: -5, Longitude: 10},
		NorthEast: Point{Latitude: 5, Longitude: 20},
	}
	wrapping := Bounds{
		SouthWest: Point{Latitude: -5, Longitude: 170},
		NorthEast: Point{Latitude: 5, Longitude: -170},
	}

	cases := []struct {
		name   string
		bounds Bounds
		point  Point
		want   bool
	}{
		{"inside", regular, Point{Latitude: 0, Longitude: 15}, true},
		{"on edge", regular, Point{Latitude: 5, Longitude: 20}, true},
		{"north of box", regular, Point{Latitude: 6, Longitude: 15}, false},
		{"west of box", regular, Point{Latitude: 0, Longitude: 9}, false},
		{"wrap east side", wrapping, Point{Latitude: 0, Longitude: 175}, true},
		{"wrap west side", wrapping, Point{Latitude: 0, Longitude: -175}, true},
		{"wrap outside gap", wrapping, Point{Latitude: 0, Longitude: 0}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.bounds.Contains(tc.point); got != tc.want {
				t.Errorf("Contains(%+v) = %v, want %v", tc.point, got, tc.want)
			}
		})
	}
}
