package geo

import (
	"errors"
	"math"
	"testing"

	"github.com/cyborstrike/combatcore/pkg/core"
)

func TestAnchorFromString_Valid(t *testing.T) {
	anchor, err := AnchorFromString("13.405, 52.52")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if anchor.Longitude != 13.405 {
		t.Errorf("expected longitude=13.405, got %f", anchor.Longitude)
	}
	if anchor.Latitude != 52.52 {
		t.Errorf("expected latitude=52.52, got %f", anchor.Latitude)
	}
}

func TestAnchorFromString_Invalid(t *testing.T) {
	for _, in := range []string{"", "13.4", "a,52", "13,b", "1,2,3", "190,10", "10,89"} {
		if _, err := AnchorFromString(in); err != ErrInvalidCoordinates {
			t.Errorf("%q: expected ErrInvalidCoordinates, got %v", in, err)
		}
	}
}

func TestCoords3857From4326_ValidCoordinates(t *testing.T) {
	// Test converting WGS84 (EPSG:4326) to Web Mercator (EPSG:3857)
	// Approximate coordinates for a point
	point, err := Coords3857From4326(0, 0)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	coords, ok := point.Coordinates()
	if !ok {
		t.Fatal("expected valid coordinates")
	}
	// At (0, 0) in 4326, the 3857 coordinates should also be (0, 0)
	if coords.X != 0 {
		t.Errorf("expected X=0 at origin, got %f", coords.X)
	}
	if coords.Y != 0 {
		t.Errorf("expected Y=0 at origin, got %f", coords.Y)
	}
}

func TestCoords3857From4326_NonZeroCoordinates(t *testing.T) {
	// Test a point at 10 degrees longitude, 10 degrees latitude
	point, err := Coords3857From4326(10, 10)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	coords, ok := point.Coordinates()
	if !ok {
		t.Fatal("expected valid coordinates")
	}
	// In Web Mercator, these should be non-zero positive values
	if coords.X <= 0 {
		t.Errorf("expected positive X, got %f", coords.X)
	}
	if coords.Y <= 0 {
		t.Errorf("expected positive Y, got %f", coords.Y)
	}
}

func TestCoords3857From4326_NegativeCoordinates(t *testing.T) {
	// Test a point in the Southern/Western hemisphere
	point, err := Coords3857From4326(-45, -30)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	coords, ok := point.Coordinates()
	if !ok {
		t.Fatal("expected valid coordinates")
	}
	if coords.X >= 0 {
		t.Errorf("expected negative X for western hemisphere, got %f", coords.X)
	}
	if coords.Y >= 0 {
		t.Errorf("expected negative Y for southern hemisphere, got %f", coords.Y)
	}
}

func TestProject_Equator(t *testing.T) {
	point, elev, err := Project(core.GeoAnchor{}, core.Position3D{X: 10, Y: 1.8, Z: -20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	xy, ok := point.XY()
	if !ok {
		t.Fatal("expected non-empty point")
	}
	if math.Abs(xy.X-10) > 1e-6 {
		t.Errorf("expected X=10, got %f", xy.X)
	}
	// -Z is north
	if math.Abs(xy.Y-20) > 1e-6 {
		t.Errorf("expected Y=20, got %f", xy.Y)
	}
	if elev != 1.8 {
		t.Errorf("expected elevation 1.8, got %f", elev)
	}
}

func TestProject_ScalesWithLatitude(t *testing.T) {
	anchor := core.GeoAnchor{Latitude: 60, Longitude: 10}
	origin, _, err := Project(anchor, core.Position3D{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	moved, _, err := Project(anchor, core.Position3D{X: 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, _ := origin.XY()
	b, _ := moved.XY()
	if math.Abs((b.X-a.X)-200) > 1e-6 {
		t.Errorf("expected 200 mercator units at 60N, got %f", b.X-a.X)
	}
	if a.Y != b.Y {
		t.Errorf("expected unchanged northing, got %f and %f", a.Y, b.Y)
	}
}

func TestShotTrace(t *testing.T) {
	ls, err := ShotTrace(core.GeoAnchor{}, core.Position3D{}, core.Position3D{X: 0, Z: -50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seq := ls.Coordinates()
	if seq.Length() != 2 {
		t.Fatalf("expected 2 points, got %d", seq.Length())
	}
	end := seq.GetXY(1)
	if math.Abs(end.Y-50) > 1e-6 {
		t.Errorf("expected end northing 50, got %f", end.Y)
	}
	if math.Abs(ls.Length()-50) > 1e-6 {
		t.Errorf("expected length 50, got %f", ls.Length())
	}
}

func TestUnproject_RoundTrip(t *testing.T) {
	anchor := core.GeoAnchor{Latitude: 52.52, Longitude: 13.405}
	in := core.Position3D{X: 12.5, Y: 1.8, Z: -40}

	point, elev, err := Project(anchor, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := Unproject(anchor, point, elev)

	if math.Abs(out.X-in.X) > 1e-6 || math.Abs(out.Z-in.Z) > 1e-6 || out.Y != in.Y {
		t.Errorf("expected %+v, got %+v", in, out)
	}
}

func TestProject_RejectsNonFinitePosition(t *testing.T) {
	point, _, err := Project(core.GeoAnchor{}, core.Position3D{X: math.NaN()})
	if !errors.Is(err, ErrInvalidCoordinates) {
		t.Fatalf("expected ErrInvalidCoordinates, got %v", err)
	}
	if !point.IsEmpty() {
		t.Error("expected empty point on error")
	}

	if _, _, err := Project(core.GeoAnchor{}, core.Position3D{Z: math.Inf(1)}); !errors.Is(err, ErrInvalidCoordinates) {
		t.Errorf("expected ErrInvalidCoordinates for +Inf, got %v", err)
	}
}

func TestShotTrace_ZeroLength(t *testing.T) {
	p := core.Position3D{X: 3, Z: 4}
	ls, err := ShotTrace(core.GeoAnchor{}, p, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ls.IsEmpty() {
		t.Error("expected empty line for a zero-length shot")
	}
}

func TestShotTrace_RejectsNonFinite(t *testing.T) {
	_, err := ShotTrace(core.GeoAnchor{}, core.Position3D{}, core.Position3D{X: math.Inf(-1)})
	if !errors.Is(err, ErrInvalidCoordinates) {
		t.Errorf("expected ErrInvalidCoordinates, got %v", err)
	}
}

func TestCoords3857From4326_RejectsNaN(t *testing.T) {
	if _, err := Coords3857From4326(math.NaN(), 0); !errors.Is(err, ErrInvalidCoordinates) {
		t.Errorf("expected ErrInvalidCoordinates, got %v", err)
	}
}
