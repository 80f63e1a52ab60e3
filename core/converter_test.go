package core

import (
	"errors"
	"math"
	"testing"

	"github.com/signalsfoundry/proximity-explorer/model"
)

func TestGeodeticToCartesian_KnownPoints(t *testing.T) {
	// Equator / prime meridian at sea level sits one semi-major axis
	// out along X.
	c, err := GeodeticToCartesian(model.GeodeticPoint{})
	if err != nil {
		t.Fatalf("conversion failed: %v", err)
	}
	if math.Abs(c.X-6378.137) > 1e-9 || math.Abs(c.Y) > 1e-9 || math.Abs(c.Z) > 1e-9 {
		t.Errorf("equator point mismatch: %+v", c)
	}

	// The north pole sits one semi-minor axis up the Z axis.
	semiMinor := wgs84SemiMajorKm * (1 - wgs84Flattening)
	c, err = GeodeticToCartesian(model.GeodeticPoint{LatitudeDeg: 90})
	if err != nil {
		t.Fatalf("pole conversion failed: %v", err)
	}
	if math.Abs(c.Z-semiMinor) > 1e-9 || math.Hypot(c.X, c.Y) > 1e-9 {
		t.Errorf("pole point mismatch: %+v (want Z %.9f)", c, semiMinor)
	}
}

func TestGeodeticToCartesian_RejectsOutOfRange(t *testing.T) {
	bad := []model.GeodeticPoint{
		{LatitudeDeg: 200},
		{LatitudeDeg: -91},
		{LongitudeDeg: 180.5},
		{AltitudeKm: -50},
	}
	for _, g := range bad {
		if _, err := GeodeticToCartesian(g); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("point %+v: want ErrInvalidInput, got %v", g, err)
		}
	}
}

func TestCartesianToGeodetic_DegenerateAtOrigin(t *testing.T) {
	_, err := CartesianToGeodetic(model.CartesianPoint{})
	if !errors.Is(err, ErrDegenerateInput) {
		t.Fatalf("want ErrDegenerateInput for the origin, got %v", err)
	}
}

func TestCartesianToGeodetic_PolarAxis(t *testing.T) {
	// Directly above the north pole the longitude is arbitrary; the
	// altitude is measured from the semi-minor axis.
	g, err := CartesianToGeodetic(model.CartesianPoint{Z: 7000})
	if err != nil {
		t.Fatalf("polar conversion failed: %v", err)
	}
	if g.LatitudeDeg != 90 {
		t.Errorf("latitude: got %v, want 90", g.LatitudeDeg)
	}
	wantAlt := 7000 - wgs84SemiMajorKm*(1-wgs84Flattening)
	if math.Abs(g.AltitudeKm-wantAlt) > 1e-6 {
		t.Errorf("altitude: got %v, want %v", g.AltitudeKm, wantAlt)
	}
}

func TestConversion_RoundTrip(t *testing.T) {
	// Round-trip tolerance: 1e-6 degrees in angle, 1e-3 km in altitude.
	points := []model.GeodeticPoint{
		{LatitudeDeg: 40.7128, LongitudeDeg: -74.0060, AltitudeKm: 0},
		{LatitudeDeg: 51.5074, LongitudeDeg: -0.1278, AltitudeKm: 0.035},
		{LatitudeDeg: -33.8688, LongitudeDeg: 151.2093, AltitudeKm: 550},
		{LatitudeDeg: 81.2, LongitudeDeg: -110.4, AltitudeKm: 780},
		{LatitudeDeg: -0.0001, LongitudeDeg: 179.9999, AltitudeKm: 35786},
		{LatitudeDeg: 2.5, LongitudeDeg: 12.25, AltitudeKm: -5},
	}

	for _, g := range points {
		c, err := GeodeticToCartesian(g)
		if err != nil {
			t.Fatalf("forward conversion of %+v failed: %v", g, err)
		}
		back, err := CartesianToGeodetic(c)
		if err != nil {
			t.Fatalf("inverse conversion of %+v failed: %v", c, err)
		}

		if math.Abs(back.LatitudeDeg-g.LatitudeDeg) > 1e-6 {
			t.Errorf("%+v: latitude drifted to %v", g, back.LatitudeDeg)
		}
		if math.Abs(back.LongitudeDeg-g.LongitudeDeg) > 1e-6 {
			t.Errorf("%+v: longitude drifted to %v", g, back.LongitudeDeg)
		}
		if math.Abs(back.AltitudeKm-g.AltitudeKm) > 1e-3 {
			t.Errorf("%+v: altitude drifted to %v", g, back.AltitudeKm)
		}
	}
}

func TestSurfaceDistance_Symmetry(t *testing.T) {
	a := model.GeodeticPoint{LatitudeDeg: 51.5074, LongitudeDeg: -0.1278}
	b := model.GeodeticPoint{LatitudeDeg: 48.8566, LongitudeDeg: 2.3522}

	ab := SurfaceDistance(a, b)
	ba := SurfaceDistance(b, a)
	if ab != ba {
		t.Errorf("distance not symmetric: %v vs %v", ab, ba)
	}
	// London-Paris is roughly 344 km over the mean-radius sphere.
	if ab < 330 || ab > 360 {
		t.Errorf("London-Paris distance implausible: %v km", ab)
	}
}

func TestSurfaceDistance_ZeroForIdenticalPoints(t *testing.T) {
	pts := []model.GeodeticPoint{
		{},
		{LatitudeDeg: 40.7128, LongitudeDeg: -74.0060},
		{LatitudeDeg: -89.5, LongitudeDeg: 17},
	}
	for _, p := range pts {
		if d := SurfaceDistance(p, p); d != 0 {
			t.Errorf("distance from %+v to itself: got %v, want 0", p, d)
		}
	}
}

func TestSurfaceDistance_OneDegreeOfLongitudeAtEquator(t *testing.T) {
	a := model.GeodeticPoint{}
	b := model.GeodeticPoint{LongitudeDeg: 1}
	want := MeanEarthRadiusKm * math.Pi / 180
	if d := SurfaceDistance(a, b); math.Abs(d-want) > 1e-9 {
		t.Errorf("one degree at equator: got %v, want %v", d, want)
	}
}

func TestElevationAngle_HorizonAndZenith(t *testing.T) {
	obs := model.GeodeticPoint{} // equator, prime meridian, sea level
	obsECEF, err := GeodeticToCartesian(obs)
	if err != nil {
		t.Fatalf("observer conversion failed: %v", err)
	}

	// A target displaced along +Y lies exactly in the observer's local
	// horizontal plane.
	horizon := model.CartesianPoint{X: obsECEF.X, Y: obsECEF.Y + 100, Z: obsECEF.Z}
	elev, err := ElevationAngle(obs, horizon)
	if err != nil {
		t.Fatalf("elevation failed: %v", err)
	}
	if math.Abs(elev) > 1e-9 {
		t.Errorf("horizon target: got %v°, want 0°", elev)
	}

	// A target displaced along the zenith is directly overhead.
	overhead := model.CartesianPoint{X: obsECEF.X + 1000, Y: obsECEF.Y, Z: obsECEF.Z}
	elev, err = ElevationAngle(obs, overhead)
	if err != nil {
		t.Fatalf("elevation failed: %v", err)
	}
	if math.Abs(elev-90) > 1e-9 {
		t.Errorf("overhead target: got %v°, want 90°", elev)
	}

	// A target buried under the observer is at the nadir.
	below := model.CartesianPoint{X: obsECEF.X - 100, Y: obsECEF.Y, Z: obsECEF.Z}
	elev, err = ElevationAngle(obs, below)
	if err != nil {
		t.Fatalf("elevation failed: %v", err)
	}
	if math.Abs(elev+90) > 1e-9 {
		t.Errorf("buried target: got %v°, want -90°", elev)
	}
}

func TestElevationAngle_HorizonAtMidLatitude(t *testing.T) {
	// The local east tangent is horizontal at any latitude, so a target
	// displaced due east of the observer sits on the geometric horizon.
	obs := model.GeodeticPoint{LatitudeDeg: 51.5074, LongitudeDeg: -0.1278}
	obsECEF, err := GeodeticToCartesian(obs)
	if err != nil {
		t.Fatalf("observer conversion failed: %v", err)
	}

	lon := obs.LongitudeDeg * math.Pi / 180
	east := Vec3{X: -math.Sin(lon), Y: math.Cos(lon), Z: 0}
	target := model.CartesianPoint{
		X: obsECEF.X + 500*east.X,
		Y: obsECEF.Y + 500*east.Y,
		Z: obsECEF.Z + 500*east.Z,
	}

	elev, err := ElevationAngle(obs, target)
	if err != nil {
		t.Fatalf("elevation failed: %v", err)
	}
	if math.Abs(elev) > 1e-9 {
		t.Errorf("due-east target: got %v°, want 0°", elev)
	}
}

func TestElevationAngle_InvalidObserver(t *testing.T) {
	_, err := ElevationAngle(model.GeodeticPoint{LatitudeDeg: 100}, model.CartesianPoint{X: 7000})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput for invalid observer, got %v", err)
	}
}
