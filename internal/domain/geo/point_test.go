package geo

import (
	"math"
	"testing"
)

func almost(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

func TestValidateCoordinates(t *testing.T) {
	tests := []struct {
		lat, lng float64
		want     bool
	}{
		{0, 0, true},
		{90, 180, true},
		{-90, -180, true},
		{90.0001, 0, false},
		{0, -180.5, false},
	}
	for _, tc := range tests {
		if got := ValidateCoordinates(tc.lat, tc.lng); got != tc.want {
			t.Errorf("ValidateCoordinates(%v, %v) = %v, want %v", tc.lat, tc.lng, got, tc.want)
		}
	}
}

func TestEngineString_RoundTrip(t *testing.T) {
	p := Point{Lat: 10.696144, Lng: 38.370941}
	s := p.EngineString()
	if s != "38.370941,10.696144" {
		t.Fatalf("EngineString() = %q", s)
	}
	got, err := ParseEngineString(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != p {
		t.Errorf("got %+v, want %+v", got, p)
	}
}

func TestParseEngineString_Malformed(t *testing.T) {
	for _, s := range []string{"", "10.5", "x,1", "1,y"} {
		if _, err := ParseEngineString(s); err == nil {
			t.Errorf("ParseEngineString(%q): expected error", s)
		}
	}
}

func TestPlaneDistanceKm_SamePoint(t *testing.T) {
	p := Point{Lat: 9.03, Lng: 38.74}
	if d := PlaneDistanceKm(p, p); d != 0 {
		t.Fatalf("want 0, got %f", d)
	}
}

func TestPlaneDistanceKm_OneDegreeLatitude(t *testing.T) {
	d := PlaneDistanceKm(Point{Lat: 0, Lng: 0}, Point{Lat: 1, Lng: 0})
	if !almost(d, 111.19, 0.1) {
		t.Fatalf("want ~111.19km, got %f", d)
	}
}

func TestKmPerDegree(t *testing.T) {
	lng, lat := KmPerDegree(Point{})
	if !almost(lng, 111.19, 0.01) || !almost(lat, 111.19, 0.01) {
		t.Errorf("equator = %f/%f, want ~111.19 both", lng, lat)
	}
	lng, lat = KmPerDegree(Point{Lat: 60, Lng: 38.7})
	if !almost(lng, lat/2, 1e-9) {
		t.Errorf("at 60N lng = %f, want half of %f", lng, lat)
	}
}

func TestPlaneDistanceKm_CenteredOnOrigin(t *testing.T) {
	d := PlaneDistanceKm(Point{Lat: 60, Lng: 0}, Point{Lat: 60, Lng: 1})
	if !almost(d, 55.6, 0.1) {
		t.Fatalf("want ~55.6km, got %f", d)
	}
}

func TestPlaneDistanceKm_Ordering(t *testing.T) {
	origin := Point{Lat: 9.0, Lng: 38.7}
	near := Point{Lat: 9.1, Lng: 38.7}
	far := Point{Lat: 10.0, Lng: 38.7}
	if PlaneDistanceKm(origin, near) >= PlaneDistanceKm(origin, far) {
		t.Fatal("near point should be closer than far point")
	}
}
