package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/s1"
)

// EarthRadiusKm is the mean radius of Earth.
const EarthRadiusKm = 6371.0

// Point is a WGS84 position in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ValidateCoordinates checks that latitude is in [-90,90] and longitude in [-180,180].
func ValidateCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// Valid reports whether p lies within coordinate bounds.
func (p Point) Valid() bool { return ValidateCoordinates(p.Lat, p.Lng) }

// EngineString renders p in the index's native "lng,lat" form.
func (p Point) EngineString() string {
	return strconv.FormatFloat(p.Lng, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lat, 'f', -1, 64)
}

// ParseEngineString decodes a "lng,lat" point.
func ParseEngineString(s string) (Point, error) {
	lngStr, latStr, ok := strings.Cut(s, ",")
	if !ok {
		return Point{}, fmt.Errorf("malformed point %q", s)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err != nil {
		return Point{}, fmt.Errorf("parse longitude: %w", err)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return Point{}, fmt.Errorf("parse latitude: %w", err)
	}
	return Point{Lat: lat, Lng: lng}, nil
}

// KmPerDegree returns the east-west and north-south length in km of one
// degree on an equirectangular projection centered on origin.
func KmPerDegree(origin Point) (lng, lat float64) {
	lat = s1.Degree.Radians() * EarthRadiusKm
	return lat * math.Cos(degrees(origin.Lat).Radians()), lat
}

// PlaneDistanceKm approximates the distance from origin to p on an
// equirectangular projection centered on origin. Accurate for short ranges
// and monotonic enough for nearest-first sorting. Longitude differences are
// taken as is, without wrapping at the antimeridian.
func PlaneDistanceKm(origin, p Point) float64 {
	kx, ky := KmPerDegree(origin)
	v := r2.Point{
		X: (p.Lng - origin.Lng) * kx,
		Y: (p.Lat - origin.Lat) * ky,
	}
	return v.Norm()
}

func degrees(d float64) s1.Angle {
	return s1.Angle(d) * s1.Degree
}
