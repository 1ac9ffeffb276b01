package value

import (
	"fmt"
	"math"
)

// CRS identifies which coordinate reference system a Point was built
// against. The CRS is derived from the key set the point was constructed
// with, never passed explicitly: {x,y} -> Cartesian, {x,y,z} -> Cartesian3D,
// {latitude,longitude[,height]} -> WGS84.
type CRS uint8

const (
	CRSCartesian CRS = iota
	CRSCartesian3D
	CRSWGS84
	CRSWGS843D
)

func (c CRS) String() string {
	switch c {
	case CRSCartesian:
		return "cartesian"
	case CRSCartesian3D:
		return "cartesian-3d"
	case CRSWGS84:
		return "wgs-84"
	case CRSWGS843D:
		return "wgs-84-3d"
	default:
		return "unknown"
	}
}

// Point is a spatial value. For Cartesian CRSs X/Y/Z hold plain
// coordinates; for WGS84 CRSs X is longitude and Y is latitude (matching
// Neo4j's point() convention of storing geographic points as x=longitude,
// y=latitude so both families share one struct).
type Point struct {
	CRS     CRS
	X, Y, Z float64
}

// NewPointFromMap infers the CRS from the key set present in m and
// validates latitude/longitude range for geographic points. Matches the
// point({...}) constructor semantics.
func NewPointFromMap(m map[string]Value) (Point, error) {
	_, hasLat := m["latitude"]
	_, hasLon := m["longitude"]
	_, hasX := m["x"]
	_, hasY := m["y"]
	_, hasZ := m["z"]
	_, hasHeight := m["height"]

	switch {
	case hasLat && hasLon:
		lat, err := floatField(m, "latitude")
		if err != nil {
			return Point{}, err
		}
		lon, err := floatField(m, "longitude")
		if err != nil {
			return Point{}, err
		}
		if lat < -90 || lat > 90 {
			return Point{}, fmt.Errorf("%w: latitude %g out of [-90,90]", ErrOutOfRange, lat)
		}
		if lon < -180 || lon > 180 {
			return Point{}, fmt.Errorf("%w: longitude %g out of [-180,180]", ErrOutOfRange, lon)
		}
		if hasHeight {
			h, err := floatField(m, "height")
			if err != nil {
				return Point{}, err
			}
			return Point{CRS: CRSWGS843D, X: lon, Y: lat, Z: h}, nil
		}
		return Point{CRS: CRSWGS84, X: lon, Y: lat}, nil
	case hasX && hasY:
		x, err := floatField(m, "x")
		if err != nil {
			return Point{}, err
		}
		y, err := floatField(m, "y")
		if err != nil {
			return Point{}, err
		}
		if hasZ {
			z, err := floatField(m, "z")
			if err != nil {
				return Point{}, err
			}
			return Point{CRS: CRSCartesian3D, X: x, Y: y, Z: z}, nil
		}
		return Point{CRS: CRSCartesian, X: x, Y: y}, nil
	default:
		return Point{}, fmt.Errorf("%w: point() requires {x,y[,z]} or {latitude,longitude[,height]}", ErrOutOfRange)
	}
}

func floatField(m map[string]Value, key string) (float64, error) {
	v, ok := m[key]
	if !ok {
		return 0, fmt.Errorf("%w: missing point field %q", ErrOutOfRange, key)
	}
	if !v.IsNumeric() {
		return 0, fmt.Errorf("%w: point field %q must be numeric", ErrTypeMismatch, key)
	}
	f, _ := v.numeric()
	return f, nil
}

func (p Point) isGeographic() bool {
	return p.CRS == CRSWGS84 || p.CRS == CRSWGS843D
}

func (p Point) String() string {
	if p.isGeographic() {
		if p.CRS == CRSWGS843D {
			return fmt.Sprintf("point({longitude: %g, latitude: %g, height: %g})", p.X, p.Y, p.Z)
		}
		return fmt.Sprintf("point({longitude: %g, latitude: %g})", p.X, p.Y)
	}
	if p.CRS == CRSCartesian3D {
		return fmt.Sprintf("point({x: %g, y: %g, z: %g})", p.X, p.Y, p.Z)
	}
	return fmt.Sprintf("point({x: %g, y: %g})", p.X, p.Y)
}

// earthRadiusMeters is the sphere radius used for Haversine distance, per
// the fixed 6,371,000 m figure this behavior is pinned to.
const earthRadiusMeters = 6371000.0

// Distance computes Euclidean distance for Cartesian/Cartesian-3D points and
// Haversine great-circle distance (in meters) for WGS84 points. Comparing
// points from different CRSs is a ValueError.
func Distance(a, b Point) (float64, error) {
	if a.CRS != b.CRS {
		return 0, fmt.Errorf("%w: cannot compare %s with %s", ErrMixedCRS, a.CRS, b.CRS)
	}
	if a.isGeographic() {
		return haversine(a.Y, a.X, b.Y, b.X), nil
	}
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz), nil
}

func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	lat1r := lat1 * rad
	lat2r := lat2 * rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}
