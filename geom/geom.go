// Package geom adapts github.com/paulmach/orb geometry types into the
// closed-set predicates and CRS handling the connector needs. orb has no
// boolean geometry engine, so Contains and Intersects are implemented here
// on top of orb's ring and point primitives.
package geom

import (
	"math"

	"github.com/paulmach/orb"
	"geographer/cerrors"
)

// EPSG codes supported by Reproject. Anything else is a geometry error.
const (
	EPSG4326 = 4326
	EPSG3857 = 3857
)

// Bounds returns the axis-aligned bounding box of g.
func Bounds(g orb.Geometry) orb.Bound {
	return g.Bound()
}

// Area returns the polygon area in CRS units, summing outer ring area minus
// hole areas. Non-polygonal geometries have zero area.
func Area(g orb.Geometry) float64 {
	switch t := g.(type) {
	case orb.Polygon:
		return polygonArea(t)
	case orb.MultiPolygon:
		var total float64
		for _, p := range t {
			total += polygonArea(p)
		}
		return total
	default:
		return 0
	}
}

func polygonArea(p orb.Polygon) float64 {
	if len(p) == 0 {
		return 0
	}
	area := math.Abs(ringArea(p[0]))
	for _, hole := range p[1:] {
		area -= math.Abs(ringArea(hole))
	}
	if area < 0 {
		return 0
	}
	return area
}

// ringArea uses the shoelace formula; sign indicates winding order.
func ringArea(r orb.Ring) float64 {
	if len(r) < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < len(r); i++ {
		j := (i + 1) % len(r)
		sum += r[i][0]*r[j][1] - r[j][0]*r[i][1]
	}
	return sum / 2
}

// IsValid rejects empty geometries, zero-area polygons and self-intersecting
// rings. orb does not validate geometries on construction, so this is the
// connector's only gate against garbage input.
func IsValid(g orb.Geometry) error {
	if g == nil || g.Bound().IsEmpty() {
		return cerrors.New(cerrors.KindGeometry, "", "geometry is empty")
	}
	switch t := g.(type) {
	case orb.Point:
		return cerrors.New(cerrors.KindGeometry, "", "bare point geometry is not allowed; buffer it into a polygon first (see geom.Buffer)")
	case orb.Polygon:
		return validatePolygon(t)
	case orb.MultiPolygon:
		if len(t) == 0 {
			return cerrors.New(cerrors.KindGeometry, "", "multipolygon has no parts")
		}
		for _, p := range t {
			if err := validatePolygon(p); err != nil {
				return err
			}
		}
		return nil
	default:
		return cerrors.New(cerrors.KindGeometry, "", "unsupported geometry type %T", g)
	}
}

func validatePolygon(p orb.Polygon) error {
	if len(p) == 0 {
		return cerrors.New(cerrors.KindGeometry, "", "polygon has no rings")
	}
	for _, ring := range p {
		if len(ring) < 4 {
			return cerrors.New(cerrors.KindGeometry, "", "ring has fewer than 4 points")
		}
	}
	if Area(p) <= 0 {
		return cerrors.New(cerrors.KindGeometry, "", "polygon has zero area")
	}
	for _, ring := range p {
		if ringSelfIntersects(ring) {
			return cerrors.New(cerrors.KindGeometry, "", "ring self-intersects")
		}
	}
	return nil
}

func ringSelfIntersects(r orb.Ring) bool {
	n := len(r)
	if n < 4 {
		return false
	}
	for i := 0; i < n-1; i++ {
		a1, a2 := r[i], r[i+1]
		for j := i + 1; j < n-1; j++ {
			if j == i || j == i+1 {
				continue
			}
			// adjacent segments legitimately share an endpoint
			if i == 0 && j == n-2 {
				continue
			}
			b1, b2 := r[j], r[j+1]
			if segmentsProperlyIntersect(a1, a2, b1, b2) {
				return true
			}
		}
	}
	return false
}

// Buffer approximates a circle of the given radius around p with a regular
// polygon of segments vertices, for test fixtures and collaborators that
// need to turn a point feature into an areal geometry.
func Buffer(p orb.Point, radius float64, segments int) orb.Polygon {
	if segments < 3 {
		segments = 3
	}
	ring := make(orb.Ring, 0, segments+1)
	for i := 0; i < segments; i++ {
		theta := 2 * math.Pi * float64(i) / float64(segments)
		ring = append(ring, orb.Point{
			p[0] + radius*math.Cos(theta),
			p[1] + radius*math.Sin(theta),
		})
	}
	ring = append(ring, ring[0])
	return orb.Polygon{ring}
}
