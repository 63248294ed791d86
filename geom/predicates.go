package geom

import (
	"math"

	"github.com/paulmach/orb"
)

const epsilon = 1e-9

// Contains reports whether a contains b, boundary-closed: a point lying
// exactly on a's boundary counts as contained.
func Contains(a, b orb.Geometry) bool {
	switch at := a.(type) {
	case orb.Polygon:
		return polygonContainsGeometry(at, b)
	case orb.MultiPolygon:
		for _, p := range at {
			if polygonContainsGeometry(p, b) {
				return true
			}
		}
		return false
	case orb.Point:
		bp, ok := b.(orb.Point)
		return ok && pointsEqual(at, bp)
	default:
		return false
	}
}

func polygonContainsGeometry(p orb.Polygon, b orb.Geometry) bool {
	switch bt := b.(type) {
	case orb.Point:
		return polygonContainsPoint(p, bt)
	case orb.Polygon:
		return polygonContainsPolygon(p, bt)
	case orb.MultiPolygon:
		for _, part := range bt {
			if !polygonContainsPolygon(p, part) {
				return false
			}
		}
		return len(bt) > 0
	default:
		return false
	}
}

func polygonContainsPolygon(p orb.Polygon, other orb.Polygon) bool {
	if len(other) == 0 {
		return false
	}
	for _, pt := range other[0] {
		if !polygonContainsPoint(p, pt) {
			return false
		}
	}
	// Every vertex of the candidate's outer ring lies inside or on p, and
	// the two boundaries do not cross: sufficient for closed containment
	// because both rings are simple (validated on insert).
	for i := 0; i < len(other[0])-1; i++ {
		for _, ring := range p {
			for j := 0; j < len(ring)-1; j++ {
				if segmentsProperlyIntersect(other[0][i], other[0][i+1], ring[j], ring[j+1]) {
					return false
				}
			}
		}
	}
	return true
}

// polygonContainsPoint uses a ray-casting point-in-polygon test over the
// outer ring and subtracts holes, treating boundary points as inside.
func polygonContainsPoint(p orb.Polygon, pt orb.Point) bool {
	if len(p) == 0 {
		return false
	}
	if !ringContainsPoint(p[0], pt) {
		return false
	}
	for _, hole := range p[1:] {
		if ringStrictlyContainsPoint(hole, pt) {
			return false
		}
	}
	return true
}

func ringContainsPoint(r orb.Ring, pt orb.Point) bool {
	if pointOnRingBoundary(r, pt) {
		return true
	}
	return rayCast(r, pt)
}

func ringStrictlyContainsPoint(r orb.Ring, pt orb.Point) bool {
	if pointOnRingBoundary(r, pt) {
		return false
	}
	return rayCast(r, pt)
}

func rayCast(r orb.Ring, pt orb.Point) bool {
	inside := false
	n := len(r)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := r[i][0], r[i][1]
		xj, yj := r[j][0], r[j][1]
		if (yi > pt[1]) != (yj > pt[1]) {
			xIntersect := xi + (pt[1]-yi)/(yj-yi)*(xj-xi)
			if pt[0] < xIntersect {
				inside = !inside
			}
		}
	}
	return inside
}

func pointOnRingBoundary(r orb.Ring, pt orb.Point) bool {
	for i := 0; i < len(r)-1; i++ {
		if pointOnSegment(pt, r[i], r[i+1]) {
			return true
		}
	}
	return false
}

// Intersects reports whether a and b share any point, boundary touches
// included.
func Intersects(a, b orb.Geometry) bool {
	switch at := a.(type) {
	case orb.Polygon:
		return polygonIntersectsGeometry(at, b)
	case orb.MultiPolygon:
		for _, p := range at {
			if polygonIntersectsGeometry(p, b) {
				return true
			}
		}
		return false
	case orb.Point:
		switch bt := b.(type) {
		case orb.Point:
			return pointsEqual(at, bt)
		default:
			return Intersects(b, at)
		}
	default:
		return false
	}
}

func polygonIntersectsGeometry(p orb.Polygon, b orb.Geometry) bool {
	switch bt := b.(type) {
	case orb.Point:
		return polygonContainsPoint(p, bt)
	case orb.Polygon:
		return polygonsIntersect(p, bt)
	case orb.MultiPolygon:
		for _, part := range bt {
			if polygonsIntersect(p, part) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func polygonsIntersect(p, q orb.Polygon) bool {
	if !boundsOverlap(p.Bound(), q.Bound()) {
		return false
	}
	// any vertex of one inside the other
	if len(q) > 0 {
		for _, pt := range q[0] {
			if polygonContainsPoint(p, pt) {
				return true
			}
		}
	}
	if len(p) > 0 {
		for _, pt := range p[0] {
			if polygonContainsPoint(q, pt) {
				return true
			}
		}
	}
	// any boundary segments crossing (covers the case where neither
	// polygon's vertices lie inside the other but the boundaries cross)
	for _, ringA := range p {
		for i := 0; i < len(ringA)-1; i++ {
			for _, ringB := range q {
				for j := 0; j < len(ringB)-1; j++ {
					if segmentsIntersectInclusive(ringA[i], ringA[i+1], ringB[j], ringB[j+1]) {
						return true
					}
				}
			}
		}
	}
	return false
}

func boundsOverlap(a, b orb.Bound) bool {
	return a.Min[0] <= b.Max[0] && a.Max[0] >= b.Min[0] &&
		a.Min[1] <= b.Max[1] && a.Max[1] >= b.Min[1]
}

func pointsEqual(a, b orb.Point) bool {
	return math.Abs(a[0]-b[0]) < epsilon && math.Abs(a[1]-b[1]) < epsilon
}

func pointOnSegment(pt, a, b orb.Point) bool {
	cross := (pt[0]-a[0])*(b[1]-a[1]) - (pt[1]-a[1])*(b[0]-a[0])
	if math.Abs(cross) > epsilon {
		return false
	}
	minX, maxX := math.Min(a[0], b[0]), math.Max(a[0], b[0])
	minY, maxY := math.Min(a[1], b[1]), math.Max(a[1], b[1])
	return pt[0] >= minX-epsilon && pt[0] <= maxX+epsilon && pt[1] >= minY-epsilon && pt[1] <= maxY+epsilon
}

// segmentsProperlyIntersect reports a crossing that is not merely a shared
// endpoint, used to reject outer-ring overlaps that touch only at a vertex.
func segmentsProperlyIntersect(a1, a2, b1, b2 orb.Point) bool {
	d1 := cross(b1, b2, a1)
	d2 := cross(b1, b2, a2)
	d3 := cross(a1, a2, b1)
	d4 := cross(a1, a2, b2)

	if ((d1 > epsilon && d2 < -epsilon) || (d1 < -epsilon && d2 > epsilon)) &&
		((d3 > epsilon && d4 < -epsilon) || (d3 < -epsilon && d4 > epsilon)) {
		return true
	}
	return false
}

// segmentsIntersectInclusive additionally counts touching endpoints and
// collinear overlaps as an intersection.
func segmentsIntersectInclusive(a1, a2, b1, b2 orb.Point) bool {
	if segmentsProperlyIntersect(a1, a2, b1, b2) {
		return true
	}
	return pointOnSegment(a1, b1, b2) || pointOnSegment(a2, b1, b2) ||
		pointOnSegment(b1, a1, a2) || pointOnSegment(b2, a1, a2)
}

func cross(o, a, b orb.Point) float64 {
	return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
}
