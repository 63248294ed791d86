package geom

import (
	"testing"

	"github.com/paulmach/orb"
	"geographer/util"
)

func square(minX, minY, maxX, maxY float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY}, {minX, minY},
	}}
}

func TestContains_PointInsidePolygon(t *testing.T) {
	// Arrange
	poly := square(0, 0, 10, 10)
	point := orb.Point{5, 5}

	// Act
	result := Contains(poly, point)

	// Assert
	util.AssertTrue(t, result)
}

func TestContains_PointOnBoundary(t *testing.T) {
	// Arrange
	poly := square(0, 0, 10, 10)
	point := orb.Point{10, 5}

	// Act
	result := Contains(poly, point)

	// Assert
	util.AssertTrue(t, result)
}

func TestContains_PointOutside(t *testing.T) {
	// Arrange
	poly := square(0, 0, 10, 10)
	point := orb.Point{11, 5}

	// Act
	result := Contains(poly, point)

	// Assert
	util.AssertFalse(t, result)
}

func TestIntersects_BufferedPointTouchesSquare(t *testing.T) {
	// Arrange: a circle centered outside the square but overlapping it,
	// mirroring the connector's buffered-point scenario.
	poly := square(0, 0, 10, 10)
	buffered := Buffer(orb.Point{11, 5}, 2, 32)

	// Act
	intersects := Intersects(poly, buffered)
	contains := Contains(poly, buffered)

	// Assert
	util.AssertTrue(t, intersects)
	util.AssertFalse(t, contains)
}

func TestContains_NestedSquare(t *testing.T) {
	// Arrange
	outer := square(0, 0, 10, 10)
	inner := square(2, 2, 8, 8)

	// Act
	result := Contains(outer, inner)

	// Assert
	util.AssertTrue(t, result)
}

func TestIntersects_DisjointSquares(t *testing.T) {
	// Arrange
	a := square(0, 0, 10, 10)
	b := square(20, 20, 30, 30)

	// Act
	result := Intersects(a, b)

	// Assert
	util.AssertFalse(t, result)
}

func TestIsValid_RejectsZeroAreaPolygon(t *testing.T) {
	// Arrange
	degenerate := square(0, 0, 0, 10)

	// Act
	err := IsValid(degenerate)

	// Assert
	util.AssertNotNil(t, err)
}

func TestIsValid_AcceptsSimplePolygon(t *testing.T) {
	// Arrange
	poly := square(0, 0, 10, 10)

	// Act
	err := IsValid(poly)

	// Assert
	util.AssertNil(t, err)
}

func TestIsValid_RejectsBarePoint(t *testing.T) {
	// Arrange: features and rasters are polygon/multipolygon only; a bare
	// point must go through Buffer before it can be stored.
	point := orb.Point{5, 5}

	// Act
	err := IsValid(point)

	// Assert
	util.AssertNotNil(t, err)
}

func TestIntersects_TwoPointsDoesNotRecurseForever(t *testing.T) {
	// Arrange
	a := orb.Point{1, 1}
	b := orb.Point{1, 1}
	c := orb.Point{2, 2}

	// Act
	same := Intersects(a, b)
	different := Intersects(a, c)

	// Assert
	util.AssertTrue(t, same)
	util.AssertFalse(t, different)
}

func TestArea_Square(t *testing.T) {
	// Arrange
	poly := square(0, 0, 10, 10)

	// Act
	area := Area(poly)

	// Assert
	util.AssertApprox(t, 100.0, area, 1e-6)
}
