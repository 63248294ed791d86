package spatial

import (
	"testing"

	"github.com/paulmach/orb"
	"geographer/util"
)

func bound(minX, minY, maxX, maxY float64) orb.Bound {
	return orb.Bound{Min: orb.Point{minX, minY}, Max: orb.Point{maxX, maxY}}
}

func TestInsertAndQuery_FindsOverlap(t *testing.T) {
	// Arrange
	idx := New()
	err := idx.Insert("raster-1", bound(0, 0, 1, 1))
	util.AssertNil(t, err)

	// Act
	result := idx.Query(bound(0.5, 0.5, 2, 2))

	// Assert
	util.AssertEqual(t, []string{"raster-1"}, result)
}

func TestQuery_ExcludesNonOverlapping(t *testing.T) {
	// Arrange
	idx := New()
	util.AssertNil(t, idx.Insert("raster-1", bound(0, 0, 1, 1)))

	// Act
	result := idx.Query(bound(10, 10, 11, 11))

	// Assert
	util.AssertEqual(t, 0, len(result))
}

func TestInsert_DuplicateIdIsError(t *testing.T) {
	// Arrange
	idx := New()
	util.AssertNil(t, idx.Insert("x", bound(0, 0, 1, 1)))

	// Act
	err := idx.Insert("x", bound(5, 5, 6, 6))

	// Assert
	util.AssertNotNil(t, err)
}

func TestRemove_ThenQueryFindsNothing(t *testing.T) {
	// Arrange
	idx := New()
	util.AssertNil(t, idx.Insert("x", bound(0, 0, 1, 1)))

	// Act
	err := idx.Remove("x")

	// Assert
	util.AssertNil(t, err)
	util.AssertFalse(t, idx.Has("x"))
	util.AssertEqual(t, 0, len(idx.Query(bound(0, 0, 1, 1))))
}

func TestRemove_UnknownIdIsError(t *testing.T) {
	// Arrange
	idx := New()

	// Act
	err := idx.Remove("missing")

	// Assert
	util.AssertNotNil(t, err)
}

func TestBulkLoad_ReplacesContents(t *testing.T) {
	// Arrange
	idx := New()
	util.AssertNil(t, idx.Insert("stale", bound(0, 0, 1, 1)))

	// Act
	idx.BulkLoad([]Entry{
		{ID: "a", Bound: bound(0, 0, 1, 1)},
		{ID: "b", Bound: bound(5, 5, 6, 6)},
	})

	// Assert
	util.AssertFalse(t, idx.Has("stale"))
	util.AssertEqual(t, 2, idx.Len())
}

func TestQuery_DeterministicInsertionOrder(t *testing.T) {
	// Arrange
	idx := New()
	util.AssertNil(t, idx.Insert("b", bound(0, 0, 1, 1)))
	util.AssertNil(t, idx.Insert("a", bound(0, 0, 1, 1)))

	// Act
	result := idx.Query(bound(0, 0, 1, 1))

	// Assert
	util.AssertEqual(t, []string{"b", "a"}, result)
}

func TestClone_IsIndependent(t *testing.T) {
	// Arrange
	idx := New()
	util.AssertNil(t, idx.Insert("x", bound(0, 0, 1, 1)))
	clone := idx.Clone()

	// Act
	util.AssertNil(t, clone.Insert("y", bound(2, 2, 3, 3)))

	// Assert
	util.AssertEqual(t, 1, idx.Len())
	util.AssertEqual(t, 2, clone.Len())
}
