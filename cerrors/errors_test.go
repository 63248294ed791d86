package cerrors

import (
	"errors"
	"testing"

	"geographer/util"
)

func TestError_MessageIncludesIdAndKind(t *testing.T) {
	// Arrange
	err := New(KindIdentifier, "feature-1", "already present")

	// Act
	message := err.Error()

	// Assert
	util.AssertMatch(t, "identifier", message)
	util.AssertMatch(t, "feature-1", message)
}

func TestWrap_UnwrapsToCause(t *testing.T) {
	// Arrange
	cause := errors.New("disk full")
	err := Wrap(KindPersistence, "", cause, "writing vectors.geojson")

	// Act
	unwrapped := errors.Unwrap(err)

	// Assert
	util.AssertEqual(t, cause, unwrapped)
}

func TestIs_MatchesSameKindSentinel(t *testing.T) {
	// Arrange
	err := New(KindGeometry, "r1", "invalid footprint")

	// Act
	matches := errors.Is(err, Sentinel(KindGeometry))
	mismatches := errors.Is(err, Sentinel(KindSchema))

	// Assert
	util.AssertTrue(t, matches)
	util.AssertFalse(t, mismatches)
}
