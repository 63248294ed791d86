package geom

import (
	"testing"

	"github.com/paulmach/orb"
	"geographer/util"
)

func TestReproject_IdentityIsNoOp(t *testing.T) {
	// Arrange
	p := orb.Point{13.4, 52.5}

	// Act
	result, err := Reproject(p, EPSG4326, EPSG4326)

	// Assert
	util.AssertNil(t, err)
	util.AssertEqual(t, p, result)
}

func TestReproject_MercatorRoundTrip(t *testing.T) {
	// Arrange
	original := orb.Point{13.4, 52.5}

	// Act
	mercator, err := Reproject(original, EPSG4326, EPSG3857)
	util.AssertNil(t, err)
	roundTripped, err := Reproject(mercator, EPSG3857, EPSG4326)

	// Assert
	util.AssertNil(t, err)
	rt := roundTripped.(orb.Point)
	util.AssertApprox(t, original[0], rt[0], 1e-6)
	util.AssertApprox(t, original[1], rt[1], 1e-6)
}

func TestReproject_UnsupportedPairIsGeometryError(t *testing.T) {
	// Arrange
	p := orb.Point{0, 0}

	// Act
	_, err := Reproject(p, EPSG4326, 25832)

	// Assert
	util.AssertNotNil(t, err)
}
