package connector

import (
	"context"
	"testing"

	"geographer/geom"
	"geographer/table"
	"geographer/util"
)

func TestSetCRSEPSGCode_IndexFindsCandidatesAfterReprojection(t *testing.T) {
	// Arrange: a raster already indexed in the default WGS84 CRS.
	c := mustConnector(t)
	ctx := context.Background()
	util.AssertNil(t, c.AddRasters(ctx, []table.NamedRow{
		{ID: "raster-1", Row: table.Row{Geometry: square(0, 0, 10, 10)}},
	}, 0, nil))

	// Act: reproject the connector into Web Mercator, then insert a feature
	// whose geometry was carried through the identical transform, so it
	// overlaps the reprojected raster only if the index bounds were rebuilt
	// rather than left pointing at the old WGS84 footprint.
	util.AssertNil(t, c.SetCRSEPSGCode(geom.EPSG3857))
	mercatorFeature, err := geom.Reproject(square(2, 2, 8, 8), geom.EPSG4326, geom.EPSG3857)
	util.AssertNil(t, err)
	err = c.AddVectors(ctx, []table.NamedRow{
		{ID: "feature-1", Row: table.Row{Geometry: mercatorFeature}},
	}, geom.EPSG3857, nil)

	// Assert
	util.AssertNil(t, err)
	util.AssertTrue(t, c.DoesRasterContain("raster-1", "feature-1"))
}
