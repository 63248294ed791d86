package geom

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
	"geographer/cerrors"
)

// Reproject converts g from fromEPSG to toEPSG. Only the identity transform
// and the WGS84/Web Mercator pair are supported: orb carries spherical
// Mercator helpers (orb/project) but no general PROJ-style transform, and no
// such library exists anywhere among the example dependencies, so any other
// EPSG pair is a geometry error naming the unsupported code rather than a
// silently wrong transform.
func Reproject(g orb.Geometry, fromEPSG, toEPSG int) (orb.Geometry, error) {
	if fromEPSG == toEPSG {
		return g, nil
	}
	switch {
	case fromEPSG == EPSG4326 && toEPSG == EPSG3857:
		return project.Geometry(g, project.WGS84.ToMercator), nil
	case fromEPSG == EPSG3857 && toEPSG == EPSG4326:
		return project.Geometry(g, project.Mercator.ToWGS84), nil
	default:
		return nil, cerrors.New(cerrors.KindGeometry, "", "unsupported CRS reprojection EPSG:%d -> EPSG:%d", fromEPSG, toEPSG)
	}
}
