package connector

import (
	"geographer/geom"
	"geographer/spatial"
)

// SetCRSEPSGCode reprojects every stored geometry into newEPSGCode and
// makes it the canonical CRS for future insertions. Reprojection is
// all-or-nothing: if any geometry cannot be reprojected, no state changes.
// The spatial index is keyed by bounding boxes in the connector's CRS, so it
// is rebuilt from the reprojected geometries alongside the tables rather
// than left pointing at stale pre-reprojection bounds.
func (c *Connector) SetCRSEPSGCode(newEPSGCode int) error {
	if newEPSGCode == c.crsEPSGCode {
		return nil
	}

	workVectors := c.vectors.Clone()
	workRasters := c.rasters.Clone()

	for _, nr := range workVectors.IterRows() {
		reprojected, err := geom.Reproject(nr.Row.Geometry, c.crsEPSGCode, newEPSGCode)
		if err != nil {
			return err
		}
		if err := workVectors.SetGeometry(nr.ID, reprojected); err != nil {
			return err
		}
	}
	for _, nr := range workRasters.IterRows() {
		reprojected, err := geom.Reproject(nr.Row.Geometry, c.crsEPSGCode, newEPSGCode)
		if err != nil {
			return err
		}
		if err := workRasters.SetGeometry(nr.ID, reprojected); err != nil {
			return err
		}
	}

	idx := spatial.New()
	var entries []spatial.Entry
	for _, nr := range workVectors.IterRows() {
		entries = append(entries, spatial.Entry{ID: nr.ID, Bound: nr.Row.Geometry.Bound()})
	}
	for _, nr := range workRasters.IterRows() {
		entries = append(entries, spatial.Entry{ID: nr.ID, Bound: nr.Row.Geometry.Bound()})
	}
	idx.BulkLoad(entries)

	c.vectors = workVectors
	c.rasters = workRasters
	c.idx = idx
	c.crsEPSGCode = newEPSGCode
	return nil
}
