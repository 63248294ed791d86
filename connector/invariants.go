package connector

import (
	"geographer/cerrors"
	"geographer/geom"
	"geographer/graph"
)

// CheckInvariants re-derives every containment/intersection edge from the
// tables and compares it against the live graph, and re-derives every
// raster_count from the live graph's contains edges. It is run on every
// Save and can be called on demand after manual tampering with the
// underlying state to catch bugs early.
func (c *Connector) CheckInvariants() error {
	for _, nr := range c.vectors.IterRows() {
		if nr.Row.Geometry == nil {
			return cerrors.New(cerrors.KindInvariant, nr.ID, "vector has no geometry")
		}
		if !c.g.HasVertex(nr.ID, graph.VertexFeature) {
			return cerrors.New(cerrors.KindInvariant, nr.ID, "vector missing from graph")
		}
	}
	for _, nr := range c.rasters.IterRows() {
		if nr.Row.Geometry == nil {
			return cerrors.New(cerrors.KindInvariant, nr.ID, "raster has no geometry")
		}
		if !c.g.HasVertex(nr.ID, graph.VertexRaster) {
			return cerrors.New(cerrors.KindInvariant, nr.ID, "raster missing from graph")
		}
	}

	counts := make(map[string]int)
	for _, rasterRow := range c.rasters.IterRows() {
		for _, featureID := range c.g.Neighbors(rasterRow.ID, graph.VertexRaster, labelPtr(graph.LabelContains)) {
			if !c.vectors.HasRow(featureID) {
				return cerrors.New(cerrors.KindInvariant, featureID, "edge references unknown vector")
			}
			counts[featureID]++
		}
		for _, featureID := range c.g.Neighbors(rasterRow.ID, graph.VertexRaster, labelPtr(graph.LabelIntersects)) {
			if !c.vectors.HasRow(featureID) {
				return cerrors.New(cerrors.KindInvariant, featureID, "edge references unknown vector")
			}
		}

		for _, featureRow := range c.vectors.IterRows() {
			label, _, hasEdge := c.g.Edge(rasterRow.ID, featureRow.ID)
			wantsEdge := geom.Intersects(rasterRow.Row.Geometry, featureRow.Row.Geometry)
			if !wantsEdge && hasEdge {
				return cerrors.New(cerrors.KindInvariant, featureRow.ID, "edge exists for non-overlapping pair (%s)", rasterRow.ID)
			}
			if wantsEdge && !hasEdge {
				return cerrors.New(cerrors.KindInvariant, featureRow.ID, "missing edge for overlapping pair (%s)", rasterRow.ID)
			}
			if wantsEdge {
				wantsContains := geom.Contains(rasterRow.Row.Geometry, featureRow.Row.Geometry)
				if wantsContains && label != graph.LabelContains {
					return cerrors.New(cerrors.KindInvariant, featureRow.ID, "edge should be contains (%s)", rasterRow.ID)
				}
				if !wantsContains && label != graph.LabelIntersects {
					return cerrors.New(cerrors.KindInvariant, featureRow.ID, "edge should be intersects (%s)", rasterRow.ID)
				}
			}
		}
	}

	for _, featureRow := range c.vectors.IterRows() {
		want := counts[featureRow.ID]
		got, _ := featureRow.Row.Attrs[c.rasterCountCol].(int)
		if got != want {
			return cerrors.New(cerrors.KindInvariant, featureRow.ID, "%s is %d, want %d", c.rasterCountCol, got, want)
		}
	}

	if c.idx.Len() != c.vectors.Len()+c.rasters.Len() {
		return cerrors.New(cerrors.KindInvariant, "", "spatial index has %d entries, want %d", c.idx.Len(), c.vectors.Len()+c.rasters.Len())
	}

	return nil
}
