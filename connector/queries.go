package connector

import "geographer/graph"

// RastersContaining returns the ids of rasters whose footprint contains
// featureID's geometry.
func (c *Connector) RastersContaining(featureID string) []string {
	return c.g.Neighbors(featureID, graph.VertexFeature, labelPtr(graph.LabelContains))
}

// RastersIntersecting returns the ids of every raster overlapping
// featureID's geometry, containment included.
func (c *Connector) RastersIntersecting(featureID string) []string {
	return append(c.g.Neighbors(featureID, graph.VertexFeature, labelPtr(graph.LabelContains)),
		c.g.Neighbors(featureID, graph.VertexFeature, labelPtr(graph.LabelIntersects))...)
}

// VectorsContainedIn returns the ids of features contained in rasterID's
// footprint.
func (c *Connector) VectorsContainedIn(rasterID string) []string {
	return c.g.Neighbors(rasterID, graph.VertexRaster, labelPtr(graph.LabelContains))
}

// VectorsIntersecting returns the ids of every feature overlapping
// rasterID's footprint, containment included.
func (c *Connector) VectorsIntersecting(rasterID string) []string {
	return append(c.g.Neighbors(rasterID, graph.VertexRaster, labelPtr(graph.LabelContains)),
		c.g.Neighbors(rasterID, graph.VertexRaster, labelPtr(graph.LabelIntersects))...)
}

// HaveRasterFor reports whether featureID has at least one containing
// raster.
func (c *Connector) HaveRasterFor(featureID string) bool {
	row, ok := c.vectors.GetRow(featureID)
	if !ok {
		return false
	}
	count, _ := row.Attrs[c.rasterCountCol].(int)
	return count > 0
}

// DoesRasterContain reports whether rasterID's footprint contains
// featureID's geometry.
func (c *Connector) DoesRasterContain(rasterID, featureID string) bool {
	label, _, ok := c.g.Edge(rasterID, featureID)
	return ok && label == graph.LabelContains
}

// IsContainedIn is the feature-first alias of DoesRasterContain.
func (c *Connector) IsContainedIn(featureID, rasterID string) bool {
	return c.DoesRasterContain(rasterID, featureID)
}

// DoesRasterIntersect reports whether rasterID's footprint overlaps
// featureID's geometry at all, containment included.
func (c *Connector) DoesRasterIntersect(rasterID, featureID string) bool {
	_, _, ok := c.g.Edge(rasterID, featureID)
	return ok
}

// DoesVectorIntersect is the feature-first alias of DoesRasterIntersect.
func (c *Connector) DoesVectorIntersect(featureID, rasterID string) bool {
	return c.DoesRasterIntersect(rasterID, featureID)
}

// BandInfo carries whatever band metadata a downloader recorded for a
// raster; the connector never opens the raster file itself.
type BandInfo struct {
	Count int
	Dtype string
}

// RasterBands returns the band metadata recorded in the rasters table's
// free-form "bands" column, if any.
func (c *Connector) RasterBands(rasterID string) (BandInfo, bool) {
	row, ok := c.rasters.GetRow(rasterID)
	if !ok {
		return BandInfo{}, false
	}
	raw, ok := row.Attrs["bands"].(map[string]any)
	if !ok {
		return BandInfo{}, false
	}
	info := BandInfo{}
	if v, ok := raw["count"].(int); ok {
		info.Count = v
	}
	if v, ok := raw["dtype"].(string); ok {
		info.Dtype = v
	}
	return info, true
}
