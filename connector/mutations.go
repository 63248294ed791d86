package connector

import (
	"context"
	"sort"

	"github.com/hauke96/sigolo/v2"

	"geographer/cerrors"
	"geographer/geom"
	"geographer/graph"
	"geographer/table"
)

// AddVectors inserts new feature rows. Geometries are reprojected from
// fromEPSGCode to the canonical CRS (pass the canonical code, or 0, for
// geometries already in it). The whole batch is rejected as one unit if
// any row is invalid; on success, every overlapping raster gets an edge
// and the new features' raster_count is set accordingly. If labelMaker is
// non-nil, it is asked to recompute labels for every raster that now
// intersects a newly added feature.
func (c *Connector) AddVectors(ctx context.Context, rows []table.NamedRow, fromEPSGCode int, labelMaker LabelMaker) error {
	if len(rows) == 0 {
		return nil
	}
	if fromEPSGCode == 0 {
		fromEPSGCode = c.crsEPSGCode
	}

	for _, nr := range rows {
		if c.vectors.HasRow(nr.ID) || c.rasters.HasRow(nr.ID) {
			return cerrors.New(cerrors.KindIdentifier, nr.ID, "id already present in connector")
		}
	}
	if err := c.checkRequiredVectorColumns(rows); err != nil {
		return err
	}

	workVectors := c.vectors.Clone()
	workGraph := c.g.Clone()
	workIdx := c.idx.Clone()

	touchedRasters := make(map[string]bool)

	for _, nr := range rows {
		if nr.Row.Geometry == nil {
			return cerrors.New(cerrors.KindGeometry, nr.ID, "feature geometry is nil")
		}
		geometry, err := c.reproject(nr.Row.Geometry, fromEPSGCode)
		if err != nil {
			return err
		}
		if err := geom.IsValid(geometry); err != nil {
			return cerrors.Wrap(cerrors.KindGeometry, nr.ID, err, "invalid geometry")
		}

		row := nr.Row
		row.Geometry = geometry
		if row.Attrs == nil {
			row.Attrs = make(map[string]any)
		}
		row.Attrs[c.rasterCountCol] = 0

		if err := workVectors.InsertRows([]table.NamedRow{{ID: nr.ID, Row: row}}); err != nil {
			return err
		}
		if err := workGraph.AddVertex(nr.ID, graph.VertexFeature); err != nil {
			return err
		}
		if err := workIdx.Insert(nr.ID, geometry.Bound()); err != nil {
			return err
		}

		overlaps := classifyOverlaps(workIdx, c.rasters, geometry.Bound(), geometry)
		count := 0
		for _, ov := range overlaps {
			if err := workGraph.AddEdge(ov.id, nr.ID, ov.label, nil); err != nil {
				return err
			}
			touchedRasters[ov.id] = true
			if ov.label == graph.LabelContains {
				count++
			}
		}
		if count > 0 {
			if err := workVectors.SetCell(nr.ID, c.rasterCountCol, count); err != nil {
				return err
			}
		}
	}

	c.vectors = workVectors
	c.g = workGraph
	c.idx = workIdx

	sigolo.Debugf("added %d vectors, touching %d rasters", len(rows), len(touchedRasters))

	if labelMaker != nil && len(touchedRasters) > 0 {
		if err := labelMaker.MakeLabels(ctx, c, sortedKeysOf(touchedRasters)); err != nil {
			return cerrors.Wrap(cerrors.KindCollaborator, "", err, "recomputing labels after AddVectors")
		}
	}
	return nil
}

// DropVectors removes feature rows and all of their incident edges. If
// labelMaker is non-nil, it is told to delete and then regenerate labels
// for every raster that was intersecting a dropped feature.
func (c *Connector) DropVectors(ctx context.Context, ids []string, labelMaker LabelMaker) error {
	if len(ids) == 0 {
		return nil
	}
	for _, id := range ids {
		if !c.vectors.HasRow(id) {
			return cerrors.New(cerrors.KindIdentifier, id, "vector not present in connector")
		}
	}

	workVectors := c.vectors.Clone()
	workGraph := c.g.Clone()
	workIdx := c.idx.Clone()

	touchedRasters := make(map[string]bool)

	for _, id := range ids {
		for _, rasterID := range workGraph.Neighbors(id, graph.VertexFeature, nil) {
			touchedRasters[rasterID] = true
		}
		if _, err := workGraph.RemoveVertex(id); err != nil {
			return err
		}
		if err := workIdx.Remove(id); err != nil {
			return err
		}
	}
	if err := workVectors.DropRows(ids); err != nil {
		return err
	}

	c.vectors = workVectors
	c.g = workGraph
	c.idx = workIdx

	if labelMaker != nil && len(touchedRasters) > 0 {
		rasterIDs := sortedKeysOf(touchedRasters)
		if err := labelMaker.DeleteLabels(ctx, c, rasterIDs); err != nil {
			return cerrors.Wrap(cerrors.KindCollaborator, "", err, "deleting labels after DropVectors")
		}
		if err := labelMaker.MakeLabels(ctx, c, rasterIDs); err != nil {
			return cerrors.Wrap(cerrors.KindCollaborator, "", err, "regenerating labels after DropVectors")
		}
	}
	return nil
}

// AddRasters inserts new raster rows, wiring edges to every feature whose
// geometry overlaps the new footprint and incrementing those features'
// raster_count where the relation is containment. If labelMaker is
// non-nil, it is asked to make labels for the newly added rasters.
func (c *Connector) AddRasters(ctx context.Context, rows []table.NamedRow, fromEPSGCode int, labelMaker LabelMaker) error {
	if len(rows) == 0 {
		return nil
	}
	if fromEPSGCode == 0 {
		fromEPSGCode = c.crsEPSGCode
	}

	for _, nr := range rows {
		if c.vectors.HasRow(nr.ID) || c.rasters.HasRow(nr.ID) {
			return cerrors.New(cerrors.KindIdentifier, nr.ID, "id already present in connector")
		}
	}

	workRasters := c.rasters.Clone()
	workVectors := c.vectors.Clone()
	workGraph := c.g.Clone()
	workIdx := c.idx.Clone()

	newRasterIDs := make([]string, 0, len(rows))

	for _, nr := range rows {
		if nr.Row.Geometry == nil {
			return cerrors.New(cerrors.KindGeometry, nr.ID, "raster footprint geometry is nil")
		}
		geometry, err := c.reproject(nr.Row.Geometry, fromEPSGCode)
		if err != nil {
			return err
		}
		if err := geom.IsValid(geometry); err != nil {
			return cerrors.Wrap(cerrors.KindGeometry, nr.ID, err, "invalid footprint")
		}

		row := nr.Row
		row.Geometry = geometry

		if err := workRasters.InsertRows([]table.NamedRow{{ID: nr.ID, Row: row}}); err != nil {
			return err
		}
		if err := workGraph.AddVertex(nr.ID, graph.VertexRaster); err != nil {
			return err
		}
		if err := workIdx.Insert(nr.ID, geometry.Bound()); err != nil {
			return err
		}

		overlaps := classifyOverlaps(workIdx, workVectors, geometry.Bound(), geometry)
		for _, ov := range overlaps {
			// ov.label says whether the feature contains the footprint; the
			// edge label is whether the footprint contains the feature.
			featureRow, _ := workVectors.GetRow(ov.id)
			label := graph.LabelIntersects
			if geom.Contains(geometry, featureRow.Geometry) {
				label = graph.LabelContains
			}
			if err := workGraph.AddEdge(nr.ID, ov.id, label, nil); err != nil {
				return err
			}
			if label == graph.LabelContains {
				current, _ := featureRow.Attrs[c.rasterCountCol].(int)
				if err := workVectors.SetCell(ov.id, c.rasterCountCol, current+1); err != nil {
					return err
				}
			}
		}
		newRasterIDs = append(newRasterIDs, nr.ID)
	}

	c.rasters = workRasters
	c.vectors = workVectors
	c.g = workGraph
	c.idx = workIdx

	sigolo.Debugf("added %d rasters", len(rows))

	if labelMaker != nil {
		if err := labelMaker.MakeLabels(ctx, c, newRasterIDs); err != nil {
			return cerrors.Wrap(cerrors.KindCollaborator, "", err, "making labels after AddRasters")
		}
	}
	return nil
}

// DropRasters removes raster rows, decrementing raster_count on every
// feature that had been contained in a dropped raster, and removes all of
// the raster's incident edges. If labelMaker is non-nil, it is told to
// delete the labels belonging to the dropped rasters first.
func (c *Connector) DropRasters(ctx context.Context, ids []string, labelMaker LabelMaker) error {
	if len(ids) == 0 {
		return nil
	}
	for _, id := range ids {
		if !c.rasters.HasRow(id) {
			return cerrors.New(cerrors.KindIdentifier, id, "raster not present in connector")
		}
	}

	if labelMaker != nil {
		if err := labelMaker.DeleteLabels(ctx, c, ids); err != nil {
			return cerrors.Wrap(cerrors.KindCollaborator, "", err, "deleting labels before DropRasters")
		}
	}

	workRasters := c.rasters.Clone()
	workVectors := c.vectors.Clone()
	workGraph := c.g.Clone()
	workIdx := c.idx.Clone()

	for _, id := range ids {
		for _, featureID := range workGraph.Neighbors(id, graph.VertexRaster, labelPtr(graph.LabelContains)) {
			featureRow, _ := workVectors.GetRow(featureID)
			current, _ := featureRow.Attrs[c.rasterCountCol].(int)
			if current > 0 {
				current--
			}
			if err := workVectors.SetCell(featureID, c.rasterCountCol, current); err != nil {
				return err
			}
		}
		if _, err := workGraph.RemoveVertex(id); err != nil {
			return err
		}
		if err := workIdx.Remove(id); err != nil {
			return err
		}
	}
	if err := workRasters.DropRows(ids); err != nil {
		return err
	}

	c.rasters = workRasters
	c.vectors = workVectors
	c.g = workGraph
	c.idx = workIdx
	return nil
}

func labelPtr(l graph.Label) *graph.Label { return &l }

func sortedKeysOf(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
