package connector

import (
	"context"

	"geographer/cerrors"
	"geographer/table"
)

// Merge folds other's rows into c, replaying them through AddVectors and
// AddRasters so the merge goes through the same invariant-preserving path
// as any other mutation rather than splicing internal state directly. It
// requires disjoint id namespaces and agreement on the canonical CRS.
func (c *Connector) Merge(ctx context.Context, other *Connector) error {
	if c.crsEPSGCode != other.crsEPSGCode {
		return cerrors.New(cerrors.KindGeometry, "", "cannot merge connectors with different canonical CRS: %d vs %d", c.crsEPSGCode, other.crsEPSGCode)
	}

	for _, nr := range other.vectors.IterRows() {
		if c.vectors.HasRow(nr.ID) || c.rasters.HasRow(nr.ID) {
			return cerrors.New(cerrors.KindIdentifier, nr.ID, "id collision while merging vectors")
		}
	}
	for _, nr := range other.rasters.IterRows() {
		if c.vectors.HasRow(nr.ID) || c.rasters.HasRow(nr.ID) {
			return cerrors.New(cerrors.KindIdentifier, nr.ID, "id collision while merging rasters")
		}
	}

	vectorRows := make([]table.NamedRow, 0, other.vectors.Len())
	for _, nr := range other.vectors.IterRows() {
		vectorRows = append(vectorRows, table.NamedRow{ID: nr.ID, Row: nr.Row})
	}
	if err := c.AddVectors(ctx, vectorRows, c.crsEPSGCode, nil); err != nil {
		return err
	}

	rasterRows := make([]table.NamedRow, 0, other.rasters.Len())
	for _, nr := range other.rasters.IterRows() {
		rasterRows = append(rasterRows, table.NamedRow{ID: nr.ID, Row: nr.Row})
	}
	return c.AddRasters(ctx, rasterRows, c.crsEPSGCode, nil)
}
