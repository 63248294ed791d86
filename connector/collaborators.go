package connector

import (
	"context"

	"geographer/table"
)

// RasterDownloader is the capability interface for collaborators that
// fetch new raster rows (and their pixel files, written wherever the
// collaborator sees fit) for a feature that does not yet have enough
// raster coverage. The connector never interprets the returned rows beyond
// integrating them through AddRasters.
type RasterDownloader interface {
	Download(ctx context.Context, featureID string, targetCount int) ([]table.NamedRow, error)
}

// LabelMaker is the capability interface for collaborators that turn
// feature/raster overlaps into label artifacts on disk. The connector
// orders calls so that graph invariants hold before the collaborator reads
// the tables; it does not know or care what the label files contain.
type LabelMaker interface {
	MakeLabels(ctx context.Context, c *Connector, rasterIDs []string) error
	DeleteLabels(ctx context.Context, c *Connector, rasterIDs []string) error
}
