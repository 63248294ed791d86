package connector

import (
	"context"

	"github.com/hauke96/sigolo/v2"

	"geographer/cerrors"
	"geographer/table"
)

// BatchResult records the outcome of one feature's download attempt within
// a DownloadRastersFor batch.
type BatchResult struct {
	FeatureID string
	RasterIDs []string
	Err       error
}

// BatchReport is returned by DownloadRastersFor.
type BatchReport struct {
	Results []BatchResult
}

// Succeeded returns the feature ids whose download attempt succeeded.
func (r BatchReport) Succeeded() []string {
	var out []string
	for _, res := range r.Results {
		if res.Err == nil {
			out = append(out, res.FeatureID)
		}
	}
	return out
}

// Failed returns the per-feature collaborator errors.
func (r BatchReport) Failed() []BatchResult {
	var out []BatchResult
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// DownloadRastersFor asks downloader for new rasters covering each feature
// in featureIDs, integrating each feature's successful result into the
// tables and graph as soon as it arrives. Unlike the other mutating
// methods, this is deliberately not all-or-nothing across the batch: a
// later feature's downloader failure does not roll back earlier features
// that were already integrated, since discarding hours of successful
// downloads because one later item failed would be worse than a partial
// batch. Each individual feature's integration is still atomic.
func (c *Connector) DownloadRastersFor(ctx context.Context, downloader RasterDownloader, featureIDs []string, targetCount int) (BatchReport, error) {
	var report BatchReport

	for _, featureID := range featureIDs {
		if err := ctx.Err(); err != nil {
			report.Results = append(report.Results, BatchResult{FeatureID: featureID, Err: err})
			continue
		}
		if !c.vectors.HasRow(featureID) {
			report.Results = append(report.Results, BatchResult{
				FeatureID: featureID,
				Err:       cerrors.New(cerrors.KindIdentifier, featureID, "vector not present in connector"),
			})
			continue
		}

		rows, err := downloader.Download(ctx, featureID, targetCount)
		if err != nil {
			sigolo.Errorf("download for feature %s failed: %s", featureID, err)
			c.recordDownloadFailure(featureID, err)
			report.Results = append(report.Results, BatchResult{
				FeatureID: featureID,
				Err:       cerrors.Wrap(cerrors.KindCollaborator, featureID, err, "downloader failed"),
			})
			continue
		}
		if len(rows) == 0 {
			report.Results = append(report.Results, BatchResult{FeatureID: featureID})
			continue
		}

		if err := c.AddRasters(ctx, rows, 0, nil); err != nil {
			report.Results = append(report.Results, BatchResult{
				FeatureID: featureID,
				Err:       cerrors.Wrap(cerrors.KindCollaborator, featureID, err, "integrating downloaded rasters"),
			})
			continue
		}

		ids := make([]string, 0, len(rows))
		for _, nr := range rows {
			ids = append(ids, nr.ID)
		}
		report.Results = append(report.Results, BatchResult{FeatureID: featureID, RasterIDs: ids})
	}

	return report, nil
}

// recordDownloadFailure appends or updates a no-geometry row in the
// raster_failures table, per the open-question decision that failed
// download attempts live alongside the rasters table rather than in it:
// a row without a geometry cannot enter the spatial index.
func (c *Connector) recordDownloadFailure(featureID string, cause error) {
	if c.failures.HasRow(featureID) {
		_ = c.failures.SetCell(featureID, "error", cause.Error())
		return
	}
	_ = c.failures.InsertRows([]table.NamedRow{
		{ID: featureID, Row: table.Row{Attrs: map[string]any{"error": cause.Error()}}},
	})
}
