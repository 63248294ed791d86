package persist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"geographer/graph"
	"geographer/table"
	"geographer/util"
)

func TestSaveLoadTable_RoundTrips(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	path := filepath.Join(dir, "vectors.geojson")
	tbl := table.New()
	util.AssertNil(t, tbl.InsertRows([]table.NamedRow{
		{ID: "f1", Row: table.Row{Geometry: orb.Point{1, 2}, Attrs: map[string]any{"type": "building"}}},
	}))

	// Act
	err := SaveTable(path, tbl)
	util.AssertNil(t, err)
	loaded, err := LoadTable(path)

	// Assert
	util.AssertNil(t, err)
	row, ok := loaded.GetRow("f1")
	util.AssertTrue(t, ok)
	util.AssertEqual(t, "building", row.Attrs["type"])
}

func TestSaveTable_EmptyTableUsesSentinel(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	path := filepath.Join(dir, "rasters.geojson")
	tbl := table.New()

	// Act
	err := SaveTable(path, tbl)
	util.AssertNil(t, err)
	loaded, err := LoadTable(path)

	// Assert
	util.AssertNil(t, err)
	util.AssertEqual(t, 0, loaded.Len())
}

func TestSaveLoadGraph_RoundTrips(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	path := filepath.Join(dir, "graph.json")
	g := graph.New()
	util.AssertNil(t, g.AddVertex("r1", graph.VertexRaster))
	util.AssertNil(t, g.AddVertex("f1", graph.VertexFeature))
	util.AssertNil(t, g.AddEdge("r1", "f1", graph.LabelContains, nil))

	// Act
	err := SaveGraph(path, g)
	util.AssertNil(t, err)
	loaded, err := LoadGraph(path)

	// Assert
	util.AssertNil(t, err)
	label, _, ok := loaded.Edge("r1", "f1")
	util.AssertTrue(t, ok)
	util.AssertEqual(t, graph.LabelContains, label)
}

func TestWriteAtomic_NoTmpFileLeftBehind(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	path := filepath.Join(dir, "attrs.json")

	// Act
	err := SaveAttrs(path, Attrs{CRSEPSGCode: 4326, RasterCountColumn: "raster_count"})

	// Assert
	util.AssertNil(t, err)
	_, statErr := os.Stat(path + ".tmp")
	util.AssertTrue(t, os.IsNotExist(statErr))
}

func TestExists_DetectsPartialDirectory(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	util.AssertNil(t, os.MkdirAll(ConnectorDir(dir), 0o755))
	util.AssertNil(t, os.WriteFile(VectorsPath(dir), []byte("{}"), 0o644))

	// Act
	vectors, rasters, g := Exists(dir)

	// Assert
	util.AssertTrue(t, vectors)
	util.AssertFalse(t, rasters)
	util.AssertFalse(t, g)
}
