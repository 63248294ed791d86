// Package persist serializes a connector's tables and graph to and from a
// data directory, following the atomic tmp+rename write pattern and the
// GeoJSON table format used throughout the example corpus for writing
// georeferenced feature collections (github.com/paulmach/orb/geojson).
package persist

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb/geojson"

	"geographer/cerrors"
	"geographer/graph"
	"geographer/table"
)

const (
	ConnectorDirName = "connector"
	RastersDirName   = "rasters"
	LabelsDirName    = "labels"

	vectorsFileName = "vectors.geojson"
	rastersFileName = "rasters.geojson"
	graphFileName   = "graph.json"
	attrsFileName   = "attrs.json"

	idProperty = "_id"
)

// Attrs is the dataset-wide attribute record stored in attrs.json.
type Attrs struct {
	CRSEPSGCode       int      `json:"crs_epsg_code"`
	RasterCountColumn string   `json:"raster_count_col_name"`
	TaskVectorClasses []string `json:"task_vector_classes,omitempty"`
	BackgroundClass   string   `json:"background_class,omitempty"`
}

// ConnectorDir returns the connector subdirectory of a data directory.
func ConnectorDir(dataDir string) string {
	return filepath.Join(dataDir, ConnectorDirName)
}

// Exists reports which of the three connector files are present, to
// distinguish a fresh empty directory from a partially-written one.
func Exists(dataDir string) (vectors, rasters, graphFile bool) {
	dir := ConnectorDir(dataDir)
	_, vErr := os.Stat(filepath.Join(dir, vectorsFileName))
	_, rErr := os.Stat(filepath.Join(dir, rastersFileName))
	_, gErr := os.Stat(filepath.Join(dir, graphFileName))
	return vErr == nil, rErr == nil, gErr == nil
}

// SaveTable writes t as a GeoJSON FeatureCollection, atomically.
func SaveTable(path string, t *table.Table) error {
	fc := geojson.NewFeatureCollection()
	for _, nr := range t.IterRows() {
		f := geojson.NewFeature(nr.Row.Geometry)
		f.ID = nr.ID
		f.Properties[idProperty] = nr.ID
		for _, col := range sortedKeys(nr.Row.Attrs) {
			f.Properties[col] = nr.Row.Attrs[col]
		}
		fc.Append(f)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return cerrors.Wrap(cerrors.KindPersistence, "", err, "encoding %s", path)
	}
	if len(fc.Features) == 0 {
		data = []byte(`{"type":"FeatureCollection","features":[],"_empty":true}`)
	}
	return writeAtomic(path, data)
}

// LoadTable reads a GeoJSON FeatureCollection into a fresh table.
func LoadTable(path string) (*table.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cerrors.Wrap(cerrors.KindPersistence, "", err, "reading %s", path)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, cerrors.Wrap(cerrors.KindPersistence, "", err, "decoding %s", path)
	}

	t := table.New()
	rows := make([]table.NamedRow, 0, len(fc.Features))
	for _, f := range fc.Features {
		id, _ := f.Properties[idProperty].(string)
		if id == "" {
			if s, ok := f.ID.(string); ok {
				id = s
			}
		}
		if id == "" {
			return nil, cerrors.New(cerrors.KindPersistence, "", "feature in %s has no %s property", path, idProperty)
		}
		attrs := make(map[string]any, len(f.Properties))
		for k, v := range f.Properties {
			if k == idProperty {
				continue
			}
			attrs[k] = v
		}
		rows = append(rows, table.NamedRow{ID: id, Row: table.Row{Geometry: f.Geometry, Attrs: attrs}})
	}
	if err := t.InsertRows(rows); err != nil {
		return nil, err
	}
	return t, nil
}

// SaveGraph writes g to path, atomically.
func SaveGraph(path string, g *graph.Graph) error {
	data, err := g.MarshalJSON()
	if err != nil {
		return cerrors.Wrap(cerrors.KindPersistence, "", err, "encoding %s", path)
	}
	return writeAtomic(path, data)
}

// LoadGraph reads a graph.json file into a fresh graph.
func LoadGraph(path string) (*graph.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cerrors.Wrap(cerrors.KindPersistence, "", err, "reading %s", path)
	}
	g := graph.New()
	if err := g.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return g, nil
}

// SaveAttrs writes the dataset-wide attributes file, atomically.
func SaveAttrs(path string, a Attrs) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return cerrors.Wrap(cerrors.KindPersistence, "", err, "encoding %s", path)
	}
	return writeAtomic(path, data)
}

// LoadAttrs reads the dataset-wide attributes file.
func LoadAttrs(path string) (Attrs, error) {
	var a Attrs
	data, err := os.ReadFile(path)
	if err != nil {
		return a, cerrors.Wrap(cerrors.KindPersistence, "", err, "reading %s", path)
	}
	if err := json.Unmarshal(data, &a); err != nil {
		return a, cerrors.Wrap(cerrors.KindPersistence, "", err, "decoding %s", path)
	}
	return a, nil
}

// VectorsPath, RastersPath, GraphPath and AttrsPath return the well-known
// file paths within a data directory's connector subdirectory.
func VectorsPath(dataDir string) string { return filepath.Join(ConnectorDir(dataDir), vectorsFileName) }
func RastersPath(dataDir string) string { return filepath.Join(ConnectorDir(dataDir), rastersFileName) }
func GraphPath(dataDir string) string   { return filepath.Join(ConnectorDir(dataDir), graphFileName) }
func AttrsPath(dataDir string) string   { return filepath.Join(ConnectorDir(dataDir), attrsFileName) }

// writeAtomic writes data to a sibling .tmp file and renames it over path,
// so a crash mid-write never leaves a half-written file visible under its
// real name.
func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return cerrors.Wrap(cerrors.KindPersistence, "", err, "creating directory for %s", path)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return cerrors.Wrap(cerrors.KindPersistence, "", err, "writing %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		return cerrors.Wrap(cerrors.KindPersistence, "", err, "renaming %s to %s", tmp, path)
	}
	sigolo.Debugf("wrote %s", path)
	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
