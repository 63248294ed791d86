// Package connector implements the orchestrator that binds the vectors and
// rasters tables to the bipartite containment/intersection graph, keeping
// the two in lockstep under incremental mutation. It corresponds to the
// source system's Connector class and its add/drop mixins, collapsed here
// into one type since Go has no mixin mechanism.
package connector

import (
	"os"

	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"

	"geographer/cerrors"
	"geographer/geom"
	"geographer/graph"
	"geographer/persist"
	"geographer/spatial"
	"geographer/table"
)

const (
	DefaultCRSEPSGCode    = geom.EPSG4326
	DefaultRasterCountCol = "raster_count"
	classColumn           = "type"
)

// Options configure a freshly created Connector.
type Options struct {
	DataDir            string
	CRSEPSGCode        int
	RasterCountColName string
	TaskVectorClasses  []string
	BackgroundClass    string
}

func (o Options) withDefaults() Options {
	if o.CRSEPSGCode == 0 {
		o.CRSEPSGCode = DefaultCRSEPSGCode
	}
	if o.RasterCountColName == "" {
		o.RasterCountColName = DefaultRasterCountCol
	}
	return o
}

// Connector owns the vectors table, the rasters table, the bipartite graph
// between them and the spatial index used to narrow candidate overlaps. It
// is not safe for concurrent use by multiple goroutines without external
// synchronization; see the single-writer model this package assumes.
type Connector struct {
	dataDir            string
	crsEPSGCode        int
	rasterCountCol     string
	taskVectorClasses  []string
	backgroundClass    string

	vectors  *table.Table
	rasters  *table.Table
	failures *table.Table
	g        *graph.Graph
	idx      *spatial.Index
}

// FromScratch creates a new, empty Connector.
func FromScratch(opts Options) (*Connector, error) {
	opts = opts.withDefaults()
	if len(opts.TaskVectorClasses) > 0 {
		seen := make(map[string]bool, len(opts.TaskVectorClasses))
		for _, c := range opts.TaskVectorClasses {
			if seen[c] {
				return nil, cerrors.New(cerrors.KindSchema, c, "duplicate task vector class")
			}
			seen[c] = true
		}
	}
	return &Connector{
		dataDir:           opts.DataDir,
		crsEPSGCode:       opts.CRSEPSGCode,
		rasterCountCol:    opts.RasterCountColName,
		taskVectorClasses: append([]string(nil), opts.TaskVectorClasses...),
		backgroundClass:   opts.BackgroundClass,
		vectors:           table.New(),
		rasters:           table.New(),
		failures:          table.New(),
		g:                 graph.New(),
		idx:               spatial.New(),
	}, nil
}

// FromDataDir loads a Connector from an on-disk data directory. An empty
// directory is a valid empty connector; a directory where only some of the
// three connector files exist is a persistence inconsistency.
func FromDataDir(dataDir string) (*Connector, error) {
	vectorsPresent, rastersPresent, graphPresent := persist.Exists(dataDir)
	allPresent := vectorsPresent && rastersPresent && graphPresent
	nonePresent := !vectorsPresent && !rastersPresent && !graphPresent

	if nonePresent {
		sigolo.Debugf("no connector files found in %s, starting empty", dataDir)
		c, err := FromScratch(Options{DataDir: dataDir})
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	if !allPresent {
		return nil, cerrors.New(cerrors.KindInvariant, dataDir,
			"inconsistent connector directory: vectors=%v rasters=%v graph=%v", vectorsPresent, rastersPresent, graphPresent)
	}

	attrs, err := persist.LoadAttrs(persist.AttrsPath(dataDir))
	if err != nil {
		return nil, err
	}
	vectors, err := persist.LoadTable(persist.VectorsPath(dataDir))
	if err != nil {
		return nil, err
	}
	rasters, err := persist.LoadTable(persist.RastersPath(dataDir))
	if err != nil {
		return nil, err
	}
	g, err := persist.LoadGraph(persist.GraphPath(dataDir))
	if err != nil {
		return nil, err
	}

	idx := spatial.New()
	var entries []spatial.Entry
	for _, nr := range vectors.IterRows() {
		// JSON decodes the stored raster count as float64; the connector
		// keeps it as an int.
		if n, ok := nr.Row.Attrs[attrs.RasterCountColumn].(float64); ok {
			if err := vectors.SetCell(nr.ID, attrs.RasterCountColumn, int(n)); err != nil {
				return nil, err
			}
		}
		entries = append(entries, spatial.Entry{ID: nr.ID, Bound: nr.Row.Geometry.Bound()})
	}
	for _, nr := range rasters.IterRows() {
		entries = append(entries, spatial.Entry{ID: nr.ID, Bound: nr.Row.Geometry.Bound()})
	}
	idx.BulkLoad(entries)

	c := &Connector{
		dataDir:           dataDir,
		crsEPSGCode:       attrs.CRSEPSGCode,
		rasterCountCol:    attrs.RasterCountColumn,
		taskVectorClasses: attrs.TaskVectorClasses,
		backgroundClass:   attrs.BackgroundClass,
		vectors:           vectors,
		rasters:           rasters,
		failures:          table.New(),
		g:                 g,
		idx:               idx,
	}
	if err := c.CheckInvariants(); err != nil {
		return nil, err
	}
	return c, nil
}

// Save writes the connector's tables, graph and attributes to its data
// directory, after re-checking invariants. The vectors, rasters and graph
// files are each written to a sibling .tmp file first and renamed over
// their real names only after all three have been written.
func (c *Connector) Save() error {
	if err := c.CheckInvariants(); err != nil {
		return err
	}
	vectorsPath, rastersPath, graphPath := persist.VectorsPath(c.dataDir), persist.RastersPath(c.dataDir), persist.GraphPath(c.dataDir)
	if err := persist.SaveTable(vectorsPath+".tmp", c.vectors); err != nil {
		return err
	}
	if err := persist.SaveTable(rastersPath+".tmp", c.rasters); err != nil {
		return err
	}
	if err := persist.SaveGraph(graphPath+".tmp", c.g); err != nil {
		return err
	}
	for _, path := range []string{vectorsPath, rastersPath, graphPath} {
		if err := os.Rename(path+".tmp", path); err != nil {
			return cerrors.Wrap(cerrors.KindPersistence, "", err, "renaming %s.tmp to %s", path, path)
		}
	}
	return persist.SaveAttrs(persist.AttrsPath(c.dataDir), persist.Attrs{
		CRSEPSGCode:       c.crsEPSGCode,
		RasterCountColumn: c.rasterCountCol,
		TaskVectorClasses: c.taskVectorClasses,
		BackgroundClass:   c.backgroundClass,
	})
}

// Vectors returns a read-only view of the vectors table.
func (c *Connector) Vectors() table.View { return table.NewView(c.vectors) }

// Rasters returns a read-only view of the rasters table.
func (c *Connector) Rasters() table.View { return table.NewView(c.rasters) }

// RasterFailures returns a read-only view of rasters whose download
// attempt failed; these carry no geometry and never enter the spatial
// index.
func (c *Connector) RasterFailures() table.View { return table.NewView(c.failures) }

// CRSEPSGCode returns the canonical CRS all stored geometries are in.
func (c *Connector) CRSEPSGCode() int { return c.crsEPSGCode }

// RasterCountColName returns the configured name of the derived
// raster-count column.
func (c *Connector) RasterCountColName() string { return c.rasterCountCol }

func (c *Connector) reproject(g orb.Geometry, fromEPSG int) (orb.Geometry, error) {
	return geom.Reproject(g, fromEPSG, c.crsEPSGCode)
}

// overlap pairs a candidate id with the relation found between it and the
// geometry being added, during add-time graph wiring.
type overlap struct {
	id    string
	label graph.Label
}

// classifyOverlaps queries the index for candidates touching bound and
// classifies each definite overlap against geometry using precise
// predicates, deduplicated and in index order. The label is contains when
// the candidate's geometry contains geometry, else intersects.
func classifyOverlaps(idx *spatial.Index, tbl *table.Table, bound orb.Bound, geometry orb.Geometry) []overlap {
	var overlaps []overlap
	for _, candidateID := range idx.Query(bound) {
		row, ok := tbl.GetRow(candidateID)
		if !ok || row.Geometry == nil {
			continue
		}
		if !geom.Intersects(row.Geometry, geometry) {
			continue
		}
		label := graph.LabelIntersects
		if geom.Contains(row.Geometry, geometry) {
			label = graph.LabelContains
		}
		overlaps = append(overlaps, overlap{id: candidateID, label: label})
	}
	return overlaps
}

func (c *Connector) checkRequiredVectorColumns(rows []table.NamedRow) error {
	if len(c.taskVectorClasses) == 0 {
		return nil
	}
	hasCategorical := false
	hasSoftCategorical := false
	for _, nr := range rows {
		if _, ok := nr.Row.Attrs[classColumn]; ok {
			hasCategorical = true
		}
		for _, cls := range c.taskVectorClasses {
			if _, ok := nr.Row.Attrs["prob_of_class_"+cls]; ok {
				hasSoftCategorical = true
			}
		}
	}
	if !hasCategorical && !hasSoftCategorical {
		return cerrors.New(cerrors.KindSchema, "", "vector rows carry neither a %q column nor prob_of_class_* columns", classColumn)
	}
	return nil
}
