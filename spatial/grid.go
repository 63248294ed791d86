// Package spatial provides a uniform-grid bounding-box index. The example
// corpus carries no R-tree or quadtree package, so this generalizes the grid
// bucketing idea used for the teacher's OSM cell index: instead of bucketing
// fixed-size OSM cells keyed by coordinate, it buckets arbitrary bounding
// boxes keyed by caller-supplied string id, which is what the connector
// needs for incremental insert/remove of feature and raster footprints.
package spatial

import (
	"github.com/paulmach/orb"
	"geographer/cerrors"
)

// defaultCellSize is chosen so a handful of hundred-meter-scale footprints
// in a degree-denominated CRS land in a handful of cells, not one.
const defaultCellSize = 0.01

type cellIndex [2]int

func cellFor(x, y, size float64) cellIndex {
	return cellIndex{int(floorDiv(x, size)), int(floorDiv(y, size))}
}

func floorDiv(a, b float64) float64 {
	q := a / b
	if q < 0 {
		return q - 1
	}
	return q
}

// Entry is a bulk-load record.
type Entry struct {
	ID    string
	Bound orb.Bound
}

// Index is a bulk-loadable, incrementally updatable grid index over
// bounding boxes. It is not authoritative and not persisted; the connector
// rebuilds it from the tabular geometries on load.
type Index struct {
	cellSize float64
	bounds   map[string]orb.Bound
	cells    map[cellIndex][]string
	order    []string
}

// New creates an empty index with the default cell size.
func New() *Index {
	return &Index{
		cellSize: defaultCellSize,
		bounds:   make(map[string]orb.Bound),
		cells:    make(map[cellIndex][]string),
	}
}

func (idx *Index) cellsFor(b orb.Bound) []cellIndex {
	min := cellFor(b.Min[0], b.Min[1], idx.cellSize)
	max := cellFor(b.Max[0], b.Max[1], idx.cellSize)
	var out []cellIndex
	for x := min[0]; x <= max[0]; x++ {
		for y := min[1]; y <= max[1]; y++ {
			out = append(out, cellIndex{x, y})
		}
	}
	return out
}

// Insert registers id with the given bound. Duplicate ids are rejected.
func (idx *Index) Insert(id string, bound orb.Bound) error {
	if _, ok := idx.bounds[id]; ok {
		return cerrors.New(cerrors.KindIdentifier, id, "already present in spatial index")
	}
	idx.bounds[id] = bound
	idx.order = append(idx.order, id)
	for _, c := range idx.cellsFor(bound) {
		idx.cells[c] = append(idx.cells[c], id)
	}
	return nil
}

// Remove deletes id from the index. Missing ids are a not-found error.
func (idx *Index) Remove(id string) error {
	bound, ok := idx.bounds[id]
	if !ok {
		return cerrors.New(cerrors.KindIdentifier, id, "not present in spatial index")
	}
	delete(idx.bounds, id)
	for i, existing := range idx.order {
		if existing == id {
			idx.order = append(idx.order[:i], idx.order[i+1:]...)
			break
		}
	}
	for _, c := range idx.cellsFor(bound) {
		bucket := idx.cells[c]
		for i, existing := range bucket {
			if existing == id {
				idx.cells[c] = append(bucket[:i], bucket[i+1:]...)
				break
			}
		}
		if len(idx.cells[c]) == 0 {
			delete(idx.cells, c)
		}
	}
	return nil
}

// Query returns, in insertion order, a deduplicated superset of the ids
// whose bound overlaps b. Callers must apply precise geometric predicates
// to the candidates before trusting them.
func (idx *Index) Query(b orb.Bound) []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range idx.cellsFor(b) {
		for _, id := range idx.cells[c] {
			if seen[id] {
				continue
			}
			if !idx.bounds[id].Intersects(b) {
				continue
			}
			seen[id] = true
		}
	}
	// re-walk in insertion order so result ordering is deterministic
	// regardless of map/cell iteration order above.
	for _, id := range idx.order {
		if seen[id] {
			out = append(out, id)
		}
	}
	return out
}

// BulkLoad replaces the index contents with entries, used at connector load
// time to avoid the overhead of N sequential Insert calls.
func (idx *Index) BulkLoad(entries []Entry) {
	idx.bounds = make(map[string]orb.Bound, len(entries))
	idx.cells = make(map[cellIndex][]string)
	idx.order = make([]string, 0, len(entries))
	for _, e := range entries {
		idx.bounds[e.ID] = e.Bound
		idx.order = append(idx.order, e.ID)
		for _, c := range idx.cellsFor(e.Bound) {
			idx.cells[c] = append(idx.cells[c], e.ID)
		}
	}
}

// Len returns the number of indexed ids.
func (idx *Index) Len() int {
	return len(idx.order)
}

// Has reports whether id is indexed.
func (idx *Index) Has(id string) bool {
	_, ok := idx.bounds[id]
	return ok
}

// Clone returns a deep copy, used by the connector to build up a mutation
// on a working copy before committing it to the live state.
func (idx *Index) Clone() *Index {
	clone := &Index{
		cellSize: idx.cellSize,
		bounds:   make(map[string]orb.Bound, len(idx.bounds)),
		cells:    make(map[cellIndex][]string, len(idx.cells)),
		order:    append([]string(nil), idx.order...),
	}
	for id, b := range idx.bounds {
		clone.bounds[id] = b
	}
	for c, ids := range idx.cells {
		clone.cells[c] = append([]string(nil), ids...)
	}
	return clone
}
