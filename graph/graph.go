// Package graph implements the bipartite relation graph between raster and
// feature vertices. It is a direct port of the bipartite-graph mixin's
// semantics (vertex colors, force-delete-with-edges, single edge per
// endpoint pair) into an explicit Go type instead of a dict-of-dicts mixin.
package graph

import (
	"encoding/json"

	"github.com/hauke96/sigolo/v2"
	"geographer/cerrors"
)

// VertexKind is the color of a vertex in the bipartite graph.
type VertexKind int

const (
	VertexFeature VertexKind = iota
	VertexRaster
)

func (k VertexKind) String() string {
	if k == VertexFeature {
		return "feature"
	}
	return "raster"
}

// Label is the edge relation type.
type Label string

const (
	LabelContains   Label = "contains"
	LabelIntersects Label = "intersects"
)

type edgeKey struct {
	raster  string
	feature string
}

type edge struct {
	label Label
	attrs map[string]any
}

// Graph is the bipartite relation graph. The zero value is not usable; use
// New.
type Graph struct {
	vertexKind  map[string]VertexKind
	vertexOrder []string
	edges       map[edgeKey]*edge
	// neighborsOf[id] lists the opposite-color ids connected to id, in
	// insertion order, mirroring the teacher's insertion-ordered slices.
	neighborsOf map[string][]string
	// extra holds top-level graph.json keys this package does not know
	// about, keyed by field name, so a round-trip through this package
	// does not silently drop fields a newer writer added.
	extra map[string]json.RawMessage
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		vertexKind:  make(map[string]VertexKind),
		edges:       make(map[edgeKey]*edge),
		neighborsOf: make(map[string][]string),
		extra:       make(map[string]json.RawMessage),
	}
}

// AddVertex registers id with the given color. Re-adding an existing id,
// even with the same color, is an identifier error.
func (g *Graph) AddVertex(id string, kind VertexKind) error {
	if _, ok := g.vertexKind[id]; ok {
		return cerrors.New(cerrors.KindIdentifier, id, "vertex already present in graph")
	}
	g.vertexKind[id] = kind
	g.vertexOrder = append(g.vertexOrder, id)
	return nil
}

// Clone returns a deep copy, used by the connector to build up a mutation
// on a working copy before committing it to the live state.
func (g *Graph) Clone() *Graph {
	clone := &Graph{
		vertexKind:  make(map[string]VertexKind, len(g.vertexKind)),
		vertexOrder: append([]string(nil), g.vertexOrder...),
		edges:       make(map[edgeKey]*edge, len(g.edges)),
		neighborsOf: make(map[string][]string, len(g.neighborsOf)),
		extra:       make(map[string]json.RawMessage, len(g.extra)),
	}
	for id, kind := range g.vertexKind {
		clone.vertexKind[id] = kind
	}
	for key, e := range g.edges {
		attrs := make(map[string]any, len(e.attrs))
		for k, v := range e.attrs {
			attrs[k] = v
		}
		clone.edges[key] = &edge{label: e.label, attrs: attrs}
	}
	for id, neighbors := range g.neighborsOf {
		clone.neighborsOf[id] = append([]string(nil), neighbors...)
	}
	for k, v := range g.extra {
		clone.extra[k] = v
	}
	return clone
}

// HasVertex reports whether id is registered with color kind.
func (g *Graph) HasVertex(id string, kind VertexKind) bool {
	k, ok := g.vertexKind[id]
	return ok && k == kind
}

// VertexKindOf returns the color id was registered with.
func (g *Graph) VertexKindOf(id string) (VertexKind, bool) {
	k, ok := g.vertexKind[id]
	return k, ok
}

// Edge describes one raster-feature relation, returned by RemoveVertex.
type Edge struct {
	Raster  string
	Feature string
	Label   Label
	Attrs   map[string]any
}

func (k edgeKey) toEdge(e *edge) Edge {
	return Edge{Raster: k.raster, Feature: k.feature, Label: e.label, Attrs: e.attrs}
}

// RemoveVertex deletes id and every incident edge, returning the removed
// edges so callers can reverse their derived-column bookkeeping (e.g.
// decrementing raster_count). Removing an unknown id is an identifier
// error.
func (g *Graph) RemoveVertex(id string) ([]Edge, error) {
	kind, ok := g.vertexKind[id]
	if !ok {
		return nil, cerrors.New(cerrors.KindIdentifier, id, "vertex not present in graph")
	}

	var removed []Edge
	for _, other := range g.neighborsOf[id] {
		var key edgeKey
		if kind == VertexRaster {
			key = edgeKey{raster: id, feature: other}
		} else {
			key = edgeKey{raster: other, feature: id}
		}
		if e, ok := g.edges[key]; ok {
			removed = append(removed, key.toEdge(e))
			delete(g.edges, key)
			g.removeFromNeighbors(other, id)
		}
	}
	delete(g.neighborsOf, id)
	delete(g.vertexKind, id)
	for i, existing := range g.vertexOrder {
		if existing == id {
			g.vertexOrder = append(g.vertexOrder[:i], g.vertexOrder[i+1:]...)
			break
		}
	}

	sigolo.Debugf("removed vertex %s and %d incident edges", id, len(removed))
	return removed, nil
}

func (g *Graph) removeFromNeighbors(id, neighbor string) {
	list := g.neighborsOf[id]
	for i, existing := range list {
		if existing == neighbor {
			g.neighborsOf[id] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// AddEdge inserts a raster->feature edge. An edge already existing between
// the same endpoints, regardless of label, is an identifier error: callers
// must RemoveEdge first to relabel.
func (g *Graph) AddEdge(rasterID, featureID string, label Label, attrs map[string]any) error {
	if !g.HasVertex(rasterID, VertexRaster) {
		return cerrors.New(cerrors.KindIdentifier, rasterID, "raster vertex not present in graph")
	}
	if !g.HasVertex(featureID, VertexFeature) {
		return cerrors.New(cerrors.KindIdentifier, featureID, "feature vertex not present in graph")
	}
	if label != LabelContains && label != LabelIntersects {
		return cerrors.New(cerrors.KindSchema, "", "invalid edge label %q", label)
	}
	key := edgeKey{raster: rasterID, feature: featureID}
	if _, ok := g.edges[key]; ok {
		return cerrors.New(cerrors.KindIdentifier, rasterID+"/"+featureID, "edge already exists")
	}
	g.edges[key] = &edge{label: label, attrs: attrs}
	g.neighborsOf[rasterID] = append(g.neighborsOf[rasterID], featureID)
	g.neighborsOf[featureID] = append(g.neighborsOf[featureID], rasterID)
	return nil
}

// RemoveEdge deletes the raster->feature edge. If missingOK is false, a
// missing edge is an identifier error; otherwise it is a silent no-op.
func (g *Graph) RemoveEdge(rasterID, featureID string, missingOK bool) error {
	key := edgeKey{raster: rasterID, feature: featureID}
	if _, ok := g.edges[key]; !ok {
		if missingOK {
			return nil
		}
		return cerrors.New(cerrors.KindIdentifier, rasterID+"/"+featureID, "edge not present in graph")
	}
	delete(g.edges, key)
	g.removeFromNeighbors(rasterID, featureID)
	g.removeFromNeighbors(featureID, rasterID)
	return nil
}

// Edge looks up the raster->feature edge.
func (g *Graph) Edge(rasterID, featureID string) (Label, map[string]any, bool) {
	e, ok := g.edges[edgeKey{raster: rasterID, feature: featureID}]
	if !ok {
		return "", nil, false
	}
	return e.label, e.attrs, true
}

// Neighbors returns, in insertion order, the opposite-color ids connected
// to id. If filter is non-nil, only edges with that label are included.
func (g *Graph) Neighbors(id string, color VertexKind, filter *Label) []string {
	var out []string
	for _, other := range g.neighborsOf[id] {
		var key edgeKey
		if color == VertexRaster {
			key = edgeKey{raster: id, feature: other}
		} else {
			key = edgeKey{raster: other, feature: id}
		}
		e, ok := g.edges[key]
		if !ok {
			continue
		}
		if filter != nil && e.label != *filter {
			continue
		}
		out = append(out, other)
	}
	return out
}

// wireVertex and wireEdge are the JSON wire records of §6.
type wireVertex struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
}

type wireEdge struct {
	Raster  string         `json:"raster"`
	Feature string         `json:"feature"`
	Label   Label          `json:"label"`
	Attrs   map[string]any `json:"attrs,omitempty"`
}

type wireGraph struct {
	Vertices []wireVertex `json:"vertices"`
	Edges    []wireEdge   `json:"edges"`
}

// MarshalJSON serializes the graph in insertion order for deterministic
// diffs between saves. Unknown top-level fields captured on the last
// UnmarshalJSON are merged back in, so a graph.json written by a newer
// version of this format round-trips through this package without losing
// fields it doesn't understand.
func (g *Graph) MarshalJSON() ([]byte, error) {
	vertices := make([]wireVertex, 0, len(g.vertexOrder))
	for _, id := range g.vertexOrder {
		vertices = append(vertices, wireVertex{ID: id, Kind: g.vertexKind[id].String()})
	}
	var edges []wireEdge
	for _, rasterID := range g.vertexOrder {
		if g.vertexKind[rasterID] != VertexRaster {
			continue
		}
		for _, featureID := range g.neighborsOf[rasterID] {
			e, ok := g.edges[edgeKey{raster: rasterID, feature: featureID}]
			if !ok {
				continue
			}
			edges = append(edges, wireEdge{Raster: rasterID, Feature: featureID, Label: e.label, Attrs: e.attrs})
		}
	}

	out := make(map[string]json.RawMessage, len(g.extra)+2)
	for k, v := range g.extra {
		out[k] = v
	}
	verticesJSON, err := json.Marshal(vertices)
	if err != nil {
		return nil, err
	}
	edgesJSON, err := json.Marshal(edges)
	if err != nil {
		return nil, err
	}
	out["vertices"] = verticesJSON
	out["edges"] = edgesJSON
	return json.Marshal(out)
}

// UnmarshalJSON rebuilds the graph from the wire format, preserving
// insertion order as given on disk. Top-level keys other than "vertices"
// and "edges" are stashed verbatim and replayed by a later MarshalJSON
// instead of being discarded.
func (g *Graph) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return cerrors.Wrap(cerrors.KindPersistence, "", err, "decoding graph.json")
	}

	var w wireGraph
	if verticesRaw, ok := raw["vertices"]; ok {
		if err := json.Unmarshal(verticesRaw, &w.Vertices); err != nil {
			return cerrors.Wrap(cerrors.KindPersistence, "", err, "decoding graph.json vertices")
		}
	}
	if edgesRaw, ok := raw["edges"]; ok {
		if err := json.Unmarshal(edgesRaw, &w.Edges); err != nil {
			return cerrors.Wrap(cerrors.KindPersistence, "", err, "decoding graph.json edges")
		}
	}

	ng := New()
	for _, v := range w.Vertices {
		var kind VertexKind
		switch v.Kind {
		case "feature":
			kind = VertexFeature
		case "raster":
			kind = VertexRaster
		default:
			return cerrors.New(cerrors.KindPersistence, v.ID, "unknown vertex kind %q", v.Kind)
		}
		if err := ng.AddVertex(v.ID, kind); err != nil {
			return err
		}
	}
	for _, e := range w.Edges {
		if err := ng.AddEdge(e.Raster, e.Feature, e.Label, e.Attrs); err != nil {
			return err
		}
	}
	delete(raw, "vertices")
	delete(raw, "edges")
	ng.extra = raw

	*g = *ng
	return nil
}
