package graph

import (
	"encoding/json"
	"testing"

	"geographer/util"
)

func TestAddEdge_RequiresBothVertices(t *testing.T) {
	// Arrange
	g := New()
	util.AssertNil(t, g.AddVertex("r1", VertexRaster))

	// Act
	err := g.AddEdge("r1", "f1", LabelContains, nil)

	// Assert
	util.AssertNotNil(t, err)
}

func TestAddEdge_DuplicateIsError(t *testing.T) {
	// Arrange
	g := New()
	util.AssertNil(t, g.AddVertex("r1", VertexRaster))
	util.AssertNil(t, g.AddVertex("f1", VertexFeature))
	util.AssertNil(t, g.AddEdge("r1", "f1", LabelContains, nil))

	// Act
	err := g.AddEdge("r1", "f1", LabelIntersects, nil)

	// Assert
	util.AssertNotNil(t, err)
}

func TestNeighbors_FiltersByLabel(t *testing.T) {
	// Arrange
	g := New()
	util.AssertNil(t, g.AddVertex("r1", VertexRaster))
	util.AssertNil(t, g.AddVertex("f1", VertexFeature))
	util.AssertNil(t, g.AddVertex("f2", VertexFeature))
	util.AssertNil(t, g.AddEdge("r1", "f1", LabelContains, nil))
	util.AssertNil(t, g.AddEdge("r1", "f2", LabelIntersects, nil))

	// Act
	containing := g.Neighbors("r1", VertexRaster, labelPtr(LabelContains))
	all := g.Neighbors("r1", VertexRaster, nil)

	// Assert
	util.AssertEqual(t, []string{"f1"}, containing)
	util.AssertEqual(t, []string{"f1", "f2"}, all)
}

func labelPtr(l Label) *Label { return &l }

func TestRemoveVertex_RemovesIncidentEdges(t *testing.T) {
	// Arrange
	g := New()
	util.AssertNil(t, g.AddVertex("r1", VertexRaster))
	util.AssertNil(t, g.AddVertex("f1", VertexFeature))
	util.AssertNil(t, g.AddEdge("r1", "f1", LabelContains, nil))

	// Act
	removed, err := g.RemoveVertex("r1")

	// Assert
	util.AssertNil(t, err)
	util.AssertEqual(t, 1, len(removed))
	util.AssertFalse(t, g.HasVertex("r1", VertexRaster))
	_, _, ok := g.Edge("r1", "f1")
	util.AssertFalse(t, ok)
}

func TestRemoveVertex_UnknownIdIsError(t *testing.T) {
	// Arrange
	g := New()

	// Act
	_, err := g.RemoveVertex("missing")

	// Assert
	util.AssertNotNil(t, err)
}

func TestRemoveEdge_MissingOKSuppressesError(t *testing.T) {
	// Arrange
	g := New()

	// Act
	errStrict := g.RemoveEdge("r1", "f1", false)
	errLenient := g.RemoveEdge("r1", "f1", true)

	// Assert
	util.AssertNotNil(t, errStrict)
	util.AssertNil(t, errLenient)
}

func TestMarshalUnmarshal_RoundTrips(t *testing.T) {
	// Arrange
	g := New()
	util.AssertNil(t, g.AddVertex("r1", VertexRaster))
	util.AssertNil(t, g.AddVertex("f1", VertexFeature))
	util.AssertNil(t, g.AddEdge("r1", "f1", LabelContains, map[string]any{"source": "download-42"}))

	// Act
	data, err := g.MarshalJSON()
	util.AssertNil(t, err)

	loaded := New()
	err = loaded.UnmarshalJSON(data)

	// Assert
	util.AssertNil(t, err)
	label, attrs, ok := loaded.Edge("r1", "f1")
	util.AssertTrue(t, ok)
	util.AssertEqual(t, LabelContains, label)
	util.AssertEqual(t, "download-42", attrs["source"])
}

func TestUnmarshalMarshal_PreservesUnknownTopLevelFields(t *testing.T) {
	// Arrange: a graph.json written by a newer format version carrying a
	// field this package doesn't know about.
	data := []byte(`{"vertices":[{"id":"r1","kind":"raster"}],"edges":[],"generatedBy":"connector-v2"}`)

	// Act
	g := New()
	err := g.UnmarshalJSON(data)
	util.AssertNil(t, err)
	out, err := g.MarshalJSON()

	// Assert
	util.AssertNil(t, err)
	var roundTripped map[string]any
	util.AssertNil(t, json.Unmarshal(out, &roundTripped))
	util.AssertEqual(t, "connector-v2", roundTripped["generatedBy"])
}

func TestClone_IsIndependent(t *testing.T) {
	// Arrange
	g := New()
	util.AssertNil(t, g.AddVertex("r1", VertexRaster))
	clone := g.Clone()

	// Act
	util.AssertNil(t, clone.AddVertex("f1", VertexFeature))

	// Assert
	util.AssertFalse(t, g.HasVertex("f1", VertexFeature))
	util.AssertTrue(t, clone.HasVertex("f1", VertexFeature))
}
