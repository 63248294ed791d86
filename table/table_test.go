package table

import (
	"testing"

	"github.com/paulmach/orb"
	"geographer/util"
)

func TestInsertRows_RejectsDuplicateId(t *testing.T) {
	// Arrange
	tbl := New()
	util.AssertNil(t, tbl.InsertRows([]NamedRow{{ID: "a", Row: Row{Geometry: orb.Point{0, 0}}}}))

	// Act
	err := tbl.InsertRows([]NamedRow{{ID: "a", Row: Row{Geometry: orb.Point{1, 1}}}})

	// Assert
	util.AssertErrorMentionsID(t, "a", err)
}

func TestInsertRows_RejectsDuplicateWithinBatch(t *testing.T) {
	// Arrange
	tbl := New()

	// Act
	err := tbl.InsertRows([]NamedRow{
		{ID: "a", Row: Row{Geometry: orb.Point{0, 0}}},
		{ID: "a", Row: Row{Geometry: orb.Point{1, 1}}},
	})

	// Assert
	util.AssertNotNil(t, err)
}

func TestInsertRows_PreservesOrder(t *testing.T) {
	// Arrange
	tbl := New()

	// Act
	util.AssertNil(t, tbl.InsertRows([]NamedRow{
		{ID: "b", Row: Row{Geometry: orb.Point{0, 0}}},
		{ID: "a", Row: Row{Geometry: orb.Point{1, 1}}},
	}))

	// Assert
	rows := tbl.IterRows()
	util.AssertEqual(t, "b", rows[0].ID)
	util.AssertEqual(t, "a", rows[1].ID)
}

func TestDropRows_MissingIdIsError(t *testing.T) {
	// Arrange
	tbl := New()

	// Act
	err := tbl.DropRows([]string{"missing"})

	// Assert
	util.AssertNotNil(t, err)
}

func TestSetCell_UpdatesAttribute(t *testing.T) {
	// Arrange
	tbl := New()
	util.AssertNil(t, tbl.InsertRows([]NamedRow{{ID: "a", Row: Row{Geometry: orb.Point{0, 0}, Attrs: map[string]any{}}}}))

	// Act
	err := tbl.SetCell("a", "raster_count", 3)

	// Assert
	util.AssertNil(t, err)
	row, _ := tbl.GetRow("a")
	util.AssertEqual(t, 3, row.Attrs["raster_count"])
}

func TestAddColumn_DefaultsExistingRows(t *testing.T) {
	// Arrange
	tbl := New()
	util.AssertNil(t, tbl.InsertRows([]NamedRow{{ID: "a", Row: Row{Geometry: orb.Point{0, 0}}}}))

	// Act
	err := tbl.AddColumn("prob_of_class_forest", 0.0)

	// Assert
	util.AssertNil(t, err)
	row, _ := tbl.GetRow("a")
	util.AssertEqual(t, 0.0, row.Attrs["prob_of_class_forest"])
}

func TestRenameColumn_MovesValues(t *testing.T) {
	// Arrange
	tbl := New()
	util.AssertNil(t, tbl.InsertRows([]NamedRow{{ID: "a", Row: Row{Geometry: orb.Point{0, 0}, Attrs: map[string]any{"old": 1}}}}))

	// Act
	err := tbl.RenameColumn("old", "new")

	// Assert
	util.AssertNil(t, err)
	row, _ := tbl.GetRow("a")
	_, hasOld := row.Attrs["old"]
	util.AssertFalse(t, hasOld)
	util.AssertEqual(t, 1, row.Attrs["new"])
}

func TestClone_IsIndependent(t *testing.T) {
	// Arrange
	tbl := New()
	util.AssertNil(t, tbl.InsertRows([]NamedRow{{ID: "a", Row: Row{Geometry: orb.Point{0, 0}, Attrs: map[string]any{"x": 1}}}}))
	clone := tbl.Clone()

	// Act
	util.AssertNil(t, clone.SetCell("a", "x", 2))

	// Assert
	original, _ := tbl.GetRow("a")
	cloned, _ := clone.GetRow("a")
	util.AssertEqual(t, 1, original.Attrs["x"])
	util.AssertEqual(t, 2, cloned.Attrs["x"])
}
