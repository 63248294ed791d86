// Package table implements the row-keyed tabular store backing both the
// vectors and rasters relations. A Table is deliberately untyped (a
// map[string]any bag plus a dedicated geometry field) so that label-makers
// and downloaders can widen the schema without the core knowing their
// column names ahead of time, mirroring the open-attribute dataframes of
// the source system's GeoDataFrame tables.
package table

import (
	"sort"

	"github.com/paulmach/orb"
	"geographer/cerrors"
)

// NamedRow pairs a row with its id. InsertRows takes a slice of these,
// rather than a map, so that the order in which callers hand rows to the
// connector is preserved through to edge creation and column tracking.
type NamedRow struct {
	ID  string
	Row Row
}

// Row is one record: Geometry is nil for rows that carry no geometry (e.g.
// raster_failures entries), Attrs holds every other column.
type Row struct {
	Geometry orb.Geometry
	Attrs    map[string]any
}

func (r Row) clone() Row {
	attrs := make(map[string]any, len(r.Attrs))
	for k, v := range r.Attrs {
		attrs[k] = v
	}
	return Row{Geometry: r.Geometry, Attrs: attrs}
}

// Table is a row-keyed store with a tracked column set and insertion order.
type Table struct {
	rows    map[string]Row
	order   []string
	columns map[string]bool
}

// New creates an empty table.
func New() *Table {
	return &Table{
		rows:    make(map[string]Row),
		columns: make(map[string]bool),
	}
}

// InsertRows adds new rows in the given order. Any id already present in
// the table, or duplicated within rows itself, is an identifier error and
// none of the batch is applied.
func (t *Table) InsertRows(rows []NamedRow) error {
	seen := make(map[string]bool, len(rows))
	for _, nr := range rows {
		if _, ok := t.rows[nr.ID]; ok {
			return cerrors.New(cerrors.KindIdentifier, nr.ID, "row already present in table")
		}
		if seen[nr.ID] {
			return cerrors.New(cerrors.KindIdentifier, nr.ID, "duplicate id within batch")
		}
		seen[nr.ID] = true
	}

	for _, nr := range rows {
		row := nr.Row.clone()
		t.rows[nr.ID] = row
		t.order = append(t.order, nr.ID)
		for col := range row.Attrs {
			t.columns[col] = true
		}
	}
	return nil
}

// DropRows removes rows. Any missing id is an identifier error and none of
// the batch is applied.
func (t *Table) DropRows(ids []string) error {
	for _, id := range ids {
		if _, ok := t.rows[id]; !ok {
			return cerrors.New(cerrors.KindIdentifier, id, "row not present in table")
		}
	}
	for _, id := range ids {
		delete(t.rows, id)
		for i, existing := range t.order {
			if existing == id {
				t.order = append(t.order[:i], t.order[i+1:]...)
				break
			}
		}
	}
	return nil
}

// GetRow returns a defensive copy of the row and whether it exists.
func (t *Table) GetRow(id string) (Row, bool) {
	row, ok := t.rows[id]
	if !ok {
		return Row{}, false
	}
	return row.clone(), true
}

// HasRow reports whether id is present.
func (t *Table) HasRow(id string) bool {
	_, ok := t.rows[id]
	return ok
}

// SetCell sets a single attribute column on an existing row.
func (t *Table) SetCell(id, column string, value any) error {
	row, ok := t.rows[id]
	if !ok {
		return cerrors.New(cerrors.KindIdentifier, id, "row not present in table")
	}
	if row.Attrs == nil {
		row.Attrs = make(map[string]any)
	}
	row.Attrs[column] = value
	t.rows[id] = row
	t.columns[column] = true
	return nil
}

// SetGeometry replaces the geometry of an existing row.
func (t *Table) SetGeometry(id string, g orb.Geometry) error {
	row, ok := t.rows[id]
	if !ok {
		return cerrors.New(cerrors.KindIdentifier, id, "row not present in table")
	}
	row.Geometry = g
	t.rows[id] = row
	return nil
}

// IterRows returns (id, row) pairs in insertion order.
func (t *Table) IterRows() []struct {
	ID  string
	Row Row
} {
	out := make([]struct {
		ID  string
		Row Row
	}, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, struct {
			ID  string
			Row Row
		}{id, t.rows[id].clone()})
	}
	return out
}

// Columns returns the known attribute column names, sorted for determinism.
func (t *Table) Columns() []string {
	out := make([]string, 0, len(t.columns))
	for c := range t.columns {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.order)
}

// View is a read-only handle onto a Table, returned by the connector so
// that callers can inspect rows without being able to mutate internal
// state out from under the invariants the connector maintains.
type View struct {
	t *Table
}

// NewView wraps t in a read-only View.
func NewView(t *Table) View { return View{t: t} }

// GetRow, HasRow, IterRows, Columns and Len mirror the Table methods of the
// same name.
func (v View) GetRow(id string) (Row, bool)         { return v.t.GetRow(id) }
func (v View) HasRow(id string) bool                 { return v.t.HasRow(id) }
func (v View) IterRows() []struct {
	ID  string
	Row Row
} {
	return v.t.IterRows()
}
func (v View) Columns() []string { return v.t.Columns() }
func (v View) Len() int          { return v.t.Len() }

// Clone returns a deep copy, used by the connector to build up a mutation
// on a working copy before committing it to the live state.
func (t *Table) Clone() *Table {
	clone := &Table{
		rows:    make(map[string]Row, len(t.rows)),
		order:   append([]string(nil), t.order...),
		columns: make(map[string]bool, len(t.columns)),
	}
	for id, row := range t.rows {
		clone.rows[id] = row.clone()
	}
	for col := range t.columns {
		clone.columns[col] = true
	}
	return clone
}

// RenameColumn renames an attribute column across every row.
func (t *Table) RenameColumn(old, newName string) error {
	if !t.columns[old] {
		return cerrors.New(cerrors.KindSchema, "", "column %q does not exist", old)
	}
	if t.columns[newName] {
		return cerrors.New(cerrors.KindSchema, "", "column %q already exists", newName)
	}
	for id, row := range t.rows {
		if v, ok := row.Attrs[old]; ok {
			row.Attrs[newName] = v
			delete(row.Attrs, old)
			t.rows[id] = row
		}
	}
	delete(t.columns, old)
	t.columns[newName] = true
	return nil
}

// AddColumn widens the schema, setting defaultValue on every existing row
// that does not already have the column.
func (t *Table) AddColumn(name string, defaultValue any) error {
	if t.columns[name] {
		return cerrors.New(cerrors.KindSchema, "", "column %q already exists", name)
	}
	for id, row := range t.rows {
		if row.Attrs == nil {
			row.Attrs = make(map[string]any)
		}
		if _, ok := row.Attrs[name]; !ok {
			row.Attrs[name] = defaultValue
		}
		t.rows[id] = row
	}
	t.columns[name] = true
	return nil
}

// DropColumn removes an attribute column from every row.
func (t *Table) DropColumn(name string) error {
	if !t.columns[name] {
		return cerrors.New(cerrors.KindSchema, "", "column %q does not exist", name)
	}
	for id, row := range t.rows {
		delete(row.Attrs, name)
		t.rows[id] = row
	}
	delete(t.columns, name)
	return nil
}
