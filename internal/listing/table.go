// Package listing renders the orphaned posts admin screen.
//
// The screen is assembled from a generic Table: a list of columns with their cell
// renderers, a row action provider and a set of capability-gated bulk actions.
package listing

import (
	"fmt"
	"html/template"
)

// CellRenderer produces the HTML of one cell for row.
type CellRenderer[R any] func(row R) (template.HTML, error)

// Column describes one table column.
type Column[R any] struct {
	Key   string
	Label string
	// SortKey is the orderby value for sortable columns; empty means not sortable.
	SortKey string
	// DefaultDesc makes the first click on the header sort descending.
	DefaultDesc bool
	// CheckColumn marks the selection checkbox column.
	CheckColumn bool
	// Class is added to the cell's class attribute.
	Class  string
	Render CellRenderer[R]
}

// RowAction is a per-row control rendered under the primary column.
// It submits the enclosing form with Name=Value.
type RowAction struct {
	Key   string
	Label string
	Name  string
	Value string
}

// RowActionProvider returns the row actions available for row.
type RowActionProvider[R any] func(row R) []RowAction

// BulkAction is an entry of the bulk actions dropdown.
type BulkAction struct {
	Key        string
	Label      string
	Capability string
}

// Table is a tabular admin view over rows of type R.
type Table[R any] struct {
	Columns     []Column[R]
	Primary     string
	RowActions  RowActionProvider[R]
	BulkActions []BulkAction
	RowID       func(row R) string
}

// RenderedCell is a cell ready for the page template.
type RenderedCell struct {
	Key         string
	Class       string
	HTML        template.HTML
	Primary     bool
	CheckColumn bool
	Actions     []RowAction
}

// RenderedRow is a table row ready for the page template.
type RenderedRow struct {
	ID    string
	Cells []RenderedCell
}

// AllowedBulkActions returns the bulk actions whose capability can grants, in order.
func (t *Table[R]) AllowedBulkActions(can func(capability string) bool) []BulkAction {
	var out []BulkAction
	for _, a := range t.BulkActions {
		if a.Capability == "" || can(a.Capability) {
			out = append(out, a)
		}
	}
	return out
}

// RenderRows runs every column renderer over rows.
func (t *Table[R]) RenderRows(rows []R) ([]RenderedRow, error) {
	out := make([]RenderedRow, 0, len(rows))
	for _, row := range rows {
		r := RenderedRow{Cells: make([]RenderedCell, 0, len(t.Columns))}
		if t.RowID != nil {
			r.ID = t.RowID(row)
		}
		for _, col := range t.Columns {
			html, err := col.Render(row)
			if err != nil {
				return nil, fmt.Errorf("failed to render column %s: %w", col.Key, err)
			}
			cell := RenderedCell{
				Key:         col.Key,
				Class:       col.Class,
				HTML:        html,
				Primary:     col.Key == t.Primary,
				CheckColumn: col.CheckColumn,
			}
			if cell.Primary && t.RowActions != nil {
				cell.Actions = t.RowActions(row)
			}
			r.Cells = append(r.Cells, cell)
		}
		out = append(out, r)
	}
	return out, nil
}
