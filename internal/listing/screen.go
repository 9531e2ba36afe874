package listing

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/jonathan/orphaned-data/internal/bulk"
	"github.com/jonathan/orphaned-data/internal/db"
	"github.com/jonathan/orphaned-data/internal/notice"
	"github.com/jonathan/orphaned-data/internal/posttype"
)

// Capabilities checked by the screen.
const (
	CapEditPosts   = "edit_posts"
	CapDeletePosts = "delete_posts"
)

// Form fields posted by the listing screen.
const (
	FieldPostIDs   = "post[]"
	FieldAction    = "action"
	FieldAction2   = "action2"
	FieldTarget    = "target_post_type"
	FieldTarget2   = "target_post_type2"
	FieldRowDelete = "delete_post"
	FieldFilter    = ParamFilter

	// FieldFilterSubmit is the Filter button; when pressed no bulk action runs.
	FieldFilterSubmit = "filter_action"
)

// ActionNone is the value of an untouched bulk action selector.
const ActionNone = "-1"

// PostStore reads the posts shown on the screen.
type PostStore interface {
	ListPosts(ctx context.Context, q db.PostQuery) ([]db.Post, error)
	CountPostsByType(ctx context.Context, types []string) (map[string]int, error)
}

// Viewer is the user the screen is rendered for.
type Viewer struct {
	UserID       int64
	Capabilities []string
}

// Can reports whether the viewer holds capability.
func (v Viewer) Can(capability string) bool {
	return slices.Contains(v.Capabilities, capability)
}

// HeaderCell is a column header with its sort link.
type HeaderCell struct {
	Key         string
	Label       string
	Primary     bool
	CheckColumn bool
	SortURL     string
	Sorted      bool
	Order       string
}

// TypeOption is an entry of a post type dropdown.
type TypeOption struct {
	Name  string
	Label string
}

// FilterOption is an entry of the orphaned type filter.
type FilterOption struct {
	Value    string
	Label    string
	Selected bool
}

// Pager holds the pagination links; an empty URL renders a disabled control.
type Pager struct {
	Page       int
	TotalPages int
	FirstURL   string
	PrevURL    string
	NextURL    string
	LastURL    string
}

// View is everything the page template needs.
type View struct {
	Title            string
	FormAction       string
	ScreenOptionsURL string
	ScriptURL        string
	Notices          []notice.Notice
	Columns          []HeaderCell
	Rows             []RenderedRow
	BulkActions      []BulkAction
	Targets          []TypeOption
	Filters          []FilterOption
	Pagination       Pagination
	Pager            Pager
	ItemsLabel       string
}

// Options configure a Screen.
type Options struct {
	// BasePath is the URL path of the screen.
	BasePath string
	// AdminURL is the WordPress wp-admin URL used for editor links; empty disables them.
	AdminURL  string
	ScriptURL string
}

// Screen builds and renders the orphaned posts listing.
type Screen struct {
	store    PostStore
	registry *posttype.Registry
	tmpl     *template.Template
	opts     Options
}

// NewScreen creates a screen rendering with tmpl, which must define the
// "orphaned-data" page and the cell templates.
func NewScreen(store PostStore, registry *posttype.Registry, tmpl *template.Template, opts Options) *Screen {
	return &Screen{store: store, registry: registry, tmpl: tmpl, opts: opts}
}

// BuildRequest carries the explicit per-request inputs of Build.
type BuildRequest struct {
	Query   Query
	PerPage int
	Orphans []string
	Viewer  Viewer
	Notices []notice.Notice
	// RequestURI is the current path and query; the form posts back to it.
	RequestURI string
}

// Build loads the current page of orphaned posts and assembles the view.
func (s *Screen) Build(ctx context.Context, req BuildRequest) (*View, error) {
	q := req.Query
	types := q.Types(req.Orphans)

	counts, err := s.store.CountPostsByType(ctx, req.Orphans)
	if err != nil {
		return nil, err
	}
	total := 0
	for _, t := range types {
		total += counts[t]
	}

	pg := NewPagination(q.Page, req.PerPage, total)
	orderBy, order := q.Sort()

	var posts []db.Post
	if total > 0 {
		posts, err = s.store.ListPosts(ctx, db.PostQuery{
			Types:   types,
			OrderBy: orderBy,
			Order:   order,
			Limit:   pg.PerPage,
			Offset:  pg.Offset(),
		})
		if err != nil {
			return nil, err
		}
	}

	targets := s.targets(req.Orphans)
	table := s.table(req.Viewer, targets)
	rows, err := table.RenderRows(posts)
	if err != nil {
		return nil, err
	}

	q.Page = pg.Page
	return &View{
		Title:            "Orphaned Data",
		FormAction:       req.RequestURI,
		ScreenOptionsURL: s.opts.BasePath + "/screen-options",
		ScriptURL:        s.opts.ScriptURL,
		Notices:          req.Notices,
		Columns:          s.headers(table, q),
		Rows:             rows,
		BulkActions:      table.AllowedBulkActions(req.Viewer.Can),
		Targets:          targets,
		Filters:          s.filters(req.Orphans, counts, q.ActiveFilter(req.Orphans)),
		Pagination:       pg,
		Pager:            s.pager(q, pg),
		ItemsLabel:       itemsLabel(total),
	}, nil
}

// Render writes the page for v.
func (s *Screen) Render(w io.Writer, v *View) error {
	return s.tmpl.ExecuteTemplate(w, "orphaned-data", v)
}

// table composes the orphaned posts table for viewer.
func (s *Screen) table(viewer Viewer, targets []TypeOption) *Table[db.Post] {
	return &Table[db.Post]{
		Primary: "title",
		RowID:   func(p db.Post) string { return strconv.FormatInt(p.ID, 10) },
		Columns: []Column[db.Post]{
			{Key: "cb", CheckColumn: true, Render: s.cell("cell-cb", func(p db.Post) any {
				return struct {
					ID    int64
					Title string
				}{p.ID, postTitle(p)}
			})},
			{Key: "title", Label: "Title", SortKey: db.OrderByTitle, Class: "title", Render: s.cell("cell-title", func(p db.Post) any {
				return struct {
					Title   string
					State   string
					EditURL string
				}{postTitle(p), postState(p.Status), s.editURL(viewer, p)}
			})},
			{Key: "type", Label: "Type", SortKey: db.OrderByType, Class: "post-type", Render: s.cell("cell-type", func(p db.Post) any {
				return struct {
					Title        string
					CurrentLabel string
					Targets      []TypeOption
				}{postTitle(p), posttype.Label(p.Type), targets}
			})},
			{Key: "date", Label: "Date", SortKey: db.OrderByDate, DefaultDesc: true, Class: "date", Render: s.cell("cell-date", func(p db.Post) any {
				status, when := postDate(p)
				return struct {
					Status string
					When   string
				}{status, when}
			})},
		},
		RowActions: func(p db.Post) []RowAction {
			if !viewer.Can(CapDeletePosts) {
				return nil
			}
			return []RowAction{{
				Key:   "delete",
				Label: "Delete Permanently",
				Name:  FieldRowDelete,
				Value: strconv.FormatInt(p.ID, 10),
			}}
		},
		BulkActions: []BulkAction{
			{Key: bulk.ActionChangeType, Label: "Change Post Type", Capability: CapEditPosts},
			{Key: bulk.ActionDelete, Label: "Delete Permanently", Capability: CapDeletePosts},
		},
	}
}

// cell returns a renderer executing the named template on data(row).
func (s *Screen) cell(name string, data func(db.Post) any) CellRenderer[db.Post] {
	return func(p db.Post) (template.HTML, error) {
		var buf bytes.Buffer
		if err := s.tmpl.ExecuteTemplate(&buf, name, data(p)); err != nil {
			return "", err
		}
		return template.HTML(buf.String()), nil //nolint:gosec // output of html/template
	}
}

// targets lists the public registered types an orphan can be moved to.
func (s *Screen) targets(orphans []string) []TypeOption {
	var out []TypeOption
	for _, d := range s.registry.Public() {
		if slices.Contains(orphans, d.Name) {
			continue
		}
		out = append(out, TypeOption{Name: d.Name, Label: d.DisplayName()})
	}
	return out
}

func (s *Screen) filters(orphans []string, counts map[string]int, active string) []FilterOption {
	if len(orphans) == 0 {
		return nil
	}
	out := []FilterOption{{Value: FilterAll, Label: "All orphaned types", Selected: active == FilterAll}}
	for _, name := range orphans {
		out = append(out, FilterOption{
			Value:    name,
			Label:    fmt.Sprintf("%s (%d)", posttype.Label(name), counts[name]),
			Selected: active == name,
		})
	}
	return out
}

func (s *Screen) headers(t *Table[db.Post], q Query) []HeaderCell {
	orderBy, order := q.Sort()
	out := make([]HeaderCell, 0, len(t.Columns))
	for _, col := range t.Columns {
		h := HeaderCell{Key: col.Key, Label: col.Label, Primary: col.Key == t.Primary, CheckColumn: col.CheckColumn}
		if col.SortKey != "" {
			next := db.OrderAsc
			if col.DefaultDesc {
				next = db.OrderDesc
			}
			if col.SortKey == orderBy {
				h.Sorted = true
				h.Order = order
				next = db.OrderAsc
				if order == db.OrderAsc {
					next = db.OrderDesc
				}
			} else {
				h.Order = next
			}
			sq := q
			sq.Page = 1
			sq.OrderBy, sq.Order = col.SortKey, next
			h.SortURL = sq.URL(s.opts.BasePath)
		}
		out = append(out, h)
	}
	return out
}

func (s *Screen) pager(q Query, pg Pagination) Pager {
	p := Pager{Page: pg.Page, TotalPages: pg.TotalPages}
	at := func(page int) string {
		pq := q
		pq.Page = page
		return pq.URL(s.opts.BasePath)
	}
	if pg.Page > 1 {
		p.FirstURL = at(1)
		p.PrevURL = at(pg.Page - 1)
	}
	if pg.Page < pg.TotalPages {
		p.NextURL = at(pg.Page + 1)
		p.LastURL = at(pg.TotalPages)
	}
	return p
}

// editURL links into the WordPress editor when it is configured and the viewer may edit.
func (s *Screen) editURL(viewer Viewer, p db.Post) string {
	if s.opts.AdminURL == "" || !viewer.Can(CapEditPosts) {
		return ""
	}
	def, ok := s.registry.Get(p.Type)
	if !ok || def.EditLink == "" {
		return ""
	}
	return strings.TrimSuffix(s.opts.AdminURL, "/") + "/" + fmt.Sprintf(def.EditLink, p.ID)
}

func postTitle(p db.Post) string {
	if strings.TrimSpace(p.Title) == "" {
		return "(no title)"
	}
	return p.Title
}

func postState(status string) string {
	switch status {
	case "draft":
		return "Draft"
	case "pending":
		return "Pending"
	case "private":
		return "Private"
	case "future":
		return "Scheduled"
	default:
		return ""
	}
}

// postDate renders the date column the way the host's posts screen does.
func postDate(p db.Post) (status, when string) {
	switch p.Status {
	case "publish":
		status = "Published"
	case "future":
		status = "Scheduled"
	default:
		status = "Last Modified"
	}
	if p.Date.IsZero() || p.Date.Year() < 1000 {
		return status, "Unpublished"
	}
	return status, p.Date.Format("2006/01/02") + " at " + p.Date.Format("3:04 pm")
}

func itemsLabel(n int) string {
	if n == 1 {
		return "1 item"
	}
	return fmt.Sprintf("%d items", n)
}
