package db

import "time"

// Post is the slice of a wp_posts row the tool works with.
type Post struct {
	ID       int64
	Title    string
	Type     string
	Status   string
	Date     time.Time
	Modified time.Time
}

// Sort columns accepted by ListPosts.
const (
	OrderByTitle = "title"
	OrderByType  = "type"
	OrderByDate  = "date"
)

// Sort directions accepted by ListPosts.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// PostQuery selects a page of posts whose type is one of Types.
type PostQuery struct {
	Types   []string
	OrderBy string
	Order   string
	Limit   int
	Offset  int
}

var orderColumns = map[string]string{
	OrderByTitle: "post_title",
	OrderByType:  "post_type",
	OrderByDate:  "post_date",
}

// orderClause maps the query's sort onto whitelisted SQL, defaulting to newest first.
func (q PostQuery) orderClause() string {
	col, ok := orderColumns[q.OrderBy]
	if !ok {
		return "post_date DESC, ID DESC"
	}
	dir := "ASC"
	if q.Order == OrderDesc {
		dir = "DESC"
	}
	return col + " " + dir + ", ID " + dir
}

// excludedStatuses are never listed: auto-drafts are editor scratch rows and
// trashed posts are hidden from the host's "all" view as well.
var excludedStatuses = []string{"auto-draft", "trash"}

// statusFilter returns the NOT IN placeholders and args for excludedStatuses.
func statusFilter() (string, []any) {
	return inClause(excludedStatuses)
}
