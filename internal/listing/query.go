package listing

import (
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/jonathan/orphaned-data/internal/db"
)

// Query parameters understood by the listing screen.
const (
	ParamPage    = "paged"
	ParamOrderBy = "orderby"
	ParamOrder   = "order"
	ParamFilter  = "orphan_type"
)

// FilterAll is the filter sentinel meaning "every orphaned type".
const FilterAll = "all"

// Query is the per-request state of the listing: paging, sorting and filter.
type Query struct {
	Page    int
	OrderBy string
	Order   string
	Filter  string
}

// ParseQuery reads a Query from URL parameters. Unknown sort values are dropped
// so the default (newest first) applies.
func ParseQuery(v url.Values) Query {
	q := Query{Page: 1, Filter: FilterAll}

	if p, err := strconv.Atoi(v.Get(ParamPage)); err == nil && p > 0 {
		q.Page = p
	}
	switch ob := v.Get(ParamOrderBy); ob {
	case db.OrderByTitle, db.OrderByType, db.OrderByDate:
		q.OrderBy = ob
	}
	switch o := strings.ToLower(v.Get(ParamOrder)); o {
	case db.OrderAsc, db.OrderDesc:
		q.Order = o
	}
	if f := v.Get(ParamFilter); f != "" {
		q.Filter = f
	}
	return q
}

// Sort returns the effective column and direction, applying the date-descending default.
func (q Query) Sort() (orderBy, order string) {
	orderBy, order = q.OrderBy, q.Order
	if orderBy == "" {
		orderBy = db.OrderByDate
	}
	if order == "" {
		order = db.OrderAsc
		if orderBy == db.OrderByDate {
			order = db.OrderDesc
		}
	}
	return orderBy, order
}

// ActiveFilter returns the filter if it names one of orphans, else FilterAll.
func (q Query) ActiveFilter(orphans []string) string {
	if q.Filter != FilterAll && slices.Contains(orphans, q.Filter) {
		return q.Filter
	}
	return FilterAll
}

// Types returns the post types the query lists.
func (q Query) Types(orphans []string) []string {
	if f := q.ActiveFilter(orphans); f != FilterAll {
		return []string{f}
	}
	return orphans
}

// Values encodes q back into URL parameters, omitting defaults.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Page > 1 {
		v.Set(ParamPage, strconv.Itoa(q.Page))
	}
	if q.OrderBy != "" {
		v.Set(ParamOrderBy, q.OrderBy)
	}
	if q.Order != "" {
		v.Set(ParamOrder, q.Order)
	}
	if q.Filter != "" && q.Filter != FilterAll {
		v.Set(ParamFilter, q.Filter)
	}
	return v
}

// URL returns basePath with q encoded.
func (q Query) URL(basePath string) string {
	u := url.URL{Path: basePath, RawQuery: q.Values().Encode()}
	return u.String()
}

// FilterRedirect decides whether a submitted filter needs a redirect. It returns the
// canonical URL when submitted differs from the filter in current; the parameter is
// omitted for FilterAll and paging restarts at the first page.
func FilterRedirect(current *url.URL, submitted string) (string, bool) {
	values := current.Query()

	have := values.Get(ParamFilter)
	if have == "" {
		have = FilterAll
	}
	want := submitted
	if want == "" {
		want = FilterAll
	}
	if have == want {
		return "", false
	}

	values.Del(ParamPage)
	if want == FilterAll {
		values.Del(ParamFilter)
	} else {
		values.Set(ParamFilter, want)
	}
	u := url.URL{Path: current.Path, RawQuery: values.Encode()}
	return u.String(), true
}
