package query

import (
	"net/url"
	"strconv"
)

// DefaultPageSize is the page size used when none is requested.
const DefaultPageSize = 100

// PageSizes is the enumerated set of allowed page sizes. The first entry is
// the default.
var PageSizes = []int{DefaultPageSize, 250, 500}

// ListQuery is the navigable state of a paginated list view: a zero-based
// page, a page size from the allowed set, an optional free-text search, and
// an optional sort in its serialized form.
type ListQuery struct {
	Page   int
	Limit  int
	Search string
	Sort   string
}

// NewListQuery returns the initial query state: first page, default limit,
// no search, no sort.
func NewListQuery() ListQuery {
	return ListQuery{Page: 0, Limit: DefaultPageSize}
}

// ClampLimit returns limit when it is in the allowed set, the default
// page size otherwise.
func ClampLimit(limit int) int {
	for _, allowed := range PageSizes {
		if limit == allowed {
			return limit
		}
	}
	return DefaultPageSize
}

// WithPage returns a copy with the page changed. Negative pages clamp to 0.
func (q ListQuery) WithPage(page int) ListQuery {
	if page < 0 {
		page = 0
	}
	q.Page = page
	return q
}

// WithLimit returns a copy with the limit changed. The page resets to 0: the
// previous offset is meaningless under a new page size.
func (q ListQuery) WithLimit(limit int) ListQuery {
	q.Limit = ClampLimit(limit)
	q.Page = 0
	return q
}

// WithSearch returns a copy with the search term changed. The page resets to
// 0: a changed result set invalidates the current offset.
func (q ListQuery) WithSearch(search string) ListQuery {
	if search != q.Search {
		q.Page = 0
	}
	q.Search = search
	return q
}

// WithSort returns a copy with the sort changed. Paging is preserved; the
// result set is the same rows in a different order.
func (q ListQuery) WithSort(s Sort) ListQuery {
	q.Sort = s.Encode()
	return q
}

// Values serializes the query into navigable URL parameters. Search and sort
// are omitted when empty so shared links stay minimal.
func (q ListQuery) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("limit", strconv.Itoa(q.Limit))
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	return v
}

// ParseListQuery restores a query from navigable URL parameters, applying
// the same guardrails as user-driven changes: non-numeric or negative pages
// become 0 and limits outside the allowed set clamp to the default. The list
// view's state is a pure function of these four values.
func ParseListQuery(v url.Values) ListQuery {
	q := NewListQuery()

	if page, err := strconv.Atoi(v.Get("page")); err == nil && page > 0 {
		q.Page = page
	}
	if limit, err := strconv.Atoi(v.Get("limit")); err == nil {
		q.Limit = ClampLimit(limit)
	}
	q.Search = v.Get("search")
	q.Sort = DecodeSort(v.Get("sort")).Encode()
	return q
}
