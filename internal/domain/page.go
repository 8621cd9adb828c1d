package domain

// PageParams carries already-resolved limit/offset values from the HTTP layer
// to the repo layer. The pair is applied to a query only when both values
// were supplied and non-negative; otherwise the query runs unbounded and the
// full filtered result set comes back. Defaulting page size and page number
// is the caller's concern, not the repo's.
type PageParams struct {
	Limit  int
	Offset int
	// Bounded is true only when both Limit and Offset were supplied as
	// non-negative integers.
	Bounded bool
}

// NewPageParams builds a PageParams from optional query values.
// Either pointer being nil or negative leaves the params unbounded.
func NewPageParams(limit, offset *int) PageParams {
	if limit == nil || offset == nil || *limit < 0 || *offset < 0 {
		return PageParams{}
	}
	return PageParams{Limit: *limit, Offset: *offset, Bounded: true}
}

// PageFromQuery resolves 1-indexed page/limit query values into a bounded
// PageParams, falling back to page=1, limit=10 when either is absent or
// invalid. This mirrors how the public excursion listing resolves defaults
// before handing the result to the search engine.
func PageFromQuery(page, limit *int) PageParams {
	p, l := 1, 10
	if page != nil && *page >= 1 {
		p = *page
	}
	if limit != nil && *limit >= 1 {
		l = *limit
	}
	offset := (p - 1) * l
	return PageParams{Limit: l, Offset: offset, Bounded: true}
}
