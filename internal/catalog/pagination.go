package catalog

import "strconv"

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Pagination is the page block returned by list endpoints. A nil Next or
// Previous means there is no such page.
type Pagination struct {
	Next     *string `json:"next"`
	Limit    int     `json:"limit"`
	Previous *int    `json:"previous"`
}

type Page struct {
	Limit  int
	Offset int
}

func (p Page) Validate() error {
	if p.Limit < 1 || p.Limit > MaxLimit {
		return invalidf("limit must be between 1 and %d", MaxLimit)
	}
	if p.Offset < 0 {
		return invalidf("offset must be >= 0")
	}
	return nil
}

// Paginate computes the page block for a window of limit items starting at
// offset out of total matching items. The comparison is arranged so that
// offset+limit is only computed once it is known to be below total.
func Paginate(offset, limit int, total int64) Pagination {
	out := Pagination{Limit: limit}
	if int64(offset) < total-int64(limit) {
		next := strconv.Itoa(offset + limit)
		out.Next = &next
	}
	if offset > 0 {
		prev := max(0, offset-limit)
		out.Previous = &prev
	}
	return out
}
