package models

// Pagination describes which window of the result set a ListResponse
// holds.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"total_pages"`
}

// NewPagination builds a pagination block the way the backend does:
// total_pages is ceil(total/limit), and zero for an empty result.
func NewPagination(total, page, limit int) Pagination {
	if page < 1 {
		page = 1
	}
	return Pagination{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: TotalPages(total, limit),
	}
}

// TotalPages returns ceil(total/limit).
func TotalPages(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// Consistent reports whether the block obeys total_pages =
// ceil(total/limit) and, for a non-empty result, whether the page starts
// inside the result set.
func (p Pagination) Consistent() bool {
	if p.Page < 1 || p.Limit < 1 || p.Total < 0 {
		return false
	}
	if p.TotalPages != TotalPages(p.Total, p.Limit) {
		return false
	}
	if p.Total == 0 {
		return true
	}
	offset := (p.Page - 1) * p.Limit
	return offset >= 0 && offset < p.Total
}

// Range returns the 1-based positions of the first and last item on the
// page, or 0, 0 when the page is empty.
func (p Pagination) Range() (from, to int) {
	if p.Total <= 0 || p.Limit <= 0 || p.Page < 1 {
		return 0, 0
	}
	from = (p.Page-1)*p.Limit + 1
	to = min(p.Page*p.Limit, p.Total)
	if from > to {
		return 0, 0
	}
	return from, to
}
