package filter

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/david/grantdraft/internal/models"
)

// Sort keys accepted by the grants API.
const (
	SortDeadline = "deadline"
	SortCreated  = "created"
	SortAmount   = "amount"

	OrderAsc  = "asc"
	OrderDesc = "desc"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// State is the complete set of list filters. Empty strings and zero
// integers mean the field is undefined and is not sent to the API.
type State struct {
	Status  models.Status
	Source  models.Source
	Keyword string
	Sort    string
	Order   string
	Page    int
	Limit   int
}

// Default is the state the dashboard starts from.
func Default() State {
	return State{
		Sort:  SortDeadline,
		Order: OrderAsc,
		Page:  1,
		Limit: DefaultLimit,
	}
}

// Query encodes every defined field under its own name, in the fixed
// order status, source, keyword, sort, order, page, limit.
func (s State) Query() string {
	var b strings.Builder
	add := func(key, val string) {
		if val == "" {
			return
		}
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(val))
	}

	add("status", string(s.Status))
	add("source", string(s.Source))
	add("keyword", strings.TrimSpace(s.Keyword))
	add("sort", s.Sort)
	add("order", s.Order)
	if s.Page > 0 {
		add("page", strconv.Itoa(s.Page))
	}
	if s.Limit > 0 {
		add("limit", strconv.Itoa(s.Limit))
	}
	return b.String()
}

// WithPage returns a copy of s pointing at page n.
func (s State) WithPage(n int) State {
	s.Page = max(n, 1)
	return s
}

// Validate checks every defined field against the values the API accepts.
func (s State) Validate() error {
	if s.Status != "" && !s.Status.Valid() {
		return fmt.Errorf("invalid status %q", s.Status)
	}
	if s.Source != "" && !s.Source.Valid() {
		return fmt.Errorf("invalid source %q", s.Source)
	}
	if s.Sort != "" && !validSort(s.Sort) {
		return fmt.Errorf("invalid sort %q", s.Sort)
	}
	if s.Order != "" && s.Order != OrderAsc && s.Order != OrderDesc {
		return fmt.Errorf("invalid order %q", s.Order)
	}
	if s.Page < 0 {
		return fmt.Errorf("invalid page %d", s.Page)
	}
	if s.Limit < 0 || s.Limit > MaxLimit {
		return fmt.Errorf("invalid limit %d", s.Limit)
	}
	return nil
}

// FromQuery reads filters from URL query values on top of base. Invalid
// values are ignored so a hand-edited URL still renders a page.
func FromQuery(q url.Values, base State) State {
	s := base
	if v := models.Status(q.Get("status")); v.Valid() {
		s.Status = v
	}
	if v := models.Source(q.Get("source")); v.Valid() {
		s.Source = v
	}
	if q.Has("keyword") {
		s.Keyword = strings.TrimSpace(q.Get("keyword"))
	}
	if v := q.Get("sort"); validSort(v) {
		s.Sort = v
	}
	if v := q.Get("order"); v == OrderAsc || v == OrderDesc {
		s.Order = v
	}
	if n, err := strconv.Atoi(q.Get("page")); err == nil && n > 0 {
		s.Page = n
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 && n <= MaxLimit {
		s.Limit = n
	}
	return s
}

func validSort(v string) bool {
	return v == SortDeadline || v == SortCreated || v == SortAmount
}
