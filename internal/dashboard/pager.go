package dashboard

import (
	"fmt"

	"github.com/david/grantdraft/internal/format"
	"github.com/david/grantdraft/internal/models"
)

// maxPlainPages is the largest page count shown without ellipses.
const maxPlainPages = 7

// PageItem is one slot of the page selector. Ellipsis slots have no
// number.
type PageItem struct {
	Number   int
	Ellipsis bool
	Current  bool
}

// Pager lays out page navigation for a list response.
type Pager struct {
	models.Pagination
}

func NewPager(p models.Pagination) Pager {
	return Pager{Pagination: p}
}

// Visible reports whether there is more than one page to choose from.
func (p Pager) Visible() bool {
	return p.TotalPages > 1
}

// Items lists every page when there are at most seven. Otherwise it shows
// the first and last page, the current page with its neighbours, and an
// ellipsis for each gap.
func (p Pager) Items() []PageItem {
	if !p.Visible() {
		return nil
	}
	num := func(n int) PageItem { return PageItem{Number: n, Current: n == p.Page} }

	var items []PageItem
	if p.TotalPages <= maxPlainPages {
		for i := 1; i <= p.TotalPages; i++ {
			items = append(items, num(i))
		}
		return items
	}

	items = append(items, num(1))
	if p.Page > 3 {
		items = append(items, PageItem{Ellipsis: true})
	}
	for i := max(2, p.Page-1); i <= min(p.TotalPages-1, p.Page+1); i++ {
		items = append(items, num(i))
	}
	if p.Page < p.TotalPages-2 {
		items = append(items, PageItem{Ellipsis: true})
	}
	return append(items, num(p.TotalPages))
}

// Label renders the "全N件中 a-b件" summary.
func (p Pager) Label() string {
	from, to := p.Range()
	return fmt.Sprintf("全%s件中 %s-%s件", format.Count(p.Total), format.Count(from), format.Count(to))
}

func (p Pager) HasPrev() bool { return p.Page > 1 }

func (p Pager) HasNext() bool { return p.Page < p.TotalPages }

func (p Pager) Prev() int { return max(p.Page-1, 1) }

func (p Pager) Next() int { return min(p.Page+1, max(p.TotalPages, 1)) }
