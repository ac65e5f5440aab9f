package filter

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/david/grantdraft/internal/catalog"
)

// SortOption is one entry of the combined sort selector.
type SortOption struct {
	Sort  string
	Order string
	Label string
}

func (o SortOption) Key() string {
	return o.Sort + "_" + o.Order
}

// SortOptions lists the selector entries in display order.
func SortOptions() []SortOption {
	return lo.Map(catalog.Default().SortOptions, func(o catalog.SortOption, _ int) SortOption {
		return SortOption{Sort: o.Sort, Order: o.Order, Label: o.Label}
	})
}

// ParseSortOption splits a selector value like "created_desc".
func ParseSortOption(key string) (SortOption, error) {
	sort, order, ok := strings.Cut(key, "_")
	if !ok {
		return SortOption{}, fmt.Errorf("invalid sort option %q", key)
	}
	opt, found := lo.Find(SortOptions(), func(o SortOption) bool {
		return o.Sort == sort && o.Order == order
	})
	if !found {
		return SortOption{}, fmt.Errorf("invalid sort option %q", key)
	}
	return opt, nil
}

// SortKey returns the selector value for s, using the API defaults for
// undefined fields.
func (s State) SortKey() string {
	sort, order := s.Sort, s.Order
	if sort == "" {
		sort = SortDeadline
	}
	if order == "" {
		order = OrderAsc
	}
	return sort + "_" + order
}

// NextSortOption cycles through the selector, wrapping at the end.
func NextSortOption(current string) SortOption {
	opts := SortOptions()
	_, idx, found := lo.FindIndexOf(opts, func(o SortOption) bool { return o.Key() == current })
	if !found {
		return opts[0]
	}
	return opts[(idx+1)%len(opts)]
}
