package filter

import (
	"strings"
	"sync"

	"github.com/david/grantdraft/internal/models"
)

// Patch is a partial update. Nil fields are left alone; an empty string
// removes the field.
type Patch struct {
	Status  *string
	Source  *string
	Keyword *string
	Sort    *string
	Order   *string
	Page    *int
	Limit   *int
}

func (p Patch) pageOnly() bool {
	return p.Page != nil &&
		p.Status == nil && p.Source == nil && p.Keyword == nil &&
		p.Sort == nil && p.Order == nil && p.Limit == nil
}

func (p Patch) empty() bool {
	return p.Page == nil &&
		p.Status == nil && p.Source == nil && p.Keyword == nil &&
		p.Sort == nil && p.Order == nil && p.Limit == nil
}

// Manager owns the authoritative filter state. It is safe for concurrent
// use so a debounce timer can read the committed keyword.
type Manager struct {
	mu    sync.RWMutex
	state State
}

func NewManager(initial State) *Manager {
	if initial.Page < 1 {
		initial.Page = 1
	}
	if initial.Limit < 1 {
		initial.Limit = DefaultLimit
	}
	return &Manager{state: initial}
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Keyword returns the committed keyword.
func (m *Manager) Keyword() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Keyword
}

// Set merges p into the state. Any patch that touches a field other than
// page moves back to page 1. It reports whether the state changed; an
// invalid patch leaves the state untouched.
func (m *Manager) Set(p Patch) (bool, error) {
	if p.empty() {
		return false, nil
	}
	if p.pageOnly() {
		return m.SetPage(*p.Page), nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.state
	if p.Status != nil {
		next.Status = models.Status(*p.Status)
	}
	if p.Source != nil {
		next.Source = models.Source(*p.Source)
	}
	if p.Keyword != nil {
		next.Keyword = strings.TrimSpace(*p.Keyword)
	}
	if p.Sort != nil {
		next.Sort = *p.Sort
	}
	if p.Order != nil {
		next.Order = *p.Order
	}
	if p.Limit != nil {
		next.Limit = *p.Limit
		if next.Limit < 1 {
			next.Limit = DefaultLimit
		}
	}
	next.Page = 1

	if err := next.Validate(); err != nil {
		return false, err
	}
	changed := next != m.state
	m.state = next
	return changed, nil
}

// SetPage moves to page n without touching any other field.
func (m *Manager) SetPage(n int) bool {
	n = max(n, 1)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Page == n {
		return false
	}
	m.state.Page = n
	return true
}

// SetKeyword commits a keyword. It is a filter change and resets page.
func (m *Manager) SetKeyword(k string) bool {
	changed, _ := m.Set(Patch{Keyword: &k})
	return changed
}

// SetSort applies a combined selector such as "amount_desc".
func (m *Manager) SetSort(key string) (bool, error) {
	opt, err := ParseSortOption(key)
	if err != nil {
		return false, err
	}
	return m.Set(Patch{Sort: &opt.Sort, Order: &opt.Order})
}

// Reset restores s as the whole state.
func (m *Manager) Reset(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
}
