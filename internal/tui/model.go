// Package tui is the terminal front-end of the grants dashboard. It drives
// the same dashboard.View as the web server from a bubbletea update loop;
// fetches run as commands and come back as messages.
package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"

	"github.com/david/grantdraft/internal/dashboard"
	"github.com/david/grantdraft/internal/filter"
	"github.com/david/grantdraft/internal/models"
)

type screen int

const (
	screenList screen = iota
	screenDetail
)

type (
	listMsg   dashboard.ListResult
	countsMsg dashboard.CountsResult

	detailMsg struct {
		id    string
		grant *models.GrantDetail
		err   error
	}

	syncAcceptedMsg struct {
		resp *models.SyncResponse
		err  error
	}

	syncDoneMsg struct {
		log *models.SyncLog
		err error
	}

	// keywordMsg carries a keyword the debouncer committed.
	keywordMsg string
)

type Options struct {
	Loader   *dashboard.Loader
	Clock    clockwork.Clock
	Logger   *slog.Logger
	Initial  filter.State
	Debounce time.Duration
}

// Model is the bubbletea model of the dashboard.
type Model struct {
	loader *dashboard.Loader
	logger *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc

	view   *dashboard.View
	detail *dashboard.DetailView
	screen screen
	cursor int
	now    func() time.Time

	keys      KeyMap
	help      help.Model
	input     textinput.Model
	spinner   spinner.Model
	searching bool

	debouncer *filter.Debouncer
	keywords  chan string

	width  int
	height int
}

func New(opts Options) *Model {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Initial.Limit == 0 {
		opts.Initial = filter.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	ti := textinput.New()
	ti.Placeholder = dashboard.PlaceholderKeyword
	ti.Prompt = "🔍 "
	ti.CharLimit = 200
	ti.Width = 30
	ti.SetValue(opts.Initial.Keyword)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{
		loader:   opts.Loader,
		logger:   opts.Logger.With("component", "tui"),
		ctx:      ctx,
		cancel:   cancel,
		view:     dashboard.NewView(opts.Initial),
		now:      opts.Clock.Now,
		keys:     DefaultKeyMap,
		help:     help.New(),
		input:    ti,
		spinner:  sp,
		keywords: make(chan string, 1),
	}
	m.debouncer = filter.NewDebouncer(opts.Clock, opts.Debounce, m.view.Filter.Keyword, m.queueKeyword)
	return m
}

// Run starts the dashboard on the terminal and blocks until it quits.
func Run(opts Options) error {
	m := New(opts)
	defer m.Close()
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

// Close cancels in-flight fetches and a pending keyword commit.
func (m *Model) Close() {
	m.debouncer.Stop()
	m.view.Close()
	m.cancel()
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchList(), m.fetchCounts(), m.waitForKeyword())
}

// queueKeyword hands a committed keyword to the update loop. Only the
// latest value matters, so an unread one is replaced.
func (m *Model) queueKeyword(v string) {
	for {
		select {
		case m.keywords <- v:
			return
		default:
		}
		select {
		case <-m.keywords:
		default:
		}
	}
}

func (m *Model) waitForKeyword() tea.Cmd {
	ctx, ch := m.ctx, m.keywords
	return func() tea.Msg {
		select {
		case v := <-ch:
			return keywordMsg(v)
		case <-ctx.Done():
			return nil
		}
	}
}

func (m *Model) fetchList() tea.Cmd {
	ctx, req := m.view.BeginList(m.ctx)
	loader := m.loader
	return func() tea.Msg {
		return listMsg(loader.LoadList(ctx, req))
	}
}

func (m *Model) fetchCounts() tea.Cmd {
	gen := m.view.BeginCounts()
	ctx, loader := m.ctx, m.loader
	return func() tea.Msg {
		return countsMsg(loader.LoadCounts(ctx, gen))
	}
}

func (m *Model) fetchDetail(id string) tea.Cmd {
	ctx, loader := m.ctx, m.loader
	return func() tea.Msg {
		g, err := loader.LoadDetail(ctx, id)
		return detailMsg{id: id, grant: g, err: err}
	}
}

func (m *Model) triggerSync() tea.Cmd {
	ctx, loader := m.ctx, m.loader
	return func() tea.Msg {
		resp, err := loader.TriggerSync(ctx, models.SyncAll)
		return syncAcceptedMsg{resp: resp, err: err}
	}
}

func (m *Model) awaitSync(accepted *models.SyncResponse) tea.Cmd {
	ctx, loader := m.ctx, m.loader
	return func() tea.Msg {
		log, err := loader.AwaitSync(ctx, accepted)
		return syncDoneMsg{log: log, err: err}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case listMsg:
		if m.view.ApplyList(dashboard.ListResult(msg)) {
			m.cursor = min(m.cursor, max(len(m.view.Grants())-1, 0))
		}
		return m, nil

	case countsMsg:
		m.view.ApplyCounts(dashboard.CountsResult(msg))
		return m, nil

	case detailMsg:
		if m.detail != nil && m.detail.ID == msg.id {
			m.detail.Apply(msg.grant, msg.err)
		}
		return m, nil

	case keywordMsg:
		next := m.waitForKeyword()
		if !m.view.Filter.SetKeyword(string(msg)) {
			return m, next
		}
		m.cursor = 0
		return m, tea.Batch(m.fetchList(), next)

	case syncAcceptedMsg:
		if msg.err != nil {
			m.view.FinishSync(msg.err)
			return m, nil
		}
		m.view.Notice = dashboard.MsgSyncStarted
		return m, m.awaitSync(msg.resp)

	case syncDoneMsg:
		m.view.FinishSync(msg.err)
		if msg.err != nil {
			return m, nil
		}
		return m, tea.Batch(m.fetchList(), m.fetchCounts())

	case tea.KeyMsg:
		switch {
		case m.searching:
			return m.handleSearchKeys(msg)
		case m.screen == screenDetail:
			return m.handleDetailKeys(msg)
		}
		return m.handleListKeys(msg)
	}
	return m, nil
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.cursor = max(m.cursor-1, 0)

	case key.Matches(msg, m.keys.Down):
		m.cursor = min(m.cursor+1, max(len(m.view.Grants())-1, 0))

	case key.Matches(msg, m.keys.Open):
		grants := m.view.Grants()
		if m.cursor >= len(grants) {
			return m, nil
		}
		id := grants[m.cursor].ID
		m.detail = dashboard.NewDetailView(id)
		m.screen = screenDetail
		return m, m.fetchDetail(id)

	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.debouncer.Reset(m.view.Filter.Keyword())
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Status):
		next := nextStatus(m.view.Filter.State().Status)
		return m, m.setFilter(filter.Patch{Status: &next})

	case key.Matches(msg, m.keys.Source):
		next := nextSource(m.view.Filter.State().Source)
		return m, m.setFilter(filter.Patch{Source: &next})

	case key.Matches(msg, m.keys.Sort):
		opt := filter.NextSortOption(m.view.Filter.State().SortKey())
		return m, m.setFilter(filter.Patch{Sort: &opt.Sort, Order: &opt.Order})

	case key.Matches(msg, m.keys.NextPage):
		if p, ok := m.view.Pager(); ok && p.HasNext() && m.view.SetPage(p.Next()) {
			m.cursor = 0
			return m, m.fetchList()
		}

	case key.Matches(msg, m.keys.PrevPage):
		if p, ok := m.view.Pager(); ok && p.HasPrev() && m.view.SetPage(p.Prev()) {
			m.cursor = 0
			return m, m.fetchList()
		}

	case key.Matches(msg, m.keys.Refresh):
		return m, tea.Batch(m.fetchList(), m.fetchCounts())

	case key.Matches(msg, m.keys.Sync):
		if m.view.BeginSync() {
			return m, m.triggerSync()
		}

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m *Model) setFilter(p filter.Patch) tea.Cmd {
	changed, err := m.view.SetFilter(p)
	if err != nil {
		m.logger.Warn("rejected filter change", "error", err)
		return nil
	}
	if !changed {
		return nil
	}
	m.cursor = 0
	return m.fetchList()
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.Close()
		return m, tea.Quit
	case tea.KeyEnter:
		m.searching = false
		m.input.Blur()
		m.debouncer.Flush()
		return m, nil
	case tea.KeyEsc:
		committed := m.view.Filter.Keyword()
		m.searching = false
		m.input.Blur()
		m.input.SetValue(committed)
		m.debouncer.Reset(committed)
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != before {
		m.debouncer.Input(v)
	}
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Close()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		m.screen = screenList
		m.detail = nil
	}
	return m, nil
}

// nextStatus cycles through "all" and then every known status.
func nextStatus(current models.Status) string {
	if current == "" {
		return string(models.Statuses[0])
	}
	for i, s := range models.Statuses {
		if s == current && i+1 < len(models.Statuses) {
			return string(models.Statuses[i+1])
		}
	}
	return ""
}

func nextSource(current models.Source) string {
	if current == "" {
		return string(models.Sources[0])
	}
	for i, s := range models.Sources {
		if s == current && i+1 < len(models.Sources) {
			return string(models.Sources[i+1])
		}
	}
	return ""
}
