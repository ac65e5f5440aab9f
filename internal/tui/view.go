package tui

import (
	"fmt"
	"html"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/microcosm-cc/bluemonday"

	"github.com/david/grantdraft/internal/catalog"
	"github.com/david/grantdraft/internal/dashboard"
	"github.com/david/grantdraft/internal/format"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#111827"))
	subtleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#6B7280"))
	selectedStyle = lipgloss.NewStyle().Background(lipgloss.Color("#E0E7FF"))
	soonStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#DC2626"))
	skeletonStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#D1D5DB"))
	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#15803D"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#B91C1C"))
	currentPage   = lipgloss.NewStyle().Bold(true).Reverse(true).Padding(0, 1)
	sectionStyle  = lipgloss.NewStyle().Bold(true).MarginTop(1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#E5E7EB")).
			Padding(0, 1).
			Width(18)

	toneColors = map[string]lipgloss.Color{
		"green":  lipgloss.Color("#16A34A"),
		"orange": lipgloss.Color("#EA580C"),
		"blue":   lipgloss.Color("#2563EB"),
		"purple": lipgloss.Color("#9333EA"),
	}
)

// Column widths of the list table, in terminal cells.
var columnWidths = []int{8, 40, 20, 12, 12, 10}

var textPolicy = bluemonday.StrictPolicy()

// plainText strips markup from scraped free text for the terminal.
func plainText(s string) string {
	return html.UnescapeString(textPolicy.Sanitize(s))
}

func cell(s string, width int) string {
	return lipgloss.NewStyle().Width(width).MaxWidth(width).MaxHeight(1).Render(s)
}

func badge(e catalog.Entry) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(e.Color)).Render(e.Label)
}

func (m *Model) View() string {
	if m.screen == screenDetail {
		return m.detailView()
	}
	return m.listView()
}

func (m *Model) listView() string {
	var b strings.Builder

	b.WriteString(m.headerView())
	b.WriteString("\n\n")
	b.WriteString(m.statsView())
	b.WriteString("\n")
	b.WriteString(m.filtersView())
	b.WriteString("\n")
	if m.view.Notice != "" {
		style := noticeStyle
		if m.view.SyncErr != nil {
			style = errorStyle
		}
		b.WriteString(style.Render(m.view.Notice))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.tableView())
	b.WriteString("\n")
	if pager := m.pagerView(); pager != "" {
		b.WriteString("\n")
		b.WriteString(pager)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) headerView() string {
	left := titleStyle.Render(dashboard.AppTitle) + " " + subtleStyle.Render(dashboard.AppSubtitle)
	if synced := m.view.LastSynced(); synced != "" {
		left += "  " + subtleStyle.Render(dashboard.LabelLastUpdated+": "+format.DateTimeIn(synced, m.now().Location()))
	}
	if m.view.Syncing {
		left += "  " + m.spinner.View() + dashboard.LabelSyncing
	}
	return left
}

func (m *Model) statsView() string {
	cards := make([]string, 0, 4)
	for _, s := range m.view.Stats() {
		value := lipgloss.NewStyle().Bold(true).Foreground(toneColors[s.Tone]).Render(format.Count(s.Value))
		cards = append(cards, cardStyle.Render(subtleStyle.Render(s.Title)+"\n"+value))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func (m *Model) filtersView() string {
	state := m.view.Filter.State()
	cat := catalog.Default()

	status := dashboard.OptionAllStatuses
	if state.Status != "" {
		status = cat.Status(string(state.Status)).Label
	}
	source := dashboard.OptionAllSources
	if state.Source != "" {
		source = cat.Source(string(state.Source)).Label
	}

	keyword := m.input.View()
	if !m.searching && state.Keyword == "" {
		keyword = subtleStyle.Render(dashboard.PlaceholderKeyword)
	}
	return strings.Join([]string{
		keyword,
		status,
		source,
		cat.SortLabel(state.Sort, state.Order),
	}, subtleStyle.Render("  │  "))
}

func (m *Model) tableView() string {
	headers := []string{
		dashboard.ColSource, dashboard.ColTitle, dashboard.ColOrganization,
		dashboard.ColAmount, dashboard.ColDeadline, dashboard.ColStatus,
	}
	var lines []string
	var head []string
	for i, h := range headers {
		head = append(head, cell(headerStyle.Render(h), columnWidths[i]))
	}
	lines = append(lines, strings.Join(head, " "))

	if m.view.Loading {
		for range dashboard.SkeletonRows {
			var row []string
			for _, w := range columnWidths {
				row = append(row, skeletonStyle.Render(strings.Repeat("░", w)))
			}
			lines = append(lines, strings.Join(row, " "))
		}
		return strings.Join(lines, "\n")
	}

	if title, hint := m.view.Message(); title != "" {
		lines = append(lines, "", title)
		if hint != "" {
			lines = append(lines, subtleStyle.Render(hint))
		}
		return strings.Join(lines, "\n")
	}

	for i, r := range dashboard.Rows(m.view.Grants(), m.now()) {
		deadline := r.Deadline
		if r.DeadlineSoon {
			deadline = soonStyle.Render(deadline)
		}
		line := strings.Join([]string{
			cell(badge(r.Source), columnWidths[0]),
			cell(r.Title, columnWidths[1]),
			cell(r.Organization, columnWidths[2]),
			cell(r.Amount, columnWidths[3]),
			cell(deadline, columnWidths[4]),
			cell(badge(r.Status), columnWidths[5]),
		}, " ")
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		lines = append(lines, line)
	}
	if m.view.Err != nil {
		lines = append(lines, errorStyle.Render(dashboard.MsgFetchFailed))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) pagerView() string {
	p, ok := m.view.Pager()
	if !ok || !p.Visible() {
		return ""
	}
	parts := []string{dashboard.LabelPrev}
	for _, item := range p.Items() {
		switch {
		case item.Ellipsis:
			parts = append(parts, "...")
		case item.Current:
			parts = append(parts, currentPage.Render(format.Count(item.Number)))
		default:
			parts = append(parts, format.Count(item.Number))
		}
	}
	parts = append(parts, dashboard.LabelNext)
	return strings.Join(parts, " ") + "   " + subtleStyle.Render(p.Label())
}

func (m *Model) detailView() string {
	d := m.detail
	var b strings.Builder
	b.WriteString(subtleStyle.Render("← esc: " + dashboard.LabelBack))
	b.WriteString("\n\n")

	if d.Loading {
		b.WriteString(m.spinner.View())
		return b.String()
	}
	if msg := d.Message(); msg != "" {
		b.WriteString(errorStyle.Render(msg))
		return b.String()
	}

	g := d.Grant
	now := m.now()
	loc := now.Location()
	cat := catalog.Default()

	fmt.Fprintf(&b, "%s %s\n", badge(cat.Source(string(g.Source))), badge(cat.Status(string(g.Status))))
	b.WriteString(titleStyle.Render(g.Title))
	b.WriteString("\n")
	b.WriteString(subtleStyle.Render(g.Organization))
	b.WriteString("\n")

	start, deadline := format.NotAvailable, format.NotAvailable
	if g.ApplicationStart != nil {
		start = format.DateIn(*g.ApplicationStart, loc)
	}
	if g.ApplicationDeadline != nil {
		deadline = format.DateIn(*g.ApplicationDeadline, loc)
		if format.DeadlineSoonAt(*g.ApplicationDeadline, now) {
			deadline = soonStyle.Render(deadline)
		}
	}
	section := func(title, body string) {
		b.WriteString(sectionStyle.Render(title))
		b.WriteString("\n")
		b.WriteString(body)
		b.WriteString("\n")
	}
	section(dashboard.SectionPeriod, start+" 〜 "+deadline)
	section(dashboard.SectionAmount, format.AmountRange(g.AmountMin, g.AmountMax))

	var links []string
	if g.DetailURL != nil {
		links = append(links, dashboard.LinkDetail+": "+*g.DetailURL)
	}
	if g.GuidelineURL != nil {
		links = append(links, dashboard.LinkGuideline+": "+*g.GuidelineURL)
	}
	if len(links) > 0 {
		section(dashboard.SectionLinks, strings.Join(links, "\n"))
	}
	if g.Summary != nil && *g.Summary != "" {
		section(dashboard.SectionSummary, plainText(*g.Summary))
	}
	if g.TargetAudience != nil && *g.TargetAudience != "" {
		section(dashboard.SectionAudience, plainText(*g.TargetAudience))
	}
	if raw := d.RawJSON(); raw != "" {
		section(dashboard.SectionRawData, subtleStyle.Render(raw))
	}

	b.WriteString("\n")
	b.WriteString(subtleStyle.Render(fmt.Sprintf("%s: %s  %s: %s  %s: %s",
		dashboard.LabelLastSynced, format.DateTimeIn(g.LastSyncedAt, loc),
		dashboard.LabelCreatedAt, format.DateTimeIn(g.CreatedAt, loc),
		dashboard.LabelUpdatedAt, format.DateTimeIn(g.UpdatedAt, loc),
	)))
	return b.String()
}
