package dashboard

import (
	"time"

	"github.com/samber/lo"

	"github.com/david/grantdraft/internal/catalog"
	"github.com/david/grantdraft/internal/format"
	"github.com/david/grantdraft/internal/models"
)

// Row is a grant prepared for the list table.
type Row struct {
	ID           string
	Title        string
	Organization string
	Source       catalog.Entry
	Status       catalog.Entry
	Amount       string
	Deadline     string
	DeadlineSoon bool
}

// Rows formats grants for display. now decides which deadlines are
// highlighted.
func Rows(grants []models.Grant, now time.Time) []Row {
	cat := catalog.Default()
	return lo.Map(grants, func(g models.Grant, _ int) Row {
		row := Row{
			ID:           g.ID,
			Title:        g.Title,
			Organization: g.Organization,
			Source:       cat.Source(string(g.Source)),
			Status:       cat.Status(string(g.Status)),
			Amount:       format.AmountCeiling(g.AmountMax),
			Deadline:     format.NotAvailable,
		}
		if g.ApplicationDeadline != nil {
			row.Deadline = format.DateIn(*g.ApplicationDeadline, now.Location())
			row.DeadlineSoon = format.DeadlineSoonAt(*g.ApplicationDeadline, now)
		}
		return row
	})
}

// Stat is one summary card.
type Stat struct {
	Title string
	Value int
	Tone  string // green, orange, blue or purple
}
