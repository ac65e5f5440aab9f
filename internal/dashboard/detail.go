package dashboard

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/david/grantdraft/internal/client"
	"github.com/david/grantdraft/internal/models"
)

// DetailView holds the detail page of one grant. It starts loading and
// ends either loaded or failed; there is no retry.
type DetailView struct {
	ID      string
	Loading bool
	Grant   *models.GrantDetail
	Err     error
}

func NewDetailView(id string) *DetailView {
	return &DetailView{ID: id, Loading: true}
}

// Apply stores the fetch outcome. An empty record, an id that cannot
// exist and a 404 from the API all count as not found.
func (d *DetailView) Apply(g *models.GrantDetail, err error) {
	d.Loading = false
	if NotFound(err) {
		g, err = nil, nil
	}
	if err != nil {
		d.Err = err
		d.Grant = nil
		return
	}
	if g == nil || g.ID == "" {
		d.Grant = nil
		return
	}
	d.Grant = g
}

// Message is the text shown instead of the record, or "" once loaded.
func (d *DetailView) Message() string {
	switch {
	case d.Loading:
		return ""
	case d.Err != nil:
		return MsgFetchFailed
	case d.Grant == nil:
		return MsgNotFound
	}
	return ""
}

// RawJSON pretty-prints the source payload, or "" when there is none.
func (d *DetailView) RawJSON() string {
	if d.Grant == nil || d.Grant.RawData == nil {
		return ""
	}
	data, err := json.MarshalIndent(d.Grant.RawData, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}

// NotFound reports whether err means the grant does not exist, as opposed
// to the lookup failing.
func NotFound(err error) bool {
	return errors.Is(err, ErrInvalidID) || client.StatusCode(err) == http.StatusNotFound
}
