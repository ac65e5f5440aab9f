package api

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/microcosm-cc/bluemonday"

	"github.com/david/grantdraft/internal/dashboard"
	"github.com/david/grantdraft/internal/format"
)

// Template functions available in all templates.
var templateFuncs = template.FuncMap{
	"count": func(n int) string {
		return format.Count(n)
	},
	"toneClass": func(tone string) string {
		switch tone {
		case "green":
			return "text-green-600"
		case "orange":
			return "text-orange-600"
		case "blue":
			return "text-blue-600"
		case "purple":
			return "text-purple-600"
		default:
			return "text-gray-900"
		}
	},
	"seq": func(n int) []int {
		result := make([]int, n)
		for i := range result {
			result[i] = i
		}
		return result
	},
	"safeText":     sanitizeText,
	"text":         uiText,
	"skeletonRows": func() int { return dashboard.SkeletonRows },
}

// pageText is the shared interface text the templates refer to by name.
var pageText = map[string]string{
	"AppTitle":           dashboard.AppTitle,
	"AppSubtitle":        dashboard.AppSubtitle,
	"LabelLastUpdated":   dashboard.LabelLastUpdated,
	"LabelSync":          dashboard.LabelSync,
	"LabelSyncing":       dashboard.LabelSyncing,
	"LabelBack":          dashboard.LabelBack,
	"LabelPrev":          dashboard.LabelPrev,
	"LabelNext":          dashboard.LabelNext,
	"PlaceholderKeyword": dashboard.PlaceholderKeyword,
	"ColSource":          dashboard.ColSource,
	"ColTitle":           dashboard.ColTitle,
	"ColOrganization":    dashboard.ColOrganization,
	"ColAmount":          dashboard.ColAmount,
	"ColDeadline":        dashboard.ColDeadline,
	"ColStatus":          dashboard.ColStatus,
	"SectionPeriod":      dashboard.SectionPeriod,
	"SectionAmount":      dashboard.SectionAmount,
	"SectionLinks":       dashboard.SectionLinks,
	"SectionSummary":     dashboard.SectionSummary,
	"SectionAudience":    dashboard.SectionAudience,
	"SectionRawData":     dashboard.SectionRawData,
	"LinkDetail":         dashboard.LinkDetail,
	"LinkGuideline":      dashboard.LinkGuideline,
	"LabelLastSynced":    dashboard.LabelLastSynced,
	"LabelCreatedAt":     dashboard.LabelCreatedAt,
	"LabelUpdatedAt":     dashboard.LabelUpdatedAt,
}

func uiText(name string) (string, error) {
	t, ok := pageText[name]
	if !ok {
		return "", fmt.Errorf("unknown text %q", name)
	}
	return t, nil
}

// textPolicy strips every tag from scraped free text. Line breaks are
// kept by the whitespace-pre-wrap style of the containers.
var textPolicy = bluemonday.StrictPolicy()

func sanitizeText(s string) template.HTML {
	return template.HTML(textPolicy.Sanitize(s))
}

// Renderer renders the dashboard pages. Every page is parsed once
// together with the layout.
type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	layout, ok := templates["layout"]
	if !ok {
		return nil, fmt.Errorf("layout template not found")
	}

	r := &Renderer{pages: make(map[string]*template.Template)}
	for name, content := range templates {
		if name == "layout" {
			continue
		}
		tmpl, err := template.New("layout").Funcs(templateFuncs).Parse(layout)
		if err != nil {
			return nil, fmt.Errorf("parse layout: %w", err)
		}
		if _, err := tmpl.New("content").Parse(content); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[name] = tmpl
	}
	return r, nil
}

// Render implements echo.Renderer.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("template not found: %s", name)
	}
	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err := io.WriteString(w, buf.String())
	return err
}
