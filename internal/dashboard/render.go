package dashboard

import (
	"embed"
	"errors"
	"html/template"
	"io"
	"io/fs"
)

//go:embed templates/*.html
var viewsFS embed.FS

var dashboardTmpl *template.Template

func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	dashboardTmpl, err = template.ParseFS(sub, "*.html")
	return err
}

// LoadTemplates parses the embedded templates. Call it during startup; the
// server must not start if it fails.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

// PageData is the view model of the dashboard page. Report and Chart are
// nil until a prediction has been requested.
type PageData struct {
	Title  string
	Report *Report
	Chart  *Chart
}

// NewPageData builds the view model, laying out the chart when a report is given.
func NewPageData(report *Report) *PageData {
	data := &PageData{Title: "Singapore Heat Stress Predictor", Report: report}
	if report != nil {
		chart := BuildChart(report.Results)
		data.Chart = &chart
	}
	return data
}

func RenderDashboard(w io.Writer, data *PageData) error {
	if dashboardTmpl == nil {
		return errors.New("dashboard template not loaded: call dashboard.LoadTemplates during startup")
	}
	return dashboardTmpl.ExecuteTemplate(w, "dashboard.html", data)
}
