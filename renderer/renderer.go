// Package renderer renders tracking, backtest and rolling reports to markdown.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed templates/*.md
var templatesFS embed.FS

var templates, _ = fs.Sub(templatesFS, "templates")

// RenderTrack renders a tracking run report.
func RenderTrack(r *TrackReport) string {
	partials := map[string]string{
		"track_title":        "track_title.md",
		"track_assets":       "track_assets.md",
		"track_correlations": "track_correlations.md",
		"stats":              "stats.md",
	}
	return renderTemplate("track", "track.md", partials, r)
}

// RenderBacktest renders a backtest report.
func RenderBacktest(r *BacktestReport) string {
	partials := map[string]string{
		"backtest_weights": "backtest_weights.md",
		"stats":            "stats.md",
	}
	return renderTemplate("backtest", "backtest.md", partials, r)
}

// RenderRolling renders rolling statistics reports one after the other.
func RenderRolling(reports ...*RollingReport) string {
	var b strings.Builder
	for i, r := range reports {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(renderTemplate("rolling", "rolling.md", nil, r))
	}
	return b.String()
}

// RenderLog renders a run log.
func RenderLog(r *LogReport) string {
	return renderTemplate("log", "log.md", nil, r)
}

// renderTemplate renders a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		content, err := fs.ReadFile(templates, file)
		if err != nil {
			return fmt.Sprintf("error reading partial template %q: %v", file, err)
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
