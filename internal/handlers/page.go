package handlers

import (
	"embed"
	"html/template"

	"github.com/Brownie44l1/leafdoc/internal/i18n"
	"github.com/Brownie44l1/leafdoc/internal/report"
)

const pageTemplate = "page.html"

//go:embed templates/*.html
var templateFS embed.FS

type langOption struct {
	Code     string
	Name     string
	Selected bool
}

type page struct {
	Lang      string
	T         i18n.Strings
	Languages []langOption
	Report    *report.Report
	Error     string
}

func newPage(lang i18n.Language, r *report.Report, errMsg string) page {
	opts := make([]langOption, 0, len(i18n.All()))
	for _, l := range i18n.All() {
		opts = append(opts, langOption{Code: l.Code(), Name: l.Name(), Selected: l == lang})
	}
	return page{
		Lang:      lang.Code(),
		T:         lang.Strings(),
		Languages: opts,
		Report:    r,
		Error:     errMsg,
	}
}

func loadTemplates() *template.Template {
	return template.Must(template.New("").Funcs(template.FuncMap{
		"inc": func(i int) int { return i + 1 },
	}).ParseFS(templateFS, "templates/*.html"))
}
