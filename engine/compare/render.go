package compare

import (
	"embed"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templateFS embed.FS

var tmpl = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Render writes t as an HTML fragment.
func Render(w io.Writer, t Table) error {
	return tmpl.ExecuteTemplate(w, "compare.html", struct {
		Table
		EmptyTitle, EmptyHint string
	}{t, EmptyTitle, EmptyHint})
}
