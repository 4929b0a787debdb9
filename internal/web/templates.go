package web

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pages = map[string]*template.Template{}

var pageNames = []string{
	"login.html",
	"signup.html",
	"signup_done.html",
	"results.html",
}

func init() {
	for _, name := range pageNames {
		pages[name] = template.Must(
			template.ParseFS(templatesFS, "templates/layout.html", "templates/"+name))
	}
}

// Render writes the named page wrapped in the shared layout. Unknown names are
// a programming error and return 500.
func Render(w http.ResponseWriter, name string, data interface{}) {
	t, ok := pages[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.ExecuteTemplate(w, "layout", data); err != nil {
		slog.Error("template execute", "template", name, "error", err)
	}
}
