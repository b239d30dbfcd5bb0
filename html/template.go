package html

import (
	"embed"
	"html/template"
	"io"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/datatypes"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"expiry": func(d *datatypes.Date) string {
		if d == nil {
			return ""
		}
		return time.Time(*d).Format("2006-01-02")
	},
}

// Template is the echo renderer for server-side pages.
type Template struct {
	Templates *template.Template
}

func (t *Template) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return t.Templates.ExecuteTemplate(w, name, data)
}

// NewRenderer parses the embedded page templates.
func NewRenderer() *Template {
	return &Template{
		Templates: template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")),
	}
}
