package notify

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer turns events into mail messages.
type Renderer struct {
	tmpl    *template.Template
	appName string
	loc     *time.Location
}

// NewRenderer parses the embedded templates. An unknown timezone falls back to UTC.
func NewRenderer(appName, timezone string) (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse mail templates: %w", err)
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}
	return &Renderer{tmpl: tmpl, appName: appName, loc: loc}, nil
}

func (r *Renderer) when(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.In(r.loc).Format("02/01/2006, 15:04:05")
}

func (r *Renderer) exec(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// StockOut renders the single-line template for one line and the
// consolidated template for batches.
func (r *Renderer) StockOut(ev StockOutEvent) (Message, error) {
	if len(ev.Lines) == 0 {
		return Message{}, fmt.Errorf("stock-out event has no lines")
	}
	lines := make([]StockOutLine, len(ev.Lines))
	for i, l := range ev.Lines {
		if l.Unit == "" {
			l.Unit = "pcs"
		}
		lines[i] = l
	}

	if len(lines) == 1 {
		html, err := r.exec("stock_out", map[string]interface{}{
			"Line":    lines[0],
			"Shop":    ev.Shop,
			"Time":    r.when(ev.At),
			"AppName": r.appName,
		})
		if err != nil {
			return Message{}, err
		}
		return Message{
			Subject: fmt.Sprintf("📦 Stock Out: %s → %s", lines[0].ItemName, ev.Shop),
			HTML:    html,
		}, nil
	}

	html, err := r.exec("stock_out_multi", map[string]interface{}{
		"Lines":   lines,
		"Count":   plural(len(lines), "item"),
		"Shop":    ev.Shop,
		"Time":    r.when(ev.At),
		"AppName": r.appName,
	})
	if err != nil {
		return Message{}, err
	}
	return Message{
		Subject: fmt.Sprintf("📦 Stock Out: %s → %s", plural(len(lines), "item"), ev.Shop),
		HTML:    html,
	}, nil
}

// DigestLine is a low-stock row in the alert digest.
type DigestLine struct {
	Name     string
	SKU      string
	Unit     string
	Quantity int
	MinStock int
}

// ExpiryLine is an expiring row in the alert digest.
type ExpiryLine struct {
	Name       string
	SKU        string
	ExpiryDate string
	DaysLeft   int
}

// Digest renders the scheduled low-stock/expiry mail.
func (r *Renderer) Digest(low []DigestLine, expiring []ExpiryLine, at time.Time) (Message, error) {
	html, err := r.exec("digest", map[string]interface{}{
		"LowStock": low,
		"Expiring": expiring,
		"Time":     r.when(at),
		"AppName":  r.appName,
	})
	if err != nil {
		return Message{}, err
	}
	return Message{
		Subject: fmt.Sprintf("⚠️ Stock alerts: %s low, %s expiring", plural(len(low), "item"), plural(len(expiring), "item")),
		HTML:    html,
	}, nil
}
