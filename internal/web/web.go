// Package web renders the server-side HTML pages.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"eventsBooking/internal/lib/money"
	"eventsBooking/internal/models"
)

const (
	PageCatalog  = "catalog.html"
	PageEvent    = "event.html"
	PageSuccess  = "success.html"
	PageNotFound = "notfound.html"
)

//go:embed templates/*.html
var templateFS embed.FS

type CatalogData struct {
	Events []models.Event
	// SetupHint is set when the catalog could not be loaded.
	SetupHint bool
}

type EventData struct {
	Event   models.Event
	Venue   *models.Venue
	Tickets []models.TicketType
}

// Currency of the first ticket, used by the page script to format totals.
func (d EventData) Currency() string {
	if len(d.Tickets) == 0 {
		return "usd"
	}
	return d.Tickets[0].Currency
}

type SuccessData struct {
	BookingID string
	QRCode    template.URL
}

type ErrorData struct {
	Title   string
	Message string
}

type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"formatPrice": money.Format,
	"formatDate":  func(t time.Time) string { return t.Format("Monday, January 2, 2006") },
	"formatTime":  func(t time.Time) string { return t.Format("3:04 PM") },
	"join":        strings.Join,
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
}

func New() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template)}

	for _, page := range []string{PageCatalog, PageEvent, PageSuccess, PageNotFound} {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", page, err)
		}
		r.pages[page] = t
	}

	return r, nil
}

func MustNew() *Renderer {
	r, err := New()
	if err != nil {
		panic(err)
	}
	return r
}

// Render executes page into a buffer first so a template error never
// produces a half-written response.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data any) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", page, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)

	return err
}
