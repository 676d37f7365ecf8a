package http

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/aretw0/shopkeep/pkg/render"
	"github.com/aretw0/shopkeep/pkg/turn"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html.tmpl"))

type cardView struct {
	ID       string
	Title    string
	Price    string
	Label    string
	Class    string
	Quantity int
	Small    bool
}

type sectionView struct {
	Cards []cardView
	Total string
	OOB   bool
}

type pageView struct {
	SessionID string
	Version   string
	Inventory sectionView
	Cart      sectionView
}

type exchangeView struct {
	Message   string
	Reply     string
	Failed    bool
	Changed   bool
	Inventory sectionView
	Cart      sectionView
}

func (s *Server) section(records []render.Record, d render.Density, prefix string) sectionView {
	v := sectionView{Cards: make([]cardView, 0, len(records))}
	for _, rec := range records {
		v.Cards = append(v.Cards, cardView{
			ID:       prefix + cardID(rec.Name),
			Title:    render.Title(rec.Name),
			Price:    s.theme.Price(rec.TotalPrice),
			Label:    d.Label(),
			Class:    render.ColorClass(rec.Color),
			Quantity: rec.Quantity,
			Small:    d == render.Compact,
		})
	}
	return v
}

func (s *Server) sections(p render.Projection, oob bool) (sectionView, sectionView) {
	inv := s.section(p.Inventory, s.theme.Inventory, "inv-")
	cart := s.section(p.Cart, s.theme.Cart, "cart-")
	cart.Total = s.theme.Price(p.CartTotal)
	inv.OOB, cart.OOB = oob, oob
	return inv, cart
}

// cardID turns an item name into an HTML id fragment.
func cardID(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteString("-" + strconv.Itoa(int(r)) + "-")
		}
	}
	return b.String()
}

// index handles GET /.
func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := s.sessionParam(w, r.URL.Query().Get("session_id"))
	if !ok {
		return
	}

	p := render.ProjectCatalog(s.turns.Catalog())
	if r.URL.Query().Has("session_id") {
		var err error
		if p, err = s.turns.View(r.Context(), sessionID); err != nil {
			http.Error(w, err.Error(), statusFor(err))
			s.logger.Error("Index: Load failed", "session_id", sessionID, "err", err)
			return
		}
	}

	view := pageView{SessionID: sessionID, Version: s.version}
	view.Inventory, view.Cart = s.sections(p, false)
	s.execute(w, "page", view)
}

func (s *Server) renderExchange(w http.ResponseWriter, msg string, res *turn.Result) {
	view := exchangeView{
		Message: msg,
		Reply:   res.Reply,
		Failed:  res.Failed(),
		Changed: res.Projection != nil,
	}
	if res.Projection != nil {
		view.Inventory, view.Cart = s.sections(*res.Projection, true)
	}
	s.execute(w, "exchange", view)
}

func (s *Server) execute(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		s.logger.Error("Template execution failed", "template", name, "err", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
