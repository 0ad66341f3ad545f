package web

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/WessleyAI/showroom/engine/carquery"
	"github.com/WessleyAI/showroom/engine/cascade"
	"github.com/WessleyAI/showroom/engine/inventory"
)

//go:embed templates/*.html
var templateFS embed.FS

var fragments = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Form names accepted by the cascade endpoints.
const (
	FormInventory = "inventory"
	FormTestDrive = "test-drive"
)

func labelsFor(form string) (cascade.Labels, bool) {
	switch form {
	case "", FormInventory:
		return cascade.InventoryLabels, true
	case FormTestDrive:
		return cascade.TestDriveLabels, true
	}
	return cascade.Labels{}, false
}

func selectionOf(r *http.Request) cascade.Selection {
	q := r.URL.Query()
	return cascade.Selection{
		Year:  q.Get("year"),
		Make:  q.Get("make"),
		Model: q.Get("model"),
		Trim:  q.Get("trim"),
	}
}

// resolve rebuilds the cascade named by the form query parameter. Lookup
// failures are already reflected in the cascade's failed dropdown, so only
// input errors are written.
func (s *Server) resolve(w http.ResponseWriter, r *http.Request) (*cascade.Cascade, bool) {
	labels, ok := labelsFor(r.URL.Query().Get("form"))
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown form")
		return nil, false
	}
	c := cascade.New(s.Lookup, labels, s.Years)
	err := c.Resolve(r.Context(), selectionOf(r))
	switch {
	case err == nil:
	case errors.Is(err, carquery.ErrLookupFailed):
		s.Logger.Warn("cascade lookup failed", "err", err)
	case writeInputError(w, err):
		return nil, false
	default:
		s.internal(w, "cascade", err)
		return nil, false
	}
	return c, true
}

func (s *Server) handleCascade(w http.ResponseWriter, r *http.Request) {
	c, ok := s.resolve(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type selectView struct {
	ID string
	cascade.Select
}

func (s *Server) handleCascadeFragment(w http.ResponseWriter, r *http.Request) {
	c, ok := s.resolve(w, r)
	if !ok {
		return
	}
	views := []selectView{{"year", c.Year}, {"make", c.Make}, {"model", c.Model}}
	if c.Levels() >= 4 {
		views = append(views, selectView{"trim", c.Trim})
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := fragments.ExecuteTemplate(w, "cascade.html", views); err != nil {
		s.Logger.Error("render cascade", "err", err)
	}
}

// InventoryResponse carries search results, or a banner message when
// there are none.
type InventoryResponse struct {
	Cards   []inventory.Card `json:"cards"`
	Message string           `json:"message,omitempty"`
}

func (s *Server) handleInventory(w http.ResponseWriter, r *http.Request) {
	sel := selectionOf(r)
	year, _ := strconv.Atoi(sel.Year)
	cards, err := s.Inventory.Search(r.Context(), visitor(r), year, sel.Make, sel.Model)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, InventoryResponse{Cards: cards})
	case errors.Is(err, inventory.ErrNoTrims):
		writeJSON(w, http.StatusOK, InventoryResponse{Cards: []inventory.Card{}, Message: inventory.NoTrimsMessage})
	case errors.Is(err, carquery.ErrLookupFailed):
		s.Logger.Warn("inventory lookup failed", "err", err)
		writeJSON(w, http.StatusOK, InventoryResponse{Cards: []inventory.Card{}, Message: inventory.ErrorMessage})
	case writeInputError(w, err):
	default:
		s.internal(w, "inventory", err)
	}
}
