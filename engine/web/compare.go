package web

import (
	"net/http"

	"github.com/WessleyAI/showroom/engine/compare"
	"github.com/WessleyAI/showroom/engine/pricing"
)

// table builds the comparison of the visitor's favorites. With prices set
// the MSRP row is resolved before returning.
func (s *Server) table(w http.ResponseWriter, r *http.Request, prices bool) (compare.Table, bool) {
	favs, err := s.Favorites.List(r.Context(), visitor(r))
	if err != nil {
		s.internal(w, "list favorites", err)
		return compare.Table{}, false
	}
	t := compare.BuildTable(favs)
	if prices {
		t.FillPrices(s.Prices.Load(r.Context(), t.PriceRequests()))
	}
	return t, true
}

func wantPrices(r *http.Request) bool {
	switch r.URL.Query().Get("prices") {
	case "1", "true":
		return true
	}
	return false
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	t, ok := s.table(w, r, wantPrices(r))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// handlePrices resolves the price of every favorite, for pages that render
// the table first and backfill the MSRP row.
func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	t, ok := s.table(w, r, false)
	if !ok {
		return
	}
	results := s.Prices.Load(r.Context(), t.PriceRequests())
	if results == nil {
		results = []pricing.Result{}
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleCompareFragment(w http.ResponseWriter, r *http.Request) {
	t, ok := s.table(w, r, wantPrices(r))
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := compare.Render(w, t); err != nil {
		s.Logger.Error("render compare", "err", err)
	}
}
