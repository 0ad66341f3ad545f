// Package web serves the showroom's JSON API and HTML fragments.
package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/WessleyAI/showroom/engine/carquery"
	"github.com/WessleyAI/showroom/engine/cascade"
	"github.com/WessleyAI/showroom/engine/domain"
	"github.com/WessleyAI/showroom/engine/favorites"
	"github.com/WessleyAI/showroom/engine/inventory"
	"github.com/WessleyAI/showroom/engine/pricing"
	"github.com/WessleyAI/showroom/engine/schedule"
	"github.com/WessleyAI/showroom/pkg/metrics"
	"github.com/WessleyAI/showroom/pkg/mid"
)

// Deps are the services behind the handlers. Metrics may be nil.
type Deps struct {
	Lookup    carquery.Lookup
	Years     domain.YearRange
	Favorites *favorites.Store
	Inventory *inventory.Service
	Prices    *pricing.Loader
	Schedule  *schedule.Service
	Metrics   *metrics.Showroom
	Logger    *slog.Logger
}

// Server holds the handlers. Every handler reads the visitor id set by
// mid.Visitor.
type Server struct {
	Deps
}

// New creates a Server.
func New(d Deps) *Server {
	return &Server{Deps: d}
}

// Register mounts every route on mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", handleHealth)

	mux.HandleFunc("GET /api/cascade", s.handleCascade)
	mux.HandleFunc("GET /fragments/cascade", s.handleCascadeFragment)
	mux.HandleFunc("GET /api/inventory", s.handleInventory)

	mux.HandleFunc("GET /api/favorites", s.handleFavorites)
	mux.HandleFunc("POST /api/favorites/toggle", s.handleToggle)
	mux.HandleFunc("DELETE /api/favorites/{id}", s.handleRemove)
	mux.HandleFunc("DELETE /api/favorites", s.handleClear)

	mux.HandleFunc("GET /api/compare", s.handleCompare)
	mux.HandleFunc("GET /api/compare/prices", s.handlePrices)
	mux.HandleFunc("GET /compare", s.handleCompareFragment)

	mux.HandleFunc("POST /api/test-drive", s.handleTestDrive)
	mux.HandleFunc("POST /api/schedule", s.handleQuick)
	mux.HandleFunc("GET /api/schedule/prefill", s.handlePrefill)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func visitor(r *http.Request) string {
	return mid.VisitorID(r.Context())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeInputError answers 400 for validation failures and unknown
// dropdown values. It reports false for any other error.
func writeInputError(w http.ResponseWriter, err error) bool {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: ve.Wrapped.Error(), Field: ve.Field})
	case errors.Is(err, cascade.ErrUnknownOption):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		return false
	}
	return true
}

func (s *Server) internal(w http.ResponseWriter, msg string, err error) {
	s.Logger.Error(msg, "err", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
