package web

import (
	"net/http"

	"github.com/WessleyAI/showroom/engine/domain"
)

// ToggleResponse reports a vehicle's membership after a toggle.
type ToggleResponse struct {
	ID       string `json:"id"`
	Favorite bool   `json:"favorite"`
}

func (s *Server) handleFavorites(w http.ResponseWriter, r *http.Request) {
	list, err := s.Favorites.List(r.Context(), visitor(r))
	if err != nil {
		s.internal(w, "list favorites", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	var v domain.Vehicle
	if !decode(w, r, &v) {
		return
	}
	v = v.WithDefaults().WithID()
	if err := s.Years.Validate(v); err != nil {
		writeInputError(w, err)
		return
	}
	added, err := s.Favorites.Toggle(r.Context(), visitor(r), v)
	if err != nil {
		s.internal(w, "toggle favorite", err)
		return
	}
	if s.Metrics != nil {
		s.Metrics.FavoriteToggles.Inc()
	}
	writeJSON(w, http.StatusOK, ToggleResponse{ID: v.ID, Favorite: added})
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	if err := s.Favorites.Remove(r.Context(), visitor(r), r.PathValue("id")); err != nil {
		s.internal(w, "remove favorite", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := s.Favorites.Clear(r.Context(), visitor(r)); err != nil {
		s.internal(w, "clear favorites", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
