package web

import (
	"errors"
	"net/http"

	"github.com/WessleyAI/showroom/engine/carquery"
	"github.com/WessleyAI/showroom/engine/schedule"
)

func (s *Server) handleTestDrive(w http.ResponseWriter, r *http.Request) {
	var req schedule.TestDriveRequest
	if !decode(w, r, &req) {
		return
	}
	conf, err := s.Schedule.TestDrive(r.Context(), visitor(r), req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, conf)
	case errors.Is(err, carquery.ErrLookupFailed):
		s.Logger.Warn("test drive vehicle not verified", "err", err)
		writeError(w, http.StatusFailedDependency, "vehicle lookup unavailable, please try again")
	case writeInputError(w, err):
	default:
		s.internal(w, "test drive", err)
	}
}

func (s *Server) handleQuick(w http.ResponseWriter, r *http.Request) {
	var req schedule.QuickRequest
	if !decode(w, r, &req) {
		return
	}
	conf, err := s.Schedule.Quick(r.Context(), visitor(r), req)
	if err != nil {
		if !writeInputError(w, err) {
			s.internal(w, "schedule", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, conf)
}

func (s *Server) handlePrefill(w http.ResponseWriter, r *http.Request) {
	p, err := s.Schedule.Prefill(r.Context(), visitor(r))
	if err != nil {
		s.internal(w, "prefill", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
