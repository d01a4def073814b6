package server

import (
	"net/http"

	"github.com/bobmcallan/nepsewatch/internal/models"
)

// handleQuotes handles GET /quotes and its /api aliases. Each request runs a
// fetch cycle; concurrent requests share one outbound fetch.
func (s *Server) handleQuotes(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	if r.Method == http.MethodHead {
		// HEAD never starts a cycle.
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		return
	}

	quotes, err := s.app.QuoteService.GetQuotes(r.Context())
	if err != nil {
		s.logger.Warn().Err(err).Str("path", r.URL.Path).Msg("Quote cycle failed")
		WriteCycleError(w, err)
		return
	}
	if quotes == nil {
		quotes = []models.Quote{}
	}
	WriteJSON(w, http.StatusOK, quotes)
}
