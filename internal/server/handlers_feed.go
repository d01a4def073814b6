package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bobmcallan/nepsewatch/internal/models"
	"github.com/bobmcallan/nepsewatch/internal/services/feed"
)

// handleFeed handles GET /api/feed.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, s.app.FeedService.Snapshot())
}

// handleFeedRefresh handles POST /api/feed/refresh.
func (s *Server) handleFeedRefresh(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if err := s.app.FeedService.Refresh(r.Context()); err != nil {
		if errors.Is(err, feed.ErrRefreshInProgress) {
			WriteErrorWithCode(w, http.StatusConflict, err.Error(), CodeRefreshInProgress)
			return
		}
		WriteCycleError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, s.app.FeedService.Snapshot())
}

// handleSecurityList handles GET /api/securities.
func (s *Server) handleSecurityList(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	securities := s.app.Catalog.All()
	if securities == nil {
		securities = []models.Security{}
	}
	WriteJSON(w, http.StatusOK, securities)
}

// handleSecurity handles GET /api/securities/{symbol}.
func (s *Server) handleSecurity(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	symbol := strings.TrimSpace(PathParam(r, "/api/securities/", ""))
	if symbol == "" {
		s.handleSecurityList(w, r)
		return
	}
	sec, ok := s.app.Catalog.Lookup(symbol)
	if !ok {
		WriteErrorWithCode(w, http.StatusNotFound, "unknown symbol: "+symbol, CodeNotFound)
		return
	}
	WriteJSON(w, http.StatusOK, sec)
}
