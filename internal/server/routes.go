package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bobmcallan/nepsewatch/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// Quotes (one live cycle per request)
	mux.HandleFunc("/quotes", s.handleQuotes)
	mux.HandleFunc("/api/quotes", s.handleQuotes)
	mux.HandleFunc("/api/stocks", s.handleQuotes)

	// Feed
	mux.HandleFunc("/api/feed", s.handleFeed)
	mux.HandleFunc("/api/feed/refresh", s.handleFeedRefresh)

	// Securities
	mux.HandleFunc("/api/securities/", s.handleSecurity)
	mux.HandleFunc("/api/securities", s.handleSecurityList)

	// Portfolios
	mux.HandleFunc("/api/portfolio/", s.routePortfolio)
	mux.HandleFunc("/api/portfolio", s.handlePortfolioSave)
}

// routePortfolio dispatches /api/portfolio/{userId}[/valuation].
func (s *Server) routePortfolio(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/portfolio/")
	userID, subpath, _ := strings.Cut(rest, "/")
	if userID == "" {
		WriteErrorWithCode(w, http.StatusBadRequest, "userId is required", CodeInvalidInput)
		return
	}

	switch subpath {
	case "":
		s.handlePortfolioGet(w, r, userID)
	case "valuation":
		s.handlePortfolioValuation(w, r, userID)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"status":      "ok",
		"feed_status": s.app.FeedService.Snapshot().Status,
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
		"uptime":  time.Since(s.app.StartupTime).Round(time.Second).String(),
	})
}
