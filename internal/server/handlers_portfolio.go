package server

import (
	"errors"
	"net/http"

	"github.com/bobmcallan/nepsewatch/internal/models"
	"github.com/bobmcallan/nepsewatch/internal/services/portfolio"
)

// savePortfolioRequest is the body of POST /api/portfolio.
type savePortfolioRequest struct {
	UserID   string           `json:"userId"`
	Profiles []models.Profile `json:"profiles"`
}

// handlePortfolioGet handles GET /api/portfolio/{userId}. The response is the
// bare profiles array; legacy stock lists come back as a single default profile.
func (s *Server) handlePortfolioGet(w http.ResponseWriter, r *http.Request, userID string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	profiles, err := s.app.PortfolioService.GetProfiles(r.Context(), userID)
	if err != nil {
		s.writePortfolioError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, profiles)
}

// handlePortfolioSave handles POST /api/portfolio.
func (s *Server) handlePortfolioSave(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req savePortfolioRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	saved, err := s.app.PortfolioService.SaveProfiles(r.Context(), req.UserID, req.Profiles)
	if err != nil {
		s.writePortfolioError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, saved)
}

// handlePortfolioValuation handles GET /api/portfolio/{userId}/valuation?profile=.
func (s *Server) handlePortfolioValuation(w http.ResponseWriter, r *http.Request, userID string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	v, err := s.app.PortfolioService.Valuation(r.Context(), userID, r.URL.Query().Get("profile"))
	if err != nil {
		s.writePortfolioError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, v)
}

func (s *Server) writePortfolioError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, portfolio.ErrInvalidInput):
		WriteErrorWithCode(w, http.StatusBadRequest, err.Error(), CodeInvalidInput)
	case errors.Is(err, portfolio.ErrProfileNotFound):
		WriteErrorWithCode(w, http.StatusNotFound, err.Error(), CodeNotFound)
	default:
		s.logger.Error().Err(err).Msg("Portfolio request failed")
		WriteErrorWithCode(w, http.StatusInternalServerError, err.Error(), CodeInternalError)
	}
}
