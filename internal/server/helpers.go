package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/bobmcallan/nepsewatch/internal/clients/merolagani"
	"github.com/bobmcallan/nepsewatch/internal/scraper"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeFetchError        = "fetch_error"
	CodeParseError        = "parse_error"
	CodeInternalError     = "internal_error"
	CodeInvalidInput      = "invalid_input"
	CodeNotFound          = "not_found"
	CodeRefreshInProgress = "refresh_in_progress"
)

// ErrorResponse is the standard error format for REST API responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message})
}

// WriteErrorWithCode writes a JSON error response with an error code.
func WriteErrorWithCode(w http.ResponseWriter, statusCode int, message, code string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message, Code: code})
}

// WriteCycleError maps a failed fetch cycle to a 500 whose code tells a
// network failure apart from a page that no longer parses.
func WriteCycleError(w http.ResponseWriter, err error) {
	WriteErrorWithCode(w, http.StatusInternalServerError, err.Error(), cycleErrorCode(err))
}

func cycleErrorCode(err error) string {
	var fe *merolagani.FetchError
	var pe *scraper.ParseError
	switch {
	case errors.As(err, &fe):
		return CodeFetchError
	case errors.As(err, &pe):
		return CodeParseError
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return CodeFetchError
	default:
		return CodeInternalError
	}
}

// RequireMethod validates the HTTP method and returns true if it matches.
// If it doesn't match, it writes a 405 response and returns false.
func RequireMethod(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	return false
}

// DecodeJSON reads and decodes JSON from the request body into v.
// Returns false and writes a 400 error if decoding fails.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Body == nil {
		WriteError(w, http.StatusBadRequest, "Request body is required")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteErrorWithCode(w, http.StatusBadRequest, "Invalid JSON: "+err.Error(), CodeInvalidInput)
		return false
	}
	return true
}

// PathParam extracts a path parameter from the URL path.
// For a pattern like /api/portfolio/{userId}/valuation, calling
// PathParam(r, "/api/portfolio/", "/valuation") extracts the {userId} part.
func PathParam(r *http.Request, prefix, suffix string) string {
	path := r.URL.Path
	if !strings.HasPrefix(path, prefix) {
		return ""
	}
	rest := path[len(prefix):]
	if suffix != "" {
		idx := strings.Index(rest, suffix)
		if idx < 0 {
			return rest
		}
		return rest[:idx]
	}
	// No suffix: return up to the next /
	if idx := strings.Index(rest, "/"); idx >= 0 {
		return rest[:idx]
	}
	return rest
}
