package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mutemutemute/excursions/internal/domain"
	"github.com/mutemutemute/excursions/internal/repo"
)

// envelope is the uniform success response shape. Paginated endpoints add
// Total so clients can size their pagers from any page.
type envelope struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
	Total  *int64 `json:"total,omitempty"`
}

// errorEnvelope is the uniform error response shape.
type errorEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// respond writes a success envelope with the given status code.
func respond(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Status: "success", Data: data})
}

// respondPage writes a success envelope carrying one page of results and the
// total count of matches before pagination.
func respondPage(w http.ResponseWriter, status int, data any, total int64) {
	writeJSON(w, status, envelope{Status: "success", Data: data, Total: &total})
}

// respondError maps a service error onto an HTTP status and writes the error
// envelope. Unrecognized errors become an opaque 500; the real cause goes to
// the log, never to the client.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, errorEnvelope{Status: "error", Message: unwrapMessage(err)})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorEnvelope{Status: "error", Message: unwrapMessage(err)})
	case errors.Is(err, domain.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorEnvelope{Status: "error", Message: unwrapMessage(err)})
	case errors.Is(err, domain.ErrConflict), errors.Is(err, repo.ErrDuplicate):
		writeJSON(w, http.StatusConflict, errorEnvelope{Status: "error", Message: unwrapMessage(err)})
	default:
		s.log.ErrorContext(r.Context(), "internal error", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorEnvelope{Status: "error", Message: "internal server error"})
	}
}

// badRequest writes a 400 for requests rejected before reaching the service
// layer (malformed body, non-numeric path ID).
func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorEnvelope{Status: "error", Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// unwrapMessage strips the wrap prefixes from a sentinel error chain so the
// client sees "name must be at least 3 characters long", not the call path
// that produced it. Wrap prefixes all end with ": ".
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		return msg[i+2:]
	}
	return msg
}

// decodeBody decodes a JSON request body into v, rejecting unknown fields.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// pathID parses the {id} URL parameter as a positive int64.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// queryInt returns a pointer to the integer value of the named query
// parameter, or nil when absent or non-numeric.
func queryInt(r *http.Request, name string) *int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}
