package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"

	"github.com/mutemutemute/excursions/internal/domain"
)

// csvHeaders defines the column names written as the first row of the
// registrations CSV export.
var csvHeaders = []string{
	"id", "username", "email", "excursion", "date", "time", "status", "created_at",
}

// CreateRegistration handles POST /api/v1/registrations.
// The registration is created for the calling actor and always starts as
// Pending; any user id or status in the payload is ignored.
func (s *Server) CreateRegistration(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ExcursionDateID int64 `json:"excursion_date_id"`
	}
	if err := decodeBody(r, &body); err != nil {
		badRequest(w, "request body must be valid JSON")
		return
	}

	reg, err := s.registrations.Register(r.Context(), actor(r), body.ExcursionDateID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, reg)
}

// UpdateRegistration handles PATCH /api/v1/registrations/{id}.
// What the patch may carry depends on who is calling: admins send "status",
// the owning user sends "excursion_date_id". The service rejects anything
// outside the caller's permitted field.
func (s *Server) UpdateRegistration(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "id must be a positive integer")
		return
	}

	var patch domain.RegistrationPatch
	if err := decodeBody(r, &patch); err != nil {
		badRequest(w, "request body must be valid JSON")
		return
	}

	reg, err := s.registrations.Update(r.Context(), actor(r), id, patch)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, reg)
}

// DeleteRegistration handles DELETE /api/v1/registrations/{id}.
// Admins may delete any registration; a regular caller only their own.
func (s *Server) DeleteRegistration(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "id must be a positive integer")
		return
	}

	reg, err := s.registrations.Delete(r.Context(), actor(r), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, reg)
}

// ListRegistrations handles GET /api/v1/registrations (admin only).
// Without ?page=/?limit= the full list comes back; with both, one page plus
// the unfiltered total. Use ?format=csv to download the full list as CSV.
func (s *Server) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("format") == "csv" {
		s.exportRegistrationsCSV(w, r)
		return
	}

	page := domain.NewPageParams(queryInt(r, "limit"), offsetFromQuery(r))
	details, total, err := s.registrations.ListAll(r.Context(), page)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondPage(w, http.StatusOK, details, total)
}

// ListUserRegistrations handles GET /api/v1/users/{id}/registrations.
// Admins may list anyone's registrations; a regular caller only their own.
func (s *Server) ListUserRegistrations(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r)
	if !ok {
		badRequest(w, "id must be a positive integer")
		return
	}

	page := domain.NewPageParams(queryInt(r, "limit"), offsetFromQuery(r))
	details, total, err := s.registrations.ListByUser(r.Context(), actor(r), userID, page)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondPage(w, http.StatusOK, details, total)
}

// exportRegistrationsCSV streams every registration as a CSV attachment.
func (s *Server) exportRegistrationsCSV(w http.ResponseWriter, r *http.Request) {
	details, _, err := s.registrations.ListAll(r.Context(), domain.PageParams{})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	//nolint:errcheck — bytes.Buffer.Write never returns an error.
	cw.Write(csvHeaders)
	for _, d := range details {
		//nolint:errcheck
		cw.Write(registrationToCSVRecord(d))
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="registrations.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// registrationToCSVRecord encodes one joined registration row as a flat
// string slice in csvHeaders order.
func registrationToCSVRecord(d domain.RegistrationDetail) []string {
	return []string{
		strconv.FormatInt(d.ID, 10),
		d.Username,
		d.Email,
		d.ExcursionName,
		d.Date,
		d.Time,
		string(d.Status),
		d.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
	}
}

// offsetFromQuery resolves ?page=/?limit= into a zero-based offset pointer
// for NewPageParams, or nil when either parameter is absent.
func offsetFromQuery(r *http.Request) *int {
	page := queryInt(r, "page")
	limit := queryInt(r, "limit")
	if page == nil || limit == nil || *page < 1 || *limit < 1 {
		return nil
	}
	offset := (*page - 1) * *limit
	return &offset
}
