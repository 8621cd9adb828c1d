package handler

import (
	"net/http"

	"github.com/mutemutemute/excursions/internal/domain"
	"github.com/mutemutemute/excursions/internal/repo"
)

// SearchExcursions handles GET /api/v1/excursions.
// Supports ?name= and ?date= substring filters plus ?page= and ?limit=
// (defaults: page=1, limit=10). The response carries the matched page and
// the total count of distinct matches before pagination.
func (s *Server) SearchExcursions(w http.ResponseWriter, r *http.Request) {
	q := repo.SearchQuery{
		Name: r.URL.Query().Get("name"),
		Date: r.URL.Query().Get("date"),
	}
	page := domain.PageFromQuery(queryInt(r, "page"), queryInt(r, "limit"))

	items, total, err := s.excursions.Search(r.Context(), q, page)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondPage(w, http.StatusOK, items, total)
}

// GetExcursion handles GET /api/v1/excursions/{id}.
func (s *Server) GetExcursion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "id must be a positive integer")
		return
	}

	exc, err := s.excursions.GetByID(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, exc)
}

// CreateExcursion handles POST /api/v1/excursions (admin only).
// The excursion and its entire date list are persisted as one atomic unit.
func (s *Server) CreateExcursion(w http.ResponseWriter, r *http.Request) {
	var draft domain.ExcursionDraft
	if err := decodeBody(r, &draft); err != nil {
		badRequest(w, "request body must be valid JSON")
		return
	}

	created, err := s.excursions.Create(r.Context(), draft)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, created)
}

// UpdateExcursion handles PATCH /api/v1/excursions/{id} (admin only).
// Absent fields are left untouched. A "dates" list, when present, replaces
// the owned date set: entries with an id overwrite that row, entries without
// one are added, and owned rows missing from the list are removed.
func (s *Server) UpdateExcursion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "id must be a positive integer")
		return
	}

	var patch domain.ExcursionPatch
	if err := decodeBody(r, &patch); err != nil {
		badRequest(w, "request body must be valid JSON")
		return
	}

	updated, err := s.excursions.Update(r.Context(), id, patch)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, updated)
}

// DeleteExcursion handles DELETE /api/v1/excursions/{id} (admin only).
// Returns the deleted record; its dates and registrations cascade away.
func (s *Server) DeleteExcursion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "id must be a positive integer")
		return
	}

	deleted, err := s.excursions.Delete(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, deleted)
}
