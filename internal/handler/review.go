package handler

import (
	"net/http"

	"github.com/mutemutemute/excursions/internal/domain"
)

// ListReviews handles GET /api/v1/excursions/{id}/reviews.
func (s *Server) ListReviews(w http.ResponseWriter, r *http.Request) {
	excursionID, ok := pathID(r)
	if !ok {
		badRequest(w, "id must be a positive integer")
		return
	}

	reviews, err := s.reviews.ListByExcursion(r.Context(), excursionID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, reviews)
}

// LeaveReview handles POST /api/v1/excursions/{id}/reviews.
// The review is recorded for the calling actor; a user id in the payload is
// ignored. The excursion must exist.
func (s *Server) LeaveReview(w http.ResponseWriter, r *http.Request) {
	excursionID, ok := pathID(r)
	if !ok {
		badRequest(w, "id must be a positive integer")
		return
	}

	var body struct {
		Name    string  `json:"name"`
		Rating  int     `json:"rating"`
		Comment *string `json:"comment"`
	}
	if err := decodeBody(r, &body); err != nil {
		badRequest(w, "request body must be valid JSON")
		return
	}

	rev, err := s.reviews.Leave(r.Context(), actor(r), domain.ReviewDraft{
		ExcursionID: excursionID,
		Name:        body.Name,
		Rating:      body.Rating,
		Comment:     body.Comment,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, rev)
}
