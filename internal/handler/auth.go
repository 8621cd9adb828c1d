package handler

import (
	"net/http"
	"time"

	"github.com/mutemutemute/excursions/internal/service"
)

// tokenResponse is the success payload of register, login, and refresh.
type tokenResponse struct {
	AccessToken  string    `json:"access_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	RefreshToken string    `json:"refresh_token"`
	UserID       int64     `json:"user_id"`
	Username     string    `json:"username"`
	Role         string    `json:"role"`
}

func tokenPairToResponse(p service.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken:  p.Access.Token,
		ExpiresAt:    p.Access.Exp,
		RefreshToken: p.Refresh.Raw,
		UserID:       p.User.ID,
		Username:     p.User.Username,
		Role:         string(p.User.Role),
	}
}

// RegisterAccount handles POST /api/v1/auth/register.
func (s *Server) RegisterAccount(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &body); err != nil {
		badRequest(w, "request body must be valid JSON")
		return
	}

	pair, err := s.auth.Register(r.Context(), body.Username, body.Email, body.Password)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, tokenPairToResponse(pair))
}

// Login handles POST /api/v1/auth/login.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &body); err != nil {
		badRequest(w, "request body must be valid JSON")
		return
	}

	pair, err := s.auth.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, tokenPairToResponse(pair))
}

// Refresh handles POST /api/v1/auth/refresh. The presented refresh token is
// consumed and a new pair comes back.
func (s *Server) Refresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := decodeBody(r, &body); err != nil || body.RefreshToken == "" {
		badRequest(w, "refresh_token is required")
		return
	}

	pair, err := s.auth.Refresh(r.Context(), body.RefreshToken)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, tokenPairToResponse(pair))
}
