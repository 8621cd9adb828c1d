// Package handler implements the HTTP layer of the excursions API.
// All handlers are methods on Server and are split into domain-specific
// files (excursion.go, registration.go, etc.) sharing the same struct.
// Responses use a uniform envelope: {"status":"success","data":...} on
// success and {"status":"error","message":...} on failure.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mutemutemute/excursions/internal/domain"
	"github.com/mutemutemute/excursions/internal/middleware"
	"github.com/mutemutemute/excursions/internal/repo"
	"github.com/mutemutemute/excursions/internal/service"
)

// ExcursionServicer defines the business operations the excursion handlers
// depend on. Defining the interface here (in the consumer package) lets
// handler tests inject a mock without touching the database or service layer.
type ExcursionServicer interface {
	Create(ctx context.Context, draft domain.ExcursionDraft) (domain.Excursion, error)
	GetByID(ctx context.Context, id int64) (domain.Excursion, error)
	Search(ctx context.Context, q repo.SearchQuery, page domain.PageParams) ([]domain.Excursion, int64, error)
	Update(ctx context.Context, id int64, patch domain.ExcursionPatch) (domain.Excursion, error)
	Delete(ctx context.Context, id int64) (domain.Excursion, error)
}

// RegistrationServicer defines the business operations the registration
// handlers depend on.
type RegistrationServicer interface {
	Register(ctx context.Context, actor domain.Actor, excursionDateID int64) (domain.Registration, error)
	Update(ctx context.Context, actor domain.Actor, id int64, patch domain.RegistrationPatch) (domain.Registration, error)
	Delete(ctx context.Context, actor domain.Actor, id int64) (domain.Registration, error)
	ListByUser(ctx context.Context, actor domain.Actor, userID int64, page domain.PageParams) ([]domain.RegistrationDetail, int64, error)
	ListAll(ctx context.Context, page domain.PageParams) ([]domain.RegistrationDetail, int64, error)
}

// ReviewServicer defines the business operations the review handlers depend on.
type ReviewServicer interface {
	Leave(ctx context.Context, actor domain.Actor, draft domain.ReviewDraft) (domain.Review, error)
	ListByExcursion(ctx context.Context, excursionID int64) ([]domain.Review, error)
}

// AuthServicer defines the account operations the auth handlers depend on.
type AuthServicer interface {
	Register(ctx context.Context, username, email, password string) (service.TokenPair, error)
	Login(ctx context.Context, email, password string) (service.TokenPair, error)
	Refresh(ctx context.Context, rawToken string) (service.TokenPair, error)
}

// Server holds the handler dependencies. Wire it in main.go and mount
// Routes() on the router.
type Server struct {
	excursions    ExcursionServicer
	registrations RegistrationServicer
	reviews       ReviewServicer
	auth          AuthServicer

	jwtSecret string
	log       *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(excursions ExcursionServicer, registrations RegistrationServicer, reviews ReviewServicer, auth AuthServicer, jwtSecret string, log *slog.Logger) *Server {
	return &Server{
		excursions:    excursions,
		registrations: registrations,
		reviews:       reviews,
		auth:          auth,
		jwtSecret:     jwtSecret,
		log:           log,
	}
}

// Routes returns the full API route tree. Excursion reads are public;
// excursion writes require the admin role; registrations and reviews require
// an authenticated caller.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.RegisterAccount)
			r.Post("/login", s.Login)
			r.Post("/refresh", s.Refresh)
		})

		r.Route("/excursions", func(r chi.Router) {
			r.Get("/", s.SearchExcursions)
			r.Get("/{id}", s.GetExcursion)
			r.Get("/{id}/reviews", s.ListReviews)

			r.Group(func(r chi.Router) {
				r.Use(middleware.NewAuthHandler(s.jwtSecret))
				r.Post("/{id}/reviews", s.LeaveReview)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.NewAuthHandler(s.jwtSecret), middleware.RequireAdmin())
				r.Post("/", s.CreateExcursion)
				r.Patch("/{id}", s.UpdateExcursion)
				r.Delete("/{id}", s.DeleteExcursion)
			})
		})

		r.Route("/registrations", func(r chi.Router) {
			r.Use(middleware.NewAuthHandler(s.jwtSecret))

			r.Post("/", s.CreateRegistration)
			r.Patch("/{id}", s.UpdateRegistration)
			r.Delete("/{id}", s.DeleteRegistration)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin())
				r.Get("/", s.ListRegistrations)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.NewAuthHandler(s.jwtSecret))
			r.Get("/users/{id}/registrations", s.ListUserRegistrations)
		})
	})

	return r
}

// actor returns the authenticated caller. Routes behind the auth middleware
// always carry one; the zero Actor on unguarded routes fails every role check.
func actor(r *http.Request) domain.Actor {
	a, _ := middleware.ActorFromContext(r.Context())
	return a
}
