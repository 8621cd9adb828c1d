package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/mutemutemute/excursions/internal/auth"
	"github.com/mutemutemute/excursions/internal/domain"
	"github.com/mutemutemute/excursions/internal/repo"
)

// TokenPair is what a successful register/login/refresh hands back: a signed
// access token and an opaque refresh token, each with its expiry.
type TokenPair struct {
	User    domain.User
	Access  auth.AccessToken
	Refresh auth.RefreshToken
}

// AuthService implements account registration, login, and refresh-token
// rotation. Passwords are stored as bcrypt hashes; refresh tokens as SHA-256
// digests.
type AuthService struct {
	users  repo.UserRepo
	tokens repo.TokenRepo

	secret     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	bcryptCost int
}

// NewAuthService constructs an AuthService.
func NewAuthService(users repo.UserRepo, tokens repo.TokenRepo, secret string, accessTTL, refreshTTL time.Duration, bcryptCost int) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		bcryptCost: bcryptCost,
	}
}

// Register creates a user account and immediately issues a token pair.
// New accounts always get the "user" role; admins are provisioned out of
// band, never through this endpoint.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (TokenPair, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if len(username) < 3 {
		return TokenPair{}, fmt.Errorf("%w: username must be at least 3 characters long", domain.ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return TokenPair{}, fmt.Errorf("%w: email must be a valid address", domain.ErrValidation)
	}
	if len(password) < 8 {
		return TokenPair{}, fmt.Errorf("%w: password must be at least 8 characters long", domain.ErrValidation)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return TokenPair{}, fmt.Errorf("service.AuthService.Register: %w", err)
	}

	user, err := s.users.Create(ctx, domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	})
	if err != nil {
		return TokenPair{}, fmt.Errorf("service.AuthService.Register: %w", err)
	}
	return s.issuePair(ctx, user)
}

// Login verifies the credentials and issues a fresh token pair.
// A missing account and a wrong password both come back as ErrForbidden so
// the response does not reveal which half was wrong.
func (s *AuthService) Login(ctx context.Context, email, password string) (TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return TokenPair{}, fmt.Errorf("%w: invalid credentials", domain.ErrForbidden)
	}
	if !auth.VerifyPassword(user.PasswordHash, password) {
		return TokenPair{}, fmt.Errorf("%w: invalid credentials", domain.ErrForbidden)
	}
	return s.issuePair(ctx, user)
}

// Refresh rotates a refresh token: the presented token is consumed (it can
// never be replayed) and a new pair is issued for its owner.
func (s *AuthService) Refresh(ctx context.Context, rawToken string) (TokenPair, error) {
	userID, err := s.tokens.Consume(ctx, auth.HashRefresh(rawToken))
	if err != nil {
		return TokenPair{}, fmt.Errorf("%w: invalid refresh token", domain.ErrForbidden)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return TokenPair{}, fmt.Errorf("service.AuthService.Refresh: %w", err)
	}
	return s.issuePair(ctx, user)
}

// issuePair signs an access token for the user and stores a new refresh
// token hash.
func (s *AuthService) issuePair(ctx context.Context, user domain.User) (TokenPair, error) {
	access, err := auth.NewAccessToken(s.secret, domain.Actor{ID: user.ID, Role: user.Role}, s.accessTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("service.AuthService: %w", err)
	}
	refresh := auth.NewRefreshToken(s.refreshTTL)
	if err := s.tokens.Store(ctx, user.ID, auth.HashRefresh(refresh.Raw), refresh.Exp); err != nil {
		return TokenPair{}, fmt.Errorf("service.AuthService: %w", err)
	}
	return TokenPair{User: user, Access: access, Refresh: refresh}, nil
}
