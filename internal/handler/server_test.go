package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mutemutemute/excursions/internal/auth"
	"github.com/mutemutemute/excursions/internal/domain"
	"github.com/mutemutemute/excursions/internal/handler"
	"github.com/mutemutemute/excursions/internal/repo"
	"github.com/mutemutemute/excursions/internal/service"
)

const testSecret = "handler-test-secret"

// mockExcursionServicer is a test double for handler.ExcursionServicer.
// Set only the method fields your test needs.
type mockExcursionServicer struct {
	create  func(ctx context.Context, draft domain.ExcursionDraft) (domain.Excursion, error)
	getByID func(ctx context.Context, id int64) (domain.Excursion, error)
	search  func(ctx context.Context, q repo.SearchQuery, page domain.PageParams) ([]domain.Excursion, int64, error)
	update  func(ctx context.Context, id int64, patch domain.ExcursionPatch) (domain.Excursion, error)
	delete  func(ctx context.Context, id int64) (domain.Excursion, error)
}

func (m *mockExcursionServicer) Create(ctx context.Context, d domain.ExcursionDraft) (domain.Excursion, error) {
	return m.create(ctx, d)
}
func (m *mockExcursionServicer) GetByID(ctx context.Context, id int64) (domain.Excursion, error) {
	return m.getByID(ctx, id)
}
func (m *mockExcursionServicer) Search(ctx context.Context, q repo.SearchQuery, page domain.PageParams) ([]domain.Excursion, int64, error) {
	return m.search(ctx, q, page)
}
func (m *mockExcursionServicer) Update(ctx context.Context, id int64, p domain.ExcursionPatch) (domain.Excursion, error) {
	return m.update(ctx, id, p)
}
func (m *mockExcursionServicer) Delete(ctx context.Context, id int64) (domain.Excursion, error) {
	return m.delete(ctx, id)
}

var _ handler.ExcursionServicer = (*mockExcursionServicer)(nil)

// mockRegistrationServicer is a test double for handler.RegistrationServicer.
type mockRegistrationServicer struct {
	register   func(ctx context.Context, actor domain.Actor, excursionDateID int64) (domain.Registration, error)
	update     func(ctx context.Context, actor domain.Actor, id int64, patch domain.RegistrationPatch) (domain.Registration, error)
	delete     func(ctx context.Context, actor domain.Actor, id int64) (domain.Registration, error)
	listByUser func(ctx context.Context, actor domain.Actor, userID int64, page domain.PageParams) ([]domain.RegistrationDetail, int64, error)
	listAll    func(ctx context.Context, page domain.PageParams) ([]domain.RegistrationDetail, int64, error)
}

func (m *mockRegistrationServicer) Register(ctx context.Context, a domain.Actor, dateID int64) (domain.Registration, error) {
	return m.register(ctx, a, dateID)
}
func (m *mockRegistrationServicer) Update(ctx context.Context, a domain.Actor, id int64, p domain.RegistrationPatch) (domain.Registration, error) {
	return m.update(ctx, a, id, p)
}
func (m *mockRegistrationServicer) Delete(ctx context.Context, a domain.Actor, id int64) (domain.Registration, error) {
	return m.delete(ctx, a, id)
}
func (m *mockRegistrationServicer) ListByUser(ctx context.Context, a domain.Actor, userID int64, page domain.PageParams) ([]domain.RegistrationDetail, int64, error) {
	return m.listByUser(ctx, a, userID, page)
}
func (m *mockRegistrationServicer) ListAll(ctx context.Context, page domain.PageParams) ([]domain.RegistrationDetail, int64, error) {
	return m.listAll(ctx, page)
}

var _ handler.RegistrationServicer = (*mockRegistrationServicer)(nil)

// mockReviewServicer is a test double for handler.ReviewServicer.
type mockReviewServicer struct {
	leave           func(ctx context.Context, actor domain.Actor, draft domain.ReviewDraft) (domain.Review, error)
	listByExcursion func(ctx context.Context, excursionID int64) ([]domain.Review, error)
}

func (m *mockReviewServicer) Leave(ctx context.Context, a domain.Actor, d domain.ReviewDraft) (domain.Review, error) {
	return m.leave(ctx, a, d)
}
func (m *mockReviewServicer) ListByExcursion(ctx context.Context, id int64) ([]domain.Review, error) {
	return m.listByExcursion(ctx, id)
}

var _ handler.ReviewServicer = (*mockReviewServicer)(nil)

// mockAuthServicer is a test double for handler.AuthServicer.
type mockAuthServicer struct {
	register func(ctx context.Context, username, email, password string) (service.TokenPair, error)
	login    func(ctx context.Context, email, password string) (service.TokenPair, error)
	refresh  func(ctx context.Context, rawToken string) (service.TokenPair, error)
}

func (m *mockAuthServicer) Register(ctx context.Context, u, e, p string) (service.TokenPair, error) {
	return m.register(ctx, u, e, p)
}
func (m *mockAuthServicer) Login(ctx context.Context, e, p string) (service.TokenPair, error) {
	return m.login(ctx, e, p)
}
func (m *mockAuthServicer) Refresh(ctx context.Context, t string) (service.TokenPair, error) {
	return m.refresh(ctx, t)
}

var _ handler.AuthServicer = (*mockAuthServicer)(nil)

// ---- helpers ---------------------------------------------------------------

// serverDeps bundles the mocks for newHTTPHandler; leave fields nil when the
// test never routes into them.
type serverDeps struct {
	excursions    handler.ExcursionServicer
	registrations handler.RegistrationServicer
	reviews       handler.ReviewServicer
	auth          handler.AuthServicer
}

// newHTTPHandler wires a Server with the given mocks into the chi route tree,
// mirroring how main.go wires it in production.
func newHTTPHandler(deps serverDeps) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := handler.NewServer(deps.excursions, deps.registrations, deps.reviews, deps.auth, testSecret, log)
	return srv.Routes()
}

func bearer(t *testing.T, actor domain.Actor) string {
	t.Helper()
	tok, err := auth.NewAccessToken(testSecret, actor, time.Minute)
	require.NoError(t, err)
	return "Bearer " + tok.Token
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

// successData decodes a success envelope and returns its data element.
func successData(t *testing.T, body io.Reader) map[string]any {
	t.Helper()
	var resp struct {
		Status string         `json:"status"`
		Data   map[string]any `json:"data"`
	}
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	require.Equal(t, "success", resp.Status)
	return resp.Data
}

var (
	adminActor = domain.Actor{ID: 1, Role: domain.RoleAdmin}
	userActor  = domain.Actor{ID: 2, Role: domain.RoleUser}
)
