package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mutemutemute/excursions/internal/domain"
	"github.com/mutemutemute/excursions/internal/repo"
)

func userFixture() domain.User {
	return domain.User{
		Username:     "carol",
		Email:        "carol@example.com",
		PasswordHash: "$2a$04$fakehashfortesting",
		Role:         domain.RoleUser,
	}
}

func TestUserRepo_Create(t *testing.T) {
	tx := newTestTx(t)
	r := repo.NewUserRepo(tx)

	got, err := r.Create(context.Background(), userFixture())

	require.NoError(t, err)
	assert.Positive(t, got.ID)
	assert.Equal(t, "carol", got.Username)
	assert.Equal(t, domain.RoleUser, got.Role)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestUserRepo_Create_DuplicateEmail(t *testing.T) {
	tx := newTestTx(t)
	r := repo.NewUserRepo(tx)
	ctx := context.Background()

	_, err := r.Create(ctx, userFixture())
	require.NoError(t, err)

	dup := userFixture()
	dup.Username = "carol2"
	_, err = r.Create(ctx, dup)

	assert.ErrorIs(t, err, repo.ErrDuplicate)
}

func TestUserRepo_GetByEmail(t *testing.T) {
	tx := newTestTx(t)
	r := repo.NewUserRepo(tx)
	ctx := context.Background()

	created, err := r.Create(ctx, userFixture())
	require.NoError(t, err)

	got, err := r.GetByEmail(ctx, "carol@example.com")

	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.PasswordHash, got.PasswordHash)
}

func TestUserRepo_GetByEmail_NotFound(t *testing.T) {
	tx := newTestTx(t)
	r := repo.NewUserRepo(tx)

	_, err := r.GetByEmail(context.Background(), "nobody@example.com")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserRepo_GetByID(t *testing.T) {
	tx := newTestTx(t)
	r := repo.NewUserRepo(tx)
	ctx := context.Background()

	created, err := r.Create(ctx, userFixture())
	require.NoError(t, err)

	got, err := r.GetByID(ctx, created.ID)

	require.NoError(t, err)
	assert.Equal(t, created.Email, got.Email)
}

// ---- refresh tokens --------------------------------------------------------

func TestTokenRepo_StoreAndConsume(t *testing.T) {
	tx := newTestTx(t)
	users := repo.NewUserRepo(tx)
	tokens := repo.NewTokenRepo(tx)
	ctx := context.Background()

	user, err := users.Create(ctx, userFixture())
	require.NoError(t, err)

	const hash = "aaaabbbbccccddddeeeeffff0000111122223333444455556666777788889999"
	require.NoError(t, tokens.Store(ctx, user.ID, hash, time.Now().Add(time.Hour)))

	userID, err := tokens.Consume(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)

	// consuming is destructive; the same hash can never be replayed
	_, err = tokens.Consume(ctx, hash)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTokenRepo_Consume_Expired(t *testing.T) {
	tx := newTestTx(t)
	users := repo.NewUserRepo(tx)
	tokens := repo.NewTokenRepo(tx)
	ctx := context.Background()

	user, err := users.Create(ctx, userFixture())
	require.NoError(t, err)

	const hash = "expiredexpiredexpiredexpiredexpiredexpiredexpiredexpiredexpired"
	require.NoError(t, tokens.Store(ctx, user.ID, hash, time.Now().Add(-time.Minute)))

	_, err = tokens.Consume(ctx, hash)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTokenRepo_DeleteForUser(t *testing.T) {
	tx := newTestTx(t)
	users := repo.NewUserRepo(tx)
	tokens := repo.NewTokenRepo(tx)
	ctx := context.Background()

	user, err := users.Create(ctx, userFixture())
	require.NoError(t, err)

	require.NoError(t, tokens.Store(ctx, user.ID, "hash-one", time.Now().Add(time.Hour)))
	require.NoError(t, tokens.Store(ctx, user.ID, "hash-two", time.Now().Add(time.Hour)))

	require.NoError(t, tokens.DeleteForUser(ctx, user.ID))

	_, err = tokens.Consume(ctx, "hash-one")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = tokens.Consume(ctx, "hash-two")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
