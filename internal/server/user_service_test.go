package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghosthawk/ghosthawk/internal/db"
	"github.com/ghosthawk/ghosthawk/internal/types"
)

func TestConvertDBUserToTypesUser(t *testing.T) {
	t.Run("valid user", func(t *testing.T) {
		now := time.Now()
		dbUser := &db.User{
			ID:           uuid.New(),
			Email:        "john@example.com",
			FirstName:    "John",
			LastName:     "Doe",
			PasswordHash: "hashed-password",
			PasswordSet:  true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		typesUser := convertDBUserToTypesUser(dbUser)
		require.NotNil(t, typesUser)
		assert.Equal(t, dbUser.ID, typesUser.ID)
		assert.Equal(t, dbUser.Email, typesUser.Email)
		assert.Equal(t, dbUser.FirstName, typesUser.FirstName)
		assert.Equal(t, dbUser.LastName, typesUser.LastName)
		assert.Equal(t, dbUser.CreatedAt, typesUser.CreatedAt)
	})

	t.Run("nil user", func(t *testing.T) {
		assert.Nil(t, convertDBUserToTypesUser(nil))
	})
}

// racingStore reports the email as free but loses the insert to a concurrent registration.
type racingStore struct {
	*memStore
}

func (r racingStore) CheckEmailExists(context.Context, string) (bool, error) {
	return false, nil
}

func (r racingStore) CreateUser(context.Context, string, string, string, string) (uuid.UUID, error) {
	return uuid.Nil, db.ErrEmailTaken
}

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("stores a peppered bcrypt hash", func(t *testing.T) {
		store := newMemStore()
		service := NewUserService(store, testPasswordConfig())

		user, err := service.Register(ctx, &types.RegisterRequest{Email: "jane@example.com", Password: "correct-horse"})
		require.NoError(t, err)

		stored := store.users[user.ID]
		require.NotNil(t, stored)
		assert.NotEqual(t, "correct-horse", stored.PasswordHash)
		assert.True(t, testPasswordConfig().VerifyPassword("correct-horse", stored.PasswordHash))
	})

	t.Run("existing email", func(t *testing.T) {
		store := newMemStore()
		service := NewUserService(store, testPasswordConfig())
		_, err := service.Register(ctx, &types.RegisterRequest{Email: "jane@example.com", Password: "correct-horse"})
		require.NoError(t, err)

		_, err = service.Register(ctx, &types.RegisterRequest{Email: "jane@example.com", Password: "correct-horse"})
		var conflict *ErrEmailAlreadyExists
		assert.ErrorAs(t, err, &conflict)
	})

	t.Run("lost insert race", func(t *testing.T) {
		service := NewUserService(racingStore{newMemStore()}, testPasswordConfig())
		_, err := service.Register(ctx, &types.RegisterRequest{Email: "jane@example.com", Password: "correct-horse"})
		var conflict *ErrEmailAlreadyExists
		assert.ErrorAs(t, err, &conflict)
	})

	t.Run("store failure is wrapped", func(t *testing.T) {
		store := newMemStore()
		store.err = errors.New("connection refused")
		service := NewUserService(store, testPasswordConfig())
		_, err := service.Register(ctx, &types.RegisterRequest{Email: "jane@example.com", Password: "correct-horse"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to check email existence")
	})
}

func TestUserService_Login(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	service := NewUserService(store, testPasswordConfig())
	registered, err := service.Register(ctx, &types.RegisterRequest{Email: "jane@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	user, err := service.Login(ctx, &types.LoginRequest{Email: "jane@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	var invalid *ErrInvalidCredentials
	_, err = service.Login(ctx, &types.LoginRequest{Email: "jane@example.com", Password: "wrong"})
	assert.ErrorAs(t, err, &invalid)

	_, err = service.Login(ctx, &types.LoginRequest{Email: "nobody@example.com", Password: "correct-horse"})
	assert.ErrorAs(t, err, &invalid)

	t.Run("account without password", func(t *testing.T) {
		id, err := store.CreateUser(ctx, "sso@example.com", "", "", "")
		require.NoError(t, err)
		require.False(t, store.users[id].PasswordSet)

		_, err = service.Login(ctx, &types.LoginRequest{Email: "sso@example.com", Password: ""})
		assert.ErrorAs(t, err, &invalid)
	})
}

func TestUserService_GetUser(t *testing.T) {
	service := NewUserService(newMemStore(), testPasswordConfig())
	_, err := service.GetUser(context.Background(), uuid.New())
	var notFound *ErrNotFound
	assert.ErrorAs(t, err, &notFound)
}
