package server

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghosthawk/ghosthawk/internal/types"
)

func register(t *testing.T, s *Server, email, password string) types.LoginResponse {
	t.Helper()
	w := do(t, s, http.MethodPost, "/api/auth/register", map[string]string{
		"email":     email,
		"password":  password,
		"firstName": "Jane",
		"lastName":  "Doe",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeBody[types.LoginResponse](t, w)
}

func TestAuthHandler_Register(t *testing.T) {
	s := newTestServer(t, newMemStore())

	resp := register(t, s, "Jane@Example.com", "correct-horse")
	require.NotNil(t, resp.User)
	assert.Equal(t, "jane@example.com", resp.User.Email)
	assert.Equal(t, "Jane", resp.User.FirstName)
	assert.NotEmpty(t, resp.Token)

	claims, err := s.jwtService.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.GetUserID())
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	s := newTestServer(t, newMemStore())
	register(t, s, "jane@example.com", "correct-horse")

	w := do(t, s, http.MethodPost, "/api/auth/register", map[string]string{
		"email":    "JANE@example.com",
		"password": "another-password",
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "email already registered")
}

func TestAuthHandler_Register_Validation(t *testing.T) {
	s := newTestServer(t, newMemStore())

	tests := []struct {
		name  string
		body  any
		field string
	}{
		{"invalid json", "invalid json", "(root)"},
		{"empty body", "", "(root)"},
		{"missing email", map[string]string{"password": "correct-horse"}, "email"},
		{"bad email", map[string]string{"email": "nope", "password": "correct-horse"}, "email"},
		{"short password", map[string]string{"email": "a@b.co", "password": "short"}, "password"},
		{"wrong type", `{"email": 42, "password": "correct-horse"}`, "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, http.MethodPost, "/api/auth/register", tt.body, "")
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			body := decodeBody[errorBody](t, w)
			assert.Equal(t, "Validation failed", body.Error)
			fields := make([]string, 0, len(body.Errors))
			for _, v := range body.Errors {
				fields = append(fields, v.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	s := newTestServer(t, newMemStore())
	registered := register(t, s, "jane@example.com", "correct-horse")

	t.Run("valid credentials", func(t *testing.T) {
		w := do(t, s, http.MethodPost, "/api/auth/login", map[string]string{
			"email":    "Jane@Example.com",
			"password": "correct-horse",
		}, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		resp := decodeBody[types.LoginResponse](t, w)
		assert.Equal(t, registered.User.ID, resp.User.ID)
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("wrong password and unknown email look the same", func(t *testing.T) {
		wrong := do(t, s, http.MethodPost, "/api/auth/login", map[string]string{
			"email":    "jane@example.com",
			"password": "wrong-password",
		}, "")
		unknown := do(t, s, http.MethodPost, "/api/auth/login", map[string]string{
			"email":    "nobody@example.com",
			"password": "wrong-password",
		}, "")
		assert.Equal(t, http.StatusUnauthorized, wrong.Code)
		assert.Equal(t, http.StatusUnauthorized, unknown.Code)
		assert.Equal(t, wrong.Body.String(), unknown.Body.String())
	})
}

func TestAuthHandler_CurrentUser(t *testing.T) {
	s := newTestServer(t, newMemStore())
	registered := register(t, s, "jane@example.com", "correct-horse")

	t.Run("with token", func(t *testing.T) {
		w := do(t, s, http.MethodGet, "/api/auth/user", nil, registered.Token)
		require.Equal(t, http.StatusOK, w.Code)
		user := decodeBody[types.User](t, w)
		assert.Equal(t, registered.User.ID, user.ID)
		assert.NotContains(t, w.Body.String(), "password")
	})

	t.Run("without token", func(t *testing.T) {
		w := do(t, s, http.MethodGet, "/api/auth/user", nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.NotEmpty(t, w.Header().Get("WWW-Authenticate"))
	})

	t.Run("token for a deleted user", func(t *testing.T) {
		w := do(t, s, http.MethodGet, "/api/auth/user", nil, tokenFor(t, s, uuid.New()))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
