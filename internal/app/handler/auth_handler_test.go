package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"renovation/internal/app/dto"
	"renovation/internal/app/role"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) withToken(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/auth/register", nil, dto.RegisterRequest{
		Login:    "nadia",
		Password: "correct-horse",
		FullName: "Nadia Roy",
		Email:    "nadia@studio.test",
		Role:     int(role.Admin),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var registered dto.UserResponse
	data(t, w, &registered)
	assert.Equal(t, "designer", registered.RoleName, "self-registration ignores the requested role")

	w = env.do(http.MethodPost, "/api/auth/register", nil, dto.RegisterRequest{
		Login: "nadia", Password: "another-one", FullName: "Someone Else",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(http.MethodPost, "/api/auth/register", nil, dto.RegisterRequest{
		Login: "short", Password: "123", FullName: "Too Short",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPost, "/api/auth/login", nil, dto.LoginRequest{Login: "nadia", Password: "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = env.do(http.MethodPost, "/api/auth/login", nil, dto.LoginRequest{Login: "nobody", Password: "correct-horse"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodPost, "/api/auth/login", nil, dto.LoginRequest{Login: "nadia", Password: "correct-horse"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login dto.LoginResponse
	data(t, w, &login)
	assert.Equal(t, "Bearer", login.TokenType)
	assert.NotEmpty(t, login.Token)
	assert.Greater(t, login.ExpiresIn, 0)

	w = env.withToken(http.MethodGet, "/api/auth/profile", login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var profile dto.UserResponse
	data(t, w, &profile)
	assert.Equal(t, registered.ID, profile.ID)

	name := "Nadia Roy-Gagnon"
	w = env.withToken(http.MethodPut, "/api/auth/profile", login.Token, dto.UpdateProfileRequest{FullName: &name})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data(t, w, &profile)
	assert.Equal(t, name, profile.FullName)

	// Logout without a blacklist store succeeds and the token keeps working until expiry.
	w = env.withToken(http.MethodPost, "/api/auth/logout", login.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRejectsBadTokens(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/auth/profile", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.withToken(http.MethodGet, "/api/auth/profile", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// A print link is not a login.
	link, err := env.auth.IssuePrintToken("client-quotes/1", time.Now())
	require.NoError(t, err)
	w = env.withToken(http.MethodGet, "/api/auth/profile", link, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUsersAreAdminOnly(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/users", env.manager, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(http.MethodPost, "/api/users", env.admin, dto.RegisterRequest{
		Login: "olivier", Password: "purchasing1", FullName: "Olivier Cote", Role: int(role.Manager),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created dto.UserResponse
	data(t, w, &created)
	assert.Equal(t, "manager", created.RoleName)

	w = env.do(http.MethodGet, "/api/users", env.admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var list struct {
		Items []dto.UserResponse `json:"items"`
		Total int                `json:"total"`
	}
	data(t, w, &list)
	assert.Equal(t, 4, list.Total)
}
