package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"renovation/internal/app/config"
	"renovation/internal/app/ds"
	"renovation/internal/app/role"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryBlacklist map[string]bool

func (m memoryBlacklist) WriteJWTToBlacklist(_ context.Context, token string, _ time.Duration) error {
	m[token] = true
	return nil
}

func (m memoryBlacklist) CheckJWTInBlacklist(_ context.Context, token string) error {
	if m[token] {
		return nil
	}
	return errors.New("not found")
}

func testConfig() *config.Config {
	return &config.Config{JWT: config.JWTConfig{
		Token:         "test-secret",
		ExpiresIn:     time.Hour,
		SigningMethod: jwt.SigningMethodHS256,
	}}
}

func newRouter(am *AuthMiddleware, roles ...role.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/secret", am.WithAuthCheck(roles...), func(c *gin.Context) {
		u, ok := GetCurrentUser(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": u.ID, "role": int(u.Role)})
	})
	return r
}

func call(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/secret", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWithAuthCheck(t *testing.T) {
	blacklist := memoryBlacklist{}
	am := NewAuthMiddleware(blacklist, testConfig())

	designer := &ds.User{ID: 5, Role: role.Designer}
	token, expires, err := am.IssueToken(designer, time.Now())
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, time.Minute)

	open := newRouter(am)
	w := call(open, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":5,"role":0}`, w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, call(open, "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(open, "garbage").Code)

	procurement := newRouter(am, role.Procurement...)
	assert.Equal(t, http.StatusForbidden, call(procurement, token).Code)

	manager, _, err := am.IssueToken(&ds.User{ID: 6, Role: role.Manager}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, call(procurement, manager).Code)

	blacklist[token] = true
	assert.Equal(t, http.StatusUnauthorized, call(open, token).Code)
}

func TestExpiredAndForeignTokens(t *testing.T) {
	am := NewAuthMiddleware(nil, testConfig())
	r := newRouter(am)

	expired, _, err := am.IssueToken(&ds.User{ID: 1}, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, call(r, expired).Code)

	other := NewAuthMiddleware(nil, &config.Config{JWT: config.JWTConfig{
		Token: "another-secret", ExpiresIn: time.Hour, SigningMethod: jwt.SigningMethodHS256,
	}})
	foreign, _, err := other.IssueToken(&ds.User{ID: 1}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, call(r, foreign).Code)
}

func TestBearerTokenFromWebsocketQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/ws/projects/1/board?token=abc", nil)
	assert.Equal(t, "", BearerToken(c))

	c.Request.Header.Set("Upgrade", "websocket")
	assert.Equal(t, "abc", BearerToken(c))
}
