package middleware

import (
	"time"

	"renovation/internal/app/role"

	"github.com/gin-gonic/gin"
)

const (
	userIDKey      = "userID"
	userRoleKey    = "userRole"
	tokenKey       = "token"
	tokenExpiryKey = "tokenExpiry"
)

// CurrentUser is what WithAuthCheck learned from the token.
type CurrentUser struct {
	ID          uint
	Role        role.Role
	Token       string
	TokenExpiry time.Time
}

// GetCurrentUser returns false on routes without WithAuthCheck.
func GetCurrentUser(c *gin.Context) (CurrentUser, bool) {
	id, ok := c.Get(userIDKey)
	if !ok {
		return CurrentUser{}, false
	}
	u := CurrentUser{ID: id.(uint)}
	if r, ok := c.Get(userRoleKey); ok {
		u.Role = r.(role.Role)
	}
	u.Token = c.GetString(tokenKey)
	u.TokenExpiry = c.GetTime(tokenExpiryKey)
	return u, true
}

// SetCurrentUser is used by tests to skip token parsing.
func SetCurrentUser(c *gin.Context, id uint, r role.Role) {
	c.Set(userIDKey, id)
	c.Set(userRoleKey, r)
}
