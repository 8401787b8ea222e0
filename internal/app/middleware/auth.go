package middleware

import (
	"context"
	"strings"
	"time"

	"renovation/internal/app/config"
	"renovation/internal/app/ds"
	"renovation/internal/app/role"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
)

// Blacklist keeps logged-out tokens until they expire. CheckJWTInBlacklist
// returns nil when the token IS blacklisted.
type Blacklist interface {
	WriteJWTToBlacklist(ctx context.Context, jwtStr string, ttl time.Duration) error
	CheckJWTInBlacklist(ctx context.Context, jwtStr string) error
}

type AuthMiddleware struct {
	Blacklist Blacklist
	Config    *config.Config
}

// NewAuthMiddleware accepts a nil blacklist when Redis is not configured.
func NewAuthMiddleware(blacklist Blacklist, cfg *config.Config) *AuthMiddleware {
	return &AuthMiddleware{
		Blacklist: blacklist,
		Config:    cfg,
	}
}

// WithAuthCheck lets the request through for the given roles, any role when none is given.
func (am *AuthMiddleware) WithAuthCheck(assignedRoles ...role.Role) gin.HandlerFunc {
	return gin.HandlerFunc(func(gCtx *gin.Context) {
		jwtStr := BearerToken(gCtx)
		if jwtStr == "" {
			gCtx.AbortWithStatus(401)
			return
		}

		if am.Blacklist != nil {
			if err := am.Blacklist.CheckJWTInBlacklist(gCtx.Request.Context(), jwtStr); err == nil {
				gCtx.AbortWithStatus(401)
				return
			}
		}

		token, err := am.parseJWTToken(jwtStr)
		if err != nil {
			gCtx.AbortWithStatus(401)
			return
		}

		claims, ok := token.Claims.(*ds.JWTClaims)
		if !ok || !token.Valid || claims.UserID == 0 {
			gCtx.AbortWithStatus(401)
			return
		}

		if len(assignedRoles) > 0 && !hasRequiredRole(claims.Role, assignedRoles) {
			gCtx.AbortWithStatus(403)
			return
		}

		gCtx.Set(userIDKey, claims.UserID)
		gCtx.Set(userRoleKey, claims.Role)
		gCtx.Set(tokenKey, jwtStr)
		if claims.ExpiresAt > 0 {
			gCtx.Set(tokenExpiryKey, time.Unix(claims.ExpiresAt, 0))
		}

		gCtx.Next()
	})
}

func (am *AuthMiddleware) parseJWTToken(tokenString string) (*jwt.Token, error) {
	return jwt.ParseWithClaims(tokenString, &ds.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != am.Config.JWT.SigningMethod {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(am.Config.JWT.Token), nil
	})
}

// IssueToken signs a token for the user.
func (am *AuthMiddleware) IssueToken(user *ds.User, now time.Time) (string, time.Time, error) {
	expires := now.Add(am.Config.JWT.ExpiresIn)
	token := jwt.NewWithClaims(am.Config.JWT.SigningMethod, &ds.JWTClaims{
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: expires.Unix(),
			IssuedAt:  now.Unix(),
			Issuer:    "renovation",
		},
		UserID: user.ID,
		Role:   user.Role,
	})
	signed, err := token.SignedString([]byte(am.Config.JWT.Token))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

func hasRequiredRole(userRole role.Role, requiredRoles []role.Role) bool {
	for _, requiredRole := range requiredRoles {
		if userRole == requiredRole {
			return true
		}
	}
	return false
}

// BearerToken reads the Authorization header. Browsers cannot set headers on
// websocket handshakes, so upgrades may pass the token as ?token=.
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
		return c.Query("token")
	}
	return ""
}
