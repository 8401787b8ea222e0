package middleware

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

// PrintLinkTTL bounds how long an emailed print link stays valid.
const PrintLinkTTL = 90 * 24 * time.Hour

const printLinkAudience = "print"

var ErrInvalidPrintLink = errors.New("print link is invalid or expired")

// IssuePrintToken signs a link token for one document, e.g. "orders/12".
func (am *AuthMiddleware) IssuePrintToken(subject string, now time.Time) (string, error) {
	token := jwt.NewWithClaims(am.Config.JWT.SigningMethod, &jwt.StandardClaims{
		Audience:  printLinkAudience,
		Subject:   subject,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(PrintLinkTTL).Unix(),
		Issuer:    "renovation",
	})
	return token.SignedString([]byte(am.Config.JWT.Token))
}

// VerifyPrintToken accepts only tokens issued for exactly this subject.
// Session tokens carry no print audience and are refused.
func (am *AuthMiddleware) VerifyPrintToken(tokenString, subject string) error {
	if tokenString == "" {
		return ErrInvalidPrintLink
	}
	claims := &jwt.StandardClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != am.Config.JWT.SigningMethod {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(am.Config.JWT.Token), nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidPrintLink
	}
	if !claims.VerifyAudience(printLinkAudience, true) || claims.Subject != subject {
		return ErrInvalidPrintLink
	}
	return nil
}
