package middleware

import (
	"testing"
	"time"

	"renovation/internal/app/ds"
	"renovation/internal/app/role"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintTokenIsBoundToOneDocument(t *testing.T) {
	am := NewAuthMiddleware(nil, testConfig())
	now := time.Now()

	token, err := am.IssuePrintToken("client-quotes/5", now)
	require.NoError(t, err)

	assert.NoError(t, am.VerifyPrintToken(token, "client-quotes/5"))
	assert.ErrorIs(t, am.VerifyPrintToken(token, "client-quotes/6"), ErrInvalidPrintLink)
	assert.ErrorIs(t, am.VerifyPrintToken(token, "orders/5"), ErrInvalidPrintLink)
	assert.ErrorIs(t, am.VerifyPrintToken("", "client-quotes/5"), ErrInvalidPrintLink)
}

func TestPrintTokenExpires(t *testing.T) {
	am := NewAuthMiddleware(nil, testConfig())

	token, err := am.IssuePrintToken("orders/1", time.Now().Add(-PrintLinkTTL-time.Minute))
	require.NoError(t, err)
	assert.ErrorIs(t, am.VerifyPrintToken(token, "orders/1"), ErrInvalidPrintLink)
}

func TestSessionTokenIsNotAPrintLink(t *testing.T) {
	am := NewAuthMiddleware(nil, testConfig())

	session, _, err := am.IssueToken(&ds.User{ID: 1, Role: role.Admin}, time.Now())
	require.NoError(t, err)
	assert.ErrorIs(t, am.VerifyPrintToken(session, "orders/1"), ErrInvalidPrintLink)

	other := NewAuthMiddleware(nil, testConfig())
	other.Config.JWT.Token = "another-secret"
	forged, err := other.IssuePrintToken("orders/1", time.Now())
	require.NoError(t, err)
	assert.ErrorIs(t, am.VerifyPrintToken(forged, "orders/1"), ErrInvalidPrintLink)
}
