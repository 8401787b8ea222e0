package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"renovation/internal/app/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) createClientQuote(price string) dto.ClientQuoteResponse {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/client-quotes", e.designer, dto.CreateClientQuoteRequest{
		ProjectID: e.project.ID,
		Title:     "Design fees",
		LineItems: []dto.LineItemRequest{
			{Description: "Consultation", Quantity: 1, SellingPrice: decPtr(price)},
		},
	})
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	var q dto.ClientQuoteResponse
	data(e.t, w, &q)
	return q
}

func TestSendClientQuoteEmailsPDFAndPrintLink(t *testing.T) {
	env := newTestEnv(t)
	q := env.createClientQuote("1000")
	assert.True(t, q.Total.Equal(dec("1149.75")), q.Total.String())

	w := env.do(http.MethodPost, fmt.Sprintf("/api/client-quotes/%d/send", q.ID), env.designer, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var sent dto.ClientQuoteResponse
	data(t, w, &sent)
	assert.Equal(t, "sent", sent.Status)
	assert.NotNil(t, sent.SentAt)

	msgs := env.mail.messages()
	require.Len(t, msgs, 1)
	msg := msgs[0]
	assert.Equal(t, []string{"client@example.com"}, msg.To)
	assert.Contains(t, msg.Subject, q.Number)
	assert.Contains(t, msg.Text, "1149.75")
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, q.Number+".pdf", msg.Attachments[0].Filename)

	// The emailed link opens the print view without a login.
	start := strings.Index(msg.Text, "https://studio.test/print/")
	require.GreaterOrEqual(t, start, 0)
	link := strings.Fields(msg.Text[start:])[0]
	u, err := url.Parse(link)
	require.NoError(t, err)

	w = env.do(http.MethodGet, u.RequestURI(), nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), q.Number)

	w = env.do(http.MethodGet, u.Path, nil, nil)
	assert.Equal(t, http.StatusForbidden, w.Code, "print views need the signed token")

	w = env.do(http.MethodGet, fmt.Sprintf("/print/orders/%d?%s", q.ID, u.RawQuery), nil, nil)
	assert.Equal(t, http.StatusForbidden, w.Code, "a token is bound to one document")
}

func TestSendClientQuoteMailFailureKeepsDraft(t *testing.T) {
	env := newTestEnv(t)
	q := env.createClientQuote("200")
	env.mail.failFor["client@example.com"] = true

	w := env.do(http.MethodPost, fmt.Sprintf("/api/client-quotes/%d/send", q.ID), env.designer, nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	w = env.do(http.MethodGet, fmt.Sprintf("/api/client-quotes/%d", q.ID), env.designer, nil)
	var got dto.ClientQuoteResponse
	data(t, w, &got)
	assert.Equal(t, "draft", got.Status)
}

func TestTestEmailGoesToCallerWithoutStatusChange(t *testing.T) {
	env := newTestEnv(t)
	q := env.createClientQuote("200")

	w := env.do(http.MethodPost, fmt.Sprintf("/api/client-quotes/%d/test-email", q.ID), env.designer, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	msgs := env.mail.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, []string{env.designer.Email}, msgs[0].To)
	assert.True(t, strings.HasPrefix(msgs[0].Subject, "[TEST] "))

	w = env.do(http.MethodGet, fmt.Sprintf("/api/client-quotes/%d", q.ID), env.designer, nil)
	var got dto.ClientQuoteResponse
	data(t, w, &got)
	assert.Equal(t, "draft", got.Status)
}

func TestPaymentsFlow(t *testing.T) {
	env := newTestEnv(t)
	q := env.createClientQuote("1000")
	base := fmt.Sprintf("/api/client-quotes/%d", q.ID)

	pay := func(amount string) dto.PaymentRequest {
		return dto.PaymentRequest{Amount: dec(amount), Method: "transfer"}
	}

	w := env.do(http.MethodPost, base+"/payments", env.manager, pay("100"))
	assert.Equal(t, http.StatusConflict, w.Code, "drafts cannot be paid")

	w = env.do(http.MethodPost, base+"/send", env.designer, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(http.MethodPost, base+"/payments", env.manager, pay("100"))
	assert.Equal(t, http.StatusConflict, w.Code, "a sent invoice is paid after approval")

	w = env.do(http.MethodPut, base+"/approve", env.designer, nil)
	assert.Equal(t, http.StatusForbidden, w.Code, "designers cannot approve")
	w = env.do(http.MethodPut, base+"/approve", env.manager, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(http.MethodPost, base+"/payments", env.designer, pay("100"))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(http.MethodPost, base+"/payments", env.manager, pay("149.75"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var got dto.ClientQuoteResponse
	data(t, w, &got)
	assert.Equal(t, "partially_paid", got.Status)
	assert.True(t, got.Balance.Equal(dec("1000")), got.Balance.String())

	w = env.do(http.MethodPost, base+"/payments", env.manager, pay("1000.01"))
	assert.Equal(t, http.StatusBadRequest, w.Code, "overpayment is rejected")

	w = env.do(http.MethodPost, base+"/payments", env.admin, pay("1000"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data(t, w, &got)
	assert.Equal(t, "paid", got.Status)
	assert.True(t, got.Balance.IsZero())
	assert.Len(t, got.Payments, 2)

	// A paid invoice can be emailed again and stays paid.
	w = env.do(http.MethodPost, base+"/send", env.designer, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data(t, w, &got)
	assert.Equal(t, "paid", got.Status)
	msgs := env.mail.messages()
	assert.Contains(t, msgs[len(msgs)-1].Subject, "invoice")
}

func TestCancelledQuoteCannotBeSent(t *testing.T) {
	env := newTestEnv(t)
	q := env.createClientQuote("50")
	base := fmt.Sprintf("/api/client-quotes/%d", q.ID)

	w := env.do(http.MethodPut, base+"/cancel", env.designer, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(http.MethodPost, base+"/send", env.designer, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Empty(t, env.mail.messages())
}

func TestClientQuotePDF(t *testing.T) {
	env := newTestEnv(t)
	q := env.createClientQuote("50")

	w := env.do(http.MethodGet, fmt.Sprintf("/api/client-quotes/%d/pdf", q.ID), env.designer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))

	env.api.PDF = nil
	w = env.do(http.MethodGet, fmt.Sprintf("/api/client-quotes/%d/pdf", q.ID), env.designer, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	// Without a renderer the email still goes out, link only.
	w = env.do(http.MethodPost, fmt.Sprintf("/api/client-quotes/%d/send", q.ID), env.designer, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	msgs := env.mail.messages()
	require.Len(t, msgs, 1)
	assert.Empty(t, msgs[0].Attachments)
}
