package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"renovation/internal/app/ds"
	"renovation/internal/app/dto"
	"renovation/internal/app/repository"
	"renovation/internal/app/wizard"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wizardLine struct {
	SpecItemID   *uint           `json:"spec_item_id"`
	Quantity     int             `json:"quantity"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	TotalPrice   decimal.Decimal `json:"total_price"`
}

type wizardState struct {
	ID          string `json:"id"`
	Step        int    `json:"step"`
	StepName    string `json:"step_name"`
	Preselected bool   `json:"preselected"`
	Candidates  []struct {
		SpecItemID uint `json:"spec_item_id"`
	} `json:"candidates"`
	Lines  []wizardLine `json:"lines"`
	Totals struct {
		Subtotal  decimal.Decimal `json:"subtotal"`
		GSTAmount decimal.Decimal `json:"gst_amount"`
		QSTAmount decimal.Decimal `json:"qst_amount"`
		Total     decimal.Decimal `json:"total"`
	} `json:"totals"`
	CanAdvance    bool   `json:"can_advance"`
	Blocker       string `json:"blocker"`
	ClientQuoteID uint   `json:"client_quote_id"`
}

func TestInvoiceWizardFullFlow(t *testing.T) {
	env := newTestEnv(t)
	sofa := env.specItem("Sofa", 2, "100", nil, true)
	lamp := env.specItem("Lamp", 1, "50", decPtr("80"), false)
	rug := env.specItem("Rug", 1, "10", nil, false)

	w := env.do(http.MethodPost, fmt.Sprintf("/api/projects/%d/invoice-wizard", env.project.ID), env.designer, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var s wizardState
	data(t, w, &s)
	assert.Equal(t, "select_items", s.StepName)
	assert.Len(t, s.Candidates, 2, "the rug has neither RRP nor approval")
	assert.False(t, s.CanAdvance)
	assert.NotEmpty(t, s.Blocker)

	base := "/api/invoice-wizard/" + s.ID

	w = env.do(http.MethodPut, base+"/selection", env.designer, dto.WizardSelectionRequest{SpecItemIDs: []uint{rug.ID}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPost, base+"/next", env.designer, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "nothing selected yet")

	w = env.do(http.MethodPut, base+"/selection", env.designer, dto.WizardSelectionRequest{SpecItemIDs: []uint{sofa.ID, lamp.ID}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(http.MethodPost, base+"/next", env.designer, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data(t, w, &s)
	assert.Equal(t, "details", s.StepName)
	require.Len(t, s.Lines, 2)
	assert.True(t, s.Lines[0].SellingPrice.Equal(dec("130")), "cost marked up by the default 30 percent")
	assert.True(t, s.Lines[1].SellingPrice.Equal(dec("80")), "RRP wins over markup")

	w = env.do(http.MethodPost, base+"/next", env.designer, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "title is required")

	w = env.do(http.MethodPut, base+"/lines/0", env.designer, map[string]interface{}{"selling_price": "99"})
	assert.Equal(t, http.StatusConflict, w.Code, "lines are edited on the review step")

	w = env.do(http.MethodPut, base+"/details", env.designer, dto.WizardDetailsRequest{Title: "  Living room furniture  "})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(http.MethodPost, base+"/next", env.designer, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data(t, w, &s)
	assert.Equal(t, "review", s.StepName)

	w = env.do(http.MethodPut, base+"/lines/1", env.designer, map[string]interface{}{"quantity": 3})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data(t, w, &s)
	assert.True(t, s.Lines[1].TotalPrice.Equal(dec("240")))
	assert.True(t, s.Totals.Subtotal.Equal(dec("500")))
	assert.True(t, s.Totals.GSTAmount.Equal(dec("25")))
	assert.True(t, s.Totals.Total.Equal(dec("574.88")))
	assert.True(t, s.Totals.Subtotal.Add(s.Totals.GSTAmount).Add(s.Totals.QSTAmount).Equal(s.Totals.Total))

	w = env.do(http.MethodDelete, base+"/lines/5", env.designer, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodGet, base, env.manager, nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "sessions belong to the user who started them")

	w = env.do(http.MethodPost, base+"/next", env.designer, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data(t, w, &s)
	assert.Equal(t, "send", s.StepName)
	require.NotZero(t, s.ClientQuoteID)

	w = env.do(http.MethodPost, base+"/back", env.designer, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(http.MethodGet, fmt.Sprintf("/api/client-quotes/%d", s.ClientQuoteID), env.designer, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var quote dto.ClientQuoteResponse
	data(t, w, &quote)
	assert.Equal(t, "Living room furniture", quote.Title)
	assert.Equal(t, "draft", quote.Status)
	assert.Len(t, quote.LineItems, 2)
	assert.True(t, quote.Total.Equal(dec("574.88")), quote.Total.String())
	assert.True(t, quote.Balance.Equal(quote.Total))
}

func TestInvoiceWizardPreselected(t *testing.T) {
	env := newTestEnv(t)
	lamp := env.specItem("Lamp", 1, "50", decPtr("80"), false)
	rug := env.specItem("Rug", 1, "10", nil, false)
	path := fmt.Sprintf("/api/projects/%d/invoice-wizard", env.project.ID)

	w := env.do(http.MethodPost, path, env.designer, dto.StartWizardRequest{SpecItemIDs: []uint{rug.ID}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPost, path, env.designer, dto.StartWizardRequest{SpecItemIDs: []uint{lamp.ID}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var s wizardState
	data(t, w, &s)
	assert.Equal(t, "details", s.StepName)
	assert.True(t, s.Preselected)
	assert.Len(t, s.Lines, 1)

	w = env.do(http.MethodPost, "/api/invoice-wizard/"+s.ID+"/back", env.designer, nil)
	assert.Equal(t, http.StatusConflict, w.Code, "no selection step to go back to")

	w = env.do(http.MethodDelete, "/api/invoice-wizard/"+s.ID, env.designer, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = env.do(http.MethodGet, "/api/invoice-wizard/"+s.ID, env.designer, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInvoiceWizardRequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(http.MethodPost, fmt.Sprintf("/api/projects/%d/invoice-wizard", env.project.ID), nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// failingSaves wraps a store and fails the next n saves.
type failingSaves struct {
	wizard.Store
	n int
}

func (f *failingSaves) Save(ctx context.Context, s *wizard.Session, ttl time.Duration) error {
	if f.n > 0 {
		f.n--
		return errors.New("store unavailable")
	}
	return f.Store.Save(ctx, s, ttl)
}

func (e *testEnv) wizardOnReview() string {
	e.t.Helper()
	lamp := e.specItem("Lamp", 1, "50", decPtr("80"), false)
	w := e.do(http.MethodPost, fmt.Sprintf("/api/projects/%d/invoice-wizard", e.project.ID), e.designer,
		dto.StartWizardRequest{SpecItemIDs: []uint{lamp.ID}})
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	var s wizardState
	data(e.t, w, &s)

	base := "/api/invoice-wizard/" + s.ID
	w = e.do(http.MethodPut, base+"/details", e.designer, dto.WizardDetailsRequest{Title: "Lighting"})
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())
	w = e.do(http.MethodPost, base+"/next", e.designer, nil)
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())
	data(e.t, w, &s)
	require.Equal(e.t, "review", s.StepName)
	return s.ID
}

func (e *testEnv) projectQuotes() []ds.ClientQuote {
	e.t.Helper()
	quotes, err := e.repo.ListClientQuotes(repository.ClientQuoteFilter{ProjectID: &e.project.ID})
	require.NoError(e.t, err)
	return quotes
}

func TestInvoiceWizardNextHoldsSessionLock(t *testing.T) {
	env := newTestEnv(t)
	sid := env.wizardOnReview()
	ctx := context.Background()

	acquired, err := env.api.SendLocks.AcquireSendLock(ctx, wizardLockKey(sid), time.Minute)
	require.NoError(t, err)
	require.True(t, acquired)

	w := env.do(http.MethodPost, "/api/invoice-wizard/"+sid+"/next", env.designer, nil)
	assert.Equal(t, http.StatusConflict, w.Code, "a concurrent click is refused")
	assert.Empty(t, env.projectQuotes())

	require.NoError(t, env.api.SendLocks.ReleaseSendLock(ctx, wizardLockKey(sid)))
	w = env.do(http.MethodPost, "/api/invoice-wizard/"+sid+"/next", env.designer, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, env.projectQuotes(), 1)

	w = env.do(http.MethodPost, "/api/invoice-wizard/"+sid+"/next", env.designer, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Len(t, env.projectQuotes(), 1)
}

func TestInvoiceWizardRetryAfterFailedSaveKeepsOneQuote(t *testing.T) {
	env := newTestEnv(t)
	sid := env.wizardOnReview()
	env.api.Wizards = &failingSaves{Store: env.api.Wizards, n: 1}

	w := env.do(http.MethodPost, "/api/invoice-wizard/"+sid+"/next", env.designer, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, env.projectQuotes(), "the draft of the failed step is dropped")

	w = env.do(http.MethodPost, "/api/invoice-wizard/"+sid+"/next", env.designer, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var s wizardState
	data(t, w, &s)
	quotes := env.projectQuotes()
	require.Len(t, quotes, 1)
	assert.Equal(t, quotes[0].ID, s.ClientQuoteID)
}
