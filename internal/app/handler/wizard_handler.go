package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"renovation/internal/app/dto"
	"renovation/internal/app/repository"
	"renovation/internal/app/wizard"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const wizardLockTTL = 30 * time.Second

func wizardError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, wizard.ErrSessionNotFound):
		errorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, wizard.ErrWrongStep),
		errors.Is(err, wizard.ErrFinished),
		errors.Is(err, wizard.ErrCannotGoBack):
		errorResponse(c, http.StatusConflict, err.Error())
	case errors.Is(err, wizard.ErrUnknownItem),
		errors.Is(err, wizard.ErrNoItemsSelected),
		errors.Is(err, wizard.ErrTitleRequired),
		errors.Is(err, wizard.ErrNoLineItems),
		errors.Is(err, wizard.ErrInvalidLine),
		errors.Is(err, wizard.ErrLineOutOfRange),
		errors.Is(err, wizard.ErrNegativeCharges):
		errorResponse(c, http.StatusBadRequest, err.Error())
	default:
		repoError(c, err, "invoice wizard failed")
	}
}

func (h *APIHandler) wizardResponse(s *wizard.Session) dto.WizardResponse {
	resp := dto.WizardResponse{
		ID:            s.ID,
		ProjectID:     s.ProjectID,
		Step:          int(s.Step),
		StepName:      s.Step.String(),
		Preselected:   s.Preselected,
		Candidates:    s.Candidates,
		SelectedIDs:   s.SelectedIDs,
		Details:       s.Details,
		Lines:         s.Lines,
		Totals:        s.Totals(h.Repository.Rates()),
		ClientQuoteID: s.ClientQuoteID,
	}
	if err := s.CanAdvance(); err != nil {
		resp.Blocker = err.Error()
	} else {
		resp.CanAdvance = true
	}
	return resp
}

// loadWizard fetches the caller's session; other users' sessions look missing.
func (h *APIHandler) loadWizard(c *gin.Context) (*wizard.Session, bool) {
	userID, _, err := h.getUserFromContext(c)
	if err != nil {
		errorResponse(c, http.StatusUnauthorized, err.Error())
		return nil, false
	}

	s, err := h.Wizards.Load(c.Request.Context(), c.Param("sid"))
	if err == nil && s.UserID != userID {
		err = wizard.ErrSessionNotFound
	}
	if err != nil {
		wizardError(c, err)
		return nil, false
	}
	return s, true
}

func (h *APIHandler) saveWizard(c *gin.Context, s *wizard.Session, message string) {
	s.UpdatedAt = time.Now()
	if err := h.Wizards.Save(c.Request.Context(), s, h.Config.Wizard.SessionTTL); err != nil {
		logrus.Error("Error saving wizard session: ", err)
		errorResponse(c, http.StatusInternalServerError, "failed to save wizard session")
		return
	}
	successResponse(c, http.StatusOK, message, h.wizardResponse(s))
}

// StartInvoiceWizard opens an invoice wizard on a project
// @Summary Start invoice wizard
// @Description Only FFE items with an RRP or client approval can be invoiced. With spec_item_ids the selection step is skipped.
// @Tags Invoice wizard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Param request body dto.StartWizardRequest false "Preselected items"
// @Success 201 {object} dto.WizardResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/projects/{id}/invoice-wizard [post]
func (h *APIHandler) StartInvoiceWizard(c *gin.Context) {
	userID, _, err := h.getUserFromContext(c)
	if err != nil {
		errorResponse(c, http.StatusUnauthorized, err.Error())
		return
	}
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.StartWizardRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			errorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
	}

	items, err := h.Repository.ListSpecItems(projectID, repository.SpecItemFilter{})
	if err != nil {
		repoError(c, err, "failed to load FFE items")
		return
	}
	candidates := make([]wizard.Candidate, len(items))
	for i, item := range items {
		candidates[i] = candidateFromItem(item)
	}

	s, err := wizard.New(uuid.New().String(), projectID, userID, candidates, req.SpecItemIDs, time.Now())
	if err != nil {
		wizardError(c, err)
		return
	}

	if err := h.Wizards.Save(c.Request.Context(), s, h.Config.Wizard.SessionTTL); err != nil {
		logrus.Error("Error saving wizard session: ", err)
		errorResponse(c, http.StatusInternalServerError, "failed to save wizard session")
		return
	}
	successResponse(c, http.StatusCreated, "wizard started", h.wizardResponse(s))
}

// GetInvoiceWizard returns the wizard state
// @Summary Get invoice wizard
// @Tags Invoice wizard
// @Produce json
// @Security BearerAuth
// @Param sid path string true "Session ID"
// @Success 200 {object} dto.WizardResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/invoice-wizard/{sid} [get]
func (h *APIHandler) GetInvoiceWizard(c *gin.Context) {
	s, ok := h.loadWizard(c)
	if !ok {
		return
	}
	successResponse(c, http.StatusOK, "", h.wizardResponse(s))
}

// SelectWizardItems replaces the selection on step 0
// @Summary Select items
// @Tags Invoice wizard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param sid path string true "Session ID"
// @Param request body dto.WizardSelectionRequest true "Items"
// @Success 200 {object} dto.WizardResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/invoice-wizard/{sid}/selection [put]
func (h *APIHandler) SelectWizardItems(c *gin.Context) {
	s, ok := h.loadWizard(c)
	if !ok {
		return
	}

	var req dto.WizardSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.Select(req.SpecItemIDs); err != nil {
		wizardError(c, err)
		return
	}
	h.saveWizard(c, s, "selection saved")
}

// SetWizardDetails stores the invoice metadata on step 1
// @Summary Set invoice details
// @Tags Invoice wizard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param sid path string true "Session ID"
// @Param request body dto.WizardDetailsRequest true "Details"
// @Success 200 {object} dto.WizardResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/invoice-wizard/{sid}/details [put]
func (h *APIHandler) SetWizardDetails(c *gin.Context) {
	s, ok := h.loadWizard(c)
	if !ok {
		return
	}

	var req dto.WizardDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	err := s.SetDetails(wizard.Details{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		ValidUntil:  req.ValidUntil,
		Charges:     req.Charges,
		Notes:       req.Notes,
	})
	if err != nil {
		wizardError(c, err)
		return
	}
	h.saveWizard(c, s, "details saved")
}

func lineIndex(c *gin.Context) (int, bool) {
	idx, err := strconv.Atoi(c.Param("idx"))
	if err != nil || idx < 0 {
		errorResponse(c, http.StatusBadRequest, "invalid line index")
		return 0, false
	}
	return idx, true
}

// UpdateWizardLine changes quantity or price of a line on step 2
// @Summary Update line
// @Tags Invoice wizard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param sid path string true "Session ID"
// @Param idx path int true "Line index"
// @Param request body dto.WizardLineRequest true "Quantity and/or selling price"
// @Success 200 {object} dto.WizardResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/invoice-wizard/{sid}/lines/{idx} [put]
func (h *APIHandler) UpdateWizardLine(c *gin.Context) {
	s, ok := h.loadWizard(c)
	if !ok {
		return
	}
	idx, ok := lineIndex(c)
	if !ok {
		return
	}

	var req dto.WizardLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.UpdateLine(idx, req.Quantity, req.SellingPrice); err != nil {
		wizardError(c, err)
		return
	}
	h.saveWizard(c, s, "line updated")
}

// RemoveWizardLine drops a line on step 2
// @Summary Remove line
// @Tags Invoice wizard
// @Produce json
// @Security BearerAuth
// @Param sid path string true "Session ID"
// @Param idx path int true "Line index"
// @Success 200 {object} dto.WizardResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/invoice-wizard/{sid}/lines/{idx} [delete]
func (h *APIHandler) RemoveWizardLine(c *gin.Context) {
	s, ok := h.loadWizard(c)
	if !ok {
		return
	}
	idx, ok := lineIndex(c)
	if !ok {
		return
	}
	if err := s.RemoveLine(idx); err != nil {
		wizardError(c, err)
		return
	}
	h.saveWizard(c, s, "line removed")
}

// finalizeInvoice persists the reviewed lines as a draft client quote.
func (h *APIHandler) finalizeInvoice(s *wizard.Session) (uint, error) {
	lines := make([]repository.LineInput, len(s.Lines))
	for i := range s.Lines {
		l := s.Lines[i]
		lines[i] = repository.LineInput{
			SpecItemID:   l.SpecItemID,
			Description:  l.Description,
			Quantity:     l.Quantity,
			CostPrice:    &l.CostPrice,
			Markup:       &l.Markup,
			SellingPrice: &l.SellingPrice,
		}
	}

	quote, err := h.Repository.CreateClientQuote(repository.ClientQuoteInput{
		ProjectID:   s.ProjectID,
		Title:       s.Details.Title,
		Description: s.Details.Description,
		DueDate:     s.Details.DueDate,
		ValidUntil:  s.Details.ValidUntil,
		Charges:     s.Details.Charges,
		Notes:       s.Details.Notes,
		Lines:       lines,
		CreatedByID: s.UserID,
	})
	if err != nil {
		return 0, err
	}
	return quote.ID, nil
}

// NextWizardStep advances the wizard
// @Summary Next step
// @Description Step 1 to 2 needs a non-blank title and at least one line. Leaving step 2 saves the client quote.
// @Tags Invoice wizard
// @Produce json
// @Security BearerAuth
// @Param sid path string true "Session ID"
// @Success 200 {object} dto.WizardResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/invoice-wizard/{sid}/next [post]
func (h *APIHandler) NextWizardStep(c *gin.Context) {
	ctx := c.Request.Context()
	lockKey := wizardLockKey(c.Param("sid"))
	acquired, err := h.SendLocks.AcquireSendLock(ctx, lockKey, wizardLockTTL)
	if err != nil {
		logrus.Error("Error acquiring wizard lock: ", err)
		errorResponse(c, http.StatusInternalServerError, "failed to lock wizard session")
		return
	}
	if !acquired {
		errorResponse(c, http.StatusConflict, "this wizard step is already in progress")
		return
	}
	defer func() {
		if err := h.SendLocks.ReleaseSendLock(ctx, lockKey); err != nil {
			logrus.Warn("Error releasing wizard lock: ", err)
		}
	}()

	s, ok := h.loadWizard(c)
	if !ok {
		return
	}
	if err := s.Next(h.finalizeInvoice); err != nil {
		wizardError(c, err)
		return
	}

	message := "moved to " + s.Step.String()
	if s.Step == wizard.StepSend {
		message = "client quote saved"
	}
	s.UpdatedAt = time.Now()
	if err := h.Wizards.Save(ctx, s, h.Config.Wizard.SessionTTL); err != nil {
		logrus.Error("Error saving wizard session: ", err)
		// The stored session is still on review; drop the draft so a retry does not leave two.
		if s.Step == wizard.StepSend && s.ClientQuoteID != 0 {
			if err := h.Repository.DeleteClientQuote(s.ClientQuoteID); err != nil {
				logrus.Error("Error deleting orphaned client quote: ", err)
			}
		}
		errorResponse(c, http.StatusInternalServerError, "failed to save wizard session")
		return
	}
	successResponse(c, http.StatusOK, message, h.wizardResponse(s))
}

func wizardLockKey(sid string) string {
	return "invoice-wizard:" + sid
}

// PreviousWizardStep goes back one step
// @Summary Previous step
// @Tags Invoice wizard
// @Produce json
// @Security BearerAuth
// @Param sid path string true "Session ID"
// @Success 200 {object} dto.WizardResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/invoice-wizard/{sid}/back [post]
func (h *APIHandler) PreviousWizardStep(c *gin.Context) {
	s, ok := h.loadWizard(c)
	if !ok {
		return
	}
	if err := s.Back(); err != nil {
		wizardError(c, err)
		return
	}
	h.saveWizard(c, s, "moved to "+s.Step.String())
}

// DiscardInvoiceWizard drops the session; a saved client quote is kept
// @Summary Discard invoice wizard
// @Tags Invoice wizard
// @Produce json
// @Security BearerAuth
// @Param sid path string true "Session ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/invoice-wizard/{sid} [delete]
func (h *APIHandler) DiscardInvoiceWizard(c *gin.Context) {
	s, ok := h.loadWizard(c)
	if !ok {
		return
	}
	if err := h.Wizards.Delete(c.Request.Context(), s.ID); err != nil {
		logrus.Error("Error deleting wizard session: ", err)
		errorResponse(c, http.StatusInternalServerError, "failed to discard wizard session")
		return
	}
	successResponse(c, http.StatusOK, "wizard discarded", nil)
}
