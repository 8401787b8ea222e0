package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"renovation/internal/app/ds"
	"renovation/internal/app/dto"
	"renovation/internal/app/mailer"
	"renovation/internal/app/repository"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const sendLockTTL = 2 * time.Minute

var errPDFDisabled = errors.New("PDF rendering is not configured")

func pdfError(c *gin.Context, err error) {
	if errors.Is(err, errPDFDisabled) {
		errorResponse(c, http.StatusServiceUnavailable, err.Error())
		return
	}
	logrus.Error("Error rendering PDF: ", err)
	errorResponse(c, http.StatusInternalServerError, "failed to render PDF")
}

// pdfAttachment renders a PDF for an email. Without a renderer the mail goes
// out with the print link only.
func (h *APIHandler) pdfAttachment(name string, render func() ([]byte, error)) ([]mailer.Attachment, error) {
	data, err := render()
	if errors.Is(err, errPDFDisabled) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []mailer.Attachment{{Filename: name + ".pdf", ContentType: "application/pdf", Data: data}}, nil
}

// printURL builds the emailed link to a print view, signed for that document only.
func (h *APIHandler) printURL(kind string, id uint) string {
	subject := fmt.Sprintf("%s/%d", kind, id)
	link := fmt.Sprintf("%s/print/%s", strings.TrimRight(h.Config.PublicBaseURL, "/"), subject)
	if h.AuthHandler == nil || h.AuthHandler.Auth == nil {
		return link
	}
	token, err := h.AuthHandler.Auth.IssuePrintToken(subject, time.Now())
	if err != nil {
		logrus.Warnf("sign print link %s: %v", subject, err)
		return link
	}
	return link + "?token=" + url.QueryEscape(token)
}

func (h *APIHandler) clientQuotePDF(c *gin.Context, q *ds.ClientQuote) ([]byte, error) {
	if h.PDF == nil {
		return nil, errPDFDisabled
	}
	html, err := h.Documents.ClientQuote(q)
	if err != nil {
		return nil, err
	}
	return h.PDF.RenderPDF(c.Request.Context(), html)
}

func lineInputs(items []dto.LineItemRequest) []repository.LineInput {
	out := make([]repository.LineInput, len(items))
	for i, it := range items {
		out[i] = repository.LineInput{
			SpecItemID:   it.SpecItemID,
			Description:  it.Description,
			Quantity:     it.Quantity,
			CostPrice:    it.CostPrice,
			Markup:       it.Markup,
			SellingPrice: it.SellingPrice,
		}
	}
	return out
}

// ListClientQuotes returns client quotes and invoices
// @Summary List client quotes
// @Tags Client quotes
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status"
// @Param project_id query int false "Project ID"
// @Success 200 {object} dto.ListResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/client-quotes [get]
func (h *APIHandler) ListClientQuotes(c *gin.Context) {
	projectID, err := optionalUint(c.Query("project_id"))
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	quotes, err := h.Repository.ListClientQuotes(repository.ClientQuoteFilter{
		Status:    c.Query("status"),
		ProjectID: projectID,
	})
	if err != nil {
		repoError(c, err, "failed to list client quotes")
		return
	}

	out := make([]dto.ClientQuoteResponse, len(quotes))
	for i := range quotes {
		out[i] = toClientQuoteResponse(&quotes[i])
	}
	successResponse(c, http.StatusOK, "", dto.ListResponse{Items: out, Total: len(out)})
}

// GetClientQuote returns one client quote with lines and payments
// @Summary Get client quote
// @Tags Client quotes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Client quote ID"
// @Success 200 {object} dto.ClientQuoteResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/client-quotes/{id} [get]
func (h *APIHandler) GetClientQuote(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	quote, err := h.Repository.GetClientQuote(id)
	if err != nil {
		repoError(c, err, "failed to load client quote")
		return
	}
	successResponse(c, http.StatusOK, "", toClientQuoteResponse(quote))
}

// CreateClientQuote drafts a quote for the client
// @Summary Create client quote
// @Description Lines linked to an FFE item are priced from it unless a selling price is given. Totals include GST and QST.
// @Tags Client quotes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateClientQuoteRequest true "Quote"
// @Success 201 {object} dto.ClientQuoteResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/client-quotes [post]
func (h *APIHandler) CreateClientQuote(c *gin.Context) {
	userID, _, err := h.getUserFromContext(c)
	if err != nil {
		errorResponse(c, http.StatusUnauthorized, err.Error())
		return
	}

	var req dto.CreateClientQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	quote, err := h.Repository.CreateClientQuote(repository.ClientQuoteInput{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		ValidUntil:  req.ValidUntil,
		Charges:     req.Charges,
		Notes:       req.Notes,
		Lines:       lineInputs(req.LineItems),
		CreatedByID: userID,
	})
	if err != nil {
		repoError(c, err, "failed to create client quote")
		return
	}
	successResponse(c, http.StatusCreated, "client quote "+quote.Number+" created", toClientQuoteResponse(quote))
}

// UpdateClientQuote changes a draft quote; line_items replaces every line
// @Summary Update client quote
// @Tags Client quotes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Client quote ID"
// @Param request body dto.UpdateClientQuoteRequest true "Fields to change"
// @Success 200 {object} dto.ClientQuoteResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/client-quotes/{id} [put]
func (h *APIHandler) UpdateClientQuote(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateClientQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	update := repository.ClientQuoteUpdate{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		ValidUntil:  req.ValidUntil,
		Charges:     req.Charges,
		Notes:       req.Notes,
	}
	if req.LineItems != nil {
		lines := lineInputs(*req.LineItems)
		update.Lines = &lines
	}

	quote, err := h.Repository.UpdateClientQuote(id, update)
	if err != nil {
		repoError(c, err, "failed to update client quote")
		return
	}
	successResponse(c, http.StatusOK, "client quote updated", toClientQuoteResponse(quote))
}

// DeleteClientQuote deletes a draft
// @Summary Delete client quote
// @Tags Client quotes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Client quote ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/client-quotes/{id} [delete]
func (h *APIHandler) DeleteClientQuote(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.Repository.DeleteClientQuote(id); err != nil {
		repoError(c, err, "failed to delete client quote")
		return
	}
	successResponse(c, http.StatusOK, "client quote deleted", nil)
}

func (h *APIHandler) respondClientQuote(c *gin.Context, id uint, message string) {
	quote, err := h.Repository.GetClientQuote(id)
	if err != nil {
		repoError(c, err, "failed to load client quote")
		return
	}
	successResponse(c, http.StatusOK, message, toClientQuoteResponse(quote))
}

// ApproveClientQuote records the client's approval; the quote becomes an invoice
// @Summary Approve client quote
// @Description The FFE items on the quote become client approved
// @Tags Client quotes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Client quote ID"
// @Success 200 {object} dto.ClientQuoteResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/client-quotes/{id}/approve [put]
func (h *APIHandler) ApproveClientQuote(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.Repository.ApproveClientQuote(id); err != nil {
		repoError(c, err, "failed to approve client quote")
		return
	}
	h.respondClientQuote(c, id, "client quote approved")
}

// CancelClientQuote cancels a draft or sent quote
// @Summary Cancel client quote
// @Tags Client quotes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Client quote ID"
// @Success 200 {object} dto.ClientQuoteResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/client-quotes/{id}/cancel [put]
func (h *APIHandler) CancelClientQuote(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.Repository.CancelClientQuote(id); err != nil {
		repoError(c, err, "failed to cancel client quote")
		return
	}
	h.respondClientQuote(c, id, "client quote cancelled")
}

func (h *APIHandler) clientQuoteMessage(c *gin.Context, q *ds.ClientQuote, to, subject, body string) (mailer.Message, error) {
	kind := "quote"
	if q.Status != ds.ClientQuoteDraft && q.Status != ds.ClientQuoteSent {
		kind = "invoice"
	}
	if subject == "" {
		subject = fmt.Sprintf("Your %s %s from %s", kind, q.Number, h.Config.StudioName)
	}
	if body == "" {
		greeting := q.Project.ClientName
		if greeting == "" {
			greeting = "Hello"
		} else {
			greeting = "Dear " + greeting
		}
		body = fmt.Sprintf("%s,\n\nPlease find your %s %s for %s.", greeting, kind, q.Number, q.Title)
	}
	text := fmt.Sprintf("%s\n\nTotal: %s $ (taxes included)\nView online: %s\n\n%s\n",
		body, q.Total.StringFixed(2), h.printURL("client-quotes", q.ID), h.Config.StudioName)

	attachments, err := h.pdfAttachment(q.Number, func() ([]byte, error) { return h.clientQuotePDF(c, q) })
	if err != nil {
		return mailer.Message{}, err
	}
	return mailer.Message{
		To:          []string{to},
		ReplyTo:     h.Config.Mail.From,
		Subject:     subject,
		Text:        text,
		Attachments: attachments,
	}, nil
}

// SendClientQuote emails the quote or invoice to the client
// @Summary Send client quote
// @Description Drafts become sent. Approved or paid invoices can be emailed again without a status change.
// @Tags Client quotes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Client quote ID"
// @Param request body dto.SendClientQuoteRequest false "Recipient override and message"
// @Success 200 {object} dto.ClientQuoteResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/client-quotes/{id}/send [post]
func (h *APIHandler) SendClientQuote(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.SendClientQuoteRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			errorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
	}

	quote, err := h.Repository.GetClientQuote(id)
	if err != nil {
		repoError(c, err, "failed to load client quote")
		return
	}
	if quote.Status == ds.ClientQuoteCancelled {
		errorResponse(c, http.StatusConflict, "client quote is cancelled")
		return
	}

	to := req.To
	if to == "" {
		to = quote.Project.ClientEmail
	}
	if to == "" {
		errorResponse(c, http.StatusBadRequest, "the project has no client email; give a recipient")
		return
	}

	if h.SendLocks != nil {
		lockKey := fmt.Sprintf("client-quote:%d", id)
		acquired, err := h.SendLocks.AcquireSendLock(c.Request.Context(), lockKey, sendLockTTL)
		if err != nil {
			logrus.Warn("Error acquiring send lock: ", err)
		} else if !acquired {
			errorResponse(c, http.StatusConflict, "this document is already being sent")
			return
		} else {
			defer func() {
				if err := h.SendLocks.ReleaseSendLock(c.Request.Context(), lockKey); err != nil {
					logrus.Warn("Error releasing send lock: ", err)
				}
			}()
		}
	}

	msg, err := h.clientQuoteMessage(c, quote, to, req.Subject, req.Message)
	if err != nil {
		pdfError(c, err)
		return
	}
	if err := h.Mailer.Send(c.Request.Context(), msg); err != nil {
		logrus.Error("Error emailing client quote: ", err)
		errorResponse(c, http.StatusBadGateway, "failed to email the client quote")
		return
	}

	if quote.Status == ds.ClientQuoteDraft || quote.Status == ds.ClientQuoteSent {
		if err := h.Repository.MarkClientQuoteSent(id); err != nil {
			repoError(c, err, "failed to mark client quote as sent")
			return
		}
	}
	h.respondClientQuote(c, id, "sent to "+to)
}

// TestEmailClientQuote emails the document to the current user only
// @Summary Test email
// @Description Sends the client email to the caller (or the given address) without changing the status
// @Tags Client quotes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Client quote ID"
// @Param request body dto.SendClientQuoteRequest false "Recipient override and message"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/client-quotes/{id}/test-email [post]
func (h *APIHandler) TestEmailClientQuote(c *gin.Context) {
	userID, _, err := h.getUserFromContext(c)
	if err != nil {
		errorResponse(c, http.StatusUnauthorized, err.Error())
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.SendClientQuoteRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			errorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
	}

	quote, err := h.Repository.GetClientQuote(id)
	if err != nil {
		repoError(c, err, "failed to load client quote")
		return
	}

	to := req.To
	if to == "" {
		user, err := h.Repository.GetUserByID(userID)
		if err != nil {
			repoError(c, err, "failed to load user")
			return
		}
		to = user.Email
	}
	if to == "" {
		errorResponse(c, http.StatusBadRequest, "your profile has no email; give a recipient")
		return
	}

	msg, err := h.clientQuoteMessage(c, quote, to, req.Subject, req.Message)
	if err != nil {
		pdfError(c, err)
		return
	}
	msg.Subject = "[TEST] " + msg.Subject
	if err := h.Mailer.Send(c.Request.Context(), msg); err != nil {
		logrus.Error("Error sending test email: ", err)
		errorResponse(c, http.StatusBadGateway, "failed to send test email")
		return
	}
	successResponse(c, http.StatusOK, "test email sent to "+to, nil)
}

// AddPayment records a payment against an invoice
// @Summary Add payment
// @Description The invoice becomes partially_paid, or paid when the balance reaches zero. Overpayment is rejected.
// @Tags Client quotes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Client quote ID"
// @Param request body dto.PaymentRequest true "Payment"
// @Success 201 {object} dto.ClientQuoteResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/client-quotes/{id}/payments [post]
func (h *APIHandler) AddPayment(c *gin.Context) {
	userID, _, err := h.getUserFromContext(c)
	if err != nil {
		errorResponse(c, http.StatusUnauthorized, err.Error())
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	in := repository.PaymentInput{
		Amount:       req.Amount,
		Method:       req.Method,
		Reference:    req.Reference,
		LineItemID:   req.LineItemID,
		RecordedByID: userID,
	}
	if req.PaidAt != nil {
		in.PaidAt = *req.PaidAt
	}

	if _, err := h.Repository.AddPayment(id, in); err != nil {
		repoError(c, err, "failed to record payment")
		return
	}

	quote, err := h.Repository.GetClientQuote(id)
	if err != nil {
		repoError(c, err, "failed to load client quote")
		return
	}
	successResponse(c, http.StatusCreated, "payment recorded", toClientQuoteResponse(quote))
}

// DeletePayment reverses a payment
// @Summary Delete payment
// @Tags Client quotes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Client quote ID"
// @Param payment_id path int true "Payment ID"
// @Success 200 {object} dto.ClientQuoteResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/client-quotes/{id}/payments/{payment_id} [delete]
func (h *APIHandler) DeletePayment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	paymentID, ok := parseID(c, "payment_id")
	if !ok {
		return
	}
	if err := h.Repository.DeletePayment(id, paymentID); err != nil {
		repoError(c, err, "failed to delete payment")
		return
	}
	h.respondClientQuote(c, id, "payment deleted")
}

// ClientQuotePDF downloads the quote or invoice as PDF
// @Summary Client quote PDF
// @Tags Client quotes
// @Produce application/pdf
// @Security BearerAuth
// @Param id path int true "Client quote ID"
// @Success 200 {file} file
// @Failure 404 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/client-quotes/{id}/pdf [get]
func (h *APIHandler) ClientQuotePDF(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	quote, err := h.Repository.GetClientQuote(id)
	if err != nil {
		repoError(c, err, "failed to load client quote")
		return
	}

	pdf, err := h.clientQuotePDF(c, quote)
	if err != nil {
		pdfError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s.pdf"`, quote.Number))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
