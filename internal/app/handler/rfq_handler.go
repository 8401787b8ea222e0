package handler

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
	"time"

	"renovation/internal/app/ds"
	"renovation/internal/app/dto"
	"renovation/internal/app/mailer"
	"renovation/internal/app/repository"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	asyncKeyHeader = "X-Async-Key"
	// parallel SMTP conversations per RFQ send
	dispatchLimit = 4
)

// CreateRFQ drafts a request for quote
// @Summary Create RFQ
// @Description Items linked to an FFE item inherit its name, quantity and unit when left empty
// @Tags RFQ
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateRFQRequest true "RFQ"
// @Success 201 {object} dto.RFQResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/rfq [post]
func (h *APIHandler) CreateRFQ(c *gin.Context) {
	userID, _, err := h.getUserFromContext(c)
	if err != nil {
		errorResponse(c, http.StatusUnauthorized, err.Error())
		return
	}

	var req dto.CreateRFQRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	items := make([]repository.RFQItemInput, len(req.Items))
	for i, it := range req.Items {
		items[i] = repository.RFQItemInput{
			SpecItemID:  it.SpecItemID,
			Description: it.Description,
			Quantity:    it.Quantity,
			Unit:        it.Unit,
		}
	}

	rfq, err := h.Repository.CreateRFQ(repository.RFQInput{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Notes:       req.Notes,
		DueDate:     req.DueDate,
		SupplierIDs: req.SupplierIDs,
		Items:       items,
		CreatedByID: userID,
	})
	if err != nil {
		repoError(c, err, "failed to create RFQ")
		return
	}
	successResponse(c, http.StatusCreated, "RFQ created", toRFQResponse(rfq))
}

// ListRFQs returns requests for quote
// @Summary List RFQs
// @Tags RFQ
// @Produce json
// @Security BearerAuth
// @Param project_id query int false "Project ID"
// @Param status query string false "draft, sent, closed or cancelled"
// @Success 200 {object} dto.ListResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/rfq [get]
func (h *APIHandler) ListRFQs(c *gin.Context) {
	projectID, err := optionalUint(c.Query("project_id"))
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	rfqs, err := h.Repository.ListRFQs(projectID, c.Query("status"))
	if err != nil {
		repoError(c, err, "failed to list RFQs")
		return
	}

	out := make([]dto.RFQResponse, len(rfqs))
	for i := range rfqs {
		out[i] = toRFQResponse(&rfqs[i])
	}
	successResponse(c, http.StatusOK, "", dto.ListResponse{Items: out, Total: len(out)})
}

// GetRFQ returns one RFQ with its items and per-supplier delivery
// @Summary Get RFQ
// @Tags RFQ
// @Produce json
// @Security BearerAuth
// @Param id path int true "RFQ ID"
// @Success 200 {object} dto.RFQResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/rfq/{id} [get]
func (h *APIHandler) GetRFQ(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	rfq, err := h.Repository.GetRFQ(id)
	if err != nil {
		repoError(c, err, "failed to load RFQ")
		return
	}
	successResponse(c, http.StatusOK, "", toRFQResponse(rfq))
}

// SendRFQ emails the RFQ to every supplier on it
// @Summary Send RFQ
// @Description Suppliers are emailed concurrently and each delivery is recorded. The RFQ becomes sent when at least one supplier was reached; sending again retries every supplier.
// @Tags RFQ
// @Produce json
// @Security BearerAuth
// @Param id path int true "RFQ ID"
// @Success 200 {object} dto.RFQDispatchResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/rfq/{id}/send [post]
func (h *APIHandler) SendRFQ(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	rfq, err := h.Repository.GetRFQ(id)
	if err != nil {
		repoError(c, err, "failed to load RFQ")
		return
	}
	if rfq.Status != ds.RFQDraft && rfq.Status != ds.RFQSent {
		errorResponse(c, http.StatusConflict, fmt.Sprintf("rfq is %s", rfq.Status))
		return
	}

	results := h.dispatchRFQ(c.Request.Context(), rfq)

	sent := 0
	for _, r := range results {
		if r.OK {
			sent++
		}
	}
	if sent == 0 {
		errorResponse(c, http.StatusBadGateway, "the RFQ could not be delivered to any supplier")
		return
	}

	if err := h.Repository.MarkRFQSent(id, time.Now()); err != nil {
		repoError(c, err, "failed to mark RFQ as sent")
		return
	}

	rfq, err = h.Repository.GetRFQ(id)
	if err != nil {
		repoError(c, err, "failed to load RFQ")
		return
	}

	successResponse(c, http.StatusOK, fmt.Sprintf("sent to %d of %d suppliers", sent, len(results)), dto.RFQDispatchResponse{
		RFQ:     toRFQResponse(rfq),
		Sent:    sent,
		Failed:  len(results) - sent,
		Results: results,
	})
}

// dispatchRFQ mails every supplier with a bounded number of parallel sends
// and records each outcome. A failed supplier does not stop the others.
func (h *APIHandler) dispatchRFQ(ctx context.Context, rfq *ds.RFQ) []dto.BulkResult {
	results := make([]dto.BulkResult, len(rfq.Suppliers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(dispatchLimit)
	for i := range rfq.Suppliers {
		rs := rfq.Suppliers[i]
		g.Go(func() error {
			res := dto.BulkResult{Name: rs.Supplier.Name, ID: rs.SupplierID}

			var sendErr error
			if strings.TrimSpace(rs.Supplier.Email) == "" {
				sendErr = fmt.Errorf("supplier has no email address")
			} else {
				sendErr = h.Mailer.Send(gctx, h.rfqMessage(rfq, &rs.Supplier))
			}
			if sendErr != nil {
				logrus.Warnf("rfq %s to supplier %d: %v", rfq.Number, rs.SupplierID, sendErr)
				res.Error = sendErr.Error()
			} else {
				res.OK = true
			}

			if err := h.Repository.SetRFQDelivery(rfq.ID, rs.SupplierID, sendErr, time.Now()); err != nil {
				logrus.Error("Error recording RFQ delivery: ", err)
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (h *APIHandler) rfqMessage(rfq *ds.RFQ, supplier *ds.Supplier) mailer.Message {
	var b strings.Builder
	greeting := supplier.ContactName
	if greeting == "" {
		greeting = supplier.Name
	}
	fmt.Fprintf(&b, "Hello %s,\n\n", greeting)
	fmt.Fprintf(&b, "%s asks for your best price on the following items (%s, project %s).\n\n",
		h.Config.StudioName, rfq.Number, rfq.Project.Name)
	for i, it := range rfq.Items {
		unit := it.Unit
		if unit == "" {
			unit = "pcs"
		}
		fmt.Fprintf(&b, "%d. %s - %d %s (item ref %d)\n", i+1, it.Description, it.Quantity, unit, it.ID)
	}
	if rfq.DueDate != nil {
		fmt.Fprintf(&b, "\nPlease answer before %s.\n", rfq.DueDate.Format("January 2, 2006"))
	}
	if rfq.Notes != "" {
		fmt.Fprintf(&b, "\n%s\n", rfq.Notes)
	}
	fmt.Fprintf(&b, "\nPlease reply to this email with a unit price and lead time for each item ref.\n")
	fmt.Fprintf(&b, "\nThank you,\n%s\n", h.Config.StudioName)

	return mailer.Message{
		To:      []string{supplier.Email},
		ReplyTo: h.Config.Mail.From,
		Subject: fmt.Sprintf("Request for quote %s: %s", rfq.Number, rfq.Title),
		Text:    b.String(),
	}
}

// CloseRFQ stops accepting quotes
// @Summary Close RFQ
// @Tags RFQ
// @Produce json
// @Security BearerAuth
// @Param id path int true "RFQ ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/rfq/{id}/close [put]
func (h *APIHandler) CloseRFQ(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.Repository.CloseRFQ(id); err != nil {
		repoError(c, err, "failed to close RFQ")
		return
	}
	successResponse(c, http.StatusOK, "RFQ closed", nil)
}

// CancelRFQ cancels a draft or sent RFQ
// @Summary Cancel RFQ
// @Tags RFQ
// @Produce json
// @Security BearerAuth
// @Param id path int true "RFQ ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/rfq/{id}/cancel [put]
func (h *APIHandler) CancelRFQ(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.Repository.CancelRFQ(id); err != nil {
		repoError(c, err, "failed to cancel RFQ")
		return
	}
	successResponse(c, http.StatusOK, "RFQ cancelled", nil)
}

// CompareQuotes lines up supplier prices per RFQ item
// @Summary Compare supplier quotes
// @Tags RFQ
// @Produce json
// @Security BearerAuth
// @Param id path int true "RFQ ID"
// @Success 200 {array} dto.ComparisonRowResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/rfq/{id}/comparison [get]
func (h *APIHandler) CompareQuotes(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	rows, err := h.Repository.CompareQuotes(id)
	if err != nil {
		repoError(c, err, "failed to compare quotes")
		return
	}
	successResponse(c, http.StatusOK, "", toComparisonResponse(rows))
}

// ListSupplierQuotes returns the quotes received for an RFQ, cheapest first
// @Summary List supplier quotes
// @Tags RFQ
// @Produce json
// @Security BearerAuth
// @Param id path int true "RFQ ID"
// @Success 200 {object} dto.ListResponse
// @Router /api/rfq/{id}/quotes [get]
func (h *APIHandler) ListSupplierQuotes(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if _, err := h.Repository.GetRFQ(id); err != nil {
		repoError(c, err, "failed to load RFQ")
		return
	}
	quotes, err := h.Repository.ListSupplierQuotes(id)
	if err != nil {
		repoError(c, err, "failed to list quotes")
		return
	}
	out := make([]dto.SupplierQuoteResponse, len(quotes))
	for i := range quotes {
		out[i] = toSupplierQuoteResponse(&quotes[i])
	}
	successResponse(c, http.StatusOK, "", dto.ListResponse{Items: out, Total: len(out)})
}

func (h *APIHandler) recordQuote(c *gin.Context, rfqID uint, req dto.SupplierQuoteRequest) {
	items := make([]repository.SupplierQuoteItemInput, len(req.Items))
	for i, it := range req.Items {
		items[i] = repository.SupplierQuoteItemInput{
			RFQItemID: it.RFQItemID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		}
	}

	quote, err := h.Repository.RecordSupplierQuote(repository.SupplierQuoteInput{
		RFQID:        rfqID,
		SupplierID:   req.SupplierID,
		ValidUntil:   req.ValidUntil,
		LeadTimeDays: req.LeadTimeDays,
		Notes:        req.Notes,
		Items:        items,
	})
	if err != nil {
		repoError(c, err, "failed to record quote")
		return
	}
	successResponse(c, http.StatusCreated, "quote recorded", toSupplierQuoteResponse(quote))
}

// RecordSupplierQuote enters a quote received by phone or email
// @Summary Record supplier quote
// @Description A supplier quoting again replaces its previous quote unless it was accepted
// @Tags RFQ
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "RFQ ID"
// @Param request body dto.SupplierQuoteRequest true "Quote"
// @Success 201 {object} dto.SupplierQuoteResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/rfq/{id}/quotes [post]
func (h *APIHandler) RecordSupplierQuote(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.SupplierQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.SupplierID == 0 {
		errorResponse(c, http.StatusBadRequest, "supplier_id is required")
		return
	}
	h.recordQuote(c, id, req)
}

// ReceiveSupplierQuote is the supplier portal callback
// @Summary Supplier quote callback
// @Description Called by the supplier portal with the shared key in the X-Async-Key header
// @Tags Async
// @Accept json
// @Produce json
// @Param X-Async-Key header string true "Shared key"
// @Param id path int true "RFQ ID"
// @Param supplier_id path int true "Supplier ID"
// @Param request body dto.SupplierQuoteRequest true "Quote"
// @Success 201 {object} dto.SupplierQuoteResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/async/rfq/{id}/suppliers/{supplier_id}/quote [put]
func (h *APIHandler) ReceiveSupplierQuote(c *gin.Context) {
	secret := h.Config.Async.SecretKey
	key := c.GetHeader(asyncKeyHeader)
	if secret == "" || subtle.ConstantTimeCompare([]byte(key), []byte(secret)) != 1 {
		errorResponse(c, http.StatusForbidden, "invalid async key")
		return
	}

	rfqID, ok := parseID(c, "id")
	if !ok {
		return
	}
	supplierID, ok := parseID(c, "supplier_id")
	if !ok {
		return
	}

	var req dto.SupplierQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	req.SupplierID = supplierID
	h.recordQuote(c, rfqID, req)
}

// AcceptSupplierQuote accepts a quote and opens a draft purchase order
// @Summary Accept supplier quote
// @Description Copies the quoted prices to the linked FFE items and creates a draft purchase order
// @Tags RFQ
// @Produce json
// @Security BearerAuth
// @Param id path int true "Supplier quote ID"
// @Success 201 {object} dto.OrderResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/supplier-quotes/{id}/accept [put]
func (h *APIHandler) AcceptSupplierQuote(c *gin.Context) {
	userID, _, err := h.getUserFromContext(c)
	if err != nil {
		errorResponse(c, http.StatusUnauthorized, err.Error())
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	order, err := h.Repository.AcceptSupplierQuote(id, userID)
	if err != nil {
		repoError(c, err, "failed to accept quote")
		return
	}
	successResponse(c, http.StatusCreated, "quote accepted, purchase order "+order.Number+" created", toOrderResponse(order))
}

// RejectSupplierQuote rejects a received quote
// @Summary Reject supplier quote
// @Tags RFQ
// @Produce json
// @Security BearerAuth
// @Param id path int true "Supplier quote ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/supplier-quotes/{id}/reject [put]
func (h *APIHandler) RejectSupplierQuote(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.Repository.RejectSupplierQuote(id); err != nil {
		repoError(c, err, "failed to reject quote")
		return
	}
	successResponse(c, http.StatusOK, "quote rejected", nil)
}
