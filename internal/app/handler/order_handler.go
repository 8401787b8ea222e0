package handler

import (
	"fmt"
	"net/http"
	"strings"

	"renovation/internal/app/ds"
	"renovation/internal/app/dto"
	"renovation/internal/app/mailer"
	"renovation/internal/app/repository"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func orderItemInputs(items []dto.OrderItemRequest) []repository.OrderItemInput {
	out := make([]repository.OrderItemInput, len(items))
	for i, it := range items {
		out[i] = repository.OrderItemInput{
			SpecItemID:  it.SpecItemID,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		}
	}
	return out
}

// ListOrders returns purchase orders
// @Summary List purchase orders
// @Tags Orders
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status"
// @Param project_id query int false "Project ID"
// @Param supplier_id query int false "Supplier ID"
// @Param date_from query string false "YYYY-MM-DD"
// @Param date_to query string false "YYYY-MM-DD, inclusive"
// @Success 200 {object} dto.ListResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/orders [get]
func (h *APIHandler) ListOrders(c *gin.Context) {
	filter := repository.OrderFilter{Status: c.Query("status")}

	var err error
	if filter.ProjectID, err = optionalUint(c.Query("project_id")); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if filter.SupplierID, err = optionalUint(c.Query("supplier_id")); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if filter.DateFrom, err = optionalDate(c.Query("date_from")); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if filter.DateTo, err = optionalDate(c.Query("date_to")); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	orders, err := h.Repository.ListOrders(filter)
	if err != nil {
		repoError(c, err, "failed to list orders")
		return
	}

	out := make([]dto.OrderResponse, len(orders))
	for i := range orders {
		out[i] = toOrderResponse(&orders[i])
	}
	successResponse(c, http.StatusOK, "", dto.ListResponse{Items: out, Total: len(out)})
}

// GetOrder returns one purchase order with its items
// @Summary Get purchase order
// @Tags Orders
// @Produce json
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Success 200 {object} dto.OrderResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/orders/{id} [get]
func (h *APIHandler) GetOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	order, err := h.Repository.GetOrder(id)
	if err != nil {
		repoError(c, err, "failed to load order")
		return
	}
	successResponse(c, http.StatusOK, "", toOrderResponse(order))
}

// CreateOrder drafts a purchase order
// @Summary Create purchase order
// @Tags Orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateOrderRequest true "Order"
// @Success 201 {object} dto.OrderResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/orders [post]
func (h *APIHandler) CreateOrder(c *gin.Context) {
	userID, _, err := h.getUserFromContext(c)
	if err != nil {
		errorResponse(c, http.StatusUnauthorized, err.Error())
		return
	}

	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.Repository.CreateOrder(repository.OrderInput{
		ProjectID:        req.ProjectID,
		SupplierID:       req.SupplierID,
		ExpectedDelivery: req.ExpectedDelivery,
		ShippingCost:     req.ShippingCost,
		Notes:            req.Notes,
		Items:            orderItemInputs(req.Items),
		CreatedByID:      userID,
	})
	if err != nil {
		repoError(c, err, "failed to create order")
		return
	}
	successResponse(c, http.StatusCreated, "order "+order.Number+" created", toOrderResponse(order))
}

// UpdateOrder changes a draft order
// @Summary Update purchase order
// @Tags Orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Param request body dto.UpdateOrderRequest true "Fields to change"
// @Success 200 {object} dto.OrderResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/orders/{id} [put]
func (h *APIHandler) UpdateOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.Repository.UpdateOrder(id, repository.OrderUpdate{
		ExpectedDelivery: req.ExpectedDelivery,
		ShippingCost:     req.ShippingCost,
		Notes:            req.Notes,
	})
	if err != nil {
		repoError(c, err, "failed to update order")
		return
	}
	successResponse(c, http.StatusOK, "order updated", toOrderResponse(order))
}

// AddOrderItem adds a line to a draft order
// @Summary Add order item
// @Tags Orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Param request body dto.OrderItemRequest true "Item"
// @Success 200 {object} dto.OrderResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/orders/{id}/items [post]
func (h *APIHandler) AddOrderItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.OrderItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.Repository.AddOrderItem(id, orderItemInputs([]dto.OrderItemRequest{req})[0])
	if err != nil {
		repoError(c, err, "failed to add item")
		return
	}
	successResponse(c, http.StatusOK, "item added", toOrderResponse(order))
}

// RemoveOrderItem removes a line from a draft order
// @Summary Remove order item
// @Tags Orders
// @Produce json
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Param item_id path int true "Item ID"
// @Success 200 {object} dto.OrderResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/orders/{id}/items/{item_id} [delete]
func (h *APIHandler) RemoveOrderItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	itemID, ok := parseID(c, "item_id")
	if !ok {
		return
	}

	order, err := h.Repository.RemoveOrderItem(id, itemID)
	if err != nil {
		repoError(c, err, "failed to remove item")
		return
	}
	successResponse(c, http.StatusOK, "item removed", toOrderResponse(order))
}

// SendOrder places a draft order with the supplier
// @Summary Send purchase order
// @Description Emails the PO as PDF when the supplier has an email address, then marks the order sent. The order stays a draft if the email fails.
// @Tags Orders
// @Produce json
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Success 200 {object} dto.OrderResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/orders/{id}/send [put]
func (h *APIHandler) SendOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	order, err := h.Repository.GetOrder(id)
	if err != nil {
		repoError(c, err, "failed to load order")
		return
	}
	if order.Status != ds.OrderDraft {
		errorResponse(c, http.StatusConflict, fmt.Sprintf("order is %s", order.Status))
		return
	}

	message := "order marked as sent"
	if strings.TrimSpace(order.Supplier.Email) != "" {
		attachments, err := h.pdfAttachment(order.Number, func() ([]byte, error) { return h.orderPDF(c, order) })
		if err != nil {
			logrus.Error("Error rendering order PDF: ", err)
			errorResponse(c, http.StatusInternalServerError, "failed to render purchase order")
			return
		}
		err = h.Mailer.Send(c.Request.Context(), mailer.Message{
			To:      []string{order.Supplier.Email},
			ReplyTo: h.Config.Mail.From,
			Subject: fmt.Sprintf("Purchase order %s from %s", order.Number, h.Config.StudioName),
			Text: fmt.Sprintf("Hello,\n\nPlease find purchase order %s for project %s: %s\n\nThank you,\n%s\n",
				order.Number, order.Project.Name, h.printURL("orders", order.ID), h.Config.StudioName),
			Attachments: attachments,
		})
		if err != nil {
			logrus.Error("Error emailing order: ", err)
			errorResponse(c, http.StatusBadGateway, "failed to email the purchase order")
			return
		}
		message = "order emailed to " + order.Supplier.Email
	}

	if err := h.Repository.SendOrder(id); err != nil {
		repoError(c, err, "failed to send order")
		return
	}
	h.respondOrder(c, id, message)
}

func (h *APIHandler) respondOrder(c *gin.Context, id uint, message string) {
	order, err := h.Repository.GetOrder(id)
	if err != nil {
		repoError(c, err, "failed to load order")
		return
	}
	successResponse(c, http.StatusOK, message, toOrderResponse(order))
}

// ConfirmOrder records the supplier's confirmation
// @Summary Confirm purchase order
// @Tags Orders
// @Produce json
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Success 200 {object} dto.OrderResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/orders/{id}/confirm [put]
func (h *APIHandler) ConfirmOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.Repository.ConfirmOrder(id); err != nil {
		repoError(c, err, "failed to confirm order")
		return
	}
	h.respondOrder(c, id, "order confirmed")
}

// CancelOrder cancels an order that has not been received
// @Summary Cancel purchase order
// @Tags Orders
// @Produce json
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Success 200 {object} dto.OrderResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/orders/{id}/cancel [put]
func (h *APIHandler) CancelOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.Repository.CancelOrder(id); err != nil {
		repoError(c, err, "failed to cancel order")
		return
	}
	h.respondOrder(c, id, "order cancelled")
}

// ReceiveOrder books delivered quantities
// @Summary Receive order items
// @Description The order becomes partially_received or received; delivered FFE items move to delivered
// @Tags Orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Param request body dto.ReceiveOrderRequest true "Received quantities"
// @Success 200 {object} dto.OrderResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/orders/{id}/receive [put]
func (h *APIHandler) ReceiveOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.ReceiveOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	received := make(map[uint]int, len(req.Items))
	for _, it := range req.Items {
		received[it.ItemID] += it.Quantity
	}

	order, err := h.Repository.ReceiveOrderItems(id, received)
	if err != nil {
		repoError(c, err, "failed to receive items")
		return
	}
	successResponse(c, http.StatusOK, "items received", toOrderResponse(order))
}

// DeleteOrder deletes a draft order
// @Summary Delete purchase order
// @Tags Orders
// @Produce json
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/orders/{id} [delete]
func (h *APIHandler) DeleteOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.Repository.DeleteOrder(id); err != nil {
		repoError(c, err, "failed to delete order")
		return
	}
	successResponse(c, http.StatusOK, "order deleted", nil)
}

func (h *APIHandler) orderPDF(c *gin.Context, order *ds.Order) ([]byte, error) {
	if h.PDF == nil {
		return nil, errPDFDisabled
	}
	html, err := h.Documents.PurchaseOrder(order)
	if err != nil {
		return nil, err
	}
	return h.PDF.RenderPDF(c.Request.Context(), html)
}

// OrderPDF downloads the purchase order as PDF
// @Summary Purchase order PDF
// @Tags Orders
// @Produce application/pdf
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Success 200 {file} file
// @Failure 404 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/orders/{id}/pdf [get]
func (h *APIHandler) OrderPDF(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	order, err := h.Repository.GetOrder(id)
	if err != nil {
		repoError(c, err, "failed to load order")
		return
	}

	pdf, err := h.orderPDF(c, order)
	if err != nil {
		pdfError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s.pdf"`, order.Number))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
