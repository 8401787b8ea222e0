package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"renovation/internal/app/ds"
	"renovation/internal/app/dto"
	"renovation/internal/app/repository"
	"renovation/internal/app/storage"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const maxUploadSize = 20 << 20

// fileURL presigns a stored object; an empty key or a storage failure yields "".
func (h *APIHandler) fileURL(ctx context.Context, key string) string {
	if key == "" || h.Storage == nil {
		return ""
	}
	url, err := h.Storage.GetFileURL(ctx, key)
	if err != nil {
		logrus.Warnf("presign %s: %v", key, err)
		return ""
	}
	return url
}

func (h *APIHandler) specItemResponse(c *gin.Context, item repository.PricedSpecItem) dto.SpecItemResponse {
	return toSpecItemResponse(item, h.fileURL(c.Request.Context(), item.ImageKey))
}

// ListSpecItems returns the FFE schedule of a project
// @Summary List FFE items
// @Description Items carry their derived selling price, total and margin, and whether they can be invoiced
// @Tags FFE
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Param room query string false "Room"
// @Param category query string false "Category"
// @Param status query string false "specified, quoted, ordered, delivered or installed"
// @Param approved query bool false "Client approval"
// @Success 200 {object} dto.ListResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/projects/{id}/ffe-specs [get]
func (h *APIHandler) ListSpecItems(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}

	filter := repository.SpecItemFilter{
		Room:     c.Query("room"),
		Category: c.Query("category"),
		Status:   c.Query("status"),
	}
	if v := c.Query("approved"); v != "" {
		approved, err := strconv.ParseBool(v)
		if err != nil {
			errorResponse(c, http.StatusBadRequest, "approved must be true or false")
			return
		}
		filter.Approved = &approved
	}

	items, err := h.Repository.ListSpecItems(projectID, filter)
	if err != nil {
		repoError(c, err, "failed to list FFE items")
		return
	}

	out := make([]dto.SpecItemResponse, len(items))
	for i, item := range items {
		out[i] = h.specItemResponse(c, item)
	}
	successResponse(c, http.StatusOK, "", dto.ListResponse{Items: out, Total: len(out)})
}

// CreateSpecItem adds an item to the FFE schedule
// @Summary Create FFE item
// @Tags FFE
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Param request body dto.SpecItemRequest true "Item"
// @Success 201 {object} dto.SpecItemResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/projects/{id}/ffe-specs [post]
func (h *APIHandler) CreateSpecItem(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.SpecItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	item := ds.SpecItem{
		ProjectID:    projectID,
		SupplierID:   req.SupplierID,
		Name:         req.Name,
		Room:         req.Room,
		Category:     req.Category,
		Description:  req.Description,
		Quantity:     req.Quantity,
		Unit:         req.Unit,
		CostPrice:    req.CostPrice,
		Markup:       req.Markup,
		RRP:          req.RRP,
		LeadTimeDays: req.LeadTimeDays,
	}
	if item.Quantity == 0 {
		item.Quantity = 1
	}
	if item.Unit == "" {
		item.Unit = "pcs"
	}

	if err := h.Repository.CreateSpecItem(&item); err != nil {
		repoError(c, err, "failed to create FFE item")
		return
	}

	priced, err := h.Repository.GetSpecItem(item.ID)
	if err != nil {
		repoError(c, err, "failed to load FFE item")
		return
	}
	successResponse(c, http.StatusCreated, "item created", h.specItemResponse(c, *priced))
}

// UpdateSpecItem changes an FFE item
// @Summary Update FFE item
// @Tags FFE
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Item ID"
// @Param request body dto.UpdateSpecItemRequest true "Fields to change"
// @Success 200 {object} dto.SpecItemResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/ffe-specs/{id} [put]
func (h *APIHandler) UpdateSpecItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateSpecItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Room != nil {
		updates["room"] = *req.Room
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.SupplierID != nil {
		updates["supplier_id"] = *req.SupplierID
	}
	if req.Quantity != nil {
		updates["quantity"] = *req.Quantity
	}
	if req.Unit != nil {
		updates["unit"] = *req.Unit
	}
	if req.CostPrice != nil {
		updates["cost_price"] = *req.CostPrice
	}
	if req.Markup != nil {
		updates["markup"] = *req.Markup
	}
	if req.RRP != nil {
		updates["rrp"] = *req.RRP
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.ClientApproved != nil {
		updates["client_approved"] = *req.ClientApproved
	}
	if req.LeadTimeDays != nil {
		updates["lead_time_days"] = *req.LeadTimeDays
	}

	item, err := h.Repository.UpdateSpecItem(id, updates)
	if err != nil {
		repoError(c, err, "failed to update FFE item")
		return
	}
	successResponse(c, http.StatusOK, "item updated", h.specItemResponse(c, *item))
}

// DeleteSpecItem removes an FFE item that is not on a purchase order
// @Summary Delete FFE item
// @Tags FFE
// @Produce json
// @Security BearerAuth
// @Param id path int true "Item ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/ffe-specs/{id} [delete]
func (h *APIHandler) DeleteSpecItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	item, err := h.Repository.GetSpecItem(id)
	if err != nil {
		repoError(c, err, "failed to load FFE item")
		return
	}
	if err := h.Repository.DeleteSpecItem(id); err != nil {
		repoError(c, err, "failed to delete FFE item")
		return
	}
	if item.ImageKey != "" && h.Storage != nil {
		if err := h.Storage.DeleteFile(c.Request.Context(), item.ImageKey); err != nil {
			logrus.Warn("Error deleting FFE image: ", err)
		}
	}
	successResponse(c, http.StatusOK, "item deleted", nil)
}

// ApproveSpecItems marks items as approved by the client
// @Summary Approve FFE items
// @Description Approved items become selectable in the invoice wizard even without an RRP
// @Tags FFE
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Param request body dto.ApproveSpecItemsRequest true "Item IDs"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/projects/{id}/ffe-specs/approve [put]
func (h *APIHandler) ApproveSpecItems(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.ApproveSpecItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	count, err := h.Repository.ApproveSpecItems(projectID, req.IDs)
	if err != nil {
		repoError(c, err, "failed to approve items")
		return
	}
	successResponse(c, http.StatusOK, fmt.Sprintf("%d items approved", count), gin.H{"approved": count})
}

// UploadSpecItemImage attaches a product image to an FFE item
// @Summary Upload FFE image
// @Tags FFE
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Item ID"
// @Param image formData file true "Image"
// @Success 200 {object} dto.SpecItemResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/ffe-specs/{id}/image [post]
func (h *APIHandler) UploadSpecItemImage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	item, err := h.Repository.GetSpecItem(id)
	if err != nil {
		repoError(c, err, "failed to load FFE item")
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "image file is required")
		return
	}
	if !storage.IsImage(file.Filename) {
		errorResponse(c, http.StatusBadRequest, "unsupported image type")
		return
	}
	if file.Size > maxUploadSize {
		errorResponse(c, http.StatusBadRequest, "file is too large")
		return
	}

	src, err := file.Open()
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "failed to read image")
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "failed to read image")
		return
	}

	key, err := h.Storage.UploadFile(c.Request.Context(), data, file.Filename, fmt.Sprintf("ffe/%d", item.ProjectID))
	if err != nil {
		logrus.Error("Error uploading FFE image: ", err)
		errorResponse(c, http.StatusInternalServerError, "failed to upload image")
		return
	}

	if err := h.Repository.SetSpecItemImage(id, key); err != nil {
		_ = h.Storage.DeleteFile(c.Request.Context(), key)
		repoError(c, err, "failed to save image")
		return
	}

	if item.ImageKey != "" {
		if err := h.Storage.DeleteFile(c.Request.Context(), item.ImageKey); err != nil {
			logrus.Warn("Error deleting old FFE image: ", err)
		}
	}

	item.ImageKey = key
	successResponse(c, http.StatusOK, "image uploaded", h.specItemResponse(c, *item))
}
