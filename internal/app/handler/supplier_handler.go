package handler

import (
	"net/http"

	"renovation/internal/app/ds"
	"renovation/internal/app/dto"

	"github.com/gin-gonic/gin"
)

// ListSuppliers returns active suppliers
// @Summary List suppliers
// @Tags Suppliers
// @Produce json
// @Security BearerAuth
// @Param query query string false "Search in name and contact"
// @Success 200 {object} dto.ListResponse
// @Router /api/suppliers [get]
func (h *APIHandler) ListSuppliers(c *gin.Context) {
	suppliers, err := h.Repository.ListSuppliers(c.Query("query"))
	if err != nil {
		repoError(c, err, "failed to list suppliers")
		return
	}

	out := make([]dto.SupplierResponse, len(suppliers))
	for i := range suppliers {
		out[i] = toSupplierResponse(&suppliers[i])
	}
	successResponse(c, http.StatusOK, "", dto.ListResponse{Items: out, Total: len(out)})
}

// GetSupplier returns one supplier
// @Summary Get supplier
// @Tags Suppliers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Supplier ID"
// @Success 200 {object} dto.SupplierResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/suppliers/{id} [get]
func (h *APIHandler) GetSupplier(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	supplier, err := h.Repository.GetSupplier(id)
	if err != nil {
		repoError(c, err, "failed to load supplier")
		return
	}
	successResponse(c, http.StatusOK, "", toSupplierResponse(supplier))
}

// CreateSupplier adds a supplier
// @Summary Create supplier
// @Tags Suppliers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SupplierRequest true "Supplier"
// @Success 201 {object} dto.SupplierResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/suppliers [post]
func (h *APIHandler) CreateSupplier(c *gin.Context) {
	var req dto.SupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	supplier := ds.Supplier{
		Name:        req.Name,
		ContactName: req.ContactName,
		Email:       req.Email,
		Phone:       req.Phone,
		Website:     req.Website,
		Address:     req.Address,
		Notes:       req.Notes,
	}
	if err := h.Repository.CreateSupplier(&supplier); err != nil {
		repoError(c, err, "failed to create supplier")
		return
	}
	successResponse(c, http.StatusCreated, "supplier created", toSupplierResponse(&supplier))
}

// UpdateSupplier changes supplier fields
// @Summary Update supplier
// @Tags Suppliers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Supplier ID"
// @Param request body dto.UpdateSupplierRequest true "Fields to change"
// @Success 200 {object} dto.SupplierResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/suppliers/{id} [put]
func (h *APIHandler) UpdateSupplier(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	updates := map[string]interface{}{}
	set := func(column string, v *string) {
		if v != nil {
			updates[column] = *v
		}
	}
	set("name", req.Name)
	set("contact_name", req.ContactName)
	set("email", req.Email)
	set("phone", req.Phone)
	set("website", req.Website)
	set("address", req.Address)
	set("notes", req.Notes)

	supplier, err := h.Repository.UpdateSupplier(id, updates)
	if err != nil {
		repoError(c, err, "failed to update supplier")
		return
	}
	successResponse(c, http.StatusOK, "supplier updated", toSupplierResponse(supplier))
}

// DeleteSupplier hides a supplier; existing orders keep it
// @Summary Delete supplier
// @Tags Suppliers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Supplier ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/suppliers/{id} [delete]
func (h *APIHandler) DeleteSupplier(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.Repository.DeleteSupplier(id); err != nil {
		repoError(c, err, "failed to delete supplier")
		return
	}
	successResponse(c, http.StatusOK, "supplier deleted", nil)
}
