package handler

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"renovation/internal/app/document"
	"renovation/internal/app/middleware"
	"renovation/internal/app/repository"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Handler serves the HTML print views linked from emails.
type Handler struct {
	Repository *repository.Repository
	Auth       *middleware.AuthMiddleware
	Studio     string
}

func NewHandler(r *repository.Repository, auth *middleware.AuthMiddleware, studio string) *Handler {
	return &Handler{Repository: r, Auth: auth, Studio: studio}
}

// RegisterTemplates installs the print templates on the router.
func (h *Handler) RegisterTemplates(router *gin.Engine) error {
	tmpl, err := document.Templates()
	if err != nil {
		return err
	}
	router.SetHTMLTemplate(tmpl)
	return nil
}

// RegisterRoutes registers the print views.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	views := router.Group("/print")
	{
		views.GET("/client-quotes/:id", h.PrintClientQuote)
		views.GET("/orders/:id", h.PrintOrder)
	}
}

func (h *Handler) errorPage(ctx *gin.Context, code int, err error) {
	if code >= http.StatusInternalServerError {
		logrus.Error(err.Error())
	}
	ctx.Data(code, "text/html; charset=utf-8",
		[]byte(fmt.Sprintf("<!doctype html><title>%d</title><p>%s</p>", code, template.HTMLEscapeString(err.Error()))))
}

// authorize checks the signed link and returns the document id.
func (h *Handler) authorize(ctx *gin.Context, kind string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		h.errorPage(ctx, http.StatusBadRequest, errors.New("invalid id"))
		return 0, false
	}
	subject := fmt.Sprintf("%s/%d", kind, id)
	if err := h.Auth.VerifyPrintToken(ctx.Query("token"), subject); err != nil {
		h.errorPage(ctx, http.StatusForbidden, err)
		return 0, false
	}
	return uint(id), true
}

func (h *Handler) lookupError(ctx *gin.Context, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		h.errorPage(ctx, http.StatusNotFound, err)
		return
	}
	h.errorPage(ctx, http.StatusInternalServerError, err)
}

// PrintClientQuote renders a quote or invoice for the browser
// @Summary Client quote print view
// @Tags Print
// @Produce html
// @Param id path int true "Client quote ID"
// @Param token query string true "Signed link token"
// @Success 200 {string} string "HTML"
// @Failure 403 {string} string "HTML"
// @Router /print/client-quotes/{id} [get]
func (h *Handler) PrintClientQuote(ctx *gin.Context) {
	id, ok := h.authorize(ctx, "client-quotes")
	if !ok {
		return
	}
	q, err := h.Repository.GetClientQuote(id)
	if err != nil {
		h.lookupError(ctx, err)
		return
	}
	ctx.HTML(http.StatusOK, document.ClientQuoteTemplate, document.NewClientQuoteView(h.Studio, q))
}

// PrintOrder renders a purchase order for the browser
// @Summary Purchase order print view
// @Tags Print
// @Produce html
// @Param id path int true "Order ID"
// @Param token query string true "Signed link token"
// @Success 200 {string} string "HTML"
// @Failure 403 {string} string "HTML"
// @Router /print/orders/{id} [get]
func (h *Handler) PrintOrder(ctx *gin.Context) {
	id, ok := h.authorize(ctx, "orders")
	if !ok {
		return
	}
	order, err := h.Repository.GetOrder(id)
	if err != nil {
		h.lookupError(ctx, err)
		return
	}
	ctx.HTML(http.StatusOK, document.PurchaseOrderTemplate, document.PurchaseOrderView{Studio: h.Studio, Order: order})
}
