package handler

import (
	"renovation/internal/app/middleware"
	"renovation/internal/app/role"

	"github.com/gin-gonic/gin"
)

// RegisterAPIRoutes registers the REST API, the board socket and the supplier callback.
func (h *APIHandler) RegisterAPIRoutes(router *gin.Engine, authMiddleware *middleware.AuthMiddleware) {
	api := router.Group("/api")

	workspace := authMiddleware.WithAuthCheck(role.All...)
	procurement := authMiddleware.WithAuthCheck(role.Procurement...)
	admin := authMiddleware.WithAuthCheck(role.Admin)

	// ============ Auth ============
	auth := api.Group("/auth")
	{
		auth.POST("/register", h.AuthHandler.RegisterUser)
		auth.POST("/login", h.AuthHandler.LoginUser)

		auth.GET("/profile", workspace, h.AuthHandler.GetUserProfile)
		auth.PUT("/profile", workspace, h.AuthHandler.UpdateProfile)
		auth.POST("/logout", workspace, h.AuthHandler.LogoutUser)
	}

	users := api.Group("/users", admin)
	{
		users.GET("", h.AuthHandler.ListUsers)
		users.POST("", h.AuthHandler.CreateUser)
	}

	api.GET("/dashboard", workspace, h.Dashboard)

	// ============ Projects ============
	projects := api.Group("/projects", workspace)
	{
		projects.GET("", h.ListProjects)
		projects.POST("", h.CreateProject)
		projects.GET("/:id", h.GetProject)
		projects.PUT("/:id", h.UpdateProject)
		projects.DELETE("/:id", h.ArchiveProject)
		projects.GET("/:id/report.xlsx", h.ProjectReport)
		projects.GET("/:id/calendar", h.ProjectCalendar)

		projects.GET("/:id/ffe-specs", h.ListSpecItems)
		projects.POST("/:id/ffe-specs", h.CreateSpecItem)
		projects.PUT("/:id/ffe-specs/approve", h.ApproveSpecItems)

		projects.POST("/:id/invoice-wizard", h.StartInvoiceWizard)

		projects.GET("/:id/board", h.GetBoard)
		projects.POST("/:id/tasks", h.CreateTask)

		projects.GET("/:id/surveys", h.ListSurveys)
		projects.POST("/:id/surveys", h.CreateSurvey)
		projects.GET("/:id/photos", h.ListPhotos)
		projects.POST("/:id/photos", h.UploadPhotos)
		projects.GET("/:id/documents", h.ListDocuments)
	}

	specs := api.Group("/ffe-specs", workspace)
	{
		specs.PUT("/:id", h.UpdateSpecItem)
		specs.DELETE("/:id", h.DeleteSpecItem)
		specs.POST("/:id/image", h.UploadSpecItemImage)
	}

	// ============ Suppliers, RFQs, supplier quotes ============
	suppliers := api.Group("/suppliers", workspace)
	{
		suppliers.GET("", h.ListSuppliers)
		suppliers.POST("", h.CreateSupplier)
		suppliers.GET("/:id", h.GetSupplier)
		suppliers.PUT("/:id", h.UpdateSupplier)
		suppliers.DELETE("/:id", h.DeleteSupplier)
	}

	rfq := api.Group("/rfq", workspace)
	{
		rfq.GET("", h.ListRFQs)
		rfq.POST("", h.CreateRFQ)
		rfq.GET("/:id", h.GetRFQ)
		rfq.POST("/:id/send", h.SendRFQ)
		rfq.PUT("/:id/close", h.CloseRFQ)
		rfq.PUT("/:id/cancel", h.CancelRFQ)
		rfq.GET("/:id/quotes", h.ListSupplierQuotes)
		rfq.POST("/:id/quotes", h.RecordSupplierQuote)
		rfq.GET("/:id/comparison", h.CompareQuotes)
	}

	supplierQuotes := api.Group("/supplier-quotes", procurement)
	{
		supplierQuotes.PUT("/:id/accept", h.AcceptSupplierQuote)
		supplierQuotes.PUT("/:id/reject", h.RejectSupplierQuote)
	}

	// ============ Purchase orders ============
	orders := api.Group("/orders", workspace)
	{
		orders.GET("", h.ListOrders)
		orders.POST("", h.CreateOrder)
		orders.GET("/:id", h.GetOrder)
		orders.PUT("/:id", h.UpdateOrder)
		orders.DELETE("/:id", h.DeleteOrder)
		orders.POST("/:id/items", h.AddOrderItem)
		orders.DELETE("/:id/items/:item_id", h.RemoveOrderItem)
		orders.GET("/:id/pdf", h.OrderPDF)
		orders.PUT("/:id/cancel", h.CancelOrder)

		orders.PUT("/:id/send", procurement, h.SendOrder)
		orders.PUT("/:id/confirm", procurement, h.ConfirmOrder)
		orders.PUT("/:id/receive", procurement, h.ReceiveOrder)
	}

	// ============ Client quotes and invoices ============
	clientQuotes := api.Group("/client-quotes", workspace)
	{
		clientQuotes.GET("", h.ListClientQuotes)
		clientQuotes.POST("", h.CreateClientQuote)
		clientQuotes.GET("/:id", h.GetClientQuote)
		clientQuotes.PUT("/:id", h.UpdateClientQuote)
		clientQuotes.DELETE("/:id", h.DeleteClientQuote)
		clientQuotes.POST("/:id/send", h.SendClientQuote)
		clientQuotes.POST("/:id/test-email", h.TestEmailClientQuote)
		clientQuotes.GET("/:id/pdf", h.ClientQuotePDF)
		clientQuotes.PUT("/:id/cancel", h.CancelClientQuote)

		clientQuotes.PUT("/:id/approve", procurement, h.ApproveClientQuote)
		clientQuotes.POST("/:id/payments", procurement, h.AddPayment)
		clientQuotes.DELETE("/:id/payments/:payment_id", procurement, h.DeletePayment)
	}

	invoiceWizard := api.Group("/invoice-wizard", workspace)
	{
		invoiceWizard.GET("/:sid", h.GetInvoiceWizard)
		invoiceWizard.DELETE("/:sid", h.DiscardInvoiceWizard)
		invoiceWizard.PUT("/:sid/selection", h.SelectWizardItems)
		invoiceWizard.PUT("/:sid/details", h.SetWizardDetails)
		invoiceWizard.PUT("/:sid/lines/:idx", h.UpdateWizardLine)
		invoiceWizard.DELETE("/:sid/lines/:idx", h.RemoveWizardLine)
		invoiceWizard.POST("/:sid/next", h.NextWizardStep)
		invoiceWizard.POST("/:sid/back", h.PreviousWizardStep)
	}

	// ============ Tasks, surveys, documents ============
	tasks := api.Group("/tasks", workspace)
	{
		tasks.PUT("/:id", h.UpdateTask)
		tasks.PATCH("/:id/move", h.MoveTask)
		tasks.DELETE("/:id", h.DeleteTask)
	}

	api.DELETE("/photos/:id", workspace, h.DeletePhoto)

	documents := api.Group("/documents", workspace)
	{
		documents.POST("/upload", h.UploadDocument)
		documents.DELETE("/:id", h.DeleteDocument)
	}

	// Supplier portal callback, authorised by the shared async key.
	async := api.Group("/async")
	{
		async.PUT("/rfq/:id/suppliers/:supplier_id/quote", h.ReceiveSupplierQuote)
	}

	router.GET("/ws/projects/:id/board", workspace, h.BoardSocket)

	router.GET("/ping", h.Ping)
}
