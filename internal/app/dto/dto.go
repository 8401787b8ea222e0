package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============ Common ============

type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type SuccessResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type ListResponse struct {
	Items interface{} `json:"items"`
	Total int         `json:"total"`
}

// BulkResult reports one file or recipient of a bulk operation.
type BulkResult struct {
	Name  string `json:"name"`
	OK    bool   `json:"ok"`
	ID    uint   `json:"id,omitempty"`
	Error string `json:"error,omitempty"`
}

type BulkResponse struct {
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Results   []BulkResult `json:"results"`
}

// ============ Auth ============

type RegisterRequest struct {
	Login    string `json:"login" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	FullName string `json:"full_name" binding:"required,notblank"`
	Email    string `json:"email" binding:"omitempty,email"`
	Role     int    `json:"role" binding:"omitempty,min=0,max=2"`
}

type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresIn int          `json:"expires_in"`
	User      UserResponse `json:"user"`
}

type UpdateProfileRequest struct {
	FullName *string `json:"full_name" binding:"omitempty,notblank"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,min=8,max=72"`
}

type UserResponse struct {
	ID       uint   `json:"id"`
	Login    string `json:"login"`
	FullName string `json:"full_name"`
	Email    string `json:"email,omitempty"`
	Role     int    `json:"role"`
	RoleName string `json:"role_name"`
}

// ============ Projects ============

type CreateProjectRequest struct {
	Name          string           `json:"name" binding:"required,notblank,max=150"`
	ClientName    string           `json:"client_name" binding:"max=150"`
	ClientEmail   string           `json:"client_email" binding:"omitempty,email"`
	Address       string           `json:"address"`
	DefaultMarkup *decimal.Decimal `json:"default_markup" binding:"omitempty,gte=0"`
	Budget        decimal.Decimal  `json:"budget" binding:"gte=0"`
	StartDate     *time.Time       `json:"start_date"`
	EndDate       *time.Time       `json:"end_date"`
}

type UpdateProjectRequest struct {
	Name          *string          `json:"name" binding:"omitempty,notblank,max=150"`
	ClientName    *string          `json:"client_name"`
	ClientEmail   *string          `json:"client_email" binding:"omitempty,email"`
	Address       *string          `json:"address"`
	Status        *string          `json:"status" binding:"omitempty,oneof=active on_hold completed archived"`
	DefaultMarkup *decimal.Decimal `json:"default_markup" binding:"omitempty,gte=0"`
	Budget        *decimal.Decimal `json:"budget" binding:"omitempty,gte=0"`
	StartDate     *time.Time       `json:"start_date"`
	EndDate       *time.Time       `json:"end_date"`
}

type ProjectResponse struct {
	ID            uint             `json:"id"`
	Name          string           `json:"name"`
	ClientName    string           `json:"client_name"`
	ClientEmail   string           `json:"client_email,omitempty"`
	Address       string           `json:"address,omitempty"`
	Status        string           `json:"status"`
	DefaultMarkup *decimal.Decimal `json:"default_markup,omitempty"`
	Budget        decimal.Decimal  `json:"budget"`
	StartDate     *time.Time       `json:"start_date,omitempty"`
	EndDate       *time.Time       `json:"end_date,omitempty"`
	OwnerID       uint             `json:"owner_id"`
	CreatedAt     time.Time        `json:"created_at"`
}

// ============ FFE spec items ============

type SpecItemRequest struct {
	Name         string           `json:"name" binding:"required,notblank,max=150"`
	Room         string           `json:"room" binding:"max=100"`
	Category     string           `json:"category" binding:"max=100"`
	Description  string           `json:"description"`
	SupplierID   *uint            `json:"supplier_id"`
	Quantity     int              `json:"quantity" binding:"omitempty,min=1"`
	Unit         string           `json:"unit" binding:"max=20"`
	CostPrice    decimal.Decimal  `json:"cost_price" binding:"gte=0"`
	Markup       *decimal.Decimal `json:"markup" binding:"omitempty,gte=0"`
	RRP          *decimal.Decimal `json:"rrp" binding:"omitempty,gte=0"`
	LeadTimeDays int              `json:"lead_time_days" binding:"gte=0"`
}

type UpdateSpecItemRequest struct {
	Name           *string          `json:"name" binding:"omitempty,notblank,max=150"`
	Room           *string          `json:"room"`
	Category       *string          `json:"category"`
	Description    *string          `json:"description"`
	SupplierID     *uint            `json:"supplier_id"`
	Quantity       *int             `json:"quantity" binding:"omitempty,min=1"`
	Unit           *string          `json:"unit"`
	CostPrice      *decimal.Decimal `json:"cost_price" binding:"omitempty,gte=0"`
	Markup         *decimal.Decimal `json:"markup" binding:"omitempty,gte=0"`
	RRP            *decimal.Decimal `json:"rrp" binding:"omitempty,gte=0"`
	Status         *string          `json:"status" binding:"omitempty,oneof=specified quoted ordered delivered installed"`
	ClientApproved *bool            `json:"client_approved"`
	LeadTimeDays   *int             `json:"lead_time_days" binding:"omitempty,gte=0"`
}

type ApproveSpecItemsRequest struct {
	IDs []uint `json:"ids" binding:"required,min=1"`
}

type SpecItemResponse struct {
	ID              uint             `json:"id"`
	ProjectID       uint             `json:"project_id"`
	Name            string           `json:"name"`
	Room            string           `json:"room"`
	Category        string           `json:"category"`
	Description     string           `json:"description,omitempty"`
	SupplierID      *uint            `json:"supplier_id,omitempty"`
	SupplierName    string           `json:"supplier_name,omitempty"`
	Quantity        int              `json:"quantity"`
	Unit            string           `json:"unit"`
	CostPrice       decimal.Decimal  `json:"cost_price"`
	Markup          *decimal.Decimal `json:"markup,omitempty"`
	EffectiveMarkup decimal.Decimal  `json:"effective_markup"`
	RRP             *decimal.Decimal `json:"rrp,omitempty"`
	SellingPrice    decimal.Decimal  `json:"selling_price"`
	TotalPrice      decimal.Decimal  `json:"total_price"`
	Margin          decimal.Decimal  `json:"margin"`
	Status          string           `json:"status"`
	ClientApproved  bool             `json:"client_approved"`
	Selectable      bool             `json:"selectable"`
	ImageURL        string           `json:"image_url,omitempty"`
	LeadTimeDays    int              `json:"lead_time_days"`
}

// ============ Suppliers ============

type SupplierRequest struct {
	Name        string `json:"name" binding:"required,notblank,max=150"`
	ContactName string `json:"contact_name" binding:"max=100"`
	Email       string `json:"email" binding:"omitempty,email"`
	Phone       string `json:"phone" binding:"max=30"`
	Website     string `json:"website" binding:"omitempty,url"`
	Address     string `json:"address"`
	Notes       string `json:"notes"`
}

type UpdateSupplierRequest struct {
	Name        *string `json:"name" binding:"omitempty,notblank,max=150"`
	ContactName *string `json:"contact_name"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Phone       *string `json:"phone"`
	Website     *string `json:"website" binding:"omitempty,url"`
	Address     *string `json:"address"`
	Notes       *string `json:"notes"`
}

type SupplierResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	ContactName string `json:"contact_name,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Website     string `json:"website,omitempty"`
	Address     string `json:"address,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// ============ RFQ ============

type RFQItemRequest struct {
	SpecItemID  *uint  `json:"spec_item_id"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity" binding:"omitempty,min=1"`
	Unit        string `json:"unit"`
}

type CreateRFQRequest struct {
	ProjectID   uint             `json:"project_id" binding:"required"`
	Title       string           `json:"title" binding:"required,notblank,max=150"`
	Notes       string           `json:"notes"`
	DueDate     *time.Time       `json:"due_date"`
	SupplierIDs []uint           `json:"supplier_ids" binding:"required,min=1"`
	Items       []RFQItemRequest `json:"items" binding:"required,min=1,dive"`
}

type RFQItemResponse struct {
	ID          uint   `json:"id"`
	SpecItemID  *uint  `json:"spec_item_id,omitempty"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	Unit        string `json:"unit,omitempty"`
}

type RFQSupplierResponse struct {
	SupplierID     uint       `json:"supplier_id"`
	Name           string     `json:"name"`
	Email          string     `json:"email,omitempty"`
	DeliveryStatus string     `json:"delivery_status"`
	DeliveryError  string     `json:"delivery_error,omitempty"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
}

type RFQResponse struct {
	ID        uint                  `json:"id"`
	Number    string                `json:"number"`
	ProjectID uint                  `json:"project_id"`
	Title     string                `json:"title"`
	Notes     string                `json:"notes,omitempty"`
	Status    string                `json:"status"`
	DueDate   *time.Time            `json:"due_date,omitempty"`
	SentAt    *time.Time            `json:"sent_at,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
	Items     []RFQItemResponse     `json:"items,omitempty"`
	Suppliers []RFQSupplierResponse `json:"suppliers,omitempty"`
}

type SupplierQuoteItemRequest struct {
	RFQItemID uint            `json:"rfq_item_id" binding:"required"`
	Quantity  int             `json:"quantity" binding:"omitempty,min=1"`
	UnitPrice decimal.Decimal `json:"unit_price" binding:"gte=0"`
}

// SupplierQuoteRequest comes from the studio (with supplier_id) or from the
// supplier portal callback (supplier taken from the URL).
type SupplierQuoteRequest struct {
	SupplierID   uint                       `json:"supplier_id"`
	ValidUntil   *time.Time                 `json:"valid_until"`
	LeadTimeDays int                        `json:"lead_time_days" binding:"gte=0"`
	Notes        string                     `json:"notes"`
	Items        []SupplierQuoteItemRequest `json:"items" binding:"required,min=1,dive"`
}

type SupplierQuoteItemResponse struct {
	RFQItemID   uint            `json:"rfq_item_id"`
	Description string          `json:"description,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

type SupplierQuoteResponse struct {
	ID           uint                        `json:"id"`
	RFQID        uint                        `json:"rfq_id"`
	SupplierID   uint                        `json:"supplier_id"`
	SupplierName string                      `json:"supplier_name,omitempty"`
	Status       string                      `json:"status"`
	ValidUntil   *time.Time                  `json:"valid_until,omitempty"`
	LeadTimeDays int                         `json:"lead_time_days"`
	Notes        string                      `json:"notes,omitempty"`
	Total        decimal.Decimal             `json:"total"`
	ReceivedAt   time.Time                   `json:"received_at"`
	Items        []SupplierQuoteItemResponse `json:"items,omitempty"`
}

type ComparisonOfferResponse struct {
	SupplierQuoteID uint            `json:"supplier_quote_id"`
	SupplierID      uint            `json:"supplier_id"`
	SupplierName    string          `json:"supplier_name"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	TotalPrice      decimal.Decimal `json:"total_price"`
}

type ComparisonRowResponse struct {
	RFQItemID      uint                      `json:"rfq_item_id"`
	Description    string                    `json:"description"`
	Quantity       int                       `json:"quantity"`
	Offers         []ComparisonOfferResponse `json:"offers"`
	BestSupplierID uint                      `json:"best_supplier_id,omitempty"`
	BestUnitPrice  decimal.Decimal           `json:"best_unit_price"`
}

type RFQDispatchResponse struct {
	RFQ     RFQResponse  `json:"rfq"`
	Sent    int          `json:"sent"`
	Failed  int          `json:"failed"`
	Results []BulkResult `json:"results"`
}

// ============ Purchase orders ============

type OrderItemRequest struct {
	SpecItemID  *uint           `json:"spec_item_id"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity" binding:"required,min=1"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"gte=0"`
}

type CreateOrderRequest struct {
	ProjectID        uint               `json:"project_id" binding:"required"`
	SupplierID       uint               `json:"supplier_id" binding:"required"`
	ExpectedDelivery *time.Time         `json:"expected_delivery"`
	ShippingCost     decimal.Decimal    `json:"shipping_cost" binding:"gte=0"`
	Notes            string             `json:"notes"`
	Items            []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

type UpdateOrderRequest struct {
	ExpectedDelivery *time.Time       `json:"expected_delivery"`
	ShippingCost     *decimal.Decimal `json:"shipping_cost" binding:"omitempty,gte=0"`
	Notes            *string          `json:"notes"`
}

type ReceiveItem struct {
	ItemID   uint `json:"item_id" binding:"required"`
	Quantity int  `json:"quantity" binding:"min=1"`
}

type ReceiveOrderRequest struct {
	Items []ReceiveItem `json:"items" binding:"required,min=1,dive"`
}

type OrderItemResponse struct {
	ID               uint            `json:"id"`
	SpecItemID       *uint           `json:"spec_item_id,omitempty"`
	Description      string          `json:"description"`
	Quantity         int             `json:"quantity"`
	ReceivedQuantity int             `json:"received_quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	TotalPrice       decimal.Decimal `json:"total_price"`
}

type OrderResponse struct {
	ID               uint                `json:"id"`
	Number           string              `json:"number"`
	ProjectID        uint                `json:"project_id"`
	SupplierID       uint                `json:"supplier_id"`
	SupplierName     string              `json:"supplier_name,omitempty"`
	SupplierQuoteID  *uint               `json:"supplier_quote_id,omitempty"`
	Status           string              `json:"status"`
	OrderDate        time.Time           `json:"order_date"`
	ExpectedDelivery *time.Time          `json:"expected_delivery,omitempty"`
	SentAt           *time.Time          `json:"sent_at,omitempty"`
	ConfirmedAt      *time.Time          `json:"confirmed_at,omitempty"`
	ReceivedAt       *time.Time          `json:"received_at,omitempty"`
	ShippingCost     decimal.Decimal     `json:"shipping_cost"`
	Subtotal         decimal.Decimal     `json:"subtotal"`
	GSTAmount        decimal.Decimal     `json:"gst_amount"`
	QSTAmount        decimal.Decimal     `json:"qst_amount"`
	Total            decimal.Decimal     `json:"total"`
	Notes            string              `json:"notes,omitempty"`
	Items            []OrderItemResponse `json:"items,omitempty"`
}

// ============ Client quotes / invoices ============

type LineItemRequest struct {
	SpecItemID   *uint            `json:"spec_item_id"`
	Description  string           `json:"description"`
	Quantity     int              `json:"quantity" binding:"required,min=1"`
	CostPrice    *decimal.Decimal `json:"cost_price" binding:"omitempty,gte=0"`
	Markup       *decimal.Decimal `json:"markup" binding:"omitempty,gte=0"`
	SellingPrice *decimal.Decimal `json:"selling_price" binding:"omitempty,gte=0"`
}

type CreateClientQuoteRequest struct {
	ProjectID   uint              `json:"project_id" binding:"required"`
	Title       string            `json:"title" binding:"required,notblank,max=150"`
	Description string            `json:"description"`
	DueDate     *time.Time        `json:"due_date"`
	ValidUntil  *time.Time        `json:"valid_until"`
	Charges     decimal.Decimal   `json:"charges" binding:"gte=0"`
	Notes       string            `json:"notes"`
	LineItems   []LineItemRequest `json:"line_items" binding:"required,min=1,dive"`
}

type UpdateClientQuoteRequest struct {
	Title       *string            `json:"title" binding:"omitempty,notblank,max=150"`
	Description *string            `json:"description"`
	DueDate     *time.Time         `json:"due_date"`
	ValidUntil  *time.Time         `json:"valid_until"`
	Charges     *decimal.Decimal   `json:"charges" binding:"omitempty,gte=0"`
	Notes       *string            `json:"notes"`
	LineItems   *[]LineItemRequest `json:"line_items" binding:"omitempty,min=1,dive"`
}

type SendClientQuoteRequest struct {
	To      string `json:"to" binding:"omitempty,email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type PaymentRequest struct {
	Amount     decimal.Decimal `json:"amount" binding:"gt=0"`
	Method     string          `json:"method" binding:"required,oneof=cash cheque transfer card other"`
	Reference  string          `json:"reference" binding:"max=100"`
	PaidAt     *time.Time      `json:"paid_at"`
	LineItemID *uint           `json:"line_item_id"`
}

type PaymentResponse struct {
	ID         uint            `json:"id"`
	LineItemID *uint           `json:"line_item_id,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	Reference  string          `json:"reference,omitempty"`
	PaidAt     time.Time       `json:"paid_at"`
}

type LineItemResponse struct {
	ID           uint            `json:"id"`
	SpecItemID   *uint           `json:"spec_item_id,omitempty"`
	Description  string          `json:"description"`
	Quantity     int             `json:"quantity"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	Markup       decimal.Decimal `json:"markup"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	TotalPrice   decimal.Decimal `json:"total_price"`
	Margin       decimal.Decimal `json:"margin"`
}

type ClientQuoteResponse struct {
	ID          uint               `json:"id"`
	Number      string             `json:"number"`
	ProjectID   uint               `json:"project_id"`
	ProjectName string             `json:"project_name,omitempty"`
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	Status      string             `json:"status"`
	IssueDate   time.Time          `json:"issue_date"`
	DueDate     *time.Time         `json:"due_date,omitempty"`
	ValidUntil  *time.Time         `json:"valid_until,omitempty"`
	Charges     decimal.Decimal    `json:"charges"`
	Subtotal    decimal.Decimal    `json:"subtotal"`
	GSTRate     decimal.Decimal    `json:"gst_rate"`
	QSTRate     decimal.Decimal    `json:"qst_rate"`
	GSTAmount   decimal.Decimal    `json:"gst_amount"`
	QSTAmount   decimal.Decimal    `json:"qst_amount"`
	Total       decimal.Decimal    `json:"total"`
	AmountPaid  decimal.Decimal    `json:"amount_paid"`
	Balance     decimal.Decimal    `json:"balance"`
	Notes       string             `json:"notes,omitempty"`
	SentAt      *time.Time         `json:"sent_at,omitempty"`
	ApprovedAt  *time.Time         `json:"approved_at,omitempty"`
	LineItems   []LineItemResponse `json:"line_items,omitempty"`
	Payments    []PaymentResponse  `json:"payments,omitempty"`
}

// ============ Invoice wizard ============

type StartWizardRequest struct {
	SpecItemIDs []uint `json:"spec_item_ids"`
}

type WizardSelectionRequest struct {
	SpecItemIDs []uint `json:"spec_item_ids" binding:"required,min=1"`
}

type WizardDetailsRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	DueDate     *time.Time      `json:"due_date"`
	ValidUntil  *time.Time      `json:"valid_until"`
	Charges     decimal.Decimal `json:"charges"`
	Notes       string          `json:"notes"`
}

type WizardLineRequest struct {
	Quantity     *int             `json:"quantity"`
	SellingPrice *decimal.Decimal `json:"selling_price"`
}

type WizardResponse struct {
	ID            string      `json:"id"`
	ProjectID     uint        `json:"project_id"`
	Step          int         `json:"step"`
	StepName      string      `json:"step_name"`
	Preselected   bool        `json:"preselected"`
	Candidates    interface{} `json:"candidates"`
	SelectedIDs   []uint      `json:"selected_ids"`
	Details       interface{} `json:"details"`
	Lines         interface{} `json:"lines"`
	Totals        interface{} `json:"totals"`
	CanAdvance    bool        `json:"can_advance"`
	Blocker       string      `json:"blocker,omitempty"`
	ClientQuoteID uint        `json:"client_quote_id,omitempty"`
}

// ============ Tasks ============

type CreateTaskRequest struct {
	Title       string     `json:"title" binding:"required,notblank,max=150"`
	Description string     `json:"description"`
	Column      string     `json:"column" binding:"omitempty,oneof=todo in_progress review done"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=low medium high"`
	AssigneeID  *uint      `json:"assignee_id"`
	DueDate     *time.Time `json:"due_date"`
}

type UpdateTaskRequest struct {
	Title       *string    `json:"title" binding:"omitempty,notblank,max=150"`
	Description *string    `json:"description"`
	Priority    *string    `json:"priority" binding:"omitempty,oneof=low medium high"`
	AssigneeID  *uint      `json:"assignee_id"`
	DueDate     *time.Time `json:"due_date"`
}

type MoveTaskRequest struct {
	Column   string `json:"column" binding:"required,oneof=todo in_progress review done"`
	Position int    `json:"position" binding:"gte=0"`
}

type TaskResponse struct {
	ID           uint       `json:"id"`
	ProjectID    uint       `json:"project_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Column       string     `json:"column"`
	Position     int        `json:"position"`
	Priority     string     `json:"priority"`
	AssigneeID   *uint      `json:"assignee_id,omitempty"`
	AssigneeName string     `json:"assignee_name,omitempty"`
	DueDate      *time.Time `json:"due_date,omitempty"`
}

// ============ Surveys, photos, documents ============

type CreateSurveyRequest struct {
	Title      string     `json:"title" binding:"required,notblank,max=150"`
	Room       string     `json:"room"`
	Notes      string     `json:"notes"`
	SurveyedAt *time.Time `json:"surveyed_at"`
}

type PhotoResponse struct {
	ID        uint      `json:"id"`
	SurveyID  *uint     `json:"survey_id,omitempty"`
	FileName  string    `json:"file_name"`
	Caption   string    `json:"caption,omitempty"`
	Room      string    `json:"room,omitempty"`
	URL       string    `json:"url,omitempty"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

type SurveyResponse struct {
	ID         uint            `json:"id"`
	ProjectID  uint            `json:"project_id"`
	Title      string          `json:"title"`
	Room       string          `json:"room,omitempty"`
	Notes      string          `json:"notes,omitempty"`
	SurveyedAt time.Time       `json:"surveyed_at"`
	Photos     []PhotoResponse `json:"photos"`
}

type DocumentResponse struct {
	ID          uint      `json:"id"`
	ProjectID   uint      `json:"project_id"`
	Category    string    `json:"category"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	URL         string    `json:"url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ============ Dashboard & calendar ============

type CalendarEventResponse struct {
	Date    time.Time `json:"date"`
	Kind    string    `json:"kind"`
	Title   string    `json:"title"`
	RefID   uint      `json:"ref_id"`
	Status  string    `json:"status"`
	Overdue bool      `json:"overdue"`
}

type DashboardResponse struct {
	ActiveProjects      int64            `json:"active_projects"`
	OpenRFQs            int64            `json:"open_rfqs"`
	AwaitingQuotes      int64            `json:"awaiting_quotes"`
	OrdersByStatus      map[string]int64 `json:"orders_by_status"`
	OpenOrdersValue     decimal.Decimal  `json:"open_orders_value"`
	OutstandingInvoices int64            `json:"outstanding_invoices"`
	OutstandingBalance  decimal.Decimal  `json:"outstanding_balance"`
	OverdueInvoices     int64            `json:"overdue_invoices"`
	TasksDueThisWeek    int64            `json:"tasks_due_this_week"`
	PaidThisMonth       decimal.Decimal  `json:"paid_this_month"`
}
