package posting

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/faraway-yachting/backoffice/internal/platform/httpx"
)

// Handler exposes the business-event posting triggers. Callers retry
// freely: duplicates come back as successful no-ops.
type Handler struct {
	service  *Service
	logger   *slog.Logger
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/expense-approved", h.ExpenseApproved)
	r.Post("/expense-paid", h.ExpensePaid)
	r.Post("/receipt-issued", h.ReceiptIssued)
	r.Post("/gateway-settled", h.GatewaySettled)
}

type expenseItemRequest struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	AccountCode string  `json:"accountCode"`
	ProjectID   *int64  `json:"projectId"`
}

type expenseApprovedRequest struct {
	ExpenseID uuid.UUID            `json:"expenseId" validate:"required"`
	CompanyID int64                `json:"companyId" validate:"required"`
	Date      time.Time            `json:"date" validate:"required"`
	Supplier  string               `json:"supplier" validate:"required"`
	Currency  string               `json:"currency" validate:"required,len=3"`
	Items     []expenseItemRequest `json:"items" validate:"required,min=1"`
	VATAmount float64              `json:"vatAmount" validate:"gte=0"`
	CreatedBy string               `json:"createdBy" validate:"required"`
}

func (h *Handler) ExpenseApproved(w http.ResponseWriter, r *http.Request) {
	var req expenseApprovedRequest
	if !h.decode(w, r, &req) {
		return
	}
	ev := ExpenseApprovedEvent{
		ExpenseID: req.ExpenseID,
		CompanyID: req.CompanyID,
		Date:      req.Date,
		Supplier:  req.Supplier,
		Currency:  req.Currency,
		VATAmount: req.VATAmount,
	}
	for _, item := range req.Items {
		ev.Items = append(ev.Items, ExpenseItem(item))
	}
	res, err := h.service.PostExpenseApproval(r.Context(), ev, req.CreatedBy)
	h.respond(w, res, err)
}

type expensePaidRequest struct {
	ExpenseID     uuid.UUID `json:"expenseId" validate:"required"`
	CompanyID     int64     `json:"companyId" validate:"required"`
	Date          time.Time `json:"date" validate:"required"`
	Supplier      string    `json:"supplier" validate:"required"`
	Currency      string    `json:"currency" validate:"required,len=3"`
	Amount        float64   `json:"amount" validate:"gt=0"`
	BankAccountID int64     `json:"bankAccountId"`
	CreatedBy     string    `json:"createdBy" validate:"required"`
}

func (h *Handler) ExpensePaid(w http.ResponseWriter, r *http.Request) {
	var req expensePaidRequest
	if !h.decode(w, r, &req) {
		return
	}
	ev := ExpensePaidEvent{
		ExpenseID:     req.ExpenseID,
		CompanyID:     req.CompanyID,
		Date:          req.Date,
		Supplier:      req.Supplier,
		Currency:      req.Currency,
		Amount:        req.Amount,
		BankAccountID: req.BankAccountID,
	}
	res, err := h.service.PostExpensePayment(r.Context(), ev, req.CreatedBy)
	h.respond(w, res, err)
}

type receiptPaymentRequest struct {
	Method        string  `json:"method" validate:"required"`
	BankAccountID int64   `json:"bankAccountId"`
	Amount        float64 `json:"amount"`
}

type receiptItemRequest struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	AccountCode string  `json:"accountCode"`
	ProjectID   *int64  `json:"projectId"`
}

type receiptIssuedRequest struct {
	ReceiptID uuid.UUID               `json:"receiptId" validate:"required"`
	CompanyID int64                   `json:"companyId" validate:"required"`
	Date      time.Time               `json:"date" validate:"required"`
	Customer  string                  `json:"customer" validate:"required"`
	Currency  string                  `json:"currency" validate:"required,len=3"`
	Payments  []receiptPaymentRequest `json:"payments" validate:"required,min=1"`
	Items     []receiptItemRequest    `json:"items" validate:"required,min=1"`
	Subtotal  float64                 `json:"subtotal" validate:"gte=0"`
	VATAmount float64                 `json:"vatAmount" validate:"gte=0"`
	CreatedBy string                  `json:"createdBy" validate:"required"`
}

func (h *Handler) ReceiptIssued(w http.ResponseWriter, r *http.Request) {
	var req receiptIssuedRequest
	if !h.decode(w, r, &req) {
		return
	}
	ev := ReceiptIssuedEvent{
		ReceiptID: req.ReceiptID,
		CompanyID: req.CompanyID,
		Date:      req.Date,
		Customer:  req.Customer,
		Currency:  req.Currency,
		Subtotal:  req.Subtotal,
		VATAmount: req.VATAmount,
	}
	for _, payment := range req.Payments {
		ev.Payments = append(ev.Payments, ReceiptPayment(payment))
	}
	for _, item := range req.Items {
		ev.Items = append(ev.Items, ReceiptItem(item))
	}
	res, err := h.service.PostReceipt(r.Context(), ev, req.CreatedBy)
	h.respond(w, res, err)
}

type gatewaySettledRequest struct {
	SettlementID  uuid.UUID `json:"settlementId" validate:"required"`
	CompanyID     int64     `json:"companyId" validate:"required"`
	Date          time.Time `json:"date" validate:"required"`
	Currency      string    `json:"currency" validate:"required,len=3"`
	BankAccountID int64     `json:"bankAccountId" validate:"required"`
	GrossAmount   float64   `json:"grossAmount" validate:"gt=0"`
	NetAmount     float64   `json:"netAmount" validate:"gt=0"`
	FeeAmount     float64   `json:"feeAmount" validate:"gte=0"`
	FeeVATAmount  float64   `json:"feeVatAmount" validate:"gte=0"`
	CreatedBy     string    `json:"createdBy" validate:"required"`
}

func (h *Handler) GatewaySettled(w http.ResponseWriter, r *http.Request) {
	var req gatewaySettledRequest
	if !h.decode(w, r, &req) {
		return
	}
	ev := GatewaySettledEvent{
		SettlementID:  req.SettlementID,
		CompanyID:     req.CompanyID,
		Date:          req.Date,
		Currency:      req.Currency,
		BankAccountID: req.BankAccountID,
		GrossAmount:   req.GrossAmount,
		NetAmount:     req.NetAmount,
		FeeAmount:     req.FeeAmount,
		FeeVATAmount:  req.FeeVATAmount,
	}
	res, err := h.service.PostGatewaySettlement(r.Context(), ev, req.CreatedBy)
	h.respond(w, res, err)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(w, r, target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", err.Error())
		return false
	}
	if err := h.validate.Struct(target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return false
	}
	return true
}

func (h *Handler) respond(w http.ResponseWriter, result Result, err error) {
	if err != nil {
		h.logger.Error("event posting", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	status := http.StatusCreated
	if result.Duplicate {
		status = http.StatusOK
	}
	httpx.JSON(w, status, result)
}
