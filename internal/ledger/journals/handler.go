package journals

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/faraway-yachting/backoffice/internal/platform/httpx"
)

type Handler struct {
	service  *Service
	logger   *slog.Logger
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/post", h.Post)
}

type lineRequest struct {
	AccountCode string  `json:"accountCode" validate:"required"`
	Description string  `json:"description"`
	EntryType   string  `json:"entryType" validate:"required,oneof=DEBIT CREDIT"`
	Amount      float64 `json:"amount" validate:"gte=0"`
	Currency    string  `json:"currency" validate:"required,len=3"`
	ProjectID   *int64  `json:"projectId"`
}

type createRequest struct {
	CompanyID   int64         `json:"companyId" validate:"required"`
	EntryDate   time.Time     `json:"entryDate" validate:"required"`
	Description string        `json:"description" validate:"required"`
	CreatedBy   string        `json:"createdBy" validate:"required"`
	Lines       []lineRequest `json:"lines" validate:"required,min=2,dive"`
	Attachments []string      `json:"attachments"`
}

type updateRequest struct {
	EntryDate   *time.Time    `json:"entryDate"`
	Description *string       `json:"description"`
	Lines       []lineRequest `json:"lines" validate:"omitempty,min=2,dive"`
	Attachments []string      `json:"attachments"`
	UpdatedBy   string        `json:"updatedBy" validate:"required"`
}

type postRequest struct {
	PostedBy string `json:"postedBy" validate:"required"`
}

func toLineInputs(lines []lineRequest) []LineInput {
	out := make([]LineInput, 0, len(lines))
	for _, line := range lines {
		out = append(out, LineInput{
			AccountCode: line.AccountCode,
			Description: line.Description,
			EntryType:   EntryType(line.EntryType),
			Amount:      line.Amount,
			Currency:    line.Currency,
			ProjectID:   line.ProjectID,
		})
	}
	return out
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	companyID, _ := strconv.ParseInt(r.URL.Query().Get("companyId"), 10, 64)
	filter := ListFilter{CompanyID: companyID, Limit: 200}
	if v := r.URL.Query().Get("status"); v != "" {
		filter.Status = EntryStatus(v)
	}
	entries, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list journals", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "entry id must be numeric")
		return
	}
	entry, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

// Create saves a manual journal entry as a draft. Drafts may be
// unbalanced; balance is enforced at post time.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	entry, err := h.service.Create(r.Context(), CreateInput{
		CompanyID:   req.CompanyID,
		EntryDate:   req.EntryDate,
		Description: req.Description,
		CreatedBy:   req.CreatedBy,
		Lines:       toLineInputs(req.Lines),
		Attachments: req.Attachments,
	})
	if err != nil {
		h.logger.Error("create journal", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "entry id must be numeric")
		return
	}
	var req updateRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	input := UpdateInput{
		EntryDate:   req.EntryDate,
		Description: req.Description,
		Attachments: req.Attachments,
		UpdatedBy:   req.UpdatedBy,
	}
	if req.Lines != nil {
		input.Lines = toLineInputs(req.Lines)
	}
	entry, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) Post(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "entry id must be numeric")
		return
	}
	var req postRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	entry, err := h.service.Post(r.Context(), id, req.PostedBy)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "entry id must be numeric")
		return
	}
	actor := r.URL.Query().Get("actor")
	if err := h.service.Delete(r.Context(), id, actor); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}
