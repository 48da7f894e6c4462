package accounts

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/faraway-yachting/backoffice/internal/platform/httpx"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{code}", h.Get)
	r.Post("/{code}/deactivate", h.Deactivate)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var (
		result []Account
		err    error
	)
	if t := r.URL.Query().Get("type"); t != "" {
		result, err = h.service.ListByType(r.Context(), AccountType(t))
	} else {
		result, err = h.service.ListActive(r.Context())
	}
	if err != nil {
		h.logger.Error("list accounts", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"accounts": result})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	account, err := h.service.FindByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, account)
}

func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Deactivate(r.Context(), chi.URLParam(r, "code")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
