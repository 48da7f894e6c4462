package reports

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/faraway-yachting/backoffice/internal/platform/httpx"
)

// Handler exposes the reporting endpoints. Every report also streams
// as CSV when ?format=csv is supplied.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/dashboard", h.Dashboard)
	r.Get("/pl", h.ProfitAndLoss)
	r.Get("/vat", h.VATSummary)
	r.Get("/aging/ar", h.ARAging)
	r.Get("/aging/ap", h.APAging)
	r.Get("/transactions", h.Transactions)
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.service.Dashboard(r.Context(), parseFilter(r))
	if err != nil {
		h.fail(w, "dashboard", err)
		return
	}
	httpx.JSON(w, http.StatusOK, dash)
}

func (h *Handler) ProfitAndLoss(w http.ResponseWriter, r *http.Request) {
	filter := parseFilter(r)
	report, err := h.service.ProfitAndLoss(r.Context(), filter)
	if err != nil {
		h.fail(w, "profit and loss", err)
		return
	}
	if wantsCSV(r) {
		writeCSVHeaders(w, "profit-loss.csv")
		if err := WritePLCSV(w, report, filter); err != nil {
			h.logger.Error("pl csv export", slog.Any("error", err))
		}
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) VATSummary(w http.ResponseWriter, r *http.Request) {
	filter := parseFilter(r)
	summary, err := h.service.VATSummary(r.Context(), filter)
	if err != nil {
		h.fail(w, "vat summary", err)
		return
	}
	if wantsCSV(r) {
		writeCSVHeaders(w, "vat-summary.csv")
		if err := WriteVATCSV(w, summary, filter); err != nil {
			h.logger.Error("vat csv export", slog.Any("error", err))
		}
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) ARAging(w http.ResponseWriter, r *http.Request) {
	h.aging(w, r, "AR Aging", h.service.ARAging)
}

func (h *Handler) APAging(w http.ResponseWriter, r *http.Request) {
	h.aging(w, r, "AP Aging", h.service.APAging)
}

func (h *Handler) aging(w http.ResponseWriter, r *http.Request, name string, build func(ctx context.Context, companyID int64, asOf time.Time) (AgingReport, error)) {
	companyID, _ := strconv.ParseInt(r.URL.Query().Get("companyId"), 10, 64)
	var asOf time.Time
	if raw := r.URL.Query().Get("asOf"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Parameter", "asOf must be YYYY-MM-DD")
			return
		}
		asOf = parsed
	}
	report, err := build(r.Context(), companyID, asOf)
	if err != nil {
		h.fail(w, name, err)
		return
	}
	if wantsCSV(r) {
		writeCSVHeaders(w, "aging.csv")
		if err := WriteAgingCSV(w, report, name); err != nil {
			h.logger.Error("aging csv export", slog.Any("error", err))
		}
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) Transactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q := TransactionQuery{
		Period:   query.Get("period"),
		Category: query.Get("category"),
	}
	q.CompanyID, _ = strconv.ParseInt(query.Get("companyId"), 10, 64)
	if raw := query.Get("projectId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Parameter", "projectId must be an integer")
			return
		}
		q.ProjectID = &id
	}
	q.Limit, _ = strconv.Atoi(query.Get("limit"))
	if q.Period == "" || q.Category == "" {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Parameter", "period and category are required")
		return
	}
	rows, err := h.service.Transactions(r.Context(), q)
	if err != nil {
		h.fail(w, "transactions", err)
		return
	}
	if wantsCSV(r) {
		writeCSVHeaders(w, "transactions.csv")
		if err := WriteTransactionsCSV(w, rows, "Transactions "+q.Period+" "+q.Category); err != nil {
			h.logger.Error("transactions csv export", slog.Any("error", err))
		}
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}

func (h *Handler) fail(w http.ResponseWriter, report string, err error) {
	h.logger.Error("report build", slog.String("report", report), slog.Any("error", err))
	httpx.RespondError(w, err)
}

func parseFilter(r *http.Request) ReportFilter {
	query := r.URL.Query()
	var filter ReportFilter
	filter.CompanyID, _ = strconv.ParseInt(query.Get("companyId"), 10, 64)
	filter.FiscalYear, _ = strconv.Atoi(query.Get("year"))
	if raw := query.Get("projectId"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.ProjectID = &id
		}
	}
	return filter
}

func wantsCSV(r *http.Request) bool {
	return r.URL.Query().Get("format") == "csv"
}

func writeCSVHeaders(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
}
