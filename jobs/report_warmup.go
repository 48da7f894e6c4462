package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/faraway-yachting/backoffice/internal/jobs"
	"github.com/faraway-yachting/backoffice/internal/reports"
)

// ReportWarmer primes the report cache off-peak so the first dashboard
// request of the day does not pay the aggregation cost.
type ReportWarmer struct {
	reports *reports.Service
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
	now     func() time.Time
}

func NewReportWarmer(service *reports.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportWarmer {
	return &ReportWarmer{reports: service, logger: logger, metrics: metrics, now: time.Now}
}

// Handle processes a TaskReportWarmup task.
func (w *ReportWarmer) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := w.metrics.Track("report_warmup")
	return tracker.End(w.warm(ctx))
}

func (w *ReportWarmer) warm(ctx context.Context) error {
	filter := reports.ReportFilter{FiscalYear: w.now().Year()}
	if _, err := w.reports.ProfitAndLoss(ctx, filter); err != nil {
		return err
	}
	if _, err := w.reports.VATSummary(ctx, filter); err != nil {
		return err
	}
	w.logger.Info("report cache warmed", slog.Int("fiscal_year", filter.FiscalYear))
	return nil
}
