package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/faraway-yachting/backoffice/internal/jobs"
)

// IntegrityScanner verifies that cached journal entry totals agree with
// their lines and that no posted entry drifted out of balance. Findings
// are logged and counted; the scan never mutates ledger data.
type IntegrityScanner struct {
	db      *pgxpool.Pool
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

func NewIntegrityScanner(db *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics) *IntegrityScanner {
	return &IntegrityScanner{db: db, logger: logger, metrics: metrics}
}

const driftQuery = `
SELECT e.id, e.reference_number, e.company_id, e.status,
       e.total_debit, e.total_credit,
       COALESCE(SUM(CASE WHEN l.entry_type = 'DEBIT' THEN l.amount ELSE 0 END), 0)  AS line_debit,
       COALESCE(SUM(CASE WHEN l.entry_type = 'CREDIT' THEN l.amount ELSE 0 END), 0) AS line_credit
FROM journal_entries e
LEFT JOIN journal_entry_lines l ON l.entry_id = e.id
WHERE ($1 = 0 OR e.company_id = $1)
  AND ($2 = 0 OR date_part('year', e.entry_date) = $2)
GROUP BY e.id, e.reference_number, e.company_id, e.status, e.total_debit, e.total_credit
HAVING ABS(e.total_debit - COALESCE(SUM(CASE WHEN l.entry_type = 'DEBIT' THEN l.amount ELSE 0 END), 0)) >= 0.01
    OR ABS(e.total_credit - COALESCE(SUM(CASE WHEN l.entry_type = 'CREDIT' THEN l.amount ELSE 0 END), 0)) >= 0.01
    OR (e.status = 'POSTED' AND ABS(e.total_debit - e.total_credit) >= 0.01)`

// Handle processes a TaskGLIntegrity task.
func (s *IntegrityScanner) Handle(ctx context.Context, t *asynq.Task) error {
	var payload GLIntegrityPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	tracker := s.metrics.Track("gl_integrity")
	return tracker.End(s.scan(ctx, payload))
}

func (s *IntegrityScanner) scan(ctx context.Context, payload GLIntegrityPayload) error {
	rows, err := s.db.Query(ctx, driftQuery, payload.CompanyID, payload.FiscalYear)
	if err != nil {
		return err
	}
	defer rows.Close()

	findings := 0
	for rows.Next() {
		var (
			id                      int64
			reference, status       string
			companyID               int64
			totalDebit, lineDebit   float64
			totalCredit, lineCredit float64
		)
		if err := rows.Scan(&id, &reference, &companyID, &status, &totalDebit, &totalCredit, &lineDebit, &lineCredit); err != nil {
			return err
		}
		findings++
		s.logger.Warn("journal entry integrity drift",
			slog.Int64("entry_id", id),
			slog.String("reference", reference),
			slog.Int64("company_id", companyID),
			slog.String("status", status),
			slog.Float64("total_debit", totalDebit),
			slog.Float64("total_credit", totalCredit),
			slog.Float64("line_debit", lineDebit),
			slog.Float64("line_credit", lineCredit),
		)
		s.metrics.AddDrift(companyID, 1)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	s.logger.Info("gl integrity scan complete",
		slog.Int64("company_id", payload.CompanyID),
		slog.Int("fiscal_year", payload.FiscalYear),
		slog.Int("findings", findings),
	)
	return nil
}
