package reports

import (
	"context"
	"strconv"
	"time"
)

// Service assembles financial reports from ledger data, with a
// version-keyed cache in front of the heavier aggregations.
type Service struct {
	repo  Repository
	cache *Cache
	now   func() time.Time
}

func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache, now: time.Now}
}

// WithNow overrides the clock, for tests.
func (s *Service) WithNow(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) ProfitAndLoss(ctx context.Context, filter ReportFilter) (ProfitAndLoss, error) {
	if filter.FiscalYear == 0 {
		filter.FiscalYear = s.now().Year()
	}
	key, err := s.cache.BuildKey(ctx, "reports", "pl", filterKey(filter))
	if err != nil {
		return ProfitAndLoss{}, err
	}
	var report ProfitAndLoss
	err = s.cache.FetchJSON(ctx, key, &report, func(ctx context.Context) (interface{}, error) {
		lines, err := s.repo.PLLines(ctx, filter)
		if err != nil {
			return nil, err
		}
		return BuildProfitAndLoss(lines), nil
	})
	return report, err
}

func (s *Service) VATSummary(ctx context.Context, filter ReportFilter) (VATSummary, error) {
	if filter.FiscalYear == 0 {
		filter.FiscalYear = s.now().Year()
	}
	key, err := s.cache.BuildKey(ctx, "reports", "vat", filterKey(filter))
	if err != nil {
		return VATSummary{}, err
	}
	var summary VATSummary
	err = s.cache.FetchJSON(ctx, key, &summary, func(ctx context.Context) (interface{}, error) {
		lines, err := s.repo.VATLines(ctx, filter)
		if err != nil {
			return nil, err
		}
		return BuildVATSummary(lines), nil
	})
	return summary, err
}

// ARAging buckets outstanding customer invoices by days overdue.
func (s *Service) ARAging(ctx context.Context, companyID int64, asOf time.Time) (AgingReport, error) {
	if asOf.IsZero() {
		asOf = s.now()
	}
	docs, err := s.repo.OpenReceivables(ctx, companyID)
	if err != nil {
		return AgingReport{}, err
	}
	return BuildAging(docs, asOf), nil
}

// APAging buckets outstanding supplier expenses by days overdue.
func (s *Service) APAging(ctx context.Context, companyID int64, asOf time.Time) (AgingReport, error) {
	if asOf.IsZero() {
		asOf = s.now()
	}
	docs, err := s.repo.OpenPayables(ctx, companyID)
	if err != nil {
		return AgingReport{}, err
	}
	return BuildAging(docs, asOf), nil
}

// Transactions is the drill-down behind a report cell. Never cached:
// auditors expect to see entries the moment they land.
func (s *Service) Transactions(ctx context.Context, q TransactionQuery) ([]TransactionRow, error) {
	return s.repo.Transactions(ctx, q)
}

// Invalidate bumps the cache version after ledger writes.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

func filterKey(filter ReportFilter) string {
	key := strconv.FormatInt(filter.CompanyID, 10) + ":" + strconv.Itoa(filter.FiscalYear)
	if filter.ProjectID != nil {
		key += ":" + strconv.FormatInt(*filter.ProjectID, 10)
	}
	return key
}
