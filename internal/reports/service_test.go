package reports

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeReportRepo struct {
	plLines     []LedgerLine
	vatLines    []LedgerLine
	receivables []OpenDocument
	payables    []OpenDocument

	mu          sync.Mutex
	plCalls     int
	lastFilter  ReportFilter
	lastTxQuery TransactionQuery
}

func (r *fakeReportRepo) PLLines(ctx context.Context, filter ReportFilter) ([]LedgerLine, error) {
	r.mu.Lock()
	r.plCalls++
	r.lastFilter = filter
	r.mu.Unlock()
	return r.plLines, nil
}

func (r *fakeReportRepo) VATLines(ctx context.Context, filter ReportFilter) ([]LedgerLine, error) {
	r.mu.Lock()
	r.lastFilter = filter
	r.mu.Unlock()
	return r.vatLines, nil
}

func (r *fakeReportRepo) Transactions(ctx context.Context, q TransactionQuery) ([]TransactionRow, error) {
	r.lastTxQuery = q
	return []TransactionRow{{Description: "Diesel", Amount: 500}}, nil
}

func (r *fakeReportRepo) OpenReceivables(ctx context.Context, companyID int64) ([]OpenDocument, error) {
	return r.receivables, nil
}

func (r *fakeReportRepo) OpenPayables(ctx context.Context, companyID int64) ([]OpenDocument, error) {
	return r.payables, nil
}

func fixedReportClock() time.Time {
	return time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
}

func TestServiceProfitAndLossDefaultsFiscalYear(t *testing.T) {
	repo := &fakeReportRepo{plLines: []LedgerLine{
		{Period: "2026-01", AccountType: "REVENUE", Credit: 1000},
	}}
	svc := NewService(repo, nil).WithNow(fixedReportClock)

	report, err := svc.ProfitAndLoss(context.Background(), ReportFilter{CompanyID: 1})
	require.NoError(t, err)
	require.Equal(t, 2026, repo.lastFilter.FiscalYear)
	require.Equal(t, 1000.0, report.Total.Revenue)
}

func TestServiceProfitAndLossUsesCache(t *testing.T) {
	repo := &fakeReportRepo{plLines: []LedgerLine{
		{Period: "2026-01", AccountType: "REVENUE", Credit: 1000},
	}}
	cache, _ := newTestCache(t)
	svc := NewService(repo, cache).WithNow(fixedReportClock)
	ctx := context.Background()
	filter := ReportFilter{CompanyID: 1, FiscalYear: 2026}

	first, err := svc.ProfitAndLoss(ctx, filter)
	require.NoError(t, err)
	second, err := svc.ProfitAndLoss(ctx, filter)
	require.NoError(t, err)
	require.Equal(t, 1, repo.plCalls)
	require.Equal(t, first, second)

	require.NoError(t, svc.Invalidate(ctx))
	_, err = svc.ProfitAndLoss(ctx, filter)
	require.NoError(t, err)
	require.Equal(t, 2, repo.plCalls)
}

func TestServiceARAgingDefaultsAsOf(t *testing.T) {
	repo := &fakeReportRepo{receivables: []OpenDocument{
		{DocumentID: "INV-1", DueDate: time.Date(2026, 7, 17, 0, 0, 0, 0, time.UTC), Outstanding: 300},
	}}
	svc := NewService(repo, nil).WithNow(fixedReportClock)

	report, err := svc.ARAging(context.Background(), 1, time.Time{})
	require.NoError(t, err)
	require.Equal(t, fixedReportClock(), report.AsOf)
	// 45 days overdue lands in the 31-60 band.
	require.Equal(t, "31-60", report.Buckets[2].Label)
	require.Equal(t, 1, report.Buckets[2].Count)
	require.Equal(t, 300.0, report.Buckets[2].Total)
}

func TestServiceAPAging(t *testing.T) {
	repo := &fakeReportRepo{payables: []OpenDocument{
		{DocumentID: "EXP-1", DueDate: time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC), Outstanding: 120},
	}}
	svc := NewService(repo, nil).WithNow(fixedReportClock)

	report, err := svc.APAging(context.Background(), 1, fixedReportClock())
	require.NoError(t, err)
	require.Equal(t, 1, report.Buckets[1].Count)
	require.Equal(t, 120.0, report.Total)
}

func TestServiceDashboardLoadsAllReports(t *testing.T) {
	repo := &fakeReportRepo{
		plLines:  []LedgerLine{{Period: "2026-01", AccountType: "REVENUE", Credit: 1000}},
		vatLines: []LedgerLine{{Period: "2026-01", AccountType: "LIABILITY", Credit: 70}},
		receivables: []OpenDocument{
			{DocumentID: "INV-1", DueDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), Outstanding: 300},
		},
		payables: []OpenDocument{
			{DocumentID: "EXP-1", DueDate: time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC), Outstanding: 120},
		},
	}
	svc := NewService(repo, nil).WithNow(fixedReportClock)

	dash, err := svc.Dashboard(context.Background(), ReportFilter{CompanyID: 1, FiscalYear: 2026})
	require.NoError(t, err)
	require.Equal(t, fixedReportClock(), dash.AsOf)
	require.Equal(t, 1000.0, dash.PL.Total.Revenue)
	require.Equal(t, 70.0, dash.VAT.Total.OutputVAT)
	require.Equal(t, 300.0, dash.ARAging.Total)
	require.Equal(t, 120.0, dash.APAging.Total)
}

func TestServiceTransactionsPassesQuery(t *testing.T) {
	repo := &fakeReportRepo{}
	svc := NewService(repo, nil)

	rows, err := svc.Transactions(context.Background(), TransactionQuery{
		CompanyID: 1,
		Period:    "2026-03",
		Category:  "Fuel",
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "2026-03", repo.lastTxQuery.Period)
	require.Equal(t, "Fuel", repo.lastTxQuery.Category)
}
