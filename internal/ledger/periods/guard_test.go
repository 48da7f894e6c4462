package periods

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/faraway-yachting/backoffice/internal/ledger/shared"
)

type memoryPeriodRepo struct {
	periods []Period
}

func (r memoryPeriodRepo) FindByDate(ctx context.Context, companyID int64, date time.Time) (Period, error) {
	for _, p := range r.periods {
		if p.CompanyID == companyID && p.Contains(date) {
			return p, nil
		}
	}
	return Period{}, errNoPeriod
}

func march2026(companyID int64, status PeriodStatus) Period {
	return Period{
		CompanyID: companyID,
		Code:      "2026-03",
		StartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		Status:    status,
	}
}

func TestAssertOpenAllowsOpenPeriod(t *testing.T) {
	guard := NewGuard(memoryPeriodRepo{periods: []Period{march2026(1, PeriodStatusOpen)}})
	err := guard.AssertOpen(context.Background(), 1, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
}

func TestAssertOpenRejectsClosedPeriod(t *testing.T) {
	guard := NewGuard(memoryPeriodRepo{periods: []Period{march2026(1, PeriodStatusClosed)}})
	err := guard.AssertOpen(context.Background(), 1, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
	require.ErrorIs(t, err, shared.ErrPeriodClosed)
	require.Contains(t, err.Error(), "2026-03")
}

func TestAssertOpenTreatsMissingPeriodAsOpen(t *testing.T) {
	guard := NewGuard(memoryPeriodRepo{})
	err := guard.AssertOpen(context.Background(), 1, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
}

func TestAssertOpenScopesToCompany(t *testing.T) {
	guard := NewGuard(memoryPeriodRepo{periods: []Period{march2026(2, PeriodStatusClosed)}})
	err := guard.AssertOpen(context.Background(), 1, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
}

func TestPeriodContains(t *testing.T) {
	p := march2026(1, PeriodStatusOpen)
	require.True(t, p.Contains(p.StartDate))
	require.True(t, p.Contains(p.EndDate))
	require.False(t, p.Contains(p.EndDate.Add(24*time.Hour)))
}
