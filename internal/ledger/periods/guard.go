package periods

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/faraway-yachting/backoffice/internal/ledger/shared"
)

// Guard answers whether a company's accounting period is open for
// posting on a given date. It must run before any journal persistence.
type Guard struct {
	repo Repository
}

func NewGuard(repo Repository) *Guard {
	return &Guard{repo: repo}
}

// AssertOpen fails with ErrPeriodClosed when the date falls inside a
// closed period. Dates with no period row at all are treated as open:
// period locking is opt-in per company.
func (g *Guard) AssertOpen(ctx context.Context, companyID int64, date time.Time) error {
	period, err := g.repo.FindByDate(ctx, companyID, date)
	if err != nil {
		if errors.Is(err, errNoPeriod) {
			return nil
		}
		return err
	}
	if period.Status == PeriodStatusClosed {
		return fmt.Errorf("%w: %s (%s)", shared.ErrPeriodClosed, period.Code, date.Format("2006-01-02"))
	}
	return nil
}
