package periods

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	// FindByDate returns the period covering the supplied date for a
	// company, regardless of status. Absence of any period is reported
	// as errNoPeriod, which the guard treats as open.
	FindByDate(ctx context.Context, companyID int64, date time.Time) (Period, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

var errNoPeriod = errors.New("ledger/periods: no period for date")

func (r *repository) FindByDate(ctx context.Context, companyID int64, date time.Time) (Period, error) {
	var p Period
	err := r.db.QueryRow(ctx, `SELECT id, company_id, code, start_date, end_date, status, closed_at, closed_by, created_at, updated_at
FROM financial_periods WHERE company_id=$1 AND $2 BETWEEN start_date AND end_date ORDER BY start_date LIMIT 1`, companyID, date).
		Scan(&p.ID, &p.CompanyID, &p.Code, &p.StartDate, &p.EndDate, &p.Status, &p.ClosedAt, &p.ClosedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Period{}, errNoPeriod
		}
		return Period{}, err
	}
	return p, nil
}
