package accounts

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/faraway-yachting/backoffice/internal/ledger/shared"
)

type Repository interface {
	FindByCode(ctx context.Context, code string) (Account, error)
	ListByType(ctx context.Context, accountType AccountType) ([]Account, error)
	ListActive(ctx context.Context) ([]Account, error)
	Deactivate(ctx context.Context, code string) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const accountColumns = `id, code, name, type, category, currency, is_active, created_at, updated_at`

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Code, &a.Name, &a.Type, &a.Category, &a.Currency, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// FindByCode resolves a single account. A miss is returned as
// ErrAccountNotFound so callers never fall back silently.
func (r *repository) FindByCode(ctx context.Context, code string) (Account, error) {
	row := r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE code=$1`, code)
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, shared.ErrAccountNotFound
		}
		return Account{}, err
	}
	return account, nil
}

func (r *repository) ListByType(ctx context.Context, accountType AccountType) ([]Account, error) {
	rows, err := r.db.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE type=$1 ORDER BY code`, accountType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func (r *repository) ListActive(ctx context.Context) ([]Account, error) {
	rows, err := r.db.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE is_active ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func (r *repository) Deactivate(ctx context.Context, code string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE accounts SET is_active=false, updated_at=NOW() WHERE code=$1`, code)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrAccountNotFound
	}
	return nil
}

func collect(rows pgx.Rows) ([]Account, error) {
	var out []Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, account)
	}
	return out, rows.Err()
}
