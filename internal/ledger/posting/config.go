package posting

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AccountDefaults carries the per-company account codes the line
// builders fall back to. The posting patterns themselves are fixed;
// only the codes vary per company.
type AccountDefaults struct {
	AccountsPayable string
	VATReceivable   string
	VATPayable      string
	CardReceivable  string
	DefaultExpense  string
	DefaultRevenue  string
	DefaultCash     string
	ProcessingFee   string
}

// builtinDefaults mirror the seeded chart of accounts.
var builtinDefaults = AccountDefaults{
	AccountsPayable: "2050",
	VATReceivable:   "1170",
	VATPayable:      "2170",
	CardReceivable:  "1150",
	DefaultExpense:  "5999",
	DefaultRevenue:  "4000",
	DefaultCash:     "1000",
	ProcessingFee:   "5850",
}

// PolicyPort resolves per-company posting behaviour.
type PolicyPort interface {
	// ShouldAutoPost reports whether entries for the event type post
	// immediately instead of landing as drafts.
	ShouldAutoPost(ctx context.Context, companyID int64, eventType string) (bool, error)
	// Defaults returns the company's fallback account codes.
	Defaults(ctx context.Context, companyID int64) (AccountDefaults, error)
}

// BankDirectory resolves a bank account selection to its GL code.
type BankDirectory interface {
	GLCode(ctx context.Context, bankAccountID int64) (string, error)
}

// policyRepository reads company_posting_config rows, falling back to
// the builtin defaults for companies without overrides.
type policyRepository struct {
	db *pgxpool.Pool
}

func NewPolicyRepository(db *pgxpool.Pool) PolicyPort {
	return &policyRepository{db: db}
}

func (r *policyRepository) ShouldAutoPost(ctx context.Context, companyID int64, eventType string) (bool, error) {
	var autoPost bool
	err := r.db.QueryRow(ctx, `SELECT auto_post FROM company_posting_config WHERE company_id=$1 AND event_type=$2`, companyID, eventType).Scan(&autoPost)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return true, nil
		}
		return false, err
	}
	return autoPost, nil
}

func (r *policyRepository) Defaults(ctx context.Context, companyID int64) (AccountDefaults, error) {
	defaults := builtinDefaults
	rows, err := r.db.Query(ctx, `SELECT role, account_code FROM company_account_defaults WHERE company_id=$1`, companyID)
	if err != nil {
		return defaults, err
	}
	defer rows.Close()
	for rows.Next() {
		var role, code string
		if err := rows.Scan(&role, &code); err != nil {
			return defaults, err
		}
		switch role {
		case "accounts_payable":
			defaults.AccountsPayable = code
		case "vat_receivable":
			defaults.VATReceivable = code
		case "vat_payable":
			defaults.VATPayable = code
		case "card_receivable":
			defaults.CardReceivable = code
		case "default_expense":
			defaults.DefaultExpense = code
		case "default_revenue":
			defaults.DefaultRevenue = code
		case "default_cash":
			defaults.DefaultCash = code
		case "processing_fee":
			defaults.ProcessingFee = code
		}
	}
	return defaults, rows.Err()
}

// bankDirectory resolves bank accounts through the bank_accounts table.
type bankDirectory struct {
	db *pgxpool.Pool
}

func NewBankDirectory(db *pgxpool.Pool) BankDirectory {
	return &bankDirectory{db: db}
}

var ErrBankAccountNotFound = errors.New("posting: bank account not found")

func (d *bankDirectory) GLCode(ctx context.Context, bankAccountID int64) (string, error) {
	var code string
	err := d.db.QueryRow(ctx, `SELECT gl_account_code FROM bank_accounts WHERE id=$1`, bankAccountID).Scan(&code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrBankAccountNotFound
		}
		return "", err
	}
	return code, nil
}
