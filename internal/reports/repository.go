package reports

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads denormalised report rows straight from the ledger
// tables. Aggregation happens in Go so the pure builders stay testable
// without a database.
type Repository interface {
	PLLines(ctx context.Context, filter ReportFilter) ([]LedgerLine, error)
	VATLines(ctx context.Context, filter ReportFilter) ([]LedgerLine, error)
	Transactions(ctx context.Context, q TransactionQuery) ([]TransactionRow, error)
	OpenReceivables(ctx context.Context, companyID int64) ([]OpenDocument, error)
	OpenPayables(ctx context.Context, companyID int64) ([]OpenDocument, error)
}

// TransactionQuery narrows the drill-down under one report cell.
type TransactionQuery struct {
	CompanyID int64
	Period    string // YYYY-MM
	Category  string
	ProjectID *int64
	Limit     int
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const plLinesQuery = `
SELECT to_char(e.entry_date, 'YYYY-MM') AS period,
       l.account_code,
       l.account_name,
       a.type,
       a.category,
       l.project_id,
       SUM(CASE WHEN l.entry_type = 'DEBIT' THEN l.amount ELSE 0 END)  AS debit,
       SUM(CASE WHEN l.entry_type = 'CREDIT' THEN l.amount ELSE 0 END) AS credit
FROM journal_entry_lines l
JOIN journal_entries e ON e.id = l.entry_id
JOIN accounts a ON a.code = l.account_code
WHERE date_part('year', e.entry_date) = $1
  AND ($2 = 0 OR e.company_id = $2)
  AND ($3::bigint IS NULL OR l.project_id = $3)
  AND a.type IN ('REVENUE', 'EXPENSE')
GROUP BY 1, l.account_code, l.account_name, a.type, a.category, l.project_id
ORDER BY 1, l.account_code`

func (r *repository) PLLines(ctx context.Context, filter ReportFilter) ([]LedgerLine, error) {
	rows, err := r.db.Query(ctx, plLinesQuery, filter.FiscalYear, filter.CompanyID, filter.ProjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LedgerLine
	for rows.Next() {
		var line LedgerLine
		if err := rows.Scan(&line.Period, &line.AccountCode, &line.AccountName, &line.AccountType, &line.Category, &line.ProjectID, &line.Debit, &line.Credit); err != nil {
			return nil, err
		}
		out = append(out, line)
	}
	return out, rows.Err()
}

const vatLinesQuery = `
SELECT to_char(e.entry_date, 'YYYY-MM') AS period,
       l.account_code,
       l.account_name,
       a.type,
       a.category,
       SUM(CASE WHEN l.entry_type = 'DEBIT' THEN l.amount ELSE 0 END)  AS debit,
       SUM(CASE WHEN l.entry_type = 'CREDIT' THEN l.amount ELSE 0 END) AS credit
FROM journal_entry_lines l
JOIN journal_entries e ON e.id = l.entry_id
JOIN accounts a ON a.code = l.account_code
WHERE date_part('year', e.entry_date) = $1
  AND ($2 = 0 OR e.company_id = $2)
  AND a.category = 'VAT'
GROUP BY 1, l.account_code, l.account_name, a.type, a.category
ORDER BY 1, l.account_code`

func (r *repository) VATLines(ctx context.Context, filter ReportFilter) ([]LedgerLine, error) {
	rows, err := r.db.Query(ctx, vatLinesQuery, filter.FiscalYear, filter.CompanyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LedgerLine
	for rows.Next() {
		var line LedgerLine
		if err := rows.Scan(&line.Period, &line.AccountCode, &line.AccountName, &line.AccountType, &line.Category, &line.Debit, &line.Credit); err != nil {
			return nil, err
		}
		out = append(out, line)
	}
	return out, rows.Err()
}

const transactionsQuery = `
SELECT e.entry_date,
       COALESCE(NULLIF(l.description, ''), e.description),
       e.reference_number,
       a.category,
       CASE WHEN l.entry_type = 'DEBIT' THEN l.amount ELSE -l.amount END,
       e.attachments
FROM journal_entry_lines l
JOIN journal_entries e ON e.id = l.entry_id
JOIN accounts a ON a.code = l.account_code
WHERE to_char(e.entry_date, 'YYYY-MM') = $1
  AND a.category = $2
  AND ($3 = 0 OR e.company_id = $3)
  AND ($4::bigint IS NULL OR l.project_id = $4)
ORDER BY e.entry_date, e.reference_number
LIMIT $5`

// Transactions returns the individual journal lines behind one report
// cell, attachments included, so figures stay auditable end to end.
func (r *repository) Transactions(ctx context.Context, q TransactionQuery) ([]TransactionRow, error) {
	limit := q.Limit
	if limit <= 0 || limit > 1000 {
		limit = 1000
	}
	rows, err := r.db.Query(ctx, transactionsQuery, q.Period, q.Category, q.CompanyID, q.ProjectID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TransactionRow
	for rows.Next() {
		var row TransactionRow
		if err := rows.Scan(&row.Date, &row.Description, &row.Reference, &row.Category, &row.Amount, &row.Attachments); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

const openReceivablesQuery = `
SELECT number, customer_name, due_date, total_amount - paid_amount
FROM invoices
WHERE ($1 = 0 OR company_id = $1)
  AND status NOT IN ('PAID', 'VOID')
  AND total_amount - paid_amount > 0
ORDER BY due_date`

func (r *repository) OpenReceivables(ctx context.Context, companyID int64) ([]OpenDocument, error) {
	return r.openDocuments(ctx, openReceivablesQuery, companyID)
}

const openPayablesQuery = `
SELECT reference, supplier_name, due_date, total_amount - paid_amount
FROM expenses
WHERE ($1 = 0 OR company_id = $1)
  AND status NOT IN ('PAID', 'VOID')
  AND total_amount - paid_amount > 0
ORDER BY due_date`

func (r *repository) OpenPayables(ctx context.Context, companyID int64) ([]OpenDocument, error) {
	return r.openDocuments(ctx, openPayablesQuery, companyID)
}

func (r *repository) openDocuments(ctx context.Context, query string, companyID int64) ([]OpenDocument, error) {
	rows, err := r.db.Query(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OpenDocument
	for rows.Next() {
		var doc OpenDocument
		if err := rows.Scan(&doc.DocumentID, &doc.Counterparty, &doc.DueDate, &doc.Outstanding); err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}
