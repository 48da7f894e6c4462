package reports

import "time"

// LedgerLine is one journal line flattened with its entry and account
// metadata, the raw material for the period aggregators.
type LedgerLine struct {
	Period      string // YYYY-MM
	EntryDate   time.Time
	Reference   string
	Description string
	AccountCode string
	AccountName string
	AccountType string
	Category    string
	ProjectID   *int64
	Debit       float64
	Credit      float64
	Attachments []string
}

// TransactionRow is one drill-down row under a period/category cell.
type TransactionRow struct {
	Date        time.Time
	Description string
	Reference   string
	Category    string
	Amount      float64
	Attachments []string
}

// OpenDocument is an unpaid invoice or bill feeding the aging report.
type OpenDocument struct {
	DocumentID   string
	Counterparty string
	DueDate      time.Time
	Outstanding  float64
}

// ReportFilter narrows report queries. CompanyID zero means all
// companies.
type ReportFilter struct {
	CompanyID  int64
	FiscalYear int
	ProjectID  *int64
}
