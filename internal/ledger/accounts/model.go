package accounts

import "time"

// AccountType enumerates chart of accounts categories.
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeRevenue   AccountType = "REVENUE"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// BalanceSide identifies the normal balance of an account.
type BalanceSide string

const (
	BalanceDebit  BalanceSide = "DEBIT"
	BalanceCredit BalanceSide = "CREDIT"
)

// NormalBalance returns the conventional balance side for a type.
func (t AccountType) NormalBalance() BalanceSide {
	switch t {
	case AccountTypeAsset, AccountTypeExpense:
		return BalanceDebit
	default:
		return BalanceCredit
	}
}

// Account models a chart of accounts node. Accounts are seeded at
// setup and only ever deactivated, never deleted, so historical
// journal lines keep resolving.
type Account struct {
	ID        int64
	Code      string
	Name      string
	Type      AccountType
	Category  string
	Currency  string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
