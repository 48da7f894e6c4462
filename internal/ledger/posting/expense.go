package posting

import (
	"errors"
	"fmt"

	"github.com/faraway-yachting/backoffice/internal/ledger/journals"
)

// BuildExpenseApproval produces the accrual pattern for an approved
// expense: debit each line's expense account (or the company default),
// debit input VAT when present, credit accounts payable for the grand
// total. Zero and negative items are skipped.
func BuildExpenseApproval(ev ExpenseApprovedEvent, defaults AccountDefaults) ([]journals.LineInput, string, error) {
	var lines []journals.LineInput
	var itemTotal float64
	for _, item := range ev.Items {
		if item.Amount <= 0 {
			continue
		}
		code := item.AccountCode
		if code == "" {
			code = defaults.DefaultExpense
		}
		line := debit(code, item.Description, round2(item.Amount), ev.Currency)
		line.ProjectID = item.ProjectID
		lines = append(lines, line)
		itemTotal += item.Amount
	}
	if len(lines) == 0 {
		return nil, "", errors.New("posting: expense has no billable items")
	}
	if ev.VATAmount > 0 {
		lines = append(lines, debit(defaults.VATReceivable, "Input VAT", round2(ev.VATAmount), ev.Currency))
	}
	grand := round2(itemTotal + ev.VATAmount)
	lines = append(lines, credit(defaults.AccountsPayable, "Payable to "+ev.Supplier, grand, ev.Currency))

	description := fmt.Sprintf("Expense approved - %s", ev.Supplier)
	return lines, description, nil
}

// BuildExpensePayment produces the cash settlement pattern: payable
// down, bank down. Exactly two lines. bankCode is the GL code resolved
// from the selected bank account; empty falls back to the default cash
// account.
func BuildExpensePayment(ev ExpensePaidEvent, defaults AccountDefaults, bankCode string) ([]journals.LineInput, string, error) {
	if ev.Amount <= 0 {
		return nil, "", errors.New("posting: payment amount must be positive")
	}
	if bankCode == "" {
		bankCode = defaults.DefaultCash
	}
	amount := round2(ev.Amount)
	lines := []journals.LineInput{
		debit(defaults.AccountsPayable, "Settle payable to "+ev.Supplier, amount, ev.Currency),
		credit(bankCode, "Payment to "+ev.Supplier, amount, ev.Currency),
	}
	description := fmt.Sprintf("Expense paid - %s", ev.Supplier)
	return lines, description, nil
}
