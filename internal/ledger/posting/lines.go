package posting

import (
	"math"

	"github.com/faraway-yachting/backoffice/internal/ledger/journals"
)

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func debit(code, description string, amount float64, currency string) journals.LineInput {
	return journals.LineInput{
		AccountCode: code,
		Description: description,
		EntryType:   journals.EntryDebit,
		Amount:      amount,
		Currency:    currency,
	}
}

func credit(code, description string, amount float64, currency string) journals.LineInput {
	return journals.LineInput{
		AccountCode: code,
		Description: description,
		EntryType:   journals.EntryCredit,
		Amount:      amount,
		Currency:    currency,
	}
}
