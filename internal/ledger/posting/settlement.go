package posting

import (
	"errors"
	"fmt"

	"github.com/faraway-yachting/backoffice/internal/ledger/journals"
)

// BuildGatewaySettlement clears the card receivable booked at receipt
// time: debit the bank for the net amount received, debit the
// processing fee net of its VAT, debit VAT receivable for the fee VAT,
// credit the card receivable for the original gross amount.
func BuildGatewaySettlement(ev GatewaySettledEvent, defaults AccountDefaults, bankCode string) ([]journals.LineInput, string, error) {
	if ev.GrossAmount <= 0 {
		return nil, "", errors.New("posting: settlement gross amount must be positive")
	}
	if ev.NetAmount <= 0 {
		return nil, "", errors.New("posting: settlement net amount must be positive")
	}
	if bankCode == "" {
		bankCode = defaults.DefaultCash
	}

	lines := []journals.LineInput{
		debit(bankCode, "Gateway settlement received", round2(ev.NetAmount), ev.Currency),
	}
	if fee := round2(ev.FeeAmount - ev.FeeVATAmount); fee > 0 {
		lines = append(lines, debit(defaults.ProcessingFee, "Gateway processing fee", fee, ev.Currency))
	}
	if ev.FeeVATAmount > 0 {
		lines = append(lines, debit(defaults.VATReceivable, "VAT on processing fee", round2(ev.FeeVATAmount), ev.Currency))
	}
	lines = append(lines, credit(defaults.CardReceivable, "Clear card receivable", round2(ev.GrossAmount), ev.Currency))

	description := fmt.Sprintf("Gateway settlement %s", ev.SettlementID)
	return lines, description, nil
}
