package posting

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/faraway-yachting/backoffice/internal/ledger/journals"
)

// maxRevenueResidual bounds the rounding difference the last revenue
// line may absorb when VAT-inclusive amounts are rescaled.
const maxRevenueResidual = 0.05

// BuildReceipt produces the revenue recognition pattern for a receipt.
//
// Debits: one per payment method. The gateway method ("beam") debits
// the card-receivable holding account because settlement arrives later
// and net of fees; other methods debit the bank account resolved in
// bankCodes, or the default cash account.
//
// Credits: one per revenue item. When item amounts already include VAT
// (their sum exceeds the pre-tax subtotal) each credit is rescaled to
// its pre-tax share and the last revenue line absorbs the rounding
// residual so credits reconcile exactly to the subtotal. Output VAT is
// credited separately when present.
func BuildReceipt(ev ReceiptIssuedEvent, defaults AccountDefaults, bankCodes map[int64]string) ([]journals.LineInput, string, error) {
	var lines []journals.LineInput
	for _, payment := range ev.Payments {
		if payment.Amount <= 0 {
			continue
		}
		var code string
		if strings.EqualFold(payment.Method, GatewayMethodBeam) {
			code = defaults.CardReceivable
		} else if payment.BankAccountID != 0 {
			code = bankCodes[payment.BankAccountID]
		}
		if code == "" {
			code = defaults.DefaultCash
		}
		lines = append(lines, debit(code, "Received via "+payment.Method, round2(payment.Amount), ev.Currency))
	}
	if len(lines) == 0 {
		return nil, "", errors.New("posting: receipt has no payments")
	}

	items := make([]ReceiptItem, 0, len(ev.Items))
	var itemTotal float64
	for _, item := range ev.Items {
		if item.Amount <= 0 {
			continue
		}
		items = append(items, item)
		itemTotal += item.Amount
	}
	if len(items) == 0 {
		return nil, "", errors.New("posting: receipt has no revenue items")
	}

	vatInclusive := ev.Subtotal > 0 && itemTotal-ev.Subtotal >= journals.BalanceTolerance
	var credited float64
	for idx, item := range items {
		amount := round2(item.Amount)
		if vatInclusive {
			amount = round2(item.Amount / itemTotal * ev.Subtotal)
			if idx == len(items)-1 {
				residual := round2(ev.Subtotal - credited - amount)
				if math.Abs(residual) >= maxRevenueResidual {
					return nil, "", fmt.Errorf("posting: revenue rounding residual %.2f out of bounds", residual)
				}
				amount = round2(amount + residual)
			}
		}
		code := item.AccountCode
		if code == "" {
			code = defaults.DefaultRevenue
		}
		line := credit(code, item.Description, amount, ev.Currency)
		line.ProjectID = item.ProjectID
		lines = append(lines, line)
		credited += amount
	}
	if ev.VATAmount > 0 {
		lines = append(lines, credit(defaults.VATPayable, "Output VAT", round2(ev.VATAmount), ev.Currency))
	}

	description := fmt.Sprintf("Receipt - %s", ev.Customer)
	return lines, description, nil
}
