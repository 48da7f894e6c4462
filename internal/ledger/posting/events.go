package posting

import (
	"time"

	"github.com/google/uuid"
)

// Source document types stamped on auto-generated journal entries.
const (
	SourceExpenseApproval   = "EXPENSE_APPROVAL"
	SourceExpensePayment    = "EXPENSE_PAYMENT"
	SourceReceipt           = "RECEIPT"
	SourceGatewaySettlement = "GATEWAY_SETTLEMENT"
)

// GatewayMethodBeam is the payment-gateway method whose receipts debit
// the card-receivable holding account instead of a bank account,
// because gateway settlement arrives later and net of fees.
const GatewayMethodBeam = "beam"

// ExpenseItem is one line of an approved expense.
type ExpenseItem struct {
	Description string
	Amount      float64
	// AccountCode is the mapped expense account. Empty falls back to
	// the company's default expense account.
	AccountCode string
	ProjectID   *int64
}

// ExpenseApprovedEvent triggers accrual recognition: the expense and
// the payable are recognised before cash moves.
type ExpenseApprovedEvent struct {
	ExpenseID uuid.UUID
	CompanyID int64
	Date      time.Time
	Supplier  string
	Currency  string
	Items     []ExpenseItem
	VATAmount float64
}

// ExpensePaidEvent triggers cash settlement of a previously accrued
// expense: payable down, bank down.
type ExpensePaidEvent struct {
	ExpenseID     uuid.UUID
	CompanyID     int64
	Date          time.Time
	Supplier      string
	Currency      string
	Amount        float64
	BankAccountID int64
}

// ReceiptPayment is one payment method used on a receipt.
type ReceiptPayment struct {
	Method        string
	BankAccountID int64
	Amount        float64
}

// ReceiptItem is one revenue line of a receipt. Amount may be
// VAT-inclusive; the builder detects and rescales.
type ReceiptItem struct {
	Description string
	Amount      float64
	AccountCode string
	ProjectID   *int64
}

// ReceiptIssuedEvent triggers revenue recognition.
type ReceiptIssuedEvent struct {
	ReceiptID uuid.UUID
	CompanyID int64
	Date      time.Time
	Customer  string
	Currency  string
	Payments  []ReceiptPayment
	Items     []ReceiptItem
	// Subtotal is the pre-tax revenue total; VATAmount the output VAT.
	Subtotal  float64
	VATAmount float64
}

// GatewaySettledEvent records funds arriving in the bank net of
// processing fees, clearing the card receivable booked at receipt time.
type GatewaySettledEvent struct {
	SettlementID  uuid.UUID
	CompanyID     int64
	Date          time.Time
	Currency      string
	BankAccountID int64
	// GrossAmount is the original receivable; NetAmount what landed in
	// the bank; FeeAmount the processing fee including its VAT.
	GrossAmount  float64
	NetAmount    float64
	FeeAmount    float64
	FeeVATAmount float64
}
