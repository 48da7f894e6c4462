package journals

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/faraway-yachting/backoffice/internal/ledger/shared"
)

// BalanceTolerance is the accepted drift between debit and credit
// totals, accommodating floating-point rounding on 2-decimal amounts.
const BalanceTolerance = 0.01

// LineInput describes a journal line candidate before persistence.
type LineInput struct {
	AccountCode string
	AccountName string
	Description string
	EntryType   EntryType
	Amount      float64
	Currency    string
	ProjectID   *int64
}

// CreateInput groups fields required to create a journal entry.
type CreateInput struct {
	CompanyID          int64
	EntryDate          time.Time
	Description        string
	CreatedBy          string
	Lines              []LineInput
	SourceDocumentType string
	SourceDocumentID   uuid.UUID
	IsAutoGenerated    bool
	AutoPost           bool
	Attachments        []string
}

// Validate ensures the input meets minimum criteria. Balance is only
// enforced when the entry posts immediately: manual drafts may be
// saved out of balance and fixed before posting.
func (in CreateInput) Validate() error {
	if in.CompanyID == 0 {
		return fmt.Errorf("%w: company required", shared.ErrValidation)
	}
	if in.EntryDate.IsZero() {
		return fmt.Errorf("%w: entry date required", shared.ErrValidation)
	}
	if in.CreatedBy == "" {
		return fmt.Errorf("%w: creator identity required", shared.ErrValidation)
	}
	if len(in.Lines) < 2 {
		return shared.ErrTooFewLines
	}
	for idx, line := range in.Lines {
		if line.AccountCode == "" {
			return fmt.Errorf("%w: line %d missing account code", shared.ErrValidation, idx)
		}
		if line.Amount < 0 {
			return fmt.Errorf("%w: line %d negative amount", shared.ErrValidation, idx)
		}
		if line.EntryType != EntryDebit && line.EntryType != EntryCredit {
			return fmt.Errorf("%w: line %d invalid entry type %q", shared.ErrValidation, idx, line.EntryType)
		}
	}
	if in.IsAutoGenerated && !in.HasSource() {
		return fmt.Errorf("%w: auto-generated entry requires a source document", shared.ErrValidation)
	}
	if in.AutoPost {
		return CheckBalanced(in.Lines)
	}
	return nil
}

// HasSource reports whether the input carries a source document pair.
func (in CreateInput) HasSource() bool {
	return in.SourceDocumentType != "" && in.SourceDocumentID != uuid.Nil
}

// UpdateInput carries draft mutations. Nil fields are left unchanged;
// a non-nil Lines slice replaces all existing lines.
type UpdateInput struct {
	EntryDate   *time.Time
	Description *string
	Lines       []LineInput
	Attachments []string
	UpdatedBy   string
}

// UnbalancedError reports both totals so the offending event can be
// diagnosed. It unwraps to shared.ErrUnbalanced.
type UnbalancedError struct {
	TotalDebit  float64
	TotalCredit float64
}

func (e *UnbalancedError) Error() string {
	return fmt.Sprintf("ledger: journal lines must balance: debit %.2f, credit %.2f", e.TotalDebit, e.TotalCredit)
}

func (e *UnbalancedError) Unwrap() error {
	return shared.ErrUnbalanced
}

// Totals sums debit and credit amounts over line candidates.
func Totals(lines []LineInput) (debit, credit float64) {
	for _, line := range lines {
		switch line.EntryType {
		case EntryDebit:
			debit += line.Amount
		case EntryCredit:
			credit += line.Amount
		}
	}
	return debit, credit
}

// CheckBalanced verifies debit and credit totals agree within
// tolerance. Returns *UnbalancedError on failure.
func CheckBalanced(lines []LineInput) error {
	debit, credit := Totals(lines)
	if math.Abs(debit-credit) >= BalanceTolerance {
		return &UnbalancedError{TotalDebit: debit, TotalCredit: credit}
	}
	return nil
}

// LineTotals sums persisted journal lines.
func LineTotals(lines []JournalLine) (debit, credit float64) {
	for _, line := range lines {
		switch line.EntryType {
		case EntryDebit:
			debit += line.Amount
		case EntryCredit:
			credit += line.Amount
		}
	}
	return debit, credit
}
