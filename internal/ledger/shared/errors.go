package shared

import "errors"

var (
	// ErrUnbalanced indicates debit != credit beyond tolerance.
	ErrUnbalanced = errors.New("ledger: journal lines must balance")
	// ErrTooFewLines indicates less than two lines.
	ErrTooFewLines = errors.New("ledger: journal requires at least two lines")
	// ErrPeriodClosed indicates the posting date falls inside a closed period.
	ErrPeriodClosed = errors.New("ledger: accounting period closed")
	// ErrDuplicateSource indicates a journal already exists for the source document.
	ErrDuplicateSource = errors.New("ledger: source document already posted")
	// ErrEntryNotFound indicates a missing journal entry.
	ErrEntryNotFound = errors.New("ledger: journal entry not found")
	// ErrAlreadyPosted indicates a mutation against a posted entry.
	ErrAlreadyPosted = errors.New("ledger: journal entry already posted")
	// ErrReferenceConflict indicates the generated reference number collided.
	ErrReferenceConflict = errors.New("ledger: reference number conflict")
	// ErrAccountNotFound indicates an unknown account code.
	ErrAccountNotFound = errors.New("ledger: account not found")
	// ErrAccountInactive indicates a deactivated account code.
	ErrAccountInactive = errors.New("ledger: account is inactive")
	// ErrValidation indicates malformed or incomplete input.
	ErrValidation = errors.New("ledger: validation failed")
)
