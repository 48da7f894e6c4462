package journals

import (
	"time"

	"github.com/google/uuid"
)

// EntryStatus enumerates journal lifecycle values.
type EntryStatus string

const (
	EntryStatusDraft  EntryStatus = "DRAFT"
	EntryStatusPosted EntryStatus = "POSTED"
)

// EntryType identifies the side of a journal line.
type EntryType string

const (
	EntryDebit  EntryType = "DEBIT"
	EntryCredit EntryType = "CREDIT"
)

// JournalEntry is the atomic unit of the ledger. Once posted it is
// immutable; drafts may be edited or deleted.
type JournalEntry struct {
	ID                 int64
	ReferenceNumber    string
	CompanyID          int64
	EntryDate          time.Time
	Description        string
	Status             EntryStatus
	TotalDebit         float64
	TotalCredit        float64
	CreatedBy          string
	CreatedAt          time.Time
	PostedBy           *string
	PostedAt           *time.Time
	UpdatedAt          time.Time
	SourceDocumentType string
	SourceDocumentID   uuid.UUID
	IsAutoGenerated    bool
	Attachments        []string
	Lines              []JournalLine
}

// HasSource reports whether the entry was generated from a business
// event document.
func (e JournalEntry) HasSource() bool {
	return e.SourceDocumentType != "" && e.SourceDocumentID != uuid.Nil
}

// JournalLine is one leg of a double-entry transaction, owned
// exclusively by its parent entry.
type JournalLine struct {
	ID          int64
	EntryID     int64
	AccountCode string
	AccountName string
	Description string
	EntryType   EntryType
	Amount      float64
	Currency    string
	ProjectID   *int64
	CreatedAt   time.Time
}
