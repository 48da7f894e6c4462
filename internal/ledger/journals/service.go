package journals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	ledgershared "github.com/faraway-yachting/backoffice/internal/ledger/shared"
	"github.com/faraway-yachting/backoffice/internal/shared"
)

// AuditPort records ledger events for compliance.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// PeriodGuard blocks journal writes into closed accounting periods.
type PeriodGuard interface {
	AssertOpen(ctx context.Context, companyID int64, date time.Time) error
}

// MetricsPort counts ledger activity. Implementations must be cheap;
// calls happen on the posting path.
type MetricsPort interface {
	EntryCreated(status EntryStatus)
	EntryPosted()
	ReferenceRetried()
}

// Service owns the draft -> posted lifecycle and the transactional
// persistence of entries with their lines.
type Service struct {
	repo    Repository
	guard   PeriodGuard
	audit   AuditPort
	metrics MetricsPort
	now     func() time.Time
}

func NewService(repo Repository, guard PeriodGuard, audit AuditPort) *Service {
	return &Service{repo: repo, guard: guard, audit: audit, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// WithMetrics attaches a metrics sink.
func (s *Service) WithMetrics(m MetricsPort) {
	s.metrics = m
}

func (s *Service) Get(ctx context.Context, entryID int64) (JournalEntry, error) {
	return s.repo.Get(ctx, entryID)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]JournalEntry, error) {
	return s.repo.List(ctx, filter)
}

// ExistsBySource exposes the duplicate-posting guard.
func (s *Service) ExistsBySource(ctx context.Context, docType string, docID uuid.UUID) (bool, error) {
	return s.repo.ExistsBySource(ctx, docType, docID)
}

// Create validates, numbers, and persists a new journal entry with its
// lines as one atomic unit. A reference number collision from a
// concurrent create is retried once with a fresh sequence before it is
// surfaced as fatal.
func (s *Service) Create(ctx context.Context, input CreateInput) (JournalEntry, error) {
	if err := input.Validate(); err != nil {
		return JournalEntry{}, err
	}
	if err := s.guard.AssertOpen(ctx, input.CompanyID, input.EntryDate); err != nil {
		return JournalEntry{}, err
	}

	var entry JournalEntry
	var err error
	for attempt := 0; ; attempt++ {
		entry, err = s.createOnce(ctx, input)
		if err == nil || !errors.Is(err, ledgershared.ErrReferenceConflict) || attempt == 1 {
			break
		}
		if s.metrics != nil {
			s.metrics.ReferenceRetried()
		}
	}
	if err != nil {
		return JournalEntry{}, err
	}

	if s.metrics != nil {
		s.metrics.EntryCreated(entry.Status)
	}
	s.recordAudit(ctx, input.CreatedBy, "journal.create", entry, map[string]any{
		"reference":      entry.ReferenceNumber,
		"status":         entry.Status,
		"source_type":    entry.SourceDocumentType,
		"auto_generated": entry.IsAutoGenerated,
	})
	return entry, nil
}

func (s *Service) createOnce(ctx context.Context, input CreateInput) (JournalEntry, error) {
	now := s.now()
	debit, credit := Totals(input.Lines)

	entry := JournalEntry{
		CompanyID:          input.CompanyID,
		EntryDate:          input.EntryDate,
		Description:        input.Description,
		Status:             EntryStatusDraft,
		TotalDebit:         debit,
		TotalCredit:        credit,
		CreatedBy:          input.CreatedBy,
		CreatedAt:          now,
		UpdatedAt:          now,
		SourceDocumentType: input.SourceDocumentType,
		SourceDocumentID:   input.SourceDocumentID,
		IsAutoGenerated:    input.IsAutoGenerated,
		Attachments:        input.Attachments,
	}
	if input.AutoPost {
		entry.Status = EntryStatusPosted
		postedBy := input.CreatedBy
		entry.PostedBy = &postedBy
		postedAt := now
		entry.PostedAt = &postedAt
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		seq, err := tx.MaxReferenceSequence(ctx, input.CompanyID, input.EntryDate.Year())
		if err != nil {
			return fmt.Errorf("journals: next reference: %w", err)
		}
		entry.ReferenceNumber = FormatReference(input.EntryDate.Year(), seq+1)

		id, err := tx.InsertEntry(ctx, entry)
		if err != nil {
			return err
		}
		entry.ID = id
		return tx.InsertLines(ctx, id, input.Lines)
	})
	if err != nil {
		return JournalEntry{}, err
	}
	entry.Lines = toJournalLines(entry.ID, input.Lines, now)
	return entry, nil
}

// Post transitions a draft entry to posted. Posted entries are
// terminal; a second call fails with ErrAlreadyPosted.
func (s *Service) Post(ctx context.Context, entryID int64, postedBy string) (JournalEntry, error) {
	if postedBy == "" {
		return JournalEntry{}, errors.New("journals: poster identity required")
	}
	var entry JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetEntryForUpdate(ctx, entryID)
		if err != nil {
			return err
		}
		if current.Status == EntryStatusPosted {
			return ledgershared.ErrAlreadyPosted
		}
		lines, err := tx.GetLines(ctx, entryID)
		if err != nil {
			return err
		}
		if len(lines) < 2 {
			return ledgershared.ErrTooFewLines
		}
		debit, credit := LineTotals(lines)
		if diff := debit - credit; diff >= BalanceTolerance || diff <= -BalanceTolerance {
			return &UnbalancedError{TotalDebit: debit, TotalCredit: credit}
		}
		if err := s.guard.AssertOpen(ctx, current.CompanyID, current.EntryDate); err != nil {
			return err
		}
		postedAt := s.now()
		if err := tx.MarkPosted(ctx, entryID, postedBy, postedAt); err != nil {
			return err
		}
		current.Status = EntryStatusPosted
		current.PostedBy = &postedBy
		current.PostedAt = &postedAt
		current.TotalDebit = debit
		current.TotalCredit = credit
		current.Lines = lines
		entry = current
		return nil
	})
	if err != nil {
		return JournalEntry{}, err
	}
	if s.metrics != nil {
		s.metrics.EntryPosted()
	}
	s.recordAudit(ctx, postedBy, "journal.post", entry, map[string]any{"reference": entry.ReferenceNumber})
	return entry, nil
}

// Update mutates a draft in place. Cached totals are recomputed when
// lines change. Posted entries are rejected untouched.
func (s *Service) Update(ctx context.Context, entryID int64, input UpdateInput) (JournalEntry, error) {
	var entry JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetEntryForUpdate(ctx, entryID)
		if err != nil {
			return err
		}
		if current.Status == EntryStatusPosted {
			return ledgershared.ErrAlreadyPosted
		}
		if input.EntryDate != nil {
			if err := s.guard.AssertOpen(ctx, current.CompanyID, *input.EntryDate); err != nil {
				return err
			}
			current.EntryDate = *input.EntryDate
		}
		if input.Description != nil {
			current.Description = *input.Description
		}
		if input.Attachments != nil {
			current.Attachments = input.Attachments
		}
		if input.Lines != nil {
			if len(input.Lines) < 2 {
				return ledgershared.ErrTooFewLines
			}
			if err := tx.DeleteLines(ctx, entryID); err != nil {
				return err
			}
			if err := tx.InsertLines(ctx, entryID, input.Lines); err != nil {
				return err
			}
			current.TotalDebit, current.TotalCredit = Totals(input.Lines)
			current.Lines = toJournalLines(entryID, input.Lines, s.now())
		}
		current.UpdatedAt = s.now()
		if err := tx.UpdateEntryHeader(ctx, current); err != nil {
			return err
		}
		entry = current
		return nil
	})
	if err != nil {
		return JournalEntry{}, err
	}
	s.recordAudit(ctx, input.UpdatedBy, "journal.update", entry, nil)
	return entry, nil
}

// Delete removes a draft entry and its lines. Posted entries are
// immutable and fail with ErrAlreadyPosted.
func (s *Service) Delete(ctx context.Context, entryID int64, actor string) error {
	var reference string
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetEntryForUpdate(ctx, entryID)
		if err != nil {
			return err
		}
		if current.Status == EntryStatusPosted {
			return ledgershared.ErrAlreadyPosted
		}
		reference = current.ReferenceNumber
		if err := tx.DeleteLines(ctx, entryID); err != nil {
			return err
		}
		return tx.DeleteEntry(ctx, entryID)
	})
	if err != nil {
		return err
	}
	s.recordAudit(ctx, actor, "journal.delete", JournalEntry{ID: entryID}, map[string]any{"reference": reference})
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actor, action string, entry JournalEntry, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Actor:    actor,
		Action:   action,
		Entity:   "journal_entry",
		EntityID: fmt.Sprintf("%d", entry.ID),
		Meta:     meta,
		At:       s.now(),
	})
}

func toJournalLines(entryID int64, lines []LineInput, ts time.Time) []JournalLine {
	out := make([]JournalLine, 0, len(lines))
	for _, line := range lines {
		out = append(out, JournalLine{
			EntryID:     entryID,
			AccountCode: line.AccountCode,
			AccountName: line.AccountName,
			Description: line.Description,
			EntryType:   line.EntryType,
			Amount:      line.Amount,
			Currency:    line.Currency,
			ProjectID:   line.ProjectID,
			CreatedAt:   ts,
		})
	}
	return out
}
