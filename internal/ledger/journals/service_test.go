package journals

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/faraway-yachting/backoffice/internal/ledger/shared"
	appshared "github.com/faraway-yachting/backoffice/internal/shared"
)

type memoryJournalRepo struct {
	entries map[int64]JournalEntry
	lines   map[int64][]JournalLine
	nextID  int64

	// forceReferenceConflicts fails the next N InsertEntry calls the
	// way a unique violation on the reference column would.
	forceReferenceConflicts int
}

type memoryJournalTx struct {
	repo *memoryJournalRepo
}

func newMemoryJournalRepo() *memoryJournalRepo {
	return &memoryJournalRepo{
		entries: make(map[int64]JournalEntry),
		lines:   make(map[int64][]JournalLine),
	}
}

func (r *memoryJournalRepo) Get(ctx context.Context, entryID int64) (JournalEntry, error) {
	entry, ok := r.entries[entryID]
	if !ok {
		return JournalEntry{}, shared.ErrEntryNotFound
	}
	entry.Lines = append([]JournalLine(nil), r.lines[entryID]...)
	return entry, nil
}

func (r *memoryJournalRepo) List(ctx context.Context, filter ListFilter) ([]JournalEntry, error) {
	var out []JournalEntry
	for _, entry := range r.entries {
		if filter.CompanyID != 0 && entry.CompanyID != filter.CompanyID {
			continue
		}
		if filter.Status != "" && entry.Status != filter.Status {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

func (r *memoryJournalRepo) ExistsBySource(ctx context.Context, docType string, docID uuid.UUID) (bool, error) {
	for _, entry := range r.entries {
		if entry.SourceDocumentType == docType && entry.SourceDocumentID == docID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryJournalRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, &memoryJournalTx{repo: r})
}

func (t *memoryJournalTx) MaxReferenceSequence(ctx context.Context, companyID int64, year int) (int, error) {
	max := 0
	for _, entry := range t.repo.entries {
		if entry.CompanyID != companyID || entry.EntryDate.Year() != year {
			continue
		}
		seq, err := SequenceFromReference(entry.ReferenceNumber)
		if err != nil {
			continue
		}
		if seq > max {
			max = seq
		}
	}
	return max, nil
}

func (t *memoryJournalTx) InsertEntry(ctx context.Context, entry JournalEntry) (int64, error) {
	if t.repo.forceReferenceConflicts > 0 {
		t.repo.forceReferenceConflicts--
		return 0, shared.ErrReferenceConflict
	}
	for _, existing := range t.repo.entries {
		if existing.CompanyID == entry.CompanyID && existing.ReferenceNumber == entry.ReferenceNumber {
			return 0, shared.ErrReferenceConflict
		}
		if entry.HasSource() && existing.SourceDocumentType == entry.SourceDocumentType && existing.SourceDocumentID == entry.SourceDocumentID {
			return 0, shared.ErrDuplicateSource
		}
	}
	t.repo.nextID++
	entry.ID = t.repo.nextID
	t.repo.entries[entry.ID] = entry
	return entry.ID, nil
}

func (t *memoryJournalTx) InsertLines(ctx context.Context, entryID int64, lines []LineInput) error {
	stored := t.repo.lines[entryID]
	for _, line := range lines {
		stored = append(stored, JournalLine{
			EntryID:     entryID,
			AccountCode: line.AccountCode,
			AccountName: line.AccountName,
			Description: line.Description,
			EntryType:   line.EntryType,
			Amount:      line.Amount,
			Currency:    line.Currency,
			ProjectID:   line.ProjectID,
		})
	}
	t.repo.lines[entryID] = stored
	return nil
}

func (t *memoryJournalTx) GetEntryForUpdate(ctx context.Context, entryID int64) (JournalEntry, error) {
	entry, ok := t.repo.entries[entryID]
	if !ok {
		return JournalEntry{}, shared.ErrEntryNotFound
	}
	return entry, nil
}

func (t *memoryJournalTx) GetLines(ctx context.Context, entryID int64) ([]JournalLine, error) {
	return append([]JournalLine(nil), t.repo.lines[entryID]...), nil
}

func (t *memoryJournalTx) UpdateEntryHeader(ctx context.Context, entry JournalEntry) error {
	if _, ok := t.repo.entries[entry.ID]; !ok {
		return shared.ErrEntryNotFound
	}
	t.repo.entries[entry.ID] = entry
	return nil
}

func (t *memoryJournalTx) DeleteLines(ctx context.Context, entryID int64) error {
	delete(t.repo.lines, entryID)
	return nil
}

func (t *memoryJournalTx) MarkPosted(ctx context.Context, entryID int64, postedBy string, postedAt time.Time) error {
	entry, ok := t.repo.entries[entryID]
	if !ok {
		return shared.ErrEntryNotFound
	}
	if entry.Status == EntryStatusPosted {
		return shared.ErrAlreadyPosted
	}
	entry.Status = EntryStatusPosted
	entry.PostedBy = &postedBy
	entry.PostedAt = &postedAt
	t.repo.entries[entryID] = entry
	return nil
}

func (t *memoryJournalTx) DeleteEntry(ctx context.Context, entryID int64) error {
	delete(t.repo.entries, entryID)
	return nil
}

type openGuard struct{}

func (openGuard) AssertOpen(ctx context.Context, companyID int64, date time.Time) error {
	return nil
}

type closedGuard struct{}

func (closedGuard) AssertOpen(ctx context.Context, companyID int64, date time.Time) error {
	return shared.ErrPeriodClosed
}

type recordingAudit struct {
	logs []appshared.AuditLog
}

func (a *recordingAudit) Record(ctx context.Context, log appshared.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

type countingMetrics struct {
	created int
	posted  int
	retries int
}

func (m *countingMetrics) EntryCreated(status EntryStatus) { m.created++ }
func (m *countingMetrics) EntryPosted()                    { m.posted++ }
func (m *countingMetrics) ReferenceRetried()               { m.retries++ }

func fixedClock() time.Time {
	return time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
}

func balancedLines() []LineInput {
	return []LineInput{
		{AccountCode: "5000", Description: "Fuel", EntryType: EntryDebit, Amount: 500, Currency: "THB"},
		{AccountCode: "2050", Description: "Payable", EntryType: EntryCredit, Amount: 500, Currency: "THB"},
	}
}

func newTestService(repo *memoryJournalRepo) (*Service, *recordingAudit, *countingMetrics) {
	audit := &recordingAudit{}
	metrics := &countingMetrics{}
	svc := NewService(repo, openGuard{}, audit)
	svc.WithNow(fixedClock)
	svc.WithMetrics(metrics)
	return svc, audit, metrics
}

func TestCreateAssignsSequentialReferences(t *testing.T) {
	repo := newMemoryJournalRepo()
	svc, audit, metrics := newTestService(repo)
	ctx := context.Background()

	first, err := svc.Create(ctx, CreateInput{
		CompanyID: 1,
		EntryDate: fixedClock(),
		CreatedBy: "alice",
		Lines:     balancedLines(),
	})
	require.NoError(t, err)
	require.Equal(t, "JE-2026-0001", first.ReferenceNumber)
	require.Equal(t, EntryStatusDraft, first.Status)

	second, err := svc.Create(ctx, CreateInput{
		CompanyID: 1,
		EntryDate: fixedClock(),
		CreatedBy: "alice",
		Lines:     balancedLines(),
	})
	require.NoError(t, err)
	require.Equal(t, "JE-2026-0002", second.ReferenceNumber)

	require.Len(t, audit.logs, 2)
	require.Equal(t, "journal.create", audit.logs[0].Action)
	require.Equal(t, 2, metrics.created)
}

func TestCreateSequencesArePerCompany(t *testing.T) {
	repo := newMemoryJournalRepo()
	svc, _, _ := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{CompanyID: 1, EntryDate: fixedClock(), CreatedBy: "alice", Lines: balancedLines()})
	require.NoError(t, err)

	other, err := svc.Create(ctx, CreateInput{CompanyID: 2, EntryDate: fixedClock(), CreatedBy: "alice", Lines: balancedLines()})
	require.NoError(t, err)
	require.Equal(t, "JE-2026-0001", other.ReferenceNumber)
}

func TestCreateSurvivesGapsInSequence(t *testing.T) {
	repo := newMemoryJournalRepo()
	svc, _, _ := newTestService(repo)
	ctx := context.Background()

	entry, err := svc.Create(ctx, CreateInput{CompanyID: 1, EntryDate: fixedClock(), CreatedBy: "alice", Lines: balancedLines()})
	require.NoError(t, err)

	// Delete the draft, leaving a gap at 0001. The next entry continues
	// from the highest surviving sequence rather than refilling the gap.
	second, err := svc.Create(ctx, CreateInput{CompanyID: 1, EntryDate: fixedClock(), CreatedBy: "alice", Lines: balancedLines()})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, entry.ID, "alice"))

	third, err := svc.Create(ctx, CreateInput{CompanyID: 1, EntryDate: fixedClock(), CreatedBy: "alice", Lines: balancedLines()})
	require.NoError(t, err)
	require.Equal(t, "JE-2026-0002", second.ReferenceNumber)
	require.Equal(t, "JE-2026-0003", third.ReferenceNumber)
}

func TestCreateRetriesReferenceConflictOnce(t *testing.T) {
	repo := newMemoryJournalRepo()
	svc, _, metrics := newTestService(repo)
	repo.forceReferenceConflicts = 1

	entry, err := svc.Create(context.Background(), CreateInput{
		CompanyID: 1,
		EntryDate: fixedClock(),
		CreatedBy: "alice",
		Lines:     balancedLines(),
	})
	require.NoError(t, err)
	require.Equal(t, "JE-2026-0001", entry.ReferenceNumber)
	require.Equal(t, 1, metrics.retries)
}

func TestCreateGivesUpAfterSecondConflict(t *testing.T) {
	repo := newMemoryJournalRepo()
	svc, _, metrics := newTestService(repo)
	repo.forceReferenceConflicts = 2

	_, err := svc.Create(context.Background(), CreateInput{
		CompanyID: 1,
		EntryDate: fixedClock(),
		CreatedBy: "alice",
		Lines:     balancedLines(),
	})
	require.ErrorIs(t, err, shared.ErrReferenceConflict)
	require.Equal(t, 1, metrics.retries)
}

func TestCreateRejectsClosedPeriod(t *testing.T) {
	repo := newMemoryJournalRepo()
	svc := NewService(repo, closedGuard{}, nil)
	svc.WithNow(fixedClock)

	_, err := svc.Create(context.Background(), CreateInput{
		CompanyID: 1,
		EntryDate: fixedClock(),
		CreatedBy: "alice",
		Lines:     balancedLines(),
	})
	require.ErrorIs(t, err, shared.ErrPeriodClosed)
	require.Empty(t, repo.entries)
}

func TestCreateRejectsSingleLine(t *testing.T) {
	repo := newMemoryJournalRepo()
	svc, _, _ := newTestService(repo)

	_, err := svc.Create(context.Background(), CreateInput{
		CompanyID: 1,
		EntryDate: fixedClock(),
		CreatedBy: "alice",
		Lines:     balancedLines()[:1],
	})
	require.ErrorIs(t, err, shared.ErrTooFewLines)
}

func TestCreateAllowsUnbalancedDraft(t *testing.T) {
	repo := newMemoryJournalRepo()
	svc, _, _ := newTestService(repo)

	lines := balancedLines()
	lines[1].Amount = 400

	entry, err := svc.Create(context.Background(), CreateInput{
		CompanyID: 1,
		EntryDate: fixedClock(),
		CreatedBy: "alice",
		Lines:     lines,
	})
	require.NoError(t, err)
	require.Equal(t, EntryStatusDraft, entry.Status)
	require.InDelta(t, 500.0, entry.TotalDebit, 0.001)
	require.InDelta(t, 400.0, entry.TotalCredit, 0.001)
}

func TestCreateAutoPostRequiresBalance(t *testing.T) {
	repo := newMemoryJournalRepo()
	svc, _, _ := newTestService(repo)

	lines := balancedLines()
	lines[1].Amount = 400

	_, err := svc.Create(context.Background(), CreateInput{
		CompanyID: 1,
		EntryDate: fixedClock(),
		CreatedBy: "alice",
		Lines:     lines,
		AutoPost:  true,
	})
	require.ErrorIs(t, err, shared.ErrUnbalanced)

	var unbalanced *UnbalancedError
	require.ErrorAs(t, err, &unbalanced)
	require.InDelta(t, 500.0, unbalanced.TotalDebit, 0.001)
	require.InDelta(t, 400.0, unbalanced.TotalCredit, 0.001)
}

func TestCreateAutoPostMarksPosted(t *testing.T) {
	repo := newMemoryJournalRepo()
	svc, _, _ := newTestService(repo)

	entry, err := svc.Create(context.Background(), CreateInput{
		CompanyID:          1,
		EntryDate:          fixedClock(),
		CreatedBy:          "system",
		Lines:              balancedLines(),
		SourceDocumentType: "EXPENSE_APPROVAL",
		SourceDocumentID:   uuid.New(),
		IsAutoGenerated:    true,
		AutoPost:           true,
	})
	require.NoError(t, err)
	require.Equal(t, EntryStatusPosted, entry.Status)
	require.NotNil(t, entry.PostedAt)
	require.NotNil(t, entry.PostedBy)
	require.Equal(t, "system", *entry.PostedBy)
}

func TestCreateRejectsDuplicateSource(t *testing.T) {
	repo := newMemoryJournalRepo()
	svc, _, _ := newTestService(repo)
	ctx := context.Background()
	docID := uuid.New()

	input := CreateInput{
		CompanyID:          1,
		EntryDate:          fixedClock(),
		CreatedBy:          "system",
		Lines:              balancedLines(),
		SourceDocumentType: "RECEIPT",
		SourceDocumentID:   docID,
		IsAutoGenerated:    true,
	}
	_, err := svc.Create(ctx, input)
	require.NoError(t, err)

	_, err = svc.Create(ctx, input)
	require.ErrorIs(t, err, shared.ErrDuplicateSource)

	exists, err := svc.ExistsBySource(ctx, "RECEIPT", docID)
	require.NoError(t, err)
	require.True(t, exists)
}

func TestPostTransitionsDraft(t *testing.T) {
	repo := newMemoryJournalRepo()
	svc, audit, metrics := newTestService(repo)
	ctx := context.Background()

	draft, err := svc.Create(ctx, CreateInput{CompanyID: 1, EntryDate: fixedClock(), CreatedBy: "alice", Lines: balancedLines()})
	require.NoError(t, err)

	posted, err := svc.Post(ctx, draft.ID, "bob")
	require.NoError(t, err)
	require.Equal(t, EntryStatusPosted, posted.Status)
	require.Equal(t, "bob", *posted.PostedBy)
	require.Equal(t, fixedClock(), *posted.PostedAt)
	require.Equal(t, 1, metrics.posted)
	require.Equal(t, "journal.post", audit.logs[len(audit.logs)-1].Action)
}

func TestPostIsTerminal(t *testing.T) {
	repo := newMemoryJournalRepo()
	svc, _, _ := newTestService(repo)
	ctx := context.Background()

	draft, err := svc.Create(ctx, CreateInput{CompanyID: 1, EntryDate: fixedClock(), CreatedBy: "alice", Lines: balancedLines()})
	require.NoError(t, err)

	_, err = svc.Post(ctx, draft.ID, "bob")
	require.NoError(t, err)

	_, err = svc.Post(ctx, draft.ID, "bob")
	require.ErrorIs(t, err, shared.ErrAlreadyPosted)
}

func TestPostRejectsUnbalancedDraft(t *testing.T) {
	repo := newMemoryJournalRepo()
	svc, _, _ := newTestService(repo)
	ctx := context.Background()

	lines := balancedLines()
	lines[1].Amount = 499.98
	draft, err := svc.Create(ctx, CreateInput{CompanyID: 1, EntryDate: fixedClock(), CreatedBy: "alice", Lines: lines})
	require.NoError(t, err)

	_, err = svc.Post(ctx, draft.ID, "bob")
	require.ErrorIs(t, err, shared.ErrUnbalanced)
}

func TestPostAcceptsRoundingDrift(t *testing.T) {
	repo := newMemoryJournalRepo()
	svc, _, _ := newTestService(repo)
	ctx := context.Background()

	lines := balancedLines()
	lines[1].Amount = 499.995
	draft, err := svc.Create(ctx, CreateInput{CompanyID: 1, EntryDate: fixedClock(), CreatedBy: "alice", Lines: lines})
	require.NoError(t, err)

	_, err = svc.Post(ctx, draft.ID, "bob")
	require.NoError(t, err)
}

func TestUpdateRejectsPostedEntry(t *testing.T) {
	repo := newMemoryJournalRepo()
	svc, _, _ := newTestService(repo)
	ctx := context.Background()

	draft, err := svc.Create(ctx, CreateInput{CompanyID: 1, EntryDate: fixedClock(), CreatedBy: "alice", Lines: balancedLines()})
	require.NoError(t, err)
	_, err = svc.Post(ctx, draft.ID, "bob")
	require.NoError(t, err)

	desc := "amended"
	_, err = svc.Update(ctx, draft.ID, UpdateInput{Description: &desc, UpdatedBy: "alice"})
	require.ErrorIs(t, err, shared.ErrAlreadyPosted)
}

func TestUpdateReplacesLinesAndTotals(t *testing.T) {
	repo := newMemoryJournalRepo()
	svc, _, _ := newTestService(repo)
	ctx := context.Background()

	draft, err := svc.Create(ctx, CreateInput{CompanyID: 1, EntryDate: fixedClock(), CreatedBy: "alice", Lines: balancedLines()})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, draft.ID, UpdateInput{
		Lines: []LineInput{
			{AccountCode: "5010", EntryType: EntryDebit, Amount: 750, Currency: "THB"},
			{AccountCode: "2050", EntryType: EntryCredit, Amount: 750, Currency: "THB"},
		},
		UpdatedBy: "alice",
	})
	require.NoError(t, err)
	require.InDelta(t, 750.0, updated.TotalDebit, 0.001)
	require.InDelta(t, 750.0, updated.TotalCredit, 0.001)
	require.Len(t, repo.lines[draft.ID], 2)
	require.Equal(t, "5010", repo.lines[draft.ID][0].AccountCode)
}

func TestDeleteRemovesDraftOnly(t *testing.T) {
	repo := newMemoryJournalRepo()
	svc, _, _ := newTestService(repo)
	ctx := context.Background()

	draft, err := svc.Create(ctx, CreateInput{CompanyID: 1, EntryDate: fixedClock(), CreatedBy: "alice", Lines: balancedLines()})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, draft.ID, "alice"))
	_, err = svc.Get(ctx, draft.ID)
	require.ErrorIs(t, err, shared.ErrEntryNotFound)

	posted, err := svc.Create(ctx, CreateInput{CompanyID: 1, EntryDate: fixedClock(), CreatedBy: "alice", Lines: balancedLines()})
	require.NoError(t, err)
	_, err = svc.Post(ctx, posted.ID, "bob")
	require.NoError(t, err)
	require.ErrorIs(t, svc.Delete(ctx, posted.ID, "alice"), shared.ErrAlreadyPosted)
}
