package journals

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/faraway-yachting/backoffice/internal/ledger/shared"
	"github.com/faraway-yachting/backoffice/internal/platform/db"
)

// ListFilter narrows journal entry queries.
type ListFilter struct {
	CompanyID int64
	From      *time.Time
	To        *time.Time
	Status    EntryStatus
	Limit     int
}

// Repository encapsulates DB operations for journal entries.
type Repository interface {
	Get(ctx context.Context, entryID int64) (JournalEntry, error)
	List(ctx context.Context, filter ListFilter) ([]JournalEntry, error)
	// ExistsBySource is the duplicate-posting fast path. The unique
	// constraint on (source_document_type, source_document_id) remains
	// the authoritative guard under concurrent triggers.
	ExistsBySource(ctx context.Context, docType string, docID uuid.UUID) (bool, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes methods available within a transaction.
type TxRepository interface {
	MaxReferenceSequence(ctx context.Context, companyID int64, year int) (int, error)
	InsertEntry(ctx context.Context, entry JournalEntry) (int64, error)
	InsertLines(ctx context.Context, entryID int64, lines []LineInput) error
	GetEntryForUpdate(ctx context.Context, entryID int64) (JournalEntry, error)
	GetLines(ctx context.Context, entryID int64) ([]JournalLine, error)
	UpdateEntryHeader(ctx context.Context, entry JournalEntry) error
	DeleteLines(ctx context.Context, entryID int64) error
	MarkPosted(ctx context.Context, entryID int64, postedBy string, postedAt time.Time) error
	DeleteEntry(ctx context.Context, entryID int64) error
}

const (
	constraintReference = "uq_journal_entries_company_reference"
	constraintSource    = "uq_journal_entries_source_document"
)

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const entryColumns = `id, reference_number, company_id, entry_date, description, status,
total_debit, total_credit, created_by, created_at, posted_by, posted_at, updated_at,
source_document_type, source_document_id, is_auto_generated, attachments`

func scanEntry(row pgx.Row) (JournalEntry, error) {
	var e JournalEntry
	var sourceID *uuid.UUID
	err := row.Scan(&e.ID, &e.ReferenceNumber, &e.CompanyID, &e.EntryDate, &e.Description, &e.Status,
		&e.TotalDebit, &e.TotalCredit, &e.CreatedBy, &e.CreatedAt, &e.PostedBy, &e.PostedAt, &e.UpdatedAt,
		&e.SourceDocumentType, &sourceID, &e.IsAutoGenerated, &e.Attachments)
	if err != nil {
		return JournalEntry{}, err
	}
	if sourceID != nil {
		e.SourceDocumentID = *sourceID
	}
	return e, nil
}

func (r *repository) Get(ctx context.Context, entryID int64) (JournalEntry, error) {
	entry, err := scanEntry(r.db.QueryRow(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE id=$1`, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return JournalEntry{}, shared.ErrEntryNotFound
		}
		return JournalEntry{}, err
	}
	lines, err := fetchLines(ctx, r.db, entryID)
	if err != nil {
		return JournalEntry{}, err
	}
	entry.Lines = lines
	return entry, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE company_id=$1`
	args := []any{filter.CompanyID}
	if filter.From != nil {
		args = append(args, *filter.From)
		query += ` AND entry_date >= $` + itoa(len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += ` AND entry_date <= $` + itoa(len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += ` AND status = $` + itoa(len(args))
	}
	query += ` ORDER BY reference_number DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + itoa(len(args))
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []JournalEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *repository) ExistsBySource(ctx context.Context, docType string, docID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM journal_entries WHERE source_document_type=$1 AND source_document_id=$2)`, docType, docID).Scan(&exists)
	return exists, err
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func fetchLines(ctx context.Context, q queryer, entryID int64) ([]JournalLine, error) {
	rows, err := q.Query(ctx, `SELECT id, entry_id, account_code, account_name, description, entry_type, amount, currency, project_id, created_at
FROM journal_entry_lines WHERE entry_id=$1 ORDER BY id ASC`, entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var lines []JournalLine
	for rows.Next() {
		var line JournalLine
		if err := rows.Scan(&line.ID, &line.EntryID, &line.AccountCode, &line.AccountName, &line.Description,
			&line.EntryType, &line.Amount, &line.Currency, &line.ProjectID, &line.CreatedAt); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

type txRepository struct {
	tx pgx.Tx
}

// MaxReferenceSequence scans the highest sequence already issued for a
// company and year. Deleted drafts leave gaps; the max keeps numbers
// monotonic without a counter table. Length-first ordering keeps the
// comparison numeric once sequences widen past four digits.
func (r *txRepository) MaxReferenceSequence(ctx context.Context, companyID int64, year int) (int, error) {
	var ref string
	err := r.tx.QueryRow(ctx, `SELECT reference_number FROM journal_entries
WHERE company_id=$1 AND reference_number LIKE $2
ORDER BY length(reference_number) DESC, reference_number DESC LIMIT 1`,
		companyID, ReferencePrefix(year)+"%").Scan(&ref)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return SequenceFromReference(ref)
}

func (r *txRepository) InsertEntry(ctx context.Context, entry JournalEntry) (int64, error) {
	var sourceID any
	if entry.SourceDocumentID != uuid.Nil {
		sourceID = entry.SourceDocumentID
	}
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO journal_entries
(reference_number, company_id, entry_date, description, status, total_debit, total_credit,
 created_by, created_at, posted_by, posted_at, updated_at, source_document_type, source_document_id, is_auto_generated, attachments)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16) RETURNING id`,
		entry.ReferenceNumber, entry.CompanyID, entry.EntryDate, entry.Description, entry.Status,
		toNumeric(entry.TotalDebit), toNumeric(entry.TotalCredit),
		entry.CreatedBy, entry.CreatedAt, entry.PostedBy, entry.PostedAt, entry.UpdatedAt,
		entry.SourceDocumentType, sourceID, entry.IsAutoGenerated, entry.Attachments).Scan(&id)
	if err != nil {
		return 0, mapUniqueViolation(err)
	}
	return id, nil
}

func (r *txRepository) InsertLines(ctx context.Context, entryID int64, lines []LineInput) error {
	for _, line := range lines {
		if _, err := r.tx.Exec(ctx, `INSERT INTO journal_entry_lines
(entry_id, account_code, account_name, description, entry_type, amount, currency, project_id)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			entryID, line.AccountCode, line.AccountName, line.Description, line.EntryType,
			toNumeric(line.Amount), line.Currency, line.ProjectID); err != nil {
			return err
		}
	}
	return nil
}

func (r *txRepository) GetEntryForUpdate(ctx context.Context, entryID int64) (JournalEntry, error) {
	entry, err := scanEntry(r.tx.QueryRow(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE id=$1 FOR UPDATE`, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return JournalEntry{}, shared.ErrEntryNotFound
		}
		return JournalEntry{}, err
	}
	return entry, nil
}

func (r *txRepository) GetLines(ctx context.Context, entryID int64) ([]JournalLine, error) {
	return fetchLines(ctx, r.tx, entryID)
}

func (r *txRepository) UpdateEntryHeader(ctx context.Context, entry JournalEntry) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE journal_entries SET entry_date=$2, description=$3, total_debit=$4, total_credit=$5, attachments=$6, updated_at=$7 WHERE id=$1`,
		entry.ID, entry.EntryDate, entry.Description, toNumeric(entry.TotalDebit), toNumeric(entry.TotalCredit), entry.Attachments, entry.UpdatedAt)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrEntryNotFound
	}
	return nil
}

func (r *txRepository) DeleteLines(ctx context.Context, entryID int64) error {
	_, err := r.tx.Exec(ctx, `DELETE FROM journal_entry_lines WHERE entry_id=$1`, entryID)
	return err
}

func (r *txRepository) MarkPosted(ctx context.Context, entryID int64, postedBy string, postedAt time.Time) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE journal_entries SET status=$2, posted_by=$3, posted_at=$4, updated_at=$4 WHERE id=$1 AND status=$5`,
		entryID, EntryStatusPosted, postedBy, postedAt, EntryStatusDraft)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrAlreadyPosted
	}
	return nil
}

func (r *txRepository) DeleteEntry(ctx context.Context, entryID int64) error {
	cmd, err := r.tx.Exec(ctx, `DELETE FROM journal_entries WHERE id=$1`, entryID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrEntryNotFound
	}
	return nil
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case constraintReference:
			return shared.ErrReferenceConflict
		case constraintSource:
			return shared.ErrDuplicateSource
		}
	}
	return err
}

// toNumeric renders amounts as text so NUMERIC columns never see
// binary float drift.
func toNumeric(v float64) any {
	return fmt.Sprintf("%.2f", v)
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
