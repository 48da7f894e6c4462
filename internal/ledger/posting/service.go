package posting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/faraway-yachting/backoffice/internal/ledger/accounts"
	"github.com/faraway-yachting/backoffice/internal/ledger/journals"
	"github.com/faraway-yachting/backoffice/internal/ledger/shared"
)

// AccountRegistry is the chart of accounts lookup the posting layer
// verifies line codes against before persistence.
type AccountRegistry interface {
	FindByCode(ctx context.Context, code string) (accounts.Account, error)
}

// JournalWriter is the lifecycle manager the posting layer hands
// validated entries to.
type JournalWriter interface {
	Create(ctx context.Context, input journals.CreateInput) (journals.JournalEntry, error)
	ExistsBySource(ctx context.Context, docType string, docID uuid.UUID) (bool, error)
}

// Result reports the outcome of an automatic posting call. Duplicate
// means an entry already existed for the source document and nothing
// was written: re-triggered business events are no-ops by design.
type Result struct {
	Success         bool
	Duplicate       bool
	JournalEntryID  int64
	ReferenceNumber string
	Status          journals.EntryStatus
}

// Service turns business events into balanced journal entries.
type Service struct {
	journals JournalWriter
	registry AccountRegistry
	policy   PolicyPort
	banks    BankDirectory
}

func NewService(journals JournalWriter, registry AccountRegistry, policy PolicyPort, banks BankDirectory) *Service {
	return &Service{journals: journals, registry: registry, policy: policy, banks: banks}
}

// PostExpenseApproval books accrual recognition for an approved
// expense. Idempotent per expense document.
func (s *Service) PostExpenseApproval(ctx context.Context, ev ExpenseApprovedEvent, createdBy string) (Result, error) {
	if ev.ExpenseID == uuid.Nil {
		return Result{}, errors.New("posting: expense id required")
	}
	dup, err := s.isDuplicate(ctx, SourceExpenseApproval, ev.ExpenseID)
	if err != nil {
		return Result{}, err
	}
	if dup {
		return duplicateResult(), nil
	}
	defaults, err := s.policy.Defaults(ctx, ev.CompanyID)
	if err != nil {
		return Result{}, err
	}
	lines, description, err := BuildExpenseApproval(ev, defaults)
	if err != nil {
		return Result{}, err
	}
	return s.persist(ctx, persistRequest{
		companyID:   ev.CompanyID,
		date:        ev.Date,
		description: description,
		createdBy:   createdBy,
		sourceType:  SourceExpenseApproval,
		sourceID:    ev.ExpenseID,
		lines:       lines,
	})
}

// PostExpensePayment books the cash settlement of an expense.
func (s *Service) PostExpensePayment(ctx context.Context, ev ExpensePaidEvent, createdBy string) (Result, error) {
	if ev.ExpenseID == uuid.Nil {
		return Result{}, errors.New("posting: expense id required")
	}
	dup, err := s.isDuplicate(ctx, SourceExpensePayment, ev.ExpenseID)
	if err != nil {
		return Result{}, err
	}
	if dup {
		return duplicateResult(), nil
	}
	defaults, err := s.policy.Defaults(ctx, ev.CompanyID)
	if err != nil {
		return Result{}, err
	}
	bankCode, err := s.resolveBank(ctx, ev.BankAccountID)
	if err != nil {
		return Result{}, err
	}
	lines, description, err := BuildExpensePayment(ev, defaults, bankCode)
	if err != nil {
		return Result{}, err
	}
	return s.persist(ctx, persistRequest{
		companyID:   ev.CompanyID,
		date:        ev.Date,
		description: description,
		createdBy:   createdBy,
		sourceType:  SourceExpensePayment,
		sourceID:    ev.ExpenseID,
		lines:       lines,
	})
}

// PostReceipt books revenue recognition for an issued receipt.
func (s *Service) PostReceipt(ctx context.Context, ev ReceiptIssuedEvent, createdBy string) (Result, error) {
	if ev.ReceiptID == uuid.Nil {
		return Result{}, errors.New("posting: receipt id required")
	}
	dup, err := s.isDuplicate(ctx, SourceReceipt, ev.ReceiptID)
	if err != nil {
		return Result{}, err
	}
	if dup {
		return duplicateResult(), nil
	}
	defaults, err := s.policy.Defaults(ctx, ev.CompanyID)
	if err != nil {
		return Result{}, err
	}
	bankCodes := make(map[int64]string)
	for _, payment := range ev.Payments {
		if payment.BankAccountID == 0 || bankCodes[payment.BankAccountID] != "" {
			continue
		}
		code, err := s.resolveBank(ctx, payment.BankAccountID)
		if err != nil {
			return Result{}, err
		}
		bankCodes[payment.BankAccountID] = code
	}
	lines, description, err := BuildReceipt(ev, defaults, bankCodes)
	if err != nil {
		return Result{}, err
	}
	return s.persist(ctx, persistRequest{
		companyID:   ev.CompanyID,
		date:        ev.Date,
		description: description,
		createdBy:   createdBy,
		sourceType:  SourceReceipt,
		sourceID:    ev.ReceiptID,
		lines:       lines,
	})
}

// PostGatewaySettlement clears the card receivable when gateway funds
// land in the bank.
func (s *Service) PostGatewaySettlement(ctx context.Context, ev GatewaySettledEvent, createdBy string) (Result, error) {
	if ev.SettlementID == uuid.Nil {
		return Result{}, errors.New("posting: settlement id required")
	}
	dup, err := s.isDuplicate(ctx, SourceGatewaySettlement, ev.SettlementID)
	if err != nil {
		return Result{}, err
	}
	if dup {
		return duplicateResult(), nil
	}
	defaults, err := s.policy.Defaults(ctx, ev.CompanyID)
	if err != nil {
		return Result{}, err
	}
	bankCode, err := s.resolveBank(ctx, ev.BankAccountID)
	if err != nil {
		return Result{}, err
	}
	lines, description, err := BuildGatewaySettlement(ev, defaults, bankCode)
	if err != nil {
		return Result{}, err
	}
	return s.persist(ctx, persistRequest{
		companyID:   ev.CompanyID,
		date:        ev.Date,
		description: description,
		createdBy:   createdBy,
		sourceType:  SourceGatewaySettlement,
		sourceID:    ev.SettlementID,
		lines:       lines,
	})
}

type persistRequest struct {
	companyID   int64
	date        time.Time
	description string
	createdBy   string
	sourceType  string
	sourceID    uuid.UUID
	lines       []journals.LineInput
}

func (s *Service) persist(ctx context.Context, req persistRequest) (Result, error) {
	lines, err := s.resolveAccountNames(ctx, req.lines)
	if err != nil {
		return Result{}, err
	}
	// Builders balance by construction; this is the mandatory second,
	// independent check before anything is written.
	if err := journals.CheckBalanced(lines); err != nil {
		return Result{}, fmt.Errorf("posting: %s %s: %w", req.sourceType, req.sourceID, err)
	}
	autoPost, err := s.policy.ShouldAutoPost(ctx, req.companyID, req.sourceType)
	if err != nil {
		return Result{}, err
	}
	entry, err := s.journals.Create(ctx, journals.CreateInput{
		CompanyID:          req.companyID,
		EntryDate:          req.date,
		Description:        req.description,
		CreatedBy:          req.createdBy,
		Lines:              lines,
		SourceDocumentType: req.sourceType,
		SourceDocumentID:   req.sourceID,
		IsAutoGenerated:    true,
		AutoPost:           autoPost,
	})
	if err != nil {
		// Lost the race against a concurrent trigger for the same
		// document: the constraint held, so this call is a no-op.
		if errors.Is(err, shared.ErrDuplicateSource) {
			return duplicateResult(), nil
		}
		return Result{}, err
	}
	return Result{
		Success:         true,
		JournalEntryID:  entry.ID,
		ReferenceNumber: entry.ReferenceNumber,
		Status:          entry.Status,
	}, nil
}

// resolveAccountNames verifies every line code against the registry
// and caches the account name on the line. Unknown codes are fatal
// here so they never reach persistence.
func (s *Service) resolveAccountNames(ctx context.Context, lines []journals.LineInput) ([]journals.LineInput, error) {
	names := make(map[string]string, len(lines))
	out := make([]journals.LineInput, len(lines))
	for i, line := range lines {
		name, ok := names[line.AccountCode]
		if !ok {
			account, err := s.registry.FindByCode(ctx, line.AccountCode)
			if err != nil {
				return nil, fmt.Errorf("posting: line account %s: %w", line.AccountCode, err)
			}
			if !account.IsActive {
				return nil, fmt.Errorf("posting: line account %s: %w", line.AccountCode, shared.ErrAccountInactive)
			}
			name = account.Name
			names[line.AccountCode] = name
		}
		line.AccountName = name
		out[i] = line
	}
	return out, nil
}

func (s *Service) resolveBank(ctx context.Context, bankAccountID int64) (string, error) {
	if bankAccountID == 0 || s.banks == nil {
		return "", nil
	}
	return s.banks.GLCode(ctx, bankAccountID)
}

func (s *Service) isDuplicate(ctx context.Context, sourceType string, sourceID uuid.UUID) (bool, error) {
	exists, err := s.journals.ExistsBySource(ctx, sourceType, sourceID)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func duplicateResult() Result {
	return Result{Success: true, Duplicate: true}
}
