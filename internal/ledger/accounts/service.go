package accounts

import "context"

// Service exposes read access to the chart of accounts registry.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) FindByCode(ctx context.Context, code string) (Account, error) {
	return s.repo.FindByCode(ctx, code)
}

func (s *Service) ListByType(ctx context.Context, accountType AccountType) ([]Account, error) {
	return s.repo.ListByType(ctx, accountType)
}

func (s *Service) ListActive(ctx context.Context) ([]Account, error) {
	return s.repo.ListActive(ctx)
}

func (s *Service) Deactivate(ctx context.Context, code string) error {
	return s.repo.Deactivate(ctx, code)
}
