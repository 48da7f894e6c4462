package reports

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Dashboard bundles the headline reports the back office loads on its
// landing page.
type Dashboard struct {
	AsOf    time.Time     `json:"asOf"`
	PL      ProfitAndLoss `json:"profitAndLoss"`
	VAT     VATSummary    `json:"vatSummary"`
	ARAging AgingReport   `json:"arAging"`
	APAging AgingReport   `json:"apAging"`
}

// Dashboard loads all four headline reports concurrently. One failing
// query fails the whole load rather than returning a partial picture.
func (s *Service) Dashboard(ctx context.Context, filter ReportFilter) (Dashboard, error) {
	asOf := s.now()
	dash := Dashboard{AsOf: asOf}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		report, err := s.ProfitAndLoss(ctx, filter)
		if err != nil {
			return err
		}
		dash.PL = report
		return nil
	})

	g.Go(func() error {
		summary, err := s.VATSummary(ctx, filter)
		if err != nil {
			return err
		}
		dash.VAT = summary
		return nil
	})

	g.Go(func() error {
		report, err := s.ARAging(ctx, filter.CompanyID, asOf)
		if err != nil {
			return err
		}
		dash.ARAging = report
		return nil
	})

	g.Go(func() error {
		report, err := s.APAging(ctx, filter.CompanyID, asOf)
		if err != nil {
			return err
		}
		dash.APAging = report
		return nil
	})

	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}
	return dash, nil
}
