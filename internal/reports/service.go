package reports

import (
	"context"

	pkgerrors "github.com/willowmarket/willow-backend/pkg/errors"
)

// Service exposes the aggregated settlement view.
type Service interface {
	SettlementReport(ctx context.Context, filters ReportFilters) (*SettlementReport, error)
}

type service struct {
	repo Repository
}

// NewService wires report dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "reports repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) SettlementReport(ctx context.Context, filters ReportFilters) (*SettlementReport, error) {
	if filters.DateFrom != nil && filters.DateTo != nil && filters.DateTo.Before(*filters.DateFrom) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date_to must not precede date_from")
	}

	report, err := s.repo.SettlementTotals(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate settlement totals")
	}
	return report, nil
}
