package services

import (
	"errors"
	"fmt"

	"aguipuntos_backend/internal/models"
	"aguipuntos_backend/internal/repositories"
)

// ReportService aggregates the ledger over business-timezone calendar
// windows.
//
// Reporting semantics worth spelling out: totalVoided counts reversals
// *executed* in the window, while items/totalPointsLoaded exclude loads that
// have been voided (whenever the void happened). A load created and voided on
// the same day therefore contributes 0 to totalPointsLoaded and its full
// negative delta to totalVoided — the two aggregates still net to zero for
// that pair even though the lists look asymmetric.
type ReportService interface {
	ComputeReport(opts ReportOptions) (*models.PointsLoadedReport, error)
}

type reportService struct {
	transactionRepo repositories.TransactionRepository
	timezone        string
}

// NewReportService creates a new instance of ReportService. The timezone is
// the business zone used when the caller doesn't override it.
func NewReportService(transactionRepo repositories.TransactionRepository, timezone string) ReportService {
	return &reportService{transactionRepo: transactionRepo, timezone: timezone}
}

func (s *reportService) ComputeReport(opts ReportOptions) (*models.PointsLoadedReport, error) {
	if opts.Timezone == "" {
		opts.Timezone = s.timezone
	}
	filters, _, err := BuildReportFilters(opts)
	if err != nil {
		return nil, err
	}

	totalLoaded, err := s.transactionRepo.SumLoadedPoints(filters)
	if err != nil {
		return nil, s.wrapStorage(err)
	}
	totalVoided, err := s.transactionRepo.SumVoidedPoints(filters)
	if err != nil {
		return nil, s.wrapStorage(err)
	}
	items, err := s.transactionRepo.ListLoadedItems(filters)
	if err != nil {
		return nil, s.wrapStorage(err)
	}
	if items == nil {
		items = []models.PointsLoadedItem{}
	}

	return &models.PointsLoadedReport{
		Totals: models.ReportTotals{
			TotalPointsLoaded: totalLoaded,
			TotalVoided:       totalVoided,
			// totalVoided already carries its negative sign.
			TotalNet: totalLoaded + totalVoided,
		},
		Items: items,
	}, nil
}

func (s *reportService) wrapStorage(err error) error {
	if errors.Is(err, repositories.ErrDatabaseError) {
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return err
}
