package services

import (
	"errors"
	"fmt"

	"aguipuntos_backend/internal/models"
	"aguipuntos_backend/internal/repositories"
)

// NoLoadsPlaceholder is shown as the top cashier when the window is empty.
const NoLoadsPlaceholder = "Sin registros"

// DailySummaryService is a thin consumer of the reporting aggregation: it
// formats the day's load total and top cashier for the Telegram digest.
type DailySummaryService interface {
	BuildDailySummary(opts ReportOptions) (*models.DailySummary, error)
}

type dailySummaryService struct {
	transactionRepo repositories.TransactionRepository
	timezone        string
}

// NewDailySummaryService creates a new instance of DailySummaryService.
func NewDailySummaryService(transactionRepo repositories.TransactionRepository, timezone string) DailySummaryService {
	return &dailySummaryService{transactionRepo: transactionRepo, timezone: timezone}
}

func (s *dailySummaryService) BuildDailySummary(opts ReportOptions) (*models.DailySummary, error) {
	if opts.Timezone == "" {
		opts.Timezone = s.timezone
	}
	filters, dailyRange, err := BuildReportFilters(opts)
	if err != nil {
		return nil, err
	}

	totalPoints, err := s.transactionRepo.SumLoadedPoints(filters)
	if err != nil {
		return nil, s.wrapStorage(err)
	}
	topUserName, topUserPoints, err := s.transactionRepo.TopLoader(filters)
	if err != nil {
		return nil, s.wrapStorage(err)
	}

	summary := &models.DailySummary{
		TotalPoints:   totalPoints,
		TopUserName:   NoLoadsPlaceholder,
		TopUserPoints: topUserPoints,
		FormattedDate: dailyRange.FormattedDate,
		StartISODate:  dailyRange.StartISODate,
	}
	if topUserName != nil && *topUserName != "" {
		summary.TopUserName = *topUserName
	}
	return summary, nil
}

func (s *dailySummaryService) wrapStorage(err error) error {
	if errors.Is(err, repositories.ErrDatabaseError) {
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return err
}
