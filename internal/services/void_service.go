package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"aguipuntos_backend/internal/models"
	"aguipuntos_backend/internal/repositories"
)

// VoidLoadResult describes a completed reversal.
type VoidLoadResult struct {
	OriginalID          int64 `json:"originalId"`
	AdjustTransactionID int64 `json:"adjustTransactionId"`
	CustomerID          int64 `json:"customerId"`
	DeltaPoints         int   `json:"deltaPoints"`
	NewPoints           int   `json:"newPoints"`
}

// VoidService reverses prior LOAD transactions without deleting history: the
// original row is marked voided and a linked ADJUST entry carries the inverse
// delta, so the reversal is visible both at the original point-in-time and as
// its own corrective event.
type VoidService interface {
	VoidLoad(transactionID int64, reason string, actor ActingUser) (*VoidLoadResult, error)
}

type voidService struct {
	customerRepo    repositories.CustomerRepository
	transactionRepo repositories.TransactionRepository
	db              *sql.DB
}

// NewVoidService creates a new instance of VoidService.
func NewVoidService(
	customerRepo repositories.CustomerRepository,
	transactionRepo repositories.TransactionRepository,
	db *sql.DB,
) VoidService {
	return &voidService{
		customerRepo:    customerRepo,
		transactionRepo: transactionRepo,
		db:              db,
	}
}

// VoidLoad applies the inverse delta of a LOAD, marks the original as voided
// and appends the linked ADJUST entry, all in one transaction. Unlike REDEEM
// there is no balance floor: the customer may have spent the points since the
// load, and a validated reversal must always go through, even into negative.
func (s *voidService) VoidLoad(transactionID int64, reason string, actor ActingUser) (*VoidLoadResult, error) {
	if transactionID <= 0 {
		return nil, fmt.Errorf("%w: transacción inválida", ErrValidation)
	}
	reason = strings.TrimSpace(reason)

	for attempt := 0; attempt < maxBalanceRetries; attempt++ {
		result, err := s.voidLoadOnce(transactionID, reason, actor)
		if errors.Is(err, repositories.ErrUpdateConflict) {
			continue
		}
		if err != nil && errors.Is(err, repositories.ErrDatabaseError) {
			return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
		return result, err
	}
	return nil, fmt.Errorf("%w: balance update contention not resolved after %d attempts", ErrStorageFailure, maxBalanceRetries)
}

func (s *voidService) voidLoadOnce(transactionID int64, reason string, actor ActingUser) (*VoidLoadResult, error) {
	var result *VoidLoadResult
	err := repositories.WithTransaction(s.db, func(tx *sql.Tx) error {
		target, err := s.transactionRepo.GetByID(tx, transactionID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrTransactionNotFound
			}
			return err
		}
		if target.Type != models.TransactionTypeLoad {
			return ErrInvalidVoidTarget
		}
		if target.VoidedAt != nil {
			return ErrAlreadyVoided
		}

		// The conditional WHERE voidedat IS NULL also serializes concurrent
		// void attempts: exactly one marks the row, the rest fail here.
		var reasonValue *string
		if reason != "" {
			reasonValue = &reason
		}
		marked, err := s.transactionRepo.MarkVoided(tx, target.ID, time.Now().UTC(), actor.ID, reasonValue)
		if err != nil {
			return err
		}
		if !marked {
			return ErrAlreadyVoided
		}

		customer, err := s.customerRepo.GetByID(tx, target.CustomerID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrCustomerNotFound
			}
			return err
		}

		deltaPoints := -target.Points
		newPoints := customer.Puntos + deltaPoints
		updated, err := s.customerRepo.UpdatePointsIfUnchanged(tx, customer.ID, newPoints, customer.Puntos)
		if err != nil {
			return err
		}
		if !updated {
			return repositories.ErrUpdateConflict
		}

		note := fmt.Sprintf("Anulación de carga #%d", target.ID)
		if reason != "" {
			note += ": " + reason
		}
		adjust := &models.Transaction{
			CustomerID:            target.CustomerID,
			Type:                  models.TransactionTypeAdjust,
			Points:                deltaPoints,
			Note:                  &note,
			UserID:                actor.ID,
			UserName:              actor.Username,
			OriginalTransactionID: &target.ID,
		}
		adjustID, err := s.transactionRepo.Create(tx, adjust)
		if err != nil {
			return err
		}

		result = &VoidLoadResult{
			OriginalID:          target.ID,
			AdjustTransactionID: adjustID,
			CustomerID:          target.CustomerID,
			DeltaPoints:         deltaPoints,
			NewPoints:           newPoints,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
