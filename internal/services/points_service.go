package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"aguipuntos_backend/internal/models"
	"aguipuntos_backend/internal/repositories"
)

// PointsPerOperation is the fixed conversion between purchase operations and
// points. When the caller doesn't supply an operation count, loads whose
// points divide evenly are annotated with the derived count.
const PointsPerOperation = 50

// maxBalanceRetries bounds the optimistic-concurrency retry loop. Each retry
// re-reads the balance in a fresh transaction, so a loser of a concurrent
// redemption race observes the post-commit balance, never a stale one.
const maxBalanceRetries = 5

// ActingUser is the staff identity captured denormalized on every ledger row.
type ActingUser struct {
	ID       *int64
	Username *string
}

// CustomerKey looks a customer up by DNI (preferred external key) or by
// surrogate id. Exactly one side should be set; DNI wins when both are.
type CustomerKey struct {
	DNI string
	ID  int64
}

// DeltaMetadata is the informational payload attached to a ledger entry.
type DeltaMetadata struct {
	Operations *int
	Note       *string
	Actor      ActingUser
}

// ApplyDeltaResult reports both sides of a balance mutation so callers can
// display "you had X, now you have Y" without a second read.
type ApplyDeltaResult struct {
	PreviousBalance int   `json:"currentPoints"`
	NewBalance      int   `json:"newPoints"`
	TransactionID   int64 `json:"transactionId"`
}

// PointsService mutates customer balances. Every mutation atomically updates
// the balance and appends the matching ledger entry; neither half is ever
// observable without the other.
type PointsService interface {
	LoadPoints(dni string, points int, operations *int, actor ActingUser) (*ApplyDeltaResult, error)
	RedeemCustom(dni string, points int, note string, actor ActingUser) (*ApplyDeltaResult, error)
	RedeemPrize(dni string, prizeID int64, note string, actor ActingUser) (*ApplyDeltaResult, error)
	ApplyDelta(key CustomerKey, delta int, transactionType string, meta DeltaMetadata) (*ApplyDeltaResult, error)
}

type pointsService struct {
	customerRepo    repositories.CustomerRepository
	transactionRepo repositories.TransactionRepository
	prizeRepo       repositories.PrizeRepository
	db              *sql.DB
}

// NewPointsService creates a new instance of PointsService.
func NewPointsService(
	customerRepo repositories.CustomerRepository,
	transactionRepo repositories.TransactionRepository,
	prizeRepo repositories.PrizeRepository,
	db *sql.DB,
) PointsService {
	return &pointsService{
		customerRepo:    customerRepo,
		transactionRepo: transactionRepo,
		prizeRepo:       prizeRepo,
		db:              db,
	}
}

// LoadPoints credits points from a purchase. The point value arrives already
// converted; only the informational operation count is derived here.
func (s *pointsService) LoadPoints(dni string, points int, operations *int, actor ActingUser) (*ApplyDeltaResult, error) {
	if dni == "" {
		return nil, fmt.Errorf("%w: dni requerido", ErrValidation)
	}
	if points <= 0 {
		return nil, fmt.Errorf("%w: puntos deben ser mayores a 0", ErrValidation)
	}

	var opsValue *int
	if operations != nil && *operations > 0 {
		ops := *operations
		opsValue = &ops
	} else if points%PointsPerOperation == 0 {
		ops := points / PointsPerOperation
		opsValue = &ops
	}

	return s.ApplyDelta(CustomerKey{DNI: dni}, points, models.TransactionTypeLoad, DeltaMetadata{
		Operations: opsValue,
		Actor:      actor,
	})
}

// RedeemCustom debits an arbitrary point amount (custom discount).
func (s *pointsService) RedeemCustom(dni string, points int, note string, actor ActingUser) (*ApplyDeltaResult, error) {
	if dni == "" {
		return nil, fmt.Errorf("%w: dni requerido", ErrValidation)
	}
	if points <= 0 {
		return nil, fmt.Errorf("%w: puntos deben ser mayores a 0", ErrValidation)
	}

	noteValue := strings.TrimSpace(note)
	if noteValue == "" {
		noteValue = "Canje personalizado"
	}

	return s.ApplyDelta(CustomerKey{DNI: dni}, -points, models.TransactionTypeRedeem, DeltaMetadata{
		Note:  &noteValue,
		Actor: actor,
	})
}

// RedeemPrize debits the catalog cost of a prize.
func (s *pointsService) RedeemPrize(dni string, prizeID int64, note string, actor ActingUser) (*ApplyDeltaResult, error) {
	if dni == "" {
		return nil, fmt.Errorf("%w: dni requerido", ErrValidation)
	}
	if prizeID <= 0 {
		return nil, fmt.Errorf("%w: premio inválido", ErrValidation)
	}

	prize, err := s.prizeRepo.GetByID(s.db, prizeID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPrizeNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	noteValue := strings.TrimSpace(note)
	if noteValue == "" {
		noteValue = prize.Nombre
	}
	if noteValue == "" {
		noteValue = "Canje"
	}

	return s.ApplyDelta(CustomerKey{DNI: dni}, -prize.CostoPuntos, models.TransactionTypeRedeem, DeltaMetadata{
		Note:  &noteValue,
		Actor: actor,
	})
}

// ApplyDelta is the core balance mutator. Within one transaction it re-reads
// the customer, checks the floor for negative deltas, conditionally writes
// the new balance and appends the ledger entry. A lost optimistic race rolls
// the unit back and retries against the fresh balance.
func (s *pointsService) ApplyDelta(key CustomerKey, delta int, transactionType string, meta DeltaMetadata) (*ApplyDeltaResult, error) {
	if delta == 0 {
		return nil, fmt.Errorf("%w: delta must be non-zero", ErrValidation)
	}
	switch transactionType {
	case models.TransactionTypeLoad:
		if delta < 0 {
			return nil, fmt.Errorf("%w: LOAD delta must be positive", ErrValidation)
		}
	case models.TransactionTypeRedeem:
		if delta > 0 {
			return nil, fmt.Errorf("%w: REDEEM delta must be negative", ErrValidation)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported transaction type %q", ErrValidation, transactionType)
	}

	for attempt := 0; attempt < maxBalanceRetries; attempt++ {
		result, err := s.applyDeltaOnce(key, delta, transactionType, meta)
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

func (s *pointsService) applyDeltaOnce(key CustomerKey, delta int, transactionType string, meta DeltaMetadata) (*ApplyDeltaResult, error) {
	var result *ApplyDeltaResult
	err := repositories.WithTransaction(s.db, func(tx *sql.Tx) error {
		customer, err := s.lookupCustomer(tx, key)
		if err != nil {
			return err
		}

		newBalance := customer.Puntos + delta
		if delta < 0 && newBalance < 0 {
			return &InsufficientBalanceError{CurrentPoints: customer.Puntos}
		}

		updated, err := s.customerRepo.UpdatePointsIfUnchanged(tx, customer.ID, newBalance, customer.Puntos)
		if err != nil {
			return err
		}
		if !updated {
			return repositories.ErrUpdateConflict
		}

		transaction := &models.Transaction{
			CustomerID: customer.ID,
			Type:       transactionType,
			Operations: meta.Operations,
			Points:     delta,
			Note:       meta.Note,
			UserID:     meta.Actor.ID,
			UserName:   meta.Actor.Username,
		}
		transactionID, err := s.transactionRepo.Create(tx, transaction)
		if err != nil {
			return err
		}

		result = &ApplyDeltaResult{
			PreviousBalance: customer.Puntos,
			NewBalance:      newBalance,
			TransactionID:   transactionID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *pointsService) lookupCustomer(executor repositories.SQLExecutor, key CustomerKey) (*models.Customer, error) {
	var customer *models.Customer
	var err error
	switch {
	case key.DNI != "":
		customer, err = s.customerRepo.GetByDNI(executor, key.DNI)
	case key.ID > 0:
		customer, err = s.customerRepo.GetByID(executor, key.ID)
	default:
		return nil, fmt.Errorf("%w: customer key required", ErrValidation)
	}
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return customer, nil
}
