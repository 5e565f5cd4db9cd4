package services

import (
	"errors"
	"fmt"
)

// Service-level error taxonomy. The HTTP layer maps each member to a
// transport status; no service ever logs-and-continues on a failed mutation.
var (
	ErrValidation          = errors.New("validation failed")
	ErrCustomerNotFound    = errors.New("customer not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrPrizeNotFound       = errors.New("prize not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrDNIExists           = errors.New("dni already registered")
	ErrUsernameExists      = errors.New("username already exists")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrInvalidVoidTarget   = errors.New("only LOAD transactions can be voided")
	ErrAlreadyVoided       = errors.New("transaction is already voided")

	// ErrStorageFailure wraps atomic-unit failures. The unit is guaranteed to
	// have been fully rolled back, so retrying is safe.
	ErrStorageFailure = errors.New("storage failure")
)

// InsufficientBalanceError rejects a redemption that would drive the balance
// negative. It carries the current balance for client display.
type InsufficientBalanceError struct {
	CurrentPoints int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("saldo insuficiente: %d puntos disponibles", e.CurrentPoints)
}
