package services

import (
	"fmt"
	"sync"
	"testing"

	"aguipuntos_backend/internal/models"

	"github.com/stretchr/testify/require"
)

func TestVoidLoadExactReversal(t *testing.T) {
	env := newTestEnv(t)
	customer := env.createCustomer(t, "30111222", "Ana García", 0)
	points := env.pointsService()
	voids := env.voidService()

	loaded, err := points.LoadPoints("30111222", 120, nil, testActor(7, "caja1"))
	require.NoError(t, err)

	result, err := voids.VoidLoad(loaded.TransactionID, "carga duplicada", testActor(1, "admin"))
	require.NoError(t, err)
	require.Equal(t, loaded.TransactionID, result.OriginalID)
	require.Equal(t, customer.ID, result.CustomerID)
	require.Equal(t, -120, result.DeltaPoints)
	require.Equal(t, 0, result.NewPoints)
	require.Equal(t, 0, env.balanceOf(t, customer.ID))

	// Original row is marked, never deleted.
	original, err := env.transactions.GetByID(env.db, loaded.TransactionID)
	require.NoError(t, err)
	require.NotNil(t, original.VoidedAt)
	require.NotNil(t, original.VoidedByUserID)
	require.Equal(t, int64(1), *original.VoidedByUserID)
	require.NotNil(t, original.VoidReason)
	require.Equal(t, "carga duplicada", *original.VoidReason)
	require.Equal(t, 120, original.Points) // points untouched

	// Compensating ADJUST entry links back to the original.
	adjust, err := env.transactions.GetByID(env.db, result.AdjustTransactionID)
	require.NoError(t, err)
	require.Equal(t, models.TransactionTypeAdjust, adjust.Type)
	require.Equal(t, -120, adjust.Points)
	require.NotNil(t, adjust.OriginalTransactionID)
	require.Equal(t, loaded.TransactionID, *adjust.OriginalTransactionID)
	require.NotNil(t, adjust.Note)
	require.Equal(t, fmt.Sprintf("Anulación de carga #%d: carga duplicada", loaded.TransactionID), *adjust.Note)

	env.requireLedgerMatchesBalance(t, customer.ID)
}

func TestVoidLoadWithoutReason(t *testing.T) {
	env := newTestEnv(t)
	env.createCustomer(t, "30111222", "Ana García", 0)
	points := env.pointsService()
	voids := env.voidService()

	loaded, err := points.LoadPoints("30111222", 50, nil, testActor(7, "caja1"))
	require.NoError(t, err)

	result, err := voids.VoidLoad(loaded.TransactionID, "   ", testActor(1, "admin"))
	require.NoError(t, err)

	original, err := env.transactions.GetByID(env.db, loaded.TransactionID)
	require.NoError(t, err)
	require.Nil(t, original.VoidReason)

	adjust, err := env.transactions.GetByID(env.db, result.AdjustTransactionID)
	require.NoError(t, err)
	require.Equal(t, fmt.Sprintf("Anulación de carga #%d", loaded.TransactionID), *adjust.Note)
}

func TestVoidLoadTwiceFails(t *testing.T) {
	env := newTestEnv(t)
	customer := env.createCustomer(t, "30111222", "Ana García", 0)
	points := env.pointsService()
	voids := env.voidService()

	loaded, err := points.LoadPoints("30111222", 100, nil, testActor(7, "caja1"))
	require.NoError(t, err)

	_, err = voids.VoidLoad(loaded.TransactionID, "", testActor(1, "admin"))
	require.NoError(t, err)

	_, err = voids.VoidLoad(loaded.TransactionID, "", testActor(1, "admin"))
	require.ErrorIs(t, err, ErrAlreadyVoided)

	// The balance was debited exactly once.
	require.Equal(t, 0, env.balanceOf(t, customer.ID))
	env.requireLedgerMatchesBalance(t, customer.ID)
}

func TestVoidLoadAllowsNegativeBalance(t *testing.T) {
	env := newTestEnv(t)
	customer := env.createCustomer(t, "30111222", "Ana García", 0)
	points := env.pointsService()
	voids := env.voidService()

	loaded, err := points.LoadPoints("30111222", 120, nil, testActor(7, "caja1"))
	require.NoError(t, err)
	_, err = points.RedeemCustom("30111222", 100, "", testActor(7, "caja1"))
	require.NoError(t, err)

	// The customer already spent most of the load; the reversal still goes
	// through and leaves the balance negative.
	result, err := voids.VoidLoad(loaded.TransactionID, "error de caja", testActor(1, "admin"))
	require.NoError(t, err)
	require.Equal(t, -100, result.NewPoints)
	require.Equal(t, -100, env.balanceOf(t, customer.ID))

	env.requireLedgerMatchesBalance(t, customer.ID)
}

func TestVoidRejectsNonLoadTransactions(t *testing.T) {
	env := newTestEnv(t)
	env.createCustomer(t, "30111222", "Ana García", 200)
	points := env.pointsService()
	voids := env.voidService()

	redeemed, err := points.RedeemCustom("30111222", 50, "", testActor(7, "caja1"))
	require.NoError(t, err)

	_, err = voids.VoidLoad(redeemed.TransactionID, "", testActor(1, "admin"))
	require.ErrorIs(t, err, ErrInvalidVoidTarget)
}

func TestVoidMissingTransaction(t *testing.T) {
	env := newTestEnv(t)
	voids := env.voidService()

	_, err := voids.VoidLoad(12345, "", testActor(1, "admin"))
	require.ErrorIs(t, err, ErrTransactionNotFound)

	_, err = voids.VoidLoad(0, "", testActor(1, "admin"))
	require.ErrorIs(t, err, ErrValidation)
}

func TestConcurrentVoidsSingleWinner(t *testing.T) {
	env := newTestEnv(t)
	customer := env.createCustomer(t, "30111222", "Ana García", 0)
	points := env.pointsService()
	voids := env.voidService()

	loaded, err := points.LoadPoints("30111222", 200, nil, testActor(7, "caja1"))
	require.NoError(t, err)

	const workers = 5
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			_, errs[slot] = voids.VoidLoad(loaded.TransactionID, "", testActor(1, "admin"))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			require.ErrorIs(t, err, ErrAlreadyVoided)
		}
	}
	require.Equal(t, 1, succeeded)
	require.Equal(t, 0, env.balanceOf(t, customer.ID))
	env.requireLedgerMatchesBalance(t, customer.ID)
}
