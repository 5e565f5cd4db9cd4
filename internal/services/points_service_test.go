package services

import (
	"errors"
	"sync"
	"testing"

	"aguipuntos_backend/internal/models"
	"aguipuntos_backend/internal/repositories"

	"github.com/stretchr/testify/require"
)

func TestLoadPointsCreatesLedgerEntry(t *testing.T) {
	env := newTestEnv(t)
	customer := env.createCustomer(t, "30111222", "Ana García", 0)
	svc := env.pointsService()

	result, err := svc.LoadPoints("30111222", 150, nil, testActor(7, "caja1"))
	require.NoError(t, err)
	require.Equal(t, 0, result.PreviousBalance)
	require.Equal(t, 150, result.NewBalance)
	require.NotZero(t, result.TransactionID)

	require.Equal(t, 150, env.balanceOf(t, customer.ID))

	entry, err := env.transactions.GetByID(env.db, result.TransactionID)
	require.NoError(t, err)
	require.Equal(t, models.TransactionTypeLoad, entry.Type)
	require.Equal(t, 150, entry.Points)
	require.Equal(t, customer.ID, entry.CustomerID)
	require.NotNil(t, entry.Operations)
	require.Equal(t, 3, *entry.Operations) // 150 points / 50 per operation
	require.NotNil(t, entry.UserName)
	require.Equal(t, "caja1", *entry.UserName)
	require.Nil(t, entry.VoidedAt)

	env.requireLedgerMatchesBalance(t, customer.ID)
}

func TestLoadPointsOperationsDerivation(t *testing.T) {
	env := newTestEnv(t)
	customer := env.createCustomer(t, "30111222", "Ana García", 0)
	svc := env.pointsService()

	// Explicit operation count wins over derivation.
	result, err := svc.LoadPoints("30111222", 150, intPtr(4), testActor(7, "caja1"))
	require.NoError(t, err)
	entry, err := env.transactions.GetByID(env.db, result.TransactionID)
	require.NoError(t, err)
	require.NotNil(t, entry.Operations)
	require.Equal(t, 4, *entry.Operations)

	// Amounts that don't divide evenly stay unannotated.
	result, err = svc.LoadPoints("30111222", 130, nil, testActor(7, "caja1"))
	require.NoError(t, err)
	entry, err = env.transactions.GetByID(env.db, result.TransactionID)
	require.NoError(t, err)
	require.Nil(t, entry.Operations)

	require.Equal(t, 280, env.balanceOf(t, customer.ID))
}

func TestLoadPointsValidation(t *testing.T) {
	env := newTestEnv(t)
	env.createCustomer(t, "30111222", "Ana García", 0)
	svc := env.pointsService()

	_, err := svc.LoadPoints("30111222", 0, nil, ActingUser{})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.LoadPoints("30111222", -50, nil, ActingUser{})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.LoadPoints("", 50, nil, ActingUser{})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.LoadPoints("99999999", 50, nil, ActingUser{})
	require.ErrorIs(t, err, ErrCustomerNotFound)
}

func TestRedeemCustomBalanceFloor(t *testing.T) {
	env := newTestEnv(t)
	customer := env.createCustomer(t, "30111222", "Ana García", 100)
	svc := env.pointsService()

	// One point over the balance must be rejected without any side effect.
	_, err := svc.RedeemCustom("30111222", 101, "", testActor(7, "caja1"))
	var insufficient *InsufficientBalanceError
	require.ErrorAs(t, err, &insufficient)
	require.Equal(t, 100, insufficient.CurrentPoints)
	require.Equal(t, 100, env.balanceOf(t, customer.ID))
	require.Equal(t, 0, env.transactionCount(t, customer.ID))

	// Redeeming the exact balance is allowed.
	result, err := svc.RedeemCustom("30111222", 100, "", testActor(7, "caja1"))
	require.NoError(t, err)
	require.Equal(t, 100, result.PreviousBalance)
	require.Equal(t, 0, result.NewBalance)
	require.Equal(t, 0, env.balanceOf(t, customer.ID))

	entry, err := env.transactions.GetByID(env.db, result.TransactionID)
	require.NoError(t, err)
	require.Equal(t, models.TransactionTypeRedeem, entry.Type)
	require.Equal(t, -100, entry.Points)
	require.NotNil(t, entry.Note)
	require.Equal(t, "Canje personalizado", *entry.Note)

	env.requireLedgerMatchesBalance(t, customer.ID)
}

func TestRedeemPrize(t *testing.T) {
	env := newTestEnv(t)
	customer := env.createCustomer(t, "30111222", "Ana García", 500)
	prize := &models.Prize{Nombre: "Gaseosa 1.5L", CostoPuntos: 300}
	_, err := env.prizes.Create(prize)
	require.NoError(t, err)
	svc := env.pointsService()

	result, err := svc.RedeemPrize("30111222", prize.ID, "", testActor(7, "caja1"))
	require.NoError(t, err)
	require.Equal(t, 200, result.NewBalance)

	entry, err := env.transactions.GetByID(env.db, result.TransactionID)
	require.NoError(t, err)
	require.Equal(t, -300, entry.Points)
	require.NotNil(t, entry.Note)
	require.Equal(t, "Gaseosa 1.5L", *entry.Note)

	_, err = svc.RedeemPrize("30111222", 999, "", testActor(7, "caja1"))
	require.ErrorIs(t, err, ErrPrizeNotFound)

	env.requireLedgerMatchesBalance(t, customer.ID)
}

func TestConcurrentRedeemsNeverOverdraw(t *testing.T) {
	env := newTestEnv(t)
	customer := env.createCustomer(t, "30111222", "Ana García", 250)
	svc := env.pointsService()

	const workers = 10
	const redeemAmount = 100

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			_, errs[slot] = svc.RedeemCustom("30111222", redeemAmount, "", testActor(7, "caja1"))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var insufficient *InsufficientBalanceError
		require.ErrorAs(t, err, &insufficient)
	}

	// 250 points fund exactly two 100-point redemptions.
	require.Equal(t, 2, succeeded)
	require.Equal(t, 50, env.balanceOf(t, customer.ID))
	require.Equal(t, 2, env.transactionCount(t, customer.ID))
	env.requireLedgerMatchesBalance(t, customer.ID)
}

// failingTransactionRepo makes every ledger insert fail, to prove the balance
// update rolls back with it.
type failingTransactionRepo struct {
	repositories.TransactionRepository
}

func (f *failingTransactionRepo) Create(executor repositories.SQLExecutor, transaction *models.Transaction) (int64, error) {
	return 0, repositories.ErrDatabaseError
}

func TestApplyDeltaRollsBackOnLedgerFailure(t *testing.T) {
	env := newTestEnv(t)
	customer := env.createCustomer(t, "30111222", "Ana García", 80)
	svc := NewPointsService(env.customers, &failingTransactionRepo{env.transactions}, env.prizes, env.db)

	_, err := svc.LoadPoints("30111222", 100, nil, testActor(7, "caja1"))
	require.ErrorIs(t, err, ErrStorageFailure)

	// Neither half of the mutation may be visible.
	require.Equal(t, 80, env.balanceOf(t, customer.ID))
	require.Equal(t, 0, env.transactionCount(t, customer.ID))
}

func TestApplyDeltaSignRules(t *testing.T) {
	env := newTestEnv(t)
	env.createCustomer(t, "30111222", "Ana García", 100)
	svc := env.pointsService()

	_, err := svc.ApplyDelta(CustomerKey{DNI: "30111222"}, -10, models.TransactionTypeLoad, DeltaMetadata{})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.ApplyDelta(CustomerKey{DNI: "30111222"}, 10, models.TransactionTypeRedeem, DeltaMetadata{})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.ApplyDelta(CustomerKey{DNI: "30111222"}, 0, models.TransactionTypeLoad, DeltaMetadata{})
	require.ErrorIs(t, err, ErrValidation)

	// ADJUST entries are reserved for the void engine.
	_, err = svc.ApplyDelta(CustomerKey{DNI: "30111222"}, 10, models.TransactionTypeAdjust, DeltaMetadata{})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.ApplyDelta(CustomerKey{}, 10, models.TransactionTypeLoad, DeltaMetadata{})
	require.ErrorIs(t, err, ErrValidation)
}

func TestApplyDeltaByCustomerID(t *testing.T) {
	env := newTestEnv(t)
	customer := env.createCustomer(t, "30111222", "Ana García", 0)
	svc := env.pointsService()

	result, err := svc.ApplyDelta(CustomerKey{ID: customer.ID}, 50, models.TransactionTypeLoad, DeltaMetadata{
		Actor: testActor(7, "caja1"),
	})
	require.NoError(t, err)
	require.Equal(t, 50, result.NewBalance)
	require.Equal(t, 50, env.balanceOf(t, customer.ID))
}

func TestRedeemUnknownCustomer(t *testing.T) {
	env := newTestEnv(t)
	svc := env.pointsService()

	_, err := svc.RedeemCustom("12345678", 10, "", ActingUser{})
	require.ErrorIs(t, err, ErrCustomerNotFound)
	require.False(t, errors.Is(err, ErrValidation))
}
