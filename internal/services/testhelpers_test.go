package services

import (
	"database/sql"
	"testing"
	"time"

	"aguipuntos_backend/internal/models"
	"aguipuntos_backend/internal/repositories"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

// testSchema mirrors db_schema.sql for the in-memory SQLite used in tests.
const testSchema = `
CREATE TABLE customers (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    dni TEXT NOT NULL UNIQUE,
    nombre TEXT NOT NULL,
    celular TEXT,
    puntos INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE transactions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    customerid INTEGER NOT NULL REFERENCES customers(id),
    type TEXT NOT NULL,
    operations INTEGER,
    points INTEGER NOT NULL,
    note TEXT,
    userid INTEGER,
    username TEXT,
    voidedat DATETIME,
    voidedbyuserid INTEGER,
    voidreason TEXT,
    originaltransactionid INTEGER,
    createdat DATETIME NOT NULL
);

CREATE TABLE prizes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    nombre TEXT NOT NULL,
    costo_puntos INTEGER NOT NULL
);

CREATE TABLE users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role TEXT NOT NULL DEFAULT 'cashier'
);

CREATE TABLE settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// newTestDB opens an in-memory SQLite database. A single connection keeps
// every statement on the same memory database and serializes transactions,
// which makes the concurrency tests deterministic.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", "file::memory:?_loc=UTC")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })
	return db
}

type testEnv struct {
	db           *sql.DB
	customers    repositories.CustomerRepository
	transactions repositories.TransactionRepository
	prizes       repositories.PrizeRepository
	settings     repositories.SettingRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	return &testEnv{
		db:           db,
		customers:    repositories.NewCustomerRepository(db),
		transactions: repositories.NewTransactionRepository(db),
		prizes:       repositories.NewPrizeRepository(db),
		settings:     repositories.NewSettingRepository(db),
	}
}

func (e *testEnv) pointsService() PointsService {
	return NewPointsService(e.customers, e.transactions, e.prizes, e.db)
}

func (e *testEnv) voidService() VoidService {
	return NewVoidService(e.customers, e.transactions, e.db)
}

func (e *testEnv) createCustomer(t *testing.T, dni, nombre string, puntos int) *models.Customer {
	t.Helper()
	customer := &models.Customer{DNI: dni, Nombre: nombre, Puntos: puntos}
	_, err := e.customers.Create(e.db, customer)
	require.NoError(t, err)
	return customer
}

// seedLoad inserts a LOAD ledger row at an explicit instant, bypassing the
// balance mutator. Report tests need full control over createdat.
func (e *testEnv) seedLoad(t *testing.T, customerID int64, points int, userID int64, userName string, createdAt time.Time) int64 {
	t.Helper()
	tr := &models.Transaction{
		CustomerID: customerID,
		Type:       models.TransactionTypeLoad,
		Points:     points,
		UserID:     &userID,
		UserName:   &userName,
		CreatedAt:  createdAt.UTC(),
	}
	id, err := e.transactions.Create(e.db, tr)
	require.NoError(t, err)
	return id
}

func (e *testEnv) balanceOf(t *testing.T, customerID int64) int {
	t.Helper()
	customer, err := e.customers.GetByID(e.db, customerID)
	require.NoError(t, err)
	return customer.Puntos
}

func (e *testEnv) ledgerSum(t *testing.T, customerID int64) int {
	t.Helper()
	total, err := e.transactions.SumPointsForCustomer(e.db, customerID)
	require.NoError(t, err)
	return total
}

// requireLedgerMatchesBalance asserts the core ledger invariant: the stored
// balance equals the sum of every ledger row, voided loads and their
// compensating adjustments included.
func (e *testEnv) requireLedgerMatchesBalance(t *testing.T, customerID int64) {
	t.Helper()
	require.Equal(t, e.balanceOf(t, customerID), e.ledgerSum(t, customerID))
}

func (e *testEnv) transactionCount(t *testing.T, customerID int64) int {
	t.Helper()
	var count int
	err := e.db.QueryRow(`SELECT COUNT(*) FROM transactions WHERE customerid = $1`, customerID).Scan(&count)
	require.NoError(t, err)
	return count
}

func testActor(id int64, name string) ActingUser {
	return ActingUser{ID: &id, Username: &name}
}

func intPtr(v int) *int { return &v }

func int64Ptr(v int64) *int64 { return &v }

func strPtr(v string) *string { return &v }
