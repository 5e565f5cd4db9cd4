package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"aguipuntos_backend/internal/models"
)

// ReportFilters narrows ledger aggregation queries to a UTC window and,
// optionally, to the acting staff member. Start/End are half-open:
// createdat >= Start AND createdat < End.
type ReportFilters struct {
	Start    time.Time
	End      time.Time
	UserID   *int64
	UserName *string
}

// HistoryFilters narrows a customer's transaction history. Start/End follow
// the same half-open convention as ReportFilters; nil means unbounded.
type HistoryFilters struct {
	Type     string // LOAD or REDEEM; empty means all types
	Start    *time.Time
	End      *time.Time
	OrderAsc bool
	Limit    int
	Offset   int
}

// TransactionRepository defines the interface for ledger database operations.
type TransactionRepository interface {
	Create(executor SQLExecutor, transaction *models.Transaction) (int64, error)
	GetByID(executor SQLExecutor, id int64) (*models.Transaction, error)

	// MarkVoided sets the void fields on a LOAD row, conditional on the row
	// not being voided yet. A false return means another void already claimed
	// the row.
	MarkVoided(executor SQLExecutor, id int64, voidedAt time.Time, voidedByUserID *int64, reason *string) (bool, error)

	ListByCustomer(customerID int64, filters HistoryFilters) ([]models.Transaction, error)
	SumPointsForCustomer(executor SQLExecutor, customerID int64) (int, error)

	SumLoadedPoints(filters ReportFilters) (int, error)
	SumVoidedPoints(filters ReportFilters) (int, error)
	ListLoadedItems(filters ReportFilters) ([]models.PointsLoadedItem, error)
	TopLoader(filters ReportFilters) (userName *string, totalPoints int, err error)
}

type transactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository creates a new instance of TransactionRepository.
func NewTransactionRepository(db *sql.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

const transactionColumns = `id, customerid, type, operations, points, note, userid, username,
	       voidedat, voidedbyuserid, voidreason, originaltransactionid, createdat`

func (r *transactionRepository) Create(executor SQLExecutor, transaction *models.Transaction) (int64, error) {
	if transaction.CreatedAt.IsZero() {
		transaction.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO transactions
	            (customerid, type, operations, points, note, userid, username, originaltransactionid, createdat)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING id`
	err := executor.QueryRow(query,
		transaction.CustomerID, transaction.Type, transaction.Operations, transaction.Points,
		transaction.Note, transaction.UserID, transaction.UserName,
		transaction.OriginalTransactionID, transaction.CreatedAt,
	).Scan(&transaction.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating transaction: %v", ErrDatabaseError, err)
	}
	return transaction.ID, nil
}

func (r *transactionRepository) GetByID(executor SQLExecutor, id int64) (*models.Transaction, error) {
	t := &models.Transaction{}
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	err := executor.QueryRow(query, id).Scan(
		&t.ID, &t.CustomerID, &t.Type, &t.Operations, &t.Points, &t.Note, &t.UserID, &t.UserName,
		&t.VoidedAt, &t.VoidedByUserID, &t.VoidReason, &t.OriginalTransactionID, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting transaction by ID %d: %v", ErrDatabaseError, id, err)
	}
	return t, nil
}

func (r *transactionRepository) MarkVoided(executor SQLExecutor, id int64, voidedAt time.Time, voidedByUserID *int64, reason *string) (bool, error) {
	result, err := executor.Exec(
		`UPDATE transactions
		 SET voidedat = $1, voidedbyuserid = $2, voidreason = $3
		 WHERE id = $4 AND type = $5 AND voidedat IS NULL`,
		voidedAt, voidedByUserID, reason, id, models.TransactionTypeLoad,
	)
	if err != nil {
		return false, fmt.Errorf("%w: voiding transaction %d: %v", ErrDatabaseError, id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: voiding transaction %d: %v", ErrDatabaseError, id, err)
	}
	return affected == 1, nil
}

func (r *transactionRepository) ListByCustomer(customerID int64, filters HistoryFilters) ([]models.Transaction, error) {
	conditions := []string{"customerid = $1"}
	args := []interface{}{customerID}
	addParam := func(value interface{}) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if filters.Type == models.TransactionTypeLoad || filters.Type == models.TransactionTypeRedeem {
		conditions = append(conditions, "type = "+addParam(filters.Type))
	}
	if filters.Start != nil {
		conditions = append(conditions, "createdat >= "+addParam(*filters.Start))
	}
	if filters.End != nil {
		conditions = append(conditions, "createdat < "+addParam(*filters.End))
	}

	order := "DESC"
	if filters.OrderAsc {
		order = "ASC"
	}

	query := `SELECT ` + transactionColumns + `
	          FROM transactions
	          WHERE ` + strings.Join(conditions, " AND ") + `
	          ORDER BY createdat ` + order
	if filters.Limit > 0 {
		query += " LIMIT " + addParam(filters.Limit) + " OFFSET " + addParam(filters.Offset)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: listing transactions for customer %d: %v", ErrDatabaseError, customerID, err)
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		var t models.Transaction
		err := rows.Scan(
			&t.ID, &t.CustomerID, &t.Type, &t.Operations, &t.Points, &t.Note, &t.UserID, &t.UserName,
			&t.VoidedAt, &t.VoidedByUserID, &t.VoidReason, &t.OriginalTransactionID, &t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning transaction: %v", ErrDatabaseError, err)
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

func (r *transactionRepository) SumPointsForCustomer(executor SQLExecutor, customerID int64) (int, error) {
	var total int
	err := executor.QueryRow(
		`SELECT COALESCE(SUM(points), 0) FROM transactions WHERE customerid = $1`,
		customerID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("%w: summing ledger for customer %d: %v", ErrDatabaseError, customerID, err)
	}
	return total, nil
}

// buildReportWhere assembles the WHERE clause shared by the aggregation
// queries. baseConditions select the transaction class; the window and staff
// filter are appended. UserID takes precedence over UserName when both are set.
func buildReportWhere(baseConditions []string, filters ReportFilters) (string, []interface{}) {
	var args []interface{}
	addParam := func(value interface{}) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	conditions := append([]string{}, baseConditions...)
	conditions = append(conditions,
		"t.createdat >= "+addParam(filters.Start),
		"t.createdat < "+addParam(filters.End),
	)
	if filters.UserID != nil {
		conditions = append(conditions, "t.userid = "+addParam(*filters.UserID))
	} else if filters.UserName != nil && *filters.UserName != "" {
		conditions = append(conditions, "t.username = "+addParam(*filters.UserName))
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

func (r *transactionRepository) SumLoadedPoints(filters ReportFilters) (int, error) {
	where, args := buildReportWhere([]string{"t.type = 'LOAD'", "t.voidedat IS NULL"}, filters)
	var total int
	err := r.db.QueryRow(
		`SELECT COALESCE(SUM(t.points), 0) FROM transactions t `+where, args...,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("%w: summing loaded points: %v", ErrDatabaseError, err)
	}
	return total, nil
}

func (r *transactionRepository) SumVoidedPoints(filters ReportFilters) (int, error) {
	where, args := buildReportWhere([]string{"t.type = 'ADJUST'", "t.originaltransactionid IS NOT NULL"}, filters)
	var total int
	err := r.db.QueryRow(
		`SELECT COALESCE(SUM(t.points), 0) FROM transactions t `+where, args...,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("%w: summing voided points: %v", ErrDatabaseError, err)
	}
	return total, nil
}

func (r *transactionRepository) ListLoadedItems(filters ReportFilters) ([]models.PointsLoadedItem, error) {
	where, args := buildReportWhere([]string{"t.type = 'LOAD'", "t.voidedat IS NULL"}, filters)
	query := `SELECT t.id, t.createdat, t.points, t.operations, t.userid, t.username,
	                 c.dni, c.nombre
	          FROM transactions t
	          JOIN customers c ON c.id = t.customerid
	          ` + where + `
	          ORDER BY t.createdat DESC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: listing loaded items: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	items := []models.PointsLoadedItem{}
	for rows.Next() {
		var item models.PointsLoadedItem
		err := rows.Scan(
			&item.ID, &item.CreatedAt, &item.Points, &item.Operations,
			&item.UserID, &item.UserName, &item.CustomerDNI, &item.CustomerNombre,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning loaded item: %v", ErrDatabaseError, err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *transactionRepository) TopLoader(filters ReportFilters) (*string, int, error) {
	where, args := buildReportWhere([]string{"t.type = 'LOAD'", "t.voidedat IS NULL"}, filters)
	query := `SELECT t.username, COALESCE(SUM(t.points), 0) AS total_points
	          FROM transactions t
	          ` + where + `
	          GROUP BY t.username
	          ORDER BY total_points DESC
	          LIMIT 1`

	var userName *string
	var total int
	err := r.db.QueryRow(query, args...).Scan(&userName, &total)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("%w: finding top loader: %v", ErrDatabaseError, err)
	}
	return userName, total, nil
}
