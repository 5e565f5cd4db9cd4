package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"aguipuntos_backend/internal/models"

	"github.com/lib/pq"
)

// CustomerRepository defines the interface for customer-related database operations.
type CustomerRepository interface {
	Create(executor SQLExecutor, customer *models.Customer) (int64, error)
	GetByDNI(executor SQLExecutor, dni string) (*models.Customer, error)
	GetByID(executor SQLExecutor, id int64) (*models.Customer, error)
	List(search string, limit, offset int) ([]models.Customer, error)
	CountBySearch(search string) (int, error)

	// UpdatePointsIfUnchanged writes newPoints only when the stored balance
	// still equals expectedPoints. A false return means a concurrent writer
	// got there first and the caller must re-read and retry.
	UpdatePointsIfUnchanged(executor SQLExecutor, id int64, newPoints, expectedPoints int) (bool, error)

	// Upsert updates nombre/celular/puntos by DNI, inserting when the DNI is
	// unknown. Returns true when a new row was inserted.
	Upsert(executor SQLExecutor, customer *models.Customer) (bool, error)
}

type customerRepository struct {
	db *sql.DB
}

// NewCustomerRepository creates a new instance of CustomerRepository.
func NewCustomerRepository(db *sql.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(executor SQLExecutor, customer *models.Customer) (int64, error) {
	query := `INSERT INTO customers (dni, nombre, celular, puntos)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id`
	err := executor.QueryRow(query,
		customer.DNI, customer.Nombre, customer.Celular, customer.Puntos,
	).Scan(&customer.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return 0, ErrDuplicateKey
		}
		return 0, fmt.Errorf("%w: creating customer: %v", ErrDatabaseError, err)
	}
	return customer.ID, nil
}

func (r *customerRepository) GetByDNI(executor SQLExecutor, dni string) (*models.Customer, error) {
	query := `SELECT id, dni, nombre, celular, puntos FROM customers WHERE dni = $1`
	return r.scanCustomer(executor.QueryRow(query, dni), "dni "+dni)
}

func (r *customerRepository) GetByID(executor SQLExecutor, id int64) (*models.Customer, error) {
	query := `SELECT id, dni, nombre, celular, puntos FROM customers WHERE id = $1`
	return r.scanCustomer(executor.QueryRow(query, id), fmt.Sprintf("id %d", id))
}

func (r *customerRepository) scanCustomer(row *sql.Row, ref string) (*models.Customer, error) {
	customer := &models.Customer{}
	err := row.Scan(&customer.ID, &customer.DNI, &customer.Nombre, &customer.Celular, &customer.Puntos)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting customer by %s: %v", ErrDatabaseError, ref, err)
	}
	return customer, nil
}

func (r *customerRepository) List(search string, limit, offset int) ([]models.Customer, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT id, dni, nombre, celular, puntos FROM customers`)

	var args []interface{}
	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		args = append(args, like, like)
		queryBuilder.WriteString(` WHERE lower(nombre) LIKE $1 OR lower(dni) LIKE $2`)
	}
	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY nombre ASC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2))
	args = append(args, limit, offset)

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: listing customers: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	customers := []models.Customer{}
	for rows.Next() {
		var c models.Customer
		if err := rows.Scan(&c.ID, &c.DNI, &c.Nombre, &c.Celular, &c.Puntos); err != nil {
			return nil, fmt.Errorf("%w: scanning customer: %v", ErrDatabaseError, err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (r *customerRepository) CountBySearch(search string) (int, error) {
	like := "%" + strings.ToLower(search) + "%"
	var total int
	err := r.db.QueryRow(
		`SELECT COUNT(*) FROM customers WHERE lower(nombre) LIKE $1 OR lower(dni) LIKE $2`,
		like, like,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("%w: counting customers: %v", ErrDatabaseError, err)
	}
	return total, nil
}

func (r *customerRepository) UpdatePointsIfUnchanged(executor SQLExecutor, id int64, newPoints, expectedPoints int) (bool, error) {
	result, err := executor.Exec(
		`UPDATE customers SET puntos = $1 WHERE id = $2 AND puntos = $3`,
		newPoints, id, expectedPoints,
	)
	if err != nil {
		return false, fmt.Errorf("%w: updating customer %d points: %v", ErrDatabaseError, id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: updating customer %d points: %v", ErrDatabaseError, id, err)
	}
	return affected == 1, nil
}

func (r *customerRepository) Upsert(executor SQLExecutor, customer *models.Customer) (bool, error) {
	result, err := executor.Exec(
		`UPDATE customers SET nombre = $1, celular = $2, puntos = $3 WHERE dni = $4`,
		customer.Nombre, customer.Celular, customer.Puntos, customer.DNI,
	)
	if err != nil {
		return false, fmt.Errorf("%w: upserting customer %s: %v", ErrDatabaseError, customer.DNI, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: upserting customer %s: %v", ErrDatabaseError, customer.DNI, err)
	}
	if affected > 0 {
		return false, nil
	}
	if _, err := r.Create(executor, customer); err != nil {
		return false, err
	}
	return true, nil
}
