package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"aguipuntos_backend/internal/models"
)

// PrizeRepository defines the interface for prize catalog operations.
type PrizeRepository interface {
	List() ([]models.Prize, error)
	GetByID(executor SQLExecutor, id int64) (*models.Prize, error)
	Create(prize *models.Prize) (int64, error)
	Update(prize *models.Prize) (bool, error)
	Delete(id int64) (bool, error)
}

type prizeRepository struct {
	db *sql.DB
}

// NewPrizeRepository creates a new instance of PrizeRepository.
func NewPrizeRepository(db *sql.DB) PrizeRepository {
	return &prizeRepository{db: db}
}

func (r *prizeRepository) List() ([]models.Prize, error) {
	rows, err := r.db.Query(`SELECT id, nombre, costo_puntos FROM prizes ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: listing prizes: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	prizes := []models.Prize{}
	for rows.Next() {
		var p models.Prize
		if err := rows.Scan(&p.ID, &p.Nombre, &p.CostoPuntos); err != nil {
			return nil, fmt.Errorf("%w: scanning prize: %v", ErrDatabaseError, err)
		}
		prizes = append(prizes, p)
	}
	return prizes, rows.Err()
}

func (r *prizeRepository) GetByID(executor SQLExecutor, id int64) (*models.Prize, error) {
	prize := &models.Prize{}
	err := executor.QueryRow(
		`SELECT id, nombre, costo_puntos FROM prizes WHERE id = $1`, id,
	).Scan(&prize.ID, &prize.Nombre, &prize.CostoPuntos)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting prize by ID %d: %v", ErrDatabaseError, id, err)
	}
	return prize, nil
}

func (r *prizeRepository) Create(prize *models.Prize) (int64, error) {
	err := r.db.QueryRow(
		`INSERT INTO prizes (nombre, costo_puntos) VALUES ($1, $2) RETURNING id`,
		prize.Nombre, prize.CostoPuntos,
	).Scan(&prize.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating prize: %v", ErrDatabaseError, err)
	}
	return prize.ID, nil
}

func (r *prizeRepository) Update(prize *models.Prize) (bool, error) {
	result, err := r.db.Exec(
		`UPDATE prizes SET nombre = $1, costo_puntos = $2 WHERE id = $3`,
		prize.Nombre, prize.CostoPuntos, prize.ID,
	)
	if err != nil {
		return false, fmt.Errorf("%w: updating prize %d: %v", ErrDatabaseError, prize.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: updating prize %d: %v", ErrDatabaseError, prize.ID, err)
	}
	return affected > 0, nil
}

func (r *prizeRepository) Delete(id int64) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM prizes WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("%w: deleting prize %d: %v", ErrDatabaseError, id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: deleting prize %d: %v", ErrDatabaseError, id, err)
	}
	return affected > 0, nil
}
