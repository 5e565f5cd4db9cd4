package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"aguipuntos_backend/internal/models"
)

// UserRepository defines the interface for staff account operations.
type UserRepository interface {
	List() ([]models.User, error)
	GetByUsername(username string) (*models.User, error)
	Create(user *models.User) (int64, error)
	UpdatePassword(id int64, passwordHash string) (bool, error)
	UpdatePasswordAndRole(id int64, passwordHash, role string) (bool, error)
	Delete(id int64) (bool, error)
}

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) List() ([]models.User, error) {
	rows, err := r.db.Query(`SELECT id, username, role FROM users ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: listing users: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Role); err != nil {
			return nil, fmt.Errorf("%w: scanning user: %v", ErrDatabaseError, err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *userRepository) GetByUsername(username string) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRow(
		`SELECT id, username, password_hash, role FROM users WHERE username = $1`, username,
	).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting user %s: %v", ErrDatabaseError, username, err)
	}
	return user, nil
}

func (r *userRepository) Create(user *models.User) (int64, error) {
	err := r.db.QueryRow(
		`INSERT INTO users (username, password_hash, role) VALUES ($1, $2, $3) RETURNING id`,
		user.Username, user.PasswordHash, user.Role,
	).Scan(&user.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating user: %v", ErrDatabaseError, err)
	}
	return user.ID, nil
}

func (r *userRepository) UpdatePassword(id int64, passwordHash string) (bool, error) {
	result, err := r.db.Exec(`UPDATE users SET password_hash = $1 WHERE id = $2`, passwordHash, id)
	if err != nil {
		return false, fmt.Errorf("%w: updating password for user %d: %v", ErrDatabaseError, id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: updating password for user %d: %v", ErrDatabaseError, id, err)
	}
	return affected > 0, nil
}

func (r *userRepository) UpdatePasswordAndRole(id int64, passwordHash, role string) (bool, error) {
	result, err := r.db.Exec(
		`UPDATE users SET password_hash = $1, role = $2 WHERE id = $3`,
		passwordHash, role, id,
	)
	if err != nil {
		return false, fmt.Errorf("%w: updating user %d: %v", ErrDatabaseError, id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: updating user %d: %v", ErrDatabaseError, id, err)
	}
	return affected > 0, nil
}

func (r *userRepository) Delete(id int64) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("%w: deleting user %d: %v", ErrDatabaseError, id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: deleting user %d: %v", ErrDatabaseError, id, err)
	}
	return affected > 0, nil
}
