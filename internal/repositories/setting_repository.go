package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// SettingRepository stores key/value runtime configuration.
type SettingRepository interface {
	Get(key string) (string, error)
	Upsert(key, value string) error
}

type settingRepository struct {
	db *sql.DB
}

// NewSettingRepository creates a new instance of SettingRepository.
func NewSettingRepository(db *sql.DB) SettingRepository {
	return &settingRepository{db: db}
}

func (r *settingRepository) Get(key string) (string, error) {
	var value sql.NullString
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: getting setting %s: %v", ErrDatabaseError, key, err)
	}
	return value.String, nil
}

func (r *settingRepository) Upsert(key, value string) error {
	_, err := r.db.Exec(
		`INSERT INTO settings (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("%w: upserting setting %s: %v", ErrDatabaseError, key, err)
	}
	return nil
}
