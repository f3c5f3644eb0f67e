package store

import (
	"database/sql"
	"fmt"
	"strconv"
)

// GetConfig reads one config entry.
func (s *Store) GetConfig(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("config key not found: %s", key)
		}
		return "", err
	}
	return value, nil
}

// GetConfigInt reads one integer config entry.
func (s *Store) GetConfigInt(key string) (int, error) {
	value, err := s.GetConfig(key)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(value)
}

// SetConfig writes one config entry.
func (s *Store) SetConfig(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = ?, updated_at = CURRENT_TIMESTAMP
	`, key, value, value)
	return err
}

// SetConfigInt writes one integer config entry.
func (s *Store) SetConfigInt(key string, value int) error {
	return s.SetConfig(key, strconv.Itoa(value))
}

// GetCurrentPeriod returns the period the operator is working on.
func (s *Store) GetCurrentPeriod() (year, month int, err error) {
	year, err = s.GetConfigInt("current_year")
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get current_year: %w", err)
	}

	month, err = s.GetConfigInt("current_month")
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get current_month: %w", err)
	}

	return year, month, nil
}

// SetCurrentPeriod records the period the operator is working on.
func (s *Store) SetCurrentPeriod(year, month int) error {
	if err := s.SetConfigInt("current_year", year); err != nil {
		return err
	}
	if err := s.SetConfigInt("current_month", month); err != nil {
		return err
	}
	return nil
}
