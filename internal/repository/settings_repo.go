package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErasedByte is what never-written settings read back as, mirroring the
// erased state of the EEPROM this store replaces.
const ErasedByte uint8 = 0xFF

type SettingsSQLite struct {
	db *sql.DB
}

func NewSettingsSQLite(db *sql.DB) *SettingsSQLite {
	return &SettingsSQLite{db: db}
}

// Ensure implementation of SettingsRepo interface at compile time.
var _ SettingsRepo = (*SettingsSQLite)(nil)

const (
	upsertSettingSQL = `
		INSERT INTO settings (key, value)
		VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value=excluded.value
	`

	selectSettingSQL = `SELECT value FROM settings WHERE key=?`
)

// WriteByte stores a single byte under key, overwriting any previous value.
func (r *SettingsSQLite) WriteByte(ctx context.Context, key string, value uint8) error {
	if _, err := r.db.ExecContext(ctx, upsertSettingSQL, key, value); err != nil {
		return fmt.Errorf("write setting %q: %w", key, err)
	}
	return nil
}

// ReadByte returns the byte stored under key, or ErasedByte when the key was
// never written.
func (r *SettingsSQLite) ReadByte(ctx context.Context, key string) (uint8, error) {
	var v int64
	if err := r.db.QueryRowContext(ctx, selectSettingSQL, key).Scan(&v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErasedByte, nil
		}
		return 0, fmt.Errorf("read setting %q: %w", key, err)
	}
	return uint8(v), nil
}
