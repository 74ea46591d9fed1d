package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/glockwork/ControLeo2/internal/models"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.User, error)
}

// SettingsRepo stores single-byte settings, mirroring the EEPROM cells the
// controller keeps its persistent configuration in. Keys that were never
// written read back as the erased value 0xFF.
type SettingsRepo interface {
	ReadByte(ctx context.Context, key string) (uint8, error)
	WriteByte(ctx context.Context, key string, value uint8) error
}

type EventRepo interface {
	Append(ctx context.Context, e models.OvenEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.OvenEvent, error)
}

type Repository struct {
	Settings SettingsRepo
	Events   EventRepo
	Auth     Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Settings: NewSettingsSQLite(db),
		Events:   NewEventSQLite(db),
		Auth:     NewUserRepository(db),
	}
}
