package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MenuItem is a sellable item on an establishment menu. Price is the
// authoritative unit price used when validating incoming orders.
type MenuItem struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EstablishmentID uuid.UUID       `gorm:"column:establishment_id;type:uuid;not null;index"`
	Name            string          `gorm:"column:name;type:text;not null"`
	Description     *string         `gorm:"column:description"`
	Price           decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Category        *string         `gorm:"column:category"`
	IsAvailable     bool            `gorm:"column:is_available;not null;default:true"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
