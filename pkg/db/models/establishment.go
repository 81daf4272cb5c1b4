package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Establishment is a restaurant venue. Like users, establishments hold a
// cached dine coins balance backed by the ledger.
type Establishment struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name             string          `gorm:"column:name;type:text;not null"`
	Slug             string          `gorm:"column:slug;type:text;not null;uniqueIndex"`
	Address          *string         `gorm:"column:address"`
	Phone            *string         `gorm:"column:phone"`
	IsActive         bool            `gorm:"column:is_active;not null;default:true"`
	DineCoinsBalance decimal.Decimal `gorm:"column:dine_coins_balance;type:numeric(14,2);not null;default:0"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
