package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dinehub-mw/dinehub-backend/pkg/enums"
)

// User represents the canonical identity entity. DineCoinsBalance is a cached
// projection of the user's ledger entries and is only mutated together with a
// ledger append.
type User struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email            string          `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash     string          `gorm:"column:password_hash;not null"`
	FullName         string          `gorm:"column:full_name;not null"`
	Phone            *string         `gorm:"column:phone"`
	Role             enums.Role      `gorm:"column:role;type:text;not null;default:'customer'"`
	IsActive         bool            `gorm:"column:is_active;not null;default:true"`
	DineCoinsBalance decimal.Decimal `gorm:"column:dine_coins_balance;type:numeric(14,2);not null;default:0"`
	LastLoginAt      *time.Time      `gorm:"column:last_login_at"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
