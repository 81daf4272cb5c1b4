package models

import (
	"time"

	"github.com/google/uuid"
)

// DiningTable is a physical table inside an establishment.
type DiningTable struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EstablishmentID uuid.UUID `gorm:"column:establishment_id;type:uuid;not null;index"`
	Label           string    `gorm:"column:label;type:text;not null"`
	Seats           int       `gorm:"column:seats;not null;default:2"`
	IsActive        bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
