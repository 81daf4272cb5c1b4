package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dinehub-mw/dinehub-backend/pkg/enums"
	"github.com/dinehub-mw/dinehub-backend/pkg/types"
)

// LedgerEntry records an immutable signed dine coins movement. Amount is
// positive for credits and negative for debits; the entry type is derived
// from the sign at write time. Rows are append-only.
type LedgerEntry struct {
	ID         uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TargetType enums.LedgerTargetType `gorm:"column:target_type;type:text;not null;index:idx_ledger_target"`
	TargetID   uuid.UUID             `gorm:"column:target_id;type:uuid;not null;index:idx_ledger_target"`
	Amount     decimal.Decimal       `gorm:"column:amount;type:numeric(14,2);not null"`
	Type       enums.LedgerEntryType `gorm:"column:type;type:text;not null"`
	Reason     string                `gorm:"column:reason;type:text;not null"`
	ActorID    *uuid.UUID            `gorm:"column:actor_id;type:uuid"`
	Metadata   types.JSONMap         `gorm:"column:metadata;type:jsonb;serializer:json"`
	CreatedAt  time.Time             `gorm:"column:created_at;autoCreateTime"`
}
