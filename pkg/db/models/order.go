package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dinehub-mw/dinehub-backend/pkg/enums"
)

// Order is a customer order placed against an establishment. The order, its
// items, and its payment row are always created inside a single transaction.
type Order struct {
	ID                  uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber         string                   `gorm:"column:order_number;type:text;not null;uniqueIndex"`
	CustomerID          uuid.UUID                `gorm:"column:customer_id;type:uuid;not null;index"`
	EstablishmentID     uuid.UUID                `gorm:"column:establishment_id;type:uuid;not null;index"`
	TableID             *uuid.UUID               `gorm:"column:table_id;type:uuid"`
	GroupSessionID      *uuid.UUID               `gorm:"column:group_session_id;type:uuid;index"`
	Status              enums.OrderStatus        `gorm:"column:status;type:text;not null;default:'pending'"`
	PaymentStatus       enums.OrderPaymentStatus `gorm:"column:payment_status;type:text;not null;default:'unpaid'"`
	TotalAmount         decimal.Decimal          `gorm:"column:total_amount;type:numeric(12,2);not null"`
	Currency            enums.Currency           `gorm:"column:currency;type:text;not null;default:'MWK'"`
	SpecialInstructions *string                  `gorm:"column:special_instructions"`
	Items               []OrderItem              `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Payment             *Payment                 `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt           time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
