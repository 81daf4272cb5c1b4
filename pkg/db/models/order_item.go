package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem is a priced line on an order. UnitPrice is a snapshot of the menu
// item price at order time.
type OrderItem struct {
	ID                  uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID             uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	MenuItemID          uuid.UUID       `gorm:"column:menu_item_id;type:uuid;not null"`
	Name                string          `gorm:"column:name;type:text;not null"`
	Quantity            int             `gorm:"column:quantity;not null"`
	UnitPrice           decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	LineTotal           decimal.Decimal `gorm:"column:line_total;type:numeric(12,2);not null"`
	SpecialInstructions *string         `gorm:"column:special_instructions"`
	CreatedAt           time.Time       `gorm:"column:created_at;autoCreateTime"`
}
