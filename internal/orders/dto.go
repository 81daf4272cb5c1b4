package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dinehub-mw/dinehub-backend/pkg/enums"
)

// PlaceOrderInput captures everything a customer submits when ordering.
type PlaceOrderInput struct {
	CustomerID          uuid.UUID
	EstablishmentID     uuid.UUID
	TableID             *uuid.UUID
	GroupSessionID      *uuid.UUID
	Items               []OrderItemInput
	DeclaredTotal       decimal.Decimal
	PaymentMethod       enums.PaymentMethod
	DineCoinsUsed       decimal.Decimal
	SpecialInstructions *string
}

// OrderItemInput is one requested line referencing a menu item.
type OrderItemInput struct {
	MenuItemID          uuid.UUID
	Quantity            int
	SpecialInstructions *string
}

// OrderItemSummary is the priced line echoed back to the caller.
type OrderItemSummary struct {
	MenuItemID          uuid.UUID       `json:"menu_item_id"`
	Name                string          `json:"name"`
	Quantity            int             `json:"quantity"`
	UnitPrice           decimal.Decimal `json:"unit_price"`
	LineTotal           decimal.Decimal `json:"line_total"`
	SpecialInstructions *string         `json:"special_instructions,omitempty"`
}

// OrderSummary is the order view returned from placement.
type OrderSummary struct {
	ID                  uuid.UUID                `json:"id"`
	OrderNumber         string                   `json:"order_number"`
	Status              enums.OrderStatus        `json:"status"`
	PaymentStatus       enums.OrderPaymentStatus `json:"payment_status"`
	TotalAmount         decimal.Decimal          `json:"total_amount"`
	Currency            enums.Currency           `json:"currency"`
	Items               []OrderItemSummary       `json:"items"`
	GroupSessionID      *uuid.UUID               `json:"group_session_id,omitempty"`
	SpecialInstructions *string                  `json:"special_instructions,omitempty"`
	CreatedAt           time.Time                `json:"created_at"`
}

// PaymentSummary is the payment view returned from placement.
type PaymentSummary struct {
	ID            uuid.UUID           `json:"id"`
	Status        enums.PaymentStatus `json:"status"`
	Amount        decimal.Decimal     `json:"amount"`
	Method        enums.PaymentMethod `json:"method"`
	DineCoinsUsed decimal.Decimal     `json:"dine_coins_used"`
}

// PlaceOrderResult bundles the created order and its payment row.
type PlaceOrderResult struct {
	Order   OrderSummary   `json:"order"`
	Payment PaymentSummary `json:"payment"`
}
