package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dinehub-mw/dinehub-backend/pkg/enums"
	"github.com/dinehub-mw/dinehub-backend/pkg/types"
)

// Payment tracks payment progress for an order. Completed and failed are
// terminal: once a payment reaches either, its status never changes again.
// Metadata accumulates gateway payloads and is merged, never overwritten.
type Payment struct {
	ID                uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID           *uuid.UUID               `gorm:"column:order_id;type:uuid;index"`
	PayerCustomerID   *uuid.UUID               `gorm:"column:payer_customer_id;type:uuid"`
	Amount            decimal.Decimal          `gorm:"column:amount;type:numeric(12,2);not null"`
	Currency          enums.Currency           `gorm:"column:currency;type:text;not null;default:'MWK'"`
	Method            enums.PaymentMethod      `gorm:"column:method;type:text;not null"`
	Status            enums.PaymentStatus      `gorm:"column:status;type:text;not null;default:'pending'"`
	DineCoinsUsed     decimal.Decimal          `gorm:"column:dine_coins_used;type:numeric(12,2);not null;default:0"`
	IdempotencyKey    *string                  `gorm:"column:idempotency_key;type:text;uniqueIndex"`
	ProviderPaymentID *string                  `gorm:"column:provider_payment_id;type:text;index"`
	CheckoutURL       *string                  `gorm:"column:checkout_url;type:text"`
	FailureReason     *string                  `gorm:"column:failure_reason"`
	Metadata          types.JSONMap            `gorm:"column:metadata;type:jsonb;serializer:json"`
	WebhookReceivedAt *time.Time               `gorm:"column:webhook_received_at"`
	CompletedAt       *time.Time               `gorm:"column:completed_at"`
	CreatedAt         time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
