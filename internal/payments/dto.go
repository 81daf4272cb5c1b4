package payments

import (
	"github.com/google/uuid"

	"github.com/dinehub-mw/dinehub-backend/pkg/db/models"
	"github.com/dinehub-mw/dinehub-backend/pkg/types"
)

// CreatePaymentInput starts gateway collection for an order.
type CreatePaymentInput struct {
	OrderID        uuid.UUID
	CustomerID     uuid.UUID
	IdempotencyKey string
}

// CreatePaymentResult reports the payment row plus whether it already existed.
type CreatePaymentResult struct {
	Payment       *models.Payment
	AlreadyExists bool
	Message       string
}

// WebhookInput carries the parsed gateway webhook delivery.
type WebhookInput struct {
	ProviderPaymentID string
	Status            string
	AmountCents       int64
	Currency          string
	RawPayload        types.JSONMap
}
