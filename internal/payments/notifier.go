package payments

import (
	"context"
	"time"

	"github.com/dinehub-mw/dinehub-backend/pkg/db/models"
	"github.com/dinehub-mw/dinehub-backend/pkg/pubsub"
)

type eventPublisher interface {
	PublishJSON(ctx context.Context, topic string, payload any, attributes map[string]string) error
}

// PubSubNotifier publishes payment lifecycle events to the payment events
// topic.
type PubSubNotifier struct {
	publisher eventPublisher
	topic     string
}

// NewPubSubNotifier builds a notifier bound to the given Pub/Sub client and
// topic name.
func NewPubSubNotifier(client *pubsub.Client, topic string) *PubSubNotifier {
	return &PubSubNotifier{publisher: client, topic: topic}
}

type paymentCompletedEvent struct {
	EventType   string     `json:"event_type"`
	PaymentID   string     `json:"payment_id"`
	OrderID     *string    `json:"order_id,omitempty"`
	Amount      string     `json:"amount"`
	Currency    string     `json:"currency"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	EmittedAt   time.Time  `json:"emitted_at"`
}

// PaymentCompleted publishes a payment_completed event.
func (n *PubSubNotifier) PaymentCompleted(ctx context.Context, payment *models.Payment) error {
	event := paymentCompletedEvent{
		EventType:   "payment_completed",
		PaymentID:   payment.ID.String(),
		Amount:      payment.Amount.StringFixed(2),
		Currency:    string(payment.Currency),
		CompletedAt: payment.CompletedAt,
		EmittedAt:   time.Now().UTC(),
	}
	if payment.OrderID != nil {
		orderID := payment.OrderID.String()
		event.OrderID = &orderID
	}
	return n.publisher.PublishJSON(ctx, n.topic, event, map[string]string{
		"event_type": "payment_completed",
	})
}
