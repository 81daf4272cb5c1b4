package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dinehub-mw/dinehub-backend/pkg/db"
	"github.com/dinehub-mw/dinehub-backend/pkg/db/models"
	"github.com/dinehub-mw/dinehub-backend/pkg/enums"
	pkgerrors "github.com/dinehub-mw/dinehub-backend/pkg/errors"
	"github.com/dinehub-mw/dinehub-backend/pkg/logger"
	"github.com/dinehub-mw/dinehub-backend/pkg/metrics"
	"github.com/dinehub-mw/dinehub-backend/pkg/paychangu"
	"github.com/dinehub-mw/dinehub-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Gateway is the outbound payment provider surface used by the service.
type Gateway interface {
	CreatePayment(ctx context.Context, idempotencyKey string, req paychangu.CreatePaymentRequest) (*paychangu.PaymentResponse, error)
	GetPayment(ctx context.Context, providerPaymentID string) (*paychangu.PaymentResponse, error)
}

// Notifier fans out realtime payment events. Delivery is best effort.
type Notifier interface {
	PaymentCompleted(ctx context.Context, payment *models.Payment) error
}

// NoopNotifier satisfies Notifier when no realtime channel is configured.
type NoopNotifier struct{}

func (NoopNotifier) PaymentCompleted(context.Context, *models.Payment) error { return nil }

// Service defines the payment lifecycle operations.
type Service interface {
	// Create starts gateway collection for an order's payment. Replays with a
	// known idempotency key return the existing payment.
	Create(ctx context.Context, input CreatePaymentInput) (*CreatePaymentResult, error)
	// HandleWebhook applies a gateway delivery. Unmatched provider ids persist
	// an orphan row and surface NotFound.
	HandleWebhook(ctx context.Context, input WebhookInput) (*models.Payment, error)
	// CheckStatus returns the payment, polling the gateway when the local
	// state is not terminal. Gateway failures fail open to the cached state.
	CheckStatus(ctx context.Context, paymentID uuid.UUID) (*models.Payment, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	gateway  Gateway
	notifier Notifier
	logg     *logger.Logger
	metrics  *metrics.PaymentMetrics
	callback string
}

// Config carries the optional service settings.
type Config struct {
	CallbackURL string
}

// NewService wires the payment reconciliation service.
func NewService(repo Repository, tx txRunner, gateway Gateway, notifier Notifier, logg *logger.Logger, pm *metrics.PaymentMetrics, cfg Config) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payments repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payment gateway required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &service{
		repo:     repo,
		tx:       tx,
		gateway:  gateway,
		notifier: notifier,
		logg:     logg,
		metrics:  pm,
		callback: cfg.CallbackURL,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreatePaymentInput) (*CreatePaymentResult, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	key := input.IdempotencyKey
	if key == "" {
		key = uuid.NewString()
	}

	// Idempotency replay: a known key always resolves to the original row.
	if existing, err := s.repo.GetByIdempotencyKey(ctx, key); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up idempotency key")
	} else if existing != nil {
		return &CreatePaymentResult{Payment: existing, AlreadyExists: true, Message: "Payment already created"}, nil
	}

	order, err := s.repo.GetOrder(ctx, input.OrderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if input.CustomerID != uuid.Nil && order.CustomerID != input.CustomerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another customer")
	}

	payment, err := s.repo.GetByOrderID(ctx, input.OrderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order payment")
	}
	if payment != nil && payment.Status == enums.PaymentStatusCompleted {
		return &CreatePaymentResult{Payment: payment, AlreadyExists: true, Message: "Payment already created"}, nil
	}

	if payment == nil {
		orderID := order.ID
		payment = &models.Payment{
			ID:              uuid.New(),
			OrderID:         &orderID,
			PayerCustomerID: &order.CustomerID,
			Amount:          order.TotalAmount,
			Currency:        order.Currency,
			Method:          enums.PaymentMethodPayChangu,
			Status:          enums.PaymentStatusPending,
			DineCoinsUsed:   decimal.Zero,
		}
		payment.IdempotencyKey = &key
		if err := s.repo.Create(ctx, payment); err != nil {
			if db.IsUniqueViolation(err, "") {
				if existing, lookupErr := s.repo.GetByIdempotencyKey(ctx, key); lookupErr == nil && existing != nil {
					return &CreatePaymentResult{Payment: existing, AlreadyExists: true, Message: "Payment already created"}, nil
				}
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment")
		}
	} else {
		payment.IdempotencyKey = &key
		if err := s.repo.Update(ctx, payment); err != nil {
			if db.IsUniqueViolation(err, "") {
				if existing, lookupErr := s.repo.GetByIdempotencyKey(ctx, key); lookupErr == nil && existing != nil {
					return &CreatePaymentResult{Payment: existing, AlreadyExists: true, Message: "Payment already created"}, nil
				}
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim payment")
		}
	}

	snapshot := s.creationSnapshot(ctx, order)

	resp, err := s.gateway.CreatePayment(ctx, key, paychangu.CreatePaymentRequest{
		Amount:      amountToCents(payment.Amount),
		Currency:    string(payment.Currency),
		Description: fmt.Sprintf("Order %s", order.OrderNumber),
		CallbackURL: s.callback,
		Reference:   order.OrderNumber,
	})
	if err != nil {
		failErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			reason := err.Error()
			payment.Status = enums.PaymentStatusFailed
			payment.FailureReason = &reason
			if updateErr := repo.Update(ctx, payment); updateErr != nil {
				return updateErr
			}
			return repo.UpdateOrderPaymentStatus(ctx, order.ID, enums.OrderPaymentFailed)
		})
		if failErr != nil {
			s.logg.Error(ctx, "marking payment failed after gateway rejection", failErr)
		}
		s.metrics.IncTransition(string(enums.PaymentStatusFailed), "create")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "gateway payment creation failed")
	}

	providerID := resp.PaymentID()
	checkoutURL := resp.HostedURL()
	snapshot["provider_payment_id"] = providerID

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		payment.ProviderPaymentID = &providerID
		if checkoutURL != "" {
			payment.CheckoutURL = &checkoutURL
		}
		payment.Status = enums.PaymentStatusProcessing
		payment.Metadata = payment.Metadata.Merge(snapshot)
		if updateErr := repo.Update(ctx, payment); updateErr != nil {
			return updateErr
		}
		return repo.UpdateOrderPaymentStatus(ctx, order.ID, enums.OrderPaymentProcessing)
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist gateway acceptance")
	}

	s.metrics.IncTransition(string(enums.PaymentStatusProcessing), "create")
	return &CreatePaymentResult{Payment: payment}, nil
}

func (s *service) HandleWebhook(ctx context.Context, input WebhookInput) (*models.Payment, error) {
	if input.ProviderPaymentID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "provider payment id is required")
	}

	payment, err := s.repo.GetByProviderPaymentID(ctx, input.ProviderPaymentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up payment")
	}

	normalized := paychangu.NormalizeStatus(input.Status)

	if payment == nil {
		if orphanErr := s.persistOrphan(ctx, input, normalized); orphanErr != nil {
			s.logg.Error(ctx, "persisting orphan webhook payment", orphanErr)
		}
		s.metrics.IncWebhook("orphan")
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found for provider id")
	}

	if payment.Status.IsTerminal() {
		// Terminal states are sticky. Replays of the matching terminal status
		// (and contradicting late deliveries) are acknowledged without change.
		s.metrics.IncWebhook("duplicate")
		return payment, nil
	}

	now := time.Now().UTC()
	payment.WebhookReceivedAt = &now
	// Provider payload keys never clobber locally recorded metadata.
	payment.Metadata = input.RawPayload.Merge(payment.Metadata)

	if err := s.applyProviderStatus(ctx, payment, normalized, nil, "webhook"); err != nil {
		return nil, err
	}

	s.metrics.IncWebhook("accepted")
	return payment, nil
}

func (s *service) CheckStatus(ctx context.Context, paymentID uuid.UUID) (*models.Payment, error) {
	if paymentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment id is required")
	}

	payment, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
	}
	if payment == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
	}

	if payment.Status.IsTerminal() {
		return payment, nil
	}
	if payment.ProviderPaymentID == nil || *payment.ProviderPaymentID == "" {
		return payment, nil
	}

	resp, err := s.gateway.GetPayment(ctx, *payment.ProviderPaymentID)
	if err != nil {
		// Fail open: polling must never degrade a known state.
		s.logg.Warn(s.logg.WithField(ctx, "payment_id", payment.ID.String()),
			"gateway status poll failed, returning cached state")
		return payment, nil
	}

	normalized := resp.NormalizedStatus()
	poll := types.JSONMap{
		"last_status_check": time.Now().UTC().Format(time.RFC3339),
		"provider_status":   normalized,
	}

	switch normalized {
	case paychangu.StatusSuccessful, paychangu.StatusFailed:
		if err := s.applyProviderStatus(ctx, payment, normalized, poll, "poll"); err != nil {
			return nil, err
		}
	default:
		payment.Metadata = payment.Metadata.Merge(poll)
		if err := s.repo.Update(ctx, payment); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record poll metadata")
		}
	}

	return payment, nil
}

// applyProviderStatus is the single transition path shared by the webhook and
// poll flows. It moves the payment to a terminal state, projects the order's
// payment status, and fans out the completion event.
func (s *service) applyProviderStatus(ctx context.Context, payment *models.Payment, normalized string, extra types.JSONMap, source string) error {
	completed := normalized == paychangu.StatusSuccessful

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		payment.Metadata = payment.Metadata.Merge(extra)
		if completed {
			now := time.Now().UTC()
			payment.Status = enums.PaymentStatusCompleted
			payment.CompletedAt = &now
		} else {
			reason := fmt.Sprintf("provider reported %s", normalized)
			payment.Status = enums.PaymentStatusFailed
			payment.FailureReason = &reason
		}

		if err := repo.Update(ctx, payment); err != nil {
			return err
		}

		if payment.OrderID != nil {
			orderStatus := enums.OrderPaymentFailed
			if completed {
				orderStatus = enums.OrderPaymentPaid
			}
			return repo.UpdateOrderPaymentStatus(ctx, *payment.OrderID, orderStatus)
		}
		return nil
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply payment transition")
	}

	s.metrics.IncTransition(string(payment.Status), source)

	if completed {
		if notifyErr := s.notifier.PaymentCompleted(ctx, payment); notifyErr != nil {
			s.logg.Error(s.logg.WithField(ctx, "payment_id", payment.ID.String()),
				"payment completed notification failed", notifyErr)
		}
	}
	return nil
}

// creationSnapshot captures the order context at payment creation time.
// Lookups are best effort, a missing row just leaves the key out.
func (s *service) creationSnapshot(ctx context.Context, order *models.Order) types.JSONMap {
	snapshot := types.JSONMap{
		"order_number": order.OrderNumber,
		"validated_at": time.Now().UTC().Format(time.RFC3339),
	}
	if order.TableID != nil {
		snapshot["table_id"] = order.TableID.String()
	}
	if user, err := s.repo.GetUser(ctx, order.CustomerID); err == nil && user != nil {
		snapshot["customer_email"] = user.Email
		if user.Phone != nil {
			snapshot["customer_phone"] = *user.Phone
		}
	}
	if est, err := s.repo.GetEstablishment(ctx, order.EstablishmentID); err == nil && est != nil {
		snapshot["establishment_name"] = est.Name
	}
	return snapshot
}

// persistOrphan records an unmatched webhook delivery for manual
// reconciliation. The provider reports amounts in the smallest unit.
func (s *service) persistOrphan(ctx context.Context, input WebhookInput, normalized string) error {
	currency := enums.Currency(input.Currency)
	if !currency.IsValid() {
		currency = enums.CurrencyMWK
	}

	providerID := input.ProviderPaymentID
	reason := "orphaned webhook: no matching payment"
	orphan := &models.Payment{
		ID:                uuid.New(),
		Amount:            decimal.NewFromInt(input.AmountCents).Div(decimal.NewFromInt(100)),
		Currency:          currency,
		Method:            enums.PaymentMethodPayChangu,
		Status:            enums.PaymentStatusPending,
		ProviderPaymentID: &providerID,
		FailureReason:     &reason,
		Metadata: types.JSONMap{
			"orphaned":            true,
			"provider_payment_id": providerID,
			"provider_status":     normalized,
		}.Merge(input.RawPayload),
	}
	return s.repo.Create(ctx, orphan)
}

func amountToCents(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
