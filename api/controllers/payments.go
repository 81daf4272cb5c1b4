package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dinehub-mw/dinehub-backend/api/middleware"
	"github.com/dinehub-mw/dinehub-backend/api/responses"
	"github.com/dinehub-mw/dinehub-backend/api/validators"
	"github.com/dinehub-mw/dinehub-backend/internal/payments"
	"github.com/dinehub-mw/dinehub-backend/pkg/db/models"
	"github.com/dinehub-mw/dinehub-backend/pkg/enums"
	pkgerrors "github.com/dinehub-mw/dinehub-backend/pkg/errors"
	"github.com/dinehub-mw/dinehub-backend/pkg/logger"
)

type createPaymentRequest struct {
	OrderID string `json:"order_id" validate:"required,uuid"`
}

type paymentView struct {
	ID                uuid.UUID           `json:"id"`
	OrderID           *uuid.UUID          `json:"order_id,omitempty"`
	Status            enums.PaymentStatus `json:"status"`
	Amount            decimal.Decimal     `json:"amount"`
	Currency          enums.Currency      `json:"currency"`
	Method            enums.PaymentMethod `json:"method"`
	CheckoutURL       *string             `json:"checkout_url,omitempty"`
	ProviderPaymentID *string             `json:"provider_payment_id,omitempty"`
	FailureReason     *string             `json:"failure_reason,omitempty"`
	CompletedAt       *time.Time          `json:"completed_at,omitempty"`
	Message           string              `json:"message,omitempty"`
}

func newPaymentView(p *models.Payment, message string) paymentView {
	return paymentView{
		ID:                p.ID,
		OrderID:           p.OrderID,
		Status:            p.Status,
		Amount:            p.Amount,
		Currency:          p.Currency,
		Method:            p.Method,
		CheckoutURL:       p.CheckoutURL,
		ProviderPaymentID: p.ProviderPaymentID,
		FailureReason:     p.FailureReason,
		CompletedAt:       p.CompletedAt,
		Message:           message,
	}
}

// CreatePayment starts gateway collection for an order.
func CreatePayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		customerID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing caller identity"))
			return
		}

		var req createPaymentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := uuid.Parse(req.OrderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		result, err := svc.Create(r.Context(), payments.CreatePaymentInput{
			OrderID:        orderID,
			CustomerID:     customerID,
			IdempotencyKey: strings.TrimSpace(r.Header.Get("Idempotency-Key")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if result.AlreadyExists {
			responses.WriteSuccess(w, newPaymentView(result.Payment, result.Message))
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newPaymentView(result.Payment, ""))
	}
}

// PaymentStatus returns the current payment state, polling the gateway when
// the local state is not terminal.
func PaymentStatus(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		paymentID, err := validators.ParseUUIDParam(r, "paymentID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payment, err := svc.CheckStatus(r.Context(), paymentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newPaymentView(payment, ""))
	}
}
