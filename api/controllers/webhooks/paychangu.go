package webhooks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dinehub-mw/dinehub-backend/api/responses"
	"github.com/dinehub-mw/dinehub-backend/internal/payments"
	"github.com/dinehub-mw/dinehub-backend/pkg/db/models"
	pkgerrors "github.com/dinehub-mw/dinehub-backend/pkg/errors"
	"github.com/dinehub-mw/dinehub-backend/pkg/logger"
	"github.com/dinehub-mw/dinehub-backend/pkg/paychangu"
	"github.com/dinehub-mw/dinehub-backend/pkg/types"
)

const signatureHeader = "Signature"

type PayChanguWebhookService interface {
	HandleWebhook(ctx context.Context, input payments.WebhookInput) (*models.Payment, error)
}

// Guard suppresses duplicate deliveries of the same event.
type Guard interface {
	CheckAndMark(ctx context.Context, eventID string) (bool, error)
	Delete(ctx context.Context, eventID string) error
}

// SecretSource exposes the shared secret used to verify deliveries.
type SecretSource interface {
	WebhookSecret() string
}

type paychanguPayload struct {
	ID            string `json:"id"`
	TransactionID string `json:"transaction_id"`
	ChargeID      string `json:"charge_id"`
	Reference     string `json:"reference"`
	Status        string `json:"status"`
	State         string `json:"state"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
}

func (p paychanguPayload) providerPaymentID() string {
	for _, candidate := range []string{p.ID, p.TransactionID, p.ChargeID} {
		if strings.TrimSpace(candidate) != "" {
			return strings.TrimSpace(candidate)
		}
	}
	return ""
}

func (p paychanguPayload) status() string {
	if p.Status != "" {
		return p.Status
	}
	return p.State
}

// PayChanguWebhook ingests gateway payment deliveries.
func PayChanguWebhook(svc PayChanguWebhookService, secrets SecretSource, guard Guard, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}
		if guard == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook guard unavailable"))
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		secret := ""
		if secrets != nil {
			secret = secrets.WebhookSecret()
		}
		if secret != "" {
			if !paychangu.VerifySignature(payload, secret, r.Header.Get(signatureHeader)) {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid webhook signature"))
				return
			}
		} else if logg != nil {
			logg.Warn(ctx, "webhook secret not configured, accepting unverified delivery")
		}

		var event paychanguPayload
		if err := json.Unmarshal(payload, &event); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode event"))
			return
		}

		providerID := event.providerPaymentID()
		if providerID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "provider payment id missing"))
			return
		}

		var raw types.JSONMap
		if err := json.Unmarshal(payload, &raw); err != nil {
			raw = types.JSONMap{}
		}

		// Dedupe on id + status so a later terminal delivery for the same
		// payment is still processed.
		eventID := providerID + ":" + paychangu.NormalizeStatus(event.status())
		alreadyProcessed, err := guard.CheckAndMark(ctx, eventID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check webhook dedupe"))
			return
		}
		if alreadyProcessed {
			responses.WriteSuccess(w, nil)
			return
		}

		payment, err := svc.HandleWebhook(ctx, payments.WebhookInput{
			ProviderPaymentID: providerID,
			Status:            event.status(),
			AmountCents:       event.Amount,
			Currency:          event.Currency,
			RawPayload:        raw,
		})
		if err != nil {
			_ = guard.Delete(ctx, eventID)
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(ctx, fmt.Sprintf("paychangu event %s processed", eventID))
		}
		responses.WriteSuccess(w, map[string]any{
			"payment_id": payment.ID,
			"status":     payment.Status,
		})
	}
}
