package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dinehub-mw/dinehub-backend/api/middleware"
	"github.com/dinehub-mw/dinehub-backend/api/responses"
	"github.com/dinehub-mw/dinehub-backend/api/validators"
	"github.com/dinehub-mw/dinehub-backend/internal/ledger"
	"github.com/dinehub-mw/dinehub-backend/pkg/enums"
	pkgerrors "github.com/dinehub-mw/dinehub-backend/pkg/errors"
	"github.com/dinehub-mw/dinehub-backend/pkg/logger"
)

const (
	defaultEntriesLimit = 50
	maxEntriesLimit     = 200
)

// DineCoinsBalance returns the caller's ledger-derived balance.
func DineCoinsBalance(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		userID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing caller identity"))
			return
		}

		balance, err := svc.Balance(r.Context(), enums.LedgerTargetUser, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"target_type": enums.LedgerTargetUser,
			"target_id":   userID,
			"balance":     balance,
		})
	}
}

type adjustmentRequest struct {
	TargetType string          `json:"target_type" validate:"required,oneof=user establishment"`
	TargetID   string          `json:"target_id" validate:"required,uuid"`
	Amount     decimal.Decimal `json:"amount" validate:"required"`
	Reason     string          `json:"reason"`
}

// DineCoinsAdjust records a manual supervisor adjustment against any target.
func DineCoinsAdjust(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		actorID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing caller identity"))
			return
		}

		var req adjustmentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		targetType, err := enums.ParseLedgerTargetType(req.TargetType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid target type"))
			return
		}
		targetID, err := uuid.Parse(req.TargetID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid target id"))
			return
		}

		entry, err := svc.RecordAdjustment(r.Context(), ledger.RecordAdjustmentInput{
			TargetType: targetType,
			TargetID:   targetID,
			Amount:     req.Amount,
			Reason:     req.Reason,
			ActorID:    &actorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, entry)
	}
}

// DineCoinsEntries lists ledger entries for a target, newest first.
func DineCoinsEntries(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		targetType, err := enums.ParseLedgerTargetType(r.URL.Query().Get("target_type"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid target type"))
			return
		}
		targetID, err := uuid.Parse(r.URL.Query().Get("target_id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid target id"))
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", defaultEntriesLimit, 1, maxEntriesLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, err := svc.ListEntries(r.Context(), targetType, targetID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"entries": entries})
	}
}
