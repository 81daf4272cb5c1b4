package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dinehub-mw/dinehub-backend/internal/ledger"
	"github.com/dinehub-mw/dinehub-backend/pkg/db/models"
	"github.com/dinehub-mw/dinehub-backend/pkg/enums"
)

type stubLedgerService struct {
	balance     decimal.Decimal
	adjustment  *ledger.RecordAdjustmentInput
	entries     []models.LedgerEntry
	listedLimit int
}

func (s *stubLedgerService) RecordAdjustment(ctx context.Context, input ledger.RecordAdjustmentInput) (*models.LedgerEntry, error) {
	s.adjustment = &input
	return &models.LedgerEntry{ID: uuid.New(), Amount: input.Amount}, nil
}

func (s *stubLedgerService) Balance(ctx context.Context, targetType enums.LedgerTargetType, targetID uuid.UUID) (decimal.Decimal, error) {
	return s.balance, nil
}

func (s *stubLedgerService) ListEntries(ctx context.Context, targetType enums.LedgerTargetType, targetID uuid.UUID, limit int) ([]models.LedgerEntry, error) {
	s.listedLimit = limit
	return s.entries, nil
}

func TestDineCoinsBalanceUsesCallerIdentity(t *testing.T) {
	svc := &stubLedgerService{balance: decimal.RequireFromString("1250.50")}
	handler := DineCoinsBalance(svc, controllersTestLogger())

	req := authedRequest(http.MethodGet, "/api/v1/dinecoins/balance", "")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "1250.5")
}

func TestDineCoinsAdjustRecordsActor(t *testing.T) {
	svc := &stubLedgerService{}
	handler := DineCoinsAdjust(svc, controllersTestLogger())

	targetID := uuid.New()
	body := `{"target_type":"establishment","target_id":"` + targetID.String() + `","amount":"-500","reason":"promo clawback"}`
	req := authedRequest(http.MethodPost, "/api/v1/dinecoins/adjustments", body)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	require.Equal(t, http.StatusCreated, resp.Code)
	require.NotNil(t, svc.adjustment)
	assert.Equal(t, enums.LedgerTargetEstablishment, svc.adjustment.TargetType)
	assert.Equal(t, targetID, svc.adjustment.TargetID)
	assert.Equal(t, "-500", svc.adjustment.Amount.String())
	require.NotNil(t, svc.adjustment.ActorID)
}

func TestDineCoinsAdjustRejectsUnknownTarget(t *testing.T) {
	svc := &stubLedgerService{}
	handler := DineCoinsAdjust(svc, controllersTestLogger())

	body := `{"target_type":"waiter","target_id":"` + uuid.NewString() + `","amount":"10"}`
	req := authedRequest(http.MethodPost, "/api/v1/dinecoins/adjustments", body)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Nil(t, svc.adjustment)
}

func TestDineCoinsEntriesClampsLimit(t *testing.T) {
	svc := &stubLedgerService{}
	handler := DineCoinsEntries(svc, controllersTestLogger())

	target := uuid.NewString()
	req := authedRequest(http.MethodGet, "/api/v1/dinecoins/entries?target_type=user&target_id="+target+"&limit=500", "")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)

	req = authedRequest(http.MethodGet, "/api/v1/dinecoins/entries?target_type=user&target_id="+target, "")
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, defaultEntriesLimit, svc.listedLimit)
}
