package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dinehub-mw/dinehub-backend/internal/ledger"
	"github.com/dinehub-mw/dinehub-backend/internal/orders"
	"github.com/dinehub-mw/dinehub-backend/internal/payments"
	pkgAuth "github.com/dinehub-mw/dinehub-backend/pkg/auth"
	"github.com/dinehub-mw/dinehub-backend/pkg/config"
	"github.com/dinehub-mw/dinehub-backend/pkg/db/models"
	"github.com/dinehub-mw/dinehub-backend/pkg/enums"
	"github.com/dinehub-mw/dinehub-backend/pkg/logger"
)

type routerLedgerStub struct{}

func (routerLedgerStub) RecordAdjustment(ctx context.Context, input ledger.RecordAdjustmentInput) (*models.LedgerEntry, error) {
	return &models.LedgerEntry{ID: uuid.New(), Amount: input.Amount}, nil
}

func (routerLedgerStub) Balance(ctx context.Context, targetType enums.LedgerTargetType, targetID uuid.UUID) (decimal.Decimal, error) {
	return decimal.NewFromInt(200), nil
}

func (routerLedgerStub) ListEntries(ctx context.Context, targetType enums.LedgerTargetType, targetID uuid.UUID, limit int) ([]models.LedgerEntry, error) {
	return nil, nil
}

type routerOrdersStub struct{}

func (routerOrdersStub) PlaceOrder(ctx context.Context, input orders.PlaceOrderInput) (*orders.PlaceOrderResult, error) {
	return &orders.PlaceOrderResult{Order: orders.OrderSummary{ID: uuid.New()}}, nil
}

type routerPaymentsStub struct{}

func (routerPaymentsStub) Create(ctx context.Context, input payments.CreatePaymentInput) (*payments.CreatePaymentResult, error) {
	return &payments.CreatePaymentResult{Payment: &models.Payment{ID: uuid.New(), Status: enums.PaymentStatusProcessing}}, nil
}

func (routerPaymentsStub) HandleWebhook(ctx context.Context, input payments.WebhookInput) (*models.Payment, error) {
	return &models.Payment{ID: uuid.New(), Status: enums.PaymentStatusCompleted}, nil
}

func (routerPaymentsStub) CheckStatus(ctx context.Context, paymentID uuid.UUID) (*models.Payment, error) {
	return &models.Payment{ID: paymentID, Status: enums.PaymentStatusPending}, nil
}

type routerGuardStub struct{}

func (routerGuardStub) CheckAndMark(ctx context.Context, eventID string) (bool, error) { return false, nil }
func (routerGuardStub) Delete(ctx context.Context, eventID string) error              { return nil }

type routerSecretsStub struct{}

func (routerSecretsStub) WebhookSecret() string { return "" }

func routerTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test"},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "dinehub-test",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	return NewRouter(Deps{
		Config:          cfg,
		Logger:          logger.New(logger.Options{ServiceName: "router-test", Level: zerolog.ErrorLevel, Output: io.Discard}),
		Registry:        prometheus.NewRegistry(),
		LedgerService:   routerLedgerStub{},
		OrdersService:   routerOrdersStub{},
		PaymentsService: routerPaymentsStub{},
		WebhookSecrets:  routerSecretsStub{},
		WebhookGuard:    routerGuardStub{},
	})
}

func mintToken(t *testing.T, cfg *config.Config, role enums.Role) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
	})
	require.NoError(t, err)
	return token
}

func TestRouterPublicEndpoints(t *testing.T) {
	router := newTestRouter(t, routerTestConfig())

	for _, path := range []string{"/health/live", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		assert.Equal(t, http.StatusOK, resp.Code, path)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/paychangu", strings.NewReader(`{"id":"pc_1","status":"successful"}`))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestRouterRequiresAuth(t *testing.T) {
	router := newTestRouter(t, routerTestConfig())

	paths := map[string]string{
		http.MethodPost: "/api/v1/orders",
		http.MethodGet:  "/api/v1/dinecoins/balance",
	}
	for method, path := range paths {
		req := httptest.NewRequest(method, path, strings.NewReader(`{}`))
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		assert.Equal(t, http.StatusUnauthorized, resp.Code, path)
	}
}

func TestRouterSupervisorGate(t *testing.T) {
	cfg := routerTestConfig()
	router := newTestRouter(t, cfg)

	body := `{"target_type":"user","target_id":"` + uuid.NewString() + `","amount":"50","reason":"goodwill"}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/dinecoins/adjustments", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, enums.RoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/dinecoins/adjustments", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, enums.RoleSupervisor))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusCreated, resp.Code)
}

func TestRouterAuthedHappyPaths(t *testing.T) {
	cfg := routerTestConfig()
	router := newTestRouter(t, cfg)
	token := mintToken(t, cfg, enums.RoleCustomer)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", strings.NewReader(`{"order_id":"`+uuid.NewString()+`"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusCreated, resp.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/payments/"+uuid.NewString()+"/status", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusOK, resp.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/dinecoins/balance", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusOK, resp.Code)
}
