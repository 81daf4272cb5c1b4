package payments

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	dbpkg "github.com/dinehub-mw/dinehub-backend/pkg/db"
	"github.com/dinehub-mw/dinehub-backend/pkg/db/models"
	"github.com/dinehub-mw/dinehub-backend/pkg/enums"
	"github.com/dinehub-mw/dinehub-backend/pkg/types"
)

func setupPaymentsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := []string{`
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL,
  customer_id TEXT NOT NULL,
  establishment_id TEXT NOT NULL,
  table_id TEXT,
  group_session_id TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  payment_status TEXT NOT NULL DEFAULT 'unpaid',
  total_amount NUMERIC NOT NULL,
  currency TEXT NOT NULL DEFAULT 'MWK',
  special_instructions TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS payments (
  id TEXT PRIMARY KEY,
  order_id TEXT,
  payer_customer_id TEXT,
  amount NUMERIC NOT NULL,
  currency TEXT NOT NULL DEFAULT 'MWK',
  method TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  dine_coins_used NUMERIC NOT NULL DEFAULT 0,
  idempotency_key TEXT UNIQUE,
  provider_payment_id TEXT,
  checkout_url TEXT,
  failure_reason TEXT,
  metadata TEXT,
  webhook_received_at DATETIME,
  completed_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`}

	for _, stmt := range ddl {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func insertOrderRow(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, db.Exec(
		`INSERT INTO orders (id, order_number, customer_id, establishment_id, total_amount) VALUES (?, ?, ?, ?, ?)`,
		id.String(), "AB12CD34", uuid.NewString(), uuid.NewString(), "9000",
	).Error)
	return id
}

func newPaymentRow(orderID uuid.UUID) *models.Payment {
	oid := orderID
	return &models.Payment{
		ID:       uuid.New(),
		OrderID:  &oid,
		Amount:   decimal.NewFromInt(9000),
		Currency: enums.CurrencyMWK,
		Method:   enums.PaymentMethodPayChangu,
		Status:   enums.PaymentStatusPending,
	}
}

func TestPaymentRepoLookups(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	orderID := insertOrderRow(t, db)
	payment := newPaymentRow(orderID)
	key := "key-1"
	providerID := "pc_123"
	payment.IdempotencyKey = &key
	payment.ProviderPaymentID = &providerID
	require.NoError(t, repo.Create(ctx, payment))

	byID, err := repo.GetByID(ctx, payment.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)

	byOrder, err := repo.GetByOrderID(ctx, orderID)
	require.NoError(t, err)
	require.NotNil(t, byOrder)
	assert.Equal(t, payment.ID, byOrder.ID)

	byKey, err := repo.GetByIdempotencyKey(ctx, "key-1")
	require.NoError(t, err)
	require.NotNil(t, byKey)
	assert.Equal(t, payment.ID, byKey.ID)

	empty, err := repo.GetByIdempotencyKey(ctx, "  ")
	require.NoError(t, err)
	assert.Nil(t, empty)

	missing, err := repo.GetByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPaymentRepoProviderLookupFallsBackToMetadata(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	orderID := insertOrderRow(t, db)

	// Row persisted before the provider column existed: the id lives only in
	// metadata.
	legacy := newPaymentRow(orderID)
	legacy.Metadata = types.JSONMap{"provider_payment_id": "pc_legacy"}
	require.NoError(t, repo.Create(ctx, legacy))

	current := newPaymentRow(orderID)
	providerID := "pc_current"
	current.ProviderPaymentID = &providerID
	require.NoError(t, repo.Create(ctx, current))

	found, err := repo.GetByProviderPaymentID(ctx, "pc_current")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, current.ID, found.ID)

	found, err = repo.GetByProviderPaymentID(ctx, "pc_legacy")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, legacy.ID, found.ID)

	found, err = repo.GetByProviderPaymentID(ctx, "pc_unknown")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestPaymentRepoIdempotencyKeyUnique(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	orderID := insertOrderRow(t, db)
	key := "key-1"

	first := newPaymentRow(orderID)
	first.IdempotencyKey = &key
	require.NoError(t, repo.Create(ctx, first))

	second := newPaymentRow(orderID)
	second.IdempotencyKey = &key
	err := repo.Create(ctx, second)
	require.Error(t, err)
	assert.True(t, dbpkg.IsUniqueViolation(err, ""))
}

func TestPaymentRepoUpdateOrderPaymentStatus(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	orderID := insertOrderRow(t, db)
	require.NoError(t, repo.UpdateOrderPaymentStatus(ctx, orderID, enums.OrderPaymentPaid))

	order, err := repo.GetOrder(ctx, orderID)
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, enums.OrderPaymentPaid, order.PaymentStatus)
}
