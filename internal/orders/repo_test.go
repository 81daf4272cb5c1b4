package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dinehub-mw/dinehub-backend/pkg/db/models"
	"github.com/dinehub-mw/dinehub-backend/pkg/enums"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := []string{`
CREATE TABLE IF NOT EXISTS establishments (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  slug TEXT NOT NULL,
  address TEXT,
  phone TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  dine_coins_balance NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS menu_items (
  id TEXT PRIMARY KEY,
  establishment_id TEXT NOT NULL,
  name TEXT NOT NULL,
  description TEXT,
  price NUMERIC NOT NULL,
  category TEXT,
  is_available INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`, `
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
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  menu_item_id TEXT NOT NULL,
  name TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price NUMERIC NOT NULL,
  line_total NUMERIC NOT NULL,
  special_instructions TEXT,
  created_at DATETIME
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

func seedEstablishment(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, db.Exec(
		`INSERT INTO establishments (id, name, slug) VALUES (?, ?, ?)`,
		id.String(), "Lakeside Grill", "lakeside-grill-"+id.String()[:8],
	).Error)
	return id
}

func seedMenuItem(t *testing.T, db *gorm.DB, establishmentID uuid.UUID, name string, price decimal.Decimal, available bool) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, db.Exec(
		`INSERT INTO menu_items (id, establishment_id, name, price, is_available) VALUES (?, ?, ?, ?, ?)`,
		id.String(), establishmentID.String(), name, price, available,
	).Error)
	return id
}

func TestRepoMenuItemsByIDScopedToEstablishment(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	estA := seedEstablishment(t, db)
	estB := seedEstablishment(t, db)
	itemA := seedMenuItem(t, db, estA, "Chambo", decimal.NewFromInt(4500), true)
	itemB := seedMenuItem(t, db, estB, "Kondowole", decimal.NewFromInt(3000), true)

	items, err := repo.MenuItemsByID(ctx, estA, []uuid.UUID{itemA, itemB})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, itemA, items[0].ID)

	items, err = repo.MenuItemsByID(ctx, estA, nil)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestRepoEstablishmentExists(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	estID := seedEstablishment(t, db)

	exists, err := repo.EstablishmentExists(ctx, estID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.EstablishmentExists(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRepoCreateOrderPersistsGraph(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	estID := seedEstablishment(t, db)
	customerID := uuid.New()
	orderID := uuid.New()
	menuItemID := seedMenuItem(t, db, estID, "Chambo", decimal.NewFromInt(4500), true)

	order := &models.Order{
		ID:              orderID,
		OrderNumber:     "AB12CD34",
		CustomerID:      customerID,
		EstablishmentID: estID,
		Status:          enums.OrderStatusPending,
		PaymentStatus:   enums.OrderPaymentUnpaid,
		TotalAmount:     decimal.NewFromInt(9000),
		Currency:        enums.CurrencyMWK,
		Items: []models.OrderItem{{
			ID:         uuid.New(),
			OrderID:    orderID,
			MenuItemID: menuItemID,
			Name:       "Chambo",
			Quantity:   2,
			UnitPrice:  decimal.NewFromInt(4500),
			LineTotal:  decimal.NewFromInt(9000),
		}},
		Payment: &models.Payment{
			ID:              uuid.New(),
			OrderID:         &orderID,
			PayerCustomerID: &customerID,
			Amount:          decimal.NewFromInt(9000),
			Currency:        enums.CurrencyMWK,
			Method:          enums.PaymentMethodCash,
			Status:          enums.PaymentStatusPending,
			DineCoinsUsed:   decimal.Zero,
		},
	}

	require.NoError(t, repo.CreateOrder(ctx, order))

	loaded, err := repo.GetOrderByID(ctx, orderID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "AB12CD34", loaded.OrderNumber)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, 2, loaded.Items[0].Quantity)
	require.NotNil(t, loaded.Payment)
	assert.Equal(t, enums.PaymentStatusPending, loaded.Payment.Status)

	missing, err := repo.GetOrderByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}
