package ledger

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

func setupLedgerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	users := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL,
  password_hash TEXT NOT NULL DEFAULT '',
  full_name TEXT NOT NULL DEFAULT '',
  phone TEXT,
  role TEXT NOT NULL DEFAULT 'customer',
  is_active INTEGER NOT NULL DEFAULT 1,
  dine_coins_balance NUMERIC NOT NULL DEFAULT 0,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	establishments := `
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
);`
	ledgerEntries := `
CREATE TABLE IF NOT EXISTS ledger_entries (
  id TEXT PRIMARY KEY,
  target_type TEXT NOT NULL,
  target_id TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  type TEXT NOT NULL,
  reason TEXT NOT NULL DEFAULT '',
  actor_id TEXT,
  metadata TEXT,
  created_at DATETIME
);`

	for _, ddl := range []string{users, establishments, ledgerEntries} {
		require.NoError(t, db.Exec(ddl).Error)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, balance decimal.Decimal) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, db.Exec(
		`INSERT INTO users (id, email, dine_coins_balance) VALUES (?, ?, ?)`,
		id.String(), id.String()+"@test.local", balance,
	).Error)
	return id
}

func TestRepoCachedBalance(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := seedUser(t, db, decimal.NewFromInt(150))

	balance, found, err := repo.CachedBalance(ctx, enums.LedgerTargetUser, userID)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, balance.Equal(decimal.NewFromInt(150)))

	_, found, err = repo.CachedBalance(ctx, enums.LedgerTargetUser, uuid.New())
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRepoUpdateCachedBalanceGuard(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := seedUser(t, db, decimal.NewFromInt(100))

	affected, err := repo.UpdateCachedBalance(ctx, enums.LedgerTargetUser, userID,
		decimal.NewFromInt(100), decimal.NewFromInt(70))
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	// Guard value is stale now, a second identical update must not apply.
	affected, err = repo.UpdateCachedBalance(ctx, enums.LedgerTargetUser, userID,
		decimal.NewFromInt(100), decimal.NewFromInt(40))
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	balance, found, err := repo.CachedBalance(ctx, enums.LedgerTargetUser, userID)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, balance.Equal(decimal.NewFromInt(70)))
}

func TestRepoSumAndListEntries(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := seedUser(t, db, decimal.Zero)

	amounts := []int64{100, -40, 25}
	for _, amount := range amounts {
		entryType := enums.LedgerEntryCredit
		if amount < 0 {
			entryType = enums.LedgerEntryDebit
		}
		require.NoError(t, repo.CreateEntry(ctx, &models.LedgerEntry{
			ID:         uuid.New(),
			TargetType: enums.LedgerTargetUser,
			TargetID:   userID,
			Amount:     decimal.NewFromInt(amount),
			Type:       entryType,
			Reason:     "test",
		}))
	}

	sum, err := repo.SumEntries(ctx, enums.LedgerTargetUser, userID)
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.NewFromInt(85)), "got %s", sum)

	entries, err := repo.ListEntries(ctx, enums.LedgerTargetUser, userID, 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	// A different target sees nothing.
	sum, err = repo.SumEntries(ctx, enums.LedgerTargetUser, uuid.New())
	require.NoError(t, err)
	assert.True(t, sum.IsZero())
}

func TestServiceRecordAdjustmentEndToEnd(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(repo, txRunner{db: db}, testLogger(), nil, 3)
	require.NoError(t, err)
	ctx := context.Background()

	userID := seedUser(t, db, decimal.NewFromInt(200))

	entry, err := svc.RecordAdjustment(ctx, RecordAdjustmentInput{
		TargetType: enums.LedgerTargetUser,
		TargetID:   userID,
		Amount:     decimal.NewFromInt(-75),
		Reason:     "order ABC12345",
	})
	require.NoError(t, err)
	assert.Equal(t, enums.LedgerEntryDebit, entry.Type)

	balance, found, err := repo.CachedBalance(ctx, enums.LedgerTargetUser, userID)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, balance.Equal(decimal.NewFromInt(125)), "got %s", balance)

	sum, err := repo.SumEntries(ctx, enums.LedgerTargetUser, userID)
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.NewFromInt(-75)))
}

// txRunner adapts a raw gorm handle to the TxRunner interface for tests.
type txRunner struct {
	db *gorm.DB
}

func (r txRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}
