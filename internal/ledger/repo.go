package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dinehub-mw/dinehub-backend/pkg/db/models"
	"github.com/dinehub-mw/dinehub-backend/pkg/enums"
)

// Repository manages persistence for ledger entries and cached balances.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateEntry(ctx context.Context, entry *models.LedgerEntry) error
	// CachedBalance reads the target's projected balance. found is false when
	// the target row does not exist.
	CachedBalance(ctx context.Context, targetType enums.LedgerTargetType, targetID uuid.UUID) (balance decimal.Decimal, found bool, err error)
	// UpdateCachedBalance applies the projection guarded by the previously read
	// value. Zero rows affected means a concurrent writer moved the balance.
	UpdateCachedBalance(ctx context.Context, targetType enums.LedgerTargetType, targetID uuid.UUID, prev, next decimal.Decimal) (int64, error)
	SumEntries(ctx context.Context, targetType enums.LedgerTargetType, targetID uuid.UUID) (decimal.Decimal, error)
	ListEntries(ctx context.Context, targetType enums.LedgerTargetType, targetID uuid.UUID, limit int) ([]models.LedgerEntry, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateEntry(ctx context.Context, entry *models.LedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func balanceTable(targetType enums.LedgerTargetType) (string, error) {
	switch targetType {
	case enums.LedgerTargetUser:
		return "users", nil
	case enums.LedgerTargetEstablishment:
		return "establishments", nil
	default:
		return "", fmt.Errorf("unknown ledger target type %q", targetType)
	}
}

func (r *repository) CachedBalance(ctx context.Context, targetType enums.LedgerTargetType, targetID uuid.UUID) (decimal.Decimal, bool, error) {
	table, err := balanceTable(targetType)
	if err != nil {
		return decimal.Zero, false, err
	}

	var balance decimal.Decimal
	row := r.db.WithContext(ctx).
		Table(table).
		Select("dine_coins_balance").
		Where("id = ?", targetID).
		Take(&balance)
	if row.Error != nil {
		if errors.Is(row.Error, gorm.ErrRecordNotFound) {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, row.Error
	}
	return balance, true, nil
}

func (r *repository) UpdateCachedBalance(ctx context.Context, targetType enums.LedgerTargetType, targetID uuid.UUID, prev, next decimal.Decimal) (int64, error) {
	table, err := balanceTable(targetType)
	if err != nil {
		return 0, err
	}

	result := r.db.WithContext(ctx).
		Table(table).
		Where("id = ? AND dine_coins_balance = ?", targetID, prev).
		Update("dine_coins_balance", next)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repository) SumEntries(ctx context.Context, targetType enums.LedgerTargetType, targetID uuid.UUID) (decimal.Decimal, error) {
	var raw *string
	if err := r.db.WithContext(ctx).
		Model(&models.LedgerEntry{}).
		Select("SUM(amount)").
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Scan(&raw).Error; err != nil {
		return decimal.Zero, err
	}
	if raw == nil {
		return decimal.Zero, nil
	}
	sum, err := decimal.NewFromString(*raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing ledger sum %q: %w", *raw, err)
	}
	return sum, nil
}

func (r *repository) ListEntries(ctx context.Context, targetType enums.LedgerTargetType, targetID uuid.UUID, limit int) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	if err := r.db.WithContext(ctx).
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
