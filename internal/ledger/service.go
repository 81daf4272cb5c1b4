package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dinehub-mw/dinehub-backend/pkg/db/models"
	"github.com/dinehub-mw/dinehub-backend/pkg/enums"
	pkgerrors "github.com/dinehub-mw/dinehub-backend/pkg/errors"
	"github.com/dinehub-mw/dinehub-backend/pkg/logger"
	"github.com/dinehub-mw/dinehub-backend/pkg/metrics"
	"github.com/dinehub-mw/dinehub-backend/pkg/types"
)

const (
	defaultMaxRetries = 3
	defaultListLimit  = 50
	maxListLimit      = 200
)

// TxRunner executes a function inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines the balance ledger operations.
type Service interface {
	// RecordAdjustment atomically appends a signed ledger entry and moves the
	// target's cached balance. Entry type is derived from the sign of the
	// amount: >= 0 is a credit, < 0 a debit.
	RecordAdjustment(ctx context.Context, input RecordAdjustmentInput) (*models.LedgerEntry, error)
	// Balance returns the ledger-derived balance (sum of entries).
	Balance(ctx context.Context, targetType enums.LedgerTargetType, targetID uuid.UUID) (decimal.Decimal, error)
	// ListEntries returns the newest entries for a target, newest first.
	ListEntries(ctx context.Context, targetType enums.LedgerTargetType, targetID uuid.UUID, limit int) ([]models.LedgerEntry, error)
}

// RecordAdjustmentInput captures the immutable data a ledger entry requires.
type RecordAdjustmentInput struct {
	TargetType enums.LedgerTargetType
	TargetID   uuid.UUID
	Amount     decimal.Decimal
	Reason     string
	ActorID    *uuid.UUID
	Metadata   types.JSONMap
}

type service struct {
	repo       Repository
	tx         TxRunner
	logg       *logger.Logger
	metrics    *metrics.PaymentMetrics
	maxRetries int
}

// NewService wires the ledger engine with its dependencies.
func NewService(repo Repository, tx TxRunner, logg *logger.Logger, pm *metrics.PaymentMetrics, maxRetries int) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "ledger repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "ledger tx runner required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "ledger logger required")
	}
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	return &service{
		repo:       repo,
		tx:         tx,
		logg:       logg,
		metrics:    pm,
		maxRetries: maxRetries,
	}, nil
}

func (s *service) RecordAdjustment(ctx context.Context, input RecordAdjustmentInput) (*models.LedgerEntry, error) {
	if !input.TargetType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid ledger target type")
	}
	if input.TargetID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "target id is required")
	}

	entryType := enums.LedgerEntryCredit
	if input.Amount.IsNegative() {
		entryType = enums.LedgerEntryDebit
	}

	var created *models.LedgerEntry
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		conflicted := false

		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)

			prev, found, err := repo.CachedBalance(ctx, input.TargetType, input.TargetID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read cached balance")
			}
			if !found {
				return pkgerrors.New(pkgerrors.CodeNotFound, "ledger target not found")
			}

			entry := &models.LedgerEntry{
				ID:         uuid.New(),
				TargetType: input.TargetType,
				TargetID:   input.TargetID,
				Amount:     input.Amount,
				Type:       entryType,
				Reason:     input.Reason,
				ActorID:    input.ActorID,
				Metadata:   input.Metadata,
			}
			if err := repo.CreateEntry(ctx, entry); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append ledger entry")
			}

			next := prev.Add(input.Amount)
			affected, err := repo.UpdateCachedBalance(ctx, input.TargetType, input.TargetID, prev, next)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cached balance")
			}
			if affected == 0 {
				conflicted = true
				return pkgerrors.New(pkgerrors.CodeConflict, "balance moved concurrently")
			}

			created = entry
			return nil
		})

		if err == nil {
			return created, nil
		}
		if !conflicted {
			return nil, err
		}

		s.metrics.IncLedgerRetry()
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"target_type": input.TargetType,
			"target_id":   input.TargetID.String(),
			"attempt":     attempt + 1,
		}), "ledger balance conflict, retrying")
	}

	return nil, pkgerrors.New(pkgerrors.CodeDependency, "ledger adjustment retries exhausted")
}

func (s *service) Balance(ctx context.Context, targetType enums.LedgerTargetType, targetID uuid.UUID) (decimal.Decimal, error) {
	if !targetType.IsValid() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "invalid ledger target type")
	}
	if targetID == uuid.Nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "target id is required")
	}

	_, found, err := s.repo.CachedBalance(ctx, targetType, targetID)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read cached balance")
	}
	if !found {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeNotFound, "ledger target not found")
	}

	sum, err := s.repo.SumEntries(ctx, targetType, targetID)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum ledger entries")
	}
	return sum, nil
}

func (s *service) ListEntries(ctx context.Context, targetType enums.LedgerTargetType, targetID uuid.UUID, limit int) ([]models.LedgerEntry, error) {
	if !targetType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid ledger target type")
	}
	if targetID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "target id is required")
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	entries, err := s.repo.ListEntries(ctx, targetType, targetID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ledger entries")
	}
	return entries, nil
}
