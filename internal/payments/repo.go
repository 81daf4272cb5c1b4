package payments

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dinehub-mw/dinehub-backend/pkg/db/models"
	"github.com/dinehub-mw/dinehub-backend/pkg/enums"
)

// Repository manages persistence for payments and their order projections.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Payment, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*models.Payment, error)
	// GetByProviderPaymentID matches the indexed column first and falls back to
	// the provider id recorded inside metadata.
	GetByProviderPaymentID(ctx context.Context, providerID string) (*models.Payment, error)
	Update(ctx context.Context, payment *models.Payment) error
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	UpdateOrderPaymentStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderPaymentStatus) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetEstablishment(ctx context.Context, id uuid.UUID) (*models.Establishment, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a payments repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *repository) getOne(ctx context.Context, query string, args ...any) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).
		Where(query, args...).
		Take(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	return r.getOne(ctx, "id = ?", id)
}

func (r *repository) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Payment, error) {
	return r.getOne(ctx, "order_id = ?", orderID)
}

func (r *repository) GetByIdempotencyKey(ctx context.Context, key string) (*models.Payment, error) {
	if strings.TrimSpace(key) == "" {
		return nil, nil
	}
	return r.getOne(ctx, "idempotency_key = ?", key)
}

func (r *repository) GetByProviderPaymentID(ctx context.Context, providerID string) (*models.Payment, error) {
	providerID = strings.TrimSpace(providerID)
	if providerID == "" {
		return nil, nil
	}

	payment, err := r.getOne(ctx, "provider_payment_id = ?", providerID)
	if err != nil || payment != nil {
		return payment, err
	}

	// Fallback for rows created before the column was populated.
	if r.db.Dialector.Name() == "sqlite" {
		return r.getOne(ctx, "json_extract(metadata, '$.provider_payment_id') = ?", providerID)
	}
	return r.getOne(ctx, "metadata->>'provider_payment_id' = ?", providerID)
}

func (r *repository) Update(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}

func (r *repository) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Take(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) UpdateOrderPaymentStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderPaymentStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("payment_status", status).Error
}

func (r *repository) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Take(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *repository) GetEstablishment(ctx context.Context, id uuid.UUID) (*models.Establishment, error) {
	var est models.Establishment
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Take(&est).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &est, nil
}
