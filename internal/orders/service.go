package orders

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dinehub-mw/dinehub-backend/internal/ledger"
	"github.com/dinehub-mw/dinehub-backend/pkg/db/models"
	"github.com/dinehub-mw/dinehub-backend/pkg/enums"
	pkgerrors "github.com/dinehub-mw/dinehub-backend/pkg/errors"
	"github.com/dinehub-mw/dinehub-backend/pkg/logger"
)

// totalTolerance absorbs float rounding between the client's declared total
// and the catalog-derived total.
var totalTolerance = decimal.NewFromFloat(0.01)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines the order placement workflow.
type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*PlaceOrderResult, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	ledger ledger.Service
	logg   *logger.Logger
}

// NewService builds the order workflow with the required dependencies.
func NewService(repo Repository, tx txRunner, ledgerSvc ledger.Service, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "orders repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if ledgerSvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "ledger service required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{repo: repo, tx: tx, ledger: ledgerSvc, logg: logg}, nil
}

func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*PlaceOrderResult, error) {
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	if input.EstablishmentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "establishment id is required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	if input.DineCoinsUsed.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dine_coins_used cannot be negative")
	}
	if input.DineCoinsUsed.GreaterThan(input.DeclaredTotal) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dine_coins_used cannot exceed the order total")
	}

	exists, err := s.repo.EstablishmentExists(ctx, input.EstablishmentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check establishment")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "establishment not found")
	}

	catalog, problems, err := s.loadCatalog(ctx, input)
	if err != nil {
		return nil, err
	}
	if len(problems) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order validation failed").
			WithDetails(problems)
	}

	authoritative := decimal.Zero
	for _, item := range input.Items {
		menuItem := catalog[item.MenuItemID]
		authoritative = authoritative.Add(menuItem.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	if authoritative.Sub(input.DeclaredTotal).Abs().GreaterThan(totalTolerance) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order total mismatch").
			WithDetails(map[string]string{
				"declared_total":   input.DeclaredTotal.StringFixed(2),
				"calculated_total": authoritative.StringFixed(2),
			})
	}

	if input.DineCoinsUsed.IsPositive() {
		balance, err := s.ledger.Balance(ctx, enums.LedgerTargetUser, input.CustomerID)
		if err != nil {
			return nil, err
		}
		if balance.LessThan(input.DineCoinsUsed) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "insufficient dine coins balance").
				WithDetails(map[string]string{
					"balance":   balance.StringFixed(2),
					"requested": input.DineCoinsUsed.StringFixed(2),
				})
		}
	}

	order := s.buildOrder(input, catalog)

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).CreateOrder(ctx, order)
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}

	// The debit runs outside the order transaction so a ledger failure never
	// voids a persisted order. Failures are logged for reconciliation.
	if input.DineCoinsUsed.IsPositive() {
		if _, err := s.ledger.RecordAdjustment(ctx, ledger.RecordAdjustmentInput{
			TargetType: enums.LedgerTargetUser,
			TargetID:   input.CustomerID,
			Amount:     input.DineCoinsUsed.Neg(),
			Reason:     fmt.Sprintf("order %s", order.OrderNumber),
		}); err != nil {
			s.logg.Error(s.logg.WithFields(ctx, map[string]any{
				"order_id":     order.ID.String(),
				"order_number": order.OrderNumber,
				"amount":       input.DineCoinsUsed.StringFixed(2),
			}), "dine coins debit failed after order commit", err)
		}
	}

	return buildResult(order), nil
}

// loadCatalog batch-loads the referenced menu items and collects every
// per-item validation problem instead of stopping at the first.
func (s *service) loadCatalog(ctx context.Context, input PlaceOrderInput) (map[uuid.UUID]models.MenuItem, []string, error) {
	ids := make([]uuid.UUID, 0, len(input.Items))
	for _, item := range input.Items {
		if item.MenuItemID != uuid.Nil {
			ids = append(ids, item.MenuItemID)
		}
	}

	menuItems, err := s.repo.MenuItemsByID(ctx, input.EstablishmentID, ids)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load menu items")
	}

	catalog := make(map[uuid.UUID]models.MenuItem, len(menuItems))
	for _, item := range menuItems {
		catalog[item.ID] = item
	}

	var problems []string
	for i, item := range input.Items {
		switch {
		case item.MenuItemID == uuid.Nil:
			problems = append(problems, fmt.Sprintf("Item at index %d: menu item id is required", i))
		case item.Quantity <= 0:
			problems = append(problems, fmt.Sprintf("Item at index %d: quantity must be positive", i))
		default:
			menuItem, ok := catalog[item.MenuItemID]
			if !ok {
				problems = append(problems, fmt.Sprintf("Item at index %d: menu item %s not found", i, item.MenuItemID))
			} else if !menuItem.IsAvailable {
				problems = append(problems, fmt.Sprintf("Item at index %d: %s is not available", i, menuItem.Name))
			}
		}
	}
	return catalog, problems, nil
}

func (s *service) buildOrder(input PlaceOrderInput, catalog map[uuid.UUID]models.MenuItem) *models.Order {
	orderID := uuid.New()
	orderNumber := strings.ToUpper(orderID.String()[:8])

	items := make([]models.OrderItem, 0, len(input.Items))
	for _, item := range input.Items {
		menuItem := catalog[item.MenuItemID]
		qty := decimal.NewFromInt(int64(item.Quantity))
		items = append(items, models.OrderItem{
			ID:                  uuid.New(),
			OrderID:             orderID,
			MenuItemID:          menuItem.ID,
			Name:                menuItem.Name,
			Quantity:            item.Quantity,
			UnitPrice:           menuItem.Price,
			LineTotal:           menuItem.Price.Mul(qty),
			SpecialInstructions: item.SpecialInstructions,
		})
	}

	paymentAmount := input.DeclaredTotal.Sub(input.DineCoinsUsed)
	paymentStatus := enums.PaymentStatusPending
	orderPaymentStatus := enums.OrderPaymentUnpaid
	if paymentAmount.IsZero() {
		paymentStatus = enums.PaymentStatusCompleted
		orderPaymentStatus = enums.OrderPaymentPaid
	}

	payment := &models.Payment{
		ID:              uuid.New(),
		OrderID:         &orderID,
		PayerCustomerID: &input.CustomerID,
		Amount:          paymentAmount,
		Currency:        enums.CurrencyMWK,
		Method:          input.PaymentMethod,
		Status:          paymentStatus,
		DineCoinsUsed:   input.DineCoinsUsed,
	}

	return &models.Order{
		ID:                  orderID,
		OrderNumber:         orderNumber,
		CustomerID:          input.CustomerID,
		EstablishmentID:     input.EstablishmentID,
		TableID:             input.TableID,
		GroupSessionID:      input.GroupSessionID,
		Status:              enums.OrderStatusPending,
		PaymentStatus:       orderPaymentStatus,
		TotalAmount:         input.DeclaredTotal,
		Currency:            enums.CurrencyMWK,
		SpecialInstructions: input.SpecialInstructions,
		Items:               items,
		Payment:             payment,
	}
}

func buildResult(order *models.Order) *PlaceOrderResult {
	items := make([]OrderItemSummary, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemSummary{
			MenuItemID:          item.MenuItemID,
			Name:                item.Name,
			Quantity:            item.Quantity,
			UnitPrice:           item.UnitPrice,
			LineTotal:           item.LineTotal,
			SpecialInstructions: item.SpecialInstructions,
		})
	}

	return &PlaceOrderResult{
		Order: OrderSummary{
			ID:                  order.ID,
			OrderNumber:         order.OrderNumber,
			Status:              order.Status,
			PaymentStatus:       order.PaymentStatus,
			TotalAmount:         order.TotalAmount,
			Currency:            order.Currency,
			Items:               items,
			GroupSessionID:      order.GroupSessionID,
			SpecialInstructions: order.SpecialInstructions,
			CreatedAt:           order.CreatedAt,
		},
		Payment: PaymentSummary{
			ID:            order.Payment.ID,
			Status:        order.Payment.Status,
			Amount:        order.Payment.Amount,
			Method:        order.Payment.Method,
			DineCoinsUsed: order.Payment.DineCoinsUsed,
		},
	}
}
