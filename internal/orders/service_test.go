package orders

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dinehub-mw/dinehub-backend/internal/ledger"
	"github.com/dinehub-mw/dinehub-backend/pkg/db/models"
	"github.com/dinehub-mw/dinehub-backend/pkg/enums"
	pkgerrors "github.com/dinehub-mw/dinehub-backend/pkg/errors"
	"github.com/dinehub-mw/dinehub-backend/pkg/logger"
)

type fakeRepository struct {
	menuItems     []models.MenuItem
	menuErr       error
	establishment bool
	created       *models.Order
	createErr     error
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) MenuItemsByID(ctx context.Context, establishmentID uuid.UUID, ids []uuid.UUID) ([]models.MenuItem, error) {
	if f.menuErr != nil {
		return nil, f.menuErr
	}
	return f.menuItems, nil
}

func (f *fakeRepository) EstablishmentExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return f.establishment, nil
}

func (f *fakeRepository) CreateOrder(ctx context.Context, order *models.Order) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = order
	return nil
}

func (f *fakeRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return f.created, nil
}

type fakeLedger struct {
	balance    decimal.Decimal
	balanceErr error
	recorded   []ledger.RecordAdjustmentInput
	recordErr  error
}

func (f *fakeLedger) RecordAdjustment(ctx context.Context, input ledger.RecordAdjustmentInput) (*models.LedgerEntry, error) {
	if f.recordErr != nil {
		return nil, f.recordErr
	}
	f.recorded = append(f.recorded, input)
	return &models.LedgerEntry{}, nil
}

func (f *fakeLedger) Balance(ctx context.Context, targetType enums.LedgerTargetType, targetID uuid.UUID) (decimal.Decimal, error) {
	return f.balance, f.balanceErr
}

func (f *fakeLedger) ListEntries(ctx context.Context, targetType enums.LedgerTargetType, targetID uuid.UUID, limit int) ([]models.LedgerEntry, error) {
	return nil, nil
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "orders-test", Output: io.Discard})
}

func menuFixture() (models.MenuItem, models.MenuItem) {
	nsima := models.MenuItem{
		ID:          uuid.New(),
		Name:        "Nsima with Chambo",
		Price:       decimal.NewFromInt(4500),
		IsAvailable: true,
	}
	tea := models.MenuItem{
		ID:          uuid.New(),
		Name:        "Malawi Gold Tea",
		Price:       decimal.NewFromFloat(1200.50),
		IsAvailable: true,
	}
	return nsima, tea
}

func newTestService(t *testing.T, repo Repository, ledgerSvc ledger.Service) Service {
	t.Helper()
	svc, err := NewService(repo, fakeTxRunner{}, ledgerSvc, testLogger())
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc
}

func validInput(items ...OrderItemInput) PlaceOrderInput {
	return PlaceOrderInput{
		CustomerID:      uuid.New(),
		EstablishmentID: uuid.New(),
		Items:           items,
		PaymentMethod:   enums.PaymentMethodCash,
		DineCoinsUsed:   decimal.Zero,
	}
}

func TestPlaceOrderHappyPath(t *testing.T) {
	nsima, tea := menuFixture()
	repo := &fakeRepository{menuItems: []models.MenuItem{nsima, tea}, establishment: true}
	svc := newTestService(t, repo, &fakeLedger{})

	input := validInput(
		OrderItemInput{MenuItemID: nsima.ID, Quantity: 2},
		OrderItemInput{MenuItemID: tea.ID, Quantity: 1},
	)
	input.DeclaredTotal = decimal.NewFromFloat(10200.50)

	result, err := svc.PlaceOrder(context.Background(), input)
	if err != nil {
		t.Fatalf("PlaceOrder error: %v", err)
	}

	if repo.created == nil {
		t.Fatal("order was not persisted")
	}
	if len(result.Order.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(result.Order.Items))
	}
	if result.Order.OrderNumber != strings.ToUpper(result.Order.ID.String()[:8]) {
		t.Fatalf("order number %q does not match id prefix", result.Order.OrderNumber)
	}
	if result.Payment.Status != enums.PaymentStatusPending {
		t.Fatalf("cash order should start pending, got %s", result.Payment.Status)
	}
	if !result.Payment.Amount.Equal(decimal.NewFromFloat(10200.50)) {
		t.Fatalf("unexpected payment amount %s", result.Payment.Amount)
	}
	if !result.Order.Items[0].LineTotal.Equal(decimal.NewFromInt(9000)) {
		t.Fatalf("line total should come from catalog prices, got %s", result.Order.Items[0].LineTotal)
	}
}

func TestPlaceOrderCollectsAllValidationErrors(t *testing.T) {
	nsima, tea := menuFixture()
	tea.IsAvailable = false
	repo := &fakeRepository{menuItems: []models.MenuItem{nsima, tea}, establishment: true}
	svc := newTestService(t, repo, &fakeLedger{})

	input := validInput(
		OrderItemInput{MenuItemID: uuid.New(), Quantity: 1}, // unknown
		OrderItemInput{MenuItemID: nsima.ID, Quantity: 0},   // bad quantity
		OrderItemInput{MenuItemID: tea.ID, Quantity: 1},     // unavailable
	)
	input.DeclaredTotal = decimal.NewFromInt(1000)

	_, err := svc.PlaceOrder(context.Background(), input)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	problems, ok := typed.Details().([]string)
	if !ok {
		t.Fatalf("expected []string details, got %T", typed.Details())
	}
	if len(problems) != 3 {
		t.Fatalf("expected all 3 problems collected, got %d: %v", len(problems), problems)
	}
	for i, fragment := range []string{"not found", "quantity must be positive", "is not available"} {
		if !strings.Contains(problems[i], fragment) {
			t.Fatalf("problem %d missing %q: %s", i, fragment, problems[i])
		}
	}
	if repo.created != nil {
		t.Fatal("invalid order must not be persisted")
	}
}

func TestPlaceOrderTotalTolerance(t *testing.T) {
	nsima, _ := menuFixture()
	repo := &fakeRepository{menuItems: []models.MenuItem{nsima}, establishment: true}
	svc := newTestService(t, repo, &fakeLedger{})

	// Catalog total is 4500. Declared within half a cent passes.
	input := validInput(OrderItemInput{MenuItemID: nsima.ID, Quantity: 1})
	input.DeclaredTotal = decimal.NewFromFloat(4500.005)
	if _, err := svc.PlaceOrder(context.Background(), input); err != nil {
		t.Fatalf("declared total within tolerance should pass, got %v", err)
	}

	// A one-unit gap fails and surfaces both totals.
	input = validInput(OrderItemInput{MenuItemID: nsima.ID, Quantity: 1})
	input.DeclaredTotal = decimal.NewFromFloat(4501)
	_, err := svc.PlaceOrder(context.Background(), input)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected map details, got %T", typed.Details())
	}
	if details["declared_total"] != "4501.00" || details["calculated_total"] != "4500.00" {
		t.Fatalf("mismatch details should carry both totals: %v", details)
	}
}

func TestPlaceOrderDineCoinsFullCover(t *testing.T) {
	nsima, _ := menuFixture()
	repo := &fakeRepository{menuItems: []models.MenuItem{nsima}, establishment: true}
	ledgerSvc := &fakeLedger{balance: decimal.NewFromInt(10000)}
	svc := newTestService(t, repo, ledgerSvc)

	input := validInput(OrderItemInput{MenuItemID: nsima.ID, Quantity: 1})
	input.DeclaredTotal = decimal.NewFromInt(4500)
	input.PaymentMethod = enums.PaymentMethodDineCoins
	input.DineCoinsUsed = decimal.NewFromInt(4500)

	result, err := svc.PlaceOrder(context.Background(), input)
	if err != nil {
		t.Fatalf("PlaceOrder error: %v", err)
	}

	if result.Payment.Status != enums.PaymentStatusCompleted {
		t.Fatalf("fully covered payment should be completed, got %s", result.Payment.Status)
	}
	if result.Order.PaymentStatus != enums.OrderPaymentPaid {
		t.Fatalf("order should be paid, got %s", result.Order.PaymentStatus)
	}
	if !result.Payment.Amount.IsZero() {
		t.Fatalf("payment amount should be zero, got %s", result.Payment.Amount)
	}

	if len(ledgerSvc.recorded) != 1 {
		t.Fatalf("expected one ledger debit, got %d", len(ledgerSvc.recorded))
	}
	debit := ledgerSvc.recorded[0]
	if !debit.Amount.Equal(decimal.NewFromInt(-4500)) {
		t.Fatalf("debit amount should be negative total, got %s", debit.Amount)
	}
	if !strings.Contains(debit.Reason, result.Order.OrderNumber) {
		t.Fatalf("debit reason should reference the order number: %s", debit.Reason)
	}
	if debit.ActorID != nil {
		t.Fatal("automated debit must have no actor")
	}
}

func TestPlaceOrderInsufficientBalance(t *testing.T) {
	nsima, _ := menuFixture()
	repo := &fakeRepository{menuItems: []models.MenuItem{nsima}, establishment: true}
	ledgerSvc := &fakeLedger{balance: decimal.NewFromInt(100)}
	svc := newTestService(t, repo, ledgerSvc)

	input := validInput(OrderItemInput{MenuItemID: nsima.ID, Quantity: 1})
	input.DeclaredTotal = decimal.NewFromInt(4500)
	input.PaymentMethod = enums.PaymentMethodDineCoins
	input.DineCoinsUsed = decimal.NewFromInt(4500)

	_, err := svc.PlaceOrder(context.Background(), input)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details := typed.Details().(map[string]string)
	if details["balance"] != "100.00" || details["requested"] != "4500.00" {
		t.Fatalf("details should carry balance and requested: %v", details)
	}
	if len(ledgerSvc.recorded) != 0 {
		t.Fatal("no debit should happen on rejection")
	}
}

func TestPlaceOrderDineCoinsExceedTotal(t *testing.T) {
	nsima, _ := menuFixture()
	repo := &fakeRepository{menuItems: []models.MenuItem{nsima}, establishment: true}
	svc := newTestService(t, repo, &fakeLedger{balance: decimal.NewFromInt(100000)})

	input := validInput(OrderItemInput{MenuItemID: nsima.ID, Quantity: 1})
	input.DeclaredTotal = decimal.NewFromInt(4500)
	input.DineCoinsUsed = decimal.NewFromInt(5000)

	_, err := svc.PlaceOrder(context.Background(), input)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPlaceOrderLedgerDebitFailureDoesNotVoidOrder(t *testing.T) {
	nsima, _ := menuFixture()
	repo := &fakeRepository{menuItems: []models.MenuItem{nsima}, establishment: true}
	ledgerSvc := &fakeLedger{balance: decimal.NewFromInt(10000), recordErr: errors.New("ledger down")}
	svc := newTestService(t, repo, ledgerSvc)

	input := validInput(OrderItemInput{MenuItemID: nsima.ID, Quantity: 1})
	input.DeclaredTotal = decimal.NewFromInt(4500)
	input.PaymentMethod = enums.PaymentMethodDineCoins
	input.DineCoinsUsed = decimal.NewFromInt(4500)

	result, err := svc.PlaceOrder(context.Background(), input)
	if err != nil {
		t.Fatalf("debit failure must not fail the order, got %v", err)
	}
	if repo.created == nil || result == nil {
		t.Fatal("order should be persisted and returned")
	}
}

func TestPlaceOrderUnknownEstablishment(t *testing.T) {
	repo := &fakeRepository{establishment: false}
	svc := newTestService(t, repo, &fakeLedger{})

	input := validInput(OrderItemInput{MenuItemID: uuid.New(), Quantity: 1})
	input.DeclaredTotal = decimal.NewFromInt(100)

	_, err := svc.PlaceOrder(context.Background(), input)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}
