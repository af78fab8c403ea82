package checkout

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/teomanager/teomanager-backend/internal/accounts"
	"github.com/teomanager/teomanager-backend/internal/cart"
	"github.com/teomanager/teomanager-backend/internal/catalog"
	"github.com/teomanager/teomanager-backend/internal/orders"
	"github.com/teomanager/teomanager-backend/pkg/db/models"
	"github.com/teomanager/teomanager-backend/pkg/enums"
	pkgerrors "github.com/teomanager/teomanager-backend/pkg/errors"
	"github.com/teomanager/teomanager-backend/pkg/outbox"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:checkout_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{}, &models.Profile{},
		&models.Product{}, &models.ProductImage{},
		&models.ServiceOffering{}, &models.ServiceImage{},
		&models.Order{}, &models.OrderLine{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type stubSnapshotter struct {
	cart *cart.Cart
	err  error
}

func (s *stubSnapshotter) Snapshot(ctx context.Context, accountID uuid.UUID) (*cart.Cart, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.cart, nil
}

type stubMailer struct {
	messages []outbox.Message
}

func (s *stubMailer) Enqueue(ctx context.Context, tx *gorm.DB, msg outbox.Message) error {
	s.messages = append(s.messages, msg)
	return nil
}

type stubInvalidator struct {
	admin     int
	companies []uuid.UUID
}

func (s *stubInvalidator) InvalidateAdmin(ctx context.Context) error {
	s.admin++
	return nil
}

func (s *stubInvalidator) InvalidateCompany(ctx context.Context, companyID uuid.UUID) error {
	s.companies = append(s.companies, companyID)
	return nil
}

type checkoutTestSetup struct {
	db          *gorm.DB
	service     Service
	snapshotter *stubSnapshotter
	mailer      *stubMailer
	invalidator *stubInvalidator
	buyer       *models.User
}

func newCheckoutTestSetup(t *testing.T) *checkoutTestSetup {
	t.Helper()
	db := newTestDB(t)
	snapshotter := &stubSnapshotter{cart: &cart.Cart{}}
	mailer := &stubMailer{}
	invalidator := &stubInvalidator{}

	buyer := &models.User{
		Email:        "buyer@example.com",
		PasswordHash: "x",
		FirstName:    "Buy",
		LastName:     "Er",
		AccountType:  enums.AccountTypeConsumer,
		IsActive:     true,
	}
	if err := db.Create(buyer).Error; err != nil {
		t.Fatalf("seed buyer: %v", err)
	}

	svc, err := NewService(ServiceParams{
		DB:         gormTxRunner{db: db},
		Carts:      snapshotter,
		Orders:     orders.NewRepository(db),
		Listings:   catalog.NewRepository(db),
		Accounts:   accounts.NewRepository(db),
		Mail:       mailer,
		Dashboards: invalidator,
	})
	if err != nil {
		t.Fatalf("new checkout service: %v", err)
	}
	return &checkoutTestSetup{
		db:          db,
		service:     svc,
		snapshotter: snapshotter,
		mailer:      mailer,
		invalidator: invalidator,
		buyer:       buyer,
	}
}

func (s *checkoutTestSetup) seedProduct(t *testing.T, companyID uuid.UUID, price string, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		CompanyID: companyID,
		Name:      "Product " + uuid.NewString()[:8],
		Category:  "tools",
		Price:     decimal.RequireFromString(price),
		Stock:     stock,
		IsActive:  true,
	}
	if err := s.db.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func (s *checkoutTestSetup) seedService(t *testing.T, companyID uuid.UUID, price string) *models.ServiceOffering {
	t.Helper()
	svc := &models.ServiceOffering{
		CompanyID: companyID,
		Name:      "Service " + uuid.NewString()[:8],
		Category:  "repairs",
		Price:     decimal.RequireFromString(price),
		IsActive:  true,
	}
	if err := s.db.Create(svc).Error; err != nil {
		t.Fatalf("seed service: %v", err)
	}
	return svc
}

func productItem(p *models.Product, qty int) cart.Item {
	return cart.Item{
		ProductID: &p.ID,
		CompanyID: p.CompanyID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Quantity:  qty,
	}
}

func serviceItem(svc *models.ServiceOffering, qty int) cart.Item {
	return cart.Item{
		ServiceID: &svc.ID,
		CompanyID: svc.CompanyID,
		Name:      svc.Name,
		UnitPrice: svc.Price,
		Quantity:  qty,
	}
}

func TestCheckout_SplitsByVendor(t *testing.T) {
	setup := newCheckoutTestSetup(t)
	ctx := context.Background()
	vendorA := uuid.New()
	vendorB := uuid.New()
	productA := setup.seedProduct(t, vendorA, "10.00", 5)
	productB := setup.seedProduct(t, vendorB, "7.50", 3)
	serviceA := setup.seedService(t, vendorA, "40.00")

	setup.snapshotter.cart = &cart.Cart{Items: []cart.Item{
		productItem(productA, 2),
		productItem(productB, 1),
		serviceItem(serviceA, 1),
	}}

	note := "leave at the desk"
	result, err := setup.service.CreateOrdersFromCart(ctx, setup.buyer.ID, CheckoutInput{
		NotesByCompany: map[uuid.UUID]string{vendorA: note},
	})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if len(result.Orders) != 2 {
		t.Fatalf("expected one order per vendor, got %d", len(result.Orders))
	}

	first := result.Orders[0]
	if first.CompanyID != vendorA {
		t.Fatalf("expected first-seen vendor first, got %s", first.CompanyID)
	}
	if len(first.Lines) != 2 {
		t.Fatalf("expected product and service lines, got %d", len(first.Lines))
	}
	if !first.Total.Equal(decimal.RequireFromString("60.00")) {
		t.Fatalf("expected vendor A total 60.00, got %s", first.Total)
	}
	if first.Note == nil || *first.Note != note {
		t.Fatalf("expected note on vendor A order, got %v", first.Note)
	}

	second := result.Orders[1]
	if second.CompanyID != vendorB || !second.Total.Equal(decimal.RequireFromString("7.50")) {
		t.Fatalf("unexpected vendor B order: %+v", second)
	}

	var reloaded models.Product
	if err := setup.db.First(&reloaded, "id = ?", productA.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if reloaded.Stock != 3 {
		t.Fatalf("expected stock decremented to 3, got %d", reloaded.Stock)
	}

	if len(setup.mailer.messages) != 2 {
		t.Fatalf("expected one confirmation per order, got %d", len(setup.mailer.messages))
	}
	for _, msg := range setup.mailer.messages {
		if msg.Kind != enums.EmailKindOrderConfirmation || msg.Recipient != setup.buyer.Email {
			t.Fatalf("unexpected message %+v", msg)
		}
	}
	if setup.invalidator.admin != 1 || len(setup.invalidator.companies) != 2 {
		t.Fatalf("expected admin plus per-vendor invalidation, got %d/%v",
			setup.invalidator.admin, setup.invalidator.companies)
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	setup := newCheckoutTestSetup(t)

	_, err := setup.service.CreateOrdersFromCart(context.Background(), setup.buyer.ID, CheckoutInput{})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCheckout_PrunesUnresolvableItems(t *testing.T) {
	setup := newCheckoutTestSetup(t)
	ctx := context.Background()
	vendor := uuid.New()
	inactive := setup.seedProduct(t, vendor, "10.00", 5)
	setup.db.Model(inactive).UpdateColumn("is_active", false)
	missingID := uuid.New()

	setup.snapshotter.cart = &cart.Cart{Items: []cart.Item{
		{ProductID: &missingID, Quantity: 1, UnitPrice: decimal.RequireFromString("1.00")},
		productItem(inactive, 1),
	}}
	_, err := setup.service.CreateOrdersFromCart(ctx, setup.buyer.ID, CheckoutInput{})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("all-pruned cart should fail validation, got %v", err)
	}

	valid := setup.seedProduct(t, vendor, "5.00", 2)
	setup.snapshotter.cart = &cart.Cart{Items: []cart.Item{
		{ProductID: &missingID, Quantity: 1, UnitPrice: decimal.RequireFromString("1.00")},
		productItem(valid, 1),
	}}
	result, err := setup.service.CreateOrdersFromCart(ctx, setup.buyer.ID, CheckoutInput{})
	if err != nil {
		t.Fatalf("checkout with pruned entry: %v", err)
	}
	if len(result.Orders) != 1 || result.Skipped != 1 {
		t.Fatalf("expected one order and one pruned entry, got %d/%d", len(result.Orders), result.Skipped)
	}
}

func TestCheckout_InsufficientStockRollsBackEverything(t *testing.T) {
	setup := newCheckoutTestSetup(t)
	ctx := context.Background()
	vendorA := uuid.New()
	vendorB := uuid.New()
	healthy := setup.seedProduct(t, vendorA, "10.00", 5)
	scarce := setup.seedProduct(t, vendorB, "10.00", 1)

	// Quantity 2 against stock 1 models a cart that went stale after a
	// concurrent checkout claimed the last unit.
	setup.snapshotter.cart = &cart.Cart{Items: []cart.Item{
		productItem(healthy, 1),
		productItem(scarce, 2),
	}}

	_, err := setup.service.CreateOrdersFromCart(ctx, setup.buyer.ID, CheckoutInput{})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	var reloaded models.Product
	if err := setup.db.First(&reloaded, "id = ?", healthy.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if reloaded.Stock != 5 {
		t.Fatalf("expected healthy vendor stock restored, got %d", reloaded.Stock)
	}
	var orderCount int64
	if err := setup.db.Model(&models.Order{}).Count(&orderCount).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if orderCount != 0 {
		t.Fatalf("expected no orders after rollback, got %d", orderCount)
	}
	if len(setup.mailer.messages) != 0 {
		t.Fatalf("rollback must discard emails, got %d", len(setup.mailer.messages))
	}
}

func TestDecrementStock_ConcurrentClaimsNeverOversell(t *testing.T) {
	dsn := "file:checkout_stock_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// sqlite serializes writers on one connection; the contention still
	// happens at the application level, which is where the conditioned
	// update has to hold.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("raw db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.Product{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	product := &models.Product{
		CompanyID: uuid.New(),
		Name:      "Last Unit",
		Category:  "tools",
		Price:     decimal.RequireFromString("10.00"),
		Stock:     1,
		IsActive:  true,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}

	repo := catalog.NewRepository(db)
	const claimants = 8
	var wg sync.WaitGroup
	var successes int64
	for i := 0; i < claimants; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			affected, err := repo.DecrementStock(context.Background(), product.ID, 1)
			if err != nil {
				t.Errorf("decrement stock: %v", err)
				return
			}
			if affected == 1 {
				atomic.AddInt64(&successes, 1)
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("expected exactly one claim to win, got %d", successes)
	}
	var reloaded models.Product
	if err := db.First(&reloaded, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if reloaded.Stock != 0 {
		t.Fatalf("expected stock drained to 0, got %d", reloaded.Stock)
	}
}
