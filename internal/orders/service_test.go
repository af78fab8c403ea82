package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/teomanager/teomanager-backend/internal/accounts"
	"github.com/teomanager/teomanager-backend/pkg/db/models"
	"github.com/teomanager/teomanager-backend/pkg/enums"
	pkgerrors "github.com/teomanager/teomanager-backend/pkg/errors"
	"github.com/teomanager/teomanager-backend/pkg/outbox"
	"github.com/teomanager/teomanager-backend/pkg/pagination"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:orders_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Profile{}, &models.Order{}, &models.OrderLine{}); err != nil {
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

type stubMailer struct {
	messages []outbox.Message
}

func (s *stubMailer) Enqueue(ctx context.Context, tx *gorm.DB, msg outbox.Message) error {
	s.messages = append(s.messages, msg)
	return nil
}

type stubInvalidator struct {
	companies []uuid.UUID
}

func (s *stubInvalidator) InvalidateCompany(ctx context.Context, companyID uuid.UUID) error {
	s.companies = append(s.companies, companyID)
	return nil
}

type ordersTestSetup struct {
	db          *gorm.DB
	service     Service
	repo        *Repository
	mailer      *stubMailer
	invalidator *stubInvalidator
}

func newOrdersTestSetup(t *testing.T) *ordersTestSetup {
	t.Helper()
	db := newTestDB(t)
	repo := NewRepository(db)
	mailer := &stubMailer{}
	invalidator := &stubInvalidator{}
	svc, err := NewService(ServiceParams{
		DB:         gormTxRunner{db: db},
		Repo:       repo,
		Accounts:   accounts.NewRepository(db),
		Mail:       mailer,
		Dashboards: invalidator,
	})
	if err != nil {
		t.Fatalf("new order service: %v", err)
	}
	return &ordersTestSetup{db: db, service: svc, repo: repo, mailer: mailer, invalidator: invalidator}
}

func (s *ordersTestSetup) seedUser(t *testing.T, accountType enums.AccountType) *models.User {
	t.Helper()
	user := &models.User{
		Email:        uuid.NewString()[:8] + "@example.com",
		PasswordHash: "x",
		FirstName:    "Test",
		LastName:     "User",
		AccountType:  accountType,
		IsActive:     true,
	}
	if err := s.db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func (s *ordersTestSetup) seedOrder(t *testing.T, buyerID, companyID uuid.UUID, status enums.OrderStatus, total string) *models.Order {
	t.Helper()
	price := decimal.RequireFromString(total)
	order := &models.Order{
		BuyerID:   buyerID,
		CompanyID: companyID,
		Status:    status,
		Total:     price,
		Lines: []models.OrderLine{{
			Name:      "Line",
			UnitPrice: price,
			Quantity:  1,
			Subtotal:  price,
		}},
	}
	if err := s.db.Create(order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return order
}

func TestUpdateStatus_HappyPath(t *testing.T) {
	setup := newOrdersTestSetup(t)
	ctx := context.Background()
	buyer := setup.seedUser(t, enums.AccountTypeConsumer)
	vendor := setup.seedUser(t, enums.AccountTypeCompany)
	order := setup.seedOrder(t, buyer.ID, vendor.ID, enums.OrderStatusPending, "40.00")

	dto, err := setup.service.UpdateStatus(ctx, UpdateStatusInput{
		OrderID:    order.ID,
		ActorID:    vendor.ID,
		NextStatus: enums.OrderStatusInProgress,
	})
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if dto.Status != enums.OrderStatusInProgress.String() {
		t.Fatalf("expected in_progress, got %s", dto.Status)
	}
	if len(setup.mailer.messages) != 1 || setup.mailer.messages[0].Kind != enums.EmailKindOrderStatusChanged {
		t.Fatalf("expected one status email, got %+v", setup.mailer.messages)
	}
	if setup.mailer.messages[0].Recipient != buyer.Email {
		t.Fatalf("expected email to buyer, got %s", setup.mailer.messages[0].Recipient)
	}
	if len(setup.invalidator.companies) != 1 || setup.invalidator.companies[0] != vendor.ID {
		t.Fatalf("expected company dashboard invalidation, got %v", setup.invalidator.companies)
	}

	dto, err = setup.service.UpdateStatus(ctx, UpdateStatusInput{
		OrderID:    order.ID,
		ActorID:    vendor.ID,
		NextStatus: enums.OrderStatusCompleted,
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if dto.CompletedAt == nil {
		t.Fatal("expected completed_at to be set")
	}
}

func TestUpdateStatus_SameStatusIsNoOp(t *testing.T) {
	setup := newOrdersTestSetup(t)
	ctx := context.Background()
	buyer := setup.seedUser(t, enums.AccountTypeConsumer)
	vendor := setup.seedUser(t, enums.AccountTypeCompany)
	order := setup.seedOrder(t, buyer.ID, vendor.ID, enums.OrderStatusPending, "10.00")

	dto, err := setup.service.UpdateStatus(ctx, UpdateStatusInput{
		OrderID:    order.ID,
		ActorID:    vendor.ID,
		NextStatus: enums.OrderStatusPending,
	})
	if err != nil {
		t.Fatalf("noop update: %v", err)
	}
	if dto.Status != enums.OrderStatusPending.String() {
		t.Fatalf("expected pending, got %s", dto.Status)
	}
	if len(setup.mailer.messages) != 0 {
		t.Fatalf("noop should not email, got %d messages", len(setup.mailer.messages))
	}
}

func TestUpdateStatus_Rejections(t *testing.T) {
	setup := newOrdersTestSetup(t)
	ctx := context.Background()
	buyer := setup.seedUser(t, enums.AccountTypeConsumer)
	vendor := setup.seedUser(t, enums.AccountTypeCompany)
	stranger := setup.seedUser(t, enums.AccountTypeCompany)
	pending := setup.seedOrder(t, buyer.ID, vendor.ID, enums.OrderStatusPending, "10.00")
	done := setup.seedOrder(t, buyer.ID, vendor.ID, enums.OrderStatusCompleted, "10.00")

	_, err := setup.service.UpdateStatus(ctx, UpdateStatusInput{
		OrderID:    pending.ID,
		ActorID:    stranger.ID,
		NextStatus: enums.OrderStatusInProgress,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("stranger should see not found, got %v", err)
	}

	_, err = setup.service.UpdateStatus(ctx, UpdateStatusInput{
		OrderID:    done.ID,
		ActorID:    vendor.ID,
		NextStatus: enums.OrderStatusCancelled,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("terminal order should conflict, got %v", err)
	}

	_, err = setup.service.UpdateStatus(ctx, UpdateStatusInput{
		OrderID:    pending.ID,
		ActorID:    vendor.ID,
		NextStatus: enums.OrderStatusCompleted,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("skipping in_progress should conflict, got %v", err)
	}

	_, err = setup.service.UpdateStatus(ctx, UpdateStatusInput{
		OrderID:    pending.ID,
		ActorID:    vendor.ID,
		NextStatus: enums.OrderStatus("shipped"),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unknown status should be validation, got %v", err)
	}
}

func TestGet_PartyScoping(t *testing.T) {
	setup := newOrdersTestSetup(t)
	ctx := context.Background()
	buyer := setup.seedUser(t, enums.AccountTypeConsumer)
	vendor := setup.seedUser(t, enums.AccountTypeCompany)
	stranger := setup.seedUser(t, enums.AccountTypeConsumer)
	order := setup.seedOrder(t, buyer.ID, vendor.ID, enums.OrderStatusPending, "15.00")

	for _, actor := range []uuid.UUID{buyer.ID, vendor.ID} {
		dto, err := setup.service.Get(ctx, actor, order.ID)
		if err != nil {
			t.Fatalf("party get: %v", err)
		}
		if len(dto.Lines) != 1 {
			t.Fatalf("expected lines preloaded, got %d", len(dto.Lines))
		}
	}

	_, err := setup.service.Get(ctx, stranger.ID, order.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("stranger should see not found, got %v", err)
	}
}

func TestListForBuyer_FilterAndCursor(t *testing.T) {
	setup := newOrdersTestSetup(t)
	ctx := context.Background()
	buyer := setup.seedUser(t, enums.AccountTypeConsumer)
	vendor := setup.seedUser(t, enums.AccountTypeCompany)

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		order := setup.seedOrder(t, buyer.ID, vendor.ID, enums.OrderStatusPending, "10.00")
		// Spread creation times so cursor ordering is deterministic.
		setup.db.Model(order).UpdateColumn("created_at", base.Add(time.Duration(i)*time.Minute))
	}
	cancelled := setup.seedOrder(t, buyer.ID, vendor.ID, enums.OrderStatusCancelled, "10.00")
	setup.db.Model(cancelled).UpdateColumn("created_at", base.Add(10*time.Minute))

	page, err := setup.service.ListForBuyer(ctx, buyer.ID, ListInput{Pagination: pagination.Params{Limit: 2}})
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	if len(page.Orders) != 2 || page.NextCursor == "" {
		t.Fatalf("expected full first page with cursor, got %d orders", len(page.Orders))
	}

	rest, err := setup.service.ListForBuyer(ctx, buyer.ID, ListInput{Pagination: pagination.Params{Limit: 2, Cursor: page.NextCursor}})
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(rest.Orders) != 2 {
		t.Fatalf("expected remaining orders, got %d", len(rest.Orders))
	}

	status := enums.OrderStatusCancelled
	filtered, err := setup.service.ListForBuyer(ctx, buyer.ID, ListInput{Status: &status, Pagination: pagination.Params{Limit: 10}})
	if err != nil {
		t.Fatalf("filtered list: %v", err)
	}
	if len(filtered.Orders) != 1 || filtered.Orders[0].ID != cancelled.ID {
		t.Fatalf("expected only the cancelled order, got %d", len(filtered.Orders))
	}
}

func TestStats(t *testing.T) {
	setup := newOrdersTestSetup(t)
	ctx := context.Background()
	buyer := setup.seedUser(t, enums.AccountTypeConsumer)
	vendor := setup.seedUser(t, enums.AccountTypeCompany)

	setup.seedOrder(t, buyer.ID, vendor.ID, enums.OrderStatusPending, "10.00")
	setup.seedOrder(t, buyer.ID, vendor.ID, enums.OrderStatusCompleted, "20.00")
	setup.seedOrder(t, buyer.ID, vendor.ID, enums.OrderStatusCompleted, "40.00")

	stats, err := setup.service.StatsForCompany(ctx, vendor.ID)
	if err != nil {
		t.Fatalf("company stats: %v", err)
	}
	if stats.TotalOrders != 3 {
		t.Fatalf("expected 3 orders, got %d", stats.TotalOrders)
	}
	if stats.ByStatus[enums.OrderStatusCompleted] != 2 {
		t.Fatalf("expected 2 completed, got %d", stats.ByStatus[enums.OrderStatusCompleted])
	}
	if !stats.Revenue.Equal(decimal.RequireFromString("60.00")) {
		t.Fatalf("expected revenue 60.00, got %s", stats.Revenue)
	}
	if !stats.AverageOrder.Equal(decimal.RequireFromString("30.00")) {
		t.Fatalf("expected average 30.00, got %s", stats.AverageOrder)
	}

	buyerStats, err := setup.service.StatsForBuyer(ctx, buyer.ID)
	if err != nil {
		t.Fatalf("buyer stats: %v", err)
	}
	if buyerStats.TotalOrders != 3 {
		t.Fatalf("expected 3 buyer orders, got %d", buyerStats.TotalOrders)
	}
}

func TestRecomputeTotal(t *testing.T) {
	setup := newOrdersTestSetup(t)
	ctx := context.Background()
	buyer := setup.seedUser(t, enums.AccountTypeConsumer)
	vendor := setup.seedUser(t, enums.AccountTypeCompany)
	order := setup.seedOrder(t, buyer.ID, vendor.ID, enums.OrderStatusPending, "10.00")

	extra := models.OrderLine{
		OrderID:   order.ID,
		Name:      "Extra",
		UnitPrice: decimal.RequireFromString("5.00"),
		Quantity:  3,
		Subtotal:  decimal.RequireFromString("15.00"),
	}
	if err := setup.db.Create(&extra).Error; err != nil {
		t.Fatalf("seed extra line: %v", err)
	}

	if err := setup.repo.RecomputeTotal(ctx, order.ID); err != nil {
		t.Fatalf("recompute: %v", err)
	}
	reloaded, err := setup.repo.FindByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reloaded.Total.Equal(decimal.RequireFromString("25.00")) {
		t.Fatalf("expected total 25.00, got %s", reloaded.Total)
	}
}
