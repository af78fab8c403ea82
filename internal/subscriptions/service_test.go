package subscriptions

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/teomanager/teomanager-backend/internal/accounts"
	"github.com/teomanager/teomanager-backend/pkg/db/models"
	"github.com/teomanager/teomanager-backend/pkg/enums"
	pkgerrors "github.com/teomanager/teomanager-backend/pkg/errors"
	"github.com/teomanager/teomanager-backend/pkg/outbox"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:subs_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Profile{}, &models.Subscription{}); err != nil {
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

type stubCounter struct {
	counts map[enums.ResourceKind]int64
	err    error
}

func (s *stubCounter) CountOwned(ctx context.Context, companyID uuid.UUID, kind enums.ResourceKind) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.counts[kind], nil
}

type stubMailer struct {
	messages []outbox.Message
}

func (s *stubMailer) Enqueue(ctx context.Context, tx *gorm.DB, msg outbox.Message) error {
	s.messages = append(s.messages, msg)
	return nil
}

type subsTestSetup struct {
	db      *gorm.DB
	service Service
	repo    *Repository
	counter *stubCounter
	mailer  *stubMailer
}

func newSubsTestSetup(t *testing.T) *subsTestSetup {
	t.Helper()
	db := newTestDB(t)
	repo := NewRepository(db)
	counter := &stubCounter{counts: map[enums.ResourceKind]int64{}}
	mailer := &stubMailer{}
	svc, err := NewService(ServiceParams{
		DB:       gormTxRunner{db: db},
		Repo:     repo,
		Accounts: accounts.NewRepository(db),
		Counter:  counter,
		Mail:     mailer,
	})
	if err != nil {
		t.Fatalf("new subscriptions service: %v", err)
	}
	return &subsTestSetup{db: db, service: svc, repo: repo, counter: counter, mailer: mailer}
}

func seedCompany(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "x",
		FirstName:    "Teo",
		LastName:     "Delgado",
		AccountType:  enums.AccountTypeCompany,
		IsActive:     true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed company: %v", err)
	}
	return user
}

func TestCurrentPlan_DefaultsToBasic(t *testing.T) {
	t.Parallel()
	setup := newSubsTestSetup(t)
	company := seedCompany(t, setup.db)

	plan, sub, err := setup.service.CurrentPlan(context.Background(), company.ID)
	if err != nil {
		t.Fatalf("current plan: %v", err)
	}
	if plan.Tier != enums.PlanTierBasic {
		t.Fatalf("expected basic fallback, got %s", plan.Tier)
	}
	if sub != nil {
		t.Fatalf("expected no subscription, got %+v", sub)
	}
}

func TestSubscribe_ReplacesActive(t *testing.T) {
	t.Parallel()
	setup := newSubsTestSetup(t)
	company := seedCompany(t, setup.db)
	ctx := context.Background()

	first, err := setup.service.Subscribe(ctx, company.ID, enums.PlanTierPremium)
	if err != nil {
		t.Fatalf("subscribe premium: %v", err)
	}
	if _, err := setup.service.Subscribe(ctx, company.ID, enums.PlanTierEnterprise); err != nil {
		t.Fatalf("subscribe enterprise: %v", err)
	}

	plan, active, err := setup.service.CurrentPlan(ctx, company.ID)
	if err != nil {
		t.Fatalf("current plan: %v", err)
	}
	if plan.Tier != enums.PlanTierEnterprise || active == nil {
		t.Fatalf("expected active enterprise plan, got %s %+v", plan.Tier, active)
	}

	var replaced models.Subscription
	if err := setup.db.First(&replaced, "id = ?", first.ID).Error; err != nil {
		t.Fatalf("reload first subscription: %v", err)
	}
	if replaced.Status != enums.SubscriptionStatusExpired {
		t.Fatalf("expected first row expired, got %s", replaced.Status)
	}

	if len(setup.mailer.messages) != 2 {
		t.Fatalf("expected 2 receipts, got %d", len(setup.mailer.messages))
	}
	for _, msg := range setup.mailer.messages {
		if msg.Kind != enums.EmailKindSubscriptionReceipt {
			t.Fatalf("expected receipt kind, got %s", msg.Kind)
		}
	}
}

func TestSubscribe_Rejections(t *testing.T) {
	t.Parallel()
	setup := newSubsTestSetup(t)
	ctx := context.Background()

	consumer := seedCompany(t, setup.db)
	if err := setup.db.Model(consumer).Update("account_type", enums.AccountTypeConsumer).Error; err != nil {
		t.Fatalf("flip account type: %v", err)
	}
	_, err := setup.service.Subscribe(ctx, consumer.ID, enums.PlanTierPremium)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for consumer, got %v", err)
	}

	company := seedCompany(t, setup.db)
	_, err = setup.service.Subscribe(ctx, company.ID, enums.PlanTier("gold"))
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation for unknown tier, got %v", err)
	}

	_, err = setup.service.Subscribe(ctx, uuid.New(), enums.PlanTierPremium)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unknown company, got %v", err)
	}
}

func TestCheckLimit(t *testing.T) {
	t.Parallel()
	setup := newSubsTestSetup(t)
	company := seedCompany(t, setup.db)
	ctx := context.Background()

	// Basic allows 10 products; at the ceiling the next create is denied.
	setup.counter.counts[enums.ResourceKindProduct] = 10
	err := setup.service.CheckLimit(ctx, company.ID, enums.ResourceKindProduct)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeLimitExceeded {
		t.Fatalf("expected limit exceeded, got %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok || details["limit"] != 10 {
		t.Fatalf("expected limit detail, got %+v", typed.Details())
	}

	setup.counter.counts[enums.ResourceKindProduct] = 9
	if err := setup.service.CheckLimit(ctx, company.ID, enums.ResourceKindProduct); err != nil {
		t.Fatalf("expected allowance under ceiling, got %v", err)
	}

	// Enterprise is unlimited.
	if _, err := setup.service.Subscribe(ctx, company.ID, enums.PlanTierEnterprise); err != nil {
		t.Fatalf("subscribe enterprise: %v", err)
	}
	setup.counter.counts[enums.ResourceKindProduct] = 100000
	if err := setup.service.CheckLimit(ctx, company.ID, enums.ResourceKindProduct); err != nil {
		t.Fatalf("expected unlimited allowance, got %v", err)
	}
}

func TestCheckLimit_FailsClosed(t *testing.T) {
	t.Parallel()
	setup := newSubsTestSetup(t)
	company := seedCompany(t, setup.db)

	setup.counter.err = context.DeadlineExceeded
	err := setup.service.CheckLimit(context.Background(), company.ID, enums.ResourceKindService)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeLimitExceeded {
		t.Fatalf("expected a fail-closed denial, got %v", err)
	}
	if typed.Message() != "could not verify plan limits" {
		t.Fatalf("expected the generic denial message, got %q", typed.Message())
	}
}

func TestCancel(t *testing.T) {
	t.Parallel()
	setup := newSubsTestSetup(t)
	company := seedCompany(t, setup.db)
	ctx := context.Background()

	if _, err := setup.service.Subscribe(ctx, company.ID, enums.PlanTierPremium); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := setup.service.Cancel(ctx, company.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	plan, _, err := setup.service.CurrentPlan(ctx, company.ID)
	if err != nil {
		t.Fatalf("current plan: %v", err)
	}
	if plan.Tier != enums.PlanTierBasic {
		t.Fatalf("expected basic after cancel, got %s", plan.Tier)
	}

	err = setup.service.Cancel(ctx, company.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found on second cancel, got %v", err)
	}
}

func TestExpireDue(t *testing.T) {
	t.Parallel()
	setup := newSubsTestSetup(t)
	company := seedCompany(t, setup.db)
	ctx := context.Background()

	stale := &models.Subscription{
		CompanyID: company.ID,
		Plan:      enums.PlanTierPremium,
		Status:    enums.SubscriptionStatusActive,
		StartsAt:  time.Now().Add(-31 * 24 * time.Hour),
		ExpiresAt: time.Now().Add(-24 * time.Hour),
	}
	if err := setup.repo.Create(ctx, stale); err != nil {
		t.Fatalf("seed stale subscription: %v", err)
	}

	expired, err := setup.service.ExpireDue(ctx, time.Now())
	if err != nil {
		t.Fatalf("expire due: %v", err)
	}
	if expired != 1 {
		t.Fatalf("expected 1 expiry, got %d", expired)
	}
	if len(setup.mailer.messages) != 1 || setup.mailer.messages[0].Kind != enums.EmailKindSubscriptionExpired {
		t.Fatalf("expected expiry email, got %+v", setup.mailer.messages)
	}

	// Idempotent: nothing left to sweep.
	expired, err = setup.service.ExpireDue(ctx, time.Now())
	if err != nil || expired != 0 {
		t.Fatalf("expected clean second sweep, got %d %v", expired, err)
	}
}

func TestWarnIfNearLimit(t *testing.T) {
	t.Parallel()
	setup := newSubsTestSetup(t)
	company := seedCompany(t, setup.db)
	ctx := context.Background()

	// Basic allows 10 products; 7 is under the threshold.
	setup.counter.counts[enums.ResourceKindProduct] = 7
	if err := setup.service.WarnIfNearLimit(ctx, company.ID, enums.ResourceKindProduct); err != nil {
		t.Fatalf("warn under threshold: %v", err)
	}
	if len(setup.mailer.messages) != 0 {
		t.Fatalf("expected no warning under threshold, got %+v", setup.mailer.messages)
	}

	setup.counter.counts[enums.ResourceKindProduct] = 8
	if err := setup.service.WarnIfNearLimit(ctx, company.ID, enums.ResourceKindProduct); err != nil {
		t.Fatalf("warn at threshold: %v", err)
	}
	if len(setup.mailer.messages) != 1 {
		t.Fatalf("expected one warning, got %+v", setup.mailer.messages)
	}
	msg := setup.mailer.messages[0]
	if msg.Kind != enums.EmailKindLimitWarning || msg.Recipient != company.Email {
		t.Fatalf("unexpected warning message %+v", msg)
	}
}

func TestWarnIfNearLimit_SkipsUnlimited(t *testing.T) {
	t.Parallel()
	setup := newSubsTestSetup(t)
	company := seedCompany(t, setup.db)
	ctx := context.Background()

	if _, err := setup.service.Subscribe(ctx, company.ID, enums.PlanTierEnterprise); err != nil {
		t.Fatalf("subscribe enterprise: %v", err)
	}
	setup.mailer.messages = nil

	setup.counter.counts[enums.ResourceKindProduct] = 100000
	if err := setup.service.WarnIfNearLimit(ctx, company.ID, enums.ResourceKindProduct); err != nil {
		t.Fatalf("warn on unlimited plan: %v", err)
	}
	if len(setup.mailer.messages) != 0 {
		t.Fatalf("unlimited plans never warn, got %+v", setup.mailer.messages)
	}
}

func TestRemindUpcoming(t *testing.T) {
	t.Parallel()
	setup := newSubsTestSetup(t)
	company := seedCompany(t, setup.db)
	ctx := context.Background()

	closing := &models.Subscription{
		CompanyID: company.ID,
		Plan:      enums.PlanTierPremium,
		Status:    enums.SubscriptionStatusActive,
		StartsAt:  time.Now().Add(-28 * 24 * time.Hour),
		ExpiresAt: time.Now().Add(48 * time.Hour),
	}
	if err := setup.repo.Create(ctx, closing); err != nil {
		t.Fatalf("seed closing subscription: %v", err)
	}
	distant := &models.Subscription{
		CompanyID: company.ID,
		Plan:      enums.PlanTierPremium,
		Status:    enums.SubscriptionStatusActive,
		StartsAt:  time.Now(),
		ExpiresAt: time.Now().Add(20 * 24 * time.Hour),
	}
	if err := setup.repo.Create(ctx, distant); err != nil {
		t.Fatalf("seed distant subscription: %v", err)
	}

	reminded, err := setup.service.RemindUpcoming(ctx, time.Now())
	if err != nil {
		t.Fatalf("remind upcoming: %v", err)
	}
	if reminded != 1 {
		t.Fatalf("expected 1 reminder, got %d", reminded)
	}
	if len(setup.mailer.messages) != 1 || setup.mailer.messages[0].Kind != enums.EmailKindSubscriptionReminder {
		t.Fatalf("expected reminder email, got %+v", setup.mailer.messages)
	}

	// The stamp makes the sweep idempotent.
	reminded, err = setup.service.RemindUpcoming(ctx, time.Now())
	if err != nil || reminded != 0 {
		t.Fatalf("expected clean second sweep, got %d %v", reminded, err)
	}
}
