package subscriptions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/teomanager/teomanager-backend/pkg/db/models"
	"github.com/teomanager/teomanager-backend/pkg/enums"
	pkgerrors "github.com/teomanager/teomanager-backend/pkg/errors"
	"github.com/teomanager/teomanager-backend/pkg/logger"
	"github.com/teomanager/teomanager-backend/pkg/outbox"
)

// Service defines the subscription lifecycle surface.
type Service interface {
	Plans(ctx context.Context) []Plan
	CurrentPlan(ctx context.Context, companyID uuid.UUID) (Plan, *models.Subscription, error)
	Subscribe(ctx context.Context, companyID uuid.UUID, tier enums.PlanTier) (*models.Subscription, error)
	Cancel(ctx context.Context, companyID uuid.UUID) error
	History(ctx context.Context, companyID uuid.UUID) ([]models.Subscription, error)
	CheckLimit(ctx context.Context, companyID uuid.UUID, kind enums.ResourceKind) error
	WarnIfNearLimit(ctx context.Context, companyID uuid.UUID, kind enums.ResourceKind) error
	ExpireDue(ctx context.Context, now time.Time) (int, error)
	RemindUpcoming(ctx context.Context, now time.Time) (int, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type subscriptionRepository interface {
	FindActive(ctx context.Context, companyID uuid.UUID) (*models.Subscription, error)
	History(ctx context.Context, companyID uuid.UUID) ([]models.Subscription, error)
	FindDueForExpiry(ctx context.Context, now time.Time, limit int) ([]models.Subscription, error)
	FindDueForReminder(ctx context.Context, now, until time.Time, limit int) ([]models.Subscription, error)
}

type accountFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// resourceCounter reports how many live resources of a kind a company owns.
// The catalog and landing services provide the implementations.
type resourceCounter interface {
	CountOwned(ctx context.Context, companyID uuid.UUID, kind enums.ResourceKind) (int64, error)
}

type mailEnqueuer interface {
	Enqueue(ctx context.Context, tx *gorm.DB, msg outbox.Message) error
}

const expirySweepBatch = 100

// reminderLeadTime decides how far ahead of expiry the renewal reminder
// goes out.
const reminderLeadTime = 72 * time.Hour

// limitWarnThreshold is the usage fraction (in percent) at which a company
// gets a heads-up about its plan quota.
const limitWarnThreshold = 80

// ServiceParams groups dependencies for the subscription service.
type ServiceParams struct {
	DB          txRunner
	Repo        subscriptionRepository
	RepoFactory func(tx *gorm.DB) *Repository
	Accounts    accountFinder
	Counter     resourceCounter
	Mail        mailEnqueuer
	Logger      *logger.Logger
}

type service struct {
	db          txRunner
	repo        subscriptionRepository
	repoFactory func(tx *gorm.DB) *Repository
	accounts    accountFinder
	counter     resourceCounter
	mail        mailEnqueuer
	logg        *logger.Logger
}

// NewService builds a subscription service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "subscription repository required")
	}
	if params.Accounts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "account finder required")
	}
	if params.Counter == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "resource counter required")
	}
	if params.Mail == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "mail enqueuer required")
	}
	factory := params.RepoFactory
	if factory == nil {
		factory = NewRepository
	}
	return &service{
		db:          params.DB,
		repo:        params.Repo,
		repoFactory: factory,
		accounts:    params.Accounts,
		counter:     params.Counter,
		mail:        params.Mail,
		logg:        params.Logger,
	}, nil
}

func (s *service) Plans(ctx context.Context) []Plan {
	return AllPlans()
}

// CurrentPlan resolves the company's effective plan. Companies without an
// active subscription operate on the basic tier.
func (s *service) CurrentPlan(ctx context.Context, companyID uuid.UUID) (Plan, *models.Subscription, error) {
	sub, err := s.repo.FindActive(ctx, companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DefaultPlan(), nil, nil
		}
		return Plan{}, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load active subscription")
	}
	plan, ok := PlanFor(sub.Plan)
	if !ok {
		return Plan{}, nil, pkgerrors.New(pkgerrors.CodeInternal, "unknown plan tier on subscription")
	}
	return plan, sub, nil
}

func (s *service) Subscribe(ctx context.Context, companyID uuid.UUID, tier enums.PlanTier) (*models.Subscription, error) {
	plan, ok := PlanFor(tier)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown plan tier")
	}

	company, err := s.accounts.FindByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "company not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load company")
	}
	if company.AccountType != enums.AccountTypeCompany {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only company accounts can subscribe")
	}

	now := time.Now().UTC()
	sub := &models.Subscription{
		CompanyID: companyID,
		Plan:      plan.Tier,
		Status:    enums.SubscriptionStatusActive,
		Price:     plan.Price,
		StartsAt:  now,
		ExpiresAt: now.Add(plan.Duration),
	}

	txErr := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repoFactory(tx)
		if err := repo.ExpireActives(ctx, companyID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "expire previous subscriptions")
		}
		if err := repo.Create(ctx, sub); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create subscription")
		}
		return s.mail.Enqueue(ctx, tx, outbox.Message{
			Kind:      enums.EmailKindSubscriptionReceipt,
			Recipient: company.Email,
			Subject:   "Your TEOmanager subscription",
			Data: map[string]any{
				"plan":       plan.Tier.String(),
				"price":      plan.Price.StringFixed(2),
				"expires_at": sub.ExpiresAt.Format(time.RFC3339),
			},
		})
	})
	if txErr != nil {
		return nil, txErr
	}
	return sub, nil
}

func (s *service) Cancel(ctx context.Context, companyID uuid.UUID) error {
	var affected int64
	txErr := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repoFactory(tx)
		rows, err := repo.Cancel(ctx, companyID, time.Now().UTC())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cancel subscription")
		}
		affected = rows
		return nil
	})
	if txErr != nil {
		return txErr
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "no active subscription")
	}
	return nil
}

func (s *service) History(ctx context.Context, companyID uuid.UUID) ([]models.Subscription, error) {
	subs, err := s.repo.History(ctx, companyID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load subscription history")
	}
	return subs, nil
}

// CheckLimit gates resource creation against the company's plan quota. Any
// failure to resolve the plan or count resources denies the action with a
// generic message rather than a server error: quota checks fail closed.
func (s *service) CheckLimit(ctx context.Context, companyID uuid.UUID, kind enums.ResourceKind) error {
	if !kind.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown resource kind")
	}
	plan, _, err := s.CurrentPlan(ctx, companyID)
	if err != nil {
		return s.denyUnverified(ctx, err)
	}
	current, err := s.counter.CountOwned(ctx, companyID, kind)
	if err != nil {
		return s.denyUnverified(ctx, err)
	}
	if !plan.Allows(kind, current) {
		return pkgerrors.New(pkgerrors.CodeLimitExceeded, "plan limit reached").WithDetails(map[string]any{
			"plan":     plan.Tier.String(),
			"resource": kind.String(),
			"limit":    plan.Limit(kind),
			"current":  current,
		})
	}
	return nil
}

// denyUnverified turns a plan or count lookup failure into a denial. The
// cause stays in the logs; the caller sees the same class of error as a
// reached limit, never a 500.
func (s *service) denyUnverified(ctx context.Context, cause error) error {
	if s.logg != nil {
		s.logg.Error(ctx, "plan limit check failed", cause)
	}
	return pkgerrors.New(pkgerrors.CodeLimitExceeded, "could not verify plan limits")
}

// WarnIfNearLimit enqueues a limit_warning email when the company's usage
// of a finite quota crossed the warn threshold. Callers invoke it after a
// successful resource create; failures should be logged, not surfaced.
func (s *service) WarnIfNearLimit(ctx context.Context, companyID uuid.UUID, kind enums.ResourceKind) error {
	if !kind.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown resource kind")
	}
	plan, _, err := s.CurrentPlan(ctx, companyID)
	if err != nil {
		return err
	}
	limit := plan.Limit(kind)
	if limit <= 0 {
		return nil
	}
	current, err := s.counter.CountOwned(ctx, companyID, kind)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count owned resources")
	}
	if current*100 < int64(limit)*limitWarnThreshold {
		return nil
	}

	company, err := s.accounts.FindByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load company for limit warning")
	}
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		return s.mail.Enqueue(ctx, tx, outbox.Message{
			Kind:      enums.EmailKindLimitWarning,
			Recipient: company.Email,
			Subject:   "You are close to your TEOmanager plan limit",
			Data: map[string]any{
				"plan":     plan.Tier.String(),
				"resource": kind.String(),
				"current":  current,
				"limit":    limit,
			},
		})
	})
}

// ExpireDue sweeps lapsed subscriptions, one batch per call, notifying the
// affected companies. The worker drives this on an interval.
func (s *service) ExpireDue(ctx context.Context, now time.Time) (int, error) {
	due, err := s.repo.FindDueForExpiry(ctx, now, expirySweepBatch)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find lapsed subscriptions")
	}
	if len(due) == 0 {
		return 0, nil
	}

	txErr := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repoFactory(tx)
		ids := make([]uuid.UUID, 0, len(due))
		for _, sub := range due {
			ids = append(ids, sub.ID)
		}
		if err := repo.MarkExpired(ctx, ids); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark subscriptions expired")
		}
		for _, sub := range due {
			company, err := s.accounts.FindByID(ctx, sub.CompanyID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load company for expiry notice")
			}
			if err := s.mail.Enqueue(ctx, tx, outbox.Message{
				Kind:      enums.EmailKindSubscriptionExpired,
				Recipient: company.Email,
				Subject:   "Your TEOmanager subscription expired",
				Data: map[string]any{
					"plan":       sub.Plan.String(),
					"expired_at": sub.ExpiresAt.Format(time.RFC3339),
				},
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return 0, txErr
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "expired", len(due)), "subscription sweep completed")
	}
	return len(due), nil
}

// RemindUpcoming enqueues renewal reminders for subscriptions expiring
// within the lead window. Each row is reminded at most once; the stamp and
// the outbox insert commit together.
func (s *service) RemindUpcoming(ctx context.Context, now time.Time) (int, error) {
	due, err := s.repo.FindDueForReminder(ctx, now, now.Add(reminderLeadTime), expirySweepBatch)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find subscriptions due for reminder")
	}
	if len(due) == 0 {
		return 0, nil
	}

	txErr := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repoFactory(tx)
		ids := make([]uuid.UUID, 0, len(due))
		for _, sub := range due {
			ids = append(ids, sub.ID)
		}
		if err := repo.MarkReminded(ctx, ids, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark subscriptions reminded")
		}
		for _, sub := range due {
			company, err := s.accounts.FindByID(ctx, sub.CompanyID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load company for renewal reminder")
			}
			if err := s.mail.Enqueue(ctx, tx, outbox.Message{
				Kind:      enums.EmailKindSubscriptionReminder,
				Recipient: company.Email,
				Subject:   "Your TEOmanager subscription expires soon",
				Data: map[string]any{
					"plan":       sub.Plan.String(),
					"expires_at": sub.ExpiresAt.Format(time.RFC3339),
				},
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return 0, txErr
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "reminded", len(due)), "renewal reminders enqueued")
	}
	return len(due), nil
}
