package orders

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

// Service exposes order reads and the vendor-side state machine.
type Service interface {
	Get(ctx context.Context, actorID, orderID uuid.UUID) (*OrderDTO, error)
	ListForBuyer(ctx context.Context, buyerID uuid.UUID, input ListInput) (*ListResult, error)
	ListForCompany(ctx context.Context, companyID uuid.UUID, input ListInput) (*ListResult, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*OrderDTO, error)
	StatsForBuyer(ctx context.Context, buyerID uuid.UUID) (*Stats, error)
	StatsForCompany(ctx context.Context, companyID uuid.UUID) (*Stats, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type accountFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type mailEnqueuer interface {
	Enqueue(ctx context.Context, tx *gorm.DB, msg outbox.Message) error
}

// dashboardInvalidator drops cached dashboard snapshots after writes that
// change what they would show.
type dashboardInvalidator interface {
	InvalidateCompany(ctx context.Context, companyID uuid.UUID) error
}

// ServiceParams groups dependencies for the order service.
type ServiceParams struct {
	DB          txRunner
	Repo        *Repository
	RepoFactory func(tx *gorm.DB) *Repository
	Accounts    accountFinder
	Mail        mailEnqueuer
	Dashboards  dashboardInvalidator
	Logger      *logger.Logger
}

type service struct {
	db          txRunner
	repo        *Repository
	repoFactory func(tx *gorm.DB) *Repository
	accounts    accountFinder
	mail        mailEnqueuer
	dashboards  dashboardInvalidator
	logg        *logger.Logger
}

// NewService builds an order service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order repository required")
	}
	if params.RepoFactory == nil {
		params.RepoFactory = func(tx *gorm.DB) *Repository { return params.Repo.WithTx(tx) }
	}
	if params.Accounts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "account finder required")
	}
	if params.Mail == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "mail enqueuer required")
	}
	return &service{
		db:          params.DB,
		repo:        params.Repo,
		repoFactory: params.RepoFactory,
		accounts:    params.Accounts,
		mail:        params.Mail,
		dashboards:  params.Dashboards,
		logg:        params.Logger,
	}, nil
}

// Get returns one order to a party of that order. Non-parties get the same
// answer as a missing id.
func (s *service) Get(ctx context.Context, actorID, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.loadForParty(ctx, actorID, orderID)
	if err != nil {
		return nil, err
	}
	return NewOrderDTO(order), nil
}

func (s *service) ListForBuyer(ctx context.Context, buyerID uuid.UUID, input ListInput) (*ListResult, error) {
	rows, next, err := s.repo.ListForBuyer(ctx, buyerID, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list buyer orders")
	}
	return newListResult(rows, next), nil
}

func (s *service) ListForCompany(ctx context.Context, companyID uuid.UUID, input ListInput) (*ListResult, error) {
	rows, next, err := s.repo.ListForCompany(ctx, companyID, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list company orders")
	}
	return newListResult(rows, next), nil
}

// UpdateStatus moves one order along the vendor state machine. Only the
// vendor that received the order may drive it; a repeated status is a no-op.
func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*OrderDTO, error) {
	if !input.NextStatus.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}

	order, err := s.repo.FindByID(ctx, input.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	if order.CompanyID != input.ActorID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if order.Status == input.NextStatus {
		return NewOrderDTO(order), nil
	}
	if order.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is in a terminal state").
			WithDetails(map[string]any{"status": order.Status.String()})
	}
	if !order.Status.CanTransitionTo(input.NextStatus) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "transition not allowed").
			WithDetails(map[string]any{
				"from": order.Status.String(),
				"to":   input.NextStatus.String(),
			})
	}

	buyer, err := s.accounts.FindByID(ctx, order.BuyerID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load buyer")
	}

	now := time.Now().UTC()
	updates := map[string]any{"status": input.NextStatus, "updated_at": now}
	switch input.NextStatus {
	case enums.OrderStatusCompleted:
		updates["completed_at"] = now
	case enums.OrderStatusCancelled:
		updates["cancelled_at"] = now
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repoFactory(tx)
		if err := repo.UpdateStatus(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
		}
		if buyer == nil {
			return nil
		}
		return s.mail.Enqueue(ctx, tx, outbox.Message{
			Kind:      enums.EmailKindOrderStatusChanged,
			Recipient: buyer.Email,
			Subject:   "Your order status changed",
			Data: map[string]any{
				"order_id": order.ID.String(),
				"from":     order.Status.String(),
				"to":       input.NextStatus.String(),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	if s.dashboards != nil {
		if derr := s.dashboards.InvalidateCompany(ctx, order.CompanyID); derr != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", derr.Error()), "company dashboard invalidation failed")
		}
	}

	order, err = s.repo.FindByID(ctx, order.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload order")
	}
	return NewOrderDTO(order), nil
}

func (s *service) StatsForBuyer(ctx context.Context, buyerID uuid.UUID) (*Stats, error) {
	stats, err := s.repo.StatsForBuyer(ctx, buyerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "buyer order stats")
	}
	return stats, nil
}

func (s *service) StatsForCompany(ctx context.Context, companyID uuid.UUID) (*Stats, error) {
	stats, err := s.repo.StatsForCompany(ctx, companyID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "company order stats")
	}
	return stats, nil
}

func (s *service) loadForParty(ctx context.Context, actorID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	if order.BuyerID != actorID && order.CompanyID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func newListResult(rows []models.Order, next string) *ListResult {
	result := &ListResult{
		Orders:     make([]*OrderDTO, 0, len(rows)),
		NextCursor: next,
	}
	for i := range rows {
		result.Orders = append(result.Orders, NewOrderDTO(&rows[i]))
	}
	return result
}
