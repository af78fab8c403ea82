package messages

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/teomanager/teomanager-backend/pkg/db/models"
	"github.com/teomanager/teomanager-backend/pkg/enums"
	pkgerrors "github.com/teomanager/teomanager-backend/pkg/errors"
	"github.com/teomanager/teomanager-backend/pkg/logger"
	"github.com/teomanager/teomanager-backend/pkg/outbox"
)

// Service exposes the per-order message thread.
type Service interface {
	Post(ctx context.Context, input PostInput) (*MessageDTO, error)
	Thread(ctx context.Context, orderID, viewerID uuid.UUID) ([]*MessageDTO, error)
	UnreadCount(ctx context.Context, accountID uuid.UUID) (int64, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type orderFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

type accountFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type mailEnqueuer interface {
	Enqueue(ctx context.Context, tx *gorm.DB, msg outbox.Message) error
}

// ServiceParams groups dependencies for the message service.
type ServiceParams struct {
	DB          txRunner
	Repo        *Repository
	RepoFactory func(tx *gorm.DB) *Repository
	Orders      orderFinder
	Accounts    accountFinder
	Mail        mailEnqueuer
	Logger      *logger.Logger
}

type service struct {
	db          txRunner
	repo        *Repository
	repoFactory func(tx *gorm.DB) *Repository
	orders      orderFinder
	accounts    accountFinder
	mail        mailEnqueuer
	logg        *logger.Logger
}

// NewService builds a message service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "message repository required")
	}
	if params.RepoFactory == nil {
		params.RepoFactory = func(tx *gorm.DB) *Repository { return params.Repo.WithTx(tx) }
	}
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order finder required")
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
		orders:      params.Orders,
		accounts:    params.Accounts,
		mail:        params.Mail,
		logg:        params.Logger,
	}, nil
}

// Post appends a message to the order thread and notifies the counterpart.
func (s *service) Post(ctx context.Context, input PostInput) (*MessageDTO, error) {
	body := strings.TrimSpace(input.Body)
	if body == "" && input.AttachmentPath == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message is empty")
	}

	order, err := s.loadForParty(ctx, input.OrderID, input.SenderID)
	if err != nil {
		return nil, err
	}

	counterpartID := order.CompanyID
	if input.SenderID == order.CompanyID {
		counterpartID = order.BuyerID
	}
	counterpart, err := s.accounts.FindByID(ctx, counterpartID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load counterpart")
	}

	msg := &models.OrderMessage{
		OrderID:        order.ID,
		SenderID:       input.SenderID,
		Body:           body,
		AttachmentPath: input.AttachmentPath,
	}
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repoFactory(tx).Create(ctx, msg); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create message")
		}
		if counterpart == nil {
			return nil
		}
		return s.mail.Enqueue(ctx, tx, outbox.Message{
			Kind:      enums.EmailKindOrderMessage,
			Recipient: counterpart.Email,
			Subject:   "New message on your order",
			Data: map[string]any{
				"order_id":   order.ID.String(),
				"message_id": msg.ID.String(),
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return NewMessageDTO(msg), nil
}

// Thread returns the full conversation and marks the counterpart's messages
// as read for the viewer.
func (s *service) Thread(ctx context.Context, orderID, viewerID uuid.UUID) ([]*MessageDTO, error) {
	if _, err := s.loadForParty(ctx, orderID, viewerID); err != nil {
		return nil, err
	}
	if _, err := s.repo.MarkReadForViewer(ctx, orderID, viewerID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark thread read")
	}
	rows, err := s.repo.ListForOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list thread")
	}
	thread := make([]*MessageDTO, 0, len(rows))
	for i := range rows {
		thread = append(thread, NewMessageDTO(&rows[i]))
	}
	return thread, nil
}

func (s *service) UnreadCount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	count, err := s.repo.UnreadCount(ctx, accountID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count unread messages")
	}
	return count, nil
}

func (s *service) loadForParty(ctx context.Context, orderID, actorID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
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
