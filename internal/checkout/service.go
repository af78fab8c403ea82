package checkout

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/teomanager/teomanager-backend/internal/cart"
	"github.com/teomanager/teomanager-backend/internal/catalog"
	"github.com/teomanager/teomanager-backend/internal/orders"
	"github.com/teomanager/teomanager-backend/pkg/db/models"
	"github.com/teomanager/teomanager-backend/pkg/enums"
	pkgerrors "github.com/teomanager/teomanager-backend/pkg/errors"
	"github.com/teomanager/teomanager-backend/pkg/logger"
	"github.com/teomanager/teomanager-backend/pkg/outbox"
)

// Service turns a reconciled cart into one pending order per vendor.
type Service interface {
	CreateOrdersFromCart(ctx context.Context, buyerID uuid.UUID, input CheckoutInput) (*Result, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cartSnapshotter interface {
	Snapshot(ctx context.Context, accountID uuid.UUID) (*cart.Cart, error)
}

type accountFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type mailEnqueuer interface {
	Enqueue(ctx context.Context, tx *gorm.DB, msg outbox.Message) error
}

type dashboardInvalidator interface {
	InvalidateAdmin(ctx context.Context) error
	InvalidateCompany(ctx context.Context, companyID uuid.UUID) error
}

// ServiceParams groups dependencies for the checkout service.
type ServiceParams struct {
	DB         txRunner
	Carts      cartSnapshotter
	Orders     *orders.Repository
	Listings   *catalog.Repository
	Accounts   accountFinder
	Mail       mailEnqueuer
	Dashboards dashboardInvalidator
	Logger     *logger.Logger
}

type service struct {
	db         txRunner
	carts      cartSnapshotter
	orders     *orders.Repository
	listings   *catalog.Repository
	accounts   accountFinder
	mail       mailEnqueuer
	dashboards dashboardInvalidator
	logg       *logger.Logger
}

// NewService builds the checkout service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	if params.Carts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart snapshotter required")
	}
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order repository required")
	}
	if params.Listings == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "catalog repository required")
	}
	if params.Accounts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "account finder required")
	}
	if params.Mail == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "mail enqueuer required")
	}
	return &service{
		db:         params.DB,
		carts:      params.Carts,
		orders:     params.Orders,
		listings:   params.Listings,
		accounts:   params.Accounts,
		mail:       params.Mail,
		dashboards: params.Dashboards,
		logg:       params.Logger,
	}, nil
}

// CreateOrdersFromCart groups the cart by vendor and creates every order in
// a single transaction. Stock decrements are conditioned so a concurrent
// checkout of the same unit rolls the whole batch back instead of
// overselling. The cart itself is left untouched; the controller clears it
// once the orders are committed.
func (s *service) CreateOrdersFromCart(ctx context.Context, buyerID uuid.UUID, input CheckoutInput) (*Result, error) {
	snapshot, err := s.carts.Snapshot(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	if len(snapshot.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	buyer, err := s.accounts.FindByID(ctx, buyerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load buyer")
	}

	var (
		created []*models.Order
		skipped int
	)
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		listings := s.listings.WithTx(tx)
		ordersRepo := s.orders.WithTx(tx)

		vendorIDs := make([]uuid.UUID, 0, len(snapshot.Items))
		linesByVendor := map[uuid.UUID][]models.OrderLine{}
		for _, item := range snapshot.Items {
			line, vendorID, err := s.buildLine(ctx, listings, item)
			if err != nil {
				return err
			}
			if line == nil {
				skipped++
				continue
			}
			if _, seen := linesByVendor[vendorID]; !seen {
				vendorIDs = append(vendorIDs, vendorID)
			}
			linesByVendor[vendorID] = append(linesByVendor[vendorID], *line)
		}
		if len(vendorIDs) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "no valid items")
		}

		created = make([]*models.Order, 0, len(vendorIDs))
		for _, vendorID := range vendorIDs {
			lines := linesByVendor[vendorID]
			order := &models.Order{
				BuyerID:   buyerID,
				CompanyID: vendorID,
				Status:    enums.OrderStatusPending,
				Lines:     lines,
			}
			if note, ok := input.NotesByCompany[vendorID]; ok && note != "" {
				order.Note = &note
			}
			for _, line := range lines {
				order.Total = order.Total.Add(line.Subtotal)
			}
			if err := ordersRepo.Create(ctx, order); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
			}
			if err := ordersRepo.RecomputeTotal(ctx, order.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recompute order total")
			}
			if err := s.mail.Enqueue(ctx, tx, outbox.Message{
				Kind:      enums.EmailKindOrderConfirmation,
				Recipient: buyer.Email,
				Subject:   "Order confirmation",
				Data: map[string]any{
					"order_id": order.ID.String(),
					"total":    order.Total.String(),
					"lines":    len(order.Lines),
				},
			}); err != nil {
				return err
			}
			created = append(created, order)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateDashboards(ctx, created)

	result := &Result{
		Orders:  make([]*orders.OrderDTO, 0, len(created)),
		Skipped: skipped,
	}
	for _, order := range created {
		result.Orders = append(result.Orders, orders.NewOrderDTO(order))
	}
	return result, nil
}

// buildLine freezes one cart item against the catalog under the checkout
// transaction. A nil line with nil error means the item was pruned.
func (s *service) buildLine(ctx context.Context, listings *catalog.Repository, item cart.Item) (*models.OrderLine, uuid.UUID, error) {
	switch {
	case item.ProductID != nil:
		product, err := listings.FindProductByID(ctx, *item.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, uuid.Nil, nil
			}
			return nil, uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
		}
		if !product.IsActive {
			return nil, uuid.Nil, nil
		}
		affected, err := listings.DecrementStock(ctx, product.ID, item.Quantity)
		if err != nil {
			return nil, uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrement stock")
		}
		if affected == 0 {
			return nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
				WithDetails(map[string]any{
					"product_id": product.ID.String(),
					"requested":  item.Quantity,
					"available":  product.Stock,
				})
		}
		return &models.OrderLine{
			ProductID: &product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  item.Quantity,
			Subtotal:  product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))),
		}, product.CompanyID, nil

	case item.ServiceID != nil:
		svc, err := listings.FindServiceByID(ctx, *item.ServiceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, uuid.Nil, nil
			}
			return nil, uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load service")
		}
		if !svc.IsActive {
			return nil, uuid.Nil, nil
		}
		return &models.OrderLine{
			ServiceID: &svc.ID,
			Name:      svc.Name,
			UnitPrice: svc.Price,
			Quantity:  item.Quantity,
			Subtotal:  svc.Price.Mul(decimal.NewFromInt(int64(item.Quantity))),
		}, svc.CompanyID, nil

	default:
		return nil, uuid.Nil, nil
	}
}

func (s *service) invalidateDashboards(ctx context.Context, created []*models.Order) {
	if s.dashboards == nil {
		return
	}
	if err := s.dashboards.InvalidateAdmin(ctx); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "admin dashboard invalidation failed")
	}
	for _, order := range created {
		if err := s.dashboards.InvalidateCompany(ctx, order.CompanyID); err != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "company dashboard invalidation failed")
		}
	}
}
