package cart

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/teomanager/teomanager-backend/pkg/db/models"
	pkgerrors "github.com/teomanager/teomanager-backend/pkg/errors"
	"github.com/teomanager/teomanager-backend/pkg/logger"
	"github.com/teomanager/teomanager-backend/pkg/redis"
)

// Service manages the redis-backed session cart of an account.
type Service interface {
	Add(ctx context.Context, accountID uuid.UUID, input AddItemInput) (*CartDTO, error)
	Remove(ctx context.Context, accountID uuid.UUID, input RemoveItemInput) (*CartDTO, error)
	Get(ctx context.Context, accountID uuid.UUID) (*CartDTO, error)
	Clear(ctx context.Context, accountID uuid.UUID) error

	// Snapshot returns the reconciled raw cart for checkout.
	Snapshot(ctx context.Context, accountID uuid.UUID) (*Cart, error)
}

type cartStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartKey(accountID string) string
}

// listingReader resolves cart entries against the live catalog.
type listingReader interface {
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindServiceByID(ctx context.Context, id uuid.UUID) (*models.ServiceOffering, error)
}

// ServiceParams groups dependencies for the cart service.
type ServiceParams struct {
	Store    cartStore
	Listings listingReader
	TTL      time.Duration
	Logger   *logger.Logger
}

type service struct {
	store    cartStore
	listings listingReader
	ttl      time.Duration
	logg     *logger.Logger
}

// NewService constructs a cart service instance.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart store required")
	}
	if params.Listings == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "listing reader required")
	}
	if params.TTL <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart ttl required")
	}
	return &service{
		store:    params.Store,
		listings: params.Listings,
		ttl:      params.TTL,
		logg:     params.Logger,
	}, nil
}

func (s *service) Add(ctx context.Context, accountID uuid.UUID, input AddItemInput) (*CartDTO, error) {
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if (input.ProductID == nil) == (input.ServiceID == nil) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "exactly one of product_id or service_id is required")
	}

	entry, err := s.buildItem(ctx, input)
	if err != nil {
		return nil, err
	}

	cart, err := s.load(ctx, accountID)
	if err != nil {
		return nil, err
	}

	merged := false
	for i := range cart.Items {
		if cart.Items[i].Key() == entry.Key() {
			cart.Items[i].Quantity += entry.Quantity
			merged = true
			break
		}
	}
	if !merged {
		cart.Items = append(cart.Items, *entry)
	}

	cart, err = s.reconcile(ctx, cart)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, accountID, cart); err != nil {
		return nil, err
	}
	return NewCartDTO(cart), nil
}

func (s *service) Remove(ctx context.Context, accountID uuid.UUID, input RemoveItemInput) (*CartDTO, error) {
	if (input.ProductID == nil) == (input.ServiceID == nil) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "exactly one of product_id or service_id is required")
	}
	target := Item{ProductID: input.ProductID, ServiceID: input.ServiceID}

	cart, err := s.load(ctx, accountID)
	if err != nil {
		return nil, err
	}

	kept := cart.Items[:0]
	removed := false
	for _, item := range cart.Items {
		if item.Key() == target.Key() {
			removed = true
			continue
		}
		kept = append(kept, item)
	}
	if !removed {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
	}
	cart.Items = kept

	cart, err = s.reconcile(ctx, cart)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, accountID, cart); err != nil {
		return nil, err
	}
	return NewCartDTO(cart), nil
}

func (s *service) Get(ctx context.Context, accountID uuid.UUID) (*CartDTO, error) {
	cart, err := s.Snapshot(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return NewCartDTO(*cart), nil
}

// Snapshot loads and reconciles the cart, persisting any repairs so checkout
// and the next read agree.
func (s *service) Snapshot(ctx context.Context, accountID uuid.UUID) (*Cart, error) {
	cart, err := s.load(ctx, accountID)
	if err != nil {
		return nil, err
	}
	before := len(cart.Items)
	cart, err = s.reconcile(ctx, cart)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) != before {
		if err := s.save(ctx, accountID, cart); err != nil {
			return nil, err
		}
	}
	return &cart, nil
}

func (s *service) Clear(ctx context.Context, accountID uuid.UUID) error {
	if err := s.store.Del(ctx, s.store.CartKey(accountID.String())); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

func (s *service) buildItem(ctx context.Context, input AddItemInput) (*Item, error) {
	if input.ProductID != nil {
		product, err := s.listings.FindProductByID(ctx, *input.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		if !product.IsActive {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is not available")
		}
		if product.Stock < input.Quantity {
			return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").WithDetails(map[string]any{
				"product_id": product.ID,
				"available":  product.Stock,
				"requested":  input.Quantity,
			})
		}
		return &Item{
			ProductID: input.ProductID,
			CompanyID: product.CompanyID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  input.Quantity,
		}, nil
	}

	svc, err := s.listings.FindServiceByID(ctx, *input.ServiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load service")
	}
	if !svc.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service is not available")
	}
	return &Item{
		ServiceID: input.ServiceID,
		CompanyID: svc.CompanyID,
		Name:      svc.Name,
		UnitPrice: svc.Price,
		Quantity:  input.Quantity,
	}, nil
}

// reconcile refreshes entries against the catalog: missing or inactive
// listings are dropped, product quantities are clamped to stock and prices
// are brought current.
func (s *service) reconcile(ctx context.Context, cart Cart) (Cart, error) {
	kept := make([]Item, 0, len(cart.Items))
	for _, item := range cart.Items {
		switch {
		case item.ProductID != nil:
			product, err := s.listings.FindProductByID(ctx, *item.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return cart, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reconcile product")
			}
			if !product.IsActive || product.Stock == 0 {
				continue
			}
			if item.Quantity > product.Stock {
				item.Quantity = product.Stock
			}
			item.CompanyID = product.CompanyID
			item.Name = product.Name
			item.UnitPrice = product.Price
			kept = append(kept, item)
		case item.ServiceID != nil:
			svc, err := s.listings.FindServiceByID(ctx, *item.ServiceID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return cart, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reconcile service")
			}
			if !svc.IsActive {
				continue
			}
			item.CompanyID = svc.CompanyID
			item.Name = svc.Name
			item.UnitPrice = svc.Price
			kept = append(kept, item)
		}
	}
	cart.Items = kept
	return cart, nil
}

func (s *service) load(ctx context.Context, accountID uuid.UUID) (Cart, error) {
	raw, err := s.store.Get(ctx, s.store.CartKey(accountID.String()))
	if err != nil {
		if redis.IsNil(err) {
			return Cart{}, nil
		}
		return Cart{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	var cart Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		// A corrupt blob should not lock the account out of shopping.
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "discarding corrupt cart payload")
		}
		return Cart{}, nil
	}
	return cart, nil
}

func (s *service) save(ctx context.Context, accountID uuid.UUID, cart Cart) error {
	cart.UpdatedAt = time.Now().UTC()
	payload, err := json.Marshal(cart)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart")
	}
	if err := s.store.Set(ctx, s.store.CartKey(accountID.String()), string(payload), s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store cart")
	}
	return nil
}
