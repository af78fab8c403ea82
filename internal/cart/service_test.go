package cart

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/teomanager/teomanager-backend/pkg/db/models"
	pkgerrors "github.com/teomanager/teomanager-backend/pkg/errors"
)

type stubStore struct {
	values map[string]string
}

func newStubStore() *stubStore {
	return &stubStore{values: map[string]string{}}
}

func (s *stubStore) Get(ctx context.Context, key string) (string, error) {
	if v, ok := s.values[key]; ok {
		return v, nil
	}
	return "", goredis.Nil
}

func (s *stubStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	s.values[key] = value.(string)
	return nil
}

func (s *stubStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

func (s *stubStore) CartKey(accountID string) string { return "teo:cart:" + accountID }

type stubListings struct {
	products map[uuid.UUID]*models.Product
	services map[uuid.UUID]*models.ServiceOffering
}

func newStubListings() *stubListings {
	return &stubListings{
		products: map[uuid.UUID]*models.Product{},
		services: map[uuid.UUID]*models.ServiceOffering{},
	}
}

func (s *stubListings) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if p, ok := s.products[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubListings) FindServiceByID(ctx context.Context, id uuid.UUID) (*models.ServiceOffering, error) {
	if svc, ok := s.services[id]; ok {
		return svc, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubListings) addProduct(price string, stock int) *models.Product {
	p := &models.Product{
		ID:        uuid.New(),
		CompanyID: uuid.New(),
		Name:      "Product " + uuid.NewString()[:8],
		Price:     decimal.RequireFromString(price),
		Stock:     stock,
		IsActive:  true,
	}
	s.products[p.ID] = p
	return p
}

func (s *stubListings) addService(price string) *models.ServiceOffering {
	svc := &models.ServiceOffering{
		ID:        uuid.New(),
		CompanyID: uuid.New(),
		Name:      "Service " + uuid.NewString()[:8],
		Price:     decimal.RequireFromString(price),
		IsActive:  true,
	}
	s.services[svc.ID] = svc
	return svc
}

type cartTestSetup struct {
	service  Service
	store    *stubStore
	listings *stubListings
}

func newCartTestSetup(t *testing.T) *cartTestSetup {
	t.Helper()
	store := newStubStore()
	listings := newStubListings()
	svc, err := NewService(ServiceParams{
		Store:    store,
		Listings: listings,
		TTL:      time.Hour,
	})
	if err != nil {
		t.Fatalf("new cart service: %v", err)
	}
	return &cartTestSetup{service: svc, store: store, listings: listings}
}

func TestAdd_MergesAndTotals(t *testing.T) {
	setup := newCartTestSetup(t)
	ctx := context.Background()
	accountID := uuid.New()
	product := setup.listings.addProduct("10.50", 10)
	svc := setup.listings.addService("25.00")

	if _, err := setup.service.Add(ctx, accountID, AddItemInput{ProductID: &product.ID, Quantity: 2}); err != nil {
		t.Fatalf("add product: %v", err)
	}
	if _, err := setup.service.Add(ctx, accountID, AddItemInput{ProductID: &product.ID, Quantity: 3}); err != nil {
		t.Fatalf("add product again: %v", err)
	}
	dto, err := setup.service.Add(ctx, accountID, AddItemInput{ServiceID: &svc.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("add service: %v", err)
	}

	if len(dto.Items) != 2 {
		t.Fatalf("expected merged entries, got %d", len(dto.Items))
	}
	if dto.Items[0].Quantity != 5 {
		t.Fatalf("expected merged quantity 5, got %d", dto.Items[0].Quantity)
	}
	want := decimal.RequireFromString("77.50")
	if !dto.Total.Equal(want) {
		t.Fatalf("expected total %s, got %s", want, dto.Total)
	}
}

func TestAdd_Validations(t *testing.T) {
	setup := newCartTestSetup(t)
	ctx := context.Background()
	accountID := uuid.New()
	product := setup.listings.addProduct("10.00", 2)
	inactive := setup.listings.addProduct("10.00", 5)
	inactive.IsActive = false

	cases := map[string]struct {
		input AddItemInput
		code  pkgerrors.Code
	}{
		"no listing": {AddItemInput{Quantity: 1}, pkgerrors.CodeValidation},
		"both ids":   {AddItemInput{ProductID: &product.ID, ServiceID: &product.ID, Quantity: 1}, pkgerrors.CodeValidation},
		"zero qty":   {AddItemInput{ProductID: &product.ID}, pkgerrors.CodeValidation},
		"over stock": {AddItemInput{ProductID: &product.ID, Quantity: 3}, pkgerrors.CodeInsufficientStock},
		"inactive":   {AddItemInput{ProductID: &inactive.ID, Quantity: 1}, pkgerrors.CodeValidation},
		"unknown":    {AddItemInput{ProductID: ptrUUID(uuid.New()), Quantity: 1}, pkgerrors.CodeNotFound},
	}
	for name, tc := range cases {
		_, err := setup.service.Add(ctx, accountID, tc.input)
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != tc.code {
			t.Fatalf("%s: expected %s, got %v", name, tc.code, err)
		}
	}
}

func TestGet_ReconcilesAgainstCatalog(t *testing.T) {
	setup := newCartTestSetup(t)
	ctx := context.Background()
	accountID := uuid.New()
	dropped := setup.listings.addProduct("10.00", 5)
	clamped := setup.listings.addProduct("20.00", 5)
	repriced := setup.listings.addService("30.00")

	for _, input := range []AddItemInput{
		{ProductID: &dropped.ID, Quantity: 1},
		{ProductID: &clamped.ID, Quantity: 4},
		{ServiceID: &repriced.ID, Quantity: 1},
	} {
		if _, err := setup.service.Add(ctx, accountID, input); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	// Catalog moves underneath the cart.
	dropped.IsActive = false
	clamped.Stock = 2
	repriced.Price = decimal.RequireFromString("35.00")

	dto, err := setup.service.Get(ctx, accountID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(dto.Items) != 2 {
		t.Fatalf("expected inactive entry dropped, got %d items", len(dto.Items))
	}
	for _, item := range dto.Items {
		switch {
		case item.ProductID != nil && *item.ProductID == clamped.ID:
			if item.Quantity != 2 {
				t.Fatalf("expected clamped quantity 2, got %d", item.Quantity)
			}
		case item.ServiceID != nil && *item.ServiceID == repriced.ID:
			if !item.UnitPrice.Equal(decimal.RequireFromString("35.00")) {
				t.Fatalf("expected refreshed price, got %s", item.UnitPrice)
			}
		default:
			t.Fatalf("unexpected item %+v", item)
		}
	}
}

func TestRemoveAndClear(t *testing.T) {
	setup := newCartTestSetup(t)
	ctx := context.Background()
	accountID := uuid.New()
	product := setup.listings.addProduct("10.00", 5)

	if _, err := setup.service.Add(ctx, accountID, AddItemInput{ProductID: &product.ID, Quantity: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}

	_, err := setup.service.Remove(ctx, accountID, RemoveItemInput{ProductID: ptrUUID(uuid.New())})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for absent item, got %v", err)
	}

	dto, err := setup.service.Remove(ctx, accountID, RemoveItemInput{ProductID: &product.ID})
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(dto.Items) != 0 {
		t.Fatalf("expected empty cart, got %d items", len(dto.Items))
	}

	if _, err := setup.service.Add(ctx, accountID, AddItemInput{ProductID: &product.ID, Quantity: 1}); err != nil {
		t.Fatalf("re-add: %v", err)
	}
	if err := setup.service.Clear(ctx, accountID); err != nil {
		t.Fatalf("clear: %v", err)
	}
	dto, err = setup.service.Get(ctx, accountID)
	if err != nil {
		t.Fatalf("get after clear: %v", err)
	}
	if len(dto.Items) != 0 {
		t.Fatalf("expected cleared cart, got %d items", len(dto.Items))
	}
}

func ptrUUID(id uuid.UUID) *uuid.UUID { return &id }
