package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/teomanager/teomanager-backend/pkg/config"
	"github.com/teomanager/teomanager-backend/pkg/db/models"
	"github.com/teomanager/teomanager-backend/pkg/enums"
	pkgerrors "github.com/teomanager/teomanager-backend/pkg/errors"
	"github.com/teomanager/teomanager-backend/pkg/logger"
	"github.com/teomanager/teomanager-backend/pkg/redis"
)

// Service exposes catalog management plus the public browse surface.
type Service interface {
	CreateProduct(ctx context.Context, companyID uuid.UUID, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, companyID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, companyID, productID uuid.UUID) error
	GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error)
	ListCompanyProducts(ctx context.Context, companyID uuid.UUID, input BrowseInput) (*ProductListResult, error)
	BrowseProducts(ctx context.Context, input BrowseInput) (*ProductListResult, error)

	CreateService(ctx context.Context, companyID uuid.UUID, input CreateServiceInput) (*ServiceDTO, error)
	UpdateService(ctx context.Context, companyID, serviceID uuid.UUID, input UpdateServiceInput) (*ServiceDTO, error)
	DeleteService(ctx context.Context, companyID, serviceID uuid.UUID) error
	GetService(ctx context.Context, serviceID uuid.UUID) (*ServiceDTO, error)
	ListCompanyServices(ctx context.Context, companyID uuid.UUID, input BrowseInput) (*ServiceListResult, error)
	BrowseServices(ctx context.Context, input BrowseInput) (*ServiceListResult, error)

	AddProductImage(ctx context.Context, companyID, productID uuid.UUID, input ImageInput) (*ProductDTO, error)
	RemoveProductImage(ctx context.Context, companyID, productID, imageID uuid.UUID) error
	SetPrincipalProductImage(ctx context.Context, companyID, productID, imageID uuid.UUID) error
	AddServiceImage(ctx context.Context, companyID, serviceID uuid.UUID, input ImageInput) (*ServiceDTO, error)
	RemoveServiceImage(ctx context.Context, companyID, serviceID, imageID uuid.UUID) error
	SetPrincipalServiceImage(ctx context.Context, companyID, serviceID, imageID uuid.UUID) error

	Categories(ctx context.Context) ([]CategoryCount, error)
	Featured(ctx context.Context) (*FeaturedResult, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// limitChecker gates resource creation against the owning company's plan
// and queues the near-limit heads-up after a create goes through.
type limitChecker interface {
	CheckLimit(ctx context.Context, companyID uuid.UUID, kind enums.ResourceKind) error
	WarnIfNearLimit(ctx context.Context, companyID uuid.UUID, kind enums.ResourceKind) error
}

type categoryCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CategorySummaryKey() string
}

// ServiceParams groups dependencies for the catalog service.
type ServiceParams struct {
	DB          txRunner
	Repo        *Repository
	Limits      limitChecker
	Cache       categoryCache
	CategoryTTL time.Duration
	Uploads     config.UploadsConfig
	Logger      *logger.Logger
}

type service struct {
	db          txRunner
	repo        *Repository
	limits      limitChecker
	cache       categoryCache
	categoryTTL time.Duration
	uploads     config.UploadsConfig
	logg        *logger.Logger
}

// NewService constructs a catalog service instance.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "catalog repository required")
	}
	if params.Limits == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "limit checker required")
	}
	return &service{
		db:          params.DB,
		repo:        params.Repo,
		limits:      params.Limits,
		cache:       params.Cache,
		categoryTTL: params.CategoryTTL,
		uploads:     params.Uploads,
		logg:        params.Logger,
	}, nil
}

func (s *service) CreateProduct(ctx context.Context, companyID uuid.UUID, input CreateProductInput) (*ProductDTO, error) {
	if err := validateListingBasics(input.Name, input.Category, input.Price); err != nil {
		return nil, err
	}
	if input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	if err := s.limits.CheckLimit(ctx, companyID, enums.ResourceKindProduct); err != nil {
		return nil, err
	}

	product := &models.Product{
		CompanyID:   companyID,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Category:    normalizeCategory(input.Category),
		Price:       input.Price,
		Stock:       input.Stock,
		IsActive:    true,
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if input.ShippingPolicy != nil {
		product.ShippingPolicy = *input.ShippingPolicy
	}
	if input.ReturnsPolicy != nil {
		product.ReturnsPolicy = *input.ReturnsPolicy
	}

	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
	}
	s.warnNearLimit(ctx, companyID, enums.ResourceKindProduct)
	return NewProductDTO(product), nil
}

// warnNearLimit is best effort: the listing already exists, so a failed
// warning email must not fail the request.
func (s *service) warnNearLimit(ctx context.Context, companyID uuid.UUID, kind enums.ResourceKind) {
	if err := s.limits.WarnIfNearLimit(ctx, companyID, kind); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "plan limit warning not queued: "+err.Error())
	}
}

func (s *service) UpdateProduct(ctx context.Context, companyID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	if _, err := s.ownedProduct(ctx, companyID, productID); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Category != nil {
		if strings.TrimSpace(*input.Category) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category cannot be empty")
		}
		updates["category"] = normalizeCategory(*input.Category)
	}
	if input.Price != nil {
		if !input.Price.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be greater than zero")
		}
		updates["price"] = *input.Price
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
		}
		updates["stock"] = *input.Stock
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if input.ShippingPolicy != nil {
		updates["shipping_policy"] = *input.ShippingPolicy
	}
	if input.ReturnsPolicy != nil {
		updates["returns_policy"] = *input.ReturnsPolicy
	}

	if err := s.repo.UpdateProduct(ctx, productID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
	}
	return s.GetProduct(ctx, productID)
}

func (s *service) DeleteProduct(ctx context.Context, companyID, productID uuid.UUID) error {
	if _, err := s.ownedProduct(ctx, companyID, productID); err != nil {
		return err
	}
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).DeleteProduct(ctx, productID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete product")
		}
		return nil
	})
}

func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return NewProductDTO(product), nil
}

func (s *service) ListCompanyProducts(ctx context.Context, companyID uuid.UUID, input BrowseInput) (*ProductListResult, error) {
	rows, next, err := s.repo.ListProducts(ctx, productListQuery{
		Filters:     input.Filters,
		Pagination:  input.Pagination,
		CompanyOnly: &companyID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list company products")
	}
	return newProductListResult(rows, next), nil
}

func (s *service) BrowseProducts(ctx context.Context, input BrowseInput) (*ProductListResult, error) {
	rows, next, err := s.repo.ListProducts(ctx, productListQuery{
		Filters:    input.Filters,
		Pagination: input.Pagination,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "browse products")
	}
	return newProductListResult(rows, next), nil
}

func (s *service) CreateService(ctx context.Context, companyID uuid.UUID, input CreateServiceInput) (*ServiceDTO, error) {
	if err := validateListingBasics(input.Name, input.Category, input.Price); err != nil {
		return nil, err
	}
	if err := s.limits.CheckLimit(ctx, companyID, enums.ResourceKindService); err != nil {
		return nil, err
	}

	svc := &models.ServiceOffering{
		CompanyID:   companyID,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Category:    normalizeCategory(input.Category),
		Price:       input.Price,
		Duration:    input.Duration,
		IsActive:    true,
	}
	if input.IsActive != nil {
		svc.IsActive = *input.IsActive
	}
	if input.BookingPolicy != nil {
		svc.BookingPolicy = *input.BookingPolicy
	}
	if input.CancellationPolicy != nil {
		svc.CancellationPolicy = *input.CancellationPolicy
	}

	if err := s.repo.CreateService(ctx, svc); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert service")
	}
	s.warnNearLimit(ctx, companyID, enums.ResourceKindService)
	return NewServiceDTO(svc), nil
}

func (s *service) UpdateService(ctx context.Context, companyID, serviceID uuid.UUID, input UpdateServiceInput) (*ServiceDTO, error) {
	if _, err := s.ownedService(ctx, companyID, serviceID); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Category != nil {
		if strings.TrimSpace(*input.Category) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category cannot be empty")
		}
		updates["category"] = normalizeCategory(*input.Category)
	}
	if input.Price != nil {
		if !input.Price.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be greater than zero")
		}
		updates["price"] = *input.Price
	}
	if input.Duration != nil {
		updates["duration"] = *input.Duration
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if input.BookingPolicy != nil {
		updates["booking_policy"] = *input.BookingPolicy
	}
	if input.CancellationPolicy != nil {
		updates["cancellation_policy"] = *input.CancellationPolicy
	}

	if err := s.repo.UpdateService(ctx, serviceID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update service")
	}
	return s.GetService(ctx, serviceID)
}

func (s *service) DeleteService(ctx context.Context, companyID, serviceID uuid.UUID) error {
	if _, err := s.ownedService(ctx, companyID, serviceID); err != nil {
		return err
	}
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).DeleteService(ctx, serviceID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete service")
		}
		return nil
	})
}

func (s *service) GetService(ctx context.Context, serviceID uuid.UUID) (*ServiceDTO, error) {
	svc, err := s.repo.FindServiceByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load service")
	}
	return NewServiceDTO(svc), nil
}

func (s *service) ListCompanyServices(ctx context.Context, companyID uuid.UUID, input BrowseInput) (*ServiceListResult, error) {
	rows, next, err := s.repo.ListServices(ctx, serviceListQuery{
		Filters:     input.Filters,
		Pagination:  input.Pagination,
		CompanyOnly: &companyID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list company services")
	}
	return newServiceListResult(rows, next), nil
}

func (s *service) BrowseServices(ctx context.Context, input BrowseInput) (*ServiceListResult, error) {
	rows, next, err := s.repo.ListServices(ctx, serviceListQuery{
		Filters:    input.Filters,
		Pagination: input.Pagination,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "browse services")
	}
	return newServiceListResult(rows, next), nil
}

func (s *service) AddProductImage(ctx context.Context, companyID, productID uuid.UUID, input ImageInput) (*ProductDTO, error) {
	if strings.TrimSpace(input.URL) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image url is required")
	}
	if err := s.validateImageFile(input.URL); err != nil {
		return nil, err
	}
	if _, err := s.ownedProduct(ctx, companyID, productID); err != nil {
		return nil, err
	}

	txErr := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		count, err := repo.CountProductImages(ctx, productID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count gallery")
		}
		img := &models.ProductImage{
			ProductID:   productID,
			URL:         strings.TrimSpace(input.URL),
			AltText:     input.AltText,
			IsPrincipal: count == 0,
			Position:    int(count),
		}
		if err := repo.CreateProductImage(ctx, img); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert image")
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return s.GetProduct(ctx, productID)
}

func (s *service) RemoveProductImage(ctx context.Context, companyID, productID, imageID uuid.UUID) error {
	if _, err := s.ownedProduct(ctx, companyID, productID); err != nil {
		return err
	}
	var removedURL string
	txErr := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		img, err := repo.FindProductImage(ctx, productID, imageID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "image not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load image")
		}
		if err := repo.DeleteProductImage(ctx, productID, imageID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete image")
		}
		removedURL = img.URL
		if !img.IsPrincipal {
			return nil
		}
		// The deleted image was principal, promote the next one if present.
		next, err := repo.FirstProductImage(ctx, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load next image")
		}
		if _, err := repo.PromoteProductImage(ctx, productID, next.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "promote image")
		}
		return nil
	})
	if txErr != nil {
		return txErr
	}
	s.removeImageFile(ctx, removedURL)
	return nil
}

func (s *service) SetPrincipalProductImage(ctx context.Context, companyID, productID, imageID uuid.UUID) error {
	if _, err := s.ownedProduct(ctx, companyID, productID); err != nil {
		return err
	}
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.DemoteProductImages(ctx, productID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "demote gallery")
		}
		rows, err := repo.PromoteProductImage(ctx, productID, imageID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "promote image")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "image not found")
		}
		return nil
	})
}

func (s *service) AddServiceImage(ctx context.Context, companyID, serviceID uuid.UUID, input ImageInput) (*ServiceDTO, error) {
	if strings.TrimSpace(input.URL) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image url is required")
	}
	if err := s.validateImageFile(input.URL); err != nil {
		return nil, err
	}
	if _, err := s.ownedService(ctx, companyID, serviceID); err != nil {
		return nil, err
	}

	txErr := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		count, err := repo.CountServiceImages(ctx, serviceID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count gallery")
		}
		img := &models.ServiceImage{
			ServiceID:   serviceID,
			URL:         strings.TrimSpace(input.URL),
			AltText:     input.AltText,
			IsPrincipal: count == 0,
			Position:    int(count),
		}
		if err := repo.CreateServiceImage(ctx, img); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert image")
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return s.GetService(ctx, serviceID)
}

func (s *service) RemoveServiceImage(ctx context.Context, companyID, serviceID, imageID uuid.UUID) error {
	if _, err := s.ownedService(ctx, companyID, serviceID); err != nil {
		return err
	}
	var removedURL string
	txErr := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		img, err := repo.FindServiceImage(ctx, serviceID, imageID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "image not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load image")
		}
		if err := repo.DeleteServiceImage(ctx, serviceID, imageID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete image")
		}
		removedURL = img.URL
		if !img.IsPrincipal {
			return nil
		}
		next, err := repo.FirstServiceImage(ctx, serviceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load next image")
		}
		if _, err := repo.PromoteServiceImage(ctx, serviceID, next.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "promote image")
		}
		return nil
	})
	if txErr != nil {
		return txErr
	}
	s.removeImageFile(ctx, removedURL)
	return nil
}

func (s *service) SetPrincipalServiceImage(ctx context.Context, companyID, serviceID, imageID uuid.UUID) error {
	if _, err := s.ownedService(ctx, companyID, serviceID); err != nil {
		return err
	}
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.DemoteServiceImages(ctx, serviceID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "demote gallery")
		}
		rows, err := repo.PromoteServiceImage(ctx, serviceID, imageID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "promote image")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "image not found")
		}
		return nil
	})
}

// Categories serves the public category index, cached in redis when a cache
// is configured. Cache failures fall through to the database.
func (s *service) Categories(ctx context.Context) ([]CategoryCount, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, s.cache.CategorySummaryKey())
		if err == nil {
			var cached []CategoryCount
			if jsonErr := json.Unmarshal([]byte(raw), &cached); jsonErr == nil {
				return cached, nil
			}
		} else if !redis.IsNil(err) && s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "category cache read failed")
		}
	}

	counts, err := s.repo.CategoryCounts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate categories")
	}

	if s.cache != nil {
		if payload, err := json.Marshal(counts); err == nil {
			if err := s.cache.Set(ctx, s.cache.CategorySummaryKey(), string(payload), s.categoryTTL); err != nil && s.logg != nil {
				s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "category cache write failed")
			}
		}
	}
	return counts, nil
}

func (s *service) ownedProduct(ctx context.Context, companyID, productID uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	// Not-owned rows answer not found so existence never leaks.
	if product.CompanyID != companyID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

func (s *service) ownedService(ctx context.Context, companyID, serviceID uuid.UUID) (*models.ServiceOffering, error) {
	svc, err := s.repo.FindServiceByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load service")
	}
	if svc.CompanyID != companyID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
	}
	return svc, nil
}

func newProductListResult(rows []models.Product, next string) *ProductListResult {
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *NewProductDTO(&rows[i]))
	}
	return &ProductListResult{Products: out, NextCursor: next}
}

func newServiceListResult(rows []models.ServiceOffering, next string) *ServiceListResult {
	out := make([]ServiceDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *NewServiceDTO(&rows[i]))
	}
	return &ServiceListResult{Services: out, NextCursor: next}
}

func validateListingBasics(name, category string, price decimal.Decimal) error {
	if strings.TrimSpace(name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if strings.TrimSpace(category) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	}
	if !price.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be greater than zero")
	}
	return nil
}

func normalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}
