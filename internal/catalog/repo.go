package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/teomanager/teomanager-backend/pkg/db/models"
	"github.com/teomanager/teomanager-backend/pkg/enums"
	"github.com/teomanager/teomanager-backend/pkg/pagination"
)

// Repository wires together catalog persistence for products, services and
// their image galleries.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// CreateProduct inserts a new product row.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// FindProductByID loads a product with its gallery ordered by position.
func (r *Repository) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// UpdateProduct applies column updates to a product row.
func (r *Repository) UpdateProduct(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// DeleteProduct removes the product; images cascade.
func (r *Repository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("product_id = ?", id).Delete(&models.ProductImage{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", id).Delete(&models.Product{}).Error
}

// CreateService inserts a new service row.
func (r *Repository) CreateService(ctx context.Context, svc *models.ServiceOffering) error {
	return r.db.WithContext(ctx).Create(svc).Error
}

// FindServiceByID loads a service with its gallery ordered by position.
func (r *Repository) FindServiceByID(ctx context.Context, id uuid.UUID) (*models.ServiceOffering, error) {
	var svc models.ServiceOffering
	err := r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&svc, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &svc, nil
}

// UpdateService applies column updates to a service row.
func (r *Repository) UpdateService(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.ServiceOffering{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// DeleteService removes the service; images cascade.
func (r *Repository) DeleteService(ctx context.Context, id uuid.UUID) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("service_id = ?", id).Delete(&models.ServiceImage{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", id).Delete(&models.ServiceOffering{}).Error
}

// CountOwned reports how many live resources of a kind the company owns.
// Only active listings consume quota; deactivating a product frees its
// slot. Landing pages count toward plan quotas too, so they are covered
// here.
func (r *Repository) CountOwned(ctx context.Context, companyID uuid.UUID, kind enums.ResourceKind) (int64, error) {
	var count int64
	qb := r.db.WithContext(ctx)
	switch kind {
	case enums.ResourceKindProduct:
		qb = qb.Model(&models.Product{}).Where("is_active = ?", true)
	case enums.ResourceKindService:
		qb = qb.Model(&models.ServiceOffering{}).Where("is_active = ?", true)
	case enums.ResourceKindLandingPage:
		qb = qb.Model(&models.LandingPage{})
	default:
		return 0, gorm.ErrRecordNotFound
	}
	err := qb.Where("company_id = ?", companyID).Count(&count).Error
	return count, err
}

// DecrementStock takes qty units off a product if enough remain. Zero rows
// affected means the stock check failed under the current transaction.
func (r *Repository) DecrementStock(ctx context.Context, productID uuid.UUID, qty int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	return res.RowsAffected, res.Error
}

type productListQuery struct {
	Filters    BrowseFilters
	Pagination pagination.Params
	// CompanyOnly lists everything the company owns including inactive rows.
	CompanyOnly *uuid.UUID
}

// ListProducts pages through products newest first using a keyset cursor.
func (r *Repository) ListProducts(ctx context.Context, query productListQuery) ([]models.Product, string, error) {
	pageSize := pagination.NormalizeLimit(query.Pagination.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(query.Pagination.Limit)
	if limitWithBuffer <= pageSize {
		limitWithBuffer = pageSize + 1
	}
	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, "", err
	}

	qb := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		})

	if query.CompanyOnly != nil {
		qb = qb.Where("company_id = ?", *query.CompanyOnly)
	} else {
		qb = qb.Where("is_active = ?", true)
	}
	qb = applyBrowseFilters(qb, query.Filters, "name")
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Product
	if err := qb.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer).Find(&rows).Error; err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, nextCursor, nil
}

type serviceListQuery struct {
	Filters     BrowseFilters
	Pagination  pagination.Params
	CompanyOnly *uuid.UUID
}

// ListServices pages through service listings newest first.
func (r *Repository) ListServices(ctx context.Context, query serviceListQuery) ([]models.ServiceOffering, string, error) {
	pageSize := pagination.NormalizeLimit(query.Pagination.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(query.Pagination.Limit)
	if limitWithBuffer <= pageSize {
		limitWithBuffer = pageSize + 1
	}
	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, "", err
	}

	qb := r.db.WithContext(ctx).
		Model(&models.ServiceOffering{}).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		})

	if query.CompanyOnly != nil {
		qb = qb.Where("company_id = ?", *query.CompanyOnly)
	} else {
		qb = qb.Where("is_active = ?", true)
	}
	qb = applyBrowseFilters(qb, query.Filters, "name")
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.ServiceOffering
	if err := qb.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer).Find(&rows).Error; err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, nextCursor, nil
}

func applyBrowseFilters(qb *gorm.DB, filters BrowseFilters, nameColumn string) *gorm.DB {
	if filters.Category != "" {
		qb = qb.Where("category = ?", filters.Category)
	}
	if filters.CompanyID != nil {
		qb = qb.Where("company_id = ?", *filters.CompanyID)
	}
	if filters.PriceMin != nil {
		qb = qb.Where("price >= ?", *filters.PriceMin)
	}
	if filters.PriceMax != nil {
		qb = qb.Where("price <= ?", *filters.PriceMax)
	}
	if search := strings.TrimSpace(filters.Query); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("(LOWER("+nameColumn+") LIKE ? OR LOWER(description) LIKE ?)", pattern, pattern)
	}
	return qb
}

type categoryCountRecord struct {
	Category string
	Total    int64
}

// CategoryCounts aggregates active listing counts per category.
func (r *Repository) CategoryCounts(ctx context.Context) ([]CategoryCount, error) {
	var productRows []categoryCountRecord
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select("category, COUNT(*) AS total").
		Where("is_active = ?", true).
		Group("category").
		Scan(&productRows).Error
	if err != nil {
		return nil, err
	}

	var serviceRows []categoryCountRecord
	err = r.db.WithContext(ctx).
		Model(&models.ServiceOffering{}).
		Select("category, COUNT(*) AS total").
		Where("is_active = ?", true).
		Group("category").
		Scan(&serviceRows).Error
	if err != nil {
		return nil, err
	}

	merged := map[string]*CategoryCount{}
	order := []string{}
	for _, row := range productRows {
		merged[row.Category] = &CategoryCount{Category: row.Category, Products: row.Total}
		order = append(order, row.Category)
	}
	for _, row := range serviceRows {
		if entry, ok := merged[row.Category]; ok {
			entry.Services = row.Total
			continue
		}
		merged[row.Category] = &CategoryCount{Category: row.Category, Services: row.Total}
		order = append(order, row.Category)
	}

	out := make([]CategoryCount, 0, len(order))
	for _, category := range order {
		out = append(out, *merged[category])
	}
	return out, nil
}

// gallery helpers

// CreateProductImage appends a gallery entry at the next position.
func (r *Repository) CreateProductImage(ctx context.Context, img *models.ProductImage) error {
	return r.db.WithContext(ctx).Create(img).Error
}

// CountProductImages returns the gallery size of a product.
func (r *Repository) CountProductImages(ctx context.Context, productID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ProductImage{}).
		Where("product_id = ?", productID).
		Count(&count).Error
	return count, err
}

// FindProductImage loads one gallery entry scoped to its product.
func (r *Repository) FindProductImage(ctx context.Context, productID, imageID uuid.UUID) (*models.ProductImage, error) {
	var img models.ProductImage
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND id = ?", productID, imageID).
		First(&img).Error
	if err != nil {
		return nil, err
	}
	return &img, nil
}

// DeleteProductImage removes one gallery entry.
func (r *Repository) DeleteProductImage(ctx context.Context, productID, imageID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("product_id = ? AND id = ?", productID, imageID).
		Delete(&models.ProductImage{}).Error
}

// DemoteProductImages clears is_principal across the product's gallery.
func (r *Repository) DemoteProductImages(ctx context.Context, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.ProductImage{}).
		Where("product_id = ?", productID).
		Update("is_principal", false).Error
}

// PromoteProductImage marks one gallery entry as principal.
func (r *Repository) PromoteProductImage(ctx context.Context, productID, imageID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.ProductImage{}).
		Where("product_id = ? AND id = ?", productID, imageID).
		Update("is_principal", true)
	return result.RowsAffected, result.Error
}

// FirstProductImage returns the lowest-position gallery entry, if any.
func (r *Repository) FirstProductImage(ctx context.Context, productID uuid.UUID) (*models.ProductImage, error) {
	var img models.ProductImage
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("position ASC").
		First(&img).Error
	if err != nil {
		return nil, err
	}
	return &img, nil
}

// CreateServiceImage appends a gallery entry at the next position.
func (r *Repository) CreateServiceImage(ctx context.Context, img *models.ServiceImage) error {
	return r.db.WithContext(ctx).Create(img).Error
}

// CountServiceImages returns the gallery size of a service.
func (r *Repository) CountServiceImages(ctx context.Context, serviceID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ServiceImage{}).
		Where("service_id = ?", serviceID).
		Count(&count).Error
	return count, err
}

// FindServiceImage loads one gallery entry scoped to its service.
func (r *Repository) FindServiceImage(ctx context.Context, serviceID, imageID uuid.UUID) (*models.ServiceImage, error) {
	var img models.ServiceImage
	err := r.db.WithContext(ctx).
		Where("service_id = ? AND id = ?", serviceID, imageID).
		First(&img).Error
	if err != nil {
		return nil, err
	}
	return &img, nil
}

// DeleteServiceImage removes one gallery entry.
func (r *Repository) DeleteServiceImage(ctx context.Context, serviceID, imageID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("service_id = ? AND id = ?", serviceID, imageID).
		Delete(&models.ServiceImage{}).Error
}

// DemoteServiceImages clears is_principal across the service's gallery.
func (r *Repository) DemoteServiceImages(ctx context.Context, serviceID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.ServiceImage{}).
		Where("service_id = ?", serviceID).
		Update("is_principal", false).Error
}

// PromoteServiceImage marks one gallery entry as principal.
func (r *Repository) PromoteServiceImage(ctx context.Context, serviceID, imageID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.ServiceImage{}).
		Where("service_id = ? AND id = ?", serviceID, imageID).
		Update("is_principal", true)
	return result.RowsAffected, result.Error
}

// FirstServiceImage returns the lowest-position gallery entry, if any.
func (r *Repository) FirstServiceImage(ctx context.Context, serviceID uuid.UUID) (*models.ServiceImage, error) {
	var img models.ServiceImage
	err := r.db.WithContext(ctx).
		Where("service_id = ?", serviceID).
		Order("position ASC").
		First(&img).Error
	if err != nil {
		return nil, err
	}
	return &img, nil
}
