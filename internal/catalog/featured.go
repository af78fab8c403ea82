package catalog

import (
	"context"

	"gorm.io/gorm"

	"github.com/teomanager/teomanager-backend/pkg/db/models"
	pkgerrors "github.com/teomanager/teomanager-backend/pkg/errors"
)

const featuredLimit = 6

// FeaturedResult carries the newest active listings of each kind for the
// storefront front page.
type FeaturedResult struct {
	Products []ProductDTO `json:"products"`
	Services []ServiceDTO `json:"services"`
}

func (s *service) Featured(ctx context.Context) (*FeaturedResult, error) {
	products, err := s.repo.RecentProducts(ctx, featuredLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: featured products")
	}
	services, err := s.repo.RecentServices(ctx, featuredLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: featured services")
	}

	out := &FeaturedResult{
		Products: make([]ProductDTO, 0, len(products)),
		Services: make([]ServiceDTO, 0, len(services)),
	}
	for i := range products {
		out.Products = append(out.Products, *NewProductDTO(&products[i]))
	}
	for i := range services {
		out.Services = append(out.Services, *NewServiceDTO(&services[i]))
	}
	return out, nil
}

// RecentProducts returns the newest active products with their galleries.
func (r *Repository) RecentProducts(ctx context.Context, limit int) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("is_active = ?", true).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// RecentServices returns the newest active service listings with their
// galleries.
func (r *Repository) RecentServices(ctx context.Context, limit int) ([]models.ServiceOffering, error) {
	var rows []models.ServiceOffering
	err := r.db.WithContext(ctx).
		Model(&models.ServiceOffering{}).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("is_active = ?", true).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
