package landing

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/teomanager/teomanager-backend/pkg/db/models"
)

// Repository persists landing pages.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires the repository to a gorm handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a copy bound to the given transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new page.
func (r *Repository) Create(ctx context.Context, page *models.LandingPage) error {
	return r.db.WithContext(ctx).Create(page).Error
}

// FindByID loads one page.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.LandingPage, error) {
	var page models.LandingPage
	if err := r.db.WithContext(ctx).First(&page, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &page, nil
}

// FindBySlug loads one page by its public slug.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.LandingPage, error) {
	var page models.LandingPage
	if err := r.db.WithContext(ctx).First(&page, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &page, nil
}

// FirstForCompany returns the company's oldest page, its primary one.
func (r *Repository) FirstForCompany(ctx context.Context, companyID uuid.UUID) (*models.LandingPage, error) {
	var page models.LandingPage
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at ASC").Order("id ASC").
		First(&page).Error
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// ListForCompany returns every page the company owns, oldest first.
func (r *Repository) ListForCompany(ctx context.Context, companyID uuid.UUID) ([]models.LandingPage, error) {
	var rows []models.LandingPage
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at ASC").Order("id ASC").
		Find(&rows).Error
	return rows, err
}

// Update applies column updates to one page.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.LandingPage{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// Delete removes one page.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.LandingPage{}).Error
}
