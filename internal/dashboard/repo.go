package dashboard

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/teomanager/teomanager-backend/pkg/db/models"
	"github.com/teomanager/teomanager-backend/pkg/enums"
)

// Repository runs the fixed aggregate queries behind the dashboards. It only
// reads; every write path lives in the owning package.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires the repository to a gorm handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// UserTotals counts accounts by slice of interest.
func (r *Repository) UserTotals(ctx context.Context) (UserTotals, error) {
	var totals UserTotals
	scoped := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.User{})
	}
	if err := scoped().Count(&totals.Total).Error; err != nil {
		return totals, err
	}
	if err := scoped().Where("is_active = ?", true).Count(&totals.Active).Error; err != nil {
		return totals, err
	}
	if err := scoped().Where("account_type = ?", enums.AccountTypeCompany).Count(&totals.Companies).Error; err != nil {
		return totals, err
	}
	if err := scoped().Where("account_type = ?", enums.AccountTypeAdmin).Count(&totals.Admins).Error; err != nil {
		return totals, err
	}
	return totals, nil
}

// ProductAggregates summarizes the products table, optionally scoped to one
// company.
func (r *Repository) ProductAggregates(ctx context.Context, companyID *uuid.UUID) (ListingAggregates, error) {
	return r.listingAggregates(ctx, &models.Product{}, companyID)
}

// ServiceAggregates summarizes the services table, optionally scoped to one
// company.
func (r *Repository) ServiceAggregates(ctx context.Context, companyID *uuid.UUID) (ListingAggregates, error) {
	return r.listingAggregates(ctx, &models.ServiceOffering{}, companyID)
}

func (r *Repository) listingAggregates(ctx context.Context, model any, companyID *uuid.UUID) (ListingAggregates, error) {
	var agg ListingAggregates

	scoped := func() *gorm.DB {
		qb := r.db.WithContext(ctx).Model(model)
		if companyID != nil {
			qb = qb.Where("company_id = ?", *companyID)
		}
		return qb
	}

	if err := scoped().Count(&agg.Total).Error; err != nil {
		return agg, err
	}
	if err := scoped().Where("is_active = ?", true).Count(&agg.Active).Error; err != nil {
		return agg, err
	}
	if err := scoped().Select("COALESCE(AVG(price), 0)").Scan(&agg.AvgPrice).Error; err != nil {
		return agg, err
	}
	agg.AvgPrice = agg.AvgPrice.Round(2)
	return agg, nil
}
