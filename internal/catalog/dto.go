package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/teomanager/teomanager-backend/pkg/db/models"
	"github.com/teomanager/teomanager-backend/pkg/types"
)

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name           string
	Description    string
	Category       string
	Price          decimal.Decimal
	Stock          int
	IsActive       *bool
	ShippingPolicy *types.Policy
	ReturnsPolicy  *types.Policy
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name           *string
	Description    *string
	Category       *string
	Price          *decimal.Decimal
	Stock          *int
	IsActive       *bool
	ShippingPolicy *types.Policy
	ReturnsPolicy  *types.Policy
}

// CreateServiceInput holds the validated payload to create a service listing.
type CreateServiceInput struct {
	Name               string
	Description        string
	Category           string
	Price              decimal.Decimal
	Duration           string
	IsActive           *bool
	BookingPolicy      *types.Policy
	CancellationPolicy *types.Policy
}

// UpdateServiceInput holds optional mutation values for a service listing.
type UpdateServiceInput struct {
	Name               *string
	Description        *string
	Category           *string
	Price              *decimal.Decimal
	Duration           *string
	IsActive           *bool
	BookingPolicy      *types.Policy
	CancellationPolicy *types.Policy
}

// ImageInput describes one gallery entry to attach to a listing.
type ImageInput struct {
	URL     string
	AltText string
}

// ImageDTO is the outward representation of a gallery entry.
type ImageDTO struct {
	ID          uuid.UUID `json:"id"`
	URL         string    `json:"url"`
	AltText     string    `json:"alt_text"`
	IsPrincipal bool      `json:"is_principal"`
	Position    int       `json:"position"`
}

// ProductDTO is the outward representation of a product listing.
type ProductDTO struct {
	ID             uuid.UUID          `json:"id"`
	CompanyID      uuid.UUID          `json:"company_id"`
	Name           string             `json:"name"`
	Description    string             `json:"description"`
	Category       string             `json:"category"`
	Price          decimal.Decimal    `json:"price"`
	Stock          int                `json:"stock"`
	IsActive       bool               `json:"is_active"`
	ShippingPolicy []types.PolicyItem `json:"shipping_policy"`
	ReturnsPolicy  []types.PolicyItem `json:"returns_policy"`
	Images         []ImageDTO         `json:"images"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// ServiceDTO is the outward representation of a service listing.
type ServiceDTO struct {
	ID                 uuid.UUID          `json:"id"`
	CompanyID          uuid.UUID          `json:"company_id"`
	Name               string             `json:"name"`
	Description        string             `json:"description"`
	Category           string             `json:"category"`
	Price              decimal.Decimal    `json:"price"`
	Duration           string             `json:"duration"`
	IsActive           bool               `json:"is_active"`
	BookingPolicy      []types.PolicyItem `json:"booking_policy"`
	CancellationPolicy []types.PolicyItem `json:"cancellation_policy"`
	Images             []ImageDTO         `json:"images"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// CategoryCount is one entry of the public category index.
type CategoryCount struct {
	Category string `json:"category"`
	Products int64  `json:"products"`
	Services int64  `json:"services"`
}

// NewProductDTO maps a persisted product to its DTO, applying policy
// defaults for listings without overrides.
func NewProductDTO(product *models.Product) *ProductDTO {
	if product == nil {
		return nil
	}
	return &ProductDTO{
		ID:             product.ID,
		CompanyID:      product.CompanyID,
		Name:           product.Name,
		Description:    product.Description,
		Category:       product.Category,
		Price:          product.Price,
		Stock:          product.Stock,
		IsActive:       product.IsActive,
		ShippingPolicy: product.ShippingPolicy.Resolve(types.DefaultShippingPolicy),
		ReturnsPolicy:  product.ReturnsPolicy.Resolve(types.DefaultReturnsPolicy),
		Images:         newProductImageDTOs(product.Images),
		CreatedAt:      product.CreatedAt,
		UpdatedAt:      product.UpdatedAt,
	}
}

// NewServiceDTO maps a persisted service listing to its DTO.
func NewServiceDTO(svc *models.ServiceOffering) *ServiceDTO {
	if svc == nil {
		return nil
	}
	return &ServiceDTO{
		ID:                 svc.ID,
		CompanyID:          svc.CompanyID,
		Name:               svc.Name,
		Description:        svc.Description,
		Category:           svc.Category,
		Price:              svc.Price,
		Duration:           svc.Duration,
		IsActive:           svc.IsActive,
		BookingPolicy:      svc.BookingPolicy.Resolve(types.DefaultBookingPolicy),
		CancellationPolicy: svc.CancellationPolicy.Resolve(types.DefaultCancellationPolicy),
		Images:             newServiceImageDTOs(svc.Images),
		CreatedAt:          svc.CreatedAt,
		UpdatedAt:          svc.UpdatedAt,
	}
}

func newProductImageDTOs(images []models.ProductImage) []ImageDTO {
	out := make([]ImageDTO, 0, len(images))
	for _, img := range images {
		out = append(out, ImageDTO{
			ID:          img.ID,
			URL:         img.URL,
			AltText:     img.AltText,
			IsPrincipal: img.IsPrincipal,
			Position:    img.Position,
		})
	}
	return out
}

func newServiceImageDTOs(images []models.ServiceImage) []ImageDTO {
	out := make([]ImageDTO, 0, len(images))
	for _, img := range images {
		out = append(out, ImageDTO{
			ID:          img.ID,
			URL:         img.URL,
			AltText:     img.AltText,
			IsPrincipal: img.IsPrincipal,
			Position:    img.Position,
		})
	}
	return out
}
