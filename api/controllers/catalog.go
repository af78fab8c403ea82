package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/teomanager/teomanager-backend/api/middleware"
	"github.com/teomanager/teomanager-backend/api/responses"
	"github.com/teomanager/teomanager-backend/api/validators"
	catalogsvc "github.com/teomanager/teomanager-backend/internal/catalog"
	"github.com/teomanager/teomanager-backend/pkg/logger"
	"github.com/teomanager/teomanager-backend/pkg/types"
)

type createProductRequest struct {
	Name           string          `json:"name" validate:"required"`
	Description    string          `json:"description"`
	Category       string          `json:"category" validate:"required"`
	Price          decimal.Decimal `json:"price" validate:"required"`
	Stock          int             `json:"stock" validate:"min=0"`
	IsActive       *bool           `json:"is_active,omitempty"`
	ShippingPolicy *types.Policy   `json:"shipping_policy,omitempty"`
	ReturnsPolicy  *types.Policy   `json:"returns_policy,omitempty"`
}

type updateProductRequest struct {
	Name           *string          `json:"name,omitempty"`
	Description    *string          `json:"description,omitempty"`
	Category       *string          `json:"category,omitempty"`
	Price          *decimal.Decimal `json:"price,omitempty"`
	Stock          *int             `json:"stock,omitempty"`
	IsActive       *bool            `json:"is_active,omitempty"`
	ShippingPolicy *types.Policy    `json:"shipping_policy,omitempty"`
	ReturnsPolicy  *types.Policy    `json:"returns_policy,omitempty"`
}

// VendorCreateProduct creates a product owned by the authenticated company.
func VendorCreateProduct(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), middleware.UserIDFromContext(r.Context()), catalogsvc.CreateProductInput{
			Name:           payload.Name,
			Description:    payload.Description,
			Category:       payload.Category,
			Price:          payload.Price,
			Stock:          payload.Stock,
			IsActive:       payload.IsActive,
			ShippingPolicy: payload.ShippingPolicy,
			ReturnsPolicy:  payload.ReturnsPolicy,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

func VendorUpdateProduct(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParsePathUUID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), middleware.UserIDFromContext(r.Context()), productID, catalogsvc.UpdateProductInput{
			Name:           payload.Name,
			Description:    payload.Description,
			Category:       payload.Category,
			Price:          payload.Price,
			Stock:          payload.Stock,
			IsActive:       payload.IsActive,
			ShippingPolicy: payload.ShippingPolicy,
			ReturnsPolicy:  payload.ReturnsPolicy,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func VendorDeleteProduct(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParsePathUUID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteProduct(r.Context(), middleware.UserIDFromContext(r.Context()), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// VendorListProducts pages through the company's own listings, inactive
// ones included.
func VendorListProducts(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := browseInputFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.ListCompanyProducts(r.Context(), middleware.UserIDFromContext(r.Context()), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type createServiceRequest struct {
	Name               string          `json:"name" validate:"required"`
	Description        string          `json:"description"`
	Category           string          `json:"category" validate:"required"`
	Price              decimal.Decimal `json:"price" validate:"required"`
	Duration           string          `json:"duration"`
	IsActive           *bool           `json:"is_active,omitempty"`
	BookingPolicy      *types.Policy   `json:"booking_policy,omitempty"`
	CancellationPolicy *types.Policy   `json:"cancellation_policy,omitempty"`
}

type updateServiceRequest struct {
	Name               *string          `json:"name,omitempty"`
	Description        *string          `json:"description,omitempty"`
	Category           *string          `json:"category,omitempty"`
	Price              *decimal.Decimal `json:"price,omitempty"`
	Duration           *string          `json:"duration,omitempty"`
	IsActive           *bool            `json:"is_active,omitempty"`
	BookingPolicy      *types.Policy    `json:"booking_policy,omitempty"`
	CancellationPolicy *types.Policy    `json:"cancellation_policy,omitempty"`
}

func VendorCreateService(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createServiceRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		service, err := svc.CreateService(r.Context(), middleware.UserIDFromContext(r.Context()), catalogsvc.CreateServiceInput{
			Name:               payload.Name,
			Description:        payload.Description,
			Category:           payload.Category,
			Price:              payload.Price,
			Duration:           payload.Duration,
			IsActive:           payload.IsActive,
			BookingPolicy:      payload.BookingPolicy,
			CancellationPolicy: payload.CancellationPolicy,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, service)
	}
}

func VendorUpdateService(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serviceID, err := validators.ParsePathUUID(chi.URLParam(r, "serviceID"), "serviceID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateServiceRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		service, err := svc.UpdateService(r.Context(), middleware.UserIDFromContext(r.Context()), serviceID, catalogsvc.UpdateServiceInput{
			Name:               payload.Name,
			Description:        payload.Description,
			Category:           payload.Category,
			Price:              payload.Price,
			Duration:           payload.Duration,
			IsActive:           payload.IsActive,
			BookingPolicy:      payload.BookingPolicy,
			CancellationPolicy: payload.CancellationPolicy,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, service)
	}
}

func VendorDeleteService(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serviceID, err := validators.ParsePathUUID(chi.URLParam(r, "serviceID"), "serviceID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteService(r.Context(), middleware.UserIDFromContext(r.Context()), serviceID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func VendorListServices(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := browseInputFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.ListCompanyServices(r.Context(), middleware.UserIDFromContext(r.Context()), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
