package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/teomanager/teomanager-backend/api/responses"
	"github.com/teomanager/teomanager-backend/api/validators"
	catalogsvc "github.com/teomanager/teomanager-backend/internal/catalog"
	landingsvc "github.com/teomanager/teomanager-backend/internal/landing"
	pkgerrors "github.com/teomanager/teomanager-backend/pkg/errors"
	"github.com/teomanager/teomanager-backend/pkg/logger"
	"github.com/teomanager/teomanager-backend/pkg/pagination"
)

// browseInputFromQuery maps listing query params onto a catalog browse
// request. Bad cursor values surface later when the service decodes them.
func browseInputFromQuery(r *http.Request) (catalogsvc.BrowseInput, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return catalogsvc.BrowseInput{}, err
	}
	companyID, err := validators.ParseQueryUUID(r, "company_id")
	if err != nil {
		return catalogsvc.BrowseInput{}, err
	}
	priceMin, err := validators.ParseQueryDecimal(r, "price_min")
	if err != nil {
		return catalogsvc.BrowseInput{}, err
	}
	priceMax, err := validators.ParseQueryDecimal(r, "price_max")
	if err != nil {
		return catalogsvc.BrowseInput{}, err
	}

	return catalogsvc.BrowseInput{
		Filters: catalogsvc.BrowseFilters{
			Category:  strings.TrimSpace(r.URL.Query().Get("category")),
			CompanyID: companyID,
			PriceMin:  priceMin,
			PriceMax:  priceMax,
			Query:     strings.TrimSpace(r.URL.Query().Get("q")),
		},
		Pagination: pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		},
	}, nil
}

// BrowseProducts serves the public product listing with filters and
// cursor pagination. Only active listings are returned.
func BrowseProducts(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := browseInputFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.BrowseProducts(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func BrowseServices(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := browseInputFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.BrowseServices(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func GetProduct(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParsePathUUID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.GetProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func GetService(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serviceID, err := validators.ParsePathUUID(chi.URLParam(r, "serviceID"), "serviceID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		service, err := svc.GetService(r.Context(), serviceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, service)
	}
}

// Categories lists the distinct listing categories with per-type counts.
func Categories(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := svc.Categories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, categories)
	}
}

// Featured serves the newest active listings for the storefront front page.
func Featured(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := svc.Featured(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// PublicLanding resolves a published landing page by slug.
func PublicLanding(svc landingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := strings.TrimSpace(chi.URLParam(r, "slug"))
		if slug == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "slug is required"))
			return
		}
		page, err := svc.PublicBySlug(r.Context(), slug)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}
