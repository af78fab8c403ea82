package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/teomanager/teomanager-backend/api/middleware"
	"github.com/teomanager/teomanager-backend/api/responses"
	"github.com/teomanager/teomanager-backend/api/validators"
	catalogsvc "github.com/teomanager/teomanager-backend/internal/catalog"
	"github.com/teomanager/teomanager-backend/pkg/logger"
)

type addImageRequest struct {
	URL     string `json:"url" validate:"required"`
	AltText string `json:"alt_text"`
}

func VendorAddProductImage(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParsePathUUID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addImageRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.AddProductImage(r.Context(), middleware.UserIDFromContext(r.Context()), productID, catalogsvc.ImageInput{
			URL:     payload.URL,
			AltText: payload.AltText,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

func VendorRemoveProductImage(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, imageID, err := listingImageIDs(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.RemoveProductImage(r.Context(), middleware.UserIDFromContext(r.Context()), productID, imageID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func VendorSetPrincipalProductImage(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, imageID, err := listingImageIDs(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.SetPrincipalProductImage(r.Context(), middleware.UserIDFromContext(r.Context()), productID, imageID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "updated"})
	}
}

func VendorAddServiceImage(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serviceID, err := validators.ParsePathUUID(chi.URLParam(r, "serviceID"), "serviceID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addImageRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		service, err := svc.AddServiceImage(r.Context(), middleware.UserIDFromContext(r.Context()), serviceID, catalogsvc.ImageInput{
			URL:     payload.URL,
			AltText: payload.AltText,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, service)
	}
}

func VendorRemoveServiceImage(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serviceID, imageID, err := listingImageIDs(r, "serviceID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.RemoveServiceImage(r.Context(), middleware.UserIDFromContext(r.Context()), serviceID, imageID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func VendorSetPrincipalServiceImage(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serviceID, imageID, err := listingImageIDs(r, "serviceID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.SetPrincipalServiceImage(r.Context(), middleware.UserIDFromContext(r.Context()), serviceID, imageID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "updated"})
	}
}

func listingImageIDs(r *http.Request, listingParam string) (uuid.UUID, uuid.UUID, error) {
	listingID, err := validators.ParsePathUUID(chi.URLParam(r, listingParam), listingParam)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	imageID, err := validators.ParsePathUUID(chi.URLParam(r, "imageID"), "imageID")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return listingID, imageID, nil
}
