package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/teomanager/teomanager-backend/api/middleware"
	"github.com/teomanager/teomanager-backend/api/responses"
	"github.com/teomanager/teomanager-backend/api/validators"
	landingsvc "github.com/teomanager/teomanager-backend/internal/landing"
	"github.com/teomanager/teomanager-backend/pkg/logger"
)

type landingSectionsRequest struct {
	HeroSubtitle   *string `json:"hero_subtitle,omitempty"`
	HeroButtonText *string `json:"hero_button_text,omitempty"`
	HeroButtonURL  *string `json:"hero_button_url,omitempty"`
	HeroImageURL   *string `json:"hero_image_url,omitempty"`
	Content        *string `json:"content,omitempty"`

	AboutTitle        *string `json:"about_title,omitempty"`
	AboutText         *string `json:"about_text,omitempty"`
	ProductsTitle     *string `json:"products_title,omitempty"`
	ProductsSubtitle  *string `json:"products_subtitle,omitempty"`
	ServicesTitle     *string `json:"services_title,omitempty"`
	ServicesSubtitle  *string `json:"services_subtitle,omitempty"`
	TestimonialsTitle *string `json:"testimonials_title,omitempty"`
	TestimonialsText  *string `json:"testimonials_text,omitempty"`
	ContactTitle      *string `json:"contact_title,omitempty"`
	ContactText       *string `json:"contact_text,omitempty"`
	ContactButtonText *string `json:"contact_button_text,omitempty"`
	ContactButtonURL  *string `json:"contact_button_url,omitempty"`
}

func (p *landingSectionsRequest) overrides() landingsvc.SectionOverrides {
	if p == nil {
		return landingsvc.SectionOverrides{}
	}
	return landingsvc.SectionOverrides{
		HeroSubtitle:      p.HeroSubtitle,
		HeroButtonText:    p.HeroButtonText,
		HeroButtonURL:     p.HeroButtonURL,
		HeroImageURL:      p.HeroImageURL,
		Content:           p.Content,
		AboutTitle:        p.AboutTitle,
		AboutText:         p.AboutText,
		ProductsTitle:     p.ProductsTitle,
		ProductsSubtitle:  p.ProductsSubtitle,
		ServicesTitle:     p.ServicesTitle,
		ServicesSubtitle:  p.ServicesSubtitle,
		TestimonialsTitle: p.TestimonialsTitle,
		TestimonialsText:  p.TestimonialsText,
		ContactTitle:      p.ContactTitle,
		ContactText:       p.ContactText,
		ContactButtonText: p.ContactButtonText,
		ContactButtonURL:  p.ContactButtonURL,
	}
}

type createLandingRequest struct {
	Slug        string  `json:"slug"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Template    *string `json:"template,omitempty"`

	PrimaryColor   *string  `json:"primary_color,omitempty"`
	SecondaryColor *string  `json:"secondary_color,omitempty"`
	Highlights     []string `json:"highlights,omitempty"`

	Sections *landingSectionsRequest `json:"sections,omitempty"`
}

type updateLandingRequest struct {
	Slug        *string `json:"slug,omitempty"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Template    *string `json:"template,omitempty"`

	PrimaryColor   *string  `json:"primary_color,omitempty"`
	SecondaryColor *string  `json:"secondary_color,omitempty"`
	Highlights     []string `json:"highlights,omitempty"`

	Sections *landingSectionsRequest `json:"sections,omitempty"`
}

// LandingGetPrimary returns the company's landing page, creating one with
// defaults on first access.
func LandingGetPrimary(svc landingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := svc.GetPrimary(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func LandingList(svc landingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pages, err := svc.List(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pages)
	}
}

func LandingCreate(svc landingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createLandingRequest
		if err := validators.DecodeOptionalJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.Create(r.Context(), middleware.UserIDFromContext(r.Context()), landingsvc.CreateInput{
			Slug:           payload.Slug,
			Title:          payload.Title,
			Description:    payload.Description,
			Template:       payload.Template,
			PrimaryColor:   payload.PrimaryColor,
			SecondaryColor: payload.SecondaryColor,
			Highlights:     payload.Highlights,
			Sections:       payload.Sections.overrides(),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, page)
	}
}

func LandingUpdate(svc landingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pageID, err := validators.ParsePathUUID(chi.URLParam(r, "pageID"), "pageID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateLandingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.Update(r.Context(), middleware.UserIDFromContext(r.Context()), pageID, landingsvc.UpdateInput{
			Slug:           payload.Slug,
			Title:          payload.Title,
			Description:    payload.Description,
			Template:       payload.Template,
			PrimaryColor:   payload.PrimaryColor,
			SecondaryColor: payload.SecondaryColor,
			Highlights:     payload.Highlights,
			Sections:       payload.Sections.overrides(),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func LandingDelete(svc landingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pageID, err := validators.ParsePathUUID(chi.URLParam(r, "pageID"), "pageID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), middleware.UserIDFromContext(r.Context()), pageID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
