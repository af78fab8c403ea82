package landing

import (
	"time"

	"github.com/google/uuid"

	"github.com/teomanager/teomanager-backend/pkg/db/models"
)

// SectionOverrides carries optional copy for the page sections. Nil fields
// keep the rendered defaults.
type SectionOverrides struct {
	HeroSubtitle   *string
	HeroButtonText *string
	HeroButtonURL  *string
	HeroImageURL   *string
	Content        *string

	AboutTitle        *string
	AboutText         *string
	ProductsTitle     *string
	ProductsSubtitle  *string
	ServicesTitle     *string
	ServicesSubtitle  *string
	TestimonialsTitle *string
	TestimonialsText  *string
	ContactTitle      *string
	ContactText       *string
	ContactButtonText *string
	ContactButtonURL  *string
}

// columns maps each set override onto its column name.
func (o SectionOverrides) columns() map[string]any {
	fields := map[string]*string{
		"hero_subtitle":    o.HeroSubtitle,
		"hero_button_text": o.HeroButtonText,
		"hero_button_url":  o.HeroButtonURL,
		"hero_image_url":   o.HeroImageURL,
		"content":          o.Content,

		"about_title":         o.AboutTitle,
		"about_text":          o.AboutText,
		"products_title":      o.ProductsTitle,
		"products_subtitle":   o.ProductsSubtitle,
		"services_title":      o.ServicesTitle,
		"services_subtitle":   o.ServicesSubtitle,
		"testimonials_title":  o.TestimonialsTitle,
		"testimonials_text":   o.TestimonialsText,
		"contact_title":       o.ContactTitle,
		"contact_text":        o.ContactText,
		"contact_button_text": o.ContactButtonText,
		"contact_button_url":  o.ContactButtonURL,
	}
	columns := map[string]any{}
	for column, value := range fields {
		if value != nil {
			columns[column] = *value
		}
	}
	return columns
}

// CreateInput carries a new landing page. Unset fields keep the model's
// section defaults.
type CreateInput struct {
	Slug        string
	Title       string
	Description string
	Template    *string

	PrimaryColor   *string
	SecondaryColor *string
	Highlights     []string

	Sections SectionOverrides
}

// UpdateInput carries a partial update; nil fields are left untouched.
type UpdateInput struct {
	Slug        *string
	Title       *string
	Description *string
	Template    *string

	PrimaryColor   *string
	SecondaryColor *string
	Highlights     []string

	Sections SectionOverrides
}

// LandingDTO is the API shape of a landing page.
type LandingDTO struct {
	ID        uuid.UUID `json:"id"`
	CompanyID uuid.UUID `json:"company_id"`
	Slug      string    `json:"slug"`

	Title          string  `json:"title"`
	Description    string  `json:"description"`
	HeroSubtitle   string  `json:"hero_subtitle"`
	HeroButtonText string  `json:"hero_button_text"`
	HeroButtonURL  string  `json:"hero_button_url"`
	HeroImageURL   *string `json:"hero_image_url,omitempty"`
	Content        string  `json:"content"`

	AboutTitle        string `json:"about_title"`
	AboutText         string `json:"about_text"`
	ProductsTitle     string `json:"products_title"`
	ProductsSubtitle  string `json:"products_subtitle"`
	ServicesTitle     string `json:"services_title"`
	ServicesSubtitle  string `json:"services_subtitle"`
	TestimonialsTitle string `json:"testimonials_title"`
	TestimonialsText  string `json:"testimonials_text"`
	ContactTitle      string `json:"contact_title"`
	ContactText       string `json:"contact_text"`
	ContactButtonText string `json:"contact_button_text"`
	ContactButtonURL  string `json:"contact_button_url"`

	Template       string   `json:"template"`
	PrimaryColor   string   `json:"primary_color"`
	SecondaryColor string   `json:"secondary_color"`
	Highlights     []string `json:"highlights"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewLandingDTO maps a persisted page into its API shape.
func NewLandingDTO(page *models.LandingPage) *LandingDTO {
	return &LandingDTO{
		ID:        page.ID,
		CompanyID: page.CompanyID,
		Slug:      page.Slug,

		Title:          page.Title,
		Description:    page.Description,
		HeroSubtitle:   page.HeroSubtitle,
		HeroButtonText: page.HeroButtonText,
		HeroButtonURL:  page.HeroButtonURL,
		HeroImageURL:   page.HeroImageURL,
		Content:        page.Content,

		AboutTitle:        page.AboutTitle,
		AboutText:         page.AboutText,
		ProductsTitle:     page.ProductsTitle,
		ProductsSubtitle:  page.ProductsSubtitle,
		ServicesTitle:     page.ServicesTitle,
		ServicesSubtitle:  page.ServicesSubtitle,
		TestimonialsTitle: page.TestimonialsTitle,
		TestimonialsText:  page.TestimonialsText,
		ContactTitle:      page.ContactTitle,
		ContactText:       page.ContactText,
		ContactButtonText: page.ContactButtonText,
		ContactButtonURL:  page.ContactButtonURL,

		Template:       page.Template.String(),
		PrimaryColor:   page.PrimaryColor,
		SecondaryColor: page.SecondaryColor,
		Highlights:     append([]string{}, page.Highlights...),

		CreatedAt: page.CreatedAt,
		UpdatedAt: page.UpdatedAt,
	}
}
