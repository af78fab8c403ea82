package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/teomanager/teomanager-backend/pkg/enums"
)

// LandingPage is the public storefront page of a company. Companies can own
// several pages subject to their plan quota.
type LandingPage struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CompanyID uuid.UUID `gorm:"column:company_id;type:uuid;not null;index"`
	Slug      string    `gorm:"column:slug;not null;uniqueIndex"`

	Title          string  `gorm:"column:title;not null"`
	Description    string  `gorm:"column:description;not null;default:''"`
	HeroSubtitle   string  `gorm:"column:hero_subtitle;not null;default:''"`
	HeroButtonText string  `gorm:"column:hero_button_text;not null;default:'Ver Catálogo'"`
	HeroButtonURL  string  `gorm:"column:hero_button_url;not null;default:''"`
	HeroImageURL   *string `gorm:"column:hero_image_url"`
	Content        string  `gorm:"column:content;not null;default:''"`

	AboutTitle        string `gorm:"column:about_title;not null;default:'Sobre Nosotros'"`
	AboutText         string `gorm:"column:about_text;not null;default:''"`
	ProductsTitle     string `gorm:"column:products_title;not null;default:'Nuestros Productos'"`
	ProductsSubtitle  string `gorm:"column:products_subtitle;not null;default:''"`
	ServicesTitle     string `gorm:"column:services_title;not null;default:'Nuestros Servicios'"`
	ServicesSubtitle  string `gorm:"column:services_subtitle;not null;default:''"`
	TestimonialsTitle string `gorm:"column:testimonials_title;not null;default:'Lo que dicen nuestros clientes'"`
	TestimonialsText  string `gorm:"column:testimonials_text;not null;default:''"`
	ContactTitle      string `gorm:"column:contact_title;not null;default:'¿Listo para comenzar?'"`
	ContactText       string `gorm:"column:contact_text;not null;default:''"`
	ContactButtonText string `gorm:"column:contact_button_text;not null;default:'Contáctanos'"`
	ContactButtonURL  string `gorm:"column:contact_button_url;not null;default:''"`

	Template       enums.LandingTemplate `gorm:"column:template;type:landing_template;not null;default:'classic';index"`
	PrimaryColor   string                `gorm:"column:primary_color;not null;default:'#2563eb'"`
	SecondaryColor string                `gorm:"column:secondary_color;not null;default:'#22c55e'"`
	Highlights     pq.StringArray        `gorm:"column:highlights;type:text[]"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
