package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IDs are assigned app-side so inserts behave the same on Postgres and the
// sqlite databases the tests run against.

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (u *User) BeforeCreate(_ *gorm.DB) error            { ensureID(&u.ID); return nil }
func (p *Profile) BeforeCreate(_ *gorm.DB) error         { ensureID(&p.ID); return nil }
func (s *Subscription) BeforeCreate(_ *gorm.DB) error    { ensureID(&s.ID); return nil }
func (p *Product) BeforeCreate(_ *gorm.DB) error         { ensureID(&p.ID); return nil }
func (s *ServiceOffering) BeforeCreate(_ *gorm.DB) error { ensureID(&s.ID); return nil }
func (p *ProductImage) BeforeCreate(_ *gorm.DB) error    { ensureID(&p.ID); return nil }
func (s *ServiceImage) BeforeCreate(_ *gorm.DB) error    { ensureID(&s.ID); return nil }
func (o *Order) BeforeCreate(_ *gorm.DB) error           { ensureID(&o.ID); return nil }
func (l *OrderLine) BeforeCreate(_ *gorm.DB) error       { ensureID(&l.ID); return nil }
func (m *OrderMessage) BeforeCreate(_ *gorm.DB) error    { ensureID(&m.ID); return nil }
func (l *LandingPage) BeforeCreate(_ *gorm.DB) error     { ensureID(&l.ID); return nil }
func (e *EmailOutbox) BeforeCreate(_ *gorm.DB) error     { ensureID(&e.ID); return nil }
func (d *EmailOutboxDLQ) BeforeCreate(_ *gorm.DB) error  { ensureID(&d.ID); return nil }
