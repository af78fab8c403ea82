package accounts

import (
	"time"

	"github.com/google/uuid"

	"github.com/teomanager/teomanager-backend/pkg/db/models"
	"github.com/teomanager/teomanager-backend/pkg/enums"
	"github.com/teomanager/teomanager-backend/pkg/types"
)

// RegisterRequest contains the payload required for onboarding an account.
// CompanyName is required for company accounts and ignored for consumers.
type RegisterRequest struct {
	FirstName   string            `json:"first_name" validate:"required"`
	LastName    string            `json:"last_name" validate:"required"`
	Email       string            `json:"email" validate:"required,email"`
	Password    string            `json:"password" validate:"required,min=8"`
	AccountType enums.AccountType `json:"account_type" validate:"required"`
	CompanyName *string           `json:"company_name,omitempty"`
	Phone       *string           `json:"phone,omitempty"`
	AcceptTOS   bool              `json:"accept_tos"`
}

// UpdateProfileRequest carries partial profile updates. Nil fields are left
// untouched.
type UpdateProfileRequest struct {
	FirstName   *string            `json:"first_name,omitempty"`
	LastName    *string            `json:"last_name,omitempty"`
	AccountType *enums.AccountType `json:"account_type,omitempty"`
	CompanyName *string            `json:"company_name,omitempty"`
	Description *string            `json:"description,omitempty"`
	Phone       *string            `json:"phone,omitempty"`
	Address     *string            `json:"address,omitempty"`
	City        *string            `json:"city,omitempty"`
	Country     *string            `json:"country,omitempty"`
	LogoURL     *string            `json:"logo_url,omitempty"`
	Social      *types.Social      `json:"social,omitempty"`
}

// AccountDTO is the outward representation of a user and their profile.
type AccountDTO struct {
	ID          uuid.UUID         `json:"id"`
	Email       string            `json:"email"`
	FirstName   string            `json:"first_name"`
	LastName    string            `json:"last_name"`
	AccountType enums.AccountType `json:"account_type"`
	IsActive    bool              `json:"is_active"`
	LastLoginAt *time.Time        `json:"last_login_at,omitempty"`
	Profile     *ProfileDTO       `json:"profile,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// ProfileDTO is the outward representation of the extended contact details.
type ProfileDTO struct {
	CompanyName *string      `json:"company_name,omitempty"`
	Description *string      `json:"description,omitempty"`
	Phone       *string      `json:"phone,omitempty"`
	Address     *string      `json:"address,omitempty"`
	City        *string      `json:"city,omitempty"`
	Country     *string      `json:"country,omitempty"`
	LogoURL     *string      `json:"logo_url,omitempty"`
	Social      types.Social `json:"social"`
}

// FromModel maps a persisted user to its DTO.
func FromModel(user *models.User) *AccountDTO {
	if user == nil {
		return nil
	}
	dto := &AccountDTO{
		ID:          user.ID,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		AccountType: user.AccountType,
		IsActive:    user.IsActive,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
	if user.Profile != nil {
		dto.Profile = &ProfileDTO{
			CompanyName: user.Profile.CompanyName,
			Description: user.Profile.Description,
			Phone:       user.Profile.Phone,
			Address:     user.Profile.Address,
			City:        user.Profile.City,
			Country:     user.Profile.Country,
			LogoURL:     user.Profile.LogoURL,
			Social:      user.Profile.Social,
		}
	}
	return dto
}

// CreateUserDTO is the repository-level payload for inserting a user.
type CreateUserDTO struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	AccountType  enums.AccountType
	IsActive     *bool
}

// ToModel converts the DTO into a persistable user model.
func (d CreateUserDTO) ToModel() *models.User {
	user := &models.User{
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		AccountType:  d.AccountType,
		IsActive:     true,
	}
	if d.IsActive != nil {
		user.IsActive = *d.IsActive
	}
	return user
}
