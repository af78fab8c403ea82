package accounts

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/teomanager/teomanager-backend/pkg/config"
	"github.com/teomanager/teomanager-backend/pkg/db/models"
	"github.com/teomanager/teomanager-backend/pkg/enums"
	pkgerrors "github.com/teomanager/teomanager-backend/pkg/errors"
	"github.com/teomanager/teomanager-backend/pkg/logger"
	"github.com/teomanager/teomanager-backend/pkg/outbox"
	"github.com/teomanager/teomanager-backend/pkg/redis"
	"github.com/teomanager/teomanager-backend/pkg/security"
)

// Service covers account lifecycle: onboarding, profile management and
// password recovery.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*AccountDTO, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*AccountDTO, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*AccountDTO, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	EnsureDefaultAdmin(ctx context.Context, email, password string) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type accountRepository interface {
	Create(ctx context.Context, dto CreateUserDTO) (*models.User, error)
	CreateProfile(ctx context.Context, profile *models.Profile) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, updates map[string]any) error
	UpdateProfile(ctx context.Context, userID uuid.UUID, updates map[string]any) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
}

type mailEnqueuer interface {
	Enqueue(ctx context.Context, tx *gorm.DB, msg outbox.Message) error
}

type resetTokenStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	PasswordResetKey(token string) string
}

// ServiceParams packages the dependencies for the accounts service.
type ServiceParams struct {
	DB             txRunner
	Repo           accountRepository
	RepoFactory    func(tx *gorm.DB) accountRepository
	Mail           mailEnqueuer
	Resets         resetTokenStore
	PasswordConfig config.PasswordConfig
	Logger         *logger.Logger
}

type service struct {
	db          txRunner
	repo        accountRepository
	repoFactory func(tx *gorm.DB) accountRepository
	mail        mailEnqueuer
	resets      resetTokenStore
	passwordCfg config.PasswordConfig
	logg        *logger.Logger
}

// NewService builds an accounts service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "account repository required")
	}
	if params.Mail == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "mail enqueuer required")
	}
	if params.Resets == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "reset token store required")
	}
	factory := params.RepoFactory
	if factory == nil {
		factory = func(tx *gorm.DB) accountRepository { return NewRepository(tx) }
	}
	return &service{
		db:          params.DB,
		repo:        params.Repo,
		repoFactory: factory,
		mail:        params.Mail,
		resets:      params.Resets,
		passwordCfg: params.PasswordConfig,
		logg:        params.Logger,
	}, nil
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*AccountDTO, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if !req.AccountType.IsValid() || req.AccountType == enums.AccountTypeAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid account type")
	}
	if !req.AcceptTOS {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "accept_tos must be true")
	}
	if req.AccountType == enums.AccountTypeCompany && derefOrEmpty(req.CompanyName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "company_name is required for company accounts")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var created *models.User
	txErr := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repoFactory(tx)

		if _, err := repo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check account email")
		}

		user, err := repo.Create(ctx, CreateUserDTO{
			Email:        email,
			PasswordHash: passwordHash,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			AccountType:  req.AccountType,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create account")
		}

		profile := &models.Profile{
			UserID: user.ID,
			Phone:  req.Phone,
		}
		if req.AccountType == enums.AccountTypeCompany {
			profile.CompanyName = req.CompanyName
		}
		if err := repo.CreateProfile(ctx, profile); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create profile")
		}
		user.Profile = profile

		if err := s.mail.Enqueue(ctx, tx, outbox.Message{
			Kind:      enums.EmailKindWelcome,
			Recipient: email,
			Subject:   "Welcome to TEOmanager",
			Data: map[string]any{
				"first_name":   user.FirstName,
				"account_type": user.AccountType.String(),
			},
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "enqueue welcome email")
		}

		created = user
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return FromModel(created), nil
}

func (s *service) GetProfile(ctx context.Context, userID uuid.UUID) (*AccountDTO, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load account")
	}
	return FromModel(user), nil
}

func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*AccountDTO, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load account")
	}

	userUpdates := map[string]any{}
	if req.FirstName != nil {
		userUpdates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		userUpdates["last_name"] = *req.LastName
	}

	targetType := user.AccountType
	if req.AccountType != nil {
		if !req.AccountType.IsValid() || *req.AccountType == enums.AccountTypeAdmin {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid account type")
		}
		targetType = *req.AccountType
		if targetType != user.AccountType {
			userUpdates["account_type"] = targetType
		}
	}

	profileUpdates := map[string]any{}
	if req.CompanyName != nil {
		profileUpdates["company_name"] = *req.CompanyName
	}
	if req.Description != nil {
		profileUpdates["description"] = *req.Description
	}
	if req.Phone != nil {
		profileUpdates["phone"] = *req.Phone
	}
	if req.Address != nil {
		profileUpdates["address"] = *req.Address
	}
	if req.City != nil {
		profileUpdates["city"] = *req.City
	}
	if req.Country != nil {
		profileUpdates["country"] = *req.Country
	}
	if req.LogoURL != nil {
		profileUpdates["logo_url"] = *req.LogoURL
	}
	if req.Social != nil {
		profileUpdates["social"] = *req.Social
	}
	// Consumer accounts never carry a company name; company accounts must
	// end the update with one.
	if targetType == enums.AccountTypeConsumer {
		profileUpdates["company_name"] = nil
	}
	if targetType == enums.AccountTypeCompany {
		name := ""
		if user.Profile != nil && user.Profile.CompanyName != nil {
			name = *user.Profile.CompanyName
		}
		if req.CompanyName != nil {
			name = *req.CompanyName
		}
		if strings.TrimSpace(name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "company_name is required for company accounts")
		}
	}

	txErr := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repoFactory(tx)
		if err := repo.UpdateUser(ctx, userID, userUpdates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update account")
		}
		if err := repo.UpdateProfile(ctx, userID, profileUpdates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update profile")
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return s.GetProfile(ctx, userID)
}

// RequestPasswordReset stays silent on unknown emails so the endpoint cannot
// be used to probe for accounts.
func (s *service) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if s.logg != nil {
				s.logg.Info(ctx, "password reset requested for unknown email")
			}
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load account")
	}

	token, err := security.GenerateResetToken()
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate reset token")
	}
	if err := s.resets.Set(ctx, s.resets.PasswordResetKey(token), user.ID.String(), s.passwordCfg.ResetTokenTTL); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store reset token")
	}

	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		return s.mail.Enqueue(ctx, tx, outbox.Message{
			Kind:      enums.EmailKindPasswordReset,
			Recipient: user.Email,
			Subject:   "Reset your TEOmanager password",
			Data: map[string]any{
				"first_name": user.FirstName,
				"token":      token,
			},
		})
	})
}

func (s *service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "token is required")
	}
	if newPassword == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "password is required")
	}

	key := s.resets.PasswordResetKey(token)
	raw, err := s.resets.Get(ctx, key)
	if err != nil {
		if redis.IsNil(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "reset token invalid or expired")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reset token")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parse reset token subject")
	}

	hash, err := security.HashPassword(newPassword, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	if err := s.repo.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update password")
	}

	// Single use: drop the token regardless of redis errors from here on.
	if err := s.resets.Del(ctx, key); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "delete reset token")
	}
	return nil
}

// EnsureDefaultAdmin creates the bootstrap operator account when it does not
// exist yet. A blank email disables bootstrapping.
func (s *service) EnsureDefaultAdmin(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}
	if password == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "bootstrap admin password required")
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check admin email")
	}

	hash, err := security.HashPassword(password, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash admin password")
	}

	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repoFactory(tx)
		user, err := repo.Create(ctx, CreateUserDTO{
			Email:        email,
			PasswordHash: hash,
			FirstName:    "Platform",
			LastName:     "Admin",
			AccountType:  enums.AccountTypeAdmin,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create admin")
		}
		if err := repo.CreateProfile(ctx, &models.Profile{UserID: user.ID}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create admin profile")
		}
		if s.logg != nil {
			s.logg.Info(s.logg.WithUserID(ctx, user.ID.String()), "bootstrap admin created")
		}
		return nil
	})
}

func derefOrEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}
