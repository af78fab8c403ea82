package landing

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/teomanager/teomanager-backend/internal/subscriptions"
	"github.com/teomanager/teomanager-backend/pkg/db/models"
	"github.com/teomanager/teomanager-backend/pkg/enums"
	pkgerrors "github.com/teomanager/teomanager-backend/pkg/errors"
	"github.com/teomanager/teomanager-backend/pkg/logger"
)

var (
	slugPattern  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
	nonSlugRunes = regexp.MustCompile(`[^a-z0-9]+`)
)

// Service manages company landing pages.
type Service interface {
	GetPrimary(ctx context.Context, companyID uuid.UUID) (*LandingDTO, error)
	List(ctx context.Context, companyID uuid.UUID) ([]*LandingDTO, error)
	Create(ctx context.Context, companyID uuid.UUID, input CreateInput) (*LandingDTO, error)
	Update(ctx context.Context, companyID, pageID uuid.UUID, input UpdateInput) (*LandingDTO, error)
	Delete(ctx context.Context, companyID, pageID uuid.UUID) error
	PublicBySlug(ctx context.Context, slug string) (*LandingDTO, error)
}

type limitChecker interface {
	CheckLimit(ctx context.Context, companyID uuid.UUID, kind enums.ResourceKind) error
	WarnIfNearLimit(ctx context.Context, companyID uuid.UUID, kind enums.ResourceKind) error
}

type planResolver interface {
	CurrentPlan(ctx context.Context, companyID uuid.UUID) (subscriptions.Plan, *models.Subscription, error)
}

type accountFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// ServiceParams groups dependencies for the landing page service.
type ServiceParams struct {
	Repo     *Repository
	Limits   limitChecker
	Plans    planResolver
	Accounts accountFinder
	Logger   *logger.Logger
}

type service struct {
	repo     *Repository
	limits   limitChecker
	plans    planResolver
	accounts accountFinder
	logg     *logger.Logger
}

// NewService builds a landing page service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "landing repository required")
	}
	if params.Limits == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "limit checker required")
	}
	if params.Plans == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "plan resolver required")
	}
	if params.Accounts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "account finder required")
	}
	return &service{
		repo:     params.Repo,
		limits:   params.Limits,
		plans:    params.Plans,
		accounts: params.Accounts,
		logg:     params.Logger,
	}, nil
}

// GetPrimary returns the company's first page, creating it with defaults on
// first access so every vendor always has a storefront.
func (s *service) GetPrimary(ctx context.Context, companyID uuid.UUID) (*LandingDTO, error) {
	page, err := s.repo.FirstForCompany(ctx, companyID)
	if err == nil {
		return NewLandingDTO(page), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load landing page")
	}

	return s.Create(ctx, companyID, CreateInput{})
}

func (s *service) List(ctx context.Context, companyID uuid.UUID) ([]*LandingDTO, error) {
	rows, err := s.repo.ListForCompany(ctx, companyID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list landing pages")
	}
	pages := make([]*LandingDTO, 0, len(rows))
	for i := range rows {
		pages = append(pages, NewLandingDTO(&rows[i]))
	}
	return pages, nil
}

// Create provisions a page for the company, counting it against the plan's
// landing page quota.
func (s *service) Create(ctx context.Context, companyID uuid.UUID, input CreateInput) (*LandingDTO, error) {
	if err := s.limits.CheckLimit(ctx, companyID, enums.ResourceKindLandingPage); err != nil {
		return nil, err
	}

	company, err := s.accounts.FindByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "company not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load company")
	}

	companyName := "Mi Empresa"
	if company.Profile != nil && company.Profile.CompanyName != nil && *company.Profile.CompanyName != "" {
		companyName = *company.Profile.CompanyName
	}

	page := &models.LandingPage{
		CompanyID: companyID,
		Title:     companyName,
	}

	slug := strings.ToLower(strings.TrimSpace(input.Slug))
	if slug == "" {
		slug = slugify(companyName) + "-" + companyID.String()[:8]
	}
	if !slugPattern.MatchString(slug) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug must be lowercase letters, digits and dashes")
	}
	if err := s.ensureSlugFree(ctx, slug, uuid.Nil); err != nil {
		return nil, err
	}
	page.Slug = slug

	if input.Title != "" {
		page.Title = input.Title
	}
	page.Description = input.Description

	if input.Template != nil {
		template, err := s.resolveTemplate(ctx, companyID, *input.Template)
		if err != nil {
			return nil, err
		}
		page.Template = template
	} else {
		page.Template = enums.LandingTemplateClassic
	}

	overrides := input.Sections.columns()
	if err := applyColors(input.PrimaryColor, input.SecondaryColor, overrides); err != nil {
		return nil, err
	}
	if input.Highlights != nil {
		overrides["highlights"] = pq.StringArray(input.Highlights)
	}

	// The insert leans on the column defaults; overrides land in a second
	// write so both create paths share the same column mapping.
	if err := s.repo.Create(ctx, page); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create landing page")
	}
	if len(overrides) > 0 {
		if err := s.repo.Update(ctx, page.ID, overrides); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "apply landing overrides")
		}
	}
	page, err = s.repo.FindByID(ctx, page.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload landing page")
	}

	// Best effort: the page already exists, so a failed quota heads-up
	// must not fail the request.
	if err := s.limits.WarnIfNearLimit(ctx, companyID, enums.ResourceKindLandingPage); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "plan limit warning not queued: "+err.Error())
	}
	return NewLandingDTO(page), nil
}

// Update applies a partial update to a page the company owns.
func (s *service) Update(ctx context.Context, companyID, pageID uuid.UUID, input UpdateInput) (*LandingDTO, error) {
	page, err := s.ownedPage(ctx, companyID, pageID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Slug != nil {
		slug := strings.ToLower(strings.TrimSpace(*input.Slug))
		if !slugPattern.MatchString(slug) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug must be lowercase letters, digits and dashes")
		}
		if slug != page.Slug {
			if err := s.ensureSlugFree(ctx, slug, page.ID); err != nil {
				return nil, err
			}
			updates["slug"] = slug
		}
	}
	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
		}
		updates["title"] = *input.Title
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Template != nil {
		template, err := s.resolveTemplate(ctx, companyID, *input.Template)
		if err != nil {
			return nil, err
		}
		updates["template"] = template
	}
	if err := applyColors(input.PrimaryColor, input.SecondaryColor, updates); err != nil {
		return nil, err
	}
	for column, value := range input.Sections.columns() {
		updates[column] = value
	}
	if input.Highlights != nil {
		updates["highlights"] = pq.StringArray(input.Highlights)
	}

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, page.ID, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update landing page")
		}
	}
	page, err = s.repo.FindByID(ctx, page.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload landing page")
	}
	return NewLandingDTO(page), nil
}

func (s *service) Delete(ctx context.Context, companyID, pageID uuid.UUID) error {
	page, err := s.ownedPage(ctx, companyID, pageID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, page.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete landing page")
	}
	return nil
}

// PublicBySlug serves the storefront lookup used by unauthenticated visitors.
func (s *service) PublicBySlug(ctx context.Context, slug string) (*LandingDTO, error) {
	page, err := s.repo.FindBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "landing page not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load landing page")
	}
	return NewLandingDTO(page), nil
}

func (s *service) ownedPage(ctx context.Context, companyID, pageID uuid.UUID) (*models.LandingPage, error) {
	page, err := s.repo.FindByID(ctx, pageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "landing page not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load landing page")
	}
	if page.CompanyID != companyID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "landing page not found")
	}
	return page, nil
}

func (s *service) ensureSlugFree(ctx context.Context, slug string, selfID uuid.UUID) error {
	existing, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check slug")
	}
	if existing.ID == selfID {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeConflict, "slug already in use")
}

// resolveTemplate validates the template name and enforces the premium gate.
func (s *service) resolveTemplate(ctx context.Context, companyID uuid.UUID, raw string) (enums.LandingTemplate, error) {
	template, err := enums.ParseLandingTemplate(strings.ToLower(strings.TrimSpace(raw)))
	if err != nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "unknown landing template")
	}
	if template.RequiresPremium() {
		plan, _, err := s.plans.CurrentPlan(ctx, companyID)
		if err != nil {
			return "", err
		}
		if plan.Tier == enums.PlanTierBasic {
			return "", pkgerrors.New(pkgerrors.CodeForbidden, "template requires a premium plan").
				WithDetails(map[string]any{"template": template.String()})
		}
	}
	return template, nil
}

func applyColors(primary, secondary *string, target map[string]any) error {
	for column, value := range map[string]*string{
		"primary_color":   primary,
		"secondary_color": secondary,
	} {
		if value == nil {
			continue
		}
		if !colorPattern.MatchString(*value) {
			return pkgerrors.New(pkgerrors.CodeValidation, "colors must be #RRGGBB hex values")
		}
		target[column] = *value
	}
	return nil
}

func slugify(value string) string {
	slug := nonSlugRunes.ReplaceAllString(strings.ToLower(value), "-")
	return strings.Trim(slug, "-")
}
