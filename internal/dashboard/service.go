package dashboard

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/teomanager/teomanager-backend/internal/orders"
	"github.com/teomanager/teomanager-backend/pkg/config"
	pkgerrors "github.com/teomanager/teomanager-backend/pkg/errors"
	"github.com/teomanager/teomanager-backend/pkg/logger"
	"github.com/teomanager/teomanager-backend/pkg/redis"
)

const recentOrderCount = 5

// Service serves cached dashboard snapshots. A dashboard must always render,
// so query failures degrade to zero-valued snapshots instead of errors.
type Service interface {
	AdminMetrics(ctx context.Context, force bool) (*AdminMetrics, error)
	CompanyDashboard(ctx context.Context, companyID uuid.UUID, force bool) (*CompanyDashboard, error)
	InvalidateAdmin(ctx context.Context) error
	InvalidateCompany(ctx context.Context, companyID uuid.UUID) error
	InvalidateCategories(ctx context.Context) error
}

type snapshotCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	AdminDashboardKey() string
	CompanyDashboardKey(companyID string) string
	CategorySummaryKey() string
}

// ServiceParams groups dependencies for the dashboard service.
type ServiceParams struct {
	Repo   *Repository
	Orders *orders.Repository
	Cache  snapshotCache
	Config config.CacheConfig
	Logger *logger.Logger
}

type service struct {
	repo   *Repository
	orders *orders.Repository
	cache  snapshotCache
	cfg    config.CacheConfig
	logg   *logger.Logger
}

// NewService builds a dashboard service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "dashboard repository required")
	}
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order repository required")
	}
	if params.Cache == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "snapshot cache required")
	}
	return &service{
		repo:   params.Repo,
		orders: params.Orders,
		cache:  params.Cache,
		cfg:    params.Config,
		logg:   params.Logger,
	}, nil
}

// AdminMetrics returns the platform-wide snapshot, cached for the configured
// TTL. force bypasses the cache and rewrites it.
func (s *service) AdminMetrics(ctx context.Context, force bool) (*AdminMetrics, error) {
	key := s.cache.AdminDashboardKey()
	if !force {
		var cached AdminMetrics
		if s.readCache(ctx, key, &cached) {
			return &cached, nil
		}
	}

	metrics := &AdminMetrics{GeneratedAt: time.Now().UTC()}
	users, err := s.repo.UserTotals(ctx)
	if err != nil {
		return s.degradeAdmin(ctx, err)
	}
	products, err := s.repo.ProductAggregates(ctx, nil)
	if err != nil {
		return s.degradeAdmin(ctx, err)
	}
	services, err := s.repo.ServiceAggregates(ctx, nil)
	if err != nil {
		return s.degradeAdmin(ctx, err)
	}
	orderStats, err := s.orders.GlobalStats(ctx)
	if err != nil {
		return s.degradeAdmin(ctx, err)
	}
	metrics.Users = users
	metrics.Products = products
	metrics.Services = services
	metrics.Orders = *orderStats

	s.writeCache(ctx, key, metrics, s.cfg.AdminMetricsTTL)
	return metrics, nil
}

// CompanyDashboard returns one vendor's snapshot, cached per company.
func (s *service) CompanyDashboard(ctx context.Context, companyID uuid.UUID, force bool) (*CompanyDashboard, error) {
	key := s.cache.CompanyDashboardKey(companyID.String())
	if !force {
		var cached CompanyDashboard
		if s.readCache(ctx, key, &cached) {
			return &cached, nil
		}
	}

	snapshot := &CompanyDashboard{GeneratedAt: time.Now().UTC()}
	products, err := s.repo.ProductAggregates(ctx, &companyID)
	if err != nil {
		return s.degradeCompany(ctx, err)
	}
	services, err := s.repo.ServiceAggregates(ctx, &companyID)
	if err != nil {
		return s.degradeCompany(ctx, err)
	}
	orderStats, err := s.orders.StatsForCompany(ctx, companyID)
	if err != nil {
		return s.degradeCompany(ctx, err)
	}
	recent, err := s.orders.Recent(ctx, "company_id", companyID, recentOrderCount)
	if err != nil {
		return s.degradeCompany(ctx, err)
	}
	snapshot.Products = products
	snapshot.Services = services
	snapshot.Orders = *orderStats
	snapshot.Recent = make([]*orders.OrderDTO, 0, len(recent))
	for i := range recent {
		snapshot.Recent = append(snapshot.Recent, orders.NewOrderDTO(&recent[i]))
	}

	s.writeCache(ctx, key, snapshot, s.cfg.CompanyDashboardTTL)
	return snapshot, nil
}

func (s *service) InvalidateAdmin(ctx context.Context) error {
	return s.cache.Del(ctx, s.cache.AdminDashboardKey())
}

func (s *service) InvalidateCompany(ctx context.Context, companyID uuid.UUID) error {
	return s.cache.Del(ctx, s.cache.CompanyDashboardKey(companyID.String()))
}

func (s *service) InvalidateCategories(ctx context.Context) error {
	return s.cache.Del(ctx, s.cache.CategorySummaryKey())
}

func (s *service) readCache(ctx context.Context, key string, target any) bool {
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !redis.IsNil(err) && s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "dashboard cache read failed")
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), target); err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "dashboard cache entry corrupt")
		}
		return false
	}
	return true
}

func (s *service) writeCache(ctx context.Context, key string, value any, ttl time.Duration) {
	payload, err := json.Marshal(value)
	if err == nil {
		err = s.cache.Set(ctx, key, string(payload), ttl)
	}
	if err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "dashboard cache write failed")
	}
}

func (s *service) degradeAdmin(ctx context.Context, err error) (*AdminMetrics, error) {
	if s.logg != nil {
		s.logg.Error(ctx, "admin dashboard query failed", err)
	}
	return &AdminMetrics{GeneratedAt: time.Now().UTC()}, nil
}

func (s *service) degradeCompany(ctx context.Context, err error) (*CompanyDashboard, error) {
	if s.logg != nil {
		s.logg.Error(ctx, "company dashboard query failed", err)
	}
	return &CompanyDashboard{GeneratedAt: time.Now().UTC()}, nil
}
