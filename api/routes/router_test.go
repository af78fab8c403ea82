package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	accountssvc "github.com/teomanager/teomanager-backend/internal/accounts"
	authsvc "github.com/teomanager/teomanager-backend/internal/auth"
	cartsvc "github.com/teomanager/teomanager-backend/internal/cart"
	catalogsvc "github.com/teomanager/teomanager-backend/internal/catalog"
	checkoutsvc "github.com/teomanager/teomanager-backend/internal/checkout"
	dashboardsvc "github.com/teomanager/teomanager-backend/internal/dashboard"
	landingsvc "github.com/teomanager/teomanager-backend/internal/landing"
	messagessvc "github.com/teomanager/teomanager-backend/internal/messages"
	orderssvc "github.com/teomanager/teomanager-backend/internal/orders"
	subscriptionssvc "github.com/teomanager/teomanager-backend/internal/subscriptions"
	pkgauth "github.com/teomanager/teomanager-backend/pkg/auth"
	"github.com/teomanager/teomanager-backend/pkg/config"
	"github.com/teomanager/teomanager-backend/pkg/db/models"
	"github.com/teomanager/teomanager-backend/pkg/enums"
	"github.com/teomanager/teomanager-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

type stubAccountsService struct{}

func (stubAccountsService) Register(ctx context.Context, req accountssvc.RegisterRequest) (*accountssvc.AccountDTO, error) {
	panic("unimplemented")
}

func (stubAccountsService) GetProfile(ctx context.Context, userID uuid.UUID) (*accountssvc.AccountDTO, error) {
	return &accountssvc.AccountDTO{}, nil
}

func (stubAccountsService) UpdateProfile(ctx context.Context, userID uuid.UUID, req accountssvc.UpdateProfileRequest) (*accountssvc.AccountDTO, error) {
	panic("unimplemented")
}

func (stubAccountsService) RequestPasswordReset(ctx context.Context, email string) error {
	panic("unimplemented")
}

func (stubAccountsService) ResetPassword(ctx context.Context, token, newPassword string) error {
	panic("unimplemented")
}

func (stubAccountsService) EnsureDefaultAdmin(ctx context.Context, email, password string) error {
	return nil
}

type stubAuthService struct{}

func (stubAuthService) Login(ctx context.Context, req authsvc.LoginRequest) (*authsvc.LoginResponse, error) {
	panic("unimplemented")
}

func (stubAuthService) Refresh(ctx context.Context, req authsvc.RefreshRequest) (*authsvc.RefreshResponse, error) {
	panic("unimplemented")
}

func (stubAuthService) Logout(ctx context.Context, accessID string) error {
	return nil
}

type stubSubscriptionsService struct{}

func (stubSubscriptionsService) Plans(ctx context.Context) []subscriptionssvc.Plan {
	return nil
}

func (stubSubscriptionsService) CurrentPlan(ctx context.Context, companyID uuid.UUID) (subscriptionssvc.Plan, *models.Subscription, error) {
	return subscriptionssvc.Plan{}, nil, nil
}

func (stubSubscriptionsService) Subscribe(ctx context.Context, companyID uuid.UUID, tier enums.PlanTier) (*models.Subscription, error) {
	panic("unimplemented")
}

func (stubSubscriptionsService) Cancel(ctx context.Context, companyID uuid.UUID) error {
	panic("unimplemented")
}

func (stubSubscriptionsService) History(ctx context.Context, companyID uuid.UUID) ([]models.Subscription, error) {
	panic("unimplemented")
}

func (stubSubscriptionsService) CheckLimit(ctx context.Context, companyID uuid.UUID, kind enums.ResourceKind) error {
	return nil
}

func (stubSubscriptionsService) WarnIfNearLimit(ctx context.Context, companyID uuid.UUID, kind enums.ResourceKind) error {
	return nil
}

func (stubSubscriptionsService) ExpireDue(ctx context.Context, now time.Time) (int, error) {
	return 0, nil
}

func (stubSubscriptionsService) RemindUpcoming(ctx context.Context, now time.Time) (int, error) {
	return 0, nil
}

type stubCatalogService struct{}

func (stubCatalogService) CreateProduct(ctx context.Context, companyID uuid.UUID, input catalogsvc.CreateProductInput) (*catalogsvc.ProductDTO, error) {
	return &catalogsvc.ProductDTO{}, nil
}

func (stubCatalogService) UpdateProduct(ctx context.Context, companyID, productID uuid.UUID, input catalogsvc.UpdateProductInput) (*catalogsvc.ProductDTO, error) {
	panic("unimplemented")
}

func (stubCatalogService) DeleteProduct(ctx context.Context, companyID, productID uuid.UUID) error {
	panic("unimplemented")
}

func (stubCatalogService) GetProduct(ctx context.Context, productID uuid.UUID) (*catalogsvc.ProductDTO, error) {
	panic("unimplemented")
}

func (stubCatalogService) ListCompanyProducts(ctx context.Context, companyID uuid.UUID, input catalogsvc.BrowseInput) (*catalogsvc.ProductListResult, error) {
	return &catalogsvc.ProductListResult{}, nil
}

func (stubCatalogService) BrowseProducts(ctx context.Context, input catalogsvc.BrowseInput) (*catalogsvc.ProductListResult, error) {
	return &catalogsvc.ProductListResult{}, nil
}

func (stubCatalogService) CreateService(ctx context.Context, companyID uuid.UUID, input catalogsvc.CreateServiceInput) (*catalogsvc.ServiceDTO, error) {
	panic("unimplemented")
}

func (stubCatalogService) UpdateService(ctx context.Context, companyID, serviceID uuid.UUID, input catalogsvc.UpdateServiceInput) (*catalogsvc.ServiceDTO, error) {
	panic("unimplemented")
}

func (stubCatalogService) DeleteService(ctx context.Context, companyID, serviceID uuid.UUID) error {
	panic("unimplemented")
}

func (stubCatalogService) GetService(ctx context.Context, serviceID uuid.UUID) (*catalogsvc.ServiceDTO, error) {
	panic("unimplemented")
}

func (stubCatalogService) ListCompanyServices(ctx context.Context, companyID uuid.UUID, input catalogsvc.BrowseInput) (*catalogsvc.ServiceListResult, error) {
	return &catalogsvc.ServiceListResult{}, nil
}

func (stubCatalogService) BrowseServices(ctx context.Context, input catalogsvc.BrowseInput) (*catalogsvc.ServiceListResult, error) {
	return &catalogsvc.ServiceListResult{}, nil
}

func (stubCatalogService) AddProductImage(ctx context.Context, companyID, productID uuid.UUID, input catalogsvc.ImageInput) (*catalogsvc.ProductDTO, error) {
	panic("unimplemented")
}

func (stubCatalogService) RemoveProductImage(ctx context.Context, companyID, productID, imageID uuid.UUID) error {
	panic("unimplemented")
}

func (stubCatalogService) SetPrincipalProductImage(ctx context.Context, companyID, productID, imageID uuid.UUID) error {
	panic("unimplemented")
}

func (stubCatalogService) AddServiceImage(ctx context.Context, companyID, serviceID uuid.UUID, input catalogsvc.ImageInput) (*catalogsvc.ServiceDTO, error) {
	panic("unimplemented")
}

func (stubCatalogService) RemoveServiceImage(ctx context.Context, companyID, serviceID, imageID uuid.UUID) error {
	panic("unimplemented")
}

func (stubCatalogService) SetPrincipalServiceImage(ctx context.Context, companyID, serviceID, imageID uuid.UUID) error {
	panic("unimplemented")
}

func (stubCatalogService) Categories(ctx context.Context) ([]catalogsvc.CategoryCount, error) {
	return nil, nil
}

func (stubCatalogService) Featured(ctx context.Context) (*catalogsvc.FeaturedResult, error) {
	return &catalogsvc.FeaturedResult{}, nil
}

type stubCartService struct{}

func (stubCartService) Add(ctx context.Context, accountID uuid.UUID, input cartsvc.AddItemInput) (*cartsvc.CartDTO, error) {
	panic("unimplemented")
}

func (stubCartService) Remove(ctx context.Context, accountID uuid.UUID, input cartsvc.RemoveItemInput) (*cartsvc.CartDTO, error) {
	panic("unimplemented")
}

func (stubCartService) Get(ctx context.Context, accountID uuid.UUID) (*cartsvc.CartDTO, error) {
	return &cartsvc.CartDTO{}, nil
}

func (stubCartService) Clear(ctx context.Context, accountID uuid.UUID) error {
	return nil
}

func (stubCartService) Snapshot(ctx context.Context, accountID uuid.UUID) (*cartsvc.Cart, error) {
	panic("unimplemented")
}

type stubCheckoutService struct{}

func (stubCheckoutService) CreateOrdersFromCart(ctx context.Context, buyerID uuid.UUID, input checkoutsvc.CheckoutInput) (*checkoutsvc.Result, error) {
	return &checkoutsvc.Result{}, nil
}

type stubOrdersService struct{}

func (stubOrdersService) Get(ctx context.Context, actorID, orderID uuid.UUID) (*orderssvc.OrderDTO, error) {
	panic("unimplemented")
}

func (stubOrdersService) ListForBuyer(ctx context.Context, buyerID uuid.UUID, input orderssvc.ListInput) (*orderssvc.ListResult, error) {
	return &orderssvc.ListResult{}, nil
}

func (stubOrdersService) ListForCompany(ctx context.Context, companyID uuid.UUID, input orderssvc.ListInput) (*orderssvc.ListResult, error) {
	return &orderssvc.ListResult{}, nil
}

func (stubOrdersService) UpdateStatus(ctx context.Context, input orderssvc.UpdateStatusInput) (*orderssvc.OrderDTO, error) {
	return &orderssvc.OrderDTO{}, nil
}

func (stubOrdersService) StatsForBuyer(ctx context.Context, buyerID uuid.UUID) (*orderssvc.Stats, error) {
	panic("unimplemented")
}

func (stubOrdersService) StatsForCompany(ctx context.Context, companyID uuid.UUID) (*orderssvc.Stats, error) {
	panic("unimplemented")
}

type stubMessagesService struct{}

func (stubMessagesService) Post(ctx context.Context, input messagessvc.PostInput) (*messagessvc.MessageDTO, error) {
	panic("unimplemented")
}

func (stubMessagesService) Thread(ctx context.Context, orderID, viewerID uuid.UUID) ([]*messagessvc.MessageDTO, error) {
	panic("unimplemented")
}

func (stubMessagesService) UnreadCount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	return 0, nil
}

type stubLandingService struct{}

func (stubLandingService) GetPrimary(ctx context.Context, companyID uuid.UUID) (*landingsvc.LandingDTO, error) {
	return &landingsvc.LandingDTO{}, nil
}

func (stubLandingService) List(ctx context.Context, companyID uuid.UUID) ([]*landingsvc.LandingDTO, error) {
	panic("unimplemented")
}

func (stubLandingService) Create(ctx context.Context, companyID uuid.UUID, input landingsvc.CreateInput) (*landingsvc.LandingDTO, error) {
	panic("unimplemented")
}

func (stubLandingService) Update(ctx context.Context, companyID, pageID uuid.UUID, input landingsvc.UpdateInput) (*landingsvc.LandingDTO, error) {
	panic("unimplemented")
}

func (stubLandingService) Delete(ctx context.Context, companyID, pageID uuid.UUID) error {
	panic("unimplemented")
}

func (stubLandingService) PublicBySlug(ctx context.Context, slug string) (*landingsvc.LandingDTO, error) {
	return &landingsvc.LandingDTO{}, nil
}

type stubDashboardService struct{}

func (stubDashboardService) AdminMetrics(ctx context.Context, force bool) (*dashboardsvc.AdminMetrics, error) {
	return &dashboardsvc.AdminMetrics{}, nil
}

func (stubDashboardService) CompanyDashboard(ctx context.Context, companyID uuid.UUID, force bool) (*dashboardsvc.CompanyDashboard, error) {
	return &dashboardsvc.CompanyDashboard{}, nil
}

func (stubDashboardService) InvalidateAdmin(ctx context.Context) error {
	return nil
}

func (stubDashboardService) InvalidateCompany(ctx context.Context, companyID uuid.UUID) error {
	return nil
}

func (stubDashboardService) InvalidateCategories(ctx context.Context) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "teomanager",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Output: io.Discard})
	return NewRouter(Deps{
		Config:        cfg,
		Logger:        logg,
		DBPinger:      stubPinger{},
		Sessions:      stubSessionChecker{},
		Accounts:      stubAccountsService{},
		Auth:          stubAuthService{},
		Subscriptions: stubSubscriptionsService{},
		Catalog:       stubCatalogService{},
		Cart:          stubCartService{},
		Checkout:      stubCheckoutService{},
		Orders:        stubOrdersService{},
		Messages:      stubMessagesService{},
		Landing:       stubLandingService{},
		Dashboard:     stubDashboardService{},
	})
}

func buildToken(t *testing.T, cfg *config.Config, accountType enums.AccountType) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID:      uuid.New(),
		AccountType: accountType,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthAndPublicRoutesNeedNoToken(t *testing.T) {
	router := newTestRouter(testConfig())

	for _, path := range []string{
		"/health/live",
		"/health/ready",
		"/api/v1/public/products",
		"/api/v1/public/services",
		"/api/v1/public/categories",
		"/api/v1/public/featured",
		"/api/v1/public/landing/taller-teo",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d: %s", path, resp.Code, resp.Body.String())
		}
	}
}

func TestAuthenticatedGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestAuthenticatedGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.AccountTypeConsumer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for profile got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestVendorGroupRequiresCompanyAccount(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	consumer := httptest.NewRequest(http.MethodGet, "/api/v1/vendor/products", nil)
	consumer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.AccountTypeConsumer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, consumer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for consumer got %d", resp.Code)
	}

	company := httptest.NewRequest(http.MethodGet, "/api/v1/vendor/products", nil)
	company.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.AccountTypeCompany))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, company)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for company got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAdminDashboardRequiresAdminAccount(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	company := httptest.NewRequest(http.MethodGet, "/api/v1/admin/dashboard", nil)
	company.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.AccountTypeCompany))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, company)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for company got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/v1/admin/dashboard", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.AccountTypeAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestOrderStatusPatchIsVendorOnly(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	orderPath := "/api/v1/orders/" + uuid.NewString() + "/status"
	consumer := httptest.NewRequest(http.MethodPatch, orderPath, nil)
	consumer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.AccountTypeConsumer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, consumer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for consumer status patch got %d", resp.Code)
	}
}
