package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/teomanager/teomanager-backend/api/controllers"
	"github.com/teomanager/teomanager-backend/api/middleware"
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
	"github.com/teomanager/teomanager-backend/pkg/auth/session"
	"github.com/teomanager/teomanager-backend/pkg/config"
	"github.com/teomanager/teomanager-backend/pkg/logger"
	"github.com/teomanager/teomanager-backend/pkg/redis"
)

// Deps bundles everything the HTTP surface needs. All services are
// required; the pingers may be nil in tests.
type Deps struct {
	Config *config.Config
	Logger *logger.Logger

	DBPinger    controllers.Pinger
	RedisClient *redis.Client
	Sessions    session.AccessSessionChecker

	Accounts      accountssvc.Service
	Auth          authsvc.Service
	Subscriptions subscriptionssvc.Service
	Catalog       catalogsvc.Service
	Cart          cartsvc.Service
	Checkout      checkoutsvc.Service
	Orders        orderssvc.Service
	Messages      messagessvc.Service
	Landing       landingsvc.Service
	Dashboard     dashboardsvc.Service
}

func NewRouter(d Deps) http.Handler {
	cfg, logg := d.Config, d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.RateLimit.LoginWindow,
		cfg.RateLimit.LoginIPLimit,
		cfg.RateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.RateLimit.RegisterWindow,
		cfg.RateLimit.RegisterIPLimit,
		cfg.RateLimit.RegisterEmailLimit,
	)

	var cachePinger controllers.Pinger
	if d.RedisClient != nil {
		cachePinger = d.RedisClient
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.DBPinger, cachePinger))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, d.RedisClient, logg)).Post("/register", controllers.AccountRegister(d.Accounts, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, d.RedisClient, logg)).Post("/login", controllers.AuthLogin(d.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(d.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(d.Auth, cfg.JWT, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, d.RedisClient, logg)).Post("/password-reset", controllers.PasswordResetRequest(d.Accounts, logg))
		r.Post("/password-reset/confirm", controllers.PasswordResetConfirm(d.Accounts, logg))
	})

	r.Route("/api/v1/public", func(r chi.Router) {
		r.Get("/products", controllers.BrowseProducts(d.Catalog, logg))
		r.Get("/products/{productID}", controllers.GetProduct(d.Catalog, logg))
		r.Get("/services", controllers.BrowseServices(d.Catalog, logg))
		r.Get("/services/{serviceID}", controllers.GetService(d.Catalog, logg))
		r.Get("/categories", controllers.Categories(d.Catalog, logg))
		r.Get("/featured", controllers.Featured(d.Catalog, logg))
		r.Get("/landing/{slug}", controllers.PublicLanding(d.Landing, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", controllers.ProfileGet(d.Accounts, logg))
			r.Put("/", controllers.ProfileUpdate(d.Accounts, logg))
		})

		r.Route("/subscriptions", func(r chi.Router) {
			r.Get("/plans", controllers.SubscriptionPlans(d.Subscriptions, logg))
			r.Get("/", controllers.SubscriptionCurrent(d.Subscriptions, logg))
			r.Post("/", controllers.SubscriptionSubscribe(d.Subscriptions, logg))
			r.Post("/cancel", controllers.SubscriptionCancel(d.Subscriptions, logg))
			r.Get("/history", controllers.SubscriptionHistory(d.Subscriptions, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(d.Cart, logg))
			r.Post("/items", controllers.CartAdd(d.Cart, logg))
			r.Delete("/items", controllers.CartRemove(d.Cart, logg))
			r.Delete("/", controllers.CartClear(d.Cart, logg))
		})
		r.Post("/checkout", controllers.Checkout(d.Checkout, d.Cart, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrdersList(d.Orders, logg))
			r.Get("/stats", controllers.OrdersStats(d.Orders, logg))
			r.Get("/{orderID}", controllers.OrdersGet(d.Orders, logg))
			r.With(middleware.RequireCompany(logg)).Patch("/{orderID}/status", controllers.OrdersUpdateStatus(d.Orders, logg))
			r.Get("/{orderID}/messages", controllers.MessagesThread(d.Messages, logg))
			r.Post("/{orderID}/messages", controllers.MessagesPost(d.Messages, logg))
		})
		r.Get("/messages/unread-count", controllers.MessagesUnreadCount(d.Messages, logg))

		r.Route("/vendor", func(r chi.Router) {
			r.Use(middleware.RequireCompany(logg))

			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.VendorListProducts(d.Catalog, logg))
				r.Post("/", controllers.VendorCreateProduct(d.Catalog, logg))
				r.Patch("/{productID}", controllers.VendorUpdateProduct(d.Catalog, logg))
				r.Delete("/{productID}", controllers.VendorDeleteProduct(d.Catalog, logg))
				r.Post("/{productID}/images", controllers.VendorAddProductImage(d.Catalog, logg))
				r.Delete("/{productID}/images/{imageID}", controllers.VendorRemoveProductImage(d.Catalog, logg))
				r.Post("/{productID}/images/{imageID}/principal", controllers.VendorSetPrincipalProductImage(d.Catalog, logg))
			})
			r.Route("/services", func(r chi.Router) {
				r.Get("/", controllers.VendorListServices(d.Catalog, logg))
				r.Post("/", controllers.VendorCreateService(d.Catalog, logg))
				r.Patch("/{serviceID}", controllers.VendorUpdateService(d.Catalog, logg))
				r.Delete("/{serviceID}", controllers.VendorDeleteService(d.Catalog, logg))
				r.Post("/{serviceID}/images", controllers.VendorAddServiceImage(d.Catalog, logg))
				r.Delete("/{serviceID}/images/{imageID}", controllers.VendorRemoveServiceImage(d.Catalog, logg))
				r.Post("/{serviceID}/images/{imageID}/principal", controllers.VendorSetPrincipalServiceImage(d.Catalog, logg))
			})

			r.Route("/landing", func(r chi.Router) {
				r.Get("/", controllers.LandingGetPrimary(d.Landing, logg))
				r.Get("/pages", controllers.LandingList(d.Landing, logg))
				r.Post("/pages", controllers.LandingCreate(d.Landing, logg))
				r.Put("/pages/{pageID}", controllers.LandingUpdate(d.Landing, logg))
				r.Delete("/pages/{pageID}", controllers.LandingDelete(d.Landing, logg))
			})

			r.Get("/dashboard", controllers.DashboardCompany(d.Dashboard, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin(logg))
			r.Get("/dashboard", controllers.DashboardAdmin(d.Dashboard, logg))
		})
	})

	return r
}
