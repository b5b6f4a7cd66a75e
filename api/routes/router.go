package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/phoneshop-backend/api/controllers"
	"github.com/angelmondragon/phoneshop-backend/api/middleware"
	"github.com/angelmondragon/phoneshop-backend/internal/auth"
	"github.com/angelmondragon/phoneshop-backend/internal/cart"
	"github.com/angelmondragon/phoneshop-backend/internal/cartintent"
	"github.com/angelmondragon/phoneshop-backend/internal/checkout"
	"github.com/angelmondragon/phoneshop-backend/internal/orders"
	product "github.com/angelmondragon/phoneshop-backend/internal/products"
	"github.com/angelmondragon/phoneshop-backend/internal/users"
	"github.com/angelmondragon/phoneshop-backend/internal/visitor"
	"github.com/angelmondragon/phoneshop-backend/pkg/auth/session"
	"github.com/angelmondragon/phoneshop-backend/pkg/config"
	"github.com/angelmondragon/phoneshop-backend/pkg/enums"
	"github.com/angelmondragon/phoneshop-backend/pkg/logger"
	"github.com/angelmondragon/phoneshop-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// Deps carries everything the HTTP surface needs.
type Deps struct {
	Config        *config.Config
	Logger        *logger.Logger
	DB            controllers.Pinger
	Redis         *redis.Client
	Sessions      sessionManager
	Visitors      visitor.Store
	Auth          auth.Service
	Register      auth.RegisterService
	StaffRegister auth.RegisterService
	Profiles      users.ProfileService
	Products      product.Service
	Cart          cart.Service
	Relay         *cartintent.Relay
	Checkout      checkout.Service
	Orders        orders.Service
	Metrics       prometheus.Gatherer
}

func NewRouter(d Deps) http.Handler {
	cfg, logg := d.Config, d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	ready := map[string]controllers.Pinger{"database": d.DB}
	if d.Redis != nil {
		ready["redis"] = d.Redis
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, ready, logg))
	})
	if d.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", controllers.ProductList(d.Products, logg))
		r.Get("/products/{productId}/{slug}", controllers.ProductDetail(d.Products, logg))

		r.With(middleware.Visitor(d.Visitors, cfg.Session, logg)).
			Post("/auth/logout", controllers.AuthLogout(d.Sessions, d.Visitors, cfg.JWT, cfg.Session, logg))
		r.Post("/auth/refresh", controllers.AuthRefresh(d.Sessions, cfg.JWT, logg))

		// session-scoped routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Visitor(d.Visitors, cfg.Session, logg))
			r.Use(middleware.OptionalAuth(cfg.JWT, d.Sessions, logg))
			r.Use(middleware.Idempotency(d.Redis, logg))

			r.With(middleware.AuthRateLimit(loginPolicy, d.Redis, logg)).
				Post("/auth/login", controllers.AuthLogin(d.Auth, d.Relay, d.Visitors, logg))
			r.With(middleware.AuthRateLimit(registerPolicy, d.Redis, logg)).
				Post("/auth/register", controllers.AuthRegister(d.Register, d.Auth, d.Relay, d.Visitors, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.DenyRole(enums.UserRoleStaff, "staff accounts cannot use the shopping cart", logg))
				r.Get("/cart", controllers.CartView(d.Cart, d.Visitors, logg))
				r.Post("/cart/items", controllers.CartAdd(d.Cart, d.Relay, logg))
				r.Delete("/cart/items/{productId}", controllers.CartRemove(d.Cart, logg))
				r.With(middleware.Auth(cfg.JWT, d.Sessions, logg)).
					Post("/cart/pending/complete", controllers.CartCompletePending(d.Relay, logg))
				r.Post("/checkout", controllers.Checkout(d.Checkout, logg))
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))
			r.Get("/account/profile", controllers.ProfileGet(d.Profiles, logg))
			r.Put("/account/profile", controllers.ProfileUpdate(d.Profiles, logg))
			r.Get("/orders", controllers.OrderList(d.Orders, logg))
			r.Get("/orders/{orderId}", controllers.OrderDetail(d.Orders, logg))
		})
	})

	r.Route("/api/staff/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))
		r.Use(middleware.RequireRole(enums.UserRoleStaff, logg))
		r.Use(middleware.Idempotency(d.Redis, logg))
		r.Post("/products", controllers.StaffProductCreate(d.Products, logg))
		r.Patch("/products/{productId}", controllers.StaffProductUpdate(d.Products, logg))
		r.Patch("/orders/{orderId}", controllers.StaffOrderUpdate(d.Orders, logg))
	})

	if cfg.App.IsDev() {
		r.Post("/api/dev/v1/staff/register", controllers.DevStaffRegister(d.StaffRegister, logg))
	}

	return r
}
