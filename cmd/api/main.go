package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/phoneshop-backend/api/routes"
	"github.com/angelmondragon/phoneshop-backend/internal/auth"
	"github.com/angelmondragon/phoneshop-backend/internal/cart"
	"github.com/angelmondragon/phoneshop-backend/internal/cartintent"
	"github.com/angelmondragon/phoneshop-backend/internal/checkout"
	"github.com/angelmondragon/phoneshop-backend/internal/notifications"
	"github.com/angelmondragon/phoneshop-backend/internal/orders"
	product "github.com/angelmondragon/phoneshop-backend/internal/products"
	"github.com/angelmondragon/phoneshop-backend/internal/users"
	"github.com/angelmondragon/phoneshop-backend/internal/visitor"
	"github.com/angelmondragon/phoneshop-backend/pkg/auth/session"
	"github.com/angelmondragon/phoneshop-backend/pkg/config"
	"github.com/angelmondragon/phoneshop-backend/pkg/db"
	"github.com/angelmondragon/phoneshop-backend/pkg/instance"
	"github.com/angelmondragon/phoneshop-backend/pkg/logger"
	"github.com/angelmondragon/phoneshop-backend/pkg/metrics"
	"github.com/angelmondragon/phoneshop-backend/pkg/migrate"
	"github.com/angelmondragon/phoneshop-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)

	err = migrate.MaybeRunDev(ctx, cfg, logg, dbClient)
	requireResource(ctx, logg, "dev migrations", err)

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)

	defer func() {
		if err := multierr.Combine(dbClient.Close(), redisClient.Close()); err != nil {
			logg.Error(context.Background(), "error closing resources", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	deps, err := buildDeps(cfg, logg, dbClient, redisClient, registry)
	requireResource(ctx, logg, "services", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.ID(),
	})

	server := &http.Server{
		Addr:         addr,
		Handler:      routes.NewRouter(deps),
		ReadTimeout:  cfg.App.ReadTimeout,
		WriteTimeout: cfg.App.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
		}
		return
	case <-ctx.Done():
	}

	logg.Info(ctx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(ctx, "graceful shutdown failed", err)
	}
}

func buildDeps(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client, registry *prometheus.Registry) (routes.Deps, error) {
	conn := dbClient.DB()

	sessions, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return routes.Deps{}, fmt.Errorf("session manager: %w", err)
	}
	visitors, err := visitor.NewRedisStore(redisClient, cfg.Session.TTL)
	if err != nil {
		return routes.Deps{}, fmt.Errorf("visitor store: %w", err)
	}

	productRepo := product.NewRepository(conn)
	productSvc, err := product.NewService(productRepo)
	if err != nil {
		return routes.Deps{}, fmt.Errorf("product service: %w", err)
	}
	cartSvc, err := cart.NewService(productRepo, visitors)
	if err != nil {
		return routes.Deps{}, fmt.Errorf("cart service: %w", err)
	}
	relay, err := cartintent.NewRelay(cartSvc, visitors, logg)
	if err != nil {
		return routes.Deps{}, fmt.Errorf("cart intent relay: %w", err)
	}

	userRepo := users.NewRepository(conn)
	profiles, err := users.NewProfileService(userRepo)
	if err != nil {
		return routes.Deps{}, fmt.Errorf("profile service: %w", err)
	}
	authSvc, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessions,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		return routes.Deps{}, fmt.Errorf("auth service: %w", err)
	}
	registerParams := auth.RegisterServiceParams{DB: dbClient, PasswordConfig: cfg.Password}
	registerSvc, err := auth.NewRegisterService(registerParams)
	if err != nil {
		return routes.Deps{}, fmt.Errorf("register service: %w", err)
	}
	staffSvc, err := auth.NewStaffRegisterService(registerParams)
	if err != nil {
		return routes.Deps{}, fmt.Errorf("staff register service: %w", err)
	}

	renderer, err := notifications.NewRenderer()
	if err != nil {
		return routes.Deps{}, fmt.Errorf("notification templates: %w", err)
	}
	mailer, err := notifications.NewMailer(cfg.Sendgrid, logg)
	if err != nil {
		return routes.Deps{}, fmt.Errorf("mailer: %w", err)
	}
	notifier, err := notifications.NewEmailNotifier(renderer, mailer)
	if err != nil {
		return routes.Deps{}, fmt.Errorf("email notifier: %w", err)
	}
	dispatcher, err := notifications.NewDispatcher(notifier, metrics.NewNotificationMetrics(registry), logg, cfg.Notifications.SendTimeout)
	if err != nil {
		return routes.Deps{}, fmt.Errorf("notification dispatcher: %w", err)
	}

	ordersRepo := orders.NewRepository(conn)
	ordersSvc, err := orders.NewService(ordersRepo, dbClient, dispatcher)
	if err != nil {
		return routes.Deps{}, fmt.Errorf("orders service: %w", err)
	}
	checkoutSvc, err := checkout.NewService(checkout.Deps{
		Tx:          dbClient,
		Cart:        cartSvc,
		ProductRepo: productRepo,
		OrdersRepo:  ordersRepo,
		Notifier:    dispatcher,
		Metrics:     metrics.NewCheckoutMetrics(registry),
		Logger:      logg,
	})
	if err != nil {
		return routes.Deps{}, fmt.Errorf("checkout service: %w", err)
	}

	return routes.Deps{
		Config:        cfg,
		Logger:        logg,
		DB:            dbClient,
		Redis:         redisClient,
		Sessions:      sessions,
		Visitors:      visitors,
		Auth:          authSvc,
		Register:      registerSvc,
		StaffRegister: staffSvc,
		Profiles:      profiles,
		Products:      productSvc,
		Cart:          cartSvc,
		Relay:         relay,
		Checkout:      checkoutSvc,
		Orders:        ordersSvc,
		Metrics:       registry,
	}, nil
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
