package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adriaticstays/booking-api/internal/api"
	checkout "github.com/adriaticstays/booking-api/internal/client"
	"github.com/adriaticstays/booking-api/internal/ports"
	"github.com/adriaticstays/booking-api/internal/repository"
	"github.com/adriaticstays/booking-api/internal/service"
	"github.com/adriaticstays/booking-api/internal/utils"
	"github.com/adriaticstays/booking-api/pkg/config"
	"github.com/adriaticstays/booking-api/pkg/health"
	"github.com/adriaticstays/booking-api/pkg/logger"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const sweepInterval = time.Minute

type App struct {
	config *config.Config
	logger *zap.Logger
	server *http.Server
	db     *pgxpool.Pool
}

func NewApp(cfg *config.Config, l *zap.Logger) *App {
	return &App{
		config: cfg,
		logger: l,
	}
}

func (a *App) Initialize(ctx context.Context) error {
	if err := a.setupDatabase(ctx); err != nil {
		return fmt.Errorf("database setup failed: %w", err)
	}

	if err := a.setupServer(ctx); err != nil {
		return fmt.Errorf("server setup failed: %w", err)
	}

	return nil
}

func (a *App) setupDatabase(ctx context.Context) error {
	poolConfig, err := pgxpool.ParseConfig(a.config.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	a.db = pool
	return nil
}

func (a *App) setupServer(ctx context.Context) error {
	services := a.setupServices(ctx)
	router := a.setupRouter(services)

	a.server = &http.Server{
		Addr:         a.config.Server.Address,
		Handler:      router,
		WriteTimeout: a.config.Server.WriteTimeout,
		ReadTimeout:  a.config.Server.ReadTimeout,
		IdleTimeout:  a.config.Server.IdleTimeout,
	}

	return nil
}

type Services struct {
	BookingService ports.BookingService
}

func (a *App) setupServices(ctx context.Context) Services {
	store := repository.NewStore(a.db)
	checkoutClient := checkout.NewClient(
		checkout.WithBaseURL(a.config.Checkout.BaseURL),
		checkout.WithSecretKey(a.config.Checkout.SecretKey),
	)

	bookingService := service.NewBookingService(
		store,
		checkoutClient,
		a.config.Checkout,
		a.config.Booking,
		a.logger,
	)
	bookingService.StartSessionSweeper(ctx, sweepInterval)

	return Services{BookingService: bookingService}
}

func (a *App) setupRouter(services Services) http.Handler {
	router := http.NewServeMux()
	handler := api.NewHandler(services.BookingService)
	jsonOnly := func(next http.HandlerFunc) http.HandlerFunc {
		return utils.AllowedContentTypes(next, "application/json")
	}

	router.HandleFunc("GET /v1/health", health.HealthGet())

	router.HandleFunc("GET /v1/listings", handler.Listings)
	router.HandleFunc("GET /v1/listings/{id}/calendar", handler.Calendar)

	router.HandleFunc("POST /v1/sessions", jsonOnly(handler.CreateSession))
	router.HandleFunc("GET /v1/sessions/{id}", handler.GetSession)
	router.HandleFunc("PATCH /v1/sessions/{id}", jsonOnly(handler.UpdateDraft))
	router.HandleFunc("DELETE /v1/sessions/{id}", handler.CloseSession)
	router.HandleFunc("POST /v1/sessions/{id}/coupon", jsonOnly(handler.ApplyCoupon))
	router.HandleFunc("DELETE /v1/sessions/{id}/coupon", handler.ClearCoupon)
	router.HandleFunc("POST /v1/sessions/{id}/review", handler.Review)
	router.HandleFunc("POST /v1/sessions/{id}/back", handler.Back)
	router.HandleFunc("POST /v1/sessions/{id}/confirm", handler.Confirm)

	return router
}

func (a *App) Run(ctx context.Context) error {
	serverErrors := make(chan error, 1)

	go func() {
		a.logger.Info("starting server", zap.String("address", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-shutdown:
		a.logger.Info("starting graceful shutdown")
		return a.Shutdown()
	case <-ctx.Done():
		return a.Shutdown()
	}
}

func (a *App) Shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if a.db != nil {
		a.db.Close()
	}

	return nil
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	l, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer l.Sync()

	app := NewApp(cfg, l)
	if err := app.Initialize(ctx); err != nil {
		l.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Run(ctx); err != nil {
		l.Fatal("application error", zap.Error(err))
	}
}
