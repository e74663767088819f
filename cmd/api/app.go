package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Outis2001/ayubo-cafe-sub003/internal/adapter/api/controller"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/adapter/api/route"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/config"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/infrastructure/database"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/service"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/store"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/store/memory"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/store/postgres"
	"github.com/Outis2001/ayubo-cafe-sub003/pkg/clock"
	"github.com/Outis2001/ayubo-cafe-sub003/pkg/logger"
	"github.com/Outis2001/ayubo-cafe-sub003/pkg/notifier"
	"github.com/jackc/pgx/v5/pgxpool"
)

// App wires configuration, storage, services, and the HTTP server
type App struct {
	cfg    *config.Config
	log    logger.Logger
	pool   *pgxpool.Pool
	redis  *notifier.RedisNotifier
	status *service.StatusService
	server *http.Server
}

// NewApp builds the application from the environment
func NewApp(cfg *config.Config, log logger.Logger) (*App, error) {
	app := &App{cfg: cfg, log: log}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	clk := clock.System(loc)

	var st store.Store
	switch cfg.StoreBackend {
	case "postgres":
		pool, err := database.NewPool(context.Background(), cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		app.pool = pool
		st = postgres.New(pool)
		log.Info("using postgres store")
	case "memory":
		st = memory.New()
		log.Warn("using in-memory store, data will not survive restarts")
	}

	var events notifier.Notifier = notifier.Noop{}
	if cfg.RedisAddr != "" {
		rn, err := notifier.NewRedisNotifier(cfg.RedisAddr, cfg.NotifyChannel)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.redis = rn
		events = rn
		log.Info("notifications enabled", "channel", cfg.NotifyChannel)
	}

	inventorySvc := service.NewInventoryService(st, clk, log)
	orderSvc := service.NewOrderService(st, clk, log, events)
	returnSvc := service.NewReturnService(st, clk, log, events)
	statusSvc := service.NewStatusService(st, clk, log, events)
	authSvc := service.NewAuthService(st, log, cfg.JWTSecret, cfg.TokenTTL)
	app.status = statusSvc

	router := route.SetupRouter(route.Controllers{
		Auth:      controller.NewAuthController(authSvc, log),
		Inventory: controller.NewInventoryController(inventorySvc, log),
		Orders:    controller.NewOrderController(orderSvc, statusSvc, log),
		Returns:   controller.NewReturnController(returnSvc, log),
		Requests:  controller.NewRequestController(statusSvc, log),
	}, cfg.JWTSecret)

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return app, nil
}

// Start runs the HTTP server; it blocks until the server stops
func (a *App) Start() error {
	a.log.Info("server starting", "port", a.cfg.Port)
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// RunQuoteSweep periodically expires stale quotes until the context ends
func (a *App) RunQuoteSweep(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.QuoteSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := a.status.ExpireStaleQuotes(ctx); err != nil {
				a.log.Error("quote sweep failed", "error", err)
			}
		}
	}
}

// Shutdown stops the HTTP server gracefully
func (a *App) Shutdown(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}

// Close releases storage and broker connections
func (a *App) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
