package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/oiueei/oiueei/internal/app"
	"github.com/oiueei/oiueei/internal/clock"
	"github.com/oiueei/oiueei/internal/config"
	"github.com/oiueei/oiueei/internal/notify"
	"github.com/oiueei/oiueei/internal/storage/postgres"
	transporthttp "github.com/oiueei/oiueei/internal/transport/http"
	"github.com/oiueei/oiueei/migrations"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", slog.Any("error", err))
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}
	setupLogger(cfg.LogLevel)

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("connect to db", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		slog.Error("db ping", slog.Any("error", err))
		os.Exit(1)
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		slog.Error("apply migrations", slog.Any("error", err))
		os.Exit(1)
	}

	redisClient, closeRedis := notify.NewRedis(cfg.RedisAddr, cfg.RedisUser, cfg.RedisPassword)
	defer func() { _ = closeRedis() }()
	outbox := notify.NewOutbox(redisClient)

	clk := clock.NewSystem()

	bookingRepo := postgres.NewBookingRepository(pool)
	itemRepo := postgres.NewItemRepository(pool)
	directory := postgres.NewUserDirectory(pool)
	tokenRepo := postgres.NewTokenRepository(pool)
	collectionRepo := postgres.NewCollectionRepository(pool)

	tokenSvc := app.NewTokenService(tokenRepo, clk,
		app.WithTokenTTL(cfg.TokenExpiry),
	)
	bookingSvc := app.NewBookingService(bookingRepo, itemRepo, directory, tokenSvc, outbox, clk,
		app.WithBookingExpiry(cfg.BookingExpiry),
		app.WithMaxOrderQuantity(cfg.MaxOrderQuantity),
		app.WithActionBaseURL(cfg.ActionBaseURL),
	)
	actionSvc := app.NewActionService(tokenSvc, bookingSvc, collectionRepo)
	sweeper := app.NewSweeper(bookingRepo, bookingSvc, clk,
		app.WithSweepExpiry(cfg.BookingExpiry),
		app.WithSweepLimit(cfg.SweepLimit),
	)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	worker := notify.NewWorker(outbox, notify.LogMailer{})
	go worker.Run(workerCtx)

	router := transporthttp.NewRouter(transporthttp.RouterDeps{
		Bookings: bookingSvc,
		Actions:  actionSvc,
		Sweeper:  sweeper,
	})

	corsWrapper := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"Content-Type", "X-User-Code"},
		AllowCredentials: true,
	})
	handler := transporthttp.RequestLogger(corsWrapper.Handler(router))

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	slog.Info("api listening", slog.String("addr", server.Addr))

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	case <-stopCtx.Done():
		slog.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server shutdown error", slog.Any("error", err))
	}
	stopWorker()
	slog.Info("server stopped")
}

func setupLogger(level string) {
	var lvl slog.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		lvl = slog.LevelDebug
	case "WARN":
		lvl = slog.LevelWarn
	case "ERROR":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})))
}
