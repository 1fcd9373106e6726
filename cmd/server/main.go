package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/config"
	"github.com/iliyamo/hotel-reservation/internal/database"
	"github.com/iliyamo/hotel-reservation/internal/handler"
	"github.com/iliyamo/hotel-reservation/internal/middleware"
	"github.com/iliyamo/hotel-reservation/internal/queue"
	"github.com/iliyamo/hotel-reservation/internal/repository"
	"github.com/iliyamo/hotel-reservation/internal/router"
	"github.com/iliyamo/hotel-reservation/internal/service"
	"github.com/iliyamo/hotel-reservation/internal/utils"
)

func newLogger(env string) (*zap.Logger, error) {
	if env == "dev" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	_ = godotenv.Load() // .env is optional
	cfg := config.Load()

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis is optional: cache and rate limiter become passthroughs without it.
	rdb, err := config.NewRedisClient(config.LoadRedisConfig())
	if err != nil {
		logger.Warn("redis unavailable, cache and rate limit disabled", zap.Error(err))
	} else {
		defer rdb.Close()
	}

	var events service.EventPublisher
	if cfg.QueueEnabled {
		events = queue.NewPublisher(cfg.RabbitURL)
		consumer := queue.NewConsumer(cfg.RabbitURL, "", logger.Named("queue"))
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("reservation consumer stopped", zap.Error(err))
			}
		}()
	}

	gateway, err := service.NewPaymentGateway(cfg.PaymentGateway, cfg.PaymentAuthCode)
	if err != nil {
		logger.Fatal("payment gateway", zap.Error(err))
	}

	tx := database.NewRunner(db)
	rooms := repository.NewRoomRepo(db)
	reservations := repository.NewReservationRepo(db)
	transactions := repository.NewTransactionRepo(db)
	users := repository.NewUserRepo(db)
	roles := repository.NewRoleRepo(db)
	tokens := repository.NewTokenRepo(db)
	issuer := utils.NewIssuer(cfg.JWTSecret, cfg.AccessTTLMin, cfg.RefreshTTLDays)

	svcLog := logger.Named("service")
	availability := service.NewAvailabilityService(rooms, svcLog)
	bookings := service.NewBookingService(tx, rooms, reservations, transactions, gateway, events, svcLog)
	auth := service.NewAuthService(cfg, tx, users, roles, tokens, issuer, svcLog)

	httpLog := logger.Named("http")
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(httpLog))

	router.RegisterRoutes(e)
	router.RegisterAPI(e, router.Handlers{
		Catalog:      handler.NewCatalogHandler(repository.NewRoomTypeRepo(db), repository.NewServiceRepo(db), httpLog),
		Reservations: handler.NewReservationHandler(availability, bookings, httpLog),
		Auth:         handler.NewAuthHandler(auth, httpLog),
		Profile:      handler.NewProfileHandler(auth, httpLog),
	}, issuer, router.Middleware{
		Cache:     middleware.NewRedisCache(config.LoadCacheConfig(), rdb, httpLog),
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, httpLog),
	})

	addr := ":" + cfg.Port
	go func() {
		logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}
