package main // Entry point package

import (
	"context"
	"errors"
	"log" // Logging library
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4" // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/nyumbalink/nyumbalink/internal/cache"
	"github.com/nyumbalink/nyumbalink/internal/config" // Internal config loader
	"github.com/nyumbalink/nyumbalink/internal/database"
	"github.com/nyumbalink/nyumbalink/internal/handler"
	"github.com/nyumbalink/nyumbalink/internal/model"
	"github.com/nyumbalink/nyumbalink/internal/queue"
	"github.com/nyumbalink/nyumbalink/internal/repository"
	"github.com/nyumbalink/nyumbalink/internal/router" // Internal router setup
	"github.com/nyumbalink/nyumbalink/internal/service"
	"github.com/nyumbalink/nyumbalink/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("env: .env not loaded: %v", err)
	}
	cfg := config.Load() // Load environment config
	cacheCfg, err := config.LoadCacheConfig()
	if err != nil {
		log.Fatalf("cache config: %v", err)
	}
	rateCfg, err := config.LoadRateLimitConfig()
	if err != nil {
		log.Fatalf("rate limit config: %v", err)
	}
	storeCfg, err := config.LoadStorageConfig()
	if err != nil {
		log.Fatalf("storage config: %v", err)
	}
	queueCfg, err := config.LoadQueueConfig()
	if err != nil {
		log.Fatalf("queue config: %v", err)
	}
	poolCfg, err := config.LoadPoolConfig()
	if err != nil {
		log.Fatalf("pool config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, dbSettings(cfg, poolCfg))
	if err != nil {
		log.Fatalf("mysql: %v", err)
	}
	defer db.Close()
	if cfg.AutoMigrate {
		res, err := database.Migrate(ctx, db)
		if err != nil {
			log.Fatalf("migrate: %v", err)
		}
		for _, r := range res {
			if r.Applied {
				log.Printf("migrate: applied %s", r.Name)
			}
		}
	}

	rdb := config.NewRedisClient() // nil disables caching and rate limiting
	if rdb != nil {
		defer rdb.Close()
	}

	var objects storage.ImageStore
	if storeCfg.Enabled {
		mc, err := storage.NewMongoClient(ctx, storeCfg.MongoURI)
		if err != nil {
			log.Printf("gridfs: %v; image upload disabled", err)
		} else {
			defer mc.Disconnect(context.Background())
			gs, err := storage.NewGridFSStore(mc, storeCfg.Database, storeCfg.Bucket)
			if err != nil {
				log.Fatalf("gridfs: %v", err)
			}
			objects = gs
		}
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	properties := repository.NewPropertyRepo(db)
	images := repository.NewImageRepo(db)
	inquiries := repository.NewInquiryRepo(db)
	bookings := repository.NewBookingRepo(db)
	payments := repository.NewPaymentRepo(db)
	notifications := repository.NewNotificationRepo(db)
	stats := repository.NewStatsRepo(db)

	notifier := &service.Notifier{Users: users, Notifications: notifications}
	var dispatch service.Dispatcher = service.DirectDispatcher{Deliverer: notifier}
	if queueCfg.Enabled {
		pub := service.NewQueuePublisher(queueCfg, dispatch)
		defer pub.Close()
		dispatch = pub
		go func() {
			if err := queue.StartNotificationConsumer(ctx, queueCfg, notifier); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("notify-consumer: %v", err)
			}
		}()
	}

	views := cache.NewViewCache[model.Property](rdb, cacheCfg.Prefix+":property", cacheCfg.ViewTTL)
	if !cacheCfg.Enabled {
		views = nil
	}
	listings := &handler.PropertyHandler{
		Properties: properties,
		Images:     images,
		Objects:    objects,
		Views:      views,
		MaxUpload:  storeCfg.MaxUploadBytes,
	}

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.BodyLimit(bodyLimit(storeCfg.MaxUploadBytes)))

	router.Register(e, router.Handlers{
		Auth:          handler.NewAuthHandler(cfg, users, tokens),
		Properties:    listings,
		Inquiries:     &handler.InquiryHandler{Inquiries: inquiries, Properties: properties, Notify: dispatch},
		Bookings:      &handler.BookingHandler{Bookings: bookings, Properties: properties, Views: views, Notify: dispatch},
		Payments:      &handler.PaymentHandler{Payments: payments, Bookings: bookings, Users: users, Notify: dispatch},
		Notifications: &handler.NotificationHandler{Notifications: notifications},
		Dashboard:     &handler.DashboardHandler{Stats: stats, Users: users, Notifications: notifications},
		Admin:         &handler.AdminHandler{Users: users, Tokens: tokens, Stats: stats, Listings: listings},
		DB:            db,
	}, router.Options{
		JWTSecret:   cfg.JWTSecret,
		CORSOrigins: cfg.CORSOrigins,
		Cache:       cacheCfg,
		RateLimit:   rateCfg,
		Redis:       rdb,
	})

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) { // Start HTTP server
			log.Fatal(err) // Log and exit if server fails
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

// bodyLimit leaves room for multipart framing around the largest upload.
func bodyLimit(maxUpload int64) string {
	const overhead = 1 << 20
	mb := (maxUpload + overhead + (1<<20 - 1)) >> 20
	if mb < 2 {
		mb = 2
	}
	return strconv.FormatInt(mb, 10) + "M"
}

func dbSettings(cfg config.Config, pool config.PoolConfig) database.Settings {
	return database.Settings{
		User: cfg.DBUser, Pass: cfg.DBPass,
		Host: cfg.DBHost, Port: cfg.DBPort,
		Name:            cfg.DBName,
		MaxOpenConns:    pool.MaxOpenConns,
		MaxIdleConns:    pool.MaxIdleConns,
		ConnMaxLifetime: pool.ConnMaxLifetime,
	}
}
