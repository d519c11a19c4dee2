package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/qmotor/car-marketplace/internal/config"
	"github.com/qmotor/car-marketplace/internal/database"
	"github.com/qmotor/car-marketplace/internal/handler"
	"github.com/qmotor/car-marketplace/internal/queue"
	"github.com/qmotor/car-marketplace/internal/repository"
	"github.com/qmotor/car-marketplace/internal/router"
	"github.com/qmotor/car-marketplace/internal/service"
	"github.com/qmotor/car-marketplace/internal/storage"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName,
		database.Pool{
			MaxOpen:     cfg.DBMaxOpen,
			MaxIdle:     cfg.DBMaxIdle,
			MaxLifetime: time.Duration(cfg.DBConnLifeMin) * time.Minute,
		})
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	store, err := storage.New(cfg.UploadDir, cfg.PublicBaseURL)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	// Repositories.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	profiles := repository.NewProfileRepo(db)
	brands := repository.NewBrandRepo(db)
	cars := repository.NewCarRepo(db)
	images := repository.NewCarImageRepo(db)
	favorites := repository.NewFavoriteRepo(db)
	auditLogs := repository.NewAdminLogRepo(db)
	notifications := repository.NewNotificationRepo(db)

	// Workflows.
	reconciler := &service.ProfileReconciler{Profiles: profiles}
	moderation := &service.Moderation{
		Cars:          cars,
		Audit:         auditLogs,
		Notifications: notifications,
		Events:        service.QueuePublisher{},
	}

	h := router.Handlers{
		Auth:         handler.NewAuthHandler(cfg, users, tokens, profiles, reconciler),
		Profile:      handler.NewProfileHandler(profiles),
		Brand:        handler.NewBrandHandler(brands),
		Browse:       handler.NewCarBrowseHandler(cars, favorites),
		Listing:      handler.NewListingHandler(cars, images, brands, store),
		MyAds:        handler.NewMyAdsHandler(cars, store),
		Favorite:     handler.NewFavoriteHandler(favorites, cars),
		Notification: handler.NewNotificationHandler(notifications),
		Admin:        handler.NewAdminHandler(cars, profiles, auditLogs, store, moderation),
	}

	// Redis is optional; cache and rate limiting degrade to no-ops
	// without it.
	rdb := config.NewRedisClient()

	e := echo.New()
	e.HideBanner = true
	router.Register(e, h, cfg.JWTSecret, rdb)

	// Background consumer mirroring moderation decisions to a log file.
	go func() {
		if err := queue.StartModerationConsumer(); err != nil {
			log.Printf("moderation-consumer: stopped: %v", err)
		}
	}()

	// Periodic sweep of dead refresh-token rows.
	go func() {
		for range time.Tick(12 * time.Hour) {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			n, err := tokens.PurgeExpired(ctx)
			cancel()
			if err != nil {
				log.Printf("token purge: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("token purge: removed %d expired sessions", n)
			}
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
