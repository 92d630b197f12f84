package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"rentalhousing/internal/config"
	"rentalhousing/internal/database"
	"rentalhousing/internal/middleware"
	"rentalhousing/internal/modules/auth"
	"rentalhousing/internal/modules/booking"
	"rentalhousing/internal/modules/feed"
	"rentalhousing/internal/modules/listing"
	"rentalhousing/internal/modules/review"
	"rentalhousing/internal/modules/stats"
	"rentalhousing/internal/notifier"
	jwtsvc "rentalhousing/internal/pkg/jwt"
	"rentalhousing/internal/pkg/rabbitmq"
	"rentalhousing/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}
	log.SetFormatter(&log.JSONFormatter{})

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("failed to run migrations")
	}

	// repositories
	userRepo := repository.NewUserRepository(db)
	listingRepo := repository.NewListingRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	// event fan-out: broker is optional, websocket feed is always on
	var publisher *rabbitmq.Publisher
	if cfg.RabbitURL != "" {
		publisher, err = rabbitmq.NewPublisher(cfg.RabbitURL)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to rabbitmq")
		}
		defer publisher.Close()
	} else {
		log.Warn("RABBITMQ_URL not set, booking events will not reach the mail worker")
	}

	hub := feed.NewHub()
	defer hub.Close()

	var notifs *notifier.Service
	if publisher != nil {
		notifs = notifier.New(publisher, hub)
	} else {
		notifs = notifier.New(nil, hub)
	}

	// services
	jwtService := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)
	authService := auth.NewService(userRepo, jwtService)
	statsService := stats.NewService(statsRepo)
	listingService := listing.NewService(listingRepo, bookingRepo, statsService)
	bookingService := booking.NewService(bookingRepo, listingRepo, userRepo, notifs)
	reviewService := review.NewService(reviewRepo, bookingRepo, listingRepo, statsRepo)

	// http
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(), middleware.CORS())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	public := router.Group("/api/v1")
	protected := router.Group("/api/v1")
	protected.Use(middleware.Auth(jwtService))

	auth.NewHandler(authService).RegisterRoutes(public)
	listing.NewHandler(listingService).RegisterRoutes(public, protected)
	booking.NewHandler(bookingService).RegisterRoutes(protected)
	review.NewHandler(reviewService).RegisterRoutes(public, protected)
	stats.NewHandler(statsService).RegisterRoutes(public)
	feed.NewHandler(hub).RegisterRoutes(protected)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("forced shutdown")
	}
}
