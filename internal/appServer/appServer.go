package appServer

import (
	"context"
	"crypto/tls"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eventmind/eventmind/config"
	"github.com/eventmind/eventmind/internal/auth"
	repository "github.com/eventmind/eventmind/internal/database/postgres"
	cache "github.com/eventmind/eventmind/internal/database/redis"
	"github.com/eventmind/eventmind/internal/push"
	"github.com/eventmind/eventmind/internal/service"
	"github.com/eventmind/eventmind/internal/transport"
	"github.com/eventmind/eventmind/internal/transport/middleware"
	"github.com/eventmind/eventmind/internal/worker"
	"github.com/eventmind/eventmind/pkg/postgres"
	"github.com/eventmind/eventmind/pkg/redis"
	"github.com/eventmind/eventmind/pkg/scheduler"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
		ErrorLog:          log.New(os.Stderr, "SERVER ERROR: ", log.LstdFlags),
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func NewServer(cfg *config.Config) {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)

	// Initialize database
	db, err := postgres.NewPostgresDB(&cfg.Database)
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run database migrations
	if err := postgres.RunMigrations(db); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repositories
	eventRepo := repository.NewEventRepository(db)
	userRepo := repository.NewUserRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)

	// Initialize event list cache
	var eventCache *cache.EventListCache
	if cfg.Redis.Enabled {
		redisClient := redis.NewRedisClient(&cfg.Redis)
		defer redisClient.Close()
		eventCache = cache.NewEventListCache(redisClient, cfg.Cache.EventListTTL)
	} else {
		logrus.Warn("Redis disabled, event list caching is off")
	}

	// Initialize services
	tokenManager := auth.NewTokenManager(&cfg.JWT)
	authService := service.NewAuthService(userRepo, tokenManager)
	eventService := service.NewEventService(eventRepo, eventCache)
	subscriptionService := service.NewSubscriptionService(subRepo, &cfg.Push)

	// Initialize push dispatcher
	if cfg.Push.VAPIDPublicKey == "" || cfg.Push.VAPIDPrivateKey == "" {
		logrus.Warn("VAPID keys not configured, push delivery will fail until set")
	}
	dispatcher := push.NewWebPushDispatcher(&cfg.Push)

	// Initialize and start the reminder scanner
	scanner := worker.NewReminderScanner(eventRepo, userRepo, subRepo, dispatcher, eventCache)
	reminderScheduler := scheduler.NewScheduler(scanner, cfg.Scanner.Interval)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go reminderScheduler.Start(ctx)
	logrus.Info("Reminder scanner started")

	// Initialize handlers
	secureCookies := cfg.Server.Env == "production"
	authHandler := transport.NewAuthHandler(authService, &cfg.JWT, secureCookies)
	eventHandler := transport.NewEventHandler(eventService)
	notificationHandler := transport.NewNotificationHandler(subscriptionService)
	authRequired := middleware.Auth(tokenManager, cfg.JWT.CookieName)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := new(Server)
	go func() {
		handler := transport.InitRoutes(authHandler, eventHandler, notificationHandler, authRequired)
		if err := srv.Run(cfg, handler); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")

	if err := srv.Shutdown(context.Background()); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}
}
