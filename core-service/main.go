package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"orghierarchy-backend/core-service/handlers"
	"orghierarchy-backend/core-service/middleware"
	"orghierarchy-backend/docs"
	"orghierarchy-backend/shared/config"
	"orghierarchy-backend/shared/database"
	"orghierarchy-backend/shared/events"
	"orghierarchy-backend/shared/hierarchy"
	"orghierarchy-backend/shared/logger"
	"orghierarchy-backend/shared/storage"
	"orghierarchy-backend/shared/utils/cache"
	"orghierarchy-backend/shared/utils/permission"
)

func main() {
	config.LoadConfig()
	cfg := config.GetConfig()
	log := logger.Init(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.InitDatabase(); err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}
	defer database.CloseDatabase()

	checker := newPermissionChecker(ctx, cfg, log)

	hub := events.NewHub([]string{cfg.FrontendURL}, log)
	go hub.Run(ctx)

	svc := hierarchy.NewService(
		hierarchy.NewGormStore(database.GetDB()),
		hierarchy.NewGormAuditSink(database.GetDB()),
		checker,
		cfg.GetHierarchyMaxDepth(),
		hierarchy.WithLogger(log),
		hierarchy.WithEventPublisher(hub),
	)

	var logos storage.LogoStore
	if store, err := storage.NewMinIOLogoStore(ctx, cfg, log); err != nil {
		log.WithError(err).Warn("logo storage unavailable, uploads are disabled")
	} else {
		logos = store
	}

	if err := handlers.RegisterValidators(); err != nil {
		log.WithError(err).Fatal("failed to register validators")
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.GinMiddleware(log))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", logger.RequestIDHeader},
		ExposeHeaders:    []string{logger.RequestIDHeader, "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	limiter := middleware.NewRateLimiter(ctx, time.Hour)
	handlers.RegisterRoutes(router,
		handlers.NewOrganizationHandler(svc, logos, cfg.GetLogoMaxFileSize(), log),
		handlers.NewEventsHandler(hub, log),
		middleware.AuthMiddleware(cfg.SessionCookieName),
		limiter.Middleware(middleware.NewRateLimitConfig(cfg)),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "healthy",
			"service":     "core",
			"subscribers": hub.ConnectionCount(),
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	port := config.ServicePort(cfg.CoreServiceURL, "8003")
	docs.SwaggerInfo.Host = "localhost:" + port

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", port).Info("core service starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down core service")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}

// newPermissionChecker picks the permission backend named by PERMISSION_BACKEND
// and wraps it in the Redis decision cache when enabled.
func newPermissionChecker(ctx context.Context, cfg *config.Config, log *logrus.Logger) permission.Checker {
	var checker permission.Checker = permission.NewRoleChecker()
	if cfg.PermissionBackend == "remote" {
		checker = permission.NewRemoteChecker(cfg.PermissionServiceURL)
		log.WithField("url", cfg.PermissionServiceURL).Info("using remote permission service")
	}

	if !cfg.PermissionCacheEnabled {
		return checker
	}
	client, err := cache.NewRedisClient(ctx, cfg)
	if err != nil {
		log.WithError(err).Warn("permission cache disabled")
		return checker
	}
	return permission.NewCachedChecker(checker, cache.NewCacheManager(client, "orghierarchy:perm", cfg.GetPermissionCacheTTL()), log)
}
