package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/MrHoror07/sevenaiproo/internal/audit"
	"github.com/MrHoror07/sevenaiproo/internal/auth"
	"github.com/MrHoror07/sevenaiproo/internal/config"
	"github.com/MrHoror07/sevenaiproo/internal/http/handlers"
	"github.com/MrHoror07/sevenaiproo/internal/http/middlewares"
	"github.com/MrHoror07/sevenaiproo/internal/notifications"
	"github.com/MrHoror07/sevenaiproo/internal/observability"
	"github.com/MrHoror07/sevenaiproo/internal/repo/postgres"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const (
	authRateLimit  = 10 // per window, per IP
	authRateWindow = time.Minute
)

// NewRouter wires repositories, services and handlers into the gin engine.
// rdb may be nil; rate limiting then falls back to per-process counters.
func NewRouter(cfg config.Config, log *slog.Logger, pool *pgxpool.Pool, rdb *redis.Client, prom *observability.Prom, promReg *prometheus.Registry) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("sevenai-api"))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))
	r.Use(middlewares.RequireJSON())
	if prom != nil {
		r.Use(prom.GinHandleMiddleware())
	}

	// health
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if promReg != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(promReg, promhttp.HandlerOpts{})))
	}

	// repositories
	usersRepo := postgres.NewUsersRepo(pool)
	sessionsRepo := postgres.NewSessionsRepo(pool)
	paymentsRepo := postgres.NewPaymentsRepo(pool)
	videosRepo := postgres.NewVideosRepo(pool)
	notificationsRepo := postgres.NewNotificationsRepo(pool)
	activityRepo := postgres.NewActivityRepo(pool)
	jobsRepo := postgres.NewJobsRepo(pool, prom)

	// services
	recorder := audit.NewStoreRecorder(activityRepo, log)
	notifier := notifications.NewStoreNotifier(notificationsRepo)

	tokens := auth.NewTokenManager(cfg.SessionSecret)
	registry := auth.NewRegistry(sessionsRepo, usersRepo, tokens, cfg.SessionTTL())
	authSvc := auth.NewService(usersRepo, registry, recorder, log)

	authMW := middlewares.NewAuthMiddleware(authSvc)

	// rate limit the credential surface; shared counters when redis is up
	var authLimit gin.HandlerFunc
	if rdb != nil {
		authLimit = middlewares.NewRedisRateLimiter(rdb, authRateLimit, authRateWindow).
			RateLimiterMiddleware(middlewares.KeyByIP)
	} else {
		authLimit = middlewares.NewRateLimiter(authRateLimit, authRateWindow).
			RateLimiterMiddleware(middlewares.KeyByIP)
	}

	// handlers
	authHandler := handlers.NewAuthHandler(authSvc, prom)
	paymentsHandler := handlers.NewPaymentsHandler(paymentsRepo, usersRepo, jobsRepo, notifier, recorder)
	videosHandler := handlers.NewVideosHandler(videosRepo, jobsRepo, recorder)
	notificationsHandler := handlers.NewNotificationsHandler(notificationsRepo, notifier)
	supportHandler := handlers.NewSupportHandler(notifier, recorder)
	adminHandler := handlers.NewAdminHandler(usersRepo, activityRepo, notifier, recorder)

	// routes
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", authLimit, authHandler.Register)
		authGroup.POST("/login", authLimit, authHandler.Login)
		authGroup.POST("/logout", authMW.RequireAuth(), authHandler.Logout)
		authGroup.GET("/me", authMW.RequireAuth(), authHandler.Me)
	}

	api := r.Group("/", authMW.RequireAuth())
	{
		api.POST("/payments", paymentsHandler.Create)
		api.GET("/payments", paymentsHandler.History)
		api.POST("/payments/:id/verify", paymentsHandler.Verify)

		api.POST("/videos", videosHandler.Upload)
		api.GET("/videos", videosHandler.List)
		api.POST("/videos/:id/export", videosHandler.Export)

		api.GET("/notifications", notificationsHandler.List)
		api.POST("/notifications", notificationsHandler.Create)
		api.POST("/notifications/:id/read", notificationsHandler.MarkRead)

		api.POST("/support", supportHandler.Submit)
	}

	admin := r.Group("/admin", authMW.RequireAuth(), authMW.RequireAdmin())
	{
		admin.GET("/users", adminHandler.ListUsers)
		admin.PUT("/users/:id/status", adminHandler.UpdateUserStatus)
		admin.GET("/activity", adminHandler.Activity)
		admin.POST("/notifications", notificationsHandler.CreateForUser)
	}

	return r
}
