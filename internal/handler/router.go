package handler

import (
	"log/slog"
	"time"

	"learnstudio/internal/metrics"
	"learnstudio/internal/middleware"
	"learnstudio/internal/service"

	"github.com/gin-gonic/gin"
)

// RouterConfig carries everything NewRouter wires into the engine
type RouterConfig struct {
	Version            string
	CORSAllowedOrigins []string
	RateLimitPerSecond float64
	RateLimitIPHeader  string
	RequestTimeout     time.Duration

	Logger  *slog.Logger
	Metrics *metrics.Metrics
	Store   Pinger

	Auth     service.AuthService
	Resets   service.ResetService
	Users    service.UserService
	Progress service.ProgressService
	Admin    service.AdminService
	Chat     service.ChatService
}

// NewRouter builds the gin engine with every route under /api
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestLogger(cfg.Logger, cfg.Metrics),
		middleware.CORS(cfg.CORSAllowedOrigins),
		middleware.Timeout(cfg.RequestTimeout),
	)

	authMW := middleware.Authenticate(cfg.Auth)
	adminMW := middleware.RequireAdmin()
	limitMW := middleware.RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitIPHeader)

	health := NewHealthHandler(cfg.Store, cfg.Version)
	router.GET("/", health.Banner)
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	apiGroup := router.Group("/api")
	apiGroup.GET("/health", health.Health)
	apiGroup.GET("/ready", health.Ready)

	NewAuthHandler(cfg.Auth, cfg.Resets).RegisterAuthRoutes(apiGroup, authMW, limitMW)
	NewUserHandler(cfg.Users).RegisterUserRoutes(apiGroup, authMW)
	NewProgressHandler(cfg.Progress).RegisterProgressRoutes(apiGroup, authMW)
	NewAdminHandler(cfg.Admin).RegisterAdminRoutes(apiGroup, authMW, adminMW)
	NewChatHandler(cfg.Chat).RegisterChatRoutes(apiGroup, authMW)

	return router
}
