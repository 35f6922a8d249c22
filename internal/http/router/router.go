package router

import (
	"html/template"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/ignatzorin/turismo/internal/config"
	"github.com/ignatzorin/turismo/internal/http/handlers"
	"github.com/ignatzorin/turismo/internal/http/middleware"
	"github.com/ignatzorin/turismo/internal/logger"
	"github.com/ignatzorin/turismo/internal/web"
)

func SetupRouter(
	cfg *config.Config,
	templates *template.Template,
	limiterStore limiter.Store,
	sessions *middleware.Sessions,
	authHandler *handlers.AuthHandler,
	activityHandler *handlers.ActivityHandler,
	favoriteHandler *handlers.FavoriteHandler,
	healthHandler *handlers.HealthHandler,
) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Без явного списка gin доверяет X-Forwarded-For от любого клиента.
	if err := r.SetTrustedProxies(trustedProxies(cfg)); err != nil {
		logger.Log.Warnf("router: некорректный список прокси, заголовки прокси игнорируются: %v", err)
		_ = r.SetTrustedProxies(nil)
	}
	r.SetHTMLTemplate(templates)
	r.Use(otelgin.Middleware(cfg.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Recovery())
	r.NoRoute(sessions.LoadIdentity(), middleware.NotFound)

	if healthHandler != nil {
		r.GET("/health", healthHandler.Health)
	}
	r.StaticFS("/static", web.Static())

	site := r.Group("/")
	site.Use(sessions.LoadIdentity())
	site.Use(middleware.ErrorHandler(sessions))
	{
		site.GET("/", activityHandler.Index)
		site.GET("/activity/:id", middleware.IDValidator("id"), activityHandler.Show)

		authRateLimit := middleware.RateLimitMiddleware(limiterStore, cfg.RateLimitLimit, cfg.RateLimitPeriod)
		site.GET("/login", authHandler.LoginForm)
		site.POST("/login", authRateLimit, authHandler.Login)
		site.GET("/register", authHandler.RegisterForm)
		site.POST("/register", authRateLimit, authHandler.Register)
		site.GET("/logout", authHandler.Logout)
	}

	protected := site.Group("/")
	protected.Use(sessions.RequireAuth())
	{
		protected.POST("/toggle_favorite/:activity_id", middleware.IDValidator("activity_id"), favoriteHandler.Toggle)
		protected.GET("/favorites", activityHandler.Favorites)
	}

	return r
}

func trustedProxies(cfg *config.Config) []string {
	if len(cfg.TrustedProxies) == 0 {
		return nil
	}
	return cfg.TrustedProxies
}
