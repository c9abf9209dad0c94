package handlers

import (
	"fmt"
	"net/http"

	"github.com/SscSPs/btc_rate_service/cmd/docs"
	portssvc "github.com/SscSPs/btc_rate_service/internal/core/ports/services"
	"github.com/SscSPs/btc_rate_service/internal/middleware"
	"github.com/SscSPs/btc_rate_service/internal/platform/config"
	"github.com/SscSPs/btc_rate_service/internal/utils"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	posthogClient *utils.PosthogClientWrapper,
) error {
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	loginLimiter, err := middleware.NewMemoryLimiter(cfg.LoginRateLimit)
	if err != nil {
		return fmt.Errorf("invalid LOGIN_RATE_LIMIT %q: %w", cfg.LoginRateLimit, err)
	}
	createLimiter, err := middleware.NewMemoryLimiter(cfg.CreateRateLimit)
	if err != nil {
		return fmt.Errorf("invalid CREATE_RATE_LIMIT %q: %w", cfg.CreateRateLimit, err)
	}

	api := r.Group("/api")

	// Public routes
	registerUserRoutes(api,
		newUserHandler(services.Credentials, services.Sessions, services.User),
		middleware.RateLimit(loginLimiter),
		middleware.RateLimit(createLimiter),
	)

	// Routes behind a session token
	authed := api.Group("",
		middleware.AuthMiddleware(services.Sessions),
		middleware.PosthogMiddleware(posthogClient),
	)
	registerRateRoutes(authed, newRateHandler(services.Rates))

	setupSwaggerRoutes(r, cfg)
	return nil
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
