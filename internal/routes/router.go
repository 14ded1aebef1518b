package routes

import (
	"anime-api/internal/config"
	"anime-api/internal/controller"
	"anime-api/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Router registers every route under /api.
func Router(cfg *config.Config, h *controller.Handler) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
		middleware.Timeout(cfg.RequestTimeoutDuration()),
	)

	api := router.Group("/api")
	api.GET("/healthchecker", h.HealthChecker)
	api.GET("/ready", h.Ready)

	animes := api.Group("/animes")
	{
		animes.GET("", h.ListAnimes)
		animes.POST("", h.CreateAnime)
		animes.POST("/", h.CreateAnime)
		animes.GET("/:id", h.GetAnime)
		animes.PATCH("/:id", h.UpdateAnime)
		animes.DELETE("/:id", h.DeleteAnime)
	}

	return router
}
