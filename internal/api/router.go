package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"stayflo/internal/api/controllers"
	"stayflo/internal/config"
	"stayflo/pkg/metrics"
	"stayflo/pkg/middleware"
)

// Controllers collects every HTTP handler group for the router.
type Controllers struct {
	fx.In

	Health    *controllers.HealthController
	Property  *controllers.PropertyController
	Geocode   *controllers.GeocodeController
	Itinerary *controllers.ItineraryController
}

type RouterParams struct {
	fx.In

	Config      *config.Config
	Log         *zap.Logger
	Metrics     *metrics.Metrics
	Controllers Controllers
}

func NewRouter(p RouterParams) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.TraceIDMiddleware())
	r.Use(middleware.ZapLogger(p.Log))
	r.Use(middleware.CORSMiddleware(p.Config.CORSOrigins))

	if p.Metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(p.Metrics.Registry, promhttp.HandlerOpts{})))
	}
	RegisterRoutes(r, p.Controllers)
	return r
}

func RegisterRoutes(r *gin.Engine, c Controllers) {
	r.GET("/health", c.Health.Health)
	r.GET("/properties/:slug", c.Property.GetProperty)

	public := r.Group("/public")
	public.GET("/geocode", c.Geocode.Geocode)

	itinerary := public.Group("/itinerary")
	itinerary.POST("/generate", c.Itinerary.Generate)
	itinerary.POST("/swap", c.Itinerary.Swap)
	itinerary.POST("/narrate", c.Itinerary.Narrate)
}
