package routes

import (
	"net/http"
	"time"

	"slotbook/handlers"
	"slotbook/middleware"
	"slotbook/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func withAuth(hb *handlers.HandlerBundle, h gin.HandlerFunc) []gin.HandlerFunc {
	if hb.AuthMiddleware == nil {
		return []gin.HandlerFunc{h}
	}
	return []gin.HandlerFunc{hb.AuthMiddleware, h}
}

// RegisterProviderRoutes registers schedule submission and lookup.
func RegisterProviderRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/providers")
	{
		api.POST("", withAuth(hb, hb.SubmitAvailabilityHandler)...)
		api.GET("/:id", hb.GetProviderHandler)
	}
}

// RegisterSlotRoutes registers the public availability query.
func RegisterSlotRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/api/slots", hb.ListSlotsHandler)
}

// RegisterReservationRoutes sets up the endpoints for the reservation ledger.
func RegisterReservationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/reservations")
	{
		api.POST("", withAuth(hb, hb.ReserveHandler)...)
		api.POST("/confirm", withAuth(hb, hb.ConfirmHandler)...)
		api.GET("/:id", withAuth(hb, hb.GetReservationHandler)...)
	}
}

// RegisterHealthRoute registers a health-check endpoint backed by the last dependency snapshot.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		status := utils.GetHealthStatus()
		if !status.Healthy() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "dependencies": status})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "dependencies": status})
	})
}

// RegisterMetricsRoute exposes Prometheus metrics.
func RegisterMetricsRoute(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(utils.MetricsHandler()))
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterProviderRoutes(r, hb)
	RegisterSlotRoutes(r, hb)
	RegisterReservationRoutes(r, hb)
	RegisterHealthRoute(r)
	RegisterMetricsRoute(r)
}
