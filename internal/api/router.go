package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"canteen-order-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, rateLimit rate.Limit, burst int, cacheTTL time.Duration) *gin.Engine {
	r := gin.Default()

	rateLimiter := mw.RateLimit(rateLimit, burst)

	// Cache catalog reads only. Ordering policy and reservation state are
	// read fresh on every request.
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter, mw.Identity())
	{
		api.GET("/shifts", caching, h.ListShifts)
		api.GET("/canteens", caching, h.ListCanteens)

		api.POST("/orders", h.CreateOrder)
		api.GET("/orders/:id", h.GetOrder)
		api.DELETE("/orders/:id", h.CancelOrder)

		api.POST("/checkin/qr", h.CheckInQR)
		api.POST("/checkin/manual", h.CheckInManual)

		api.GET("/push", h.GetSubscription)
		api.PUT("/push", h.PutSubscription)
		api.DELETE("/push", h.DeleteSubscription)
		api.GET("/push/vapid_public_key", h.GetVAPIDPublicKey)
	}

	return r
}
