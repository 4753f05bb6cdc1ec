package mw

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"canteen-order-backend/internal/service"
)

const identityKey = "mw.identity"

// Identity reads the caller supplied by the upstream identity provider from
// the X-User-ID / X-User-Role headers. The core trusts these verbatim;
// authentication happens before requests reach this service.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		rawID := c.GetHeader("X-User-ID")
		userID, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil || userID <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid identity"})
			return
		}

		role := c.GetHeader("X-User-Role")
		if role == "" {
			role = "user"
		}

		c.Set(identityKey, service.Identity{UserID: userID, Role: role})
		c.Next()
	}
}

// CallerIdentity returns the identity attached by the Identity middleware.
func CallerIdentity(c *gin.Context) (service.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return service.Identity{}, false
	}
	id, ok := v.(service.Identity)
	return id, ok
}
