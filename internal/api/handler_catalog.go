package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ListShifts handles GET /api/shifts.
func (h *Handler) ListShifts(c *gin.Context) {
	shifts, err := h.store.ListShifts(c.Request.Context())
	if err != nil {
		h.logger.Error("list shifts", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"shifts": shifts})
}

// ListCanteens handles GET /api/canteens.
func (h *Handler) ListCanteens(c *gin.Context) {
	canteens, err := h.store.ListCanteens(c.Request.Context())
	if err != nil {
		h.logger.Error("list canteens", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"canteens": canteens})
}
