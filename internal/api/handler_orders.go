package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"canteen-order-backend/internal/mw"
	"canteen-order-backend/internal/service"
)

type createOrderRequest struct {
	ShiftID   int64  `json:"shift_id" binding:"required"`
	OrderDate string `json:"order_date" binding:"required"`
	CanteenID *int64 `json:"canteen_id"`
}

// CreateOrder handles POST /api/orders.
func (h *Handler) CreateOrder(c *gin.Context) {
	caller, ok := mw.CallerIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	orderDate, err := time.Parse("2006-01-02", req.OrderDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order_date must be YYYY-MM-DD"})
		return
	}

	res, err := h.svc.CreateReservation(c.Request.Context(), caller, service.CreateInput{
		ShiftID:   req.ShiftID,
		OrderDate: orderDate,
		CanteenID: req.CanteenID,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"reservation": res.Reservation,
		"token":       res.TokenView,
	})
}

// GetOrder handles GET /api/orders/:id.
func (h *Handler) GetOrder(c *gin.Context) {
	caller, ok := mw.CallerIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reservation id"})
		return
	}

	r, err := h.svc.GetReservation(c.Request.Context(), caller, id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

type cancelOrderRequest struct {
	Reason string `json:"reason"`
}

// CancelOrder handles DELETE /api/orders/:id.
func (h *Handler) CancelOrder(c *gin.Context) {
	caller, ok := mw.CallerIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reservation id"})
		return
	}

	var req cancelOrderRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
	}

	cancelled, err := h.svc.CancelReservation(c.Request.Context(), caller, id, req.Reason)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cancelled)
}
