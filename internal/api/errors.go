package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"canteen-order-backend/internal/service"
)

// writeError maps domain errors to HTTP responses. Business outcomes keep
// their detail (cutoff instant, bound canteen, capacity); anything
// unexpected becomes an opaque 500.
func (h *Handler) writeError(c *gin.Context, err error) {
	var (
		validationErr *service.ValidationError
		conflictErr   *service.ConflictError
		cutoffErr     *service.CutoffError
		holidayErr    *service.HolidayError
		capacityErr   *service.CapacityError
		windowErr     *service.TimeWindowError
		locationErr   *service.LocationMismatchError
		finalErr      *service.AlreadyFinalError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Msg})

	case errors.Is(err, service.ErrReservationNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrShiftNotFound),
		errors.Is(err, service.ErrCanteenNotFound),
		errors.Is(err, service.ErrNoActiveReservation):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.As(err, &conflictErr):
		body := gin.H{"error": conflictErr.Error()}
		if conflictErr.Existing != nil {
			body["existing_reservation_id"] = conflictErr.Existing.ID
		}
		c.JSON(http.StatusConflict, body)

	case errors.Is(err, service.ErrAlreadyCancelled):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.As(err, &finalErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":  finalErr.Error(),
			"status": finalErr.Reservation.Status,
		})

	case errors.As(err, &cutoffErr):
		body := gin.H{"error": cutoffErr.Reason}
		if !cutoffErr.CutoffAt.IsZero() {
			body["cutoff_at"] = cutoffErr.CutoffAt.Format(time.RFC3339)
		}
		c.JSON(http.StatusUnprocessableEntity, body)

	case errors.As(err, &holidayErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": holidayErr.Error()})

	case errors.Is(err, service.ErrShiftInactive):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})

	case errors.As(err, &capacityErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":    capacityErr.Error(),
			"capacity": capacityErr.Limit,
		})

	case errors.As(err, &windowErr):
		body := gin.H{
			"error":          windowErr.Reason,
			"reservation_id": windowErr.Reservation.ID,
		}
		if !windowErr.ClosesAt.IsZero() {
			body["window_closed_at"] = windowErr.ClosesAt.Format(time.RFC3339)
		}
		c.JSON(http.StatusUnprocessableEntity, body)

	case errors.As(err, &locationErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":         locationErr.Error(),
			"bound_canteen": locationErr.Canteen,
		})

	default:
		h.logger.Error("request failed", zap.Error(err), zap.String("path", c.FullPath()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
