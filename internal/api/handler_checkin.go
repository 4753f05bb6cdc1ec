package api

import (
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"

	"canteen-order-backend/internal/mw"
	"canteen-order-backend/internal/service"
)

type qrCheckInRequest struct {
	Token       string `json:"token" binding:"required"`
	CanteenID   *int64 `json:"canteen_id"`
	PhotoBase64 string `json:"photo_base64"`
}

// CheckInQR handles POST /api/checkin/qr.
func (h *Handler) CheckInQR(c *gin.Context) {
	operator, ok := h.requireStaff(c)
	if !ok {
		return
	}

	var req qrCheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	in, ok := h.checkInInput(c, req.CanteenID, req.PhotoBase64)
	if !ok {
		return
	}

	res, err := h.svc.CheckInByToken(c.Request.Context(), operator, req.Token, in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	writeCheckInResult(c, res)
}

type manualCheckInRequest struct {
	Identifier  string `json:"identifier" binding:"required"`
	CanteenID   *int64 `json:"canteen_id"`
	PhotoBase64 string `json:"photo_base64"`
}

// CheckInManual handles POST /api/checkin/manual.
func (h *Handler) CheckInManual(c *gin.Context) {
	operator, ok := h.requireStaff(c)
	if !ok {
		return
	}

	var req manualCheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	in, ok := h.checkInInput(c, req.CanteenID, req.PhotoBase64)
	if !ok {
		return
	}

	res, err := h.svc.CheckInManual(c.Request.Context(), operator, req.Identifier, in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	writeCheckInResult(c, res)
}

func (h *Handler) requireStaff(c *gin.Context) (service.Identity, bool) {
	caller, ok := mw.CallerIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return service.Identity{}, false
	}
	if !caller.Staff() {
		c.JSON(http.StatusForbidden, gin.H{"error": "check-in requires a staff role"})
		return service.Identity{}, false
	}
	return caller, true
}

func (h *Handler) checkInInput(c *gin.Context, canteenID *int64, photoBase64 string) (service.CheckInInput, bool) {
	in := service.CheckInInput{CanteenID: canteenID}
	if photoBase64 != "" {
		photo, err := base64.StdEncoding.DecodeString(photoBase64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "photo_base64 is not valid base64"})
			return in, false
		}
		in.Photo = photo
	}
	return in, true
}

func writeCheckInResult(c *gin.Context, res *service.CheckInResult) {
	c.JSON(http.StatusOK, gin.H{
		"reservation":        res.Reservation,
		"already_checked_in": res.AlreadyCheckedIn,
	})
}
