package api

import (
	"go.uber.org/zap"

	"canteen-order-backend/internal/service"
	"canteen-order-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	svc            *service.Service
	store          store.Store
	logger         *zap.Logger
	vapidPublicKey string
}

// NewHandler creates a new API handler.
func NewHandler(svc *service.Service, st store.Store, logger *zap.Logger, vapidPublicKey string) *Handler {
	return &Handler{
		svc:            svc,
		store:          st,
		logger:         logger,
		vapidPublicKey: vapidPublicKey,
	}
}
