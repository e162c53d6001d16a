package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/MrHoror07/sevenaiproo/internal/config"
	"github.com/MrHoror07/sevenaiproo/internal/domain/notification"
	"github.com/MrHoror07/sevenaiproo/internal/http/middlewares"
	"github.com/MrHoror07/sevenaiproo/internal/notifications"
	"github.com/MrHoror07/sevenaiproo/internal/repo/postgres"
	"github.com/gin-gonic/gin"
)

type NotificationStore interface {
	ListByUser(ctx context.Context, userID string, limit int) ([]notification.Notification, error)
	MarkRead(ctx context.Context, id, userID string) error
}

const notificationListLimit = 50

type NotificationsHandler struct {
	store    NotificationStore
	notifier notifications.Notifier
}

func NewNotificationsHandler(store NotificationStore, notifier notifications.Notifier) *NotificationsHandler {
	return &NotificationsHandler{store: store, notifier: notifier}
}

func (h *NotificationsHandler) List(ctx *gin.Context) {
	u, ok := middlewares.CurrentUser(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	list, err := h.store.ListByUser(cctx, u.ID, notificationListLimit)

	if err != nil {
		RespondInternal(ctx, "Could not load notifications")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"notifications": list})
}

type CreateNotificationRequest struct {
	Title    string          `json:"title" binding:"required,min=1,max=200"`
	Message  string          `json:"message" binding:"required,min=1"`
	Type     string          `json:"type" binding:"omitempty,oneof=INFO SUCCESS WARNING ERROR PAYMENT SYSTEM"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// Create adds a notification to the caller's own feed. Type defaults to INFO
// inside notification.New.
func (h *NotificationsHandler) Create(ctx *gin.Context) {
	u, ok := middlewares.CurrentUser(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var req CreateNotificationRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	err := h.notifier.Send(cctx, notifications.SendInput{
		UserID:   u.ID,
		Title:    req.Title,
		Message:  req.Message,
		Type:     notification.Type(req.Type),
		Metadata: req.Metadata,
	})

	if err != nil {
		RespondInternal(ctx, "Could not create notification")
		return
	}

	ctx.Status(http.StatusCreated)
}

type AdminNotificationRequest struct {
	UserID  string `json:"userId" binding:"required"`
	Title   string `json:"title" binding:"required,min=1,max=200"`
	Message string `json:"message" binding:"required,min=1"`
	Type    string `json:"type" binding:"omitempty,oneof=INFO SUCCESS WARNING ERROR PAYMENT SYSTEM"`
}

// CreateForUser lets admins push a notification to any user. Behind
// RequireAdmin.
func (h *NotificationsHandler) CreateForUser(ctx *gin.Context) {
	var req AdminNotificationRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	err := h.notifier.Send(cctx, notifications.SendInput{
		UserID:  req.UserID,
		Title:   req.Title,
		Message: req.Message,
		Type:    notification.Type(req.Type),
	})

	if err != nil {
		RespondInternal(ctx, "Could not deliver notification")
		return
	}

	ctx.Status(http.StatusCreated)
}

// MarkRead flips one of the caller's notifications to read. Scoped by user so
// nobody can mark someone else's.
func (h *NotificationsHandler) MarkRead(ctx *gin.Context) {
	u, ok := middlewares.CurrentUser(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	if err := h.store.MarkRead(cctx, ctx.Param("id"), u.ID); err != nil {
		if errors.Is(err, postgres.ErrNotificationNotFound) {
			RespondNotFound(ctx, "Notification not found")
			return
		}

		RespondInternal(ctx, "Could not update notification")
		return
	}

	ctx.Status(http.StatusNoContent)
}
