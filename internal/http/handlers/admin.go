package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/MrHoror07/sevenaiproo/internal/audit"
	"github.com/MrHoror07/sevenaiproo/internal/config"
	"github.com/MrHoror07/sevenaiproo/internal/domain/notification"
	"github.com/MrHoror07/sevenaiproo/internal/domain/user"
	"github.com/MrHoror07/sevenaiproo/internal/http/middlewares"
	"github.com/MrHoror07/sevenaiproo/internal/notifications"
	"github.com/gin-gonic/gin"
)

type AdminUserStore interface {
	List(ctx context.Context, limit, offset int) ([]user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

type ActivityReader interface {
	ListRecent(ctx context.Context, limit int) ([]audit.Entry, error)
}

const (
	adminUsersDefaultLimit = 50
	adminUsersMaxLimit     = 200
	activityDefaultLimit   = 100
)

type AdminHandler struct {
	users    AdminUserStore
	activity ActivityReader
	notifier notifications.Notifier
	audit    audit.Recorder
}

func NewAdminHandler(users AdminUserStore, activity ActivityReader, notifier notifications.Notifier, rec audit.Recorder) *AdminHandler {
	return &AdminHandler{
		users:    users,
		activity: activity,
		notifier: notifier,
		audit:    rec,
	}
}

func (h *AdminHandler) ListUsers(ctx *gin.Context) {
	limit := queryInt(ctx, "limit", adminUsersDefaultLimit)
	if limit > adminUsersMaxLimit {
		limit = adminUsersMaxLimit
	}

	offset := queryInt(ctx, "offset", 0)

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	list, err := h.users.List(cctx, limit, offset)

	if err != nil {
		RespondInternal(ctx, "Could not load users")
		return
	}

	out := make([]user.Projection, 0, len(list))
	for _, u := range list {
		out = append(out, u.Projection())
	}

	ctx.JSON(http.StatusOK, gin.H{"users": out})
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=ACTIVE INACTIVE SUSPENDED TRIAL"`
}

// UpdateUserStatus changes an account's status. Reserved for super admins;
// plain admins can look but not touch.
func (h *AdminHandler) UpdateUserStatus(ctx *gin.Context) {
	actor, ok := middlewares.CurrentUser(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	if actor.Role != user.RoleSuperAdmin {
		RespondForbidden(ctx, "Super admin role required")
		return
	}

	var req UpdateStatusRequest

	if !BindJSON(ctx, &req) {
		return
	}

	targetID := ctx.Param("id")

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	target, err := h.users.GetByID(cctx, targetID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not update user")
		return
	}

	if err := h.users.UpdateStatus(cctx, targetID, req.Status); err != nil {
		RespondInternal(ctx, "Could not update user")
		return
	}

	meta, _ := json.Marshal(gin.H{"from": target.Status, "to": req.Status})

	e := audit.NewEntry(actor.ID, audit.ActionUserStatusChanged)
	e.Resource = "user"
	e.ResourceID = targetID
	e.Metadata = meta
	e.IPAddress = ctx.ClientIP()
	e.UserAgent = ctx.GetHeader("User-Agent")

	h.audit.Record(cctx, e)

	_ = h.notifier.Send(cctx, notifications.SendInput{
		UserID:  targetID,
		Title:   "Account status updated",
		Message: "Your account status is now " + req.Status + ".",
		Type:    notification.TypeSystem,
	})

	ctx.JSON(http.StatusOK, gin.H{"status": req.Status})
}

func (h *AdminHandler) Activity(ctx *gin.Context) {
	limit := queryInt(ctx, "limit", activityDefaultLimit)

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	entries, err := h.activity.ListRecent(cctx, limit)

	if err != nil {
		RespondInternal(ctx, "Could not load activity")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"activity": entries})
}

func queryInt(ctx *gin.Context, key string, fallback int) int {
	v := ctx.Query(key)
	if v == "" {
		return fallback
	}

	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}

	return n
}
