package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/MrHoror07/sevenaiproo/internal/audit"
	"github.com/MrHoror07/sevenaiproo/internal/config"
	"github.com/MrHoror07/sevenaiproo/internal/domain/notification"
	"github.com/MrHoror07/sevenaiproo/internal/http/middlewares"
	"github.com/MrHoror07/sevenaiproo/internal/notifications"
	"github.com/gin-gonic/gin"
)

type SupportHandler struct {
	notifier notifications.Notifier
	audit    audit.Recorder
}

func NewSupportHandler(notifier notifications.Notifier, rec audit.Recorder) *SupportHandler {
	return &SupportHandler{notifier: notifier, audit: rec}
}

type SupportRequest struct {
	Subject  string `json:"subject" binding:"required,min=3,max=200"`
	Message  string `json:"message" binding:"required,min=10,max=5000"`
	Category string `json:"category" binding:"omitempty,oneof=billing technical account other"`
}

// Submit records a support request in the audit trail and acknowledges the
// user in-app. There is no ticketing backend; the trail is the queue.
func (h *SupportHandler) Submit(ctx *gin.Context) {
	u, ok := middlewares.CurrentUser(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var req SupportRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	meta, _ := json.Marshal(gin.H{"subject": req.Subject, "message": req.Message, "category": req.Category})

	e := audit.NewEntry(u.ID, audit.ActionSupportRequest)
	e.Resource = "support"
	e.Metadata = meta
	e.IPAddress = ctx.ClientIP()
	e.UserAgent = ctx.GetHeader("User-Agent")

	h.audit.Record(cctx, e)

	_ = h.notifier.Send(cctx, notifications.SendInput{
		UserID:  u.ID,
		Title:   "Support request received",
		Message: "We received your request and will get back to you soon.",
		Type:    notification.TypeInfo,
	})

	ctx.JSON(http.StatusAccepted, gin.H{"status": "received"})
}
