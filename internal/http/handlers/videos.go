package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/MrHoror07/sevenaiproo/internal/audit"
	"github.com/MrHoror07/sevenaiproo/internal/config"
	"github.com/MrHoror07/sevenaiproo/internal/domain/video"
	"github.com/MrHoror07/sevenaiproo/internal/http/middlewares"
	"github.com/MrHoror07/sevenaiproo/internal/jobs"
	"github.com/MrHoror07/sevenaiproo/internal/repo/postgres"
	"github.com/gin-gonic/gin"
)

type VideoStore interface {
	Create(ctx context.Context, v video.Video) error
	GetForUser(ctx context.Context, id, userID string) (video.Video, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]video.Video, error)
}

// maxUploadBytes caps declared upload size at 500 MB.
const maxUploadBytes = 500 << 20

const videoListLimit = 50

type VideosHandler struct {
	videos  VideoStore
	enqueue JobEnqueuer
	audit   audit.Recorder
}

func NewVideosHandler(videos VideoStore, enqueue JobEnqueuer, rec audit.Recorder) *VideosHandler {
	return &VideosHandler{
		videos:  videos,
		enqueue: enqueue,
		audit:   rec,
	}
}

// Upload registers the upload and queues processing. The record starts in
// UPLOADING; the worker moves it forward.
func (h *VideosHandler) Upload(ctx *gin.Context) {
	u, ok := middlewares.CurrentUser(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var req video.CreateUploadRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if !video.AllowedMimeType(req.MimeType) {
		RespondBadRequest(ctx, "Unsupported video format", gin.H{
			"allowed": []string{"video/mp4", "video/avi", "video/mov", "video/wmv"},
		})
		return
	}

	if req.FileSize > maxUploadBytes {
		RespondError(ctx, http.StatusRequestEntityTooLarge, "file_too_large",
			"File exceeds the 500MB upload limit.", nil)
		return
	}

	v := video.NewFromUploadRequest(u.ID, req)

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	if err := h.videos.Create(cctx, v); err != nil {
		RespondInternal(ctx, "Could not register upload")
		return
	}

	payload, err := jobs.EncodePayload(jobs.JobVideoProcess, jobs.VideoProcessPayload{
		VideoID:   v.ID,
		UserID:    u.ID,
		RequestID: requestIDFrom(ctx),
	})

	if err == nil {
		_, _ = h.enqueue.Create(cctx, jobs.CreateRequest{
			Type:    jobs.JobVideoProcess,
			Payload: payload,
			UserID:  u.ID,
		})
	}

	h.record(cctx, ctx, u.ID, audit.ActionUploadVideo, v.ID, gin.H{
		"originalName": v.OriginalName,
		"fileSize":     v.FileSize,
	})

	ctx.JSON(http.StatusCreated, gin.H{"video": v})
}

func (h *VideosHandler) List(ctx *gin.Context) {
	u, ok := middlewares.CurrentUser(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	list, err := h.videos.ListByUser(cctx, u.ID, videoListLimit)

	if err != nil {
		RespondInternal(ctx, "Could not load videos")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"videos": list})
}

type ExportRequest struct {
	Format  string `json:"format" binding:"omitempty,oneof=mp4 avi mov"`
	Quality string `json:"quality" binding:"omitempty,oneof=720p 1080p 4k"`
}

// Export queues an export job for a processed video. Format and quality are
// optional and default to mp4 / 1080p.
func (h *VideosHandler) Export(ctx *gin.Context) {
	u, ok := middlewares.CurrentUser(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var req ExportRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if req.Format == "" {
		req.Format = "mp4"
	}
	if req.Quality == "" {
		req.Quality = "1080p"
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	v, err := h.videos.GetForUser(cctx, ctx.Param("id"), u.ID)

	if err != nil {
		if errors.Is(err, postgres.ErrVideoNotFound) {
			RespondNotFound(ctx, "Video not found")
			return
		}

		RespondInternal(ctx, "Could not start export")
		return
	}

	if v.Status != video.StatusCompleted {
		RespondConflict(ctx, "video_not_ready", "Video has not finished processing.")
		return
	}

	payload, err := jobs.EncodePayload(jobs.JobVideoExport, jobs.VideoExportPayload{
		VideoID: v.ID,
		UserID:  u.ID,
		Format:  req.Format,
		Quality: req.Quality,
	})

	if err != nil {
		RespondInternal(ctx, "Could not start export")
		return
	}

	j, err := h.enqueue.Create(cctx, jobs.CreateRequest{
		Type:    jobs.JobVideoExport,
		Payload: payload,
		UserID:  u.ID,
	})

	if err != nil {
		RespondInternal(ctx, "Could not start export")
		return
	}

	h.record(cctx, ctx, u.ID, audit.ActionExportVideo, v.ID, gin.H{
		"format":  req.Format,
		"quality": req.Quality,
	})

	// deterministic estimate: a quarter of playback time, never under 5s
	estimate := v.Duration / 4
	if estimate < 5 {
		estimate = 5
	}

	ctx.JSON(http.StatusAccepted, gin.H{
		"status":           "queued",
		"jobId":            j.ID,
		"exportPath":       fmt.Sprintf("/exports/%s_%s.%s", v.ID, req.Quality, req.Format),
		"estimatedSeconds": estimate,
	})
}

func (h *VideosHandler) record(cctx context.Context, ctx *gin.Context, userID, action, videoID string, meta gin.H) {
	raw, _ := json.Marshal(meta)

	e := audit.NewEntry(userID, action)
	e.Resource = "video"
	e.ResourceID = videoID
	e.Metadata = raw
	e.IPAddress = ctx.ClientIP()
	e.UserAgent = ctx.GetHeader("User-Agent")

	h.audit.Record(cctx, e)
}
