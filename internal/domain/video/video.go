package video

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusUploading  Status = "UPLOADING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
	StatusDeleted    Status = "DELETED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusUploading, StatusProcessing, StatusCompleted, StatusFailed, StatusDeleted:
		return true
	default:
		return false
	}
}

type Video struct {
	ID           string     `json:"id"`
	UserID       string     `json:"userId"`
	ProjectID    *string    `json:"projectId,omitempty"`
	OriginalName string     `json:"originalName"`
	FileName     string     `json:"fileName"`
	FilePath     string     `json:"filePath"`
	FileSize     int64      `json:"fileSize"`
	Duration     int        `json:"duration"` // seconds, 0 until processed
	Resolution   *string    `json:"resolution,omitempty"`
	Format       *string    `json:"format,omitempty"`
	Status       Status     `json:"status"`
	Thumbnail    *string    `json:"thumbnail,omitempty"`
	ProcessedAt  *time.Time `json:"processedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

type CreateUploadRequest struct {
	OriginalName string  `json:"originalName" binding:"required,min=1,max=255"`
	FileSize     int64   `json:"fileSize" binding:"required,gt=0"`
	MimeType     string  `json:"mimeType" binding:"required"`
	ProjectID    *string `json:"projectId,omitempty"`
}

// AllowedMimeType mirrors the upload allow-list enforced before a record is
// ever created.
func AllowedMimeType(mime string) bool {
	switch mime {
	case "video/mp4", "video/avi", "video/mov", "video/wmv":
		return true
	default:
		return false
	}
}

// NewFromUploadRequest builds the initial UPLOADING record. The stored file
// name and path are server-derived so clients cannot pick them.
func NewFromUploadRequest(userID string, req CreateUploadRequest) Video {
	now := time.Now().UTC()
	id := uuid.NewString()
	fileName := fmt.Sprintf("%d-%s", now.UnixMilli(), req.OriginalName)

	return Video{
		ID:           id,
		UserID:       userID,
		ProjectID:    req.ProjectID,
		OriginalName: req.OriginalName,
		FileName:     fileName,
		FilePath:     fmt.Sprintf("/uploads/%s/%s", userID, fileName),
		FileSize:     req.FileSize,
		Duration:     0,
		Status:       StatusUploading,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
