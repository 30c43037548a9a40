package uploads

import (
	"context"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shobhitgupta26/resumeai2-sub000/internal/analyses"
	"github.com/shobhitgupta26/resumeai2-sub000/internal/queue"
	"github.com/shobhitgupta26/resumeai2-sub000/internal/shared/server/middleware"
	"github.com/shobhitgupta26/resumeai2-sub000/internal/shared/server/respond"
	"github.com/shobhitgupta26/resumeai2-sub000/internal/shared/telemetry"
	"github.com/shobhitgupta26/resumeai2-sub000/internal/shared/util"
)

const (
	maxUploadBytes = 10 << 20
	presignExpires = 15 * time.Minute
	uploadsPrefix  = "uploads"
)

var allowedContentTypes = map[string]struct{}{
	"application/pdf":    {},
	"application/msword": {},
	"text/plain":         {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
}

// Presigner issues direct-to-bucket upload URLs. The S3 object store implements it.
type Presigner interface {
	PresignPut(ctx context.Context, storageKey string, expires time.Duration) (string, error)
}

// Handler lets browsers upload resumes straight to the bucket and then queue them for analysis.
type Handler struct {
	Presigner Presigner
	Queue     queue.Client
	now       func() time.Time
}

// NewHandler constructs a Handler.
func NewHandler(p Presigner, q queue.Client) *Handler {
	return &Handler{Presigner: p, Queue: q, now: time.Now}
}

// RegisterRoutes attaches upload routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/uploads/presign", h.presign)
	rg.POST("/uploads/complete", h.complete)
}

type presignRequest struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	SizeBytes   int64  `json:"sizeBytes"`
}

type presignResponse struct {
	UploadURL        string `json:"uploadUrl"`
	StorageKey       string `json:"storageKey"`
	ExpiresInSeconds int64  `json:"expiresInSeconds"`
}

type completeRequest struct {
	StorageKey  string `json:"storageKey" binding:"required"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
}

func (h *Handler) presign(c *gin.Context) {
	var req presignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, analyses.ErrorCodeValidation, "invalid request body", nil)
		return
	}

	req.FileName = strings.TrimSpace(req.FileName)
	req.ContentType = strings.TrimSpace(req.ContentType)

	if req.FileName == "" {
		respond.Error(c, http.StatusBadRequest, analyses.ErrorCodeValidation, "fileName is required", nil)
		return
	}
	if _, ok := allowedContentTypes[req.ContentType]; !ok {
		respond.Error(c, http.StatusBadRequest, analyses.ErrorCodeValidation, "contentType is not allowed", nil)
		return
	}
	if req.SizeBytes <= 0 || req.SizeBytes > maxUploadBytes {
		respond.Error(c, http.StatusBadRequest, analyses.ErrorCodeValidation, "sizeBytes exceeds limit", nil)
		return
	}
	sanitized, err := util.SanitizeFileName(req.FileName)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, analyses.ErrorCodeValidation, "invalid fileName", nil)
		return
	}

	key := path.Join(uploadsPrefix, uuid.NewString()+"-"+sanitized)
	url, err := h.Presigner.PresignPut(c.Request.Context(), key, presignExpires)
	if err != nil {
		telemetry.Error("uploads.presign.failed", map[string]any{
			"err":         err.Error(),
			"key":         key,
			"contentType": req.ContentType,
			"sizeBytes":   req.SizeBytes,
			"request_id":  middleware.RequestIDFromContext(c),
		})
		respond.Error(c, http.StatusInternalServerError, analyses.ErrorCodeStorage, "failed to generate upload url", nil)
		return
	}

	respond.JSON(c, http.StatusOK, presignResponse{
		UploadURL:        url,
		StorageKey:       key,
		ExpiresInSeconds: int64(presignExpires.Seconds()),
	})
}

// complete queues an analysis job for an object uploaded through a presigned URL.
func (h *Handler) complete(c *gin.Context) {
	var req completeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, analyses.ErrorCodeValidation, "storageKey is required", nil)
		return
	}
	key := strings.TrimSpace(req.StorageKey)
	if !strings.HasPrefix(key, uploadsPrefix+"/") || strings.Contains(key, "..") {
		respond.Error(c, http.StatusBadRequest, analyses.ErrorCodeValidation, "storageKey was not issued by this service", nil)
		return
	}
	fileName := strings.TrimSpace(req.FileName)
	if fileName == "" {
		fileName = path.Base(key)
	}

	requestID := middleware.RequestIDFromContext(c)
	msg := queue.Message{
		StorageKey: key,
		FileName:   fileName,
		MimeType:   strings.TrimSpace(req.ContentType),
		RequestID:  requestID,
		EnqueuedAt: h.now().UTC().Format(time.RFC3339),
		Version:    queue.MessageVersion,
	}
	c.Set("storageKey", key)
	if err := h.Queue.Send(c.Request.Context(), msg); err != nil {
		telemetry.Error("uploads.enqueue_failed", map[string]any{
			"storage_key": key,
			"request_id":  requestID,
			"error":       err.Error(),
		})
		respond.Error(c, http.StatusInternalServerError, analyses.ErrorCodeInternal, "failed to enqueue analysis", nil)
		return
	}
	respond.JSON(c, http.StatusAccepted, gin.H{
		"storageKey": key,
		"status":     "queued",
	})
}
