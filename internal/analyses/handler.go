package analyses

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shobhitgupta26/resumeai2-sub000/internal/extract"
	"github.com/shobhitgupta26/resumeai2-sub000/internal/queue"
	"github.com/shobhitgupta26/resumeai2-sub000/internal/shared/server/middleware"
	"github.com/shobhitgupta26/resumeai2-sub000/internal/shared/server/respond"
	"github.com/shobhitgupta26/resumeai2-sub000/internal/shared/storage/object"
	"github.com/shobhitgupta26/resumeai2-sub000/internal/shared/telemetry"
)

const defaultMaxUploadBytes = 10 << 20

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc            *Service
	Store          object.ObjectStore
	Queue          queue.Client
	MaxUploadBytes int64
}

// NewHandler constructs a Handler. store and q may be nil; the jobs route then answers 503.
func NewHandler(svc *Service, store object.ObjectStore, q queue.Client) *Handler {
	return &Handler{Svc: svc, Store: store, Queue: q, MaxUploadBytes: defaultMaxUploadBytes}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyses", h.analyze)
	rg.POST("/analyses/jobs", h.enqueue)
	rg.POST("/improve-field", h.improveField)
}

type analyzeTextRequest struct {
	Text     string `json:"text" binding:"required"`
	Filename string `json:"filename" binding:"max=255"`
	Save     bool   `json:"save"`
}

type improveFieldRequest struct {
	FieldName string `json:"fieldName" binding:"required,max=100"`
	Content   string `json:"content" binding:"required"`
}

func (h *Handler) analyze(c *gin.Context) {
	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))

	var in AnalyzeInput
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		data, name, mimeType, ok := h.readUpload(c)
		if !ok {
			return
		}
		doc, err := extract.FromBytes(ctx, data, mimeType, name)
		if err != nil {
			if errors.Is(err, extract.ErrUnsupportedType) {
				respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "unsupported file type; upload a PDF, DOC, DOCX or TXT file", []map[string]string{
					{"field": "file", "issue": "unsupported_type"},
				})
				return
			}
			respond.Error(c, http.StatusUnprocessableEntity, ErrorCodeExtraction, "failed to read file", nil)
			return
		}
		in = AnalyzeInput{Text: doc.Text, Filename: name, Save: c.PostForm("save") == "true"}
	} else {
		var req analyzeTextRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "text is required", []map[string]string{
				{"field": "text", "issue": "required"},
			})
			return
		}
		filename := strings.TrimSpace(req.Filename)
		if filename == "" {
			filename = "Pasted resume"
		}
		in = AnalyzeInput{Raw: req.Text, IsPDFLike: extract.IsPDFLike(req.Text), Filename: filename, Save: req.Save}
	}

	outcome, err := h.Svc.Analyze(ctx, in)
	if err != nil {
		writeAnalysisError(c, err)
		return
	}
	c.Set("savedId", outcome.SavedID)
	c.Set("isSample", outcome.IsSample)
	respond.JSON(c, http.StatusOK, outcome)
}

func (h *Handler) enqueue(c *gin.Context) {
	if h.Queue == nil || h.Store == nil {
		respond.Error(c, http.StatusServiceUnavailable, ErrorCodeInternal, ErrJobQueueNotConfigured.Error(), nil)
		return
	}
	data, name, _, ok := h.readUpload(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	requestID := middleware.RequestIDFromContext(c)

	key, _, mimeType, err := h.Store.Save(ctx, "uploads", name, bytes.NewReader(data))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, ErrorCodeStorage, "failed to store upload", nil)
		return
	}
	c.Set("storageKey", key)
	msg := queue.Message{
		StorageKey: key,
		FileName:   name,
		MimeType:   mimeType,
		RequestID:  requestID,
		EnqueuedAt: time.Now().UTC().Format(time.RFC3339),
		Version:    queue.MessageVersion,
	}
	if err := h.Queue.Send(ctx, msg); err != nil {
		telemetry.Error("analysis.enqueue_failed", map[string]any{
			"request_id":  requestID,
			"storage_key": key,
			"error":       sanitizeError(err),
		})
		respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, "failed to enqueue analysis", nil)
		return
	}
	telemetry.Info("analysis.enqueued", map[string]any{
		"request_id":  requestID,
		"storage_key": key,
		"file_name":   name,
	})
	respond.JSON(c, http.StatusAccepted, gin.H{
		"storageKey": key,
		"status":     "queued",
	})
}

func (h *Handler) improveField(c *gin.Context) {
	var req improveFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "fieldName and content are required", nil)
		return
	}
	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	improved, err := h.Svc.ImproveField(ctx, req.FieldName, req.Content)
	if err != nil {
		writeAnalysisError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"improved": improved})
}

// readUpload reads the multipart "file" field, writing the error response itself on failure.
func (h *Handler) readUpload(c *gin.Context) ([]byte, string, string, bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "file is required", []map[string]string{
			{"field": "file", "issue": "required"},
		})
		return nil, "", "", false
	}
	limit := h.MaxUploadBytes
	if limit <= 0 {
		limit = defaultMaxUploadBytes
	}
	if fh.Size > limit {
		respond.Error(c, http.StatusRequestEntityTooLarge, ErrorCodeValidation, "file too large", nil)
		return nil, "", "", false
	}
	f, err := fh.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "failed to read file", nil)
		return nil, "", "", false
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "failed to read file", nil)
		return nil, "", "", false
	}
	if int64(len(data)) > limit {
		respond.Error(c, http.StatusRequestEntityTooLarge, ErrorCodeValidation, "file too large", nil)
		return nil, "", "", false
	}
	return data, fh.Filename, fh.Header.Get("Content-Type"), true
}

func writeAnalysisError(c *gin.Context, err error) {
	code := ErrorCode(err)
	status := http.StatusInternalServerError
	msg := "analysis failed"
	switch code {
	case ErrorCodeValidation:
		status = http.StatusBadRequest
		msg = sanitizeError(err)
	case ErrorCodeExtraction:
		status = http.StatusUnprocessableEntity
		msg = "no text could be recovered from the file"
	case ErrorCodeLLM:
		status = http.StatusBadGateway
		msg = "analysis failed: " + sanitizeError(errors.Unwrap(err))
	case ErrorCodeLLMParse:
		status = http.StatusBadGateway
		detail := sanitizeError(errors.Unwrap(err))
		if detail == "" {
			detail = sanitizeError(err)
		}
		msg = "failed to parse AI response: " + detail
	case ErrorCodeStorage:
		msg = "failed to save analysis"
	}
	respond.Error(c, status, code, msg, nil)
}
