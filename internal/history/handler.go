package history

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shobhitgupta26/resumeai2-sub000/internal/analyses"
	"github.com/shobhitgupta26/resumeai2-sub000/internal/shared/server/respond"
)

// Handler exposes the saved analysis history over HTTP.
type Handler struct {
	Store Store
}

// NewHandler constructs a Handler.
func NewHandler(store Store) *Handler {
	return &Handler{Store: store}
}

// RegisterRoutes attaches history routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/history", h.list)
	rg.GET("/history/:id", h.get)
	rg.DELETE("/history/:id", h.delete)
}

type listItem struct {
	ID           string `json:"id"`
	Timestamp    int64  `json:"timestamp"`
	Filename     string `json:"filename"`
	OverallScore int    `json:"overallScore"`
}

func (h *Handler) list(c *gin.Context) {
	entries, err := h.Store.List(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, analyses.ErrorCodeStorage, "failed to list history", nil)
		return
	}
	items := make([]listItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, listItem{ID: e.ID, Timestamp: e.Timestamp, Filename: e.Filename, OverallScore: e.OverallScore})
	}
	respond.JSON(c, http.StatusOK, gin.H{"items": items})
}

func (h *Handler) get(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	entry, err := h.Store.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "NOT_FOUND", "saved analysis not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, analyses.ErrorCodeStorage, "failed to fetch saved analysis", nil)
		return
	}
	respond.JSON(c, http.StatusOK, entry)
}

func (h *Handler) delete(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := h.Store.Delete(c.Request.Context(), id); err != nil {
		respond.Error(c, http.StatusInternalServerError, analyses.ErrorCodeStorage, "failed to delete saved analysis", nil)
		return
	}
	c.Status(http.StatusNoContent)
}
