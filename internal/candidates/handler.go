package candidates

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"interview-backend/internal/session"
	"interview-backend/internal/shared/server/respond"
)

// Handler serves the interviewer-facing read side: the sorted summary list
// and full session lookups.
type Handler struct {
	Store session.Store
}

func NewHandler(store session.Store) *Handler {
	return &Handler{Store: store}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/candidates", h.list)
	rg.GET("/candidates/:id", h.get)
}

func (h *Handler) list(c *gin.Context) {
	sessions, err := h.Store.List(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusServiceUnavailable, "storage_unavailable", "session store unavailable", nil)
		return
	}
	respond.OK(c, session.Summaries(sessions))
}

func (h *Handler) get(c *gin.Context) {
	id := c.Param("id")
	c.Set("sessionId", id)

	sess, err := h.Store.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "session not found", nil)
			return
		}
		respond.Error(c, http.StatusServiceUnavailable, "storage_unavailable", "session store unavailable", nil)
		return
	}
	respond.OK(c, sess)
}
