package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dhruvmojila/memory-api/internal/platform/logger"
	"github.com/dhruvmojila/memory-api/internal/services"
)

type GraphHandler struct {
	log          *logger.Logger
	graphService services.GraphService
}

func NewGraphHandler(log *logger.Logger, graphService services.GraphService) *GraphHandler {
	return &GraphHandler{
		log:          log.With("handler", "GraphHandler"),
		graphService: graphService,
	}
}

// GET /api/graph?user_id=...&category=...
// Export the scoped namespace(s) as a layout-ready node/edge set.
func (h *GraphHandler) ExportGraph(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		RespondError(c, http.StatusBadRequest, "invalid_input", fmt.Errorf("user_id is required"))
		return
	}
	category := c.Query("category")

	export, err := h.graphService.Export(c.Request.Context(), userID, category)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "export_failed", err)
		return
	}
	RespondOK(c, export)
}
