package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dhruvmojila/memory-api/internal/platform/logger"
	"github.com/dhruvmojila/memory-api/internal/services"
)

const maxUploadBytes = 8 << 20

type MemoryHandler struct {
	log           *logger.Logger
	memoryService services.MemoryService
}

func NewMemoryHandler(log *logger.Logger, memoryService services.MemoryService) *MemoryHandler {
	return &MemoryHandler{
		log:           log.With("handler", "MemoryHandler"),
		memoryService: memoryService,
	}
}

type MemoryTextInput struct {
	Text              string `json:"text" binding:"required"`
	UserID            string `json:"user_id" binding:"required"`
	Category          string `json:"category" binding:"required"`
	SourceDescription string `json:"source_description"`
}

// POST /api/memory/text
// Add a raw text snippet to the knowledge graph.
func (h *MemoryHandler) AddText(c *gin.Context) {
	var in MemoryTextInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_input", err)
		return
	}
	result := h.memoryService.AddKnowledge(c.Request.Context(), services.AddKnowledgeInput{
		Text:              in.Text,
		UserID:            in.UserID,
		Category:          in.Category,
		SourceDescription: in.SourceDescription,
	})
	RespondOK(c, result)
}

// POST /api/memory/upload
// Upload a plain-text or markdown file and ingest its content. Binary
// document formats (PDF, DOCX) belong to the external extraction service.
func (h *MemoryHandler) AddUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "missing_file", err)
		return
	}
	userID := strings.TrimSpace(c.PostForm("user_id"))
	category := strings.TrimSpace(c.PostForm("category"))
	if userID == "" || category == "" {
		RespondError(c, http.StatusBadRequest, "invalid_input", fmt.Errorf("user_id and category are required"))
		return
	}
	if !supportedUpload(fileHeader.Filename) {
		RespondError(c, http.StatusUnsupportedMediaType, "unsupported_file_type",
			fmt.Errorf("unsupported file type %q: only .txt and .md are ingested directly", filepath.Ext(fileHeader.Filename)))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "unreadable_file", err)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "unreadable_file", err)
		return
	}
	text := strings.TrimSpace(string(content))
	if text == "" {
		RespondError(c, http.StatusBadRequest, "empty_file", fmt.Errorf("uploaded file is empty"))
		return
	}

	sourceDescription := strings.TrimSpace(c.PostForm("source_description"))
	if sourceDescription == "" {
		sourceDescription = fmt.Sprintf("Content from uploaded file: %s", fileHeader.Filename)
	}

	h.log.Info("ingesting uploaded file", "filename", fileHeader.Filename, "bytes", len(content))
	result := h.memoryService.AddKnowledge(c.Request.Context(), services.AddKnowledgeInput{
		Text:              text,
		UserID:            userID,
		Category:          category,
		SourceDescription: sourceDescription,
	})
	RespondOK(c, result)
}

func supportedUpload(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".md", ".markdown":
		return true
	}
	return false
}
