package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dhruvmojila/memory-api/internal/platform/logger"
	"github.com/dhruvmojila/memory-api/internal/services"
	"github.com/dhruvmojila/memory-api/internal/types"
)

type QueryHandler struct {
	log           *logger.Logger
	memoryService services.MemoryService
	ragService    services.RAGService
}

func NewQueryHandler(log *logger.Logger, memoryService services.MemoryService, ragService services.RAGService) *QueryHandler {
	return &QueryHandler{
		log:           log.With("handler", "QueryHandler"),
		memoryService: memoryService,
		ragService:    ragService,
	}
}

type QueryInput struct {
	Question string `json:"question" binding:"required"`
	UserID   string `json:"user_id" binding:"required"`
	Category string `json:"category"`
}

type QueryResponse struct {
	Answer         string       `json:"answer"`
	RetrievedFacts []types.Fact `json:"retrieved_facts"`
}

// POST /api/query/rag
// Retrieve facts for the question, then generate an answer grounded only in
// those facts.
func (h *QueryHandler) QueryRAG(c *gin.Context) {
	var in QueryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_input", err)
		return
	}

	searchResult, err := h.memoryService.SearchKnowledge(c.Request.Context(), services.SearchKnowledgeInput{
		Query:    in.Question,
		UserID:   in.UserID,
		Category: in.Category,
	})
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "retrieval_failed", err)
		return
	}

	// A failed search means no usable facts; the composer still answers from
	// the empty context rather than failing the request.
	facts := searchResult.Facts
	if !searchResult.Success {
		h.log.Warn("search failed, answering without facts", "error", searchResult.Error)
		facts = []types.Fact{}
	}
	if facts == nil {
		facts = []types.Fact{}
	}

	answer, err := h.ragService.Answer(c.Request.Context(), in.Question, facts)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "generation_failed", err)
		return
	}

	RespondOK(c, QueryResponse{Answer: answer, RetrievedFacts: facts})
}
