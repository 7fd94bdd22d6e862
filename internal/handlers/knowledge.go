package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mailforge/mailforge-backend/internal/knowledge"
	"github.com/mailforge/mailforge-backend/internal/types"
)

type KnowledgeHandler struct {
	index knowledge.Index
}

func NewKnowledgeHandler(index knowledge.Index) *KnowledgeHandler {
	return &KnowledgeHandler{index: index}
}

type indexProgramRequest struct {
	EventID uuid.UUID               `json:"event_id" binding:"required"`
	Items   []knowledge.ProgramItem `json:"items" binding:"required"`
}

func (h *KnowledgeHandler) IndexProgram(c *gin.Context) {
	var req indexProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	n, err := h.index.IndexProgram(c.Request.Context(), req.EventID, req.Items)
	if err != nil {
		RespondError(c, http.StatusBadGateway, "index_failed", err)
		return
	}
	RespondOK(c, gin.H{"indexed": n})
}

type indexPainPointsRequest struct {
	EventID uuid.UUID `json:"event_id" binding:"required"`
	Doc     string    `json:"doc" binding:"required"`
}

func (h *KnowledgeHandler) IndexPainPoints(c *gin.Context) {
	var req indexPainPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	n, err := h.index.IndexPainPoints(c.Request.Context(), req.EventID, req.Doc)
	if err != nil {
		RespondError(c, http.StatusBadGateway, "index_failed", err)
		return
	}
	RespondOK(c, gin.H{"indexed": n})
}

type indexStyleSnippetsRequest struct {
	EventID  uuid.UUID `json:"event_id" binding:"required"`
	Snippets []string  `json:"snippets" binding:"required"`
}

func (h *KnowledgeHandler) IndexStyleSnippets(c *gin.Context) {
	var req indexStyleSnippetsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	n, err := h.index.IndexStyleSnippets(c.Request.Context(), req.EventID, req.Snippets)
	if err != nil {
		RespondError(c, http.StatusBadGateway, "index_failed", err)
		return
	}
	RespondOK(c, gin.H{"indexed": n})
}

type searchRequest struct {
	EventID  uuid.UUID `json:"event_id" binding:"required"`
	Query    string    `json:"query" binding:"required"`
	ItemType string    `json:"item_type" binding:"required"`
	TopK     int       `json:"top_k"`
}

func (h *KnowledgeHandler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	topK := req.TopK
	if topK <= 0 {
		topK = 5
	}
	hits, err := h.index.Search(c.Request.Context(), req.EventID, req.Query, types.KnowledgeItemType(req.ItemType), topK)
	if err != nil {
		RespondError(c, http.StatusBadGateway, "search_failed", err)
		return
	}
	RespondOK(c, gin.H{"results": hits})
}
