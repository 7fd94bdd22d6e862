package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mailforge/mailforge-backend/internal/generation"
	"github.com/mailforge/mailforge-backend/internal/repos"
	"github.com/mailforge/mailforge-backend/internal/types"
)

type GenerateHandler struct {
	pipeline *generation.Service
	emails   repos.GeneratedEmailRepo
	items    repos.KnowledgeItemRepo
}

func NewGenerateHandler(pipeline *generation.Service, emails repos.GeneratedEmailRepo, items repos.KnowledgeItemRepo) *GenerateHandler {
	return &GenerateHandler{pipeline: pipeline, emails: emails, items: items}
}

// statusFor maps a pipeline error kind to an HTTP status.
func statusFor(err error) int {
	switch generation.KindOf(err) {
	case generation.KindInput:
		return http.StatusBadRequest
	case generation.KindInduction:
		return http.StatusUnprocessableEntity
	case generation.KindProvider, generation.KindPlanning, generation.KindSlot:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type generateRequest struct {
	TopicID       uuid.UUID `json:"topic_id" binding:"required"`
	MailingListID uuid.UUID `json:"mailing_list_id" binding:"required"`
}

func (h *GenerateHandler) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	res, err := h.pipeline.GenerateForTopic(c.Request.Context(), req.TopicID, req.MailingListID)
	if err != nil {
		RespondError(c, statusFor(err), string(generation.KindOf(err)), err)
		return
	}
	RespondOK(c, res)
}

type generateBatchRequest struct {
	TopicIDs      []uuid.UUID `json:"topic_ids" binding:"required"`
	MailingListID uuid.UUID   `json:"mailing_list_id" binding:"required"`
}

func (h *GenerateHandler) GenerateBatch(c *gin.Context) {
	var req generateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	res, err := h.pipeline.GenerateBatch(c.Request.Context(), req.TopicIDs, req.MailingListID)
	if err != nil {
		RespondError(c, statusFor(err), string(generation.KindOf(err)), err)
		return
	}
	RespondOK(c, res)
}

func (h *GenerateHandler) ListGenerated(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	emails, err := h.emails.ListByEventID(c.Request.Context(), nil, eventID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "list_failed", err)
		return
	}
	RespondOK(c, gin.H{"emails": emails})
}

func (h *GenerateHandler) GetGenerated(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	email, err := h.emails.GetByID(c.Request.Context(), nil, id)
	if err != nil {
		RespondError(c, http.StatusNotFound, "not_found", err)
		return
	}
	sources, err := h.resolveSources(c, email.RAGSources)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "sources_failed", err)
		return
	}
	RespondOK(c, gin.H{"email": email, "sources": sources})
}

// resolveSources expands the persisted retrieval provenance into the
// knowledge items it points at. Items deleted by a later re-index are
// simply absent from the result.
func (h *GenerateHandler) resolveSources(c *gin.Context, raw []byte) ([]*types.KnowledgeItem, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var refs []struct {
		ID uuid.UUID `json:"id"`
	}
	if err := json.Unmarshal(raw, &refs); err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(refs))
	for _, r := range refs {
		if r.ID != uuid.Nil {
			ids = append(ids, r.ID)
		}
	}
	return h.items.GetByIDs(c.Request.Context(), nil, ids)
}
