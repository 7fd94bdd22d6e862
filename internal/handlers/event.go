package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mailforge/mailforge-backend/internal/knowledge"
	"github.com/mailforge/mailforge-backend/internal/repos"
	"github.com/mailforge/mailforge-backend/internal/types"
)

type EventHandler struct {
	events repos.EventRepo
	syncer *knowledge.Syncer
}

func NewEventHandler(events repos.EventRepo, syncer *knowledge.Syncer) *EventHandler {
	return &EventHandler{events: events, syncer: syncer}
}

type createEventRequest struct {
	Name         string `json:"name" binding:"required"`
	Date         string `json:"date"`
	Venue        string `json:"venue"`
	LogoURL      string `json:"logo_url"`
	DefaultModel string `json:"default_model"`
	DefaultTone  string `json:"default_tone"`
	ProgramDocID string `json:"program_doc_id"`
	PainDocID    string `json:"pain_doc_id"`
}

func (h *EventHandler) Create(c *gin.Context) {
	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	event, err := h.events.Create(c.Request.Context(), nil, &types.Event{
		Name:         req.Name,
		Date:         req.Date,
		Venue:        req.Venue,
		LogoURL:      req.LogoURL,
		DefaultModel: req.DefaultModel,
		DefaultTone:  req.DefaultTone,
		ProgramDocID: req.ProgramDocID,
		PainDocID:    req.PainDocID,
	})
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "create_failed", err)
		return
	}
	RespondOK(c, gin.H{"event": event})
}

func (h *EventHandler) List(c *gin.Context) {
	events, err := h.events.List(c.Request.Context(), nil)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "list_failed", err)
		return
	}
	RespondOK(c, gin.H{"events": events})
}

func (h *EventHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	event, err := h.events.GetByID(c.Request.Context(), nil, id)
	if err != nil {
		RespondError(c, http.StatusNotFound, "not_found", err)
		return
	}
	RespondOK(c, gin.H{"event": event})
}

// SyncKnowledge refreshes the event's knowledge corpora from its linked
// planning documents.
func (h *EventHandler) SyncKnowledge(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	event, err := h.events.GetByID(c.Request.Context(), nil, id)
	if err != nil {
		RespondError(c, http.StatusNotFound, "not_found", err)
		return
	}
	res, err := h.syncer.SyncEvent(c.Request.Context(), event)
	if err != nil {
		RespondError(c, http.StatusBadGateway, "sync_failed", err)
		return
	}
	RespondOK(c, gin.H{"synced": res})
}
