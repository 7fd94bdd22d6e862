package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mailforge/mailforge-backend/internal/induction"
	"github.com/mailforge/mailforge-backend/internal/services"
)

type TemplateHandler struct {
	templates services.TemplateService
}

func NewTemplateHandler(templates services.TemplateService) *TemplateHandler {
	return &TemplateHandler{templates: templates}
}

type induceRequest struct {
	EventID       uuid.UUID               `json:"event_id" binding:"required"`
	ContentTypeID uuid.UUID               `json:"content_type_id" binding:"required"`
	Name          string                  `json:"name"`
	ReferenceHTML string                  `json:"reference_html" binding:"required"`
	Mode          string                  `json:"mode"`
	LoopName      string                  `json:"loop_name"`
	Ranges        []induction.ManualRange `json:"ranges"`
	DryRun        bool                    `json:"dry_run"`
}

func (h *TemplateHandler) Induce(c *gin.Context) {
	var req induceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	out, err := h.templates.Induce(c.Request.Context(), services.InduceInput{
		EventID:       req.EventID,
		ContentTypeID: req.ContentTypeID,
		Name:          req.Name,
		ReferenceHTML: req.ReferenceHTML,
		Mode:          services.InductionMode(req.Mode),
		LoopName:      req.LoopName,
		Ranges:        req.Ranges,
		DryRun:        req.DryRun,
	})
	if err != nil {
		RespondError(c, http.StatusUnprocessableEntity, "induction_failed", err)
		return
	}
	RespondOK(c, out)
}

func (h *TemplateHandler) GetActive(c *gin.Context) {
	eventID, err := uuid.Parse(c.Query("event_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_event_id", err)
		return
	}
	contentTypeID, err := uuid.Parse(c.Query("content_type_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_content_type_id", err)
		return
	}
	tpl, err := h.templates.GetActive(c.Request.Context(), eventID, contentTypeID)
	if err != nil {
		RespondError(c, http.StatusNotFound, "not_found", err)
		return
	}
	RespondOK(c, gin.H{"template": tpl})
}
