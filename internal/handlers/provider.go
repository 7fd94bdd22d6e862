package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mailforge/mailforge-backend/internal/repos"
	"github.com/mailforge/mailforge-backend/internal/services"
)

// ProviderHandler pushes finished artifacts to the email service provider.
type ProviderHandler struct {
	mailer services.Mailer
	emails repos.GeneratedEmailRepo
}

func NewProviderHandler(mailer services.Mailer, emails repos.GeneratedEmailRepo) *ProviderHandler {
	return &ProviderHandler{mailer: mailer, emails: emails}
}

func (h *ProviderHandler) PushTemplate(c *gin.Context) {
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
	templateID, err := h.mailer.CreateTemplate(c.Request.Context(), email.Subject, email.Subject, email.HTML, email.PlainText)
	if err != nil {
		RespondError(c, http.StatusBadGateway, "push_failed", err)
		return
	}
	RespondOK(c, gin.H{"provider_template_id": templateID})
}

type sendTestRequest struct {
	ProviderTemplateID string   `json:"provider_template_id" binding:"required"`
	Recipients         []string `json:"recipients" binding:"required"`
}

func (h *ProviderHandler) SendTest(c *gin.Context) {
	var req sendTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := h.mailer.SendTest(c.Request.Context(), req.ProviderTemplateID, req.Recipients); err != nil {
		RespondError(c, http.StatusBadGateway, "send_failed", err)
		return
	}
	RespondOK(c, gin.H{"sent": true})
}

func (h *ProviderHandler) ListLists(c *gin.Context) {
	lists, err := h.mailer.ListLists(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusBadGateway, "list_failed", err)
		return
	}
	RespondOK(c, gin.H{"lists": lists})
}
