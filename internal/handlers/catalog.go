package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/mailforge/mailforge-backend/internal/repos"
	"github.com/mailforge/mailforge-backend/internal/types"
)

// CatalogHandler manages the per-event planning catalog: content types,
// mailing lists and topics.
type CatalogHandler struct {
	contentTypes repos.ContentTypeRepo
	lists        repos.MailingListRepo
	topics       repos.TopicRepo
}

func NewCatalogHandler(contentTypes repos.ContentTypeRepo, lists repos.MailingListRepo, topics repos.TopicRepo) *CatalogHandler {
	return &CatalogHandler{contentTypes: contentTypes, lists: lists, topics: topics}
}

type createContentTypeRequest struct {
	EventID             uuid.UUID   `json:"event_id" binding:"required"`
	Name                string      `json:"name" binding:"required"`
	AllowedCTAs         []types.CTA `json:"allowed_ctas"`
	DefaultPrimaryCTA   string      `json:"default_primary_cta"`
	DefaultSecondaryCTA string      `json:"default_secondary_cta"`
	DefaultPrimaryURL   string      `json:"default_primary_url"`
	DefaultSecondaryURL string      `json:"default_secondary_url"`
}

func (h *CatalogHandler) CreateContentType(c *gin.Context) {
	var req createContentTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	ctas, err := types.MarshalCTAs(req.AllowedCTAs)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_ctas", err)
		return
	}
	ct, err := h.contentTypes.Create(c.Request.Context(), nil, &types.ContentType{
		EventID:             req.EventID,
		Name:                req.Name,
		AllowedCTAs:         datatypes.JSON(ctas),
		DefaultPrimaryCTA:   req.DefaultPrimaryCTA,
		DefaultSecondaryCTA: req.DefaultSecondaryCTA,
		DefaultPrimaryURL:   req.DefaultPrimaryURL,
		DefaultSecondaryURL: req.DefaultSecondaryURL,
	})
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "create_failed", err)
		return
	}
	RespondOK(c, gin.H{"content_type": ct})
}

func (h *CatalogHandler) ListContentTypes(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	cts, err := h.contentTypes.ListByEventID(c.Request.Context(), nil, eventID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "list_failed", err)
		return
	}
	RespondOK(c, gin.H{"content_types": cts})
}

type createMailingListRequest struct {
	EventID        uuid.UUID `json:"event_id" binding:"required"`
	Name           string    `json:"name" binding:"required"`
	UTMSource      string    `json:"utm_source"`
	UTMMedium      string    `json:"utm_medium"`
	UTMCampaign    string    `json:"utm_campaign"`
	UTMTerm        string    `json:"utm_term"`
	UTMContent     string    `json:"utm_content"`
	FromName       string    `json:"from_name"`
	FromEmail      string    `json:"from_email"`
	UnsubscribeURL string    `json:"unsubscribe_url"`
	ModelOverride  string    `json:"model_override"`
	ToneOverride   string    `json:"tone_override"`
}

func (h *CatalogHandler) CreateMailingList(c *gin.Context) {
	var req createMailingListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	list, err := h.lists.Create(c.Request.Context(), nil, &types.MailingList{
		EventID:        req.EventID,
		Name:           req.Name,
		UTMSource:      req.UTMSource,
		UTMMedium:      req.UTMMedium,
		UTMCampaign:    req.UTMCampaign,
		UTMTerm:        req.UTMTerm,
		UTMContent:     req.UTMContent,
		FromName:       req.FromName,
		FromEmail:      req.FromEmail,
		UnsubscribeURL: req.UnsubscribeURL,
		ModelOverride:  req.ModelOverride,
		ToneOverride:   req.ToneOverride,
	})
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "create_failed", err)
		return
	}
	RespondOK(c, gin.H{"mailing_list": list})
}

func (h *CatalogHandler) ListMailingLists(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	lists, err := h.lists.ListByEventID(c.Request.Context(), nil, eventID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "list_failed", err)
		return
	}
	RespondOK(c, gin.H{"mailing_lists": lists})
}

type topicRow struct {
	Title         string `json:"title" binding:"required"`
	Segment       string `json:"segment"`
	Language      string `json:"language"`
	ToneOverride  string `json:"tone_override"`
	ModelOverride string `json:"model_override"`
}

type createTopicsRequest struct {
	EventID       uuid.UUID  `json:"event_id" binding:"required"`
	ContentTypeID uuid.UUID  `json:"content_type_id" binding:"required"`
	Topics        []topicRow `json:"topics" binding:"required"`
}

func (h *CatalogHandler) CreateTopics(c *gin.Context) {
	var req createTopicsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	batch := make([]*types.Topic, 0, len(req.Topics))
	for _, row := range req.Topics {
		batch = append(batch, &types.Topic{
			EventID:       req.EventID,
			ContentTypeID: req.ContentTypeID,
			Title:         row.Title,
			Segment:       row.Segment,
			Language:      row.Language,
			ToneOverride:  row.ToneOverride,
			ModelOverride: row.ModelOverride,
		})
	}
	created, err := h.topics.CreateBatch(c.Request.Context(), nil, batch)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "create_failed", err)
		return
	}
	RespondOK(c, gin.H{"topics": created})
}

func (h *CatalogHandler) ListTopics(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	topics, err := h.topics.ListByEventID(c.Request.Context(), nil, eventID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "list_failed", err)
		return
	}
	RespondOK(c, gin.H{"topics": topics})
}
