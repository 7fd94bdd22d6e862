package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mailforge/mailforge-backend/internal/types"
)

type fakeEmailStore struct {
	email *types.GeneratedEmail
}

func (f *fakeEmailStore) Create(_ context.Context, _ *gorm.DB, email *types.GeneratedEmail) (*types.GeneratedEmail, error) {
	return email, nil
}

func (f *fakeEmailStore) GetByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*types.GeneratedEmail, error) {
	if f.email != nil && f.email.ID == id {
		return f.email, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeEmailStore) ListByEventID(context.Context, *gorm.DB, uuid.UUID) ([]*types.GeneratedEmail, error) {
	return nil, nil
}

func (f *fakeEmailStore) FindExistingDraft(context.Context, *gorm.DB, uuid.UUID, uuid.UUID, string) (*types.GeneratedEmail, error) {
	return nil, nil
}

type fakeItemStore struct {
	items     map[uuid.UUID]*types.KnowledgeItem
	requested []uuid.UUID
}

func (f *fakeItemStore) ReplaceForEventType(context.Context, *gorm.DB, uuid.UUID, types.KnowledgeItemType, []*types.KnowledgeItem) error {
	return nil
}

func (f *fakeItemStore) ListByEventType(context.Context, *gorm.DB, uuid.UUID, types.KnowledgeItemType) ([]*types.KnowledgeItem, error) {
	return nil, nil
}

func (f *fakeItemStore) GetByIDs(_ context.Context, _ *gorm.DB, ids []uuid.UUID) ([]*types.KnowledgeItem, error) {
	f.requested = append(f.requested, ids...)
	var out []*types.KnowledgeItem
	for _, id := range ids {
		if item, ok := f.items[id]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

func TestGetGeneratedResolvesSources(t *testing.T) {
	gin.SetMode(gin.TestMode)

	itemID, missingID := uuid.New(), uuid.New()
	email := &types.GeneratedEmail{
		ID:      uuid.New(),
		Subject: "Early bird ends Friday",
		RAGSources: []byte(fmt.Sprintf(
			`[{"id":%q,"type":"program_item","score":0.91},{"id":%q,"type":"pain_point","score":0.5}]`,
			itemID, missingID)),
	}
	items := &fakeItemStore{items: map[uuid.UUID]*types.KnowledgeItem{
		itemID: {ID: itemID, ItemType: types.KnowledgeProgramItem, Content: "Scaling Postgres. Dana Reyes."},
	}}
	h := NewGenerateHandler(nil, &fakeEmailStore{email: email}, items)

	router := gin.New()
	router.GET("/emails/:id", h.GetGenerated)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/emails/"+email.ID.String(), nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d body: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Email   *types.GeneratedEmail  `json:"email"`
		Sources []*types.KnowledgeItem `json:"sources"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Email == nil || body.Email.Subject != "Early bird ends Friday" {
		t.Fatalf("email: %+v", body.Email)
	}
	if len(body.Sources) != 1 || body.Sources[0].ID != itemID {
		t.Fatalf("sources: %+v", body.Sources)
	}
	if len(items.requested) != 2 {
		t.Fatalf("requested ids: %v", items.requested)
	}
}

func TestGetGeneratedWithoutSources(t *testing.T) {
	gin.SetMode(gin.TestMode)

	email := &types.GeneratedEmail{ID: uuid.New(), Subject: "No provenance"}
	items := &fakeItemStore{}
	h := NewGenerateHandler(nil, &fakeEmailStore{email: email}, items)

	router := gin.New()
	router.GET("/emails/:id", h.GetGenerated)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/emails/"+email.ID.String(), nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d body: %s", rec.Code, rec.Body.String())
	}
	if len(items.requested) != 0 {
		t.Fatalf("unexpected lookups: %v", items.requested)
	}
}

func TestGetGeneratedUnknownID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := NewGenerateHandler(nil, &fakeEmailStore{}, &fakeItemStore{})
	router := gin.New()
	router.GET("/emails/:id", h.GetGenerated)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/emails/"+uuid.NewString(), nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: %d", rec.Code)
	}
}
