package services

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mailforge/mailforge-backend/internal/induction"
	"github.com/mailforge/mailforge-backend/internal/logger"
	"github.com/mailforge/mailforge-backend/internal/types"
)

// fakeTemplateRepo keeps one active template per (event, content type)
// and records which persistence path each induction took.
type fakeTemplateRepo struct {
	active   *types.Template
	creates  int
	replaces int
}

func (f *fakeTemplateRepo) Create(_ context.Context, _ *gorm.DB, tpl *types.Template) (*types.Template, error) {
	f.creates++
	tpl.ID = uuid.New()
	if f.active != nil {
		f.active.Active = false
	}
	f.active = tpl
	return tpl, nil
}

func (f *fakeTemplateRepo) GetByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*types.Template, error) {
	if f.active != nil && f.active.ID == id {
		return f.active, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTemplateRepo) GetActive(_ context.Context, _ *gorm.DB, eventID, contentTypeID uuid.UUID) (*types.Template, error) {
	if f.active == nil || f.active.EventID != eventID || f.active.ContentTypeID != contentTypeID {
		return nil, gorm.ErrRecordNotFound
	}
	return f.active, nil
}

func (f *fakeTemplateRepo) ReplaceLayout(_ context.Context, _ *gorm.DB, id uuid.UUID, htmlLayout string, slotsSchema []byte) error {
	f.replaces++
	if f.active != nil && f.active.ID == id {
		f.active.HTMLLayout = htmlLayout
		f.active.SlotsSchema = slotsSchema
	}
	return nil
}

const inducibleHTML = `<html><body>` +
	`<h1>Launch Week Is Here</h1>` +
	`<p>Five days of releases and live sessions.</p>` +
	`</body></html>`

func newTestTemplateService(repo *fakeTemplateRepo) TemplateService {
	log := logger.NewNop()
	return NewTemplateService(induction.NewInducer(log), nil, "gpt-test", repo, log)
}

func TestInducePersistsNewTemplate(t *testing.T) {
	repo := &fakeTemplateRepo{}
	svc := newTestTemplateService(repo)

	out, err := svc.Induce(context.Background(), InduceInput{
		EventID:       uuid.New(),
		ContentTypeID: uuid.New(),
		Name:          "launch",
		ReferenceHTML: inducibleHTML,
	})
	if err != nil {
		t.Fatalf("Induce: %v", err)
	}
	if out.Template == nil {
		t.Fatal("template not persisted")
	}
	if repo.creates != 1 || repo.replaces != 0 {
		t.Fatalf("creates=%d replaces=%d", repo.creates, repo.replaces)
	}
	if out.Template.ReferenceHTML != inducibleHTML {
		t.Error("reference html not stored")
	}
}

func TestReInduceSameReferenceReplacesInPlace(t *testing.T) {
	repo := &fakeTemplateRepo{}
	svc := newTestTemplateService(repo)
	eventID, ctID := uuid.New(), uuid.New()

	first, err := svc.Induce(context.Background(), InduceInput{
		EventID:       eventID,
		ContentTypeID: ctID,
		ReferenceHTML: inducibleHTML,
	})
	if err != nil {
		t.Fatalf("first Induce: %v", err)
	}

	second, err := svc.Induce(context.Background(), InduceInput{
		EventID:       eventID,
		ContentTypeID: ctID,
		ReferenceHTML: inducibleHTML,
		Mode:          InductionManual,
		Ranges: []induction.ManualRange{
			{Name: "headline", Start: 16, End: 35},
		},
	})
	if err != nil {
		t.Fatalf("second Induce: %v", err)
	}

	if second.Template.ID != first.Template.ID {
		t.Fatalf("template identity changed: %s -> %s", first.Template.ID, second.Template.ID)
	}
	if repo.creates != 1 || repo.replaces != 1 {
		t.Fatalf("creates=%d replaces=%d", repo.creates, repo.replaces)
	}
	if repo.active.ReferenceHTML != inducibleHTML {
		t.Error("reference html not preserved")
	}
	if !strings.Contains(repo.active.HTMLLayout, "{{headline}}") {
		t.Errorf("layout not swapped:\n%s", repo.active.HTMLLayout)
	}
}

func TestInduceNewReferenceCreatesNewTemplate(t *testing.T) {
	repo := &fakeTemplateRepo{}
	svc := newTestTemplateService(repo)
	eventID, ctID := uuid.New(), uuid.New()

	first, err := svc.Induce(context.Background(), InduceInput{
		EventID:       eventID,
		ContentTypeID: ctID,
		ReferenceHTML: inducibleHTML,
	})
	if err != nil {
		t.Fatalf("first Induce: %v", err)
	}

	changed := `<html><body><h1>A Different Campaign</h1><p>New body copy.</p></body></html>`
	second, err := svc.Induce(context.Background(), InduceInput{
		EventID:       eventID,
		ContentTypeID: ctID,
		ReferenceHTML: changed,
	})
	if err != nil {
		t.Fatalf("second Induce: %v", err)
	}

	if second.Template.ID == first.Template.ID {
		t.Fatal("expected a new template for a new reference")
	}
	if repo.creates != 2 || repo.replaces != 0 {
		t.Fatalf("creates=%d replaces=%d", repo.creates, repo.replaces)
	}
	if repo.active.ID != second.Template.ID {
		t.Error("new template not active")
	}
}

func TestInduceDryRunDoesNotPersist(t *testing.T) {
	repo := &fakeTemplateRepo{}
	svc := newTestTemplateService(repo)

	out, err := svc.Induce(context.Background(), InduceInput{
		EventID:       uuid.New(),
		ContentTypeID: uuid.New(),
		ReferenceHTML: inducibleHTML,
		DryRun:        true,
	})
	if err != nil {
		t.Fatalf("Induce: %v", err)
	}
	if out.Template != nil || repo.creates != 0 {
		t.Fatal("dry run must not persist")
	}
}
