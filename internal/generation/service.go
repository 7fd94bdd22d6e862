package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mailforge/mailforge-backend/internal/assemble"
	"github.com/mailforge/mailforge-backend/internal/generation/prompts"
	"github.com/mailforge/mailforge-backend/internal/knowledge"
	"github.com/mailforge/mailforge-backend/internal/logger"
	"github.com/mailforge/mailforge-backend/internal/qa"
	"github.com/mailforge/mailforge-backend/internal/repos"
	"github.com/mailforge/mailforge-backend/internal/services"
	"github.com/mailforge/mailforge-backend/internal/types"
)

// Retrieval widths per knowledge type.
const (
	topKProgramItems  = 6
	topKPainPoints    = 4
	topKStyleSnippets = 2

	defaultTone = "professional"
)

// Service runs the full pipeline for one topic: retrieve, plan, fill,
// assemble, validate, persist.
type Service struct {
	log          *logger.Logger
	ai           services.AIClient
	index        knowledge.Index
	assembler    *assemble.Assembler
	validator    *qa.Validator
	defaultModel string

	events       repos.EventRepo
	contentTypes repos.ContentTypeRepo
	templates    repos.TemplateRepo
	lists        repos.MailingListRepo
	topics       repos.TopicRepo
	emails       repos.GeneratedEmailRepo
}

type ServiceDeps struct {
	AI           services.AIClient
	Index        knowledge.Index
	DefaultModel string

	Events       repos.EventRepo
	ContentTypes repos.ContentTypeRepo
	Templates    repos.TemplateRepo
	Lists        repos.MailingListRepo
	Topics       repos.TopicRepo
	Emails       repos.GeneratedEmailRepo
}

func NewService(d ServiceDeps, log *logger.Logger) *Service {
	return &Service{
		log:          log.With("service", "Generation"),
		ai:           d.AI,
		index:        d.Index,
		assembler:    assemble.NewAssembler(log),
		validator:    qa.NewValidator(log),
		defaultModel: d.DefaultModel,
		events:       d.Events,
		contentTypes: d.ContentTypes,
		templates:    d.Templates,
		lists:        d.Lists,
		topics:       d.Topics,
		emails:       d.Emails,
	}
}

// TopicResult reports one topic's outcome.
type TopicResult struct {
	TopicID          uuid.UUID                  `json:"topic_id"`
	GeneratedEmailID uuid.UUID                  `json:"generated_email_id,omitempty"`
	Status           types.GeneratedEmailStatus `json:"status,omitempty"`
	Skipped          bool                       `json:"skipped"`
	QA               *qa.Report                 `json:"qa,omitempty"`
	Warnings         []string                   `json:"warnings,omitempty"`
	Error            string                     `json:"error,omitempty"`
}

// BatchResult aggregates a content-plan run.
type BatchResult struct {
	Results   []TopicResult `json:"results"`
	Succeeded int           `json:"succeeded"`
	Skipped   int           `json:"skipped"`
	Failed    int           `json:"failed"`
}

// GenerateForTopic runs the pipeline for a single topic and mailing list.
func (s *Service) GenerateForTopic(ctx context.Context, topicID, listID uuid.UUID) (*TopicResult, error) {
	topic, err := s.topics.GetByID(ctx, nil, topicID)
	if err != nil {
		return nil, Errorf(KindInput, "topic %s: %v", topicID, err)
	}
	return s.generateOne(ctx, topic, listID)
}

// GenerateBatch runs every topic against the same mailing list. A failed
// topic is recorded and the batch moves on.
func (s *Service) GenerateBatch(ctx context.Context, topicIDs []uuid.UUID, listID uuid.UUID) (*BatchResult, error) {
	if len(topicIDs) == 0 {
		return nil, Errorf(KindInput, "no topics given")
	}
	batch := &BatchResult{Results: make([]TopicResult, 0, len(topicIDs))}
	for _, id := range topicIDs {
		if err := ctx.Err(); err != nil {
			return batch, err
		}
		res, err := s.GenerateForTopic(ctx, id, listID)
		if err != nil {
			s.log.Warn("Topic failed", "topic_id", id, "error", err)
			batch.Results = append(batch.Results, TopicResult{TopicID: id, Error: err.Error()})
			batch.Failed++
			continue
		}
		batch.Results = append(batch.Results, *res)
		if res.Skipped {
			batch.Skipped++
		} else {
			batch.Succeeded++
		}
	}
	return batch, nil
}

func (s *Service) generateOne(ctx context.Context, topic *types.Topic, listID uuid.UUID) (*TopicResult, error) {
	list, err := s.lists.GetByID(ctx, nil, listID)
	if err != nil {
		return nil, Errorf(KindInput, "mailing list %s: %v", listID, err)
	}
	event, err := s.events.GetByID(ctx, nil, topic.EventID)
	if err != nil {
		return nil, Errorf(KindInput, "event %s: %v", topic.EventID, err)
	}
	contentType, err := s.contentTypes.GetByID(ctx, nil, topic.ContentTypeID)
	if err != nil {
		return nil, Errorf(KindInput, "content type %s: %v", topic.ContentTypeID, err)
	}
	tpl, err := s.templates.GetActive(ctx, nil, event.ID, contentType.ID)
	if err != nil {
		return nil, Errorf(KindInput, "no active template for content type %s: %v", contentType.ID, err)
	}
	schema, err := tpl.Schema()
	if err != nil {
		return nil, Errorf(KindInput, "template %s slot schema: %v", tpl.ID, err)
	}

	// Duplicate key (list, content type, title): an existing non-failed
	// artifact means this topic was already generated.
	if existing, err := s.emails.FindExistingDraft(ctx, nil, list.ID, contentType.ID, topic.Title); err != nil {
		return nil, err
	} else if existing != nil {
		s.log.Info("Skipping duplicate topic", "topic_id", topic.ID, "existing_id", existing.ID)
		return &TopicResult{
			TopicID:          topic.ID,
			GeneratedEmailID: existing.ID,
			Status:           existing.Status,
			Skipped:          true,
		}, nil
	}

	tone := resolveSetting(topic.ToneOverride, list.ToneOverride, event.DefaultTone, defaultTone)
	model := resolveSetting(topic.ModelOverride, list.ModelOverride, event.DefaultModel, s.defaultModel)

	retr, err := s.retrieve(ctx, event.ID, topic, tone)
	if err != nil {
		return nil, err
	}

	catalog := contentType.CTACatalog()
	promptIn := prompts.Input{
		EventName:         event.Name,
		EventDate:         event.Date,
		Venue:             event.Venue,
		TopicTitle:        topic.Title,
		Segment:           topic.Segment,
		Tone:              tone,
		Language:          resolveSetting(topic.Language, "en"),
		ProgramItemsJSON:  retr.programJSON,
		PainPointsJSON:    retr.painJSON,
		StyleSnippetsText: retr.styleText,
		CTACatalogJSON:    mustJSON(catalog),
	}

	planner := NewPlanner(s.ai, model, s.log)
	plan, _, err := planner.BuildPlan(ctx, PlanInput{
		Prompt:            promptIn,
		ProgramItemTitles: retr.programTitles,
		CTACatalog:        catalog,
	})
	if err != nil {
		return nil, s.failTopic(ctx, topic, err)
	}

	promptIn.PlanJSON = string(plan.Raw)
	filler := NewSlotFiller(s.ai, model, s.log)
	fill, _, err := filler.Fill(ctx, promptIn, schema)
	if err != nil {
		return nil, s.failTopic(ctx, topic, err)
	}

	assembleIn := assemble.Input{
		Event: assemble.EventContext{
			EventName:      event.Name,
			EventDate:      event.Date,
			Venue:          event.Venue,
			LogoURL:        event.LogoURL,
			UnsubscribeURL: list.UnsubscribeURL,
		},
		Preheader: plan.Preheader,
		Slots:     fill.Values,
	}
	subject := plan.Subject()
	utm := s.utmFor(list, contentType, subject)
	assembleIn.Primary = s.bindCTA(catalog, plan.PrimaryCTA(), contentType.DefaultPrimaryCTA, contentType.DefaultPrimaryURL, utm)
	assembleIn.Secondary = s.bindCTA(catalog, plan.SecondaryCTA(), contentType.DefaultSecondaryCTA, contentType.DefaultSecondaryURL, utm)

	out, err := s.assembler.Assemble(tpl.HTMLLayout, assembleIn)
	if err != nil {
		return nil, s.failTopic(ctx, topic, NewError(KindAssembly, err))
	}

	report := s.validator.Check(qa.CheckInput{
		Subject:       subject,
		Preheader:     plan.Preheader,
		HTML:          out.HTML,
		PlainText:     out.PlainText,
		RequiredSlots: schema.Required,
		Slots:         fill.Values,
	})
	status := types.GeneratedRequiresReview
	if report.Passed {
		status = types.GeneratedPassed
	}

	email, err := s.emails.Create(ctx, nil, &types.GeneratedEmail{
		EventID:       event.ID,
		MailingListID: list.ID,
		ContentTypeID: contentType.ID,
		TopicID:       topic.ID,
		Subject:       subject,
		Preheader:     plan.Preheader,
		HTML:          out.HTML,
		PlainText:     out.PlainText,
		Pass1JSON:     []byte(plan.Raw),
		Pass2JSON:     []byte(fill.Raw),
		RAGSources:    []byte(retr.sourcesJSON),
		QAMetrics:     []byte(mustJSON(report)),
		Status:        status,
	})
	if err != nil {
		return nil, err
	}
	if err := s.topics.UpdateStatus(ctx, nil, topic.ID, "generated"); err != nil {
		s.log.Warn("Failed to update topic status", "topic_id", topic.ID, "error", err)
	}

	s.log.Info("Generated email", "topic_id", topic.ID, "email_id", email.ID, "status", status, "qa_errors", len(report.Errors))
	return &TopicResult{
		TopicID:          topic.ID,
		GeneratedEmailID: email.ID,
		Status:           status,
		QA:               report,
		Warnings:         out.Warnings,
	}, nil
}

// failTopic marks the topic failed and passes the pipeline error through.
func (s *Service) failTopic(ctx context.Context, topic *types.Topic, err error) error {
	if uerr := s.topics.UpdateStatus(ctx, nil, topic.ID, "failed"); uerr != nil {
		s.log.Warn("Failed to update topic status", "topic_id", topic.ID, "error", uerr)
	}
	return err
}

type retrieval struct {
	programTitles []string
	programJSON   string
	painJSON      string
	styleText     string
	sourcesJSON   string
}

func (s *Service) retrieve(ctx context.Context, eventID uuid.UUID, topic *types.Topic, tone string) (*retrieval, error) {
	programHits, err := s.index.Search(ctx, eventID, topic.Title, types.KnowledgeProgramItem, topKProgramItems)
	if err != nil {
		return nil, NewError(KindProvider, err)
	}
	painQuery := strings.TrimSpace(topic.Title + " " + topic.Segment)
	painHits, err := s.index.Search(ctx, eventID, painQuery, types.KnowledgePainPoint, topKPainPoints)
	if err != nil {
		return nil, NewError(KindProvider, err)
	}
	styleHits, err := s.index.Search(ctx, eventID, tone, types.KnowledgeStyleSnippet, topKStyleSnippets)
	if err != nil {
		return nil, NewError(KindProvider, err)
	}

	type promptItem struct {
		ID       string         `json:"id"`
		Content  string         `json:"content"`
		Metadata map[string]any `json:"metadata,omitempty"`
	}
	program := make([]promptItem, 0, len(programHits))
	titles := make([]string, 0, len(programHits))
	for _, h := range programHits {
		program = append(program, promptItem{ID: h.ID.String(), Content: h.Content, Metadata: h.Metadata})
		if title, ok := h.Metadata["title"].(string); ok && strings.TrimSpace(title) != "" {
			titles = append(titles, title)
		}
	}
	pains := make([]promptItem, 0, len(painHits))
	for _, h := range painHits {
		pains = append(pains, promptItem{ID: h.ID.String(), Content: h.Content})
	}
	var style strings.Builder
	for i, h := range styleHits {
		if i > 0 {
			style.WriteString("\n---\n")
		}
		style.WriteString(h.Content)
	}

	type source struct {
		ID    string  `json:"id"`
		Type  string  `json:"type"`
		Score float64 `json:"score"`
	}
	var sources []source
	for _, h := range programHits {
		sources = append(sources, source{ID: h.ID.String(), Type: string(types.KnowledgeProgramItem), Score: h.Score})
	}
	for _, h := range painHits {
		sources = append(sources, source{ID: h.ID.String(), Type: string(types.KnowledgePainPoint), Score: h.Score})
	}
	for _, h := range styleHits {
		sources = append(sources, source{ID: h.ID.String(), Type: string(types.KnowledgeStyleSnippet), Score: h.Score})
	}

	return &retrieval{
		programTitles: titles,
		programJSON:   mustJSON(program),
		painJSON:      mustJSON(pains),
		styleText:     style.String(),
		sourcesJSON:   mustJSON(sources),
	}, nil
}

// bindCTA resolves a catalog entry and stamps tracking parameters on it.
// A plan-level text override beats the catalog label. A URL that fails
// validation degrades to nil; the assembler substitutes "#" and records
// a warning.
func (s *Service) bindCTA(catalog []types.CTA, choice CTAChoice, defaultID, defaultURL string, utm assemble.UTMParams) *assemble.CTABinding {
	cta, ok := assemble.ResolveCTA(catalog, choice.ID, defaultID, defaultURL)
	if !ok {
		return nil
	}
	if err := assemble.ValidateCTAURL(cta.URL); err != nil {
		s.log.Warn("Rejecting CTA URL", "cta_id", cta.ID, "error", err)
		return nil
	}
	stamped, err := assemble.ApplyUTM(cta.URL, utm)
	if err != nil {
		s.log.Warn("UTM stamping failed", "cta_id", cta.ID, "error", err)
		stamped = cta.URL
	}
	text := cta.Label
	if strings.TrimSpace(choice.Text) != "" {
		text = choice.Text
	}
	return &assemble.CTABinding{URL: stamped, Text: text}
}

// utmFor composes the tracking tuple for one generation run. Source,
// medium and campaign come from the mailing list; term and content are
// always derived at generation time, the term from the chosen subject
// and the content from the content-type id.
func (s *Service) utmFor(list *types.MailingList, ct *types.ContentType, subject string) assemble.UTMParams {
	return assemble.UTMParams{
		Source:   list.UTMSource,
		Medium:   list.UTMMedium,
		Campaign: list.UTMCampaign,
		Term:     assemble.Slugify(subject),
		Content:  ct.ID.String(),
	}
}

func resolveSetting(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf(`{"marshal_error":%q}`, err.Error())
	}
	return string(b)
}
