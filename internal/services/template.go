package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mailforge/mailforge-backend/internal/generation/prompts"
	"github.com/mailforge/mailforge-backend/internal/induction"
	"github.com/mailforge/mailforge-backend/internal/logger"
	"github.com/mailforge/mailforge-backend/internal/repos"
	"github.com/mailforge/mailforge-backend/internal/types"
)

// InductionMode selects how the reference HTML is turned into a layout.
type InductionMode string

const (
	InductionHeuristic InductionMode = "heuristic"
	InductionManual    InductionMode = "manual"
	InductionAssisted  InductionMode = "assisted"
)

// TemplateService induces parametric layouts from reference HTML and
// persists them as the active template for (event, content type).
type TemplateService interface {
	Induce(ctx context.Context, in InduceInput) (*InduceOutput, error)
	GetActive(ctx context.Context, eventID, contentTypeID uuid.UUID) (*types.Template, error)
}

type InduceInput struct {
	EventID       uuid.UUID
	ContentTypeID uuid.UUID
	Name          string
	ReferenceHTML string
	Mode          InductionMode
	LoopName      string

	// Manual mode only.
	Ranges []induction.ManualRange

	// Dry run induces without persisting.
	DryRun bool
}

type InduceOutput struct {
	Template     *types.Template         `json:"template,omitempty"`
	HTML         string                  `json:"html"`
	Placeholders []induction.Placeholder `json:"placeholders"`
	CTAs         []induction.CTARecord   `json:"ctas"`
	Issues       []induction.Issue       `json:"issues"`
	SlotSchema   types.SlotSchema        `json:"slot_schema"`
}

type templateService struct {
	log     *logger.Logger
	inducer *induction.Inducer
	ai      AIClient
	model   string
	repo    repos.TemplateRepo
}

func NewTemplateService(inducer *induction.Inducer, ai AIClient, model string, repo repos.TemplateRepo, log *logger.Logger) TemplateService {
	return &templateService{
		log:     log.With("service", "TemplateService"),
		inducer: inducer,
		ai:      ai,
		model:   model,
		repo:    repo,
	}
}

func (s *templateService) Induce(ctx context.Context, in InduceInput) (*InduceOutput, error) {
	if strings.TrimSpace(in.ReferenceHTML) == "" {
		return nil, fmt.Errorf("reference html required")
	}

	var (
		result *induction.Result
		err    error
	)
	switch in.Mode {
	case InductionManual:
		result, err = s.inducer.InduceManual(in.ReferenceHTML, in.Ranges)
	case InductionAssisted:
		result, err = s.induceAssisted(ctx, in.ReferenceHTML)
	default:
		result, err = s.inducer.Induce(in.ReferenceHTML, induction.Options{LoopName: in.LoopName})
	}
	if err != nil {
		return nil, err
	}

	out := &InduceOutput{
		HTML:         result.HTML,
		Placeholders: result.Placeholders,
		CTAs:         result.CTAs,
		Issues:       result.Issues,
		SlotSchema:   result.SlotSchema(),
	}
	if result.HasErrors() || in.DryRun {
		return out, nil
	}

	schemaJSON, err := json.Marshal(out.SlotSchema)
	if err != nil {
		return nil, err
	}

	// Re-inducing the same reference HTML swaps layout and schema on the
	// existing active template, keeping its identity. A different
	// reference starts a new template and deactivates the old one.
	existing, err := s.repo.GetActive(ctx, nil, in.EventID, in.ContentTypeID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil && existing.ReferenceHTML == in.ReferenceHTML {
		if err := s.repo.ReplaceLayout(ctx, nil, existing.ID, result.HTML, schemaJSON); err != nil {
			return nil, err
		}
		existing.HTMLLayout = result.HTML
		existing.SlotsSchema = schemaJSON
		s.log.Info("Re-induced template in place", "template_id", existing.ID, "placeholders", len(result.Placeholders), "issues", len(result.Issues))
		out.Template = existing
		return out, nil
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = "induced"
	}
	tpl, err := s.repo.Create(ctx, nil, &types.Template{
		EventID:       in.EventID,
		ContentTypeID: in.ContentTypeID,
		Name:          name,
		ReferenceHTML: in.ReferenceHTML,
		HTMLLayout:    result.HTML,
		SlotsSchema:   schemaJSON,
		Active:        true,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Induced template", "template_id", tpl.ID, "placeholders", len(result.Placeholders), "issues", len(result.Issues))
	out.Template = tpl
	return out, nil
}

// induceAssisted asks the model where the variable regions are, then
// applies its answer by literal replacement. The model never emits HTML.
func (s *templateService) induceAssisted(ctx context.Context, refHTML string) (*induction.Result, error) {
	prompt, err := prompts.Build(prompts.PromptTemplateMarkup, prompts.Input{ReferenceHTML: refHTML})
	if err != nil {
		return nil, err
	}
	reply, err := s.ai.Chat(ctx, []AIMessage{
		{Role: "system", Content: prompt.System},
		{Role: "user", Content: prompt.User},
	}, &AIOptions{Model: s.model, Temperature: 0})
	if err != nil {
		return nil, err
	}

	body, err := extractDirectiveJSON(reply)
	if err != nil {
		return nil, err
	}
	var d induction.Directives
	if err := json.Unmarshal([]byte(body), &d); err != nil {
		return nil, fmt.Errorf("directive JSON: %w", err)
	}
	return s.inducer.ApplyDirectives(refHTML, d)
}

func extractDirectiveJSON(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if i := strings.Index(s, "{"); i >= 0 {
		if j := strings.LastIndex(s, "}"); j > i {
			return s[i : j+1], nil
		}
	}
	return "", fmt.Errorf("no JSON object in response")
}

func (s *templateService) GetActive(ctx context.Context, eventID, contentTypeID uuid.UUID) (*types.Template, error) {
	return s.repo.GetActive(ctx, nil, eventID, contentTypeID)
}
