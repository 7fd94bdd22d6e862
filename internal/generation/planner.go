package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mailforge/mailforge-backend/internal/generation/prompts"
	"github.com/mailforge/mailforge-backend/internal/logger"
	"github.com/mailforge/mailforge-backend/internal/services"
	"github.com/mailforge/mailforge-backend/internal/types"
)

const (
	plannerTemperature = 0.5
	maxChatAttempts    = 2
)

type PainToBenefit struct {
	Pain    string `json:"pain"`
	Benefit string `json:"benefit"`
}

// ProgramSelection is one program item the plan builds the email around,
// copied from the retrieved set rather than referenced by id.
type ProgramSelection struct {
	Title   string   `json:"title"`
	Speaker string   `json:"speaker"`
	Time    string   `json:"time,omitempty"`
	Track   string   `json:"track,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

// CTAChoice names a catalog entry by id, with an optional label override.
// The first choice is the primary CTA, the second the secondary.
type CTAChoice struct {
	ID   string `json:"id"`
	Text string `json:"text,omitempty"`
}

// Plan is the pass-1 output: strategy, no body copy.
type Plan struct {
	SubjectVariants      []string           `json:"subject_variants"`
	Preheader            string             `json:"preheader"`
	Angle                string             `json:"angle"`
	SelectedProgramItems []ProgramSelection `json:"selected_program_items"`
	PainToBenefit        []PainToBenefit    `json:"pain_to_benefit"`
	CTAs                 []CTAChoice        `json:"ctas"`

	Raw json.RawMessage `json:"-"`
}

// Subject returns the first variant, the one downstream stages use.
func (p *Plan) Subject() string {
	if len(p.SubjectVariants) == 0 {
		return ""
	}
	return strings.TrimSpace(p.SubjectVariants[0])
}

// PrimaryCTA returns the first choice; the zero value when absent.
func (p *Plan) PrimaryCTA() CTAChoice {
	if len(p.CTAs) == 0 {
		return CTAChoice{}
	}
	return p.CTAs[0]
}

// SecondaryCTA returns the second choice; the zero value when absent.
func (p *Plan) SecondaryCTA() CTAChoice {
	if len(p.CTAs) < 2 {
		return CTAChoice{}
	}
	return p.CTAs[1]
}

type Planner struct {
	ai    services.AIClient
	log   *logger.Logger
	model string
}

func NewPlanner(ai services.AIClient, model string, log *logger.Logger) *Planner {
	return &Planner{
		ai:    ai,
		log:   log.With("service", "Planner"),
		model: model,
	}
}

// PlanInput carries the prompt fields plus the ground truth the plan
// is validated against.
type PlanInput struct {
	Prompt            prompts.Input
	ProgramItemTitles []string
	CTACatalog        []types.CTA
}

// BuildPlan runs pass 1 with a bounded repair loop: a parse or validation
// failure earns one retry that reuses the conversation, then we give up.
func (p *Planner) BuildPlan(ctx context.Context, in PlanInput) (*Plan, string, error) {
	prompt, err := prompts.Build(prompts.PromptEmailPlan, in.Prompt)
	if err != nil {
		return nil, "", NewError(KindPlanning, err)
	}

	messages := []services.AIMessage{
		{Role: "system", Content: prompt.System},
		{Role: "user", Content: prompt.User},
	}
	opts := &services.AIOptions{Model: p.model, Temperature: plannerTemperature}

	var lastErr error
	for attempt := 1; attempt <= maxChatAttempts; attempt++ {
		reply, err := p.ai.Chat(ctx, messages, opts)
		if err != nil {
			return nil, prompt.Fingerprint(), NewError(KindProvider, err)
		}

		plan, parseErr := parsePlan(reply)
		if parseErr == nil {
			parseErr = validatePlan(plan, in)
		}
		if parseErr == nil {
			return plan, prompt.Fingerprint(), nil
		}

		lastErr = parseErr
		p.log.Warn("Plan attempt rejected", "attempt", attempt, "error", parseErr)
		messages = append(messages,
			services.AIMessage{Role: "assistant", Content: reply},
			services.AIMessage{Role: "user", Content: fmt.Sprintf(
				"Your previous response was rejected: %v. Respond again with JSON only, matching the schema exactly.", parseErr)},
		)
	}

	return nil, prompt.Fingerprint(), NewError(KindPlanning, lastErr)
}

func parsePlan(reply string) (*Plan, error) {
	body, err := ExtractJSON(reply)
	if err != nil {
		return nil, err
	}
	var plan Plan
	if err := json.Unmarshal([]byte(body), &plan); err != nil {
		return nil, fmt.Errorf("plan JSON: %w", err)
	}
	plan.Raw = json.RawMessage(body)
	return &plan, nil
}

func validatePlan(plan *Plan, in PlanInput) error {
	if len(plan.SubjectVariants) < 2 || len(plan.SubjectVariants) > 4 {
		return fmt.Errorf("want 2 to 4 subject_variants, got %d", len(plan.SubjectVariants))
	}
	for _, s := range plan.SubjectVariants {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("empty subject variant")
		}
		if len([]rune(s)) > 60 {
			return fmt.Errorf("subject variant over 60 characters: %q", s)
		}
	}
	if len([]rune(plan.Preheader)) > 90 {
		return fmt.Errorf("preheader over 90 characters")
	}
	if len([]rune(plan.Angle)) > 240 {
		return fmt.Errorf("angle over 240 characters")
	}

	known := make(map[string]bool, len(in.ProgramItemTitles))
	for _, title := range in.ProgramItemTitles {
		known[strings.ToLower(strings.TrimSpace(title))] = true
	}
	for _, item := range plan.SelectedProgramItems {
		if strings.TrimSpace(item.Title) == "" {
			return fmt.Errorf("selected_program_items entry with empty title")
		}
		if !known[strings.ToLower(strings.TrimSpace(item.Title))] {
			return fmt.Errorf("selected_program_items contains unknown item %q", item.Title)
		}
	}

	catalog := make(map[string]bool, len(in.CTACatalog))
	for _, c := range in.CTACatalog {
		catalog[c.ID] = true
	}
	if len(plan.CTAs) == 0 {
		return fmt.Errorf("ctas is empty, at least the primary is required")
	}
	if len(plan.CTAs) > 2 {
		return fmt.Errorf("want at most 2 ctas, got %d", len(plan.CTAs))
	}
	for i, c := range plan.CTAs {
		if c.ID == "" {
			return fmt.Errorf("ctas[%d].id is empty", i)
		}
		if !catalog[c.ID] {
			return fmt.Errorf("ctas[%d].id %q not in catalog", i, c.ID)
		}
	}
	return nil
}
