package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/mailforge/mailforge-backend/internal/generation/prompts"
	"github.com/mailforge/mailforge-backend/internal/logger"
	"github.com/mailforge/mailforge-backend/internal/services"
	"github.com/mailforge/mailforge-backend/internal/types"
)

// fakeAI replays canned chat replies in order and records every call.
type fakeAI struct {
	replies []string
	calls   [][]services.AIMessage
	opts    []*services.AIOptions
	chatErr error
}

func (f *fakeAI) Chat(_ context.Context, messages []services.AIMessage, opts *services.AIOptions) (string, error) {
	msgs := make([]services.AIMessage, len(messages))
	copy(msgs, messages)
	f.calls = append(f.calls, msgs)
	f.opts = append(f.opts, opts)
	if f.chatErr != nil {
		return "", f.chatErr
	}
	i := len(f.calls) - 1
	if i >= len(f.replies) {
		return "", fmt.Errorf("no canned reply for call %d", i)
	}
	return f.replies[i], nil
}

func (f *fakeAI) Embed(_ context.Context, inputs []string) ([][]float32, error) {
	out := make([][]float32, len(inputs))
	for i := range out {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

var testCatalog = []types.CTA{
	{ID: "register", URL: "https://example.com/register", Label: "Register Now"},
	{ID: "agenda", URL: "https://example.com/agenda", Label: "See the Agenda"},
}

func testPlanInput() PlanInput {
	return PlanInput{
		Prompt: prompts.Input{
			EventName:      "DevConf 2024",
			EventDate:      "2024-09-12",
			TopicTitle:     "Early bird pricing ends",
			Tone:           "professional",
			Language:       "en",
			CTACatalogJSON: `[{"id":"register"},{"id":"agenda"}]`,
		},
		ProgramItemTitles: []string{"Scaling Postgres", "Observability on a Budget"},
		CTACatalog:        testCatalog,
	}
}

const validPlanJSON = `{
	"subject_variants": ["Early bird ends Friday", "Last call for early bird"],
	"preheader": "Lock in the lowest rate before Friday.",
	"angle": "Urgency around the pricing deadline, backed by the program highlights.",
	"selected_program_items": [{"title": "Scaling Postgres", "speaker": "Dana Reyes", "time": "Day 1", "track": "", "tags": ["databases"]}],
	"pain_to_benefit": [{"pain": "budget approval is slow", "benefit": "a rate worth approving today"}],
	"ctas": [{"id": "register", "text": ""}, {"id": "agenda", "text": "Browse all talks"}]
}`

func TestBuildPlan(t *testing.T) {
	ai := &fakeAI{replies: []string{"```json\n" + validPlanJSON + "\n```"}}
	planner := NewPlanner(ai, "gpt-test", logger.NewNop())

	plan, fp, err := planner.BuildPlan(context.Background(), testPlanInput())
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	if len(fp) != 64 {
		t.Errorf("fingerprint: %q", fp)
	}
	if plan.Subject() != "Early bird ends Friday" {
		t.Errorf("subject: %q", plan.Subject())
	}
	if plan.PrimaryCTA().ID != "register" || plan.SecondaryCTA().ID != "agenda" {
		t.Errorf("ctas: %+v", plan.CTAs)
	}
	if plan.SecondaryCTA().Text != "Browse all talks" {
		t.Errorf("secondary label override: %+v", plan.SecondaryCTA())
	}
	if got := plan.SelectedProgramItems[0]; got.Title != "Scaling Postgres" || got.Speaker != "Dana Reyes" {
		t.Errorf("program selection: %+v", got)
	}
	if len(plan.Raw) == 0 {
		t.Error("raw plan not kept")
	}
	if len(ai.calls) != 1 {
		t.Fatalf("calls: %d", len(ai.calls))
	}
	if ai.opts[0].Model != "gpt-test" || ai.opts[0].Temperature != 0.5 {
		t.Errorf("opts: %+v", ai.opts[0])
	}
	if ai.calls[0][0].Role != "system" || ai.calls[0][1].Role != "user" {
		t.Errorf("message roles: %+v", ai.calls[0])
	}
}

func TestBuildPlanRepairLoop(t *testing.T) {
	ai := &fakeAI{replies: []string{"Sure! Here is my thinking, no JSON though.", validPlanJSON}}
	planner := NewPlanner(ai, "gpt-test", logger.NewNop())

	plan, _, err := planner.BuildPlan(context.Background(), testPlanInput())
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	if plan.Preheader == "" {
		t.Error("plan not parsed on second attempt")
	}
	if len(ai.calls) != 2 {
		t.Fatalf("calls: %d", len(ai.calls))
	}
	second := ai.calls[1]
	if len(second) != 4 {
		t.Fatalf("repair conversation length: %d", len(second))
	}
	if second[2].Role != "assistant" || second[2].Content != ai.replies[0] {
		t.Errorf("rejected reply not echoed: %+v", second[2])
	}
	if second[3].Role != "user" || !strings.Contains(second[3].Content, "rejected") {
		t.Errorf("repair instruction: %+v", second[3])
	}
}

func TestBuildPlanGivesUpAfterRetry(t *testing.T) {
	ai := &fakeAI{replies: []string{"not json", "still not json"}}
	planner := NewPlanner(ai, "gpt-test", logger.NewNop())

	_, _, err := planner.BuildPlan(context.Background(), testPlanInput())
	if err == nil {
		t.Fatal("expected error")
	}
	if KindOf(err) != KindPlanning {
		t.Errorf("kind: %q", KindOf(err))
	}
	if len(ai.calls) != 2 {
		t.Errorf("calls: %d", len(ai.calls))
	}
}

func TestBuildPlanProviderError(t *testing.T) {
	ai := &fakeAI{chatErr: errors.New("upstream 500")}
	planner := NewPlanner(ai, "gpt-test", logger.NewNop())

	_, _, err := planner.BuildPlan(context.Background(), testPlanInput())
	if KindOf(err) != KindProvider {
		t.Fatalf("kind: %q (%v)", KindOf(err), err)
	}
	// Provider failures are not retried here.
	if len(ai.calls) != 1 {
		t.Errorf("calls: %d", len(ai.calls))
	}
}

func TestValidatePlan(t *testing.T) {
	base := func() *Plan {
		var p Plan
		if err := p.unmarshalForTest(validPlanJSON); err != nil {
			t.Fatalf("fixture: %v", err)
		}
		return &p
	}

	cases := []struct {
		name    string
		mutate  func(*Plan)
		wantErr string
	}{
		{"valid", func(*Plan) {}, ""},
		{"one variant", func(p *Plan) { p.SubjectVariants = p.SubjectVariants[:1] }, "subject_variants"},
		{"five variants", func(p *Plan) {
			p.SubjectVariants = []string{"a", "b", "c", "d", "e"}
		}, "subject_variants"},
		{"subject too long", func(p *Plan) {
			p.SubjectVariants[0] = strings.Repeat("x", 61)
		}, "over 60"},
		{"blank variant", func(p *Plan) { p.SubjectVariants[1] = "  " }, "empty subject"},
		{"preheader too long", func(p *Plan) { p.Preheader = strings.Repeat("y", 91) }, "preheader"},
		{"angle too long", func(p *Plan) { p.Angle = strings.Repeat("z", 241) }, "angle"},
		{"unknown program item", func(p *Plan) {
			p.SelectedProgramItems = []ProgramSelection{{Title: "Invented Keynote", Speaker: "Nobody"}}
		}, "unknown item"},
		{"program item without title", func(p *Plan) {
			p.SelectedProgramItems = []ProgramSelection{{Speaker: "Dana Reyes"}}
		}, "empty title"},
		{"title match ignores case", func(p *Plan) {
			p.SelectedProgramItems[0].Title = "scaling postgres"
		}, ""},
		{"no ctas", func(p *Plan) { p.CTAs = nil }, "ctas is empty"},
		{"three ctas", func(p *Plan) {
			p.CTAs = append(p.CTAs, CTAChoice{ID: "register"})
		}, "at most 2"},
		{"cta without id", func(p *Plan) { p.CTAs[0].ID = "" }, "id is empty"},
		{"unknown primary", func(p *Plan) { p.CTAs[0].ID = "buy" }, "not in catalog"},
		{"unknown secondary", func(p *Plan) { p.CTAs[1].ID = "share" }, "not in catalog"},
		{"primary alone is fine", func(p *Plan) { p.CTAs = p.CTAs[:1] }, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			plan := base()
			tc.mutate(plan)
			err := validatePlan(plan, testPlanInput())
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("want %q, got %v", tc.wantErr, err)
			}
		})
	}
}

// unmarshalForTest mirrors parsePlan without the reply extraction.
func (p *Plan) unmarshalForTest(body string) error {
	parsed, err := parsePlan(body)
	if err != nil {
		return err
	}
	*p = *parsed
	return nil
}
