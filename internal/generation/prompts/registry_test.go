package prompts

import (
	"strings"
	"testing"
)

func planInput() Input {
	return Input{
		EventName:        "DevConf 2024",
		EventDate:        "2024-09-12",
		Venue:            "Berlin",
		TopicTitle:       "Early bird pricing ends",
		Segment:          "engineering leads",
		Tone:             "professional",
		Language:         "en",
		ProgramItemsJSON: `[{"id":"item-1","content":"Scaling Postgres"}]`,
		PainPointsJSON:   `[{"id":"pain-1","content":"Slow approvals"}]`,
		CTACatalogJSON:   `[{"id":"register"}]`,
	}
}

func TestBuildEmailPlan(t *testing.T) {
	p, err := Build(PromptEmailPlan, planInput())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if p.Name != "email_plan" || p.Version != 1 || p.SchemaName != "email_plan" {
		t.Errorf("identity: %+v", p)
	}
	for _, want := range []string{
		"DevConf 2024", "Berlin", "Early bird pricing ends",
		"engineering leads", `"id":"register"`, "Scaling Postgres",
	} {
		if !strings.Contains(p.User, want) {
			t.Errorf("user prompt missing %q", want)
		}
	}
	if strings.Contains(p.User, "{{.") {
		t.Errorf("unrendered template action:\n%s", p.User)
	}
	if p.Schema == nil {
		t.Fatal("schema missing")
	}
	if p.Schema["additionalProperties"] != false {
		t.Errorf("schema not strict: %+v", p.Schema)
	}
}

func TestBuildUnknownPrompt(t *testing.T) {
	if _, err := Build(PromptName("nope"), Input{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestBuildValidatorRejects(t *testing.T) {
	in := planInput()
	in.TopicTitle = "  "
	_, err := Build(PromptEmailPlan, in)
	if err == nil || !strings.Contains(err.Error(), "topic title") {
		t.Fatalf("got %v", err)
	}
}

func TestBuildSlotFillRequiresPlan(t *testing.T) {
	_, err := Build(PromptSlotFill, Input{SlotSchemaJSON: "{}"})
	if err == nil || !strings.Contains(err.Error(), "plan") {
		t.Fatalf("got %v", err)
	}
}

func TestBuildTemplateMarkup(t *testing.T) {
	p, err := Build(PromptTemplateMarkup, Input{ReferenceHTML: "<h1>Hi</h1>"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.Contains(p.User, "<h1>Hi</h1>") {
		t.Errorf("reference html not rendered:\n%s", p.User)
	}
}

func TestFingerprintStability(t *testing.T) {
	a, err := Build(PromptEmailPlan, planInput())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	b, _ := Build(PromptEmailPlan, planInput())
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("same input, different fingerprints")
	}

	in := planInput()
	in.TopicTitle = "Speaker lineup revealed"
	c, _ := Build(PromptEmailPlan, in)
	if a.Fingerprint() == c.Fingerprint() {
		t.Error("different input, same fingerprint")
	}
	if len(a.Fingerprint()) != 64 {
		t.Errorf("fingerprint length: %d", len(a.Fingerprint()))
	}
}

func TestMakeTemplateRejectsMalformedSpec(t *testing.T) {
	cases := []struct {
		name string
		spec Spec
	}{
		{"no name", Spec{Version: 1, SchemaName: "s", Schema: func() map[string]any { return nil }}},
		{"no version", Spec{Name: "x", SchemaName: "s", Schema: func() map[string]any { return nil }}},
		{"no schema", Spec{Name: "x", Version: 1, SchemaName: "s"}},
		{"bad template", Spec{
			Name: "x", Version: 1, SchemaName: "s",
			Schema: func() map[string]any { return nil },
			User:   "{{.Unclosed",
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := MakeTemplate(tc.spec); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestEmailPlanSchemaShape(t *testing.T) {
	schema := EmailPlanSchema()
	props, ok := schema["properties"].(map[string]any)
	if !ok {
		t.Fatalf("schema: %+v", schema)
	}
	for _, want := range []string{"subject_variants", "preheader", "angle", "selected_program_items", "pain_to_benefit", "ctas"} {
		if _, ok := props[want]; !ok {
			t.Errorf("missing property %q", want)
		}
	}
	required, ok := schema["required"].([]string)
	if !ok || len(required) != len(props) {
		t.Errorf("strict mode requires every property: %v", schema["required"])
	}

	items, ok := props["selected_program_items"].(map[string]any)
	if !ok || items["type"] != "array" {
		t.Fatalf("selected_program_items: %+v", props["selected_program_items"])
	}
	itemProps, ok := items["items"].(map[string]any)["properties"].(map[string]any)
	if !ok {
		t.Fatalf("selected_program_items items: %+v", items["items"])
	}
	for _, want := range []string{"title", "speaker", "time", "track", "tags"} {
		if _, ok := itemProps[want]; !ok {
			t.Errorf("program selection missing property %q", want)
		}
	}

	ctas, ok := props["ctas"].(map[string]any)
	if !ok || ctas["type"] != "array" {
		t.Fatalf("ctas: %+v", props["ctas"])
	}
	ctaProps := ctas["items"].(map[string]any)["properties"].(map[string]any)
	for _, want := range []string{"id", "text"} {
		if _, ok := ctaProps[want]; !ok {
			t.Errorf("cta choice missing property %q", want)
		}
	}
}
