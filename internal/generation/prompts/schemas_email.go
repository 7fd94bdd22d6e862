package prompts

// OpenAI strict JSON schema rules apply to every object here:
// additionalProperties false, and required must list every property.
// Unused optional fields come back as empty strings, never omitted.

func PainToBenefitSchema() map[string]any {
	return ObjectSchema(map[string]any{
		"pain":    StringSchema(),
		"benefit": StringSchema(),
	}, []string{"pain", "benefit"})
}

func ProgramSelectionSchema() map[string]any {
	return ObjectSchema(map[string]any{
		"title":   StringSchema(),
		"speaker": StringSchema(),
		"time":    StringSchema(),
		"track":   StringSchema(),
		"tags":    StringArraySchema(),
	}, []string{"title", "speaker", "time", "track", "tags"})
}

func CTAChoiceSchema() map[string]any {
	return ObjectSchema(map[string]any{
		"id":   StringSchema(),
		"text": StringSchema(),
	}, []string{"id", "text"})
}

// EmailPlanSchema is the pass-1 output contract.
func EmailPlanSchema() map[string]any {
	return ObjectSchema(map[string]any{
		"subject_variants": map[string]any{
			"type":     "array",
			"items":    StringMaxLenSchema(60),
			"minItems": 2,
			"maxItems": 4,
		},
		"preheader":              StringMaxLenSchema(90),
		"angle":                  StringMaxLenSchema(240),
		"selected_program_items": ArraySchema(ProgramSelectionSchema()),
		"pain_to_benefit":        ArraySchema(PainToBenefitSchema()),
		"ctas": map[string]any{
			"type":     "array",
			"items":    CTAChoiceSchema(),
			"minItems": 1,
			"maxItems": 2,
		},
	}, []string{
		"subject_variants",
		"preheader",
		"angle",
		"selected_program_items",
		"pain_to_benefit",
		"ctas",
	})
}

// SlotFillShellSchema is a placeholder. The slot filler swaps in a schema
// built from the active template's slot definitions before each call.
func SlotFillShellSchema() map[string]any {
	return ObjectSchema(map[string]any{}, []string{})
}

func loopFieldSchema() map[string]any {
	return ObjectSchema(map[string]any{
		"name":    StringSchema(),
		"example": StringSchema(),
	}, []string{"name", "example"})
}

func loopDirectiveSchema() map[string]any {
	return ObjectSchema(map[string]any{
		"start_marker":  StringSchema(),
		"end_marker":    StringSchema(),
		"variable_name": StringSchema(),
		"fields":        ArraySchema(loopFieldSchema()),
	}, []string{"start_marker", "end_marker", "variable_name", "fields"})
}

func variableDirectiveSchema() map[string]any {
	return ObjectSchema(map[string]any{
		"unique_text":   StringSchema(),
		"variable_name": StringSchema(),
		"type":          EnumSchema("text", "url"),
	}, []string{"unique_text", "variable_name", "type"})
}

// TemplateMarkupSchema is the model-assisted induction output contract.
// The model names literal text ranges; the engine does all HTML surgery.
func TemplateMarkupSchema() map[string]any {
	return ObjectSchema(map[string]any{
		"loops":     ArraySchema(loopDirectiveSchema()),
		"variables": ArraySchema(variableDirectiveSchema()),
	}, []string{"loops", "variables"})
}
