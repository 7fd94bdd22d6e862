package prompts

type PromptName string

const (
	// Generation passes
	PromptEmailPlan PromptName = "email_plan"
	PromptSlotFill  PromptName = "slot_fill"

	// Template induction (model-assisted markup)
	PromptTemplateMarkup PromptName = "template_markup"
)
