package prompts

// Input is a superset of all fields any prompt might need.
// Missing fields render empty strings (templates use missingkey=zero).
type Input struct {
	// Event context
	EventName string
	EventDate string
	Venue     string

	// Topic
	TopicTitle string
	Segment    string
	Tone       string
	Language   string

	// Retrieval context (JSON blobs rendered into the user prompt)
	ProgramItemsJSON  string
	PainPointsJSON    string
	StyleSnippetsText string

	// CTA catalog
	CTACatalogJSON string

	// Pass-2
	PlanJSON       string
	SlotSchemaJSON string

	// Model-assisted induction
	ReferenceHTML string
}
