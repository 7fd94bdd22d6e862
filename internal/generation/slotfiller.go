package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/mailforge/mailforge-backend/internal/generation/prompts"
	"github.com/mailforge/mailforge-backend/internal/logger"
	"github.com/mailforge/mailforge-backend/internal/services"
	"github.com/mailforge/mailforge-backend/internal/types"
)

const slotFillerTemperature = 0.6

var htmlTagRE = regexp.MustCompile(`<[a-zA-Z/][^>]*>`)

// SlotFill is the pass-2 output: one value per slot of the active template.
type SlotFill struct {
	Values map[string]any
	Raw    json.RawMessage
}

type SlotFiller struct {
	ai    services.AIClient
	log   *logger.Logger
	model string
}

func NewSlotFiller(ai services.AIClient, model string, log *logger.Logger) *SlotFiller {
	return &SlotFiller{
		ai:    ai,
		log:   log.With("service", "SlotFiller"),
		model: model,
	}
}

// Fill runs pass 2 against the template's slot schema, with the same
// bounded repair loop as the planner.
func (f *SlotFiller) Fill(ctx context.Context, in prompts.Input, schema types.SlotSchema) (*SlotFill, string, error) {
	schemaJSON, err := json.Marshal(slotJSONSchema(schema))
	if err != nil {
		return nil, "", NewError(KindSlot, err)
	}
	in.SlotSchemaJSON = string(schemaJSON)

	prompt, err := prompts.Build(prompts.PromptSlotFill, in)
	if err != nil {
		return nil, "", NewError(KindSlot, err)
	}
	prompt.Schema = slotJSONSchema(schema)

	messages := []services.AIMessage{
		{Role: "system", Content: prompt.System},
		{Role: "user", Content: prompt.User},
	}
	opts := &services.AIOptions{Model: f.model, Temperature: slotFillerTemperature}

	var lastErr error
	for attempt := 1; attempt <= maxChatAttempts; attempt++ {
		reply, err := f.ai.Chat(ctx, messages, opts)
		if err != nil {
			return nil, prompt.Fingerprint(), NewError(KindProvider, err)
		}

		fill, parseErr := parseSlotFill(reply)
		if parseErr == nil {
			parseErr = validateSlotFill(fill, schema)
		}
		if parseErr == nil {
			truncateSlotValues(fill, schema, f.log)
			return fill, prompt.Fingerprint(), nil
		}

		lastErr = parseErr
		f.log.Warn("Slot fill attempt rejected", "attempt", attempt, "error", parseErr)
		messages = append(messages,
			services.AIMessage{Role: "assistant", Content: reply},
			services.AIMessage{Role: "user", Content: fmt.Sprintf(
				"Your previous response was rejected: %v. Respond again with JSON only, one key per slot, plain text values.", parseErr)},
		)
	}

	return nil, prompt.Fingerprint(), NewError(KindSlot, lastErr)
}

// slotJSONSchema converts the stored slot definitions into the strict
// JSON schema sent with the chat call.
func slotJSONSchema(s types.SlotSchema) map[string]any {
	props := map[string]any{}
	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		p := s.Properties[name]
		switch p.Type {
		case "array":
			item := map[string]any{"type": "string"}
			props[name] = map[string]any{
				"type":        "array",
				"items":       item,
				"description": p.Description,
			}
		default:
			prop := map[string]any{"type": "string", "description": p.Description}
			if p.MaxLength > 0 {
				prop["maxLength"] = p.MaxLength
			}
			props[name] = prop
		}
	}

	// Strict mode: every property is required, optional slots may be empty.
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             names,
		"additionalProperties": false,
	}
}

func parseSlotFill(reply string) (*SlotFill, error) {
	body, err := ExtractJSON(reply)
	if err != nil {
		return nil, err
	}
	var values map[string]any
	if err := json.Unmarshal([]byte(body), &values); err != nil {
		return nil, fmt.Errorf("slot JSON: %w", err)
	}
	return &SlotFill{Values: values, Raw: json.RawMessage(body)}, nil
}

func validateSlotFill(fill *SlotFill, schema types.SlotSchema) error {
	for _, name := range schema.Required {
		v, ok := fill.Values[name]
		if !ok || isEmptySlot(v) {
			return fmt.Errorf("required slot %q is missing or empty", name)
		}
	}
	for name, v := range fill.Values {
		switch t := v.(type) {
		case string:
			if htmlTagRE.MatchString(t) {
				return fmt.Errorf("slot %q contains HTML markup", name)
			}
		case []any:
			for _, e := range t {
				if s, ok := e.(string); ok && htmlTagRE.MatchString(s) {
					return fmt.Errorf("slot %q contains HTML markup", name)
				}
			}
		}
	}
	return nil
}

func isEmptySlot(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	}
	return false
}

// truncateSlotValues enforces a hard ceiling of twice the declared
// maxLength. Mild overruns are tolerated, runaway values are cut.
func truncateSlotValues(fill *SlotFill, schema types.SlotSchema, log *logger.Logger) {
	for name, prop := range schema.Properties {
		if prop.MaxLength <= 0 {
			continue
		}
		s, ok := fill.Values[name].(string)
		if !ok {
			continue
		}
		limit := prop.MaxLength * 2
		if r := []rune(s); len(r) > limit {
			log.Warn("Truncating oversize slot value", "slot", name, "length", len(r), "limit", limit)
			fill.Values[name] = strings.TrimSpace(string(r[:limit]))
		}
	}
}
