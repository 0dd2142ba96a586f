package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Lead is the structured output of one extraction call. Pointer fields stay
// nil when the model could not find the value in the conversation.
type Lead struct {
	Name       *string `json:"name"`
	Address    *string `json:"address"`
	Mobile     *string `json:"mobile"`
	Confidence float64 `json:"confidence"`
	Notes      string  `json:"notes"`
}

// LeadExtractor is the remote-call boundary: one conversation in, one
// structured lead out. Implementations are full independent calls; the
// processing stage owns retries.
type LeadExtractor interface {
	Extract(ctx context.Context, combinedText, pushName string) (*Lead, error)
}

// BuildPrompt renders the strict-JSON extraction instruction. The whole
// conversation goes in as-is; downstream decoding tolerates code fences but
// nothing else, so the instruction is blunt about the output format.
func BuildPrompt(combinedText, pushName string) string {
	return fmt.Sprintf(`You are a lead extraction assistant for a sales team.
A prospect sent the following WhatsApp messages (one per line, in order).
Their WhatsApp display name is %q.

Messages:
%s

Extract the prospect's details and respond with ONLY a JSON object, no prose,
no markdown, exactly this shape:
{"name": string or null, "address": string or null, "mobile": string or null, "confidence": number between 0 and 1, "notes": string}

Rules:
- name: the person's real name if stated, else null. The display name is a hint, not proof.
- mobile: a phone number if present, digits as written, else null.
- address: the delivery or home address if present, else null.
- confidence: how certain you are overall.
- notes: one short sentence of anything else useful.`, pushName, combinedText)
}

// DecodeLead parses a model response into a Lead. Models wrap JSON in
// markdown fences often enough that stripping them here is cheaper than
// re-prompting.
func DecodeLead(raw string) (*Lead, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var lead Lead
	if err := json.Unmarshal([]byte(cleaned), &lead); err != nil {
		return nil, fmt.Errorf("decode extraction response: %w", err)
	}

	if lead.Confidence < 0 {
		lead.Confidence = 0
	}
	if lead.Confidence > 1 {
		lead.Confidence = 1
	}
	return &lead, nil
}
