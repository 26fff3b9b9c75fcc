package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ConversationPayload is the structured result a moderation call can embed in
// its reply. Structured reports which variant this is: when the embedded JSON
// is absent or malformed the payload degrades to the raw text as Summary with
// defaults everywhere else, and that is never an error.
type ConversationPayload struct {
	Summary            string
	ConsensusIdea      string
	ShouldCollaborate  bool
	RecommendedActions []string
	Structured         bool
}

// ParsePayload extracts the JSON object embedded in a collaborator reply.
func ParsePayload(text string) ConversationPayload {
	fallback := ConversationPayload{Summary: strings.TrimSpace(text)}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return fallback
	}

	var raw struct {
		Summary            string          `json:"conversation_summary"`
		ConsensusIdea      string          `json:"consensus_idea"`
		ShouldCollaborate  bool            `json:"should_collaborate"`
		RecommendedActions json.RawMessage `json:"recommended_actions"`
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return fallback
	}

	payload := ConversationPayload{
		Summary:            raw.Summary,
		ConsensusIdea:      raw.ConsensusIdea,
		ShouldCollaborate:  raw.ShouldCollaborate,
		RecommendedActions: parseActions(raw.RecommendedActions),
		Structured:         true,
	}
	if payload.Summary == "" {
		payload.Summary = strings.TrimSpace(text)
	}
	return payload
}

func parseActions(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		// A scalar still counts as one action.
		var single any
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil
		}
		items = []any{single}
	}
	var actions []string
	for _, item := range items {
		text := strings.TrimSpace(stringify(item))
		if text != "" {
			actions = append(actions, text)
		}
	}
	return actions
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
