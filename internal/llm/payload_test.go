package llm

import "testing"

func TestParsePayloadStructured(t *testing.T) {
	text := `Here is the moderation result:
{"conversation_summary": "The group aligned fast.", "consensus_idea": "Shared dashboard", "should_collaborate": true, "recommended_actions": ["interview two users", "sketch the flow"]}
Thanks!`

	payload := ParsePayload(text)
	if !payload.Structured {
		t.Fatalf("expected structured payload")
	}
	if payload.Summary != "The group aligned fast." {
		t.Fatalf("unexpected summary: %q", payload.Summary)
	}
	if payload.ConsensusIdea != "Shared dashboard" {
		t.Fatalf("unexpected consensus: %q", payload.ConsensusIdea)
	}
	if !payload.ShouldCollaborate {
		t.Fatalf("expected collaborate vote")
	}
	if len(payload.RecommendedActions) != 2 {
		t.Fatalf("expected two actions, got %v", payload.RecommendedActions)
	}
}

func TestParsePayloadMalformedFallsBackToRawText(t *testing.T) {
	text := "The teams seem energized { not json here"
	payload := ParsePayload(text)
	if payload.Structured {
		t.Fatalf("malformed JSON should not count as structured")
	}
	if payload.Summary != text {
		t.Fatalf("fallback should keep the raw text, got %q", payload.Summary)
	}
	if payload.ShouldCollaborate {
		t.Fatalf("fallback must not vote to collaborate")
	}
}

func TestParsePayloadNoBraces(t *testing.T) {
	payload := ParsePayload("  plain narration with no structure  ")
	if payload.Structured {
		t.Fatalf("plain text should not be structured")
	}
	if payload.Summary != "plain narration with no structure" {
		t.Fatalf("expected trimmed raw text, got %q", payload.Summary)
	}
}

func TestParsePayloadScalarAction(t *testing.T) {
	payload := ParsePayload(`{"conversation_summary": "ok", "recommended_actions": "ship the demo"}`)
	if len(payload.RecommendedActions) != 1 || payload.RecommendedActions[0] != "ship the demo" {
		t.Fatalf("scalar action should become one entry, got %v", payload.RecommendedActions)
	}
}

func TestParsePayloadEmptySummaryUsesRawText(t *testing.T) {
	text := `{"consensus_idea": "X"}`
	payload := ParsePayload(text)
	if payload.Summary != text {
		t.Fatalf("empty structured summary should fall back to raw text, got %q", payload.Summary)
	}
}
