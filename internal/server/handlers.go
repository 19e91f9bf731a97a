package server

import (
	"encoding/json"
	"strings"

	"aselo/backend/internal/store"
)

// Completions only carry the most recent turns; older context is assumed to
// be reflected in the form draft already.
const maxConversationTurns = 30

type chatRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	Message   string `json:"message" binding:"required"`
}

type sessionRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
}

func toString(value any) string {
	s, _ := value.(string)
	return s
}

func parseJSONStringMap(raw []byte) map[string]any {
	parsed := map[string]any{}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return map[string]any{}
	}
	return parsed
}

func truncateForLog(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 || len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}

// extractJSONObject pulls the first JSON object out of a completion that may
// be wrapped in code fences or prose. An unparseable completion yields an
// empty map, never an error: a bad extraction round is a no-op, not a 500.
func extractJSONObject(completion string) map[string]any {
	text := strings.TrimSpace(completion)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return map[string]any{}
	}
	return parseJSONStringMap([]byte(text[start : end+1]))
}

// toChatTurns maps stored messages onto completion roles, keeping only the
// most recent turns.
func toChatTurns(messages []store.Message) []ChatTurn {
	if len(messages) > maxConversationTurns {
		messages = messages[len(messages)-maxConversationTurns:]
	}
	turns := make([]ChatTurn, 0, len(messages))
	for _, message := range messages {
		role := "user"
		if message.Sender == "bot" {
			role = "assistant"
		}
		turns = append(turns, ChatTurn{Role: role, Content: message.Message})
	}
	return turns
}
