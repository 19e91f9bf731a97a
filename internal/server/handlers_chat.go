package server

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"aselo/backend/internal/form"
	"aselo/backend/internal/store"
)

// processChat appends the user turn, completes against the prior
// conversation, and appends the assistant reply. The user turn survives
// even when the completion fails so a retry does not lose input.
func (a *App) processChat(c *gin.Context) {
	var req chatRequest
	if !mustJSON(c, &req) {
		return
	}
	sessionID := strings.TrimSpace(req.SessionID)
	userText := strings.TrimSpace(req.Message)
	if sessionID == "" || userText == "" {
		writeError(c, http.StatusBadRequest, codeValidationError, "sessionId and message are required")
		return
	}

	now := time.Now().UTC()
	prior, err := a.store.AppendMessage(c.Request.Context(), sessionID, store.Message{
		ID:        uuid.NewString(),
		Sender:    "user",
		Message:   userText,
		Timestamp: now,
	})
	if err != nil {
		writeError(c, http.StatusInternalServerError, codeDatabaseError, "Failed to save message")
		return
	}

	reply, err := a.ai.Complete(c.Request.Context(), CompletionRequest{
		SystemPrompt: chatSystemPrompt,
		Conversation: toChatTurns(prior.Messages),
		UserPrompt:   userText,
	})
	if err != nil {
		log.Printf("chat completion failed for session %s: %v", sessionID, err)
		writeError(c, http.StatusBadGateway, codeLLMError, "Chat service is temporarily unavailable")
		return
	}

	if _, err := a.store.AppendMessage(c.Request.Context(), sessionID, store.Message{
		ID:        uuid.NewString(),
		Sender:    "bot",
		Message:   reply,
		Timestamp: time.Now().UTC(),
	}); err != nil {
		writeError(c, http.StatusInternalServerError, codeDatabaseError, "Failed to save message")
		return
	}

	respondData(c, gin.H{
		"sessionId": sessionID,
		"response":  reply,
	})
}

// autofillForm runs an extraction completion over the whole conversation,
// classifies the result, and merges accepted fields into the session draft.
func (a *App) autofillForm(c *gin.Context) {
	var req sessionRequest
	if !mustJSON(c, &req) {
		return
	}
	sessionID := strings.TrimSpace(req.SessionID)

	session, err := a.store.GetSession(c.Request.Context(), sessionID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && len(session.Messages) == 0) {
		writeError(c, http.StatusNotFound, codeSessionNotFound, "No conversation found for this session")
		return
	}
	if err != nil {
		writeError(c, http.StatusInternalServerError, codeDatabaseError, "Failed to load session")
		return
	}

	completion, err := a.ai.Complete(c.Request.Context(), CompletionRequest{
		SystemPrompt: buildExtractionSystemPrompt(),
		Conversation: toChatTurns(session.Messages),
		UserPrompt:   extractionUserPrompt,
	})
	if err != nil {
		log.Printf("extraction completion failed for session %s: %v", sessionID, err)
		writeError(c, http.StatusBadGateway, codeLLMError, "Form extraction is temporarily unavailable")
		return
	}

	extracted := extractJSONObject(completion)
	update, dropped := form.Classify(extracted)
	if len(dropped) > 0 {
		log.Printf("autofill dropped %d value(s) for session %s: %s",
			len(dropped), sessionID, strings.Join(dropped, ", "))
	}

	counts := session.Form.Merge(update)
	if err := a.store.UpdateForm(c.Request.Context(), sessionID, session.Form); err != nil {
		writeError(c, http.StatusInternalServerError, codeDatabaseError, "Failed to save form data")
		return
	}

	respondData(c, gin.H{
		"sessionId":     sessionID,
		"formData":      session.Form,
		"updatedFields": counts,
		"message":       fmt.Sprintf("Updated %d field(s) from the conversation", counts.Total()),
	})
}

func (a *App) summarizeConversation(c *gin.Context) {
	var req sessionRequest
	if !mustJSON(c, &req) {
		return
	}
	sessionID := strings.TrimSpace(req.SessionID)

	session, err := a.store.GetSession(c.Request.Context(), sessionID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && len(session.Messages) == 0) {
		writeError(c, http.StatusNotFound, codeSessionNotFound, "No conversation found for this session")
		return
	}
	if err != nil {
		writeError(c, http.StatusInternalServerError, codeDatabaseError, "Failed to load session")
		return
	}

	summary, err := a.ai.Complete(c.Request.Context(), CompletionRequest{
		SystemPrompt: summarySystemPrompt,
		Conversation: toChatTurns(session.Messages),
		UserPrompt:   summaryUserPrompt,
	})
	if err != nil {
		log.Printf("summary completion failed for session %s: %v", sessionID, err)
		writeError(c, http.StatusBadGateway, codeLLMError, "Summarization is temporarily unavailable")
		return
	}

	respondData(c, gin.H{
		"sessionId": sessionID,
		"summary":   summary,
	})
}

// getConversation returns the message history. An unknown session is an
// empty conversation, not an error.
func (a *App) getConversation(c *gin.Context) {
	sessionID := c.Param("session_id")

	session, err := a.store.GetSession(c.Request.Context(), sessionID)
	if errors.Is(err, store.ErrNotFound) {
		respondData(c, gin.H{
			"sessionId": sessionID,
			"messages":  []store.Message{},
		})
		return
	}
	if err != nil {
		writeError(c, http.StatusInternalServerError, codeDatabaseError, "Failed to load session")
		return
	}

	respondData(c, gin.H{
		"sessionId": sessionID,
		"messages":  session.Messages,
	})
}
