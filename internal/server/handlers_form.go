package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"aselo/backend/internal/form"
	"aselo/backend/internal/store"
)

type submitFormRequest struct {
	SessionID string      `json:"sessionId" binding:"required"`
	FormData  form.Record `json:"formData"`
}

// Submission lifecycle states. New submissions always start as submitted.
var allowedSubmissionStatuses = map[string]bool{
	"submitted": true,
	"reviewed":  true,
	"closed":    true,
}

// getFormDraft returns the in-progress form. An unknown session is an empty
// draft, not an error.
func (a *App) getFormDraft(c *gin.Context) {
	sessionID := c.Param("session_id")

	session, err := a.store.GetSession(c.Request.Context(), sessionID)
	if errors.Is(err, store.ErrNotFound) {
		respondData(c, gin.H{
			"sessionId": sessionID,
			"formData":  form.NewRecord(),
		})
		return
	}
	if err != nil {
		writeError(c, http.StatusInternalServerError, codeDatabaseError, "Failed to load session")
		return
	}

	respondData(c, gin.H{
		"sessionId": sessionID,
		"formData":  session.Form,
	})
}

// submitForm validates and finalizes a form. The submitted record is the
// request body merged over the stored draft; resubmitting a session
// replaces its previous submission.
func (a *App) submitForm(c *gin.Context) {
	var req submitFormRequest
	if !mustJSON(c, &req) {
		return
	}
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		writeError(c, http.StatusBadRequest, codeValidationError, "sessionId is required")
		return
	}

	record := form.NewRecord()
	if session, err := a.store.GetSession(c.Request.Context(), sessionID); err == nil {
		record = session.Form
	} else if !errors.Is(err, store.ErrNotFound) {
		writeError(c, http.StatusInternalServerError, codeDatabaseError, "Failed to load session")
		return
	}
	record.Merge(req.FormData)

	if fieldErrors := form.ValidateForSubmission(&record); fieldErrors != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":        true,
			"message":      "Form validation failed",
			"error_code":   codeValidationError,
			"status_code":  http.StatusBadRequest,
			"field_errors": fieldErrors,
		})
		return
	}

	submission := store.Submission{
		SessionID:    sessionID,
		SubmissionID: uuid.NewString(),
		FormData:     record,
		SubmittedAt:  time.Now().UTC(),
		Status:       "submitted",
	}
	if err := a.store.PutSubmission(c.Request.Context(), submission); err != nil {
		writeError(c, http.StatusInternalServerError, codeDatabaseError, "Failed to save submission")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      "Form submitted successfully",
		"submissionId": submission.SubmissionID,
	})
}

func (a *App) getSubmission(c *gin.Context) {
	sessionID := c.Param("session_id")

	submission, err := a.store.GetSubmission(c.Request.Context(), sessionID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(c, http.StatusNotFound, codeSessionNotFound, "No submission found for this session")
		return
	}
	if err != nil {
		writeError(c, http.StatusInternalServerError, codeDatabaseError, "Failed to load submission")
		return
	}

	respondData(c, submission)
}

func (a *App) updateSubmissionStatus(c *gin.Context) {
	sessionID := c.Param("session_id")
	status := strings.TrimSpace(c.Query("status"))
	if !allowedSubmissionStatuses[status] {
		writeError(c, http.StatusBadRequest, codeValidationError,
			"status must be one of: submitted, reviewed, closed")
		return
	}

	submission, err := a.store.GetSubmission(c.Request.Context(), sessionID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(c, http.StatusNotFound, codeSessionNotFound, "No submission found for this session")
		return
	}
	if err != nil {
		writeError(c, http.StatusInternalServerError, codeDatabaseError, "Failed to load submission")
		return
	}

	submission.Status = status
	if err := a.store.PutSubmission(c.Request.Context(), submission); err != nil {
		writeError(c, http.StatusInternalServerError, codeDatabaseError, "Failed to save submission")
		return
	}

	respondData(c, gin.H{
		"sessionId": sessionID,
		"status":    status,
	})
}

func (a *App) listSubmissions(c *gin.Context) {
	sessionIDs, err := a.store.ListSubmissions(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, codeDatabaseError, "Failed to list submissions")
		return
	}

	respondData(c, gin.H{
		"sessionIds": sessionIDs,
		"count":      len(sessionIDs),
	})
}
