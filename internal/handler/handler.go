// Package handler exposes the workflow to the presentation shell as a JSON
// API. Handlers only decode requests, trigger machine transitions, and
// encode snapshots; no funnel logic lives here.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"okoa/internal/workflow"
	pkgerrors "okoa/pkg/errors"
)

// Logger matches pkg/logger without importing it, so handlers stay easy to
// fake in tests.
type Logger interface {
	Info(message string, fields map[string]interface{})
	Error(message string, fields map[string]interface{})
	Warn(message string, fields map[string]interface{})
	Debug(message string, fields map[string]interface{})
	Fatal(message string, fields map[string]interface{})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondRedirect reports a stage-guard correction. Guard violations are
// silent routing, so the body names the stage and carries no error message.
func respondRedirect(w http.ResponseWriter, r *workflow.StageRedirect) {
	respondJSON(w, http.StatusConflict, map[string]string{"redirect_to": string(r.Stage)})
}

// handleWorkflowError maps machine errors onto the shell contract:
// guard redirects, user-recoverable failures, and everything else.
func handleWorkflowError(w http.ResponseWriter, log Logger, err error) {
	var redirectErr *workflow.StageRedirect
	if errors.As(err, &redirectErr) {
		respondRedirect(w, redirectErr)
		return
	}

	switch {
	case errors.Is(err, pkgerrors.ErrLoanOptionUnknown),
		errors.Is(err, pkgerrors.ErrUnknownStrategy),
		errors.Is(err, pkgerrors.ErrEmptyConfirmation),
		errors.Is(err, pkgerrors.ErrConfirmationMismatch),
		errors.Is(err, pkgerrors.ErrPushNotStarted),
		errors.Is(err, pkgerrors.ErrPushInProgress),
		errors.Is(err, pkgerrors.ErrPushNotRetryable):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, pkgerrors.ErrGatewayUnavailable):
		respondError(w, http.StatusBadGateway, err.Error())
	default:
		log.Error("Workflow operation failed", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
	}
}
