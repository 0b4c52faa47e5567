package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"okoa/internal/eligibility"
	"okoa/internal/middleware"
	"okoa/internal/workflow"
	"okoa/pkg/validator"
)

// ApplicationHandler serves the eligibility, loan selection, and status
// endpoints.
type ApplicationHandler struct {
	machine   *workflow.Machine
	validator *validator.Validator
	logger    Logger
}

func NewApplicationHandler(machine *workflow.Machine, val *validator.Validator, log Logger) *ApplicationHandler {
	return &ApplicationHandler{machine: machine, validator: val, logger: log}
}

// SubmitEligibility handles the eligibility form. The machine's validator
// reports at most one field failure per submission.
func (h *ApplicationHandler) SubmitEligibility(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.SessionIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "Missing session")
		return
	}

	var req eligibility.Input
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	app, err := h.machine.SubmitEligibility(r.Context(), sessionID, req)
	if err != nil {
		var fieldErr *eligibility.FieldError
		if errors.As(err, &fieldErr) {
			respondJSON(w, http.StatusUnprocessableEntity, map[string]string{
				"field":   fieldErr.Field,
				"title":   fieldErr.Title,
				"message": fieldErr.Message,
			})
			return
		}
		handleWorkflowError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"application": app})
}

// ListLoanOptions returns the fixed catalog.
func (h *ApplicationHandler) ListLoanOptions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{"options": h.machine.Options()})
}

// SelectLoan records the chosen tier.
func (h *ApplicationHandler) SelectLoan(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.SessionIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "Missing session")
		return
	}

	var req struct {
		Amount int64 `json:"amount" validate:"required,gt=0"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := h.validator.ValidateStructured(&req); errs != nil {
		respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{"errors": errs})
		return
	}

	app, err := h.machine.SelectLoan(r.Context(), sessionID, req.Amount)
	if err != nil {
		handleWorkflowError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"application": app})
}

// GetStatus returns the workflow snapshot the shell renders from.
func (h *ApplicationHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.SessionIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "Missing session")
		return
	}

	snapshot, err := h.machine.Status(r.Context(), sessionID)
	if err != nil {
		handleWorkflowError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, snapshot)
}

// GetDashboard returns the disbursement summary.
func (h *ApplicationHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.SessionIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "Missing session")
		return
	}

	summary, err := h.machine.Dashboard(r.Context(), sessionID)
	if err != nil {
		handleWorkflowError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

// Restart clears the session aggregate so a fresh application can begin.
func (h *ApplicationHandler) Restart(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.SessionIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "Missing session")
		return
	}

	if err := h.machine.Restart(r.Context(), sessionID); err != nil {
		handleWorkflowError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Application restarted"})
}
