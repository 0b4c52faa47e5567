package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"okoa/internal/middleware"
	"okoa/internal/workflow"
	"okoa/pkg/validator"
)

// PaymentHandler serves the processing-fee payment endpoints for both
// confirmation strategies.
type PaymentHandler struct {
	machine   *workflow.Machine
	validator *validator.Validator
	logger    Logger
}

func NewPaymentHandler(machine *workflow.Machine, val *validator.Validator, log Logger) *PaymentHandler {
	return &PaymentHandler{machine: machine, validator: val, logger: log}
}

// GetPaymentPage returns the payment-stage recap and pull instructions.
func (h *PaymentHandler) GetPaymentPage(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.SessionIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "Missing session")
		return
	}

	page, err := h.machine.PaymentDetails(r.Context(), sessionID)
	if err != nil {
		handleWorkflowError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, page)
}

// ChooseStrategy records the selected confirmation strategy.
func (h *PaymentHandler) ChooseStrategy(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.SessionIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "Missing session")
		return
	}

	var req struct {
		Strategy string `json:"strategy" validate:"required,oneof=push pull"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := h.validator.ValidateStructured(&req); errs != nil {
		respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{"errors": errs})
		return
	}

	app, err := h.machine.ChooseStrategy(r.Context(), sessionID, req.Strategy)
	if err != nil {
		handleWorkflowError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"application": app})
}

// InitiatePush starts an STK push prompt for the processing fee.
func (h *PaymentHandler) InitiatePush(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.SessionIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "Missing session")
		return
	}

	attempt, err := h.machine.InitiatePush(r.Context(), sessionID)
	if err != nil {
		// A failed attempt is retryable; return its state alongside the error.
		var redirectErr *workflow.StageRedirect
		if attempt == nil || errors.As(err, &redirectErr) {
			handleWorkflowError(w, h.logger, err)
			return
		}
		respondJSON(w, http.StatusBadGateway, map[string]interface{}{
			"error": err.Error(),
			"push":  attempt,
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"push": attempt})
}

// RetryPush re-runs a failed push attempt.
func (h *PaymentHandler) RetryPush(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.SessionIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "Missing session")
		return
	}

	attempt, err := h.machine.RetryPush(r.Context(), sessionID)
	if err != nil {
		var redirectErr *workflow.StageRedirect
		if attempt == nil || errors.As(err, &redirectErr) {
			handleWorkflowError(w, h.logger, err)
			return
		}
		respondJSON(w, http.StatusBadGateway, map[string]interface{}{
			"error": err.Error(),
			"push":  attempt,
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"push": attempt})
}

// CancelPush abandons the push attempt and returns to strategy choice.
func (h *PaymentHandler) CancelPush(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.SessionIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "Missing session")
		return
	}

	if err := h.machine.CancelPush(r.Context(), sessionID); err != nil {
		handleWorkflowError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Payment cancelled"})
}

// GatewayCallback receives the gateway's final verdict for a push
// reference.
func (h *PaymentHandler) GatewayCallback(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reference string `json:"reference" validate:"required"`
		Success   bool   `json:"success"`
		Message   string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := h.validator.ValidateStructured(&req); errs != nil {
		respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{"errors": errs})
		return
	}

	if err := h.machine.HandleGatewayResult(r.Context(), req.Reference, req.Success, req.Message); err != nil {
		handleWorkflowError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Result recorded"})
}

// SubmitConfirmation verifies pasted confirmation text (pull strategy).
func (h *PaymentHandler) SubmitConfirmation(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.SessionIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "Missing session")
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	app, err := h.machine.SubmitConfirmationText(r.Context(), sessionID, req.Text)
	if err != nil {
		handleWorkflowError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"application": app})
}
