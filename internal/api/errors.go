package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/lodecraft/lode-verify-go/internal/protocol"
	"github.com/lodecraft/lode-verify-go/internal/store"
)

// ErrorBuilder constructs structured errors with context.
type ErrorBuilder struct {
	errType   string
	message   string
	context   map[string]interface{}
	requestID string
}

// NewError creates a new error builder.
func NewError(errType, message string) *ErrorBuilder {
	return &ErrorBuilder{
		errType: errType,
		message: message,
		context: make(map[string]interface{}),
	}
}

// WithContext adds a context field to the error.
func (eb *ErrorBuilder) WithContext(key string, value interface{}) *ErrorBuilder {
	eb.context[key] = value
	return eb
}

// WithRequestID tags the error with the request id.
func (eb *ErrorBuilder) WithRequestID(requestID string) *ErrorBuilder {
	eb.requestID = requestID
	return eb
}

// WithCause records the underlying error.
func (eb *ErrorBuilder) WithCause(err error) *ErrorBuilder {
	if err != nil {
		eb.context["cause"] = err.Error()
	}
	return eb
}

// Build finalizes the structured error.
func (eb *ErrorBuilder) Build() VerifierError {
	return VerifierError{
		Type:      eb.errType,
		Message:   eb.message,
		Context:   eb.context,
		RequestID: eb.requestID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// ErrorHandler centralizes error responses and their log lines.
type ErrorHandler struct {
	logger *log.Logger
}

// NewErrorHandler creates an error handler over the given logger.
func NewErrorHandler(logger *log.Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleError writes err as a structured response with the given status.
func (eh *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error, status int) {
	requestID := middleware.GetReqID(r.Context())

	if verr, ok := err.(VerifierError); ok {
		eh.logError(r, verr, status)
		eh.writeErrorResponse(w, status, verr)
		return
	}

	verr := NewError(ErrTypeInternal, err.Error()).
		WithRequestID(requestID).
		WithContext("path", r.URL.Path).
		WithContext("method", r.Method).
		Build()
	eh.logError(r, verr, status)
	eh.writeErrorResponse(w, status, verr)
}

// HandleValidationError reports a malformed request field.
func (eh *ErrorHandler) HandleValidationError(w http.ResponseWriter, r *http.Request, field, message string) {
	requestID := middleware.GetReqID(r.Context())

	verr := NewError(ErrTypeValidation, message).
		WithRequestID(requestID).
		WithContext("field", field).
		WithContext("path", r.URL.Path).
		Build()
	eh.logError(r, verr, http.StatusBadRequest)
	eh.writeErrorResponse(w, http.StatusBadRequest, verr)
}

// HandleProtocolError maps a challenge protocol failure to its HTTP form.
func (eh *ErrorHandler) HandleProtocolError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetReqID(r.Context())
	status := protocolStatus(err)

	verr := NewError(ErrTypeProtocol, err.Error()).
		WithRequestID(requestID).
		WithContext("path", r.URL.Path).
		Build()
	eh.logError(r, verr, status)
	eh.writeErrorResponse(w, status, verr)
}

// protocolStatus picks the status code for a protocol error.
func protocolStatus(err error) int {
	switch {
	case errors.Is(err, protocol.ErrNotOperator):
		return http.StatusForbidden
	case errors.Is(err, protocol.ErrNoCompetition),
		errors.Is(err, protocol.ErrNoSolutionOwner):
		return http.StatusNotFound
	case errors.Is(err, protocol.ErrBondNotEnough):
		return http.StatusPaymentRequired
	case errors.Is(err, protocol.ErrSolutionNotEqualHash):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrPuzzleNotFound):
		return http.StatusNotFound
	default:
		// Window and singleton violations are state conflicts.
		return http.StatusConflict
	}
}

func (eh *ErrorHandler) logError(r *http.Request, verr VerifierError, status int) {
	category := GetErrorCategory(verr.Type)
	level := "ERROR"
	if category == CategoryValidation || category == CategoryDomain {
		level = "WARN"
	}
	eh.logger.Printf(
		"error_occurred level=%s type=%s category=%s status=%d request_id=%s method=%s path=%s message=%q",
		level, verr.Type, category, status, verr.RequestID, r.Method, r.URL.Path, verr.Message,
	)
}

func (eh *ErrorHandler) writeErrorResponse(w http.ResponseWriter, status int, verr VerifierError) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Verifier-Version", VerifierVersion)
	w.Header().Set("X-Error-Type", verr.Type)
	w.Header().Set("X-Error-Category", string(GetErrorCategory(verr.Type)))
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(verr); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
