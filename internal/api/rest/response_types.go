package rest

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/nodeorb/scm-risk-engine/internal/domain/errors"
)

// ResponseEnvelope wraps all API responses
type ResponseEnvelope struct {
	Success bool           `json:"success"`
	Data    interface{}    `json:"data,omitempty"`
	Error   *ErrorResponse `json:"error,omitempty"`
	Meta    ResponseMeta   `json:"meta"`
}

// ResponseMeta contains response metadata
type ResponseMeta struct {
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorResponse carries a machine readable code and, for validation failures, the offending fields
type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func meta(r *http.Request) ResponseMeta {
	return ResponseMeta{
		RequestID: RequestIDFromContext(r.Context()),
		Timestamp: time.Now().UTC(),
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeSuccess(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	writeJSON(w, status, ResponseEnvelope{Success: true, Data: data, Meta: meta(r)})
}

func writeErrorResponse(w http.ResponseWriter, r *http.Request, status int, e *ErrorResponse) {
	writeJSON(w, status, ResponseEnvelope{Success: false, Error: e, Meta: meta(r)})
}

// handleError maps AppError types and validator failures onto HTTP responses
func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		writeErrorResponse(w, r, http.StatusBadRequest, &ErrorResponse{
			Code:    "VALIDATION_FAILED",
			Message: "request validation failed",
			Fields:  fields,
		})
		return
	}

	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		if appErr.StatusCode >= http.StatusInternalServerError {
			h.logger.Error("request failed",
				zap.String("request_id", RequestIDFromContext(r.Context())),
				zap.String("code", appErr.Code),
				zap.Error(err))
		}
		writeErrorResponse(w, r, appErr.StatusCode, &ErrorResponse{
			Code:    appErr.Code,
			Message: appErr.Message,
		})
		return
	}

	h.logger.Error("unhandled error",
		zap.String("request_id", RequestIDFromContext(r.Context())),
		zap.Error(err))
	writeErrorResponse(w, r, http.StatusInternalServerError, &ErrorResponse{
		Code:    "INTERNAL_ERROR",
		Message: "An internal error occurred",
	})
}
