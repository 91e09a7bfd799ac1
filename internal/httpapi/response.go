package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	mferrors "github.com/nguyentantai21042004/minutes-flow/internal/errors"
)

type errorResponse struct {
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	Code    string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := errorResponse{Message: message}
	if err != nil {
		resp.Detail = err.Error()
	}
	var pe *mferrors.PipelineError
	if errors.As(err, &pe) {
		resp.Code = string(pe.Code)
	}
	writeJSON(w, status, resp)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var pe *mferrors.PipelineError
	switch {
	case mferrors.IsValidation(err):
		return http.StatusBadRequest
	case mferrors.IsNotFound(err):
		return http.StatusNotFound
	case mferrors.IsTooLarge(err):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &pe) && (pe.Code == mferrors.ErrCodeRenderTimeout || pe.Code == mferrors.ErrCodeTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
