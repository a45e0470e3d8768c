package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/matzehuels/decksmith/pkg/errors"
)

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error    string   `json:"error"`
	Code     string   `json:"code,omitempty"`
	Failures []string `json:"failures,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: errors.UserMessage(err), Code: string(errors.GetCode(err))}
	var empty *errors.EmptyArtifactError
	if errors.As(err, &empty) {
		resp.Failures = empty.Failures
	}
	writeJSON(w, statusFor(err), resp)
}

// statusFor maps error codes to HTTP status codes.
func statusFor(err error) int {
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidDeck,
		errors.ErrCodeInvalidRef, errors.ErrCodeInvalidSet:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeNameMismatch:
		return http.StatusNotFound
	case errors.ErrCodeEmptyArtifact:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case errors.ErrCodeNetwork, errors.ErrCodeFetch:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
