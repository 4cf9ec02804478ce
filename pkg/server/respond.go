package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/matzehuels/entitymap/pkg/errors"
)

// errorResponse is the body of every non-2xx API response.
type errorResponse struct {
	Code      errors.Code `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// writeError maps err to a status and a JSON error body. Errors without a
// code become TIMEOUT for deadlines and INTERNAL_ERROR otherwise.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	msg := errors.UserMessage(err)
	if code == "" {
		switch {
		case stderrors.Is(err, context.DeadlineExceeded):
			code = errors.ErrCodeTimeout
		case stderrors.Is(err, context.Canceled):
			code = errors.ErrCodeTimeout
			msg = "request cancelled"
		default:
			code = errors.ErrCodeInternal
		}
	}

	var maxErr *http.MaxBytesError
	if stderrors.As(err, &maxErr) {
		code = errors.ErrCodeInvalidInput
		msg = "request body too large"
	}

	writeJSON(w, errors.HTTPStatus(code), errorResponse{
		Code:      code,
		Message:   msg,
		RequestID: RequestIDFrom(r.Context()),
	})
}
