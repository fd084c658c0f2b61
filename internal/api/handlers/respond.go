package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/krish-ai/chat-server/internal/agent/model"
	errx "github.com/krish-ai/chat-server/internal/core/error"
	logx "github.com/krish-ai/chat-server/pkg/logger"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		logx.Error().Err(err).Msg("write response")
	}
}

// writeServerError writes the failure envelope. The raw failure text goes to
// the caller unchanged.
func writeServerError(w http.ResponseWriter, err error) {
	cause := err.Error()
	var appErr *errx.AppError
	if errors.As(err, &appErr) {
		cause = appErr.Cause()
	}
	writeJSON(w, errx.StatusOf(err), model.NewErrorResponse(cause))
}
