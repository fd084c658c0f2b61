package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/krish-ai/chat-server/internal/agent/model"
	logx "github.com/krish-ai/chat-server/pkg/logger"
)

// MaxBodyBytes caps the size of a chat request body.
const MaxBodyBytes = 10 << 20

// ChatRunner answers one decoded chat request.
type ChatRunner interface {
	Invoke(ctx context.Context, in model.IncomingRequest) (model.OutgoingResponse, error)
}

type ChatHandler struct {
	runner ChatRunner
}

func NewChatHandler(runner ChatRunner) *ChatHandler {
	return &ChatHandler{runner: runner}
}

// Chat handles POST on the chat path. Completion and enrichment failures
// arrive as answer text, so only decode and internal failures produce a 500.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	in, err := DecodeChatRequest(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		logx.Warn().Err(err).Str("request_id", reqID).Msg("chat request rejected")
		writeServerError(w, err)
		return
	}

	// A disconnecting client does not abort work already started.
	ctx := context.WithoutCancel(r.Context())
	out, err := h.runner.Invoke(ctx, in)
	if err != nil {
		logx.Error().Err(err).Str("request_id", reqID).Msg("chat pipeline failed")
		writeServerError(w, err)
		return
	}

	logx.Debug().
		Str("request_id", reqID).
		Int("history", len(in.Messages)).
		Int("searches", len(out.SearchInfo.Searches)).
		Msg("chat answered")
	writeJSON(w, http.StatusOK, out)
}

// Preflight answers the CORS preflight for the chat path.
func (h *ChatHandler) Preflight(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.WriteHeader(http.StatusOK)
}
