package handlers

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/krish-ai/chat-server/internal/agent/model"
	errx "github.com/krish-ai/chat-server/internal/core/error"
)

// DecodeChatRequest reads a chat request body leniently. Only an unreadable
// body or invalid JSON is an error; a valid JSON value that is not an object
// decodes to the empty request, wrong-typed fields are treated as absent and
// history entries that are not objects are dropped.
func DecodeChatRequest(body io.Reader) (model.IncomingRequest, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return model.IncomingRequest{}, errx.WrapDecode(fmt.Errorf("read body: %w", err))
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return model.IncomingRequest{}, errx.WrapDecode(err)
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return model.IncomingRequest{}, nil
	}

	req := model.IncomingRequest{UserMessage: stringOf(obj["userMessage"])}
	if entries, ok := obj["messages"].([]any); ok {
		req.Messages = make([]model.ConversationTurn, 0, len(entries))
		for _, entry := range entries {
			turn, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			req.Messages = append(req.Messages, model.ConversationTurn{
				Role:    stringOf(turn["role"]),
				Content: stringOf(turn["content"]),
			})
		}
	}
	return req, nil
}

func stringOf(v any) string {
	s, _ := v.(string)
	return s
}
