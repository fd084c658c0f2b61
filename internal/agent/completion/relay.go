package completion

import (
	"context"
	"errors"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	logx "github.com/krish-ai/chat-server/pkg/logger"
)

const (
	apiErrorPrefix = "API Error: "
	// FallbackReply is returned when the endpoint answers with a body that
	// is neither a completion nor an error.
	FallbackReply = "I'm sorry, I couldn't process your request. Please try again."
)

// Relay wraps a chat model so that every completion failure becomes answer
// text. Generate never returns an error.
type Relay struct {
	next einomodel.BaseChatModel
}

var _ einomodel.BaseChatModel = (*Relay)(nil)

func NewRelay(next einomodel.BaseChatModel) *Relay {
	return &Relay{next: next}
}

func (r *Relay) GetType() string { return "CompletionRelay" }

func (r *Relay) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	out, err := r.next.Generate(ctx, input, opts...)
	if err != nil {
		logx.Warn().Err(err).Msg("completion failed, replying with error text")
		return schema.AssistantMessage(ReplyForError(err), nil), nil
	}
	if out == nil {
		return schema.AssistantMessage(FallbackReply, nil), nil
	}
	return out, nil
}

func (r *Relay) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, ErrStreamingUnsupported
}

// ReplyForError converts a completion failure into the text shown to the user.
func ReplyForError(err error) string {
	if errors.Is(err, ErrUnrecognizedResponse) {
		return FallbackReply
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErrorPrefix + apiErr.Message
	}
	return apiErrorPrefix + err.Error()
}
