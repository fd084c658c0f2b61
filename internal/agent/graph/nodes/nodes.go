package nodes

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/krish-ai/chat-server/internal/agent/graph/conversations"
	"github.com/krish-ai/chat-server/internal/agent/graph/prompts"
	"github.com/krish-ai/chat-server/internal/agent/model"
	logx "github.com/krish-ai/chat-server/pkg/logger"
)

const (
	NodeEnricher        = "ContextEnricher"
	NodePromptAssembler = "PromptAssembler"
	NodeCompletionRelay = "CompletionRelay"
	NodeResponder       = "Responder"
)

// Enricher produces the context appended to the user message.
type Enricher interface {
	Enrich(ctx context.Context, userMessage string) model.Enrichment
}

// NewEnricherPreHandler records the request in state and resets SearchInfo.
func NewEnricherPreHandler() func(context.Context, model.IncomingRequest, *model.AppState) (model.IncomingRequest, error) {
	return func(ctx context.Context, in model.IncomingRequest, s *model.AppState) (model.IncomingRequest, error) {
		s.Request = in
		s.SearchInfo = model.EmptySearchInfo()
		return in, nil
	}
}

// NewEnricherNode creates the ContextEnricher node. A nil enricher adds no context.
func NewEnricherNode(enricher Enricher) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in model.IncomingRequest) (model.Enrichment, error) {
		if enricher == nil {
			return model.EmptyEnrichment(), nil
		}
		out := enricher.Enrich(ctx, in.UserMessage)
		if out.Searches == nil {
			out.Searches = []model.PlannedSearch{}
		}
		return out, nil
	})
}

// NewEnricherPostHandler stores the executed searches for the responder.
func NewEnricherPostHandler() func(context.Context, model.Enrichment, *model.AppState) (model.Enrichment, error) {
	return func(ctx context.Context, out model.Enrichment, s *model.AppState) (model.Enrichment, error) {
		info := model.EmptySearchInfo()
		if len(out.Searches) > 0 {
			info.Searches = out.Searches
			info.Reasoning = out.Reasoning
		}
		s.SearchInfo = info
		logx.Debug().
			Int("context_chars", len(out.Context)).
			Int("searches", len(info.Searches)).
			Msg("enrichment done")
		return out, nil
	}
}

// NewPromptAssemblerNode renders the system prompt and builds the message list
// from the request held in state.
func NewPromptAssemblerNode(mm *conversations.MessagesManager, promptCfg model.PromptConfig) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, enrichment model.Enrichment) ([]*schema.Message, error) {
		var req model.IncomingRequest
		err := compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			req = state.Request
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}

		// Generate system prompt via Eino prompt component (enables prompt callbacks)
		systemPrompt, err := prompts.RenderSystemPrompt(ctx, promptCfg)
		if err != nil {
			return nil, fmt.Errorf("generate system prompt: %w", err)
		}

		return mm.BuildMessages(systemPrompt, req.Messages, req.UserMessage, enrichment.Context), nil
	})
}

// NewResponderNode shapes the answer and the recorded SearchInfo into the
// outgoing response.
func NewResponderNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, answer *schema.Message) (model.OutgoingResponse, error) {
		info := model.EmptySearchInfo()
		err := compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			if state.SearchInfo.Searches != nil {
				info = state.SearchInfo
			}
			return nil
		})
		if err != nil {
			return model.OutgoingResponse{}, fmt.Errorf("failed to access state: %w", err)
		}

		content := ""
		if answer != nil {
			content = answer.Content
		}
		return model.OutgoingResponse{Content: content, SearchInfo: info}, nil
	})
}
