package research

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/krish-ai/chat-server/internal/agent/graph/parsers"
	"github.com/krish-ai/chat-server/internal/agent/graph/prompts"
	"github.com/krish-ai/chat-server/internal/agent/model"
	logx "github.com/krish-ai/chat-server/pkg/logger"
)

// PlanGenerator decides whether a message needs web research.
type PlanGenerator interface {
	Plan(ctx context.Context, userMessage string) model.SearchPlan
}

// Planner asks a chat model for a search plan. Every failure, from the call
// itself to an unparseable reply, yields model.NoSearchPlan.
type Planner struct {
	chatModel einomodel.BaseChatModel
}

func NewPlanner(chatModel einomodel.BaseChatModel) (*Planner, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("planner chat model is nil")
	}
	return &Planner{chatModel: chatModel}, nil
}

func (p *Planner) Plan(ctx context.Context, userMessage string) model.SearchPlan {
	systemPrompt, err := prompts.RenderPlannerSystem(ctx)
	if err != nil {
		logx.Error().Err(err).Msg("render planner prompt")
		return model.NoSearchPlan()
	}

	out, err := p.chatModel.Generate(ctx, []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(userMessage),
	})
	if err != nil {
		logx.Warn().Err(err).Msg("search planning failed")
		return model.NoSearchPlan()
	}
	if out == nil {
		return model.NoSearchPlan()
	}

	plan, err := parsers.ParseSearchPlan(out.Content)
	if err != nil {
		logx.Warn().Err(err).Msg("search plan unparseable")
		return model.NoSearchPlan()
	}
	logx.Debug().
		Bool("needs_search", plan.NeedsSearch).
		Int("searches", len(plan.Searches)).
		Str("reasoning", plan.Reasoning).
		Msg("search plan")
	return plan
}
