package graph

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	"github.com/redis/go-redis/v9"

	"github.com/krish-ai/chat-server/internal/agent/graph/conversations"
	"github.com/krish-ai/chat-server/internal/agent/graph/nodes"
	"github.com/krish-ai/chat-server/internal/agent/graph/observers"
	"github.com/krish-ai/chat-server/internal/agent/graph/prompts"
	"github.com/krish-ai/chat-server/internal/agent/model"
	"github.com/krish-ai/chat-server/internal/agent/research"
	logx "github.com/krish-ai/chat-server/pkg/logger"
)

// maxRunSteps bounds the linear four-node pipeline with room to spare.
const maxRunSteps = 10

// Runner executes the compiled chat graph for one request.
type Runner interface {
	Invoke(ctx context.Context, in model.IncomingRequest) (model.OutgoingResponse, error)
}

// Config holds everything needed to compose the full chat graph end-to-end.
// This is a convenience layer over GraphConfig that also constructs the chat
// models, the enricher and the MessagesManager.
type Config struct {
	Completion model.CompletionConfig
	Planner    model.PlannerConfig
	Prompt     model.PromptConfig
	Enrich     model.EnrichConfig
	Search     model.SearchConfig
	Cache      model.CacheConfig
	// Redis backs the research cache. Nil disables caching.
	Redis redis.Cmdable
}

// GraphConfig holds all configuration needed to build the graph
type GraphConfig struct {
	ChatModels      *nodes.ChatModels
	Enricher        nodes.Enricher
	MessagesManager *conversations.MessagesManager
	Prompt          model.PromptConfig
}

// GraphBuilder handles the construction of the chat graph
type GraphBuilder struct {
	config *GraphConfig
	graph  *compose.Graph[model.IncomingRequest, model.OutgoingResponse]
}

type graphRunner struct {
	runnable compose.Runnable[model.IncomingRequest, model.OutgoingResponse]
}

func (r *graphRunner) Invoke(ctx context.Context, in model.IncomingRequest) (model.OutgoingResponse, error) {
	out, err := r.runnable.Invoke(ctx, in, compose.WithCallbacks(observers.NewAllCallbacks()...))
	if err != nil {
		return model.OutgoingResponse{}, err
	}
	if out.SearchInfo.Searches == nil {
		out.SearchInfo = model.EmptySearchInfo()
	}
	return out, nil
}

// NewRunner wraps a compiled graph.
func NewRunner(runnable compose.Runnable[model.IncomingRequest, model.OutgoingResponse]) Runner {
	return &graphRunner{runnable: runnable}
}

// BuildChatGraph composes chat models, the enricher and the MessagesManager,
// builds the graph and returns a Runner.
func BuildChatGraph(ctx context.Context, cfg Config) (Runner, error) {
	cms, err := nodes.NewChatModels(ctx, nodes.ChatModelConfig{
		Completion: &cfg.Completion,
		Planner:    &cfg.Planner,
	})
	if err != nil {
		return nil, err
	}

	// Fail at startup rather than per request on a bad variant.
	if _, err := prompts.RenderSystemPrompt(ctx, cfg.Prompt); err != nil {
		return nil, err
	}

	planner, err := research.NewPlanner(cms.Planner)
	if err != nil {
		return nil, err
	}
	enricher, err := research.Build(cfg.Enrich, cfg.Search, cfg.Cache, planner, cfg.Redis)
	if err != nil {
		return nil, err
	}

	mm := conversations.NewMessagesManager(conversations.DefaultHistoryWindow)
	runnable, err := BuildGraph(ctx, &GraphConfig{
		ChatModels:      cms,
		Enricher:        enricher,
		MessagesManager: mm,
		Prompt:          cfg.Prompt,
	})
	if err != nil {
		return nil, err
	}

	logx.Info().
		Str("provider", cfg.Completion.Provider).
		Str("model", cms.ResponseModelName).
		Str("planner_model", cms.PlannerModelName).
		Str("prompt_variant", cfg.Prompt.Variant).
		Int("history_window", mm.HistoryWindow()).
		Bool("scrape", cfg.Enrich.ScrapeEnabled).
		Bool("search", cfg.Enrich.SearchEnabled).
		Msg("Chat graph built successfully")
	return NewRunner(runnable), nil
}

// BuildGraph constructs and returns the compiled chat graph
func BuildGraph(ctx context.Context, config *GraphConfig) (compose.Runnable[model.IncomingRequest, model.OutgoingResponse], error) {
	// Basic config validation
	if config == nil {
		return nil, fmt.Errorf("graph config is nil")
	}
	if config.ChatModels == nil || config.ChatModels.Response == nil {
		return nil, fmt.Errorf("chat models are not properly initialized")
	}
	if config.MessagesManager == nil {
		return nil, fmt.Errorf("messages manager is nil")
	}

	builder := &GraphBuilder{
		config: config,
		graph: compose.NewGraph[model.IncomingRequest, model.OutgoingResponse](
			compose.WithGenLocalState(func(ctx context.Context) *model.AppState {
				return &model.AppState{SearchInfo: model.EmptySearchInfo()}
			}),
		),
	}

	if err := builder.addNodes(); err != nil {
		return nil, err
	}
	if err := builder.addEdges(); err != nil {
		return nil, err
	}
	return builder.compile(ctx)
}

// addNodes adds all processing nodes to the graph
func (b *GraphBuilder) addNodes() error {
	steps := []func() error{
		func() error {
			return b.graph.AddLambdaNode(nodes.NodeEnricher,
				nodes.NewEnricherNode(b.config.Enricher),
				compose.WithNodeName(nodes.NodeEnricher),
				compose.WithStatePreHandler(nodes.NewEnricherPreHandler()),
				compose.WithStatePostHandler(nodes.NewEnricherPostHandler()),
			)
		},
		func() error {
			return b.graph.AddLambdaNode(nodes.NodePromptAssembler,
				nodes.NewPromptAssemblerNode(b.config.MessagesManager, b.config.Prompt),
				compose.WithNodeName(nodes.NodePromptAssembler),
			)
		},
		func() error {
			return b.graph.AddChatModelNode(nodes.NodeCompletionRelay, b.config.ChatModels.Response,
				compose.WithNodeName(nodes.NodeCompletionRelay),
			)
		},
		func() error {
			return b.graph.AddLambdaNode(nodes.NodeResponder, nodes.NewResponderNode(),
				compose.WithNodeName(nodes.NodeResponder),
			)
		},
	}
	for _, add := range steps {
		if err := add(); err != nil {
			logx.Error().Err(err).Msg("Error adding graph node")
			return fmt.Errorf("error adding graph node: %w", err)
		}
	}
	return nil
}

// addEdges creates the linear flow between nodes
func (b *GraphBuilder) addEdges() error {
	edges := [][2]string{
		{compose.START, nodes.NodeEnricher},
		{nodes.NodeEnricher, nodes.NodePromptAssembler},
		{nodes.NodePromptAssembler, nodes.NodeCompletionRelay},
		{nodes.NodeCompletionRelay, nodes.NodeResponder},
		{nodes.NodeResponder, compose.END},
	}

	for _, edge := range edges {
		if err := b.graph.AddEdge(edge[0], edge[1]); err != nil {
			logx.Error().Err(err).Str("from", edge[0]).Str("to", edge[1]).Msg("Error adding edge")
			return fmt.Errorf("error adding edge %s -> %s: %w", edge[0], edge[1], err)
		}
	}
	return nil
}

// compile finalizes and compiles the graph
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[model.IncomingRequest, model.OutgoingResponse], error) {
	runnable, err := b.graph.Compile(ctx, compose.WithMaxRunSteps(maxRunSteps))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}
