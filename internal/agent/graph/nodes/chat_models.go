package nodes

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	einomodel "github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"

	"github.com/krish-ai/chat-server/internal/agent/completion"
	"github.com/krish-ai/chat-server/internal/agent/model"
	logx "github.com/krish-ai/chat-server/pkg/logger"
)

const (
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
)

// ChatModelConfig holds the configuration for chat model creation
type ChatModelConfig struct {
	Completion *model.CompletionConfig
	Planner    *model.PlannerConfig
}

// ChatModels holds the answer model, already wrapped in a completion.Relay,
// and the unwrapped planner model.
type ChatModels struct {
	Response          einomodel.BaseChatModel
	Planner           einomodel.BaseChatModel
	ResponseModelName string
	PlannerModelName  string
}

// NewChatModels creates the answer and planner chat models for the configured provider.
func NewChatModels(ctx context.Context, config ChatModelConfig) (*ChatModels, error) {
	if config.Completion == nil || config.Planner == nil {
		return nil, fmt.Errorf("chat model config is incomplete")
	}
	if strings.TrimSpace(config.Completion.APIKey) == "" {
		return nil, fmt.Errorf("completion api key is not set")
	}

	respName := config.Completion.Model
	plannerName := config.Planner.Model
	if plannerName == "" {
		plannerName = respName
	}

	var (
		response, planner einomodel.BaseChatModel
		err               error
	)
	switch strings.ToLower(strings.TrimSpace(config.Completion.Provider)) {
	case "", ProviderOpenRouter:
		response, planner, err = newOpenRouterModels(config, respName, plannerName)
	case ProviderGemini:
		response, planner, err = newGeminiModels(ctx, config, respName, plannerName)
	default:
		err = fmt.Errorf("unknown completion provider %q", config.Completion.Provider)
	}
	if err != nil {
		return nil, err
	}

	return &ChatModels{
		Response:          completion.NewRelay(response),
		Planner:           planner,
		ResponseModelName: respName,
		PlannerModelName:  plannerName,
	}, nil
}

func newOpenRouterModels(config ChatModelConfig, respName, plannerName string) (einomodel.BaseChatModel, einomodel.BaseChatModel, error) {
	c := config.Completion

	response, err := completion.NewChatModel(completion.Config{
		URL:         c.URL,
		APIKey:      c.APIKey,
		Model:       respName,
		Temperature: &c.Temperature,
		TopP:        &c.TopP,
		MaxTokens:   &c.MaxTokens,
		Timeout:     c.Timeout,
		Referer:     c.Referer,
		Title:       c.Title,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Response model")
		return nil, nil, fmt.Errorf("error creating Response model: %w", err)
	}

	// The planner runs with the endpoint's default sampling.
	planner, err := completion.NewChatModel(completion.Config{
		URL:     c.URL,
		APIKey:  c.APIKey,
		Model:   plannerName,
		Timeout: config.Planner.Timeout,
		Referer: c.Referer,
		Title:   c.Title,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Planner model")
		return nil, nil, fmt.Errorf("error creating Planner model: %w", err)
	}
	return response, planner, nil
}

func newGeminiModels(ctx context.Context, config ChatModelConfig, respName, plannerName string) (einomodel.BaseChatModel, einomodel.BaseChatModel, error) {
	c := config.Completion

	clientCfg := &genai.ClientConfig{
		APIKey:     c.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: c.Timeout},
	}
	if c.GeminiBaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = c.GeminiBaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	response, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       respName,
		Temperature: &c.Temperature,
		TopP:        &c.TopP,
		MaxTokens:   &c.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Response model")
		return nil, nil, fmt.Errorf("error creating Response model: %w", err)
	}

	planner, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client: client,
		Model:  plannerName,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Planner model")
		return nil, nil, fmt.Errorf("error creating Planner model: %w", err)
	}
	return response, planner, nil
}
