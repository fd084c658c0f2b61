package nodes

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krish-ai/chat-server/internal/agent/completion"
	"github.com/krish-ai/chat-server/internal/agent/model"
)

func completionConfig(provider string) model.CompletionConfig {
	return model.CompletionConfig{
		Provider:    provider,
		APIKey:      "test-key",
		URL:         "https://openrouter.example/api/v1/chat/completions",
		Model:       "answer/model",
		Temperature: 0.7,
		TopP:        0.9,
		MaxTokens:   2048,
		Timeout:     time.Minute,
	}
}

func TestNewChatModels_OpenRouter(t *testing.T) {
	cc := completionConfig("openrouter")
	cms, err := NewChatModels(context.Background(), ChatModelConfig{
		Completion: &cc,
		Planner:    &model.PlannerConfig{Timeout: time.Minute},
	})
	require.NoError(t, err)
	assert.IsType(t, &completion.Relay{}, cms.Response)
	assert.IsType(t, &completion.ChatModel{}, cms.Planner)
	assert.Equal(t, "answer/model", cms.ResponseModelName)
	assert.Equal(t, "answer/model", cms.PlannerModelName)
}

func TestNewChatModels_PlannerModelOverride(t *testing.T) {
	cc := completionConfig("")
	cms, err := NewChatModels(context.Background(), ChatModelConfig{
		Completion: &cc,
		Planner:    &model.PlannerConfig{Model: "small/model"},
	})
	require.NoError(t, err)
	assert.Equal(t, "small/model", cms.PlannerModelName)
}

func TestNewChatModels_Gemini(t *testing.T) {
	cc := completionConfig("gemini")
	cc.Model = "gemini-2.5-flash"
	cms, err := NewChatModels(context.Background(), ChatModelConfig{
		Completion: &cc,
		Planner:    &model.PlannerConfig{},
	})
	require.NoError(t, err)
	assert.IsType(t, &completion.Relay{}, cms.Response)
	assert.NotNil(t, cms.Planner)
}

func TestNewChatModels_Errors(t *testing.T) {
	_, err := NewChatModels(context.Background(), ChatModelConfig{})
	assert.Error(t, err)

	noKey := completionConfig("openrouter")
	noKey.APIKey = ""
	_, err = NewChatModels(context.Background(), ChatModelConfig{Completion: &noKey, Planner: &model.PlannerConfig{}})
	assert.Error(t, err)

	unknown := completionConfig("acme")
	_, err = NewChatModels(context.Background(), ChatModelConfig{Completion: &unknown, Planner: &model.PlannerConfig{}})
	assert.ErrorContains(t, err, "unknown completion provider")
}
