package prompts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krish-ai/chat-server/internal/agent/model"
)

func TestRenderSystemPrompt_Research(t *testing.T) {
	got, err := RenderSystemPrompt(context.Background(), model.PromptConfig{Variant: "research", AssistantName: "Nova"})
	require.NoError(t, err)
	assert.Contains(t, got, "You are Nova, a helpful AI assistant.")
	assert.Contains(t, got, "Cite sources when available.")
	assert.NotContains(t, got, "{{")
}

func TestRenderSystemPrompt_Krish(t *testing.T) {
	got, err := RenderSystemPrompt(context.Background(), model.PromptConfig{Variant: "KRISH"})
	require.NoError(t, err)
	assert.Contains(t, got, "You are Krish AI")
	assert.Contains(t, got, "Hinglish")
}

func TestRenderSystemPrompt_UnknownVariant(t *testing.T) {
	_, err := RenderSystemPrompt(context.Background(), model.PromptConfig{Variant: "pirate"})
	assert.Error(t, err)
}

func TestRenderPlannerSystem_KeepsJSONBraces(t *testing.T) {
	got, err := RenderPlannerSystem(context.Background())
	require.NoError(t, err)
	assert.Contains(t, got, `{"needs_search": true/false`)
	assert.Contains(t, got, "Respond with ONLY JSON")
}
