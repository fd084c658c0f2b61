package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/krish-ai/chat-server/internal/agent/model"
)

const (
	VariantResearch = "research"
	VariantKrish    = "krish"
)

var (
	//go:embed template/research_prompt.txt
	researchSystemPrompt string

	//go:embed template/krish_prompt.txt
	krishSystemPrompt string
)

// RenderSystemPrompt renders the fixed system prompt for the configured
// variant via the Eino prompt component.
func RenderSystemPrompt(ctx context.Context, config model.PromptConfig) (string, error) {
	var tplText string
	switch strings.ToLower(strings.TrimSpace(config.Variant)) {
	case "", VariantResearch:
		tplText = researchSystemPrompt
	case VariantKrish:
		tplText = krishSystemPrompt
	default:
		return "", fmt.Errorf("unknown prompt variant %q", config.Variant)
	}

	name := strings.TrimSpace(config.AssistantName)
	if name == "" {
		name = "Krish AI"
	}

	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(tplText),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"AssistantName": name,
	})
	if err != nil {
		return "", fmt.Errorf("system prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("system prompt render: empty result")
	}
	return strings.TrimSpace(msgs[0].Content), nil
}
