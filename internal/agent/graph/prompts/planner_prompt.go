package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed template/planner_prompt.txt
var plannerSystemPrompt string

// RenderPlannerSystem renders the search-planner system prompt. The template
// is passed through a messages placeholder so its JSON braces are not
// treated as template variables.
func RenderPlannerSystem(ctx context.Context) (string, error) {
	tpl := prompt.FromMessages(
		schema.FString,
		schema.MessagesPlaceholder("system_messages", false),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"system_messages": []*schema.Message{schema.SystemMessage(strings.TrimSpace(plannerSystemPrompt))},
	})
	if err != nil {
		return "", fmt.Errorf("planner prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("planner prompt render: empty result")
	}
	return msgs[0].Content, nil
}
