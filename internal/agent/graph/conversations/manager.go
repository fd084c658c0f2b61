package conversations

import (
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/krish-ai/chat-server/internal/agent/model"
)

// DefaultHistoryWindow is the number of most recent history turns forwarded
// to the completion endpoint.
const DefaultHistoryWindow = 10

// MessagesManager assembles the ordered message list sent to the completion
// endpoint. It holds no conversation state of its own: the caller resends
// history on every request.
type MessagesManager struct {
	historyWindow int
}

func NewMessagesManager(historyWindow int) *MessagesManager {
	if historyWindow <= 0 {
		historyWindow = DefaultHistoryWindow
	}
	return &MessagesManager{historyWindow: historyWindow}
}

// BuildMessages returns the system prompt, the history window in original
// order, and a final user message made of the user message followed by the
// enrichment context.
func (cm *MessagesManager) BuildMessages(systemPrompt string, history []model.ConversationTurn, userMessage, enrichment string) []*schema.Message {
	recent := trimTail(history, cm.historyWindow)

	messages := make([]*schema.Message, 0, len(recent)+2)
	messages = append(messages, schema.SystemMessage(systemPrompt))
	for _, turn := range recent {
		messages = append(messages, &schema.Message{
			Role:    roleOrDefault(turn.Role),
			Content: turn.Content,
		})
	}
	messages = append(messages, schema.UserMessage(userMessage+enrichment))
	return messages
}

// HistoryWindow returns the configured window size.
func (cm *MessagesManager) HistoryWindow() int {
	return cm.historyWindow
}

// roleOrDefault maps an empty role to user and passes anything else through.
func roleOrDefault(role string) schema.RoleType {
	if strings.TrimSpace(role) == "" {
		return schema.User
	}
	return schema.RoleType(role)
}

func trimTail(turns []model.ConversationTurn, maxTurns int) []model.ConversationTurn {
	if len(turns) <= maxTurns {
		result := make([]model.ConversationTurn, len(turns))
		copy(result, turns)
		return result
	}
	source := turns[len(turns)-maxTurns:]
	result := make([]model.ConversationTurn, len(source))
	copy(result, source)
	return result
}
