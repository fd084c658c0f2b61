package graph

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	einocb "github.com/cloudwego/eino/callbacks"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krish-ai/chat-server/internal/agent/completion"
	"github.com/krish-ai/chat-server/internal/agent/graph/conversations"
	"github.com/krish-ai/chat-server/internal/agent/graph/nodes"
	"github.com/krish-ai/chat-server/internal/agent/model"
)

type recordingModel struct {
	mu    sync.Mutex
	reply string
	err   error
	seen  [][]*schema.Message
}

func (m *recordingModel) Generate(_ context.Context, input []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen = append(m.seen, input)
	if m.err != nil {
		return nil, m.err
	}
	return schema.AssistantMessage(m.reply, nil), nil
}

func (m *recordingModel) Stream(context.Context, []*schema.Message, ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not supported")
}

func (m *recordingModel) last() []*schema.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seen[len(m.seen)-1]
}

type staticEnricher struct {
	out model.Enrichment
}

func (e staticEnricher) Enrich(context.Context, string) model.Enrichment { return e.out }

func newTestRunner(t *testing.T, cm *recordingModel, enricher nodes.Enricher) Runner {
	t.Helper()
	runnable, err := BuildGraph(context.Background(), &GraphConfig{
		ChatModels:      &nodes.ChatModels{Response: completion.NewRelay(cm)},
		Enricher:        enricher,
		MessagesManager: conversations.NewMessagesManager(conversations.DefaultHistoryWindow),
		Prompt:          model.PromptConfig{Variant: "research", AssistantName: "Krish AI"},
	})
	require.NoError(t, err)
	return NewRunner(runnable)
}

func TestRunner_PlainAnswer(t *testing.T) {
	cm := &recordingModel{reply: "Hey! How can I help you today?"}
	runner := newTestRunner(t, cm, staticEnricher{out: model.EmptyEnrichment()})

	out, err := runner.Invoke(context.Background(), model.IncomingRequest{UserMessage: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "Hey! How can I help you today?", out.Content)
	require.NotNil(t, out.SearchInfo.Searches)
	assert.Empty(t, out.SearchInfo.Searches)
	assert.Empty(t, out.SearchInfo.Reasoning)

	msgs := cm.last()
	require.Len(t, msgs, 2)
	assert.Equal(t, schema.System, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "Cite sources when available.")
	assert.Equal(t, "hi", msgs[1].Content)
}

func TestRunner_ResearchReported(t *testing.T) {
	cm := &recordingModel{reply: "Go 1.25 shipped in August."}
	enrichment := model.Enrichment{
		Context:   "\n[RESEARCH]\n...\n[END RESEARCH]\nCite sources in your answer.",
		Searches:  []model.PlannedSearch{{Query: "go 1.25 release", Purpose: "date"}},
		Reasoning: "recent release",
	}
	runner := newTestRunner(t, cm, staticEnricher{out: enrichment})

	out, err := runner.Invoke(context.Background(), model.IncomingRequest{UserMessage: "when did go 1.25 ship?"})
	require.NoError(t, err)
	assert.Equal(t, enrichment.Searches, out.SearchInfo.Searches)
	assert.Equal(t, "recent release", out.SearchInfo.Reasoning)

	msgs := cm.last()
	assert.Equal(t, "when did go 1.25 ship?"+enrichment.Context, msgs[len(msgs)-1].Content)
}

func TestRunner_ReasoningDroppedWithoutSearches(t *testing.T) {
	cm := &recordingModel{reply: "ok"}
	runner := newTestRunner(t, cm, staticEnricher{out: model.Enrichment{Reasoning: "declined"}})

	out, err := runner.Invoke(context.Background(), model.IncomingRequest{UserMessage: "hello"})
	require.NoError(t, err)
	assert.Empty(t, out.SearchInfo.Reasoning)
	assert.NotNil(t, out.SearchInfo.Searches)
}

func TestRunner_HistoryWindow(t *testing.T) {
	cm := &recordingModel{reply: "ok"}
	runner := newTestRunner(t, cm, nil)

	history := make([]model.ConversationTurn, 15)
	for i := range history {
		history[i] = model.ConversationTurn{Role: "user", Content: fmt.Sprintf("m%d", i)}
	}
	_, err := runner.Invoke(context.Background(), model.IncomingRequest{UserMessage: "now", Messages: history})
	require.NoError(t, err)

	msgs := cm.last()
	require.Len(t, msgs, 12)
	assert.Equal(t, "m5", msgs[1].Content)
	assert.Equal(t, "m14", msgs[10].Content)
	assert.Equal(t, "now", msgs[11].Content)
}

func TestRunner_CompletionFailureBecomesContent(t *testing.T) {
	cases := map[string]struct {
		err  error
		want string
	}{
		"api error":    {err: &completion.APIError{Message: "Rate limited"}, want: "API Error: Rate limited"},
		"unrecognized": {err: completion.ErrUnrecognizedResponse, want: completion.FallbackReply},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			runner := newTestRunner(t, &recordingModel{err: tc.err}, nil)
			out, err := runner.Invoke(context.Background(), model.IncomingRequest{UserMessage: "hi"})
			require.NoError(t, err)
			assert.Equal(t, tc.want, out.Content)
			assert.NotNil(t, out.SearchInfo.Searches)
		})
	}
}

func TestRunner_ConcurrentRequestsIsolated(t *testing.T) {
	cm := &recordingModel{reply: "ok"}
	runner := newTestRunner(t, cm, staticEnricher{out: model.Enrichment{
		Searches: []model.PlannedSearch{{Query: "q"}},
	}})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err := runner.Invoke(context.Background(), model.IncomingRequest{UserMessage: fmt.Sprintf("msg %d", i)})
			assert.NoError(t, err)
			assert.Len(t, out.SearchInfo.Searches, 1)
		}(i)
	}
	wg.Wait()
	assert.Len(t, cm.seen, 8)
}

func TestBuildGraph_Validation(t *testing.T) {
	_, err := BuildGraph(context.Background(), nil)
	assert.Error(t, err)

	_, err = BuildGraph(context.Background(), &GraphConfig{ChatModels: &nodes.ChatModels{}})
	assert.Error(t, err)

	_, err = BuildGraph(context.Background(), &GraphConfig{
		ChatModels: &nodes.ChatModels{Response: completion.NewRelay(&recordingModel{})},
	})
	assert.Error(t, err)
}

func TestBuildGraph_NodesReportTheirNames(t *testing.T) {
	runnable, err := BuildGraph(context.Background(), &GraphConfig{
		ChatModels:      &nodes.ChatModels{Response: completion.NewRelay(&recordingModel{reply: "ok"})},
		Enricher:        staticEnricher{out: model.EmptyEnrichment()},
		MessagesManager: conversations.NewMessagesManager(conversations.DefaultHistoryWindow),
		Prompt:          model.PromptConfig{Variant: "research", AssistantName: "Krish AI"},
	})
	require.NoError(t, err)

	var mu sync.Mutex
	var started []string
	handler := einocb.NewHandlerBuilder().
		OnStartFn(func(ctx context.Context, info *einocb.RunInfo, _ einocb.CallbackInput) context.Context {
			mu.Lock()
			defer mu.Unlock()
			started = append(started, info.Name)
			return ctx
		}).
		Build()

	_, err = runnable.Invoke(context.Background(), model.IncomingRequest{UserMessage: "hi"}, compose.WithCallbacks(handler))
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	for _, name := range []string{nodes.NodeEnricher, nodes.NodePromptAssembler, nodes.NodeCompletionRelay, nodes.NodeResponder} {
		assert.Contains(t, started, name)
	}
}
