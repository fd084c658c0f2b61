package research

import (
	"context"
	"errors"
	"sync"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/krish-ai/chat-server/internal/agent/model"
)

type fakeSearchProvider struct {
	mu      sync.Mutex
	results map[string][]model.SearchHit
	errs    map[string]error
	queries []string
}

func (f *fakeSearchProvider) Name() string { return "fake" }

func (f *fakeSearchProvider) Search(_ context.Context, query string, limit int) ([]model.SearchHit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if err := f.errs[query]; err != nil {
		return nil, err
	}
	return f.results[query], nil
}

type fakeScraper struct {
	pages map[string]model.ScrapeResult
	calls []string
}

func (f *fakeScraper) Scrape(_ context.Context, pageURL string) model.ScrapeResult {
	f.calls = append(f.calls, pageURL)
	if res, ok := f.pages[pageURL]; ok {
		return res
	}
	return model.ScrapeResult{SourceURL: pageURL, Outcome: model.ScrapeError, Err: errors.New("not found")}
}

type fakePlanner struct {
	plan  model.SearchPlan
	calls int
}

func (f *fakePlanner) Plan(context.Context, string) model.SearchPlan {
	f.calls++
	return f.plan
}

type scriptedChatModel struct {
	reply string
	err   error
	input []*schema.Message
}

func (s *scriptedChatModel) Generate(_ context.Context, input []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	s.input = input
	if s.err != nil {
		return nil, s.err
	}
	return schema.AssistantMessage(s.reply, nil), nil
}

func (s *scriptedChatModel) Stream(context.Context, []*schema.Message, ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not supported")
}

func hit(n string) model.SearchHit {
	return model.SearchHit{Title: "title " + n, Snippet: "snippet " + n, SourceURL: "https://" + n + ".example"}
}
