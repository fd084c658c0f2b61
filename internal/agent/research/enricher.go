package research

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/krish-ai/chat-server/internal/agent/model"
	logx "github.com/krish-ai/chat-server/pkg/logger"
)

// Enricher decides, per message, whether to scrape linked pages or run web
// research, and renders the result as context text. The two paths are
// exclusive: a message containing a URL never triggers a search.
type Enricher struct {
	scrapeEnabled bool
	searchEnabled bool
	maxURLs       int

	scraper Scraper
	planner PlanGenerator
	runner  *SearchRunner
}

// Options wires an Enricher. A nil Scraper disables scraping and a nil
// Planner or Searcher disables research regardless of the config flags.
type Options struct {
	Config   model.EnrichConfig
	Scraper  Scraper
	Planner  PlanGenerator
	Searcher SearchProvider
}

func NewEnricher(opts Options) *Enricher {
	e := &Enricher{
		scrapeEnabled: opts.Config.ScrapeEnabled && opts.Scraper != nil,
		searchEnabled: opts.Config.SearchEnabled && opts.Planner != nil && opts.Searcher != nil,
		maxURLs:       positiveOr(opts.Config.MaxURLs, 2),
		scraper:       opts.Scraper,
		planner:       opts.Planner,
	}
	if opts.Searcher != nil {
		e.runner = NewSearchRunner(opts.Searcher, opts.Config)
	}
	return e
}

// Build assembles the production Enricher: page scraper, configured search
// backend and planner, each behind the Redis cache when rdb is non-nil.
func Build(enrich model.EnrichConfig, search model.SearchConfig, cache model.CacheConfig, planner PlanGenerator, rdb redis.Cmdable) (*Enricher, error) {
	var scraper Scraper = NewPageScraper(enrich)

	var searcher SearchProvider
	if enrich.SearchEnabled {
		provider, err := NewSearchProvider(search, enrich)
		if err != nil {
			return nil, fmt.Errorf("search provider: %w", err)
		}
		searcher = provider
	}

	if cache.Enabled && rdb != nil {
		rc := NewRedisCache(rdb, cache.TTL)
		scraper = NewCachedScraper(scraper, rc)
		if searcher != nil {
			searcher = NewCachedSearchProvider(searcher, rc)
		}
		logx.Info().Dur("ttl", cache.TTL).Msg("research cache enabled")
	}

	return NewEnricher(Options{
		Config:   enrich,
		Scraper:  scraper,
		Planner:  planner,
		Searcher: searcher,
	}), nil
}

func (e *Enricher) Enrich(ctx context.Context, userMessage string) model.Enrichment {
	if urls := ExtractURLs(userMessage); len(urls) > 0 {
		if !e.scrapeEnabled {
			return model.EmptyEnrichment()
		}
		return e.scrapeLinks(ctx, urls)
	}

	if !e.searchEnabled {
		return model.EmptyEnrichment()
	}
	return e.research(ctx, userMessage)
}

// scrapeLinks scrapes the first maxURLs links in order. Failed pages are
// skipped.
func (e *Enricher) scrapeLinks(ctx context.Context, urls []string) model.Enrichment {
	if len(urls) > e.maxURLs {
		urls = urls[:e.maxURLs]
	}

	var blocks strings.Builder
	for _, u := range urls {
		result := e.scraper.Scrape(ctx, u)
		if result.Outcome != model.ScrapeSuccess {
			continue
		}
		blocks.WriteString(formatScrapeBlock(result))
	}

	enrichment := model.EmptyEnrichment()
	enrichment.Context = blocks.String()
	return enrichment
}

func (e *Enricher) research(ctx context.Context, userMessage string) model.Enrichment {
	plan := e.planner.Plan(ctx, userMessage)
	if !plan.NeedsSearch || len(plan.Searches) == 0 {
		return model.EmptyEnrichment()
	}

	digest, executed := e.runner.Execute(ctx, plan)
	if len(executed) == 0 {
		return model.EmptyEnrichment()
	}
	return model.Enrichment{
		Context:   digest,
		Searches:  executed,
		Reasoning: plan.Reasoning,
	}
}
