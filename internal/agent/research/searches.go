package research

import (
	"context"
	"fmt"
	"strings"

	"github.com/krish-ai/chat-server/internal/agent/model"
	logx "github.com/krish-ai/chat-server/pkg/logger"
)

// SearchRunner executes a search plan and renders the research digest.
type SearchRunner struct {
	provider         SearchProvider
	maxSearches      int
	resultsPerSearch int
	snippetMaxChars  int
}

func NewSearchRunner(provider SearchProvider, cfg model.EnrichConfig) *SearchRunner {
	return &SearchRunner{
		provider:         provider,
		maxSearches:      positiveOr(cfg.MaxSearches, 3),
		resultsPerSearch: positiveOr(cfg.ResultsPerSearch, 3),
		snippetMaxChars:  positiveOr(cfg.SnippetMaxChars, 200),
	}
}

// Execute runs the first maxSearches planned queries in order. Blank queries
// are skipped without freeing their slot. Only queries that returned hits are
// reported; when none did, the digest is empty.
func (r *SearchRunner) Execute(ctx context.Context, plan model.SearchPlan) (string, []model.PlannedSearch) {
	executed := []model.PlannedSearch{}
	if !plan.NeedsSearch || len(plan.Searches) == 0 {
		return "", executed
	}

	planned := plan.Searches
	if len(planned) > r.maxSearches {
		planned = planned[:r.maxSearches]
	}

	var sections strings.Builder
	for _, search := range planned {
		query := strings.TrimSpace(search.Query)
		if query == "" {
			continue
		}

		hits, err := r.provider.Search(ctx, query, r.resultsPerSearch)
		if err != nil {
			logx.Warn().Err(err).Str("backend", r.provider.Name()).Str("query", query).Msg("search failed")
			continue
		}
		if len(hits) > r.resultsPerSearch {
			hits = hits[:r.resultsPerSearch]
		}
		if len(hits) == 0 {
			logx.Debug().Str("query", query).Msg("search returned no hits")
			continue
		}

		executed = append(executed, model.PlannedSearch{Query: query, Purpose: search.Purpose})
		fmt.Fprintf(&sections, "--- Search: '%s' ---\n", query)
		for _, hit := range hits {
			snippet, _ := truncateRunes(hit.Snippet, r.snippetMaxChars)
			fmt.Fprintf(&sections, "• %s\n  %s\n  Source: %s\n", hit.Title, snippet, hit.SourceURL)
		}
	}

	if len(executed) == 0 {
		return "", executed
	}

	var digest strings.Builder
	digest.WriteString("\n[RESEARCH]\n")
	if reasoning := strings.TrimSpace(plan.Reasoning); reasoning != "" {
		fmt.Fprintf(&digest, "Reasoning: %s\n", reasoning)
	}
	digest.WriteString(sections.String())
	digest.WriteString("[END RESEARCH]\nCite sources in your answer.")
	return digest.String(), executed
}

func positiveOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}
