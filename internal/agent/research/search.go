package research

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/krish-ai/chat-server/internal/agent/model"
)

const (
	BackendDuckDuckGo = "duckduckgo"
	BackendGoogle     = "google"
)

// SearchProvider runs one web search and returns at most limit hits.
type SearchProvider interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]model.SearchHit, error)
}

// NewSearchProvider builds the provider selected by cfg.Backend.
func NewSearchProvider(cfg model.SearchConfig, enrich model.EnrichConfig) (SearchProvider, error) {
	client := &http.Client{Timeout: enrich.SearchTimeout}
	if enrich.SearchTimeout <= 0 {
		client.Timeout = 15 * time.Second
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendDuckDuckGo:
		ua := enrich.UserAgent
		if ua == "" {
			ua = DefaultUserAgent
		}
		return NewDuckDuckGo(client, cfg.BaseURL, ua), nil
	case BackendGoogle:
		if cfg.APIKey == "" || cfg.EngineID == "" {
			return nil, fmt.Errorf("google search requires SEARCH_API_KEY and SEARCH_ENGINE_ID")
		}
		return NewGoogleSearch(client, cfg.BaseURL, cfg.APIKey, cfg.EngineID), nil
	default:
		return nil, fmt.Errorf("unknown search backend %q", cfg.Backend)
	}
}
