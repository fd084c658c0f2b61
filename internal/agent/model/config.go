package model

import "time"

// ================ Config ================

// CompletionConfig selects the completion endpoint and the fixed sampling
// parameters used for every answer.
type CompletionConfig struct {
	Provider      string        `envconfig:"COMPLETION_PROVIDER" default:"openrouter"`
	APIKey        string        `envconfig:"COMPLETION_API_KEY" required:"true"`
	URL           string        `envconfig:"COMPLETION_URL" default:"https://openrouter.ai/api/v1/chat/completions"`
	GeminiBaseURL string        `envconfig:"GEMINI_BASE_URL"`
	Model         string        `envconfig:"COMPLETION_MODEL" default:"nvidia/nemotron-3-nano-30b-a3b:free"`
	Temperature   float32       `envconfig:"COMPLETION_TEMPERATURE" default:"0.7"`
	TopP          float32       `envconfig:"COMPLETION_TOP_P" default:"0.9"`
	MaxTokens     int           `envconfig:"COMPLETION_MAX_TOKENS" default:"2048"`
	Timeout       time.Duration `envconfig:"COMPLETION_TIMEOUT" default:"60s"`
	Referer       string        `envconfig:"COMPLETION_REFERER"`
	Title         string        `envconfig:"COMPLETION_TITLE"`
}

// PlannerConfig configures the lighter search-plan call. An empty model
// reuses the completion model.
type PlannerConfig struct {
	Model   string        `envconfig:"PLANNER_MODEL"`
	Timeout time.Duration `envconfig:"PLANNER_TIMEOUT" default:"60s"`
}

type PromptConfig struct {
	Variant       string `envconfig:"PROMPT_VARIANT" default:"research"`
	AssistantName string `envconfig:"PROMPT_ASSISTANT_NAME" default:"Krish AI"`
}

// EnrichConfig holds the capability flags and bounds of the context enricher.
type EnrichConfig struct {
	ScrapeEnabled    bool          `envconfig:"ENRICH_SCRAPE_ENABLED" default:"true"`
	SearchEnabled    bool          `envconfig:"ENRICH_SEARCH_ENABLED" default:"true"`
	MaxURLs          int           `envconfig:"ENRICH_MAX_URLS" default:"2"`
	PageMaxChars     int           `envconfig:"ENRICH_PAGE_MAX_CHARS" default:"4000"`
	PageTimeout      time.Duration `envconfig:"ENRICH_PAGE_TIMEOUT" default:"10s"`
	PageMaxBytes     int64         `envconfig:"ENRICH_PAGE_MAX_BYTES" default:"10485760"`
	UserAgent        string        `envconfig:"ENRICH_USER_AGENT"`
	MaxSearches      int           `envconfig:"ENRICH_MAX_SEARCHES" default:"3"`
	ResultsPerSearch int           `envconfig:"ENRICH_RESULTS_PER_SEARCH" default:"3"`
	SnippetMaxChars  int           `envconfig:"ENRICH_SNIPPET_MAX_CHARS" default:"200"`
	SearchTimeout    time.Duration `envconfig:"ENRICH_SEARCH_TIMEOUT" default:"15s"`
}

type SearchConfig struct {
	Backend  string `envconfig:"SEARCH_BACKEND" default:"duckduckgo"`
	BaseURL  string `envconfig:"SEARCH_BASE_URL"`
	APIKey   string `envconfig:"SEARCH_API_KEY"`
	EngineID string `envconfig:"SEARCH_ENGINE_ID"`
}

// CacheConfig controls the optional Redis cache of scrape results and search hits.
type CacheConfig struct {
	Enabled bool          `envconfig:"CACHE_ENABLED" default:"false"`
	TTL     time.Duration `envconfig:"CACHE_TTL" default:"15m"`
}
