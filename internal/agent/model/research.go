package model

// PlannedSearch is one query proposed by the search plan. Once it yields
// results it is reported back to the caller as an executed search.
type PlannedSearch struct {
	Query   string `json:"query"`
	Purpose string `json:"purpose"`
}

// SearchPlan is the advisory decision returned by the planner call.
type SearchPlan struct {
	NeedsSearch bool
	Reasoning   string
	Searches    []PlannedSearch
}

// NoSearchPlan is the plan used whenever planning fails or declines.
func NoSearchPlan() SearchPlan {
	return SearchPlan{NeedsSearch: false, Searches: []PlannedSearch{}}
}

// SearchHit is a single result of one web search.
type SearchHit struct {
	Title     string `json:"title"`
	Snippet   string `json:"snippet"`
	SourceURL string `json:"url"`
}

type ScrapeOutcome string

const (
	ScrapeSuccess ScrapeOutcome = "success"
	ScrapeError   ScrapeOutcome = "error"
)

// ScrapeResult is the readable text extracted from one page.
type ScrapeResult struct {
	SourceURL string        `json:"url"`
	Title     string        `json:"title"`
	Content   string        `json:"content"`
	Outcome   ScrapeOutcome `json:"outcome"`
	Err       error         `json:"-"`
}

// Enrichment is the output of the context enricher: text appended to the
// user message plus the searches to report.
type Enrichment struct {
	Context   string
	Searches  []PlannedSearch
	Reasoning string
}

// EmptyEnrichment contributes no context and reports no searches.
func EmptyEnrichment() Enrichment {
	return Enrichment{Searches: []PlannedSearch{}}
}
