package research

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/krish-ai/chat-server/internal/agent/model"
)

const (
	googleSearchBaseURL = "https://www.googleapis.com/customsearch/v1"
	googleMaxResults    = 10
)

// GoogleSearch queries the Custom Search JSON API.
type GoogleSearch struct {
	client   *http.Client
	baseURL  string
	apiKey   string
	engineID string
}

func NewGoogleSearch(client *http.Client, baseURL, apiKey, engineID string) *GoogleSearch {
	if baseURL == "" {
		baseURL = googleSearchBaseURL
	}
	return &GoogleSearch{client: client, baseURL: baseURL, apiKey: apiKey, engineID: engineID}
}

func (g *GoogleSearch) Name() string { return BackendGoogle }

type googleSearchResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
}

func (g *GoogleSearch) Search(ctx context.Context, query string, limit int) ([]model.SearchHit, error) {
	if limit <= 0 || limit > googleMaxResults {
		limit = googleMaxResults
	}
	params := url.Values{}
	params.Set("key", g.apiKey)
	params.Set("cx", g.engineID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build google request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google search: unexpected status %d", resp.StatusCode)
	}

	var result googleSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode google response: %w", err)
	}

	hits := make([]model.SearchHit, 0, len(result.Items))
	for _, item := range result.Items {
		if item.Link == "" {
			continue
		}
		hits = append(hits, model.SearchHit{
			Title:     cleanWhitespace(item.Title),
			Snippet:   cleanWhitespace(item.Snippet),
			SourceURL: item.Link,
		})
	}
	return hits, nil
}
