package research

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/krish-ai/chat-server/internal/agent/model"
)

const duckDuckGoBaseURL = "https://html.duckduckgo.com/html/"

// DuckDuckGo searches the keyless HTML endpoint and scrapes its result list.
type DuckDuckGo struct {
	client    *http.Client
	baseURL   string
	userAgent string
}

func NewDuckDuckGo(client *http.Client, baseURL, userAgent string) *DuckDuckGo {
	if baseURL == "" {
		baseURL = duckDuckGoBaseURL
	}
	return &DuckDuckGo{client: client, baseURL: baseURL, userAgent: userAgent}
}

func (d *DuckDuckGo) Name() string { return BackendDuckDuckGo }

func (d *DuckDuckGo) Search(ctx context.Context, query string, limit int) ([]model.SearchHit, error) {
	u, err := url.Parse(d.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse duckduckgo url: %w", err)
	}
	params := u.Query()
	params.Set("q", query)
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build duckduckgo request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo search: unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse duckduckgo html: %w", err)
	}
	return parseDuckDuckGoResults(doc, limit), nil
}

func parseDuckDuckGoResults(doc *goquery.Document, limit int) []model.SearchHit {
	hits := []model.SearchHit{}
	doc.Find(".result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if limit > 0 && len(hits) >= limit {
			return false
		}
		if s.HasClass("result--ad") {
			return true
		}
		link := s.Find("a.result__a").First()
		href, _ := link.Attr("href")
		target := resolveDuckDuckGoURL(href)
		title := cleanWhitespace(link.Text())
		if target == "" || title == "" {
			return true
		}
		hits = append(hits, model.SearchHit{
			Title:     title,
			Snippet:   cleanWhitespace(s.Find(".result__snippet").First().Text()),
			SourceURL: target,
		})
		return true
	})
	return hits
}

// resolveDuckDuckGoURL unwraps the //duckduckgo.com/l/?uddg=... redirect.
func resolveDuckDuckGoURL(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if target := parsed.Query().Get("uddg"); target != "" {
		return target
	}
	if (parsed.Scheme == "http" || parsed.Scheme == "https") && !strings.HasSuffix(parsed.Hostname(), "duckduckgo.com") {
		return href
	}
	return ""
}
