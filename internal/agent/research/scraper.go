package research

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/net/html/charset"

	"github.com/krish-ai/chat-server/internal/agent/model"
	logx "github.com/krish-ai/chat-server/pkg/logger"
)

const (
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	noTitle          = "No title"
	strippedElements = "script, style, nav, footer, header, aside"
)

// mainContentSelectors are tried in order; the first match is the page's
// main region, otherwise the whole body is used.
var mainContentSelectors = []string{"main", "article", "[role=main]", ".content", "#content"}

// Scraper fetches a page and extracts its readable text. Failures are
// reported in the result, never as an error.
type Scraper interface {
	Scrape(ctx context.Context, pageURL string) model.ScrapeResult
}

// PageScraper is the HTTP Scraper.
type PageScraper struct {
	client    *http.Client
	userAgent string
	maxChars  int
	maxBytes  int64
}

func NewPageScraper(cfg model.EnrichConfig) *PageScraper {
	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	return &PageScraper{
		client:    &http.Client{Timeout: cfg.PageTimeout},
		userAgent: ua,
		maxChars:  cfg.PageMaxChars,
		maxBytes:  cfg.PageMaxBytes,
	}
}

func (s *PageScraper) Scrape(ctx context.Context, pageURL string) model.ScrapeResult {
	doc, err := s.fetch(ctx, pageURL)
	if err != nil {
		logx.Warn().Err(err).Str("url", pageURL).Msg("scrape failed")
		return model.ScrapeResult{SourceURL: pageURL, Outcome: model.ScrapeError, Err: err}
	}

	title, content := ExtractReadable(doc, s.maxChars)
	logx.Debug().Str("url", pageURL).Str("title", title).Int("chars", len(content)).Msg("page scraped")
	return model.ScrapeResult{
		SourceURL: pageURL,
		Title:     title,
		Content:   content,
		Outcome:   model.ScrapeSuccess,
	}
}

func (s *PageScraper) fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("fetch page: unexpected status %d", resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if s.maxBytes > 0 {
		body = io.LimitReader(body, s.maxBytes)
	}
	utf8Body, err := charset.NewReader(body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("detect charset: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(utf8Body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// ExtractReadable strips non-content elements from doc and returns the page
// title and the visible text of its main region, cut to maxChars characters.
func ExtractReadable(doc *goquery.Document, maxChars int) (string, string) {
	title := cleanWhitespace(doc.Find("title").First().Text())
	if title == "" {
		title = noTitle
	}

	doc.Find(strippedElements).Remove()

	text := visibleText(mainContent(doc))
	if cut, truncated := truncateRunes(text, maxChars); truncated {
		text = cut + truncationMarker
	}
	return title, text
}

func mainContent(doc *goquery.Document) *goquery.Selection {
	for _, sel := range mainContentSelectors {
		if found := doc.Find(sel).First(); found.Length() > 0 {
			return found
		}
	}
	return doc.Find("body").First()
}

// visibleText joins every non-blank text node, one per line, and collapses
// runs of blank lines.
func visibleText(sel *goquery.Selection) string {
	var parts []string
	for _, n := range sel.Nodes {
		collectText(n, &parts)
	}
	return strings.TrimSpace(collapseBlankLines(strings.Join(parts, "\n")))
}

func collectText(n *html.Node, parts *[]string) {
	switch n.Type {
	case html.TextNode:
		if t := strings.TrimSpace(n.Data); t != "" {
			*parts = append(*parts, t)
		}
		return
	case html.CommentNode, html.DoctypeNode:
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Noscript, atom.Template, atom.Title:
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}

// formatScrapeBlock renders one successful scrape as an enrichment block.
func formatScrapeBlock(r model.ScrapeResult) string {
	return fmt.Sprintf("\n[SCRAPED: %s]\nSource: %s\n%s\n[END SCRAPED]\n", r.Title, r.SourceURL, r.Content)
}
