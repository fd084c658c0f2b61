package research

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/krish-ai/chat-server/internal/agent/model"
	errx "github.com/krish-ai/chat-server/internal/core/error"
	logx "github.com/krish-ai/chat-server/pkg/logger"
)

const (
	cacheKeyPrefix = "research"
	kindPage       = "page"
	kindSearch     = "search"
)

// RedisCache stores JSON-encoded research results under hashed keys.
type RedisCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisCache(rdb redis.Cmdable, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func (c *RedisCache) key(kind, id string) string {
	sum := sha256.Sum256([]byte(id))
	return fmt.Sprintf("%s:%s:%s", cacheKeyPrefix, kind, hex.EncodeToString(sum[:16]))
}

// Load decodes the entry into dest and reports whether it existed.
func (c *RedisCache) Load(ctx context.Context, kind, id string, dest any) (bool, error) {
	data, err := c.rdb.Get(ctx, c.key(kind, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, errx.WrapRedis(err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("decode cache entry: %w", err)
	}
	return true, nil
}

func (c *RedisCache) Store(ctx context.Context, kind, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := c.rdb.Set(ctx, c.key(kind, id), data, c.ttl).Err(); err != nil {
		return errx.WrapRedis(err)
	}
	return nil
}

// CachedScraper serves repeated URLs from the cache. Only successful scrapes
// are stored and cache failures fall through to the wrapped scraper.
type CachedScraper struct {
	next  Scraper
	cache *RedisCache
}

func NewCachedScraper(next Scraper, cache *RedisCache) *CachedScraper {
	return &CachedScraper{next: next, cache: cache}
}

func (s *CachedScraper) Scrape(ctx context.Context, pageURL string) model.ScrapeResult {
	var cached model.ScrapeResult
	found, err := s.cache.Load(ctx, kindPage, pageURL, &cached)
	if err != nil {
		logx.Warn().Err(err).Str("url", pageURL).Msg("page cache read failed")
	}
	if found && cached.Outcome == model.ScrapeSuccess {
		logx.Debug().Str("url", pageURL).Msg("page cache hit")
		return cached
	}

	result := s.next.Scrape(ctx, pageURL)
	if result.Outcome == model.ScrapeSuccess {
		if err := s.cache.Store(ctx, kindPage, pageURL, result); err != nil {
			logx.Warn().Err(err).Str("url", pageURL).Msg("page cache write failed")
		}
	}
	return result
}

// CachedSearchProvider serves repeated queries from the cache. Empty hit
// lists and errors are never stored.
type CachedSearchProvider struct {
	next  SearchProvider
	cache *RedisCache
}

func NewCachedSearchProvider(next SearchProvider, cache *RedisCache) *CachedSearchProvider {
	return &CachedSearchProvider{next: next, cache: cache}
}

func (p *CachedSearchProvider) Name() string { return p.next.Name() }

func (p *CachedSearchProvider) Search(ctx context.Context, query string, limit int) ([]model.SearchHit, error) {
	id := p.next.Name() + "|" + strconv.Itoa(limit) + "|" + query

	var cached []model.SearchHit
	found, err := p.cache.Load(ctx, kindSearch, id, &cached)
	if err != nil {
		logx.Warn().Err(err).Str("query", query).Msg("search cache read failed")
	}
	if found && len(cached) > 0 {
		logx.Debug().Str("query", query).Msg("search cache hit")
		return cached, nil
	}

	hits, err := p.next.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	if len(hits) > 0 {
		if err := p.cache.Store(ctx, kindSearch, id, hits); err != nil {
			logx.Warn().Err(err).Str("query", query).Msg("search cache write failed")
		}
	}
	return hits, nil
}
