package usecases

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/parkpulse/web/internal/core/domain"
	"github.com/parkpulse/web/internal/core/ports"
)

const (
	minSearchLength = 3
	maxSearchLength = 200
)

// SearchService proxies search queries to the upstream index.
type SearchService struct {
	api   ports.ParkAPI
	cache ports.CacheService
	ttl   int
}

// NewSearchService creates a new SearchService. ttl is in seconds.
func NewSearchService(api ports.ParkAPI, cache ports.CacheService, ttl int) *SearchService {
	return &SearchService{api: api, cache: cache, ttl: ttl}
}

// Search returns hits for query. Queries shorter than three characters yield
// an empty result without reaching upstream.
func (s *SearchService) Search(ctx context.Context, query string) (*domain.SearchResponse, error) {
	query = strings.TrimSpace(query)
	n := utf8.RuneCountInString(query)
	if n < minSearchLength {
		return domain.EmptySearch(), nil
	}
	if n > maxSearchLength {
		return nil, &domain.ValidationError{Message: fmt.Sprintf("Query too long (max %d characters)", maxSearchLength)}
	}

	key := "search:" + strings.ToLower(query)
	res, _, err := cachedFetch(ctx, s.cache, key, s.ttl, failFast, func(ctx context.Context) (*domain.SearchResponse, error) {
		return s.api.Search(ctx, query)
	})
	if err != nil {
		return nil, fmt.Errorf("upstream search: %w", err)
	}
	if res.Results == nil {
		res.Results = []domain.SearchResult{}
	}
	return res, nil
}
