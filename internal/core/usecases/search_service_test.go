package usecases_test

import (
	"context"
	"testing"

	"github.com/parkpulse/web/internal/core/domain"
	"github.com/parkpulse/web/internal/core/usecases"
)

func TestSearchService_ShortQuery(t *testing.T) {
	api := &mockParkAPI{
		searchFn: func(ctx context.Context, query string) (*domain.SearchResponse, error) {
			t.Fatal("short queries must not reach upstream")
			return nil, nil
		},
	}
	svc := usecases.NewSearchService(api, nil, 300)

	for _, q := range []string{"", "ef", "  e  ", "äö"} {
		res, err := svc.Search(context.Background(), q)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Count != 0 || res.Results == nil || len(res.Results) != 0 {
			t.Errorf("query %q: expected empty result, got %+v", q, res)
		}
	}
}

func TestSearchService_CachesResults(t *testing.T) {
	calls := 0
	api := &mockParkAPI{
		searchFn: func(ctx context.Context, query string) (*domain.SearchResponse, error) {
			calls++
			return &domain.SearchResponse{Query: query, Results: []domain.SearchResult{{Type: "park", ID: "1", Name: "Efteling"}}, Count: 1}, nil
		},
	}
	svc := usecases.NewSearchService(api, newMemCache(), 300)

	for i := 0; i < 3; i++ {
		res, err := svc.Search(context.Background(), "Efteling")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Count != 1 {
			t.Fatalf("expected 1 result, got %d", res.Count)
		}
	}
	if calls != 1 {
		t.Errorf("expected 1 upstream call, got %d", calls)
	}
}
