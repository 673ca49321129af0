package dataloader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gh-network/publications/internal/domain"
	"github.com/graph-gophers/dataloader"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSearcher struct {
	mu    sync.Mutex
	calls [][]string
	err   error
}

func (s *countingSearcher) SearchFeatured(_ context.Context, keys []string) (map[string]*domain.FeaturedInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, keys)
	if s.err != nil {
		return nil, s.err
	}
	result := make(map[string]*domain.FeaturedInfo)
	for _, k := range keys {
		if k == "silent" {
			continue
		}
		result[k] = &domain.FeaturedInfo{TotalCount: int64(len(k))}
	}
	return result, nil
}

func withLoaders(searcher FeaturedSearcher) context.Context {
	// Широкое окно, чтобы все ключи гарантированно попали в один батч
	return context.WithValue(context.Background(), key, NewLoaders(searcher, dataloader.WithWait(20*time.Millisecond)))
}

func TestLoadFeatured_BatchesKeys(t *testing.T) {
	searcher := &countingSearcher{}
	ctx := withLoaders(searcher)

	result, err := LoadFeatured(ctx, []string{"a", "bb", "silent"})
	require.NoError(t, err)

	assert.EqualValues(t, 1, result["a"].TotalCount)
	assert.EqualValues(t, 2, result["bb"].TotalCount)
	require.Contains(t, result, "silent")
	assert.Zero(t, result["silent"].TotalCount)

	require.Len(t, searcher.calls, 1)
	assert.ElementsMatch(t, []string{"a", "bb", "silent"}, searcher.calls[0])
}

func TestLoadFeatured_MergesConcurrentCallsIntoOneBatch(t *testing.T) {
	searcher := &countingSearcher{}
	ctx := withLoaders(searcher)

	var wg sync.WaitGroup
	results := make([]map[string]*domain.FeaturedInfo, 2)
	for i, ids := range [][]string{{"a"}, {"bb", "ccc"}} {
		wg.Add(1)
		go func(i int, ids []string) {
			defer wg.Done()
			result, err := LoadFeatured(ctx, ids)
			assert.NoError(t, err)
			results[i] = result
		}(i, ids)
	}
	wg.Wait()

	assert.EqualValues(t, 1, results[0]["a"].TotalCount)
	assert.EqualValues(t, 3, results[1]["ccc"].TotalCount)

	require.Len(t, searcher.calls, 1)
	assert.ElementsMatch(t, []string{"a", "bb", "ccc"}, searcher.calls[0])
}

func TestLoadFeatured_CachesWithinRequest(t *testing.T) {
	searcher := &countingSearcher{}
	ctx := withLoaders(searcher)

	_, err := LoadFeatured(ctx, []string{"a"})
	require.NoError(t, err)
	_, err = LoadFeatured(ctx, []string{"a"})
	require.NoError(t, err)

	assert.Len(t, searcher.calls, 1)
}

func TestLoadFeatured_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	ctx := withLoaders(&countingSearcher{err: boom})

	_, err := LoadFeatured(ctx, []string{"a", "b"})
	assert.ErrorIs(t, err, boom)
}

func TestLoadFeatured_WithoutMiddleware(t *testing.T) {
	_, err := LoadFeatured(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, errNoLoaders)
}

func TestMiddleware_InjectsFreshLoaders(t *testing.T) {
	searcher := &countingSearcher{}
	var seen []*Loaders

	handler := Middleware(searcher)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, For(r.Context()))
	}))

	for i := 0; i < 2; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}

	require.Len(t, seen, 2)
	assert.NotNil(t, seen[0])
	assert.NotSame(t, seen[0], seen[1])
}
