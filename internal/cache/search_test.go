package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/opportunity-discovery/internal/aggregate"
	"github.com/JakeFAU/opportunity-discovery/internal/opportunity"
	"github.com/JakeFAU/opportunity-discovery/internal/source"
)

type fakeRedis struct {
	mu     sync.Mutex
	data   map[string]string
	ttls   map[string]time.Duration
	getErr error
	setErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	f.data[key] = string(value.([]byte))
	f.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

type countingSearcher struct {
	calls  int
	result aggregate.SearchResult
	err    error
}

func (s *countingSearcher) Search(context.Context, source.Hints) (aggregate.SearchResult, error) {
	s.calls++
	return s.result, s.err
}

func answer() aggregate.SearchResult {
	return aggregate.SearchResult{
		Source:  "adzuna",
		Records: []opportunity.Opportunity{{Source: "adzuna", ExternalID: "1", Title: "Data Analyst Intern"}},
	}
}

func TestKeyNormalizesHints(t *testing.T) {
	t.Parallel()

	require.Equal(t, "jobs:v1:data analyst|new york|1|0", Key(source.Hints{Keyword: " Data Analyst ", Location: "New York"}))
	require.Equal(t, "jobs:v1:||3|20", Key(source.Hints{Page: 3, PageSize: 20}))
}

func TestSearchCacheStoresAndServesHits(t *testing.T) {
	t.Parallel()

	rdb := newFakeRedis()
	next := &countingSearcher{result: answer()}
	c := NewSearchCache(next, rdb, time.Minute, zap.NewNop())
	hints := source.Hints{Keyword: "analyst"}

	first, err := c.Search(context.Background(), hints)
	require.NoError(t, err)
	second, err := c.Search(context.Background(), hints)
	require.NoError(t, err)

	require.Equal(t, 1, next.calls)
	require.Equal(t, first.Source, second.Source)
	require.Equal(t, "Data Analyst Intern", second.Records[0].Title)
	require.Equal(t, time.Minute, rdb.ttls[Key(hints)])
}

func TestSearchCacheSkipsExhaustedAnswers(t *testing.T) {
	t.Parallel()

	rdb := newFakeRedis()
	next := &countingSearcher{err: &opportunity.AllProvidersExhaustedError{}}
	c := NewSearchCache(next, rdb, 0, nil)

	_, err := c.Search(context.Background(), source.Hints{})
	require.ErrorIs(t, err, opportunity.ErrAllProvidersExhausted)
	_, err = c.Search(context.Background(), source.Hints{})
	require.Error(t, err)
	require.Equal(t, 2, next.calls)
	require.Empty(t, rdb.data)
}

func TestSearchCacheFallsThroughOnRedisErrors(t *testing.T) {
	t.Parallel()

	rdb := newFakeRedis()
	rdb.getErr = errors.New("connection refused")
	rdb.setErr = errors.New("connection refused")
	next := &countingSearcher{result: answer()}
	c := NewSearchCache(next, rdb, time.Minute, zap.NewNop())

	res, err := c.Search(context.Background(), source.Hints{Keyword: "x"})
	require.NoError(t, err)
	require.Equal(t, "adzuna", res.Source)
	require.Equal(t, 1, next.calls)
}

func TestSearchCacheIgnoresCorruptEntries(t *testing.T) {
	t.Parallel()

	rdb := newFakeRedis()
	hints := source.Hints{Keyword: "x"}
	rdb.data[Key(hints)] = "{not json"
	next := &countingSearcher{result: answer()}
	c := NewSearchCache(next, rdb, time.Minute, zap.NewNop())

	_, err := c.Search(context.Background(), hints)
	require.NoError(t, err)
	require.Equal(t, 1, next.calls)

	var stored aggregate.SearchResult
	require.NoError(t, json.Unmarshal([]byte(rdb.data[Key(hints)]), &stored))
	require.Equal(t, "adzuna", stored.Source)
}
