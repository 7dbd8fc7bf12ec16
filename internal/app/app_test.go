package app_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/opportunity-discovery/internal/aggregate"
	"github.com/JakeFAU/opportunity-discovery/internal/app"
	"github.com/JakeFAU/opportunity-discovery/internal/config"
	"github.com/JakeFAU/opportunity-discovery/internal/source/nsfreu"
)

// offlineConfig enables only the catalog-backed adapter so passes never
// touch the network.
func offlineConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Server:    config.ServerConfig{Port: 8080},
		HTTP:      config.HTTPConfig{TimeoutSeconds: 2, RatePerSecond: 0},
		Scheduler: config.SchedulerConfig{Interval: time.Hour},
		Providers: config.ProvidersConfig{
			NSFREU: config.ProviderConfig{Enabled: true},
		},
		Storage: config.StorageConfig{Backend: "memory"},
		Cache:   config.CacheConfig{TTL: time.Minute},
		Archive: config.ArchiveConfig{Backend: "local", Dir: t.TempDir(), Prefix: "passes"},
		Events:  config.EventsConfig{Backend: "memory", Topic: "aggregation-events"},
	}
}

func TestNewWiresMemoryServices(t *testing.T) {
	t.Parallel()

	a, err := app.New(context.Background(), offlineConfig(t), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	adapters := a.Registry.Adapters()
	require.Len(t, adapters, 1)
	assert.Equal(t, nsfreu.Name, adapters[0].Name())

	chain, ok := a.Searcher.(*aggregate.FallbackChain)
	require.True(t, ok, "search should be the bare chain without redis")
	assert.Equal(t, []string{"adzuna", "jooble"}, chain.Candidates())
	assert.NotNil(t, a.Scheduler)
}

func TestPassThroughAPI(t *testing.T) {
	t.Parallel()

	a, err := app.New(context.Background(), offlineConfig(t), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	report, err := a.Runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, aggregate.StatusOK, report.Status)
	assert.Positive(t, report.Inserted)
	assert.True(t, strings.HasPrefix(report.SnapshotURI, "file://"), report.SnapshotURI)

	srv := httptest.NewServer(a.APIServer().Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/v1/opportunities?category=research&limit=100")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var page struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	assert.Equal(t, report.Inserted, page.Total)
}

func TestNewFailsFastOnUnreachablePostgres(t *testing.T) {
	t.Parallel()

	cfg := offlineConfig(t)
	cfg.Storage = config.StorageConfig{
		Backend: "postgres",
		DSN:     "postgres://discovery@127.0.0.1:1/discovery?connect_timeout=1&sslmode=disable",
	}
	_, err := app.New(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres")
}

func TestCloseIsIdempotent(t *testing.T) {
	t.Parallel()

	a, err := app.New(context.Background(), offlineConfig(t), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, a.Close())
	require.NoError(t, a.Close())
}
