package adzuna

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/opportunity-discovery/internal/opportunity"
	"github.com/JakeFAU/opportunity-discovery/internal/source"
)

const payload = `{
  "count": 2,
  "results": [
    {
      "id": "4012345678",
      "title": "Data Analyst Intern",
      "description": "<p>Work with <b>SQL</b> dashboards.</p>",
      "company": {"display_name": "Acme"},
      "location": {"display_name": "New York, NY"},
      "category": {"label": "IT Jobs", "tag": "it-jobs"},
      "salary_min": 42000,
      "redirect_url": "https://www.adzuna.com/details/4012345678",
      "created": "2025-03-04T10:00:00Z",
      "contract_time": "full_time"
    },
    {
      "id": 99,
      "title": "Electrician Apprentice",
      "description": "Hands-on training",
      "company": {"display_name": "Sparks LLC"},
      "location": {"display_name": "Remote"},
      "created": "2025-03-01T00:00:00Z"
    }
  ]
}`

func newClient() *source.Client {
	return source.NewClient(source.ClientConfig{Timeout: time.Second}, nil, zap.NewNop())
}

func TestFetchMapsResults(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/gb/search/2", r.URL.Path)
		q := r.URL.Query()
		require.Equal(t, "id", q.Get("app_id"))
		require.Equal(t, "key", q.Get("app_key"))
		require.Equal(t, "data analyst", q.Get("what"))
		require.Equal(t, "London", q.Get("where"))
		require.Equal(t, "10", q.Get("results_per_page"))
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	a := New(Config{BaseURL: srv.URL, AppID: "id", AppKey: "key", Country: "gb"}, newClient(), zap.NewNop())
	records, err := a.Fetch(context.Background(), source.Hints{Keyword: "data analyst", Location: "London", Page: 2, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	require.Equal(t, "adzuna", first.Source)
	require.Equal(t, "4012345678", first.ExternalID)
	require.Equal(t, "Acme", first.Organization)
	require.Equal(t, "Work with SQL dashboards.", first.Description)
	require.Equal(t, opportunity.CategoryInternship, first.Category)
	require.Equal(t, opportunity.CompensationPaid, first.Compensation)
	require.Equal(t, "full-time", first.Duration)
	require.False(t, first.IsRemote)
	require.NotNil(t, first.PostedAt)

	second := records[1]
	require.Equal(t, "99", second.ExternalID)
	require.Equal(t, opportunity.CategoryApprenticeship, second.Category)
	require.True(t, second.IsRemote)
	require.Empty(t, second.Compensation)
}

func TestFetchMissingCredentialsSkipsNetwork(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	a := New(Config{BaseURL: srv.URL}, newClient(), zap.NewNop())
	records, err := a.Fetch(context.Background(), source.Hints{})
	require.ErrorIs(t, err, opportunity.ErrProviderUnavailable)
	require.Empty(t, records)
	require.Zero(t, calls.Load())
}

func TestFetchServerErrorIsUnavailable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := New(Config{BaseURL: srv.URL, AppID: "id", AppKey: "key"}, newClient(), zap.NewNop())
	records, err := a.Fetch(context.Background(), source.Hints{})
	require.ErrorIs(t, err, opportunity.ErrProviderUnavailable)
	require.Nil(t, records)
}

func TestFetchMalformedPayloadIsParseFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results": "nope"}`))
	}))
	defer srv.Close()

	a := New(Config{BaseURL: srv.URL, AppID: "id", AppKey: "key"}, newClient(), zap.NewNop())
	_, err := a.Fetch(context.Background(), source.Hints{})
	require.ErrorIs(t, err, opportunity.ErrParseFailure)
}
