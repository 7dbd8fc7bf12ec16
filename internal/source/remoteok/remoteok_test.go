package remoteok

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/opportunity-discovery/internal/opportunity"
	"github.com/JakeFAU/opportunity-discovery/internal/source"
)

const feed = `[
  {"last_updated": 1741000000, "legal": "API Terms of Service: please link back to RemoteOK."},
  {"id": "1090001", "epoch": 1741046400, "company": "Startly", "position": "Senior Go Engineer", "tags": ["golang", "backend", "Golang"], "description": "<p>Build APIs</p>", "location": "Worldwide", "salary_min": 120000, "url": "https://remoteok.com/remote-jobs/1090001", "apply_url": "https://startly.example/apply"},
  {"id": 1090002, "date": "2025-03-02T00:00:00+00:00", "company": "Tiny", "position": "Product Design Intern", "tags": [], "description": "Design", "url": "https://remoteok.com/remote-jobs/1090002"},
  {"company": "NoID", "position": "Ghost role"}
]`

func TestFetchSkipsLegalNoticeAndMapsJobs(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "discovery-test", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(feed))
	}))
	defer srv.Close()

	client := source.NewClient(source.ClientConfig{Timeout: time.Second, UserAgent: "discovery-test"}, nil, zap.NewNop())
	a := New(Config{FeedURL: srv.URL}, client, zap.NewNop())
	records, err := a.Fetch(context.Background(), source.Hints{})
	require.NoError(t, err)
	require.Len(t, records, 2)

	senior := records[0]
	require.Equal(t, "remoteok", senior.Source)
	require.Equal(t, "1090001", senior.ExternalID)
	require.Equal(t, opportunity.CategoryStartup, senior.Category)
	require.Equal(t, opportunity.CompensationPaid, senior.Compensation)
	require.Equal(t, []string{"golang", "backend"}, senior.Skills)
	require.Equal(t, "https://startly.example/apply", senior.ApplicationURL)
	require.Equal(t, "Build APIs", senior.Description)
	require.True(t, senior.IsRemote)

	intern := records[1]
	require.Equal(t, "1090002", intern.ExternalID)
	require.Equal(t, opportunity.CategoryInternship, intern.Category)
	require.Equal(t, "Remote", intern.Location)
	require.NotNil(t, intern.PostedAt)
}

func TestFetchSendsDefaultUserAgent(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NotEmpty(t, r.Header.Get("User-Agent"))
		require.NotContains(t, r.Header.Get("User-Agent"), "Go-http-client")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := source.NewClient(source.ClientConfig{Timeout: time.Second}, nil, zap.NewNop())
	records, err := New(Config{FeedURL: srv.URL}, client, zap.NewNop()).Fetch(context.Background(), source.Hints{})
	require.NoError(t, err)
	require.Empty(t, records)
}
