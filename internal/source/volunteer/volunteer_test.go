package volunteer

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

const payload = `{
  "count": 2,
  "next": null,
  "results": [
    {
      "id": 3141,
      "title": "Tutor Adult Learners",
      "description": "<div>Help adults earn their GED.</div>",
      "url": "https://www.volunteerconnector.org/opportunity/3141",
      "organization": {"name": "Literacy Now", "url": "https://literacy.example"},
      "dates": "Ongoing",
      "remote_or_online": true,
      "audience": {"scope": "regional", "regions": ["Toronto"]},
      "activities": [{"name": "Tutoring", "category": "Education"}, {"name": "tutoring", "category": "education"}]
    },
    {
      "id": "2718",
      "title": "Park Cleanup",
      "description": "Saturday morning cleanup.",
      "url": "https://www.volunteerconnector.org/opportunity/2718",
      "organization": {"name": "Green City"},
      "remote_or_online": false,
      "audience": {"scope": "local", "regions": ["Ottawa"]},
      "activities": []
    }
  ]
}`

func newClient() *source.Client {
	return source.NewClient(source.ClientConfig{Timeout: time.Second}, nil, zap.NewNop())
}

func TestFetchMapsListings(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/search/", r.URL.Path)
		require.Equal(t, "tutor", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	a := New(Config{BaseURL: srv.URL}, newClient(), zap.NewNop())
	records, err := a.Fetch(context.Background(), source.Hints{Keyword: "tutor"})
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	require.Equal(t, "volunteerconnector", first.Source)
	require.Equal(t, "3141", first.ExternalID)
	require.Equal(t, "Literacy Now", first.Organization)
	require.Equal(t, "Help adults earn their GED.", first.Description)
	require.Equal(t, opportunity.CategoryVolunteer, first.Category)
	require.Equal(t, opportunity.CompensationUnpaid, first.Compensation)
	require.True(t, first.IsRemote)
	require.Equal(t, "Toronto (Remote)", first.Location)
	require.Equal(t, []string{"Tutoring"}, first.Skills)
	require.Equal(t, "Ongoing", first.Duration)

	require.Equal(t, "Ottawa", records[1].Location)
	require.False(t, records[1].IsRemote)
}

func TestFetchNonprofitHint(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	a := New(Config{BaseURL: srv.URL}, newClient(), zap.NewNop())
	records, err := a.Fetch(context.Background(), source.Hints{Category: opportunity.CategoryNonprofit})
	require.NoError(t, err)
	for _, rec := range records {
		require.Equal(t, opportunity.CategoryNonprofit, rec.Category)
	}
}

func TestFetchFallsBackToCatalogWhenEnabled(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	off := New(Config{BaseURL: srv.URL}, newClient(), zap.NewNop())
	records, err := off.Fetch(context.Background(), source.Hints{})
	require.ErrorIs(t, err, opportunity.ErrProviderUnavailable)
	require.Empty(t, records)

	on := New(Config{BaseURL: srv.URL, Fallback: source.Fallback{Enabled: true, Catalog: Catalog}}, newClient(), zap.NewNop())
	records, err = on.Fetch(context.Background(), source.Hints{})
	require.NoError(t, err)
	require.Len(t, records, len(Catalog()))
	for _, rec := range records {
		require.Equal(t, "volunteerconnector", rec.Source)
		require.True(t, rec.HasTag(opportunity.TagStaticFallback))
		require.NotEmpty(t, rec.ExternalID)
	}
}
