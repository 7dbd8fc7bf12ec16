package jooble

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/opportunity-discovery/internal/opportunity"
	"github.com/JakeFAU/opportunity-discovery/internal/source"
)

func newClient() *source.Client {
	return source.NewClient(source.ClientConfig{Timeout: time.Second}, nil, zap.NewNop())
}

func TestFetchAcceptsEveryResponseShape(t *testing.T) {
	t.Parallel()

	shapes := map[string]string{
		"bare array": `[{"id": 7613018771850097000, "title": "Marketing Intern", "company": "Acme", "location": "Chicago, IL", "snippet": "&nbsp;Campaigns", "type": "Part-time", "link": "https://jooble.org/desc/1", "updated": "2025-03-03T00:00:00.0000000"}]`,
		"data object": `{"totalCount": 1, "data": [{"id": "7613018771850097000", "title": "Marketing Intern", "company": "Acme", "location": "Chicago, IL", "type": "Part-time", "link": "https://jooble.org/desc/1"}]}`,
		"jobs object": `{"totalCount": 1, "jobs": [{"id": "7613018771850097000", "title": "Marketing Intern", "company": "Acme", "location": "Chicago, IL", "type": "Part-time", "link": "https://jooble.org/desc/1"}]}`,
	}

	for name, body := range shapes {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, http.MethodPost, r.Method)
				require.Equal(t, "/secret", r.URL.Path)
				var req map[string]string
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				require.Equal(t, "marketing", req["keywords"])
				require.Equal(t, "Chicago", req["location"])
				require.Equal(t, "1", req["page"])
				require.Equal(t, "20", req["ResultOnPage"])
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			a := New(Config{BaseURL: srv.URL, APIKey: "secret"}, newClient(), zap.NewNop())
			records, err := a.Fetch(context.Background(), source.Hints{Keyword: "marketing", Location: "Chicago"})
			require.NoError(t, err)
			require.Len(t, records, 1)
			require.Equal(t, "jooble", records[0].Source)
			require.Equal(t, "7613018771850097000", records[0].ExternalID)
			require.Equal(t, "Acme", records[0].Organization)
			require.Equal(t, opportunity.CategoryInternship, records[0].Category)
			require.Equal(t, "part-time", records[0].Duration)
		})
	}
}

func TestFetchEmptyResponse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"totalCount": 0, "jobs": []}`))
	}))
	defer srv.Close()

	a := New(Config{BaseURL: srv.URL, APIKey: "secret"}, newClient(), zap.NewNop())
	records, err := a.Fetch(context.Background(), source.Hints{})
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestFetchMissingKey(t *testing.T) {
	t.Parallel()

	a := New(Config{BaseURL: "http://127.0.0.1:0"}, newClient(), zap.NewNop())
	_, err := a.Fetch(context.Background(), source.Hints{})
	require.ErrorIs(t, err, opportunity.ErrProviderUnavailable)
}

func TestFetchUnexpectedShapeIsParseFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`"maintenance"`))
	}))
	defer srv.Close()

	a := New(Config{BaseURL: srv.URL, APIKey: "secret"}, newClient(), zap.NewNop())
	_, err := a.Fetch(context.Background(), source.Hints{})
	require.ErrorIs(t, err, opportunity.ErrParseFailure)
}
