package source

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/opportunity-discovery/internal/opportunity"
)

type stubAdapter struct {
	name       string
	categories []opportunity.Category
}

func (s stubAdapter) Name() string                       { return s.name }
func (s stubAdapter) Categories() []opportunity.Category { return s.categories }
func (s stubAdapter) Fetch(context.Context, Hints) ([]opportunity.Opportunity, error) {
	return nil, nil
}

func names(adapters []Adapter) []string {
	out := make([]string, 0, len(adapters))
	for _, a := range adapters {
		out = append(out, a.Name())
	}
	return out
}

func TestRegistrySelect(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	require.NoError(t, reg.Register(stubAdapter{"volunteerconnector", []opportunity.Category{opportunity.CategoryVolunteer, opportunity.CategoryNonprofit}}))
	require.NoError(t, reg.Register(stubAdapter{"github", []opportunity.Category{opportunity.CategoryInternship}}, Always()))
	require.NoError(t, reg.Register(stubAdapter{"nsf-reu", []opportunity.Category{opportunity.CategoryResearch}}))

	require.Equal(t, []string{"volunteerconnector", "github"}, names(reg.Select(opportunity.CategoryNonprofit)))
	require.Equal(t, []string{"github", "nsf-reu"}, names(reg.Select(opportunity.CategoryResearch)))
	require.Equal(t, []string{"github"}, names(reg.Select(opportunity.CategoryHackathon)))
	require.Equal(t, []string{"volunteerconnector", "github", "nsf-reu"}, names(reg.Select("")))

	a, ok := reg.Lookup("nsf-reu")
	require.True(t, ok)
	require.Equal(t, "nsf-reu", a.Name())
	_, ok = reg.Lookup("missing")
	require.False(t, ok)
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	require.NoError(t, reg.Register(stubAdapter{name: "github"}))
	require.Error(t, reg.Register(stubAdapter{name: "github"}))
}

func TestHintsDefaults(t *testing.T) {
	t.Parallel()

	require.Equal(t, 1, Hints{}.PageOrDefault())
	require.Equal(t, 3, Hints{Page: 3}.PageOrDefault())
	require.Equal(t, 20, Hints{}.PageSizeOrDefault(20))
	require.Equal(t, 7, Hints{PageSize: 7}.PageSizeOrDefault(20))
}

func TestFallbackRecover(t *testing.T) {
	t.Parallel()

	cause := fmt.Errorf("%w: dial tcp", opportunity.ErrProviderUnavailable)
	catalog := func() []opportunity.Opportunity {
		return []opportunity.Opportunity{{Title: "Example", Tags: []string{"curated"}}}
	}

	records, err := Fallback{Catalog: catalog}.Recover("remoteok", cause, zap.NewNop())
	require.Nil(t, records)
	require.True(t, errors.Is(err, opportunity.ErrProviderUnavailable))

	records, err = Fallback{Enabled: true, Catalog: catalog}.Recover("remoteok", cause, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "remoteok", records[0].Source)
	require.Equal(t, []string{"curated", opportunity.TagStaticFallback}, records[0].Tags)

	again := MarkStatic("remoteok", records)
	require.Equal(t, []string{"curated", opportunity.TagStaticFallback}, again[0].Tags)
}
