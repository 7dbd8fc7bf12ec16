package memory

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/JakeFAU/opportunity-discovery/internal/filter"
	"github.com/JakeFAU/opportunity-discovery/internal/opportunity"
)

func TestOpportunityStoreLifecycle(t *testing.T) {
	t.Parallel()

	store := NewOpportunityStore(nil)
	ctx := context.Background()
	opp := opportunity.Opportunity{ID: "id-1", Title: "Data Analyst Intern", Source: "github", ExternalID: "42", Skills: []string{"SQL"}}

	if _, err := store.Insert(ctx, opp); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if _, err := store.Insert(ctx, opportunity.Opportunity{ID: "id-2", Source: "github", ExternalID: "42"}); err == nil {
		t.Fatal("expected duplicate key error")
	}

	found, err := store.FindByKey(ctx, opportunity.Key{Source: "github", ExternalID: "42"})
	if err != nil || found.ID != "id-1" {
		t.Fatalf("FindByKey() = %+v, %v", found, err)
	}
	found.Skills[0] = "mutated"
	again, _ := store.Get(ctx, "id-1")
	if again.Skills[0] != "SQL" {
		t.Fatal("expected reads to return copies")
	}

	if _, err := store.FindByKey(ctx, opportunity.Key{Source: "github"}); !errors.Is(err, opportunity.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown key, got %v", err)
	}

	opp.Title = "Senior Data Analyst Intern"
	if _, err := store.Update(ctx, opp); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	got, _ := store.Get(ctx, "id-1")
	if got.Title != "Senior Data Analyst Intern" {
		t.Fatalf("expected updated title, got %q", got.Title)
	}
	if _, err := store.Update(ctx, opportunity.Opportunity{ID: "missing"}); !errors.Is(err, opportunity.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if n, _ := store.Count(ctx); n != 1 {
		t.Fatalf("expected count 1, got %d", n)
	}
}

func TestOpportunityStoreAllowsRecordsWithoutExternalID(t *testing.T) {
	t.Parallel()

	store := NewOpportunityStore(nil)
	ctx := context.Background()
	for _, id := range []string{"a", "b"} {
		if _, err := store.Insert(ctx, opportunity.Opportunity{ID: id, Source: "nsf-reu"}); err != nil {
			t.Fatalf("Insert(%s) error = %v", id, err)
		}
	}
	if n, _ := store.Count(ctx); n != 2 {
		t.Fatalf("expected both records stored, got %d", n)
	}
}

func TestOpportunityStoreQueryOrdersNewestFirst(t *testing.T) {
	t.Parallel()

	store := NewOpportunityStore(filter.New(rand.New(rand.NewPCG(1, 1))))
	ctx := context.Background()
	older := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.AddDate(0, 1, 0)
	records := []opportunity.Opportunity{
		{ID: "1", Title: "Old", Category: opportunity.CategoryInternship, PostedAt: &older},
		{ID: "2", Title: "Undated", Category: opportunity.CategoryInternship},
		{ID: "3", Title: "New", Category: opportunity.CategoryInternship, PostedAt: &newer},
		{ID: "4", Title: "Research", Category: opportunity.CategoryResearch},
	}
	for _, r := range records {
		if _, err := store.Insert(ctx, r); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	page, err := store.Query(ctx, opportunity.Filter{Category: opportunity.CategoryInternship, Limit: 10})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if page.Total != 3 || len(page.Opportunities) != 3 {
		t.Fatalf("unexpected page %+v", page)
	}
	want := []string{"New", "Old", "Undated"}
	for i, title := range want {
		if page.Opportunities[i].Title != title {
			t.Fatalf("position %d: want %q got %q", i, title, page.Opportunities[i].Title)
		}
	}
}

func TestSavedStoreLifecycle(t *testing.T) {
	t.Parallel()

	store := NewSavedStore()
	ctx := context.Background()
	first := opportunity.SavedOpportunity{ID: "s1", UserID: "u1", OpportunityID: "o1", Note: "apply", SavedAt: time.Unix(100, 0)}

	if _, err := store.Save(ctx, first); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	updated, err := store.Save(ctx, opportunity.SavedOpportunity{ID: "s2", UserID: "u1", OpportunityID: "o1", Note: "follow up", SavedAt: time.Unix(200, 0)})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if updated.ID != "s1" || updated.Note != "follow up" || !updated.SavedAt.Equal(time.Unix(100, 0)) {
		t.Fatalf("expected note refresh on the existing bookmark, got %+v", updated)
	}
	if _, err := store.Save(ctx, opportunity.SavedOpportunity{ID: "s3", UserID: "u1", OpportunityID: "o2", SavedAt: time.Unix(300, 0)}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	list, _ := store.ListSaved(ctx, "u1")
	if len(list) != 2 || list[0].OpportunityID != "o2" {
		t.Fatalf("unexpected list %+v", list)
	}
	if other, _ := store.ListSaved(ctx, "u2"); len(other) != 0 {
		t.Fatalf("expected no bookmarks for u2, got %+v", other)
	}

	if err := store.Delete(ctx, "u1", "o1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := store.Delete(ctx, "u1", "o1"); !errors.Is(err, opportunity.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}
