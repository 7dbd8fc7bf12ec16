package aggregate

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/opportunity-discovery/internal/opportunity"
	"github.com/JakeFAU/opportunity-discovery/internal/source"
)

func TestCollectToleratesPartialFailure(t *testing.T) {
	t.Parallel()

	ok1 := &fakeAdapter{name: "github", records: []opportunity.Opportunity{rec("github", "1", "a"), rec("github", "2", "b")}}
	broken := &fakeAdapter{name: "remoteok", err: unavailable("remoteok")}
	ok2 := &fakeAdapter{name: "nsf-reu", records: []opportunity.Opportunity{rec("", "r1", "c")}}
	panics := &fakeAdapter{name: "challenge-gov", panicMsg: "nil map"}

	c := NewCoordinator(staticSelector{ok1, broken, ok2, panics}, time.Second, zap.NewNop())
	result := c.Collect(context.Background(), source.Hints{})

	require.Len(t, result.Records, 3)
	require.Equal(t, []string{"a", "b", "c"}, []string{result.Records[0].Title, result.Records[1].Title, result.Records[2].Title})
	require.Equal(t, "nsf-reu", result.Records[2].Source, "missing source is stamped with the adapter name")
	require.ElementsMatch(t, []string{"remoteok", "challenge-gov"}, result.Failed())
	require.False(t, result.AllFailed())

	require.Len(t, result.Outcomes, 4)
	require.Equal(t, 2, result.Outcomes[0].Records)
	require.ErrorIs(t, result.Outcomes[1].Err, opportunity.ErrProviderUnavailable)
	require.ErrorIs(t, result.Outcomes[3].Err, opportunity.ErrProviderUnavailable)
	require.Contains(t, result.Outcomes[3].Err.Error(), "panic")
}

func TestCollectRunsAdaptersConcurrently(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	a := &fakeAdapter{name: "a", block: release, records: []opportunity.Opportunity{rec("a", "1", "x")}}
	b := &fakeAdapter{name: "b", block: release, records: []opportunity.Opportunity{rec("b", "1", "y")}}

	c := NewCoordinator(staticSelector{a, b}, time.Second, zap.NewNop())
	var (
		wg     sync.WaitGroup
		result Result
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		result = c.Collect(context.Background(), source.Hints{})
	}()

	require.Eventually(t, func() bool {
		return a.calls.Load() == 1 && b.calls.Load() == 1
	}, time.Second, 5*time.Millisecond, "both adapters should be in flight at once")
	close(release)
	wg.Wait()
	require.Len(t, result.Records, 2)
}

func TestCollectAppliesPerSourceTimeout(t *testing.T) {
	t.Parallel()

	slow := &fakeAdapter{name: "slow", block: make(chan struct{})}
	fast := &fakeAdapter{name: "fast", records: []opportunity.Opportunity{rec("fast", "1", "x")}}

	c := NewCoordinator(staticSelector{slow, fast}, 20*time.Millisecond, zap.NewNop())
	result := c.Collect(context.Background(), source.Hints{})
	require.Len(t, result.Records, 1)
	require.ErrorIs(t, result.Outcomes[0].Err, context.DeadlineExceeded)
}

func TestCollectSelectsByCategory(t *testing.T) {
	t.Parallel()

	reg := source.NewRegistry()
	volunteer := &fakeAdapter{name: "volunteerconnector", categories: []opportunity.Category{opportunity.CategoryVolunteer}}
	github := &fakeAdapter{name: "github", categories: []opportunity.Category{opportunity.CategoryInternship}}
	research := &fakeAdapter{name: "nsf-reu", categories: []opportunity.Category{opportunity.CategoryResearch}}
	require.NoError(t, reg.Register(volunteer))
	require.NoError(t, reg.Register(github, source.Always()))
	require.NoError(t, reg.Register(research))

	c := NewCoordinator(reg, time.Second, zap.NewNop())
	result := c.Collect(context.Background(), source.Hints{Category: opportunity.CategoryResearch})

	require.Len(t, result.Outcomes, 2)
	require.Zero(t, volunteer.calls.Load())
	require.Equal(t, int32(1), github.calls.Load())
	require.Equal(t, int32(1), research.calls.Load())
}

func TestCollectAllFailed(t *testing.T) {
	t.Parallel()

	c := NewCoordinator(staticSelector{
		&fakeAdapter{name: "a", err: unavailable("a")},
		&fakeAdapter{name: "b", err: unavailable("b")},
	}, time.Second, zap.NewNop())
	result := c.Collect(context.Background(), source.Hints{})
	require.Empty(t, result.Records)
	require.True(t, result.AllFailed())

	empty := NewCoordinator(staticSelector{}, time.Second, zap.NewNop()).Collect(context.Background(), source.Hints{})
	require.False(t, empty.AllFailed())
}

func TestCollectBoundsParallelism(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	adapters := make(staticSelector, 0, 5)
	fakes := make([]*fakeAdapter, 0, 5)
	for i := range 5 {
		name := fmt.Sprintf("s%d", i)
		f := &fakeAdapter{name: name, block: release, records: []opportunity.Opportunity{rec(name, "1", "x")}}
		fakes = append(fakes, f)
		adapters = append(adapters, f)
	}
	started := func() int {
		n := 0
		for _, f := range fakes {
			n += int(f.calls.Load())
		}
		return n
	}

	c := NewCoordinator(adapters, time.Second, zap.NewNop())
	c.SetMaxParallel(2)

	done := make(chan Result, 1)
	go func() { done <- c.Collect(context.Background(), source.Hints{}) }()

	require.Eventually(t, func() bool { return started() == 2 }, time.Second, 5*time.Millisecond)
	require.Never(t, func() bool { return started() > 2 }, 50*time.Millisecond, 5*time.Millisecond)
	close(release)
	result := <-done
	require.Len(t, result.Records, 5)
	require.Empty(t, result.Failed())
}
