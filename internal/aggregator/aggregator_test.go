package aggregator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ricomanifesto/sentrydigest/pkg/feedtypes"
	"github.com/ricomanifesto/sentrydigest/pkg/providers"
)

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// stubProvider serves canned items keyed by source URL
type stubProvider struct {
	items map[string][]feedtypes.NewsItem
	errs  map[string]error
	block map[string]bool
}

func (s *stubProvider) Fetch(ctx context.Context, src feedtypes.Source) ([]feedtypes.NewsItem, error) {
	if s.block[src.URL] {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err := s.errs[src.URL]; err != nil {
		return nil, err
	}
	return s.items[src.URL], nil
}

func newStubRegistry(t *testing.T, stub *stubProvider) *providers.ProviderRegistry {
	t.Helper()

	reg := providers.NewProviderRegistry()
	err := reg.Register(&providers.ProviderInfo{
		Kind:    "stub",
		Factory: func(providers.Options) (providers.Provider, error) { return stub, nil },
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	return reg
}

func source(name string) feedtypes.Source {
	return feedtypes.Source{Name: name, URL: "https://" + name + ".example.com/feed", Kind: "stub", Enabled: true}
}

// makeItems returns n items from src, the first published at start and
// each following one an hour earlier
func makeItems(src string, n int, start time.Time) []feedtypes.NewsItem {
	items := make([]feedtypes.NewsItem, n)
	for i := range items {
		items[i] = feedtypes.NewsItem{
			Title:       fmt.Sprintf("%s item %d", src, i),
			Link:        fmt.Sprintf("https://%s.example.com/%d", src, i),
			PublishedAt: start.Add(-time.Duration(i) * time.Hour),
			SourceName:  src,
		}
	}
	return items
}

func assertSorted(t *testing.T, digest feedtypes.Digest) {
	t.Helper()
	for i := 1; i < len(digest); i++ {
		if digest[i].PublishedAt.After(digest[i-1].PublishedAt) {
			t.Errorf("item %d (%v) is newer than item %d (%v)", i, digest[i].PublishedAt, i-1, digest[i-1].PublishedAt)
		}
	}
}

func TestAggregate(t *testing.T) {
	a, b := source("a"), source("b")

	tests := []struct {
		name      string
		stub      *stubProvider
		sources   []feedtypes.Source
		maxItems  int
		wantLen   int
		wantFirst string
	}{
		{
			name: "truncates to most recent",
			stub: &stubProvider{items: map[string][]feedtypes.NewsItem{
				a.URL: makeItems("a", 20, baseTime),
				b.URL: makeItems("b", 20, baseTime.Add(-30*time.Minute)),
			}},
			sources:   []feedtypes.Source{a, b},
			maxItems:  30,
			wantLen:   30,
			wantFirst: "a item 0",
		},
		{
			name: "fewer items than limit",
			stub: &stubProvider{items: map[string][]feedtypes.NewsItem{
				a.URL: makeItems("a", 3, baseTime),
				b.URL: makeItems("b", 2, baseTime.Add(2*time.Hour)),
			}},
			sources:   []feedtypes.Source{a, b},
			maxItems:  30,
			wantLen:   5,
			wantFirst: "b item 0",
		},
		{
			name: "failing source contributes nothing",
			stub: &stubProvider{
				items: map[string][]feedtypes.NewsItem{b.URL: makeItems("b", 5, baseTime)},
				errs:  map[string]error{a.URL: errors.New("connection refused")},
			},
			sources:   []feedtypes.Source{a, b},
			maxItems:  30,
			wantLen:   5,
			wantFirst: "b item 0",
		},
		{
			name: "all sources fail",
			stub: &stubProvider{errs: map[string]error{
				a.URL: errors.New("boom"),
				b.URL: errors.New("boom"),
			}},
			sources:  []feedtypes.Source{a, b},
			maxItems: 30,
			wantLen:  0,
		},
		{
			name:     "no sources",
			stub:     &stubProvider{},
			sources:  []feedtypes.Source{},
			maxItems: 30,
			wantLen:  0,
		},
		{
			name: "zero limit",
			stub: &stubProvider{items: map[string][]feedtypes.NewsItem{
				a.URL: makeItems("a", 3, baseTime),
			}},
			sources:  []feedtypes.Source{a},
			maxItems: 0,
			wantLen:  0,
		},
		{
			name: "disabled source skipped",
			stub: &stubProvider{items: map[string][]feedtypes.NewsItem{
				a.URL: makeItems("a", 3, baseTime),
				b.URL: makeItems("b", 3, baseTime.Add(time.Hour)),
			}},
			sources:   []feedtypes.Source{a, {Name: "b", URL: b.URL, Kind: "stub", Enabled: false}},
			maxItems:  30,
			wantLen:   3,
			wantFirst: "a item 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := New(newStubRegistry(t, tt.stub), providers.Options{}, time.Second)

			digest := agg.Aggregate(context.Background(), tt.sources, tt.maxItems)

			if digest == nil {
				t.Fatal("Aggregate() returned nil digest")
			}
			if len(digest) != tt.wantLen {
				t.Fatalf("Aggregate() returned %d items, want %d", len(digest), tt.wantLen)
			}
			assertSorted(t, digest)
			if tt.wantFirst != "" && digest[0].Title != tt.wantFirst {
				t.Errorf("first item = %q, want %q", digest[0].Title, tt.wantFirst)
			}
		})
	}
}

func TestAggregate_TieBreakFollowsSourceOrder(t *testing.T) {
	a, b := source("a"), source("b")
	stub := &stubProvider{items: map[string][]feedtypes.NewsItem{
		a.URL: {{Title: "a1", PublishedAt: baseTime, SourceName: "a"}, {Title: "a2", PublishedAt: baseTime, SourceName: "a"}},
		b.URL: {{Title: "b1", PublishedAt: baseTime, SourceName: "b"}},
	}}
	agg := New(newStubRegistry(t, stub), providers.Options{}, time.Second)

	for range 5 {
		digest := agg.Aggregate(context.Background(), []feedtypes.Source{b, a}, 10)

		var titles []string
		for _, item := range digest {
			titles = append(titles, item.Title)
		}
		want := []string{"b1", "a1", "a2"}
		if fmt.Sprint(titles) != fmt.Sprint(want) {
			t.Fatalf("order = %v, want %v", titles, want)
		}
	}
}

func TestAggregate_TimeoutTreatedAsFailure(t *testing.T) {
	slow, fast := source("slow"), source("fast")
	stub := &stubProvider{
		items: map[string][]feedtypes.NewsItem{fast.URL: makeItems("fast", 4, baseTime)},
		block: map[string]bool{slow.URL: true},
	}
	agg := New(newStubRegistry(t, stub), providers.Options{}, 50*time.Millisecond)

	start := time.Now()
	digest := agg.Aggregate(context.Background(), []feedtypes.Source{slow, fast}, 30)

	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Aggregate() took %v, timeout was not applied", elapsed)
	}
	if len(digest) != 4 {
		t.Fatalf("Aggregate() returned %d items, want 4", len(digest))
	}
	for _, item := range digest {
		if item.SourceName != "fast" {
			t.Errorf("unexpected item from %q", item.SourceName)
		}
	}
}

// stuckProvider ignores cancellation entirely
type stuckProvider struct{ release chan struct{} }

func (s stuckProvider) Fetch(context.Context, feedtypes.Source) ([]feedtypes.NewsItem, error) {
	<-s.release
	return nil, nil
}

func TestAggregate_AbandonsStuckProvider(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	reg := providers.NewProviderRegistry()
	if err := reg.Register(&providers.ProviderInfo{
		Kind:    "stub",
		Factory: func(providers.Options) (providers.Provider, error) { return stuckProvider{release: release}, nil },
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	agg := New(reg, providers.Options{}, 20*time.Millisecond)
	digest := agg.Aggregate(context.Background(), []feedtypes.Source{source("stuck")}, 30)

	if len(digest) != 0 {
		t.Errorf("Aggregate() returned %d items, want 0", len(digest))
	}
}

// gateProvider holds every fetch until total fetches are in flight at once
type gateProvider struct {
	total  int32
	active atomic.Int32
	peak   atomic.Int32
	once   sync.Once
	open   chan struct{}
}

func (p *gateProvider) Fetch(ctx context.Context, src feedtypes.Source) ([]feedtypes.NewsItem, error) {
	n := p.active.Add(1)
	defer p.active.Add(-1)

	for {
		peak := p.peak.Load()
		if n <= peak || p.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	if n == p.total {
		p.once.Do(func() { close(p.open) })
	}

	select {
	case <-p.open:
		return makeItems(src.Name, 1, baseTime), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestAggregate_LaunchesAllFetchesTogether(t *testing.T) {
	const count = 25

	gate := &gateProvider{total: count, open: make(chan struct{})}
	reg := providers.NewProviderRegistry()
	if err := reg.Register(&providers.ProviderInfo{
		Kind:    "stub",
		Factory: func(providers.Options) (providers.Provider, error) { return gate, nil },
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	sources := make([]feedtypes.Source, count)
	for i := range sources {
		sources[i] = source(fmt.Sprintf("s%02d", i))
	}

	agg := New(reg, providers.Options{}, 2*time.Second)
	digest := agg.Aggregate(context.Background(), sources, 100)

	if got := gate.peak.Load(); got != count {
		t.Errorf("peak concurrent fetches = %d, want %d", got, count)
	}
	if len(digest) != count {
		t.Errorf("Aggregate() returned %d items, want %d", len(digest), count)
	}
}

// captureLogs routes the default logger into a buffer for the rest of the test
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestAggregate_LogsInterruptionOnCancel(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	reg := providers.NewProviderRegistry()
	if err := reg.Register(&providers.ProviderInfo{
		Kind:    "stub",
		Factory: func(providers.Options) (providers.Provider, error) { return stuckProvider{release: release}, nil },
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	logs := captureLogs(t)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)
	defer cancel()

	agg := New(reg, providers.Options{}, 10*time.Second)
	digest := agg.Aggregate(ctx, []feedtypes.Source{source("stuck")}, 30)

	if len(digest) != 0 {
		t.Errorf("Aggregate() returned %d items, want 0", len(digest))
	}
	out := logs.String()
	if !strings.Contains(out, "Source fetch interrupted") {
		t.Errorf("expected an interruption log entry, got:\n%s", out)
	}
	if strings.Contains(out, "Source fetch timed out") {
		t.Errorf("cancellation was logged as a timeout:\n%s", out)
	}
}

func TestAggregate_UnknownKindYieldsNothing(t *testing.T) {
	agg := New(providers.NewProviderRegistry(), providers.Options{}, time.Second)
	src := feedtypes.Source{Name: "mystery", URL: "https://m.example.com", Kind: "carrier-pigeon", Enabled: true}

	digest := agg.Aggregate(context.Background(), []feedtypes.Source{src}, 30)

	if len(digest) != 0 {
		t.Errorf("Aggregate() returned %d items, want 0", len(digest))
	}
}

func TestNew_Defaults(t *testing.T) {
	agg := New(nil, providers.Options{}, 0)

	if agg.registry != providers.DefaultRegistry {
		t.Error("New(nil) should use the default provider registry")
	}
	if agg.timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", agg.timeout, DefaultTimeout)
	}
}
