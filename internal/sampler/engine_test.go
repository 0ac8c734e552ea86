package sampler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"testing"
)

type testItem struct {
	ID  int
	Key int64
}

var errIndexDown = errors.New("index RandomPoolRandKeyIndex does not exist")

// fakeSource serves ring and scan reads from a fixed item set, paginating
// with at most pageCap items per read.
type fakeSource struct {
	items   []testItem
	pageCap int

	ringErr error
	pageErr error

	ringCalls []Op
	pageCalls int
}

func newFakeSource(n int) *fakeSource {
	s := &fakeSource{pageCap: 4}
	for i := 0; i < n; i++ {
		// Spread keys deterministically over the full range; ids stay dense.
		key := int64(i)*37_777_779%RandKeyMax + 1
		s.items = append(s.items, testItem{ID: i, Key: key})
	}
	return s
}

func (s *fakeSource) RingRange(_ context.Context, op Op, pivot int64, limit int, token string) ([]testItem, string, error) {
	if s.ringErr != nil {
		return nil, "", s.ringErr
	}
	s.ringCalls = append(s.ringCalls, op)

	var eligible []testItem
	for _, item := range s.items {
		if (op == OpGE && item.Key >= pivot) || (op == OpLT && item.Key < pivot) {
			eligible = append(eligible, item)
		}
	}
	sort.Slice(eligible, func(i, j int) bool { return eligible[i].Key < eligible[j].Key })

	return s.page(eligible, limit, token)
}

func (s *fakeSource) Page(_ context.Context, size int, token string) ([]testItem, string, error) {
	if s.pageErr != nil {
		return nil, "", s.pageErr
	}
	s.pageCalls++
	return s.page(append([]testItem(nil), s.items...), size, token)
}

func (s *fakeSource) page(eligible []testItem, limit int, token string) ([]testItem, string, error) {
	start := 0
	if token != "" {
		var err error
		if start, err = strconv.Atoi(token); err != nil {
			return nil, "", fmt.Errorf("bad token %q", token)
		}
	}
	n := limit
	if n > s.pageCap {
		n = s.pageCap
	}
	if n > len(eligible)-start {
		n = len(eligible) - start
	}
	if n <= 0 {
		return nil, "", nil
	}
	next := ""
	if start+n < len(eligible) {
		next = strconv.Itoa(start + n)
	}
	return eligible[start : start+n], next, nil
}

func classify(err error) bool { return errors.Is(err, errIndexDown) }

func newTestEngine(src *fakeSource, cfg Config) *Engine[testItem] {
	if cfg.Rand == nil {
		cfg.Rand = NewSeededRand(99)
	}
	if cfg.IndexUnavailable == nil {
		cfg.IndexUnavailable = classify
	}
	return New(src, cfg)
}

func uniqueIDs(t *testing.T, items []testItem) map[int]bool {
	t.Helper()
	ids := make(map[int]bool, len(items))
	for _, item := range items {
		if ids[item.ID] {
			t.Fatalf("item %d returned twice", item.ID)
		}
		ids[item.ID] = true
	}
	return ids
}

func TestSampleReturnsExactLimit(t *testing.T) {
	src := newFakeSource(100)
	engine := newTestEngine(src, Config{})

	items, err := engine.Sample(context.Background(), 10, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 10 {
		t.Fatalf("expected 10 items, got %d", len(items))
	}
	uniqueIDs(t, items)
	if src.pageCalls != 0 {
		t.Fatalf("scan path must not run when the index works")
	}
}

func TestSmallPartitionReturnsAll(t *testing.T) {
	src := newFakeSource(5)
	engine := newTestEngine(src, Config{})

	items, err := engine.Sample(context.Background(), 50, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 5 {
		t.Fatalf("expected all 5 items, got %d", len(items))
	}
	uniqueIDs(t, items)
}

func TestSmallPartitionReturnsAllOnScanPath(t *testing.T) {
	src := newFakeSource(5)
	src.ringErr = errIndexDown
	engine := newTestEngine(src, Config{})

	items, err := engine.Sample(context.Background(), 50, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 5 {
		t.Fatalf("expected all 5 items via scan, got %d", len(items))
	}
}

func TestEmptyPartition(t *testing.T) {
	engine := newTestEngine(newFakeSource(0), Config{})

	items, err := engine.Sample(context.Background(), 10, nil)
	if err != nil {
		t.Fatalf("empty partition must not error: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no items, got %d", len(items))
	}
}

// With every key far below the pivot, the first leg comes back empty and the
// wraparound leg must still fill the request.
func TestWraparound(t *testing.T) {
	src := newFakeSource(0)
	for i := 0; i < 8; i++ {
		src.items = append(src.items, testItem{ID: i, Key: int64(i) + 1})
	}
	engine := newTestEngine(src, Config{})

	items, err := engine.Sample(context.Background(), 8, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 8 {
		t.Fatalf("expected 8 items after wraparound, got %d", len(items))
	}

	sawWrap := false
	for _, op := range src.ringCalls {
		if op == OpLT {
			sawWrap = true
		}
	}
	if !sawWrap {
		t.Fatalf("expected the wraparound leg to run, ops: %v", src.ringCalls)
	}
}

func TestRingPaginationFollowsTokens(t *testing.T) {
	src := newFakeSource(30)
	src.pageCap = 3
	engine := newTestEngine(src, Config{})

	items, err := engine.Sample(context.Background(), 30, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 30 {
		t.Fatalf("expected 30 items across pages, got %d", len(items))
	}
	if len(src.ringCalls) < 10 {
		t.Fatalf("expected many paginated ring reads, got %d", len(src.ringCalls))
	}
	uniqueIDs(t, items)
}

func TestFallbackOnClassifiedError(t *testing.T) {
	src := newFakeSource(20)
	src.ringErr = fmt.Errorf("query index: %w", errIndexDown)

	fallbacks := 0
	engine := newTestEngine(src, Config{
		OnFallback: func(error) { fallbacks++ },
	})

	items, err := engine.Sample(context.Background(), 5, nil)
	if err != nil {
		t.Fatalf("classified error must not surface: %v", err)
	}
	if len(items) != 5 {
		t.Fatalf("expected 5 items from the scan path, got %d", len(items))
	}
	if fallbacks != 1 {
		t.Fatalf("fallback hook must fire exactly once, fired %d times", fallbacks)
	}
	if src.pageCalls == 0 {
		t.Fatalf("scan path did not run")
	}
}

func TestFatalRingErrorPropagates(t *testing.T) {
	src := newFakeSource(20)
	src.ringErr = errors.New("provisioned throughput exceeded")
	engine := newTestEngine(src, Config{})

	if _, err := engine.Sample(context.Background(), 5, nil); err == nil {
		t.Fatalf("expected the store fault to propagate")
	}
	if src.pageCalls != 0 {
		t.Fatalf("unclassified errors must not trigger the scan fallback")
	}
}

func TestFatalScanErrorPropagates(t *testing.T) {
	src := newFakeSource(20)
	src.ringErr = errIndexDown
	src.pageErr = errors.New("connection reset")
	engine := newTestEngine(src, Config{})

	if _, err := engine.Sample(context.Background(), 5, nil); err == nil {
		t.Fatalf("expected the scan fault to propagate")
	}
}

func TestPredicateNarrowsCandidateWindow(t *testing.T) {
	src := newFakeSource(100)
	engine := newTestEngine(src, Config{CandidateLimit: 10})

	// Everything fails the predicate: an empty result, not an error, even
	// though the rest of the partition was never inspected.
	items, err := engine.Sample(context.Background(), 1, func(testItem) bool { return false })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty result, got %d items", len(items))
	}

	// A permissive predicate keeps the sample at the requested size.
	items, err = engine.Sample(context.Background(), 1, func(testItem) bool { return true })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected one item, got %d", len(items))
	}
}

func TestLimitClamping(t *testing.T) {
	src := newFakeSource(100)
	engine := newTestEngine(src, Config{MaxLimit: 50})

	for _, limit := range []int{0, -7} {
		items, err := engine.Sample(context.Background(), limit, nil)
		if err != nil {
			t.Fatalf("unexpected error for limit %d: %v", limit, err)
		}
		if len(items) != 1 {
			t.Fatalf("limit %d must clamp to 1, got %d items", limit, len(items))
		}
	}

	items, err := engine.Sample(context.Background(), 500, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 50 {
		t.Fatalf("limit 500 must clamp to 50, got %d items", len(items))
	}
}
