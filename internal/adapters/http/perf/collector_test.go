package perf

import (
	"sync"
	"testing"
	"time"
)

func TestCollector_SnapshotGroupsByKind(t *testing.T) {
	c := NewCollector(100)
	now := time.Now()

	c.Record(Entry{Kind: KindRequest, Name: "GET /api/classes/{id}", DurationMs: 10, At: now})
	c.Record(Entry{Kind: KindRequest, Name: "GET /api/classes/{id}", DurationMs: 30, At: now})
	c.Record(Entry{Kind: KindQuery, Name: "ExecContext", DurationMs: 5, At: now})
	c.Record(Entry{Kind: KindPlatform, Name: "platform.FetchClass", DurationMs: 80, Failed: true, At: now})

	snap := c.Snapshot(now.Add(-time.Minute), 10)
	if snap.Written != 4 {
		t.Errorf("Written = %d, want 4", snap.Written)
	}
	req := snap.Kinds[KindRequest]
	if req.Count != 2 || len(req.Slowest) != 1 {
		t.Fatalf("request snapshot = %+v", req)
	}
	if req.Slowest[0].AvgMs != 20 || req.Slowest[0].MaxMs != 30 {
		t.Errorf("request stat = %+v, want avg 20 max 30", req.Slowest[0])
	}
	if snap.Kinds[KindQuery].Count != 1 {
		t.Errorf("query count = %d, want 1", snap.Kinds[KindQuery].Count)
	}
	if got := snap.Kinds[KindPlatform].Slowest[0].Failures; got != 1 {
		t.Errorf("platform failures = %d, want 1", got)
	}
}

func TestCollector_RingOverwritesOldest(t *testing.T) {
	c := NewCollector(3)
	now := time.Now()
	for i := 0; i < 5; i++ {
		c.Record(Entry{Kind: KindRequest, Name: "GET /x", DurationMs: float64(i), At: now})
	}

	if c.Written() != 5 {
		t.Errorf("Written = %d, want 5", c.Written())
	}
	stat := c.Snapshot(now.Add(-time.Minute), 10).Kinds[KindRequest].Slowest[0]
	if stat.Count != 3 {
		t.Errorf("Count = %d, want 3", stat.Count)
	}
	if stat.AvgMs != 3 {
		t.Errorf("AvgMs = %v, want 3 (entries 2,3,4)", stat.AvgMs)
	}
}

func TestCollector_Percentiles(t *testing.T) {
	c := NewCollector(200)
	now := time.Now()
	for i := 1; i <= 100; i++ {
		c.Record(Entry{Kind: KindRequest, Name: "GET /p", DurationMs: float64(i), At: now})
	}

	ks := c.Snapshot(now.Add(-time.Minute), 10).Kinds[KindRequest]
	if ks.P50Ms < 49 || ks.P50Ms > 51 {
		t.Errorf("P50 = %v, want ~50", ks.P50Ms)
	}
	if ks.P95Ms < 94 || ks.P95Ms > 96 {
		t.Errorf("P95 = %v, want ~95", ks.P95Ms)
	}
}

func TestCollector_SnapshotExcludesOlderEntries(t *testing.T) {
	c := NewCollector(100)
	now := time.Now()
	c.Record(Entry{Kind: KindQuery, Name: "old", DurationMs: 100, At: now.Add(-2 * time.Hour)})
	c.Record(Entry{Kind: KindQuery, Name: "new", DurationMs: 1, At: now})

	ks := c.Snapshot(now.Add(-time.Hour), 10).Kinds[KindQuery]
	if ks.Count != 1 || ks.Slowest[0].Name != "new" {
		t.Errorf("snapshot = %+v, want only the recent entry", ks)
	}
}

func TestCollector_TopNOrdering(t *testing.T) {
	c := NewCollector(100)
	now := time.Now()
	c.Record(Entry{Kind: KindPlatform, Name: "fast", DurationMs: 1, At: now})
	c.Record(Entry{Kind: KindPlatform, Name: "slow", DurationMs: 50, At: now})
	c.Record(Entry{Kind: KindPlatform, Name: "mid", DurationMs: 10, At: now})

	top := c.Snapshot(now.Add(-time.Minute), 2).Kinds[KindPlatform].Slowest
	if len(top) != 2 || top[0].Name != "slow" || top[1].Name != "mid" {
		t.Errorf("top = %+v, want [slow mid]", top)
	}
}

func TestCollector_NilIgnoresRecord(t *testing.T) {
	var c *Collector
	c.Record(Entry{Kind: KindRequest, Name: "x", At: time.Now()})
}

func TestCollector_ConcurrentRecord(t *testing.T) {
	c := NewCollector(64)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				c.Record(Entry{Kind: KindQuery, Name: "q", DurationMs: 1, At: time.Now()})
			}
		}()
	}
	wg.Wait()
	if c.Written() != 800 {
		t.Errorf("Written = %d, want 800", c.Written())
	}
}
