// Package perf keeps a bounded in-memory record of how long console
// requests, sqlite queries and platform round trips take.
package perf

import (
	"math"
	"sort"
	"sync"
	"time"
)

// DefaultRingSize is the capacity used when NewCollector is given none.
const DefaultRingSize = 4096

// Kind groups timings by where the time was spent.
type Kind string

const (
	KindRequest  Kind = "request"
	KindQuery    Kind = "query"
	KindPlatform Kind = "platform"
)

// Entry is one timed operation.
type Entry struct {
	Kind       Kind
	Name       string // "GET /api/classes/{id}", "QueryContext", "platform.FetchClass"
	Failed     bool
	DurationMs float64
	At         time.Time
}

// Collector is a ring buffer of entries. Once full the oldest entry is
// overwritten; nothing is aggregated until Snapshot is called.
type Collector struct {
	mu      sync.Mutex
	ring    []Entry
	next    int
	written int64
}

// NewCollector returns a collector holding at most size entries.
// PRE: none
// POST: Returns a collector with pre-allocated storage
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{ring: make([]Entry, size)}
}

// Record stores e. Safe for concurrent use; a nil Collector ignores it.
func (c *Collector) Record(e Entry) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.ring[c.next] = e
	c.next = (c.next + 1) % len(c.ring)
	c.written++
	c.mu.Unlock()
}

// Written returns how many entries were ever recorded, including any that
// have since been overwritten.
func (c *Collector) Written() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.written
}

// Stat aggregates the entries sharing one Name.
type Stat struct {
	Name     string  `json:"name"`
	Count    int     `json:"count"`
	Failures int     `json:"failures"`
	AvgMs    float64 `json:"avgMs"`
	MaxMs    float64 `json:"maxMs"`
	totalMs  float64
}

// KindSnapshot summarises one Kind.
type KindSnapshot struct {
	Count   int     `json:"count"`
	P50Ms   float64 `json:"p50Ms"`
	P95Ms   float64 `json:"p95Ms"`
	Slowest []Stat  `json:"slowest"`
}

// Snapshot is the aggregate view served to admins.
type Snapshot struct {
	Written int64                 `json:"written"`
	Kinds   map[Kind]KindSnapshot `json:"kinds"`
}

// Snapshot aggregates entries recorded at or after since, listing the topN
// slowest names per kind by average duration.
// PRE: topN >= 0
// POST: Returns percentiles and top-N lists per kind present in the window
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	c.mu.Lock()
	buf := make([]Entry, len(c.ring))
	copy(buf, c.ring)
	written := c.written
	c.mu.Unlock()

	durations := map[Kind][]float64{}
	stats := map[Kind]map[string]*Stat{}
	for _, e := range buf {
		if e.At.IsZero() || e.At.Before(since) {
			continue
		}
		durations[e.Kind] = append(durations[e.Kind], e.DurationMs)
		byName, ok := stats[e.Kind]
		if !ok {
			byName = map[string]*Stat{}
			stats[e.Kind] = byName
		}
		s, ok := byName[e.Name]
		if !ok {
			s = &Stat{Name: e.Name}
			byName[e.Name] = s
		}
		s.Count++
		s.totalMs += e.DurationMs
		s.MaxMs = math.Max(s.MaxMs, e.DurationMs)
		if e.Failed {
			s.Failures++
		}
	}

	snap := Snapshot{Written: written, Kinds: map[Kind]KindSnapshot{}}
	for kind, ds := range durations {
		sort.Float64s(ds)
		snap.Kinds[kind] = KindSnapshot{
			Count:   len(ds),
			P50Ms:   percentile(ds, 50),
			P95Ms:   percentile(ds, 95),
			Slowest: slowest(stats[kind], topN),
		}
	}
	return snap
}

// percentile interpolates the p-th percentile of a sorted slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p / 100) * float64(len(sorted)-1)
	lo, hi := int(math.Floor(idx)), int(math.Ceil(idx))
	if lo == hi {
		return sorted[lo]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func slowest(byName map[string]*Stat, n int) []Stat {
	list := make([]Stat, 0, len(byName))
	for _, s := range byName {
		s.AvgMs = s.totalMs / float64(s.Count)
		list = append(list, *s)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].AvgMs == list[j].AvgMs {
			return list[i].Name < list[j].Name
		}
		return list[i].AvgMs > list[j].AvgMs
	})
	if len(list) > n {
		list = list[:n]
	}
	return list
}
