package embed

import (
	"context"
	"slices"
	"sync"
	"time"
)

type call struct {
	at         time.Time
	durationMs int64
	texts      int
	failed     bool
}

// StatsSnapshot aggregates recent embedding calls.
type StatsSnapshot struct {
	Model  string  `json:"model"`
	Calls  int     `json:"calls"`
	Texts  int     `json:"texts"`
	Errors int     `json:"errors"`
	MinMs  int64   `json:"min_ms"`
	MaxMs  int64   `json:"max_ms"`
	AvgMs  float64 `json:"avg_ms"`
	P50Ms  float64 `json:"p50_ms"`
	P95Ms  float64 `json:"p95_ms"`
	P99Ms  float64 `json:"p99_ms"`
}

// Stats keeps embedding call latencies within a rolling window.
type Stats struct {
	mu     sync.Mutex
	calls  []call
	maxAge time.Duration
}

func NewStats(maxAge time.Duration) *Stats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Stats{calls: make([]call, 0, 256), maxAge: maxAge}
}

// Record adds one call. Negative durations count as zero.
func (s *Stats) Record(durationMs int64, texts int, failed bool) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	s.calls = append(s.calls, call{
		at:         now,
		durationMs: max(durationMs, 0),
		texts:      texts,
		failed:     failed,
	})
}

func (s *Stats) Snapshot() StatsSnapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	if len(s.calls) == 0 {
		return StatsSnapshot{}
	}

	snap := StatsSnapshot{Calls: len(s.calls)}
	durations := make([]int64, 0, len(s.calls))
	var sum int64
	for _, c := range s.calls {
		durations = append(durations, c.durationMs)
		sum += c.durationMs
		snap.Texts += c.texts
		if c.failed {
			snap.Errors++
		}
	}
	slices.Sort(durations)

	snap.MinMs = durations[0]
	snap.MaxMs = durations[len(durations)-1]
	snap.AvgMs = float64(sum) / float64(len(durations))
	snap.P50Ms = percentile(durations, 50)
	snap.P95Ms = percentile(durations, 95)
	snap.P99Ms = percentile(durations, 99)
	return snap
}

func (s *Stats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	s.calls = slices.DeleteFunc(s.calls, func(c call) bool {
		return c.at.Before(cutoff)
	})
}

// percentile interpolates linearly between the closest ranks.
func percentile(sorted []int64, pct float64) float64 {
	switch {
	case len(sorted) == 0:
		return 0
	case pct <= 0:
		return float64(sorted[0])
	case pct >= 100:
		return float64(sorted[len(sorted)-1])
	}
	rank := float64(len(sorted)-1) * pct / 100
	lo := int(rank)
	if lo+1 >= len(sorted) {
		return float64(sorted[lo])
	}
	frac := rank - float64(lo)
	return float64(sorted[lo]) + frac*float64(sorted[lo+1]-sorted[lo])
}

// Instrumented records every EmbedBatch call of the wrapped Embedder.
type Instrumented struct {
	Embedder
	stats *Stats
}

func NewInstrumented(e Embedder, stats *Stats) *Instrumented {
	return &Instrumented{Embedder: e, stats: stats}
}

func (i *Instrumented) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	start := time.Now()
	vecs, err := i.Embedder.EmbedBatch(ctx, texts)
	i.stats.Record(time.Since(start).Milliseconds(), len(texts), err != nil)
	return vecs, err
}

// Snapshot returns the wrapped stats tagged with the model name.
func (i *Instrumented) Snapshot() StatsSnapshot {
	snap := i.stats.Snapshot()
	snap.Model = i.Model()
	return snap
}

// Close closes the wrapped Embedder when it holds resources.
func (i *Instrumented) Close() error {
	if c, ok := i.Embedder.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
