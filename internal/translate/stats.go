package translate

import (
	"sync"
	"time"
)

// stats accumulates process-local translation counters.
type stats struct {
	mu          sync.Mutex
	queries     int
	attempted   int
	succeeded   int
	failed      int
	perLanguage map[string]int
	avgLatency  time.Duration
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Queries     int
	Attempted   int
	Succeeded   int
	Failed      int
	PerLanguage map[string]int
	AvgLatency  time.Duration
}

func (s *stats) attempt() {
	s.mu.Lock()
	s.attempted++
	s.mu.Unlock()
}

func (s *stats) fail() {
	s.mu.Lock()
	s.failed++
	s.mu.Unlock()
}

func (s *stats) succeed(latency time.Duration) {
	s.mu.Lock()
	s.succeeded++
	// Running average over successful translations.
	s.avgLatency += (latency - s.avgLatency) / time.Duration(s.succeeded)
	s.mu.Unlock()
}

func (t *Translator) noteQuery(lang string) {
	t.stats.mu.Lock()
	t.stats.queries++
	t.stats.perLanguage[lang]++
	t.stats.mu.Unlock()
}

// StatsSnapshot returns a copy of the current counters.
func (t *Translator) StatsSnapshot() Snapshot {
	t.stats.mu.Lock()
	defer t.stats.mu.Unlock()

	perLang := make(map[string]int, len(t.stats.perLanguage))
	for k, v := range t.stats.perLanguage {
		perLang[k] = v
	}
	return Snapshot{
		Queries:     t.stats.queries,
		Attempted:   t.stats.attempted,
		Succeeded:   t.stats.succeeded,
		Failed:      t.stats.failed,
		PerLanguage: perLang,
		AvgLatency:  t.stats.avgLatency,
	}
}

// ResetStats zeroes all counters.
func (t *Translator) ResetStats() {
	t.stats.mu.Lock()
	defer t.stats.mu.Unlock()

	t.stats.queries = 0
	t.stats.attempted = 0
	t.stats.succeeded = 0
	t.stats.failed = 0
	t.stats.perLanguage = make(map[string]int)
	t.stats.avgLatency = 0
}
