package monitoring

import (
	"sync"
	"time"

	"stresscheck/ml"
)

// Stats counts detections since process start.
type Stats struct {
	mu            sync.RWMutex
	startTime     time.Time
	byLabel       map[ml.StressLabel]int64
	bySource      map[string]int64
	fetchFailures int64
	lastDetection *ml.Detection
}

// StatsSnapshot is the JSON view of Stats.
type StatsSnapshot struct {
	StartTime     time.Time        `json:"start_time"`
	Uptime        string           `json:"uptime"`
	Total         int64            `json:"total"`
	ByLabel       map[string]int64 `json:"by_label"`
	BySource      map[string]int64 `json:"by_source"`
	FetchFailures int64            `json:"fetch_failures"`
	LastDetection *ml.Detection    `json:"last_detection,omitempty"`
}

func NewStats() *Stats {
	return &Stats{
		startTime: time.Now(),
		byLabel:   make(map[ml.StressLabel]int64),
		bySource:  make(map[string]int64),
	}
}

func (s *Stats) RecordDetection(d ml.Detection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byLabel[d.Label]++
	s.bySource[d.Source]++
	last := d
	s.lastDetection = &last
}

func (s *Stats) RecordFetchFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetchFailures++
}

func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := StatsSnapshot{
		StartTime:     s.startTime,
		Uptime:        time.Since(s.startTime).Round(time.Second).String(),
		ByLabel:       make(map[string]int64, len(ml.Labels())),
		BySource:      make(map[string]int64, len(s.bySource)),
		FetchFailures: s.fetchFailures,
	}
	for _, l := range ml.Labels() {
		n := s.byLabel[l]
		snap.ByLabel[l.String()] = n
		snap.Total += n
	}
	for src, n := range s.bySource {
		snap.BySource[src] = n
	}
	if s.lastDetection != nil {
		last := *s.lastDetection
		snap.LastDetection = &last
	}
	return snap
}
