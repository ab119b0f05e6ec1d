package results

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/fyrsmithlabs/showcase/internal/project"
)

// ResultSink receives every derived result list.
type ResultSink interface {
	StoreResults(ctx context.Context, results []project.Project) error
}

// SinkFunc adapts a function to ResultSink.
type SinkFunc func(ctx context.Context, results []project.Project) error

// StoreResults calls f.
func (f SinkFunc) StoreResults(ctx context.Context, results []project.Project) error {
	return f(ctx, results)
}

// Snapshot is a published result list.
type Snapshot struct {
	Revision uint64            `json:"revision"`
	Count    int               `json:"count"`
	Projects []project.Project `json:"projects"`
}

// MemorySink keeps the latest results in memory for readers such as the
// HTTP API and the terminal browser.
type MemorySink struct {
	// sendMu orders deliveries by revision across concurrent stores.
	sendMu sync.Mutex

	mu       sync.RWMutex
	results  []project.Project
	revision uint64
	watchers map[chan Snapshot]struct{}
}

// NewMemorySink creates an empty sink at revision 0.
func NewMemorySink() *MemorySink {
	return &MemorySink{watchers: make(map[chan Snapshot]struct{})}
}

// StoreResults replaces the stored results and bumps the revision. Watchers
// never receive a revision older than one already delivered.
func (s *MemorySink) StoreResults(ctx context.Context, results []project.Project) error {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	s.mu.Lock()
	s.results = slices.Clone(results)
	s.revision++
	snap := s.snapshotLocked()
	watchers := make([]chan Snapshot, 0, len(s.watchers))
	for ch := range s.watchers {
		watchers = append(watchers, ch)
	}
	s.mu.Unlock()

	for _, ch := range watchers {
		// Watchers only care about the newest snapshot; drop a stale one.
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
	return nil
}

// Snapshot returns the latest results.
func (s *MemorySink) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Results returns the latest result list.
func (s *MemorySink) Results() []project.Project {
	return s.Snapshot().Projects
}

// Revision returns how many times results were stored.
func (s *MemorySink) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// Watch returns a channel that receives the newest snapshot after every
// store. Slow readers only see the latest one. Call the returned function
// to stop watching.
func (s *MemorySink) Watch() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	s.mu.Lock()
	s.watchers[ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.watchers, ch)
			s.mu.Unlock()
		})
	}
}

func (s *MemorySink) snapshotLocked() Snapshot {
	projects := slices.Clone(s.results)
	if projects == nil {
		projects = []project.Project{}
	}
	return Snapshot{
		Revision: s.revision,
		Count:    len(projects),
		Projects: projects,
	}
}

// MultiSink stores results in every sink, continuing past failures.
type MultiSink []ResultSink

// StoreResults calls every sink and joins their errors.
func (m MultiSink) StoreResults(ctx context.Context, results []project.Project) error {
	var errs []error
	for _, sink := range m {
		if err := sink.StoreResults(ctx, results); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
