package results

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/showcase/internal/debounce"
	"github.com/fyrsmithlabs/showcase/internal/filters"
	"github.com/fyrsmithlabs/showcase/internal/logging"
	"github.com/fyrsmithlabs/showcase/internal/project"
)

// DefaultDebounce is the quiet window applied to title search updates.
const DefaultDebounce = 500 * time.Millisecond

// Trigger names what caused a pipeline run.
type Trigger string

const (
	TriggerSelectedFilters Trigger = "selected_filters"
	TriggerTitleSubstring  Trigger = "title_substring"
	TriggerProjects        Trigger = "projects"
	TriggerManual          Trigger = "manual"
)

// ProjectSource provides the full catalog.
type ProjectSource interface {
	Projects() []project.Project
}

// FilterSource provides the current filter state.
type FilterSource interface {
	SelectedFilters() project.FilterSet
	TitleSubstring() string
}

// projectFeed is a ProjectSource that announces catalog changes.
type projectFeed interface {
	Subscribe(fn func()) func()
}

// filterFeed is a FilterSource that announces state changes.
type filterFeed interface {
	Subscribe(fn func(filters.Event)) func()
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the quiet window for title search updates.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.window = d
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) WatcherOption {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *Metrics) WatcherOption {
	return func(w *Watcher) {
		w.metrics = m
	}
}

// Watcher reruns the pipeline when its inputs change and publishes every
// result list to the sink.
//
// Filter selection and catalog changes run the pipeline immediately. Title
// search changes are debounced: a burst of edits produces a single run once
// the window has elapsed after the last edit. Runs never overlap.
type Watcher struct {
	pipeline *Pipeline
	projects ProjectSource
	filters  FilterSource
	sink     ResultSink
	logger   *logging.Logger
	metrics  *Metrics
	window   time.Duration

	debouncer *debounce.Debouncer

	runMu sync.Mutex

	mu          sync.Mutex
	ctx         context.Context
	unsubscribe []func()
}

// NewWatcher wires a pipeline to its inputs and output.
func NewWatcher(pipeline *Pipeline, projects ProjectSource, filterState FilterSource, sink ResultSink, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		pipeline: pipeline,
		projects: projects,
		filters:  filterState,
		sink:     sink,
		logger:   logging.NewNop(),
		window:   DefaultDebounce,
		ctx:      context.Background(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named("results")
	w.debouncer = debounce.New(w.window, w.runDebounced)
	return w
}

// Start subscribes to the sources that support change notification and
// publishes an initial result list.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	w.ctx = ctx
	if feed, ok := w.filters.(filterFeed); ok {
		w.unsubscribe = append(w.unsubscribe, feed.Subscribe(w.HandleFilterEvent))
	}
	if feed, ok := w.projects.(projectFeed); ok {
		w.unsubscribe = append(w.unsubscribe, feed.Subscribe(w.HandleProjectsUpdated))
	}
	w.mu.Unlock()

	w.logger.Info(ctx, "results watcher started", zap.Duration("debounce", w.window))
	w.Run(ctx, TriggerManual)
}

// Stop unsubscribes from the sources and drops any pending debounced run.
func (w *Watcher) Stop() {
	w.mu.Lock()
	unsubscribe := w.unsubscribe
	w.unsubscribe = nil
	w.mu.Unlock()

	for _, fn := range unsubscribe {
		fn()
	}
	w.debouncer.Stop()
}

// HandleFilterEvent reacts to a filter store event.
func (w *Watcher) HandleFilterEvent(e filters.Event) {
	switch e.Type {
	case filters.EventSelectedFiltersUpdated:
		w.Run(w.context(), TriggerSelectedFilters)
	case filters.EventTitleSubstringUpdated:
		if w.debouncer.Trigger() && w.metrics != nil {
			w.metrics.RecordSuperseded()
		}
	}
}

// HandleProjectsUpdated reacts to a catalog change.
func (w *Watcher) HandleProjectsUpdated() {
	w.Run(w.context(), TriggerProjects)
}

// Flush runs a pending debounced search right away.
func (w *Watcher) Flush() bool {
	return w.debouncer.Flush()
}

// Run reads the current inputs, runs the pipeline and publishes the result.
// The result list is also returned to the caller.
func (w *Watcher) Run(ctx context.Context, trigger Trigger) []project.Project {
	w.runMu.Lock()
	defer w.runMu.Unlock()

	ctx = logging.WithTrigger(ctx, string(trigger))

	results := w.pipeline.Run(ctx,
		w.projects.Projects(),
		w.filters.SelectedFilters(),
		w.filters.TitleSubstring(),
	)

	if w.metrics != nil {
		w.metrics.RecordTrigger(trigger)
	}

	if err := w.sink.StoreResults(ctx, results); err != nil {
		w.logger.Error(ctx, "failed to store results", zap.Error(err), zap.Int("results", len(results)))
		if w.metrics != nil {
			w.metrics.RecordSinkError()
		}
	}

	return results
}

func (w *Watcher) runDebounced() {
	w.Run(w.context(), TriggerTitleSubstring)
}

func (w *Watcher) context() context.Context {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ctx
}
