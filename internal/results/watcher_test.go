package results

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/showcase/internal/filters"
	"github.com/fyrsmithlabs/showcase/internal/logging"
	"github.com/fyrsmithlabs/showcase/internal/project"
)

// recordingSink remembers every result list it receives.
type recordingSink struct {
	mu    sync.Mutex
	calls [][]string
	err   error
}

func (s *recordingSink) StoreResults(_ context.Context, results []project.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, project.Names(results))
	return s.err
}

func (s *recordingSink) Calls() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]string, len(s.calls))
	copy(out, s.calls)
	return out
}

type watcherFixture struct {
	store   *filters.Store
	manager *project.Manager
	sink    *recordingSink
	watcher *Watcher
}

func newWatcherFixture(t *testing.T, opts ...WatcherOption) *watcherFixture {
	t.Helper()

	manager := project.NewManager()
	require.NoError(t, manager.Replace(context.Background(), sampleCatalog()))

	f := &watcherFixture{
		store:   filters.NewStore(),
		manager: manager,
		sink:    &recordingSink{},
	}
	f.watcher = NewWatcher(NewPipeline(DefaultOptions(), nil, nil), f.manager, f.store, f.sink, opts...)
	t.Cleanup(f.watcher.Stop)
	return f
}

func TestWatcher_StartPublishesInitialResults(t *testing.T) {
	f := newWatcherFixture(t)

	f.watcher.Start(context.Background())

	calls := f.sink.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"Vulkan Samples", "glTF Viewer", "Mango", "Raytracer", "shader playground"}, calls[0])
}

func TestWatcher_SelectionChangeRunsImmediately(t *testing.T) {
	f := newWatcherFixture(t)
	f.watcher.Start(context.Background())

	f.store.AddFilter(filter(project.DimensionCategory, "Shader"))

	calls := f.sink.Calls()
	require.Len(t, calls, 2, "no debounce on selection changes")
	assert.Equal(t, []string{"shader playground"}, calls[1])

	// A no-op change does not trigger a run.
	f.store.AddFilter(filter(project.DimensionCategory, "Shader"))
	assert.Len(t, f.sink.Calls(), 2)
}

func TestWatcher_TitleUpdatesAreDebounced(t *testing.T) {
	f := newWatcherFixture(t)
	f.watcher.Start(context.Background())

	start := time.Now()
	f.store.SetTitleSubstring("r")
	f.store.SetTitleSubstring("ra")
	f.store.SetTitleSubstring("ray")
	require.Less(t, time.Since(start), DefaultDebounce)

	assert.Len(t, f.sink.Calls(), 1, "title updates wait for the quiet window")

	require.Eventually(t, func() bool {
		return len(f.sink.Calls()) == 2
	}, 3*DefaultDebounce, 10*time.Millisecond)

	// Give a stale timer the chance to fire before checking nothing else ran.
	time.Sleep(DefaultDebounce)

	calls := f.sink.Calls()
	require.Len(t, calls, 2, "a burst of title updates yields one run")
	assert.Equal(t, []string{"Raytracer"}, calls[1], "the run uses the final substring")
}

func TestWatcher_SelectionDuringPendingSearch(t *testing.T) {
	f := newWatcherFixture(t, WithDebounce(50*time.Millisecond))
	f.watcher.Start(context.Background())

	f.store.SetTitleSubstring("viewer")
	f.store.AddFilter(filter(project.DimensionLanguage, "Rust"))

	calls := f.sink.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, []string{"glTF Viewer"}, calls[1], "an immediate run reads the latest title too")

	require.Eventually(t, func() bool {
		return len(f.sink.Calls()) == 3
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"glTF Viewer"}, f.sink.Calls()[2])
}

func TestWatcher_ProjectsUpdated(t *testing.T) {
	f := newWatcherFixture(t)
	f.watcher.Start(context.Background())

	_, err := f.manager.Add(context.Background(), project.Project{Name: "Apple", Tags: []string{"Staff Picks"}})
	require.NoError(t, err)

	calls := f.sink.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, []string{"Vulkan Samples", "Apple", "glTF Viewer", "Mango", "Raytracer", "shader playground"}, calls[1])
}

func TestWatcher_Flush(t *testing.T) {
	f := newWatcherFixture(t, WithDebounce(time.Hour))
	f.watcher.Start(context.Background())

	assert.False(t, f.watcher.Flush(), "nothing pending")

	f.store.SetTitleSubstring("mango")
	assert.True(t, f.watcher.Flush())

	calls := f.sink.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, []string{"Mango"}, calls[1])
}

func TestWatcher_StopCancelsPendingRun(t *testing.T) {
	f := newWatcherFixture(t, WithDebounce(30*time.Millisecond))
	f.watcher.Start(context.Background())

	f.store.SetTitleSubstring("mango")
	f.watcher.Stop()

	time.Sleep(100 * time.Millisecond)
	assert.Len(t, f.sink.Calls(), 1)

	// Unsubscribed: later changes are not observed.
	f.store.AddFilter(filter(project.DimensionCategory, "Tool"))
	assert.Len(t, f.sink.Calls(), 1)
}

func TestWatcher_SinkErrorIsLogged(t *testing.T) {
	logger := logging.NewTestLogger()
	f := newWatcherFixture(t, WithLogger(logger.Logger))
	f.sink.err = errors.New("downstream unavailable")

	results := f.watcher.Run(context.Background(), TriggerManual)

	assert.Len(t, results, 5, "results are still returned")
	logger.AssertLogged(t, zapcore.ErrorLevel, "failed to store results")
	logger.AssertField(t, "failed to store results", "results", int64(5))
	logger.AssertField(t, "failed to store results", "trigger", "manual")
}

func TestWatcher_PlainSources(t *testing.T) {
	// Sources without Subscribe are only read on explicit runs.
	store := filters.NewStore()
	sink := &recordingSink{}

	w := NewWatcher(NewPipeline(DefaultOptions(), nil, nil), plainSource(sampleCatalog()), filterOnly{store}, sink)
	w.Start(context.Background())
	defer w.Stop()

	store.AddFilter(filter(project.DimensionCategory, "Demo"))
	assert.Len(t, sink.Calls(), 1)

	w.Run(context.Background(), TriggerManual)
	calls := sink.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, []string{"Raytracer"}, calls[1])
}

type plainSource []project.Project

func (s plainSource) Projects() []project.Project { return s }

// filterOnly hides the store's Subscribe method.
type filterOnly struct {
	s *filters.Store
}

func (f filterOnly) SelectedFilters() project.FilterSet { return f.s.SelectedFilters() }
func (f filterOnly) TitleSubstring() string            { return f.s.TitleSubstring() }
