package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/showcase/internal/filters"
	"github.com/fyrsmithlabs/showcase/internal/project"
	"github.com/fyrsmithlabs/showcase/internal/results"
)

type staticCatalog []project.Project

func (c staticCatalog) Projects() []project.Project { return c }

func testCatalog() staticCatalog {
	return staticCatalog{
		{Name: "Vulkan Samples", Tags: []string{"Khronos Official"}, Attributes: map[project.Dimension][]string{
			project.DimensionCategory: {"Sample"},
			project.DimensionLanguage: {"C++"},
		}},
		{Name: "Raytracer", Attributes: map[project.Dimension][]string{
			project.DimensionCategory: {"Demo"},
			project.DimensionLanguage: {"Rust"},
		}},
	}
}

var testDims = project.Dimensions{project.DimensionCategory, project.DimensionLanguage}

func newTestModel(t *testing.T) (Model, *filters.Store) {
	t.Helper()
	store := filters.NewStore()
	return NewModel(store, testCatalog(), testDims, results.Snapshot{}, nil), store
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	updated, ok := next.(Model)
	require.True(t, ok)
	return updated, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewModel(t *testing.T) {
	m, _ := newTestModel(t)

	assert.Equal(t, focusSearch, m.focus)
	assert.False(t, m.quitting)
	assert.Equal(t, []project.Filter{
		{Dimension: project.DimensionCategory, Value: "Demo"},
		{Dimension: project.DimensionCategory, Value: "Sample"},
		{Dimension: project.DimensionLanguage, Value: "C++"},
		{Dimension: project.DimensionLanguage, Value: "Rust"},
	}, m.facets)
}

func TestNewModel_RestoresTitle(t *testing.T) {
	store := filters.NewStore()
	store.SetTitleSubstring("ray")

	m := NewModel(store, testCatalog(), testDims, results.Snapshot{}, nil)
	assert.Equal(t, "ray", m.search.Value())
}

func TestModel_Init(t *testing.T) {
	m, _ := newTestModel(t)
	assert.NotNil(t, m.Init())
}

func TestModel_TypingUpdatesTitle(t *testing.T) {
	m, store := newTestModel(t)

	m, _ = update(t, m, runes("ray"))
	assert.Equal(t, "ray", store.TitleSubstring())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, "ra", store.TitleSubstring())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, "", store.TitleSubstring())
	assert.Equal(t, "", m.search.Value())
}

func TestModel_QLettersInSearchAreText(t *testing.T) {
	m, store := newTestModel(t)

	m, _ = update(t, m, runes("q"))
	assert.False(t, m.quitting)
	assert.Equal(t, "q", store.TitleSubstring())
}

func TestModel_ToggleFacets(t *testing.T) {
	m, store := newTestModel(t)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, focusFacets, m.focus)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeySpace})
	assert.True(t, store.SelectedFilters().Has(project.Filter{Dimension: project.DimensionCategory, Value: "Demo"}))

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = update(t, m, runes("j"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, store.SelectedFilters().Has(project.Filter{Dimension: project.DimensionLanguage, Value: "C++"}))
	assert.Equal(t, 2, store.SelectedFilters().Len())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, 1, store.SelectedFilters().Len(), "second toggle deselects")

	_, _ = update(t, m, runes("c"))
	assert.Equal(t, 0, store.SelectedFilters().Len())
}

func TestModel_CursorBounds(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, m.cursor)

	for range 10 {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	}
	assert.Equal(t, len(m.facets)-1, m.cursor)
}

func TestModel_QuitKeys(t *testing.T) {
	m, _ := newTestModel(t)

	quit, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.True(t, quit.quitting)
	assert.NotNil(t, cmd)
	assert.Empty(t, quit.View())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	quit, cmd = update(t, m, runes("q"))
	assert.True(t, quit.quitting)
	assert.NotNil(t, cmd)
}

func TestModel_SnapshotMsg(t *testing.T) {
	m, _ := newTestModel(t)

	snap := results.Snapshot{Revision: 3, Count: 1, Projects: []project.Project{{Name: "Raytracer"}}}
	m, cmd := update(t, m, snapshotMsg(snap))
	assert.Equal(t, snap, m.snapshot)
	assert.Nil(t, cmd, "no listener without an updates channel")

	stale := results.Snapshot{Revision: 2, Count: 0, Projects: []project.Project{}}
	m, _ = update(t, m, snapshotMsg(stale))
	assert.Equal(t, uint64(3), m.snapshot.Revision, "older revisions are ignored")
}

func TestModel_UpdatesFromSink(t *testing.T) {
	store := filters.NewStore()
	sink := results.NewMemorySink()
	updates, stop := sink.Watch()
	defer stop()

	m := NewModel(store, testCatalog(), testDims, sink.Snapshot(), updates)

	require.NoError(t, sink.StoreResults(context.Background(), []project.Project{{Name: "Raytracer"}}))

	cmd := waitForSnapshot(updates)
	require.NotNil(t, cmd)
	msg := cmd()

	m, next := update(t, m, msg)
	assert.Equal(t, uint64(1), m.snapshot.Revision)
	assert.Equal(t, []string{"Raytracer"}, project.Names(m.snapshot.Projects))
	assert.NotNil(t, next, "listener is re-armed")
}

func TestModel_UpdatesClosed(t *testing.T) {
	ch := make(chan results.Snapshot)
	close(ch)

	msg := waitForSnapshot(ch)()
	assert.IsType(t, updatesClosedMsg{}, msg)

	m, _ := newTestModel(t)
	m, _ = update(t, m, msg)
	assert.True(t, m.closed)
	assert.Contains(t, m.View(), "updates stopped")
}

func TestModel_SelectedFacetSurvivesCatalogChange(t *testing.T) {
	store := filters.NewStore()
	gone := project.Filter{Dimension: project.DimensionLanguage, Value: "Zig"}
	store.AddFilter(gone)

	m := NewModel(store, testCatalog(), testDims, results.Snapshot{}, nil)
	assert.Contains(t, m.facets, gone, "selected filters stay listed so they can be cleared")
}

func TestModel_View(t *testing.T) {
	m, store := newTestModel(t)
	store.AddFilter(project.Filter{Dimension: project.DimensionCategory, Value: "Demo"})

	m, _ = update(t, m, snapshotMsg(results.Snapshot{
		Revision: 7,
		Count:    2,
		Projects: []project.Project{
			{Name: "Vulkan Samples", Tags: []string{"Khronos Official"}},
			{Name: "Raytracer"},
		},
	}))

	view := m.View()
	assert.Contains(t, view, "showcase")
	assert.Contains(t, view, "rev 7")
	assert.Contains(t, view, "Filters")
	assert.Contains(t, view, "category")
	assert.Contains(t, view, "[x]")
	assert.Contains(t, view, "Results (2)")
	assert.Contains(t, view, "Vulkan Samples")
	assert.Contains(t, view, "Khronos Official")
	assert.Contains(t, view, "[tab]")
}

func TestModel_View_Empty(t *testing.T) {
	store := filters.NewStore()
	m := NewModel(store, staticCatalog{}, testDims, results.Snapshot{Projects: []project.Project{}}, nil)

	view := m.View()
	assert.Contains(t, view, "no facets")
	assert.Contains(t, view, "no matching projects")
}
