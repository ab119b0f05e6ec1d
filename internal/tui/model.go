// Package tui implements the interactive terminal browser.
//
// The browser edits the shared filter store and renders whatever the
// results watcher last published. It never runs the pipeline itself.
package tui

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fyrsmithlabs/showcase/internal/project"
	"github.com/fyrsmithlabs/showcase/internal/results"
)

// FilterState is the part of the filter store the browser edits.
type FilterState interface {
	SelectedFilters() project.FilterSet
	TitleSubstring() string
	ToggleFilter(f project.Filter) bool
	ClearFilters()
	SetTitleSubstring(title string)
}

// Catalog supplies the projects used to build the facet list.
type Catalog interface {
	Projects() []project.Project
}

type focus int

const (
	focusSearch focus = iota
	focusFacets
)

// maxResultRows caps the rendered result list.
const maxResultRows = 20

// Model is the bubbletea model for the browser.
type Model struct {
	filters FilterState
	catalog Catalog
	dims    project.Dimensions
	updates <-chan results.Snapshot

	search   textinput.Model
	facets   []project.Filter
	cursor   int
	focus    focus
	snapshot results.Snapshot
	closed   bool
	quitting bool
}

// snapshotMsg carries a newly published result list.
type snapshotMsg results.Snapshot

// updatesClosedMsg reports that the snapshot channel was closed.
type updatesClosedMsg struct{}

// NewModel creates a browser over the given state. initial is rendered
// until the first update arrives on updates.
func NewModel(filterState FilterState, catalog Catalog, dims project.Dimensions, initial results.Snapshot, updates <-chan results.Snapshot) Model {
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search titles"
	search.CharLimit = 128
	search.SetValue(filterState.TitleSubstring())
	search.Focus()

	m := Model{
		filters:  filterState,
		catalog:  catalog,
		dims:     dims,
		updates:  updates,
		search:   search,
		snapshot: initial,
	}
	m.refreshFacets()
	return m
}

// Init starts the cursor blink and the snapshot listener.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForSnapshot(m.updates))
}

func waitForSnapshot(updates <-chan results.Snapshot) tea.Cmd {
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		snap, ok := <-updates
		if !ok {
			return updatesClosedMsg{}
		}
		return snapshotMsg(snap)
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case snapshotMsg:
		snap := results.Snapshot(msg)
		if snap.Revision >= m.snapshot.Revision {
			m.snapshot = snap
		}
		m.refreshFacets()
		return m, waitForSnapshot(m.updates)

	case updatesClosedMsg:
		m.closed = true
		return m, nil
	}

	if m.focus == focusSearch {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "tab", "shift+tab":
		return m.toggleFocus(), nil
	}

	if m.focus == focusSearch {
		if msg.String() == "esc" {
			m.search.SetValue("")
			m.filters.SetTitleSubstring("")
			return m, nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		m.filters.SetTitleSubstring(m.search.Value())
		return m, cmd
	}

	switch msg.String() {
	case "q", "esc":
		m.quitting = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.facets)-1 {
			m.cursor++
		}
	case " ", "enter":
		if m.cursor < len(m.facets) {
			m.filters.ToggleFilter(m.facets[m.cursor])
		}
	case "c":
		m.filters.ClearFilters()
	case "/":
		return m.toggleFocus(), nil
	}
	return m, nil
}

func (m Model) toggleFocus() Model {
	if m.focus == focusSearch {
		m.focus = focusFacets
		m.search.Blur()
	} else {
		m.focus = focusSearch
		m.search.Focus()
	}
	return m
}

// refreshFacets rebuilds the facet list from the catalog, keeping selected
// filters visible even when no project carries them any more.
func (m *Model) refreshFacets() {
	var current project.Filter
	if m.cursor < len(m.facets) {
		current = m.facets[m.cursor]
	}

	facets := m.dims.Facets(m.catalog.Projects())
	selected := m.filters.SelectedFilters().GroupByDimension()

	m.facets = nil
	for _, d := range m.dims {
		values := facets[d]
		for _, v := range selected[d] {
			if !slices.Contains(values, v) {
				values = append(values, v)
			}
		}
		for _, v := range values {
			m.facets = append(m.facets, project.Filter{Dimension: d, Value: v})
		}
	}

	m.cursor = 0
	for i, f := range m.facets {
		if f == current {
			m.cursor = i
			break
		}
	}
}

// View renders the browser.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(headerStyle.Render(" showcase ") + "  " +
		dimStyle.Render(fmt.Sprintf("rev %d", m.snapshot.Revision)))
	if m.closed {
		b.WriteString("  " + warningStyle.Render("updates stopped"))
	}
	b.WriteString("\n\n")

	b.WriteString(m.search.View() + "\n")

	b.WriteString(m.renderFacets())
	b.WriteString(m.renderResults())
	b.WriteString("\n" + m.renderFooter())

	return containerStyle.Render(b.String())
}

func (m Model) renderFacets() string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("┃ Filters") + "\n")
	if len(m.facets) == 0 {
		b.WriteString(dimStyle.Render("  no facets") + "\n")
		return b.String()
	}

	selected := m.filters.SelectedFilters()
	var last project.Dimension
	for i, f := range m.facets {
		if f.Dimension != last {
			b.WriteString(labelStyle.Render("  "+string(f.Dimension)) + "\n")
			last = f.Dimension
		}

		mark := "[ ]"
		if selected.Has(f) {
			mark = selectedStyle.Render("[x]")
		}
		line := fmt.Sprintf("    %s %s", mark, f.Value)
		if m.focus == focusFacets && i == m.cursor {
			line = cursorStyle.Render("  > ") + mark + " " + valueStyle.Render(f.Value)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m Model) renderResults() string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render(fmt.Sprintf("┃ Results (%d)", m.snapshot.Count)) + "\n")
	if len(m.snapshot.Projects) == 0 {
		b.WriteString(dimStyle.Render("  no matching projects") + "\n")
		return b.String()
	}

	for i, p := range m.snapshot.Projects {
		if i == maxResultRows {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  … %d more", len(m.snapshot.Projects)-maxResultRows)) + "\n")
			break
		}
		line := "  " + valueStyle.Render(p.Name)
		if len(p.Tags) > 0 {
			line += "  " + tagStyle.Render(strings.Join(p.Tags, ", "))
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m Model) renderFooter() string {
	if m.focus == focusSearch {
		return footerKeyStyle.Render("[tab]") + footerStyle.Render(" filters  ") +
			footerKeyStyle.Render("[esc]") + footerStyle.Render(" clear search  ") +
			footerKeyStyle.Render("[ctrl+c]") + footerStyle.Render(" quit")
	}
	return footerKeyStyle.Render("[tab]") + footerStyle.Render(" search  ") +
		footerKeyStyle.Render("[space]") + footerStyle.Render(" toggle  ") +
		footerKeyStyle.Render("[c]") + footerStyle.Render(" clear  ") +
		footerKeyStyle.Render("[q]") + footerStyle.Render(" quit")
}

// Run starts the browser and blocks until the user quits or ctx is done.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running browser: %w", err)
	}
	return nil
}
