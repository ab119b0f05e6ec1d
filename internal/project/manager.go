package project

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Manager holds the project catalog in memory.
//
// Projects keep their catalog order; List and Projects return copies of the
// slice so callers never observe a later Replace.
type Manager struct {
	mu       sync.RWMutex
	projects []Project
	byID     map[string]int // id -> index into projects

	subMu  sync.Mutex
	subs   map[int]func()
	nextID int
}

// NewManager creates an empty project manager.
func NewManager() *Manager {
	return &Manager{
		byID: make(map[string]int),
		subs: make(map[int]func()),
	}
}

// Add inserts a project, generating an ID when it has none.
func (m *Manager) Add(ctx context.Context, p Project) (Project, error) {
	if p.Name == "" {
		return Project{}, ErrEmptyProjectName
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if err := p.Validate(); err != nil {
		return Project{}, err
	}

	m.mu.Lock()
	if _, ok := m.byID[p.ID]; ok {
		m.mu.Unlock()
		return Project{}, fmt.Errorf("%w: %s", ErrProjectExists, p.ID)
	}
	m.byID[p.ID] = len(m.projects)
	m.projects = append(m.projects, p)
	m.mu.Unlock()

	m.notify()
	return p, nil
}

// Get retrieves a project by ID.
func (m *Manager) Get(ctx context.Context, id string) (Project, error) {
	if id == "" {
		return Project{}, ErrEmptyProjectID
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	idx, ok := m.byID[id]
	if !ok {
		return Project{}, fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}
	return m.projects[idx], nil
}

// List returns all projects in catalog order.
func (m *Manager) List(ctx context.Context) ([]Project, error) {
	return m.Projects(), nil
}

// Projects returns a snapshot of the catalog.
func (m *Manager) Projects() []Project {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.projects)
}

// Len returns the number of projects.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.projects)
}

// Delete removes a project by ID.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrEmptyProjectID
	}

	m.mu.Lock()
	idx, ok := m.byID[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}
	m.projects = slices.Delete(m.projects, idx, idx+1)
	m.reindex()
	m.mu.Unlock()

	m.notify()
	return nil
}

// Replace swaps the whole catalog. Projects without an ID get one; duplicate
// IDs are rejected and leave the current catalog untouched.
func (m *Manager) Replace(ctx context.Context, projects []Project) error {
	next := make([]Project, len(projects))
	seen := make(map[string]struct{}, len(projects))
	for i, p := range projects {
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		if err := p.Validate(); err != nil {
			return fmt.Errorf("project %d (%q): %w", i, p.Name, err)
		}
		if _, ok := seen[p.ID]; ok {
			return fmt.Errorf("%w: %s", ErrProjectExists, p.ID)
		}
		seen[p.ID] = struct{}{}
		next[i] = p
	}

	m.mu.Lock()
	m.projects = next
	m.reindex()
	m.mu.Unlock()

	m.notify()
	return nil
}

// Subscribe registers fn to run after every catalog change.
// The returned function removes the subscription.
func (m *Manager) Subscribe(fn func()) func() {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	id := m.nextID
	m.nextID++
	m.subs[id] = fn

	return func() {
		m.subMu.Lock()
		defer m.subMu.Unlock()
		delete(m.subs, id)
	}
}

// reindex rebuilds byID. Caller must hold mu.
func (m *Manager) reindex() {
	m.byID = make(map[string]int, len(m.projects))
	for i, p := range m.projects {
		m.byID[p.ID] = i
	}
}

func (m *Manager) notify() {
	m.subMu.Lock()
	subs := make([]func(), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.subMu.Unlock()

	for _, fn := range subs {
		fn()
	}
}
