package project

import (
	"errors"
	"slices"

	"github.com/google/uuid"
)

// Common errors.
var (
	ErrProjectNotFound  = errors.New("project not found")
	ErrProjectExists    = errors.New("project already exists")
	ErrInvalidProjectID = errors.New("invalid project ID")
	ErrEmptyProjectID   = errors.New("project ID cannot be empty")
	ErrEmptyProjectName = errors.New("project name cannot be empty")
)

// Project is a gallery entry. The results pipeline treats it as read-only.
type Project struct {
	// ID is the unique project identifier (UUID).
	ID string `json:"id"`

	// Name is the human-readable title matched by title search.
	Name string `json:"name"`

	// Description is free text shown next to the name.
	Description string `json:"description,omitempty"`

	// URL points at the project home page.
	URL string `json:"url,omitempty"`

	// Tags drive priority bucketing. Nil means untagged.
	Tags []string `json:"tags,omitempty"`

	// Attributes holds the values of the project per dimension.
	Attributes map[Dimension][]string `json:"attributes,omitempty"`
}

// NewProject creates a project with a generated UUID.
func NewProject(name string, tags []string, attributes map[Dimension][]string) (*Project, error) {
	if name == "" {
		return nil, ErrEmptyProjectName
	}

	return &Project{
		ID:         uuid.New().String(),
		Name:       name,
		Tags:       tags,
		Attributes: attributes,
	}, nil
}

// Validate checks if the project has valid fields.
func (p *Project) Validate() error {
	if p.ID == "" {
		return ErrEmptyProjectID
	}
	if _, err := uuid.Parse(p.ID); err != nil {
		return ErrInvalidProjectID
	}
	if p.Name == "" {
		return ErrEmptyProjectName
	}
	return nil
}

// Values returns the attribute values for a dimension and whether the
// project declares the dimension at all.
func (p Project) Values(d Dimension) ([]string, bool) {
	values, ok := p.Attributes[d]
	return values, ok
}

// HasValue reports whether value is listed under dimension d.
func (p Project) HasValue(d Dimension, value string) bool {
	values, ok := p.Values(d)
	if !ok {
		return false
	}
	return slices.Contains(values, value)
}

// HasTags reports whether the project carries at least one tag.
func (p Project) HasTags() bool {
	return len(p.Tags) > 0
}

// Names returns the names of projects in order. Handy for logs and tests.
func Names(projects []Project) []string {
	names := make([]string, len(projects))
	for i, p := range projects {
		names[i] = p.Name
	}
	return names
}
