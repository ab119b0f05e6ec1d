package project

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const maxCatalogFileSize = 8 * 1024 * 1024 // 8MB

var ErrUnsupportedCatalogFormat = errors.New("unsupported catalog format")

// catalogFile is the on-disk layout shared by every catalog format.
type catalogFile struct {
	Projects []catalogEntry `json:"projects" yaml:"projects" toml:"projects"`
}

type catalogEntry struct {
	ID          string              `json:"id" yaml:"id" toml:"id"`
	Name        string              `json:"name" yaml:"name" toml:"name"`
	Description string              `json:"description" yaml:"description" toml:"description"`
	URL         string              `json:"url" yaml:"url" toml:"url"`
	Tags        []string            `json:"tags" yaml:"tags" toml:"tags"`
	Attributes  map[string][]string `json:"attributes" yaml:"attributes" toml:"attributes"`
}

// LoadCatalog reads projects from a YAML, TOML or JSON file. The format is
// picked from the file extension. Attribute keys must belong to dims.
func LoadCatalog(path string, dims Dimensions) ([]Project, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat catalog: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("catalog %s is not a regular file", path)
	}
	if info.Size() > maxCatalogFileSize {
		return nil, fmt.Errorf("catalog file too large: %d bytes (max %d bytes)", info.Size(), maxCatalogFileSize)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	projects, err := ParseCatalog(content, CatalogFormat(path), dims)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog %s: %w", path, err)
	}
	return projects, nil
}

// CatalogFormat maps a file name to its format name ("yaml", "toml", "json"),
// or "" when the extension is not recognised.
func CatalogFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".toml":
		return "toml"
	case ".json":
		return "json"
	default:
		return ""
	}
}

// ParseCatalog decodes catalog content in the given format.
func ParseCatalog(content []byte, format string, dims Dimensions) ([]Project, error) {
	var file catalogFile

	switch format {
	case "yaml":
		if err := yaml.Unmarshal(content, &file); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	case "toml":
		if _, err := toml.Decode(string(content), &file); err != nil {
			return nil, fmt.Errorf("parse toml: %w", err)
		}
	case "json":
		dec := json.NewDecoder(bytes.NewReader(content))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&file); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCatalogFormat, format)
	}

	projects := make([]Project, 0, len(file.Projects))
	for i, entry := range file.Projects {
		p, err := entry.toProject(dims)
		if err != nil {
			return nil, fmt.Errorf("project %d: %w", i, err)
		}
		projects = append(projects, p)
	}
	return projects, nil
}

func (e catalogEntry) toProject(dims Dimensions) (Project, error) {
	name := strings.TrimSpace(e.Name)
	if name == "" {
		return Project{}, ErrEmptyProjectName
	}

	var attrs map[Dimension][]string
	if len(e.Attributes) > 0 {
		attrs = make(map[Dimension][]string, len(e.Attributes))
		for key, values := range e.Attributes {
			d, err := dims.Parse(key)
			if err != nil {
				return Project{}, fmt.Errorf("%q: %w", name, err)
			}
			attrs[d] = values
		}
	}

	p, err := NewProject(name, e.Tags, attrs)
	if err != nil {
		return Project{}, err
	}
	if e.ID != "" {
		p.ID = e.ID
	}
	p.Description = e.Description
	p.URL = e.URL

	if err := p.Validate(); err != nil {
		return Project{}, fmt.Errorf("%q: %w", name, err)
	}
	return *p, nil
}
