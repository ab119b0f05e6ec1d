package project

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	ErrUnknownDimension = errors.New("unknown dimension")
	ErrInvalidFilter    = errors.New("invalid filter")
)

// Dimension names an attribute axis that filters match against.
type Dimension string

const (
	DimensionCategory Dimension = "category"
	DimensionLanguage Dimension = "language"
	DimensionPlatform Dimension = "platform"
	DimensionAPI      Dimension = "api"
	DimensionLicense  Dimension = "license"
)

// Dimensions is an ordered enumeration of dimensions.
type Dimensions []Dimension

// DefaultDimensions returns the declared enumeration order.
func DefaultDimensions() Dimensions {
	return Dimensions{
		DimensionCategory,
		DimensionLanguage,
		DimensionPlatform,
		DimensionAPI,
		DimensionLicense,
	}
}

// ParseDimensions converts names into Dimensions, rejecting blanks and duplicates.
func ParseDimensions(names []string) (Dimensions, error) {
	dims := make(Dimensions, 0, len(names))
	for _, name := range names {
		d := Dimension(strings.TrimSpace(name))
		if d == "" {
			return nil, fmt.Errorf("%w: empty dimension name", ErrUnknownDimension)
		}
		if dims.Contains(d) {
			return nil, fmt.Errorf("duplicate dimension %q", d)
		}
		dims = append(dims, d)
	}
	return dims, nil
}

// Contains reports whether d is part of the enumeration.
func (ds Dimensions) Contains(d Dimension) bool {
	return slices.Contains(ds, d)
}

// Parse resolves a dimension name against the enumeration.
func (ds Dimensions) Parse(name string) (Dimension, error) {
	d := Dimension(strings.TrimSpace(name))
	if !ds.Contains(d) {
		return "", fmt.Errorf("%w: %q", ErrUnknownDimension, name)
	}
	return d, nil
}

// Strings returns the dimension names in order.
func (ds Dimensions) Strings() []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = string(d)
	}
	return out
}

// Facets returns the distinct values present in projects for each dimension,
// sorted, keyed by dimension.
func (ds Dimensions) Facets(projects []Project) map[Dimension][]string {
	facets := make(map[Dimension][]string, len(ds))
	for _, d := range ds {
		seen := make(map[string]struct{})
		values := []string{}
		for _, p := range projects {
			for _, v := range p.Attributes[d] {
				if _, ok := seen[v]; ok {
					continue
				}
				seen[v] = struct{}{}
				values = append(values, v)
			}
		}
		slices.Sort(values)
		facets[d] = values
	}
	return facets
}
