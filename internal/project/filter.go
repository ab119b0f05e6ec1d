package project

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Filter selects a single value within a dimension.
type Filter struct {
	Dimension Dimension `json:"dimension"`
	Value     string    `json:"value"`
}

// ParseFilter parses the "dimension=value" form used on the command line.
func ParseFilter(s string) (Filter, error) {
	dim, value, ok := strings.Cut(s, "=")
	if !ok {
		return Filter{}, fmt.Errorf("%w: %q (want dimension=value)", ErrInvalidFilter, s)
	}
	f := Filter{Dimension: Dimension(strings.TrimSpace(dim)), Value: strings.TrimSpace(value)}
	if err := f.Validate(); err != nil {
		return Filter{}, err
	}
	return f, nil
}

// Validate checks that both halves of the filter are set.
func (f Filter) Validate() error {
	if f.Dimension == "" {
		return fmt.Errorf("%w: dimension cannot be empty", ErrInvalidFilter)
	}
	if f.Value == "" {
		return fmt.Errorf("%w: value cannot be empty", ErrInvalidFilter)
	}
	return nil
}

func (f Filter) String() string {
	return string(f.Dimension) + "=" + f.Value
}

// FilterSet is a set of filters keyed by (dimension, value).
// The zero value is an empty, read-only set; use NewFilterSet to build one.
type FilterSet map[Filter]struct{}

// NewFilterSet builds a set from filters, dropping duplicates.
func NewFilterSet(filters ...Filter) FilterSet {
	s := make(FilterSet, len(filters))
	for _, f := range filters {
		s[f] = struct{}{}
	}
	return s
}

// Len returns the number of distinct filters.
func (s FilterSet) Len() int {
	return len(s)
}

// Has reports whether f is selected.
func (s FilterSet) Has(f Filter) bool {
	_, ok := s[f]
	return ok
}

// Clone returns an independent copy.
func (s FilterSet) Clone() FilterSet {
	out := make(FilterSet, len(s))
	maps.Copy(out, s)
	return out
}

// Equal reports whether both sets hold the same filters.
func (s FilterSet) Equal(other FilterSet) bool {
	if len(s) != len(other) {
		return false
	}
	for f := range s {
		if !other.Has(f) {
			return false
		}
	}
	return true
}

// Slice returns the filters ordered by dimension then value.
func (s FilterSet) Slice() []Filter {
	out := make([]Filter, 0, len(s))
	for f := range s {
		out = append(out, f)
	}
	slices.SortFunc(out, func(a, b Filter) int {
		if c := cmp.Compare(a.Dimension, b.Dimension); c != 0 {
			return c
		}
		return cmp.Compare(a.Value, b.Value)
	})
	return out
}

// GroupByDimension groups selected values by their dimension.
func (s FilterSet) GroupByDimension() map[Dimension][]string {
	grouped := make(map[Dimension][]string)
	for _, f := range s.Slice() {
		grouped[f.Dimension] = append(grouped[f.Dimension], f.Value)
	}
	return grouped
}
