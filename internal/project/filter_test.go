package project

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilter(t *testing.T) {
	tests := []struct {
		in      string
		want    Filter
		wantErr bool
	}{
		{in: "category=Shader", want: Filter{Dimension: DimensionCategory, Value: "Shader"}},
		{in: " api = Vulkan ", want: Filter{Dimension: DimensionAPI, Value: "Vulkan"}},
		{in: "license=Apache=2", want: Filter{Dimension: DimensionLicense, Value: "Apache=2"}},
		{in: "category", wantErr: true},
		{in: "=Shader", wantErr: true},
		{in: "category=", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFilter(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidFilter))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilterSet_Deduplicates(t *testing.T) {
	shader := Filter{Dimension: DimensionCategory, Value: "Shader"}
	vulkan := Filter{Dimension: DimensionAPI, Value: "Vulkan"}

	s := NewFilterSet(shader, vulkan, shader)
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Has(shader))
	assert.False(t, s.Has(Filter{Dimension: DimensionAPI, Value: "OpenGL"}))
}

func TestFilterSet_CloneAndEqual(t *testing.T) {
	a := NewFilterSet(Filter{Dimension: DimensionCategory, Value: "Shader"})
	b := a.Clone()
	assert.True(t, a.Equal(b))

	b[Filter{Dimension: DimensionAPI, Value: "Vulkan"}] = struct{}{}
	assert.False(t, a.Equal(b))
	assert.Equal(t, 1, a.Len(), "clone must not alias")

	var empty FilterSet
	assert.True(t, empty.Equal(NewFilterSet()))
	assert.Equal(t, 0, empty.Len())
}

func TestFilterSet_SliceAndGroup(t *testing.T) {
	s := NewFilterSet(
		Filter{Dimension: DimensionLanguage, Value: "Rust"},
		Filter{Dimension: DimensionCategory, Value: "Tool"},
		Filter{Dimension: DimensionLanguage, Value: "C++"},
	)

	assert.Equal(t, []Filter{
		{Dimension: DimensionCategory, Value: "Tool"},
		{Dimension: DimensionLanguage, Value: "C++"},
		{Dimension: DimensionLanguage, Value: "Rust"},
	}, s.Slice())

	assert.Equal(t, map[Dimension][]string{
		DimensionCategory: {"Tool"},
		DimensionLanguage: {"C++", "Rust"},
	}, s.GroupByDimension())
}

func TestDimensions(t *testing.T) {
	dims := DefaultDimensions()
	assert.Equal(t, []string{"category", "language", "platform", "api", "license"}, dims.Strings())

	d, err := dims.Parse("api")
	require.NoError(t, err)
	assert.Equal(t, DimensionAPI, d)

	_, err = dims.Parse("color")
	assert.ErrorIs(t, err, ErrUnknownDimension)

	parsed, err := ParseDimensions([]string{"category", " api "})
	require.NoError(t, err)
	assert.Equal(t, Dimensions{DimensionCategory, DimensionAPI}, parsed)

	_, err = ParseDimensions([]string{"category", "category"})
	assert.Error(t, err)
	_, err = ParseDimensions([]string{""})
	assert.ErrorIs(t, err, ErrUnknownDimension)
}

func TestDimensions_Facets(t *testing.T) {
	projects := []Project{
		{Name: "a", Attributes: map[Dimension][]string{DimensionCategory: {"Tool", "Demo"}}},
		{Name: "b", Attributes: map[Dimension][]string{DimensionCategory: {"Demo"}, DimensionAPI: {"Vulkan"}}},
		{Name: "c"},
	}

	facets := Dimensions{DimensionCategory, DimensionAPI, DimensionLicense}.Facets(projects)
	assert.Equal(t, []string{"Demo", "Tool"}, facets[DimensionCategory])
	assert.Equal(t, []string{"Vulkan"}, facets[DimensionAPI])
	assert.Equal(t, []string{}, facets[DimensionLicense])
}
