package filters

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fyrsmithlabs/showcase/internal/project"
)

var (
	shader = project.Filter{Dimension: project.DimensionCategory, Value: "Shader"}
	vulkan = project.Filter{Dimension: project.DimensionAPI, Value: "Vulkan"}
)

type recorder struct {
	events []EventType
}

func (r *recorder) record(e Event) {
	r.events = append(r.events, e.Type)
}

func TestStore_FilterMutations(t *testing.T) {
	s := NewStore()
	rec := &recorder{}
	s.Subscribe(rec.record)

	s.AddFilter(shader)
	s.AddFilter(shader) // no-op
	assert.True(t, s.SelectedFilters().Has(shader))

	assert.True(t, s.ToggleFilter(vulkan))
	assert.Equal(t, 2, s.SelectedFilters().Len())
	assert.False(t, s.ToggleFilter(vulkan))

	s.RemoveFilter(shader)
	s.RemoveFilter(shader) // no-op
	assert.Equal(t, 0, s.SelectedFilters().Len())

	assert.Equal(t, []EventType{
		EventSelectedFiltersUpdated,
		EventSelectedFiltersUpdated,
		EventSelectedFiltersUpdated,
		EventSelectedFiltersUpdated,
	}, rec.events)
}

func TestStore_SetAndClear(t *testing.T) {
	s := NewStore()
	rec := &recorder{}
	s.Subscribe(rec.record)

	s.SetSelectedFilters(project.NewFilterSet(shader, vulkan))
	s.SetSelectedFilters(project.NewFilterSet(vulkan, shader)) // same set
	s.ClearFilters()
	s.ClearFilters() // already empty

	assert.Len(t, rec.events, 2)
}

func TestStore_SelectedFiltersIsACopy(t *testing.T) {
	s := NewStore()
	s.AddFilter(shader)

	got := s.SelectedFilters()
	delete(got, shader)

	assert.True(t, s.SelectedFilters().Has(shader))
}

func TestStore_TitleSubstring(t *testing.T) {
	s := NewStore()
	rec := &recorder{}
	s.Subscribe(rec.record)

	s.SetTitleSubstring("vul")
	s.SetTitleSubstring("vul") // unchanged
	s.SetTitleSubstring("")

	assert.Equal(t, "", s.TitleSubstring())
	assert.Equal(t, []EventType{EventTitleSubstringUpdated, EventTitleSubstringUpdated}, rec.events)
}

func TestStore_SubscriberCanReadState(t *testing.T) {
	s := NewStore()

	var seen string
	s.Subscribe(func(Event) { seen = s.TitleSubstring() })

	s.SetTitleSubstring("khr")
	assert.Equal(t, "khr", seen)
}

func TestStore_Unsubscribe(t *testing.T) {
	s := NewStore()
	rec := &recorder{}
	unsubscribe := s.Subscribe(rec.record)

	s.AddFilter(shader)
	unsubscribe()
	s.AddFilter(vulkan)

	assert.Len(t, rec.events, 1)
}

func TestEventType_String(t *testing.T) {
	assert.Equal(t, "selected_filters", EventSelectedFiltersUpdated.String())
	assert.Equal(t, "title_substring", EventTitleSubstringUpdated.String())
	assert.Equal(t, "unknown", EventType(42).String())
}
