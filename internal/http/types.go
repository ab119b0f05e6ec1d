package http

import (
	"github.com/fyrsmithlabs/showcase/internal/project"
)

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Projects int    `json:"projects"`
	Revision uint64 `json:"revision"`
}

// FiltersResponse is the response body for the filter endpoints.
type FiltersResponse struct {
	Filters []project.Filter `json:"filters"`
	Title   string           `json:"title"`
}

// SetFiltersRequest is the request body for PUT /api/v1/filters.
type SetFiltersRequest struct {
	Filters []project.Filter `json:"filters"`
}

// ToggleFilterRequest is the request body for POST /api/v1/filters/toggle.
type ToggleFilterRequest struct {
	Dimension string `json:"dimension"`
	Value     string `json:"value"`
}

// ToggleFilterResponse reports whether the filter is now selected.
type ToggleFilterResponse struct {
	Selected bool `json:"selected"`
	FiltersResponse
}

// SearchRequest is the request body for PUT /api/v1/search.
type SearchRequest struct {
	Title *string `json:"title"`
}

// DimensionFacet lists the values present in the catalog for one dimension.
type DimensionFacet struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// DimensionsResponse is the response body for GET /api/v1/dimensions.
type DimensionsResponse struct {
	Dimensions []DimensionFacet `json:"dimensions"`
}

// ProjectsResponse is the response body for GET /api/v1/projects.
type ProjectsResponse struct {
	Count    int               `json:"count"`
	Projects []project.Project `json:"projects"`
}
