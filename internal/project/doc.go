// Package project provides the project records shown in the showcase gallery.
//
// Project Representation:
//
// Each project carries:
//   - Unique project ID (UUID, generated when the catalog omits it)
//   - Project name (used for title search and ordering)
//   - Tags (optional, drive priority bucketing)
//   - Attributes per dimension (category, language, ...)
//
// Dimensions:
//
// A Dimension is a named attribute axis. Dimensions are declared in a fixed
// enumeration order; filter matching walks them in that order.
//
// Filters:
//
// A Filter selects one value in one dimension. Selected filters are kept in
// a FilterSet keyed by the (dimension, value) pair.
//
// Manager:
//
// The Manager holds the catalog in memory:
//   - Add: Insert a project, assigning an ID when missing
//   - Get: Retrieve project by ID
//   - List: All projects in catalog order
//   - Delete: Remove project by ID
//   - Replace: Swap the whole catalog and notify subscribers
//
// Catalogs are loaded from YAML, TOML or JSON files with LoadCatalog and can
// be kept fresh with a CatalogWatcher.
package project
