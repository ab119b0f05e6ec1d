// Package results derives the displayed project list from the catalog and
// the user's filter state.
//
// The pipeline runs four stages in order:
//
//  1. ApplyTagFilters keeps projects matching the selected filters: any
//     selected value within a dimension (OR), every dimension that has a
//     selection (AND).
//  2. ApplyTitleSearch keeps projects whose name contains the search text,
//     ignoring case.
//  3. SplitIntoBuckets groups projects under the priority tags, falling back
//     to the UNTAGGED bucket.
//  4. ApplySort orders each bucket by name and concatenates the buckets in
//     priority order, UNTAGGED last.
//
// A Watcher connects the pipeline to the filter store: selection changes run
// it immediately, title search changes are debounced. Every run publishes the
// full result list to a ResultSink.
package results
